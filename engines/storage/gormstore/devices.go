package gormstore

import (
	"context"
	"time"

	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/engines/storage"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"gorm.io/gorm"
)

const DevicesTable = "devices"

type GormDeviceStore struct {
	db      *gorm.DB
	querier *gormDBQuerier[models.Device]
}

func NewDeviceRepository(db *gorm.DB) (storage.DeviceRepo, error) {
	querier, err := TableQuery(db, DevicesTable, "id", models.Device{})
	if err != nil {
		return nil, err
	}

	return &GormDeviceStore{
		db:      db,
		querier: querier,
	}, nil
}

func byTenantAndExternalID(tenantID, externalID string) []gormWhereParams {
	return []gormWhereParams{
		{query: "tenant_id = ? AND external_id = ?", extraArgs: []any{tenantID, externalID}},
	}
}

func (s *GormDeviceStore) SelectByExternalID(ctx context.Context, tenantID, externalID string) (bool, *models.Device, error) {
	return s.querier.SelectExists(ctx, byTenantAndExternalID(tenantID, externalID))
}

func (s *GormDeviceStore) Insert(ctx context.Context, device *models.Device) (*models.Device, error) {
	return s.querier.Insert(ctx, device)
}

func (s *GormDeviceStore) UpdateLastSeen(ctx context.Context, tenantID, externalID string, seenAt time.Time) (bool, error) {
	seenAt = seenAt.UTC()
	tx := s.db.WithContext(ctx).Table(DevicesTable).
		Where("tenant_id = ? AND external_id = ? AND (last_seen IS NULL OR last_seen < ?)", tenantID, externalID, seenAt).
		Updates(map[string]any{
			"last_seen":  seenAt,
			"status":     gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END", models.DeviceOffline, models.DeviceActive),
			"updated_at": time.Now().UTC(),
		})
	if tx.Error != nil {
		return false, tx.Error
	}

	if tx.RowsAffected > 0 {
		return true, nil
	}

	// nothing changed: either the device is unknown or it was already seen later
	count, err := s.querier.Count(ctx, byTenantAndExternalID(tenantID, externalID))
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (s *GormDeviceStore) UpdateStatus(ctx context.Context, tenantID, externalID string, status models.DeviceStatus) (bool, error) {
	tx := s.db.WithContext(ctx).Table(DevicesTable).
		Where("tenant_id = ? AND external_id = ?", tenantID, externalID).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	if tx.Error != nil {
		return false, tx.Error
	}

	if tx.RowsAffected > 0 {
		return true, nil
	}

	count, err := s.querier.Count(ctx, byTenantAndExternalID(tenantID, externalID))
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (s *GormDeviceStore) MarkOffline(ctx context.Context, cutoff time.Time) (int64, error) {
	tx := s.db.WithContext(ctx).Table(DevicesTable).
		Where("status = ? AND last_seen IS NOT NULL AND last_seen < ?", models.DeviceActive, cutoff.UTC()).
		Updates(map[string]any{
			"status":     models.DeviceOffline,
			"updated_at": time.Now().UTC(),
		})
	if tx.Error != nil {
		return 0, tx.Error
	}

	return tx.RowsAffected, nil
}
