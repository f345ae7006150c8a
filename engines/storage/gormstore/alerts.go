package gormstore

import (
	"context"

	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/engines/storage"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"gorm.io/gorm"
)

const (
	AlertsTable     = "alerts"
	StatusLogsTable = "device_status_logs"
)

type GormAlertStore struct {
	querier *gormDBQuerier[models.Alert]
}

func NewAlertRepository(db *gorm.DB) (storage.AlertRepo, error) {
	querier, err := TableQuery(db, AlertsTable, "id", models.Alert{})
	if err != nil {
		return nil, err
	}

	return &GormAlertStore{
		querier: querier,
	}, nil
}

func (s *GormAlertStore) Insert(ctx context.Context, alert *models.Alert) (*models.Alert, error) {
	return s.querier.Insert(ctx, alert)
}

func (s *GormAlertStore) SelectByID(ctx context.Context, tenantID, id string) (bool, *models.Alert, error) {
	return s.querier.SelectExists(ctx, []gormWhereParams{
		{query: "id = ? AND tenant_id = ?", extraArgs: []any{id, tenantID}},
	})
}

func (s *GormAlertStore) Update(ctx context.Context, alert *models.Alert) (*models.Alert, error) {
	return s.querier.Update(ctx, alert, alert.ID)
}

type GormStatusLogStore struct {
	querier *gormDBQuerier[models.DeviceStatusLog]
}

func NewStatusLogRepository(db *gorm.DB) (storage.StatusLogRepo, error) {
	querier, err := TableQuery(db, StatusLogsTable, "id", models.DeviceStatusLog{})
	if err != nil {
		return nil, err
	}

	return &GormStatusLogStore{
		querier: querier,
	}, nil
}

func (s *GormStatusLogStore) Insert(ctx context.Context, log *models.DeviceStatusLog) (*models.DeviceStatusLog, error) {
	return s.querier.Insert(ctx, log)
}
