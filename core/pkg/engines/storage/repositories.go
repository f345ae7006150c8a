package storage

import (
	"context"
	"time"

	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/resources"
)

// DeviceRepo is the gateway's narrow view over the device directory.
// Every lookup is tenant scoped.
type DeviceRepo interface {
	SelectByExternalID(ctx context.Context, tenantID, externalID string) (bool, *models.Device, error)
	Insert(ctx context.Context, device *models.Device) (*models.Device, error)

	// UpdateLastSeen never moves LastSeen backwards. The returned bool
	// reports whether the device exists.
	UpdateLastSeen(ctx context.Context, tenantID, externalID string, seenAt time.Time) (bool, error)
	UpdateStatus(ctx context.Context, tenantID, externalID string, status models.DeviceStatus) (bool, error)

	// MarkOffline flags active devices not seen since cutoff and returns how many changed.
	MarkOffline(ctx context.Context, cutoff time.Time) (int64, error)
}

type TelemetryRepo interface {
	InsertReadings(ctx context.Context, readings []models.SensorReading) error
	InsertMetrics(ctx context.Context, metrics []models.EquipmentMetric) error
	SelectReadings(ctx context.Context, query resources.ReadingsQuery) ([]models.SensorReading, error)
	SelectMetrics(ctx context.Context, query resources.MetricsQuery) ([]models.EquipmentMetric, error)
}

type AlertRepo interface {
	Insert(ctx context.Context, alert *models.Alert) (*models.Alert, error)
	SelectByID(ctx context.Context, tenantID, id string) (bool, *models.Alert, error)
	Update(ctx context.Context, alert *models.Alert) (*models.Alert, error)
}

type StatusLogRepo interface {
	Insert(ctx context.Context, log *models.DeviceStatusLog) (*models.DeviceStatusLog, error)
}

// LatestReadingCache keeps the most recent reading per device and sensor type.
type LatestReadingCache interface {
	PutLatest(ctx context.Context, reading models.SensorReading) error
	GetLatest(ctx context.Context, tenantID, deviceID string) (map[models.SensorType]models.SensorReading, error)
}
