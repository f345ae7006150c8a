package services

import (
	"context"

	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
)

// TelemetryService is the ingestion pipeline shared by every transport.
type TelemetryService interface {
	IngestOne(ctx context.Context, input IngestOneInput) (*models.SensorReading, error)
	IngestBulk(ctx context.Context, input IngestBulkInput) (*models.BulkIngestResult, error)
	IngestMetric(ctx context.Context, input IngestMetricInput) (*models.EquipmentMetric, error)
	IngestMetricsBulk(ctx context.Context, input IngestMetricsBulkInput) (*models.BulkIngestResult, error)
	RecordStatus(ctx context.Context, input RecordStatusInput) (*models.DeviceStatusLog, error)

	GetRealtimeData(ctx context.Context, input GetRealtimeDataInput) ([]models.SensorReading, error)
	GetRealtimeMetrics(ctx context.Context, input GetRealtimeMetricsInput) ([]models.EquipmentMetric, error)

	// ValidateReading never stores anything.
	ValidateReading(ctx context.Context, input ValidateReadingInput) (*models.ValidationResult, error)
}

type IngestOneInput struct {
	Reading  models.RawSensorReading
	TenantID string
}

type IngestBulkInput struct {
	Readings []models.RawSensorReading
	TenantID string
}

type IngestMetricInput struct {
	Metric   models.RawEquipmentMetric
	TenantID string
}

type IngestMetricsBulkInput struct {
	Metrics  []models.RawEquipmentMetric
	TenantID string
}

type RecordStatusInput struct {
	DeviceID string `validate:"required"`
	Payload  map[string]any
	TenantID string
}

type GetRealtimeDataInput struct {
	TenantID    string
	DeviceIDs   []string
	SensorTypes []models.SensorType
	TimeRange   string
	Limit       int
}

type GetRealtimeMetricsInput struct {
	TenantID     string
	EquipmentIDs []string
	TimeRange    string
	Limit        int
}

type ValidateReadingInput struct {
	Reading models.RawSensorReading
}
