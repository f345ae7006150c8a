package mock

import (
	"context"

	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/services"
	"github.com/stretchr/testify/mock"
)

type MockTelemetryService struct {
	mock.Mock
}

func (m *MockTelemetryService) IngestOne(ctx context.Context, input services.IngestOneInput) (*models.SensorReading, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(*models.SensorReading), args.Error(1)
}

func (m *MockTelemetryService) IngestBulk(ctx context.Context, input services.IngestBulkInput) (*models.BulkIngestResult, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(*models.BulkIngestResult), args.Error(1)
}

func (m *MockTelemetryService) IngestMetric(ctx context.Context, input services.IngestMetricInput) (*models.EquipmentMetric, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(*models.EquipmentMetric), args.Error(1)
}

func (m *MockTelemetryService) IngestMetricsBulk(ctx context.Context, input services.IngestMetricsBulkInput) (*models.BulkIngestResult, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(*models.BulkIngestResult), args.Error(1)
}

func (m *MockTelemetryService) RecordStatus(ctx context.Context, input services.RecordStatusInput) (*models.DeviceStatusLog, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(*models.DeviceStatusLog), args.Error(1)
}

func (m *MockTelemetryService) GetRealtimeData(ctx context.Context, input services.GetRealtimeDataInput) ([]models.SensorReading, error) {
	args := m.Called(ctx, input)
	return args.Get(0).([]models.SensorReading), args.Error(1)
}

func (m *MockTelemetryService) GetRealtimeMetrics(ctx context.Context, input services.GetRealtimeMetricsInput) ([]models.EquipmentMetric, error) {
	args := m.Called(ctx, input)
	return args.Get(0).([]models.EquipmentMetric), args.Error(1)
}

func (m *MockTelemetryService) ValidateReading(ctx context.Context, input services.ValidateReadingInput) (*models.ValidationResult, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(*models.ValidationResult), args.Error(1)
}
