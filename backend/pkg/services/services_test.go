package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/config"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/engines/storage"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/resources"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/services"
	"github.com/lamassuiot/lamassu-iot-gateway/engines/storage/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testBackends struct {
	devices    storage.DeviceRepo
	telemetry  storage.TelemetryRepo
	alerts     storage.AlertRepo
	statusLogs storage.StatusLogRepo

	alertSvc     *recordingAlertService
	livenessSvc  services.LivenessService
	telemetrySvc services.TelemetryService
}

// recordingAlertService remembers the alerts that went through it.
type recordingAlertService struct {
	services.AlertService
	created []*models.Alert
}

func (r *recordingAlertService) CreateAlert(ctx context.Context, input services.CreateAlertInput) (*models.Alert, error) {
	alert, err := r.AlertService.CreateAlert(ctx, input)
	if err == nil {
		r.created = append(r.created, alert)
	}
	return alert, err
}

func testLogger() *logrus.Entry {
	return logrus.NewEntry(logrus.New())
}

func setupTestServices(t *testing.T) *testBackends {
	engine, err := sqlite.NewStorageEngine(testLogger(), config.SQLitePSEConfig{
		DatabasePath: filepath.Join(t.TempDir(), "gateway.db"),
	})
	require.NoError(t, err)

	b := &testBackends{}
	b.devices, err = engine.GetDeviceStorage()
	require.NoError(t, err)
	b.telemetry, err = engine.GetTelemetryStorage()
	require.NoError(t, err)
	b.alerts, err = engine.GetAlertStorage()
	require.NoError(t, err)
	b.statusLogs, err = engine.GetStatusLogStorage()
	require.NoError(t, err)

	b.alertSvc = &recordingAlertService{
		AlertService: NewAlertService(AlertServiceBuilder{
			Logger:       testLogger(),
			AlertStorage: b.alerts,
		}),
	}

	b.livenessSvc = NewLivenessService(LivenessServiceBuilder{
		Logger:         testLogger(),
		DevicesStorage: b.devices,
	})

	b.telemetrySvc = NewTelemetryService(TelemetryServiceBuilder{
		Logger:           testLogger(),
		TelemetryStorage: b.telemetry,
		StatusLogStorage: b.statusLogs,
		DevicesStorage:   b.devices,
		AlertService:     b.alertSvc,
		LivenessService:  b.livenessSvc,
		BatchSize:        100,
	})

	return b
}

func registerDevice(t *testing.T, repo storage.DeviceRepo, tenantID, externalID string, status models.DeviceStatus, lastSeen *time.Time) *models.Device {
	if lastSeen != nil {
		utc := lastSeen.UTC()
		lastSeen = &utc
	}

	device, err := repo.Insert(context.Background(), &models.Device{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		ExternalID: externalID,
		Name:       externalID,
		Status:     status,
		LastSeen:   lastSeen,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)
	return device
}

type telemetryRepoMock struct {
	mock.Mock
}

func (m *telemetryRepoMock) InsertReadings(ctx context.Context, readings []models.SensorReading) error {
	args := m.Called(ctx, readings)
	return args.Error(0)
}

func (m *telemetryRepoMock) InsertMetrics(ctx context.Context, metrics []models.EquipmentMetric) error {
	args := m.Called(ctx, metrics)
	return args.Error(0)
}

func (m *telemetryRepoMock) SelectReadings(ctx context.Context, query resources.ReadingsQuery) ([]models.SensorReading, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]models.SensorReading), args.Error(1)
}

func (m *telemetryRepoMock) SelectMetrics(ctx context.Context, query resources.MetricsQuery) ([]models.EquipmentMetric, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]models.EquipmentMetric), args.Error(1)
}
