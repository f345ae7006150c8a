package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/config"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/engines/storage"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisteredBuilder(t *testing.T) {
	Register()

	builder := storage.GetEngineBuilder(config.SQLite)
	require.NotNil(t, builder)

	engine, err := builder(logrus.NewEntry(logrus.New()), config.PluggableStorageEngine{
		Provider: config.SQLite,
		SQLite: config.SQLitePSEConfig{
			DatabasePath: filepath.Join(t.TempDir(), "gateway.db"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, config.SQLite, engine.GetProvider())

	devices, err := engine.GetDeviceStorage()
	require.NoError(t, err)

	_, err = devices.Insert(context.Background(), &models.Device{ID: "1", TenantID: "acme", ExternalID: "dev-1", Status: models.DeviceActive})
	require.NoError(t, err)

	found, err := devices.UpdateLastSeen(context.Background(), "acme", "dev-1", time.Now())
	require.NoError(t, err)
	assert.True(t, found)

	telemetry, err := engine.GetTelemetryStorage()
	require.NoError(t, err)
	assert.NotNil(t, telemetry)

	alerts, err := engine.GetAlertStorage()
	require.NoError(t, err)
	assert.NotNil(t, alerts)

	logs, err := engine.GetStatusLogStorage()
	require.NoError(t, err)
	assert.NotNil(t, logs)
}

func TestEmptyPath(t *testing.T) {
	engine, err := NewStorageEngine(logrus.NewEntry(logrus.New()), config.SQLitePSEConfig{})
	require.NoError(t, err)

	_, err = engine.GetDeviceStorage()
	assert.Error(t, err)
}
