package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/errs"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTouch(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	var testcases = []struct {
		name   string
		before func(*testing.T, *testBackends)
		input  services.TouchInput
		check  func(*testing.T, *testBackends, error)
	}{
		{
			name: "OK/SetsLastSeen",
			before: func(t *testing.T, b *testBackends) {
				registerDevice(t, b.devices, "acme", "dev-1", models.DeviceActive, nil)
			},
			input: services.TouchInput{DeviceID: "dev-1", TenantID: "acme", SeenAt: base},
			check: func(t *testing.T, b *testBackends, err error) {
				require.NoError(t, err)
				device, err := b.livenessSvc.GetDevice(context.Background(), services.GetDeviceInput{DeviceID: "dev-1", TenantID: "acme"})
				require.NoError(t, err)
				assert.True(t, base.Equal(*device.LastSeen))
			},
		},
		{
			name: "OK/NeverMovesBackwards",
			before: func(t *testing.T, b *testBackends) {
				lastSeen := base.Add(time.Hour)
				registerDevice(t, b.devices, "acme", "dev-1", models.DeviceActive, &lastSeen)
			},
			input: services.TouchInput{DeviceID: "dev-1", TenantID: "acme", SeenAt: base},
			check: func(t *testing.T, b *testBackends, err error) {
				require.NoError(t, err)
				device, err := b.livenessSvc.GetDevice(context.Background(), services.GetDeviceInput{DeviceID: "dev-1", TenantID: "acme"})
				require.NoError(t, err)
				assert.True(t, base.Add(time.Hour).Equal(*device.LastSeen))
			},
		},
		{
			name: "OK/OfflineDeviceBecomesActive",
			before: func(t *testing.T, b *testBackends) {
				registerDevice(t, b.devices, "acme", "dev-1", models.DeviceOffline, nil)
			},
			input: services.TouchInput{DeviceID: "dev-1", TenantID: "acme", SeenAt: base},
			check: func(t *testing.T, b *testBackends, err error) {
				require.NoError(t, err)
				device, err := b.livenessSvc.GetDevice(context.Background(), services.GetDeviceInput{DeviceID: "dev-1", TenantID: "acme"})
				require.NoError(t, err)
				assert.Equal(t, models.DeviceActive, device.Status)
			},
		},
		{
			name:   "OK/NoTenantIsSkipped",
			before: func(t *testing.T, b *testBackends) {},
			input:  services.TouchInput{DeviceID: "dev-1"},
			check: func(t *testing.T, b *testBackends, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "Err/OtherTenant",
			before: func(t *testing.T, b *testBackends) {
				registerDevice(t, b.devices, "acme", "dev-1", models.DeviceActive, nil)
			},
			input: services.TouchInput{DeviceID: "dev-1", TenantID: "globex", SeenAt: base},
			check: func(t *testing.T, b *testBackends, err error) {
				assert.True(t, errors.Is(err, errs.ErrDeviceNotFound))
			},
		},
		{
			name:   "Err/MissingDeviceID",
			before: func(t *testing.T, b *testBackends) {},
			input:  services.TouchInput{TenantID: "acme"},
			check: func(t *testing.T, b *testBackends, err error) {
				assert.True(t, errors.Is(err, errs.ErrValidateBadRequest))
			},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			b := setupTestServices(t)
			tc.before(t, b)
			err := b.livenessSvc.Touch(context.Background(), tc.input)
			tc.check(t, b, err)
		})
	}
}

func TestTouchConcurrentIsMonotonic(t *testing.T) {
	b := setupTestServices(t)
	registerDevice(t, b.devices, "acme", "dev-1", models.DeviceActive, nil)

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			_ = b.livenessSvc.Touch(context.Background(), services.TouchInput{
				DeviceID: "dev-1",
				TenantID: "acme",
				SeenAt:   base.Add(time.Duration(offset) * time.Second),
			})
		}(i)
	}
	wg.Wait()

	device, err := b.livenessSvc.GetDevice(context.Background(), services.GetDeviceInput{DeviceID: "dev-1", TenantID: "acme"})
	require.NoError(t, err)
	assert.True(t, base.Add(19*time.Second).Equal(*device.LastSeen))
}

func TestSweepOffline(t *testing.T) {
	b := setupTestServices(t)
	ctx := context.Background()

	stale := time.Now().Add(-time.Hour)
	fresh := time.Now()
	registerDevice(t, b.devices, "acme", "stale", models.DeviceActive, &stale)
	registerDevice(t, b.devices, "acme", "fresh", models.DeviceActive, &fresh)
	registerDevice(t, b.devices, "acme", "maint", models.DeviceMaintenance, &stale)

	count, err := b.livenessSvc.SweepOffline(ctx, services.SweepOfflineInput{OlderThan: 15 * time.Minute})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	device, err := b.livenessSvc.GetDevice(ctx, services.GetDeviceInput{DeviceID: "stale", TenantID: "acme"})
	require.NoError(t, err)
	assert.Equal(t, models.DeviceOffline, device.Status)

	_, err = b.livenessSvc.SweepOffline(ctx, services.SweepOfflineInput{})
	assert.True(t, errors.Is(err, errs.ErrValidateBadRequest))
}

func TestGetDeviceNotFound(t *testing.T) {
	b := setupTestServices(t)

	_, err := b.livenessSvc.GetDevice(context.Background(), services.GetDeviceInput{DeviceID: "ghost", TenantID: "acme"})
	assert.True(t, errors.Is(err, errs.ErrDeviceNotFound))
}
