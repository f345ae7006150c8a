package services

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/engines/storage"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/errs"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/helpers"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/services"
	"github.com/sirupsen/logrus"
)

var livenessValidate = validator.New()

type LivenessServiceBackend struct {
	devicesStorage storage.DeviceRepo
	service        services.LivenessService
	logger         *logrus.Entry
}

type LivenessServiceBuilder struct {
	Logger         *logrus.Entry
	DevicesStorage storage.DeviceRepo
}

func NewLivenessService(builder LivenessServiceBuilder) services.LivenessService {
	svc := &LivenessServiceBackend{
		devicesStorage: builder.DevicesStorage,
		logger:         builder.Logger,
	}

	svc.service = svc
	return svc
}

func (svc *LivenessServiceBackend) SetService(service services.LivenessService) {
	svc.service = service
}

// Touch is a no-op without a tenant: external ids are only unique per tenant.
func (svc *LivenessServiceBackend) Touch(ctx context.Context, input services.TouchInput) error {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := livenessValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return errs.ErrValidateBadRequest
	}

	if input.TenantID == "" {
		lFunc.Tracef("skipping liveness update for device '%s': no tenant", input.DeviceID)
		return nil
	}

	seenAt := input.SeenAt
	if seenAt.IsZero() {
		seenAt = time.Now()
	}

	exists, err := svc.devicesStorage.UpdateLastSeen(ctx, input.TenantID, input.DeviceID, seenAt)
	if err != nil {
		lFunc.Errorf("could not update last seen for device '%s': %s", input.DeviceID, err)
		return errs.NewPersistenceError("update last seen", err)
	}

	if !exists {
		lFunc.Debugf("device '%s' not registered in tenant '%s'", input.DeviceID, input.TenantID)
		return errs.ErrDeviceNotFound
	}

	return nil
}

func (svc *LivenessServiceBackend) GetDevice(ctx context.Context, input services.GetDeviceInput) (*models.Device, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := livenessValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	exists, device, err := svc.devicesStorage.SelectByExternalID(ctx, input.TenantID, input.DeviceID)
	if err != nil {
		lFunc.Errorf("something went wrong while reading device '%s': %s", input.DeviceID, err)
		return nil, errs.NewPersistenceError("select device", err)
	}

	if !exists {
		lFunc.Errorf("device '%s' can not be found in storage engine", input.DeviceID)
		return nil, errs.ErrDeviceNotFound
	}

	return device, nil
}

func (svc *LivenessServiceBackend) SweepOffline(ctx context.Context, input services.SweepOfflineInput) (int64, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := livenessValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return 0, errs.ErrValidateBadRequest
	}

	cutoff := time.Now().Add(-input.OlderThan)
	count, err := svc.devicesStorage.MarkOffline(ctx, cutoff)
	if err != nil {
		lFunc.Errorf("could not mark stale devices as offline: %s", err)
		return 0, errs.NewPersistenceError("mark offline", err)
	}

	if count > 0 {
		lFunc.Infof("%d devices not seen since %s marked as offline", count, cutoff.Format(time.RFC3339))
	}
	return count, nil
}
