package services

import (
	"context"
	"time"

	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
)

type LivenessService interface {
	Touch(ctx context.Context, input TouchInput) error
	GetDevice(ctx context.Context, input GetDeviceInput) (*models.Device, error)
	SweepOffline(ctx context.Context, input SweepOfflineInput) (int64, error)
}

type TouchInput struct {
	DeviceID string `validate:"required"`
	TenantID string
	SeenAt   time.Time
}

type GetDeviceInput struct {
	DeviceID string `validate:"required"`
	TenantID string
}

type SweepOfflineInput struct {
	OlderThan time.Duration `validate:"required"`
}
