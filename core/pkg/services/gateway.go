package services

import (
	"context"

	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
)

// GatewayService is the operational facade exposed to the HTTP layer and the CLI.
type GatewayService interface {
	GetStatus(ctx context.Context) (*models.GatewayStatus, error)
	GetDeviceStatus(ctx context.Context, input GetDeviceStatusInput) (*models.DeviceStatusView, error)
	SendCommand(ctx context.Context, input SendCommandInput) (*models.DeviceCommand, error)
	PublishToTopic(ctx context.Context, input PublishToTopicInput) error
	AcknowledgeAlert(ctx context.Context, input AcknowledgeAlertInput) (*models.Alert, error)
}

type GetDeviceStatusInput struct {
	DeviceID string `validate:"required"`
	TenantID string
}

type SendCommandInput struct {
	DeviceID string         `validate:"required"`
	Command  map[string]any `validate:"required"`
	Protocol models.Protocol
	TenantID string
}

type PublishToTopicInput struct {
	Topic   string `validate:"required"`
	Payload any
}
