package services

import (
	"context"

	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
)

type AlertService interface {
	CreateAlert(ctx context.Context, input CreateAlertInput) (*models.Alert, error)
	GetAlertByID(ctx context.Context, input GetAlertByIDInput) (*models.Alert, error)
	AcknowledgeAlert(ctx context.Context, input AcknowledgeAlertInput) (*models.Alert, error)
}

type CreateAlertInput struct {
	Intent   models.AlertIntent
	TenantID string
}

type GetAlertByIDInput struct {
	ID       string `validate:"required"`
	TenantID string
}

type AcknowledgeAlertInput struct {
	ID             string `validate:"required"`
	TenantID       string
	AcknowledgedBy string `validate:"required"`
}
