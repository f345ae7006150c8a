package mock

import (
	"context"

	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/services"
	"github.com/stretchr/testify/mock"
)

type MockAlertService struct {
	mock.Mock
}

func (m *MockAlertService) CreateAlert(ctx context.Context, input services.CreateAlertInput) (*models.Alert, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(*models.Alert), args.Error(1)
}

func (m *MockAlertService) GetAlertByID(ctx context.Context, input services.GetAlertByIDInput) (*models.Alert, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(*models.Alert), args.Error(1)
}

func (m *MockAlertService) AcknowledgeAlert(ctx context.Context, input services.AcknowledgeAlertInput) (*models.Alert, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(*models.Alert), args.Error(1)
}
