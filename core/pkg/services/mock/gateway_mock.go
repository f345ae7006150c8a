package mock

import (
	"context"

	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/services"
	"github.com/stretchr/testify/mock"
)

type MockGatewayService struct {
	mock.Mock
}

func (m *MockGatewayService) GetStatus(ctx context.Context) (*models.GatewayStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(*models.GatewayStatus), args.Error(1)
}

func (m *MockGatewayService) GetDeviceStatus(ctx context.Context, input services.GetDeviceStatusInput) (*models.DeviceStatusView, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(*models.DeviceStatusView), args.Error(1)
}

func (m *MockGatewayService) SendCommand(ctx context.Context, input services.SendCommandInput) (*models.DeviceCommand, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(*models.DeviceCommand), args.Error(1)
}

func (m *MockGatewayService) PublishToTopic(ctx context.Context, input services.PublishToTopicInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockGatewayService) AcknowledgeAlert(ctx context.Context, input services.AcknowledgeAlertInput) (*models.Alert, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(*models.Alert), args.Error(1)
}
