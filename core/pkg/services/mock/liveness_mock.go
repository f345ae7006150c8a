package mock

import (
	"context"

	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/services"
	"github.com/stretchr/testify/mock"
)

type MockLivenessService struct {
	mock.Mock
}

func (m *MockLivenessService) Touch(ctx context.Context, input services.TouchInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockLivenessService) GetDevice(ctx context.Context, input services.GetDeviceInput) (*models.Device, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(*models.Device), args.Error(1)
}

func (m *MockLivenessService) SweepOffline(ctx context.Context, input services.SweepOfflineInput) (int64, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(int64), args.Error(1)
}
