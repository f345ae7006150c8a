package eventpub

import (
	"testing"

	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/services"
	svcmock "github.com/lamassuiot/lamassu-iot-gateway/core/pkg/services/mock"
)

func TestAlertEventPublisher(t *testing.T) {
	config := EventTestConfig[services.AlertService, *svcmock.MockAlertService]{
		NewPublisher: func(pub *CloudEventPublisherMock) func(services.AlertService) services.AlertService {
			return NewAlertEventPublisher(pub)
		},
		CreateMockService: func() *svcmock.MockAlertService {
			return new(svcmock.MockAlertService)
		},
	}

	var testcases = []struct {
		name string
		test func(*testing.T)
	}{
		{
			name: "CreateAlert without errors",
			test: func(t *testing.T) {
				WithoutErrors(t, config, "CreateAlert", services.CreateAlertInput{TenantID: "t1"}, models.EventAlertCreatedKey, &models.Alert{ID: "a-1"})
			},
		},
		{
			name: "CreateAlert with errors",
			test: func(t *testing.T) {
				WithErrors(t, config, "CreateAlert", services.CreateAlertInput{}, models.EventAlertCreatedKey, (*models.Alert)(nil))
			},
		},
		{
			name: "AcknowledgeAlert without errors",
			test: func(t *testing.T) {
				WithoutErrors(t, config, "AcknowledgeAlert", services.AcknowledgeAlertInput{ID: "a-1", AcknowledgedBy: "ops"}, models.EventAlertAcknowledgedKey, &models.Alert{ID: "a-1"})
			},
		},
		{
			name: "AcknowledgeAlert with errors",
			test: func(t *testing.T) {
				WithErrors(t, config, "AcknowledgeAlert", services.AcknowledgeAlertInput{ID: "a-1"}, models.EventAlertAcknowledgedKey, (*models.Alert)(nil))
			},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, tc.test)
	}
}
