package services

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/engines/storage"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/errs"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/helpers"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/services"
	"github.com/sirupsen/logrus"
)

var alertValidate = validator.New()

type AlertMiddleware func(services.AlertService) services.AlertService

type AlertServiceBackend struct {
	alertStorage storage.AlertRepo
	service      services.AlertService
	logger       *logrus.Entry
}

type AlertServiceBuilder struct {
	Logger       *logrus.Entry
	AlertStorage storage.AlertRepo
}

func NewAlertService(builder AlertServiceBuilder) services.AlertService {
	svc := &AlertServiceBackend{
		alertStorage: builder.AlertStorage,
		logger:       builder.Logger,
	}

	svc.service = svc
	return svc
}

func (svc *AlertServiceBackend) SetService(service services.AlertService) {
	svc.service = service
}

func (svc *AlertServiceBackend) CreateAlert(ctx context.Context, input services.CreateAlertInput) (*models.Alert, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	now := time.Now().UTC()
	alert := &models.Alert{
		ID:             uuid.NewString(),
		Type:           input.Intent.Type,
		Severity:       input.Intent.Severity,
		Status:         models.AlertOpen,
		Title:          input.Intent.Title,
		Description:    input.Intent.Description,
		TriggerValue:   input.Intent.TriggerValue,
		ThresholdValue: input.Intent.ThresholdValue,
		SensorType:     input.Intent.SensorType,
		TenantID:       input.TenantID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if input.Intent.DeviceID != "" {
		deviceID := input.Intent.DeviceID
		alert.DeviceID = &deviceID
	}

	lFunc.Debugf("storing %s alert for device '%s' (%s %s %g)", alert.Severity, input.Intent.DeviceID, input.Intent.SensorType, input.Intent.Operator, input.Intent.ThresholdValue)
	alert, err := svc.alertStorage.Insert(ctx, alert)
	if err != nil {
		lFunc.Errorf("could not insert alert: %s", err)
		return nil, errs.NewPersistenceError("insert alert", err)
	}

	lFunc.Infof("alert %s created: %s", alert.ID, alert.Title)
	return alert, nil
}

func (svc *AlertServiceBackend) GetAlertByID(ctx context.Context, input services.GetAlertByIDInput) (*models.Alert, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := alertValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	exists, alert, err := svc.alertStorage.SelectByID(ctx, input.TenantID, input.ID)
	if err != nil {
		lFunc.Errorf("something went wrong while checking if alert '%s' exists in storage engine: %s", input.ID, err)
		return nil, errs.NewPersistenceError("select alert", err)
	}

	if !exists {
		lFunc.Errorf("alert %s can not be found in storage engine", input.ID)
		return nil, errs.ErrAlertNotFound
	}

	return alert, nil
}

// AcknowledgeAlert only moves alerts out of the open status.
func (svc *AlertServiceBackend) AcknowledgeAlert(ctx context.Context, input services.AcknowledgeAlertInput) (*models.Alert, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := alertValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	alert, err := svc.service.GetAlertByID(ctx, services.GetAlertByIDInput{
		ID:       input.ID,
		TenantID: input.TenantID,
	})
	if err != nil {
		return nil, err
	}

	if alert.Status != models.AlertOpen {
		lFunc.Errorf("alert %s is %s, only open alerts can be acknowledged", alert.ID, alert.Status)
		return nil, errs.ErrAlertInvalidStatus
	}

	now := time.Now().UTC()
	alert.Status = models.AlertAcknowledged
	alert.AcknowledgedBy = input.AcknowledgedBy
	alert.AcknowledgedAt = &now
	alert.UpdatedAt = now

	alert, err = svc.alertStorage.Update(ctx, alert)
	if err != nil {
		lFunc.Errorf("could not update alert %s: %s", input.ID, err)
		return nil, errs.NewPersistenceError("update alert", err)
	}

	lFunc.Infof("alert %s acknowledged by %s", alert.ID, input.AcknowledgedBy)
	return alert, nil
}
