package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/engines/storage"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/errs"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/helpers"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/resources"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/services"
	"github.com/sirupsen/logrus"
)

var gatewayValidate = validator.New()

// latestReadingsWindow bounds the storage lookup used when no cache is configured.
const latestReadingsWindow = 24 * time.Hour

// BrokerClient is the outbound side of the broker adapter.
type BrokerClient interface {
	PublishCommand(ctx context.Context, command models.DeviceCommand) error
	PublishToTopic(ctx context.Context, topic string, payload []byte) error
	Status() models.BrokerStatus
}

type GatewayMiddleware func(services.GatewayService) services.GatewayService

type GatewayServiceBackend struct {
	broker           BrokerClient
	livenessService  services.LivenessService
	alertService     services.AlertService
	telemetryStorage storage.TelemetryRepo
	latestCache      storage.LatestReadingCache
	service          services.GatewayService
	logger           *logrus.Entry
}

type GatewayServiceBuilder struct {
	Logger           *logrus.Entry
	Broker           BrokerClient
	LivenessService  services.LivenessService
	AlertService     services.AlertService
	TelemetryStorage storage.TelemetryRepo
	LatestCache      storage.LatestReadingCache
}

func NewGatewayService(builder GatewayServiceBuilder) services.GatewayService {
	svc := &GatewayServiceBackend{
		broker:           builder.Broker,
		livenessService:  builder.LivenessService,
		alertService:     builder.AlertService,
		telemetryStorage: builder.TelemetryStorage,
		latestCache:      builder.LatestCache,
		logger:           builder.Logger,
	}

	svc.service = svc
	return svc
}

func (svc *GatewayServiceBackend) SetService(service services.GatewayService) {
	svc.service = service
}

func (svc *GatewayServiceBackend) GetStatus(ctx context.Context) (*models.GatewayStatus, error) {
	brokerStatus := models.BrokerStatus{
		Connected: false,
		State:     models.BrokerDisconnected,
	}
	if svc.broker != nil {
		brokerStatus = svc.broker.Status()
	}

	return &models.GatewayStatus{
		Broker:         brokerStatus,
		HTTP:           models.AvailabilityStatus{Available: true},
		DataProcessing: models.AvailabilityStatus{Available: svc.telemetryStorage != nil},
	}, nil
}

func (svc *GatewayServiceBackend) GetDeviceStatus(ctx context.Context, input services.GetDeviceStatusInput) (*models.DeviceStatusView, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := gatewayValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	device, err := svc.livenessService.GetDevice(ctx, services.GetDeviceInput{
		DeviceID: input.DeviceID,
		TenantID: input.TenantID,
	})
	if err != nil {
		return nil, err
	}

	return &models.DeviceStatusView{
		Device:         device,
		LatestReadings: svc.latestReadings(ctx, lFunc, input.TenantID, input.DeviceID),
	}, nil
}

func (svc *GatewayServiceBackend) latestReadings(ctx context.Context, lFunc *logrus.Entry, tenantID, deviceID string) map[models.SensorType]models.SensorReading {
	if svc.latestCache != nil {
		latest, err := svc.latestCache.GetLatest(ctx, tenantID, deviceID)
		if err == nil {
			return latest
		}
		lFunc.Warnf("latest reading cache unavailable, reading from storage: %s", err)
	}

	latest := map[models.SensorType]models.SensorReading{}
	if svc.telemetryStorage == nil {
		return latest
	}

	until := time.Now().UTC()
	readings, err := svc.telemetryStorage.SelectReadings(ctx, resources.ReadingsQuery{
		TenantID:  tenantID,
		DeviceIDs: []string{deviceID},
		Since:     until.Add(-latestReadingsWindow),
		Until:     until,
		Limit:     resources.DefaultRealtimeLimit,
		Sort:      resources.SortModeDesc,
	})
	if err != nil {
		lFunc.Errorf("could not read latest readings of device '%s': %s", deviceID, err)
		return latest
	}

	for _, reading := range readings {
		if _, ok := latest[reading.SensorType]; !ok {
			latest[reading.SensorType] = reading
		}
	}
	return latest
}

func (svc *GatewayServiceBackend) SendCommand(ctx context.Context, input services.SendCommandInput) (*models.DeviceCommand, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := gatewayValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.NewValidationError("deviceId and command are required")
	}

	protocol := input.Protocol
	if protocol == "" {
		protocol = models.ProtocolBroker
	}

	command := &models.DeviceCommand{
		ID:       uuid.NewString(),
		DeviceID: input.DeviceID,
		Protocol: protocol,
		Command:  input.Command,
		IssuedAt: time.Now().UTC(),
	}

	switch protocol {
	case models.ProtocolBroker:
		if svc.broker == nil {
			lFunc.Errorf("cannot send command to device '%s': broker adapter disabled", input.DeviceID)
			return nil, errs.ErrBrokerNotConnected
		}

		err = svc.broker.PublishCommand(ctx, *command)
		if err != nil {
			lFunc.Errorf("could not publish command to device '%s': %s", input.DeviceID, err)
			return nil, err
		}
		lFunc.Infof("command %s published to device '%s'", command.ID, input.DeviceID)
	case models.ProtocolHTTP:
		// devices poll for commands over HTTP, nothing is pushed yet
		lFunc.Infof("command %s for device '%s' accepted over http: %v", command.ID, input.DeviceID, input.Command)
	default:
		lFunc.Errorf("unknown command protocol '%s'", protocol)
		return nil, errs.NewValidationError(fmt.Sprintf("%s '%s'", errs.ErrUnknownProtocol, protocol))
	}

	return command, nil
}

// PublishToTopic sends strings and byte slices as they are and everything
// else as JSON.
func (svc *GatewayServiceBackend) PublishToTopic(ctx context.Context, input services.PublishToTopicInput) error {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := gatewayValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return errs.NewValidationError("topic is required")
	}

	if svc.broker == nil {
		return errs.ErrBrokerNotConnected
	}

	var payload []byte
	switch p := input.Payload.(type) {
	case string:
		payload = []byte(p)
	case []byte:
		payload = p
	default:
		payload, err = json.Marshal(p)
		if err != nil {
			return errs.NewValidationError(fmt.Sprintf("payload is not serializable: %s", err))
		}
	}

	err = svc.broker.PublishToTopic(ctx, input.Topic, payload)
	if err != nil {
		lFunc.Errorf("could not publish to topic '%s': %s", input.Topic, err)
		return err
	}

	return nil
}

func (svc *GatewayServiceBackend) AcknowledgeAlert(ctx context.Context, input services.AcknowledgeAlertInput) (*models.Alert, error) {
	return svc.alertService.AcknowledgeAlert(ctx, input)
}
