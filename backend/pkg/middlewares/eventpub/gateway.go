package eventpub

import (
	"context"
	"fmt"

	lservices "github.com/lamassuiot/lamassu-iot-gateway/backend/pkg/services"
	"github.com/lamassuiot/lamassu-iot-gateway/core"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/services"
)

type GatewayEventPublisher struct {
	Next       services.GatewayService
	eventMWPub ICloudEventPublisher
}

func NewGatewayEventPublisher(eventMWPub ICloudEventPublisher) lservices.GatewayMiddleware {
	return func(next services.GatewayService) services.GatewayService {
		return &GatewayEventPublisher{
			Next:       next,
			eventMWPub: NewEventPublisherWithSourceMiddleware(eventMWPub, models.GatewaySource),
		}
	}
}

func (mw GatewayEventPublisher) GetStatus(ctx context.Context) (*models.GatewayStatus, error) {
	return mw.Next.GetStatus(ctx)
}

func (mw GatewayEventPublisher) GetDeviceStatus(ctx context.Context, input services.GetDeviceStatusInput) (*models.DeviceStatusView, error) {
	return mw.Next.GetDeviceStatus(ctx, input)
}

func (mw GatewayEventPublisher) SendCommand(ctx context.Context, input services.SendCommandInput) (output *models.DeviceCommand, err error) {
	ctx = context.WithValue(ctx, core.LamassuContextKeyEventType, models.EventDeviceCommandSentKey)
	ctx = context.WithValue(ctx, core.LamassuContextKeyEventSubject, fmt.Sprintf("device/%s", input.DeviceID))
	ctx = withTenant(ctx, input.TenantID)

	defer func() {
		if err == nil {
			mw.eventMWPub.PublishCloudEvent(ctx, output)
		}
	}()
	return mw.Next.SendCommand(ctx, input)
}

func (mw GatewayEventPublisher) PublishToTopic(ctx context.Context, input services.PublishToTopicInput) error {
	return mw.Next.PublishToTopic(ctx, input)
}

// AcknowledgeAlert goes through the alert service, which publishes on its own.
func (mw GatewayEventPublisher) AcknowledgeAlert(ctx context.Context, input services.AcknowledgeAlertInput) (*models.Alert, error) {
	return mw.Next.AcknowledgeAlert(ctx, input)
}
