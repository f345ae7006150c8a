package eventpub

import (
	"context"
	"fmt"

	lservices "github.com/lamassuiot/lamassu-iot-gateway/backend/pkg/services"
	"github.com/lamassuiot/lamassu-iot-gateway/core"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/services"
)

type AlertEventPublisher struct {
	Next       services.AlertService
	eventMWPub ICloudEventPublisher
}

func NewAlertEventPublisher(eventMWPub ICloudEventPublisher) lservices.AlertMiddleware {
	return func(next services.AlertService) services.AlertService {
		return &AlertEventPublisher{
			Next:       next,
			eventMWPub: NewEventPublisherWithSourceMiddleware(eventMWPub, models.GatewaySource),
		}
	}
}

func (mw AlertEventPublisher) CreateAlert(ctx context.Context, input services.CreateAlertInput) (output *models.Alert, err error) {
	ctx = context.WithValue(ctx, core.LamassuContextKeyEventType, models.EventAlertCreatedKey)
	ctx = withTenant(ctx, input.TenantID)

	defer func() {
		if err == nil {
			ctx = context.WithValue(ctx, core.LamassuContextKeyEventSubject, fmt.Sprintf("alert/%s", output.ID))
			mw.eventMWPub.PublishCloudEvent(ctx, output)
		}
	}()
	return mw.Next.CreateAlert(ctx, input)
}

func (mw AlertEventPublisher) GetAlertByID(ctx context.Context, input services.GetAlertByIDInput) (*models.Alert, error) {
	return mw.Next.GetAlertByID(ctx, input)
}

func (mw AlertEventPublisher) AcknowledgeAlert(ctx context.Context, input services.AcknowledgeAlertInput) (output *models.Alert, err error) {
	ctx = context.WithValue(ctx, core.LamassuContextKeyEventType, models.EventAlertAcknowledgedKey)
	ctx = context.WithValue(ctx, core.LamassuContextKeyEventSubject, fmt.Sprintf("alert/%s", input.ID))
	ctx = withTenant(ctx, input.TenantID)

	defer func() {
		if err == nil {
			mw.eventMWPub.PublishCloudEvent(ctx, output)
		}
	}()
	return mw.Next.AcknowledgeAlert(ctx, input)
}
