package eventpub

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/lamassuiot/lamassu-iot-gateway/core"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/helpers"
	"github.com/sirupsen/logrus"
)

type ICloudEventPublisher interface {
	PublishCloudEvent(ctx context.Context, payload interface{})
}

type CloudEventPublisher struct {
	Publisher message.Publisher
	ServiceID string
	Logger    *logrus.Entry
}

func (cemp *CloudEventPublisher) PublishCloudEvent(ctx context.Context, payload interface{}) {
	event := helpers.BuildCloudEvent(ctx, payload)

	eventBytes, marshalErr := json.Marshal(event)
	if marshalErr != nil {
		cemp.Logger.Errorf("error while serializing event: %s", marshalErr)
		return
	}

	cemp.Logger.Tracef("publishing event: Type=%s Source=%s \n%s", event.Type(), event.Source(), string(eventBytes))

	msg := message.NewMessage(event.ID(), eventBytes)
	msg.SetContext(ctx)
	if reqID, ok := ctx.Value(core.LamassuContextKeyRequestID).(string); ok {
		msg.Metadata.Set(core.LamassuContextKeyRequestID, reqID)
	}

	err := cemp.Publisher.Publish(event.Type(), msg)
	if err != nil {
		cemp.Logger.Errorf("could not publish event %s of type %s: %s", event.ID(), event.Type(), err)
	}
}

// withTenant makes sure the event carries the tenant even when the caller only
// passed it in the service input.
func withTenant(ctx context.Context, tenantID string) context.Context {
	if tenantID != "" && helpers.TenantFromContext(ctx) == "" {
		return helpers.WithTenant(ctx, tenantID)
	}
	return ctx
}

type EventPublisherWithSourceMiddleware struct {
	Publisher ICloudEventPublisher
	Source    string
}

func NewEventPublisherWithSourceMiddleware(publisher ICloudEventPublisher, source string) ICloudEventPublisher {
	return &EventPublisherWithSourceMiddleware{
		Publisher: publisher,
		Source:    source,
	}
}

func (epws *EventPublisherWithSourceMiddleware) PublishCloudEvent(ctx context.Context, payload interface{}) {
	if ctx.Value(core.LamassuContextKeySource) == nil {
		ctx = context.WithValue(ctx, core.LamassuContextKeySource, epws.Source)
	}
	epws.Publisher.PublishCloudEvent(ctx, payload)
}
