package eventhandling

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/lamassuiot/lamassu-iot-gateway/core"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/helpers"
	"github.com/sirupsen/logrus"
)

type EventHandler interface {
	HandleMessage(*message.Message) error
}

type CloudEventHandler struct {
	Logger      *logrus.Entry
	DispatchMap map[string]func(context.Context, *event.Event) error
}

func (h CloudEventHandler) HandleMessage(m *message.Message) error {
	event, err := helpers.ParseCloudEvent(m.Payload)
	if err != nil {
		err = fmt.Errorf("something went wrong while processing cloud event: %s", err)
		h.Logger.Error(err)
		return err
	}

	h.Logger.Debugf("received event: Type=%s Subject=%s", event.Type(), event.Subject())

	handler, ok := h.DispatchMap[event.Type()]
	if !ok {
		h.Logger.Tracef("no handler found for event type: %s", event.Type())
		return nil
	}

	err = handler(getContextFromEvent(m, event), event)
	if err != nil {
		h.Logger.Errorf("something went wrong while handling event: %s", err)
	}

	return err
}

func getContextFromEvent(m *message.Message, e *event.Event) context.Context {
	ctx := context.Background()

	ctx = context.WithValue(ctx, core.LamassuContextKeySource, fmt.Sprintf("eventbus-%s", e.Source()))

	ebRequestID := m.Metadata.Get(core.LamassuContextKeyRequestID)
	if ebRequestID == "" {
		ebRequestID = m.UUID
	}
	ctx = context.WithValue(ctx, core.LamassuContextKeyRequestID, ebRequestID)

	if tenant, ok := e.Extensions()["tenant"].(string); ok {
		ctx = helpers.WithTenant(ctx, tenant)
	}

	return ctx
}
