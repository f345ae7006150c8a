package helpers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/jakehl/goid"
	"github.com/lamassuiot/lamassu-iot-gateway/core"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
)

func BuildCloudEvent(ctx context.Context, payload interface{}) event.Event {
	event := cloudevents.NewEvent()

	event.SetSpecVersion("1.0")
	event.SetTime(time.Now())
	event.SetID(goid.NewV4UUID().String())
	event.SetData(cloudevents.ApplicationJSON, payload)

	eventSource, ok := ctx.Value(core.LamassuContextKeySource).(string)
	if ok {
		event.SetSource(eventSource)
	} else {
		event.SetSource("source://unknown")
	}

	if eventType, ok := ctx.Value(core.LamassuContextKeyEventType).(string); ok {
		event.SetType(eventType)
	} else if typedEventType, ok := ctx.Value(core.LamassuContextKeyEventType).(models.EventType); ok {
		event.SetType(string(typedEventType))
	}

	if eventSubject, ok := ctx.Value(core.LamassuContextKeyEventSubject).(string); ok {
		event.SetSubject(eventSubject)
	}

	if tenant := TenantFromContext(ctx); tenant != "" {
		event.SetExtension("tenant", tenant)
	}

	return event
}

func ParseCloudEvent(msg []byte) (*event.Event, error) {
	var event cloudevents.Event
	err := json.Unmarshal(msg, &event)
	if err != nil {
		return nil, err
	}

	return &event, nil
}

func GetEventBody[E any](cloudEvent *event.Event) (*E, error) {
	var elem *E
	if cloudEvent == nil {
		return nil, fmt.Errorf("cloud event is null")
	}

	if cloudEvent.Data() == nil {
		return nil, fmt.Errorf("cloud event data is null")
	}

	err := json.Unmarshal(cloudEvent.Data(), &elem)
	return elem, err
}
