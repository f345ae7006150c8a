package handlers

import (
	"context"
	"fmt"

	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/engines/storage"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/helpers"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/services/eventhandling"
	"github.com/sirupsen/logrus"
)

// LatestReadingTopics are the event types the latest reading cache follows.
var LatestReadingTopics = []string{
	string(models.EventReadingIngestedKey),
	string(models.EventBulkIngestedKey),
}

func NewLatestReadingEventHandler(l *logrus.Entry, cache storage.LatestReadingCache) *eventhandling.CloudEventHandler {
	return &eventhandling.CloudEventHandler{
		Logger: l,
		DispatchMap: map[string]func(context.Context, *event.Event) error{
			string(models.EventReadingIngestedKey): func(ctx context.Context, m *event.Event) error { return readingIngestedHandler(ctx, m, cache, l) },
			string(models.EventBulkIngestedKey):    func(ctx context.Context, m *event.Event) error { return bulkIngestedHandler(ctx, m, cache, l) },
		},
	}
}

func readingIngestedHandler(ctx context.Context, event *event.Event, cache storage.LatestReadingCache, lMessaging *logrus.Entry) error {
	reading, err := helpers.GetEventBody[models.SensorReading](event)
	if err != nil {
		err = fmt.Errorf("could not decode cloud event: %s", err)
		lMessaging.Error(err)
		return err
	}

	err = cache.PutLatest(ctx, *reading)
	if err != nil {
		err = fmt.Errorf("could not cache reading %s of device '%s': %s", reading.ID, reading.DeviceID, err)
		lMessaging.Error(err)
		return err
	}

	return nil
}

func bulkIngestedHandler(ctx context.Context, event *event.Event, cache storage.LatestReadingCache, lMessaging *logrus.Entry) error {
	result, err := helpers.GetEventBody[models.BulkIngestResult](event)
	if err != nil {
		err = fmt.Errorf("could not decode cloud event: %s", err)
		lMessaging.Error(err)
		return err
	}

	failed := 0
	for _, reading := range result.Readings {
		if err := cache.PutLatest(ctx, reading); err != nil {
			failed++
			lMessaging.Warnf("could not cache reading %s of device '%s': %s", reading.ID, reading.DeviceID, err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d readings could not be cached", failed, len(result.Readings))
	}

	lMessaging.Tracef("cached %d readings from bulk event %s", len(result.Readings), event.ID())
	return nil
}
