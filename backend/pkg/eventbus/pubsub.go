package eventbus

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/lamassuiot/lamassu-iot-gateway/backend/pkg/eventbus/builder"
	cconfig "github.com/lamassuiot/lamassu-iot-gateway/core/pkg/config"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/engines/eventbus"
	"github.com/sirupsen/logrus"
)

// NewEventBus returns the engine for the configured provider. A disabled event
// bus falls back to the in-process channel engine so local consumers, like the
// latest reading cache, keep receiving events.
func NewEventBus(conf cconfig.EventBusEngine, serviceID string, logger *logrus.Entry) (eventbus.EventBusEngine, error) {
	provider := conf.Provider
	if !conf.Enabled {
		logger.Infof("event bus disabled. Events will only be delivered inside the process")
		provider = cconfig.Channel
	}

	engine, err := builder.BuildEventBusEngine(string(provider), conf.Config, serviceID, logger)
	if err != nil {
		logger.Errorf("could not generate Event Bus engine: %s", err)
		return nil, err
	}

	return engine, nil
}

func NewEventBusPublisher(engine eventbus.EventBusEngine, logger *logrus.Entry) (message.Publisher, error) {
	pub, err := engine.Publisher()
	if err != nil {
		logger.Errorf("could not generate Event Bus Publisher: %s", err)
		return nil, err
	}

	return pub, nil
}

func NewEventBusSubscriber(engine eventbus.EventBusEngine, logger *logrus.Entry) (message.Subscriber, error) {
	sub, err := engine.Subscriber()
	if err != nil {
		logger.Errorf("could not generate Event Bus Subscriber: %s", err)
		return nil, err
	}

	return sub, nil
}
