package builder

import (
	"fmt"

	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/engines/eventbus"
	"github.com/lamassuiot/lamassu-iot-gateway/engines/eventbus/amqp"
	"github.com/lamassuiot/lamassu-iot-gateway/engines/eventbus/channel"
	"github.com/sirupsen/logrus"
)

func BuildEventBusEngine(provider string, config interface{}, serviceId string, logger *logrus.Entry) (eventbus.EventBusEngine, error) {
	engine, err := eventbus.GetEventBusEngine(provider, config, serviceId, logger)
	if err != nil {
		return nil, err
	}

	if engine == nil {
		return nil, fmt.Errorf("event bus provider '%s' not supported", provider)
	}

	return engine, nil
}

func init() {
	amqp.Register()
	channel.Register()
}
