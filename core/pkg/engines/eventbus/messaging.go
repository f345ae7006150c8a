package eventbus

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/sirupsen/logrus"
)

const DeadLetterTopic = "lamassu-gateway-dlq"

func NewMessageRouter(logger *logrus.Entry, dlqPub message.Publisher) (*message.Router, error) {
	lEventBus := NewLoggerAdapter(logger.WithField("subsystem-provider", "EventBus - Router"))

	router, err := message.NewRouter(message.RouterConfig{}, lEventBus)
	if err != nil {
		return nil, fmt.Errorf("could not create event bus router: %s", err)
	}

	dlqMw, err := middleware.PoisonQueue(dlqPub, DeadLetterTopic)
	if err != nil {
		return nil, fmt.Errorf("could not create poison queue middleware: %s", err)
	}

	//mw are applied in order they are added. So the first one is the outermost one
	router.AddMiddleware(
		middleware.Recoverer,

		// messages Nacked more than MaxRetries end up in the dead letter topic
		dlqMw,

		middleware.CorrelationID,

		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: time.Millisecond * 500,
			MaxInterval:     time.Second * 5,
			Multiplier:      2,
			Logger:          lEventBus,
		}.Middleware,
	)

	return router, nil
}
