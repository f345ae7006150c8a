package broker

import "context"

// MessageHandler is invoked from the connection's read loop. It must not block.
type MessageHandler func(topic string, payload []byte)

type ConnectionHandlers struct {
	OnConnect        func()
	OnConnectionLost func(err error)
	OnReconnecting   func()
}

// Connection is a single long-lived publish/subscribe session. Reconnection
// is the implementation's job; handlers report the transitions.
type Connection interface {
	Connect(ctx context.Context, handlers ConnectionHandlers) error
	Disconnect(quiesce uint)
	IsConnected() bool
	Subscribe(topic string, qos byte, handler MessageHandler) error
	Publish(topic string, qos byte, retained bool, payload []byte) error
}
