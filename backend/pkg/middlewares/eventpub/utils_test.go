package eventpub

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/lamassuiot/lamassu-iot-gateway/core"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type CloudEventPublisherMock struct {
	mock.Mock
}

func (m *CloudEventPublisherMock) PublishCloudEvent(ctx context.Context, payload interface{}) {
	m.Called(ctx, payload)
}

type serviceMock interface {
	On(method string, arguments ...interface{}) *mock.Call
	AssertExpectations(t mock.TestingT) bool
}

// EventTestConfig wires a decorator under test to a fresh service mock.
type EventTestConfig[S any, M serviceMock] struct {
	NewPublisher      func(*CloudEventPublisherMock) func(S) S
	CreateMockService func() M
}

// WithoutErrors calls method through the decorator with a succeeding mock and
// expects exactly one event of the given type carrying expectedOutput.
func WithoutErrors[S any, M serviceMock, E any, O any](t *testing.T, config EventTestConfig[S, M], method string, input E, event models.EventType, expectedOutput O) {
	checkEvent(t, config, method, input, event, expectedOutput, nil)
}

// WithErrors makes the wrapped call fail and expects no event at all.
func WithErrors[S any, M serviceMock, E any, O any](t *testing.T, config EventTestConfig[S, M], method string, input E, event models.EventType, expectedOutput O) {
	checkEvent(t, config, method, input, event, expectedOutput, errors.New("storage unavailable"))
}

func checkEvent[S any, M serviceMock, E any, O any](t *testing.T, config EventTestConfig[S, M], method string, input E, event models.EventType, output O, callErr error) {
	svc := config.CreateMockService()
	pub := new(CloudEventPublisherMock)
	wrapped := config.NewPublisher(pub)(any(svc).(S))

	svc.On(method, mock.Anything, mock.Anything).Return(output, callErr)
	pub.On("PublishCloudEvent", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Value(core.LamassuContextKeyEventType) == event
	}), output).Once()

	res := reflect.ValueOf(wrapped).MethodByName(method).Call([]reflect.Value{
		reflect.ValueOf(context.Background()),
		reflect.ValueOf(input),
	})
	returned, _ := res[1].Interface().(error)

	svc.AssertExpectations(t)
	if callErr != nil {
		assert.ErrorIs(t, returned, callErr)
		pub.AssertNotCalled(t, "PublishCloudEvent", mock.Anything, mock.Anything)
		return
	}

	assert.NoError(t, returned)
	pub.AssertExpectations(t)
}
