package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jakehl/goid"
	"github.com/lamassuiot/lamassu-iot-gateway/core"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/config"
	cbroker "github.com/lamassuiot/lamassu-iot-gateway/core/pkg/engines/broker"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/errs"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/helpers"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/services"
	"github.com/sirupsen/logrus"
)

const (
	DefaultWorkers   = 4
	DefaultQueueSize = 1000

	disconnectQuiesceMillis = 250
)

type inboundMessage struct {
	topic   string
	payload []byte
}

// Adapter owns the broker session. Inbound messages are queued by the
// connection callback and processed by a fixed pool of workers.
type Adapter struct {
	conn          cbroker.Connection
	telemetry     services.TelemetryService
	liveness      services.LivenessService
	logger        *logrus.Entry
	conf          config.MQTTBroker
	defaultTenant string
	workers       int

	mu      sync.RWMutex
	state   models.BrokerState
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	queue   chan inboundMessage

	received  atomic.Uint64
	processed atomic.Uint64
	failed    atomic.Uint64
	dropped   atomic.Uint64
}

type AdapterBuilder struct {
	Logger           *logrus.Entry
	Connection       cbroker.Connection
	TelemetryService services.TelemetryService
	LivenessService  services.LivenessService
	Config           config.MQTTBroker
	DefaultTenant    string
	Workers          int
	QueueSize        int
}

func NewAdapter(builder AdapterBuilder) *Adapter {
	workers := builder.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	queueSize := builder.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	return &Adapter{
		conn:          builder.Connection,
		telemetry:     builder.TelemetryService,
		liveness:      builder.LivenessService,
		logger:        builder.Logger,
		conf:          builder.Config,
		defaultTenant: builder.DefaultTenant,
		workers:       workers,
		state:         models.BrokerDisconnected,
		queue:         make(chan inboundMessage, queueSize),
	}
}

func (a *Adapter) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return fmt.Errorf("broker adapter already stopped")
	}
	if a.cancel != nil {
		a.mu.Unlock()
		return fmt.Errorf("broker adapter already started")
	}

	workersCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.state = models.BrokerConnecting
	a.mu.Unlock()

	for i := 0; i < a.workers; i++ {
		a.wg.Add(1)
		go a.work(workersCtx)
	}

	a.logger.Infof("starting broker adapter with %d workers and a queue of %d messages", a.workers, cap(a.queue))
	err := a.conn.Connect(ctx, cbroker.ConnectionHandlers{
		OnConnect:        a.onConnect,
		OnConnectionLost: a.onConnectionLost,
		OnReconnecting:   a.onReconnecting,
	})
	if err != nil {
		a.logger.Errorf("could not connect to broker: %s", err)
		a.Stop()
		return err
	}

	return nil
}

// Stop is terminal: a stopped adapter cannot be started again.
func (a *Adapter) Stop() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	a.stopped = true
	a.state = models.BrokerDisconnected
	cancel := a.cancel
	a.mu.Unlock()

	a.conn.Disconnect(disconnectQuiesceMillis)
	if cancel != nil {
		cancel()
	}
	a.wg.Wait()
	a.logger.Infof("broker adapter stopped")
}

func (a *Adapter) setState(state models.BrokerState) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	a.state = state
}

func (a *Adapter) State() models.BrokerState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

func (a *Adapter) onConnect() {
	a.mu.RLock()
	stopped := a.stopped
	a.mu.RUnlock()
	if stopped {
		return
	}

	a.logger.Infof("connected to broker %s:%d", a.conf.Hostname, a.conf.Port)

	for _, topic := range SubscriptionTopics(a.conf.Namespace) {
		err := a.conn.Subscribe(topic, a.conf.QoS, a.enqueue)
		if err != nil {
			a.logger.Errorf("could not subscribe to '%s': %s", topic, err)
			continue
		}
		a.logger.Debugf("subscribed to '%s'", topic)
	}

	a.setState(models.BrokerConnected)
}

func (a *Adapter) onConnectionLost(err error) {
	a.logger.Warnf("broker connection lost: %s", err)
	a.setState(models.BrokerReconnecting)
}

func (a *Adapter) onReconnecting() {
	a.logger.Infof("reconnecting to broker")
	a.setState(models.BrokerReconnecting)
}

// enqueue runs on the connection's read loop and never blocks.
func (a *Adapter) enqueue(topic string, payload []byte) {
	a.received.Add(1)

	select {
	case a.queue <- inboundMessage{topic: topic, payload: payload}:
	default:
		a.dropped.Add(1)
		a.logger.Warnf("inbound queue full, dropping message from '%s'", topic)
	}
}

func (a *Adapter) work(ctx context.Context) {
	defer a.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-a.queue:
			err := a.handle(msg)
			if err != nil {
				a.failed.Add(1)
				a.logger.Warnf("message from '%s' dropped: %s", msg.topic, err)
				continue
			}
			a.processed.Add(1)
		}
	}
}

// handle keeps a panicking message from taking its worker down.
func (a *Adapter) handle(msg inboundMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Errorf("panic while processing message from '%s': %v", msg.topic, r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return a.process(msg)
}

// touch marks a device as seen for messages that never reach the ingestion
// pipeline. Pipeline calls refresh liveness on their own.
func (a *Adapter) touch(tenantID, deviceID string) {
	if a.liveness == nil || tenantID == "" {
		return
	}

	err := a.liveness.Touch(a.messageContext(tenantID), services.TouchInput{
		DeviceID: deviceID,
		TenantID: tenantID,
		SeenAt:   time.Now(),
	})
	if err != nil {
		a.logger.Debugf("could not refresh liveness for device '%s': %s", deviceID, err)
	}
}

func (a *Adapter) messageContext(tenantID string) context.Context {
	ctx := context.WithValue(context.Background(), core.LamassuContextKeySource, models.GatewayBrokerSource)
	ctx = context.WithValue(ctx, core.LamassuContextKeyRequestID, fmt.Sprintf("broker.%s", goid.NewV4UUID()))
	return helpers.WithTenant(ctx, tenantID)
}

func (a *Adapter) tenantOr(payloadTenant string) string {
	if payloadTenant != "" {
		return payloadTenant
	}
	return a.defaultTenant
}

func (a *Adapter) process(msg inboundMessage) error {
	deviceID, route, err := ParseTopic(msg.topic)
	if err != nil {
		return err
	}

	switch route {
	case RouteSensorData:
		var reading models.RawSensorReading
		if err := json.Unmarshal(msg.payload, &reading); err != nil {
			a.touch(a.defaultTenant, deviceID)
			return fmt.Errorf("invalid sensor payload: %w", err)
		}

		reading.DeviceID = deviceID
		reading.Device = ""
		tenantID := a.tenantOr(reading.TenantID)
		_, err = a.telemetry.IngestOne(a.messageContext(tenantID), services.IngestOneInput{
			Reading:  reading,
			TenantID: tenantID,
		})
		return err

	case RouteEquipmentMetrics:
		var metric models.RawEquipmentMetric
		if err := json.Unmarshal(msg.payload, &metric); err != nil {
			a.touch(a.defaultTenant, deviceID)
			return fmt.Errorf("invalid metric payload: %w", err)
		}

		metric.EquipmentID = deviceID
		metric.DeviceID = ""
		tenantID := a.tenantOr(metric.TenantID)
		_, err = a.telemetry.IngestMetric(a.messageContext(tenantID), services.IngestMetricInput{
			Metric:   metric,
			TenantID: tenantID,
		})
		return err

	case RouteDeviceStatus:
		payload := map[string]any{}
		if err := json.Unmarshal(msg.payload, &payload); err != nil {
			a.touch(a.defaultTenant, deviceID)
			return fmt.Errorf("invalid status payload: %w", err)
		}

		payloadTenant, _ := payload["tenantId"].(string)
		tenantID := a.tenantOr(payloadTenant)
		_, err = a.telemetry.RecordStatus(a.messageContext(tenantID), services.RecordStatusInput{
			DeviceID: deviceID,
			Payload:  payload,
			TenantID: tenantID,
		})
		return err

	case RouteDeviceCommands:
		a.logger.Debugf("command echo for device '%s': %s", deviceID, string(msg.payload))
		a.touch(a.defaultTenant, deviceID)
		return nil
	}

	return fmt.Errorf("unhandled route '%s'", route)
}

func (a *Adapter) checkConnected() error {
	if a.State() != models.BrokerConnected || !a.conn.IsConnected() {
		return errs.ErrBrokerNotConnected
	}
	return nil
}

func (a *Adapter) PublishCommand(ctx context.Context, command models.DeviceCommand) error {
	lFunc := helpers.ConfigureLogger(ctx, a.logger)

	if err := a.checkConnected(); err != nil {
		return err
	}

	payload, err := json.Marshal(command)
	if err != nil {
		return fmt.Errorf("could not encode command: %w", err)
	}

	topic := CommandTopic(a.conf.Namespace, command.DeviceID)
	err = a.conn.Publish(topic, a.conf.QoS, false, payload)
	if err != nil {
		lFunc.Errorf("could not publish command %s on '%s': %s", command.ID, topic, err)
		return err
	}

	lFunc.Debugf("command %s published on '%s'", command.ID, topic)
	return nil
}

func (a *Adapter) PublishToTopic(ctx context.Context, topic string, payload []byte) error {
	lFunc := helpers.ConfigureLogger(ctx, a.logger)

	if err := a.checkConnected(); err != nil {
		return err
	}

	err := a.conn.Publish(topic, a.conf.QoS, false, payload)
	if err != nil {
		lFunc.Errorf("could not publish on '%s': %s", topic, err)
		return err
	}

	return nil
}

func (a *Adapter) Status() models.BrokerStatus {
	state := a.State()
	protocol := a.conf.Protocol
	if protocol == "" {
		protocol = config.MQTT
	}

	return models.BrokerStatus{
		Connected: state == models.BrokerConnected && a.conn.IsConnected(),
		State:     state,
		Config: models.BrokerInfo{
			Host:      a.conf.Hostname,
			Port:      a.conf.Port,
			Protocol:  string(protocol),
			ClientID:  a.conf.ClientID,
			Namespace: a.conf.Namespace,
			QoS:       a.conf.QoS,
		},
		Stats: models.BrokerStats{
			Received:  a.received.Load(),
			Processed: a.processed.Load(),
			Failed:    a.failed.Load(),
			Dropped:   a.dropped.Load(),
		},
	}
}
