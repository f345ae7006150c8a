package assemblers

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/lamassuiot/lamassu-iot-gateway/backend/pkg/broker"
	"github.com/lamassuiot/lamassu-iot-gateway/backend/pkg/config"
	"github.com/lamassuiot/lamassu-iot-gateway/backend/pkg/eventbus"
	"github.com/lamassuiot/lamassu-iot-gateway/backend/pkg/jobs"
	"github.com/lamassuiot/lamassu-iot-gateway/backend/pkg/middlewares/eventpub"
	"github.com/lamassuiot/lamassu-iot-gateway/backend/pkg/routes"
	lservices "github.com/lamassuiot/lamassu-iot-gateway/backend/pkg/services"
	"github.com/lamassuiot/lamassu-iot-gateway/backend/pkg/services/handlers"
	"github.com/lamassuiot/lamassu-iot-gateway/backend/pkg/storage/builder"
	ceventbus "github.com/lamassuiot/lamassu-iot-gateway/core/pkg/engines/eventbus"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/engines/storage"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/helpers"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/services"
	"github.com/lamassuiot/lamassu-iot-gateway/engines/broker/mqtt"
	"github.com/lamassuiot/lamassu-iot-gateway/engines/cache/redis"
	log "github.com/sirupsen/logrus"
)

const serviceName = "IoT Gateway"

// Gateway holds every running piece of the gateway process.
type Gateway struct {
	TelemetryService services.TelemetryService
	LivenessService  services.LivenessService
	AlertService     services.AlertService
	GatewayService   services.GatewayService

	// Broker is nil when the MQTT broker is disabled.
	Broker *broker.Adapter

	stopFuncs []func()
}

// Stop releases resources in reverse order of creation.
func (g *Gateway) Stop() {
	for i := len(g.stopFuncs) - 1; i >= 0; i-- {
		g.stopFuncs[i]()
	}
	g.stopFuncs = nil
}

func (g *Gateway) onStop(f func()) {
	g.stopFuncs = append(g.stopFuncs, f)
}

func AssembleGatewayServiceWithHTTPServer(conf config.GatewayConfig, serviceInfo models.APIServiceInfo) (*Gateway, int, error) {
	gateway, err := AssembleGatewayService(conf)
	if err != nil {
		return nil, -1, fmt.Errorf("could not assemble IoT Gateway Service. Exiting: %s", err)
	}

	lHttp := helpers.SetupLogger(conf.Server.LogLevel, serviceName, "HTTP Server")

	httpEngine := routes.NewGinEngine(lHttp, conf.DefaultTenant)
	basePath := "/" + strings.Trim(conf.Server.BasePath, "/")
	httpGrp := httpEngine.Group(basePath)
	routes.NewGatewayHTTPLayer(lHttp, httpGrp, gateway.TelemetryService, gateway.GatewayService)

	port, err := routes.RunHttpRouter(lHttp, httpEngine, conf.Server, serviceInfo)
	if err != nil {
		gateway.Stop()
		return nil, -1, fmt.Errorf("could not run IoT Gateway http server: %s", err)
	}

	return gateway, port, nil
}

func AssembleGatewayService(conf config.GatewayConfig) (*Gateway, error) {
	lSvc := helpers.SetupLogger(conf.Logs.Level, serviceName, "Service")
	lAlerts := helpers.SetupLogger(conf.Alerting.LogLevel, serviceName, "Alerting")
	lMessaging := helpers.SetupLogger(conf.PublisherEventBus.LogLevel, serviceName, "Event Bus")
	lStorage := helpers.SetupLogger(conf.Storage.LogLevel, serviceName, "Storage")
	lTelemetryStorage := helpers.SetupLogger(conf.TelemetryStorage.LogLevel, serviceName, "Telemetry Storage")

	gateway := &Gateway{}

	engine, err := builder.BuildStorageEngine(lStorage, conf.Storage)
	if err != nil {
		return nil, fmt.Errorf("could not create storage engine: %s", err)
	}

	devStorage, err := engine.GetDeviceStorage()
	if err != nil {
		return nil, fmt.Errorf("could not get device storage: %s", err)
	}

	alertStorage, err := engine.GetAlertStorage()
	if err != nil {
		return nil, fmt.Errorf("could not get alert storage: %s", err)
	}

	statusLogStorage, err := engine.GetStatusLogStorage()
	if err != nil {
		return nil, fmt.Errorf("could not get status log storage: %s", err)
	}

	telemetryStorage, err := builder.BuildTelemetryStorage(lTelemetryStorage, conf.TelemetryStorage, engine)
	if err != nil {
		return nil, fmt.Errorf("could not get telemetry storage: %s", err)
	}

	evaluator, err := lservices.NewThresholdEvaluatorFromConfig(conf.Alerting)
	if err != nil {
		return nil, fmt.Errorf("invalid alerting configuration: %s", err)
	}

	eventBus, err := eventbus.NewEventBus(conf.PublisherEventBus, string(models.GatewayServiceName), lMessaging)
	if err != nil {
		return nil, fmt.Errorf("could not create Event Bus: %s", err)
	}

	pub, err := eventbus.NewEventBusPublisher(eventBus, lMessaging)
	if err != nil {
		return nil, fmt.Errorf("could not create Event Bus publisher: %s", err)
	}
	gateway.onStop(func() { pub.Close() })

	publisher := &eventpub.CloudEventPublisher{
		Publisher: pub,
		ServiceID: string(models.GatewayServiceName),
		Logger:    lMessaging,
	}

	alertSvc := lservices.NewAlertService(lservices.AlertServiceBuilder{
		Logger:       lAlerts,
		AlertStorage: alertStorage,
	})
	alertBackend := alertSvc.(*lservices.AlertServiceBackend)
	alertSvc = eventpub.NewAlertEventPublisher(publisher)(alertSvc)
	alertBackend.SetService(alertSvc)

	livenessSvc := lservices.NewLivenessService(lservices.LivenessServiceBuilder{
		Logger:         lSvc,
		DevicesStorage: devStorage,
	})

	telemetrySvc := lservices.NewTelemetryService(lservices.TelemetryServiceBuilder{
		Logger:           lSvc,
		TelemetryStorage: telemetryStorage,
		StatusLogStorage: statusLogStorage,
		DevicesStorage:   devStorage,
		Evaluator:        evaluator,
		AlertService:     alertSvc,
		LivenessService:  livenessSvc,
		BatchSize:        conf.Ingestion.BatchSize,
	})
	telemetryBackend := telemetrySvc.(*lservices.TelemetryServiceBackend)
	telemetrySvc = eventpub.NewTelemetryEventPublisher(publisher)(telemetrySvc)
	telemetryBackend.SetService(telemetrySvc)

	latestCache, err := assembleLatestReadingCache(conf, eventBus, pub, lMessaging, gateway)
	if err != nil {
		gateway.Stop()
		return nil, err
	}

	gatewayBuilder := lservices.GatewayServiceBuilder{
		Logger:           lSvc,
		LivenessService:  livenessSvc,
		AlertService:     alertSvc,
		TelemetryStorage: telemetryStorage,
		LatestCache:      latestCache,
	}

	if conf.Broker.Enabled {
		adapter, err := assembleBrokerAdapter(conf, telemetrySvc, livenessSvc)
		if err != nil {
			gateway.Stop()
			return nil, err
		}
		gateway.Broker = adapter
		gateway.onStop(adapter.Stop)
		gatewayBuilder.Broker = adapter
	} else {
		log.Warnf("MQTT broker is disabled. Only the HTTP ingestion path will be available")
	}

	gatewaySvc := lservices.NewGatewayService(gatewayBuilder)
	gatewayBackend := gatewaySvc.(*lservices.GatewayServiceBackend)
	gatewaySvc = eventpub.NewGatewayEventPublisher(publisher)(gatewaySvc)
	gatewayBackend.SetService(gatewaySvc)

	if conf.Liveness.Enabled {
		lJobs := helpers.SetupLogger(conf.Logs.Level, serviceName, "Jobs")
		offlineAfter := conf.Liveness.OfflineAfter
		if offlineAfter <= 0 {
			offlineAfter = config.DefaultOfflineAfter
		}

		scheduler, err := jobs.NewJobScheduler(lJobs, conf.Liveness.Frequency, jobs.NewLivenessSweepJob(livenessSvc, offlineAfter, lJobs))
		if err != nil {
			gateway.Stop()
			return nil, fmt.Errorf("could not schedule liveness sweep: %s", err)
		}
		scheduler.Start()
		gateway.onStop(scheduler.Stop)
	}

	gateway.TelemetryService = telemetrySvc
	gateway.LivenessService = livenessSvc
	gateway.AlertService = alertSvc
	gateway.GatewayService = gatewaySvc

	return gateway, nil
}

// assembleLatestReadingCache wires the redis cache to the ingestion events. A
// nil cache makes device status fall back to the telemetry storage.
func assembleLatestReadingCache(conf config.GatewayConfig, eventBus ceventbus.EventBusEngine, dlqPub message.Publisher, lMessaging *log.Entry, gateway *Gateway) (storage.LatestReadingCache, error) {
	if !conf.Cache.Enabled {
		return nil, nil
	}

	lCache := helpers.SetupLogger(conf.Cache.LogLevel, serviceName, "Cache")
	cache, err := redis.NewLatestReadingCache(lCache, conf.Cache)
	if err != nil {
		return nil, fmt.Errorf("could not create latest reading cache: %s", err)
	}
	if closer, ok := cache.(io.Closer); ok {
		gateway.onStop(func() { closer.Close() })
	}

	subscriber, err := eventbus.NewEventBusSubscriber(eventBus, lMessaging)
	if err != nil {
		return nil, fmt.Errorf("could not create Event Bus subscriber: %s", err)
	}

	eventHandler := handlers.NewLatestReadingEventHandler(lCache, cache)
	subHandler, err := ceventbus.NewEventBusMessageHandler("latest-readings", handlers.LatestReadingTopics, subscriber, dlqPub, lMessaging, *eventHandler)
	if err != nil {
		return nil, fmt.Errorf("could not create Event Bus Subscription Handler: %s", err)
	}

	err = subHandler.RunAsync()
	if err != nil {
		lMessaging.Errorf("could not run Event Bus Subscription Handler: %s", err)
		return nil, err
	}
	gateway.onStop(subHandler.Stop)

	return cache, nil
}

func assembleBrokerAdapter(conf config.GatewayConfig, telemetrySvc services.TelemetryService, livenessSvc services.LivenessService) (*broker.Adapter, error) {
	lBroker := helpers.SetupLogger(conf.Broker.LogLevel, serviceName, "Broker")

	brokerConf := conf.Broker
	if brokerConf.ClientID == "" {
		brokerConf.ClientID = fmt.Sprintf("%s-%s", models.GatewayServiceName, uuid.NewString()[:8])
	}

	adapter := broker.NewAdapter(broker.AdapterBuilder{
		Logger:           lBroker,
		Connection:       mqtt.NewPahoConnection(lBroker, brokerConf),
		TelemetryService: telemetrySvc,
		LivenessService:  livenessSvc,
		Config:           brokerConf,
		DefaultTenant:    conf.DefaultTenant,
		Workers:          conf.Ingestion.Workers,
		QueueSize:        conf.Ingestion.QueueSize,
	})

	err := adapter.Start(context.Background())
	if err != nil {
		return nil, fmt.Errorf("could not start broker adapter: %s", err)
	}

	return adapter, nil
}
