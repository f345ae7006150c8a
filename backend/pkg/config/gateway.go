package config

import (
	"time"

	cconfig "github.com/lamassuiot/lamassu-iot-gateway/core/pkg/config"
)

type GatewayConfig struct {
	Logs              cconfig.Logging                `mapstructure:"logs"`
	Server            cconfig.HttpServer             `mapstructure:"server"`
	PublisherEventBus cconfig.EventBusEngine         `mapstructure:"publisher_event_bus"`
	Storage           cconfig.PluggableStorageEngine `mapstructure:"storage"`
	TelemetryStorage  cconfig.TelemetryStorage       `mapstructure:"telemetry_storage"`
	Cache             cconfig.RedisCache             `mapstructure:"cache"`
	Broker            cconfig.MQTTBroker             `mapstructure:"broker"`
	Ingestion         Ingestion                      `mapstructure:"ingestion"`
	Alerting          Alerting                       `mapstructure:"alerting"`
	Liveness          LivenessJob                    `mapstructure:"liveness"`
	DefaultTenant     string                         `mapstructure:"default_tenant"`
}

type Ingestion struct {
	Workers   int `mapstructure:"workers"`
	QueueSize int `mapstructure:"queue_size"`
	BatchSize int `mapstructure:"batch_size"`
}

type Alerting struct {
	LogLevel cconfig.LogLevel `mapstructure:"log_level"`
	Rules    []AlertRule      `mapstructure:"rules"`
}

// AlertRule adds or overrides the built-in rule for one sensor type.
type AlertRule struct {
	SensorType string  `mapstructure:"sensor_type"`
	Operator   string  `mapstructure:"operator"`
	Threshold  float64 `mapstructure:"threshold"`
	Severity   string  `mapstructure:"severity"`
}

type LivenessJob struct {
	Enabled      bool          `mapstructure:"enabled"`
	Frequency    string        `mapstructure:"frequency"`
	OfflineAfter time.Duration `mapstructure:"offline_after"`
}

const (
	DefaultWorkers      = 4
	DefaultQueueSize    = 1000
	DefaultBatchSize    = 100
	DefaultOfflineAfter = 15 * time.Minute
)

var DefaultGatewayConfig = GatewayConfig{
	Logs: cconfig.Logging{
		Level: cconfig.Info,
	},
	Server: cconfig.HttpServer{
		LogLevel:           cconfig.Info,
		HealthCheckLogging: false,
		ListenAddress:      "0.0.0.0",
		Port:               8085,
		Protocol:           cconfig.HTTP,
	},
	PublisherEventBus: cconfig.EventBusEngine{
		LogLevel: cconfig.Info,
		Enabled:  false,
	},
	Storage: cconfig.PluggableStorageEngine{
		LogLevel: cconfig.Info,
		Provider: cconfig.SQLite,
		SQLite: cconfig.SQLitePSEConfig{
			InMemory: true,
		},
	},
	Broker: cconfig.MQTTBroker{
		LogLevel:          cconfig.Info,
		Enabled:           false,
		Protocol:          cconfig.MQTT,
		ClientID:          "lamassu-iot-gateway",
		Namespace:         "lamassu",
		QoS:               1,
		KeepAlive:         60 * time.Second,
		ConnectTimeout:    30 * time.Second,
		ReconnectInterval: 5 * time.Second,
		CleanSession:      true,
		BasicConnection: cconfig.BasicConnection{
			Hostname: "localhost",
			Port:     1883,
		},
	},
	Ingestion: Ingestion{
		Workers:   DefaultWorkers,
		QueueSize: DefaultQueueSize,
		BatchSize: DefaultBatchSize,
	},
	Liveness: LivenessJob{
		Enabled:      true,
		Frequency:    "@every 1m",
		OfflineAfter: DefaultOfflineAfter,
	},
}
