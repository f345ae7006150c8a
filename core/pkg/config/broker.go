package config

import "time"

type MQTTProtocol string

const (
	MQTT  MQTTProtocol = "tcp"
	MQTTS MQTTProtocol = "ssl"
	MQTTW MQTTProtocol = "ws"
)

type MQTTBroker struct {
	LogLevel          LogLevel      `mapstructure:"log_level"`
	Enabled           bool          `mapstructure:"enabled"`
	Protocol          MQTTProtocol  `mapstructure:"protocol"`
	ClientID          string        `mapstructure:"client_id"`
	Username          string        `mapstructure:"username"`
	Password          Password      `mapstructure:"password"`
	Namespace         string        `mapstructure:"namespace"`
	QoS               byte          `mapstructure:"qos"`
	KeepAlive         time.Duration `mapstructure:"keep_alive"`
	ConnectTimeout    time.Duration `mapstructure:"connect_timeout"`
	ReconnectInterval time.Duration `mapstructure:"reconnect_interval"`
	CleanSession      bool          `mapstructure:"clean_session"`

	BasicConnection `mapstructure:",squash"`
}
