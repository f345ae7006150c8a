package mqtt

import (
	"testing"
	"time"

	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/config"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/engines/broker"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokerURL(t *testing.T) {
	conf := config.MQTTBroker{}
	conf.Hostname = "mosquitto"
	conf.Port = 1883
	assert.Equal(t, "tcp://mosquitto:1883", BrokerURL(conf))

	conf.Protocol = config.MQTTS
	conf.Port = 8883
	assert.Equal(t, "ssl://mosquitto:8883", BrokerURL(conf))
}

func TestClientOptionsDefaults(t *testing.T) {
	conf := config.MQTTBroker{ClientID: "gw-1", Username: "gw", Password: "secret"}
	conf.Hostname = "localhost"
	conf.Port = 1883

	conn := NewPahoConnection(logrus.NewEntry(logrus.New()), conf)
	opts, err := conn.clientOptions(broker.ConnectionHandlers{})
	require.NoError(t, err)

	assert.Equal(t, "gw-1", opts.ClientID)
	assert.Equal(t, "gw", opts.Username)
	assert.Equal(t, DefaultConnectTimeout, opts.ConnectTimeout)
	assert.Equal(t, DefaultReconnectInterval, opts.MaxReconnectInterval)
	assert.Equal(t, DefaultReconnectInterval, opts.ConnectRetryInterval)
	assert.Equal(t, int64(60), opts.KeepAlive)
	assert.True(t, opts.AutoReconnect)
	require.Len(t, opts.Servers, 1)
	assert.Equal(t, "localhost:1883", opts.Servers[0].Host)
}

func TestClientOptionsReconnectInterval(t *testing.T) {
	conf := config.MQTTBroker{ReconnectInterval: 2 * time.Second}
	conn := NewPahoConnection(logrus.NewEntry(logrus.New()), conf)

	opts, err := conn.clientOptions(broker.ConnectionHandlers{})
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, opts.MaxReconnectInterval)
}

func TestClientOptionsMissingCA(t *testing.T) {
	conf := config.MQTTBroker{Protocol: config.MQTTS}
	conf.CACertificateFile = "/nonexistent/ca.pem"
	conn := NewPahoConnection(logrus.NewEntry(logrus.New()), conf)

	_, err := conn.clientOptions(broker.ConnectionHandlers{})
	assert.Error(t, err)
}

func TestNotConnectedBeforeConnect(t *testing.T) {
	conn := NewPahoConnection(logrus.NewEntry(logrus.New()), config.MQTTBroker{})
	assert.False(t, conn.IsConnected())
	assert.Error(t, conn.Publish("a/b", 0, false, []byte("x")))
	assert.Error(t, conn.Subscribe("a/b", 0, func(string, []byte) {}))
	conn.Disconnect(0)
}
