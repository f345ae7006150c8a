package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/config"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/engines/broker"
	"github.com/sirupsen/logrus"
)

const (
	DefaultKeepAlive         = 60 * time.Second
	DefaultConnectTimeout    = 30 * time.Second
	DefaultReconnectInterval = 5 * time.Second
	operationTimeout         = 10 * time.Second
)

type PahoConnection struct {
	logger *logrus.Entry
	conf   config.MQTTBroker
	client paho.Client
}

func NewPahoConnection(logger *logrus.Entry, conf config.MQTTBroker) *PahoConnection {
	return &PahoConnection{
		logger: logger.WithField("subsystem-provider", "MQTT - Paho"),
		conf:   conf,
	}
}

func BrokerURL(conf config.MQTTBroker) string {
	protocol := conf.Protocol
	if protocol == "" {
		protocol = config.MQTT
	}
	return fmt.Sprintf("%s://%s:%d", protocol, conf.Hostname, conf.Port)
}

func (c *PahoConnection) clientOptions(handlers broker.ConnectionHandlers) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions()
	opts.AddBroker(BrokerURL(c.conf))
	opts.SetClientID(c.conf.ClientID)
	opts.SetCleanSession(c.conf.CleanSession)
	opts.SetOrderMatters(false)

	if c.conf.Username != "" {
		opts.SetUsername(c.conf.Username)
		opts.SetPassword(string(c.conf.Password))
	}

	keepAlive := c.conf.KeepAlive
	if keepAlive == 0 {
		keepAlive = DefaultKeepAlive
	}
	opts.SetKeepAlive(keepAlive)

	connectTimeout := c.conf.ConnectTimeout
	if connectTimeout == 0 {
		connectTimeout = DefaultConnectTimeout
	}
	opts.SetConnectTimeout(connectTimeout)

	reconnectInterval := c.conf.ReconnectInterval
	if reconnectInterval == 0 {
		reconnectInterval = DefaultReconnectInterval
	}
	// auto-reconnect backs off from 1s and is capped at reconnectInterval
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(reconnectInterval)
	opts.SetMaxReconnectInterval(reconnectInterval)

	if c.conf.Protocol == config.MQTTS {
		tlsConf := &tls.Config{InsecureSkipVerify: c.conf.InsecureSkipVerify}
		if c.conf.CACertificateFile != "" {
			pem, err := os.ReadFile(c.conf.CACertificateFile)
			if err != nil {
				return nil, fmt.Errorf("could not read broker CA certificate: %w", err)
			}
			pool := x509.NewCertPool()
			pool.AppendCertsFromPEM(pem)
			tlsConf.RootCAs = pool
		}
		opts.SetTLSConfig(tlsConf)
	}

	opts.SetOnConnectHandler(func(paho.Client) {
		if handlers.OnConnect != nil {
			handlers.OnConnect()
		}
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		if handlers.OnConnectionLost != nil {
			handlers.OnConnectionLost(err)
		}
	})
	opts.SetReconnectingHandler(func(paho.Client, *paho.ClientOptions) {
		if handlers.OnReconnecting != nil {
			handlers.OnReconnecting()
		}
	})

	return opts, nil
}

// Connect returns once the first connection attempt is dispatched. With
// connect retry enabled paho keeps trying in the background.
func (c *PahoConnection) Connect(ctx context.Context, handlers broker.ConnectionHandlers) error {
	opts, err := c.clientOptions(handlers)
	if err != nil {
		return err
	}

	c.client = paho.NewClient(opts)
	c.logger.Infof("connecting to %s as '%s'", BrokerURL(c.conf), c.conf.ClientID)
	token := c.client.Connect()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-token.Done():
		return token.Error()
	case <-time.After(opts.ConnectTimeout):
		c.logger.Warnf("initial connection still pending, retrying in background")
		return nil
	}
}

func (c *PahoConnection) Disconnect(quiesce uint) {
	if c.client == nil {
		return
	}
	c.client.Disconnect(quiesce)
}

func (c *PahoConnection) IsConnected() bool {
	return c.client != nil && c.client.IsConnectionOpen()
}

func (c *PahoConnection) Subscribe(topic string, qos byte, handler broker.MessageHandler) error {
	if c.client == nil {
		return fmt.Errorf("mqtt client not initialized")
	}

	token := c.client.Subscribe(topic, qos, func(_ paho.Client, msg paho.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(operationTimeout) {
		return fmt.Errorf("subscribe to %s timed out", topic)
	}
	return token.Error()
}

func (c *PahoConnection) Publish(topic string, qos byte, retained bool, payload []byte) error {
	if c.client == nil {
		return fmt.Errorf("mqtt client not initialized")
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(operationTimeout) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	return token.Error()
}
