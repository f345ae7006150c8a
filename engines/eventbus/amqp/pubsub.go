package amqp

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/ThreeDotsLabs/watermill-amqp/v2/pkg/amqp"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/engines/eventbus"
	"github.com/sirupsen/logrus"
)

func amqpURL(conf AMQPConnection) string {
	userPassUrlPrefix := ""
	if conf.BasicAuth.Enabled {
		userPassUrlPrefix = fmt.Sprintf("%s:%s@", url.PathEscape(conf.BasicAuth.Username), url.PathEscape(string(conf.BasicAuth.Password)))
	}

	protocol := conf.Protocol
	if protocol == "" {
		protocol = AMQP
	}

	return fmt.Sprintf("%s://%s%s:%d", protocol, userPassUrlPrefix, conf.Hostname, conf.Port)
}

func amqpConfig(conf AMQPConnection, serviceID string, logger *logrus.Entry) (*amqp.Config, error) {
	amqpConfig := amqp.NewDurablePubSubConfig(amqpURL(conf), amqp.GenerateQueueNameTopicNameWithSuffix(serviceID))

	amqpTlsConfig := tls.Config{}
	certPool, err := x509.SystemCertPool()
	if err != nil {
		certPool = x509.NewCertPool()
	}

	if conf.CACertificateFile != "" {
		pem, err := os.ReadFile(conf.CACertificateFile)
		if err != nil {
			logger.Warnf("could not read AMQP CA certificate %s: %s", conf.CACertificateFile, err)
		} else {
			certPool.AppendCertsFromPEM(pem)
		}
	}
	amqpTlsConfig.RootCAs = certPool

	if conf.InsecureSkipVerify {
		logger.Debugf("tls InsecureSkipVerify set")
		amqpTlsConfig.InsecureSkipVerify = true
	}

	if conf.ClientTLSAuth.Enabled {
		logger.Debugf("tls loading mTLS client auth")
		clientTLSCerts, err := tls.LoadX509KeyPair(conf.ClientTLSAuth.CertFile, conf.ClientTLSAuth.KeyFile)
		if err != nil {
			logger.Errorf("could not load AMQP client TLS certificate or key: %s", err)
			return nil, err
		}

		amqpTlsConfig.Certificates = append(amqpTlsConfig.Certificates, clientTLSCerts)
	}

	amqpConfig.Connection.TLSConfig = &amqpTlsConfig
	amqpConfig.Exchange = amqp.ExchangeConfig{
		GenerateName: func(topic string) string {
			if conf.Exchange != "" {
				return conf.Exchange
			}
			return DefaultExchange
		},
		Type:    "topic",
		Durable: true,
	}

	amqpConfig.QueueBind = amqp.QueueBindConfig{
		GenerateRoutingKey: func(topic string) string {
			suf := fmt.Sprintf("_%s", serviceID)
			if strings.Contains(topic, suf) {
				return strings.ReplaceAll(topic, suf, "")
			}
			return topic
		},
	}

	amqpConfig.Publish = amqp.PublishConfig{
		GenerateRoutingKey: func(topic string) string {
			return topic
		},
	}

	return &amqpConfig, nil
}

func NewAMQPPub(conf AMQPConnection, serviceID string, logger *logrus.Entry) (message.Publisher, error) {
	amqpConfig, err := amqpConfig(conf, serviceID, logger)
	if err != nil {
		return nil, err
	}

	lEventBusPub := eventbus.NewLoggerAdapter(logger.WithField("subsystem-provider", "AMQP - Publisher"))

	publisher, err := amqp.NewPublisher(*amqpConfig, lEventBusPub)
	if err != nil {
		return nil, fmt.Errorf("could not create publisher: %s", err)
	}

	return publisher, nil
}

func NewAMQPSub(conf AMQPConnection, serviceID string, logger *logrus.Entry) (message.Subscriber, error) {
	amqpConfig, err := amqpConfig(conf, serviceID, logger)
	if err != nil {
		return nil, err
	}

	lEventBusSub := eventbus.NewLoggerAdapter(logger.WithField("subsystem-provider", "AMQP - Subscriber"))
	subscriber, err := amqp.NewSubscriber(*amqpConfig, lEventBusSub)
	if err != nil {
		return nil, fmt.Errorf("could not create subscriber: %s", err)
	}

	return subscriber, nil
}
