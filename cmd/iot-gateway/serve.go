package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lamassuiot/lamassu-iot-gateway/backend/pkg/assemblers"
	"github.com/lamassuiot/lamassu-iot-gateway/backend/pkg/config"
	cconfig "github.com/lamassuiot/lamassu-iot-gateway/core/pkg/config"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/helpers"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

func newServeCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the IoT gateway",
		Long:  `Starts the MQTT ingestion path, the HTTP API and the liveness sweep.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				os.Setenv(cconfig.ConfigFileEnvVar, configFile)
			}
			return runServe()
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", fmt.Sprintf("config file path. Overrides the %s env variable", cconfig.ConfigFileEnvVar))
	return cmd
}

func runServe() error {
	log.SetFormatter(helpers.LogFormatter)
	log.Infof("starting api: version=%s buildTime=%s sha1ver=%s", version, buildTime, sha1ver)

	conf, err := cconfig.LoadConfig[config.GatewayConfig](&config.DefaultGatewayConfig)
	if err != nil {
		return fmt.Errorf("something went wrong while loading config. Exiting: %w", err)
	}

	globalLogLevel, err := log.ParseLevel(string(conf.Logs.Level))
	if err != nil {
		log.Warn("unknown log level. defaulting to 'info' log level")
		globalLogLevel = log.InfoLevel
	}
	log.SetLevel(globalLogLevel)

	log.Infof("global log level set to '%s'", globalLogLevel)

	confBytes, err := yaml.Marshal(conf)
	if err != nil {
		return fmt.Errorf("could not dump yaml config: %w", err)
	}

	log.Debugf("===================================================")
	log.Debugf("%s", confBytes)
	log.Debugf("===================================================")

	gateway, port, err := assemblers.AssembleGatewayServiceWithHTTPServer(*conf, models.APIServiceInfo{
		Version:   version,
		BuildSHA:  sha1ver,
		BuildTime: buildTime,
	})
	if err != nil {
		return fmt.Errorf("could not run IoT Gateway. Exiting: %w", err)
	}

	log.Infof("IoT Gateway HTTP API listening on port %d", port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig

	log.Infof("received %s. shutting down", s)
	gateway.Stop()
	return nil
}
