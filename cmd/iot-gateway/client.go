package main

import (
	"encoding/json"
	"fmt"
	"os"

	cconfig "github.com/lamassuiot/lamassu-iot-gateway/core/pkg/config"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/helpers"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/services"
	"github.com/lamassuiot/lamassu-iot-gateway/sdk"
	"github.com/spf13/cobra"
)

var clientConf = cconfig.HTTPClient{
	LogLevel: cconfig.Warn,
	Protocol: cconfig.HTTP,
	Timeout:  "10s",
	BasicConnection: cconfig.BasicConnection{
		Hostname: "localhost",
		Port:     8085,
	},
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "iot-gateway",
		Short:         "Lamassu IoT data ingestion and alerting gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&clientConf.Hostname, "host", clientConf.Hostname, "gateway API hostname")
	flags.IntVar(&clientConf.Port, "port", clientConf.Port, "gateway API port")
	flags.StringVar((*string)(&clientConf.Protocol), "protocol", string(clientConf.Protocol), "gateway API protocol (http or https)")
	flags.StringVar(&clientConf.BasePath, "base-path", clientConf.BasePath, "gateway API base path")
	flags.StringVar(&clientConf.TenantID, "tenant", clientConf.TenantID, "tenant sent in the x-tenant-id header")
	flags.StringVar(&clientConf.Timeout, "timeout", clientConf.Timeout, "request timeout")
	flags.BoolVar(&clientConf.InsecureSkipVerify, "insecure", false, "skip TLS certificate verification")
	flags.StringVar(&clientConf.CACertificateFile, "ca-cert", "", "CA certificate used to verify the gateway API")
	flags.StringVar((*string)(&clientConf.LogLevel), "log-level", string(clientConf.LogLevel), "client log level")

	root.AddCommand(newServeCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newSendCommandCmd())

	return root
}

func newGatewayClient() (services.GatewayService, error) {
	lClient := helpers.SetupLogger(clientConf.LogLevel, "IoT Gateway", "LMS SDK - Gateway Client")
	httpCli, err := sdk.BuildHTTPClient(clientConf, lClient)
	if err != nil {
		return nil, fmt.Errorf("could not build HTTP Gateway Client: %w", err)
	}

	return sdk.NewHttpGatewayClient(httpCli), nil
}

func newStatusCmd() *cobra.Command {
	var deviceID string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show gateway or device status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := newGatewayClient()
			if err != nil {
				return err
			}

			if deviceID != "" {
				view, err := cli.GetDeviceStatus(cmd.Context(), services.GetDeviceStatusInput{
					DeviceID: deviceID,
					TenantID: clientConf.TenantID,
				})
				if err != nil {
					return fmt.Errorf("could not get device %s status: %w", deviceID, err)
				}
				return printJSON(view)
			}

			status, err := cli.GetStatus(cmd.Context())
			if err != nil {
				return fmt.Errorf("could not get gateway status: %w", err)
			}
			return printJSON(status)
		},
	}

	cmd.Flags().StringVarP(&deviceID, "device", "d", "", "show the status of a single device")
	return cmd
}

func newSendCommandCmd() *cobra.Command {
	var protocol string
	var payload string

	cmd := &cobra.Command{
		Use:   "send-command <device-id>",
		Short: "Send a command to a device",
		Example: `  iot-gateway send-command sensor-001 --payload '{"action":"reboot"}'
  iot-gateway send-command sensor-001 --via http --payload '{"interval":30}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			command := map[string]any{}
			if err := json.Unmarshal([]byte(payload), &command); err != nil {
				return fmt.Errorf("command payload must be a JSON object: %w", err)
			}

			cli, err := newGatewayClient()
			if err != nil {
				return err
			}

			sent, err := cli.SendCommand(cmd.Context(), services.SendCommandInput{
				DeviceID: args[0],
				Command:  command,
				Protocol: models.Protocol(protocol),
				TenantID: clientConf.TenantID,
			})
			if err != nil {
				return fmt.Errorf("could not send command to %s: %w", args[0], err)
			}
			return printJSON(sent)
		},
	}

	cmd.Flags().StringVar(&protocol, "via", string(models.ProtocolBroker), "delivery protocol (broker or http)")
	cmd.Flags().StringVar(&payload, "payload", "{}", "command as a JSON object")
	return cmd
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
