package models

type APIServiceInfo struct {
	Version   string
	BuildSHA  string
	BuildTime string
}

type ServiceName string

const (
	GatewayServiceName ServiceName = "iot-gateway"
)
