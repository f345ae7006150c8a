package models

const HttpSourceHeader = "x-lms-source"
const HttpRequestIDHeader = "x-request-id"
const HttpTenantHeader = "x-tenant-id"

const GatewaySource = "lrn://service/lamassuiot-iot-gateway"
const GatewayBrokerSource = "lrn://service/lamassuiot-iot-gateway/broker"

type EventType string

const (
	EventReadingIngestedKey     EventType = "telemetry.reading.ingested"
	EventBulkIngestedKey        EventType = "telemetry.bulk.ingested"
	EventMetricIngestedKey      EventType = "telemetry.metric.ingested"
	EventMetricsBulkIngestedKey EventType = "telemetry.metric.bulk.ingested"
	EventDeviceStatusReportKey  EventType = "device.status.reported"
	EventDeviceCommandSentKey   EventType = "device.command.sent"
	EventAlertCreatedKey        EventType = "alert.created"
	EventAlertAcknowledgedKey   EventType = "alert.acknowledged"
)
