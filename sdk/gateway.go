package sdk

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/errs"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/resources"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/services"
)

type httpTelemetryClient struct {
	client *resty.Client
}

func NewHttpTelemetryClient(client *resty.Client) services.TelemetryService {
	return &httpTelemetryClient{
		client: client,
	}
}

func (cli *httpTelemetryClient) IngestOne(ctx context.Context, input services.IngestOneInput) (*models.SensorReading, error) {
	reading, err := Post[models.SensorReading](newRequest(ctx, cli.client, input.TenantID), "/gateway/sensor-data", input.Reading, map[int][]error{})
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

func (cli *httpTelemetryClient) IngestBulk(ctx context.Context, input services.IngestBulkInput) (*models.BulkIngestResult, error) {
	resp, err := Post[resources.BulkIngestResponse](newRequest(ctx, cli.client, input.TenantID), "/gateway/sensor-data/bulk", resources.BulkSensorDataBody{
		Readings: input.Readings,
	}, map[int][]error{})
	if err != nil {
		return nil, err
	}
	return &models.BulkIngestResult{Processed: resp.Processed, Failed: resp.Failed}, nil
}

func (cli *httpTelemetryClient) IngestMetric(ctx context.Context, input services.IngestMetricInput) (*models.EquipmentMetric, error) {
	metric, err := Post[models.EquipmentMetric](newRequest(ctx, cli.client, input.TenantID), "/gateway/equipment-metrics", input.Metric, map[int][]error{})
	if err != nil {
		return nil, err
	}
	return &metric, nil
}

func (cli *httpTelemetryClient) IngestMetricsBulk(ctx context.Context, input services.IngestMetricsBulkInput) (*models.BulkIngestResult, error) {
	resp, err := Post[resources.BulkIngestResponse](newRequest(ctx, cli.client, input.TenantID), "/gateway/equipment-metrics/bulk", resources.BulkEquipmentMetricsBody{
		Metrics: input.Metrics,
	}, map[int][]error{})
	if err != nil {
		return nil, err
	}
	return &models.BulkIngestResult{Processed: resp.Processed, Failed: resp.Failed}, nil
}

// RecordStatus has no HTTP route. Devices report status over the broker.
func (cli *httpTelemetryClient) RecordStatus(ctx context.Context, input services.RecordStatusInput) (*models.DeviceStatusLog, error) {
	return nil, fmt.Errorf("device status reports are only accepted over the broker")
}

func (cli *httpTelemetryClient) GetRealtimeData(ctx context.Context, input services.GetRealtimeDataInput) ([]models.SensorReading, error) {
	r := newRequest(ctx, cli.client, input.TenantID)
	if len(input.DeviceIDs) > 0 {
		r.SetQueryParam("deviceIds", strings.Join(input.DeviceIDs, ","))
	}
	if len(input.SensorTypes) > 0 {
		sensorTypes := make([]string, 0, len(input.SensorTypes))
		for _, st := range input.SensorTypes {
			sensorTypes = append(sensorTypes, string(st))
		}
		r.SetQueryParam("sensorTypes", strings.Join(sensorTypes, ","))
	}
	setWindowParams(r, input.TimeRange, input.Limit)

	resp, err := Get[resources.RealtimeDataResponse](r, "/gateway/realtime-data", map[int][]error{})
	if err != nil {
		return nil, err
	}
	return resp.Readings, nil
}

func (cli *httpTelemetryClient) GetRealtimeMetrics(ctx context.Context, input services.GetRealtimeMetricsInput) ([]models.EquipmentMetric, error) {
	r := newRequest(ctx, cli.client, input.TenantID)
	if len(input.EquipmentIDs) > 0 {
		r.SetQueryParam("equipmentIds", strings.Join(input.EquipmentIDs, ","))
	}
	setWindowParams(r, input.TimeRange, input.Limit)

	resp, err := Get[resources.RealtimeMetricsResponse](r, "/gateway/realtime-metrics", map[int][]error{})
	if err != nil {
		return nil, err
	}
	return resp.Metrics, nil
}

func setWindowParams(r *resty.Request, timeRange string, limit int) {
	if timeRange != "" {
		r.SetQueryParam("timeRange", timeRange)
	}
	if limit > 0 {
		r.SetQueryParam("limit", strconv.Itoa(limit))
	}
}

func (cli *httpTelemetryClient) ValidateReading(ctx context.Context, input services.ValidateReadingInput) (*models.ValidationResult, error) {
	result, err := Post[models.ValidationResult](newRequest(ctx, cli.client, ""), "/gateway/validate-sensor-data", input.Reading, map[int][]error{})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

type httpGatewayClient struct {
	client *resty.Client
}

func NewHttpGatewayClient(client *resty.Client) services.GatewayService {
	return &httpGatewayClient{
		client: client,
	}
}

func (cli *httpGatewayClient) GetStatus(ctx context.Context) (*models.GatewayStatus, error) {
	status, err := Get[models.GatewayStatus](newRequest(ctx, cli.client, ""), "/gateway/status", map[int][]error{})
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (cli *httpGatewayClient) GetDeviceStatus(ctx context.Context, input services.GetDeviceStatusInput) (*models.DeviceStatusView, error) {
	path := fmt.Sprintf("/gateway/devices/%s/status", url.PathEscape(input.DeviceID))
	view, err := Get[models.DeviceStatusView](newRequest(ctx, cli.client, input.TenantID), path, map[int][]error{
		404: {errs.ErrDeviceNotFound},
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (cli *httpGatewayClient) SendCommand(ctx context.Context, input services.SendCommandInput) (*models.DeviceCommand, error) {
	r := newRequest(ctx, cli.client, input.TenantID)
	if input.Protocol != "" {
		r.SetQueryParam("protocol", string(input.Protocol))
	}

	path := fmt.Sprintf("/gateway/devices/%s/commands", url.PathEscape(input.DeviceID))
	resp, err := Post[resources.SendCommandResponse](r, path, input.Command, map[int][]error{
		503: {errs.ErrBrokerNotConnected},
	})
	if err != nil {
		return nil, err
	}
	return &resp.Command, nil
}

func (cli *httpGatewayClient) PublishToTopic(ctx context.Context, input services.PublishToTopicInput) error {
	_, err := Post[resources.PublishToTopicResponse](newRequest(ctx, cli.client, ""), "/gateway/broker/publish", resources.PublishToTopicBody{
		Topic:   input.Topic,
		Payload: input.Payload,
	}, map[int][]error{
		503: {errs.ErrBrokerNotConnected},
	})
	return err
}

func (cli *httpGatewayClient) AcknowledgeAlert(ctx context.Context, input services.AcknowledgeAlertInput) (*models.Alert, error) {
	path := fmt.Sprintf("/gateway/alerts/%s/acknowledge", url.PathEscape(input.ID))
	alert, err := Post[models.Alert](newRequest(ctx, cli.client, input.TenantID), path, resources.AcknowledgeAlertBody{
		AcknowledgedBy: input.AcknowledgedBy,
	}, map[int][]error{
		404: {errs.ErrAlertNotFound},
		409: {errs.ErrAlertInvalidStatus},
	})
	if err != nil {
		return nil, err
	}
	return &alert, nil
}
