package sdk

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lamassuiot/lamassu-iot-gateway/backend/pkg/routes"
	"github.com/lamassuiot/lamassu-iot-gateway/core"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/config"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/errs"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/services"
	svcmock "github.com/lamassuiot/lamassu-iot-gateway/core/pkg/services/mock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type sdkTestEnv struct {
	telemetry    *svcmock.MockTelemetryService
	gateway      *svcmock.MockGatewayService
	telemetryCli services.TelemetryService
	gatewayCli   services.GatewayService
	clientConfig config.HTTPClient
	server       *httptest.Server
}

func newSDKTestEnv(t *testing.T) *sdkTestEnv {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	lEntry := logger.WithField("subsystem", "SDK")

	env := &sdkTestEnv{
		telemetry: new(svcmock.MockTelemetryService),
		gateway:   new(svcmock.MockGatewayService),
	}

	engine := routes.NewGinEngine(lEntry, "default-tenant")
	routes.NewGatewayHTTPLayer(lEntry, engine.Group("/api/v1"), env.telemetry, env.gateway)
	env.server = httptest.NewServer(engine)
	t.Cleanup(env.server.Close)

	srvURL, err := url.Parse(env.server.URL)
	if err != nil {
		t.Fatalf("could not parse test server url: %s", err)
	}
	host, portStr, _ := net.SplitHostPort(srvURL.Host)
	port, _ := strconv.Atoi(portStr)

	env.clientConfig = config.HTTPClient{
		Protocol: config.HTTP,
		BasePath: "/api/v1",
		TenantID: "tenant-a",
		Timeout:  "5s",
		BasicConnection: config.BasicConnection{
			Hostname: host,
			Port:     port,
		},
	}

	client, err := BuildHTTPClient(env.clientConfig, lEntry)
	if err != nil {
		t.Fatalf("could not build http client: %s", err)
	}

	env.telemetryCli = NewHttpTelemetryClient(client)
	env.gatewayCli = NewHttpGatewayClient(client)
	return env
}

func float(v float64) *float64 {
	return &v
}

func TestBuildURL(t *testing.T) {
	u := BuildURL(config.HTTPClient{
		Protocol: config.HTTPS,
		BasePath: "/api/v1",
		BasicConnection: config.BasicConnection{
			Hostname: "gateway.local",
			Port:     8443,
		},
	})
	assert.Equal(t, "https://gateway.local:8443/api/v1", u)
}

func TestBuildHTTPClientInvalidTimeout(t *testing.T) {
	_, err := BuildHTTPClient(config.HTTPClient{Protocol: config.HTTP, Timeout: "soon"}, logrus.NewEntry(logrus.New()))
	assert.Error(t, err)
}

func TestIngestOneOverHTTP(t *testing.T) {
	env := newSDKTestEnv(t)

	stored := &models.SensorReading{
		ID:         "r-1",
		DeviceID:   "dev-1",
		SensorType: models.SensorTemperature,
		Value:      21.5,
		TenantID:   "tenant-a",
		Timestamp:  time.Now().UTC().Truncate(time.Second),
	}
	env.telemetry.On("IngestOne", mock.Anything, mock.MatchedBy(func(in services.IngestOneInput) bool {
		return in.TenantID == "tenant-a" && in.Reading.DeviceID == "dev-1" && *in.Reading.Value == 21.5
	})).Return(stored, nil)

	reading, err := env.telemetryCli.IngestOne(context.Background(), services.IngestOneInput{
		Reading: models.RawSensorReading{
			DeviceID:        "dev-1",
			SensorType:      "temperature",
			MeasurementType: "ambient",
			Value:           float(21.5),
		},
	})
	assert.NoError(t, err)
	assert.Equal(t, "r-1", reading.ID)
	assert.Equal(t, models.SensorTemperature, reading.SensorType)
	assert.True(t, stored.Timestamp.Equal(reading.Timestamp))
}

func TestIngestOneOverHTTPTenantOverride(t *testing.T) {
	env := newSDKTestEnv(t)

	env.telemetry.On("IngestOne", mock.Anything, mock.MatchedBy(func(in services.IngestOneInput) bool {
		return in.TenantID == "tenant-b"
	})).Return(&models.SensorReading{ID: "r-2", TenantID: "tenant-b"}, nil)

	reading, err := env.telemetryCli.IngestOne(context.Background(), services.IngestOneInput{
		Reading:  models.RawSensorReading{DeviceID: "dev-1", SensorType: "humidity", MeasurementType: "relative", Value: float(40)},
		TenantID: "tenant-b",
	})
	assert.NoError(t, err)
	assert.Equal(t, "tenant-b", reading.TenantID)
}

func TestIngestOneOverHTTPValidationError(t *testing.T) {
	env := newSDKTestEnv(t)

	env.telemetry.On("IngestOne", mock.Anything, mock.Anything).
		Return((*models.SensorReading)(nil), errs.NewValidationError("deviceId is required", "value is required"))

	_, err := env.telemetryCli.IngestOne(context.Background(), services.IngestOneInput{
		Reading: models.RawSensorReading{SensorType: "temperature"},
	})
	assert.True(t, errors.Is(err, errs.ErrValidation))

	var vErr *errs.ValidationError
	if assert.True(t, errors.As(err, &vErr)) {
		assert.Equal(t, []string{"deviceId is required", "value is required"}, vErr.Reasons)
	}
}

func TestIngestBulkOverHTTP(t *testing.T) {
	env := newSDKTestEnv(t)

	env.telemetry.On("IngestBulk", mock.Anything, mock.MatchedBy(func(in services.IngestBulkInput) bool {
		return len(in.Readings) == 2
	})).Return(&models.BulkIngestResult{Processed: 1, Failed: 1}, nil)

	result, err := env.telemetryCli.IngestBulk(context.Background(), services.IngestBulkInput{
		Readings: []models.RawSensorReading{
			{DeviceID: "dev-1", SensorType: "temperature", MeasurementType: "ambient", Value: float(20)},
			{DeviceID: "dev-2", SensorType: "temperature", MeasurementType: "ambient"},
		},
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Failed)
}

func TestIngestMetricsOverHTTP(t *testing.T) {
	env := newSDKTestEnv(t)

	env.telemetry.On("IngestMetric", mock.Anything, mock.Anything).
		Return(&models.EquipmentMetric{ID: "m-1", EquipmentID: "pump-1", MetricName: "pressure", MetricValue: 3.2}, nil)
	env.telemetry.On("IngestMetricsBulk", mock.Anything, mock.Anything).
		Return(&models.BulkIngestResult{Processed: 2}, nil)

	metric, err := env.telemetryCli.IngestMetric(context.Background(), services.IngestMetricInput{
		Metric: models.RawEquipmentMetric{EquipmentID: "pump-1", MetricName: "pressure", MetricValue: float(3.2)},
	})
	assert.NoError(t, err)
	assert.Equal(t, "m-1", metric.ID)

	result, err := env.telemetryCli.IngestMetricsBulk(context.Background(), services.IngestMetricsBulkInput{
		Metrics: []models.RawEquipmentMetric{
			{EquipmentID: "pump-1", MetricName: "pressure", MetricValue: float(3.2)},
			{EquipmentID: "pump-1", MetricName: "flow", MetricValue: float(11)},
		},
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 0, result.Failed)
}

func TestRecordStatusNotExposed(t *testing.T) {
	env := newSDKTestEnv(t)

	_, err := env.telemetryCli.RecordStatus(context.Background(), services.RecordStatusInput{DeviceID: "dev-1"})
	assert.Error(t, err)
	env.telemetry.AssertNotCalled(t, "RecordStatus", mock.Anything, mock.Anything)
}

func TestGetRealtimeDataOverHTTP(t *testing.T) {
	env := newSDKTestEnv(t)

	env.telemetry.On("GetRealtimeData", mock.Anything, mock.MatchedBy(func(in services.GetRealtimeDataInput) bool {
		return assert.ObjectsAreEqual([]string{"dev-1", "dev-2"}, in.DeviceIDs) &&
			assert.ObjectsAreEqual([]models.SensorType{models.SensorTemperature}, in.SensorTypes) &&
			in.TimeRange == "24h" && in.Limit == 10
	})).Return([]models.SensorReading{{ID: "r-1"}, {ID: "r-2"}}, nil)

	readings, err := env.telemetryCli.GetRealtimeData(context.Background(), services.GetRealtimeDataInput{
		DeviceIDs:   []string{"dev-1", "dev-2"},
		SensorTypes: []models.SensorType{models.SensorTemperature},
		TimeRange:   "24h",
		Limit:       10,
	})
	assert.NoError(t, err)
	assert.Len(t, readings, 2)
}

func TestGetRealtimeMetricsOverHTTP(t *testing.T) {
	env := newSDKTestEnv(t)

	env.telemetry.On("GetRealtimeMetrics", mock.Anything, mock.MatchedBy(func(in services.GetRealtimeMetricsInput) bool {
		return assert.ObjectsAreEqual([]string{"pump-1"}, in.EquipmentIDs)
	})).Return([]models.EquipmentMetric{{ID: "m-1", EquipmentID: "pump-1", MetricName: "pressure", MetricValue: 2}}, nil)

	metrics, err := env.telemetryCli.GetRealtimeMetrics(context.Background(), services.GetRealtimeMetricsInput{
		EquipmentIDs: []string{"pump-1"},
	})
	assert.NoError(t, err)
	assert.Len(t, metrics, 1)
}

func TestValidateReadingOverHTTP(t *testing.T) {
	env := newSDKTestEnv(t)

	env.telemetry.On("ValidateReading", mock.Anything, mock.Anything).
		Return(&models.ValidationResult{Valid: false, Errors: []string{"Temperature value must be between -273.15 and 1000"}}, nil)

	result, err := env.telemetryCli.ValidateReading(context.Background(), services.ValidateReadingInput{
		Reading: models.RawSensorReading{DeviceID: "dev-1", SensorType: "temperature"},
	})
	assert.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"Temperature value must be between -273.15 and 1000"}, result.Errors)
}

func TestGetStatusOverHTTP(t *testing.T) {
	env := newSDKTestEnv(t)

	env.gateway.On("GetStatus", mock.Anything).Return(&models.GatewayStatus{
		Broker: models.BrokerStatus{Connected: true},
	}, nil)

	status, err := env.gatewayCli.GetStatus(context.Background())
	assert.NoError(t, err)
	assert.True(t, status.Broker.Connected)
}

func TestGetDeviceStatusOverHTTP(t *testing.T) {
	var testcases = []struct {
		name   string
		before func(env *sdkTestEnv)
		check  func(t *testing.T, view *models.DeviceStatusView, err error)
	}{
		{
			name: "found",
			before: func(env *sdkTestEnv) {
				env.gateway.On("GetDeviceStatus", mock.Anything, services.GetDeviceStatusInput{DeviceID: "dev-1", TenantID: "tenant-a"}).
					Return(&models.DeviceStatusView{Device: &models.Device{ExternalID: "dev-1", Status: models.DeviceActive}}, nil)
			},
			check: func(t *testing.T, view *models.DeviceStatusView, err error) {
				assert.NoError(t, err)
				assert.Equal(t, "dev-1", view.Device.ExternalID)
			},
		},
		{
			name: "not found",
			before: func(env *sdkTestEnv) {
				env.gateway.On("GetDeviceStatus", mock.Anything, mock.Anything).
					Return((*models.DeviceStatusView)(nil), errs.ErrDeviceNotFound)
			},
			check: func(t *testing.T, view *models.DeviceStatusView, err error) {
				assert.Nil(t, view)
				assert.ErrorIs(t, err, errs.ErrDeviceNotFound)
			},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			env := newSDKTestEnv(t)
			tc.before(env)

			view, err := env.gatewayCli.GetDeviceStatus(context.Background(), services.GetDeviceStatusInput{DeviceID: "dev-1"})
			tc.check(t, view, err)
		})
	}
}

func TestSendCommandOverHTTP(t *testing.T) {
	env := newSDKTestEnv(t)

	env.gateway.On("SendCommand", mock.Anything, mock.MatchedBy(func(in services.SendCommandInput) bool {
		return in.DeviceID == "dev-1" && in.Protocol == models.ProtocolHTTP && in.Command["action"] == "reboot"
	})).Return(&models.DeviceCommand{ID: "c-1", DeviceID: "dev-1", Protocol: models.ProtocolHTTP, Command: map[string]any{"action": "reboot"}}, nil)
	env.gateway.On("SendCommand", mock.Anything, mock.MatchedBy(func(in services.SendCommandInput) bool {
		return in.Protocol == models.ProtocolBroker
	})).Return((*models.DeviceCommand)(nil), errs.ErrBrokerNotConnected)

	cmd, err := env.gatewayCli.SendCommand(context.Background(), services.SendCommandInput{
		DeviceID: "dev-1",
		Command:  map[string]any{"action": "reboot"},
		Protocol: models.ProtocolHTTP,
	})
	assert.NoError(t, err)
	assert.Equal(t, "c-1", cmd.ID)
	assert.Equal(t, models.ProtocolHTTP, cmd.Protocol)

	_, err = env.gatewayCli.SendCommand(context.Background(), services.SendCommandInput{
		DeviceID: "dev-1",
		Command:  map[string]any{"action": "reboot"},
	})
	assert.ErrorIs(t, err, errs.ErrBrokerNotConnected)
}

func TestPublishToTopicOverHTTP(t *testing.T) {
	env := newSDKTestEnv(t)

	env.gateway.On("PublishToTopic", mock.Anything, mock.MatchedBy(func(in services.PublishToTopicInput) bool {
		return in.Topic == "devices/dev-1/config"
	})).Return(nil)
	env.gateway.On("PublishToTopic", mock.Anything, mock.MatchedBy(func(in services.PublishToTopicInput) bool {
		return in.Topic == "offline/topic"
	})).Return(errs.ErrBrokerNotConnected)

	err := env.gatewayCli.PublishToTopic(context.Background(), services.PublishToTopicInput{
		Topic:   "devices/dev-1/config",
		Payload: map[string]any{"interval": 30},
	})
	assert.NoError(t, err)

	err = env.gatewayCli.PublishToTopic(context.Background(), services.PublishToTopicInput{Topic: "offline/topic"})
	assert.ErrorIs(t, err, errs.ErrBrokerNotConnected)
}

func TestAcknowledgeAlertOverHTTP(t *testing.T) {
	var testcases = []struct {
		name        string
		returnAlert *models.Alert
		returnErr   error
		expectedErr error
	}{
		{name: "acknowledged", returnAlert: &models.Alert{ID: "a-1", Status: models.AlertAcknowledged, AcknowledgedBy: "ops"}},
		{name: "not found", returnErr: errs.ErrAlertNotFound, expectedErr: errs.ErrAlertNotFound},
		{name: "not open", returnErr: errs.ErrAlertInvalidStatus, expectedErr: errs.ErrAlertInvalidStatus},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			env := newSDKTestEnv(t)
			env.gateway.On("AcknowledgeAlert", mock.Anything, services.AcknowledgeAlertInput{
				ID:             "a-1",
				TenantID:       "tenant-a",
				AcknowledgedBy: "ops",
			}).Return(tc.returnAlert, tc.returnErr)

			alert, err := env.gatewayCli.AcknowledgeAlert(context.Background(), services.AcknowledgeAlertInput{
				ID:             "a-1",
				AcknowledgedBy: "ops",
			})
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, models.AlertAcknowledged, alert.Status)
		})
	}
}

func TestRequestIDPropagation(t *testing.T) {
	env := newSDKTestEnv(t)

	env.gateway.On("GetStatus", mock.MatchedBy(func(ctx context.Context) bool {
		reqID, _ := ctx.Value(core.LamassuContextKeyRequestID).(string)
		return reqID == "req-42"
	})).Return(&models.GatewayStatus{}, nil)

	ctx := context.WithValue(context.Background(), core.LamassuContextKeyRequestID, "req-42")
	_, err := env.gatewayCli.GetStatus(ctx)
	assert.NoError(t, err)
}

func TestNonOKResponseToError(t *testing.T) {
	err := nonOKResponseToError(400, []byte(`{"err":"struct validation error"}`), nil)
	assert.Equal(t, errs.ErrValidateBadRequest, err)

	err = nonOKResponseToError(400, []byte(`{"err":"invalid character"}`), nil)
	assert.ErrorIs(t, err, errs.ErrValidateBadRequest)

	err = nonOKResponseToError(500, []byte(`not json`), nil)
	assert.Error(t, err)

	err = nonOKResponseToError(404, []byte(`{"err":"device not found"}`), map[int][]error{404: {errors.New("device not found")}})
	assert.EqualError(t, err, "device not found")
}
