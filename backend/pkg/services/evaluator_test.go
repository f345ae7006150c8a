package services

import (
	"errors"
	"testing"

	"github.com/lamassuiot/lamassu-iot-gateway/backend/pkg/config"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/errs"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateDefaultRules(t *testing.T) {
	evaluator := NewThresholdEvaluator(DefaultRules())

	var testcases = []struct {
		name       string
		sensorType models.SensorType
		value      float64
		alert      bool
		severity   models.AlertSeverity
	}{
		{name: "TemperatureAtThreshold", sensorType: models.SensorTemperature, value: 80, alert: false},
		{name: "TemperatureAboveThreshold", sensorType: models.SensorTemperature, value: 80.0001, alert: true, severity: models.SeverityHigh},
		{name: "VibrationAboveThreshold", sensorType: models.SensorVibration, value: 12, alert: true, severity: models.SeverityCritical},
		{name: "NoRuleForType", sensorType: models.SensorHumidity, value: 1000, alert: false},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			intent, err := evaluator.Evaluate(models.SensorReading{DeviceID: "dev-1", SensorType: tc.sensorType, Value: tc.value})
			require.NoError(t, err)
			if !tc.alert {
				assert.Nil(t, intent)
				return
			}

			require.NotNil(t, intent)
			assert.Equal(t, tc.severity, intent.Severity)
			assert.Equal(t, models.AlertTypeThreshold, intent.Type)
			assert.Equal(t, tc.value, intent.TriggerValue)
			assert.Equal(t, "dev-1", intent.DeviceID)
			assert.Equal(t, string(tc.sensorType), intent.SensorType)
		})
	}
}

func TestEvaluateGreaterOrEqual(t *testing.T) {
	evaluator := NewThresholdEvaluator(map[models.SensorType]Rule{
		models.SensorHumidity: {Operator: OpGreaterOrEqualTo, Threshold: 90, Severity: models.SeverityMedium, AlertType: models.AlertTypeThreshold},
	})

	intent, err := evaluator.Evaluate(models.SensorReading{SensorType: models.SensorHumidity, Value: 90})
	require.NoError(t, err)
	require.NotNil(t, intent)
	assert.Equal(t, 90.0, intent.ThresholdValue)
	assert.Equal(t, ">=", intent.Operator)

	intent, err = evaluator.Evaluate(models.SensorReading{SensorType: models.SensorHumidity, Value: 89.99})
	require.NoError(t, err)
	assert.Nil(t, intent)
}

func TestEvaluateUnknownOperator(t *testing.T) {
	evaluator := NewThresholdEvaluator(map[models.SensorType]Rule{
		models.SensorGas: {Operator: "~", Threshold: 1},
	})

	intent, err := evaluator.Evaluate(models.SensorReading{SensorType: models.SensorGas, Value: 5})
	assert.Nil(t, intent)
	assert.True(t, errors.Is(err, errs.ErrEvaluation))
}

func TestOperators(t *testing.T) {
	var testcases = []struct {
		op       Operator
		value    float64
		expected bool
	}{
		{OpGreaterThan, 2, true},
		{OpLessThan, 2, false},
		{OpGreaterOrEqualTo, 1, true},
		{OpLessOrEqualTo, 1, true},
		{OpEqual, 1, true},
		{OpNotEqual, 1, false},
	}

	for _, tc := range testcases {
		t.Run(string(tc.op), func(t *testing.T) {
			res, err := tc.op.Apply(tc.value, 1)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, res)
		})
	}
}

func TestEvaluateMetric(t *testing.T) {
	evaluator := NewThresholdEvaluator(DefaultRules())

	intent, err := evaluator.EvaluateMetric(models.EquipmentMetric{EquipmentID: "press-1", MetricName: "oil_temp", MetricValue: 75, AlertThreshold: ptr(70.0)})
	require.NoError(t, err)
	require.NotNil(t, intent)
	assert.Equal(t, models.AlertTypeEquipment, intent.Type)
	assert.Equal(t, models.SeverityHigh, intent.Severity)
	assert.Equal(t, 75.0, intent.TriggerValue)
	assert.Equal(t, 70.0, intent.ThresholdValue)
	assert.Equal(t, "press-1", intent.DeviceID)

	intent, err = evaluator.EvaluateMetric(models.EquipmentMetric{MetricName: "oil_temp", MetricValue: 70, AlertThreshold: ptr(70.0)})
	require.NoError(t, err)
	assert.Nil(t, intent)

	// no threshold on the metric: the sensor rule table is not consulted
	intent, err = evaluator.EvaluateMetric(models.EquipmentMetric{MetricName: "temperature", MetricValue: 500})
	require.NoError(t, err)
	assert.Nil(t, intent)
}

func TestEvaluatorFromConfig(t *testing.T) {
	evaluator, err := NewThresholdEvaluatorFromConfig(config.Alerting{
		Rules: []config.AlertRule{
			{SensorType: "temperature", Operator: ">", Threshold: 70, Severity: "critical"},
			{SensorType: "humidity", Operator: ">=", Threshold: 90},
		},
	})
	require.NoError(t, err)

	rules := evaluator.Rules()
	assert.Equal(t, 70.0, rules[models.SensorTemperature].Threshold)
	assert.Equal(t, models.SeverityCritical, rules[models.SensorTemperature].Severity)
	assert.Equal(t, models.SeverityHigh, rules[models.SensorHumidity].Severity)
	assert.Equal(t, 10.0, rules[models.SensorVibration].Threshold)

	_, err = NewThresholdEvaluatorFromConfig(config.Alerting{Rules: []config.AlertRule{{SensorType: "temperature", Operator: "=>"}}})
	assert.Error(t, err)

	_, err = NewThresholdEvaluatorFromConfig(config.Alerting{Rules: []config.AlertRule{{SensorType: "co2", Operator: ">"}}})
	assert.Error(t, err)

	_, err = NewThresholdEvaluatorFromConfig(config.Alerting{Rules: []config.AlertRule{{SensorType: "gas", Operator: ">", Severity: "urgent"}}})
	assert.Error(t, err)
}
