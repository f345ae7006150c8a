package services

import (
	"fmt"
	"strings"

	"github.com/lamassuiot/lamassu-iot-gateway/backend/pkg/config"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/errs"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
)

type Operator string

const (
	OpGreaterThan      Operator = ">"
	OpLessThan         Operator = "<"
	OpGreaterOrEqualTo Operator = ">="
	OpLessOrEqualTo    Operator = "<="
	OpEqual            Operator = "=="
	OpNotEqual         Operator = "!="
)

type Rule struct {
	Operator  Operator
	Threshold float64
	Severity  models.AlertSeverity
	AlertType models.AlertType
}

// DefaultRules apply unless overridden through configuration.
func DefaultRules() map[models.SensorType]Rule {
	return map[models.SensorType]Rule{
		models.SensorTemperature: {Operator: OpGreaterThan, Threshold: 80, Severity: models.SeverityHigh, AlertType: models.AlertTypeThreshold},
		models.SensorVibration:   {Operator: OpGreaterThan, Threshold: 10, Severity: models.SeverityCritical, AlertType: models.AlertTypeThreshold},
	}
}

type ThresholdEvaluator struct {
	rules map[models.SensorType]Rule
}

func NewThresholdEvaluator(rules map[models.SensorType]Rule) *ThresholdEvaluator {
	return &ThresholdEvaluator{rules: rules}
}

// NewThresholdEvaluatorFromConfig layers the configured rules on top of the
// defaults and rejects unknown operators, severities or sensor types.
func NewThresholdEvaluatorFromConfig(conf config.Alerting) (*ThresholdEvaluator, error) {
	rules := DefaultRules()
	for _, r := range conf.Rules {
		sensorType := models.SensorType(strings.ToLower(r.SensorType))
		if !sensorType.IsKnown() {
			return nil, fmt.Errorf("alert rule: unknown sensor type '%s'", r.SensorType)
		}

		op := Operator(r.Operator)
		if !op.IsValid() {
			return nil, fmt.Errorf("alert rule for %s: unknown operator '%s'", sensorType, r.Operator)
		}

		severity := models.SeverityHigh
		if r.Severity != "" {
			severity = models.AlertSeverity(strings.ToLower(r.Severity))
			switch severity {
			case models.SeverityLow, models.SeverityMedium, models.SeverityHigh, models.SeverityCritical:
			default:
				return nil, fmt.Errorf("alert rule for %s: unknown severity '%s'", sensorType, r.Severity)
			}
		}

		rules[sensorType] = Rule{
			Operator:  op,
			Threshold: r.Threshold,
			Severity:  severity,
			AlertType: models.AlertTypeThreshold,
		}
	}

	return NewThresholdEvaluator(rules), nil
}

func (op Operator) IsValid() bool {
	switch op {
	case OpGreaterThan, OpLessThan, OpGreaterOrEqualTo, OpLessOrEqualTo, OpEqual, OpNotEqual:
		return true
	}
	return false
}

func (op Operator) Apply(value, threshold float64) (bool, error) {
	switch op {
	case OpGreaterThan:
		return value > threshold, nil
	case OpLessThan:
		return value < threshold, nil
	case OpGreaterOrEqualTo:
		return value >= threshold, nil
	case OpLessOrEqualTo:
		return value <= threshold, nil
	case OpEqual:
		return value == threshold, nil
	case OpNotEqual:
		return value != threshold, nil
	}
	return false, fmt.Errorf("unknown operator '%s'", op)
}

func (e *ThresholdEvaluator) Rules() map[models.SensorType]Rule {
	return e.rules
}

// Evaluate returns nil when no rule exists for the reading's type or the rule
// is not violated.
func (e *ThresholdEvaluator) Evaluate(reading models.SensorReading) (*models.AlertIntent, error) {
	rule, ok := e.rules[reading.SensorType]
	if !ok {
		return nil, nil
	}

	violated, err := rule.Operator.Apply(reading.Value, rule.Threshold)
	if err != nil {
		return nil, &errs.EvaluationError{Subject: string(reading.SensorType), Reason: err.Error()}
	}

	if !violated {
		return nil, nil
	}

	return &models.AlertIntent{
		Type:           rule.AlertType,
		Severity:       rule.Severity,
		Title:          fmt.Sprintf("%s threshold exceeded", capitalize(string(reading.SensorType))),
		Description:    fmt.Sprintf("Device %s reported %s %g%s, rule %s %g", reading.DeviceID, reading.SensorType, reading.Value, unitSuffix(reading.Unit), rule.Operator, rule.Threshold),
		Operator:       string(rule.Operator),
		TriggerValue:   reading.Value,
		ThresholdValue: rule.Threshold,
		DeviceID:       reading.DeviceID,
		SensorType:     string(reading.SensorType),
	}, nil
}

// EvaluateMetric only uses the threshold carried by the metric itself.
func (e *ThresholdEvaluator) EvaluateMetric(metric models.EquipmentMetric) (*models.AlertIntent, error) {
	if metric.AlertThreshold == nil {
		return nil, nil
	}

	threshold := *metric.AlertThreshold
	if metric.MetricValue <= threshold {
		return nil, nil
	}

	return &models.AlertIntent{
		Type:           models.AlertTypeEquipment,
		Severity:       models.SeverityHigh,
		Title:          fmt.Sprintf("Equipment %s: %s above threshold", metric.EquipmentID, metric.MetricName),
		Description:    fmt.Sprintf("Metric %s reached %g%s, threshold %g", metric.MetricName, metric.MetricValue, unitSuffix(metric.Unit), threshold),
		Operator:       string(OpGreaterThan),
		TriggerValue:   metric.MetricValue,
		ThresholdValue: threshold,
		DeviceID:       metric.EquipmentID,
		SensorType:     metric.MetricName,
	}, nil
}

func unitSuffix(unit string) string {
	if unit == "" {
		return ""
	}
	return " " + unit
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
