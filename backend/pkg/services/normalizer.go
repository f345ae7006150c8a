package services

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/errs"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/helpers"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"gorm.io/datatypes"
)

const OriginalSensorTypeKey = "originalSensorType"

// epoch values above this are read as milliseconds
const epochMillisThreshold = 1e12

// Normalize turns a transport payload into a canonical reading. It does not
// assign an ID: that happens on persistence.
func Normalize(raw models.RawSensorReading, tenantID string) (*models.SensorReading, error) {
	deviceID := firstNonEmpty(raw.DeviceID, raw.Device)

	missing := []string{}
	if deviceID == "" {
		missing = append(missing, "deviceId is required")
	}
	if strings.TrimSpace(raw.SensorType) == "" {
		missing = append(missing, "sensorType is required")
	}
	if strings.TrimSpace(raw.MeasurementType) == "" {
		missing = append(missing, "measurementType is required")
	}
	if raw.Value == nil || math.IsNaN(*raw.Value) || math.IsInf(*raw.Value, 0) {
		missing = append(missing, "value must be a number")
	}
	if len(missing) > 0 {
		return nil, errs.NewValidationError(missing...)
	}

	metadata := datatypes.JSONMap(helpers.MergeMaps(raw.Metadata))
	sensorType := models.SensorType(strings.ToLower(strings.TrimSpace(raw.SensorType)))
	if !sensorType.IsKnown() {
		metadata[OriginalSensorTypeKey] = raw.SensorType
		sensorType = models.SensorCustom
	}

	return &models.SensorReading{
		DeviceID:        deviceID,
		SensorType:      sensorType,
		MeasurementType: raw.MeasurementType,
		Value:           *raw.Value,
		Unit:            raw.Unit,
		Location:        datatypes.JSONMap(helpers.MergeMaps(raw.Location)),
		Metadata:        metadata,
		Timestamp:       ParseTimestamp(raw.Timestamp, time.Now()),
		TenantID:        firstNonEmpty(tenantID, raw.TenantID),
	}, nil
}

func NormalizeMetric(raw models.RawEquipmentMetric, tenantID string) (*models.EquipmentMetric, error) {
	equipmentID := firstNonEmpty(raw.EquipmentID, raw.DeviceID)

	missing := []string{}
	if equipmentID == "" {
		missing = append(missing, "equipmentId is required")
	}
	if strings.TrimSpace(raw.MetricName) == "" {
		missing = append(missing, "metricName is required")
	}
	if raw.MetricValue == nil || math.IsNaN(*raw.MetricValue) || math.IsInf(*raw.MetricValue, 0) {
		missing = append(missing, "metricValue must be a number")
	}
	if len(missing) > 0 {
		return nil, errs.NewValidationError(missing...)
	}

	var threshold *float64
	if raw.AlertThreshold != nil {
		t := *raw.AlertThreshold
		threshold = &t
	}

	return &models.EquipmentMetric{
		EquipmentID:    equipmentID,
		MetricName:     raw.MetricName,
		MetricValue:    *raw.MetricValue,
		Unit:           raw.Unit,
		Status:         raw.Status,
		AlertThreshold: threshold,
		Metadata:       datatypes.JSONMap(helpers.MergeMaps(raw.Metadata)),
		Timestamp:      ParseTimestamp(raw.Timestamp, time.Now()),
		TenantID:       firstNonEmpty(tenantID, raw.TenantID),
	}, nil
}

// Validate runs the per-sensor range checks only. It is advisory: its result
// never blocks ingestion.
func Validate(raw models.RawSensorReading) models.ValidationResult {
	problems := []string{}

	if raw.Value != nil {
		value := *raw.Value
		switch models.SensorType(strings.ToLower(strings.TrimSpace(raw.SensorType))) {
		case models.SensorTemperature:
			if value < -273.15 || value > 1000 {
				problems = append(problems, "Temperature value must be between -273.15 and 1000")
			}
		case models.SensorHumidity:
			if value < 0 || value > 100 {
				problems = append(problems, "Humidity value must be between 0 and 100")
			}
		case models.SensorPressure:
			if value < 0 {
				problems = append(problems, "Pressure value cannot be negative")
			}
		}
	}

	return models.ValidationResult{
		Valid:  len(problems) == 0,
		Errors: problems,
	}
}

// ParseTimestamp accepts RFC3339 strings and unix epochs in seconds or
// milliseconds. Anything else resolves to fallback. The result is always UTC.
func ParseTimestamp(ts any, fallback time.Time) time.Time {
	switch v := ts.(type) {
	case time.Time:
		if !v.IsZero() {
			return v.UTC()
		}
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			break
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t.UTC()
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return fromEpoch(f)
		}
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return fromEpoch(f)
		}
	case float64:
		return fromEpoch(v)
	case float32:
		return fromEpoch(float64(v))
	case int:
		return fromEpoch(float64(v))
	case int64:
		return fromEpoch(float64(v))
	}

	return fallback.UTC()
}

func fromEpoch(v float64) time.Time {
	if v > epochMillisThreshold {
		return time.UnixMilli(int64(v)).UTC()
	}

	sec, frac := math.Modf(v)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
