package models

import (
	"time"

	"gorm.io/datatypes"
)

type SensorType string

const (
	SensorTemperature SensorType = "temperature"
	SensorHumidity    SensorType = "humidity"
	SensorPressure    SensorType = "pressure"
	SensorVibration   SensorType = "vibration"
	SensorCurrent     SensorType = "current"
	SensorVoltage     SensorType = "voltage"
	SensorPower       SensorType = "power"
	SensorFlow        SensorType = "flow"
	SensorLevel       SensorType = "level"
	SensorSpeed       SensorType = "speed"
	SensorLight       SensorType = "light"
	SensorSound       SensorType = "sound"
	SensorGas         SensorType = "gas"
	SensorPH          SensorType = "ph"
	SensorCustom      SensorType = "custom"
)

var knownSensorTypes = map[SensorType]struct{}{
	SensorTemperature: {}, SensorHumidity: {}, SensorPressure: {}, SensorVibration: {},
	SensorCurrent: {}, SensorVoltage: {}, SensorPower: {}, SensorFlow: {}, SensorLevel: {},
	SensorSpeed: {}, SensorLight: {}, SensorSound: {}, SensorGas: {}, SensorPH: {},
	SensorCustom: {},
}

func (s SensorType) IsKnown() bool {
	_, ok := knownSensorTypes[s]
	return ok
}

// RawSensorReading is the payload accepted from devices over any transport.
// Timestamp may be an RFC3339 string or a unix epoch (seconds or milliseconds).
type RawSensorReading struct {
	DeviceID        string         `json:"deviceId,omitempty"`
	Device          string         `json:"device,omitempty"`
	SensorType      string         `json:"sensorType"`
	MeasurementType string         `json:"measurementType"`
	Value           *float64       `json:"value"`
	Unit            string         `json:"unit,omitempty"`
	Location        map[string]any `json:"location,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	Timestamp       any            `json:"timestamp,omitempty"`
	TenantID        string         `json:"tenantId,omitempty"`
}

type SensorReading struct {
	ID              string            `json:"id" gorm:"primaryKey"`
	DeviceID        string            `json:"deviceId" gorm:"index:idx_readings_device_time"`
	SensorType      SensorType        `json:"sensorType" gorm:"index"`
	MeasurementType string            `json:"measurementType"`
	Value           float64           `json:"value"`
	Unit            string            `json:"unit"`
	Location        datatypes.JSONMap `json:"location,omitempty"`
	Metadata        datatypes.JSONMap `json:"metadata,omitempty"`
	Timestamp       time.Time         `json:"timestamp" gorm:"index:idx_readings_device_time"`
	TenantID        string            `json:"tenantId" gorm:"index"`
	CreatedAt       time.Time         `json:"createdAt"`
}

func (r SensorReading) Raw() RawSensorReading {
	value := r.Value
	return RawSensorReading{
		DeviceID:        r.DeviceID,
		SensorType:      string(r.SensorType),
		MeasurementType: r.MeasurementType,
		Value:           &value,
		Unit:            r.Unit,
		Location:        copyMap(r.Location),
		Metadata:        copyMap(r.Metadata),
		Timestamp:       r.Timestamp.Format(time.RFC3339Nano),
		TenantID:        r.TenantID,
	}
}

type RawEquipmentMetric struct {
	EquipmentID    string         `json:"equipmentId,omitempty"`
	DeviceID       string         `json:"deviceId,omitempty"`
	MetricName     string         `json:"metricName"`
	MetricValue    *float64       `json:"metricValue"`
	Unit           string         `json:"unit,omitempty"`
	Status         string         `json:"status,omitempty"`
	AlertThreshold *float64       `json:"alertThreshold,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	Timestamp      any            `json:"timestamp,omitempty"`
	TenantID       string         `json:"tenantId,omitempty"`
}

type EquipmentMetric struct {
	ID             string            `json:"id" gorm:"primaryKey"`
	EquipmentID    string            `json:"equipmentId" gorm:"index:idx_metrics_equipment_time"`
	MetricName     string            `json:"metricName"`
	MetricValue    float64           `json:"metricValue"`
	Unit           string            `json:"unit"`
	Status         string            `json:"status"`
	AlertThreshold *float64          `json:"alertThreshold,omitempty"`
	Metadata       datatypes.JSONMap `json:"metadata,omitempty"`
	Timestamp      time.Time         `json:"timestamp" gorm:"index:idx_metrics_equipment_time"`
	TenantID       string            `json:"tenantId" gorm:"index"`
	CreatedAt      time.Time         `json:"createdAt"`
}

func (m EquipmentMetric) Raw() RawEquipmentMetric {
	value := m.MetricValue
	var threshold *float64
	if m.AlertThreshold != nil {
		t := *m.AlertThreshold
		threshold = &t
	}

	return RawEquipmentMetric{
		EquipmentID:    m.EquipmentID,
		MetricName:     m.MetricName,
		MetricValue:    &value,
		Unit:           m.Unit,
		Status:         m.Status,
		AlertThreshold: threshold,
		Metadata:       copyMap(m.Metadata),
		Timestamp:      m.Timestamp.Format(time.RFC3339Nano),
		TenantID:       m.TenantID,
	}
}

type BulkIngestResult struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`

	// Readings holds what was stored so event consumers can follow bulk writes.
	Readings []SensorReading   `json:"readings,omitempty"`
	Metrics  []EquipmentMetric `json:"metrics,omitempty"`
}

type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func copyMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}

	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
