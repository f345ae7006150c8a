package resources

import "github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"

type BulkSensorDataBody struct {
	Readings []models.RawSensorReading `json:"readings" binding:"required"`
}

type BulkEquipmentMetricsBody struct {
	Metrics []models.RawEquipmentMetric `json:"metrics" binding:"required"`
}

type BulkIngestResponse struct {
	Success   bool   `json:"success"`
	Processed int    `json:"processed"`
	Failed    int    `json:"failed"`
	Message   string `json:"message,omitempty"`
}

type PublishToTopicBody struct {
	Topic   string `json:"topic" binding:"required"`
	Payload any    `json:"payload"`
}

type PublishToTopicResponse struct {
	Success bool   `json:"success"`
	Topic   string `json:"topic"`
}

type SendCommandResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message,omitempty"`
	Command models.DeviceCommand `json:"command"`
}

type AcknowledgeAlertBody struct {
	AcknowledgedBy string `json:"acknowledgedBy" binding:"required"`
}

type RealtimeDataResponse struct {
	TimeRange string                 `json:"timeRange"`
	Count     int                    `json:"count"`
	Readings  []models.SensorReading `json:"readings"`
}

type MetricSummary struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
}

type RealtimeMetricsResponse struct {
	TimeRange string                   `json:"timeRange"`
	Count     int                      `json:"count"`
	Metrics   []models.EquipmentMetric `json:"metrics"`
	Summary   map[string]MetricSummary `json:"summary"`
}

// SummarizeMetrics groups metric values by metric name.
func SummarizeMetrics(metrics []models.EquipmentMetric) map[string]MetricSummary {
	summary := map[string]MetricSummary{}
	for _, m := range metrics {
		s, ok := summary[m.MetricName]
		if !ok {
			s = MetricSummary{Min: m.MetricValue, Max: m.MetricValue}
		}

		if m.MetricValue < s.Min {
			s.Min = m.MetricValue
		}
		if m.MetricValue > s.Max {
			s.Max = m.MetricValue
		}
		s.Avg = (s.Avg*float64(s.Count) + m.MetricValue) / float64(s.Count+1)
		s.Count++
		summary[m.MetricName] = s
	}
	return summary
}
