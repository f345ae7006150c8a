package models

import "time"

type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

type AlertStatus string

const (
	AlertOpen         AlertStatus = "open"
	AlertAcknowledged AlertStatus = "acknowledged"
	AlertResolved     AlertStatus = "resolved"
	AlertClosed       AlertStatus = "closed"
)

type AlertType string

const (
	AlertTypeThreshold AlertType = "threshold_exceeded"
	AlertTypeEquipment AlertType = "equipment_alert"
)

type Alert struct {
	ID             string        `json:"id" gorm:"primaryKey"`
	Type           AlertType     `json:"type"`
	Severity       AlertSeverity `json:"severity"`
	Status         AlertStatus   `json:"status" gorm:"index"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	TriggerValue   float64       `json:"triggerValue"`
	ThresholdValue float64       `json:"thresholdValue"`
	DeviceID       *string       `json:"deviceId,omitempty" gorm:"index"`
	SensorType     string        `json:"sensorType,omitempty"`
	TenantID       string        `json:"tenantId" gorm:"index"`
	AcknowledgedBy string        `json:"acknowledgedBy,omitempty"`
	AcknowledgedAt *time.Time    `json:"acknowledgedAt,omitempty"`
	ResolvedBy     string        `json:"resolvedBy,omitempty"`
	ResolvedAt     *time.Time    `json:"resolvedAt,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// AlertIntent is the evaluator's decision that a threshold was crossed,
// before it is stored as an Alert.
type AlertIntent struct {
	Type           AlertType
	Severity       AlertSeverity
	Title          string
	Description    string
	Operator       string
	TriggerValue   float64
	ThresholdValue float64
	DeviceID       string
	SensorType     string
}
