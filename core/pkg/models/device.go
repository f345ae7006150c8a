package models

import (
	"time"

	"gorm.io/datatypes"
)

type DeviceStatus string

const (
	DeviceActive      DeviceStatus = "active"
	DeviceInactive    DeviceStatus = "inactive"
	DeviceMaintenance DeviceStatus = "maintenance"
	DeviceError       DeviceStatus = "error"
	DeviceOffline     DeviceStatus = "offline"
)

func (s DeviceStatus) IsValid() bool {
	switch s {
	case DeviceActive, DeviceInactive, DeviceMaintenance, DeviceError, DeviceOffline:
		return true
	}
	return false
}

// Device is owned by the device registry. The gateway only ever writes
// LastSeen and Status.
type Device struct {
	ID              string            `json:"id" gorm:"primaryKey"`
	TenantID        string            `json:"tenantId" gorm:"uniqueIndex:idx_devices_tenant_external"`
	ExternalID      string            `json:"deviceId" gorm:"uniqueIndex:idx_devices_tenant_external"`
	Name            string            `json:"name"`
	DeviceType      string            `json:"deviceType"`
	Manufacturer    string            `json:"manufacturer"`
	Model           string            `json:"model"`
	FirmwareVersion string            `json:"firmwareVersion"`
	Status          DeviceStatus      `json:"status"`
	Location        datatypes.JSONMap `json:"location,omitempty"`
	Configuration   datatypes.JSONMap `json:"configuration,omitempty"`
	Metadata        datatypes.JSONMap `json:"metadata,omitempty"`
	LastSeen        *time.Time        `json:"lastSeen,omitempty"`
	AssetID         *string           `json:"assetId,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

type DeviceStatusLog struct {
	ID         string            `json:"id" gorm:"primaryKey"`
	DeviceID   string            `json:"deviceId" gorm:"index"`
	TenantID   string            `json:"tenantId" gorm:"index"`
	Status     string            `json:"status"`
	Payload    datatypes.JSONMap `json:"payload,omitempty"`
	ReportedAt time.Time         `json:"reportedAt"`
}

type DeviceCommand struct {
	ID       string         `json:"commandId"`
	DeviceID string         `json:"deviceId"`
	Protocol Protocol       `json:"protocol"`
	Command  map[string]any `json:"command"`
	IssuedAt time.Time      `json:"issuedAt"`
}

type Protocol string

const (
	ProtocolBroker Protocol = "broker"
	ProtocolHTTP   Protocol = "http"
)

type DeviceStatusView struct {
	Device         *Device                      `json:"device"`
	LatestReadings map[SensorType]SensorReading `json:"latestReadings,omitempty"`
}
