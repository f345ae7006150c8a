package resources

import (
	"time"

	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
)

type SortMode string

const (
	SortModeAsc  SortMode = "asc"
	SortModeDesc SortMode = "desc"
)

func ParseSortMode(t string) SortMode {
	switch t {
	case "asc":
		return SortModeAsc
	case "desc":
		return SortModeDesc
	}
	return SortModeDesc
}

const DefaultRealtimeLimit = 1000

// ReadingsQuery selects readings of a tenant inside a time window.
// Empty DeviceIDs/SensorTypes mean no filter on that dimension.
type ReadingsQuery struct {
	TenantID    string
	DeviceIDs   []string
	SensorTypes []models.SensorType
	Since       time.Time
	Until       time.Time
	Limit       int
	Sort        SortMode
}

type MetricsQuery struct {
	TenantID     string
	EquipmentIDs []string
	MetricNames  []string
	Since        time.Time
	Until        time.Time
	Limit        int
	Sort         SortMode
}
