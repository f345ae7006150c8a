package gormstore

import "github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"

// Models lists every table the gateway owns, in creation order.
func Models() []any {
	return []any{
		&models.Device{},
		&models.SensorReading{},
		&models.EquipmentMetric{},
		&models.Alert{},
		&models.DeviceStatusLog{},
	}
}
