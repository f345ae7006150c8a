package gormstore

import (
	"context"

	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/engines/storage"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/resources"
	"gorm.io/gorm"
)

const (
	ReadingsTable = "sensor_readings"
	MetricsTable  = "equipment_metrics"
)

type GormTelemetryStore struct {
	readings *gormDBQuerier[models.SensorReading]
	metrics  *gormDBQuerier[models.EquipmentMetric]
}

func NewTelemetryRepository(db *gorm.DB) (storage.TelemetryRepo, error) {
	readings, err := TableQuery(db, ReadingsTable, "id", models.SensorReading{})
	if err != nil {
		return nil, err
	}

	metrics, err := TableQuery(db, MetricsTable, "id", models.EquipmentMetric{})
	if err != nil {
		return nil, err
	}

	return &GormTelemetryStore{
		readings: readings,
		metrics:  metrics,
	}, nil
}

func (s *GormTelemetryStore) InsertReadings(ctx context.Context, readings []models.SensorReading) error {
	return s.readings.InsertBulk(ctx, readings)
}

func (s *GormTelemetryStore) InsertMetrics(ctx context.Context, metrics []models.EquipmentMetric) error {
	return s.metrics.InsertBulk(ctx, metrics)
}

func (s *GormTelemetryStore) SelectReadings(ctx context.Context, query resources.ReadingsQuery) ([]models.SensorReading, error) {
	where := []gormWhereParams{
		{query: "tenant_id = ?", extraArgs: []any{query.TenantID}},
	}

	if len(query.DeviceIDs) > 0 {
		where = append(where, gormWhereParams{query: "device_id IN ?", extraArgs: []any{query.DeviceIDs}})
	}

	if len(query.SensorTypes) > 0 {
		where = append(where, gormWhereParams{query: "sensor_type IN ?", extraArgs: []any{query.SensorTypes}})
	}

	where = append(where, windowWhere(query.Since, query.Until)...)

	return s.readings.SelectWindow(ctx, where, "timestamp", query.Sort, query.Limit)
}

func (s *GormTelemetryStore) SelectMetrics(ctx context.Context, query resources.MetricsQuery) ([]models.EquipmentMetric, error) {
	where := []gormWhereParams{
		{query: "tenant_id = ?", extraArgs: []any{query.TenantID}},
	}

	if len(query.EquipmentIDs) > 0 {
		where = append(where, gormWhereParams{query: "equipment_id IN ?", extraArgs: []any{query.EquipmentIDs}})
	}

	if len(query.MetricNames) > 0 {
		where = append(where, gormWhereParams{query: "metric_name IN ?", extraArgs: []any{query.MetricNames}})
	}

	where = append(where, windowWhere(query.Since, query.Until)...)

	return s.metrics.SelectWindow(ctx, where, "timestamp", query.Sort, query.Limit)
}
