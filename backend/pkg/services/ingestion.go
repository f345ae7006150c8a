package services

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lamassuiot/lamassu-iot-gateway/backend/pkg/config"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/engines/storage"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/errs"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/helpers"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/resources"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/services"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

var telemetryValidate = validator.New()

type TelemetryMiddleware func(services.TelemetryService) services.TelemetryService

type TelemetryServiceBackend struct {
	telemetryStorage storage.TelemetryRepo
	statusLogStorage storage.StatusLogRepo
	devicesStorage   storage.DeviceRepo
	evaluator        *ThresholdEvaluator
	alertService     services.AlertService
	livenessService  services.LivenessService
	batchSize        int
	service          services.TelemetryService
	logger           *logrus.Entry
}

type TelemetryServiceBuilder struct {
	Logger           *logrus.Entry
	TelemetryStorage storage.TelemetryRepo
	StatusLogStorage storage.StatusLogRepo
	DevicesStorage   storage.DeviceRepo
	Evaluator        *ThresholdEvaluator
	AlertService     services.AlertService
	LivenessService  services.LivenessService
	BatchSize        int
}

func NewTelemetryService(builder TelemetryServiceBuilder) services.TelemetryService {
	batchSize := builder.BatchSize
	if batchSize <= 0 {
		batchSize = config.DefaultBatchSize
	}

	evaluator := builder.Evaluator
	if evaluator == nil {
		evaluator = NewThresholdEvaluator(DefaultRules())
	}

	svc := &TelemetryServiceBackend{
		telemetryStorage: builder.TelemetryStorage,
		statusLogStorage: builder.StatusLogStorage,
		devicesStorage:   builder.DevicesStorage,
		evaluator:        evaluator,
		alertService:     builder.AlertService,
		livenessService:  builder.LivenessService,
		batchSize:        batchSize,
		logger:           builder.Logger,
	}

	svc.service = svc
	return svc
}

func (svc *TelemetryServiceBackend) SetService(service services.TelemetryService) {
	svc.service = service
}

func (svc *TelemetryServiceBackend) IngestOne(ctx context.Context, input services.IngestOneInput) (*models.SensorReading, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)
	defer svc.touch(ctx, lFunc, firstNonEmpty(input.TenantID, input.Reading.TenantID), firstNonEmpty(input.Reading.DeviceID, input.Reading.Device))

	reading, err := Normalize(input.Reading, input.TenantID)
	if err != nil {
		lFunc.Warnf("rejecting reading: %s", err)
		return nil, err
	}

	reading.ID = uuid.NewString()
	reading.CreatedAt = time.Now().UTC()

	err = svc.telemetryStorage.InsertReadings(ctx, []models.SensorReading{*reading})
	if err != nil {
		lFunc.Errorf("could not store reading from device '%s': %s", reading.DeviceID, err)
		return nil, errs.NewPersistenceError("insert reading", err)
	}

	lFunc.Debugf("stored %s reading %s from device '%s'", reading.SensorType, reading.ID, reading.DeviceID)

	svc.evaluateReading(ctx, lFunc, *reading)

	return reading, nil
}

// IngestBulk writes valid readings in sequential batches. A failing batch is
// counted as failed and the remaining batches are still attempted.
func (svc *TelemetryServiceBackend) IngestBulk(ctx context.Context, input services.IngestBulkInput) (*models.BulkIngestResult, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	result := &models.BulkIngestResult{
		Readings: []models.SensorReading{},
	}

	valid := make([]models.SensorReading, 0, len(input.Readings))
	now := time.Now().UTC()
	for i, raw := range input.Readings {
		reading, err := Normalize(raw, input.TenantID)
		if err != nil {
			lFunc.Warnf("bulk item %d rejected: %s", i, err)
			result.Failed++
			continue
		}

		reading.ID = uuid.NewString()
		reading.CreatedAt = now
		valid = append(valid, *reading)
	}

	for _, batch := range chunk(valid, svc.batchSize) {
		err := svc.telemetryStorage.InsertReadings(ctx, batch)
		if err != nil {
			lFunc.Errorf("could not store batch of %d readings: %s", len(batch), err)
			result.Failed += len(batch)
			continue
		}

		result.Processed += len(batch)
		result.Readings = append(result.Readings, batch...)
	}

	lFunc.Infof("bulk ingestion finished: %d processed, %d failed", result.Processed, result.Failed)

	for _, reading := range result.Readings {
		svc.evaluateReading(ctx, lFunc, reading)
	}

	seen := map[[2]string]struct{}{}
	for _, raw := range input.Readings {
		svc.touchOnce(ctx, lFunc, seen, firstNonEmpty(input.TenantID, raw.TenantID), firstNonEmpty(raw.DeviceID, raw.Device))
	}

	return result, nil
}

func (svc *TelemetryServiceBackend) IngestMetric(ctx context.Context, input services.IngestMetricInput) (*models.EquipmentMetric, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)
	defer svc.touch(ctx, lFunc, firstNonEmpty(input.TenantID, input.Metric.TenantID), firstNonEmpty(input.Metric.EquipmentID, input.Metric.DeviceID))

	metric, err := NormalizeMetric(input.Metric, input.TenantID)
	if err != nil {
		lFunc.Warnf("rejecting equipment metric: %s", err)
		return nil, err
	}

	metric.ID = uuid.NewString()
	metric.CreatedAt = time.Now().UTC()

	err = svc.telemetryStorage.InsertMetrics(ctx, []models.EquipmentMetric{*metric})
	if err != nil {
		lFunc.Errorf("could not store metric '%s' from equipment '%s': %s", metric.MetricName, metric.EquipmentID, err)
		return nil, errs.NewPersistenceError("insert metric", err)
	}

	svc.evaluateMetric(ctx, lFunc, *metric)

	return metric, nil
}

func (svc *TelemetryServiceBackend) IngestMetricsBulk(ctx context.Context, input services.IngestMetricsBulkInput) (*models.BulkIngestResult, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	result := &models.BulkIngestResult{
		Metrics: []models.EquipmentMetric{},
	}

	valid := make([]models.EquipmentMetric, 0, len(input.Metrics))
	now := time.Now().UTC()
	for i, raw := range input.Metrics {
		metric, err := NormalizeMetric(raw, input.TenantID)
		if err != nil {
			lFunc.Warnf("bulk metric %d rejected: %s", i, err)
			result.Failed++
			continue
		}

		metric.ID = uuid.NewString()
		metric.CreatedAt = now
		valid = append(valid, *metric)
	}

	for _, batch := range chunk(valid, svc.batchSize) {
		err := svc.telemetryStorage.InsertMetrics(ctx, batch)
		if err != nil {
			lFunc.Errorf("could not store batch of %d metrics: %s", len(batch), err)
			result.Failed += len(batch)
			continue
		}

		result.Processed += len(batch)
		result.Metrics = append(result.Metrics, batch...)
	}

	lFunc.Infof("bulk metrics ingestion finished: %d processed, %d failed", result.Processed, result.Failed)

	for _, metric := range result.Metrics {
		svc.evaluateMetric(ctx, lFunc, metric)
	}

	seen := map[[2]string]struct{}{}
	for _, raw := range input.Metrics {
		svc.touchOnce(ctx, lFunc, seen, firstNonEmpty(input.TenantID, raw.TenantID), firstNonEmpty(raw.EquipmentID, raw.DeviceID))
	}

	return result, nil
}

// RecordStatus stores the raw status report. A known "status" value in the
// payload is also copied onto the device.
func (svc *TelemetryServiceBackend) RecordStatus(ctx context.Context, input services.RecordStatusInput) (*models.DeviceStatusLog, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := telemetryValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.NewValidationError("deviceId is required")
	}
	defer svc.touch(ctx, lFunc, input.TenantID, input.DeviceID)

	status, _ := input.Payload["status"].(string)
	statusLog := &models.DeviceStatusLog{
		ID:         uuid.NewString(),
		DeviceID:   input.DeviceID,
		TenantID:   input.TenantID,
		Status:     status,
		Payload:    datatypes.JSONMap(helpers.MergeMaps(input.Payload)),
		ReportedAt: ParseTimestamp(input.Payload["timestamp"], time.Now()),
	}

	statusLog, err = svc.statusLogStorage.Insert(ctx, statusLog)
	if err != nil {
		lFunc.Errorf("could not store status report from device '%s': %s", input.DeviceID, err)
		return nil, errs.NewPersistenceError("insert status log", err)
	}

	deviceStatus := models.DeviceStatus(status)
	if deviceStatus.IsValid() && input.TenantID != "" && svc.devicesStorage != nil {
		exists, err := svc.devicesStorage.UpdateStatus(ctx, input.TenantID, input.DeviceID, deviceStatus)
		if err != nil {
			lFunc.Warnf("could not update status of device '%s': %s", input.DeviceID, err)
		} else if !exists {
			lFunc.Debugf("device '%s' is not registered, status not updated", input.DeviceID)
		}
	}

	return statusLog, nil
}

func (svc *TelemetryServiceBackend) GetRealtimeData(ctx context.Context, input services.GetRealtimeDataInput) ([]models.SensorReading, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	window, err := helpers.ParseTimeRange(input.TimeRange)
	if err != nil {
		return nil, errs.NewValidationError(err.Error())
	}

	until := time.Now().UTC()
	readings, err := svc.telemetryStorage.SelectReadings(ctx, resources.ReadingsQuery{
		TenantID:    input.TenantID,
		DeviceIDs:   input.DeviceIDs,
		SensorTypes: input.SensorTypes,
		Since:       until.Add(-window),
		Until:       until,
		Limit:       realtimeLimit(input.Limit),
		Sort:        resources.SortModeDesc,
	})
	if err != nil {
		lFunc.Errorf("could not read readings window: %s", err)
		return nil, errs.NewPersistenceError("select readings", err)
	}

	return readings, nil
}

func (svc *TelemetryServiceBackend) GetRealtimeMetrics(ctx context.Context, input services.GetRealtimeMetricsInput) ([]models.EquipmentMetric, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	window, err := helpers.ParseTimeRange(input.TimeRange)
	if err != nil {
		return nil, errs.NewValidationError(err.Error())
	}

	until := time.Now().UTC()
	metrics, err := svc.telemetryStorage.SelectMetrics(ctx, resources.MetricsQuery{
		TenantID:     input.TenantID,
		EquipmentIDs: input.EquipmentIDs,
		Since:        until.Add(-window),
		Until:        until,
		Limit:        realtimeLimit(input.Limit),
		Sort:         resources.SortModeDesc,
	})
	if err != nil {
		lFunc.Errorf("could not read metrics window: %s", err)
		return nil, errs.NewPersistenceError("select metrics", err)
	}

	return metrics, nil
}

func (svc *TelemetryServiceBackend) ValidateReading(ctx context.Context, input services.ValidateReadingInput) (*models.ValidationResult, error) {
	result := Validate(input.Reading)
	return &result, nil
}

func (svc *TelemetryServiceBackend) evaluateReading(ctx context.Context, lFunc *logrus.Entry, reading models.SensorReading) {
	intent, err := svc.evaluator.Evaluate(reading)
	if err != nil {
		lFunc.Errorf("could not evaluate reading %s: %s", reading.ID, err)
		return
	}

	svc.raiseAlert(ctx, lFunc, intent, reading.TenantID)
}

func (svc *TelemetryServiceBackend) evaluateMetric(ctx context.Context, lFunc *logrus.Entry, metric models.EquipmentMetric) {
	intent, err := svc.evaluator.EvaluateMetric(metric)
	if err != nil {
		lFunc.Errorf("could not evaluate metric %s: %s", metric.ID, err)
		return
	}

	svc.raiseAlert(ctx, lFunc, intent, metric.TenantID)
}

func (svc *TelemetryServiceBackend) raiseAlert(ctx context.Context, lFunc *logrus.Entry, intent *models.AlertIntent, tenantID string) {
	if intent == nil || svc.alertService == nil {
		return
	}

	_, err := svc.alertService.CreateAlert(ctx, services.CreateAlertInput{
		Intent:   *intent,
		TenantID: tenantID,
	})
	if err != nil {
		lFunc.Errorf("could not raise alert for device '%s': %s", intent.DeviceID, err)
	}
}

// touch runs for every inbound message that names a device, whether or not
// the message is stored.
func (svc *TelemetryServiceBackend) touch(ctx context.Context, lFunc *logrus.Entry, tenantID, deviceID string) {
	if svc.livenessService == nil || tenantID == "" || deviceID == "" {
		return
	}

	err := svc.livenessService.Touch(ctx, services.TouchInput{
		DeviceID: deviceID,
		TenantID: tenantID,
		SeenAt:   time.Now(),
	})
	if err != nil {
		lFunc.Debugf("liveness not updated for device '%s': %s", deviceID, err)
	}
}

func (svc *TelemetryServiceBackend) touchOnce(ctx context.Context, lFunc *logrus.Entry, seen map[[2]string]struct{}, tenantID, deviceID string) {
	key := [2]string{tenantID, deviceID}
	if _, ok := seen[key]; ok {
		return
	}
	seen[key] = struct{}{}
	svc.touch(ctx, lFunc, tenantID, deviceID)
}

func realtimeLimit(limit int) int {
	if limit <= 0 || limit > resources.DefaultRealtimeLimit {
		return resources.DefaultRealtimeLimit
	}
	return limit
}

func chunk[E any](items []E, size int) [][]E {
	batches := [][]E{}
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}
