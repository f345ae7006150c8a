package influxdb

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/query"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/config"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/engines/storage"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/helpers"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/resources"
	"github.com/sirupsen/logrus"
)

const (
	ReadingsMeasurement = "sensor_readings"
	MetricsMeasurement  = "equipment_metrics"
)

type InfluxTelemetryStore struct {
	logger *logrus.Entry
	client influxdb2.Client
	writer api.WriteAPIBlocking
	reader api.QueryAPI
	bucket string
}

func NewTelemetryRepository(logger *logrus.Entry, conf config.InfluxDBConfig) (storage.TelemetryRepo, error) {
	if conf.URL == "" || conf.Bucket == "" {
		return nil, fmt.Errorf("influxdb url and bucket are required")
	}

	client := influxdb2.NewClient(conf.URL, string(conf.Token))

	return &InfluxTelemetryStore{
		logger: logger,
		client: client,
		writer: client.WriteAPIBlocking(conf.Organization, conf.Bucket),
		reader: client.QueryAPI(conf.Organization),
		bucket: conf.Bucket,
	}, nil
}

func (s *InfluxTelemetryStore) InsertReadings(ctx context.Context, readings []models.SensorReading) error {
	if len(readings) == 0 {
		return nil
	}

	points := make([]*write.Point, 0, len(readings))
	for _, r := range readings {
		points = append(points, ReadingToPoint(r))
	}

	err := s.writer.WritePoint(ctx, points...)
	if err != nil {
		return fmt.Errorf("error writing readings to InfluxDB: %w", err)
	}

	helpers.ConfigureLogger(ctx, s.logger).Tracef("%d readings written to bucket %s", len(points), s.bucket)
	return nil
}

func (s *InfluxTelemetryStore) InsertMetrics(ctx context.Context, metrics []models.EquipmentMetric) error {
	if len(metrics) == 0 {
		return nil
	}

	points := make([]*write.Point, 0, len(metrics))
	for _, m := range metrics {
		points = append(points, MetricToPoint(m))
	}

	err := s.writer.WritePoint(ctx, points...)
	if err != nil {
		return fmt.Errorf("error writing metrics to InfluxDB: %w", err)
	}

	helpers.ConfigureLogger(ctx, s.logger).Tracef("%d metrics written to bucket %s", len(points), s.bucket)
	return nil
}

func (s *InfluxTelemetryStore) SelectReadings(ctx context.Context, q resources.ReadingsQuery) ([]models.SensorReading, error) {
	flux := BuildReadingsFlux(s.bucket, q)
	result, err := s.reader.Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("error querying InfluxDB: %w", err)
	}
	defer result.Close()

	readings := []models.SensorReading{}
	for result.Next() {
		readings = append(readings, RecordToReading(result.Record()))
	}

	if result.Err() != nil {
		return nil, fmt.Errorf("error reading InfluxDB response: %w", result.Err())
	}

	return readings, nil
}

func (s *InfluxTelemetryStore) SelectMetrics(ctx context.Context, q resources.MetricsQuery) ([]models.EquipmentMetric, error) {
	flux := BuildMetricsFlux(s.bucket, q)
	result, err := s.reader.Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("error querying InfluxDB: %w", err)
	}
	defer result.Close()

	metrics := []models.EquipmentMetric{}
	for result.Next() {
		metrics = append(metrics, RecordToMetric(result.Record()))
	}

	if result.Err() != nil {
		return nil, fmt.Errorf("error reading InfluxDB response: %w", result.Err())
	}

	return metrics, nil
}

// ReadingToPoint tags the point with the reading id so that two readings of
// the same series and timestamp are stored as separate points.
func ReadingToPoint(r models.SensorReading) *write.Point {
	fields := map[string]interface{}{
		"value": r.Value,
	}

	if len(r.Location) > 0 {
		fields["location"] = encodeMap(r.Location)
	}
	if len(r.Metadata) > 0 {
		fields["metadata"] = encodeMap(r.Metadata)
	}

	return influxdb2.NewPoint(
		ReadingsMeasurement,
		nonEmptyTags(map[string]string{
			"id":               r.ID,
			"tenant_id":        r.TenantID,
			"device_id":        r.DeviceID,
			"sensor_type":      string(r.SensorType),
			"measurement_type": r.MeasurementType,
			"unit":             r.Unit,
		}),
		fields,
		r.Timestamp,
	)
}

func MetricToPoint(m models.EquipmentMetric) *write.Point {
	fields := map[string]interface{}{
		"metric_value": m.MetricValue,
	}

	if m.AlertThreshold != nil {
		fields["alert_threshold"] = *m.AlertThreshold
	}
	if len(m.Metadata) > 0 {
		fields["metadata"] = encodeMap(m.Metadata)
	}

	return influxdb2.NewPoint(
		MetricsMeasurement,
		nonEmptyTags(map[string]string{
			"id":           m.ID,
			"tenant_id":    m.TenantID,
			"equipment_id": m.EquipmentID,
			"metric_name":  m.MetricName,
			"unit":         m.Unit,
			"status":       m.Status,
		}),
		fields,
		m.Timestamp,
	)
}

func BuildReadingsFlux(bucket string, q resources.ReadingsQuery) string {
	sensorTypes := make([]string, 0, len(q.SensorTypes))
	for _, st := range q.SensorTypes {
		sensorTypes = append(sensorTypes, string(st))
	}

	var b strings.Builder
	writeRange(&b, bucket, q.Since, q.Until)
	fmt.Fprintf(&b, "  |> filter(fn: (r) => r._measurement == %s and r.tenant_id == %s)\n", strconv.Quote(ReadingsMeasurement), strconv.Quote(q.TenantID))
	writeAnyOf(&b, "device_id", q.DeviceIDs)
	writeAnyOf(&b, "sensor_type", sensorTypes)
	writeTail(&b, q.Sort, q.Limit)
	return b.String()
}

func BuildMetricsFlux(bucket string, q resources.MetricsQuery) string {
	var b strings.Builder
	writeRange(&b, bucket, q.Since, q.Until)
	fmt.Fprintf(&b, "  |> filter(fn: (r) => r._measurement == %s and r.tenant_id == %s)\n", strconv.Quote(MetricsMeasurement), strconv.Quote(q.TenantID))
	writeAnyOf(&b, "equipment_id", q.EquipmentIDs)
	writeAnyOf(&b, "metric_name", q.MetricNames)
	writeTail(&b, q.Sort, q.Limit)
	return b.String()
}

func writeRange(b *strings.Builder, bucket string, since, until time.Time) {
	start := "0"
	if !since.IsZero() {
		start = since.UTC().Format(time.RFC3339Nano)
	}

	fmt.Fprintf(b, "from(bucket: %s)\n", strconv.Quote(bucket))
	if until.IsZero() {
		fmt.Fprintf(b, "  |> range(start: %s)\n", start)
	} else {
		fmt.Fprintf(b, "  |> range(start: %s, stop: %s)\n", start, until.UTC().Format(time.RFC3339Nano))
	}
}

func writeAnyOf(b *strings.Builder, column string, values []string) {
	if len(values) == 0 {
		return
	}

	clauses := make([]string, 0, len(values))
	for _, v := range values {
		clauses = append(clauses, fmt.Sprintf("r.%s == %s", column, strconv.Quote(v)))
	}
	fmt.Fprintf(b, "  |> filter(fn: (r) => %s)\n", strings.Join(clauses, " or "))
}

func writeTail(b *strings.Builder, sort resources.SortMode, limit int) {
	if limit <= 0 {
		limit = resources.DefaultRealtimeLimit
	}

	b.WriteString("  |> pivot(rowKey: [\"_time\"], columnKey: [\"_field\"], valueColumn: \"_value\")\n")
	b.WriteString("  |> group()\n")
	fmt.Fprintf(b, "  |> sort(columns: [\"_time\"], desc: %t)\n", sort != resources.SortModeAsc)
	fmt.Fprintf(b, "  |> limit(n: %d)\n", limit)
}

func RecordToReading(rec *query.FluxRecord) models.SensorReading {
	return models.SensorReading{
		ID:              stringValue(rec, "id"),
		DeviceID:        stringValue(rec, "device_id"),
		SensorType:      models.SensorType(stringValue(rec, "sensor_type")),
		MeasurementType: stringValue(rec, "measurement_type"),
		Value:           floatValue(rec, "value"),
		Unit:            stringValue(rec, "unit"),
		Location:        decodeMap(stringValue(rec, "location")),
		Metadata:        decodeMap(stringValue(rec, "metadata")),
		Timestamp:       rec.Time(),
		TenantID:        stringValue(rec, "tenant_id"),
	}
}

func RecordToMetric(rec *query.FluxRecord) models.EquipmentMetric {
	metric := models.EquipmentMetric{
		ID:          stringValue(rec, "id"),
		EquipmentID: stringValue(rec, "equipment_id"),
		MetricName:  stringValue(rec, "metric_name"),
		MetricValue: floatValue(rec, "metric_value"),
		Unit:        stringValue(rec, "unit"),
		Status:      stringValue(rec, "status"),
		Metadata:    decodeMap(stringValue(rec, "metadata")),
		Timestamp:   rec.Time(),
		TenantID:    stringValue(rec, "tenant_id"),
	}

	if threshold, ok := rec.ValueByKey("alert_threshold").(float64); ok {
		metric.AlertThreshold = &threshold
	}

	return metric
}

// line protocol rejects tags without a value
func nonEmptyTags(tags map[string]string) map[string]string {
	for k, v := range tags {
		if v == "" {
			delete(tags, k)
		}
	}
	return tags
}

func stringValue(rec *query.FluxRecord, key string) string {
	v, _ := rec.ValueByKey(key).(string)
	return v
}

func floatValue(rec *query.FluxRecord, key string) float64 {
	v, _ := rec.ValueByKey(key).(float64)
	return v
}

func encodeMap(m map[string]any) string {
	b, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func decodeMap(s string) map[string]any {
	m := map[string]any{}
	if s == "" {
		return m
	}

	json.Unmarshal([]byte(s), &m)
	return m
}
