package eventpub

import (
	"context"
	"fmt"

	lservices "github.com/lamassuiot/lamassu-iot-gateway/backend/pkg/services"
	"github.com/lamassuiot/lamassu-iot-gateway/core"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/services"
)

type TelemetryEventPublisher struct {
	Next       services.TelemetryService
	eventMWPub ICloudEventPublisher
}

func NewTelemetryEventPublisher(eventMWPub ICloudEventPublisher) lservices.TelemetryMiddleware {
	return func(next services.TelemetryService) services.TelemetryService {
		return &TelemetryEventPublisher{
			Next:       next,
			eventMWPub: NewEventPublisherWithSourceMiddleware(eventMWPub, models.GatewaySource),
		}
	}
}

func (mw TelemetryEventPublisher) IngestOne(ctx context.Context, input services.IngestOneInput) (output *models.SensorReading, err error) {
	ctx = context.WithValue(ctx, core.LamassuContextKeyEventType, models.EventReadingIngestedKey)
	ctx = withTenant(ctx, input.TenantID)

	defer func() {
		if err == nil {
			ctx = context.WithValue(ctx, core.LamassuContextKeyEventSubject, fmt.Sprintf("device/%s", output.DeviceID))
			mw.eventMWPub.PublishCloudEvent(ctx, output)
		}
	}()
	return mw.Next.IngestOne(ctx, input)
}

func (mw TelemetryEventPublisher) IngestBulk(ctx context.Context, input services.IngestBulkInput) (output *models.BulkIngestResult, err error) {
	ctx = context.WithValue(ctx, core.LamassuContextKeyEventType, models.EventBulkIngestedKey)
	ctx = context.WithValue(ctx, core.LamassuContextKeyEventSubject, "readings/bulk")
	ctx = withTenant(ctx, input.TenantID)

	defer func() {
		if err == nil && output.Processed > 0 {
			mw.eventMWPub.PublishCloudEvent(ctx, output)
		}
	}()
	return mw.Next.IngestBulk(ctx, input)
}

func (mw TelemetryEventPublisher) IngestMetric(ctx context.Context, input services.IngestMetricInput) (output *models.EquipmentMetric, err error) {
	ctx = context.WithValue(ctx, core.LamassuContextKeyEventType, models.EventMetricIngestedKey)
	ctx = withTenant(ctx, input.TenantID)

	defer func() {
		if err == nil {
			ctx = context.WithValue(ctx, core.LamassuContextKeyEventSubject, fmt.Sprintf("equipment/%s", output.EquipmentID))
			mw.eventMWPub.PublishCloudEvent(ctx, output)
		}
	}()
	return mw.Next.IngestMetric(ctx, input)
}

func (mw TelemetryEventPublisher) IngestMetricsBulk(ctx context.Context, input services.IngestMetricsBulkInput) (output *models.BulkIngestResult, err error) {
	ctx = context.WithValue(ctx, core.LamassuContextKeyEventType, models.EventMetricsBulkIngestedKey)
	ctx = context.WithValue(ctx, core.LamassuContextKeyEventSubject, "metrics/bulk")
	ctx = withTenant(ctx, input.TenantID)

	defer func() {
		if err == nil && output.Processed > 0 {
			mw.eventMWPub.PublishCloudEvent(ctx, output)
		}
	}()
	return mw.Next.IngestMetricsBulk(ctx, input)
}

func (mw TelemetryEventPublisher) RecordStatus(ctx context.Context, input services.RecordStatusInput) (output *models.DeviceStatusLog, err error) {
	ctx = context.WithValue(ctx, core.LamassuContextKeyEventType, models.EventDeviceStatusReportKey)
	ctx = context.WithValue(ctx, core.LamassuContextKeyEventSubject, fmt.Sprintf("device/%s", input.DeviceID))
	ctx = withTenant(ctx, input.TenantID)

	defer func() {
		if err == nil {
			mw.eventMWPub.PublishCloudEvent(ctx, output)
		}
	}()
	return mw.Next.RecordStatus(ctx, input)
}

func (mw TelemetryEventPublisher) GetRealtimeData(ctx context.Context, input services.GetRealtimeDataInput) ([]models.SensorReading, error) {
	return mw.Next.GetRealtimeData(ctx, input)
}

func (mw TelemetryEventPublisher) GetRealtimeMetrics(ctx context.Context, input services.GetRealtimeMetricsInput) ([]models.EquipmentMetric, error) {
	return mw.Next.GetRealtimeMetrics(ctx, input)
}

func (mw TelemetryEventPublisher) ValidateReading(ctx context.Context, input services.ValidateReadingInput) (*models.ValidationResult, error) {
	return mw.Next.ValidateReading(ctx, input)
}
