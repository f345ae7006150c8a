package controllers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/helpers"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/resources"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/services"
)

type GatewayHttpRoutes interface {
	ReceiveSensorData(ctx *gin.Context)
	ReceiveSensorDataBulk(ctx *gin.Context)
	ReceiveEquipmentMetric(ctx *gin.Context)
	ReceiveEquipmentMetricsBulk(ctx *gin.Context)
	ValidateSensorData(ctx *gin.Context)
	GetRealtimeData(ctx *gin.Context)
	GetRealtimeMetrics(ctx *gin.Context)

	GetStatus(ctx *gin.Context)
	GetDeviceStatus(ctx *gin.Context)
	SendCommand(ctx *gin.Context)
	PublishToTopic(ctx *gin.Context)
	AcknowledgeAlert(ctx *gin.Context)
}

type gatewayHttpRoutes struct {
	telemetry services.TelemetryService
	gateway   services.GatewayService
}

func NewGatewayHttpRoutes(telemetry services.TelemetryService, gateway services.GatewayService) *gatewayHttpRoutes {
	return &gatewayHttpRoutes{
		telemetry: telemetry,
		gateway:   gateway,
	}
}

func (r *gatewayHttpRoutes) ReceiveSensorData(ctx *gin.Context) {
	var requestBody models.RawSensorReading
	if err := ctx.BindJSON(&requestBody); err != nil {
		ctx.JSON(400, gin.H{"err": err.Error()})
		return
	}

	reading, err := r.telemetry.IngestOne(ctx, services.IngestOneInput{
		Reading:  requestBody,
		TenantID: helpers.TenantFromContext(ctx),
	})
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(201, reading)
}

func (r *gatewayHttpRoutes) ReceiveSensorDataBulk(ctx *gin.Context) {
	var requestBody resources.BulkSensorDataBody
	if err := ctx.BindJSON(&requestBody); err != nil {
		ctx.JSON(400, gin.H{"err": err.Error()})
		return
	}

	result, err := r.telemetry.IngestBulk(ctx, services.IngestBulkInput{
		Readings: requestBody.Readings,
		TenantID: helpers.TenantFromContext(ctx),
	})
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(200, bulkResponse(result, "readings"))
}

func (r *gatewayHttpRoutes) ReceiveEquipmentMetric(ctx *gin.Context) {
	var requestBody models.RawEquipmentMetric
	if err := ctx.BindJSON(&requestBody); err != nil {
		ctx.JSON(400, gin.H{"err": err.Error()})
		return
	}

	metric, err := r.telemetry.IngestMetric(ctx, services.IngestMetricInput{
		Metric:   requestBody,
		TenantID: helpers.TenantFromContext(ctx),
	})
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(201, metric)
}

func (r *gatewayHttpRoutes) ReceiveEquipmentMetricsBulk(ctx *gin.Context) {
	var requestBody resources.BulkEquipmentMetricsBody
	if err := ctx.BindJSON(&requestBody); err != nil {
		ctx.JSON(400, gin.H{"err": err.Error()})
		return
	}

	result, err := r.telemetry.IngestMetricsBulk(ctx, services.IngestMetricsBulkInput{
		Metrics:  requestBody.Metrics,
		TenantID: helpers.TenantFromContext(ctx),
	})
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(200, bulkResponse(result, "metrics"))
}

func bulkResponse(result *models.BulkIngestResult, kind string) resources.BulkIngestResponse {
	resp := resources.BulkIngestResponse{
		Success:   result.Failed == 0,
		Processed: result.Processed,
		Failed:    result.Failed,
	}
	if result.Failed > 0 {
		resp.Message = fmt.Sprintf("%d of %d %s could not be ingested", result.Failed, result.Processed+result.Failed, kind)
	}
	return resp
}

func (r *gatewayHttpRoutes) ValidateSensorData(ctx *gin.Context) {
	var requestBody models.RawSensorReading
	if err := ctx.BindJSON(&requestBody); err != nil {
		ctx.JSON(400, gin.H{"err": err.Error()})
		return
	}

	result, err := r.telemetry.ValidateReading(ctx, services.ValidateReadingInput{
		Reading: requestBody,
	})
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(200, result)
}

func (r *gatewayHttpRoutes) GetRealtimeData(ctx *gin.Context) {
	type queryParams struct {
		DeviceIDs   string `form:"deviceIds"`
		SensorTypes string `form:"sensorTypes"`
		TimeRange   string `form:"timeRange"`
		Limit       int    `form:"limit"`
	}

	var params queryParams
	if err := ctx.ShouldBindQuery(&params); err != nil {
		ctx.JSON(400, gin.H{"err": err.Error()})
		return
	}

	sensorTypes := []models.SensorType{}
	for _, st := range helpers.SplitCSV(params.SensorTypes) {
		sensorTypes = append(sensorTypes, models.SensorType(st))
	}

	readings, err := r.telemetry.GetRealtimeData(ctx, services.GetRealtimeDataInput{
		TenantID:    helpers.TenantFromContext(ctx),
		DeviceIDs:   helpers.SplitCSV(params.DeviceIDs),
		SensorTypes: sensorTypes,
		TimeRange:   params.TimeRange,
		Limit:       params.Limit,
	})
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(200, resources.RealtimeDataResponse{
		TimeRange: timeRangeOrDefault(params.TimeRange),
		Count:     len(readings),
		Readings:  readings,
	})
}

func (r *gatewayHttpRoutes) GetRealtimeMetrics(ctx *gin.Context) {
	type queryParams struct {
		EquipmentIDs string `form:"equipmentIds"`
		TimeRange    string `form:"timeRange"`
		Limit        int    `form:"limit"`
	}

	var params queryParams
	if err := ctx.ShouldBindQuery(&params); err != nil {
		ctx.JSON(400, gin.H{"err": err.Error()})
		return
	}

	metrics, err := r.telemetry.GetRealtimeMetrics(ctx, services.GetRealtimeMetricsInput{
		TenantID:     helpers.TenantFromContext(ctx),
		EquipmentIDs: helpers.SplitCSV(params.EquipmentIDs),
		TimeRange:    params.TimeRange,
		Limit:        params.Limit,
	})
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(200, resources.RealtimeMetricsResponse{
		TimeRange: timeRangeOrDefault(params.TimeRange),
		Count:     len(metrics),
		Metrics:   metrics,
		Summary:   resources.SummarizeMetrics(metrics),
	})
}

func timeRangeOrDefault(tr string) string {
	if tr == "" {
		return "1h"
	}
	return tr
}

func (r *gatewayHttpRoutes) GetStatus(ctx *gin.Context) {
	status, err := r.gateway.GetStatus(ctx)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(200, status)
}

func (r *gatewayHttpRoutes) GetDeviceStatus(ctx *gin.Context) {
	type uriParams struct {
		DeviceID string `uri:"id" binding:"required"`
	}

	var params uriParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(400, gin.H{"err": err.Error()})
		return
	}

	view, err := r.gateway.GetDeviceStatus(ctx, services.GetDeviceStatusInput{
		DeviceID: params.DeviceID,
		TenantID: helpers.TenantFromContext(ctx),
	})
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(200, view)
}

func (r *gatewayHttpRoutes) SendCommand(ctx *gin.Context) {
	type uriParams struct {
		DeviceID string `uri:"id" binding:"required"`
	}

	var params uriParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(400, gin.H{"err": err.Error()})
		return
	}

	var command map[string]any
	if err := ctx.BindJSON(&command); err != nil {
		ctx.JSON(400, gin.H{"err": err.Error()})
		return
	}

	protocol := models.Protocol(ctx.DefaultQuery("protocol", string(models.ProtocolBroker)))
	cmd, err := r.gateway.SendCommand(ctx, services.SendCommandInput{
		DeviceID: params.DeviceID,
		Command:  command,
		Protocol: protocol,
		TenantID: helpers.TenantFromContext(ctx),
	})
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(200, resources.SendCommandResponse{
		Success: true,
		Message: fmt.Sprintf("command sent to device %s via %s", params.DeviceID, cmd.Protocol),
		Command: *cmd,
	})
}

func (r *gatewayHttpRoutes) PublishToTopic(ctx *gin.Context) {
	var requestBody resources.PublishToTopicBody
	if err := ctx.BindJSON(&requestBody); err != nil {
		ctx.JSON(400, gin.H{"err": err.Error()})
		return
	}

	err := r.gateway.PublishToTopic(ctx, services.PublishToTopicInput{
		Topic:   requestBody.Topic,
		Payload: requestBody.Payload,
	})
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(200, resources.PublishToTopicResponse{
		Success: true,
		Topic:   requestBody.Topic,
	})
}

func (r *gatewayHttpRoutes) AcknowledgeAlert(ctx *gin.Context) {
	type uriParams struct {
		AlertID string `uri:"id" binding:"required"`
	}

	var params uriParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(400, gin.H{"err": err.Error()})
		return
	}

	var requestBody resources.AcknowledgeAlertBody
	if err := ctx.BindJSON(&requestBody); err != nil {
		ctx.JSON(400, gin.H{"err": err.Error()})
		return
	}

	alert, err := r.gateway.AcknowledgeAlert(ctx, services.AcknowledgeAlertInput{
		ID:             params.AlertID,
		TenantID:       helpers.TenantFromContext(ctx),
		AcknowledgedBy: requestBody.AcknowledgedBy,
	})
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(200, alert)
}
