package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/lamassuiot/lamassu-iot-gateway/backend/pkg/controllers"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/services"
	"github.com/sirupsen/logrus"
)

func NewGatewayHTTPLayer(logger *logrus.Entry, parentRouterGroup *gin.RouterGroup, telemetry services.TelemetryService, gateway services.GatewayService) {
	routes := controllers.NewGatewayHttpRoutes(telemetry, gateway)

	router := parentRouterGroup.Group("/gateway")

	router.POST("/sensor-data", routes.ReceiveSensorData)
	router.POST("/sensor-data/bulk", routes.ReceiveSensorDataBulk)
	router.POST("/equipment-metrics", routes.ReceiveEquipmentMetric)
	router.POST("/equipment-metrics/bulk", routes.ReceiveEquipmentMetricsBulk)
	router.POST("/validate-sensor-data", routes.ValidateSensorData)

	router.GET("/realtime-data", routes.GetRealtimeData)
	router.GET("/realtime-metrics", routes.GetRealtimeMetrics)

	router.GET("/status", routes.GetStatus)
	router.GET("/devices/:id/status", routes.GetDeviceStatus)
	router.POST("/devices/:id/commands", routes.SendCommand)
	router.POST("/broker/publish", routes.PublishToTopic)
	router.POST("/alerts/:id/acknowledge", routes.AcknowledgeAlert)

	logger.Debugf("gateway routes registered under %s", router.BasePath())
}
