package handlers

import (
	"net/http"

	"hunt-sales-api/pkg/services"

	"github.com/gin-gonic/gin"
)

const defaultMonitoringPeriod = "24h"

// monitoringPeriods maps the period query value to hours.
var monitoringPeriods = map[string]int{
	"1h":  1,
	"24h": 24,
	"7d":  24 * 7,
}

// MonitoringHandler はアクセスログ集計のハンドラです。
type MonitoringHandler struct {
	service *services.MonitoringService
}

// NewMonitoringHandler は新しいMonitoringHandlerを生成します。
func NewMonitoringHandler(service *services.MonitoringService) *MonitoringHandler {
	return &MonitoringHandler{service: service}
}

// GetLogs returns the dashboard aggregation for ?period=1h|24h|7d.
func (h *MonitoringHandler) GetLogs(c *gin.Context) {
	period := c.DefaultQuery("period", defaultMonitoringPeriod)
	hours, ok := monitoringPeriods[period]
	if !ok {
		writeError(c, services.NewInvalidInput("Invalid period. Expected one of 1h, 24h, 7d."))
		return
	}

	c.JSON(http.StatusOK, h.service.GetDashboardData(hours))
}
