package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/posalpro/posalpro/pkg/utils"
	"github.com/posalpro/posalpro/shared/platform/analytics"
)

// MetricsHandler expone la analítica de consultas de listado.
type MetricsHandler struct {
	sink analytics.QueryMetricsSink
}

func NewMetricsHandler(sink analytics.QueryMetricsSink) *MetricsHandler {
	return &MetricsHandler{sink: sink}
}

// GetReductionTrend endpoint GET /admin/metrics/reduction-trend
//
// Devuelve, por día, cuántos listados hubo y la reducción media de payload
// lograda por la proyección de campos. Acepta ?days=N (por defecto 30).
func (h *MetricsHandler) GetReductionTrend(c *gin.Context) {
	if h.sink == nil {
		utils.SendError(c, http.StatusServiceUnavailable, "analytics sink not configured")
		return
	}

	days := 30
	if d := c.Query("days"); d != "" {
		if v, err := strconv.Atoi(d); err == nil && v > 0 {
			days = v
		}
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	trends, err := h.sink.GetReductionTrend(c.Request.Context(), start, end)
	if err != nil {
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusOK, trends)
}

func RegisterMetricsRoutes(r *gin.Engine, handler *MetricsHandler) {
	admin := r.Group("/admin/metrics")
	{
		admin.GET("/reduction-trend", handler.GetReductionTrend)
	}
}
