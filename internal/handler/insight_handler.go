package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/anyulbade/retail-insights-engine/internal/apperr"
	"github.com/anyulbade/retail-insights-engine/internal/dto"
	"github.com/anyulbade/retail-insights-engine/internal/service"
)

type InsightHandler struct {
	svc *service.InsightService
}

func NewInsightHandler(svc *service.InsightService) *InsightHandler {
	return &InsightHandler{svc: svc}
}

// GetInsights compares a sales metric across a level, region by default.
func (h *InsightHandler) GetInsights(c *gin.Context) {
	var q dto.InsightQuery
	if err := dto.Bind(c, &q); err != nil {
		_ = c.Error(err)
		return
	}
	if strings.TrimSpace(q.Metric) == "" {
		_ = c.Error(apperr.MissingParameter("metric"))
		return
	}
	if strings.TrimSpace(q.ComparisonLevel) == "" {
		q.ComparisonLevel = dto.DefaultComparisonLevel
	}

	filters, err := q.Filters()
	if err != nil {
		_ = c.Error(err)
		return
	}
	start, end, err := q.Dates()
	if err != nil {
		_ = c.Error(err)
		return
	}

	result, err := h.svc.FetchInsights(c.Request.Context(), service.InsightRequest{
		Metric:          q.Metric,
		ComparisonLevel: q.ComparisonLevel,
		Filters:         filters,
		StartDate:       start,
		EndDate:         end,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewInsightResponse(result))
}
