package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/anyulbade/retail-insights-engine/internal/apperr"
	"github.com/anyulbade/retail-insights-engine/internal/dto"
	"github.com/anyulbade/retail-insights-engine/internal/service"
)

type RankingHandler struct {
	svc *service.RankingService
}

func NewRankingHandler(svc *service.RankingService) *RankingHandler {
	return &RankingHandler{svc: svc}
}

func (h *RankingHandler) GetRanking(c *gin.Context) {
	var q dto.RankingQuery
	if err := dto.Bind(c, &q); err != nil {
		_ = c.Error(err)
		return
	}
	if strings.TrimSpace(q.Metric) == "" {
		_ = c.Error(apperr.MissingParameter("metric"))
		return
	}
	limit, err := q.Limit()
	if err != nil {
		_ = c.Error(err)
		return
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

	level := c.Param("level")
	items, err := h.svc.TopByMetric(c.Request.Context(), service.RankingRequest{
		Metric:    q.Metric,
		Level:     level,
		Filters:   filters,
		StartDate: start,
		EndDate:   end,
		Limit:     limit,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	if len(items) == 0 {
		_ = c.Error(apperr.NoData("no " + level + " activity in range"))
		return
	}

	c.JSON(http.StatusOK, dto.RankingResponse{
		Level:  strings.ToLower(level),
		Metric: items[0].MetricName,
		Data:   items,
	})
}
