package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/anyulbade/retail-insights-engine/internal/apperr"
	"github.com/anyulbade/retail-insights-engine/internal/dto"
	"github.com/anyulbade/retail-insights-engine/internal/service"
)

type CustomerHandler struct {
	customers *service.CustomerService
	segments  *service.SegmentService
}

func NewCustomerHandler(customers *service.CustomerService, segments *service.SegmentService) *CustomerHandler {
	return &CustomerHandler{customers: customers, segments: segments}
}

func (h *CustomerHandler) GetMetrics(c *gin.Context) {
	var q dto.CustomerQuery
	if err := dto.Bind(c, &q); err != nil {
		_ = c.Error(err)
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

	metrics, err := h.customers.FetchCustomerMetrics(c.Request.Context(), service.CustomerRequest{
		ComparisonLevel: q.ComparisonLevel,
		Filters:         filters,
		StartDate:       start,
		EndDate:         end,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// GetSegments breaks a metric down by a customer attribute. comparison_level
// is optional.
func (h *CustomerHandler) GetSegments(c *gin.Context) {
	var q dto.SegmentQuery
	if err := dto.Bind(c, &q); err != nil {
		_ = c.Error(err)
		return
	}
	switch {
	case strings.TrimSpace(q.Metric) == "":
		_ = c.Error(apperr.MissingParameter("metric"))
		return
	case strings.TrimSpace(q.SegmentBy) == "":
		_ = c.Error(apperr.MissingParameter("segment_by"))
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

	result, err := h.segments.FetchSegmentedMetric(c.Request.Context(), service.SegmentRequest{
		Metric:          q.Metric,
		SegmentBy:       q.SegmentBy,
		ComparisonLevel: q.ComparisonLevel,
		Filters:         filters,
		StartDate:       start,
		EndDate:         end,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}
