package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anyulbade/retail-insights-engine/internal/dto"
	"github.com/anyulbade/retail-insights-engine/internal/service"
)

type KPIHandler struct {
	svc *service.KPIService
}

func NewKPIHandler(svc *service.KPIService) *KPIHandler {
	return &KPIHandler{svc: svc}
}

func (h *KPIHandler) GetAllKPI(c *gin.Context) {
	var q dto.RangeQuery
	if err := dto.Bind(c, &q); err != nil {
		_ = c.Error(err)
		return
	}
	start, end, err := q.Dates()
	if err != nil {
		_ = c.Error(err)
		return
	}

	cards, err := h.svc.GetAllKPI(c.Request.Context(), start, end)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, cards)
}
