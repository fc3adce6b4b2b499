package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anyulbade/retail-insights-engine/internal/dto"
	"github.com/anyulbade/retail-insights-engine/internal/query"
	"github.com/anyulbade/retail-insights-engine/internal/service"
)

type DimensionHandler struct {
	svc *service.DimensionService
}

func NewDimensionHandler(svc *service.DimensionService) *DimensionHandler {
	return &DimensionHandler{svc: svc}
}

func (h *DimensionHandler) Regions(c *gin.Context) {
	h.respond(c, func(ctx context.Context, _ query.Filters) ([]service.DimensionValue, error) {
		return h.svc.Regions(ctx)
	})
}

func (h *DimensionHandler) Stores(c *gin.Context) {
	h.respond(c, h.svc.Stores)
}

func (h *DimensionHandler) Brands(c *gin.Context) {
	h.respond(c, func(ctx context.Context, _ query.Filters) ([]service.DimensionValue, error) {
		return h.svc.Brands(ctx)
	})
}

func (h *DimensionHandler) Products(c *gin.Context) {
	h.respond(c, h.svc.Products)
}

func (h *DimensionHandler) respond(c *gin.Context, list func(context.Context, query.Filters) ([]service.DimensionValue, error)) {
	var q dto.SelectionQuery
	if err := dto.Bind(c, &q); err != nil {
		_ = c.Error(err)
		return
	}
	filters, err := q.Filters()
	if err != nil {
		_ = c.Error(err)
		return
	}

	values, err := list(c.Request.Context(), filters)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.DimensionResponse{Data: values})
}
