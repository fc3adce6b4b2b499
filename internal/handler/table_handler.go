package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anyulbade/retail-insights-engine/internal/dto"
	"github.com/anyulbade/retail-insights-engine/internal/service"
)

type TableHandler struct {
	svc *service.TableService
}

func NewTableHandler(svc *service.TableService) *TableHandler {
	return &TableHandler{svc: svc}
}

// GetTable serves the performance table of the level in the path.
func (h *TableHandler) GetTable(c *gin.Context) {
	var q dto.TableQuery
	if err := dto.Bind(c, &q); err != nil {
		_ = c.Error(err)
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

	res, err := h.svc.FetchTable(c.Request.Context(), service.TableRequest{
		Level:     c.Param("level"),
		SortBy:    q.SortBy,
		Order:     q.Order,
		Limit:     limit,
		Filters:   filters,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, res)
}
