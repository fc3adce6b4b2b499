package handler

import "github.com/gin-gonic/gin"

type Handlers struct {
	Health    *HealthHandler
	KPI       *KPIHandler
	Insight   *InsightHandler
	Customer  *CustomerHandler
	Ranking   *RankingHandler
	Table     *TableHandler
	Dimension *DimensionHandler
}

// Register mounts the API under /api/v1. Health is also served at /health.
func Register(router *gin.Engine, h Handlers) {
	if h.Health != nil {
		router.GET("/health", h.Health.Health)
	}

	api := router.Group("/api/v1")
	{
		if h.Health != nil {
			api.GET("/health", h.Health.Health)
		}
		api.GET("/kpi", h.KPI.GetAllKPI)
		api.GET("/kpi/insight", h.Insight.GetInsights)
		api.GET("/customers/metrics", h.Customer.GetMetrics)
		api.GET("/customers/segments", h.Customer.GetSegments)
		api.GET("/rankings/:level", h.Ranking.GetRanking)
		api.GET("/tables/:level", h.Table.GetTable)
		api.GET("/regions", h.Dimension.Regions)
		api.GET("/stores", h.Dimension.Stores)
		api.GET("/brands", h.Dimension.Brands)
		api.GET("/products", h.Dimension.Products)
	}
}
