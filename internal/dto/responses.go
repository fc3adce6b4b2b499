package dto

import "github.com/anyulbade/retail-insights-engine/internal/service"

type InsightData struct {
	Summary []service.InsightSummary    `json:"summary"`
	Trend   []service.InsightTrendPoint `json:"trend"`
}

type InsightResponse struct {
	Data InsightData         `json:"data"`
	Meta service.InsightMeta `json:"meta"`
}

func NewInsightResponse(r *service.InsightResult) InsightResponse {
	return InsightResponse{
		Data: InsightData{Summary: r.Summary, Trend: r.Trend},
		Meta: r.Meta,
	}
}

type RankingResponse struct {
	Level  string               `json:"level"`
	Metric string               `json:"metric"`
	Data   []service.RankedItem `json:"data"`
}

type DimensionResponse struct {
	Data []service.DimensionValue `json:"data"`
}
