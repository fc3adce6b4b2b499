package service

import (
	"context"
	"time"

	"github.com/anyulbade/retail-insights-engine/internal/daterange"
	"github.com/anyulbade/retail-insights-engine/internal/format"
	"github.com/anyulbade/retail-insights-engine/internal/metric"
	"github.com/anyulbade/retail-insights-engine/internal/query"
	"github.com/anyulbade/retail-insights-engine/internal/repository"
)

// RankingService lists the top values of a level by a sales metric.
type RankingService struct {
	store Acquirer
	calc  daterange.Calculator
}

func NewRankingService(store Acquirer, calc daterange.Calculator) *RankingService {
	return &RankingService{store: store, calc: calc}
}

type RankingRequest struct {
	Metric    string
	Level     string
	Filters   query.Filters
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}

type RankedItem struct {
	Rank        int     `json:"rank"`
	Name        string  `json:"name"`
	MetricValue float64 `json:"metric_value"`
	MetricName  string  `json:"metric_name"`
}

func (s *RankingService) TopByMetric(ctx context.Context, req RankingRequest) ([]RankedItem, error) {
	def, err := metric.LookupSales(req.Metric)
	if err != nil {
		return nil, err
	}
	level, err := query.ParseLevel(req.Level)
	if err != nil {
		return nil, err
	}
	window, err := s.calc.Compute(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	rl := requestLog{op: "top by metric", metric: string(def.Name), level: level, filters: req.Filters, window: window}

	stmt, err := query.BuildRanking(query.RankingSpec{
		Metric:  def,
		Level:   level,
		Filters: req.Filters,
		Range:   window.Current,
		Limit:   req.Limit,
	})
	if err != nil {
		return nil, err
	}

	conn, err := s.store.Acquire(ctx)
	if err != nil {
		return nil, rl.storeFailure(err)
	}
	defer conn.Release()

	rows, err := repository.NewInsightRepository(conn).Summary(ctx, stmt)
	if err != nil {
		return nil, rl.storeFailure(err)
	}

	out := make([]RankedItem, len(rows))
	for i, r := range rows {
		out[i] = RankedItem{
			Rank:        i + 1,
			Name:        r.ComparisonValue,
			MetricValue: format.Round2(r.MetricValue),
			MetricName:  string(def.Name),
		}
	}
	return out, nil
}
