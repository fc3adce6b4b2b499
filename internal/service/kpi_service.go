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

// KPIService builds the headline cards for every sales metric.
type KPIService struct {
	store Acquirer
	calc  daterange.Calculator
	cache *ResultCache
}

func NewKPIService(store Acquirer, calc daterange.Calculator, rc *ResultCache) *KPIService {
	return &KPIService{store: store, calc: calc, cache: rc}
}

type TrendPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type KpiResult struct {
	Title             string       `json:"title"`
	Value             string       `json:"value"`
	TotalValue        float64      `json:"total_value"`
	PercentageChange  string       `json:"percentage_change"`
	TrendData         []TrendPoint `json:"trend_data"`
	PreviousTotal     string       `json:"previous_total"`
	CurrentDateRange  string       `json:"current_date_range"`
	PreviousDateRange string       `json:"previous_date_range"`
}

// GetAllKPI returns Total Sales, Total Profit, Total Orders and Total Returns
// cards for the range.
func (s *KPIService) GetAllKPI(ctx context.Context, start, end time.Time) ([]KpiResult, error) {
	window, err := s.calc.Compute(start, end)
	if err != nil {
		return nil, err
	}

	key := cacheKey("kpi", window.Current.StartDate(), window.Current.EndDate())
	return cached(ctx, s.cache, key, func() ([]KpiResult, error) {
		return s.getAllKPI(ctx, window)
	})
}

func (s *KPIService) getAllKPI(ctx context.Context, window daterange.Window) ([]KpiResult, error) {
	conn, err := s.store.Acquire(ctx)
	if err != nil {
		return nil, requestLog{op: "get all kpi", window: window}.storeFailure(err)
	}
	defer conn.Release()

	repo := repository.NewInsightRepository(conn)
	defs := metric.Sales()
	results := make([]KpiResult, 0, len(defs))

	for _, def := range defs {
		rl := requestLog{op: "get all kpi", metric: string(def.Name), window: window}

		current, err := query.Build(query.Spec{
			Metric:       def,
			Range:        window.Current,
			Granularity:  window.Granularity,
			IncludeTrend: true,
		})
		if err != nil {
			return nil, err
		}
		previous, err := query.Build(query.Spec{Metric: def, Range: window.Previous})
		if err != nil {
			return nil, err
		}

		currentRows, err := repo.Summary(ctx, current.Summary)
		if err != nil {
			return nil, rl.storeFailure(err)
		}
		previousRows, err := repo.Summary(ctx, previous.Summary)
		if err != nil {
			return nil, rl.storeFailure(err)
		}
		trendRows, err := repo.Trend(ctx, *current.Trend)
		if err != nil {
			return nil, rl.storeFailure(err)
		}

		total := sumSummary(currentRows)
		previousTotal := sumSummary(previousRows)

		results = append(results, KpiResult{
			Title:             string(def.Name),
			Value:             format.Value(total, def.Display),
			TotalValue:        format.Round2(total),
			PercentageChange:  format.Percent(PercentageChange(total, previousTotal)),
			TrendData:         fillTotals(trendRows, window),
			PreviousTotal:     format.Value(previousTotal, def.Display),
			CurrentDateRange:  format.DateRange(window.Current.Start, window.Current.End),
			PreviousDateRange: format.DateRange(window.Previous.Start, window.Previous.End),
		})
	}
	return results, nil
}

func sumSummary(rows []repository.SummaryRow) float64 {
	var total float64
	for _, r := range rows {
		total += r.MetricValue
	}
	return total
}

func fillTotals(rows []repository.TrendRow, w daterange.Window) []TrendPoint {
	byBucket := make(map[string]float64, len(rows))
	for _, r := range rows {
		byBucket[r.Bucket] += r.MetricValue
	}

	buckets := w.Current.Buckets(w.Granularity)
	out := make([]TrendPoint, len(buckets))
	for i, b := range buckets {
		out[i] = TrendPoint{Date: b, Value: format.Round2(byBucket[b])}
	}
	return out
}
