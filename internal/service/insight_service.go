package service

import (
	"context"
	"sort"
	"time"

	"github.com/anyulbade/retail-insights-engine/internal/daterange"
	"github.com/anyulbade/retail-insights-engine/internal/format"
	"github.com/anyulbade/retail-insights-engine/internal/metric"
	"github.com/anyulbade/retail-insights-engine/internal/query"
	"github.com/anyulbade/retail-insights-engine/internal/repository"
)

// InsightService compares a sales metric across a dimension between a range
// and the mirrored previous range.
type InsightService struct {
	store Acquirer
	calc  daterange.Calculator
	cache *ResultCache
}

func NewInsightService(store Acquirer, calc daterange.Calculator, rc *ResultCache) *InsightService {
	return &InsightService{store: store, calc: calc, cache: rc}
}

type InsightRequest struct {
	Metric          string
	ComparisonLevel string
	Filters         query.Filters
	StartDate       time.Time
	EndDate         time.Time
}

type InsightSummary struct {
	ComparisonValue  string  `json:"comparison_value"`
	MetricValue      float64 `json:"metric_value"`
	MetricName       string  `json:"metric_name"`
	PercentageChange float64 `json:"percentage_change"`
}

type InsightTrendPoint struct {
	ComparisonValue string  `json:"comparison_value"`
	Date            string  `json:"date"`
	MetricValue     float64 `json:"metric_value"`
}

type InsightMeta struct {
	Metric            string `json:"metric"`
	ComparisonLevel   string `json:"comparison_level"`
	Granularity       string `json:"granularity"`
	StartDate         string `json:"start_date"`
	EndDate           string `json:"end_date"`
	PreviousStartDate string `json:"previous_start_date"`
	PreviousEndDate   string `json:"previous_end_date"`
}

type InsightResult struct {
	Summary []InsightSummary    `json:"summary"`
	Trend   []InsightTrendPoint `json:"trend"`
	Meta    InsightMeta         `json:"meta"`
}

// Comparison is one dimension value's current total against the previous range.
type Comparison struct {
	DimensionValue   string  `json:"dimension_value"`
	CurrentValue     float64 `json:"current_value"`
	PreviousValue    float64 `json:"previous_value"`
	PercentageChange float64 `json:"percentage_change"`
}

type insightInput struct {
	def    metric.Definition
	level  query.Level
	window daterange.Window
}

func (s *InsightService) validate(req InsightRequest) (insightInput, error) {
	def, err := metric.LookupSales(req.Metric)
	if err != nil {
		return insightInput{}, err
	}
	level, err := query.ParseLevel(req.ComparisonLevel)
	if err != nil {
		return insightInput{}, err
	}
	window, err := s.calc.Compute(req.StartDate, req.EndDate)
	if err != nil {
		return insightInput{}, err
	}
	return insightInput{def: def, level: level, window: window}, nil
}

// FetchInsights returns the per-dimension summary with percentage change and
// the zero-filled trend of the current range.
func (s *InsightService) FetchInsights(ctx context.Context, req InsightRequest) (*InsightResult, error) {
	in, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	key := cacheKey("insights", in.def.Name, in.level, req.Filters, in.window.Current.StartDate(), in.window.Current.EndDate())
	return cached(ctx, s.cache, key, func() (*InsightResult, error) {
		return s.fetchInsights(ctx, in, req.Filters)
	})
}

func (s *InsightService) fetchInsights(ctx context.Context, in insightInput, filters query.Filters) (*InsightResult, error) {
	rl := requestLog{op: "fetch insights", metric: string(in.def.Name), level: in.level, filters: filters, window: in.window}

	current, err := query.Build(query.Spec{
		Metric:       in.def,
		Level:        in.level,
		Filters:      filters,
		Range:        in.window.Current,
		Granularity:  in.window.Granularity,
		IncludeTrend: true,
	})
	if err != nil {
		return nil, err
	}

	conn, err := s.store.Acquire(ctx)
	if err != nil {
		return nil, rl.storeFailure(err)
	}
	defer conn.Release()

	comparisons, err := s.compare(ctx, conn, in, filters, current.Summary)
	if err != nil {
		return nil, rl.storeFailure(err)
	}

	trendRows, err := repository.NewInsightRepository(conn).Trend(ctx, *current.Trend)
	if err != nil {
		return nil, rl.storeFailure(err)
	}

	result := &InsightResult{
		Summary: make([]InsightSummary, 0, len(comparisons)),
		Trend:   fillTrend(comparisons, trendRows, in.window),
		Meta: InsightMeta{
			Metric:            string(in.def.Name),
			ComparisonLevel:   string(in.level),
			Granularity:       string(in.window.Granularity),
			StartDate:         in.window.Current.StartDate(),
			EndDate:           in.window.Current.EndDate(),
			PreviousStartDate: in.window.Previous.StartDate(),
			PreviousEndDate:   in.window.Previous.EndDate(),
		},
	}
	for _, c := range comparisons {
		result.Summary = append(result.Summary, InsightSummary{
			ComparisonValue:  c.DimensionValue,
			MetricValue:      format.Round2(c.CurrentValue),
			MetricName:       string(in.def.Name),
			PercentageChange: format.Round2(c.PercentageChange),
		})
	}
	return result, nil
}

// Compare returns the current value and percentage change of every dimension
// value active in the current range.
func (s *InsightService) Compare(ctx context.Context, req InsightRequest) ([]Comparison, error) {
	in, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	rl := requestLog{op: "compare", metric: string(in.def.Name), level: in.level, filters: req.Filters, window: in.window}

	current, err := query.Build(query.Spec{Metric: in.def, Level: in.level, Filters: req.Filters, Range: in.window.Current})
	if err != nil {
		return nil, err
	}

	conn, err := s.store.Acquire(ctx)
	if err != nil {
		return nil, rl.storeFailure(err)
	}
	defer conn.Release()

	comparisons, err := s.compare(ctx, conn, in, req.Filters, current.Summary)
	if err != nil {
		return nil, rl.storeFailure(err)
	}
	return comparisons, nil
}

func (s *InsightService) compare(ctx context.Context, conn repository.Querier, in insightInput, filters query.Filters, currentStmt query.Statement) ([]Comparison, error) {
	previous, err := query.Build(query.Spec{Metric: in.def, Level: in.level, Filters: filters, Range: in.window.Previous})
	if err != nil {
		return nil, err
	}

	repo := repository.NewInsightRepository(conn)
	currentRows, err := repo.Summary(ctx, currentStmt)
	if err != nil {
		return nil, err
	}
	previousRows, err := repo.Summary(ctx, previous.Summary)
	if err != nil {
		return nil, err
	}

	var known []string
	if in.level.Enumerable() {
		stmt, err := query.BuildDimensionValues(in.level, filters)
		if err != nil {
			return nil, err
		}
		values, err := repository.NewDimensionRepository(conn).Values(ctx, stmt)
		if err != nil {
			return nil, err
		}
		for _, v := range values {
			known = append(known, v.Name)
		}
	}

	return compareSummaries(currentRows, previousRows, known), nil
}

// compareSummaries merges the current and previous totals. Every current value
// and every known value is reported; values absent from a range count as 0.
func compareSummaries(current, previous []repository.SummaryRow, known []string) []Comparison {
	prev := make(map[string]float64, len(previous))
	for _, p := range previous {
		prev[p.ComparisonValue] += p.MetricValue
	}

	cur := make(map[string]float64, len(current)+len(known))
	for _, k := range known {
		cur[k] = 0
	}
	for _, c := range current {
		cur[c.ComparisonValue] += c.MetricValue
	}

	out := make([]Comparison, 0, len(cur))
	for value, total := range cur {
		out = append(out, Comparison{
			DimensionValue:   value,
			CurrentValue:     total,
			PreviousValue:    prev[value],
			PercentageChange: PercentageChange(total, prev[value]),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DimensionValue < out[j].DimensionValue })
	return out
}

func fillTrend(comparisons []Comparison, rows []repository.TrendRow, w daterange.Window) []InsightTrendPoint {
	values := make(map[string]map[string]float64)
	for _, r := range rows {
		if values[r.ComparisonValue] == nil {
			values[r.ComparisonValue] = make(map[string]float64)
		}
		values[r.ComparisonValue][r.Bucket] += r.MetricValue
	}

	buckets := w.Current.Buckets(w.Granularity)
	out := make([]InsightTrendPoint, 0, len(comparisons)*len(buckets))
	for _, c := range comparisons {
		for _, b := range buckets {
			out = append(out, InsightTrendPoint{
				ComparisonValue: c.DimensionValue,
				Date:            b,
				MetricValue:     format.Round2(values[c.DimensionValue][b]),
			})
		}
	}
	return out
}
