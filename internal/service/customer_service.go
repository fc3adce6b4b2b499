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

type CustomerService struct {
	store Acquirer
	calc  daterange.Calculator
	cache *ResultCache
}

func NewCustomerService(store Acquirer, calc daterange.Calculator, rc *ResultCache) *CustomerService {
	return &CustomerService{store: store, calc: calc, cache: rc}
}

type CustomerRequest struct {
	ComparisonLevel string
	Filters         query.Filters
	StartDate       time.Time
	EndDate         time.Time
}

type NamedValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type CustomerMetric struct {
	MetricName  string       `json:"metric_name"`
	TotalValue  float64      `json:"total_value"`
	Comparisons []NamedValue `json:"comparisons"`
}

// FetchCustomerMetrics reports every customer metric overall and per value of
// the comparison level.
func (s *CustomerService) FetchCustomerMetrics(ctx context.Context, req CustomerRequest) ([]CustomerMetric, error) {
	level, err := query.ParseLevel(req.ComparisonLevel)
	if err != nil {
		return nil, err
	}
	window, err := s.calc.Compute(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	key := cacheKey("customers", level, req.Filters, window.Current.StartDate(), window.Current.EndDate())
	return cached(ctx, s.cache, key, func() ([]CustomerMetric, error) {
		return s.fetchCustomerMetrics(ctx, level, req.Filters, window)
	})
}

func (s *CustomerService) fetchCustomerMetrics(ctx context.Context, level query.Level, filters query.Filters, window daterange.Window) ([]CustomerMetric, error) {
	rl := requestLog{op: "fetch customer metrics", level: level, filters: filters, window: window}

	plan, err := query.BuildCustomer(level, filters, window.Current)
	if err != nil {
		return nil, err
	}

	conn, err := s.store.Acquire(ctx)
	if err != nil {
		return nil, rl.storeFailure(err)
	}
	defer conn.Release()

	repo := repository.NewCustomerRepository(conn)
	overallRows, err := repo.Components(ctx, plan.Overall)
	if err != nil {
		return nil, rl.storeFailure(err)
	}
	var byDimension []repository.ComponentRow
	if plan.ByDimension != nil {
		byDimension, err = repo.Components(ctx, *plan.ByDimension)
		if err != nil {
			return nil, rl.storeFailure(err)
		}
	}

	var overall metric.Components
	for _, r := range overallRows {
		overall = overall.Add(r.Components)
	}

	defs := metric.Customer()
	out := make([]CustomerMetric, 0, len(defs))
	for _, def := range defs {
		m := CustomerMetric{
			MetricName:  string(def.Name),
			TotalValue:  format.Round2(def.Derive(overall)),
			Comparisons: make([]NamedValue, 0, len(byDimension)),
		}
		for _, r := range byDimension {
			m.Comparisons = append(m.Comparisons, NamedValue{
				Name:  r.ComparisonValue,
				Value: format.Round2(def.Derive(r.Components)),
			})
		}
		out = append(out, m)
	}
	return out, nil
}
