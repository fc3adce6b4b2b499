package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/anyulbade/retail-insights-engine/internal/apperr"
	"github.com/anyulbade/retail-insights-engine/internal/daterange"
	"github.com/anyulbade/retail-insights-engine/internal/format"
	"github.com/anyulbade/retail-insights-engine/internal/metric"
	"github.com/anyulbade/retail-insights-engine/internal/query"
	"github.com/anyulbade/retail-insights-engine/internal/repository"
)

// TableService builds the per-dimension performance table: every sales metric
// side by side, the leading product and region, and each row's share of sales.
type TableService struct {
	store Acquirer
	calc  daterange.Calculator
	cache *ResultCache
}

func NewTableService(store Acquirer, calc daterange.Calculator, rc *ResultCache) *TableService {
	return &TableService{store: store, calc: calc, cache: rc}
}

const (
	SortDesc = "desc"
	SortAsc  = "asc"
)

type TableRequest struct {
	Level string
	// SortBy names the sales metric rows are ordered by; Total Sales when empty.
	SortBy string
	// Order is "asc" or "desc"; desc when empty.
	Order     string
	Limit     int
	Filters   query.Filters
	StartDate time.Time
	EndDate   time.Time
}

type TableRow struct {
	Name              string  `json:"name"`
	TotalSales        float64 `json:"total_sales"`
	TotalProfit       float64 `json:"total_profit"`
	TotalOrders       float64 `json:"total_orders"`
	TotalReturns      float64 `json:"total_returns"`
	TopProduct        string  `json:"top_product,omitempty"`
	TopRegion         string  `json:"top_region,omitempty"`
	SalesContribution float64 `json:"sales_contribution_percentage"`
}

type TableResult struct {
	Level     string     `json:"level"`
	SortBy    string     `json:"sort_by"`
	Order     string     `json:"order"`
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
	Rows      []TableRow `json:"rows"`
}

type tableInput struct {
	level  query.Level
	sortBy metric.Definition
	order  string
	limit  int
	window daterange.Window
}

func (s *TableService) validate(req TableRequest) (tableInput, error) {
	level, err := query.ParseLevel(req.Level)
	if err != nil {
		return tableInput{}, err
	}
	sortName := strings.TrimSpace(req.SortBy)
	if sortName == "" {
		sortName = string(metric.TotalSales)
	}
	sortBy, err := metric.LookupSales(sortName)
	if err != nil {
		return tableInput{}, err
	}
	order := strings.ToLower(strings.TrimSpace(req.Order))
	switch order {
	case "":
		order = SortDesc
	case SortAsc, SortDesc:
	default:
		return tableInput{}, apperr.InvalidFilter("order", req.Order)
	}
	if req.Limit < 0 {
		return tableInput{}, apperr.InvalidFilter("n", "negative")
	}
	window, err := s.calc.Compute(req.StartDate, req.EndDate)
	if err != nil {
		return tableInput{}, err
	}
	return tableInput{level: level, sortBy: sortBy, order: order, limit: req.Limit, window: window}, nil
}

// FetchTable reports every value of the level with activity in the range.
// A Limit of zero keeps all rows.
func (s *TableService) FetchTable(ctx context.Context, req TableRequest) (*TableResult, error) {
	in, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	key := cacheKey("table", in.level, in.sortBy.Name, in.order, in.limit, req.Filters, in.window.Current.StartDate(), in.window.Current.EndDate())
	return cached(ctx, s.cache, key, func() (*TableResult, error) {
		return s.fetchTable(ctx, in, req.Filters)
	})
}

func (s *TableService) fetchTable(ctx context.Context, in tableInput, filters query.Filters) (*TableResult, error) {
	rl := requestLog{op: "fetch table", metric: string(in.sortBy.Name), level: in.level, filters: filters, window: in.window}

	defs := metric.Sales()
	summaries := make([]query.Statement, len(defs))
	for i, def := range defs {
		plan, err := query.Build(query.Spec{Metric: def, Level: in.level, Filters: filters, Range: in.window.Current})
		if err != nil {
			return nil, err
		}
		summaries[i] = plan.Summary
	}

	sales, err := metric.LookupSales(string(metric.TotalSales))
	if err != nil {
		return nil, err
	}
	type leader struct {
		by   query.Level
		stmt query.Statement
	}
	var leaders []leader
	for _, by := range []query.Level{query.LevelProduct, query.LevelRegion} {
		if by == in.level {
			continue
		}
		stmt, err := query.BuildBreakdown(query.BreakdownSpec{Metric: sales, Level: in.level, By: by, Filters: filters, Range: in.window.Current})
		if err != nil {
			return nil, err
		}
		leaders = append(leaders, leader{by: by, stmt: stmt})
	}

	conn, err := s.store.Acquire(ctx)
	if err != nil {
		return nil, rl.storeFailure(err)
	}
	defer conn.Release()
	repo := repository.NewInsightRepository(conn)

	rows := make(map[string]*TableRow)
	row := func(name string) *TableRow {
		r, ok := rows[name]
		if !ok {
			r = &TableRow{Name: name}
			rows[name] = r
		}
		return r
	}

	for i, def := range defs {
		values, err := repo.Summary(ctx, summaries[i])
		if err != nil {
			return nil, rl.storeFailure(err)
		}
		for _, v := range values {
			*tableCell(row(v.ComparisonValue), def.Name) += v.MetricValue
		}
	}

	for _, l := range leaders {
		values, err := repo.Breakdown(ctx, l.stmt)
		if err != nil {
			return nil, rl.storeFailure(err)
		}
		for name, top := range leadersOf(values) {
			r := row(name)
			if l.by == query.LevelProduct {
				r.TopProduct = top
			} else {
				r.TopRegion = top
			}
		}
	}

	return &TableResult{
		Level:     string(in.level),
		SortBy:    string(in.sortBy.Name),
		Order:     in.order,
		StartDate: in.window.Current.StartDate(),
		EndDate:   in.window.Current.EndDate(),
		Rows:      arrangeTable(rows, in),
	}, nil
}

func tableCell(r *TableRow, name metric.Name) *float64 {
	switch name {
	case metric.TotalProfit:
		return &r.TotalProfit
	case metric.TotalOrders:
		return &r.TotalOrders
	case metric.TotalReturns:
		return &r.TotalReturns
	default:
		return &r.TotalSales
	}
}

// leadersOf picks the first breakdown value of each comparison value. Rows
// arrive ordered by metric descending within a comparison value.
func leadersOf(rows []repository.BreakdownRow) map[string]string {
	out := make(map[string]string)
	for _, r := range rows {
		if _, ok := out[r.ComparisonValue]; !ok && r.MetricValue > 0 {
			out[r.ComparisonValue] = r.BreakdownValue
		}
	}
	return out
}

// arrangeTable fills the sales share from unrounded totals, orders the rows
// and applies the limit.
func arrangeTable(rows map[string]*TableRow, in tableInput) []TableRow {
	var totalSales float64
	for _, r := range rows {
		totalSales += r.TotalSales
	}

	out := make([]TableRow, 0, len(rows))
	for _, r := range rows {
		row := *r
		if totalSales > 0 {
			row.SalesContribution = format.Round2(row.TotalSales / totalSales * 100)
		}
		row.TotalSales = format.Round2(row.TotalSales)
		row.TotalProfit = format.Round2(row.TotalProfit)
		row.TotalOrders = format.Round2(row.TotalOrders)
		row.TotalReturns = format.Round2(row.TotalReturns)
		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := *tableCell(&out[i], in.sortBy.Name), *tableCell(&out[j], in.sortBy.Name)
		if a != b {
			if in.order == SortAsc {
				return a < b
			}
			return a > b
		}
		return out[i].Name < out[j].Name
	})

	if in.limit > 0 && len(out) > in.limit {
		out = out[:in.limit]
	}
	return out
}
