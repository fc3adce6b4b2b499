package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/anyulbade/retail-insights-engine/internal/daterange"
	"github.com/anyulbade/retail-insights-engine/internal/format"
	"github.com/anyulbade/retail-insights-engine/internal/metric"
	"github.com/anyulbade/retail-insights-engine/internal/query"
	"github.com/anyulbade/retail-insights-engine/internal/repository"
)

// SegmentService breaks a metric down by a customer demographic, optionally
// crossed with a comparison level.
type SegmentService struct {
	store Acquirer
	calc  daterange.Calculator
	cache *ResultCache
}

func NewSegmentService(store Acquirer, calc daterange.Calculator, rc *ResultCache) *SegmentService {
	return &SegmentService{store: store, calc: calc, cache: rc}
}

type SegmentRequest struct {
	Metric          string
	SegmentBy       string
	ComparisonLevel string
	Filters         query.Filters
	StartDate       time.Time
	EndDate         time.Time
}

type SegmentComparison struct {
	CompareValue string       `json:"compare_value"`
	Data         []NamedValue `json:"data"`
}

type SegmentedResult struct {
	Seg        string              `json:"seg"`
	Metric     string              `json:"metric"`
	General    []NamedValue        `json:"general"`
	Comparison []SegmentComparison `json:"comparison"`
}

type segmentInput struct {
	def     metric.Definition
	segment query.Segment
	level   query.Level
	window  daterange.Window
}

// FetchSegmentedMetric runs one pass grouped by segment and comparison value.
// General values are summed from that pass so they always reconcile with the
// comparison breakdown.
func (s *SegmentService) FetchSegmentedMetric(ctx context.Context, req SegmentRequest) (*SegmentedResult, error) {
	def, err := metric.Lookup(req.Metric)
	if err != nil {
		return nil, err
	}
	segment, err := query.ParseSegment(req.SegmentBy)
	if err != nil {
		return nil, err
	}
	level := query.LevelNone
	if strings.TrimSpace(req.ComparisonLevel) != "" {
		if level, err = query.ParseLevel(req.ComparisonLevel); err != nil {
			return nil, err
		}
	}
	window, err := s.calc.Compute(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	in := segmentInput{def: def, segment: segment, level: level, window: window}
	key := cacheKey("segments", def.Name, segment, level, req.Filters, window.Current.StartDate(), window.Current.EndDate())
	return cached(ctx, s.cache, key, func() (*SegmentedResult, error) {
		return s.fetchSegmentedMetric(ctx, in, req.Filters)
	})
}

func (s *SegmentService) fetchSegmentedMetric(ctx context.Context, in segmentInput, filters query.Filters) (*SegmentedResult, error) {
	rl := requestLog{op: "fetch segmented metric", metric: string(in.def.Name), level: in.level, filters: filters, window: in.window}

	stmt, err := query.BuildSegment(query.SegmentSpec{
		Metric:  in.def,
		Segment: in.segment,
		Level:   in.level,
		Filters: filters,
		Range:   in.window.Current,
	})
	if err != nil {
		return nil, err
	}

	conn, err := s.store.Acquire(ctx)
	if err != nil {
		return nil, rl.storeFailure(err)
	}
	defer conn.Release()

	repo := repository.NewCustomerRepository(conn)
	grid := newSegmentGrid()

	if in.def.Family == metric.FamilyCustomer {
		rows, err := repo.SegmentComponents(ctx, stmt)
		if err != nil {
			return nil, rl.storeFailure(err)
		}
		for _, r := range rows {
			grid.addComponents(r.SegmentValue, r.ComparisonValue, r.Components)
		}
	} else {
		rows, err := repo.SegmentValues(ctx, stmt)
		if err != nil {
			return nil, rl.storeFailure(err)
		}
		for _, r := range rows {
			grid.addValue(r.SegmentValue, r.ComparisonValue, format.Round2(r.MetricValue))
		}
	}

	return grid.result(in), nil
}

type cellKey struct {
	segment, dimension string
}

// segmentGrid accumulates either additive values (sales metrics) or customer
// components (customer metrics) per (segment, dimension) cell.
type segmentGrid struct {
	values     map[cellKey]float64
	components map[cellKey]metric.Components
	segments   map[string]bool
	dimensions map[string]bool
}

func newSegmentGrid() *segmentGrid {
	return &segmentGrid{
		values:     map[cellKey]float64{},
		components: map[cellKey]metric.Components{},
		segments:   map[string]bool{},
		dimensions: map[string]bool{},
	}
}

func (g *segmentGrid) addValue(segment, dimension string, v float64) {
	k := cellKey{segment, dimension}
	g.values[k] += v
	g.segments[segment] = true
	g.dimensions[dimension] = true
}

func (g *segmentGrid) addComponents(segment, dimension string, c metric.Components) {
	k := cellKey{segment, dimension}
	g.components[k] = g.components[k].Add(c)
	g.segments[segment] = true
	g.dimensions[dimension] = true
}

func (g *segmentGrid) cell(def metric.Definition, k cellKey) (float64, bool) {
	if def.Family == metric.FamilyCustomer {
		c, ok := g.components[k]
		return format.Round2(def.Derive(c)), ok
	}
	v, ok := g.values[k]
	return v, ok
}

func (g *segmentGrid) general(def metric.Definition, segment string) float64 {
	if def.Family == metric.FamilyCustomer {
		var sum metric.Components
		for k, c := range g.components {
			if k.segment == segment {
				sum = sum.Add(c)
			}
		}
		return format.Round2(def.Derive(sum))
	}
	var sum float64
	for k, v := range g.values {
		if k.segment == segment {
			sum += v
		}
	}
	return format.Round2(sum)
}

func (g *segmentGrid) result(in segmentInput) *SegmentedResult {
	segments := sortSegments(in.segment, keys(g.segments))

	res := &SegmentedResult{
		Seg:        string(in.segment),
		Metric:     string(in.def.Name),
		General:    make([]NamedValue, 0, len(segments)),
		Comparison: []SegmentComparison{},
	}
	for _, seg := range segments {
		res.General = append(res.General, NamedValue{Name: seg, Value: g.general(in.def, seg)})
	}

	if in.level == query.LevelNone {
		return res
	}

	dimensions := keys(g.dimensions)
	sort.Strings(dimensions)
	for _, dim := range dimensions {
		group := SegmentComparison{CompareValue: dim, Data: []NamedValue{}}
		for _, seg := range segments {
			if v, ok := g.cell(in.def, cellKey{seg, dim}); ok {
				group.Data = append(group.Data, NamedValue{Name: seg, Value: v})
			}
		}
		res.Comparison = append(res.Comparison, group)
	}
	return res
}

func sortSegments(segment query.Segment, values []string) []string {
	order := map[string]int{}
	for i, v := range segment.Order() {
		order[v] = i
	}
	sort.Slice(values, func(i, j int) bool {
		oi, iok := order[values[i]]
		oj, jok := order[values[j]]
		switch {
		case iok && jok:
			return oi < oj
		case iok != jok:
			return iok
		}
		return values[i] < values[j]
	})
	return values
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
