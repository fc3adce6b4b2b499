// Package query composes the parameterized SQL the engine runs against the
// fact store. Composition is pure: a Spec always yields the same Plan.
package query

import (
	"fmt"

	"github.com/anyulbade/retail-insights-engine/internal/apperr"
	"github.com/anyulbade/retail-insights-engine/internal/daterange"
	"github.com/anyulbade/retail-insights-engine/internal/metric"
)

// Spec describes one aggregation of a sales metric.
type Spec struct {
	Metric       metric.Definition
	Level        Level
	Filters      Filters
	Range        daterange.Range
	Granularity  daterange.Granularity
	IncludeTrend bool
}

// Plan holds the statements for a Spec. Summary rows are
// (comparison_value, metric_value); trend rows add a bucket label between them.
type Plan struct {
	Summary Statement
	Trend   *Statement
}

func (s Spec) validate() error {
	if s.Metric.Family != metric.FamilySales || s.Metric.Aggregate == "" {
		return apperr.InvalidMetric(string(s.Metric.Name), metric.Names(metric.Sales()))
	}
	if !s.Level.valid() {
		return apperr.InvalidComparisonLevel(string(s.Level), levelNames())
	}
	if s.IncludeTrend && s.Granularity != daterange.Day && s.Granularity != daterange.Month {
		return fmt.Errorf("unsupported granularity %q", s.Granularity)
	}
	return nil
}

func Build(s Spec) (Plan, error) {
	if err := s.validate(); err != nil {
		return Plan{}, err
	}

	plan := Plan{Summary: summary(s, selectParts{})}
	if s.IncludeTrend {
		t := trend(s)
		plan.Trend = &t
	}
	return plan, nil
}

// RankingSpec orders the values of a level by a sales metric.
type RankingSpec struct {
	Metric  metric.Definition
	Level   Level
	Filters Filters
	Range   daterange.Range
	Limit   int
}

const (
	DefaultRankingLimit = 10
	MaxRankingLimit     = 100
)

func BuildRanking(s RankingSpec) (Statement, error) {
	if s.Level == LevelNone {
		return Statement{}, apperr.InvalidComparisonLevel("", levelNames())
	}
	spec := Spec{Metric: s.Metric, Level: s.Level, Filters: s.Filters, Range: s.Range}
	if err := spec.validate(); err != nil {
		return Statement{}, err
	}

	limit := s.Limit
	if limit < 1 {
		limit = DefaultRankingLimit
	}
	if limit > MaxRankingLimit {
		limit = MaxRankingLimit
	}

	return summary(spec, selectParts{
		orderBy: "metric_value DESC, comparison_value",
		limit:   fmt.Sprint(limit),
	}), nil
}

// BuildDimensionValues lists the known values of a level as (name, id) rows.
// Only filters on the level's own table apply.
func BuildDimensionValues(level Level, f Filters) (Statement, error) {
	table, ok := level.Table()
	if !ok {
		return Statement{}, apperr.InvalidComparisonLevel(string(level), levelNames())
	}

	b := newBuilder(table)
	b.filtersOn(f, table)

	switch level {
	case LevelStore:
		return b.statement(selectParts{
			columns: []string{"s.name AS name", "s.store_id::text AS id"},
			orderBy: "name, id",
		}), nil
	case LevelProduct:
		return b.statement(selectParts{
			columns: []string{"p.name AS name", "p.product_id::text AS id"},
			orderBy: "name, id",
		}), nil
	default:
		return b.statement(selectParts{
			columns: []string{level.Column() + " AS name", "''::text AS id"},
			groupBy: "1",
			orderBy: "name",
		}), nil
	}
}

func base(s Spec) *builder {
	b := newBuilder(s.Metric.Source)
	b.dateRange(s.Metric.DateField, s.Range)
	b.joins.require(s.Metric.Requires...)
	if t, ok := s.Level.Table(); ok {
		b.joins.require(t)
	}
	b.filters(s.Filters)
	return b
}

// summary renders the per-dimension totals; extra supplies ordering and limit
// overrides.
func summary(s Spec, extra selectParts) Statement {
	b := base(s)
	p := selectParts{
		columns: []string{
			s.Level.Column() + " AS comparison_value",
			valueExpr(s.Metric.Aggregate) + " AS metric_value",
		},
		orderBy: extra.orderBy,
		limit:   extra.limit,
	}
	if s.Level != LevelNone {
		p.groupBy = "1"
		if p.orderBy == "" {
			p.orderBy = "comparison_value"
		}
	}
	return b.statement(p)
}

func trend(s Spec) Statement {
	b := base(s)
	p := selectParts{
		columns: []string{
			s.Level.Column() + " AS comparison_value",
			bucketExpr(s.Metric.DateField, s.Granularity) + " AS bucket",
			valueExpr(s.Metric.Aggregate) + " AS metric_value",
		},
		groupBy: "1, 2",
		orderBy: "comparison_value, bucket",
	}
	if s.Level == LevelNone {
		p.groupBy = "2"
		p.orderBy = "bucket"
	}
	return b.statement(p)
}
