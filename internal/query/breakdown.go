package query

import (
	"github.com/anyulbade/retail-insights-engine/internal/apperr"
	"github.com/anyulbade/retail-insights-engine/internal/daterange"
	"github.com/anyulbade/retail-insights-engine/internal/metric"
)

// BreakdownSpec splits every value of Level by the values of By.
type BreakdownSpec struct {
	Metric  metric.Definition
	Level   Level
	By      Level
	Filters Filters
	Range   daterange.Range
}

// BuildBreakdown renders (comparison_value, breakdown_value, metric_value)
// rows. Within a comparison value the largest metric comes first.
func BuildBreakdown(s BreakdownSpec) (Statement, error) {
	if s.Level == LevelNone {
		return Statement{}, apperr.InvalidComparisonLevel("", levelNames())
	}
	if s.By == LevelNone || s.By == s.Level || !s.By.valid() {
		return Statement{}, apperr.InvalidComparisonLevel(string(s.By), levelNames())
	}
	spec := Spec{Metric: s.Metric, Level: s.Level, Filters: s.Filters, Range: s.Range}
	if err := spec.validate(); err != nil {
		return Statement{}, err
	}

	b := base(spec)
	if t, ok := s.By.Table(); ok {
		b.joins.require(t)
	}
	return b.statement(selectParts{
		columns: []string{
			s.Level.Column() + " AS comparison_value",
			s.By.Column() + " AS breakdown_value",
			valueExpr(s.Metric.Aggregate) + " AS metric_value",
		},
		groupBy: "1, 2",
		orderBy: "comparison_value, metric_value DESC, breakdown_value",
	}), nil
}
