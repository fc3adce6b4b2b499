package query

import (
	"fmt"
	"strings"

	"github.com/anyulbade/retail-insights-engine/internal/apperr"
	"github.com/anyulbade/retail-insights-engine/internal/daterange"
	"github.com/anyulbade/retail-insights-engine/internal/metric"
	"github.com/anyulbade/retail-insights-engine/internal/model"
)

// Segment is a customer demographic attribute.
type Segment string

const (
	SegmentAge              Segment = "age"
	SegmentGender           Segment = "gender"
	SegmentIncomeBracket    Segment = "income_bracket"
	SegmentCountry          Segment = "country"
	SegmentMaritalStatus    Segment = "marital_status"
	SegmentEducationLevel   Segment = "education_level"
	SegmentEmploymentStatus Segment = "employment_status"
)

var Segments = []Segment{
	SegmentAge, SegmentGender, SegmentIncomeBracket, SegmentCountry,
	SegmentMaritalStatus, SegmentEducationLevel, SegmentEmploymentStatus,
}

// UnknownSegment labels customers missing the attribute.
const UnknownSegment = "Unknown"

type ageBand struct {
	below int
	label string
}

var ageBands = []ageBand{
	{25, "18-24"},
	{35, "25-34"},
	{50, "35-49"},
	{65, "50-64"},
}

const oldestAgeBand = "65+"

func ParseSegment(raw string) (Segment, error) {
	s := Segment(strings.ToLower(strings.TrimSpace(raw)))
	for _, candidate := range Segments {
		if s == candidate {
			return s, nil
		}
	}
	names := make([]string, len(Segments))
	for i, seg := range Segments {
		names[i] = string(seg)
	}
	return "", apperr.InvalidSegment(raw, names)
}

// Column is the SQL expression labelling a customer's segment.
func (s Segment) Column() string {
	if s == SegmentAge {
		var sb strings.Builder
		sb.WriteString("CASE WHEN c.age IS NULL THEN '" + UnknownSegment + "'")
		for _, band := range ageBands {
			fmt.Fprintf(&sb, " WHEN c.age < %d THEN '%s'", band.below, band.label)
		}
		sb.WriteString(" ELSE '" + oldestAgeBand + "' END")
		return sb.String()
	}
	return fmt.Sprintf("COALESCE(c.%s::text, '%s')", s, UnknownSegment)
}

// Order lists the segment values in presentation order, or nil when values
// sort alphabetically.
func (s Segment) Order() []string {
	if s != SegmentAge {
		return nil
	}
	out := make([]string, 0, len(ageBands)+2)
	for _, band := range ageBands {
		out = append(out, band.label)
	}
	return append(out, oldestAgeBand, UnknownSegment)
}

// SegmentSpec describes a segment-by-dimension aggregation. Level may be
// LevelNone for a segment-only breakdown.
type SegmentSpec struct {
	Metric  metric.Definition
	Segment Segment
	Level   Level
	Filters Filters
	Range   daterange.Range
}

// BuildSegment composes a single statement grouped by (segment, dimension).
// Sales metrics yield (segment_value, comparison_value, metric_value); customer
// metrics yield the customer components after the two labels.
func BuildSegment(s SegmentSpec) (Statement, error) {
	if _, err := ParseSegment(string(s.Segment)); err != nil {
		return Statement{}, err
	}

	labels := []label{
		{expr: s.Segment.Column(), alias: "segment_value", grouped: true},
		{expr: s.Level.Column(), alias: "comparison_value", grouped: s.Level != LevelNone},
	}

	if s.Metric.Family == metric.FamilyCustomer {
		if !s.Level.valid() {
			return Statement{}, apperr.InvalidComparisonLevel(string(s.Level), levelNames())
		}
		return components(labels, s.Level, s.Filters, s.Range, model.TableCustomers), nil
	}

	spec := Spec{Metric: s.Metric, Level: s.Level, Filters: s.Filters, Range: s.Range}
	if err := spec.validate(); err != nil {
		return Statement{}, err
	}

	b := base(spec)
	b.joins.require(model.TableCustomers)

	groupBy := "1, 2"
	if s.Level == LevelNone {
		groupBy = "1"
	}
	return b.statement(selectParts{
		columns: []string{
			labels[0].expr + " AS segment_value",
			labels[1].expr + " AS comparison_value",
			valueExpr(s.Metric.Aggregate) + " AS metric_value",
		},
		groupBy: groupBy,
		orderBy: "segment_value, comparison_value",
	}), nil
}
