package dto

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/anyulbade/retail-insights-engine/internal/apperr"
	"github.com/anyulbade/retail-insights-engine/internal/daterange"
	"github.com/anyulbade/retail-insights-engine/internal/query"
)

const (
	DefaultComparisonLevel = "region"
	DefaultRankingLimit    = 10
	MaxRankingLimit        = 100
)

// SelectionQuery carries the selected_* list parameters shared by every
// analytics endpoint.
type SelectionQuery struct {
	Regions  []string `form:"selected_regions"`
	Stores   []string `form:"selected_stores"`
	Brands   []string `form:"selected_brands"`
	Products []string `form:"selected_products"`
}

type RangeQuery struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

type InsightQuery struct {
	SelectionQuery
	RangeQuery
	Metric          string `form:"metric"`
	ComparisonLevel string `form:"comparison_level"`
}

type CustomerQuery struct {
	SelectionQuery
	RangeQuery
	ComparisonLevel string `form:"comparison_level"`
}

type SegmentQuery struct {
	SelectionQuery
	RangeQuery
	Metric          string `form:"metric"`
	SegmentBy       string `form:"segment_by"`
	ComparisonLevel string `form:"comparison_level"`
}

type RankingQuery struct {
	SelectionQuery
	RangeQuery
	Metric string `form:"metric"`
	N      string `form:"n"`
}

type TableQuery struct {
	SelectionQuery
	RangeQuery
	SortBy string `form:"sort_by"`
	Order  string `form:"order"`
	N      string `form:"n"`
}

// Limit parses n. An absent n keeps every row.
func (q TableQuery) Limit() (int, error) {
	raw := strings.TrimSpace(q.N)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperr.InvalidFilter("n", q.N)
	}
	return n, nil
}

// Filters normalizes the selections. Repeated keys and comma-joined values
// are both accepted.
func (s SelectionQuery) Filters() (query.Filters, error) {
	return query.NewFilters(SplitList(s.Regions), SplitList(s.Stores), SplitList(s.Brands), SplitList(s.Products))
}

// Dates parses the range bounds. An empty bound stays zero.
func (r RangeQuery) Dates() (start, end time.Time, err error) {
	if start, err = daterange.ParseDate(r.StartDate); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end, err = daterange.ParseDate(r.EndDate); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// Limit parses n, falling back to the default when absent and capping at
// MaxRankingLimit.
func (q RankingQuery) Limit() (int, error) {
	if strings.TrimSpace(q.N) == "" {
		return DefaultRankingLimit, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(q.N))
	if err != nil || n < 1 {
		return 0, apperr.InvalidFilter("n", q.N)
	}
	if n > MaxRankingLimit {
		n = MaxRankingLimit
	}
	return n, nil
}

// SplitList flattens repeated and comma-joined values.
func SplitList(values []string) []string {
	return lo.FlatMap(values, func(v string, _ int) []string {
		return lo.FilterMap(strings.Split(v, ","), func(part string, _ int) (string, bool) {
			part = strings.TrimSpace(part)
			return part, part != ""
		})
	})
}

// Bind reads the query string into dst.
func Bind(c *gin.Context, dst any) error {
	if err := c.ShouldBindQuery(dst); err != nil {
		return apperr.InvalidFilter("query", err.Error())
	}
	return nil
}
