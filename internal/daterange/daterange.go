// Package daterange derives the comparison window for a requested date range:
// the bucket granularity and the mirrored previous range of equal length.
package daterange

import (
	"strings"
	"time"

	"github.com/anyulbade/retail-insights-engine/internal/apperr"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"

	// MaxDailyLength is the longest range, in days, still bucketed by day.
	MaxDailyLength = 31

	day = 24 * time.Hour
)

type Granularity string

const (
	Day   Granularity = "day"
	Month Granularity = "month"
)

// Label formats a bucket start the way trends are keyed.
func (g Granularity) Label(t time.Time) string {
	if g == Month {
		return t.Format(MonthLayout)
	}
	return t.Format(DateLayout)
}

type Range struct {
	Start time.Time
	End   time.Time
}

// Buckets lists every bucket label from Start to End inclusive.
func (r Range) Buckets(g Granularity) []string {
	cur := truncate(r.Start, g)
	last := truncate(r.End, g)

	var labels []string
	for !cur.After(last) {
		labels = append(labels, g.Label(cur))
		if g == Month {
			cur = cur.AddDate(0, 1, 0)
		} else {
			cur = cur.AddDate(0, 0, 1)
		}
	}
	return labels
}

// StartDate and EndDate render the bounds as SQL date literals.
func (r Range) StartDate() string { return r.Start.Format(DateLayout) }
func (r Range) EndDate() string   { return r.End.Format(DateLayout) }

type Window struct {
	Current     Range
	Previous    Range
	Granularity Granularity
	// Length is the number of days in each range.
	Length int
}

type Calculator struct {
	Now func() time.Time
}

func NewCalculator() Calculator {
	return Calculator{Now: time.Now}
}

// Compute derives the window for [start, end]. A zero start is rejected and a
// zero end defaults to now. Bounds are reduced to their calendar date in the
// zone they carry and expressed as UTC midnight.
func (c Calculator) Compute(start, end time.Time) (Window, error) {
	if start.IsZero() {
		return Window{}, apperr.MissingParameter("start_date")
	}
	if end.IsZero() {
		now := time.Now
		if c.Now != nil {
			now = c.Now
		}
		end = now()
	}

	start = calendarDate(start)
	end = calendarDate(end)
	if end.Before(start) {
		return Window{}, apperr.InvalidRange("end_date must not be before start_date")
	}

	length := int(end.Sub(start)/day) + 1

	granularity := Day
	if length > MaxDailyLength {
		granularity = Month
	}

	prevEnd := start.AddDate(0, 0, -1)
	prevStart := prevEnd.AddDate(0, 0, -(length - 1))

	return Window{
		Current:     Range{Start: start, End: end},
		Previous:    Range{Start: prevStart, End: prevEnd},
		Granularity: granularity,
		Length:      length,
	}, nil
}

// ParseDate parses a YYYY-MM-DD value as UTC midnight. An empty value yields
// the zero time.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, apperr.InvalidDate(value)
	}
	return t, nil
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func truncate(t time.Time, g Granularity) time.Time {
	y, m, d := t.Date()
	if g == Month {
		d = 1
	}
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
