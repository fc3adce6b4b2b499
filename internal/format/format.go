// Package format renders metric values for display.
package format

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/anyulbade/retail-insights-engine/internal/metric"
)

const (
	zeroValue   = "0"
	zeroPercent = "0.00%"
	rangeLayout = "Jan 02, 2006"
)

var printer = message.NewPrinter(language.English)

// Currency renders "$12,345.67".
func Currency(v float64) string {
	r := round(v, 2)
	if unusable(r) {
		return zeroValue
	}
	return "$" + printer.Sprintf("%.2f", r)
}

// Count renders "12,345".
func Count(v float64) string {
	r := round(v, 0)
	if unusable(r) {
		return zeroValue
	}
	return printer.Sprintf("%.0f", r)
}

// Percent renders "12.34%".
func Percent(v float64) string {
	r := round(v, 2)
	if unusable(r) {
		return zeroPercent
	}
	return printer.Sprintf("%.2f%%", r)
}

// Value renders v with the metric's display convention.
func Value(v float64, d metric.Display) string {
	switch d {
	case metric.DisplayCurrency:
		return Currency(v)
	case metric.DisplayPercentage:
		return Percent(v)
	default:
		return Count(v)
	}
}

// DateRange renders "Jan 01, 2024 to Jan 31, 2024".
func DateRange(start, end time.Time) string {
	return start.Format(rangeLayout) + " to " + end.Format(rangeLayout)
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	r := round(v, 2)
	if unusable(r) {
		return 0
	}
	return r
}

// round returns NaN and Inf unchanged. A result of zero is always positive.
func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	if f == 0 {
		return 0
	}
	return f
}

func unusable(v float64) bool {
	return v == 0 || math.IsNaN(v) || math.IsInf(v, 0)
}
