package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anyulbade/retail-insights-engine/internal/apperr"
	"github.com/anyulbade/retail-insights-engine/internal/query"
)

func TestFetchSegmentedMetric_Sales(t *testing.T) {
	store, _ := fakeStore(t,
		route{match: "segment_value", rows: [][]any{
			{"Unknown", "Region1", 5.0},
			{"25-34", "Region2", 20.0},
			{"65+", "Region1", 7.0},
			{"25-34", "Region1", 10.0},
			{"18-24", "Region2", 2.5},
		}},
	)
	svc := NewSegmentService(store, fixedCalculator(), nil)

	got, err := svc.FetchSegmentedMetric(context.Background(), SegmentRequest{
		Metric:          "Total Sales",
		SegmentBy:       "age",
		ComparisonLevel: "region",
		StartDate:       date(2024, 1, 1),
		EndDate:         date(2024, 1, 31),
	})
	require.NoError(t, err)

	assert.Equal(t, "age", got.Seg)
	assert.Equal(t, "Total Sales", got.Metric)
	assert.Equal(t, []NamedValue{
		{"18-24", 2.5},
		{"25-34", 30},
		{"65+", 7},
		{"Unknown", 5},
	}, got.General)
	assert.Equal(t, []SegmentComparison{
		{CompareValue: "Region1", Data: []NamedValue{{"25-34", 10}, {"65+", 7}, {"Unknown", 5}}},
		{CompareValue: "Region2", Data: []NamedValue{{"18-24", 2.5}, {"25-34", 20}}},
	}, got.Comparison)
}

func TestFetchSegmentedMetric_Reconciles(t *testing.T) {
	store, _ := fakeStore(t,
		route{match: "segment_value", rows: [][]any{
			{"Female", "BrandA", 10.004},
			{"Female", "BrandB", 10.004},
			{"Male", "BrandA", 1.0},
		}},
	)
	svc := NewSegmentService(store, fixedCalculator(), nil)

	got, err := svc.FetchSegmentedMetric(context.Background(), SegmentRequest{
		Metric:          "Total Profit",
		SegmentBy:       "gender",
		ComparisonLevel: "brand",
		StartDate:       date(2024, 1, 1),
	})
	require.NoError(t, err)

	for _, g := range got.General {
		var sum float64
		for _, c := range got.Comparison {
			for _, d := range c.Data {
				if d.Name == g.Name {
					sum += d.Value
				}
			}
		}
		assert.InDelta(t, g.Value, sum, 1e-9, g.Name)
	}
}

func TestFetchSegmentedMetric_CustomerMetric(t *testing.T) {
	store, _ := fakeStore(t,
		route{match: "per_customer", rows: [][]any{
			{"Female", "Region1", int64(2), int64(1), 100.0, int64(1)},
			{"Female", "Region2", int64(2), int64(0), 300.0, int64(0)},
			{"Male", "Region1", int64(1), int64(1), 10.0, int64(1)},
		}},
	)
	svc := NewSegmentService(store, fixedCalculator(), nil)

	got, err := svc.FetchSegmentedMetric(context.Background(), SegmentRequest{
		Metric:          "Average Revenue per Customer",
		SegmentBy:       "gender",
		ComparisonLevel: "region",
		StartDate:       date(2024, 1, 1),
	})
	require.NoError(t, err)

	assert.Equal(t, []NamedValue{{"Female", 100}, {"Male", 10}}, got.General, "ratios derive from summed components")
	assert.Equal(t, []SegmentComparison{
		{CompareValue: "Region1", Data: []NamedValue{{"Female", 50}, {"Male", 10}}},
		{CompareValue: "Region2", Data: []NamedValue{{"Female", 150}}},
	}, got.Comparison)
}

func TestFetchSegmentedMetric_WithoutComparison(t *testing.T) {
	store, _ := fakeStore(t,
		route{match: "segment_value", rows: [][]any{{"Single", "", 4.0}, {"Married", "", 6.0}}},
	)
	svc := NewSegmentService(store, fixedCalculator(), nil)

	got, err := svc.FetchSegmentedMetric(context.Background(), SegmentRequest{
		Metric:    "Total Orders",
		SegmentBy: "marital_status",
		StartDate: date(2024, 1, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, []NamedValue{{"Married", 6}, {"Single", 4}}, got.General)
	assert.Empty(t, got.Comparison)
	assert.NotNil(t, got.Comparison)
}

func TestFetchSegmentedMetric_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  SegmentRequest
		want error
	}{
		{"unknown metric", SegmentRequest{Metric: "Margin", SegmentBy: "age", StartDate: date(2024, 1, 1)}, apperr.ErrInvalidMetric},
		{"unknown segment", SegmentRequest{Metric: "Total Sales", SegmentBy: "shoe_size", StartDate: date(2024, 1, 1)}, apperr.ErrInvalidSegment},
		{"unknown level", SegmentRequest{Metric: "Total Sales", SegmentBy: "age", ComparisonLevel: "city", StartDate: date(2024, 1, 1)}, apperr.ErrInvalidComparisonLevel},
		{"missing start", SegmentRequest{Metric: "Total Sales", SegmentBy: "age"}, apperr.ErrMissingParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := fakeStore(t)
			svc := NewSegmentService(store, fixedCalculator(), nil)
			_, err := svc.FetchSegmentedMetric(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, store.Acquired())
		})
	}
}

func TestSortSegments(t *testing.T) {
	got := sortSegments(query.SegmentAge, []string{"Unknown", "65+", "18-24", "50-64"})
	assert.Equal(t, []string{"18-24", "50-64", "65+", "Unknown"}, got)

	got = sortSegments(query.SegmentCountry, []string{"Spain", "Unknown", "Chile"})
	assert.Equal(t, []string{"Chile", "Spain", "Unknown"}, got)
}
