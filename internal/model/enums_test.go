package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anyulbade/retail-insights-engine/internal/apperr"
)

func TestParseRegion(t *testing.T) {
	tests := []struct {
		raw  string
		want Region
	}{
		{"Region1", Region1},
		{"RegionEnum.Region10", Region10},
		{"  region4 ", Region4},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseRegion(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseRegion("Region11")
	assert.True(t, errors.Is(err, apperr.ErrInvalidFilter))
}

func TestParseBrand(t *testing.T) {
	got, err := ParseBrand("BrandEnum.BrandJ")
	require.NoError(t, err)
	assert.Equal(t, Brand("BrandJ"), got)

	assert.Len(t, Brands, 10)
	assert.Equal(t, Brand("BrandA"), Brands[0])

	_, err = ParseBrand("BrandK")
	assert.Error(t, err)
}

func TestTableRef(t *testing.T) {
	assert.Equal(t, "order_items oi", TableOrderItems.Ref())
	assert.Equal(t, "r", TableReturns.Alias())
}

func TestProductUnitProfit(t *testing.T) {
	cost := 6.5
	assert.InDelta(t, 3.5, Product{Price: 10, Cost: &cost}.UnitProfit(), 1e-9)
	assert.InDelta(t, 10.0, Product{Price: 10}.UnitProfit(), 1e-9)
	assert.InDelta(t, 30.0, OrderItem{Price: 10, Quantity: 3}.LineTotal(), 1e-9)
}
