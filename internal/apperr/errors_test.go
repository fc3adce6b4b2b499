package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIs(t *testing.T) {
	err := InvalidMetric("Total Revenue", []string{"Total Sales", "Total Orders"})

	assert.True(t, errors.Is(err, ErrInvalidMetric))
	assert.False(t, errors.Is(err, ErrInvalidSegment))
	assert.Contains(t, err.Error(), "Total Revenue")
	assert.Contains(t, err.Error(), "Total Sales, Total Orders")

	wrapped := fmt.Errorf("fetch insights: %w", err)
	assert.True(t, errors.Is(wrapped, ErrInvalidMetric))
}

func TestIsClient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"invalid range", InvalidRange("end_date must not be before start_date"), true},
		{"missing parameter", MissingParameter("start_date"), true},
		{"wrapped filter", fmt.Errorf("parse: %w", InvalidFilter("region", "Mars")), true},
		{"no data", NoData("nothing found"), false},
		{"plain error", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsClient(tt.err))
		})
	}
}
