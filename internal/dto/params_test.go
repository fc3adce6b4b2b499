package dto

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anyulbade/retail-insights-engine/internal/apperr"
	"github.com/anyulbade/retail-insights-engine/internal/model"
)

func testContext(t *testing.T, rawQuery string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return c
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"Region1", "Region2", "Region3"}, SplitList([]string{"Region1, Region2", "Region3", " ,"}))
	assert.Empty(t, SplitList(nil))
}

func TestBindInsightQuery(t *testing.T) {
	c := testContext(t, "metric=Total+Sales&comparison_level=brand&selected_regions=Region1,Region2&selected_regions=RegionEnum.Region3&start_date=2024-01-01&end_date=2024-01-31")

	var q InsightQuery
	require.NoError(t, Bind(c, &q))
	assert.Equal(t, "Total Sales", q.Metric)
	assert.Equal(t, "brand", q.ComparisonLevel)

	f, err := q.Filters()
	require.NoError(t, err)
	assert.Equal(t, []model.Region{model.Region1, model.Region2, model.Region3}, f.Regions)

	start, end, err := q.Dates()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), end)
}

func TestRangeQuery_Dates(t *testing.T) {
	start, end, err := RangeQuery{StartDate: "2024-03-05"}.Dates()
	require.NoError(t, err)
	assert.False(t, start.IsZero())
	assert.True(t, end.IsZero())

	_, _, err = RangeQuery{StartDate: "05/03/2024"}.Dates()
	assert.ErrorIs(t, err, apperr.ErrInvalidDate)
}

func TestSelectionQuery_InvalidRegion(t *testing.T) {
	_, err := SelectionQuery{Regions: []string{"Atlantis"}}.Filters()
	assert.ErrorIs(t, err, apperr.ErrInvalidFilter)
}

func TestRankingQuery_Limit(t *testing.T) {
	tests := []struct {
		n       string
		want    int
		wantErr bool
	}{
		{"", DefaultRankingLimit, false},
		{"5", 5, false},
		{"1000", MaxRankingLimit, false},
		{"0", 0, true},
		{"ten", 0, true},
	}
	for _, tt := range tests {
		got, err := RankingQuery{N: tt.n}.Limit()
		if tt.wantErr {
			assert.ErrorIs(t, err, apperr.ErrInvalidFilter, "n=%q", tt.n)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "n=%q", tt.n)
	}
}
