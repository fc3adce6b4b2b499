package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anyulbade/retail-insights-engine/internal/middleware"
	"github.com/anyulbade/retail-insights-engine/internal/repository/repotest"
)

func get(t *testing.T, router http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	return w
}

func TestValidationErrors(t *testing.T) {
	store := &repotest.Acquirer{Conn: &repotest.Conn{}}
	router := newRouter(store, nil)

	tests := []struct {
		name string
		url  string
		code string
	}{
		{"kpi without start", "/api/v1/kpi", "MISSING_PARAMETER"},
		{"kpi bad date", "/api/v1/kpi?start_date=01-01-2024", "INVALID_DATE"},
		{"kpi inverted range", "/api/v1/kpi?start_date=2024-02-01&end_date=2024-01-01", "INVALID_RANGE"},
		{"insight without metric", "/api/v1/kpi/insight?start_date=2024-01-01", "MISSING_PARAMETER"},
		{"insight unknown metric", "/api/v1/kpi/insight?metric=Revenue&start_date=2024-01-01", "INVALID_METRIC"},
		{"insight unknown level", "/api/v1/kpi/insight?metric=Total+Sales&comparison_level=city&start_date=2024-01-01", "INVALID_COMPARISON_LEVEL"},
		{"insight unknown region", "/api/v1/kpi/insight?metric=Total+Sales&selected_regions=Region42&start_date=2024-01-01", "INVALID_FILTER"},
		{"customers unknown level", "/api/v1/customers/metrics?comparison_level=galaxy&start_date=2024-01-01", "INVALID_COMPARISON_LEVEL"},
		{"segments without segment_by", "/api/v1/customers/segments?metric=Total+Sales&start_date=2024-01-01", "MISSING_PARAMETER"},
		{"segments unknown segment", "/api/v1/customers/segments?metric=Total+Sales&segment_by=height&start_date=2024-01-01", "INVALID_SEGMENT"},
		{"ranking bad n", "/api/v1/rankings/product?metric=Total+Sales&n=lots&start_date=2024-01-01", "INVALID_FILTER"},
		{"ranking unknown level", "/api/v1/rankings/city?metric=Total+Sales&start_date=2024-01-01", "INVALID_COMPARISON_LEVEL"},
		{"table unknown level", "/api/v1/tables/city?start_date=2024-01-01", "INVALID_COMPARISON_LEVEL"},
		{"table bad n", "/api/v1/tables/store?n=0&start_date=2024-01-01", "INVALID_FILTER"},
		{"table bad order", "/api/v1/tables/store?order=up&start_date=2024-01-01", "INVALID_FILTER"},
		{"table customer sort metric", "/api/v1/tables/store?sort_by=New+Customers&start_date=2024-01-01", "INVALID_METRIC"},
		{"stores unknown region", "/api/v1/stores?selected_regions=Mars", "INVALID_FILTER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, router, tt.url)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp middleware.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
	assert.Zero(t, store.Acquired(), "invalid requests never reach the fact store")
}

func TestGetInsights(t *testing.T) {
	conn := &repotest.Conn{Handler: func(sql string, args []any) (pgx.Rows, error) {
		switch {
		case strings.Contains(sql, "AS bucket"):
			return repotest.NewRows([]any{"Region1", "2024-01-02", 10.0}), nil
		case strings.Contains(sql, "AS id"):
			return repotest.NewRows([]any{"Region1", ""}, []any{"Region2", ""}), nil
		case args[0] == "2024-01-01":
			return repotest.NewRows([]any{"Region1", 10.0}), nil
		}
		return repotest.NewRows(), nil
	}}
	router := newRouter(&repotest.Acquirer{Conn: conn}, nil)

	w := get(t, router, "/api/v1/kpi/insight?metric=Total+Sales&start_date=2024-01-01&end_date=2024-01-03")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Summary []map[string]any `json:"summary"`
			Trend   []map[string]any `json:"trend"`
		} `json:"data"`
		Meta map[string]string `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "region", resp.Meta["comparison_level"], "comparison level defaults to region")
	assert.Equal(t, "2023-12-29", resp.Meta["previous_start_date"])
	require.Len(t, resp.Data.Summary, 2)
	assert.Equal(t, "Region1", resp.Data.Summary[0]["comparison_value"])
	assert.Equal(t, 100.0, resp.Data.Summary[0]["percentage_change"])
	assert.Equal(t, 0.0, resp.Data.Summary[1]["metric_value"])
	assert.Len(t, resp.Data.Trend, 2*3)
}

func TestGetAllKPI(t *testing.T) {
	router := newRouter(&repotest.Acquirer{Conn: &repotest.Conn{}}, nil)

	w := get(t, router, "/api/v1/kpi?start_date=2024-01-01&end_date=2024-01-07")
	require.Equal(t, http.StatusOK, w.Code)

	var cards []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cards))
	require.Len(t, cards, 4)
	assert.Equal(t, "Total Sales", cards[0]["title"])
	assert.Equal(t, "0", cards[0]["value"])
	assert.Equal(t, "0.00%", cards[0]["percentage_change"])
	assert.Len(t, cards[0]["trend_data"], 7)
}

func TestGetRanking(t *testing.T) {
	t.Run("empty range is not found", func(t *testing.T) {
		router := newRouter(&repotest.Acquirer{Conn: &repotest.Conn{}}, nil)
		w := get(t, router, "/api/v1/rankings/store?metric=Total+Sales&start_date=2024-01-01")
		assert.Equal(t, http.StatusNotFound, w.Code)

		var resp middleware.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "NO_DATA", resp.Code)
	})

	t.Run("ranked", func(t *testing.T) {
		conn := &repotest.Conn{Handler: func(sql string, _ []any) (pgx.Rows, error) {
			return repotest.NewRows([]any{"Chair", 150.0}, []any{"Lamp", 80.0}), nil
		}}
		router := newRouter(&repotest.Acquirer{Conn: conn}, nil)
		w := get(t, router, "/api/v1/rankings/Product?metric=Total+Sales&n=2&start_date=2024-01-01")
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Level  string           `json:"level"`
			Metric string           `json:"metric"`
			Data   []map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "product", resp.Level)
		assert.Equal(t, "Total Sales", resp.Metric)
		require.Len(t, resp.Data, 2)
		assert.Equal(t, 1.0, resp.Data[0]["rank"])
		assert.Contains(t, conn.Calls()[0].SQL, "LIMIT 2")
	})
}

func TestGetTable(t *testing.T) {
	conn := &repotest.Conn{Handler: func(sql string, _ []any) (pgx.Rows, error) {
		switch {
		case strings.Contains(sql, "p.name AS breakdown_value"):
			return repotest.NewRows([]any{"Region1", "Lamp", 80.0}), nil
		case strings.Contains(sql, "AS breakdown_value"):
			return repotest.NewRows(), nil
		case strings.Contains(sql, "SUM(oi.price * oi.quantity)"):
			return repotest.NewRows([]any{"Region1", 80.0}, []any{"Region2", 20.0}), nil
		}
		return repotest.NewRows(), nil
	}}
	router := newRouter(&repotest.Acquirer{Conn: conn}, nil)

	w := get(t, router, "/api/v1/tables/region?start_date=2024-01-01&end_date=2024-01-31&n=1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Level string           `json:"level"`
		Order string           `json:"order"`
		Rows  []map[string]any `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "region", resp.Level)
	assert.Equal(t, "desc", resp.Order)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "Region1", resp.Rows[0]["name"])
	assert.Equal(t, "Lamp", resp.Rows[0]["top_product"])
	assert.Equal(t, 80.0, resp.Rows[0]["sales_contribution_percentage"])
	assert.NotContains(t, resp.Rows[0], "top_region")
}

func TestDimensions(t *testing.T) {
	conn := &repotest.Conn{Handler: func(sql string, _ []any) (pgx.Rows, error) {
		return repotest.NewRows([]any{"BrandA", ""}, []any{"BrandB", ""}), nil
	}}
	router := newRouter(&repotest.Acquirer{Conn: conn}, nil)

	w := get(t, router, "/api/v1/brands")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[{"name":"BrandA"},{"name":"BrandB"}]}`, w.Body.String())

	w = get(t, router, "/api/v1/products?selected_brands=BrandA,BrandB")
	require.Equal(t, http.StatusOK, w.Code)
	calls := conn.Calls()
	assert.Contains(t, calls[len(calls)-1].SQL, "p.brand::text = ANY($1)")
}
