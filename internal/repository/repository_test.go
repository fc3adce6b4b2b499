package repository_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anyulbade/retail-insights-engine/internal/metric"
	"github.com/anyulbade/retail-insights-engine/internal/query"
	"github.com/anyulbade/retail-insights-engine/internal/repository"
	"github.com/anyulbade/retail-insights-engine/internal/repository/repotest"
)

func rowsConn(rows *repotest.Rows) *repotest.Conn {
	return &repotest.Conn{Handler: func(string, []any) (pgx.Rows, error) { return rows, nil }}
}

func TestInsightRepository_Summary(t *testing.T) {
	conn := rowsConn(repotest.NewRows(
		[]any{"Region1", 1200.5},
		[]any{"Region2", 0.0},
	))
	repo := repository.NewInsightRepository(conn)

	stmt := query.Statement{SQL: "SELECT 1", Args: []any{"2024-01-01", "2024-01-31"}}
	rows, err := repo.Summary(context.Background(), stmt)
	require.NoError(t, err)
	assert.Equal(t, []repository.SummaryRow{
		{ComparisonValue: "Region1", MetricValue: 1200.5},
		{ComparisonValue: "Region2", MetricValue: 0},
	}, rows)

	calls := conn.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, stmt.Args, calls[0].Args)
}

func TestInsightRepository_Trend(t *testing.T) {
	repo := repository.NewInsightRepository(rowsConn(repotest.NewRows(
		[]any{"BrandA", "2024-01-01", 10.0},
		[]any{"BrandA", "2024-01-02", 12.25},
	)))

	rows, err := repo.Trend(context.Background(), query.Statement{SQL: "SELECT 1"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, repository.TrendRow{ComparisonValue: "BrandA", Bucket: "2024-01-02", MetricValue: 12.25}, rows[1])
}

func TestInsightRepository_Breakdown(t *testing.T) {
	repo := repository.NewInsightRepository(rowsConn(repotest.NewRows(
		[]any{"BrandA", "Region1", 80.0},
		[]any{"BrandA", "Region2", 60.0},
	)))

	rows, err := repo.Breakdown(context.Background(), query.Statement{SQL: "SELECT 1"})
	require.NoError(t, err)
	assert.Equal(t, []repository.BreakdownRow{
		{ComparisonValue: "BrandA", BreakdownValue: "Region1", MetricValue: 80},
		{ComparisonValue: "BrandA", BreakdownValue: "Region2", MetricValue: 60},
	}, rows)

	_, err = repository.NewInsightRepository(rowsConn(repotest.NewRows([]any{"BrandA", 1.0}))).
		Breakdown(context.Background(), query.Statement{})
	assert.ErrorContains(t, err, "scan breakdown")
}

func TestInsightRepository_Errors(t *testing.T) {
	t.Run("query failure is wrapped", func(t *testing.T) {
		boom := errors.New("connection reset")
		conn := &repotest.Conn{Handler: func(string, []any) (pgx.Rows, error) { return nil, boom }}

		_, err := repository.NewInsightRepository(conn).Summary(context.Background(), query.Statement{})
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "query summary")
	})

	t.Run("iteration failure is reported", func(t *testing.T) {
		boom := errors.New("canceled")
		conn := rowsConn(repotest.NewRows([]any{"Region1", 1.0}).WithErr(boom))

		_, err := repository.NewInsightRepository(conn).Summary(context.Background(), query.Statement{})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("scan mismatch", func(t *testing.T) {
		conn := rowsConn(repotest.NewRows([]any{"Region1"}))
		_, err := repository.NewInsightRepository(conn).Summary(context.Background(), query.Statement{})
		assert.ErrorContains(t, err, "scan summary")
	})
}

func TestCustomerRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("components", func(t *testing.T) {
		repo := repository.NewCustomerRepository(rowsConn(repotest.NewRows(
			[]any{"Region1", int64(4), int64(1), 250.0, int64(3)},
		)))
		rows, err := repo.Components(ctx, query.Statement{})
		require.NoError(t, err)
		assert.Equal(t, []repository.ComponentRow{{
			ComparisonValue: "Region1",
			Components:      metric.Components{Customers: 4, NewCustomers: 1, Revenue: 250, RepeatCustomers: 3},
		}}, rows)
	})

	t.Run("segment values", func(t *testing.T) {
		repo := repository.NewCustomerRepository(rowsConn(repotest.NewRows(
			[]any{"18-24", "Region1", 99.0},
		)))
		rows, err := repo.SegmentValues(ctx, query.Statement{})
		require.NoError(t, err)
		assert.Equal(t, []repository.SegmentRow{{SegmentValue: "18-24", ComparisonValue: "Region1", MetricValue: 99}}, rows)
	})

	t.Run("segment components", func(t *testing.T) {
		repo := repository.NewCustomerRepository(rowsConn(repotest.NewRows(
			[]any{"female", "", int64(2), int64(0), 40.0, int64(1)},
		)))
		rows, err := repo.SegmentComponents(ctx, query.Statement{})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "female", rows[0].SegmentValue)
		assert.Equal(t, int64(1), rows[0].Components.RepeatCustomers)
	})
}

func TestDimensionRepository(t *testing.T) {
	repo := repository.NewDimensionRepository(rowsConn(repotest.NewRows(
		[]any{"Downtown", "5f0c7e4e-8f4f-4de7-9c1a-0d57b7f6f0a1"},
		[]any{"Uptown", nil},
	)))

	rows, err := repo.Values(context.Background(), query.Statement{})
	require.NoError(t, err)
	assert.Equal(t, []repository.DimensionRow{
		{Name: "Downtown", ID: "5f0c7e4e-8f4f-4de7-9c1a-0d57b7f6f0a1"},
		{Name: "Uptown"},
	}, rows)
}

func TestStatementLogLevel(t *testing.T) {
	var buf bytes.Buffer
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	repo := repository.NewInsightRepository(&repotest.Conn{})
	stmt := query.Statement{SQL: "SELECT 1", Args: []any{"2024-01-01"}}

	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	_, err := repo.Summary(context.Background(), stmt)
	require.NoError(t, err)
	assert.Empty(t, buf.String(), "statements stay out of debug output")

	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	_, err = repo.Summary(context.Background(), stmt)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"sql":"SELECT 1"`)
}
