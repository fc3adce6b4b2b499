package repository

import (
	"context"
	"fmt"

	"github.com/anyulbade/retail-insights-engine/internal/query"
)

type InsightRepository struct {
	q Querier
}

func NewInsightRepository(q Querier) *InsightRepository {
	return &InsightRepository{q: q}
}

type SummaryRow struct {
	ComparisonValue string
	MetricValue     float64
}

type TrendRow struct {
	ComparisonValue string
	Bucket          string
	MetricValue     float64
}

func (r *InsightRepository) Summary(ctx context.Context, stmt query.Statement) ([]SummaryRow, error) {
	rows, err := run(ctx, r.q, "summary", stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SummaryRow
	for rows.Next() {
		var s SummaryRow
		if err := rows.Scan(&s.ComparisonValue, &s.MetricValue); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary: %w", err)
	}
	return results, nil
}

func (r *InsightRepository) Trend(ctx context.Context, stmt query.Statement) ([]TrendRow, error) {
	rows, err := run(ctx, r.q, "trend", stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []TrendRow
	for rows.Next() {
		var t TrendRow
		if err := rows.Scan(&t.ComparisonValue, &t.Bucket, &t.MetricValue); err != nil {
			return nil, fmt.Errorf("scan trend: %w", err)
		}
		results = append(results, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trend: %w", err)
	}
	return results, nil
}

type BreakdownRow struct {
	ComparisonValue string
	BreakdownValue  string
	MetricValue     float64
}

func (r *InsightRepository) Breakdown(ctx context.Context, stmt query.Statement) ([]BreakdownRow, error) {
	rows, err := run(ctx, r.q, "breakdown", stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []BreakdownRow
	for rows.Next() {
		var b BreakdownRow
		if err := rows.Scan(&b.ComparisonValue, &b.BreakdownValue, &b.MetricValue); err != nil {
			return nil, fmt.Errorf("scan breakdown: %w", err)
		}
		results = append(results, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate breakdown: %w", err)
	}
	return results, nil
}
