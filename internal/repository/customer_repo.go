package repository

import (
	"context"
	"fmt"

	"github.com/anyulbade/retail-insights-engine/internal/metric"
	"github.com/anyulbade/retail-insights-engine/internal/query"
)

type CustomerRepository struct {
	q Querier
}

func NewCustomerRepository(q Querier) *CustomerRepository {
	return &CustomerRepository{q: q}
}

type ComponentRow struct {
	ComparisonValue string
	Components      metric.Components
}

type SegmentRow struct {
	SegmentValue    string
	ComparisonValue string
	MetricValue     float64
}

type SegmentComponentRow struct {
	SegmentValue    string
	ComparisonValue string
	Components      metric.Components
}

func (r *CustomerRepository) Components(ctx context.Context, stmt query.Statement) ([]ComponentRow, error) {
	rows, err := run(ctx, r.q, "customer components", stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ComponentRow
	for rows.Next() {
		var c ComponentRow
		if err := rows.Scan(&c.ComparisonValue, &c.Components.Customers, &c.Components.NewCustomers,
			&c.Components.Revenue, &c.Components.RepeatCustomers); err != nil {
			return nil, fmt.Errorf("scan customer components: %w", err)
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer components: %w", err)
	}
	return results, nil
}

func (r *CustomerRepository) SegmentValues(ctx context.Context, stmt query.Statement) ([]SegmentRow, error) {
	rows, err := run(ctx, r.q, "segment values", stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SegmentRow
	for rows.Next() {
		var s SegmentRow
		if err := rows.Scan(&s.SegmentValue, &s.ComparisonValue, &s.MetricValue); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate segment: %w", err)
	}
	return results, nil
}

func (r *CustomerRepository) SegmentComponents(ctx context.Context, stmt query.Statement) ([]SegmentComponentRow, error) {
	rows, err := run(ctx, r.q, "segment components", stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SegmentComponentRow
	for rows.Next() {
		var s SegmentComponentRow
		if err := rows.Scan(&s.SegmentValue, &s.ComparisonValue, &s.Components.Customers,
			&s.Components.NewCustomers, &s.Components.Revenue, &s.Components.RepeatCustomers); err != nil {
			return nil, fmt.Errorf("scan segment components: %w", err)
		}
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate segment components: %w", err)
	}
	return results, nil
}
