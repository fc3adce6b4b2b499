package repository

import (
	"context"
	"fmt"

	"github.com/anyulbade/retail-insights-engine/internal/query"
)

type DimensionRepository struct {
	q Querier
}

func NewDimensionRepository(q Querier) *DimensionRepository {
	return &DimensionRepository{q: q}
}

type DimensionRow struct {
	Name string
	// ID is empty for levels without an identifier of their own.
	ID string
}

func (r *DimensionRepository) Values(ctx context.Context, stmt query.Statement) ([]DimensionRow, error) {
	rows, err := run(ctx, r.q, "dimension values", stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []DimensionRow
	for rows.Next() {
		var d DimensionRow
		if err := rows.Scan(&d.Name, &d.ID); err != nil {
			return nil, fmt.Errorf("scan dimension value: %w", err)
		}
		results = append(results, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dimension values: %w", err)
	}
	return results, nil
}
