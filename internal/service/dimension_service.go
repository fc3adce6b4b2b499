package service

import (
	"context"

	"github.com/anyulbade/retail-insights-engine/internal/query"
	"github.com/anyulbade/retail-insights-engine/internal/repository"
)

// DimensionService lists the values callers can filter and compare by.
type DimensionService struct {
	store Acquirer
}

func NewDimensionService(store Acquirer) *DimensionService {
	return &DimensionService{store: store}
}

type DimensionValue struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

func (s *DimensionService) Regions(ctx context.Context) ([]DimensionValue, error) {
	return s.list(ctx, query.LevelRegion, query.Filters{})
}

// Stores lists stores, restricted to regions when any are given.
func (s *DimensionService) Stores(ctx context.Context, regions query.Filters) ([]DimensionValue, error) {
	return s.list(ctx, query.LevelStore, query.Filters{Regions: regions.Regions})
}

func (s *DimensionService) Brands(ctx context.Context) ([]DimensionValue, error) {
	return s.list(ctx, query.LevelBrand, query.Filters{})
}

// Products lists products, restricted to brands when any are given.
func (s *DimensionService) Products(ctx context.Context, brands query.Filters) ([]DimensionValue, error) {
	return s.list(ctx, query.LevelProduct, query.Filters{Brands: brands.Brands})
}

func (s *DimensionService) list(ctx context.Context, level query.Level, f query.Filters) ([]DimensionValue, error) {
	stmt, err := query.BuildDimensionValues(level, f)
	if err != nil {
		return nil, err
	}

	conn, err := s.store.Acquire(ctx)
	if err != nil {
		return nil, requestLog{op: "list " + string(level), level: level, filters: f}.storeFailure(err)
	}
	defer conn.Release()

	rows, err := repository.NewDimensionRepository(conn).Values(ctx, stmt)
	if err != nil {
		return nil, requestLog{op: "list " + string(level), level: level, filters: f}.storeFailure(err)
	}

	out := make([]DimensionValue, len(rows))
	for i, r := range rows {
		out[i] = DimensionValue{ID: r.ID, Name: r.Name}
	}
	return out, nil
}
