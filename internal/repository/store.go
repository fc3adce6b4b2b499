package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/anyulbade/retail-insights-engine/internal/query"
)

// Querier is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Conn is a connection held for the duration of one request.
type Conn interface {
	Querier
	Release()
}

// Store hands out scoped connections to the read-only fact store.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Acquire checks out a connection. Callers must Release it.
func (s *Store) Acquire(ctx context.Context) (Conn, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return conn, nil
}

func run(ctx context.Context, q Querier, op string, stmt query.Statement) (pgx.Rows, error) {
	log.Trace().Str("op", op).Str("sql", stmt.SQL).Interface("args", stmt.Args).Msg("query")

	rows, err := q.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", op, err)
	}
	return rows, nil
}
