// Package repotest provides in-memory stand-ins for fact store connections.
package repotest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/anyulbade/retail-insights-engine/internal/repository"
)

// Rows is a pgx.Rows over fixed values.
type Rows struct {
	values [][]any
	pos    int
	err    error
	closed bool
}

func NewRows(values ...[]any) *Rows {
	return &Rows{values: values}
}

// WithErr makes iteration end with err.
func (r *Rows) WithErr(err error) *Rows {
	r.err = err
	return r
}

func (r *Rows) Close()                                       { r.closed = true }
func (r *Rows) Err() error                                   { return r.err }
func (r *Rows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *Rows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *Rows) RawValues() [][]byte                          { return nil }
func (r *Rows) Conn() *pgx.Conn                              { return nil }

func (r *Rows) Next() bool {
	if r.closed || r.pos >= len(r.values) {
		r.closed = true
		return false
	}
	r.pos++
	return true
}

func (r *Rows) Values() ([]any, error) {
	if r.pos == 0 {
		return nil, errors.New("no current row")
	}
	return r.values[r.pos-1], nil
}

func (r *Rows) Scan(dest ...any) error {
	row, err := r.Values()
	if err != nil {
		return err
	}
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d destinations for %d columns", len(dest), len(row))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d)
		if target.Kind() != reflect.Pointer || target.IsNil() {
			return fmt.Errorf("scan: destination %d is not a pointer", i)
		}
		elem := target.Elem()
		if row[i] == nil {
			elem.Set(reflect.Zero(elem.Type()))
			continue
		}
		v := reflect.ValueOf(row[i])
		if !v.Type().ConvertibleTo(elem.Type()) {
			return fmt.Errorf("scan: cannot assign %T to %s", row[i], elem.Type())
		}
		elem.Set(v.Convert(elem.Type()))
	}
	return nil
}

type Call struct {
	SQL  string
	Args []any
}

// Conn answers every query through Handler and records the calls.
type Conn struct {
	Handler func(sql string, args []any) (pgx.Rows, error)

	mu       sync.Mutex
	calls    []Call
	released int
}

func (c *Conn) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	c.mu.Lock()
	c.calls = append(c.calls, Call{SQL: sql, Args: args})
	c.mu.Unlock()

	if c.Handler == nil {
		return NewRows(), nil
	}
	return c.Handler(sql, args)
}

func (c *Conn) Release() {
	c.mu.Lock()
	c.released++
	c.mu.Unlock()
}

func (c *Conn) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

func (c *Conn) Released() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.released
}

// Acquirer hands out the same Conn on every Acquire, or Err when set.
type Acquirer struct {
	Conn *Conn
	Err  error

	mu       sync.Mutex
	acquired int
}

func (a *Acquirer) Acquire(context.Context) (repository.Conn, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Err != nil {
		return nil, a.Err
	}
	a.acquired++
	return a.Conn, nil
}

func (a *Acquirer) Acquired() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.acquired
}
