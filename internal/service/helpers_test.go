package service

import (
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/anyulbade/retail-insights-engine/internal/daterange"
	"github.com/anyulbade/retail-insights-engine/internal/repository/repotest"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// route answers statements whose SQL contains match (and also, when set) and
// whose first argument equals start (when set).
type route struct {
	match string
	also  string
	start string
	rows  [][]any
}

func fakeStore(t *testing.T, routes ...route) (*repotest.Acquirer, *repotest.Conn) {
	t.Helper()
	conn := &repotest.Conn{Handler: func(sql string, args []any) (pgx.Rows, error) {
		for _, r := range routes {
			if !strings.Contains(sql, r.match) || (r.also != "" && !strings.Contains(sql, r.also)) {
				continue
			}
			if r.start != "" && (len(args) == 0 || args[0] != r.start) {
				continue
			}
			return repotest.NewRows(r.rows...), nil
		}
		return repotest.NewRows(), nil
	}}
	return &repotest.Acquirer{Conn: conn}, conn
}

func fixedCalculator() daterange.Calculator {
	return daterange.Calculator{Now: func() time.Time { return date(2024, 1, 31) }}
}
