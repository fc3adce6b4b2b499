package query

import (
	"fmt"
	"strings"

	"github.com/anyulbade/retail-insights-engine/internal/daterange"
	"github.com/anyulbade/retail-insights-engine/internal/model"
)

// Statement is a parameterized SQL statement ready for execution.
type Statement struct {
	SQL  string
	Args []any
}

// builder assembles one SELECT. It is created per statement and never shared.
type builder struct {
	from  model.Table
	joins *joinSet
	where []string
	args  []any
}

func newBuilder(from model.Table) *builder {
	return &builder{from: from, joins: newJoinSet(from)}
}

func (b *builder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

// dateRange must be the first condition so the range bounds are $1 and $2.
func (b *builder) dateRange(field string, r daterange.Range) {
	b.where = append(b.where, fmt.Sprintf("%s BETWEEN %s::date AND %s::date",
		field, b.arg(r.StartDate()), b.arg(r.EndDate())))
}

func (b *builder) filters(f Filters) {
	for _, p := range f.predicates() {
		b.joins.require(p.table)
		b.where = append(b.where, b.predicateSQL(p))
	}
}

// filtersOn applies only the predicates targeting table, without joins.
func (b *builder) filtersOn(f Filters, table model.Table) {
	for _, p := range f.predicates() {
		if p.table == table {
			b.where = append(b.where, b.predicateSQL(p))
		}
	}
}

func (b *builder) predicateSQL(p predicate) string {
	parts := make([]string, len(p.columns))
	for i, col := range p.columns {
		parts[i] = fmt.Sprintf("%s = ANY(%s)", col, b.arg(p.values[i]))
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

func (b *builder) cond(c string) {
	b.where = append(b.where, c)
}

type selectParts struct {
	columns []string
	groupBy string
	orderBy string
	limit   string
}

func (b *builder) render(p selectParts) string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(p.columns, ", "))
	sb.WriteString("\nFROM ")
	sb.WriteString(b.from.Ref())
	for _, j := range b.joins.clauses {
		sb.WriteString("\n")
		sb.WriteString(j)
	}
	if len(b.where) > 0 {
		sb.WriteString("\nWHERE ")
		sb.WriteString(strings.Join(b.where, "\n  AND "))
	}
	if p.groupBy != "" {
		sb.WriteString("\nGROUP BY ")
		sb.WriteString(p.groupBy)
	}
	if p.orderBy != "" {
		sb.WriteString("\nORDER BY ")
		sb.WriteString(p.orderBy)
	}
	if p.limit != "" {
		sb.WriteString("\nLIMIT ")
		sb.WriteString(p.limit)
	}
	return sb.String()
}

func (b *builder) statement(p selectParts) Statement {
	return Statement{SQL: b.render(p), Args: b.args}
}

func bucketExpr(field string, g daterange.Granularity) string {
	format := "YYYY-MM-DD"
	if g == daterange.Month {
		format = "YYYY-MM"
	}
	return fmt.Sprintf("to_char(date_trunc('%s', %s::timestamp), '%s')", g, field, format)
}

func valueExpr(aggregate string) string {
	return fmt.Sprintf("COALESCE(%s, 0)::float8", aggregate)
}
