package query

import (
	"fmt"
	"strings"

	"github.com/anyulbade/retail-insights-engine/internal/daterange"
	"github.com/anyulbade/retail-insights-engine/internal/model"
)

const firstPurchaseJoin = `JOIN (SELECT customer_id, MIN(order_date) AS first_order_date FROM orders GROUP BY customer_id) fp ON fp.customer_id = o.customer_id`

// CustomerPlan holds the customer component statements. Rows are
// (comparison_value, customers, new_customers, revenue, repeat_customers).
type CustomerPlan struct {
	Overall     Statement
	ByDimension *Statement
}

// BuildCustomer composes the component statements customer metrics are
// derived from. A customer is new when their first order ever falls within the
// range, and repeat when they placed more than one order within it.
func BuildCustomer(level Level, f Filters, r daterange.Range) (CustomerPlan, error) {
	if !level.valid() {
		return CustomerPlan{}, fmt.Errorf("unsupported level %q", level)
	}

	plan := CustomerPlan{
		Overall: components([]label{{expr: LevelNone.Column(), alias: "comparison_value"}}, LevelNone, f, r),
	}
	if level != LevelNone {
		s := components([]label{{expr: level.Column(), alias: "comparison_value", grouped: true}}, level, f, r)
		plan.ByDimension = &s
	}
	return plan, nil
}

type label struct {
	expr    string
	alias   string
	grouped bool
}

// components aggregates per customer first, then per label, so that repeat
// status is judged within the filtered slice.
func components(labels []label, level Level, f Filters, r daterange.Range, tables ...model.Table) Statement {
	b := newBuilder(model.TableOrders)
	b.dateRange("o.order_date", r)
	b.joins.require(model.TableOrderItems)
	if t, ok := level.Table(); ok {
		b.joins.require(t)
	}
	b.joins.require(tables...)
	b.filters(f)
	b.joins.raw(firstPurchaseJoin)
	b.cond("o.customer_id IS NOT NULL")

	inner := make([]string, 0, len(labels)+4)
	groupBy := make([]string, 0, len(labels)+1)
	aliases := make([]string, 0, len(labels))
	for _, l := range labels {
		inner = append(inner, l.expr+" AS "+l.alias)
		aliases = append(aliases, l.alias)
		if l.grouped {
			groupBy = append(groupBy, l.expr)
		}
	}
	groupBy = append(groupBy, "o.customer_id")
	inner = append(inner,
		"o.customer_id",
		"COUNT(DISTINCT o.order_id) AS order_count",
		"COALESCE(SUM(oi.price * oi.quantity), 0) AS revenue",
		"MIN(fp.first_order_date) AS first_order_date",
	)

	perCustomer := b.render(selectParts{columns: inner, groupBy: strings.Join(groupBy, ", ")})
	keys := strings.Join(aliases, ", ")

	sql := fmt.Sprintf(`SELECT %s,
  COUNT(*) AS customers,
  COUNT(*) FILTER (WHERE first_order_date BETWEEN $1::date AND $2::date) AS new_customers,
  COALESCE(SUM(revenue), 0)::float8 AS revenue,
  COUNT(*) FILTER (WHERE order_count > 1) AS repeat_customers
FROM (
%s
) per_customer
GROUP BY %s
ORDER BY %s`, keys, perCustomer, keys, keys)

	return Statement{SQL: sql, Args: b.args}
}
