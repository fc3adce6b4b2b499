package query

import (
	"fmt"

	"github.com/anyulbade/retail-insights-engine/internal/model"
)

type edge struct {
	a, b model.Table
	on   string
}

// joinEdges form a tree over the fact tables, so every table is reachable
// from any source table along exactly one path.
var joinEdges = []edge{
	{model.TableOrders, model.TableOrderItems, "oi.order_id = o.order_id"},
	{model.TableOrderItems, model.TableProducts, "p.product_id = oi.product_id"},
	{model.TableOrders, model.TableStores, "s.store_id = o.store_id"},
	{model.TableOrders, model.TableCustomers, "c.customer_id = o.customer_id"},
	{model.TableOrderItems, model.TableReturns, "r.order_item_id = oi.order_item_id"},
}

// joinSet accumulates the joins a statement needs, each table at most once.
type joinSet struct {
	root    model.Table
	joined  map[model.Table]bool
	clauses []string
}

func newJoinSet(root model.Table) *joinSet {
	return &joinSet{
		root:   root,
		joined: map[model.Table]bool{root: true},
	}
}

func (j *joinSet) require(tables ...model.Table) {
	for _, t := range tables {
		if j.joined[t] {
			continue
		}
		for _, e := range pathTo(j.root, t) {
			if j.joined[e.b] {
				continue
			}
			j.clauses = append(j.clauses, fmt.Sprintf("JOIN %s ON %s", e.b.Ref(), e.on))
			j.joined[e.b] = true
		}
	}
}

// raw appends a join that is not part of the table tree, such as a derived
// table.
func (j *joinSet) raw(clause string) {
	j.clauses = append(j.clauses, clause)
}

// pathTo returns the edges from root to target oriented away from root.
func pathTo(root, target model.Table) []edge {
	parent := map[model.Table]edge{}
	seen := map[model.Table]bool{root: true}
	queue := []model.Table{root}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == target {
			break
		}
		for _, e := range joinEdges {
			next, ok := e.other(cur)
			if !ok || seen[next] {
				continue
			}
			seen[next] = true
			parent[next] = edge{a: cur, b: next, on: e.on}
			queue = append(queue, next)
		}
	}

	var path []edge
	for t := target; t != root; {
		e, ok := parent[t]
		if !ok {
			return nil
		}
		path = append([]edge{e}, path...)
		t = e.a
	}
	return path
}

func (e edge) other(t model.Table) (model.Table, bool) {
	switch t {
	case e.a:
		return e.b, true
	case e.b:
		return e.a, true
	}
	return "", false
}
