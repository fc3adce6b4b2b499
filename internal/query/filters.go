package query

import (
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/anyulbade/retail-insights-engine/internal/model"
)

// AllSentinel disables a filter when present among its values.
const AllSentinel = "all"

// Filters restrict the fact rows an aggregation reads. Empty fields do not
// filter. Values are normalized and sorted so equal requests compare equal.
type Filters struct {
	Regions      []model.Region `json:"regions,omitempty"`
	StoreIDs     []string       `json:"store_ids,omitempty"`
	StoreNames   []string       `json:"store_names,omitempty"`
	Brands       []model.Brand  `json:"brands,omitempty"`
	ProductIDs   []string       `json:"product_ids,omitempty"`
	ProductNames []string       `json:"product_names,omitempty"`
}

// NewFilters normalizes raw request values. Store and product values that
// parse as UUIDs match by id, anything else by name.
func NewFilters(regions, stores, brands, products []string) (Filters, error) {
	var f Filters

	for _, raw := range normalize(regions) {
		r, err := model.ParseRegion(raw)
		if err != nil {
			return Filters{}, err
		}
		f.Regions = append(f.Regions, r)
	}
	for _, raw := range normalize(brands) {
		b, err := model.ParseBrand(raw)
		if err != nil {
			return Filters{}, err
		}
		f.Brands = append(f.Brands, b)
	}
	f.Regions = sortedUniq(f.Regions)
	f.Brands = sortedUniq(f.Brands)

	f.StoreIDs, f.StoreNames = splitIdentifiers(normalize(stores))
	f.ProductIDs, f.ProductNames = splitIdentifiers(normalize(products))

	return f, nil
}

func (f Filters) IsZero() bool {
	return len(f.Regions) == 0 && len(f.StoreIDs) == 0 && len(f.StoreNames) == 0 &&
		len(f.Brands) == 0 && len(f.ProductIDs) == 0 && len(f.ProductNames) == 0
}

// predicate is one filter clause; ids and names for the same entity are ORed.
type predicate struct {
	table   model.Table
	columns []string
	values  [][]string
}

func (f Filters) predicates() []predicate {
	var out []predicate

	if len(f.Regions) > 0 {
		out = append(out, predicate{
			table:   model.TableStores,
			columns: []string{"s.region::text"},
			values:  [][]string{toStrings(f.Regions)},
		})
	}
	if p, ok := identity(model.TableStores, "s.store_id::text", f.StoreIDs, "s.name", f.StoreNames); ok {
		out = append(out, p)
	}
	if len(f.Brands) > 0 {
		out = append(out, predicate{
			table:   model.TableProducts,
			columns: []string{"p.brand::text"},
			values:  [][]string{toStrings(f.Brands)},
		})
	}
	if p, ok := identity(model.TableProducts, "p.product_id::text", f.ProductIDs, "p.name", f.ProductNames); ok {
		out = append(out, p)
	}

	return out
}

func identity(table model.Table, idCol string, ids []string, nameCol string, names []string) (predicate, bool) {
	p := predicate{table: table}
	if len(ids) > 0 {
		p.columns = append(p.columns, idCol)
		p.values = append(p.values, ids)
	}
	if len(names) > 0 {
		p.columns = append(p.columns, nameCol)
		p.values = append(p.values, names)
	}
	return p, len(p.columns) > 0
}

func normalize(values []string) []string {
	trimmed := lo.FilterMap(values, func(v string, _ int) (string, bool) {
		v = strings.TrimSpace(v)
		return v, v != ""
	})
	if lo.ContainsBy(trimmed, func(v string) bool { return strings.EqualFold(v, AllSentinel) }) {
		return nil
	}
	return trimmed
}

func splitIdentifiers(values []string) (ids, names []string) {
	for _, v := range values {
		if id, err := uuid.Parse(v); err == nil {
			ids = append(ids, id.String())
			continue
		}
		names = append(names, v)
	}
	return sortedUniq(ids), sortedUniq(names)
}

func sortedUniq[T ~string](values []T) []T {
	if len(values) == 0 {
		return nil
	}
	out := lo.Uniq(values)
	slices.Sort(out)
	return out
}

func toStrings[T ~string](values []T) []string {
	return lo.Map(values, func(v T, _ int) string { return string(v) })
}
