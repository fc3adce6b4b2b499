package query

import (
	"strings"

	"github.com/anyulbade/retail-insights-engine/internal/apperr"
	"github.com/anyulbade/retail-insights-engine/internal/model"
)

// Level is the dimension results are broken down by.
type Level string

const (
	// LevelNone aggregates everything into a single total.
	LevelNone    Level = ""
	LevelRegion  Level = "region"
	LevelStore   Level = "store"
	LevelBrand   Level = "brand"
	LevelProduct Level = "product"
)

var Levels = []Level{LevelRegion, LevelStore, LevelBrand, LevelProduct}

type dimension struct {
	column string
	table  model.Table
}

var dimensions = map[Level]dimension{
	LevelRegion:  {column: "s.region::text", table: model.TableStores},
	LevelStore:   {column: "s.name", table: model.TableStores},
	LevelBrand:   {column: "p.brand::text", table: model.TableProducts},
	LevelProduct: {column: "p.name", table: model.TableProducts},
}

// ParseLevel is case-insensitive. An empty value is rejected; callers that
// allow no breakdown check for it first.
func ParseLevel(raw string) (Level, error) {
	l := Level(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := dimensions[l]; !ok {
		return LevelNone, apperr.InvalidComparisonLevel(raw, levelNames())
	}
	return l, nil
}

// Column is the SQL expression labelling a row at this level.
func (l Level) Column() string {
	if d, ok := dimensions[l]; ok {
		return d.column
	}
	return "''::text"
}

func (l Level) Table() (model.Table, bool) {
	d, ok := dimensions[l]
	return d.table, ok
}

// Enumerable reports whether every value of the level can be listed cheaply,
// which lets results report zero for values without activity.
func (l Level) Enumerable() bool {
	return l == LevelRegion || l == LevelStore || l == LevelBrand
}

func (l Level) valid() bool {
	if l == LevelNone {
		return true
	}
	_, ok := dimensions[l]
	return ok
}

func levelNames() []string {
	out := make([]string, len(Levels))
	for i, l := range Levels {
		out[i] = string(l)
	}
	return out
}
