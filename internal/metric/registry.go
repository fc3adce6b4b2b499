// Package metric holds the fixed catalogue of metrics the engine can compute.
package metric

import (
	"github.com/anyulbade/retail-insights-engine/internal/apperr"
	"github.com/anyulbade/retail-insights-engine/internal/model"
)

type Name string

const (
	TotalSales   Name = "Total Sales"
	TotalOrders  Name = "Total Orders"
	TotalReturns Name = "Total Returns"
	TotalProfit  Name = "Total Profit"

	TotalCustomers            Name = "Total Customers"
	NewCustomers              Name = "New Customers"
	AverageRevenuePerCustomer Name = "Average Revenue per Customer"
	RepeatCustomerRate        Name = "Repeat Customer Rate"
)

// Family separates metrics aggregated straight from fact rows from metrics
// derived from per-customer components.
type Family int

const (
	FamilySales Family = iota
	FamilyCustomer
)

type Display int

const (
	DisplayCurrency Display = iota
	DisplayCount
	DisplayPercentage
)

type Definition struct {
	Name   Name
	Family Family
	// Aggregate is the SQL aggregate over the source table and its joins.
	// Empty for customer metrics.
	Aggregate string
	Source    model.Table
	DateField string
	Requires  []model.Table
	Display   Display
	// Derive computes a customer metric from its components.
	Derive func(Components) float64
}

// Components are the additive per-group counters customer metrics derive from.
type Components struct {
	Customers       int64
	NewCustomers    int64
	Revenue         float64
	RepeatCustomers int64
}

func (c Components) Add(o Components) Components {
	return Components{
		Customers:       c.Customers + o.Customers,
		NewCustomers:    c.NewCustomers + o.NewCustomers,
		Revenue:         c.Revenue + o.Revenue,
		RepeatCustomers: c.RepeatCustomers + o.RepeatCustomers,
	}
}

const (
	orderDate  = "o.order_date"
	returnDate = "r.return_date"
)

var salesMetrics = []Definition{
	{
		Name:      TotalSales,
		Family:    FamilySales,
		Aggregate: "SUM(oi.price * oi.quantity)",
		Source:    model.TableOrderItems,
		DateField: orderDate,
		Requires:  []model.Table{model.TableOrders},
		Display:   DisplayCurrency,
	},
	{
		Name:      TotalOrders,
		Family:    FamilySales,
		Aggregate: "COUNT(DISTINCT o.order_id)",
		Source:    model.TableOrders,
		DateField: orderDate,
		Display:   DisplayCount,
	},
	{
		Name:      TotalReturns,
		Family:    FamilySales,
		Aggregate: "COUNT(DISTINCT r.return_id)",
		Source:    model.TableReturns,
		DateField: returnDate,
		Requires:  []model.Table{model.TableOrderItems},
		Display:   DisplayCount,
	},
	{
		Name:      TotalProfit,
		Family:    FamilySales,
		Aggregate: "SUM((p.price - COALESCE(p.cost, 0)) * oi.quantity)",
		Source:    model.TableOrderItems,
		DateField: orderDate,
		Requires:  []model.Table{model.TableOrders, model.TableProducts},
		Display:   DisplayCurrency,
	},
}

var customerMetrics = []Definition{
	{
		Name:    TotalCustomers,
		Display: DisplayCount,
		Derive:  func(c Components) float64 { return float64(c.Customers) },
	},
	{
		Name:    NewCustomers,
		Display: DisplayCount,
		Derive:  func(c Components) float64 { return float64(c.NewCustomers) },
	},
	{
		Name:    AverageRevenuePerCustomer,
		Display: DisplayCurrency,
		Derive: func(c Components) float64 {
			if c.Customers == 0 {
				return 0
			}
			return c.Revenue / float64(c.Customers)
		},
	},
	{
		Name:    RepeatCustomerRate,
		Display: DisplayPercentage,
		Derive: func(c Components) float64 {
			if c.Customers == 0 {
				return 0
			}
			return float64(c.RepeatCustomers) / float64(c.Customers) * 100
		},
	},
}

func init() {
	for i := range customerMetrics {
		customerMetrics[i].Family = FamilyCustomer
		customerMetrics[i].Source = model.TableOrders
		customerMetrics[i].DateField = orderDate
		customerMetrics[i].Requires = []model.Table{model.TableOrderItems}
	}
}

// Sales returns the sales metrics in KPI card order.
func Sales() []Definition {
	return []Definition{salesMetrics[0], salesMetrics[3], salesMetrics[1], salesMetrics[2]}
}

// Customer returns the customer metrics in report order.
func Customer() []Definition {
	out := make([]Definition, len(customerMetrics))
	copy(out, customerMetrics)
	return out
}

func Lookup(name string) (Definition, error) {
	if def, ok := find(salesMetrics, name); ok {
		return def, nil
	}
	if def, ok := find(customerMetrics, name); ok {
		return def, nil
	}
	return Definition{}, apperr.InvalidMetric(name, append(Names(salesMetrics), Names(customerMetrics)...))
}

func LookupSales(name string) (Definition, error) {
	if def, ok := find(salesMetrics, name); ok {
		return def, nil
	}
	return Definition{}, apperr.InvalidMetric(name, Names(salesMetrics))
}

func LookupCustomer(name string) (Definition, error) {
	if def, ok := find(customerMetrics, name); ok {
		return def, nil
	}
	return Definition{}, apperr.InvalidMetric(name, Names(customerMetrics))
}

func Names(defs []Definition) []string {
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = string(d.Name)
	}
	return out
}

func find(defs []Definition, name string) (Definition, bool) {
	for _, d := range defs {
		if string(d.Name) == name {
			return d, true
		}
	}
	return Definition{}, false
}
