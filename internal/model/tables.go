package model

// Table names a fact table of the store schema.
type Table string

const (
	TableOrders     Table = "orders"
	TableOrderItems Table = "order_items"
	TableProducts   Table = "products"
	TableStores     Table = "stores"
	TableCustomers  Table = "customers"
	TableReturns    Table = "returns"
)

var tableAliases = map[Table]string{
	TableOrders:     "o",
	TableOrderItems: "oi",
	TableProducts:   "p",
	TableStores:     "s",
	TableCustomers:  "c",
	TableReturns:    "r",
}

// Alias is the fixed alias every composed statement uses for the table.
func (t Table) Alias() string {
	return tableAliases[t]
}

// Ref renders "orders o".
func (t Table) Ref() string {
	return string(t) + " " + t.Alias()
}
