package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/anyulbade/retail-insights-engine/internal/model"
)

var fixtureNamespace = uuid.MustParse("0f6b6a1e-6f0c-4d1b-9a57-6a3c1f0e2b44")

// FixtureID derives the stable id of a fixture row from its name.
func FixtureID(name string) uuid.UUID {
	return uuid.NewSHA1(fixtureNamespace, []byte(name))
}

func fixtureDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func intPtr(v int) *int            { return &v }
func strPtr(v string) *string      { return &v }
func floatPtr(v float64) *float64  { return &v }
func idPtr(v uuid.UUID) *uuid.UUID { return &v }

// Fixtures is a small dataset spanning Dec 2023 and Jan 2024. Jan 2024
// totals: sales 290, profit 152, orders 4, returns 1; Dec 2023: sales 40,
// orders 1, returns 1.
type Fixtures struct {
	Stores     []model.Store
	Customers  []model.Customer
	Products   []model.Product
	Orders     []model.Order
	OrderItems []model.OrderItem
	Returns    []model.Return
}

func DefaultFixtures() Fixtures {
	created := fixtureDate("2023-01-01")

	f := Fixtures{
		Stores: []model.Store{
			{ID: FixtureID("store/downtown"), Name: "Downtown", ManagerName: "R. Diaz", Region: model.Region1, IsActive: true, CreatedAt: created},
			{ID: FixtureID("store/riverside"), Name: "Riverside", ManagerName: "M. Okafor", Region: model.Region1, IsActive: true, CreatedAt: created},
			{ID: FixtureID("store/hilltop"), Name: "Hilltop", ManagerName: "S. Lind", Region: model.Region2, IsActive: true, CreatedAt: created},
		},
		Customers: []model.Customer{
			{
				ID: FixtureID("customer/ana"), Email: "ana@example.com", FirstName: "Ana", LastName: "Silva",
				Age: intPtr(30), Gender: strPtr("Female"), IncomeBracket: model.IncomeMedium, Country: "Portugal",
				MaritalStatus: model.MaritalMarried, EducationLevel: model.EducationBachelor,
				EmploymentStatus: model.EmploymentEmployed, CreatedAt: created,
			},
			{
				ID: FixtureID("customer/ben"), Email: "ben@example.com", FirstName: "Ben", LastName: "Novak",
				Age: intPtr(45), Gender: strPtr("Male"), IncomeBracket: model.IncomeHigh, Country: "Spain",
				MaritalStatus: model.MaritalSingle, EducationLevel: model.EducationMaster,
				EmploymentStatus: model.EmploymentEmployed, CreatedAt: created,
			},
			{ID: FixtureID("customer/cal"), Email: "cal@example.com", FirstName: "Cal", LastName: "Reyes", CreatedAt: created},
		},
		Products: []model.Product{
			{ID: FixtureID("product/lamp"), Name: "Lamp", Brand: model.Brands[0], Category: model.CategoryFurniture, Price: 20, Cost: floatPtr(12), StockQuantity: 40},
			{ID: FixtureID("product/chair"), Name: "Chair", Brand: model.Brands[1], Category: model.CategoryFurniture, Price: 50, Cost: floatPtr(30), StockQuantity: 15},
			{ID: FixtureID("product/kettle"), Name: "Kettle", Brand: model.Brands[0], Category: model.CategoryHomeAppliances, Price: 30, StockQuantity: 25},
		},
	}

	type line struct {
		product  string
		quantity int
	}
	orders := []struct {
		name, customer, store, date string
		lines                       []line
	}{
		{"order/1", "customer/ana", "store/downtown", "2023-12-10", []line{{"product/lamp", 2}}},
		{"order/2", "customer/ana", "store/downtown", "2024-01-05", []line{{"product/chair", 1}, {"product/lamp", 1}}},
		{"order/3", "customer/ben", "store/hilltop", "2024-01-10", []line{{"product/kettle", 2}}},
		{"order/4", "customer/ana", "store/riverside", "2024-01-20", []line{{"product/lamp", 3}}},
		{"order/5", "customer/cal", "store/hilltop", "2024-01-25", []line{{"product/chair", 2}}},
	}

	prices := make(map[uuid.UUID]float64, len(f.Products))
	for _, p := range f.Products {
		prices[p.ID] = p.Price
	}

	for _, o := range orders {
		order := model.Order{
			ID:            FixtureID(o.name),
			StoreID:       FixtureID(o.store),
			CustomerID:    FixtureID(o.customer),
			Status:        model.OrderDelivered,
			OrderDate:     fixtureDate(o.date),
			PaymentMethod: model.PaymentCreditCard,
			PaymentStatus: model.PaymentCompleted,
		}
		for i, l := range o.lines {
			productID := FixtureID(l.product)
			item := model.OrderItem{
				ID:        FixtureID(fmt.Sprintf("%s/item/%d", o.name, i)),
				OrderID:   order.ID,
				ProductID: idPtr(productID),
				Price:     prices[productID],
				Quantity:  l.quantity,
			}
			order.TotalAmount += item.LineTotal()
			f.OrderItems = append(f.OrderItems, item)
		}
		f.Orders = append(f.Orders, order)
	}

	f.Returns = []model.Return{
		{ID: FixtureID("return/1"), OrderItemID: FixtureID("order/1/item/0"), Reason: "damaged", ReturnDate: fixtureDate("2023-12-20"), RefundAmount: 20, Status: model.ReturnCompleted},
		{ID: FixtureID("return/2"), OrderItemID: FixtureID("order/3/item/0"), Reason: "wrong size", ReturnDate: fixtureDate("2024-01-15"), RefundAmount: 30, Status: model.ReturnApproved},
	}
	return f
}

// SeedFixtures loads f inside one transaction. It is a no-op when stores
// already exist.
func SeedFixtures(ctx context.Context, pool *pgxpool.Pool, f Fixtures) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM stores").Scan(&count); err != nil {
		return fmt.Errorf("check existing data: %w", err)
	}
	if count > 0 {
		log.Info().Msg("fixtures already loaded, skipping")
		return nil
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, s := range f.Stores {
		if _, err := tx.Exec(ctx,
			"INSERT INTO stores (store_id, name, manager_name, region, is_active, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
			s.ID, s.Name, s.ManagerName, string(s.Region), s.IsActive, s.CreatedAt); err != nil {
			return fmt.Errorf("insert store %s: %w", s.Name, err)
		}
	}
	for _, c := range f.Customers {
		if _, err := tx.Exec(ctx,
			`INSERT INTO customers (customer_id, email, first_name, last_name, age, gender, income_bracket, country,
			marital_status, education_level, employment_status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			c.ID, c.Email, c.FirstName, c.LastName, c.Age, c.Gender, nullable(string(c.IncomeBracket)), nullable(c.Country),
			nullable(string(c.MaritalStatus)), nullable(string(c.EducationLevel)), nullable(string(c.EmploymentStatus)), c.CreatedAt); err != nil {
			return fmt.Errorf("insert customer %s: %w", c.Email, err)
		}
	}
	for _, p := range f.Products {
		if _, err := tx.Exec(ctx,
			"INSERT INTO products (product_id, name, brand, category, price, cost, stock_quantity) VALUES ($1, $2, $3, $4, $5, $6, $7)",
			p.ID, p.Name, string(p.Brand), string(p.Category), p.Price, p.Cost, p.StockQuantity); err != nil {
			return fmt.Errorf("insert product %s: %w", p.Name, err)
		}
	}
	for _, o := range f.Orders {
		if _, err := tx.Exec(ctx,
			`INSERT INTO orders (order_id, store_id, customer_id, total_amount, status, order_date, payment_method, payment_status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			o.ID, o.StoreID, o.CustomerID, o.TotalAmount, string(o.Status), o.OrderDate,
			string(o.PaymentMethod), string(o.PaymentStatus)); err != nil {
			return fmt.Errorf("insert order %s: %w", o.ID, err)
		}
	}

	batch := &pgx.Batch{}
	for _, i := range f.OrderItems {
		batch.Queue(
			`INSERT INTO order_items (order_item_id, order_id, product_id, price, discount_applied, quantity, total_price)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			i.ID, i.OrderID, i.ProductID, i.Price, i.Discount, i.Quantity, i.LineTotal())
	}
	for _, r := range f.Returns {
		batch.Queue(
			`INSERT INTO returns (return_id, order_item_id, reason, return_date, refund_amount, return_status)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			r.ID, r.OrderItemID, r.Reason, r.ReturnDate, r.RefundAmount, string(r.Status))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert order items and returns: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit fixtures: %w", err)
	}

	log.Info().
		Int("stores", len(f.Stores)).
		Int("orders", len(f.Orders)).
		Int("order_items", len(f.OrderItems)).
		Msg("fixtures loaded")
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
