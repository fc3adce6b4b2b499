package model

import (
	"time"

	"github.com/google/uuid"
)

type Store struct {
	ID          uuid.UUID `json:"store_id"`
	Name        string    `json:"name"`
	ManagerName string    `json:"manager_name"`
	Region      Region    `json:"region"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type Customer struct {
	ID               uuid.UUID        `json:"customer_id"`
	Email            string           `json:"email"`
	FirstName        string           `json:"first_name"`
	LastName         string           `json:"last_name"`
	Age              *int             `json:"age,omitempty"`
	Gender           *string          `json:"gender,omitempty"`
	IncomeBracket    IncomeBracket    `json:"income_bracket,omitempty"`
	Country          string           `json:"country,omitempty"`
	Region           string           `json:"region,omitempty"`
	MaritalStatus    MaritalStatus    `json:"marital_status,omitempty"`
	EducationLevel   EducationLevel   `json:"education_level,omitempty"`
	EmploymentStatus EmploymentStatus `json:"employment_status,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

type Product struct {
	ID            uuid.UUID `json:"product_id"`
	Name          string    `json:"name"`
	Brand         Brand     `json:"brand"`
	Category      Category  `json:"category"`
	Price         float64   `json:"price"`
	Cost          *float64  `json:"cost,omitempty"`
	StockQuantity int       `json:"stock_quantity"`
}

// UnitProfit treats a missing cost as zero.
func (p Product) UnitProfit() float64 {
	if p.Cost == nil {
		return p.Price
	}
	return p.Price - *p.Cost
}

type Order struct {
	ID            uuid.UUID     `json:"order_id"`
	StoreID       uuid.UUID     `json:"store_id"`
	CustomerID    uuid.UUID     `json:"customer_id"`
	TotalAmount   float64       `json:"total_amount"`
	Status        OrderStatus   `json:"status"`
	OrderDate     time.Time     `json:"order_date"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	PaymentStatus PaymentStatus `json:"payment_status"`
}

type OrderItem struct {
	ID        uuid.UUID  `json:"order_item_id"`
	OrderID   uuid.UUID  `json:"order_id"`
	ProductID *uuid.UUID `json:"product_id,omitempty"`
	Price     float64    `json:"price"`
	// Discount is a fraction in [0, 1); 0.25 means 25%.
	Discount float64 `json:"discount_applied"`
	Quantity int     `json:"quantity"`
}

func (i OrderItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

type Return struct {
	ID           uuid.UUID    `json:"return_id"`
	OrderItemID  uuid.UUID    `json:"order_item_id"`
	Reason       string       `json:"reason"`
	ReturnDate   time.Time    `json:"return_date"`
	RefundAmount float64      `json:"refund_amount"`
	Status       ReturnStatus `json:"return_status"`
}
