package types

import "github.com/shopspring/decimal"

// Order belongs to a customer and optionally to a store. OrderDate
// defaults to the creation day.
type Order struct {
	OrderID     int64           `db:"order_id" json:"order_id" validate:"gt=0"`
	CustomerID  int64           `db:"customer_id" json:"customer_id" validate:"gt=0"`
	StoreID     *int64          `db:"store_id" json:"store_id" validate:"omitempty,gt=0"`
	OrderDate   Date            `db:"order_date" json:"order_date"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount" validate:"dgte0"`
}

// OrderItem is one product line of an order. Price is the unit price.
type OrderItem struct {
	OrderItemID int64           `db:"order_item_id" json:"order_item_id" validate:"gt=0"`
	OrderID     int64           `db:"order_id" json:"order_id" validate:"gt=0"`
	ProductID   int64           `db:"product_id" json:"product_id" validate:"gt=0"`
	Quantity    int64           `db:"quantity" json:"quantity" validate:"gt=0"`
	Price       decimal.Decimal `db:"price" json:"price" validate:"dgte0"`
}

// Payment settles an order. PaymentDate defaults to the creation day.
type Payment struct {
	PaymentID     int64           `db:"payment_id" json:"payment_id" validate:"gt=0"`
	OrderID       int64           `db:"order_id" json:"order_id" validate:"gt=0"`
	Amount        decimal.Decimal `db:"amount" json:"amount" validate:"dgte0"`
	PaymentMethod string          `db:"payment_method" json:"payment_method" validate:"required,max=50"`
	PaymentDate   Date            `db:"payment_date" json:"payment_date"`
}
