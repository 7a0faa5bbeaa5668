package types

import "github.com/shopspring/decimal"

// Product is a stocked item. Deleting its supplier deletes the product.
// Order items take Stock down through the inventory guard and shipments add
// to it. A direct update may set any non-negative value.
type Product struct {
	ProductID  int64           `db:"product_id" json:"product_id" validate:"gt=0"`
	Name       string          `db:"name" json:"name" validate:"required,max=255"`
	Category   string          `db:"category" json:"category" validate:"required,max=100"`
	Price      decimal.Decimal `db:"price" json:"price" validate:"dgte0"`
	Stock      int64           `db:"stock" json:"stock" validate:"gte=0"`
	SupplierID int64           `db:"supplier_id" json:"supplier_id" validate:"gt=0"`
}

// Shipment records received stock for a product.
type Shipment struct {
	ShipmentID   int64 `db:"shipment_id" json:"shipment_id" validate:"gt=0"`
	ProductID    int64 `db:"product_id" json:"product_id" validate:"gt=0"`
	Quantity     int64 `db:"quantity" json:"quantity" validate:"gt=0"`
	ShipmentDate Date  `db:"shipment_date" json:"shipment_date"`
}
