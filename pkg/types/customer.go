package types

// Customer places orders. Email and phone are unique across customers.
type Customer struct {
	CustomerID int64  `db:"customer_id" json:"customer_id" validate:"gt=0"`
	Name       string `db:"name" json:"name" validate:"required,max=255"`
	Email      string `db:"email" json:"email" validate:"required,email,max=255"`
	Phone      string `db:"phone" json:"phone" validate:"required,max=20"`
	City       string `db:"city" json:"city" validate:"required,max=255"`
}

// Supplier provides products. Phone is unique across suppliers.
type Supplier struct {
	SupplierID    int64  `db:"supplier_id" json:"supplier_id" validate:"gt=0"`
	Name          string `db:"name" json:"name" validate:"required,max=255"`
	ContactPerson string `db:"contact_person" json:"contact_person" validate:"required,max=255"`
	Phone         string `db:"phone" json:"phone" validate:"required,max=20"`
	City          string `db:"city" json:"city" validate:"required,max=255"`
}
