package types

// OnDelete is the policy applied to a dependent row when the row it
// references is deleted.
type OnDelete int

// Relationship policies.
const (
	// Restrict fails the delete while dependents exist.
	Restrict OnDelete = iota
	// Cascade deletes the dependents, applying their own policies.
	Cascade
	// SetNull clears the dependent's reference column.
	SetNull
)

func (p OnDelete) String() string {
	switch p {
	case Cascade:
		return "cascade"
	case SetNull:
		return "set-null"
	default:
		return "restrict"
	}
}

// Relation declares one foreign key: Child.Column references Parent's
// primary key.
type Relation struct {
	Child    string
	Column   string
	Parent   string
	OnDelete OnDelete
	// Optional marks a nullable reference. Required references must resolve
	// on every write.
	Optional bool
}

// Relations is the foreign-key policy of the retail schema. Every delete
// path walks this list; no table encodes its own cascade.
var Relations = []Relation{
	{Child: EmployeesTable, Column: "store_id", Parent: StoresTable, OnDelete: SetNull, Optional: true},
	{Child: EmployeesTable, Column: "manager_id", Parent: EmployeesTable, OnDelete: SetNull, Optional: true},
	{Child: StoresTable, Column: "manager_id", Parent: EmployeesTable, OnDelete: SetNull, Optional: true},
	{Child: ProductsTable, Column: "supplier_id", Parent: SuppliersTable, OnDelete: Cascade},
	{Child: OrdersTable, Column: "customer_id", Parent: CustomersTable, OnDelete: Cascade},
	{Child: OrdersTable, Column: "store_id", Parent: StoresTable, OnDelete: SetNull, Optional: true},
	{Child: OrderItemsTable, Column: "order_id", Parent: OrdersTable, OnDelete: Cascade},
	{Child: OrderItemsTable, Column: "product_id", Parent: ProductsTable, OnDelete: Cascade},
	{Child: PaymentsTable, Column: "order_id", Parent: OrdersTable, OnDelete: Cascade},
	{Child: ShipmentsTable, Column: "product_id", Parent: ProductsTable, OnDelete: Cascade},
}

// PrimaryKeys maps each standard table to its primary-key column.
var PrimaryKeys = map[string]string{
	StoresTable:        "store_id",
	EmployeesTable:     "employee_id",
	CustomersTable:     "customer_id",
	SuppliersTable:     "supplier_id",
	ProductsTable:      "product_id",
	OrdersTable:        "order_id",
	OrderItemsTable:    "order_item_id",
	PaymentsTable:      "payment_id",
	ShipmentsTable:     "shipment_id",
	EmployeeAuditTable: "audit_id",
}

// UniqueColumns lists the non-key columns that must be unique per table.
var UniqueColumns = map[string][]string{
	CustomersTable: {"email", "phone"},
	SuppliersTable: {"phone"},
}
