package types

// Standard table names for Ledger.GetTable.
const (
	StoresTable        = "stores"
	EmployeesTable     = "employees"
	CustomersTable     = "customers"
	SuppliersTable     = "suppliers"
	ProductsTable      = "products"
	OrdersTable        = "orders"
	OrderItemsTable    = "order_items"
	PaymentsTable      = "payments"
	ShipmentsTable     = "shipments"
	EmployeeAuditTable = "employee_audit"
)

// StandardTableNames lists all standard table names in dependency order:
// a table appears after every table it references, except for the
// stores/employees manager cycle.
var StandardTableNames = []string{
	StoresTable,
	EmployeesTable,
	CustomersTable,
	SuppliersTable,
	ProductsTable,
	OrdersTable,
	OrderItemsTable,
	PaymentsTable,
	ShipmentsTable,
	EmployeeAuditTable,
}

// NewEntity returns a pointer to a zero entity for the named table, or nil
// when the name is not a standard table.
func NewEntity(table string) any {
	switch table {
	case StoresTable:
		return &Store{}
	case EmployeesTable:
		return &Employee{}
	case CustomersTable:
		return &Customer{}
	case SuppliersTable:
		return &Supplier{}
	case ProductsTable:
		return &Product{}
	case OrdersTable:
		return &Order{}
	case OrderItemsTable:
		return &OrderItem{}
	case PaymentsTable:
		return &Payment{}
	case ShipmentsTable:
		return &Shipment{}
	case EmployeeAuditTable:
		return &EmployeeAudit{}
	default:
		return nil
	}
}
