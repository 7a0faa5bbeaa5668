package types

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Ledger defines backend-agnostic access to the retail schema.
// Callers attach to a backend, access tables by name, and detach when done.
type Ledger interface {
	// Attach opens the backend described by config and applies the schema.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(ctx context.Context, config Config) error

	// Detach releases backend resources. Idempotent.
	Detach() error

	// GetTable returns the Table for the given name.
	// Returns ErrTableNotFound if the name is not a standard table.
	GetTable(name string) (Table, error)

	// InsertOrderItem creates an order item under the inventory guard: the
	// product's stock is checked and decremented by quantity in the same
	// unit of work. Fails with InsufficientStockError when stock is short.
	InsertOrderItem(ctx context.Context, item OrderItem) (*OrderItem, error)

	// DeleteEmployee snapshots the employee into the audit log and deletes
	// it in one unit of work. Returns the audit record written.
	DeleteEmployee(ctx context.Context, employeeID int64) (*EmployeeAudit, error)

	// TopSellingProducts returns products with at least one order item,
	// descending by total quantity sold.
	TopSellingProducts(ctx context.Context) ([]TopSellingProduct, error)

	// StoreRevenue returns every store with the sum of its order totals.
	StoreRevenue(ctx context.Context) ([]StoreRevenue, error)

	// EmployeeHierarchy walks the manager forest from its roots, ordered by
	// depth then employee id.
	EmployeeHierarchy(ctx context.Context) ([]HierarchyNode, error)
}

// Operations carries the maintenance and reporting operations that sit
// alongside the core ledger contract.
type Operations interface {
	Ledger

	ReceiveShipments(ctx context.Context, shipments []Shipment) error
	AddProductStock(ctx context.Context, productID int64, quantity int64) (*Product, error)
	AdjustCategoryPrices(ctx context.Context, category string, percent decimal.Decimal) (int64, error)
	RaiseSalaries(ctx context.Context, minTenureYears int, percent decimal.Decimal, asOf time.Time) (int64, error)
	DeleteCustomerIfNoOrders(ctx context.Context, customerID int64) error
	PurgeInactiveCustomers(ctx context.Context, since time.Time) ([]int64, error)
	ClearEmployeeAudit(ctx context.Context) (int64, error)

	CustomerOrders(ctx context.Context, customerID int64) ([]Order, error)
	CustomerSpending(ctx context.Context) ([]CustomerSpending, error)
	MonthlySales(ctx context.Context, year int) ([]MonthlySales, error)
	SalesReport(ctx context.Context, year, month int) ([]StoreSales, error)
}

// Ledger lifecycle errors.
var (
	ErrLedgerDetached  = errors.New("ledger is detached")
	ErrAlreadyAttached = errors.New("ledger is already attached")
	ErrTableNotFound   = errors.New("table not found")
)
