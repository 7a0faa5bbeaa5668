package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shopledger/pkg/types"
)

// fixedNow is the clock used by every test ledger.
var fixedNow = time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC)

// setupLedger attaches an empty SQLite ledger in a temp directory.
func setupLedger(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend(WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, b.Attach(context.Background(), types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}))
	t.Cleanup(func() { b.Detach() })
	return b
}

func ptr[T any](v T) *T { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(t *testing.T, s string) types.Date {
	t.Helper()
	d, err := types.ParseDate(s)
	require.NoError(t, err)
	return d
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func create(t *testing.T, b *Backend, table string, entity any) {
	t.Helper()
	tbl, err := b.GetTable(table)
	require.NoError(t, err)
	require.NoError(t, tbl.Create(context.Background(), entity), "creating %s", table)
}

func get(t *testing.T, b *Backend, table string, id int64) any {
	t.Helper()
	tbl, err := b.GetTable(table)
	require.NoError(t, err)
	entity, err := tbl.Get(context.Background(), id)
	require.NoError(t, err)
	return entity
}

func exists(t *testing.T, b *Backend, table string, id int64) bool {
	t.Helper()
	tbl, err := b.GetTable(table)
	require.NoError(t, err)
	_, err = tbl.Get(context.Background(), id)
	if types.IsNotFound(err) {
		return false
	}
	require.NoError(t, err)
	return true
}

func count(t *testing.T, b *Backend, table string) int {
	t.Helper()
	tbl, err := b.GetTable(table)
	require.NoError(t, err)
	rows, err := tbl.Fetch(context.Background(), nil)
	require.NoError(t, err)
	return len(rows)
}

func stockOf(t *testing.T, b *Backend, productID int64) int64 {
	t.Helper()
	return get(t, b, types.ProductsTable, productID).(*types.Product).Stock
}

// createFixture builds a small retail graph:
//
//	stores 1 (managed by employee 1) and 2
//	employees 1 <- 2 <- 3 (manager chain)
//	suppliers 1, 2; products 1 (supplier 1, stock 10), 2 (supplier 2, stock 20)
//	customers 1, 2; order 1 (customer 1, store 1, 2024-03-05), order 2 (customer 2, store 2, 2024-04-10)
//	items 1 and 2 on order 1, item 3 on order 2; one payment per order
func createFixture(t *testing.T, b *Backend) {
	t.Helper()
	ctx := context.Background()

	create(t, b, types.StoresTable, &types.Store{StoreID: 1, Name: "North", Location: "Chennai"})
	create(t, b, types.StoresTable, &types.Store{StoreID: 2, Name: "South", Location: "Madurai"})

	hire := date(t, "2015-01-01")
	create(t, b, types.EmployeesTable, &types.Employee{
		EmployeeID: 1, Name: "Asha", Role: "Manager", StoreID: ptr(int64(1)), Salary: dec("1000.00"), HireDate: &hire,
	})
	recent := date(t, "2022-06-01")
	create(t, b, types.EmployeesTable, &types.Employee{
		EmployeeID: 2, Name: "Bala", Role: "Supervisor", StoreID: ptr(int64(1)), Salary: dec("800.00"), ManagerID: ptr(int64(1)), HireDate: &recent,
	})
	create(t, b, types.EmployeesTable, &types.Employee{
		EmployeeID: 3, Name: "Chitra", Role: "Cashier", StoreID: ptr(int64(2)), Salary: dec("500.00"), ManagerID: ptr(int64(2)),
	})

	stores, err := b.GetTable(types.StoresTable)
	require.NoError(t, err)
	_, err = stores.Update(ctx, 1, map[string]any{"manager_id": 1})
	require.NoError(t, err)

	create(t, b, types.SuppliersTable, &types.Supplier{SupplierID: 1, Name: "Fresh Farms", ContactPerson: "Ramesh", Phone: "9876543210", City: "Chennai"})
	create(t, b, types.SuppliersTable, &types.Supplier{SupplierID: 2, Name: "Tech Gadgets", ContactPerson: "Sneha", Phone: "8765432109", City: "Mumbai"})

	create(t, b, types.ProductsTable, &types.Product{ProductID: 1, Name: "Rice", Category: "Groceries", Price: dec("5.00"), Stock: 10, SupplierID: 1})
	create(t, b, types.ProductsTable, &types.Product{ProductID: 2, Name: "Earbuds", Category: "Electronics", Price: dec("7.50"), Stock: 20, SupplierID: 2})

	create(t, b, types.CustomersTable, &types.Customer{CustomerID: 1, Name: "Anjali", Email: "anjali@example.com", Phone: "9012345678", City: "Chennai"})
	create(t, b, types.CustomersTable, &types.Customer{CustomerID: 2, Name: "Vikram", Email: "vikram@example.com", Phone: "9023456789", City: "Mumbai"})

	create(t, b, types.OrdersTable, &types.Order{OrderID: 1, CustomerID: 1, StoreID: ptr(int64(1)), OrderDate: date(t, "2024-03-05"), TotalAmount: dec("25.00")})
	create(t, b, types.OrdersTable, &types.Order{OrderID: 2, CustomerID: 2, StoreID: ptr(int64(2)), OrderDate: date(t, "2024-04-10"), TotalAmount: dec("15.00")})

	for _, item := range []types.OrderItem{
		{OrderItemID: 1, OrderID: 1, ProductID: 1, Quantity: 2, Price: dec("5.00")},
		{OrderItemID: 2, OrderID: 1, ProductID: 2, Quantity: 1, Price: dec("7.50")},
		{OrderItemID: 3, OrderID: 2, ProductID: 2, Quantity: 2, Price: dec("7.50")},
	} {
		_, err := b.InsertOrderItem(ctx, item)
		require.NoError(t, err)
	}

	create(t, b, types.PaymentsTable, &types.Payment{PaymentID: 1, OrderID: 1, Amount: dec("25.00"), PaymentMethod: "Card", PaymentDate: date(t, "2024-03-05")})
	create(t, b, types.PaymentsTable, &types.Payment{PaymentID: 2, OrderID: 2, Amount: dec("15.00"), PaymentMethod: "UPI", PaymentDate: date(t, "2024-04-10")})
}
