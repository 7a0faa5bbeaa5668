package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shopledger/pkg/types"
)

func TestAddProductStock(t *testing.T) {
	b := setupLedger(t)
	createFixture(t, b)
	ctx := context.Background()

	p, err := b.AddProductStock(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(13), p.Stock)
	assert.Equal(t, int64(13), stockOf(t, b, 1))

	_, err = b.AddProductStock(ctx, 1, 0)
	assert.True(t, types.IsConstraintViolation(err))
	_, err = b.AddProductStock(ctx, 99, 1)
	assert.True(t, types.IsNotFound(err))
}

func TestReceiveShipments(t *testing.T) {
	b := setupLedger(t)
	createFixture(t, b)
	ctx := context.Background()

	require.NoError(t, b.ReceiveShipments(ctx, []types.Shipment{
		{ShipmentID: 1, ProductID: 1, Quantity: 10, ShipmentDate: date(t, "2024-05-01")},
		{ShipmentID: 2, ProductID: 2, Quantity: 3},
		{ShipmentID: 3, ProductID: 1, Quantity: 2},
	}))
	assert.Equal(t, int64(20), stockOf(t, b, 1))
	assert.Equal(t, int64(20), stockOf(t, b, 2))
	s := get(t, b, types.ShipmentsTable, 2).(*types.Shipment)
	assert.Equal(t, "2025-06-15", s.ShipmentDate.String())

	err := b.ReceiveShipments(ctx, []types.Shipment{
		{ShipmentID: 4, ProductID: 1, Quantity: 1},
		{ShipmentID: 5, ProductID: 99, Quantity: 1},
	})
	assert.True(t, types.IsNotFound(err))
	assert.Equal(t, int64(20), stockOf(t, b, 1))
	assert.False(t, exists(t, b, types.ShipmentsTable, 4))
}

func TestAdjustCategoryPrices(t *testing.T) {
	b := setupLedger(t)
	createFixture(t, b)
	ctx := context.Background()

	n, err := b.AdjustCategoryPrices(ctx, "Groceries", dec("10"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assertDecimal(t, "5.50", get(t, b, types.ProductsTable, 1).(*types.Product).Price)
	assertDecimal(t, "7.50", get(t, b, types.ProductsTable, 2).(*types.Product).Price)

	_, err = b.AdjustCategoryPrices(ctx, "Groceries", dec("-150"))
	assert.True(t, types.IsConstraintViolation(err))
	assertDecimal(t, "5.50", get(t, b, types.ProductsTable, 1).(*types.Product).Price)

	n, err = b.AdjustCategoryPrices(ctx, "Toys", dec("10"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRaiseSalaries(t *testing.T) {
	b := setupLedger(t)
	createFixture(t, b)
	asOf := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	n, err := b.RaiseSalaries(context.Background(), 5, dec("10"), asOf)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assertDecimal(t, "1100.00", get(t, b, types.EmployeesTable, 1).(*types.Employee).Salary)
	assertDecimal(t, "800.00", get(t, b, types.EmployeesTable, 2).(*types.Employee).Salary)
	assertDecimal(t, "500.00", get(t, b, types.EmployeesTable, 3).(*types.Employee).Salary)
}

func TestDeleteCustomerIfNoOrders(t *testing.T) {
	b := setupLedger(t)
	createFixture(t, b)
	create(t, b, types.CustomersTable, &types.Customer{CustomerID: 3, Name: "Sita", Email: "sita@example.com", Phone: "9034567890", City: "Delhi"})
	ctx := context.Background()

	err := b.DeleteCustomerIfNoOrders(ctx, 1)
	var cv *types.ConstraintViolationError
	require.ErrorAs(t, err, &cv)
	assert.Equal(t, types.RuleHasOrders, cv.Rule)
	assert.True(t, exists(t, b, types.CustomersTable, 1))
	assert.True(t, exists(t, b, types.OrdersTable, 1))

	require.NoError(t, b.DeleteCustomerIfNoOrders(ctx, 3))
	assert.False(t, exists(t, b, types.CustomersTable, 3))

	assert.True(t, types.IsNotFound(b.DeleteCustomerIfNoOrders(ctx, 3)))
}

func TestPurgeInactiveCustomers(t *testing.T) {
	b := setupLedger(t)
	createFixture(t, b)
	since := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)

	ids, err := b.PurgeInactiveCustomers(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)
	assert.False(t, exists(t, b, types.CustomersTable, 1))
	assert.False(t, exists(t, b, types.OrdersTable, 1))
	assert.False(t, exists(t, b, types.PaymentsTable, 1))
	assert.True(t, exists(t, b, types.CustomersTable, 2))
}

func TestClearEmployeeAudit(t *testing.T) {
	b := setupLedger(t)
	createFixture(t, b)
	ctx := context.Background()

	_, err := b.DeleteEmployee(ctx, 3)
	require.NoError(t, err)
	_, err = b.DeleteEmployee(ctx, 2)
	require.NoError(t, err)

	n, err := b.ClearEmployeeAudit(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 0, count(t, b, types.EmployeeAuditTable))
}
