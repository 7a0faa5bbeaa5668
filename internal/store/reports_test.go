package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shopledger/pkg/types"
)

func TestCustomerOrders(t *testing.T) {
	b := setupLedger(t)
	createFixture(t, b)
	create(t, b, types.OrdersTable, &types.Order{OrderID: 3, CustomerID: 1, OrderDate: date(t, "2023-12-31"), TotalAmount: dec("9.00")})
	ctx := context.Background()

	orders, err := b.CustomerOrders(ctx, 1)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, int64(3), orders[0].OrderID)
	assert.Equal(t, int64(1), orders[1].OrderID)

	_, err = b.CustomerOrders(ctx, 99)
	assert.True(t, types.IsNotFound(err))
}

func TestCustomerSpending(t *testing.T) {
	b := setupLedger(t)
	createFixture(t, b)
	create(t, b, types.CustomersTable, &types.Customer{CustomerID: 3, Name: "Sita", Email: "sita@example.com", Phone: "9034567890", City: "Delhi"})

	rows, err := b.CustomerSpending(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{rows[0].CustomerID, rows[1].CustomerID, rows[2].CustomerID})
	assertDecimal(t, "25.00", rows[0].TotalSpent)
	assertDecimal(t, "15.00", rows[1].TotalSpent)
	assertDecimal(t, "0", rows[2].TotalSpent)
}

func TestMonthlySales(t *testing.T) {
	b := setupLedger(t)
	createFixture(t, b)
	create(t, b, types.OrdersTable, &types.Order{OrderID: 3, CustomerID: 2, StoreID: ptr(int64(1)), OrderDate: date(t, "2024-03-20"), TotalAmount: dec("4.50")})
	create(t, b, types.OrdersTable, &types.Order{OrderID: 4, CustomerID: 2, StoreID: ptr(int64(1)), OrderDate: date(t, "2023-03-20"), TotalAmount: dec("100.00")})

	rows, err := b.MonthlySales(context.Background(), 2024)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	north := rows[0]
	assert.Equal(t, int64(1), north.StoreID)
	assert.Equal(t, 2024, north.Year)
	assertDecimal(t, "29.50", north.Months[2])
	assertDecimal(t, "29.50", north.Total())

	south := rows[1]
	assertDecimal(t, "15.00", south.Months[3])
	assertDecimal(t, "0", south.Months[0])
	assertDecimal(t, "15.00", south.Total())
}

func TestSalesReport(t *testing.T) {
	b := setupLedger(t)
	createFixture(t, b)
	ctx := context.Background()

	march, err := b.SalesReport(ctx, 2024, 3)
	require.NoError(t, err)
	require.Len(t, march, 1)
	assert.Equal(t, int64(1), march[0].StoreID)
	assert.Equal(t, 2024, march[0].Year)
	assert.Equal(t, 3, march[0].Month)
	assertDecimal(t, "17.50", march[0].TotalSales)

	april, err := b.SalesReport(ctx, 2024, 4)
	require.NoError(t, err)
	require.Len(t, april, 1)
	assertDecimal(t, "15.00", april[0].TotalSales)

	empty, err := b.SalesReport(ctx, 2020, 1)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = b.SalesReport(ctx, 2024, 13)
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
}
