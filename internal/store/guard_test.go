package store

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/shopledger/pkg/types"
)

// setupStock creates one order and one product with the given stock.
func setupStock(t *testing.T, stock int64) *Backend {
	t.Helper()
	b := setupLedger(t)
	create(t, b, types.SuppliersTable, &types.Supplier{SupplierID: 1, Name: "Fresh Farms", ContactPerson: "Ramesh", Phone: "9876543210", City: "Chennai"})
	create(t, b, types.ProductsTable, &types.Product{ProductID: 1, Name: "Rice", Category: "Groceries", Price: dec("80.00"), Stock: stock, SupplierID: 1})
	create(t, b, types.CustomersTable, &types.Customer{CustomerID: 1, Name: "Anjali", Email: "anjali@example.com", Phone: "9012345678", City: "Chennai"})
	create(t, b, types.OrdersTable, &types.Order{OrderID: 1, CustomerID: 1, OrderDate: date(t, "2024-01-01"), TotalAmount: dec("0")})
	return b
}

func TestInsertOrderItemRejectsShortStock(t *testing.T) {
	b := setupStock(t, 10)
	ctx := context.Background()

	_, err := b.InsertOrderItem(ctx, types.OrderItem{OrderItemID: 1, OrderID: 1, ProductID: 1, Quantity: 12, Price: dec("80.00")})
	var ise *types.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, int64(1), ise.ProductID)
	assert.Equal(t, int64(10), ise.Available)
	assert.Equal(t, int64(12), ise.Requested)
	assert.Equal(t, int64(10), stockOf(t, b, 1))
	assert.False(t, exists(t, b, types.OrderItemsTable, 1))

	item, err := b.InsertOrderItem(ctx, types.OrderItem{OrderItemID: 2, OrderID: 1, ProductID: 1, Quantity: 4, Price: dec("80.00")})
	require.NoError(t, err)
	assert.Equal(t, int64(4), item.Quantity)
	assert.Equal(t, int64(6), stockOf(t, b, 1))
	assert.True(t, exists(t, b, types.OrderItemsTable, 2))
}

func TestInsertOrderItemExactStock(t *testing.T) {
	b := setupStock(t, 5)
	_, err := b.InsertOrderItem(context.Background(), types.OrderItem{OrderItemID: 1, OrderID: 1, ProductID: 1, Quantity: 5, Price: dec("80.00")})
	require.NoError(t, err)
	assert.Equal(t, int64(0), stockOf(t, b, 1))
}

func TestInsertOrderItemFailuresLeaveStock(t *testing.T) {
	tests := []struct {
		name  string
		item  types.OrderItem
		check func(t *testing.T, err error)
	}{
		{
			name:  "missing product",
			item:  types.OrderItem{OrderItemID: 5, OrderID: 1, ProductID: 9, Quantity: 1, Price: dec("1.00")},
			check: func(t *testing.T, err error) { assert.True(t, types.IsNotFound(err)) },
		},
		{
			name: "missing order",
			item: types.OrderItem{OrderItemID: 5, OrderID: 9, ProductID: 1, Quantity: 1, Price: dec("1.00")},
			check: func(t *testing.T, err error) {
				var nf *types.NotFoundError
				require.ErrorAs(t, err, &nf)
				assert.Equal(t, types.OrdersTable, nf.Table)
			},
		},
		{
			name: "duplicate item id",
			item: types.OrderItem{OrderItemID: 1, OrderID: 1, ProductID: 1, Quantity: 1, Price: dec("1.00")},
			check: func(t *testing.T, err error) {
				var cv *types.ConstraintViolationError
				require.ErrorAs(t, err, &cv)
				assert.Equal(t, types.RuleUnique, cv.Rule)
			},
		},
		{
			name: "zero quantity",
			item: types.OrderItem{OrderItemID: 5, OrderID: 1, ProductID: 1, Quantity: 0, Price: dec("1.00")},
			check: func(t *testing.T, err error) {
				var cv *types.ConstraintViolationError
				require.ErrorAs(t, err, &cv)
				assert.Equal(t, "quantity", cv.Field)
			},
		},
		{
			name: "negative price",
			item: types.OrderItem{OrderItemID: 5, OrderID: 1, ProductID: 1, Quantity: 1, Price: dec("-1.00")},
			check: func(t *testing.T, err error) {
				var cv *types.ConstraintViolationError
				require.ErrorAs(t, err, &cv)
				assert.Equal(t, "price", cv.Field)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := setupStock(t, 10)
			_, err := b.InsertOrderItem(context.Background(), types.OrderItem{OrderItemID: 1, OrderID: 1, ProductID: 1, Quantity: 3, Price: dec("80.00")})
			require.NoError(t, err)

			_, err = b.InsertOrderItem(context.Background(), tt.item)
			require.Error(t, err)
			tt.check(t, err)
			assert.Equal(t, int64(7), stockOf(t, b, 1))
			assert.Equal(t, 1, count(t, b, types.OrderItemsTable))
		})
	}
}

func TestTableCreateRunsGuard(t *testing.T) {
	b := setupStock(t, 3)
	items, err := b.GetTable(types.OrderItemsTable)
	require.NoError(t, err)
	ctx := context.Background()

	item := &types.OrderItem{OrderItemID: 1, OrderID: 1, ProductID: 1, Quantity: 2, Price: dec("80.00")}
	require.NoError(t, items.Create(ctx, item))
	assert.Equal(t, int64(1), stockOf(t, b, 1))

	err = items.Create(ctx, &types.OrderItem{OrderItemID: 2, OrderID: 1, ProductID: 1, Quantity: 2, Price: dec("80.00")})
	assert.True(t, types.IsInsufficientStock(err))
	assert.Equal(t, int64(1), stockOf(t, b, 1))
}

func TestInsertOrderItemConcurrent(t *testing.T) {
	const stock, buyers = 10, 20
	b := setupStock(t, stock)

	var placed, rejected atomic.Int64
	var g errgroup.Group
	for i := range buyers {
		g.Go(func() error {
			_, err := b.InsertOrderItem(context.Background(), types.OrderItem{
				OrderItemID: int64(i + 1), OrderID: 1, ProductID: 1, Quantity: 1, Price: dec("80.00"),
			})
			switch {
			case err == nil:
				placed.Add(1)
			case types.IsInsufficientStock(err):
				rejected.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(stock), placed.Load())
	assert.Equal(t, int64(buyers-stock), rejected.Load())
	assert.Equal(t, int64(0), stockOf(t, b, 1))
	assert.Equal(t, stock, count(t, b, types.OrderItemsTable))
	assert.Equal(t, 0, b.locks.held())
}
