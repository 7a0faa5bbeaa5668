package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/shopledger/pkg/types"
)

// InsertOrderItem records an order line and decrements the product's stock
// by its quantity. Both happen or neither does. When stock is short nothing
// changes and the error is an InsufficientStockError.
func (b *Backend) InsertOrderItem(ctx context.Context, item types.OrderItem) (*types.OrderItem, error) {
	release, err := b.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	return b.insertOrderItem(ctx, item)
}

// insertOrderItem is the inventory guard. The product's row lock is held
// from before the transaction begins until after it ends, so concurrent
// guards on one product never interleave their read and decrement. The
// decrement is still conditional on stock, which covers writers in other
// processes.
func (b *Backend) insertOrderItem(ctx context.Context, item types.OrderItem) (*types.OrderItem, error) {
	if err := types.ValidateEntity(types.OrderItemsTable, &item); err != nil {
		return nil, err
	}

	unlock := b.locks.lock(rowKey(types.ProductsTable, item.ProductID))
	defer unlock()

	items := b.tables[types.OrderItemsTable]
	op := fmt.Sprintf("inserting order item %d", item.OrderItemID)
	err := b.withTx(ctx, op, func(tx *sqlx.Tx) error {
		var stock int64
		query := "SELECT stock FROM products WHERE product_id = ?" + b.dialect.lockRow()
		if err := tx.GetContext(ctx, &stock, tx.Rebind(query), item.ProductID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return &types.NotFoundError{Table: types.ProductsTable, ID: item.ProductID}
			}
			return fmt.Errorf("reading stock of product %d: %w", item.ProductID, err)
		}
		if stock < item.Quantity {
			return &types.InsufficientStockError{ProductID: item.ProductID, Available: stock, Requested: item.Quantity}
		}

		vals := items.fieldMap(&item)
		exists, err := b.rowExists(ctx, tx, types.OrderItemsTable, item.OrderItemID)
		if err != nil {
			return err
		}
		if exists {
			return &types.ConstraintViolationError{
				Table: types.OrderItemsTable, Field: "order_item_id", Rule: types.RuleUnique, ID: item.OrderItemID,
			}
		}
		if err := items.checkRefs(ctx, tx, vals, item.OrderItemID); err != nil {
			return err
		}

		r, err := tx.ExecContext(ctx,
			tx.Rebind("UPDATE products SET stock = stock - ? WHERE product_id = ? AND stock >= ?"),
			item.Quantity, item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("decrementing stock of product %d: %w", item.ProductID, err)
		}
		n, err := r.RowsAffected()
		if err != nil {
			return fmt.Errorf("decrementing stock of product %d: %w", item.ProductID, err)
		}
		if n != 1 {
			return &types.InsufficientStockError{ProductID: item.ProductID, Available: stock, Requested: item.Quantity}
		}

		_, err = items.insert(ctx, tx, vals, false)
		return err
	})
	if err != nil {
		if types.IsInsufficientStock(err) {
			b.log.Info("order item rejected",
				zap.Int64("product_id", item.ProductID),
				zap.Int64("requested", item.Quantity),
				zap.Error(err))
		}
		return nil, err
	}

	b.log.Debug("order item inserted",
		zap.Int64("order_item_id", item.OrderItemID),
		zap.Int64("product_id", item.ProductID),
		zap.Int64("quantity", item.Quantity))
	return &item, nil
}
