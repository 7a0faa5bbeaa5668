package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/shopledger/pkg/types"
)

var hundred = decimal.NewFromInt(100)

// ReceiveShipments records each shipment and adds its quantity to the
// product's stock. The batch commits as a whole.
func (b *Backend) ReceiveShipments(ctx context.Context, shipments []types.Shipment) error {
	if len(shipments) == 0 {
		return nil
	}
	release, err := b.acquire()
	if err != nil {
		return err
	}
	defer release()

	keys := make([]string, 0, len(shipments))
	for i := range shipments {
		b.applyDefaults(&shipments[i])
		if err := types.ValidateEntity(types.ShipmentsTable, &shipments[i]); err != nil {
			return err
		}
		keys = append(keys, rowKey(types.ProductsTable, shipments[i].ProductID))
	}
	unlock := b.locks.lockAll(keys)
	defer unlock()

	table := b.tables[types.ShipmentsTable]
	err = b.withTx(ctx, "receiving shipments", func(tx *sqlx.Tx) error {
		for i := range shipments {
			s := &shipments[i]
			if err := table.insertChecked(ctx, tx, s); err != nil {
				return err
			}
			if err := addStock(ctx, tx, s.ProductID, s.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	b.log.Info("shipments received", zap.Int("count", len(shipments)))
	return nil
}

// AddProductStock increases a product's stock by quantity and returns the
// updated product.
func (b *Backend) AddProductStock(ctx context.Context, productID, quantity int64) (*types.Product, error) {
	if quantity <= 0 {
		return nil, &types.ConstraintViolationError{Table: types.ProductsTable, Field: "quantity", Rule: types.RulePositive, ID: productID}
	}
	release, err := b.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	unlock := b.locks.lock(rowKey(types.ProductsTable, productID))
	defer unlock()

	var product *types.Product
	op := fmt.Sprintf("adding stock to product %d", productID)
	err = b.withTx(ctx, op, func(tx *sqlx.Tx) error {
		if err := addStock(ctx, tx, productID, quantity); err != nil {
			return err
		}
		p, err := b.tables[types.ProductsTable].get(ctx, tx, productID, false)
		if err != nil {
			return err
		}
		product = p.(*types.Product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func addStock(ctx context.Context, tx *sqlx.Tx, productID, quantity int64) error {
	r, err := tx.ExecContext(ctx, tx.Rebind("UPDATE products SET stock = stock + ? WHERE product_id = ?"), quantity, productID)
	if err != nil {
		return fmt.Errorf("adding stock to product %d: %w", productID, err)
	}
	n, err := r.RowsAffected()
	if err != nil {
		return fmt.Errorf("adding stock to product %d: %w", productID, err)
	}
	if n == 0 {
		return &types.NotFoundError{Table: types.ProductsTable, ID: productID}
	}
	return nil
}

// scale multiplies v by (1 + percent/100) and rounds to cents.
func scale(v, percent decimal.Decimal) decimal.Decimal {
	return v.Mul(decimal.NewFromInt(1).Add(percent.Div(hundred))).Round(2)
}

type pricedRow struct {
	ID    int64           `db:"id"`
	Value decimal.Decimal `db:"value"`
}

// AdjustCategoryPrices scales the price of every product in category by
// percent, which may be negative. It returns the number of products
// changed.
func (b *Backend) AdjustCategoryPrices(ctx context.Context, category string, percent decimal.Decimal) (int64, error) {
	release, err := b.acquire()
	if err != nil {
		return 0, err
	}
	defer release()

	var n int64
	err = b.withTx(ctx, "adjusting prices in "+category, func(tx *sqlx.Tx) error {
		var rows []pricedRow
		query := "SELECT product_id AS id, price AS value FROM products WHERE category = ? ORDER BY product_id"
		if err := tx.SelectContext(ctx, &rows, tx.Rebind(query), category); err != nil {
			return fmt.Errorf("reading prices: %w", err)
		}
		var err error
		n, err = b.rescale(ctx, tx, types.ProductsTable, "price", rows, percent)
		return err
	})
	if err != nil {
		return 0, err
	}
	b.log.Info("prices adjusted",
		zap.String("category", category),
		zap.String("percent", percent.String()),
		zap.Int64("products", n))
	return n, nil
}

// RaiseSalaries scales the salary of every employee hired more than
// minTenureYears before asOf. Employees without a hire date are skipped.
func (b *Backend) RaiseSalaries(ctx context.Context, minTenureYears int, percent decimal.Decimal, asOf time.Time) (int64, error) {
	if minTenureYears < 0 {
		return 0, &types.ConstraintViolationError{Table: types.EmployeesTable, Field: "hire_date", Rule: types.RuleNonNeg}
	}
	release, err := b.acquire()
	if err != nil {
		return 0, err
	}
	defer release()

	cutoff := types.NewDate(asOf.AddDate(-minTenureYears, 0, 0))
	var n int64
	err = b.withTx(ctx, "raising salaries", func(tx *sqlx.Tx) error {
		var rows []pricedRow
		query := "SELECT employee_id AS id, salary AS value FROM employees WHERE hire_date IS NOT NULL AND hire_date < ? ORDER BY employee_id"
		if err := tx.SelectContext(ctx, &rows, tx.Rebind(query), cutoff); err != nil {
			return fmt.Errorf("reading salaries: %w", err)
		}
		var err error
		n, err = b.rescale(ctx, tx, types.EmployeesTable, "salary", rows, percent)
		return err
	})
	if err != nil {
		return 0, err
	}
	b.log.Info("salaries raised",
		zap.Int("min_tenure_years", minTenureYears),
		zap.String("percent", percent.String()),
		zap.Int64("employees", n))
	return n, nil
}

// rescale writes scale(value, percent) into column for each row. A result
// below zero is a constraint violation.
func (b *Backend) rescale(ctx context.Context, tx *sqlx.Tx, table, column string, rows []pricedRow, percent decimal.Decimal) (int64, error) {
	query := tx.Rebind(fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s = ?", table, column, types.PrimaryKeys[table]))
	for _, r := range rows {
		v := scale(r.Value, percent)
		if v.IsNegative() {
			return 0, &types.ConstraintViolationError{Table: table, Field: column, Rule: types.RuleNonNeg, ID: r.ID}
		}
		if _, err := tx.ExecContext(ctx, query, v, r.ID); err != nil {
			return 0, fmt.Errorf("updating %s %d: %w", table, r.ID, err)
		}
	}
	return int64(len(rows)), nil
}

// DeleteCustomerIfNoOrders deletes a customer only when no order references
// it.
func (b *Backend) DeleteCustomerIfNoOrders(ctx context.Context, customerID int64) error {
	release, err := b.acquire()
	if err != nil {
		return err
	}
	defer release()

	op := fmt.Sprintf("deleting customer %d", customerID)
	return b.withTx(ctx, op, func(tx *sqlx.Tx) error {
		exists, err := b.rowExists(ctx, tx, types.CustomersTable, customerID)
		if err != nil {
			return err
		}
		if !exists {
			return &types.NotFoundError{Table: types.CustomersTable, ID: customerID}
		}
		var orders int64
		if err := tx.GetContext(ctx, &orders, tx.Rebind("SELECT COUNT(*) FROM orders WHERE customer_id = ?"), customerID); err != nil {
			return fmt.Errorf("counting orders: %w", err)
		}
		if orders > 0 {
			return &types.ConstraintViolationError{Table: types.CustomersTable, Field: "orders", Rule: types.RuleHasOrders, ID: customerID}
		}
		return b.deleteRows(ctx, tx, types.CustomersTable, []int64{customerID}, newDeleteResult())
	})
}

// PurgeInactiveCustomers deletes every customer with no order on or after
// since, cascading as any customer delete does. It returns the ids deleted.
func (b *Backend) PurgeInactiveCustomers(ctx context.Context, since time.Time) ([]int64, error) {
	release, err := b.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	const query = `
SELECT c.customer_id
FROM customers c
WHERE NOT EXISTS (
    SELECT 1 FROM orders o
    WHERE o.customer_id = c.customer_id AND o.order_date >= ?
)
ORDER BY c.customer_id`

	ids := []int64{}
	res := newDeleteResult()
	err = b.withTx(ctx, "purging inactive customers", func(tx *sqlx.Tx) error {
		if err := tx.SelectContext(ctx, &ids, tx.Rebind(query), types.NewDate(since)); err != nil {
			return fmt.Errorf("selecting inactive customers: %w", err)
		}
		return b.deleteRows(ctx, tx, types.CustomersTable, ids, res)
	})
	if err != nil {
		return nil, err
	}
	b.log.Info("inactive customers purged", append([]zap.Field{zap.Int("customers", len(ids))}, res.fields()...)...)
	return ids, nil
}
