package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/shopledger/pkg/types"
)

// CustomerOrders lists one customer's orders oldest first.
func (b *Backend) CustomerOrders(ctx context.Context, customerID int64) ([]types.Order, error) {
	release, err := b.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	exists, err := b.rowExists(ctx, b.db, types.CustomersTable, customerID)
	if err != nil {
		return nil, b.classifyErr("reading customer orders", err)
	}
	if !exists {
		return nil, &types.NotFoundError{Table: types.CustomersTable, ID: customerID}
	}

	orders := []types.Order{}
	query := b.tables[types.OrdersTable].selectSQL() + " WHERE customer_id = ? ORDER BY order_date, order_id"
	if err := b.db.SelectContext(ctx, &orders, b.rebind(query), customerID); err != nil {
		return nil, b.classifyErr("reading customer orders", err)
	}
	return orders, nil
}

// CustomerSpending totals order amounts per customer, highest spender
// first. Customers without orders report zero.
func (b *Backend) CustomerSpending(ctx context.Context) ([]types.CustomerSpending, error) {
	release, err := b.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	const query = `
SELECT c.customer_id, c.name, COALESCE(SUM(o.total_amount), 0) AS total_spent
FROM customers c
LEFT JOIN orders o ON o.customer_id = c.customer_id
GROUP BY c.customer_id, c.name
ORDER BY total_spent DESC, c.customer_id`

	rows := []types.CustomerSpending{}
	if err := b.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, b.classifyErr("reading customer spending", err)
	}
	for i := range rows {
		rows[i].TotalSpent = rows[i].TotalSpent.Round(2)
	}
	return rows, nil
}

// MonthlySales pivots order totals for year into one row per store with a
// value per month. Every store appears.
func (b *Backend) MonthlySales(ctx context.Context, year int) ([]types.MonthlySales, error) {
	release, err := b.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	var stores []types.Store
	if err := b.db.SelectContext(ctx, &stores, "SELECT store_id, name, location, manager_id FROM stores ORDER BY store_id"); err != nil {
		return nil, b.classifyErr("reading monthly sales", err)
	}

	query := fmt.Sprintf(`
SELECT store_id, %s AS month, SUM(total_amount) AS total
FROM orders
WHERE store_id IS NOT NULL AND %s = ?
GROUP BY store_id, %s`,
		b.dialect.monthOf("order_date"), b.dialect.yearOf("order_date"), b.dialect.monthOf("order_date"))

	var cells []struct {
		StoreID int64           `db:"store_id"`
		Month   int             `db:"month"`
		Total   decimal.Decimal `db:"total"`
	}
	if err := b.db.SelectContext(ctx, &cells, b.rebind(query), year); err != nil {
		return nil, b.classifyErr("reading monthly sales", err)
	}

	out := make([]types.MonthlySales, len(stores))
	index := make(map[int64]int, len(stores))
	for i, s := range stores {
		out[i] = types.MonthlySales{StoreID: s.StoreID, Name: s.Name, Year: year}
		for m := range out[i].Months {
			out[i].Months[m] = decimal.Zero
		}
		index[s.StoreID] = i
	}
	for _, c := range cells {
		i, ok := index[c.StoreID]
		if !ok || c.Month < 1 || c.Month > 12 {
			continue
		}
		out[i].Months[c.Month-1] = c.Total.Round(2)
	}
	return out, nil
}

// SalesReport totals item-level sales (price times quantity) per store for
// one month. Stores with no sales that month are omitted.
func (b *Backend) SalesReport(ctx context.Context, year, month int) ([]types.StoreSales, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month %d out of range", types.ErrInvalidFilter, month)
	}
	release, err := b.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	query := fmt.Sprintf(`
SELECT s.store_id, s.name, SUM(oi.price * oi.quantity) AS total_sales
FROM stores s
JOIN orders o ON o.store_id = s.store_id
JOIN order_items oi ON oi.order_id = o.order_id
WHERE %s = ? AND %s = ?
GROUP BY s.store_id, s.name
ORDER BY total_sales DESC, s.store_id`,
		b.dialect.yearOf("o.order_date"), b.dialect.monthOf("o.order_date"))

	rows := []types.StoreSales{}
	if err := b.db.SelectContext(ctx, &rows, b.rebind(query), year, month); err != nil {
		return nil, b.classifyErr("reading sales report", err)
	}
	for i := range rows {
		rows[i].Year = year
		rows[i].Month = month
		rows[i].TotalSales = rows[i].TotalSales.Round(2)
	}
	return rows, nil
}
