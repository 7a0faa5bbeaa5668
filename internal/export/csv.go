// Package export writes ledger reports as CSV or JSONL.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/shopledger/pkg/types"
)

var monthHeaders = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// writeCSV emits header then one record per row.
func writeCSV(w io.Writer, header []string, n int, record func(i int) []string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return err
	}
	for i := range n {
		if err := writer.Write(record(i)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTopProductsCSV writes the top-selling products.
func WriteTopProductsCSV(w io.Writer, rows []types.TopSellingProduct) error {
	return writeCSV(w, []string{"Product ID", "Name", "Total Sold"}, len(rows), func(i int) []string {
		r := rows[i]
		return []string{formatID(r.ProductID), r.Name, formatID(r.TotalSold)}
	})
}

// WriteStoreRevenueCSV writes revenue per store.
func WriteStoreRevenueCSV(w io.Writer, rows []types.StoreRevenue) error {
	return writeCSV(w, []string{"Store ID", "Name", "Total Revenue"}, len(rows), func(i int) []string {
		r := rows[i]
		return []string{formatID(r.StoreID), r.Name, formatMoney(r.TotalRevenue)}
	})
}

// WriteHierarchyCSV writes the employee hierarchy. Roots have an empty
// manager column.
func WriteHierarchyCSV(w io.Writer, rows []types.HierarchyNode) error {
	return writeCSV(w, []string{"Employee ID", "Name", "Role", "Manager ID", "Depth"}, len(rows), func(i int) []string {
		r := rows[i]
		manager := ""
		if r.ManagerID != nil {
			manager = formatID(*r.ManagerID)
		}
		return []string{formatID(r.EmployeeID), r.Name, r.Role, manager, strconv.Itoa(r.Depth)}
	})
}

// WriteCustomerSpendingCSV writes lifetime spend per customer.
func WriteCustomerSpendingCSV(w io.Writer, rows []types.CustomerSpending) error {
	return writeCSV(w, []string{"Customer ID", "Name", "Total Spent"}, len(rows), func(i int) []string {
		r := rows[i]
		return []string{formatID(r.CustomerID), r.Name, formatMoney(r.TotalSpent)}
	})
}

// WriteMonthlySalesCSV writes the monthly crosstab with a trailing total.
func WriteMonthlySalesCSV(w io.Writer, rows []types.MonthlySales) error {
	header := append([]string{"Store ID", "Name", "Year"}, monthHeaders...)
	header = append(header, "Total")
	return writeCSV(w, header, len(rows), func(i int) []string {
		r := rows[i]
		rec := []string{formatID(r.StoreID), r.Name, strconv.Itoa(r.Year)}
		for _, m := range r.Months {
			rec = append(rec, formatMoney(m))
		}
		return append(rec, formatMoney(r.Total()))
	})
}

// WriteSalesCSV writes the per-store sales of one month.
func WriteSalesCSV(w io.Writer, rows []types.StoreSales) error {
	return writeCSV(w, []string{"Store ID", "Name", "Year", "Month", "Total Sales"}, len(rows), func(i int) []string {
		r := rows[i]
		return []string{formatID(r.StoreID), r.Name, strconv.Itoa(r.Year), strconv.Itoa(r.Month), formatMoney(r.TotalSales)}
	})
}

// WriteOrdersCSV writes a list of orders.
func WriteOrdersCSV(w io.Writer, rows []types.Order) error {
	return writeCSV(w, []string{"Order ID", "Customer ID", "Store ID", "Order Date", "Total Amount"}, len(rows), func(i int) []string {
		r := rows[i]
		store := ""
		if r.StoreID != nil {
			store = formatID(*r.StoreID)
		}
		return []string{formatID(r.OrderID), formatID(r.CustomerID), store, r.OrderDate.String(), formatMoney(r.TotalAmount)}
	})
}

func formatID(v int64) string {
	return strconv.FormatInt(v, 10)
}

func formatMoney(v decimal.Decimal) string {
	return v.StringFixed(2)
}
