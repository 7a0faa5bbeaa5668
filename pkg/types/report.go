package types

import "github.com/shopspring/decimal"

// TopSellingProduct is a row of the top_selling_products view.
type TopSellingProduct struct {
	ProductID int64  `db:"product_id" json:"product_id"`
	Name      string `db:"name" json:"name"`
	TotalSold int64  `db:"total_sold" json:"total_sold"`
}

// StoreRevenue is a row of the store_revenue view. Stores without orders
// report zero.
type StoreRevenue struct {
	StoreID      int64           `db:"store_id" json:"store_id"`
	Name         string          `db:"name" json:"name"`
	TotalRevenue decimal.Decimal `db:"total_revenue" json:"total_revenue"`
}

// HierarchyNode is one employee in the manager forest. Roots have depth 0.
type HierarchyNode struct {
	EmployeeID int64  `db:"employee_id" json:"employee_id"`
	Name       string `db:"name" json:"name"`
	Role       string `db:"role" json:"role"`
	ManagerID  *int64 `db:"manager_id" json:"manager_id"`
	Depth      int    `db:"depth" json:"depth"`
}

// CustomerSpending is a customer's lifetime order total.
type CustomerSpending struct {
	CustomerID int64           `db:"customer_id" json:"customer_id"`
	Name       string          `db:"name" json:"name"`
	TotalSpent decimal.Decimal `db:"total_spent" json:"total_spent"`
}

// MonthlySales is one store's revenue for a year, one column per month.
// Months[0] is January.
type MonthlySales struct {
	StoreID int64               `json:"store_id"`
	Name    string              `json:"name"`
	Year    int                 `json:"year"`
	Months  [12]decimal.Decimal `json:"months"`
}

// Total sums the twelve monthly values.
func (m MonthlySales) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range m.Months {
		total = total.Add(v)
	}
	return total
}

// StoreSales is one store's item-level sales for a single month.
type StoreSales struct {
	StoreID    int64           `db:"store_id" json:"store_id"`
	Name       string          `db:"name" json:"name"`
	Year       int             `db:"year" json:"year"`
	Month      int             `db:"month" json:"month"`
	TotalSales decimal.Decimal `db:"total_sales" json:"total_sales"`
}
