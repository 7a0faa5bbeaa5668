package store

import (
	"context"

	"github.com/mesh-intelligence/shopledger/pkg/types"
)

// TopSellingProducts reads the top_selling_products view. Products never
// ordered are absent. Rows are ordered by units sold, highest first.
func (b *Backend) TopSellingProducts(ctx context.Context) ([]types.TopSellingProduct, error) {
	release, err := b.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	rows := []types.TopSellingProduct{}
	err = b.db.SelectContext(ctx, &rows,
		"SELECT product_id, name, total_sold FROM top_selling_products ORDER BY total_sold DESC, product_id")
	if err != nil {
		return nil, b.classifyErr("reading top selling products", err)
	}
	return rows, nil
}

// StoreRevenue reads the store_revenue view. Every store appears, with zero
// revenue when it has no orders.
func (b *Backend) StoreRevenue(ctx context.Context) ([]types.StoreRevenue, error) {
	release, err := b.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	rows := []types.StoreRevenue{}
	err = b.db.SelectContext(ctx, &rows,
		"SELECT store_id, name, total_revenue FROM store_revenue ORDER BY store_id")
	if err != nil {
		return nil, b.classifyErr("reading store revenue", err)
	}
	for i := range rows {
		rows[i].TotalRevenue = rows[i].TotalRevenue.Round(2)
	}
	return rows, nil
}

// hierarchySQL walks the manager forest from its roots. The depth bound
// stops the walk should a cycle ever reach the table.
const hierarchySQL = `
WITH RECURSIVE hierarchy (employee_id, name, role, manager_id, depth) AS (
    SELECT employee_id, name, role, manager_id, 0
    FROM employees
    WHERE manager_id IS NULL
    UNION ALL
    SELECT e.employee_id, e.name, e.role, e.manager_id, h.depth + 1
    FROM employees e
    JOIN hierarchy h ON e.manager_id = h.employee_id
    WHERE h.depth < ?
)
SELECT employee_id, name, role, manager_id, depth
FROM hierarchy
ORDER BY depth, employee_id`

// EmployeeHierarchy lists every employee reachable from a root with its
// depth below that root.
func (b *Backend) EmployeeHierarchy(ctx context.Context) ([]types.HierarchyNode, error) {
	release, err := b.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	nodes := []types.HierarchyNode{}
	if err := b.db.SelectContext(ctx, &nodes, b.rebind(hierarchySQL), maxHierarchyDepth); err != nil {
		return nil, b.classifyErr("reading employee hierarchy", err)
	}
	return nodes, nil
}
