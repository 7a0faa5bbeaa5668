package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shopledger/pkg/types"
)

func TestCreateAndGet(t *testing.T) {
	b := setupLedger(t)
	createFixture(t, b)

	p := get(t, b, types.ProductsTable, 2).(*types.Product)
	assert.Equal(t, "Earbuds", p.Name)
	assertDecimal(t, "7.50", p.Price)
	assert.Equal(t, int64(17), p.Stock)

	e := get(t, b, types.EmployeesTable, 3).(*types.Employee)
	require.NotNil(t, e.ManagerID)
	assert.Equal(t, int64(2), *e.ManagerID)
	assert.Nil(t, e.HireDate)

	o := get(t, b, types.OrdersTable, 1).(*types.Order)
	assert.Equal(t, "2024-03-05", o.OrderDate.String())
}

func TestGetMissing(t *testing.T) {
	b := setupLedger(t)
	tbl, err := b.GetTable(types.SuppliersTable)
	require.NoError(t, err)

	_, err = tbl.Get(context.Background(), 42)
	var nf *types.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, types.SuppliersTable, nf.Table)
	assert.Equal(t, int64(42), nf.ID)
}

func TestCreateRejects(t *testing.T) {
	tests := []struct {
		name      string
		table     string
		entity    any
		wantField string
		wantRule  string
		notFound  string
	}{
		{
			name:      "negative price",
			table:     types.ProductsTable,
			entity:    &types.Product{ProductID: 9, Name: "Oil", Category: "Groceries", Price: dec("-1.00"), Stock: 1, SupplierID: 1},
			wantField: "price",
			wantRule:  types.RuleNonNeg,
		},
		{
			name:      "negative price smaller than any float64",
			table:     types.ProductsTable,
			entity:    &types.Product{ProductID: 9, Name: "Oil", Category: "Groceries", Price: dec("-1e-401"), Stock: 1, SupplierID: 1},
			wantField: "price",
			wantRule:  types.RuleNonNeg,
		},
		{
			name:      "negative stock",
			table:     types.ProductsTable,
			entity:    &types.Product{ProductID: 9, Name: "Oil", Category: "Groceries", Price: dec("1.00"), Stock: -1, SupplierID: 1},
			wantField: "stock",
			wantRule:  types.RuleNonNeg,
		},
		{
			name:     "missing supplier",
			table:    types.ProductsTable,
			entity:   &types.Product{ProductID: 9, Name: "Oil", Category: "Groceries", Price: dec("1.00"), Stock: 1, SupplierID: 99},
			notFound: types.SuppliersTable,
		},
		{
			name:      "duplicate primary key",
			table:     types.SuppliersTable,
			entity:    &types.Supplier{SupplierID: 1, Name: "Other", ContactPerson: "X", Phone: "1111111111", City: "Pune"},
			wantField: "supplier_id",
			wantRule:  types.RuleUnique,
		},
		{
			name:      "duplicate email",
			table:     types.CustomersTable,
			entity:    &types.Customer{CustomerID: 9, Name: "Copy", Email: "anjali@example.com", Phone: "9999999999", City: "Chennai"},
			wantField: "email",
			wantRule:  types.RuleUnique,
		},
		{
			name:      "malformed email",
			table:     types.CustomersTable,
			entity:    &types.Customer{CustomerID: 9, Name: "Copy", Email: "not-an-email", Phone: "9999999999", City: "Chennai"},
			wantField: "email",
			wantRule:  types.RuleFormat,
		},
		{
			name:     "order for missing customer",
			table:    types.OrdersTable,
			entity:   &types.Order{OrderID: 9, CustomerID: 99, TotalAmount: dec("1.00")},
			notFound: types.CustomersTable,
		},
		{
			name:      "employee managing itself",
			table:     types.EmployeesTable,
			entity:    &types.Employee{EmployeeID: 9, Name: "Self", Role: "Clerk", Salary: dec("1.00"), ManagerID: ptr(int64(9))},
			wantField: "manager_id",
			wantRule:  types.RuleCycle,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := setupLedger(t)
			createFixture(t, b)
			tbl, err := b.GetTable(tt.table)
			require.NoError(t, err)
			before := count(t, b, tt.table)

			err = tbl.Create(context.Background(), tt.entity)
			require.Error(t, err)
			if tt.notFound != "" {
				var nf *types.NotFoundError
				require.ErrorAs(t, err, &nf)
				assert.Equal(t, tt.notFound, nf.Table)
			} else {
				var cv *types.ConstraintViolationError
				require.ErrorAs(t, err, &cv)
				assert.Equal(t, tt.wantField, cv.Field)
				assert.Equal(t, tt.wantRule, cv.Rule)
			}
			assert.Equal(t, before, count(t, b, tt.table))
		})
	}
}

func TestCreateWrongEntityType(t *testing.T) {
	b := setupLedger(t)
	tbl, err := b.GetTable(types.StoresTable)
	require.NoError(t, err)

	err = tbl.Create(context.Background(), &types.Supplier{SupplierID: 1})
	assert.ErrorIs(t, err, types.ErrInvalidData)
	err = tbl.Create(context.Background(), types.Store{StoreID: 1})
	assert.ErrorIs(t, err, types.ErrInvalidData)
}

func TestCreateDefaultsOrderDateToToday(t *testing.T) {
	b := setupLedger(t)
	createFixture(t, b)

	order := &types.Order{OrderID: 3, CustomerID: 1, TotalAmount: dec("0")}
	create(t, b, types.OrdersTable, order)

	got := get(t, b, types.OrdersTable, 3).(*types.Order)
	assert.Equal(t, "2025-06-15", got.OrderDate.String())
	assert.Nil(t, got.StoreID)
}

func TestAuditTableIsReadOnly(t *testing.T) {
	b := setupLedger(t)
	tbl, err := b.GetTable(types.EmployeeAuditTable)
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, tbl.Create(ctx, &types.EmployeeAudit{EmployeeID: 1}), types.ErrReadOnlyTable)
	_, err = tbl.Update(ctx, 1, map[string]any{"name": "x"})
	assert.ErrorIs(t, err, types.ErrReadOnlyTable)
	assert.ErrorIs(t, tbl.Delete(ctx, 1), types.ErrReadOnlyTable)
}

func TestUpdate(t *testing.T) {
	b := setupLedger(t)
	createFixture(t, b)
	ctx := context.Background()
	products, err := b.GetTable(types.ProductsTable)
	require.NoError(t, err)

	updated, err := products.Update(ctx, 1, map[string]any{"price": "6.25", "name": "Basmati Rice"})
	require.NoError(t, err)
	p := updated.(*types.Product)
	assertDecimal(t, "6.25", p.Price)
	assert.Equal(t, "Basmati Rice", p.Name)
	assert.Equal(t, int64(8), p.Stock)

	stored := get(t, b, types.ProductsTable, 1).(*types.Product)
	assertDecimal(t, "6.25", stored.Price)
}

func TestUpdateSetsStockDirectly(t *testing.T) {
	b := setupLedger(t)
	createFixture(t, b)
	products, err := b.GetTable(types.ProductsTable)
	require.NoError(t, err)

	_, err = products.Update(context.Background(), 2, map[string]any{"stock": 3})
	require.NoError(t, err)
	assert.Equal(t, int64(3), get(t, b, types.ProductsTable, 2).(*types.Product).Stock)
}

func TestUpdateClearsOptionalReference(t *testing.T) {
	b := setupLedger(t)
	createFixture(t, b)
	employees, err := b.GetTable(types.EmployeesTable)
	require.NoError(t, err)

	_, err = employees.Update(context.Background(), 3, map[string]any{"manager_id": nil})
	require.NoError(t, err)
	assert.Nil(t, get(t, b, types.EmployeesTable, 3).(*types.Employee).ManagerID)
}

func TestUpdateRejects(t *testing.T) {
	tests := []struct {
		name   string
		table  string
		id     int64
		fields map[string]any
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unknown column",
			table:  types.ProductsTable,
			id:     1,
			fields: map[string]any{"colour": "red"},
			check:  func(t *testing.T, err error) { assert.ErrorIs(t, err, types.ErrInvalidData) },
		},
		{
			name:   "negative stock",
			table:  types.ProductsTable,
			id:     1,
			fields: map[string]any{"stock": -3},
			check: func(t *testing.T, err error) {
				var cv *types.ConstraintViolationError
				require.ErrorAs(t, err, &cv)
				assert.Equal(t, types.RuleNonNeg, cv.Rule)
			},
		},
		{
			name:   "primary key change",
			table:  types.ProductsTable,
			id:     1,
			fields: map[string]any{"product_id": 5},
			check: func(t *testing.T, err error) {
				var cv *types.ConstraintViolationError
				require.ErrorAs(t, err, &cv)
				assert.Equal(t, types.RuleImmutable, cv.Rule)
			},
		},
		{
			name:   "missing row",
			table:  types.ProductsTable,
			id:     99,
			fields: map[string]any{"stock": 1},
			check:  func(t *testing.T, err error) { assert.True(t, types.IsNotFound(err)) },
		},
		{
			name:   "manager cycle",
			table:  types.EmployeesTable,
			id:     1,
			fields: map[string]any{"manager_id": 3},
			check: func(t *testing.T, err error) {
				var cv *types.ConstraintViolationError
				require.ErrorAs(t, err, &cv)
				assert.Equal(t, types.RuleCycle, cv.Rule)
			},
		},
		{
			name:   "duplicate phone",
			table:  types.CustomersTable,
			id:     2,
			fields: map[string]any{"phone": "9012345678"},
			check: func(t *testing.T, err error) {
				var cv *types.ConstraintViolationError
				require.ErrorAs(t, err, &cv)
				assert.Equal(t, "phone", cv.Field)
				assert.Equal(t, types.RuleUnique, cv.Rule)
			},
		},
		{
			name:   "dangling store",
			table:  types.OrdersTable,
			id:     1,
			fields: map[string]any{"store_id": 77},
			check:  func(t *testing.T, err error) { assert.True(t, types.IsNotFound(err)) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := setupLedger(t)
			createFixture(t, b)
			tbl, err := b.GetTable(tt.table)
			require.NoError(t, err)

			var before any
			if exists(t, b, tt.table, tt.id) {
				before = get(t, b, tt.table, tt.id)
			}
			_, err = tbl.Update(context.Background(), tt.id, tt.fields)
			require.Error(t, err)
			tt.check(t, err)
			if before != nil {
				assert.Equal(t, before, get(t, b, tt.table, tt.id))
			}
		})
	}
}

func TestFetch(t *testing.T) {
	b := setupLedger(t)
	createFixture(t, b)
	ctx := context.Background()
	employees, err := b.GetTable(types.EmployeesTable)
	require.NoError(t, err)

	all, err := employees.Fetch(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, row := range all {
		assert.Equal(t, int64(i+1), row.(*types.Employee).EmployeeID)
	}

	atStore1, err := employees.Fetch(ctx, types.Filter{"store_id": 1})
	require.NoError(t, err)
	assert.Len(t, atStore1, 2)

	roots, err := employees.Fetch(ctx, types.Filter{"manager_id": nil})
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, int64(1), roots[0].(*types.Employee).EmployeeID)

	_, err = employees.Fetch(ctx, types.Filter{"nickname": "x"})
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
}
