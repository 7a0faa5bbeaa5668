package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/mesh-intelligence/shopledger/pkg/types"
)

// maxHierarchyDepth bounds manager-chain walks.
const maxHierarchyDepth = 1000

// Table implements types.Table for one entity kind. Column lists come from
// the db tags of the entity struct.
type Table struct {
	backend    *Backend
	name       string
	pk         string
	columns    []string
	fields     map[string]int
	entityType reflect.Type
}

func newTable(b *Backend, name string) *Table {
	typ := reflect.TypeOf(types.NewEntity(name)).Elem()
	cols, fields := columnsOf(typ)
	return &Table{
		backend:    b,
		name:       name,
		pk:         types.PrimaryKeys[name],
		columns:    cols,
		fields:     fields,
		entityType: typ,
	}
}

// columnsOf lists the db-tagged fields of a struct in declaration order
// and maps each column to its field index.
func columnsOf(typ reflect.Type) ([]string, map[string]int) {
	var cols []string
	fields := make(map[string]int)
	for i := 0; i < typ.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		cols = append(cols, tag)
		fields[tag] = i
	}
	return cols, fields
}

func (t *Table) newEntity() any {
	return reflect.New(t.entityType).Interface()
}

// checkEntity rejects data that is not a pointer to this table's entity.
func (t *Table) checkEntity(data any) error {
	if data == nil || reflect.TypeOf(data) != reflect.PointerTo(t.entityType) {
		return fmt.Errorf("%w: %s expects *%s, got %T", types.ErrInvalidData, t.name, t.entityType.Name(), data)
	}
	if reflect.ValueOf(data).IsNil() {
		return fmt.Errorf("%w: nil %s entity", types.ErrInvalidData, t.name)
	}
	return nil
}

func (t *Table) selectSQL() string {
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(t.columns, ", "), t.name)
}

// Get retrieves an entity by primary key.
func (t *Table) Get(ctx context.Context, id int64) (any, error) {
	release, err := t.backend.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	return t.get(ctx, t.backend.db, id, false)
}

// get reads one row through q, the pool or an open transaction. With lock
// set the row stays locked until the transaction ends.
func (t *Table) get(ctx context.Context, q sqlx.QueryerContext, id int64, lock bool) (any, error) {
	query := t.selectSQL() + " WHERE " + t.pk + " = ?"
	if lock {
		query += t.backend.dialect.lockRow()
	}
	entity := t.newEntity()
	if err := sqlx.GetContext(ctx, q, entity, t.backend.rebind(query), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &types.NotFoundError{Table: t.name, ID: id}
		}
		return nil, t.backend.classifyErr(fmt.Sprintf("getting %s %d", t.name, id), err)
	}
	return entity, nil
}

// Create inserts a new entity. Order items go through the inventory guard.
func (t *Table) Create(ctx context.Context, data any) error {
	if err := t.checkEntity(data); err != nil {
		return err
	}
	release, err := t.backend.acquire()
	if err != nil {
		return err
	}
	defer release()

	switch t.name {
	case types.EmployeeAuditTable:
		return fmt.Errorf("%w: %s rows are written by employee deletes", types.ErrReadOnlyTable, t.name)
	case types.OrderItemsTable:
		item := data.(*types.OrderItem)
		created, err := t.backend.insertOrderItem(ctx, *item)
		if err != nil {
			return err
		}
		*item = *created
		return nil
	}

	t.backend.applyDefaults(data)
	if err := types.ValidateEntity(t.name, data); err != nil {
		return err
	}
	return t.backend.withTx(ctx, "creating "+t.name, func(tx *sqlx.Tx) error {
		return t.insertChecked(ctx, tx, data)
	})
}

// insertChecked enforces key, uniqueness and reference rules, then inserts.
func (t *Table) insertChecked(ctx context.Context, tx *sqlx.Tx, data any) error {
	vals := t.fieldMap(data)
	id := vals[t.pk].Int()

	exists, err := t.backend.rowExists(ctx, tx, t.name, id)
	if err != nil {
		return err
	}
	if exists {
		return &types.ConstraintViolationError{Table: t.name, Field: t.pk, Rule: types.RuleUnique, ID: id}
	}
	if err := t.checkUnique(ctx, tx, vals, id); err != nil {
		return err
	}
	if err := t.checkRefs(ctx, tx, vals, id); err != nil {
		return err
	}
	_, err = t.insert(ctx, tx, vals, false)
	return err
}

// insert writes every column. With ignoreConflict a row that collides on
// any unique key is skipped and insert reports false.
func (t *Table) insert(ctx context.Context, tx *sqlx.Tx, vals map[string]reflect.Value, ignoreConflict bool) (bool, error) {
	args := make([]any, len(t.columns))
	for i, col := range t.columns {
		args[i] = vals[col].Interface()
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.name, strings.Join(t.columns, ", "), placeholders(len(t.columns)))
	if ignoreConflict {
		query += " ON CONFLICT DO NOTHING"
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
	if err != nil {
		return false, fmt.Errorf("inserting into %s: %w", t.name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("inserting into %s: %w", t.name, err)
	}
	return n == 1, nil
}

// Update applies fields onto the stored row, re-validates the whole row and
// writes it back. The primary key cannot change.
func (t *Table) Update(ctx context.Context, id int64, fields map[string]any) (any, error) {
	if t.name == types.EmployeeAuditTable {
		return nil, fmt.Errorf("%w: %s", types.ErrReadOnlyTable, t.name)
	}
	release, err := t.backend.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	var updated any
	op := fmt.Sprintf("updating %s %d", t.name, id)
	err = t.backend.withTx(ctx, op, func(tx *sqlx.Tx) error {
		current, err := t.get(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if err := applyFields(current, fields); err != nil {
			return err
		}
		vals := t.fieldMap(current)
		if vals[t.pk].Int() != id {
			return &types.ConstraintViolationError{Table: t.name, Field: t.pk, Rule: types.RuleImmutable, ID: id}
		}
		if err := types.ValidateEntity(t.name, current); err != nil {
			return err
		}
		if err := t.checkUnique(ctx, tx, vals, id); err != nil {
			return err
		}
		if err := t.checkRefs(ctx, tx, vals, id); err != nil {
			return err
		}
		if err := t.write(ctx, tx, vals, id); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// write replaces every non-key column of row id.
func (t *Table) write(ctx context.Context, tx *sqlx.Tx, vals map[string]reflect.Value, id int64) error {
	sets := make([]string, 0, len(t.columns))
	args := make([]any, 0, len(t.columns))
	for _, col := range t.columns {
		if col == t.pk {
			continue
		}
		sets = append(sets, col+" = ?")
		args = append(args, vals[col].Interface())
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", t.name, strings.Join(sets, ", "), t.pk)
	if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		return fmt.Errorf("writing %s %d: %w", t.name, id, err)
	}
	return nil
}

// applyFields decodes fields onto entity through its json tags, so keys
// are column names. Unknown keys are rejected.
func applyFields(entity any, fields map[string]any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(entity); err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	return nil
}

// Delete removes an entity and applies every dependent relation policy.
func (t *Table) Delete(ctx context.Context, id int64) error {
	if t.name == types.EmployeeAuditTable {
		return fmt.Errorf("%w: %s is cleared in bulk only", types.ErrReadOnlyTable, t.name)
	}
	release, err := t.backend.acquire()
	if err != nil {
		return err
	}
	defer release()

	_, err = t.backend.deleteEntity(ctx, t.name, id)
	return err
}

// Fetch returns entities matching filter ordered by primary key.
func (t *Table) Fetch(ctx context.Context, filter types.Filter) ([]any, error) {
	release, err := t.backend.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	where, args, err := t.whereClause(filter)
	if err != nil {
		return nil, err
	}
	query := t.selectSQL() + where + " ORDER BY " + t.pk

	rows := reflect.New(reflect.SliceOf(reflect.PointerTo(t.entityType)))
	if err := sqlx.SelectContext(ctx, t.backend.db, rows.Interface(), t.backend.rebind(query), args...); err != nil {
		return nil, t.backend.classifyErr("fetching "+t.name, err)
	}
	list := rows.Elem()
	out := make([]any, list.Len())
	for i := range out {
		out[i] = list.Index(i).Interface()
	}
	return out, nil
}

func (t *Table) whereClause(filter types.Filter) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}
	keys := make([]string, 0, len(filter))
	for k := range filter {
		if !slices.Contains(t.columns, k) {
			return "", nil, fmt.Errorf("%w: %s has no column %q", types.ErrInvalidFilter, t.name, k)
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)

	conds := make([]string, 0, len(keys))
	var args []any
	for _, k := range keys {
		if filter[k] == nil {
			conds = append(conds, k+" IS NULL")
			continue
		}
		conds = append(conds, k+" = ?")
		args = append(args, filter[k])
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

// fieldMap returns the entity's top-level fields keyed by column. Nil
// pointer fields stay nil and bind as NULL.
func (t *Table) fieldMap(entity any) map[string]reflect.Value {
	v := reflect.Indirect(reflect.ValueOf(entity))
	vals := make(map[string]reflect.Value, len(t.fields))
	for col, i := range t.fields {
		vals[col] = v.Field(i)
	}
	return vals
}

// checkUnique rejects values already held by another row.
func (t *Table) checkUnique(ctx context.Context, tx *sqlx.Tx, vals map[string]reflect.Value, id int64) error {
	for _, col := range types.UniqueColumns[t.name] {
		query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? AND %s <> ?", t.pk, t.name, col, t.pk)
		var other int64
		err := tx.GetContext(ctx, &other, tx.Rebind(query), vals[col].Interface(), id)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return fmt.Errorf("checking %s.%s: %w", t.name, col, err)
		}
		return &types.ConstraintViolationError{Table: t.name, Field: col, Rule: types.RuleUnique, ID: id}
	}
	return nil
}

// checkRefs resolves every foreign key the row carries. A missing parent
// fails with NotFoundError. Self references must not form a cycle.
func (t *Table) checkRefs(ctx context.Context, tx *sqlx.Tx, vals map[string]reflect.Value, id int64) error {
	for _, rel := range t.backend.relations {
		if rel.Child != t.name {
			continue
		}
		ref, ok := refValue(vals[rel.Column])
		if !ok {
			continue
		}
		if rel.Parent == rel.Child && ref == id {
			return &types.ConstraintViolationError{Table: t.name, Field: rel.Column, Rule: types.RuleCycle, ID: id}
		}
		exists, err := t.backend.rowExists(ctx, tx, rel.Parent, ref)
		if err != nil {
			return err
		}
		if !exists {
			return &types.NotFoundError{Table: rel.Parent, ID: ref}
		}
		if rel.Parent == rel.Child {
			if err := t.checkNoCycle(ctx, tx, rel.Column, id, ref); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkNoCycle walks the chain upward from ref and fails if it reaches id.
func (t *Table) checkNoCycle(ctx context.Context, tx *sqlx.Tx, column string, id, ref int64) error {
	query := tx.Rebind(fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", column, t.name, t.pk))
	cur := ref
	for range maxHierarchyDepth {
		var next sql.NullInt64
		if err := tx.GetContext(ctx, &next, query, cur); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("walking %s.%s: %w", t.name, column, err)
		}
		if !next.Valid {
			return nil
		}
		if next.Int64 == id {
			return &types.ConstraintViolationError{Table: t.name, Field: column, Rule: types.RuleCycle, ID: id}
		}
		cur = next.Int64
	}
	return &types.ConstraintViolationError{Table: t.name, Field: column, Rule: types.RuleCycle, ID: id}
}

// refValue extracts a foreign key from an int64 or *int64 field. Nil and
// zero mean no reference.
func refValue(v reflect.Value) (int64, bool) {
	switch v.Kind() {
	case reflect.Int64:
		return v.Int(), v.Int() != 0
	case reflect.Pointer:
		if v.IsNil() {
			return 0, false
		}
		return v.Elem().Int(), true
	default:
		return 0, false
	}
}

// rowExists reports whether table holds a row with primary key id.
func (b *Backend) rowExists(ctx context.Context, q sqlx.QueryerContext, table string, id int64) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE %s = ?", table, types.PrimaryKeys[table])
	var one int
	err := sqlx.GetContext(ctx, q, &one, b.rebind(query), id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up %s %d: %w", table, id, err)
	}
	return true, nil
}

// applyDefaults fills creation-day dates left zero.
func (b *Backend) applyDefaults(entity any) {
	switch e := entity.(type) {
	case *types.Order:
		if e.OrderDate.IsZero() {
			e.OrderDate = b.today()
		}
	case *types.Payment:
		if e.PaymentDate.IsZero() {
			e.PaymentDate = b.today()
		}
	case *types.Shipment:
		if e.ShipmentDate.IsZero() {
			e.ShipmentDate = b.today()
		}
	}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
