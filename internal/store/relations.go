package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/shopledger/pkg/types"
)

// deleteHook runs inside the delete transaction before any row of its table
// changes. ids are the rows about to be deleted.
type deleteHook func(ctx context.Context, tx *sqlx.Tx, ids []int64, res *deleteResult) error

// deleteResult accumulates the effects of one logical delete.
type deleteResult struct {
	deleted map[string]int64
	nulled  map[string]int64
	audits  []types.EmployeeAudit
}

func newDeleteResult() *deleteResult {
	return &deleteResult{
		deleted: make(map[string]int64),
		nulled:  make(map[string]int64),
	}
}

func (r *deleteResult) fields() []zap.Field {
	return []zap.Field{
		zap.Any("deleted", r.deleted),
		zap.Any("nulled", r.nulled),
		zap.Int("audits", len(r.audits)),
	}
}

// deleteEntity removes one row and everything its relations reach, in one
// transaction.
func (b *Backend) deleteEntity(ctx context.Context, table string, id int64) (*deleteResult, error) {
	res := newDeleteResult()
	op := fmt.Sprintf("deleting %s %d", table, id)
	err := b.withTx(ctx, op, func(tx *sqlx.Tx) error {
		exists, err := b.rowExists(ctx, tx, table, id)
		if err != nil {
			return err
		}
		if !exists {
			return &types.NotFoundError{Table: table, ID: id}
		}
		return b.deleteRows(ctx, tx, table, []int64{id}, res)
	})
	if err != nil {
		return nil, err
	}
	b.log.Debug("delete applied", append([]zap.Field{zap.String("table", table), zap.Int64("id", id)}, res.fields()...)...)
	return res, nil
}

// deleteRows deletes ids from table. The table's hook runs first, then each
// relation naming table as parent applies its policy, then the rows go.
// Cascades recurse, so grandchildren are handled by their own relations.
func (b *Backend) deleteRows(ctx context.Context, tx *sqlx.Tx, table string, ids []int64, res *deleteResult) error {
	if len(ids) == 0 {
		return nil
	}
	if hook, ok := b.beforeDelete[table]; ok {
		if err := hook(ctx, tx, ids, res); err != nil {
			return err
		}
	}

	for _, rel := range b.relations {
		if rel.Parent != table {
			continue
		}
		childPK := types.PrimaryKeys[rel.Child]
		switch rel.OnDelete {
		case types.Cascade:
			childIDs, err := selectIDs(ctx, tx, childPK, rel.Child, rel.Column, ids)
			if err != nil {
				return err
			}
			if err := b.deleteRows(ctx, tx, rel.Child, childIDs, res); err != nil {
				return err
			}
		case types.SetNull:
			query, args, err := sqlx.In(fmt.Sprintf("UPDATE %s SET %s = NULL WHERE %s IN (?)", rel.Child, rel.Column, rel.Column), ids)
			if err != nil {
				return fmt.Errorf("clearing %s.%s: %w", rel.Child, rel.Column, err)
			}
			r, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
			if err != nil {
				return fmt.Errorf("clearing %s.%s: %w", rel.Child, rel.Column, err)
			}
			n, err := r.RowsAffected()
			if err != nil {
				return fmt.Errorf("clearing %s.%s: %w", rel.Child, rel.Column, err)
			}
			res.nulled[rel.Child+"."+rel.Column] += n
		default:
			childIDs, err := selectIDs(ctx, tx, childPK, rel.Child, rel.Column, ids)
			if err != nil {
				return err
			}
			if len(childIDs) > 0 {
				return &types.ConstraintViolationError{Table: table, Field: rel.Child, Rule: types.RuleRestrict, ID: ids[0]}
			}
		}
	}

	query, args, err := sqlx.In(fmt.Sprintf("DELETE FROM %s WHERE %s IN (?)", table, types.PrimaryKeys[table]), ids)
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", table, err)
	}
	r, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", table, err)
	}
	n, err := r.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", table, err)
	}
	res.deleted[table] += n
	return nil
}

// selectIDs returns the primary keys of table rows whose column is in ids.
func selectIDs(ctx context.Context, tx *sqlx.Tx, pk, table, column string, ids []int64) ([]int64, error) {
	query, args, err := sqlx.In(fmt.Sprintf("SELECT %s FROM %s WHERE %s IN (?) ORDER BY %s", pk, table, column, pk), ids)
	if err != nil {
		return nil, fmt.Errorf("selecting %s: %w", table, err)
	}
	var out []int64
	if err := tx.SelectContext(ctx, &out, tx.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("selecting %s: %w", table, err)
	}
	return out, nil
}
