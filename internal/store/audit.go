package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/shopledger/pkg/types"
)

const insertAuditSQL = `
INSERT INTO employee_audit
    (audit_ref, employee_id, name, role, store_id, salary, manager_id, hire_date, deleted_at)
VALUES
    (:audit_ref, :employee_id, :name, :role, :store_id, :salary, :manager_id, :hire_date, :deleted_at)
RETURNING audit_id`

// auditEmployees snapshots every employee about to be deleted. It is the
// employees delete hook, so cascades and direct deletes are audited alike.
func (b *Backend) auditEmployees(ctx context.Context, tx *sqlx.Tx, ids []int64, res *deleteResult) error {
	table := b.tables[types.EmployeesTable]
	query, args, err := sqlx.In(table.selectSQL()+" WHERE employee_id IN (?) ORDER BY employee_id", ids)
	if err != nil {
		return fmt.Errorf("reading employees for audit: %w", err)
	}
	var employees []types.Employee
	if err := tx.SelectContext(ctx, &employees, tx.Rebind(query), args...); err != nil {
		return fmt.Errorf("reading employees for audit: %w", err)
	}

	deletedAt := b.now()
	for i := range employees {
		audit := types.AuditOf(&employees[i], newRef(), deletedAt)
		stmt, auditArgs, err := tx.BindNamed(insertAuditSQL, audit)
		if err != nil {
			return fmt.Errorf("binding audit for employee %d: %w", audit.EmployeeID, err)
		}
		if err := tx.QueryRowxContext(ctx, stmt, auditArgs...).Scan(&audit.AuditID); err != nil {
			return fmt.Errorf("writing audit for employee %d: %w", audit.EmployeeID, err)
		}
		res.audits = append(res.audits, *audit)
	}
	return nil
}

// DeleteEmployee deletes an employee. The audit snapshot, the clearing of
// every manager reference and the delete commit together.
func (b *Backend) DeleteEmployee(ctx context.Context, id int64) (*types.EmployeeAudit, error) {
	release, err := b.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	res, err := b.deleteEntity(ctx, types.EmployeesTable, id)
	if err != nil {
		return nil, err
	}
	if len(res.audits) == 0 {
		return nil, fmt.Errorf("deleting employee %d: no audit written", id)
	}
	audit := res.audits[0]
	b.log.Info("employee deleted",
		zap.Int64("employee_id", id),
		zap.String("audit_ref", audit.AuditRef),
		zap.Int64("reports_cleared", res.nulled["employees.manager_id"]),
		zap.Int64("stores_cleared", res.nulled["stores.manager_id"]))
	return &audit, nil
}

// ClearEmployeeAudit removes every audit row and returns how many went.
func (b *Backend) ClearEmployeeAudit(ctx context.Context) (int64, error) {
	release, err := b.acquire()
	if err != nil {
		return 0, err
	}
	defer release()

	var n int64
	err = b.withTx(ctx, "clearing employee audit", func(tx *sqlx.Tx) error {
		r, err := tx.ExecContext(ctx, "DELETE FROM employee_audit")
		if err != nil {
			return err
		}
		n, err = r.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	b.log.Info("employee audit cleared", zap.Int64("rows", n))
	return n, nil
}
