package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee works at a store and reports to a manager. Both references are
// optional and become nil when the referenced row is deleted. Manager
// references form a forest; employees with no manager are hierarchy roots.
type Employee struct {
	EmployeeID int64           `db:"employee_id" json:"employee_id" validate:"gt=0"`
	Name       string          `db:"name" json:"name" validate:"required,max=255"`
	Role       string          `db:"role" json:"role" validate:"required,max=100"`
	StoreID    *int64          `db:"store_id" json:"store_id" validate:"omitempty,gt=0"`
	Salary     decimal.Decimal `db:"salary" json:"salary" validate:"dgte0"`
	ManagerID  *int64          `db:"manager_id" json:"manager_id" validate:"omitempty,gt=0"`
	HireDate   *Date           `db:"hire_date" json:"hire_date,omitempty"`
}

// EmployeeAudit is an append-only snapshot of an employee taken just before
// the employee row was deleted.
type EmployeeAudit struct {
	// AuditID is assigned by the store on insert.
	AuditID int64 `db:"audit_id" json:"audit_id"`

	// AuditRef is a UUID v7, sortable by deletion time across backends.
	AuditRef string `db:"audit_ref" json:"audit_ref"`

	EmployeeID int64           `db:"employee_id" json:"employee_id"`
	Name       string          `db:"name" json:"name"`
	Role       string          `db:"role" json:"role"`
	StoreID    *int64          `db:"store_id" json:"store_id"`
	Salary     decimal.Decimal `db:"salary" json:"salary"`
	ManagerID  *int64          `db:"manager_id" json:"manager_id"`
	HireDate   *Date           `db:"hire_date" json:"hire_date,omitempty"`

	// DeletedAt is the wall-clock time of the deletion, stored as RFC 3339 text.
	DeletedAt Timestamp `db:"deleted_at" json:"deleted_at"`
}

// AuditOf copies every field of e into a new audit record stamped at t.
func AuditOf(e *Employee, ref string, t time.Time) *EmployeeAudit {
	return &EmployeeAudit{
		AuditRef:   ref,
		EmployeeID: e.EmployeeID,
		Name:       e.Name,
		Role:       e.Role,
		StoreID:    e.StoreID,
		Salary:     e.Salary,
		ManagerID:  e.ManagerID,
		HireDate:   e.HireDate,
		DeletedAt:  Timestamp{Time: t.UTC()},
	}
}
