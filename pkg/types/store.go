package types

// Store is a retail outlet. ManagerID references an employee and becomes
// nil when that employee is deleted.
type Store struct {
	StoreID   int64  `db:"store_id" json:"store_id" validate:"gt=0"`
	Name      string `db:"name" json:"name" validate:"required,max=255"`
	Location  string `db:"location" json:"location" validate:"required,max=255"`
	ManagerID *int64 `db:"manager_id" json:"manager_id" validate:"omitempty,gt=0"`
}
