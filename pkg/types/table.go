package types

import (
	"context"
	"errors"
)

// Table provides uniform CRUD operations for a single entity kind.
// Get and Fetch return any; callers type-assert to the concrete entity
// pointer (*Store, *Employee, ...).
type Table interface {
	// Get retrieves the entity with the given ID.
	// Returns a NotFoundError if no row exists with that ID.
	Get(ctx context.Context, id int64) (any, error)

	// Create inserts a new entity. data must be a pointer to the table's
	// entity type. Check, uniqueness and foreign-key rules are enforced;
	// a missing referenced row fails with NotFoundError.
	Create(ctx context.Context, data any) error

	// Update applies fields (keyed by column name) onto the stored row,
	// re-validates the whole row, and writes it. Nothing changes on failure.
	Update(ctx context.Context, id int64, fields map[string]any) (any, error)

	// Delete removes the entity and applies the relationship policies of
	// every dependent table.
	Delete(ctx context.Context, id int64) error

	// Fetch returns all entities matching the filter, ordered by primary
	// key. An empty filter returns every entity in the table.
	Fetch(ctx context.Context, filter Filter) ([]any, error)
}

// Filter matches rows by column equality. A nil value matches NULL.
type Filter map[string]any

// Table operation errors.
var (
	ErrInvalidID     = errors.New("invalid entity ID")
	ErrInvalidData   = errors.New("invalid entity data")
	ErrInvalidFilter = errors.New("invalid filter")
	ErrReadOnlyTable = errors.New("table is read-only")
)
