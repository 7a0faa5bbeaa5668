// Package ledger provides the public API for creating ledger backends.
// It exposes the factory while keeping the engine internal.
package ledger

import (
	"context"

	"github.com/mesh-intelligence/shopledger/internal/store"
	"github.com/mesh-intelligence/shopledger/pkg/types"
)

// Option configures a backend.
type Option = store.Option

// WithLogger sets the backend logger. The default discards everything.
var WithLogger = store.WithLogger

// WithClock replaces time.Now for audit timestamps and date defaults.
var WithClock = store.WithClock

// New creates a ledger backend. The backend is not attached; call Attach
// with a Config to open the database.
//
// Example:
//
//	l := ledger.New()
//	err := l.Attach(ctx, types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: "./data",
//	})
//	defer l.Detach()
func New(opts ...Option) types.Operations {
	return store.NewBackend(opts...)
}

// Open creates a backend and attaches it to config.
func Open(ctx context.Context, config types.Config, opts ...Option) (types.Operations, error) {
	l := store.NewBackend(opts...)
	if err := l.Attach(ctx, config); err != nil {
		return nil, err
	}
	return l, nil
}
