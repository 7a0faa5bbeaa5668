// Package store implements the retail ledger on a relational engine.
//
// A Backend owns one database handle (SQLite through modernc.org/sqlite or
// PostgreSQL through pgx) and exposes the entity tables, the two rule-bound
// mutations, and the read projections. Business rules run in Go inside one
// transaction per logical operation:
//
//   - deletes walk the declarative relation list (types.Relations) so every
//     delete path applies the same cascade and set-null policy;
//   - order-item inserts run the inventory guard under a per-product lock
//     plus a conditional decrement;
//   - employee deletes write an audit snapshot before any row changes.
//
// The engine's own CHECK, UNIQUE and FOREIGN KEY constraints stay in place
// as a backstop and are mapped onto the same error taxonomy.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/shopledger/pkg/types"
)

// Backend implements types.Operations.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sqlx.DB
	dialect  dialect
	tables   map[string]*Table

	log          *zap.Logger
	now          func() time.Time
	locks        *rowLocks
	relations    []types.Relation
	beforeDelete map[string]deleteHook
}

var _ types.Operations = (*Backend)(nil)

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(b *Backend) {
		if log != nil {
			b.log = log
		}
	}
}

// WithClock replaces time.Now for audit timestamps and date defaults.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBackend creates a backend. It is not attached; call Attach with a
// Config to open the database.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		tables:    make(map[string]*Table),
		log:       zap.NewNop(),
		now:       time.Now,
		locks:     newRowLocks(),
		relations: types.Relations,
	}
	b.beforeDelete = map[string]deleteHook{
		types.EmployeesTable: b.auditEmployees,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// GetTable returns a Table for the specified table name.
// Returns ErrTableNotFound if the name is not recognised and
// ErrLedgerDetached if the backend is not attached.
func (b *Backend) GetTable(name string) (types.Table, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrLedgerDetached
	}
	table, ok := b.tables[name]
	if !ok {
		return nil, types.ErrTableNotFound
	}
	return table, nil
}

// Attach opens the database described by config and applies the schema.
// The schema is created only where missing, so data persists across
// attaches. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(ctx context.Context, config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	d, err := dialectFor(config.Backend)
	if err != nil {
		return err
	}
	dsn, err := d.dsn(config)
	if err != nil {
		return err
	}
	db, err := sqlx.Open(d.driverName(), dsn)
	if err != nil {
		return fmt.Errorf("opening %s: %w", config.Backend, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return &types.TransientError{Op: "connecting to " + config.Backend, Err: err}
	}

	b.db = db
	b.dialect = d
	if err := b.applySchema(ctx); err != nil {
		db.Close()
		b.db = nil
		return err
	}

	b.config = config
	b.attached = true
	for _, name := range types.StandardTableNames {
		b.tables[name] = newTable(b, name)
	}

	b.log.Info("ledger attached",
		zap.String("backend", config.Backend),
		zap.String("data_dir", config.DataDir))
	return nil
}

// applySchema creates tables, foreign keys, views and indexes in one
// transaction.
func (b *Backend) applySchema(ctx context.Context) error {
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return &types.TransientError{Op: "applying schema", Err: err}
	}
	defer tx.Rollback()

	stmts := append(append([]string{}, b.dialect.schema()...), indexDDL...)
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema: %w", err)
	}
	b.log.Debug("schema applied", zap.Int("statements", len(stmts)))
	return nil
}

// Detach releases all resources held by the backend. After Detach, all
// operations return ErrLedgerDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.attached = false
	b.tables = make(map[string]*Table)
	b.log.Info("ledger detached")
	return nil
}

// acquire holds the attach state for the duration of one operation.
func (b *Backend) acquire() (func(), error) {
	b.mu.RLock()
	if !b.attached {
		b.mu.RUnlock()
		return nil, types.ErrLedgerDetached
	}
	return b.mu.RUnlock, nil
}

// withTx runs fn as one unit of work. Any error rolls the whole unit back
// and is mapped onto the error taxonomy.
func (b *Backend) withTx(ctx context.Context, op string, fn func(tx *sqlx.Tx) error) error {
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &types.TransientError{Op: op, Err: err}
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return b.classifyErr(op, err)
	}
	if err := tx.Commit(); err != nil {
		return b.classifyErr(op, err)
	}
	return nil
}

func (b *Backend) rebind(query string) string {
	return b.db.Rebind(query)
}

// today is the creation-day default for date columns.
func (b *Backend) today() types.Date {
	return types.NewDate(b.now())
}

// newRef generates a UUID v7 reference.
func newRef() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
