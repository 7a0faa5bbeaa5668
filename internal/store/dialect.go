package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	"github.com/mesh-intelligence/shopledger/pkg/types"
)

// dialect captures what differs between the relational engines the ledger
// runs on. Query text is written with ? placeholders and rebound by sqlx.
type dialect interface {
	// driverName is the database/sql driver to open.
	driverName() string
	// dsn builds the connection string, preparing DataDir if needed.
	dsn(cfg types.Config) (string, error)
	// schema returns table, view and foreign-key DDL in creation order.
	schema() []string
	// lockRow is appended to a single-row SELECT to hold the row until commit.
	lockRow() string
	// deferConstraints makes foreign-key checks run at commit.
	deferConstraints() string
	// checkDeferred runs the deferred foreign-key checks inside tx so a
	// violation rolls back cleanly instead of failing the commit.
	checkDeferred(ctx context.Context, tx *sqlx.Tx) error
	// yearOf and monthOf extract integer calendar parts from a date column.
	yearOf(col string) string
	monthOf(col string) string
	// classify maps a driver error onto the ledger error taxonomy. It
	// returns nil when the error is not one the dialect recognises.
	classify(op string, err error) error
}

// dbFileName is the SQLite database file inside Config.DataDir.
const dbFileName = "ledger.db"

func dialectFor(backend string) (dialect, error) {
	switch backend {
	case types.BackendSQLite:
		sqlx.BindDriver("sqlite", sqlx.QUESTION)
		return sqliteDialect{}, nil
	case types.BackendPostgres:
		return postgresDialect{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, backend)
	}
}

type sqliteDialect struct{}

func (sqliteDialect) driverName() string { return "sqlite" }

// dsn enables foreign keys and WAL on every pooled connection and makes
// every transaction take the write lock at BEGIN, so a writer waits up to
// the busy timeout instead of failing on upgrade.
func (sqliteDialect) dsn(cfg types.Config) (string, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("creating data dir %s: %w", dataDir, err)
	}
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", cfg.EffectiveBusyTimeout().Milliseconds()))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Set("_txlock", "immediate")
	return "file:" + filepath.Join(dataDir, dbFileName) + "?" + q.Encode(), nil
}

func (sqliteDialect) schema() []string { return sqliteSchemaDDL }

// lockRow is empty: an immediate transaction already holds the database
// write lock.
func (sqliteDialect) lockRow() string { return "" }

func (sqliteDialect) deferConstraints() string { return "PRAGMA defer_foreign_keys = ON" }

func (sqliteDialect) checkDeferred(ctx context.Context, tx *sqlx.Tx) error {
	rows, err := tx.QueryContext(ctx, "PRAGMA foreign_key_check")
	if err != nil {
		return fmt.Errorf("checking foreign keys: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		var (
			table, parent string
			rowid         sql.NullInt64
			fkid          int
		)
		if err := rows.Scan(&table, &rowid, &parent, &fkid); err != nil {
			return fmt.Errorf("checking foreign keys: %w", err)
		}
		return &types.ConstraintViolationError{Table: table, Field: parent, Rule: types.RuleForeignKey, ID: rowid.Int64}
	}
	return rows.Err()
}

func (sqliteDialect) yearOf(col string) string {
	return "CAST(strftime('%Y', " + col + ") AS INTEGER)"
}

func (sqliteDialect) monthOf(col string) string {
	return "CAST(strftime('%m', " + col + ") AS INTEGER)"
}

func (sqliteDialect) classify(op string, err error) error { return classifySQLite(op, err) }

type postgresDialect struct{}

func (postgresDialect) driverName() string { return "pgx" }

func (postgresDialect) dsn(cfg types.Config) (string, error) {
	if cfg.DSN == "" {
		return "", types.ErrDSNRequired
	}
	return cfg.DSN, nil
}

func (postgresDialect) schema() []string { return pgSchemaDDL }

func (postgresDialect) lockRow() string { return " FOR UPDATE" }

func (postgresDialect) deferConstraints() string { return "SET CONSTRAINTS ALL DEFERRED" }

func (postgresDialect) checkDeferred(ctx context.Context, tx *sqlx.Tx) error {
	_, err := tx.ExecContext(ctx, "SET CONSTRAINTS ALL IMMEDIATE")
	return err
}

func (postgresDialect) yearOf(col string) string {
	return "CAST(EXTRACT(YEAR FROM " + col + ") AS INTEGER)"
}

func (postgresDialect) monthOf(col string) string {
	return "CAST(EXTRACT(MONTH FROM " + col + ") AS INTEGER)"
}

func (postgresDialect) classify(op string, err error) error { return classifyPostgres(op, err) }
