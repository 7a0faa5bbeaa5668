package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mesh-intelligence/shopledger/pkg/types"
)

// classifyErr maps err onto the ledger taxonomy. Errors that already carry
// a taxonomy sentinel pass through unchanged; unrecognised errors are
// wrapped with op.
func (b *Backend) classifyErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if isTaxonomy(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if mapped := b.dialect.classify(op, err); mapped != nil {
		return mapped
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return &types.TransientError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isTaxonomy(err error) bool {
	return errors.Is(err, types.ErrConstraintViolation) ||
		errors.Is(err, types.ErrNotFound) ||
		errors.Is(err, types.ErrInsufficientStock) ||
		errors.Is(err, types.ErrTransientUnavailable) ||
		errors.Is(err, types.ErrInvalidData) ||
		errors.Is(err, types.ErrInvalidFilter) ||
		errors.Is(err, types.ErrReadOnlyTable)
}

// classifySQLite uses the extended result code of a modernc sqlite error.
func classifySQLite(op string, err error) error {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return nil
	}
	code := se.Code()
	switch code & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return &types.TransientError{Op: op, Err: err}
	case sqlite3.SQLITE_CONSTRAINT:
		table, field := constraintTarget(se.Error())
		cv := &types.ConstraintViolationError{Table: table, Field: field, Rule: types.RuleCheck}
		switch code {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			cv.Rule = types.RuleUnique
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			cv.Rule = types.RuleRequired
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			cv.Rule = types.RuleForeignKey
		}
		return cv
	}
	return nil
}

// constraintTarget pulls "table.column" out of a SQLite constraint message
// such as "UNIQUE constraint failed: customers.email".
func constraintTarget(msg string) (table, field string) {
	i := strings.LastIndex(msg, "failed: ")
	if i < 0 {
		return "", ""
	}
	target := strings.TrimSpace(msg[i+len("failed: "):])
	if j := strings.IndexAny(target, ", )"); j >= 0 {
		target = target[:j]
	}
	if t, f, ok := strings.Cut(target, "."); ok {
		return t, f
	}
	return "", target
}

// classifyPostgres maps SQLSTATE codes.
func classifyPostgres(op string, err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
			return &types.TransientError{Op: op, Err: err}
		}
		return nil
	}
	switch pgErr.Code {
	case "23505":
		return &types.ConstraintViolationError{Table: pgErr.TableName, Field: pgErr.ColumnName, Rule: types.RuleUnique}
	case "23514":
		return &types.ConstraintViolationError{Table: pgErr.TableName, Field: pgErr.ConstraintName, Rule: types.RuleCheck}
	case "23502":
		return &types.ConstraintViolationError{Table: pgErr.TableName, Field: pgErr.ColumnName, Rule: types.RuleRequired}
	case "23503":
		return &types.ConstraintViolationError{Table: pgErr.TableName, Field: pgErr.ConstraintName, Rule: types.RuleForeignKey}
	case "40001", "40P01", "55P03", "57P01", "57P02", "57P03":
		return &types.TransientError{Op: op, Err: err}
	}
	if strings.HasPrefix(pgErr.Code, "08") {
		return &types.TransientError{Op: op, Err: err}
	}
	return nil
}
