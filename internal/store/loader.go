package store

import (
	"bytes"
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/shopledger/pkg/types"
)

//go:embed seed/*.jsonl
var seedFS embed.FS

// LoadStats counts what a bulk load did with its records.
type LoadStats struct {
	Table      string `json:"table"`
	Inserted   int    `json:"inserted"`
	Duplicates int    `json:"duplicates"`
	Invalid    int    `json:"invalid"`
	Malformed  int    `json:"malformed"`
}

// loadBatch is one table's records within a bulk load.
type loadBatch struct {
	table     string
	records   []json.RawMessage
	malformed int
}

// LoadJSONL bulk-loads JSONL records into table in one transaction.
// Malformed lines and records failing validation are skipped and counted;
// records whose key or unique columns already exist are skipped as
// duplicates. Foreign keys are checked at commit, and a dangling reference
// rolls back the whole load. The inventory guard does not run.
func (b *Backend) LoadJSONL(ctx context.Context, table string, r io.Reader) (LoadStats, error) {
	if err := loadable(table); err != nil {
		return LoadStats{Table: table}, err
	}
	records, malformed, err := readJSONL(r)
	if err != nil {
		return LoadStats{Table: table}, err
	}
	stats, err := b.load(ctx, []loadBatch{{table: table, records: records, malformed: malformed}})
	if err != nil {
		return LoadStats{Table: table}, err
	}
	return stats[0], nil
}

// ImportFile loads a JSONL file into table. See LoadJSONL.
func (b *Backend) ImportFile(ctx context.Context, table, file string) (LoadStats, error) {
	f, err := os.Open(file)
	if err != nil {
		return LoadStats{Table: table}, fmt.Errorf("opening %s: %w", file, err)
	}
	defer f.Close()
	return b.LoadJSONL(ctx, table, f)
}

// Seed loads the built-in sample data. Rows whose ids already exist are
// skipped, so seeding twice changes nothing.
func (b *Backend) Seed(ctx context.Context) ([]LoadStats, error) {
	var batches []loadBatch
	for _, table := range types.StandardTableNames {
		data, err := seedFS.ReadFile(path.Join("seed", table+".jsonl"))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading seed for %s: %w", table, err)
		}
		records, malformed, err := readJSONL(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("reading seed for %s: %w", table, err)
		}
		batches = append(batches, loadBatch{table: table, records: records, malformed: malformed})
	}
	return b.load(ctx, batches)
}

func loadable(table string) error {
	if table == types.EmployeeAuditTable {
		return fmt.Errorf("%w: %s cannot be loaded", types.ErrReadOnlyTable, table)
	}
	if _, ok := types.PrimaryKeys[table]; !ok {
		return types.ErrTableNotFound
	}
	return nil
}

// load inserts every batch in order inside one transaction with foreign
// keys deferred to commit.
func (b *Backend) load(ctx context.Context, batches []loadBatch) ([]LoadStats, error) {
	release, err := b.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	loadID := newRef()
	stats := make([]LoadStats, len(batches))
	err = b.withTx(ctx, "bulk load", func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, b.dialect.deferConstraints()); err != nil {
			return fmt.Errorf("deferring constraints: %w", err)
		}
		touchesEmployees := false
		for i, batch := range batches {
			s, err := b.loadBatch(ctx, tx, batch)
			if err != nil {
				return err
			}
			stats[i] = s
			touchesEmployees = touchesEmployees || batch.table == types.EmployeesTable
		}
		if err := b.dialect.checkDeferred(ctx, tx); err != nil {
			return err
		}
		if touchesEmployees {
			return b.checkForest(ctx, tx)
		}
		return nil
	})
	if err != nil {
		b.log.Warn("bulk load rolled back", zap.String("load_id", loadID), zap.Error(err))
		return nil, err
	}
	for _, s := range stats {
		b.log.Info("table loaded",
			zap.String("load_id", loadID),
			zap.String("table", s.Table),
			zap.Int("inserted", s.Inserted),
			zap.Int("duplicates", s.Duplicates),
			zap.Int("invalid", s.Invalid),
			zap.Int("malformed", s.Malformed))
	}
	return stats, nil
}

// unreachableEmployeeSQL finds an employee no root reaches by following
// manager links down. With every reference resolved, such an employee
// sits on a manager cycle.
const unreachableEmployeeSQL = `
WITH RECURSIVE reachable (employee_id, depth) AS (
    SELECT employee_id, 0
    FROM employees
    WHERE manager_id IS NULL
    UNION ALL
    SELECT e.employee_id, r.depth + 1
    FROM employees e
    JOIN reachable r ON e.manager_id = r.employee_id
    WHERE r.depth < ?
)
SELECT employee_id
FROM employees
WHERE employee_id NOT IN (SELECT employee_id FROM reachable)
ORDER BY employee_id
LIMIT 1`

// checkForest fails when loaded manager links close a cycle. Loads skip
// the per-row cycle check, so the whole table is checked once at the end.
func (b *Backend) checkForest(ctx context.Context, tx *sqlx.Tx) error {
	var id int64
	err := tx.GetContext(ctx, &id, tx.Rebind(unreachableEmployeeSQL), maxHierarchyDepth)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking manager hierarchy: %w", err)
	}
	return &types.ConstraintViolationError{
		Table: types.EmployeesTable,
		Field: "manager_id",
		Rule:  types.RuleCycle,
		ID:    id,
	}
}

func (b *Backend) loadBatch(ctx context.Context, tx *sqlx.Tx, batch loadBatch) (LoadStats, error) {
	stats := LoadStats{Table: batch.table, Malformed: batch.malformed}
	table := b.tables[batch.table]
	for _, rec := range batch.records {
		entity := table.newEntity()
		if err := json.Unmarshal(rec, entity); err != nil {
			stats.Malformed++
			continue
		}
		b.applyDefaults(entity)
		if err := types.ValidateEntity(batch.table, entity); err != nil {
			b.log.Debug("record skipped", zap.String("table", batch.table), zap.Error(err))
			stats.Invalid++
			continue
		}
		inserted, err := table.insert(ctx, tx, table.fieldMap(entity), true)
		if err != nil {
			return stats, err
		}
		if inserted {
			stats.Inserted++
		} else {
			stats.Duplicates++
		}
	}
	return stats, nil
}

// ExportTableJSONL writes every row of table to file as JSONL, ordered by
// primary key. The file is replaced atomically.
func (b *Backend) ExportTableJSONL(ctx context.Context, table, file string) (int, error) {
	t, err := b.GetTable(table)
	if err != nil {
		return 0, err
	}
	rows, err := t.Fetch(ctx, nil)
	if err != nil {
		return 0, err
	}
	records := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return 0, fmt.Errorf("encoding %s row: %w", table, err)
		}
		records = append(records, data)
	}
	if err := writeJSONL(file, records); err != nil {
		return 0, fmt.Errorf("exporting %s: %w", table, err)
	}
	return len(records), nil
}
