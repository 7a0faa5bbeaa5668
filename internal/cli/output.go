package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/mesh-intelligence/shopledger/internal/export"
	"github.com/mesh-intelligence/shopledger/internal/store"
	"github.com/mesh-intelligence/shopledger/pkg/types"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printReport writes report rows as JSON or as an aligned table.
func printReport(w io.Writer, jsonMode bool, rows any) error {
	if jsonMode {
		return printJSON(w, rows)
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, export.FormatCSV, rows); err != nil {
		return err
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		return err
	}
	return printTable(w, records)
}

func printTable(w io.Writer, records [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, rec := range records {
		fmt.Fprintln(tw, strings.Join(rec, "\t"))
	}
	return tw.Flush()
}

func printLoadStats(w io.Writer, jsonMode bool, stats []store.LoadStats) error {
	if jsonMode {
		return printJSON(w, stats)
	}
	records := [][]string{{"TABLE", "INSERTED", "DUPLICATES", "INVALID", "MALFORMED"}}
	for _, s := range stats {
		records = append(records, []string{
			s.Table,
			strconv.Itoa(s.Inserted),
			strconv.Itoa(s.Duplicates),
			strconv.Itoa(s.Invalid),
			strconv.Itoa(s.Malformed),
		})
	}
	return printTable(w, records)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, usageError(fmt.Errorf("%w: %q", types.ErrInvalidID, s))
	}
	return id, nil
}

// parseFilter turns column=value pairs into a Filter. "null" matches NULL
// and integers are compared as numbers.
func parseFilter(pairs []string) (types.Filter, error) {
	filter := types.Filter{}
	for _, p := range pairs {
		col, val, ok := strings.Cut(p, "=")
		if !ok || col == "" {
			return nil, usageError(fmt.Errorf("%w: %q is not column=value", types.ErrInvalidFilter, p))
		}
		switch {
		case val == "null":
			filter[col] = nil
		default:
			if n, err := strconv.ParseInt(val, 10, 64); err == nil {
				filter[col] = n
			} else {
				filter[col] = val
			}
		}
	}
	return filter, nil
}

// readPayload returns arg itself, or standard input when arg is "-".
func readPayload(arg string, stdin io.Reader) ([]byte, error) {
	if arg != "-" {
		return []byte(arg), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, systemError(fmt.Errorf("reading stdin: %w", err))
	}
	return data, nil
}

// decodeEntity unmarshals data into the entity type of table. Unknown
// fields are rejected.
func decodeEntity(table string, data []byte) (any, error) {
	entity := types.NewEntity(table)
	if entity == nil {
		return nil, tableNotFound(table)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(entity); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	return entity, nil
}

func decodeFields(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	return fields, nil
}

func tableNotFound(table string) error {
	return fmt.Errorf("%w: %q (valid: %s)", types.ErrTableNotFound, table, strings.Join(types.StandardTableNames, ", "))
}
