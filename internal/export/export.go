package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mesh-intelligence/shopledger/pkg/types"
)

// Format selects the output encoding.
type Format string

// Supported formats.
const (
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
)

// ErrUnknownFormat is returned for a format other than csv or jsonl.
var ErrUnknownFormat = errors.New("unknown export format")

// ErrUnsupportedReport is returned when rows are not a known report type.
var ErrUnsupportedReport = errors.New("unsupported report type")

// ParseFormat accepts "csv" or "jsonl" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSONL:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Ext is the file extension for the format, without the dot.
func (f Format) Ext() string { return string(f) }

// Write encodes a report's rows in format f.
func Write(w io.Writer, f Format, rows any) error {
	switch f {
	case FormatJSONL:
		return writeJSONLAny(w, rows)
	case FormatCSV:
		return writeCSVAny(w, rows)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

func writeCSVAny(w io.Writer, rows any) error {
	switch r := rows.(type) {
	case []types.TopSellingProduct:
		return WriteTopProductsCSV(w, r)
	case []types.StoreRevenue:
		return WriteStoreRevenueCSV(w, r)
	case []types.HierarchyNode:
		return WriteHierarchyCSV(w, r)
	case []types.CustomerSpending:
		return WriteCustomerSpendingCSV(w, r)
	case []types.MonthlySales:
		return WriteMonthlySalesCSV(w, r)
	case []types.StoreSales:
		return WriteSalesCSV(w, r)
	case []types.Order:
		return WriteOrdersCSV(w, r)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedReport, rows)
	}
}

func writeJSONLAny(w io.Writer, rows any) error {
	switch r := rows.(type) {
	case []types.TopSellingProduct:
		return WriteJSONL(w, r)
	case []types.StoreRevenue:
		return WriteJSONL(w, r)
	case []types.HierarchyNode:
		return WriteJSONL(w, r)
	case []types.CustomerSpending:
		return WriteJSONL(w, r)
	case []types.MonthlySales:
		return WriteJSONL(w, r)
	case []types.StoreSales:
		return WriteJSONL(w, r)
	case []types.Order:
		return WriteJSONL(w, r)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedReport, rows)
	}
}

// WriteJSONL writes one JSON object per line.
func WriteJSONL[T any](w io.Writer, rows []T) error {
	enc := json.NewEncoder(w)
	for i := range rows {
		if err := enc.Encode(rows[i]); err != nil {
			return fmt.Errorf("encoding row %d: %w", i, err)
		}
	}
	return nil
}
