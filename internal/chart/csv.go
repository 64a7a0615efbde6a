package chart

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tallywallet/tallywallet/internal/currency"
	"github.com/tallywallet/tallywallet/internal/ledger"
)

// Header is the CSV header for a column file.
var Header = []string{"key", "currency", "role", "label"}

const (
	numFields = 4
	colKey    = 0
	colCur    = 1
	colRole   = 2
	colLabel  = 3
)

// ReadColumns reads a column CSV file. Trading accounts are refused: the
// ledger creates them.
func ReadColumns(r io.Reader) ([]ledger.Column, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading columns CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var cols []ledger.Column
	for i, rec := range records[1:] {
		col, err := UnmarshalColumn(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// WriteColumns writes cols with a header. Trading accounts are skipped.
func WriteColumns(w io.Writer, cols []ledger.Column) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	row := 2
	for _, col := range cols {
		if col.IsTrading() {
			continue
		}
		if err := cw.Write(MarshalColumn(col)); err != nil {
			return fmt.Errorf("writing row %d: %w", row, err)
		}
		row++
	}
	cw.Flush()
	return cw.Error()
}

// MarshalColumn converts a Column to a CSV row.
func MarshalColumn(col ledger.Column) []string {
	row := make([]string, numFields)
	row[colKey] = col.Key
	row[colCur] = col.Currency.Code()
	row[colRole] = string(col.Role)
	row[colLabel] = col.Label
	return row
}

// UnmarshalColumn converts a CSV row to a Column.
func UnmarshalColumn(record []string) (ledger.Column, error) {
	if len(record) != numFields {
		return ledger.Column{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	if record[colKey] == "" {
		return ledger.Column{}, fmt.Errorf("empty key")
	}

	cur, err := currency.Parse(record[colCur])
	if err != nil {
		return ledger.Column{}, fmt.Errorf("parsing currency: %w", err)
	}
	role, err := ledger.ParseRole(record[colRole])
	if err != nil {
		return ledger.Column{}, fmt.Errorf("parsing role: %w", err)
	}
	if role == ledger.RoleTrading {
		return ledger.Column{}, fmt.Errorf("column %q: %w", record[colKey], ledger.ErrTradingRole)
	}

	return ledger.NewColumn(record[colKey], cur, role, record[colLabel]), nil
}

// Load reads a column CSV file from disk.
func Load(path string) ([]ledger.Column, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening columns file: %w", err)
	}
	defer f.Close()

	cols, err := ReadColumns(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return cols, nil
}

// Save writes cols to path, creating parent directories.
func Save(path string, cols []ledger.Column) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating columns dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating columns file: %w", err)
	}
	defer f.Close()

	if err := WriteColumns(f, cols); err != nil {
		return fmt.Errorf("writing columns: %w", err)
	}
	return nil
}
