// Package audit keeps a CSV trail of the commits a book run applied.
package audit

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tallywallet/tallywallet/internal/ledger"
)

// Kinds of commit.
const (
	KindAmount      = "amount"
	KindRevaluation = "revaluation"
)

// Entry is one row of the audit trail.
type Entry struct {
	EntryID   string
	PostingID string
	Column    string
	Currency  string
	Kind      string
	Value     decimal.Decimal // the amount posted, or the revaluation gain
	Rates     string
	Status    ledger.Status
	Error     string
}

// Header is the CSV header for an audit file.
const Header = "entry,posting,column,currency,kind,value,rates,status,error"

const (
	numFields   = 9
	colEntryID  = 0
	colPosting  = 1
	colColumn   = 2
	colCurrency = 3
	colKind     = 4
	colValue    = 5
	colRates    = 6
	colStatus   = 7
	colError    = 8
)

// FromResult describes a commit result. Entry and posting IDs come from
// the commit's meta.
func FromResult(r ledger.Result) Entry {
	e := Entry{
		EntryID:   r.Meta["entry"],
		PostingID: r.Meta["posting"],
		Column:    r.Column.Name(),
		Currency:  r.Column.Currency.Code(),
		Status:    r.Status,
	}
	switch v := r.Value.(type) {
	case ledger.Amount:
		e.Kind, e.Value = KindAmount, v.Decimal()
	case *ledger.Amount:
		if v != nil {
			e.Kind, e.Value = KindAmount, v.Decimal()
		}
	case ledger.Revaluation:
		e.Kind, e.Value = KindRevaluation, v.Gain
	case *ledger.Revaluation:
		if v != nil {
			e.Kind, e.Value = KindRevaluation, v.Gain
		}
	}
	if r.Exchange != nil && r.Exchange.Len() > 0 {
		e.Rates = r.Exchange.String()
	}
	if r.Err != nil {
		e.Error = r.Err.Error()
	}
	return e
}

// FromResults describes every result, in order.
func FromResults(results []ledger.Result) []Entry {
	out := make([]Entry, 0, len(results))
	for _, r := range results {
		out = append(out, FromResult(r))
	}
	return out
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colEntryID] = e.EntryID
	row[colPosting] = e.PostingID
	row[colColumn] = e.Column
	row[colCurrency] = e.Currency
	row[colKind] = e.Kind
	row[colValue] = e.Value.String()
	row[colRates] = e.Rates
	row[colStatus] = string(e.Status)
	row[colError] = e.Error
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	value, err := decimal.NewFromString(record[colValue])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing value %q: %w", record[colValue], err)
	}

	switch record[colKind] {
	case KindAmount, KindRevaluation:
	default:
		return Entry{}, fmt.Errorf("unknown kind %q", record[colKind])
	}

	return Entry{
		EntryID:   record[colEntryID],
		PostingID: record[colPosting],
		Column:    record[colColumn],
		Currency:  record[colCurrency],
		Kind:      record[colKind],
		Value:     value,
		Rates:     record[colRates],
		Status:    ledger.Status(record[colStatus]),
		Error:     record[colError],
	}, nil
}

// Append writes entries to path, creating the file and header if needed.
func Append(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating audit dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from path. A missing file reads as empty.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading audit CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
