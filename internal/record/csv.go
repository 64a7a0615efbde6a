package record

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Header returns the CSV header: the requested meta keys, then one column
// per ledger column label.
func (r *Record) Header(metaKeys ...string) []string {
	row := make([]string, 0, len(metaKeys)+len(r.Metadata.Ledger.Columns))
	row = append(row, metaKeys...)
	for _, c := range r.Metadata.Ledger.Columns {
		row = append(row, c.Label)
	}
	return row
}

// MarshalJournal converts a journal to a CSV row. Missing meta keys are
// left blank.
func MarshalJournal(j Journal, metaKeys ...string) []string {
	row := make([]string, 0, len(metaKeys)+len(j.Balances))
	for _, k := range metaKeys {
		row = append(row, j.Meta[k])
	}
	for _, b := range j.Balances {
		row = append(row, b.StringFixed(Places))
	}
	return row
}

// WriteCSV flattens rec into a time series, one row per journal.
func WriteCSV(w io.Writer, rec *Record, metaKeys ...string) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(rec.Header(metaKeys...)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, j := range rec.Journals {
		if err := cw.Write(MarshalJournal(j, metaKeys...)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
