package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// layout describes where a statement format keeps each field. A negative
// index means the format has no such field.
type layout struct {
	name       string
	fields     int
	dateLayout string
	date       int
	desc       int
	amount     int
	kind       int
}

var (
	// Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #
	chaseLayout = layout{name: "chase", fields: 7, dateLayout: "01/02/2006", date: 1, desc: 2, amount: 3, kind: 4}
	// date,description,amount
	plainLayout = layout{name: "plain", fields: 3, dateLayout: time.DateOnly, date: 0, desc: 1, amount: 2, kind: -1}
)

// ChaseParser parses Chase bank checking CSV exports.
type ChaseParser struct{}

// Format returns the parser name.
func (p *ChaseParser) Format() string { return chaseLayout.name }

// Parse reads a Chase CSV.
func (p *ChaseParser) Parse(r io.Reader) ([]Transaction, error) { return chaseLayout.parse(r) }

// PlainParser reads "date,description,amount" files with ISO dates.
type PlainParser struct{}

// Format returns the parser name.
func (p *PlainParser) Format() string { return plainLayout.name }

// Parse reads a plain CSV. The first row is a header.
func (p *PlainParser) Parse(r io.Reader) ([]Transaction, error) { return plainLayout.parse(r) }

func (lay layout) parse(r io.Reader) ([]Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = lay.fields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s CSV: %w", lay.name, err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	txns := make([]Transaction, 0, len(records)-1)
	for i, rec := range records[1:] {
		txn, err := lay.row(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func (lay layout) row(rec []string) (Transaction, error) {
	raw := strings.TrimSpace(rec[lay.date])
	date, err := time.Parse(lay.dateLayout, raw)
	if err != nil {
		return Transaction{}, fmt.Errorf("parsing date %q: %w", raw, err)
	}
	raw = strings.TrimSpace(rec[lay.amount])
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return Transaction{}, fmt.Errorf("parsing amount %q: %w", raw, err)
	}

	txn := Transaction{
		Date:        date,
		Description: rec[lay.desc],
		Amount:      amount,
		Reference:   reference(lay.name, date, rec[lay.desc]),
	}
	if lay.kind >= 0 {
		txn.Type = rec[lay.kind]
	}
	return txn, nil
}

// reference builds an ID like chase_20130103_GITHUBPROS from the first ten
// alphanumerics of the description.
func reference(bank string, date time.Time, desc string) string {
	var b strings.Builder
	for _, r := range desc {
		if b.Len() == 10 {
			break
		}
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return bank + "_" + date.Format("20060102") + "_" + b.String()
}
