// Package record writes a ledger's history as a stream of YAML documents:
// one metadata block describing the columns, then one journal block of
// balances per point in time. Appending journal blocks to an existing stream
// keeps it valid.
package record

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/tallywallet/tallywallet/internal/currency"
	"github.com/tallywallet/tallywallet/internal/ledger"
)

// FormatVersion identifies the layout of the metadata and journal blocks.
const FormatVersion = "0.002"

const separator = "---\n"

var (
	ErrEmpty        = errors.New("record has no metadata block")
	ErrNoColumns    = errors.New("metadata lists no columns")
	ErrBalanceCount = errors.New("balance count does not match columns")
)

// Header carries the format version.
type Header struct {
	Version string `yaml:"version"`
}

// ColumnRow describes one ledger column by resolved label.
type ColumnRow struct {
	Label    string
	Currency string
	Role     string
}

func (c ColumnRow) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range []string{c.Label, c.Currency, c.Role} {
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v})
	}
	return n, nil
}

func (c *ColumnRow) UnmarshalYAML(n *yaml.Node) error {
	var fields []string
	if err := n.Decode(&fields); err != nil {
		return err
	}
	if len(fields) != 3 {
		return fmt.Errorf("line %d: column row has %d fields, want 3", n.Line, len(fields))
	}
	c.Label, c.Currency, c.Role = fields[0], fields[1], fields[2]
	return nil
}

// Book is the ledger section of the metadata block.
type Book struct {
	Ref     string      `yaml:"ref"`
	Columns []ColumnRow `yaml:"columns"`
}

// Metadata is written once at the top of a record.
type Metadata struct {
	Header Header `yaml:"header"`
	Ledger Book   `yaml:"ledger"`
}

// Journal is a snapshot of every balance, in column order.
type Journal struct {
	Meta     map[string]string `yaml:"meta,omitempty"`
	Balances []Figure          `yaml:"balances,flow"`
}

// Record is a parsed stream.
type Record struct {
	Metadata Metadata
	Journals []Journal
}

// NewMetadata describes every column of l, trading accounts included.
func NewMetadata(l *ledger.Ledger) Metadata {
	cols := l.Columns()
	m := Metadata{
		Header: Header{Version: FormatVersion},
		Ledger: Book{Ref: l.Ref().Code(), Columns: make([]ColumnRow, 0, len(cols))},
	}
	for _, c := range cols {
		m.Ledger.Columns = append(m.Ledger.Columns, ColumnRow{
			Label:    c.Name(),
			Currency: c.Currency.Code(),
			Role:     string(c.Role),
		})
	}
	return m
}

// NewJournal snapshots the balances of l.
func NewJournal(l *ledger.Ledger, meta ledger.Meta) Journal {
	cols := l.Columns()
	j := Journal{Balances: make([]Figure, 0, len(cols))}
	if len(meta) > 0 {
		j.Meta = make(map[string]string, len(meta))
		for k, v := range meta {
			j.Meta[k] = v
		}
	}
	for _, c := range cols {
		v, _ := l.Value(c)
		j.Balances = append(j.Balances, FigureOf(v))
	}
	return j
}

// Rebuild creates an empty ledger with the columns m describes, in the same
// order, so journal balances line up with its Columns. Each ordinary column
// is keyed by its resolved label.
func (m Metadata) Rebuild() (*ledger.Ledger, error) {
	ref, err := currency.Parse(m.Ledger.Ref)
	if err != nil {
		return nil, fmt.Errorf("ledger ref: %w", err)
	}
	cols := make([]ledger.Column, 0, len(m.Ledger.Columns))
	for i, row := range m.Ledger.Columns {
		role, err := ledger.ParseRole(row.Role)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+1, err)
		}
		cur, err := currency.Parse(row.Currency)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+1, err)
		}
		cols = append(cols, ledger.NewColumn(row.Label, cur, role, ""))
	}
	return ledger.Restore(ref, cols...)
}

// WriteMetadata starts a record for l.
func WriteMetadata(w io.Writer, l *ledger.Ledger) error {
	if err := writeDoc(w, NewMetadata(l)); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	return nil
}

// WriteJournal appends a snapshot of l to a record.
func WriteJournal(w io.Writer, l *ledger.Ledger, meta ledger.Meta) error {
	if err := writeDoc(w, NewJournal(l, meta)); err != nil {
		return fmt.Errorf("writing journal: %w", err)
	}
	return nil
}

func writeDoc(w io.Writer, v any) error {
	if _, err := io.WriteString(w, separator); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Read parses a record and checks every journal against the column count.
func Read(r io.Reader) (*Record, error) {
	dec := yaml.NewDecoder(r)

	var rec Record
	if err := dec.Decode(&rec.Metadata); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}
	n := len(rec.Metadata.Ledger.Columns)
	if n == 0 {
		return nil, ErrNoColumns
	}

	for i := 1; ; i++ {
		var j Journal
		err := dec.Decode(&j)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding journal %d: %w", i, err)
		}
		if len(j.Balances) != n {
			return nil, fmt.Errorf("journal %d: %w: got %d, want %d", i, ErrBalanceCount, len(j.Balances), n)
		}
		rec.Journals = append(rec.Journals, j)
	}
	return &rec, nil
}
