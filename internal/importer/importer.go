// Package importer reads bank statements and turns them into book entries.
package importer

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallywallet/tallywallet/internal/config"
	"github.com/tallywallet/tallywallet/internal/ledger"
)

// Transaction is one statement row.
type Transaction struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal // negative = money out, positive = money in
	Reference   string
	Type        string // bank transaction type (ACH_DEBIT, etc.)
}

// Parser converts a statement CSV file into Transactions.
type Parser interface {
	Parse(r io.Reader) ([]Transaction, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Formats lists the registered formats, sorted.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.parsers))
	for k := range r.parsers {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&ChaseParser{})
	r.Register(&PlainParser{})
	return r
}

// ParseFile opens path and parses it with the parser registered for format.
func (r *Registry) ParseFile(path, format string) ([]Transaction, error) {
	p := r.Get(format)
	if p == nil {
		return nil, fmt.Errorf("unknown statement format %q (want one of %v)", format, r.Formats())
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()
	return p.Parse(f)
}

// Entries turns txns into book entries, oldest first. Each transaction
// posts its amount to account and balances it in counter: the opposite
// amount when both sit on the same side of the equation, the same amount
// otherwise.
func Entries(txns []Transaction, account, counter ledger.Column) ([]config.Entry, error) {
	for _, c := range []ledger.Column{account, counter} {
		if c.IsTrading() {
			return nil, fmt.Errorf("importing into %s: %w", c.Name(), ledger.ErrTradingColumn)
		}
	}
	if account.Currency != counter.Currency {
		return nil, fmt.Errorf("%s is in %s but %s is in %s", account.Name(), account.Currency, counter.Name(), counter.Currency)
	}
	if account == counter {
		return nil, fmt.Errorf("account and counter are both %s", account.Name())
	}

	sorted := slices.Clone(txns)
	slices.SortStableFunc(sorted, func(a, b Transaction) int { return a.Date.Compare(b.Date) })

	mirror := account.Role.Side() == counter.Role.Side()
	entries := make([]config.Entry, 0, len(sorted))
	for _, t := range sorted {
		other := t.Amount
		if mirror {
			other = other.Neg()
		}
		entries = append(entries, config.Entry{
			Date: t.Date.Format(time.DateOnly),
			Note: t.Description,
			Postings: []config.Posting{
				{Column: account.Name(), Amount: t.Amount},
				{Column: counter.Name(), Amount: other},
			},
		})
	}
	return entries, nil
}
