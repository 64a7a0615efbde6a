// Package book replays the entries of a tally.yaml file against a fresh
// ledger and writes the resulting record.
package book

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/tallywallet/tallywallet/internal/config"
	"github.com/tallywallet/tallywallet/internal/exchange"
	"github.com/tallywallet/tallywallet/internal/id"
	"github.com/tallywallet/tallywallet/internal/ledger"
	"github.com/tallywallet/tallywallet/internal/logging"
	"github.com/tallywallet/tallywallet/internal/record"
)

// MetaKeys are the journal meta keys Run writes, in CSV column order.
var MetaKeys = []string{"entry", "ts", "note", "status"}

// Step is the outcome of one entry.
type Step struct {
	Entry    string
	Date     string
	Note     string
	Equation ledger.Equation
}

// Summary is the outcome of a run.
type Summary struct {
	Steps   []Step
	Commits []ledger.Result
	Ledger  *ledger.Ledger
}

// Final returns the equation after the last entry, or that of the empty
// ledger when there were none.
func (s Summary) Final() ledger.Equation {
	if len(s.Steps) > 0 {
		return s.Steps[len(s.Steps)-1].Equation
	}
	if s.Ledger != nil {
		return s.Ledger.Equation()
	}
	return ledger.Equation{}
}

// OK reports whether the books balanced after the last entry.
func (s Summary) OK() bool { return s.Final().OK() }

// Unbalanced lists the steps whose equation did not hold.
func (s Summary) Unbalanced() []Step {
	var out []Step
	for _, st := range s.Steps {
		if !st.Equation.OK() {
			out = append(out, st)
		}
	}
	return out
}

// Build creates the empty ledger cfg describes. Duplicate labels are logged;
// postings to them reach the first such column.
func Build(cfg *config.Config, logger *slog.Logger) (*ledger.Ledger, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	ref, err := cfg.RefCurrency()
	if err != nil {
		return nil, err
	}
	cols, err := cfg.Columns()
	if err != nil {
		return nil, err
	}
	l, err := ledger.New(ref, cols...)
	if err != nil {
		return nil, fmt.Errorf("creating ledger: %w", err)
	}
	l.SetLogger(logger)
	if err := l.CheckLabels(); err != nil {
		logger.Warn("ambiguous column labels", "error", err)
	}
	return l, nil
}

// Run replays every entry and writes the record to w, as a YAML stream or
// as CSV depending on cfg.Output.Format. An entry that leaves the books
// unbalanced is logged and recorded with status failed; it does not stop
// the run.
func Run(cfg *config.Config, w io.Writer, logger *slog.Logger) (Summary, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	if err := cfg.Validate(); err != nil {
		return Summary{}, fmt.Errorf("invalid book: %w", err)
	}
	l, err := Build(cfg, logger)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{Ledger: l}

	out := w
	var buf bytes.Buffer
	if cfg.Output.Format == config.FormatCSV {
		out = &buf
	}

	if err := record.WriteMetadata(out, l); err != nil {
		return sum, err
	}

	var seq id.Sequencer
	for i, e := range cfg.Entries {
		step, commits, err := apply(l, e, &seq)
		sum.Commits = append(sum.Commits, commits...)
		if err != nil {
			return sum, fmt.Errorf("entry %d (%s): %w", i+1, e.Date, err)
		}
		sum.Steps = append(sum.Steps, step)

		if step.Equation.OK() {
			logger.Debug("entry applied", "entry", step.Entry, "equation", step.Equation.String())
		} else {
			logger.Warn("books do not balance", "entry", step.Entry, "date", step.Date, "equation", step.Equation.String())
		}

		meta := ledger.Meta{"entry": step.Entry, "ts": step.Date, "status": string(step.Equation.Status)}
		if step.Note != "" {
			meta["note"] = step.Note
		}
		if err := record.WriteJournal(out, l, meta); err != nil {
			return sum, err
		}
	}

	if cfg.Output.Format == config.FormatCSV {
		rec, err := record.Read(&buf)
		if err != nil {
			return sum, fmt.Errorf("re-reading record: %w", err)
		}
		if err := record.WriteCSV(w, rec, MetaKeys...); err != nil {
			return sum, fmt.Errorf("writing CSV: %w", err)
		}
	}

	logger.Info("book replayed", "entries", len(sum.Steps), "status", sum.Final().Status)
	return sum, nil
}

// apply revalues the columns the entry's rates can value, then posts its
// amounts.
func apply(l *ledger.Ledger, e config.Entry, seq *id.Sequencer) (Step, []ledger.Result, error) {
	t, err := e.Time()
	if err != nil {
		return Step{}, nil, err
	}
	step := Step{Entry: seq.Next(t), Date: e.Date, Note: e.Note}
	meta := ledger.Meta{"entry": step.Entry, "ts": e.Date}
	if e.Note != "" {
		meta["note"] = e.Note
	}

	ex, err := e.Exchange()
	if err != nil {
		return step, nil, err
	}
	var commits []ledger.Result
	if cols := priced(l, ex); len(cols) > 0 {
		results, err := l.Revalue(ex, meta, cols...)
		commits = append(commits, results...)
		if err != nil {
			return step, commits, err
		}
	}

	step.Equation, err = l.Transact(ledger.TransactionFunc(func(l *ledger.Ledger) error {
		for n, p := range e.Postings {
			col, err := l.Lookup(p.Column)
			if err != nil {
				return err
			}
			pm := ledger.Meta{"posting": id.FormatPostingID(step.Entry, n)}
			for k, v := range meta {
				pm[k] = v
			}
			res := l.Post(p.Amount, col, pm)
			commits = append(commits, res)
			if !res.OK() {
				return res.Err
			}
		}
		return nil
	}))
	return step, commits, err
}

// priced lists the ordinary columns whose currency ex can convert to the
// reference currency. Columns in other currencies keep their current table.
func priced(l *ledger.Ledger, ex *exchange.Exchange) []ledger.Column {
	if ex == nil {
		return nil
	}
	var cols []ledger.Column
	for _, c := range l.Columns() {
		if c.IsTrading() {
			continue
		}
		if _, err := ex.Lookup(c.Currency, l.Ref()); err == nil {
			cols = append(cols, c)
		}
	}
	return cols
}
