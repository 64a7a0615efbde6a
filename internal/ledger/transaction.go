package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Transaction is a unit of work made of one or more commits.
type Transaction interface {
	Apply(l *Ledger) error
}

// TransactionFunc adapts a function to Transaction.
type TransactionFunc func(l *Ledger) error

func (f TransactionFunc) Apply(l *Ledger) error { return f(l) }

// Transact applies tx and returns the equation afterwards.
func (l *Ledger) Transact(tx Transaction) (Equation, error) {
	if tx == nil {
		return Equation{}, ErrNoHandler
	}
	if err := tx.Apply(l); err != nil {
		return l.Equation(), err
	}
	return l.Equation(), nil
}

// Transfer moves Amount out of From and into To. Both columns are checked
// before either is touched.
type Transfer struct {
	From   Column
	To     Column
	Amount decimal.Decimal
	Meta   Meta
}

func (t Transfer) Apply(l *Ledger) error {
	for _, c := range []Column{t.From, t.To} {
		if !l.Has(c) {
			return fmt.Errorf("transfer: %w: %s", ErrUnknownColumn, c)
		}
		if c.IsTrading() {
			return fmt.Errorf("transfer: %s: %w", c.Name(), ErrTradingColumn)
		}
	}
	if res := l.Post(t.Amount.Neg(), t.From, t.Meta); !res.OK() {
		return fmt.Errorf("transfer out: %w", res.Err)
	}
	if res := l.Post(t.Amount, t.To, t.Meta); !res.OK() {
		return fmt.Errorf("transfer in: %w", res.Err)
	}
	return nil
}
