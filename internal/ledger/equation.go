package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tallywallet/tallywallet/internal/exchange"
)

// EquationPlaces is the number of reference-currency decimal places both
// sides are rounded to before they are compared.
const EquationPlaces = 2

// Equation is an evaluation of
//
//	Assets + Expenses + Dividends = Capital + Income + Liabilities
//
// in the reference currency, with trading accounts counted on the right.
// LHS and RHS are invalid when some column could not be valued.
type Equation struct {
	LHS    decimal.NullDecimal
	RHS    decimal.NullDecimal
	Status Status
	Err    error
}

// OK reports whether the books balance.
func (e Equation) OK() bool { return e.Status == StatusOK }

func (e Equation) String() string {
	if !e.LHS.Valid || !e.RHS.Valid {
		return fmt.Sprintf("%s: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s = %s", e.Status,
		e.LHS.Decimal.StringFixed(EquationPlaces), e.RHS.Decimal.StringFixed(EquationPlaces))
}

// Equation values every column with its assigned rate table and compares
// the two sides. An unbalanced ledger is reported as StatusFailed, never as
// an error; so is a column that has no usable rate.
func (l *Ledger) Equation() Equation {
	lhs, rhs := decimal.Zero, decimal.Zero
	for _, c := range l.cols {
		bal := l.tally[c]
		if c.Role.Side() == SideTrading {
			rhs = rhs.Add(bal)
			continue
		}

		v, err := l.rates[c].Convert(bal, exchange.Path(c.Currency, l.ref, l.ref), exchange.NoFees)
		if err != nil {
			return Equation{Status: StatusFailed, Err: fmt.Errorf("valuing %s: %w", c.Name(), err)}
		}
		if c.Role.Side() == SideLeft {
			lhs = lhs.Add(v)
		} else {
			rhs = rhs.Add(v)
		}
	}

	eq := Equation{
		LHS:    decimal.NewNullDecimal(lhs),
		RHS:    decimal.NewNullDecimal(rhs),
		Status: StatusFailed,
	}
	if lhs.Round(EquationPlaces).Equal(rhs.Round(EquationPlaces)) {
		eq.Status = StatusOK
	}
	return eq
}
