package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/tallywallet/tallywallet/internal/exchange"
)

// Status is the outcome of a commit or an equation check.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
	StatusError  Status = "error"
)

// Value is what Commit applies. It is either an Amount or a Revaluation.
type Value interface {
	commitValue()
}

// Amount is a plain signed deposit or withdrawal in the column's currency.
type Amount decimal.Decimal

// AmountOf wraps a decimal as an Amount.
func AmountOf(d decimal.Decimal) Amount { return Amount(d) }

// Decimal unwraps the amount.
func (a Amount) Decimal() decimal.Decimal { return decimal.Decimal(a) }

func (a Amount) String() string { return decimal.Decimal(a).String() }

func (Amount) commitValue() {}

// Revaluation carries the gain of a rate change into a trading account.
type Revaluation struct {
	exchange.TradeGain
}

func (Revaluation) commitValue() {}

// Meta is caller metadata passed through Commit untouched.
type Meta map[string]string

// Result reports a commit. It is suitable for chaining into a journal.
type Result struct {
	Value    Value
	Column   Column
	Exchange *exchange.Exchange
	Meta     Meta
	Status   Status
	Err      error
}

// OK reports whether the commit was applied.
func (r Result) OK() bool { return r.Status == StatusOK }

// Adjustment is a previewed revaluation of one column.
type Adjustment struct {
	Gain     exchange.TradeGain
	Column   Column
	Exchange *exchange.Exchange
}

// Holding is one column's share of a logical account.
type Holding struct {
	Column Column
	Amount decimal.Decimal
}
