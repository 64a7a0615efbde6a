package exchange

import (
	"github.com/shopspring/decimal"

	"github.com/tallywallet/tallywallet/internal/currency"
)

// TradePath is the route of a conversion: the currency received, the working
// (reference) currency it is valued in, and the currency paid out.
type TradePath struct {
	Receive currency.Currency
	Work    currency.Currency
	Out     currency.Currency
}

// Path is shorthand for a TradePath literal.
func Path(receive, work, out currency.Currency) TradePath {
	return TradePath{Receive: receive, Work: work, Out: out}
}

// TradeFees are deducted before (Received) and after (Paid) a conversion.
type TradeFees struct {
	Received decimal.Decimal
	Paid     decimal.Decimal
}

// NoFees is the zero TradeFees.
var NoFees = TradeFees{}

// TradeGain is the effect of moving a valuation from one rate table to
// another. Resulting is always Received plus Gain.
type TradeGain struct {
	Received  decimal.Decimal // value under the prior table
	Gain      decimal.Decimal
	Resulting decimal.Decimal // value under the new table
}

// IsZero reports whether the gain is zero.
func (g TradeGain) IsZero() bool { return g.Gain.IsZero() }
