// Package exchange holds explicit currency rate tables and the inference
// rules used to price conversions that are not listed.
package exchange

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tallywallet/tallywallet/internal/currency"
)

// RateScale is the number of fractional digits kept when inverting a rate.
const RateScale = 28

var (
	// ErrNoRate matches every *NoRateError.
	ErrNoRate = errors.New("no rate available")
	// ErrInvalidRate is returned for zero or negative explicit rates.
	ErrInvalidRate = errors.New("rate must be positive")
)

// NoRateError identifies a currency pair that has no explicit, reciprocal
// or identity rate.
type NoRateError struct {
	Src currency.Currency
	Dst currency.Currency
}

func (e *NoRateError) Error() string {
	return fmt.Sprintf("%s: %s to %s", ErrNoRate, e.Src, e.Dst)
}

func (e *NoRateError) Is(target error) bool { return target == ErrNoRate }

// Pair is an ordered (source, destination) key into a rate table.
type Pair struct {
	Src currency.Currency
	Dst currency.Currency
}

func (p Pair) String() string { return string(p.Src) + "/" + string(p.Dst) }

// Exchange is a sparse table of conversion rates. One unit of Pair.Src buys
// rate units of Pair.Dst. The zero value and nil are empty tables.
type Exchange struct {
	rates map[Pair]decimal.Decimal
}

// New builds an Exchange from explicit rates.
func New(rates map[Pair]decimal.Decimal) (*Exchange, error) {
	ex := &Exchange{rates: make(map[Pair]decimal.Decimal, len(rates))}
	for p, r := range rates {
		if !r.IsPositive() {
			return nil, fmt.Errorf("%w: %s = %s", ErrInvalidRate, p, r)
		}
		ex.rates[p] = r
	}
	return ex, nil
}

// MustNew is New for literal tables; it panics on an invalid rate.
func MustNew(rates map[Pair]decimal.Decimal) *Exchange {
	ex, err := New(rates)
	if err != nil {
		panic(err)
	}
	return ex
}

// Len returns the number of explicit rates.
func (e *Exchange) Len() int {
	if e == nil {
		return 0
	}
	return len(e.rates)
}

// Rates returns a copy of the explicit rates.
func (e *Exchange) Rates() map[Pair]decimal.Decimal {
	out := make(map[Pair]decimal.Decimal, e.Len())
	if e != nil {
		for p, r := range e.rates {
			out[p] = r
		}
	}
	return out
}

// With returns a copy of e with one rate added or replaced.
func (e *Exchange) With(p Pair, rate decimal.Decimal) (*Exchange, error) {
	rates := e.Rates()
	rates[p] = rate
	return New(rates)
}

// Lookup returns the rate converting src into dst. Unlisted pairs fall back
// to the reciprocal of (dst, src), then to par when src equals dst.
func (e *Exchange) Lookup(src, dst currency.Currency) (decimal.Decimal, error) {
	if e != nil {
		if r, ok := e.rates[Pair{src, dst}]; ok {
			return r, nil
		}
		if r, ok := e.rates[Pair{dst, src}]; ok {
			return decimal.NewFromInt(1).DivRound(r, RateScale), nil
		}
	}
	if src == dst {
		return decimal.NewFromInt(1), nil
	}
	return decimal.Zero, &NoRateError{Src: src, Dst: dst}
}

// Convert prices amount along path, going through the working currency:
//
//	((amount - fees.Received) * rate(Receive, Work)) * rate(Work, Out) - fees.Paid
func (e *Exchange) Convert(amount decimal.Decimal, path TradePath, fees TradeFees) (decimal.Decimal, error) {
	in, err := e.Lookup(path.Receive, path.Work)
	if err != nil {
		return decimal.Zero, err
	}
	out, err := e.Lookup(path.Work, path.Out)
	if err != nil {
		return decimal.Zero, err
	}
	work := amount.Sub(fees.Received).Mul(in)
	return work.Mul(out).Sub(fees.Paid), nil
}

// Gain measures how the value of amount along path changes when prior is
// replaced by e. An empty prior stands for e itself, giving a zero gain.
func (e *Exchange) Gain(amount decimal.Decimal, path TradePath, prior *Exchange, fees TradeFees) (TradeGain, error) {
	if prior.Len() == 0 {
		prior = e
	}
	this, err := e.Convert(amount, path, fees)
	if err != nil {
		return TradeGain{}, err
	}
	that, err := prior.Convert(amount, path, fees)
	if err != nil {
		return TradeGain{}, fmt.Errorf("prior table: %w", err)
	}
	return TradeGain{Received: that, Gain: this.Sub(that), Resulting: this}, nil
}

func (e *Exchange) String() string {
	if e.Len() == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(e.rates))
	for p, r := range e.rates {
		parts = append(parts, p.String()+"="+r.String())
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ", ") + "}"
}
