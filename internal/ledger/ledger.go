// Package ledger keeps balances for currency-tagged columns and checks
// them against the Fundamental Accounting Equation.
//
// Balances change only through Commit. Exchange-rate moves are previewed
// with Adjustments and surface, once committed, in one trading account per
// currency. A Ledger is not safe for concurrent use.
package ledger

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/tallywallet/tallywallet/internal/currency"
	"github.com/tallywallet/tallywallet/internal/exchange"
)

// HistorySize bounds the number of commit results a ledger remembers.
const HistorySize = 200

// Ledger owns a growing set of columns, their balances and the rate table
// each ordinary column was last revalued with.
type Ledger struct {
	ref     currency.Currency
	cols    []Column
	tally   map[Column]decimal.Decimal
	rates   map[Column]*exchange.Exchange
	trading map[currency.Currency]Column
	history []Result
	log     *slog.Logger
}

// New creates a ledger valued in ref. A trading account is added for every
// currency among cols, after them.
func New(ref currency.Currency, cols ...Column) (*Ledger, error) {
	l := empty(ref)
	for _, c := range cols {
		if err := checkRole(c); err != nil {
			return nil, err
		}
		l.insert(c)
	}
	for _, c := range cols {
		l.ensureTrading(c.Currency)
	}
	return l, nil
}

// Restore recreates a ledger from a complete column layout, trading
// accounts included, keeping the order exactly. Each trading column must
// resolve to the trading account label of its currency, and every currency
// needs exactly one. Repeated columns are an error rather than collapsed.
func Restore(ref currency.Currency, cols ...Column) (*Ledger, error) {
	l := empty(ref)
	for i, c := range cols {
		if c.IsTrading() {
			acct := tradingAccount(c.Currency)
			if c.Name() != acct.Name() {
				return nil, fmt.Errorf("column %d: %w: %q is not the %s trading account", i+1, ErrLayout, c.Name(), c.Currency)
			}
			if _, ok := l.trading[c.Currency]; ok {
				return nil, fmt.Errorf("column %d: %w: second %s trading account", i+1, ErrLayout, c.Currency)
			}
			l.trading[c.Currency] = acct
			l.insert(acct)
			continue
		}
		if err := checkRole(c); err != nil {
			return nil, err
		}
		if !l.insert(c) {
			return nil, fmt.Errorf("column %d: %w: %s repeated", i+1, ErrLayout, c)
		}
	}
	for _, c := range l.cols {
		if _, ok := l.trading[c.Currency]; !ok {
			return nil, fmt.Errorf("%w: no trading account for %s", ErrLayout, c.Currency)
		}
	}
	return l, nil
}

func empty(ref currency.Currency) *Ledger {
	return &Ledger{
		ref:     ref,
		tally:   make(map[Column]decimal.Decimal),
		rates:   make(map[Column]*exchange.Exchange),
		trading: make(map[currency.Currency]Column),
		log:     slog.Default(),
	}
}

// SetLogger replaces the logger used for diagnostics.
func (l *Ledger) SetLogger(lg *slog.Logger) {
	if lg != nil {
		l.log = lg
	}
}

// Ref returns the reference currency.
func (l *Ledger) Ref() currency.Currency { return l.ref }

// AddColumn adds an ordinary column in cur, or in the reference currency
// when cur is omitted. Existing columns and balances are left alone.
func (l *Ledger) AddColumn(key string, role Role, label string, cur ...currency.Currency) (Column, error) {
	c := l.ref
	if len(cur) > 0 {
		c = cur[0]
	}
	col := Column{Key: key, Currency: c, Role: role, Label: label}
	if err := checkRole(col); err != nil {
		return Column{}, err
	}
	l.insert(col)
	l.ensureTrading(c)
	return col, nil
}

func checkRole(c Column) error {
	if c.Role == RoleTrading {
		return fmt.Errorf("column %q: %w", c.Key, ErrTradingRole)
	}
	if !c.Role.Valid() {
		return fmt.Errorf("column %q: %w: %q", c.Key, ErrUnknownRole, c.Role)
	}
	return nil
}

func (l *Ledger) insert(c Column) bool {
	if _, ok := l.tally[c]; ok {
		return false
	}
	l.cols = append(l.cols, c)
	l.tally[c] = decimal.Zero
	if !c.IsTrading() {
		l.rates[c] = &exchange.Exchange{}
	}
	return true
}

func (l *Ledger) ensureTrading(cur currency.Currency) {
	if _, ok := l.trading[cur]; ok {
		return
	}
	acct := tradingAccount(cur)
	l.trading[cur] = acct
	l.insert(acct)
}

// Columns returns every column, trading accounts included, in creation order.
func (l *Ledger) Columns() []Column {
	return append([]Column(nil), l.cols...)
}

// Has reports whether c belongs to the ledger.
func (l *Ledger) Has(c Column) bool {
	_, ok := l.tally[c]
	return ok
}

// ByLabel indexes columns by resolved label. Columns whose label is already
// taken are logged and left out, so the map can be smaller than Columns.
func (l *Ledger) ByLabel() map[string]Column {
	out := make(map[string]Column, len(l.cols))
	for _, c := range l.cols {
		name := c.Name()
		if prev, ok := out[name]; ok {
			l.log.Warn("duplicate column label", "label", name, "kept", prev.String(), "dropped", c.String())
			continue
		}
		out[name] = c
	}
	return out
}

// CheckLabels returns a *DuplicateLabelError for every label shared by more
// than one column, or nil.
func (l *Ledger) CheckLabels() error {
	groups := make(map[string][]Column)
	var order []string
	for _, c := range l.cols {
		name := c.Name()
		if _, seen := groups[name]; !seen {
			order = append(order, name)
		}
		groups[name] = append(groups[name], c)
	}

	var errs []error
	for _, name := range order {
		if len(groups[name]) > 1 {
			errs = append(errs, &DuplicateLabelError{Label: name, Columns: groups[name]})
		}
	}
	return errors.Join(errs...)
}

// Value returns the balance of c.
func (l *Ledger) Value(c Column) (decimal.Decimal, error) {
	v, ok := l.tally[c]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownColumn, c)
	}
	return v, nil
}

// ValueOf returns the balance of the first column whose label is name.
func (l *Ledger) ValueOf(name string) (decimal.Decimal, error) {
	c, err := l.Lookup(name)
	if err != nil {
		return decimal.Zero, err
	}
	return l.tally[c], nil
}

// Lookup finds the first column whose resolved label is name.
func (l *Ledger) Lookup(name string) (Column, error) {
	for _, c := range l.cols {
		if c.Name() == name {
			return c, nil
		}
	}
	return Column{}, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
}

// Balance returns every column sharing key, across currencies and roles.
func (l *Ledger) Balance(key string) []Holding {
	var out []Holding
	for _, c := range l.cols {
		if c.Key == key {
			out = append(out, Holding{Column: c, Amount: l.tally[c]})
		}
	}
	return out
}

// TradingAccount returns the trading account for cur.
func (l *Ledger) TradingAccount(cur currency.Currency) (Column, bool) {
	c, ok := l.trading[cur]
	return c, ok
}

// Rates returns the table c was last revalued with. Trading accounts and
// unknown columns have none.
func (l *Ledger) Rates(c Column) *exchange.Exchange {
	return l.rates[c]
}

// History returns the most recent applied commits, oldest first.
func (l *Ledger) History() []Result {
	return append([]Result(nil), l.history...)
}

func (l *Ledger) ordinary() []Column {
	out := make([]Column, 0, len(l.cols))
	for _, c := range l.cols {
		if !c.IsTrading() {
			out = append(out, c)
		}
	}
	return out
}

// Adjustments previews revaluing cols (all ordinary columns when none are
// given) from their current tables to ex. Every column is valued in the
// reference currency. Nothing is changed: each range over the sequence
// recomputes from the current balances, yielding one item per column.
func (l *Ledger) Adjustments(ex *exchange.Exchange, cols ...Column) iter.Seq2[Adjustment, error] {
	return func(yield func(Adjustment, error) bool) {
		targets := cols
		if len(targets) == 0 {
			targets = l.ordinary()
		}
		for _, c := range targets {
			if !yield(l.adjust(ex, c)) {
				return
			}
		}
	}
}

func (l *Ledger) adjust(ex *exchange.Exchange, c Column) (Adjustment, error) {
	if !l.Has(c) {
		return Adjustment{}, fmt.Errorf("%w: %s", ErrUnknownColumn, c)
	}
	if c.IsTrading() {
		return Adjustment{}, fmt.Errorf("revaluing %s: %w", c.Name(), ErrTradingColumn)
	}
	path := exchange.Path(c.Currency, l.ref, l.ref)
	gain, err := ex.Gain(l.tally[c], path, l.rates[c], exchange.NoFees)
	if err != nil {
		return Adjustment{}, fmt.Errorf("revaluing %s: %w", c.Name(), err)
	}
	return Adjustment{Gain: gain, Column: c, Exchange: ex}, nil
}

// Commit is the only way balances change.
//
// An Amount is added to col. A Revaluation books its gain in the trading
// account of col's currency and makes ex the table col is valued with; a
// nil ex keeps the table already assigned. The trading account receives
// Gain for asset, expense and dividend columns and -Gain for liability,
// capital and income columns. Anything else is rejected with StatusError
// and leaves the ledger untouched.
func (l *Ledger) Commit(v Value, col Column, ex *exchange.Exchange, meta Meta) Result {
	res := Result{Value: v, Column: col, Exchange: ex, Meta: meta, Status: StatusOK}
	if !l.Has(col) {
		return l.reject(res, fmt.Errorf("%w: %s", ErrUnknownColumn, col))
	}
	if col.IsTrading() {
		return l.reject(res, fmt.Errorf("committing to %s: %w", col.Name(), ErrTradingColumn))
	}
	if res.Exchange == nil {
		res.Exchange = l.rates[col]
	}

	switch v := deref(v).(type) {
	case Amount:
		l.tally[col] = l.tally[col].Add(v.Decimal())
	case Revaluation:
		// The trading account sits on the right: it mirrors gains on
		// left-hand columns and offsets gains on right-hand ones.
		gain := v.Gain
		if col.Role.Side() == SideRight {
			gain = gain.Neg()
		}
		acct := l.trading[col.Currency]
		l.tally[acct] = l.tally[acct].Add(gain)
		l.rates[col] = res.Exchange
	default:
		return l.reject(res, fmt.Errorf("%w: %T", ErrInvalidValue, v))
	}

	l.history = append(l.history, res)
	if len(l.history) > HistorySize {
		l.history = l.history[len(l.history)-HistorySize:]
	}
	l.log.Debug("commit", "column", col.Name(), "value", res.Value, "rates", res.Exchange.String())
	return res
}

func deref(v Value) Value {
	switch p := v.(type) {
	case *Amount:
		if p != nil {
			return *p
		}
	case *Revaluation:
		if p != nil {
			return *p
		}
	}
	return v
}

func (l *Ledger) reject(res Result, err error) Result {
	res.Status = StatusError
	res.Err = err
	l.log.Debug("commit rejected", "column", res.Column.Name(), "error", err)
	return res
}

// Post commits a plain amount to col.
func (l *Ledger) Post(amount decimal.Decimal, col Column, meta Meta) Result {
	return l.Commit(Amount(amount), col, nil, meta)
}

// Apply commits a previewed adjustment.
func (l *Ledger) Apply(adj Adjustment, meta Meta) Result {
	return l.Commit(Revaluation{TradeGain: adj.Gain}, adj.Column, adj.Exchange, meta)
}

// Revalue previews ex over cols and commits every adjustment, or none of
// them if any column cannot be valued.
func (l *Ledger) Revalue(ex *exchange.Exchange, meta Meta, cols ...Column) ([]Result, error) {
	var adjs []Adjustment
	for adj, err := range l.Adjustments(ex, cols...) {
		if err != nil {
			return nil, err
		}
		adjs = append(adjs, adj)
	}

	results := make([]Result, 0, len(adjs))
	for _, adj := range adjs {
		res := l.Apply(adj, meta)
		if !res.OK() {
			return results, res.Err
		}
		results = append(results, res)
	}
	return results, nil
}
