package ledger

import (
	"strings"

	"github.com/tallywallet/tallywallet/internal/currency"
)

// KeyPlaceholder is replaced by the column key when a label is resolved.
const KeyPlaceholder = "{}"

const tradingLabel = "{} trading account"

// Column is one ledger line. Columns are compared as whole values, so two
// columns sharing a key are distinct if currency, role or label differ.
type Column struct {
	Key      string
	Currency currency.Currency
	Role     Role
	Label    string // template; "{}" stands for Key, empty means Key alone
}

// NewColumn is shorthand for a Column literal.
func NewColumn(key string, cur currency.Currency, role Role, label string) Column {
	return Column{Key: key, Currency: cur, Role: role, Label: label}
}

// Name resolves the display label.
func (c Column) Name() string {
	if c.Label == "" {
		return c.Key
	}
	return strings.ReplaceAll(c.Label, KeyPlaceholder, c.Key)
}

// IsTrading reports whether c is a synthesized trading account.
func (c Column) IsTrading() bool { return c.Role == RoleTrading }

func (c Column) String() string {
	return c.Name() + " (" + string(c.Currency) + " " + string(c.Role) + ")"
}

func tradingAccount(cur currency.Currency) Column {
	return Column{Key: string(cur), Currency: cur, Role: RoleTrading, Label: tradingLabel}
}
