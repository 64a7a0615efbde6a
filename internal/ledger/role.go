package ledger

import (
	"fmt"
	"strings"
)

// Role decides which side of the accounting equation a column sits on.
type Role string

const (
	RoleAsset     Role = "asset"
	RoleLiability Role = "liability"
	RoleCapital   Role = "capital"
	RoleIncome    Role = "income"
	RoleTrading   Role = "trading" // reserved for synthesized trading accounts
	RoleExpense   Role = "expense"
	RoleDividend  Role = "dividend"
)

// Side is a partition of the accounting equation.
type Side int

const (
	SideLeft Side = iota
	SideRight
	SideTrading
)

var roles = []Role{RoleAsset, RoleLiability, RoleCapital, RoleIncome, RoleTrading, RoleExpense, RoleDividend}

// Roles returns every role in declaration order.
func Roles() []Role {
	return append([]Role(nil), roles...)
}

// ParseRole resolves a role name, ignoring case.
func ParseRole(name string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range roles {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, name)
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	for _, known := range roles {
		if r == known {
			return true
		}
	}
	return false
}

// Side reports where balances of this role are summed.
func (r Role) Side() Side {
	switch r {
	case RoleAsset, RoleExpense, RoleDividend:
		return SideLeft
	case RoleTrading:
		return SideTrading
	default:
		return SideRight
	}
}
