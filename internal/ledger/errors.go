package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrTradingRole   = errors.New("trading role is reserved for trading accounts")
	ErrTradingColumn = errors.New("trading accounts only change through revaluation")
	ErrUnknownColumn = errors.New("unknown column")
	ErrUnknownRole   = errors.New("unknown role")
	ErrInvalidValue  = errors.New("invalid commit value")
	ErrNoHandler     = errors.New("no transaction handler")
	ErrLayout        = errors.New("invalid column layout")
)

// DuplicateLabelError reports columns that resolve to the same label.
type DuplicateLabelError struct {
	Label   string
	Columns []Column
}

func (e *DuplicateLabelError) Error() string {
	return fmt.Sprintf("duplicate column label %q shared by %d columns", e.Label, len(e.Columns))
}
