// Package chart provides column sets for new ledgers.
package chart

import (
	"fmt"
	"slices"

	"github.com/tallywallet/tallywallet/internal/currency"
	"github.com/tallywallet/tallywallet/internal/ledger"
)

// Chart is a named column set and the currency it is valued in.
type Chart struct {
	Name    string
	Ref     currency.Currency
	Columns []ledger.Column
}

// Ledger creates an empty ledger with the chart's columns.
func (c Chart) Ledger() (*ledger.Ledger, error) {
	l, err := ledger.New(c.Ref, c.Columns...)
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", c.Name, err)
	}
	return l, nil
}

// Names lists the built-in charts.
func Names() []string {
	return []string{"selinger", "keen"}
}

// Default returns a built-in chart by name.
func Default(name string) (Chart, error) {
	switch name {
	case "selinger":
		return selingerChart(), nil
	case "keen":
		return keenChart(), nil
	default:
		return Chart{}, fmt.Errorf("unknown chart %q (want one of %v)", name, Names())
	}
}

// Two currencies valued in CAD, as in Selinger's worked examples.
func selingerChart() Chart {
	return Chart{
		Name: "selinger",
		Ref:  currency.CAD,
		Columns: []ledger.Column{
			ledger.NewColumn("Canadian cash", currency.CAD, ledger.RoleAsset, "{}"),
			ledger.NewColumn("US cash", currency.USD, ledger.RoleAsset, "{}"),
			ledger.NewColumn("Capital", currency.CAD, ledger.RoleCapital, "{}"),
			ledger.NewColumn("Expense", currency.CAD, ledger.RoleExpense, "{}"),
		},
	}
}

// A single-currency monetary circuit: bank vault and safe, the loans owed to
// the bank, and the deposits of firms and workers.
func keenChart() Chart {
	return Chart{
		Name: "keen",
		Ref:  currency.USD,
		Columns: []ledger.Column{
			ledger.NewColumn("vault", currency.USD, ledger.RoleAsset, ""),
			ledger.NewColumn("safe", currency.USD, ledger.RoleAsset, ""),
			ledger.NewColumn("owing", currency.USD, ledger.RoleCapital, ""),
			ledger.NewColumn("firms", currency.USD, ledger.RoleExpense, ""),
			ledger.NewColumn("workers", currency.USD, ledger.RoleExpense, ""),
		},
	}
}

// Currencies lists the distinct currencies of the chart, in column order.
func (c Chart) Currencies() []currency.Currency {
	var out []currency.Currency
	for _, col := range c.Columns {
		if !slices.Contains(out, col.Currency) {
			out = append(out, col.Currency)
		}
	}
	return out
}
