package record

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Places is the number of decimals balances are written with.
const Places = 2

// Figure is a balance as it appears in a journal block: a plain YAML number
// with two decimals.
type Figure struct {
	decimal.Decimal
}

// FigureOf wraps d.
func FigureOf(d decimal.Decimal) Figure { return Figure{Decimal: d} }

func (f Figure) MarshalYAML() (any, error) {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!float",
		Value: f.StringFixed(Places),
	}, nil
}

func (f *Figure) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: balance must be a number", n.Line)
	}
	d, err := decimal.NewFromString(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: parsing balance %q: %w", n.Line, n.Value, err)
	}
	f.Decimal = d
	return nil
}
