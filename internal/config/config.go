// Package config reads and writes tally.yaml, the description of a book:
// its columns, the dated entries posted to it and how results are written.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/tallywallet/tallywallet/internal/chart"
	"github.com/tallywallet/tallywallet/internal/currency"
	"github.com/tallywallet/tallywallet/internal/exchange"
	"github.com/tallywallet/tallywallet/internal/ledger"
)

// FileName is the conventional name of a book file.
const FileName = "tally.yaml"

// Output formats.
const (
	FormatYAML = "yaml"
	FormatCSV  = "csv"
)

// Config represents a tally.yaml file.
type Config struct {
	Ledger  LedgerConfig `yaml:"ledger"`
	Entries []Entry      `yaml:"entries,omitempty"`
	Output  OutputConfig `yaml:"output"`
}

// LedgerConfig names the reference currency and the ordinary columns.
// Trading accounts are never listed.
type LedgerConfig struct {
	Ref     string         `yaml:"ref"`
	Chart   string         `yaml:"chart,omitempty"`
	Columns []ColumnConfig `yaml:"columns"`
}

// ColumnConfig describes one column.
type ColumnConfig struct {
	Key      string `yaml:"key"`
	Currency string `yaml:"currency"`
	Role     string `yaml:"role"`
	Label    string `yaml:"label,omitempty"`
}

// Entry is a dated set of rate changes and postings, applied in that order.
type Entry struct {
	Date     string    `yaml:"date"` // "YYYY-MM-DD"
	Note     string    `yaml:"note,omitempty"`
	Rates    []Rate    `yaml:"rates,omitempty"`
	Postings []Posting `yaml:"postings,omitempty"`
}

// Rate is one directed entry of a rate table.
type Rate struct {
	From string          `yaml:"from"`
	To   string          `yaml:"to"`
	Rate decimal.Decimal `yaml:"rate"`
}

// Posting adds Amount to the column whose resolved label is Column.
type Posting struct {
	Column string          `yaml:"column"`
	Amount decimal.Decimal `yaml:"amount"`
}

// OutputConfig controls the record format and diagnostics.
type OutputConfig struct {
	Format   string `yaml:"format"`
	LogLevel string `yaml:"log_level"`
}

// Load reads a tally.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// FromChart returns a Config with the chart's columns and no entries.
func FromChart(c chart.Chart) *Config {
	cfg := &Config{
		Ledger: LedgerConfig{Ref: c.Ref.Code(), Chart: c.Name},
		Output: OutputConfig{Format: FormatYAML, LogLevel: "info"},
	}
	cfg.SetColumns(c.Columns)
	return cfg
}

// SetColumns replaces the column list. Trading accounts are skipped.
func (c *Config) SetColumns(cols []ledger.Column) {
	c.Ledger.Columns = c.Ledger.Columns[:0]
	for _, col := range cols {
		if col.IsTrading() {
			continue
		}
		c.Ledger.Columns = append(c.Ledger.Columns, ColumnConfig{
			Key:      col.Key,
			Currency: col.Currency.Code(),
			Role:     string(col.Role),
			Label:    col.Label,
		})
	}
}

// Default returns the sample book for a built-in chart: a short run of
// entries that exercises every column.
func Default(chartName string) (*Config, error) {
	c, err := chart.Default(chartName)
	if err != nil {
		return nil, err
	}
	cfg := FromChart(c)
	switch chartName {
	case "selinger":
		cfg.Entries = selingerEntries()
	case "keen":
		cfg.Entries = keenEntries()
	}
	return cfg, nil
}

func usdCAD(rate string) []Rate {
	return []Rate{{From: "USD", To: "CAD", Rate: decimal.RequireFromString(rate)}}
}

func post(column, amount string) Posting {
	return Posting{Column: column, Amount: decimal.RequireFromString(amount)}
}

// Selinger, "Accounting for foreign exchange", table 4.4.
func selingerEntries() []Entry {
	return []Entry{
		{Date: "2013-01-01", Note: "Opening balance", Rates: usdCAD("1.20"), Postings: []Posting{
			post("Canadian cash", "200"), post("Capital", "200"),
		}},
		{Date: "2013-01-02", Note: "Buy USD 100", Postings: []Posting{
			post("Canadian cash", "-120"), post("US cash", "100"),
		}},
		{Date: "2013-01-03", Note: "Spend USD 40", Rates: usdCAD("1.30"), Postings: []Posting{
			post("US cash", "-40"), post("Expense", "52"),
		}},
		{Date: "2013-01-05", Note: "Sell USD 60", Rates: usdCAD("1.25"), Postings: []Posting{
			post("US cash", "-60"), post("Canadian cash", "75"),
		}},
		{Date: "2013-01-07", Note: "Buy food", Postings: []Posting{
			post("Canadian cash", "-20"), post("Expense", "20"),
		}},
	}
}

func keenEntries() []Entry {
	return []Entry{
		{Date: "2013-01-01", Note: "Bank lends to firms", Postings: []Posting{
			post("owing", "100"), post("firms", "100"),
		}},
		{Date: "2013-01-08", Note: "Firms pay wages", Postings: []Posting{
			post("firms", "-30"), post("workers", "30"),
		}},
		{Date: "2013-01-15", Note: "Workers buy goods", Postings: []Posting{
			post("workers", "-25"), post("firms", "25"),
		}},
	}
}

// RefCurrency parses the reference currency.
func (c *Config) RefCurrency() (currency.Currency, error) {
	cur, err := currency.Parse(c.Ledger.Ref)
	if err != nil {
		return "", fmt.Errorf("ledger ref: %w", err)
	}
	return cur, nil
}

// Columns parses the column list.
func (c *Config) Columns() ([]ledger.Column, error) {
	cols := make([]ledger.Column, 0, len(c.Ledger.Columns))
	for i, cc := range c.Ledger.Columns {
		if cc.Key == "" {
			return nil, fmt.Errorf("column %d: empty key", i+1)
		}
		cur, err := currency.Parse(cc.Currency)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", cc.Key, err)
		}
		role, err := ledger.ParseRole(cc.Role)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", cc.Key, err)
		}
		cols = append(cols, ledger.NewColumn(cc.Key, cur, role, cc.Label))
	}
	return cols, nil
}

// Time parses the entry date.
func (e Entry) Time() (time.Time, error) {
	t, err := time.Parse(time.DateOnly, e.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", e.Date, err)
	}
	return t, nil
}

// Exchange builds the entry's rate table, or nil when it changes no rates.
func (e Entry) Exchange() (*exchange.Exchange, error) {
	if len(e.Rates) == 0 {
		return nil, nil
	}
	rates := make(map[exchange.Pair]decimal.Decimal, len(e.Rates))
	for _, r := range e.Rates {
		src, err := currency.Parse(r.From)
		if err != nil {
			return nil, fmt.Errorf("rate from: %w", err)
		}
		dst, err := currency.Parse(r.To)
		if err != nil {
			return nil, fmt.Errorf("rate to: %w", err)
		}
		rates[exchange.Pair{Src: src, Dst: dst}] = r.Rate
	}
	return exchange.New(rates)
}

// Validate reports every problem it finds, joined.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.RefCurrency(); err != nil {
		errs = append(errs, err)
	}
	cols, err := c.Columns()
	if err != nil {
		errs = append(errs, err)
	}
	if err == nil && len(cols) == 0 {
		errs = append(errs, errors.New("ledger has no columns"))
	}

	labels := make(map[string]bool)
	for _, col := range cols {
		labels[col.Name()] = true
	}

	var prev time.Time
	for i, e := range c.Entries {
		where := fmt.Sprintf("entry %d (%s)", i+1, e.Date)
		t, err := e.Time()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", where, err))
		} else if t.Before(prev) {
			errs = append(errs, fmt.Errorf("%s: dated before the previous entry", where))
		} else {
			prev = t
		}
		if _, err := e.Exchange(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", where, err))
		}
		for _, p := range e.Postings {
			if cols != nil && !labels[p.Column] {
				errs = append(errs, fmt.Errorf("%s: %w: %q", where, ledger.ErrUnknownColumn, p.Column))
			}
		}
	}

	switch c.Output.Format {
	case "", FormatYAML, FormatCSV:
	default:
		errs = append(errs, fmt.Errorf("output format %q: want %s or %s", c.Output.Format, FormatYAML, FormatCSV))
	}
	return errors.Join(errs...)
}
