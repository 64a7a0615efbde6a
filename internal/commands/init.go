package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tallywallet/tallywallet/internal/chart"
	"github.com/tallywallet/tallywallet/internal/config"
	"github.com/tallywallet/tallywallet/internal/currency"
	"github.com/tallywallet/tallywallet/internal/logging"
)

type initOptions struct {
	chart      string
	columnsCSV string
	ref        string
	force      bool
}

func newInitCommand() *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a new tally.yaml book",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			path, cfg, err := runInit(absDir, opts)
			if err != nil {
				return err
			}
			logging.FromContext(cmd.Context()).Debug("book written", "path", path, "entries", len(cfg.Entries))
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized tally book at %s (%s, %d columns, ref %s)\n",
				path, cfg.Ledger.Chart, len(cfg.Ledger.Columns), cfg.Ledger.Ref)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.chart, "chart", "selinger", fmt.Sprintf("built-in chart %v", chart.Names()))
	cmd.Flags().StringVar(&opts.columnsCSV, "columns-csv", "", "read columns from a key,currency,role,label CSV file instead")
	cmd.Flags().StringVar(&opts.ref, "ref", "", "reference currency (default: the chart's)")
	cmd.Flags().BoolVar(&opts.force, "force", false, "overwrite an existing book")

	return cmd
}

func runInit(dir string, opts initOptions) (string, *config.Config, error) {
	path := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(path); err == nil && !opts.force {
		return "", nil, fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", nil, fmt.Errorf("checking %s: %w", path, err)
	}

	cfg, err := config.Default(opts.chart)
	if err != nil {
		return "", nil, err
	}

	if opts.columnsCSV != "" {
		cols, err := chart.Load(opts.columnsCSV)
		if err != nil {
			return "", nil, err
		}
		if len(cols) == 0 {
			return "", nil, fmt.Errorf("%s lists no columns", opts.columnsCSV)
		}
		cfg.SetColumns(cols)
		cfg.Ledger.Chart = filepath.Base(opts.columnsCSV)
		cfg.Entries = nil
	}
	if opts.ref != "" {
		ref, err := currency.Parse(opts.ref)
		if err != nil {
			return "", nil, err
		}
		cfg.Ledger.Ref = ref.Code()
	}
	if err := cfg.Validate(); err != nil {
		return "", nil, fmt.Errorf("invalid book: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("creating directory: %w", err)
	}
	if err := config.Save(path, cfg); err != nil {
		return "", nil, fmt.Errorf("writing book: %w", err)
	}
	return path, cfg, nil
}
