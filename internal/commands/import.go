package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tallywallet/tallywallet/internal/book"
	"github.com/tallywallet/tallywallet/internal/config"
	"github.com/tallywallet/tallywallet/internal/importer"
)

func newImportCommand() *cobra.Command {
	var bookPath, format, account, counter string
	var dryRun bool

	registry := importer.DefaultRegistry()

	cmd := &cobra.Command{
		Use:   "import <statement.csv>",
		Short: "Append a bank statement to a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(bookPath)
			if err != nil {
				return err
			}
			l, err := book.Build(cfg, bookLogger(cmd, cfg))
			if err != nil {
				return err
			}
			acct, err := l.Lookup(account)
			if err != nil {
				return fmt.Errorf("--account: %w", err)
			}
			ctr, err := l.Lookup(counter)
			if err != nil {
				return fmt.Errorf("--counter: %w", err)
			}

			txns, err := registry.ParseFile(args[0], format)
			if err != nil {
				return err
			}
			entries, err := importer.Entries(txns, acct, ctr)
			if err != nil {
				return err
			}

			cfg.Entries = append(cfg.Entries, entries...)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("book would be invalid: %w", err)
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Would import %d transactions into %s\n", len(entries), bookPath)
				return nil
			}
			if err := config.Save(bookPath, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d transactions into %s\n", len(entries), bookPath)
			return nil
		},
	}

	addBookFlag(cmd, &bookPath)
	cmd.Flags().StringVar(&format, "format", "chase", fmt.Sprintf("statement format %v", registry.Formats()))
	cmd.Flags().StringVar(&account, "account", "", "column the statement belongs to (required)")
	cmd.Flags().StringVar(&counter, "counter", "", "column that balances each transaction (required)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "check the statement without changing the book")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("counter")

	return cmd
}
