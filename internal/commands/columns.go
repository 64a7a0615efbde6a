package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tallywallet/tallywallet/internal/book"
	"github.com/tallywallet/tallywallet/internal/chart"
	"github.com/tallywallet/tallywallet/internal/config"
)

func newColumnsCommand() *cobra.Command {
	var bookPath string
	var asCSV bool

	cmd := &cobra.Command{
		Use:   "columns",
		Short: "List the columns of a book with their final balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(bookPath)
			if err != nil {
				return err
			}
			sum, err := book.Run(cfg, io.Discard, bookLogger(cmd, cfg))
			if err != nil {
				return err
			}
			l := sum.Ledger

			if asCSV {
				return chart.WriteColumns(cmd.OutOrStdout(), l.Columns())
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "COLUMN\tCURRENCY\tROLE\tBALANCE\t")
			for _, c := range l.Columns() {
				v, err := l.Value(c)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", c.Name(), c.Currency, c.Role, c.Currency.Format(v))
			}
			return tw.Flush()
		},
	}

	addBookFlag(cmd, &bookPath)
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write the columns as a key,currency,role,label CSV file")

	return cmd
}
