package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tallywallet/tallywallet/internal/book"
	"github.com/tallywallet/tallywallet/internal/config"
	"github.com/tallywallet/tallywallet/internal/currency"
	"github.com/tallywallet/tallywallet/internal/ledger"
)

func newCheckCommand() *cobra.Command {
	var bookPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the accounting equation after every entry",
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

			ref := sum.Ledger.Ref()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ENTRY\tDATE\tSTATUS\tEQUATION\tNOTE")
			for _, st := range sum.Steps {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", st.Entry, st.Date, st.Equation.Status, sides(ref, st.Equation), st.Note)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if !sum.OK() {
				return fmt.Errorf("books do not balance: %s", sum.Final())
			}
			return nil
		},
	}

	addBookFlag(cmd, &bookPath)
	return cmd
}

// sides renders both sides of eq in ref, or the reason they are undefined.
func sides(ref currency.Currency, eq ledger.Equation) string {
	if !eq.LHS.Valid || !eq.RHS.Valid {
		return fmt.Sprintf("undefined (%v)", eq.Err)
	}
	return fmt.Sprintf("%s = %s", ref.Format(eq.LHS.Decimal), ref.Format(eq.RHS.Decimal))
}
