package commands

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tallywallet/tallywallet/internal/audit"
	"github.com/tallywallet/tallywallet/internal/book"
	"github.com/tallywallet/tallywallet/internal/config"
)

func newRunCommand() *cobra.Command {
	var bookPath, outPath, format, auditPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Replay a book and write its record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(bookPath)
			if err != nil {
				return err
			}
			if format != "" {
				cfg.Output.Format = format
			}

			toFile := outPath != "" && outPath != "-"
			var buf bytes.Buffer
			var w io.Writer = cmd.OutOrStdout()
			if toFile {
				w = &buf
			}

			sum, err := book.Run(cfg, w, bookLogger(cmd, cfg))
			if auditPath != "" && len(sum.Commits) > 0 {
				if aerr := audit.Append(auditPath, audit.FromResults(sum.Commits)); aerr != nil {
					return errors.Join(err, aerr)
				}
			}
			if err != nil {
				return err
			}
			// The previous record survives a failed replay.
			if toFile {
				if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("writing output: %w", err)
				}
			}
			if n := len(sum.Unbalanced()); n > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d of %d entries left the books unbalanced\n", n, len(sum.Steps))
			}
			return nil
		},
	}

	addBookFlag(cmd, &bookPath)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&format, "format", "", "record format: yaml or csv (default: the book's)")
	cmd.Flags().StringVar(&auditPath, "audit", "", "append every commit to this CSV file")

	return cmd
}
