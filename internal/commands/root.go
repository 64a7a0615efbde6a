package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tallywallet/tallywallet/internal/buildinfo"
	"github.com/tallywallet/tallywallet/internal/config"
	"github.com/tallywallet/tallywallet/internal/logging"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:     "tally",
		Short:   "Multi-currency bookkeeping with trading accounts",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(logging.WithContext(cmd.Context(), logging.New(logLevel, cmd.ErrOrStderr())))
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error; overrides the book's output.log_level")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newCheckCommand())
	rootCmd.AddCommand(newColumnsCommand())
	rootCmd.AddCommand(newImportCommand())

	return rootCmd
}

// bookLogger returns the command's logger, or one at the book's level when
// --log-level was not given.
func bookLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	if f := cmd.Flag("log-level"); f != nil && !f.Changed && cfg.Output.LogLevel != "" {
		return logging.New(cfg.Output.LogLevel, cmd.ErrOrStderr())
	}
	return logging.FromContext(cmd.Context())
}

func addBookFlag(cmd *cobra.Command, path *string) {
	cmd.Flags().StringVar(path, "book", config.FileName, "book file")
}
