package main

import (
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/flockwatch/internal/logging"
)

type rootOptions struct {
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "flockwatch",
		Short: "Turn avian influenza flock exports into typed records",
		Long: `flockwatch reads the state map export and the two 30-day total exports,
validates every row and prints the resulting records.

Only auth-id reads the database; use the server for scheduled scraping.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Logs go to stderr so stdout stays clean for rendered output.
			logging.Setup(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format (text, json)")

	cmd.AddCommand(newParseCmd(), newAuthIDCmd(), newVersionCmd())
	return cmd
}
