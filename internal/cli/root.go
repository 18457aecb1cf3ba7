// Package cli implements the tallyctl command tree.
package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by every subcommand.
type RootOptions struct {
	Verbose bool

	logger *slog.Logger
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Logger returns the logger configured from the global flags. Before the
// root command has run it discards everything.
func (o *RootOptions) Logger() *slog.Logger {
	if o.logger == nil {
		return discardLogger
	}

	return o.logger
}

// NewRootCommand creates the root command for the tallyctl CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "tallyctl",
		Short: "Inspect, convert and sum measurement-count files",
		Long: `tallyctl works with tally measurement-count files.

It reads both the tabular text format and the binary snapshot format,
single datasets as well as dataset groups, with whole-file compression
inferred from the filename suffix (.gz, .zst, .lz4, .s2).`,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - main handles error output
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.logger = newLogger(cmd.ErrOrStderr(), opts.Verbose)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log codec activity to stderr")

	// Add subcommands
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewConvertCommand(opts))
	cmd.AddCommand(NewSumCommand(opts))

	return cmd
}

// newLogger builds the logger handed to codec calls. Diagnostics go to
// stderr so stdout stays clean for command output.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	if !verbose {
		return discardLogger
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
