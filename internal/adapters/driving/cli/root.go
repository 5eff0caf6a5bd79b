// Package cli wires the couchpush commands: push, watch and version.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/couchpush-cli/internal/logger"
)

// version is overridden at build time via -ldflags.
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "couchpush",
	Short: "Push a directory tree to a CouchDB database",
	Long: `couchpush assembles a couchapp-style directory tree into design and
loose documents and synchronises them with a CouchDB database in one
bulk request: existing documents are updated, new ones inserted, and
design documents removed locally are deleted remotely.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"print debug output to stderr")
}

// Execute runs the root command with interrupt-driven cancellation.
// In-flight network operations observe the context; a second interrupt
// kills the process via the default handler.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
