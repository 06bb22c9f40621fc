// Package cmd provides the CLI commands for docscout.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/docscout/docscout/internal/logging"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	flagNoColor  bool
	flagLogLevel string

	loggingCleanup func()
)

// NewRootCmd creates the root command for the docscout CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docscout",
		Short: "Hybrid keyword and semantic search over local documents",
		Long: `docscout indexes a directory of documents and serves hybrid search
over them, fusing keyword (BM25) and semantic (vector) retrieval into
one ranked result list.

It runs entirely locally. Semantic search uses a local Ollama server
when one is reachable and degrades to keyword-only search when not.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.SetVersionTemplate("docscout version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.PersistentPreRunE = setupLogging
	cmd.PersistentPostRun = func(*cobra.Command, []string) {
		if loggingCleanup != nil {
			loggingCleanup()
			loggingCleanup = nil
		}
	}

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newClearCmd())

	return cmd
}

func setupLogging(_ *cobra.Command, _ []string) error {
	cfg := logging.DefaultConfig()
	if flagLogLevel != "" {
		cfg.Level = flagLogLevel
	}
	_, cleanup, err := logging.Setup(cfg)
	if err != nil {
		return err
	}
	loggingCleanup = cleanup
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
