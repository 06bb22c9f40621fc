package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docscout/docscout/internal/ui"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show index and cache statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(".")
			if err != nil {
				return err
			}
			defer a.close()

			stats, err := a.engine.Stats(cmd.Context())
			if err != nil {
				return err
			}

			var cacheLine string
			if a.queryCache != nil {
				cs := a.queryCache.Stats()
				cacheLine = fmt.Sprintf("%d/%d entries, %.0f%% hit rate (%d evictions)",
					cs.Size, cs.MaxSize, cs.HitRate*100, cs.Evictions)
			}

			ui.NewPrinter(cmd.OutOrStdout(), flagNoColor).EngineStats(stats, cacheLine)
			return nil
		},
	}
}
