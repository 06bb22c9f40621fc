package cmd

import (
	"github.com/spf13/cobra"

	"github.com/docscout/docscout/internal/chunk"
	"github.com/docscout/docscout/internal/index"
	"github.com/docscout/docscout/internal/scanner"
	"github.com/docscout/docscout/internal/ui"
)

func newIndexCmd() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "index [path]",
		Short: "Index documents in a directory",
		Long: `Index scans the directory for documents matching the configured
include patterns, splits them into chunks, and builds the keyword and
vector indexes. Unchanged documents are skipped on repeat runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}

			a, err := openApp(root)
			if err != nil {
				return err
			}
			defer a.close()

			coord, err := index.NewCoordinator(index.CoordinatorConfig{
				RootDir: a.root,
				ScanOptions: scanner.Options{
					Include: a.cfg.Paths.Include,
					Exclude: a.cfg.Paths.Exclude,
				},
				ChunkOptions: chunk.Options{
					MaxChunkWords:          a.cfg.Chunking.MaxChunkWords,
					OverlapWords:           a.cfg.Chunking.OverlapWords,
					SplitOnHeadings:        a.cfg.Chunking.SplitOnHeadings,
					PreserveHeadingContext: true,
				},
				Metadata: a.metadata,
				Keyword:  a.keyword,
				Vector:   a.vector,
				Embedder: a.embedder,
				Workers:  workers,
			})
			if err != nil {
				return err
			}

			stats, err := coord.Run(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.saveVectors(); err != nil {
				return err
			}

			ui.NewPrinter(cmd.OutOrStdout(), flagNoColor).IndexSummary(stats)
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent indexing workers (0 = NumCPU)")
	return cmd
}
