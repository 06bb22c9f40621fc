package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/docscout/docscout/internal/search"
	"github.com/docscout/docscout/internal/ui"
)

func newSearchCmd() *cobra.Command {
	var (
		limit          int
		keywordWeight  float64
		semanticWeight float64
		minSimilarity  float64
		withContext    bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search indexed documents",
		Long: `Search runs a hybrid query over the index. Results found by both
keyword and semantic retrieval are ranked by a weighted combination of
their scores; single-source results keep their raw similarity.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			a, err := openApp(".")
			if err != nil {
				return err
			}
			defer a.close()

			cfg := a.engine.Config()
			if cmd.Flags().Changed("limit") {
				cfg.Limit = limit
			}
			if cmd.Flags().Changed("keyword-weight") || cmd.Flags().Changed("semantic-weight") {
				cfg.KeywordWeight = keywordWeight
				cfg.SemanticWeight = semanticWeight
			}
			if cmd.Flags().Changed("min-similarity") {
				cfg.MinSimilarity = minSimilarity
			}
			if withContext {
				cfg.IncludeContext = true
			}
			if err := a.engine.UpdateConfig(cfg); err != nil {
				return err
			}

			results, err := a.engine.Search(cmd.Context(), query)
			if err != nil {
				return err
			}

			ui.NewPrinter(cmd.OutOrStdout(), flagNoColor).SearchResults(query, results)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", search.DefaultLimit, "Maximum results")
	cmd.Flags().Float64Var(&keywordWeight, "keyword-weight", search.DefaultKeywordWeight, "Keyword score weight (must sum to 1.0 with --semantic-weight)")
	cmd.Flags().Float64Var(&semanticWeight, "semantic-weight", search.DefaultSemanticWeight, "Semantic score weight (must sum to 1.0 with --keyword-weight)")
	cmd.Flags().Float64Var(&minSimilarity, "min-similarity", 0, "Drop results scoring below this floor")
	cmd.Flags().BoolVar(&withContext, "context", false, "Include surrounding chunks in results")
	return cmd
}
