package cmd

import (
	"github.com/spf13/cobra"

	"github.com/docscout/docscout/internal/ui"
)

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all indexed data",
		Long: `Clear removes every document and chunk from the keyword index, the
vector index, and the metadata store. Clearing an empty index is a
no-op.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(".")
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			if err := a.engine.ClearIndex(ctx); err != nil {
				return err
			}

			docs, err := a.metadata.ListDocuments(ctx)
			if err != nil {
				return err
			}
			for _, doc := range docs {
				if err := a.metadata.DeleteDocument(ctx, doc.ID); err != nil {
					return err
				}
			}

			if err := a.saveVectors(); err != nil {
				return err
			}

			ui.NewPrinter(cmd.OutOrStdout(), flagNoColor).Success("Index cleared.")
			return nil
		},
	}
}
