package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentic-research/xbrlgraph/internal/presentation"
	"github.com/agentic-research/xbrlgraph/internal/quarterly"
	"github.com/agentic-research/xbrlgraph/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export [path] [output.db]",
	Short: "Export values, presentation tables and quarterly estimates to SQLite",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		doc, err := openDocument(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer doc.Close()

		tree := presentation.Build(doc, presentation.WithSuppressEmptyRows(cfg.Presentation.SuppressEmptyRows))
		estimates := quarterly.Infer(doc)
		batch, err := store.Export(args[1], doc, tree, estimates,
			store.WithLogger(logger),
			store.WithBatchSize(cfg.Export.BatchSize))
		if err != nil {
			return err
		}
		logger.Info("export finished",
			zap.String("db", args[1]),
			zap.String("batch", batch),
			zap.Duration("elapsed", time.Since(start)))
		_, err = fmt.Fprintln(cmd.OutOrStdout(), batch)
		return err
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
