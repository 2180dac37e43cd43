package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/agentic-research/xbrlgraph/internal/quarterly"
)

var quarterlyCmd = &cobra.Command{
	Use:   "quarterly [path]",
	Short: "Infer quarter values from cumulative filings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := openDocument(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer doc.Close()

		enc := json.NewEncoder(cmd.OutOrStdout())
		for _, e := range quarterly.Infer(doc) {
			if err := enc.Encode(e); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(quarterlyCmd)
}
