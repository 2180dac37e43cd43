package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/agentic-research/xbrlgraph/internal/query"
	"github.com/agentic-research/xbrlgraph/internal/xbrl"
)

var valuesJSONPath string

var valuesCmd = &cobra.Command{
	Use:   "values [path]",
	Short: "Print value snapshots as JSON lines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := openDocument(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer doc.Close()

		values := doc.Values()
		if valuesJSONPath != "" {
			f, err := query.Compile(valuesJSONPath, query.WithLogger(logger))
			if err != nil {
				return err
			}
			if values, err = f.Apply(cmd.Context(), doc); err != nil {
				return err
			}
		}
		return writeRecords(cmd, values)
	},
}

func writeRecords(cmd *cobra.Command, values []*xbrl.FactValue) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, v := range values {
		if err := enc.Encode(v.Record()); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	valuesCmd.Flags().StringVarP(&valuesJSONPath, "jsonpath", "q", "", "JSONPath filter, e.g. \"$[?(@.numberOfMonths == '3')]\"")
	rootCmd.AddCommand(valuesCmd)
}
