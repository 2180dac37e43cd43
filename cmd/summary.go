package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/agentic-research/xbrlgraph/internal/graph"
)

var summaryCmd = &cobra.Command{
	Use:   "summary [path]",
	Short: "Print node counts, contexts and values of a filing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := openDocument(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer doc.Close()

		out := cmd.OutOrStdout()
		stats := doc.Graph().Stats()
		kinds := make([]string, 0, len(stats))
		for k := range stats {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)

		f := doc.Filing()
		fmt.Fprintf(out, "file: %s\nform: %s\n", f.FileName, f.Form)
		for _, k := range kinds {
			fmt.Fprintf(out, "%-18s %d\n", k, stats[k])
		}

		resolved := 0
		for _, n := range doc.Graph().Find(graph.OfKind(graph.KindContext)) {
			if doc.Context(n.ID()) != nil {
				resolved++
			}
		}
		numeric := 0
		for _, v := range doc.Values() {
			if v.IsNumeric() {
				numeric++
			}
		}
		fmt.Fprintf(out, "contexts: %d\nvalues: %d (%d numeric)\n", resolved, len(doc.Values()), numeric)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}
