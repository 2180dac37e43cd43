package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentic-research/xbrlgraph/internal/presentation"
)

var (
	presentationView     string
	presentationFormat   string
	presentationSuppress bool
)

var presentationCmd = &cobra.Command{
	Use:   "presentation [path]",
	Short: "Render presentation views as tables",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := openDocument(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer doc.Close()

		suppress := cfg.Presentation.SuppressEmptyRows
		if cmd.Flags().Changed("suppress-empty") {
			suppress = presentationSuppress
		}
		tree := presentation.Build(doc, presentation.WithSuppressEmptyRows(suppress))
		out := cmd.OutOrStdout()

		if presentationFormat == "json" {
			data, err := tree.JSON()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, string(data))
			return err
		}

		views := tree.Children()
		if presentationView != "" {
			view := tree.Presentation(presentationView)
			if view == nil {
				return fmt.Errorf("no presentation view %q", presentationView)
			}
			views = []*presentation.Node{view}
		}
		var tables []presentation.Table
		for _, v := range views {
			tables = append(tables, v.Tables()...)
		}

		switch presentationFormat {
		case "md", "markdown":
			return presentation.Markdown(out, tables)
		case "html":
			return presentation.HTML(out, tables)
		default:
			return fmt.Errorf("unknown format %q (want md, html or json)", presentationFormat)
		}
	},
}

func init() {
	presentationCmd.Flags().StringVar(&presentationView, "view", "", "Render only the named view")
	presentationCmd.Flags().StringVarP(&presentationFormat, "format", "f", "md", "Output format: md, html or json")
	presentationCmd.Flags().BoolVar(&presentationSuppress, "suppress-empty", false, "Drop rows without values")
	rootCmd.AddCommand(presentationCmd)
}
