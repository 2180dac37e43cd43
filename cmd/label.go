package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	labelRole string
	labelAll  bool
)

var labelCmd = &cobra.Command{
	Use:   "label [path] [parameter]",
	Short: "Resolve the display label of a parameter",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := openDocument(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer doc.Close()

		out := cmd.OutOrStdout()
		labels := doc.Labels()
		if labelAll {
			for _, l := range labels.Candidates(args[1]) {
				fmt.Fprintf(out, "%s\t%s\n", l.Role, l.Text)
			}
			return nil
		}
		role := labelRole
		if role == "" {
			role = labels.DefaultRole()
		}
		l := labels.LabelFor(args[1], role)
		if l.IsEmpty() {
			return fmt.Errorf("no label for %q", args[1])
		}
		fmt.Fprintln(out, l.Text)
		return nil
	},
}

func init() {
	labelCmd.Flags().StringVarP(&labelRole, "role", "r", "", "Label role (e.g. terseLabel, verboseLabel)")
	labelCmd.Flags().BoolVar(&labelAll, "all", false, "List every candidate label with its role")
	rootCmd.AddCommand(labelCmd)
}
