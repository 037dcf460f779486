package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(toolsCmd)
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the discovered tool descriptors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		eng, err := setup(ctx)
		if err != nil {
			return err
		}
		defer eng.close()

		descriptors := eng.tools.LoadTools(ctx)
		if len(descriptors) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no tools discovered")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPROVIDER\tUSER AUTH")
		for _, d := range descriptors {
			auth := ""
			if d.RequiresUserAuth {
				auth = "required"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", d.ID, d.Provider, auth)
		}
		return w.Flush()
	},
}
