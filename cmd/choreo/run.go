package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [input]",
	Short: "Execute one input through the configured topology",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		eng, err := setup(ctx)
		if err != nil {
			return err
		}
		defer eng.close()

		dispatcher, err := eng.runtime.Load(ctx)
		if err != nil {
			return err
		}

		result := dispatcher.Execute(ctx, strings.Join(args, " "))
		fmt.Fprintln(cmd.OutOrStdout(), result)
		return nil
	},
}
