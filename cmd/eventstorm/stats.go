package main

import (
	"github.com/aretw0/eventstorm/internal/presentation/markdown"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats ID",
	Short: "Show workshop statistics and context coverage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		st, err := app.Engine.Statistics(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd, st)
		}
		return printMarkdown(cmd, markdown.Statistics(st))
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().Bool("json", false, "Print the statistics as JSON")
}
