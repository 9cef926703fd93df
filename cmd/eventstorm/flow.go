package main

import (
	"github.com/aretw0/eventstorm/internal/presentation/markdown"
	"github.com/aretw0/eventstorm/pkg/flow"
	"github.com/spf13/cobra"
)

var flowCmd = &cobra.Command{
	Use:   "flow ID",
	Short: "Trace the trigger flows of a workshop",
	Long: `Walks the trigger edges from every root element (or from --start) and prints
the resulting tree. Cycles and the depth limit are marked, never dropped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		rep, err := app.Engine.VisualizeFlow(cmd.Context(), args[0], flowOptions(cmd))
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd, rep)
		}
		return printMarkdown(cmd, markdown.Flow(rep))
	},
}

// flowOptions reads the traversal flags shared by flow and graph.
func flowOptions(cmd *cobra.Command) flow.Options {
	start, _ := cmd.Flags().GetString("start")
	depth, _ := cmd.Flags().GetInt("depth")
	limit, _ := cmd.Flags().GetInt("max-elements")
	return flow.Options{StartID: start, MaxDepth: depth, MaxElements: limit}
}

func addFlowFlags(cmd *cobra.Command, startFlag string) {
	cmd.Flags().String(startFlag, "", "Element to start tracing from")
	cmd.Flags().Int("depth", 0, "Maximum traversal depth (default from config)")
	cmd.Flags().Int("max-elements", 0, "Maximum number of elements to emit (default from config)")
}

func init() {
	rootCmd.AddCommand(flowCmd)
	addFlowFlags(flowCmd, "start")
	flowCmd.Flags().Bool("json", false, "Print the traversal report as JSON")
}
