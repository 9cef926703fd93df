package main

import (
	"fmt"

	"github.com/aretw0/eventstorm/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph ID",
	Short: "Export the workshop as a Mermaid flowchart",
	Long: `Outputs a Mermaid diagram (graph LR) of the workshop. Bounded contexts become
subgraphs and edges crossing a context boundary are dotted. With --focus the
flow traced from that element is highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		doc, err := app.Engine.LoadWorkshop(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		var overlay *graph.Overlay
		opts := flowOptions(cmd)
		if focus, _ := cmd.Flags().GetString("focus"); focus != "" {
			opts.StartID = focus
			rep, err := app.Engine.VisualizeFlow(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			overlay = graph.FlowOverlay(rep)
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(doc, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	addFlowFlags(graphCmd, "focus")
}
