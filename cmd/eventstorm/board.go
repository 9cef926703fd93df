package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/aretw0/eventstorm/pkg/adapters/loam"
	"github.com/spf13/cobra"
)

var boardCmd = &cobra.Command{
	Use:   "board ID",
	Short: "Write a workshop as a board of markdown cards",
	Long: `Writes one markdown card per element into a Loam repository under
<out>/<workshop-id>/. The YAML front matter carries the type, position,
bounded context and triggers; the body carries description and notes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		out, _ := cmd.Flags().GetString("out")
		board, err := loam.New(out)
		if err != nil {
			return err
		}

		doc, err := app.Engine.LoadWorkshop(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		n, err := board.WriteCards(cmd.Context(), doc)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d cards to %s\n", n, board.Dir)

		if list, _ := cmd.Flags().GetBool("list"); !list {
			return nil
		}
		cards, err := board.ListCards(cmd.Context(), doc.Metadata.ID)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "POS\tTYPE\tNAME\tCONTEXT")
		for _, c := range cards {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.Position, c.Type, c.Name, c.Context)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(boardCmd)
	boardCmd.Flags().String("out", "board", "Directory of the card repository")
	boardCmd.Flags().Bool("list", false, "List the written cards")
}
