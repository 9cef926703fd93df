package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/aretw0/eventstorm"
	"github.com/aretw0/eventstorm/internal/presentation/markdown"
	"github.com/spf13/cobra"
)

var workshopCmd = &cobra.Command{
	Use:     "workshop",
	Aliases: []string{"ws"},
	Short:   "Manage workshops",
}

var workshopCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create an empty workshop",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		description, _ := cmd.Flags().GetString("description")
		domainName, _ := cmd.Flags().GetString("domain")
		facilitators, _ := cmd.Flags().GetStringSlice("facilitator")

		doc, err := app.Engine.CreateWorkshop(cmd.Context(), eventstorm.CreateWorkshopInput{
			Name:         args[0],
			Description:  description,
			Domain:       domainName,
			Facilitators: facilitators,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), doc.Metadata.ID)
		return nil
	},
}

var workshopListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List workshops, most recently updated first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		list, err := app.Engine.ListWorkshops(cmd.Context())
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd, list)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tDOMAIN\tELEMENTS\tCONTEXTS\tUPDATED")
		for _, s := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
				s.ID, s.Name, s.Domain, s.ElementCount, s.ContextCount, s.UpdatedAt.Format(time.DateTime))
		}
		return tw.Flush()
	},
}

var workshopInspectCmd = &cobra.Command{
	Use:   "inspect ID",
	Short: "Show a workshop",
	Args:  cobra.ExactArgs(1),
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
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd, doc)
		}
		raw, _ := cmd.Flags().GetString("detail")
		detail, err := markdown.ParseDetail(raw)
		if err != nil {
			return err
		}
		return printMarkdown(cmd, markdown.Workshop(doc, detail))
	},
}

var workshopRemoveCmd = &cobra.Command{
	Use:     "rm ID",
	Aliases: []string{"delete"},
	Short:   "Delete a workshop",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Engine.DeleteWorkshop(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted workshop %s\n", args[0])
		return nil
	},
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.AddCommand(workshopCmd)
	workshopCmd.AddCommand(workshopCreateCmd, workshopListCmd, workshopInspectCmd, workshopRemoveCmd)

	workshopCreateCmd.Flags().String("description", "", "Workshop description")
	workshopCreateCmd.Flags().String("domain", "", "Business domain being modeled")
	workshopCreateCmd.Flags().StringSlice("facilitator", nil, "Facilitator name (repeatable)")

	workshopListCmd.Flags().Bool("json", false, "Print the summaries as JSON")

	workshopInspectCmd.Flags().Bool("json", false, "Print the full document as JSON")
	workshopInspectCmd.Flags().String("detail", "summary", "Detail level: summary or full")
}
