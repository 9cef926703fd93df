package main

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/eventstorm/pkg/codec"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export ID",
	Short: "Export a workshop as JSON or YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		output, _ := cmd.Flags().GetString("output")
		format, err := formatFlag(cmd, output)
		if err != nil {
			return err
		}
		brief, _ := cmd.Flags().GetBool("brief")

		exp, err := app.Engine.Export(cmd.Context(), args[0], !brief)
		if err != nil {
			return err
		}
		data, err := codec.Encode(exp, format)
		if err != nil {
			return err
		}
		if output == "" || output == "-" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(output, data, 0644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d elements to %s\n", len(exp.Elements), output)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import an exported workshop (use - for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		data, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}
		format, err := formatFlag(cmd, args[0])
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("name")
		preserve, _ := cmd.Flags().GetBool("preserve-id")

		doc, err := app.Engine.Import(cmd.Context(), data, format, codec.ImportOptions{
			NewName:    name,
			PreserveID: preserve,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), doc.Metadata.ID)
		return nil
	},
}

// formatFlag returns the --format value, or guesses it from path.
func formatFlag(cmd *cobra.Command, path string) (codec.Format, error) {
	if cmd.Flags().Changed("format") {
		raw, _ := cmd.Flags().GetString("format")
		return codec.ParseFormat(raw)
	}
	if path == "" || path == "-" {
		return codec.FormatJSON, nil
	}
	return codec.FormatFromPath(path), nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)

	exportCmd.Flags().StringP("output", "o", "", "Write to file instead of stdout")
	exportCmd.Flags().String("format", "json", "Output format: json or yaml")
	exportCmd.Flags().Bool("brief", false, "Keep only name, domain and description in metadata")

	importCmd.Flags().String("format", "json", "Input format: json or yaml (default guessed from the extension)")
	importCmd.Flags().String("name", "", "Rename the imported workshop")
	importCmd.Flags().Bool("preserve-id", false, "Keep the workshop ID, overwriting any existing workshop")
}
