package main

import (
	"fmt"

	"github.com/aretw0/eventstorm/pkg/codec"
	"github.com/aretw0/eventstorm/pkg/graph"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check a workshop document for consistency",
	Long: `Decodes a stored or exported workshop document (use - for stdin) and checks
every graph invariant: unique IDs, symmetric trigger edges, no dangling
references, consistent context membership and known element types.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}
		format, err := formatFlag(cmd, args[0])
		if err != nil {
			return err
		}
		doc, err := codec.DecodeDocument(data, format)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		if err := graph.Validate(doc); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Workshop %q is valid! ✅ (%d elements, %d bounded contexts)\n",
			doc.Metadata.Name, len(doc.Elements), len(doc.BoundedContexts))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("format", "json", "Input format: json or yaml (default guessed from the extension)")
}
