package main

import (
	"fmt"

	"github.com/aretw0/eventstorm"
	"github.com/aretw0/eventstorm/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of eventstorm",
	Run: func(cmd *cobra.Command, args []string) {
		if banner, _ := cmd.Flags().GetBool("banner"); banner {
			tui.PrintBanner(cmd.OutOrStdout(), eventstorm.Version)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "eventstorm version %s\n", eventstorm.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("banner", false, "Print the colored banner")
}
