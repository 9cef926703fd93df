package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aretw0/eventstorm/internal/cli"
	"github.com/aretw0/eventstorm/internal/config"
	"github.com/aretw0/eventstorm/internal/logging"
	"github.com/aretw0/eventstorm/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "eventstorm",
	Short: "eventstorm models Event Storming workshops as a validated graph",
	Long: `eventstorm keeps Event Storming workshops (events, commands, actors,
aggregates, policies, read models, external systems and hotspots) as a
persisted graph of triggers grouped into bounded contexts.

It serves the workshops to AI agents over MCP, to other programs over REST,
and to you on the command line.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML or JSON config file")
	rootCmd.PersistentFlags().String("store", "", "Storage driver: file, memory, redis or sqlite")
	rootCmd.PersistentFlags().String("dir", "", "Directory of the file store (default ~/.eventstorming_workshops)")
	rootCmd.PersistentFlags().String("db", "", "Database path of the sqlite store")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")
}

// loadConfig layers the persistent flags over the config file and environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if flags.Changed("store") {
		cfg.Storage.Driver, _ = flags.GetString("store")
	}
	if flags.Changed("dir") {
		cfg.Storage.Dir, _ = flags.GetString("dir")
		if !flags.Changed("db") {
			cfg.Storage.SQLitePath = filepath.Join(cfg.Storage.Dir, "workshops.db")
		}
	}
	if flags.Changed("db") {
		cfg.Storage.SQLitePath, _ = flags.GetString("db")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.Log.Format, _ = flags.GetString("log-format")
	}
	return cfg, cfg.Validate()
}

// openApp builds the engine the command runs against. Callers close it.
func openApp(cmd *cobra.Command) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger := logging.NewWriter(cmd.ErrOrStderr(), level, cfg.Log.Format)
	return cli.NewApp(cfg, logger)
}

// printMarkdown renders md for the command output. Terminals get styled
// output; anything else gets the raw markdown.
func printMarkdown(cmd *cobra.Command, md string) error {
	out := cmd.OutOrStdout()
	render := func(s string) (string, error) { return s + "\n", nil }
	if f, ok := out.(*os.File); ok {
		render = tui.NewRenderer(f)
	}
	rendered, err := render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, rendered)
	return err
}
