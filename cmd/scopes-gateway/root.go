package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/kamiazya/scopes/internal/config"
	"github.com/kamiazya/scopes/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scopes-gateway",
	Short: "Idempotent tool gateway for the scopes application",
	Long: `scopes-gateway exposes scopes operations as tools over MCP and HTTP.
Calls carrying an idempotency key are replayed from the result store instead of running twice.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json (overrides config)")
}

// loadConfig reads the config file and environment, then applies persistent flags.
// Logs always go to stderr; stdout belongs to MCP stdio and command output.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFromEnv(path)
	if err != nil {
		return nil, nil, err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format, _ = cmd.Flags().GetString("log-format")
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.New(level, cfg.Log.Format), nil
}
