// Package main is the scholarsync command line. It runs the analysis
// pipeline in process against a local PDF and manages the activity log.
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"scholarsync/internal/config"
	"scholarsync/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "scholarsync",
	Short: "Analyze research papers from the command line",
	Long: `scholarsync extracts a paper's text, metadata, summary and related work,
then checks the summary's faithfulness against the source. Settings come from
SCHOLARSYNC_* environment variables, an optional .env file and --config.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().String("log-level", "", "override the configured log level")
}

// cliDefaults differ from the server's: each CLI invocation is its own
// process, so an in-memory activity log would always be empty.
var cliDefaults = map[string]any{"activity_log": "sqlite"}

// loadConfig reads .env, the environment and --config, in that order of
// increasing precedence for files and decreasing for env.
func loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	_ = godotenv.Load(".env")
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFileWithDefaults(path, cliDefaults)
	if err != nil {
		return config.Config{}, nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	// stdout carries reports; logs go to stderr.
	return cfg, logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
