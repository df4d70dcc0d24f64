package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/psdrun/internal/config"
	"github.com/aretw0/psdrun/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "psdrun",
	Short: "psdrun runs layered design documents as clickable prototypes",
	Long: `psdrun drives the visibility of a layered design document from an
interaction config: screens, popups, highlights, digit displays, clocks and
timers. Sessions are served over HTTP and MCP or played in the terminal.`,
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
	rootCmd.PersistentFlags().String("config", "", "Path to a psdrun.yaml settings file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")
}

// loadSettings reads the settings file, .env and environment, applies the
// persistent flags on top and builds the logger.
func loadSettings(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		cfg.Log.Format = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.NewWriter(os.Stderr, level, logging.Format(strings.ToLower(cfg.Log.Format)))
	return cfg, logger, nil
}
