package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/verleihernix/math-visualizer/internal/config"
	"github.com/verleihernix/math-visualizer/internal/logging"
	"github.com/verleihernix/math-visualizer/internal/render"
)

var rootCmd = &cobra.Command{
	Use:   "mathviz",
	Short: "mathviz plots functions of x",
	Long: `mathviz parses expressions such as sin(x) * x^2, samples them across the
visible range and draws them in a window, to PNG/PDF files, over HTTP or as
MCP tools.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Path to a YAML or JSON config file")
	rootCmd.PersistentFlags().String("log-level", "", "Override the log level (debug, info, warn, error)")
}

// loadSettings reads the config file and builds the process logger.
// It exits on invalid settings.
func loadSettings(cmd *cobra.Command) (config.Config, *slog.Logger) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewWithOptions(os.Stderr, level, logging.Format(cfg.Log.Format))
	render.SetLogger(logger)
	logger.Debug("Config loaded", "path", path)
	return cfg, logger
}
