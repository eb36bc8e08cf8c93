// Package main implements the scout CLI for running scouting queries and
// inspecting category indexes without the HTTP server.
package main

import (
	"fmt"
	"os"

	"alera/internal/config"
	"alera/internal/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "scout",
	Short: "Alera NBA scouting assistant",
	Long:  "Retrieves player scouting notes for a natural-language request and asks an LLM to recommend and justify the best fits.",
}

var (
	logLevel  string
	logFormat string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "Log format (console or json)")
}

// setup loads config from the environment and builds the CLI logger.
func setup() (config.Config, *zap.Logger) {
	cfg := config.Load()
	return cfg, logging.MustSetup(logLevel, logFormat)
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
