// Package main provides the entry point for the TalentTrek job board API.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/talenttrek/internal/logger"
)

var (
	configFile string
	logDebug   bool
	logJSON    bool
)

var rootCmd = &cobra.Command{
	Use:   "talenttrek",
	Short: "TalentTrek job board API",
	Long:  "TalentTrek serves the job board REST API and recommends postings to job seekers by skill overlap.",
	// Usage is noise for runtime failures such as an unreachable database.
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a YAML config file (default talenttrek.yaml if present)")
	rootCmd.PersistentFlags().BoolVar(&logDebug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "json", false, "Log as JSON")
}

// newLogger builds the process logger. Flags win over the configured values.
func newLogger(jsonOut, debug bool) (*zap.Logger, error) {
	return logger.New(jsonOut || logJSON, debug || logDebug)
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
