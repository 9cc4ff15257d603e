// Command engine ingests job listings from external providers into the job
// board store and serves them over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var dataDirFlag string

var rootCmd = &cobra.Command{
	Use:   "engine",
	Short: "Job board ingestion engine",
	Long: `Polls external job providers, normalizes and deduplicates their listings,
and stores them for the job board. Configuration lives in <data-dir>/config.yml
and is created from a built-in default on first start.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Data directory (defaults to $JOBBOARD_DATA_DIR or .)")
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
