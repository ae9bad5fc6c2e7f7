// Package main implements the jobsearch CLI: the search pipeline run
// in-process against a catalog, without the HTTP service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	csvPath    string
	jsonOutput bool
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "jobsearch",
		Short:         "Search a job listing catalog from the terminal",
		Long:          "jobsearch builds the TF-IDF index over a job catalog (CSV export or the Postgres listings table) and runs queries, detail lookups and an interactive prompt against it.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to YAML config file (defaults are used when empty)")
	root.PersistentFlags().StringVar(&opts.csvPath, "csv", "", "Load listings from this CSV file instead of the configured source")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Print results as JSON")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level written to stderr")

	root.AddCommand(
		newQueryCmd(opts),
		newShowCmd(opts),
		newReplCmd(opts),
		newStatsCmd(opts),
	)
	return root
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
