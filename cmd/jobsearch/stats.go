package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Build the index and print catalog and vocabulary statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.Close()

			snap, err := a.engine.Current()
			if err != nil {
				return err
			}
			stats := snap.Stats()
			if root.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), stats)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Source:      %s\n", stats.Source)
			fmt.Fprintf(w, "Listings:    %d\n", stats.Listings)
			fmt.Fprintf(w, "Vocabulary:  %d terms\n", stats.VocabularySize)
			fmt.Fprintf(w, "Build time:  %d ms\n", stats.BuildMillis)
			return nil
		},
	}
}
