package main

import (
	"strings"

	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/searcher/executor"
	"github.com/spf13/cobra"
)

type queryOptions struct {
	location string
	jobType  string
	sort     string
	limit    int
}

func newQueryCmd(root *rootOptions) *cobra.Command {
	opts := &queryOptions{}
	cmd := &cobra.Command{
		Use:   "query <text...>",
		Short: "Run one search and print the ranked listings",
		Long:  "Runs the full pipeline (interpretation, synonym expansion, TF-IDF ranking, filtering and sorting) for the given free-text query. Locations, job types and salary phrases inside the query are honoured like in the HTTP API.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.search(cmd.Context(), executor.Request{
				Query:    strings.Join(args, " "),
				Location: opts.location,
				JobType:  opts.jobType,
				Sort:     opts.sort,
				Limit:    opts.limit,
			})
			if err != nil {
				return err
			}
			if root.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.location, "location", "l", "", "Only listings whose location contains this text")
	cmd.Flags().StringVarP(&opts.jobType, "job-type", "t", "", "Only listings whose job type contains this text")
	cmd.Flags().StringVarP(&opts.sort, "sort", "s", "", "Sort order: similarity, salary or date")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results (0 uses the configured default)")
	return cmd
}
