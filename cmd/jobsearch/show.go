package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newShowCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one listing by its catalog id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid job id %q", args[0])
			}
			a, err := loadApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.Close()

			listing, err := a.exec.Detail(cmd.Context(), id)
			if err != nil {
				return err
			}
			if root.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), listing)
			}
			printListing(cmd.OutOrStdout(), listing)
			return nil
		},
	}
}
