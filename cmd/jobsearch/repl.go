package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/searcher/executor"
	apperrors "github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/errors"
	"github.com/spf13/cobra"
)

const replHelp = `Type a query to search. Commands:
  :show <id>          print one listing
  :sort <mode>        similarity, salary or date
  :limit <n>          results per query
  :help               this text
  :quit or exit       leave
`

func newReplCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive search prompt over one index build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.Close()
			return runRepl(cmd, a, root.jsonOutput)
		},
	}
}

func runRepl(cmd *cobra.Command, a *app, jsonOutput bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())
	var sort string
	var limit int

	fmt.Fprint(out, replHelp)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}
		if strings.HasPrefix(line, ":") {
			cmdName, arg, _ := strings.Cut(line[1:], " ")
			arg = strings.TrimSpace(arg)
			switch cmdName {
			case "q", "quit", "exit":
				return nil
			case "help":
				fmt.Fprint(out, replHelp)
			case "sort":
				sort = arg
			case "limit":
				n, err := strconv.Atoi(arg)
				if err != nil || n < 0 {
					fmt.Fprintf(out, "invalid limit %q\n", arg)
					continue
				}
				limit = n
			case "show":
				id, err := strconv.Atoi(arg)
				if err != nil {
					fmt.Fprintf(out, "job id %s not found\n", arg)
					continue
				}
				listing, err := a.exec.Detail(ctx, id)
				if err != nil {
					fmt.Fprintln(out, apperrors.PublicMessage(err))
					continue
				}
				if err := emit(out, jsonOutput, listing, func() { printListing(out, listing) }); err != nil {
					return err
				}
			default:
				fmt.Fprintf(out, "unknown command %q, try :help\n", cmdName)
			}
			continue
		}

		res, err := a.search(ctx, executor.Request{Query: line, Sort: sort, Limit: limit})
		if err != nil {
			fmt.Fprintln(out, apperrors.PublicMessage(err))
			continue
		}
		if err := emit(out, jsonOutput, res, func() { printResult(out, res) }); err != nil {
			return err
		}
	}
}

func emit(w io.Writer, jsonOutput bool, v any, text func()) error {
	if jsonOutput {
		return writeJSON(w, v)
	}
	text()
	return nil
}
