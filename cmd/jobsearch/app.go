package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/locale"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/searcher/filter"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/searcher/suggest"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/searcher/synonym"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/postgres"
)

// app is the in-process search stack the commands share.
type app struct {
	engine  *indexer.Engine
	exec    *executor.Executor
	closeDB func() error
}

func (a *app) Close() error {
	if a.closeDB != nil {
		return a.closeDB()
	}
	return nil
}

func loadApp(ctx context.Context, opts *rootOptions) (*app, error) {
	logger.SetupWriter(os.Stderr, opts.logLevel, "text")

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	loc, err := locale.Load(cfg.Locale.Path)
	if err != nil {
		return nil, err
	}
	normalizer := tokenizer.New(loc)

	a := &app{}
	var source catalog.Source
	switch {
	case opts.csvPath != "":
		source = catalog.CSVSource{Path: opts.csvPath}
	case cfg.Catalog.Source == "postgres":
		db, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		a.closeDB = db.Close
		source = catalog.NewPostgresStore(db)
	default:
		source = catalog.CSVSource{Path: cfg.Catalog.CSVPath}
	}

	a.engine = indexer.NewEngine(source, normalizer, cfg.Catalog, nil)
	if _, err := a.engine.Reload(ctx); err != nil {
		a.Close()
		return nil, err
	}
	interpreter := parser.New(loc, normalizer, synonym.New(loc))
	a.exec = executor.New(a.engine, interpreter, suggest.New(cfg.Search.MaxSuggestions, suggest.DefaultCutoff), cfg.Search)
	return a, nil
}

func (a *app) search(ctx context.Context, req executor.Request) (*executor.SearchResult, error) {
	req, err := a.exec.Normalize(req)
	if err != nil {
		return nil, err
	}
	return a.exec.Search(ctx, req)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(w io.Writer, res *executor.SearchResult) {
	if len(res.Results) == 0 {
		fmt.Fprintf(w, "No jobs match %q.\n", res.Query)
		if len(res.Suggestions) > 0 {
			fmt.Fprintf(w, "Did you mean:\n")
			for _, s := range res.Suggestions {
				fmt.Fprintf(w, "  - %s\n", s)
			}
		}
		return
	}
	fmt.Fprintf(w, "%d job(s) for %q", len(res.Results), res.Query)
	if c := res.Constraints; c.Location != "" || c.JobType != "" || c.SalaryMin != nil || c.SalaryMax != nil {
		fmt.Fprintf(w, " %s", describeConstraints(c))
	}
	fmt.Fprintln(w)
	for _, r := range res.Results {
		fmt.Fprintf(w, "%3d. [%d] %s | %s | %s | %s", r.Rank, r.ID, r.Title, r.Company, r.Location, r.JobType)
		if r.Salary != "" {
			fmt.Fprintf(w, " | %s", r.Salary)
		}
		fmt.Fprintf(w, " (score %.4f)\n", r.Score)
	}
}

func describeConstraints(c filter.Constraints) string {
	var parts []string
	if c.Location != "" {
		parts = append(parts, "location="+c.Location)
	}
	if c.JobType != "" {
		parts = append(parts, "type="+c.JobType)
	}
	if c.SalaryMin != nil {
		parts = append(parts, fmt.Sprintf("salary>=%d", *c.SalaryMin))
	}
	if c.SalaryMax != nil {
		parts = append(parts, fmt.Sprintf("salary<=%d", *c.SalaryMax))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func printListing(w io.Writer, l *catalog.Listing) {
	fmt.Fprintf(w, "%s\n", l.Title)
	fmt.Fprintf(w, "  Company:  %s\n", l.Company)
	fmt.Fprintf(w, "  Location: %s\n", l.Location)
	fmt.Fprintf(w, "  Type:     %s\n", l.JobType)
	if l.Salary != "" {
		fmt.Fprintf(w, "  Salary:   %s\n", l.Salary)
	}
	if l.DatePosted != "" {
		fmt.Fprintf(w, "  Posted:   %s\n", l.DatePosted)
	}
	if l.URL != "" {
		fmt.Fprintf(w, "  URL:      %s\n", l.URL)
	}
	if l.Description != "" {
		fmt.Fprintf(w, "\n%s\n", l.Description)
	}
}
