// Package executor runs the search pipeline against the current index
// snapshot: interpret the query, score every listing, filter and sort, and
// fall back to title suggestions when nothing survives.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/searcher/filter"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/searcher/suggest"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/tracing"
	"github.com/go-playground/validator/v10"
)

// Request is one search. Location and JobType, when given, replace whatever
// the interpreter reads from the query text.
type Request struct {
	Query    string `json:"query" validate:"required,max=500"`
	Location string `json:"location,omitempty" validate:"max=100"`
	JobType  string `json:"job_type,omitempty" validate:"max=50"`
	Sort     string `json:"sort,omitempty" validate:"omitempty,oneof=similarity salary date"`
	Limit    int    `json:"limit,omitempty" validate:"gte=0"`
}

type SearchResult struct {
	Query       string                 `json:"query"`
	Constraints filter.Constraints     `json:"constraints"`
	Sort        filter.SortMode        `json:"sort"`
	Total       int                    `json:"total"`
	Results     []filter.ScoredListing `json:"results"`
	Suggestions []string               `json:"suggestions"`
	Generation  uint64                 `json:"index_generation"`
}

// SnapshotProvider is satisfied by indexer.Engine.
type SnapshotProvider interface {
	Current() (*indexer.Snapshot, error)
}

type Executor struct {
	engine      SnapshotProvider
	interpreter *parser.Interpreter
	suggester   *suggest.Suggester
	cfg         config.SearchConfig
	validate    *validator.Validate
	logger      *slog.Logger
}

func New(engine SnapshotProvider, interpreter *parser.Interpreter, suggester *suggest.Suggester, cfg config.SearchConfig) *Executor {
	return &Executor{
		engine:      engine,
		interpreter: interpreter,
		suggester:   suggester,
		cfg:         cfg,
		validate:    validator.New(),
		logger:      slog.Default().With("component", "query-executor"),
	}
}

// Normalize trims the request, applies the default limit and caps it at
// the configured maximum. It returns ErrInvalidInput for an empty query or
// an unknown sort mode.
func (e *Executor) Normalize(req Request) (Request, error) {
	req.Query = strings.TrimSpace(req.Query)
	req.Location = strings.ToLower(strings.TrimSpace(req.Location))
	req.JobType = strings.ToLower(strings.TrimSpace(req.JobType))
	req.Sort = strings.ToLower(strings.TrimSpace(req.Sort))
	if err := e.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			if fieldErrs[0].Tag() == "required" {
				return req, apperrors.New(apperrors.ErrInvalidInput, 400, "query must not be empty")
			}
			return req, apperrors.Newf(apperrors.ErrInvalidInput, 400, "invalid %s", strings.ToLower(fieldErrs[0].Field()))
		}
		return req, apperrors.New(apperrors.ErrInvalidInput, 400, "invalid search request")
	}
	if req.Limit == 0 {
		req.Limit = e.cfg.DefaultLimit
	}
	if e.cfg.MaxResults > 0 && req.Limit > e.cfg.MaxResults {
		req.Limit = e.cfg.MaxResults
	}
	return req, nil
}

// Search runs req against the current snapshot. Zero matches is not an
// error: the result carries suggestions instead.
func (e *Executor) Search(ctx context.Context, req Request) (*SearchResult, error) {
	req, err := e.Normalize(req)
	if err != nil {
		return nil, err
	}
	snap, err := e.engine.Current()
	if err != nil {
		return nil, err
	}
	start := time.Now()

	_, span := tracing.StartChild(ctx, "parse")
	q := e.interpreter.Parse(req.Query)
	span.SetAttr("cleaned_text", q.CleanedText)
	span.End()

	constraints := filter.Constraints{
		Location:  q.Location,
		JobType:   q.JobType,
		SalaryMin: q.SalaryMin,
		SalaryMax: q.SalaryMax,
	}
	if req.Location != "" {
		constraints.Location = req.Location
	}
	if req.JobType != "" {
		constraints.JobType = req.JobType
	}
	mode, ok := filter.ParseSortMode(req.Sort)
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, 400, "unknown sort mode %q", req.Sort)
	}

	_, span = tracing.StartChild(ctx, "rank")
	scores := ranker.Score(q.CleanedText, snap.Index)
	span.SetAttr("documents", len(scores))
	span.End()

	_, span = tracing.StartChild(ctx, "filter")
	results := filter.Apply(scores, snap.Catalog, constraints, mode, req.Limit)
	span.SetAttr("results", len(results))
	span.End()

	result := &SearchResult{
		Query:       req.Query,
		Constraints: constraints,
		Sort:        mode,
		Total:       len(results),
		Results:     results,
		Suggestions: []string{},
		Generation:  snap.Generation,
	}
	if len(results) == 0 {
		_, span = tracing.StartChild(ctx, "suggest")
		result.Suggestions = e.suggester.Suggest(q.CleanedText, snap.Catalog.Titles())
		span.SetAttr("suggestions", len(result.Suggestions))
		span.End()
	}

	e.logger.Debug("query executed",
		"query", req.Query,
		"cleaned", q.CleanedText,
		"location", constraints.Location,
		"job_type", constraints.JobType,
		"results", len(results),
		"suggestions", len(result.Suggestions),
		"generation", snap.Generation,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// Detail returns the listing with id from the current snapshot.
func (e *Executor) Detail(ctx context.Context, id int) (*catalog.Listing, error) {
	snap, err := e.engine.Current()
	if err != nil {
		return nil, err
	}
	l, err := snap.Catalog.Get(id)
	if err != nil {
		return nil, fmt.Errorf("job detail: %w", err)
	}
	return l, nil
}
