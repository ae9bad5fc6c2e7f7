package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/searcher/executor"
	apperrors "github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/tracing"
)

// Searcher is satisfied by executor.Executor.
type Searcher interface {
	Normalize(req executor.Request) (executor.Request, error)
	Search(ctx context.Context, req executor.Request) (*executor.SearchResult, error)
	Detail(ctx context.Context, id int) (*catalog.Listing, error)
}

// Index is satisfied by indexer.Engine.
type Index interface {
	Current() (*indexer.Snapshot, error)
	Reload(ctx context.Context) (*indexer.Snapshot, error)
}

// EventTracker is satisfied by collector.BatchCollector.
type EventTracker interface {
	Track(event analytics.Event)
}

// Deps are the optional collaborators of a Handler; nil fields disable the
// corresponding feature.
type Deps struct {
	Cache     *cache.QueryCache
	Collector EventTracker
	Tracer    *tracing.Tracer
	Metrics   *metrics.Metrics
}

type Handler struct {
	searcher  Searcher
	index     Index
	cache     *cache.QueryCache
	collector EventTracker
	tracer    *tracing.Tracer
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func New(searcher Searcher, index Index, deps Deps) *Handler {
	return &Handler{
		searcher:  searcher,
		index:     index,
		cache:     deps.Cache,
		collector: deps.Collector,
		tracer:    deps.Tracer,
		metrics:   deps.Metrics,
		logger:    slog.Default().With("component", "search-handler"),
	}
}

// Search serves GET /api/v1/search?q=&location=&job_type=&sort=&limit=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)
	params := r.URL.Query()

	req := executor.Request{
		Query:    params.Get("q"),
		Location: params.Get("location"),
		JobType:  params.Get("job_type"),
		Sort:     params.Get("sort"),
	}
	if limitStr := params.Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.countQuery("invalid")
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		req.Limit = parsed
	}
	req, err := h.searcher.Normalize(req)
	if err != nil {
		h.countQuery("invalid")
		h.writeAppError(w, err)
		return
	}

	ctx, span := h.tracer.Start(ctx, "search", middleware.GetRequestID(ctx))
	defer span.End()
	span.SetAttr("query", req.Query)

	var (
		result      *executor.SearchResult
		cacheHit    bool
		cacheStatus = "disabled"
	)
	if h.cache != nil {
		snap, snapErr := h.index.Current()
		if snapErr != nil {
			h.countQuery("error")
			h.writeAppError(w, snapErr)
			return
		}
		result, cacheHit, err =h.cache.GetOrCompute(ctx, cache.Key(req, snap.Generation), func() (*executor.SearchResult, error) {
			return h.searcher.Search(ctx, req)
		})
		cacheStatus = "miss"
		if cacheHit {
			cacheStatus = "hit"
		}
	} else {
		result, err = h.searcher.Search(ctx, req)
	}
	if err != nil {
		h.countQuery("error")
		log.Error("search execution failed", "query", req.Query, "error", err)
		h.writeAppError(w, err)
		return
	}

	latency := time.Since(start)
	outcome := "results"
	if len(result.Results) == 0 {
		outcome = "zero_result"
	}
	h.countQuery(outcome)
	if h.metrics != nil {
		h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
		h.metrics.SearchResultsCount.Observe(float64(len(result.Results)))
		h.metrics.SuggestionsTotal.Add(float64(len(result.Suggestions)))
	}
	span.SetAttr("results", len(result.Results))
	span.SetAttr("cache", cacheStatus)

	log.Info("search completed",
		"query", req.Query,
		"returned", len(result.Results),
		"suggestions", len(result.Suggestions),
		"cache", cacheStatus,
		"latency_ms", latency.Milliseconds(),
	)
	h.track(analytics.Event{
		Type:        analytics.SearchType(len(result.Results)),
		Query:       req.Query,
		Location:    result.Constraints.Location,
		JobType:     result.Constraints.JobType,
		Sort:        string(result.Sort),
		Returned:    len(result.Results),
		Suggestions: len(result.Suggestions),
		LatencyMs:   latency.Milliseconds(),
		CacheHit:    cacheHit,
		Generation:  result.Generation,
		RequestID:   middleware.GetRequestID(ctx),
	})
	h.writeJSON(w, http.StatusOK, result)
}

// JobDetail serves GET /api/v1/jobs/{id}. Any id that is not a listing
// position, including non-numeric ones, is not found.
func (h *Handler) JobDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	raw := r.PathValue("id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("job id %s not found", raw))
		return
	}
	listing, err := h.searcher.Detail(ctx, id)
	if err != nil {
		h.writeAppError(w, err)
		return
	}
	var generation uint64
	if snap, err := h.index.Current(); err == nil {
		generation = snap.Generation
	}
	h.track(analytics.Event{
		Type:       analytics.EventDetailView,
		ListingID:  id,
		Generation: generation,
		RequestID:  middleware.GetRequestID(ctx),
	})
	h.writeJSON(w, http.StatusOK, listing)
}

// Reload serves POST /api/v1/admin/reload: rebuild the index from the
// catalog source and swap it in.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)
	snap, err := h.index.Reload(ctx)
	if err != nil {
		log.Error("index reload failed", "error", err)
		h.writeAppError(w, err)
		return
	}
	if h.cache != nil {
		if err := h.cache.InvalidateAll(ctx); err != nil {
			log.Warn("cache invalidation after reload failed", "error", err)
		}
	}
	h.track(analytics.Event{
		Type:       analytics.EventReload,
		Generation: snap.Generation,
		RequestID:  middleware.GetRequestID(ctx),
	})
	log.Info("index reloaded", "generation", snap.Generation, "listings", snap.Catalog.Len())
	h.writeJSON(w, http.StatusOK, snap.Stats())
}

func (h *Handler) IndexStats(w http.ResponseWriter, r *http.Request) {
	snap, err := h.index.Current()
	if err != nil {
		h.writeAppError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snap.Stats())
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
		"breaker":  h.cache.BreakerState().String(),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.InvalidateAll(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) countQuery(outcome string) {
	if h.metrics != nil {
		h.metrics.SearchQueriesTotal.WithLabelValues(outcome).Inc()
	}
}

func (h *Handler) track(event analytics.Event) {
	if h.collector != nil {
		h.collector.Track(event)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) writeAppError(w http.ResponseWriter, err error) {
	h.writeError(w, apperrors.HTTPStatusCode(err), apperrors.PublicMessage(err))
}
