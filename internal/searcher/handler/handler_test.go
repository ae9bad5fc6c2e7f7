package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/locale"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/searcher/suggest"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/searcher/synonym"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/config"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var listings = catalog.StaticSource{
	{Title: "Backend Developer", Company: "Tokopedia", Location: "Jakarta", Salary: "8000000", JobType: "Remote", Description: "Build Go services"},
	{Title: "Graphic Designer", Company: "Gojek", Location: "Bandung", Salary: "4000000", JobType: "Contract", Description: "Create visual assets"},
}

type recorder struct {
	mu     sync.Mutex
	events []analytics.Event
}

func (r *recorder) Track(e analytics.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []analytics.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]analytics.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, goredis.Nil
	}
	return v, nil
}

func (s *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *memStore) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k := range s.data {
		if ok, _ := path.Match(pattern, k); ok {
			delete(s.data, k)
			n++
		}
	}
	return n, nil
}

type fixture struct {
	handler *Handler
	mux     *http.ServeMux
	events  *recorder
	engine  *indexer.Engine
}

func newFixture(t *testing.T, withCache, loaded bool) *fixture {
	t.Helper()
	loc := locale.Default()
	norm := tokenizer.New(loc)
	engine := indexer.NewEngine(listings, norm, config.CatalogConfig{BuildConcurrency: 1}, nil)
	if loaded {
		_, err := engine.Reload(context.Background())
		require.NoError(t, err)
	}
	exec := executor.New(engine, parser.New(loc, norm, synonym.New(loc)), suggest.New(suggest.DefaultMax, suggest.DefaultCutoff),
		config.SearchConfig{DefaultLimit: 10, MaxResults: 50})

	events := &recorder{}
	deps := Deps{Collector: events}
	if withCache {
		deps.Cache = cache.New(&memStore{data: map[string][]byte{}}, config.RedisConfig{CacheTTL: time.Minute}, nil)
	}
	h := New(exec, engine, deps)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/jobs/{id}", h.JobDetail)
	mux.HandleFunc("POST /api/v1/admin/reload", h.Reload)
	mux.HandleFunc("GET /api/v1/admin/index", h.IndexStats)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	return &fixture{handler: h, mux: mux, events: events, engine: engine}
}

func (f *fixture) do(t *testing.T, method, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func TestSearchReturnsRankedResults(t *testing.T) {
	f := newFixture(t, false, true)
	rec, body := f.do(t, http.MethodGet, "/api/v1/search?q=developer+jakarta+remote")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	results := body["results"].([]any)
	require.Len(t, results, 1)
	first := results[0].(map[string]any)
	assert.Equal(t, "Backend Developer", first["title"])
	assert.EqualValues(t, 0, first["id"])
	assert.EqualValues(t, 1, first["rank"])
	assert.Equal(t, []analytics.EventType{analytics.EventSearch}, f.events.types())
}

func TestSearchZeroResultsCarriesSuggestions(t *testing.T) {
	f := newFixture(t, false, true)
	rec, body := f.do(t, http.MethodGet, "/api/v1/search?q=grafic+desainer")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["results"])
	assert.NotNil(t, body["results"])
	assert.Equal(t, []any{"Graphic Designer"}, body["suggestions"])
	assert.Equal(t, []analytics.EventType{analytics.EventZeroResult}, f.events.types())
}

func TestSearchRejectsBadParameters(t *testing.T) {
	f := newFixture(t, false, true)
	cases := map[string]string{
		"missing query": "/api/v1/search",
		"blank query":   "/api/v1/search?q=+++",
		"bad limit":     "/api/v1/search?q=developer&limit=abc",
		"zero limit":    "/api/v1/search?q=developer&limit=0",
		"unknown sort":  "/api/v1/search?q=developer&sort=popularity",
	}
	for name, target := range cases {
		t.Run(name, func(t *testing.T) {
			rec, body := f.do(t, http.MethodGet, target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, body["error"])
		})
	}
	assert.Empty(t, f.events.types())
}

func TestSearchBeforeIndexReady(t *testing.T) {
	f := newFixture(t, false, false)
	rec, body := f.do(t, http.MethodGet, "/api/v1/search?q=developer")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "search index unavailable", body["error"])
}

func TestSearchServedFromCache(t *testing.T) {
	f := newFixture(t, true, true)
	f.do(t, http.MethodGet, "/api/v1/search?q=developer")
	rec, _ := f.do(t, http.MethodGet, "/api/v1/search?q=developer")
	require.Equal(t, http.StatusOK, rec.Code)

	hits, misses := f.handler.cache.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
	f.events.mu.Lock()
	defer f.events.mu.Unlock()
	require.Len(t, f.events.events, 2)
	assert.False(t, f.events.events[0].CacheHit)
	assert.True(t, f.events.events[1].CacheHit)
}

func TestJobDetail(t *testing.T) {
	f := newFixture(t, false, true)

	rec, body := f.do(t, http.MethodGet, "/api/v1/jobs/1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Graphic Designer", body["title"])
	assert.Equal(t, "Gojek", body["company"])

	for _, id := range []string{"2", "-1", "abc"} {
		rec, body := f.do(t, http.MethodGet, "/api/v1/jobs/"+id)
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
		assert.Contains(t, body["error"], id)
	}
	assert.Equal(t, []analytics.EventType{analytics.EventDetailView}, f.events.types())
}

func TestReloadBumpsGenerationAndFlushesCache(t *testing.T) {
	f := newFixture(t, true, true)
	f.do(t, http.MethodGet, "/api/v1/search?q=developer")

	rec, body := f.do(t, http.MethodPost, "/api/v1/admin/reload")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, body["generation"])
	assert.EqualValues(t, 2, body["listings"])

	_, stats := f.do(t, http.MethodGet, "/api/v1/admin/index")
	assert.EqualValues(t, 2, stats["generation"])

	f.do(t, http.MethodGet, "/api/v1/search?q=developer")
	hits, _ := f.handler.cache.Stats()
	assert.Zero(t, hits)
	assert.Contains(t, f.events.types(), analytics.EventReload)
}

func TestCacheEndpoints(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		f := newFixture(t, false, true)
		_, body := f.do(t, http.MethodGet, "/api/v1/cache/stats")
		assert.Equal(t, "disabled", body["status"])
		rec, _ := f.do(t, http.MethodPost, "/api/v1/cache/invalidate")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("enabled", func(t *testing.T) {
		f := newFixture(t, true, true)
		f.do(t, http.MethodGet, "/api/v1/search?q=developer")
		f.do(t, http.MethodGet, "/api/v1/search?q=developer")

		_, body := f.do(t, http.MethodGet, "/api/v1/cache/stats")
		assert.EqualValues(t, 1, body["hits"])
		assert.Equal(t, "50.0%", body["hit_rate"])
		assert.Equal(t, "closed", body["breaker"])

		rec, body := f.do(t, http.MethodPost, "/api/v1/cache/invalidate")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "invalidated", body["status"])
	})
}
