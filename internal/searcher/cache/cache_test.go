package cache

import (
	"context"
	"errors"
	"path"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/resilience"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	v, ok := s.data[key]
	if !ok {
		return nil, goredis.Nil
	}
	return v, nil
}

func (s *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
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

var cfg = config.RedisConfig{CacheTTL: time.Minute}

func TestKeyDependsOnRequestAndGeneration(t *testing.T) {
	req := executor.Request{Query: "developer", Limit: 10}
	assert.Equal(t, Key(req, 1), Key(req, 1))
	assert.NotEqual(t, Key(req, 1), Key(req, 2))
	assert.NotEqual(t, Key(req, 1), Key(executor.Request{Query: "developer", Limit: 5}, 1))
	assert.NotEqual(t, Key(req, 1), Key(executor.Request{Query: "developer", Limit: 10, Sort: "salary"}, 1))
	assert.Contains(t, Key(req, 1), keyPrefix)
}

func TestGetOrCompute(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	c := New(newMemStore(), cfg, m)
	var calls atomic.Int32
	compute := func() (*executor.SearchResult, error) {
		calls.Add(1)
		return &executor.SearchResult{Query: "developer", Total: 1, Suggestions: []string{}}, nil
	}

	res, hit, err := c.GetOrCompute(context.Background(), "search:k", compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "developer", res.Query)

	res, hit, err = c.GetOrCompute(context.Background(), "search:k", compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, int32(1), calls.Load())

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal))
}

func TestGetOrComputePropagatesErrors(t *testing.T) {
	c := New(newMemStore(), cfg, nil)
	_, _, err := c.GetOrCompute(context.Background(), "search:k", func() (*executor.SearchResult, error) {
		return nil, errors.New("boom")
	})
	assert.EqualError(t, err, "boom")
}

func TestRedisFailureDegradesToMiss(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("connection refused")
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	c := New(store, cfg, m)

	for i := 0; i < 6; i++ {
		res, hit, err := c.GetOrCompute(context.Background(), "search:k", func() (*executor.SearchResult, error) {
			return &executor.SearchResult{Query: "q"}, nil
		})
		require.NoError(t, err)
		assert.False(t, hit)
		assert.Equal(t, "q", res.Query)
	}
	assert.Equal(t, resilience.StateOpen, c.BreakerState())
	assert.Equal(t, float64(resilience.StateOpen), testutil.ToFloat64(m.CircuitBreakerState.WithLabelValues("redis-cache")))
}

func TestInvalidateAll(t *testing.T) {
	store := newMemStore()
	c := New(store, cfg, nil)
	c.Set(context.Background(), "search:a", &executor.SearchResult{Query: "a"})
	c.Set(context.Background(), "search:b", &executor.SearchResult{Query: "b"})
	store.data["other:c"] = []byte("x")

	require.NoError(t, c.InvalidateAll(context.Background()))
	assert.Len(t, store.data, 1)
	_, ok := c.Get(context.Background(), "search:a")
	assert.False(t, ok)
}
