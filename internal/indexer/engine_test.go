package indexer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/locale"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var listings = catalog.StaticSource{
	{Title: "Backend Developer", Company: "Tokopedia", Location: "Jakarta", Salary: "8000000", JobType: "Remote", Description: "Build Go services"},
	{Title: "Graphic Designer", Company: "Gojek", Location: "Bandung", Salary: "4000000", JobType: "Contract", Description: "Design marketing assets"},
}

type funcSource struct {
	calls atomic.Int32
	load  func(ctx context.Context) ([]catalog.Listing, error)
}

func (s *funcSource) Name() string { return "func" }

func (s *funcSource) Load(ctx context.Context) ([]catalog.Listing, error) {
	s.calls.Add(1)
	return s.load(ctx)
}

func newEngine(src catalog.Source, m *metrics.Metrics) *Engine {
	return NewEngine(src, tokenizer.New(locale.Default()), config.CatalogConfig{
		LoadTimeout:      time.Second,
		BuildConcurrency: 2,
	}, m)
}

func TestEngineNotReadyBeforeReload(t *testing.T) {
	e := newEngine(listings, nil)
	_, err := e.Current()
	assert.ErrorIs(t, err, apperrors.ErrIndexNotReady)
	assert.False(t, e.Ready())
}

func TestEngineReload(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	e := newEngine(listings, m)

	snap, err := e.Reload(context.Background())
	require.NoError(t, err)
	assert.True(t, e.Ready())
	assert.Equal(t, uint64(1), snap.Generation)
	assert.Equal(t, 2, snap.Catalog.Len())
	assert.Equal(t, 2, snap.Index.DocCount())
	assert.Equal(t, "static", snap.Source)

	cur, err := e.Current()
	require.NoError(t, err)
	assert.Same(t, snap, cur)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.IndexBuildsTotal.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CatalogListings))
	assert.Equal(t, float64(snap.Index.VocabularySize()), testutil.ToFloat64(m.VocabularySize))

	stats := snap.Stats()
	assert.Equal(t, 2, stats.Listings)
	assert.Equal(t, uint64(1), stats.Generation)
}

func TestEngineReloadSwapsSnapshot(t *testing.T) {
	e := newEngine(listings, nil)
	first, err := e.Reload(context.Background())
	require.NoError(t, err)
	second, err := e.Reload(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, uint64(2), second.Generation)

	// the old snapshot stays usable for requests that still hold it
	l, err := first.Catalog.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Graphic Designer", l.Title)
}

func TestEngineFailedReloadKeepsCurrent(t *testing.T) {
	fail := false
	src := &funcSource{load: func(context.Context) ([]catalog.Listing, error) {
		if fail {
			return nil, apperrors.ErrCatalogUnavailable
		}
		return listings.Load(context.Background())
	}}
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	e := newEngine(src, m)
	good, err := e.Reload(context.Background())
	require.NoError(t, err)

	fail = true
	_, err = e.Reload(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrCatalogUnavailable)

	cur, err := e.Current()
	require.NoError(t, err)
	assert.Same(t, good, cur)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IndexBuildsTotal.WithLabelValues("failure")))
}

func TestEngineEmptyCatalogIsFatal(t *testing.T) {
	e := newEngine(catalog.StaticSource{}, nil)
	_, err := e.Reload(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrEmptyCatalog)
	assert.False(t, e.Ready())
}

func TestEngineReloadTimeout(t *testing.T) {
	src := &funcSource{load: func(ctx context.Context) ([]catalog.Listing, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	e := NewEngine(src, tokenizer.New(locale.Default()), config.CatalogConfig{LoadTimeout: 20 * time.Millisecond}, nil)
	_, err := e.Reload(context.Background())
	assert.True(t, errors.Is(err, apperrors.ErrTimeout) || errors.Is(err, context.DeadlineExceeded), err)
}

func TestEngineConcurrentReloadsShareBuild(t *testing.T) {
	release := make(chan struct{})
	src := &funcSource{load: func(context.Context) ([]catalog.Listing, error) {
		<-release
		return listings.Load(context.Background())
	}}
	e := newEngine(src, nil)

	var wg sync.WaitGroup
	snaps := make([]*Snapshot, 8)
	for i := range snaps {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap, err := e.Reload(context.Background())
			assert.NoError(t, err)
			snaps[i] = snap
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, src.calls.Load(), int32(len(snaps)))
	for _, s := range snaps {
		require.NotNil(t, s)
	}
	cur, err := e.Current()
	require.NoError(t, err)
	assert.Equal(t, src.calls.Load(), int32(cur.Generation))
}
