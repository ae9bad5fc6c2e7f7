// Package indexer owns the searchable state of the service: a catalog
// snapshot and the corpus index built from it. Readers take the current
// snapshot without locking; a reload builds a complete new snapshot off to
// the side and swaps it in atomically.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/resilience"
	"golang.org/x/sync/singleflight"
)

// Snapshot is one immutable generation of catalog plus index. IDs handed
// out by a snapshot are only meaningful within it.
type Snapshot struct {
	Catalog    *catalog.Catalog
	Index      *index.CorpusIndex
	Generation uint64
	Source     string
	BuiltAt    time.Time
	BuildTime  time.Duration
}

// Stats summarizes a snapshot for the index stats endpoint.
type Stats struct {
	Generation     uint64    `json:"generation"`
	Source         string    `json:"source"`
	Listings       int       `json:"listings"`
	VocabularySize int       `json:"vocabulary_size"`
	BuiltAt        time.Time `json:"built_at"`
	BuildMillis    int64     `json:"build_ms"`
}

func (s *Snapshot) Stats() Stats {
	return Stats{
		Generation:     s.Generation,
		Source:         s.Source,
		Listings:       s.Catalog.Len(),
		VocabularySize: s.Index.VocabularySize(),
		BuiltAt:        s.BuiltAt,
		BuildMillis:    s.BuildTime.Milliseconds(),
	}
}

type Engine struct {
	source     catalog.Source
	normalizer catalog.TextNormalizer
	cfg        config.CatalogConfig
	metrics    *metrics.Metrics
	logger     *slog.Logger

	current    atomic.Pointer[Snapshot]
	generation atomic.Uint64
	buildMu    sync.Mutex
	group      singleflight.Group
}

// NewEngine returns an engine with no snapshot; call Reload before serving.
// m may be nil.
func NewEngine(source catalog.Source, normalizer catalog.TextNormalizer, cfg config.CatalogConfig, m *metrics.Metrics) *Engine {
	return &Engine{
		source:     source,
		normalizer: normalizer,
		cfg:        cfg,
		metrics:    m,
		logger:     slog.Default().With("component", "indexer"),
	}
}

// Current returns the active snapshot, or ErrIndexNotReady before the first
// successful build.
func (e *Engine) Current() (*Snapshot, error) {
	snap := e.current.Load()
	if snap == nil {
		return nil, apperrors.ErrIndexNotReady
	}
	return snap, nil
}

// Ready reports whether a snapshot is being served.
func (e *Engine) Ready() bool {
	return e.current.Load() != nil
}

// Reload loads the catalog from the source, builds a new index and swaps it
// in. Concurrent callers share one build. A failed build leaves the current
// snapshot in place.
func (e *Engine) Reload(ctx context.Context) (*Snapshot, error) {
	v, err, shared := e.group.Do("reload", func() (any, error) {
		e.buildMu.Lock()
		defer e.buildMu.Unlock()
		return e.build(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		e.logger.Debug("reload shared with concurrent caller")
	}
	return v.(*Snapshot), nil
}

func (e *Engine) build(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	var snap *Snapshot
	err := resilience.WithTimeout(ctx, e.cfg.LoadTimeout, "catalog-build", func(ctx context.Context) error {
		records, err := e.source.Load(ctx)
		if err != nil {
			return err
		}
		cat, err := catalog.Build(ctx, records, catalog.BuildOptions{
			Normalizer:  e.normalizer,
			Concurrency: e.cfg.BuildConcurrency,
			Now:         start,
		})
		if err != nil {
			return err
		}
		ix, err := index.Build(cat.Documents())
		if err != nil {
			return err
		}
		snap = &Snapshot{
			Catalog: cat,
			Index:   ix,
			Source:  e.source.Name(),
			BuiltAt: start,
		}
		return nil
	})
	elapsed := time.Since(start)
	if e.metrics != nil {
		e.metrics.IndexBuildDuration.Observe(elapsed.Seconds())
	}
	if err != nil {
		if e.metrics != nil {
			e.metrics.IndexBuildsTotal.WithLabelValues("failure").Inc()
		}
		e.logger.Error("index build failed",
			"source", e.source.Name(),
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
		return nil, fmt.Errorf("building index from %s: %w", e.source.Name(), err)
	}

	snap.BuildTime = elapsed
	snap.Generation = e.generation.Add(1)
	e.current.Store(snap)

	if e.metrics != nil {
		e.metrics.IndexBuildsTotal.WithLabelValues("success").Inc()
		e.metrics.CatalogListings.Set(float64(snap.Catalog.Len()))
		e.metrics.VocabularySize.Set(float64(snap.Index.VocabularySize()))
	}
	e.logger.Info("index built",
		"generation", snap.Generation,
		"source", snap.Source,
		"listings", snap.Catalog.Len(),
		"vocabulary", snap.Index.VocabularySize(),
		"duration_ms", elapsed.Milliseconds(),
	)
	return snap, nil
}
