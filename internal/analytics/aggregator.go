package analytics

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/kafka"
)

// maxLatencySamples bounds memory; percentiles cover the most recent
// searches only.
const maxLatencySamples = 10000

type AggregatedStats struct {
	TotalSearches     int64        `json:"total_searches"`
	ZeroResultCount   int64        `json:"zero_result_count"`
	ZeroResultRate    float64      `json:"zero_result_rate"`
	CacheHits         int64        `json:"cache_hits"`
	CacheMisses       int64        `json:"cache_misses"`
	DetailViews       int64        `json:"detail_views"`
	IndexReloads      int64        `json:"index_reloads"`
	AvgLatencyMs      float64      `json:"avg_latency_ms"`
	P50LatencyMs      int64        `json:"p50_latency_ms"`
	P95LatencyMs      int64        `json:"p95_latency_ms"`
	P99LatencyMs      int64        `json:"p99_latency_ms"`
	TopQueries        []QueryCount `json:"top_queries"`
	ZeroResultQueries []QueryCount `json:"zero_result_queries"`
	TopLocations      []QueryCount `json:"top_locations"`
	TopListings       []QueryCount `json:"top_listings"`
	QueriesPerMinute  float64      `json:"queries_per_minute"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

type Aggregator struct {
	mu            sync.RWMutex
	totalSearches int64
	zeroResults   int64
	cacheHits     int64
	cacheMisses   int64
	detailViews   int64
	reloads       int64
	latencies     []int64
	next          int
	queries       map[string]int64
	zeroQueries   map[string]int64
	locations     map[string]int64
	listings      map[string]int64
	startTime     time.Time
	now           func() time.Time

	consumer *kafka.Consumer
	logger   *slog.Logger
}

// NewAggregator creates an empty aggregator. consumer may be nil when events
// are fed through Record directly.
func NewAggregator(consumer *kafka.Consumer) *Aggregator {
	return &Aggregator{
		latencies:   make([]int64, 0, 1024),
		queries:     make(map[string]int64),
		zeroQueries: make(map[string]int64),
		locations:   make(map[string]int64),
		listings:    make(map[string]int64),
		startTime:   time.Now(),
		now:         time.Now,
		consumer:    consumer,
		logger:      slog.Default().With("component", "analytics-aggregator"),
	}
}

// SetConsumer attaches the Kafka consumer feeding the aggregator.
func (a *Aggregator) SetConsumer(c *kafka.Consumer) {
	a.consumer = c
}

func (a *Aggregator) Start(ctx context.Context) error {
	a.logger.Info("analytics aggregator starting")
	return a.consumer.Start(ctx)
}

// HandleEvent decodes analytics events; malformed messages are logged and
// committed so they do not block the partition.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[Event](value)
		if err != nil {
			agg.logger.Error("failed to decode analytics event",
				"error", err,
				"key", string(key),
			)
			return nil
		}
		agg.Record(event)
		return nil
	}
}

func (a *Aggregator) Record(event Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch event.Type {
	case EventSearch, EventZeroResult:
		a.recordSearch(event)
	case EventDetailView:
		a.detailViews++
		a.listings[strconv.Itoa(event.ListingID)]++
	case EventReload:
		a.reloads++
	default:
		a.logger.Warn("unknown analytics event type", "type", event.Type)
	}
}

func (a *Aggregator) recordSearch(event Event) {
	a.totalSearches++
	if event.CacheHit {
		a.cacheHits++
	} else {
		a.cacheMisses++
	}
	query := strings.ToLower(strings.TrimSpace(event.Query))
	a.queries[query]++
	if event.Type == EventZeroResult || event.Returned == 0 {
		a.zeroResults++
		a.zeroQueries[query]++
	}
	if event.Location != "" {
		a.locations[event.Location]++
	}
	if len(a.latencies) < maxLatencySamples {
		a.latencies = append(a.latencies, event.LatencyMs)
	} else {
		a.latencies[a.next] = event.LatencyMs
		a.next = (a.next + 1) % maxLatencySamples
	}
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalSearches:   a.totalSearches,
		ZeroResultCount: a.zeroResults,
		CacheHits:       a.cacheHits,
		CacheMisses:     a.cacheMisses,
		DetailViews:     a.detailViews,
		IndexReloads:    a.reloads,
	}
	if a.totalSearches > 0 {
		stats.ZeroResultRate = float64(a.zeroResults) / float64(a.totalSearches)
	}
	if len(a.latencies) > 0 {
		sorted := slices.Clone(a.latencies)
		slices.Sort(sorted)
		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	stats.TopQueries = topN(a.queries, 10)
	stats.ZeroResultQueries = topN(a.zeroQueries, 10)
	stats.TopLocations = topN(a.locations, 10)
	stats.TopListings = topN(a.listings, 10)
	if elapsed := a.now().Sub(a.startTime).Minutes(); elapsed > 0 {
		stats.QueriesPerMinute = float64(stats.TotalSearches) / elapsed
	}
	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN orders by count, then key, so equal counts list deterministically.
func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	slices.SortFunc(result, func(a, b QueryCount) int {
		if a.Count != b.Count {
			if a.Count > b.Count {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Query, b.Query)
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
