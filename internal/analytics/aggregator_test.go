package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregatorStats(t *testing.T) {
	agg := NewAggregator(nil)
	start := agg.startTime
	agg.now = func() time.Time { return start.Add(2 * time.Minute) }

	agg.Record(Event{Type: EventSearch, Query: "Developer", Location: "jakarta", Returned: 3, LatencyMs: 10})
	agg.Record(Event{Type: EventSearch, Query: "developer ", Returned: 2, LatencyMs: 20, CacheHit: true})
	agg.Record(Event{Type: EventZeroResult, Query: "quantum pastry chef", LatencyMs: 30})
	agg.Record(Event{Type: EventDetailView, ListingID: 7})
	agg.Record(Event{Type: EventDetailView, ListingID: 7})
	agg.Record(Event{Type: EventReload})

	s := agg.Stats()
	assert.Equal(t, int64(3), s.TotalSearches)
	assert.Equal(t, int64(1), s.ZeroResultCount)
	assert.InDelta(t, 1.0/3.0, s.ZeroResultRate, 1e-9)
	assert.Equal(t, int64(1), s.CacheHits)
	assert.Equal(t, int64(2), s.CacheMisses)
	assert.Equal(t, int64(2), s.DetailViews)
	assert.Equal(t, int64(1), s.IndexReloads)
	assert.InDelta(t, 20.0, s.AvgLatencyMs, 1e-9)
	assert.Equal(t, int64(20), s.P50LatencyMs)
	assert.Equal(t, int64(30), s.P99LatencyMs)
	assert.Equal(t, []QueryCount{{"developer", 2}, {"quantum pastry chef", 1}}, s.TopQueries)
	assert.Equal(t, []QueryCount{{"quantum pastry chef", 1}}, s.ZeroResultQueries)
	assert.Equal(t, []QueryCount{{"jakarta", 1}}, s.TopLocations)
	assert.Equal(t, []QueryCount{{"7", 2}}, s.TopListings)
	assert.InDelta(t, 1.5, s.QueriesPerMinute, 1e-9)
}

func TestAggregatorBoundsLatencySamples(t *testing.T) {
	agg := NewAggregator(nil)
	for i := 0; i < maxLatencySamples+10; i++ {
		agg.Record(Event{Type: EventSearch, Query: "q", Returned: 1, LatencyMs: int64(i)})
	}
	assert.Len(t, agg.latencies, maxLatencySamples)
	assert.Equal(t, int64(maxLatencySamples+10), agg.Stats().TotalSearches)
}

func TestHandleEvent(t *testing.T) {
	agg := NewAggregator(nil)
	handle := HandleEvent(agg)
	data, err := json.Marshal(Event{Type: EventSearch, Query: "designer", Returned: 1})
	require.NoError(t, err)

	require.NoError(t, handle(context.Background(), nil, data))
	require.NoError(t, handle(context.Background(), nil, []byte("{broken")))
	assert.Equal(t, int64(1), agg.Stats().TotalSearches)
}

type staticHistory []AggregatedStats

func (h staticHistory) ListSnapshots(_ context.Context, limit int) ([]AggregatedStats, error) {
	if limit < len(h) {
		return h[:limit], nil
	}
	return h, nil
}

func TestHandler(t *testing.T) {
	agg := NewAggregator(nil)
	agg.Record(Event{Type: EventSearch, Query: "developer", Returned: 1})
	h := NewHandler(agg, staticHistory{{TotalSearches: 5}, {TotalSearches: 3}})

	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var stats AggregatedStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.TotalSearches)

	rec = httptest.NewRecorder()
	h.History(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/history?limit=1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Snapshots []AggregatedStats `json:"snapshots"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Snapshots, 1)
	assert.Equal(t, int64(5), body.Snapshots[0].TotalSearches)

	rec = httptest.NewRecorder()
	h.History(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/history?limit=zero", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	NewHandler(agg, nil).History(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/history", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
