// Package analytics aggregates search-behaviour events published by the
// searcher: query volume and latency, cache efficiency, zero-result queries
// and the listings users open.
package analytics

import "time"

type EventType string

const (
	EventSearch     EventType = "search"
	EventZeroResult EventType = "zero_result"
	EventDetailView EventType = "detail_view"
	EventReload     EventType = "index_reload"
)

// Event is the single envelope published on the analytics topic. Fields
// that do not apply to Type are left zero.
type Event struct {
	Type        EventType `json:"type"`
	Query       string    `json:"query,omitempty"`
	Location    string    `json:"location,omitempty"`
	JobType     string    `json:"job_type,omitempty"`
	Sort        string    `json:"sort,omitempty"`
	Returned    int       `json:"returned"`
	Suggestions int       `json:"suggestions"`
	ListingID   int       `json:"listing_id"`
	LatencyMs   int64     `json:"latency_ms"`
	CacheHit    bool      `json:"cache_hit"`
	Generation  uint64    `json:"generation"`
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"request_id,omitempty"`
}

// SearchType picks EventZeroResult for searches that returned nothing.
func SearchType(returned int) EventType {
	if returned == 0 {
		return EventZeroResult
	}
	return EventSearch
}
