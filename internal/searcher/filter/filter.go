// Package filter turns per-document similarity scores into the ranked
// result list: zero scores are dropped, structured constraints applied, and
// survivors sorted, truncated and numbered.
package filter

import (
	"math"
	"slices"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/catalog"
)

type SortMode string

const (
	SortSimilarity SortMode = "similarity"
	SortSalary     SortMode = "salary"
	SortDate       SortMode = "date"
)

// ParseSortMode maps "" to SortSimilarity.
func ParseSortMode(s string) (SortMode, bool) {
	switch m := SortMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return SortSimilarity, true
	case SortSimilarity, SortSalary, SortDate:
		return m, true
	}
	return "", false
}

// Constraints are the structured filters of one search. Zero values are
// inactive.
type Constraints struct {
	Location  string `json:"location,omitempty"`
	JobType   string `json:"job_type,omitempty"`
	SalaryMin *int64 `json:"salary_min,omitempty"`
	SalaryMax *int64 `json:"salary_max,omitempty"`
}

func (c Constraints) salaryActive() bool {
	return c.SalaryMin != nil || c.SalaryMax != nil
}

type ScoredListing struct {
	catalog.Listing
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// Source is the read side of the catalog the engine needs.
type Source interface {
	Len() int
	At(i int) *catalog.Listing
}

// Apply filters and orders listings by scores, which is indexed by listing
// id. limit <= 0 means no cap. The catalog is only read.
func Apply(scores []float64, listings Source, c Constraints, mode SortMode, limit int) []ScoredListing {
	location := strings.ToLower(c.Location)
	jobType := strings.ToLower(c.JobType)

	var kept []int
	for id, score := range scores {
		if score <= 0 || id >= listings.Len() {
			continue
		}
		l := listings.At(id)
		if location != "" && !strings.Contains(strings.ToLower(l.Location), location) {
			continue
		}
		if jobType != "" && !strings.Contains(strings.ToLower(l.JobType), jobType) {
			continue
		}
		if c.salaryActive() && !salaryInRange(l.SalaryValue, c) {
			continue
		}
		kept = append(kept, id)
	}

	secondary := secondaryKey(mode, listings)
	slices.SortStableFunc(kept, func(a, b int) int {
		if scores[a] != scores[b] {
			if scores[a] > scores[b] {
				return -1
			}
			return 1
		}
		if secondary != nil {
			if d := secondary(a, b); d != 0 {
				return d
			}
		}
		return a - b
	})

	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}
	out := make([]ScoredListing, len(kept))
	for i, id := range kept {
		out[i] = ScoredListing{
			Listing: *listings.At(id),
			Score:   math.Round(scores[id]*10000) / 10000,
			Rank:    i + 1,
		}
	}
	return out
}

// salaryInRange excludes listings without a numeric salary whenever a bound
// is active.
func salaryInRange(v *float64, c Constraints) bool {
	if v == nil {
		return false
	}
	if c.SalaryMin != nil && *v < float64(*c.SalaryMin) {
		return false
	}
	if c.SalaryMax != nil && *v > float64(*c.SalaryMax) {
		return false
	}
	return true
}

// secondaryKey orders equal-score listings descending by salary or post
// date. Listings missing the value sort after those that have it.
func secondaryKey(mode SortMode, listings Source) func(a, b int) int {
	switch mode {
	case SortSalary:
		return func(a, b int) int {
			return descMissingLast(listings.At(a).SalaryValue, listings.At(b).SalaryValue, func(x, y float64) int {
				switch {
				case x > y:
					return -1
				case x < y:
					return 1
				}
				return 0
			})
		}
	case SortDate:
		return func(a, b int) int {
			pa, pb := listings.At(a).PostedAt, listings.At(b).PostedAt
			switch {
			case pa == nil && pb == nil:
				return 0
			case pa == nil:
				return 1
			case pb == nil:
				return -1
			}
			return pb.Compare(*pa)
		}
	}
	return nil
}

func descMissingLast(a, b *float64, cmp func(x, y float64) int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return cmp(*a, *b)
}
