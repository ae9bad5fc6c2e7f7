// Package suggest offers "did you mean" titles when a search returns
// nothing. Candidates are scored by edit-distance ratio against the cleaned
// query; only titles that exist in the catalog are ever returned.
package suggest

import (
	"slices"
	"strings"

	"github.com/xrash/smetrics"
)

const (
	DefaultMax    = 3
	DefaultCutoff = 0.6
)

type Suggester struct {
	max    int
	cutoff float64
}

// New returns a Suggester keeping at most max titles scoring at least
// cutoff. Non-positive arguments fall back to the defaults.
func New(max int, cutoff float64) *Suggester {
	if max <= 0 {
		max = DefaultMax
	}
	if cutoff <= 0 || cutoff > 1 {
		cutoff = DefaultCutoff
	}
	return &Suggester{max: max, cutoff: cutoff}
}

type candidate struct {
	title string
	score float64
	order int
}

// Suggest compares query with every distinct title, case-insensitively,
// and returns the closest ones, best first. Equal scores keep catalog order.
func (s *Suggester) Suggest(query string, titles []string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []string{}
	}
	seen := make(map[string]struct{}, len(titles))
	var cands []candidate
	for i, title := range titles {
		if title == "" {
			continue
		}
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}
		if score := Ratio(query, strings.ToLower(title)); score >= s.cutoff {
			cands = append(cands, candidate{title: title, score: score, order: i})
		}
	}
	slices.SortFunc(cands, func(a, b candidate) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		}
		return a.order - b.order
	})
	out := make([]string, 0, min(len(cands), s.max))
	for _, c := range cands[:min(len(cands), s.max)] {
		out = append(out, c.title)
	}
	return out
}

// Ratio is 1 - distance/longer length, with unit-cost Levenshtein distance
// over bytes. Two empty strings are identical.
func Ratio(a, b string) float64 {
	longest := max(len(a), len(b))
	if longest == 0 {
		return 1
	}
	d := smetrics.WagnerFischer(a, b, 1, 1, 1)
	return 1 - float64(d)/float64(longest)
}
