// Package parser reads structured constraints out of free-text job queries:
// a known location, a job-type keyword and salary bounds. It also produces
// the cleaned text the ranker scores.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/locale"
)

// ParsedQuery is built per request. Normalized is the query after
// normalization only; CleanedText adds synonym expansion and is what gets
// scored.
type ParsedQuery struct {
	RawQuery    string `json:"raw_query"`
	Normalized  string `json:"normalized"`
	CleanedText string `json:"cleaned_text"`
	Location    string `json:"location,omitempty"`
	JobType     string `json:"job_type,omitempty"`
	SalaryMin   *int64 `json:"salary_min,omitempty"`
	SalaryMax   *int64 `json:"salary_max,omitempty"`
}

// Normalizer and Expander are satisfied by tokenizer.Normalizer and
// synonym.Expander.
type Normalizer interface {
	Normalize(text string) string
}

type Expander interface {
	Expand(normalized string) string
}

var (
	thousandsSep = regexp.MustCompile(`(\d)[.,](\d{3})`)
	integerRun   = regexp.MustCompile(`\d+`)
)

type marker struct {
	text string
	word *regexp.Regexp
}

func (m marker) in(s string) bool {
	if m.word != nil {
		return m.word.MatchString(s)
	}
	return strings.Contains(s, m.text)
}

type Interpreter struct {
	normalizer Normalizer
	expander   Expander
	locations  []string
	jobTypes   []string
	above      []marker
	below      []marker
}

func New(loc *locale.Locale, normalizer Normalizer, expander Expander) *Interpreter {
	return &Interpreter{
		normalizer: normalizer,
		expander:   expander,
		locations:  loc.Locations,
		jobTypes:   loc.JobTypes,
		above:      compileMarkers(loc.SalaryMarkers.Above),
		below:      compileMarkers(loc.SalaryMarkers.Below),
	}
}

// compileMarkers matches markers made of letters as whole words, so "over"
// does not fire inside "discover". Symbol markers such as ">=" match
// anywhere.
func compileMarkers(texts []string) []marker {
	out := make([]marker, 0, len(texts))
	for _, t := range texts {
		m := marker{text: t}
		if strings.IndexFunc(t, unicode.IsLetter) >= 0 {
			m.word = regexp.MustCompile(`\b` + regexp.QuoteMeta(t) + `\b`)
		}
		out = append(out, m)
	}
	return out
}

// Parse never fails: a missing signal leaves its field unset.
func (p *Interpreter) Parse(raw string) ParsedQuery {
	lower := strings.ToLower(raw)
	normalized := p.normalizer.Normalize(raw)
	q := ParsedQuery{
		RawQuery:    raw,
		Normalized:  normalized,
		CleanedText: p.expander.Expand(normalized),
		Location:    p.firstContained(lower, p.locations),
		JobType:     p.firstContained(lower, p.jobTypes),
	}
	q.SalaryMin, q.SalaryMax = p.salaryBounds(lower)
	return q
}

func (p *Interpreter) firstContained(s string, candidates []string) string {
	for _, c := range candidates {
		if strings.Contains(s, c) {
			return c
		}
	}
	return ""
}

func (p *Interpreter) salaryBounds(lower string) (*int64, *int64) {
	numbers := extractNumbers(lower)
	if len(numbers) == 0 {
		return nil, nil
	}
	if anyMarker(lower, p.above) {
		return &numbers[0], nil
	}
	if anyMarker(lower, p.below) {
		return nil, &numbers[0]
	}
	if len(numbers) < 2 {
		return nil, nil
	}
	lo, hi := numbers[0], numbers[0]
	for _, n := range numbers[1:] {
		lo = min(lo, n)
		hi = max(hi, n)
	}
	return &lo, &hi
}

func anyMarker(s string, markers []marker) bool {
	for _, m := range markers {
		if m.in(s) {
			return true
		}
	}
	return false
}

// extractNumbers drops thousands separators ("5.000.000", "5,000,000") and
// returns every integer run in order. Runs too large for int64 are skipped.
func extractNumbers(s string) []int64 {
	for {
		next := thousandsSep.ReplaceAllString(s, "$1$2")
		if next == s {
			break
		}
		s = next
	}
	runs := integerRun.FindAllString(s, -1)
	numbers := make([]int64, 0, len(runs))
	for _, r := range runs {
		n, err := strconv.ParseInt(r, 10, 64)
		if err != nil {
			continue
		}
		numbers = append(numbers, n)
	}
	return numbers
}
