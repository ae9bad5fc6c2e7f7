// Package tokenizer normalizes listing and query text for the search engine.
// It lower-cases input, deletes punctuation and symbol characters outright,
// splits on whitespace and removes the locale's stop-words.
package tokenizer

import (
	"strings"
	"unicode"

	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/locale"
)

// Normalizer is safe for concurrent use; its stop-word set is never
// modified after construction.
type Normalizer struct {
	stopWords map[string]struct{}
}

func New(loc *locale.Locale) *Normalizer {
	stop := make(map[string]struct{}, len(loc.Stopwords))
	for _, w := range loc.Stopwords {
		stop[w] = struct{}{}
	}
	return &Normalizer{stopWords: stop}
}

// Normalize returns the surviving tokens of text joined by single spaces.
// Normalize(Normalize(x)) == Normalize(x).
func (n *Normalizer) Normalize(text string) string {
	return strings.Join(n.Tokens(text), " ")
}

// NormalizeValue normalizes v when it is a string and returns "" for any
// other value, including nil.
func (n *Normalizer) NormalizeValue(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return n.Normalize(s)
}

// Tokens lower-cases text, strips punctuation without inserting a separator
// ("it's" becomes "its"), splits on whitespace and drops stop-words.
func (n *Normalizer) Tokens(text string) []string {
	if text == "" {
		return nil
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}
	words := strings.Fields(b.String())
	tokens := words[:0]
	for _, word := range words {
		if n.IsStopWord(word) {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

func (n *Normalizer) IsStopWord(word string) bool {
	_, ok := n.stopWords[word]
	return ok
}
