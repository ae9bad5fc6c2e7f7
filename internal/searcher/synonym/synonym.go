// Package synonym widens normalized query text with related terms from the
// locale's synonym groups. Only queries are expanded; the corpus vocabulary
// is left as indexed.
package synonym

import (
	"strings"

	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/locale"
)

type Expander struct {
	// groups keeps locale order so emitted related terms are deterministic.
	groups  []locale.SynonymGroup
	byToken map[string][]int
}

func New(loc *locale.Locale) *Expander {
	e := &Expander{
		groups:  loc.Synonyms,
		byToken: make(map[string][]int),
	}
	index := func(token string, group int) {
		for _, g := range e.byToken[token] {
			if g == group {
				return
			}
		}
		e.byToken[token] = append(e.byToken[token], group)
	}
	for i, g := range loc.Synonyms {
		index(g.Term, i)
		for _, r := range g.Related {
			index(r, i)
		}
	}
	return e
}

// Expand emits each token followed by the related terms of every group the
// token belongs to, either as the group's term or as one of its related
// terms. The group's term itself is not emitted on behalf of a related
// term. Repeats are dropped, keeping the first occurrence.
func (e *Expander) Expand(normalized string) string {
	tokens := strings.Fields(normalized)
	if len(tokens) == 0 {
		return ""
	}
	seen := make(map[string]struct{}, len(tokens)*2)
	out := make([]string, 0, len(tokens)*2)
	emit := func(t string) {
		if _, dup := seen[t]; dup {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	for _, tok := range tokens {
		emit(tok)
		for _, g := range e.byToken[tok] {
			for _, r := range e.groups[g].Related {
				emit(r)
			}
		}
	}
	return strings.Join(out, " ")
}
