package ranker

import (
	"strings"

	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/indexer/index"
)

// Score returns the cosine similarity of the cleaned query text against
// every document of ix, indexed by document. Both sides are unit length, so
// the similarity is the dot product, accumulated over the postings of the
// query's terms only. Documents sharing no term with the query score 0.
func Score(cleanedText string, ix *index.CorpusIndex) []float64 {
	return ScoreVector(ix.Vectorize(strings.Fields(cleanedText)), ix)
}

func ScoreVector(q index.SparseVector, ix *index.CorpusIndex) []float64 {
	scores := make([]float64, ix.DocCount())
	for i, term := range q.Terms {
		qw := q.Weights[i]
		for _, p := range ix.Postings(term) {
			scores[p.Doc] += qw * p.Weight
		}
	}
	for i, s := range scores {
		// float error can push an exact match a hair past 1
		if s > 1 {
			scores[i] = 1
		} else if s < 0 {
			scores[i] = 0
		}
	}
	return scores
}
