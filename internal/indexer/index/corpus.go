// Package index builds the TF-IDF vector space over the catalog's
// normalized document texts. A CorpusIndex is immutable once Build returns
// and may be shared by any number of concurrent readers.
package index

import (
	"math"
	"slices"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/errors"
)

type CorpusIndex struct {
	vocab    map[string]int
	terms    []string
	idf      []float64
	postings []PostingList
	docs     []SparseVector
}

// Build indexes already-normalized documents; tokens are the
// whitespace-separated words of each document. Term ids follow lexical
// order, so the same corpus always yields the same dimensions.
//
// Weights are raw term count × smoothed IDF, ln((1+N)/(1+df)) + 1, and each
// document vector is scaled to unit length.
func Build(docs []string) (*CorpusIndex, error) {
	if len(docs) == 0 {
		return nil, apperrors.ErrEmptyCatalog
	}

	docTF := make([]map[string]int, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		tf := make(map[string]int)
		for _, tok := range strings.Fields(doc) {
			tf[tok]++
		}
		for term := range tf {
			df[term]++
		}
		docTF[i] = tf
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	slices.Sort(terms)

	ix := &CorpusIndex{
		vocab:    make(map[string]int, len(terms)),
		terms:    terms,
		idf:      make([]float64, len(terms)),
		postings: make([]PostingList, len(terms)),
		docs:     make([]SparseVector, len(docs)),
	}
	n := float64(len(docs))
	for id, term := range terms {
		ix.vocab[term] = id
		ix.idf[id] = math.Log((1+n)/(1+float64(df[term]))) + 1
		ix.postings[id] = make(PostingList, 0, df[term])
	}

	for doc, tf := range docTF {
		vec := ix.weigh(tf)
		ix.docs[doc] = vec
		for k, term := range vec.Terms {
			ix.postings[term] = append(ix.postings[term], Posting{Doc: doc, Weight: vec.Weights[k]})
		}
	}
	return ix, nil
}

// Vectorize builds the unit-length query vector for tokens using the
// index's vocabulary and IDF. Tokens outside the vocabulary are ignored; a
// query with no known token yields an empty vector.
func (ix *CorpusIndex) Vectorize(tokens []string) SparseVector {
	tf := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		if _, ok := ix.vocab[tok]; ok {
			tf[tok]++
		}
	}
	return ix.weigh(tf)
}

func (ix *CorpusIndex) weigh(tf map[string]int) SparseVector {
	vec := SparseVector{
		Terms:   make([]int, 0, len(tf)),
		Weights: make([]float64, 0, len(tf)),
	}
	for term := range tf {
		vec.Terms = append(vec.Terms, ix.vocab[term])
	}
	slices.Sort(vec.Terms)

	var norm float64
	for _, id := range vec.Terms {
		w := float64(tf[ix.terms[id]]) * ix.idf[id]
		vec.Weights = append(vec.Weights, w)
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec.Weights {
			vec.Weights[i] /= norm
		}
	}
	return vec
}

// Postings returns the documents containing the term with the given id.
func (ix *CorpusIndex) Postings(termID int) PostingList {
	return ix.postings[termID]
}

// Document returns the stored vector of document doc.
func (ix *CorpusIndex) Document(doc int) SparseVector {
	return ix.docs[doc]
}

// TermID reports the dimension of term, if it is in the vocabulary.
func (ix *CorpusIndex) TermID(term string) (int, bool) {
	id, ok := ix.vocab[term]
	return id, ok
}

// IDF returns the inverse document frequency of term, if known.
func (ix *CorpusIndex) IDF(term string) (float64, bool) {
	id, ok := ix.vocab[term]
	if !ok {
		return 0, false
	}
	return ix.idf[id], true
}

func (ix *CorpusIndex) DocCount() int {
	return len(ix.docs)
}

func (ix *CorpusIndex) VocabularySize() int {
	return len(ix.terms)
}
