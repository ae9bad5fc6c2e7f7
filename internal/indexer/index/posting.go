package index

// Posting records that a document contains a term, with the term's weight in
// the document's L2-normalized TF-IDF vector.
type Posting struct {
	Doc    int
	Weight float64
}

// PostingList is ordered by ascending Doc.
type PostingList []Posting

// SparseVector is a TF-IDF vector over the index vocabulary. Terms holds
// ascending term ids; Weights[i] belongs to Terms[i].
type SparseVector struct {
	Terms   []int
	Weights []float64
}

func (v SparseVector) Len() int {
	return len(v.Terms)
}

// Dot returns the inner product of two sparse vectors.
func (v SparseVector) Dot(o SparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.Terms) && j < len(o.Terms) {
		switch {
		case v.Terms[i] == o.Terms[j]:
			sum += v.Weights[i] * o.Weights[j]
			i++
			j++
		case v.Terms[i] < o.Terms[j]:
			i++
		default:
			j++
		}
	}
	return sum
}
