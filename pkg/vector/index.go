// Package vector provides a flat cosine similarity index over a fixed
// set of embedding vectors. The index holds unit-normalized copies of
// the input vectors; similarity is the dot product of normalized
// vectors, which equals cosine similarity.
//
// The index is immutable once built. Collections in this system are
// bounded (on the order of 1,000 records), so rebuilding from scratch
// per query is acceptable and keeps the implementation simple.
package vector

import (
	"math"
	"sort"

	"github.com/m-mizutani/goerr/v2"
)

// Hit is a single search result. Index refers to the position of the
// vector in the slice the index was built from.
type Hit struct {
	Index int
	Score float64
}

// Index is a flat inner-product index over unit-normalized vectors
type Index struct {
	dim     int
	vectors [][]float32
}

// New builds an index over the given embeddings in O(N*D). All vectors
// must share the same dimension. An index over zero vectors is valid
// and returns empty results for any query.
func New(embeddings [][]float32) (*Index, error) {
	idx := &Index{
		vectors: make([][]float32, 0, len(embeddings)),
	}

	for i, emb := range embeddings {
		if idx.dim == 0 {
			idx.dim = len(emb)
		}
		if len(emb) != idx.dim {
			return nil, goerr.New("embedding dimension mismatch",
				goerr.V("index", i),
				goerr.V("expected", idx.dim),
				goerr.V("actual", len(emb)))
		}
		idx.vectors = append(idx.vectors, Normalize(emb))
	}

	return idx, nil
}

// Len returns the number of indexed vectors
func (x *Index) Len() int {
	return len(x.vectors)
}

// Search returns the k highest-scoring vectors for the query, ordered
// by descending similarity. Ties keep the original insertion order.
// k is clamped to the number of indexed vectors; searching an empty
// index returns no hits.
func (x *Index) Search(query []float32, k int) ([]Hit, error) {
	if len(x.vectors) == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != x.dim {
		return nil, goerr.New("query dimension mismatch",
			goerr.V("expected", x.dim),
			goerr.V("actual", len(query)))
	}

	q := Normalize(query)
	hits := make([]Hit, len(x.vectors))
	for i, v := range x.vectors {
		hits[i] = Hit{Index: i, Score: dot(q, v)}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Normalize returns a unit-length (L2) copy of the vector. A zero
// vector is returned as-is since it has no direction.
func Normalize(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)

	out := make([]float32, len(v))
	if norm == 0 {
		copy(out, v)
		return out
	}
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
