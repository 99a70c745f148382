// Package vector provides the exact nearest-neighbour index over corpus line embeddings.
package vector

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/hyperjump/kotae/internal/embedding"
)

var (
	// ErrDimensionMismatch is returned when a vector's length differs from the index dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrInvalidK is returned by Search when k is not positive.
	ErrInvalidK = errors.New("k must be positive")
	// ErrEmptyIndex is returned by Build when there is nothing to index.
	ErrEmptyIndex = errors.New("no vectors to index")
)

// Hit is one search result: the position of a line in the corpus and its
// squared L2 distance to the query.
type Hit struct {
	Index    int
	Distance float64
}

// Index holds one vector per corpus line at the same position. It is
// immutable after Build and safe for concurrent Search.
type Index struct {
	dimensions int
	vectors    [][]float32
}

// Build embeds texts with embedder and indexes the results in order.
func Build(ctx context.Context, texts []string, embedder embedding.Embedder) (*Index, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyIndex
	}
	vectors, err := embedder.EmbedBatch(ctx, texts)
	if errors.Is(err, embedding.ErrCountMismatch) {
		return nil, fmt.Errorf("embed corpus: %w: %w", ErrDimensionMismatch, err)
	}
	if err != nil {
		return nil, fmt.Errorf("embed corpus: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d lines", ErrDimensionMismatch, len(vectors), len(texts))
	}
	return FromVectors(vectors)
}

// FromVectors indexes precomputed vectors. All vectors must share one length.
func FromVectors(vectors [][]float32) (*Index, error) {
	if len(vectors) == 0 {
		return nil, ErrEmptyIndex
	}
	dims := len(vectors[0])
	if dims == 0 {
		return nil, fmt.Errorf("%w: zero-length vector at 0", ErrDimensionMismatch)
	}
	idx := &Index{dimensions: dims, vectors: make([][]float32, len(vectors))}
	for i, v := range vectors {
		if len(v) != dims {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, expected %d", ErrDimensionMismatch, i, len(v), dims)
		}
		idx.vectors[i] = append([]float32(nil), v...)
	}
	return idx, nil
}

// Search returns the min(k, Size()) nearest vectors to query by squared L2
// distance, ascending. Equal distances keep index order.
func (x *Index) Search(query []float32, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}
	if len(query) != x.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d", ErrDimensionMismatch, len(query), x.dimensions)
	}
	hits := make([]Hit, len(x.vectors))
	for i, v := range x.vectors {
		hits[i] = Hit{Index: i, Distance: SquaredL2(query, v)}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Size returns the number of indexed vectors.
func (x *Index) Size() int { return len(x.vectors) }

// Dimensions returns the vector length.
func (x *Index) Dimensions() int { return x.dimensions }
