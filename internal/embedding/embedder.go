// Package embedding turns text into fixed-length vectors.
package embedding

import (
	"context"
	"errors"
)

var (
	// ErrNotFitted is returned by corpus-trained embedders used before Fit.
	ErrNotFitted = errors.New("embedder has not been fitted to a corpus")
	// ErrCountMismatch is returned when a batch call yields a different
	// number of vectors than it was given texts.
	ErrCountMismatch = errors.New("embedding count does not match input count")
)

// Embedder produces vector embeddings for text. For a given model, identical
// input always yields identical output.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// Fitter is implemented by embedders that learn their vector space from the
// corpus. Fit returns a new embedder bound to that corpus and leaves the
// receiver untouched, so a running index keeps its own vector space.
type Fitter interface {
	Fit(ctx context.Context, corpus []string) (Embedder, error)
}

// Prepare returns e fitted to corpus when e is a Fitter, or e itself otherwise.
func Prepare(ctx context.Context, e Embedder, corpus []string) (Embedder, error) {
	f, ok := e.(Fitter)
	if !ok {
		return e, nil
	}
	return f.Fit(ctx, corpus)
}
