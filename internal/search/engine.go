// Package search provides the retrieval engine that answers questions from the corpus.
package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/corpus"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/resolver"
	"github.com/hyperjump/kotae/internal/vector"
)

// DefaultTopK is the number of nearest lines considered per query.
const DefaultTopK = 5

var (
	// ErrEmptyQuery is returned for a blank query.
	ErrEmptyQuery = errors.New("query is empty")
	// ErrNotReady is returned by Answer before the first successful Rebuild.
	ErrNotReady = errors.New("engine has no corpus loaded")
)

// snapshot is one fully built corpus: lines, their index, and the embedder
// whose vector space the index lives in.
type snapshot struct {
	store    *corpus.Store
	index    *vector.Index
	embedder embedding.Embedder
	builtAt  time.Time
}

// Engine answers queries against the current corpus snapshot. Answer is safe
// for concurrent use and never blocks on Rebuild.
type Engine struct {
	embedder embedding.Embedder
	resolver *resolver.Resolver
	markers  corpus.Markers
	topK     int
	logger   *zap.Logger

	current atomic.Pointer[snapshot]
	buildMu sync.Mutex
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger for rebuild and query events.
func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTopK sets how many nearest lines each query considers.
func WithTopK(k int) EngineOption {
	return func(e *Engine) {
		if k > 0 {
			e.topK = k
		}
	}
}

// WithMarkers sets the question and answer markers used to load corpora.
func WithMarkers(m corpus.Markers) EngineOption {
	return func(e *Engine) { e.markers = m }
}

// NewEngine creates an engine with no corpus. Call Rebuild before Answer.
func NewEngine(embedder embedding.Embedder, r *resolver.Resolver, opts ...EngineOption) *Engine {
	e := &Engine{
		embedder: embedder,
		resolver: r,
		markers:  corpus.DefaultMarkers(),
		topK:     DefaultTopK,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rebuild loads raw as the new corpus, embeds every line and swaps the
// result in. On error the previous snapshot keeps serving.
func (e *Engine) Rebuild(ctx context.Context, raw string) error {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	start := time.Now()
	store, err := corpus.Load(raw, e.markers)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	texts := store.Texts()
	emb, err := embedding.Prepare(ctx, e.embedder, texts)
	if err != nil {
		return fmt.Errorf("prepare embedder: %w", err)
	}
	index, err := vector.Build(ctx, texts, emb)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	e.current.Store(&snapshot{store: store, index: index, embedder: emb, builtAt: time.Now()})
	st := store.Stats()
	e.logger.Info("corpus indexed",
		zap.Int("lines", st.Lines),
		zap.Int("questions", st.Questions),
		zap.Int("answers", st.Answers),
		zap.Int("orphan_questions", st.Orphans),
		zap.Int("dimensions", index.Dimensions()),
		zap.String("embedder", emb.Name()),
		zap.Duration("took", time.Since(start)),
	)
	if st.Orphans > 0 {
		e.logger.Warn("corpus has questions without an answer", zap.Int("count", st.Orphans))
	}
	return nil
}

// Answer embeds query, searches the nearest lines and resolves them.
func (e *Engine) Answer(ctx context.Context, query string) (*models.Resolution, error) {
	q, err := ProcessQuery(query)
	if err != nil {
		return nil, err
	}
	snap := e.current.Load()
	if snap == nil {
		return nil, ErrNotReady
	}

	vecs, err := snap.embedder.EmbedBatch(ctx, []string{q})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embed query: %w: got %d vectors for 1 query", embedding.ErrCountMismatch, len(vecs))
	}
	hits, err := snap.index.Search(vecs[0], e.topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	res, err := e.resolver.Resolve(hits, snap.store)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", q, err)
	}
	e.logger.Debug("query answered",
		zap.String("query", q),
		zap.Stringer("tier", res.Tier),
		zap.Float64("distance", res.Distance),
		zap.Int("line", res.LineIndex),
	)
	return res, nil
}

// Ready reports whether a corpus has been built.
func (e *Engine) Ready() bool {
	return e.current.Load() != nil
}

// Stats describes the current snapshot.
type Stats struct {
	Ready      bool         `json:"ready"`
	Corpus     corpus.Stats `json:"corpus"`
	Dimensions int          `json:"dimensions"`
	Embedder   string       `json:"embedder"`
	TopK       int          `json:"top_k"`
	BuiltAt    time.Time    `json:"built_at,omitempty"`
}

// Stats returns statistics for the current snapshot. Before the first
// build only Ready, Embedder and TopK are set.
func (e *Engine) Stats() Stats {
	snap := e.current.Load()
	if snap == nil {
		return Stats{Embedder: e.embedder.Name(), TopK: e.topK}
	}
	return Stats{
		Ready:      true,
		Corpus:     snap.store.Stats(),
		Dimensions: snap.index.Dimensions(),
		Embedder:   snap.embedder.Name(),
		TopK:       e.topK,
		BuiltAt:    snap.builtAt,
	}
}

// Line returns the corpus line at index i of the current snapshot.
func (e *Engine) Line(i int) (corpus.Line, error) {
	snap := e.current.Load()
	if snap == nil {
		return corpus.Line{}, ErrNotReady
	}
	return snap.store.Get(i)
}
