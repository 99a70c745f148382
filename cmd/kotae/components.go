package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/corpus"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/resolver"
	"github.com/hyperjump/kotae/internal/search"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/pkg/utils"
)

// Components holds initialized services.
type Components struct {
	Storage  storage.Storage
	Embedder embedding.Embedder
	Engine   *search.Engine
}

// Close releases storage and the embedder.
func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

// initializeComponents builds the engine and indexes the configured corpus.
// Storage is opened when withStorage is set or the corpus lives in SQLite.
func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger, withStorage bool) (*Components, error) {
	c := &Components{}
	if withStorage || cfg.Corpus.Source == config.SourceSQLite {
		store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		c.Storage = store
	}

	embedder, err := embedding.New(ctx, cfg.Embedding.Options(), utils.Named(logger, "embedding"))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	c.Embedder = embedder

	rc := cfg.Search.ResolverConfig()
	if err := rc.Validate(); err != nil {
		c.Close()
		return nil, fmt.Errorf("invalid search config: %w", err)
	}
	c.Engine = search.NewEngine(embedder, resolver.New(rc),
		search.WithLogger(utils.Named(logger, "engine")),
		search.WithTopK(cfg.Search.TopK),
		search.WithMarkers(cfg.Corpus.Markers()),
	)

	raw, err := loadCorpusText(ctx, cfg, c.Storage)
	if err != nil {
		c.Close()
		return nil, err
	}
	if err := c.Engine.Rebuild(ctx, raw); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to index corpus %s: %w", cfg.Corpus.Describe(), err)
	}
	return c, nil
}

// loadCorpusText returns the raw corpus: the stored corpus for the sqlite
// source, the corpus file when a path is set, or the built-in FAQ.
func loadCorpusText(ctx context.Context, cfg *config.Config, store storage.Storage) (string, error) {
	switch {
	case cfg.Corpus.Source == config.SourceSQLite:
		if store == nil {
			return "", fmt.Errorf("corpus source sqlite needs storage")
		}
		raw, err := store.LoadCorpus(ctx, cfg.Corpus.Name)
		if err != nil {
			return "", fmt.Errorf("failed to load corpus %q: %w", cfg.Corpus.Name, err)
		}
		return raw, nil
	case cfg.Corpus.Path != "":
		return readCorpusFile(cfg.Corpus.Path)
	default:
		return corpus.DefaultFAQ, nil
	}
}

// readCorpusFile reads a corpus from a text, PDF, DOCX, XLSX or ODS file.
func readCorpusFile(path string) (string, error) {
	raw, err := extract.NewExtractor().Extract(path)
	if err != nil {
		return "", fmt.Errorf("failed to read corpus %s: %w", path, err)
	}
	return raw, nil
}
