package config

import (
	"github.com/hyperjump/kotae/internal/corpus"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/search"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Corpus.Source == "" {
		cfg.Corpus.Source = SourceFile
	}
	if cfg.Corpus.Name == "" {
		cfg.Corpus.Name = "default"
	}
	markers := corpus.DefaultMarkers()
	if cfg.Corpus.QuestionMarker == "" {
		cfg.Corpus.QuestionMarker = markers.Question
	}
	if cfg.Corpus.AnswerMarker == "" {
		cfg.Corpus.AnswerMarker = markers.Answer
	}
	if cfg.Corpus.DebounceMillis == 0 {
		cfg.Corpus.DebounceMillis = 500
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/kotae/data/kotae.db"
	}
	if cfg.Embedding.Type == "" {
		cfg.Embedding.Type = embedding.TypeTFIDF
	}
	if cfg.Embedding.Type == embedding.TypeONNX && cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/kotae/data/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.HTTP.TimeoutSecs == 0 {
		cfg.Embedding.HTTP.TimeoutSecs = 30
	}
	if cfg.Embedding.Cache.Type == "" {
		cfg.Embedding.Cache.Type = embedding.CacheMemory
	}
	if cfg.Embedding.Cache.Size == 0 {
		cfg.Embedding.Cache.Size = 10000
	}
	if cfg.Search.TopK == 0 {
		cfg.Search.TopK = search.DefaultTopK
	}
	rc := cfg.Search.ResolverConfig()
	rc.ApplyDefaults()
	cfg.Search.Threshold = rc.Threshold
	cfg.Search.HighBelow = rc.HighBelow
	cfg.Search.MediumBelow = rc.MediumBelow
	cfg.Search.FallbackAnswer = rc.FallbackAnswer
}

// Default returns a config with every default applied, as used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
