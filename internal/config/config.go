// Package config provides configuration loading and structs for the kotae server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/kotae/internal/corpus"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/resolver"
)

// Corpus sources.
const (
	SourceFile   = "file"
	SourceSQLite = "sqlite"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CorpusConfig says where the FAQ text comes from and how its lines are tagged.
type CorpusConfig struct {
	// Path is the corpus file for the "file" source. Empty uses the built-in FAQ.
	Path string `yaml:"path"`
	// Source is "file" or "sqlite".
	Source string `yaml:"source"`
	// Name selects the stored corpus for the "sqlite" source.
	Name           string `yaml:"name"`
	QuestionMarker string `yaml:"question_marker"`
	AnswerMarker   string `yaml:"answer_marker"`
	// Watch rebuilds the index when the corpus file changes.
	Watch          *bool `yaml:"watch"`
	DebounceMillis int   `yaml:"debounce_ms"`
}

// WatchOrDefault returns whether to watch the corpus file; defaults to true
// when a file path is configured.
func (c *CorpusConfig) WatchOrDefault() bool {
	if c.Watch != nil {
		return *c.Watch
	}
	return c.Source == SourceFile && c.Path != ""
}

// Markers returns the configured line markers.
func (c *CorpusConfig) Markers() corpus.Markers {
	return corpus.Markers{Question: c.QuestionMarker, Answer: c.AnswerMarker}
}

// Debounce returns the watcher debounce interval.
func (c *CorpusConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMillis) * time.Millisecond
}

// StorageConfig holds the SQLite database settings.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	// LogAnswers records every answered query in the database.
	LogAnswers bool `yaml:"log_answers"`
}

// EmbeddingConfig selects the embedder.
type EmbeddingConfig struct {
	// Type is one of tfidf, onnx, http, mock.
	Type       string               `yaml:"type"`
	ModelPath  string               `yaml:"model_path"`
	OutputName string               `yaml:"output_name"`
	Dimensions int                  `yaml:"dimensions"`
	MaxTokens  int                  `yaml:"max_tokens"`
	HTTP       HTTPEmbeddingConfig  `yaml:"http"`
	Cache      EmbeddingCacheConfig `yaml:"cache"`
}

// HTTPEmbeddingConfig configures an OpenAI-compatible embeddings endpoint.
type HTTPEmbeddingConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbeddingCacheConfig configures the embedding cache.
type EmbeddingCacheConfig struct {
	// Type is one of none, memory, redis.
	Type          string `yaml:"type"`
	Size          int    `yaml:"size"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	TTLSecs       int    `yaml:"ttl_secs"`
}

// Options converts the section into embedding.Options.
func (e *EmbeddingConfig) Options() embedding.Options {
	return embedding.Options{
		Type:       e.Type,
		Dimensions: e.Dimensions,
		ONNX: embedding.ONNXConfig{
			ModelPath:  e.ModelPath,
			Dimensions: e.Dimensions,
			MaxTokens:  e.MaxTokens,
			OutputName: e.OutputName,
		},
		HTTP: embedding.HTTPConfig{
			BaseURL:   e.HTTP.BaseURL,
			APIKeyEnv: e.HTTP.APIKeyEnv,
			Model:     e.HTTP.Model,
			Timeout:   time.Duration(e.HTTP.TimeoutSecs) * time.Second,
		},
		Cache: embedding.CacheOptions{
			Type:          e.Cache.Type,
			Size:          e.Cache.Size,
			RedisAddr:     e.Cache.RedisAddr,
			RedisPassword: e.Cache.RedisPassword,
			RedisDB:       e.Cache.RedisDB,
			TTL:           time.Duration(e.Cache.TTLSecs) * time.Second,
		},
	}
}

// SearchConfig holds retrieval and confidence settings.
type SearchConfig struct {
	TopK           int     `yaml:"top_k"`
	Threshold      float64 `yaml:"threshold"`
	HighBelow      float64 `yaml:"high_below"`
	MediumBelow    float64 `yaml:"medium_below"`
	FallbackAnswer string  `yaml:"fallback_answer"`
}

// ResolverConfig converts the section into resolver.Config.
func (s *SearchConfig) ResolverConfig() resolver.Config {
	return resolver.Config{
		Threshold:      s.Threshold,
		HighBelow:      s.HighBelow,
		MediumBelow:    s.MediumBelow,
		FallbackAnswer: s.FallbackAnswer,
	}
}

// Load reads and parses the config file at path, applies defaults, expands paths and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Corpus.Path = expandPath(cfg.Corpus.Path, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks values that defaults cannot fix.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Corpus.Source {
	case SourceFile:
	case SourceSQLite:
		if c.Corpus.Name == "" {
			return fmt.Errorf("corpus.name is required for the sqlite source")
		}
	default:
		return fmt.Errorf("corpus.source must be %q or %q, got %q", SourceFile, SourceSQLite, c.Corpus.Source)
	}
	if err := c.Corpus.Markers().Validate(); err != nil {
		return fmt.Errorf("corpus: %w", err)
	}
	switch c.Embedding.Type {
	case embedding.TypeTFIDF, embedding.TypeMock:
	case embedding.TypeONNX:
		if c.Embedding.ModelPath == "" {
			return fmt.Errorf("embedding.model_path is required for onnx")
		}
	case embedding.TypeHTTP:
		if c.Embedding.HTTP.BaseURL == "" || c.Embedding.HTTP.Model == "" {
			return fmt.Errorf("embedding.http.base_url and embedding.http.model are required for http")
		}
	default:
		return fmt.Errorf("unknown embedding.type %q (supported: tfidf, onnx, http, mock)", c.Embedding.Type)
	}
	switch c.Embedding.Cache.Type {
	case embedding.CacheNone, embedding.CacheMemory:
	case embedding.CacheRedis:
		if c.Embedding.Cache.RedisAddr == "" {
			return fmt.Errorf("embedding.cache.redis_addr is required for the redis cache")
		}
	default:
		return fmt.Errorf("unknown embedding.cache.type %q (supported: none, memory, redis)", c.Embedding.Cache.Type)
	}
	if c.Search.TopK <= 0 {
		return fmt.Errorf("search.top_k must be positive, got %d", c.Search.TopK)
	}
	if err := c.Search.ResolverConfig().Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory. Empty stays empty.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}

// Describe names where the corpus is read from, for status output.
func (c *CorpusConfig) Describe() string {
	switch {
	case c.Source == SourceSQLite:
		return "sqlite:" + c.Name
	case c.Path != "":
		return c.Path
	default:
		return "built-in"
	}
}
