package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/kotae/internal/embedding"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "test.db"
search:
  top_k: 3
  threshold: 1.2
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Server.Addr() != "127.0.0.1:9000" {
		t.Errorf("Addr() = %s", cfg.Server.Addr())
	}
	if cfg.Storage.DatabasePath == "" {
		t.Error("database_path should be set")
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
	if cfg.Search.TopK != 3 || cfg.Search.Threshold != 1.2 {
		t.Errorf("search = %+v", cfg.Search)
	}
	if cfg.Search.MediumBelow != 1.2 {
		t.Errorf("medium_below should default to the threshold, got %v", cfg.Search.MediumBelow)
	}
}

func TestLoad_debugTrue(t *testing.T) {
	cfg, err := Load(writeConfig(t, "debug: true\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	path := writeConfig(t, `
storage:
  database_path: "./data/kotae.db"
corpus:
  path: "./faq.txt"
`)
	dir := filepath.Dir(path)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "data", "kotae.db"); cfg.Storage.DatabasePath != want {
		t.Errorf("database_path = %s, want %s", cfg.Storage.DatabasePath, want)
	}
	if want := filepath.Join(dir, "faq.txt"); cfg.Corpus.Path != want {
		t.Errorf("corpus.path = %s, want %s", cfg.Corpus.Path, want)
	}
	if !cfg.Corpus.WatchOrDefault() {
		t.Error("watch should default to true when a corpus file is set")
	}
}

func TestLoad_EmptyPathsStayEmpty(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 8081\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Corpus.Path != "" {
		t.Errorf("corpus.path = %q, want empty", cfg.Corpus.Path)
	}
	if cfg.Embedding.ModelPath != "" {
		t.Errorf("model_path = %q, want empty for tfidf", cfg.Embedding.ModelPath)
	}
	if cfg.Corpus.WatchOrDefault() {
		t.Error("nothing to watch without a corpus file")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"bad yaml", "server: [", "failed to parse"},
		{"bad port", "server:\n  port: 70000\n", "server.port"},
		{"bad source", "corpus:\n  source: s3\n", "corpus.source"},
		{"equal markers", "corpus:\n  question_marker: X\n  answer_marker: X\n", "markers"},
		{"bad embedder", "embedding:\n  type: word2vec\n", "embedding.type"},
		{"http without url", "embedding:\n  type: http\n", "base_url"},
		{"redis without addr", "embedding:\n  cache:\n    type: redis\n", "redis_addr"},
		{"bad cache", "embedding:\n  cache:\n    type: disk\n", "cache.type"},
		{"negative top_k", "search:\n  top_k: -2\n", "top_k"},
		{"threshold below high", "search:\n  threshold: 0.5\n  high_below: 1.0\n  medium_below: 1.0\n", "threshold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("err = %v, want containing %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("server defaults: %+v", cfg.Server)
	}
	if cfg.Corpus.Source != SourceFile || cfg.Corpus.QuestionMarker != "Q:" || cfg.Corpus.AnswerMarker != "A:" {
		t.Errorf("corpus defaults: %+v", cfg.Corpus)
	}
	if cfg.Corpus.Debounce() != 500*time.Millisecond {
		t.Errorf("debounce = %v", cfg.Corpus.Debounce())
	}
	if cfg.Embedding.Type != embedding.TypeTFIDF || cfg.Embedding.Cache.Type != embedding.CacheMemory {
		t.Errorf("embedding defaults: %+v", cfg.Embedding)
	}
	if cfg.Search.TopK != 5 || cfg.Search.Threshold != 1.5 || cfg.Search.HighBelow != 1.0 || cfg.Search.MediumBelow != 1.5 {
		t.Errorf("search defaults: %+v", cfg.Search)
	}
	if cfg.Search.FallbackAnswer == "" {
		t.Error("fallback answer should have a default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestApplyDefaults_ONNXModelPath(t *testing.T) {
	cfg := &Config{Embedding: EmbeddingConfig{Type: embedding.TypeONNX}}
	ApplyDefaults(cfg)
	if !strings.HasSuffix(cfg.Embedding.ModelPath, ".onnx") {
		t.Errorf("model_path = %q", cfg.Embedding.ModelPath)
	}
}

func TestCorpusConfig_WatchOrDefault(t *testing.T) {
	t.Run("explicit_false", func(t *testing.T) {
		f := false
		c := &CorpusConfig{Source: SourceFile, Path: "/tmp/faq.txt", Watch: &f}
		if c.WatchOrDefault() {
			t.Error("WatchOrDefault() = true, want false")
		}
	})
	t.Run("sqlite_source", func(t *testing.T) {
		c := &CorpusConfig{Source: SourceSQLite, Path: "/tmp/faq.txt"}
		if c.WatchOrDefault() {
			t.Error("sqlite corpora are not watched by default")
		}
	})
}

func TestEmbeddingConfig_Options(t *testing.T) {
	e := EmbeddingConfig{
		Type:       embedding.TypeHTTP,
		Dimensions: 768,
		HTTP:       HTTPEmbeddingConfig{BaseURL: "http://localhost:11434/v1", Model: "nomic", TimeoutSecs: 5},
		Cache:      EmbeddingCacheConfig{Type: embedding.CacheRedis, RedisAddr: "localhost:6379", TTLSecs: 60},
	}
	o := e.Options()
	if o.HTTP.Timeout != 5*time.Second || o.HTTP.Model != "nomic" {
		t.Errorf("http options = %+v", o.HTTP)
	}
	if o.Cache.TTL != time.Minute || o.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("cache options = %+v", o.Cache)
	}
	if o.ONNX.Dimensions != 768 {
		t.Errorf("onnx dimensions = %d", o.ONNX.Dimensions)
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := Default()
	cfg.Server.Port = 9090
	cfg.Corpus.Path = "/tmp/faq.txt"
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 || loaded.Corpus.Path != "/tmp/faq.txt" {
		t.Errorf("loaded = %+v", loaded)
	}
}
