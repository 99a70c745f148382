package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/corpus"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/storage"
)

func TestArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after question are moved first",
			args:     []string{"where is the campus", "-lang", "es"},
			expected: []string{"-lang", "es", "where is the campus"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-lang", "es", "where is the campus"},
			expected: []string{"-lang", "es", "where is the campus"},
		},
		{
			name:     "question only returns unchanged",
			args:     []string{"where is the campus"},
			expected: []string{"where is the campus"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"what", "is", "UHIP", "-output", "json"},
			expected: []string{"-output", "json", "what", "is", "UHIP"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := argsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("argsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"UHIP"}, "UHIP"},
		{"multiple words", []string{"public", "transit"}, "public transit"},
		{"single quoted phrase", []string{"¿Qué es UHIP?"}, "¿Qué es UHIP?"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildQuery(tt.args)
			if got != tt.expected {
				t.Errorf("buildQuery(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
storage:
  database_path: "./test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s (canon %s), want %s (canon %s)", resolved, resolvedCanon, configPath, configPathCanon)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
}

func TestLoadConfig_defaultsWhenNoConfigFile(t *testing.T) {
	if _, err := os.Stat(defaultConfigPath); err == nil {
		t.Skipf("%s exists on this machine", defaultConfigPath)
	}
	chdir(t, t.TempDir())

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != "" {
		t.Errorf("resolved path = %q, want empty", resolved)
	}
	if cfg.Embedding.Type != "tfidf" || cfg.Search.TopK != 5 {
		t.Errorf("expected built-in defaults, got %+v", cfg)
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "./test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
}

func TestLoadConfig_explicitMissingFileFails(t *testing.T) {
	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.DatabasePath = filepath.Join(t.TempDir(), "kotae.db")
	return cfg
}

func TestLoadCorpusText(t *testing.T) {
	ctx := context.Background()

	t.Run("built-in", func(t *testing.T) {
		raw, err := loadCorpusText(ctx, testConfig(t), nil)
		if err != nil || raw != corpus.DefaultFAQ {
			t.Errorf("got %d bytes, err %v", len(raw), err)
		}
	})

	t.Run("file", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Corpus.Path = filepath.Join(t.TempDir(), "faq.txt")
		if err := os.WriteFile(cfg.Corpus.Path, []byte("Q: hi\nA: hello"), 0600); err != nil {
			t.Fatal(err)
		}
		raw, err := loadCorpusText(ctx, cfg, nil)
		if err != nil || raw != "Q: hi\nA: hello" {
			t.Errorf("got %q, err %v", raw, err)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Corpus.Source = config.SourceSQLite
		cfg.Corpus.Name = "campus"
		store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
		if err != nil {
			t.Fatal(err)
		}
		defer store.Close()

		if _, err := loadCorpusText(ctx, cfg, store); !errors.Is(err, storage.ErrCorpusNotFound) {
			t.Errorf("missing corpus: err = %v, want ErrCorpusNotFound", err)
		}
		if _, err := store.SaveCorpus(ctx, "campus", "Q: a\nA: b"); err != nil {
			t.Fatal(err)
		}
		raw, err := loadCorpusText(ctx, cfg, store)
		if err != nil || raw != "Q: a\nA: b" {
			t.Errorf("got %q, err %v", raw, err)
		}
		if _, err := loadCorpusText(ctx, cfg, nil); err == nil {
			t.Error("expected error without storage")
		}
	})
}

func TestInitializeComponents_DefaultFAQ(t *testing.T) {
	cfg := testConfig(t)
	c, err := initializeComponents(context.Background(), cfg, zap.NewNop(), false)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if c.Storage != nil {
		t.Error("storage should not be opened for a file corpus without withStorage")
	}
	st := c.Engine.Stats()
	if !st.Ready || st.Corpus.Lines != 18 || st.Embedder != "tfidf" {
		t.Errorf("stats = %+v", st)
	}
	res, err := c.Engine.Answer(context.Background(), "What is UHIP and do I need it as an international student?")
	if err != nil {
		t.Fatal(err)
	}
	if res.LineIndex != 17 || res.Tier != models.High {
		t.Errorf("got line %d tier %s, want 17 high", res.LineIndex, res.Tier)
	}
}

func TestInitializeComponents_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *config.Config)
	}{
		{"unknown embedder", func(cfg *config.Config) { cfg.Embedding.Type = "word2vec" }},
		{"missing corpus file", func(cfg *config.Config) { cfg.Corpus.Path = "/nonexistent/faq.txt" }},
		{"empty corpus", func(cfg *config.Config) {
			cfg.Corpus.Path = filepath.Join(filepath.Dir(cfg.Storage.DatabasePath), "empty.txt")
			_ = os.WriteFile(cfg.Corpus.Path, []byte("\n\n"), 0600)
		}},
		{"bad threshold", func(cfg *config.Config) { cfg.Search.HighBelow = cfg.Search.Threshold + 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(cfg)
			if c, err := initializeComponents(context.Background(), cfg, zap.NewNop(), false); err == nil {
				c.Close()
				t.Error("expected error")
			}
		})
	}
}

func TestImportCorpus(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "faq.txt")
	if err := os.WriteFile(path, []byte(corpus.DefaultFAQ), 0600); err != nil {
		t.Fatal(err)
	}
	info, stats, err := importCorpus(context.Background(), cfg, "campus", path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Name != "campus" || info.Lines != 18 {
		t.Errorf("info = %+v", info)
	}
	if stats.Questions != 12 || stats.Answers != 6 || stats.Orphans != 0 {
		t.Errorf("stats = %+v", stats)
	}

	cfg.Corpus.Source = config.SourceSQLite
	cfg.Corpus.Name = "campus"
	c, err := initializeComponents(context.Background(), cfg, zap.NewNop(), false)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if c.Engine.Stats().Corpus.Lines != 18 {
		t.Errorf("engine built from sqlite has %d lines", c.Engine.Stats().Corpus.Lines)
	}
}

func TestImportCorpus_RejectsEmptyFile(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, []byte("  \n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := importCorpus(context.Background(), cfg, "x", path); !errors.Is(err, corpus.ErrEmptyCorpus) {
		t.Errorf("err = %v, want ErrEmptyCorpus", err)
	}
}

func TestImportCorpus_Spreadsheet(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "faq.xlsx")
	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "Q: How does public transit work?")
	f.SetCellValue("Sheet1", "B1", "Q: ¿Cómo funciona el transporte público?")
	f.SetCellValue("Sheet1", "C1", "A: OC Transpo buses and the O-Train.")
	f.SetCellValue("Sheet1", "A2", "Q: What is UHIP?")
	f.SetCellValue("Sheet1", "C2", "A: Mandatory health insurance.")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	info, stats, err := importCorpus(context.Background(), cfg, "sheet", path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Lines != 5 || stats.Questions != 3 || stats.Answers != 2 {
		t.Fatalf("info = %+v, stats = %+v", info, stats)
	}

	cfg.Corpus.Source = config.SourceSQLite
	cfg.Corpus.Name = "sheet"
	c, err := initializeComponents(context.Background(), cfg, zap.NewNop(), false)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	res, err := c.Engine.Answer(context.Background(), "¿Cómo funciona el transporte público?")
	if err != nil {
		t.Fatal(err)
	}
	if res.Answer != "OC Transpo buses and the O-Train." || res.Tier != models.High {
		t.Errorf("got %+v", res)
	}
}
