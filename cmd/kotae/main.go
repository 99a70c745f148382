// Package main is the kotae CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/cli"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/corpus"
	"github.com/hyperjump/kotae/internal/locale"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/server"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/tui"
	"github.com/hyperjump/kotae/internal/watcher"
	"github.com/hyperjump/kotae/pkg/utils"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/kotae/config.yaml"
	defaultServerURL  = "http://localhost:8080"
)

// loadConfig loads config from path. When path is the default, ./config.yaml
// wins if it exists, and a missing default file means built-in defaults.
// Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ask":
		runAsk()
	case "chat":
		runChat()
	case "import":
		runImport()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kotae version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (corpus reloads, queries, requests)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	cfg.Debug = debugMode
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.String("corpus", cfg.Corpus.Describe()),
		zap.String("embedder", cfg.Embedding.Type),
		zap.Bool("debug", debugMode),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components, err := initializeComponents(ctx, cfg, logger, true)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	if cfg.Corpus.Source == config.SourceFile && cfg.Corpus.Path != "" && cfg.Corpus.WatchOrDefault() {
		w, err := startCorpusWatcher(ctx, cfg, components, logger)
		if err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer w.Stop()
	}

	srv := server.NewServer(components.Engine, components.Storage, cfg, logger.Named("server"))
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}

// startCorpusWatcher rebuilds the engine whenever the corpus file changes.
// A failed rebuild is logged and the previous corpus keeps serving.
func startCorpusWatcher(ctx context.Context, cfg *config.Config, c *Components, logger *zap.Logger) (*watcher.Watcher, error) {
	rebuild := func(path string) {
		raw, err := readCorpusFile(path)
		if err != nil {
			logger.Warn("corpus reload: read failed", zap.String("path", path), zap.Error(err))
			return
		}
		if err := c.Engine.Rebuild(ctx, raw); err != nil {
			logger.Warn("corpus reload failed, keeping previous corpus", zap.String("path", path), zap.Error(err))
			return
		}
		logger.Info("corpus reloaded", zap.String("path", path))
	}
	w, err := watcher.NewWatcher(cfg.Corpus.Path, rebuild,
		watcher.WithLogger(logger.Named("watcher")),
		watcher.WithDebounce(cfg.Corpus.Debounce()),
	)
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

// printAskUsage prints ask subcommand usage.
func printAskUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: kotae ask [flags] <question>\n\n")
	fmt.Fprintf(fs.Output(), "The question is all remaining arguments joined by spaces. Quotes are optional.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  kotae ask where is the campus
  kotae ask --lang es "¿Qué es UHIP?"
  kotae ask --server http://localhost:8080 --output json how much is housing
`)
}

// buildQuery joins all positional args with spaces so multi-word questions
// work the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves any flags (and their values) that appear after the
// question to the front of the slice so that flag.Parse() sees them. Go's
// flag package stops at the first non-flag argument.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (direct mode)")
	serverURL := fs.String("server", "", "server URL (empty = answer locally from the configured corpus)")
	lang := fs.String("lang", models.LangEnglish, "answer language for messages: en or es")
	outputFormat := fs.String("output", "text", "output format: text, compact (one line), or json")
	fs.Usage = func() { printAskUsage(fs) }
	_ = fs.Parse(argsReorder(os.Args[2:]))

	query := buildQuery(fs.Args())
	if query == "" {
		printAskUsage(fs)
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	req := &models.AnswerRequest{Query: query, Lang: *lang}
	if err := req.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var resp *models.AnswerResponse
	if *serverURL != "" {
		resp, err = askViaHTTP(*serverURL, req)
	} else {
		resp, err = askDirect(*configPath, req)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", locale.For(req.Lang).NoAnswer, err)
		os.Exit(1)
	}
	if err := cli.WriteAnswer(os.Stdout, resp, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func askDirect(configPath string, req *models.AnswerRequest) (*models.AnswerResponse, error) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := zap.NewNop()
	if cfg.Debug {
		if logger, err = utils.NewLogger(true); err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		defer logger.Sync()
	}

	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger, false)
	if err != nil {
		return nil, err
	}
	defer components.Close()

	start := time.Now()
	res, err := components.Engine.Answer(ctx, req.Query)
	if err != nil {
		return nil, err
	}
	return models.NewAnswerResponse(uuid.NewString(), req.Query, req.Lang, res, time.Since(start)), nil
}

func askViaHTTP(serverURL string, req *models.AnswerRequest) (*models.AnswerResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(strings.TrimRight(serverURL, "/")+"/api/v1/answer", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var out models.AnswerResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func runChat() {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	lang := fs.String("lang", models.LangEnglish, "initial language: en or es")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	// The TUI owns the terminal; logs would corrupt it.
	logger := zap.NewNop()

	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger, false)
	if err != nil {
		fmt.Printf("Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	st := components.Engine.Stats()
	summary := tui.Summary{
		Topics:     st.Corpus.Answers,
		Languages:  len(locale.Languages()),
		VectorSize: st.Dimensions,
	}
	m := tui.New(components.Engine, summary, *lang)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Printf("Chat failed: %v\n", err)
		os.Exit(1)
	}
}

func runImport() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	name := fs.String("name", "", "corpus name (default: corpus.name from config)")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	if fs.NArg() < 1 {
		fmt.Println("Usage: kotae import [flags] <corpus-file>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *name == "" {
		*name = cfg.Corpus.Name
	}

	info, stats, err := importCorpus(context.Background(), cfg, *name, path)
	if err != nil {
		fmt.Printf("Import failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Imported %q into %s: %d lines (%d questions, %d answers), checksum %s\n",
		info.Name, cfg.Storage.DatabasePath, info.Lines, stats.Questions, stats.Answers, info.Checksum[:12])
	if stats.Orphans > 0 {
		fmt.Printf("Warning: %d question(s) have no answer line after them\n", stats.Orphans)
	}
}

// importCorpus extracts the corpus file, validates it with the configured
// markers and stores the extracted text under name.
func importCorpus(ctx context.Context, cfg *config.Config, name, path string) (*storage.CorpusInfo, corpus.Stats, error) {
	raw, err := readCorpusFile(path)
	if err != nil {
		return nil, corpus.Stats{}, err
	}
	store, err := corpus.Load(raw, cfg.Corpus.Markers())
	if err != nil {
		return nil, corpus.Stats{}, fmt.Errorf("parse %s: %w", path, err)
	}
	db, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, corpus.Stats{}, err
	}
	defer db.Close()
	info, err := db.SaveCorpus(ctx, name, raw)
	if err != nil {
		return nil, corpus.Stats{}, err
	}
	return info, store.Stats(), nil
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = build the engine locally)")
	lang := fs.String("lang", models.LangEnglish, "label language: en or es")
	outputFormat := fs.String("output", "text", "output format: text, compact, or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var st *models.StatusResponse
	if *serverURL != "" {
		st, err = statusViaHTTP(*serverURL)
	} else {
		st, err = statusDirect(*configPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteStatus(os.Stdout, st, format, *lang); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func statusDirect(configPath string) (*models.StatusResponse, error) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, zap.NewNop(), true)
	if err != nil {
		return nil, err
	}
	defer components.Close()
	return server.BuildStatus(ctx, components.Engine, components.Storage, cfg)
}

func statusViaHTTP(serverURL string) (*models.StatusResponse, error) {
	resp, err := http.Get(strings.TrimRight(serverURL, "/") + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var s models.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

func printUsage() {
	fmt.Println(`kotae - Bilingual FAQ answer engine

Usage:
  kotae server [flags]             Start the HTTP server
  kotae ask [flags] <question>     Answer a question
  kotae chat [flags]               Interactive terminal chat
  kotae import [flags] <file>      Store a corpus file (.txt, .md, .pdf, .docx, .xlsx, .ods) in the database
  kotae status [flags]             Show engine/corpus/storage status
  kotae version                    Show version
  kotae help                       Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/kotae/config.yaml)
  --debug            Enable debug logging

Ask Flags:
  --config string    Config file path (direct mode)
  --server string    Server URL. Empty (default) answers locally from the configured corpus.
  --lang string      Message language: en or es (default: en)
  --output string    Output format: text, compact, or json (default: text)

Chat Flags:
  --config string    Config file path
  --lang string      Initial language: en or es (tab switches while chatting)

Import Flags:
  --config string    Config file path
  --name string      Corpus name (default: corpus.name from config)

Status Flags:
  --config string    Config file path (direct mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to build locally.
  --lang string      Label language: en or es
  --output string    Output format: text, compact, or json (default: text)

Examples:
  kotae server
  kotae ask how does public transit work
  kotae ask --lang es "¿Cuánto cuesta el alojamiento?"
  kotae ask --server http://localhost:8080 --output json what is UHIP
  kotae import --name campus faq.txt
  kotae chat --lang es
  kotae status --output json`)
}
