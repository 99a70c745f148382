package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hyperjump/kotae/pkg/utils"
)

// HTTPConfig configures an OpenAI-compatible embeddings endpoint.
type HTTPConfig struct {
	BaseURL string
	// APIKeyEnv names the environment variable holding the bearer token.
	// Empty means the endpoint needs no authentication (e.g. a local server).
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
	// Dimensions is the expected vector length; 0 learns it from the first response.
	Dimensions int
}

// HTTPEmbedder calls POST {BaseURL}/embeddings with the whole batch in one
// request. It does not retry; failures go straight back to the caller.
type HTTPEmbedder struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client

	mu         sync.Mutex
	dimensions int
}

// NewHTTPEmbedder validates cfg and resolves the API key from the environment.
func NewHTTPEmbedder(cfg HTTPConfig) (*HTTPEmbedder, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("http embedder: base URL is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("http embedder: model is required")
	}
	var key string
	if cfg.APIKeyEnv != "" {
		key = os.Getenv(cfg.APIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("http embedder: missing API key in env %s", cfg.APIKeyEnv)
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPEmbedder{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     key,
		model:      cfg.Model,
		client:     &http.Client{Timeout: timeout},
		dimensions: cfg.Dimensions,
	}, nil
}

// Name returns "http:" followed by the model name.
func (e *HTTPEmbedder) Name() string { return "http:" + e.model }

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Embed embeds a single text.
func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedBatch sends all texts in one request and returns L2-normalized vectors
// in input order.
func (e *HTTPEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	body, err := json.Marshal(embeddingsRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("http embedder: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("http embedder: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http embedder: request failed: %w", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("http embedder: read response: %w", err)
	}

	var out embeddingsResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("http embedder: %s", resp.Status)
		}
		return nil, fmt.Errorf("http embedder: decode response: %w", err)
	}
	if resp.StatusCode >= 300 {
		if out.Error != nil && out.Error.Message != "" {
			return nil, fmt.Errorf("http embedder: %s: %s", resp.Status, out.Error.Message)
		}
		return nil, fmt.Errorf("http embedder: %s", resp.Status)
	}
	if len(out.Data) != len(texts) {
		return nil, fmt.Errorf("http embedder: %w: got %d embeddings for %d inputs", ErrCountMismatch, len(out.Data), len(texts))
	}

	sort.SliceStable(out.Data, func(i, j int) bool { return out.Data[i].Index < out.Data[j].Index })
	vectors := make([][]float32, len(out.Data))
	for i, d := range out.Data {
		v := make([]float32, len(d.Embedding))
		for j, x := range d.Embedding {
			v[j] = float32(x)
		}
		utils.NormalizeL2(v)
		vectors[i] = v
	}

	e.mu.Lock()
	if e.dimensions == 0 && len(vectors[0]) > 0 {
		e.dimensions = len(vectors[0])
	}
	e.mu.Unlock()
	return vectors, nil
}

// Dimensions returns the configured or learned vector length.
func (e *HTTPEmbedder) Dimensions() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dimensions
}

// Close releases idle connections.
func (e *HTTPEmbedder) Close() error {
	e.client.CloseIdleConnections()
	return nil
}
