package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Embedder types accepted by New.
const (
	TypeTFIDF = "tfidf"
	TypeONNX  = "onnx"
	TypeHTTP  = "http"
	TypeMock  = "mock"
)

// Cache types accepted by New.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// ONNXConfig configures the ONNX embedder.
type ONNXConfig struct {
	ModelPath  string
	Dimensions int
	MaxTokens  int
	// OutputName is the model's output tensor; defaults to "output".
	OutputName string
}

// CacheOptions selects and configures an embedding cache.
type CacheOptions struct {
	Type          string
	Size          int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// Options selects and configures an embedder.
type Options struct {
	Type       string
	ONNX       ONNXConfig
	HTTP       HTTPConfig
	Dimensions int
	Cache      CacheOptions
}

// New builds the embedder described by opts. Corpus-fitted embedders are
// never cached since their vector space changes with every corpus.
func New(ctx context.Context, opts Options, logger *zap.Logger) (Embedder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var (
		e   Embedder
		err error
	)
	switch opts.Type {
	case TypeTFIDF, "":
		e = NewTFIDFEmbedder()
	case TypeMock:
		e = NewMockEmbedder(opts.Dimensions)
	case TypeONNX:
		e, err = NewONNXEmbedder(opts.ONNX)
	case TypeHTTP:
		e, err = NewHTTPEmbedder(opts.HTTP)
	default:
		return nil, fmt.Errorf("unknown embedder type: %s (supported: tfidf, onnx, http, mock)", opts.Type)
	}
	if err != nil {
		return nil, err
	}

	if _, fitted := e.(Fitter); fitted || opts.Cache.Type == CacheNone || opts.Cache.Type == "" {
		return e, nil
	}
	var cache Cache
	switch opts.Cache.Type {
	case CacheMemory:
		cache = NewLRUCache(opts.Cache.Size)
	case CacheRedis:
		cache, err = NewRedisCache(ctx, RedisOptions{
			Addr:     opts.Cache.RedisAddr,
			Password: opts.Cache.RedisPassword,
			DB:       opts.Cache.RedisDB,
			TTL:      opts.Cache.TTL,
			Logger:   logger.Named("redis-cache"),
		})
		if err != nil {
			_ = e.Close()
			return nil, err
		}
	default:
		_ = e.Close()
		return nil, fmt.Errorf("unknown cache type: %s (supported: none, memory, redis)", opts.Cache.Type)
	}
	logger.Debug("embedding cache enabled", zap.String("embedder", e.Name()), zap.String("cache", opts.Cache.Type))
	return NewCachedEmbedder(e, cache), nil
}
