// Package storage persists imported corpora and the answer log.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/hyperjump/kotae/internal/models"
)

// ErrCorpusNotFound is returned when no corpus is stored under a name.
var ErrCorpusNotFound = errors.New("corpus not found")

// CorpusInfo describes a stored corpus without its content.
type CorpusInfo struct {
	Name      string    `json:"name"`
	Lines     int       `json:"lines"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Storage defines corpus and answer log persistence operations.
type Storage interface {
	// Corpus operations
	SaveCorpus(ctx context.Context, name, content string) (*CorpusInfo, error)
	LoadCorpus(ctx context.Context, name string) (string, error)
	ListCorpora(ctx context.Context) ([]*CorpusInfo, error)
	DeleteCorpus(ctx context.Context, name string) error

	// Answer log
	RecordAnswer(ctx context.Context, rec *models.AnswerRecord) error
	RecentAnswers(ctx context.Context, limit int) ([]*models.AnswerRecord, error)
	CountAnswers(ctx context.Context) (int64, error)

	Close() error
}
