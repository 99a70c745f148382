package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kotae/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db, path: dbPath}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS corpora (
		name TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		line_count INTEGER NOT NULL,
		checksum TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS answers (
		id TEXT PRIMARY KEY,
		query TEXT NOT NULL,
		lang TEXT NOT NULL,
		answer TEXT NOT NULL,
		distance REAL NOT NULL,
		tier TEXT NOT NULL,
		line_index INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_answers_created_at ON answers(created_at);
	CREATE INDEX IF NOT EXISTS idx_answers_tier ON answers(tier);
	`
	_, err := db.Exec(schema)
	return err
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string { return s.path }

// SaveCorpus inserts or replaces the corpus stored under name.
func (s *SQLiteStorage) SaveCorpus(ctx context.Context, name, content string) (*CorpusInfo, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("corpus name cannot be empty")
	}
	sum := sha256.Sum256([]byte(content))
	info := &CorpusInfo{
		Name:      name,
		Lines:     countNonBlankLines(content),
		Checksum:  hex.EncodeToString(sum[:]),
		UpdatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO corpora (name, content, line_count, checksum, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   content = excluded.content,
		   line_count = excluded.line_count,
		   checksum = excluded.checksum,
		   updated_at = excluded.updated_at`,
		info.Name, content, info.Lines, info.Checksum, info.UpdatedAt, info.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save corpus %s: %w", name, err)
	}
	return info, nil
}

// LoadCorpus returns the raw text stored under name.
func (s *SQLiteStorage) LoadCorpus(ctx context.Context, name string) (string, error) {
	var content string
	err := s.db.QueryRowContext(ctx, `SELECT content FROM corpora WHERE name = ?`, name).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrCorpusNotFound, name)
	}
	if err != nil {
		return "", err
	}
	return content, nil
}

// ListCorpora returns all stored corpora ordered by name.
func (s *SQLiteStorage) ListCorpora(ctx context.Context) ([]*CorpusInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, line_count, checksum, updated_at FROM corpora ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*CorpusInfo
	for rows.Next() {
		var info CorpusInfo
		if err := rows.Scan(&info.Name, &info.Lines, &info.Checksum, &info.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &info)
	}
	return out, rows.Err()
}

// DeleteCorpus removes the corpus stored under name.
func (s *SQLiteStorage) DeleteCorpus(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM corpora WHERE name = ?`, name)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrCorpusNotFound, name)
	}
	return nil
}

// RecordAnswer appends rec to the answer log. CreatedAt is set when zero.
func (s *SQLiteStorage) RecordAnswer(ctx context.Context, rec *models.AnswerRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO answers (id, query, lang, answer, distance, tier, line_index, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Query, rec.Lang, rec.Answer, rec.Distance, rec.Tier.String(), rec.LineIndex, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record answer: %w", err)
	}
	return nil
}

// RecentAnswers returns up to limit log entries, newest first.
func (s *SQLiteStorage) RecentAnswers(ctx context.Context, limit int) ([]*models.AnswerRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, lang, answer, distance, tier, line_index, created_at
		 FROM answers ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.AnswerRecord
	for rows.Next() {
		var rec models.AnswerRecord
		var tier string
		if err := rows.Scan(&rec.ID, &rec.Query, &rec.Lang, &rec.Answer, &rec.Distance, &tier, &rec.LineIndex, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := rec.Tier.UnmarshalText([]byte(tier)); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// CountAnswers returns the number of logged answers.
func (s *SQLiteStorage) CountAnswers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM answers`).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func countNonBlankLines(content string) int {
	n := 0
	for _, l := range strings.Split(content, "\n") {
		if strings.TrimSpace(l) != "" {
			n++
		}
	}
	return n
}
