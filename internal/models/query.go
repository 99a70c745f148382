package models

import (
	"fmt"
	"strings"
	"time"
)

// Supported UI languages.
const (
	LangEnglish = "en"
	LangSpanish = "es"
)

// AnswerRequest is the body of POST /api/v1/answer.
type AnswerRequest struct {
	Query string `json:"query"`
	Lang  string `json:"lang,omitempty"`
}

// Validate trims the query and normalizes the language, defaulting to English.
func (r *AnswerRequest) Validate() error {
	r.Query = strings.TrimSpace(r.Query)
	if r.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	lang, err := NormalizeLang(r.Lang)
	if err != nil {
		return err
	}
	r.Lang = lang
	return nil
}

// NormalizeLang lowercases lang and checks it is supported. Empty means English.
func NormalizeLang(lang string) (string, error) {
	switch l := strings.ToLower(strings.TrimSpace(lang)); l {
	case "":
		return LangEnglish, nil
	case LangEnglish, LangSpanish:
		return l, nil
	default:
		return "", fmt.Errorf("unsupported language %q (supported: en, es)", lang)
	}
}

// AnswerResponse is returned by POST /api/v1/answer.
type AnswerResponse struct {
	ID          string  `json:"id"`
	Query       string  `json:"query"`
	Answer      string  `json:"answer"`
	Distance    float64 `json:"distance"`
	Tier        Tier    `json:"tier"`
	LineIndex   int     `json:"line_index"`
	Lang        string  `json:"lang"`
	QueryTimeMs int64   `json:"query_time_ms"`
}

// NewAnswerResponse builds a response from a resolution.
func NewAnswerResponse(id, query, lang string, res *Resolution, took time.Duration) *AnswerResponse {
	return &AnswerResponse{
		ID:          id,
		Query:       query,
		Answer:      res.Answer,
		Distance:    res.Distance,
		Tier:        res.Tier,
		LineIndex:   res.LineIndex,
		Lang:        lang,
		QueryTimeMs: took.Milliseconds(),
	}
}

// AnswerRecord is one logged query and its resolution.
type AnswerRecord struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	Lang      string    `json:"lang"`
	Answer    string    `json:"answer"`
	Distance  float64   `json:"distance"`
	Tier      Tier      `json:"tier"`
	LineIndex int       `json:"line_index"`
	CreatedAt time.Time `json:"created_at"`
}
