package models

import "time"

// StatusResponse is returned by GET /api/v1/status.
type StatusResponse struct {
	Status          string     `json:"status"`
	Source          string     `json:"source"`
	Embedder        string     `json:"embedder"`
	Lines           int        `json:"lines"`
	Questions       int        `json:"questions"`
	Answers         int        `json:"answers"`
	OrphanQuestions int        `json:"orphan_questions"`
	Topics          int        `json:"topics"`
	Languages       int        `json:"languages"`
	Dimensions      int        `json:"dimensions"`
	TopK            int        `json:"top_k"`
	BuiltAt         *time.Time `json:"built_at,omitempty"`
	AnswersLogged   int64      `json:"answers_logged"`
	DiskUsageBytes  int64      `json:"disk_usage_bytes"`
}
