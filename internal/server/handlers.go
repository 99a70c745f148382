package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/locale"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/resolver"
	"github.com/hyperjump/kotae/internal/search"
	"github.com/hyperjump/kotae/internal/storage"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 500
)

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req models.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("answer request", zap.String("query", req.Query), zap.String("lang", req.Lang))

	start := time.Now()
	res, err := s.engine.Answer(r.Context(), req.Query)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("answer failed", zap.Error(err))
		}
		s.respondError(w, status, err.Error())
		return
	}
	resp := models.NewAnswerResponse(uuid.NewString(), req.Query, req.Lang, res, time.Since(start))
	s.recordAnswer(r.Context(), resp)
	s.respondJSON(w, http.StatusOK, resp)
}

// statusForError maps engine errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, search.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, search.ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, resolver.ErrNoAnswerFound):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) recordAnswer(ctx context.Context, resp *models.AnswerResponse) {
	if s.storage == nil || !s.config.Storage.LogAnswers {
		return
	}
	rec := &models.AnswerRecord{
		ID:        resp.ID,
		Query:     resp.Query,
		Lang:      resp.Lang,
		Answer:    resp.Answer,
		Distance:  resp.Distance,
		Tier:      resp.Tier,
		LineIndex: resp.LineIndex,
		CreatedAt: time.Now(),
	}
	if err := s.storage.RecordAnswer(ctx, rec); err != nil {
		s.logger.Warn("failed to log answer", zap.String("id", resp.ID), zap.Error(err))
	}
}

func (s *Server) handleRecentAnswers(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		s.respondError(w, http.StatusNotImplemented, "storage not enabled")
		return
	}
	limit := defaultRecentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxRecentLimit)
	}
	recs, err := s.storage.RecentAnswers(r.Context(), limit)
	if err != nil {
		s.logger.Error("recent answers failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recs == nil {
		recs = []*models.AnswerRecord{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"answers": recs})
}

func (s *Server) handleListCorpora(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		s.respondError(w, http.StatusNotImplemented, "storage not enabled")
		return
	}
	list, err := s.storage.ListCorpora(r.Context())
	if err != nil {
		s.logger.Error("list corpora failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []*storage.CorpusInfo{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"corpora": list})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := BuildStatus(r.Context(), s.engine, s.storage, s.config)
	if err != nil {
		s.logger.Error("status failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, st)
}

// BuildStatus collects engine statistics, the answer log size and the
// database disk usage. store may be nil.
func BuildStatus(ctx context.Context, engine *search.Engine, store storage.Storage, cfg *config.Config) (*models.StatusResponse, error) {
	es := engine.Stats()
	st := &models.StatusResponse{
		Status:          "starting",
		Source:          cfg.Corpus.Describe(),
		Embedder:        es.Embedder,
		Lines:           es.Corpus.Lines,
		Questions:       es.Corpus.Questions,
		Answers:         es.Corpus.Answers,
		OrphanQuestions: es.Corpus.Orphans,
		Topics:          es.Corpus.Answers,
		Languages:       len(locale.Languages()),
		Dimensions:      es.Dimensions,
		TopK:            es.TopK,
	}
	if es.Ready {
		st.Status = "ok"
		built := es.BuiltAt
		st.BuiltAt = &built
	}
	if store != nil {
		n, err := store.CountAnswers(ctx)
		if err != nil {
			return nil, err
		}
		st.AnswersLogged = n
	}
	if cfg.Storage.DatabasePath != "" {
		if n, err := storage.DiskUsageBytes(storage.DatabaseFiles(cfg.Storage.DatabasePath)...); err == nil {
			st.DiskUsageBytes = n
		}
	}
	return st, nil
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	lang, err := models.NormalizeLang(r.URL.Query().Get("lang"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	strs := locale.For(lang)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"lang":        lang,
		"suggestions": strs.QuickQuestions,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.engine.Ready() {
		s.respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
