package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"docrag/internal/domain"
	"docrag/internal/observability"
)

type ingestRequest struct {
	Document string `json:"document"`
	Content  string `json:"content"`
}

type queryRequest struct {
	Question string `json:"question"`
	K        int    `json:"k"`
}

type queryResponse struct {
	Question string                `json:"question"`
	K        int                   `json:"k"`
	Results  []domain.RankedResult `json:"results"`
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return
	}
	if req.Document == "" {
		req.Document = "untitled"
	}

	ctx, span := observability.StartIngestSpan(r.Context(), req.Document)
	defer span.End()

	receipt, err := s.engine.Ingest(ctx, req.Document, req.Content)
	if err != nil {
		observability.RecordError(span, err)
		s.log.Error("ingest failed", "document", req.Document, "error", err)
		writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	observability.RecordIngestResult(span, receipt.ChunkCount)

	writeJSON(w, http.StatusCreated, receipt)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question must not be empty"})
		return
	}
	k := req.K
	if k < 1 {
		k = s.engine.DefaultK()
	}

	ctx, span := observability.StartQuerySpan(r.Context(), k)
	defer span.End()

	results, err := s.engine.Answer(ctx, req.Question, k)
	if err != nil {
		observability.RecordError(span, err)
		if !errors.Is(err, domain.ErrNoSession) {
			s.log.Error("query failed", "error", err)
		}
		writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	var top float32
	if len(results) > 0 {
		top = results[0].Score
	}
	observability.RecordQueryResult(span, len(results), top)

	writeJSON(w, http.StatusOK, queryResponse{
		Question: req.Question,
		K:        k,
		Results:  results,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Status())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps engine errors onto HTTP status codes. Timeout is checked
// before the provider kind because provider errors wrap the context error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNoSession):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEmptyDocument), errors.Is(err, domain.ErrInvalidChunking):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrProvider), errors.Is(err, domain.ErrDimensionMismatch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
