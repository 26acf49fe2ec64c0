// Package handler exposes the search server over HTTP.
package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/paginator"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/parallel"
)

type Config struct {
	DefaultMode     parallel.Mode
	PageSize        int
	MaxBatchQueries int
}

type Handler struct {
	service *Service
	cfg     Config
	logger  *slog.Logger
}

func New(service *Service, cfg Config) *Handler {
	if cfg.PageSize < 1 {
		cfg.PageSize = 5
	}
	if cfg.MaxBatchQueries < 1 {
		cfg.MaxBatchQueries = 100
	}
	return &Handler{
		service: service,
		cfg:     cfg,
		logger:  slog.Default().With("component", "search-handler"),
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/documents", h.AddDocument)
	mux.HandleFunc("GET /api/v1/documents", h.ListDocuments)
	mux.HandleFunc("DELETE /api/v1/documents/{id}", h.RemoveDocument)
	mux.HandleFunc("GET /api/v1/documents/{id}/frequencies", h.Frequencies)
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("POST /api/v1/search/batch", h.Batch)
	mux.HandleFunc("GET /api/v1/match", h.Match)
	mux.HandleFunc("PUT /api/v1/config/result-cap", h.SetResultCap)
	mux.HandleFunc("GET /api/v1/stats", h.Stats)
}

type addDocumentRequest struct {
	ID      *int            `json:"id"`
	Text    string          `json:"text"`
	Status  document.Status `json:"status"`
	Ratings []int           `json:"ratings"`
}

func (h *Handler) AddDocument(w http.ResponseWriter, r *http.Request) {
	var req addDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ID == nil {
		h.writeError(w, http.StatusBadRequest, "field 'id' is required")
		return
	}
	if err := h.service.AddDocument(r.Context(), *req.ID, req.Text, req.Status, req.Ratings); err != nil {
		h.writeAppError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("document added", "doc_id", *req.ID, "status", req.Status)
	h.writeJSON(w, http.StatusCreated, map[string]any{"id": *req.ID, "status": req.Status})
}

func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	ids := h.service.DocumentIDs()
	h.writeJSON(w, http.StatusOK, map[string]any{"count": len(ids), "ids": ids})
}

func (h *Handler) RemoveDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	mode, ok := h.mode(w, r)
	if !ok {
		return
	}
	removed := h.service.RemoveDocument(r.Context(), id, mode)
	logger.FromContext(r.Context()).Info("document remove requested", "doc_id", id, "removed", removed)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Frequencies(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"id":          id,
		"frequencies": h.service.WordFrequencies(id),
	})
}

type searchResponse struct {
	Query      string              `json:"query"`
	Status     document.Status     `json:"status"`
	Mode       parallel.Mode       `json:"mode"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	TotalPages int                 `json:"total_pages"`
	CacheHit   bool                `json:"cache_hit"`
	Results    []document.Document `json:"results"`
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	query := params.Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	status, err := document.ParseStatus(params.Get("status"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	mode, ok := h.mode(w, r)
	if !ok {
		return
	}
	page, ok := h.intParam(w, r, "page", 1)
	if !ok {
		return
	}
	pageSize, ok := h.intParam(w, r, "page_size", h.cfg.PageSize)
	if !ok {
		return
	}

	res, err := h.service.Search(r.Context(), query, status, mode)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	docs, totalPages, err := paginator.Page(res.Documents, page, pageSize)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, searchResponse{
		Query:      query,
		Status:     status,
		Mode:       mode,
		Total:      len(res.Documents),
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		CacheHit:   res.CacheHit,
		Results:    docs,
	})
}

type batchRequest struct {
	Queries []string `json:"queries"`
}

func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Queries) > h.cfg.MaxBatchQueries {
		h.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("batch of %d queries exceeds limit %d", len(req.Queries), h.cfg.MaxBatchQueries))
		return
	}
	results, err := h.service.Batch(req.Queries)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "query parameter 'id' must be an integer")
		return
	}
	mode, ok := h.mode(w, r)
	if !ok {
		return
	}
	res, err := h.service.Match(query, id, mode)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"id":     id,
		"terms":  res.Terms,
		"status": res.Status,
	})
}

func (h *Handler) SetResultCap(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Cap int `json:"cap"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	previous, current := h.service.SetResultCap(req.Cap)
	h.writeJSON(w, http.StatusOK, map[string]int{"previous": previous, "current": current})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Stats())
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "document id must be an integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) mode(w http.ResponseWriter, r *http.Request) (parallel.Mode, bool) {
	v := r.URL.Query().Get("mode")
	if v == "" {
		return h.cfg.DefaultMode, true
	}
	mode, err := parallel.ParseMode(v)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return 0, false
	}
	return mode, true
}

func (h *Handler) intParam(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("query parameter '%s' must be an integer", name))
		return 0, false
	}
	return n, true
}

func (h *Handler) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatusCode(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
	}
	h.writeError(w, status, err.Error())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
