package handler

import (
	"encoding/json"
	"net/http"

	"consensus-be/internal/domain"
	"consensus-be/internal/service"
	apperrors "consensus-be/pkg/errors"
	"consensus-be/pkg/logger"
)

// SearchHandler exposes the business search AI passthrough
type SearchHandler struct {
	yelp   service.YelpService
	logger *logger.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(yelp service.YelpService, log *logger.Logger) *SearchHandler {
	return &SearchHandler{yelp: yelp, logger: log}
}

// Chat handles POST /api/yelp/chat. Multi-turn conversations continue by
// echoing back the chat_id from a previous response.
func (h *SearchHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, apperrors.ErrorTypeValidation, "Invalid request body")
		return
	}
	if req.Query == "" {
		respondError(w, http.StatusBadRequest, apperrors.ErrorTypeValidation, "query is required")
		return
	}

	resp, err := h.yelp.Chat(r.Context(), &req)
	if err != nil {
		respondAppError(w, err, h.logger)
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"query":      req.Query,
		"businesses": len(resp.Businesses),
	}).Info("Chat query completed")

	respondJSON(w, http.StatusOK, resp)
}

// Search handles POST /api/yelp/search, the simplified one-shot form
// that returns only the business list.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req domain.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, apperrors.ErrorTypeValidation, "Invalid request body")
		return
	}
	if req.Query == "" {
		respondError(w, http.StatusBadRequest, apperrors.ErrorTypeValidation, "query is required")
		return
	}

	businesses, err := h.yelp.SearchBusinesses(r.Context(), req.Query, req.Latitude, req.Longitude, req.Locale)
	if err != nil {
		respondAppError(w, err, h.logger)
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"query":      req.Query,
		"businesses": len(businesses),
	}).Info("Search query completed")

	respondJSON(w, http.StatusOK, businesses)
}
