package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"consensus-be/internal/domain"
	"consensus-be/internal/service"
	apperrors "consensus-be/pkg/errors"
	"consensus-be/pkg/logger"
)

// MultimodalHandler exposes voice and image analysis, funneling derived
// search queries into the business search client.
type MultimodalHandler struct {
	gemini service.GeminiService
	yelp   service.YelpService
	logger *logger.Logger
}

// NewMultimodalHandler creates a new multimodal handler. The gemini
// service may be nil when no API key is configured; the endpoints then
// report the integration as unavailable.
func NewMultimodalHandler(gemini service.GeminiService, yelp service.YelpService, log *logger.Logger) *MultimodalHandler {
	return &MultimodalHandler{gemini: gemini, yelp: yelp, logger: log}
}

func (h *MultimodalHandler) available(w http.ResponseWriter) bool {
	if h.gemini == nil {
		respondError(w, http.StatusServiceUnavailable, apperrors.ErrorTypeExternal, "Multimodal analysis is not configured")
		return false
	}
	return true
}

// ProcessAudio handles POST /api/gemini/process-audio
func (h *MultimodalHandler) ProcessAudio(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	var req domain.AudioProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, apperrors.ErrorTypeValidation, "Invalid request body")
		return
	}

	audio, err := base64.StdEncoding.DecodeString(req.AudioBase64)
	if err != nil || len(audio) == 0 {
		respondError(w, http.StatusBadRequest, apperrors.ErrorTypeValidation, "audio_base64 must be valid base64")
		return
	}

	result, err := h.gemini.ProcessAudio(r.Context(), audio, req.MimeType, req.Prompt)
	if err != nil {
		respondAppError(w, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ProcessImage handles POST /api/gemini/process-image
func (h *MultimodalHandler) ProcessImage(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	var req domain.ImageProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, apperrors.ErrorTypeValidation, "Invalid request body")
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil || len(image) == 0 {
		respondError(w, http.StatusBadRequest, apperrors.ErrorTypeValidation, "image_base64 must be valid base64")
		return
	}

	result, err := h.gemini.ProcessImage(r.Context(), image, req.MimeType, req.Prompt)
	if err != nil {
		respondAppError(w, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// TranscribeAudio handles POST /api/gemini/transcribe-audio
func (h *MultimodalHandler) TranscribeAudio(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	var req domain.AudioProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, apperrors.ErrorTypeValidation, "Invalid request body")
		return
	}

	audio, err := base64.StdEncoding.DecodeString(req.AudioBase64)
	if err != nil || len(audio) == 0 {
		respondError(w, http.StatusBadRequest, apperrors.ErrorTypeValidation, "audio_base64 must be valid base64")
		return
	}

	transcription, err := h.gemini.TranscribeAudio(r.Context(), audio, req.MimeType)
	if err != nil {
		respondAppError(w, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, domain.TranscriptionResponse{
		Success:       true,
		Transcription: transcription,
	})
}

// MultimodalSearch handles POST /api/gemini/multimodal-search: analyze
// the combined inputs, take the unified search query out of the
// analysis, then search businesses with it in one round trip.
func (h *MultimodalHandler) MultimodalSearch(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	var req domain.MultimodalSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, apperrors.ErrorTypeValidation, "Invalid request body")
		return
	}

	var audio, image []byte
	var err error
	if req.AudioBase64 != "" {
		if audio, err = base64.StdEncoding.DecodeString(req.AudioBase64); err != nil {
			respondError(w, http.StatusBadRequest, apperrors.ErrorTypeValidation, "audio_base64 must be valid base64")
			return
		}
	}
	if req.ImageBase64 != "" {
		if image, err = base64.StdEncoding.DecodeString(req.ImageBase64); err != nil {
			respondError(w, http.StatusBadRequest, apperrors.ErrorTypeValidation, "image_base64 must be valid base64")
			return
		}
	}

	analysis, err := h.gemini.MultimodalSearch(r.Context(), req.TextQuery, audio, image, req.AudioMimeType, req.ImageMimeType)
	if err != nil {
		respondAppError(w, err, h.logger)
		return
	}

	searchQuery := req.TextQuery
	var parsed struct {
		UnifiedSearchQuery string `json:"unified_search_query"`
	}
	if err := json.Unmarshal(analysis.Result, &parsed); err == nil && parsed.UnifiedSearchQuery != "" {
		searchQuery = parsed.UnifiedSearchQuery
	}
	if searchQuery == "" {
		searchQuery = "restaurants"
	}

	businesses, err := h.yelp.SearchBusinesses(r.Context(), searchQuery, req.Latitude, req.Longitude, req.Locale)
	if err != nil {
		respondAppError(w, err, h.logger)
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"search_query": searchQuery,
		"businesses":   len(businesses),
	}).Info("Multimodal search completed")

	respondJSON(w, http.StatusOK, domain.MultimodalSearchResponse{
		Success:     true,
		Analysis:    analysis.Result,
		SearchQuery: searchQuery,
		Businesses:  businesses,
	})
}
