package handler

import (
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"consensus-be/internal/config"
	"consensus-be/internal/domain"
	"consensus-be/internal/store"
	"consensus-be/pkg/directions"
	apperrors "consensus-be/pkg/errors"
	"consensus-be/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// PollHandler exposes the poll store over HTTP
type PollHandler struct {
	store  *store.Store
	cfg    *config.Config
	logger *logger.Logger
}

// NewPollHandler creates a new poll handler
func NewPollHandler(pollStore *store.Store, cfg *config.Config, log *logger.Logger) *PollHandler {
	return &PollHandler{store: pollStore, cfg: cfg, logger: log}
}

// RegisterRoutes mounts the poll API under the given router
func (h *PollHandler) RegisterRoutes(r chi.Router) {
	r.Route("/polls", func(r chi.Router) {
		r.Get("/", h.ListPolls)
		r.Post("/", h.CreatePoll)
		r.Route("/{pollID}", func(r chi.Router) {
			r.Get("/", h.GetPoll)
			r.Post("/candidates", h.AddCandidate)
			r.Post("/votes", h.CastVote)
			r.Post("/end", h.EndPoll)
			r.Get("/results", h.GetResults)
			r.Get("/candidates/{candidateID}/directions", h.GetDirections)
			r.Route("/participants/{name}", func(r chi.Router) {
				r.Put("/location", h.SetParticipantLocation)
				r.Get("/location", h.GetParticipantLocation)
			})
		})
	})
}

// ListPolls handles GET /api/polls. Clients poll this on an interval, so
// the full ordered collection comes back with no filtering.
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := h.store.List(r.Context())
	if err != nil {
		respondAppError(w, apperrors.NewInternalError("Failed to list polls", err), h.logger)
		return
	}
	respondJSON(w, http.StatusOK, polls)
}

// CreatePoll handles POST /api/polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, apperrors.ErrorTypeValidation, "Invalid request body")
		return
	}
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, apperrors.ErrorTypeValidation, "title is required")
		return
	}
	if req.Type != "" && !req.Type.Valid() {
		respondError(w, http.StatusBadRequest, apperrors.ErrorTypeValidation, "unknown poll type")
		return
	}

	poll, err := h.store.Create(r.Context(), &req)
	if err != nil {
		respondAppError(w, apperrors.NewInternalError("Failed to create poll", err), h.logger)
		return
	}
	respondJSON(w, http.StatusCreated, poll)
}

// GetPoll handles GET /api/polls/{pollID}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	poll, err := h.store.Get(r.Context(), chi.URLParam(r, "pollID"))
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, poll)
}

// AddCandidate handles POST /api/polls/{pollID}/candidates
func (h *PollHandler) AddCandidate(w http.ResponseWriter, r *http.Request) {
	var business domain.Business
	if err := json.NewDecoder(r.Body).Decode(&business); err != nil {
		respondError(w, http.StatusBadRequest, apperrors.ErrorTypeValidation, "Invalid request body")
		return
	}
	if business.ID == "" {
		respondError(w, http.StatusBadRequest, apperrors.ErrorTypeValidation, "candidate id is required")
		return
	}

	pollID := chi.URLParam(r, "pollID")
	if err := h.store.AddCandidate(r.Context(), pollID, business); err != nil {
		h.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// CastVote handles POST /api/polls/{pollID}/votes
func (h *PollHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	var req domain.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, apperrors.ErrorTypeValidation, "Invalid request body")
		return
	}
	if req.CandidateID == "" || req.ParticipantName == "" {
		respondError(w, http.StatusBadRequest, apperrors.ErrorTypeValidation, "candidate_id and participant_name are required")
		return
	}

	pollID := chi.URLParam(r, "pollID")
	if err := h.store.CastVote(r.Context(), pollID, req.CandidateID, req.ParticipantName); err != nil {
		h.respondStoreError(w, err)
		return
	}

	poll, err := h.store.Get(r.Context(), pollID)
	if err != nil {
		// Tolerant mode accepts votes for polls that do not exist; there
		// is nothing to return then.
		if errors.Is(err, store.ErrPollNotFound) {
			respondJSON(w, http.StatusNoContent, nil)
			return
		}
		h.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, poll)
}

// EndPoll handles POST /api/polls/{pollID}/end
func (h *PollHandler) EndPoll(w http.ResponseWriter, r *http.Request) {
	var req domain.EndPollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, apperrors.ErrorTypeValidation, "Invalid request body")
		return
	}
	if req.ParticipantName == "" {
		respondError(w, http.StatusBadRequest, apperrors.ErrorTypeValidation, "participant_name is required")
		return
	}

	pollID := chi.URLParam(r, "pollID")
	if err := h.store.End(r.Context(), pollID, req.ParticipantName); err != nil {
		h.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// GetResults handles GET /api/polls/{pollID}/results (polling endpoint)
func (h *PollHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	poll, err := h.store.Get(r.Context(), chi.URLParam(r, "pollID"))
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	results := store.ComputeResults(poll)

	// ETag over the vote-bearing content only; LastUpdate changes on
	// every recomputation and must not defeat caching.
	etag := generateETag(struct {
		Candidates []domain.CandidateResult `json:"candidates"`
		TotalVotes int                      `json:"total_votes"`
		Status     domain.PollStatus        `json:"status"`
	}{results.Candidates, results.TotalVotes, results.Status})

	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=2")
	respondJSON(w, http.StatusOK, results)
}

// GetDirections handles GET /api/polls/{pollID}/candidates/{candidateID}/directions.
// The origin is the requesting participant's stored location when known,
// otherwise the configured default coordinate.
func (h *PollHandler) GetDirections(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "pollID")
	candidateID := chi.URLParam(r, "candidateID")

	poll, err := h.store.Get(r.Context(), pollID)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	candidate := poll.FindCandidate(candidateID)
	if candidate == nil {
		respondError(w, http.StatusNotFound, apperrors.ErrorTypeNotFound, "Candidate not found")
		return
	}

	origin := &domain.Coordinates{
		Latitude:  h.cfg.DefaultLatitude,
		Longitude: h.cfg.DefaultLongitude,
	}
	if name := r.URL.Query().Get("participant"); name != "" {
		if p := poll.FindParticipant(name); p != nil && p.Location != nil {
			origin = p.Location
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"url": directions.URL(origin, candidate.Name, candidate.Coordinates),
	})
}

// SetParticipantLocation handles PUT /api/polls/{pollID}/participants/{name}/location
func (h *PollHandler) SetParticipantLocation(w http.ResponseWriter, r *http.Request) {
	var loc domain.Coordinates
	if err := json.NewDecoder(r.Body).Decode(&loc); err != nil {
		respondError(w, http.StatusBadRequest, apperrors.ErrorTypeValidation, "Invalid request body")
		return
	}

	pollID := chi.URLParam(r, "pollID")
	name := chi.URLParam(r, "name")
	if err := h.store.SetParticipantLocation(r.Context(), pollID, name, loc); err != nil {
		h.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// GetParticipantLocation handles GET /api/polls/{pollID}/participants/{name}/location.
// Falls back to the configured default coordinate when the participant
// has never reported one.
func (h *PollHandler) GetParticipantLocation(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "pollID")
	name := chi.URLParam(r, "name")

	loc, err := h.store.GetParticipantLocation(r.Context(), pollID, name)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	if loc == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"location": domain.Coordinates{
				Latitude:  h.cfg.DefaultLatitude,
				Longitude: h.cfg.DefaultLongitude,
			},
			"default": true,
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"location": loc,
		"default":  false,
	})
}

func (h *PollHandler) respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrPollNotFound):
		respondError(w, http.StatusNotFound, apperrors.ErrorTypeNotFound, "Poll not found")
	case errors.Is(err, store.ErrParticipantNotFound):
		respondError(w, http.StatusNotFound, apperrors.ErrorTypeNotFound, "Participant not found")
	case errors.Is(err, store.ErrCandidateNotFound):
		respondError(w, http.StatusNotFound, apperrors.ErrorTypeNotFound, "Candidate not found")
	case errors.Is(err, store.ErrNotOwner):
		respondError(w, http.StatusForbidden, apperrors.ErrorTypeForbidden, "Only the poll owner may end the poll")
	default:
		respondAppError(w, apperrors.NewInternalError("Poll store operation failed", err), h.logger)
	}
}

func generateETag(data interface{}) string {
	jsonData, _ := json.Marshal(data)
	hash := md5.Sum(jsonData)
	return fmt.Sprintf(`"%x"`, hash)
}
