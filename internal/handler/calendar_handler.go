package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"consensus-be/internal/domain"
	"consensus-be/internal/service"
	apperrors "consensus-be/pkg/errors"
	"consensus-be/pkg/logger"
	"consensus-be/pkg/redis"

	goredis "github.com/redis/go-redis/v9"
)

// StateStore keeps OAuth CSRF states between the auth-start and callback
// legs of the handshake. Take consumes the state: a second callback with
// the same state fails.
type StateStore interface {
	Put(ctx context.Context, state, userID string) error
	Take(ctx context.Context, state string) (string, bool, error)
}

// RedisStateStore backs states with Redis so the handshake survives a
// process restart and works across replicas.
type RedisStateStore struct {
	client *redis.Client
}

// NewRedisStateStore creates a Redis-backed state store
func NewRedisStateStore(client *redis.Client) *RedisStateStore {
	return &RedisStateStore{client: client}
}

func (s *RedisStateStore) Put(ctx context.Context, state, userID string) error {
	_, err := s.client.SetNX(ctx, s.client.KeyBuilder.KeyOAuthState(state), userID, redis.TTLOAuthState)
	return err
}

func (s *RedisStateStore) Take(ctx context.Context, state string) (string, bool, error) {
	val, err := s.client.GetDel(ctx, s.client.KeyBuilder.KeyOAuthState(state))
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// MemoryStateStore keeps states in process memory, for dev setups
// without Redis.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]memoryState
}

type memoryState struct {
	userID  string
	expires time.Time
}

// NewMemoryStateStore creates an in-memory state store
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]memoryState)}
}

func (s *MemoryStateStore) Put(ctx context.Context, state, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state] = memoryState{userID: userID, expires: time.Now().Add(redis.TTLOAuthState)}
	return nil
}

func (s *MemoryStateStore) Take(ctx context.Context, state string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.states[state]
	if !ok {
		return "", false, nil
	}
	delete(s.states, state)
	if time.Now().After(entry.expires) {
		return "", false, nil
	}
	return entry.userID, true, nil
}

// CalendarHandler exposes the calendar OAuth handshake and event creation
type CalendarHandler struct {
	calendar service.CalendarService
	states   StateStore
	logger   *logger.Logger
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(calendarService service.CalendarService, states StateStore, log *logger.Logger) *CalendarHandler {
	return &CalendarHandler{calendar: calendarService, states: states, logger: log}
}

// StartAuth handles GET /api/calendar/auth/start?user_id=
func (h *CalendarHandler) StartAuth(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, apperrors.ErrorTypeValidation, "user_id is required")
		return
	}

	state, err := generateState()
	if err != nil {
		respondAppError(w, apperrors.NewInternalError("Failed to generate OAuth state", err), h.logger)
		return
	}
	if err := h.states.Put(r.Context(), state, userID); err != nil {
		respondAppError(w, apperrors.NewInternalError("Failed to store OAuth state", err), h.logger)
		return
	}

	h.logger.WithField("user_id", userID).Info("Starting calendar auth")

	respondJSON(w, http.StatusOK, domain.AuthStartResponse{
		AuthURL: h.calendar.AuthorizationURL(state),
		State:   state,
	})
}

// AuthCallback handles GET /api/calendar/auth/callback?code=&state=
func (h *CalendarHandler) AuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		respondError(w, http.StatusBadRequest, apperrors.ErrorTypeValidation, "code and state are required")
		return
	}

	userID, ok, err := h.states.Take(r.Context(), state)
	if err != nil {
		respondAppError(w, apperrors.NewInternalError("Failed to verify OAuth state", err), h.logger)
		return
	}
	if !ok {
		respondError(w, http.StatusBadRequest, apperrors.ErrorTypeValidation, "Invalid state parameter")
		return
	}

	tokens, err := h.calendar.ExchangeCode(r.Context(), code)
	if err != nil {
		respondAppError(w, err, h.logger)
		return
	}

	h.logger.WithField("user_id", userID).Info("Calendar auth successful")

	// Tokens go back to the client to hold; the server keeps nothing.
	respondJSON(w, http.StatusOK, domain.AuthCallbackResponse{
		Success: true,
		UserID:  userID,
		Tokens:  tokens,
	})
}

// CreateEvent handles POST /api/calendar/create-event
func (h *CalendarHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, apperrors.ErrorTypeValidation, "Invalid request body")
		return
	}
	if req.AccessToken == "" || req.EventDetails == nil {
		respondError(w, http.StatusBadRequest, apperrors.ErrorTypeValidation, "access_token and event_details are required")
		return
	}
	if req.EventDetails.Title == "" || req.EventDetails.StartTime == "" || req.EventDetails.EndTime == "" {
		respondError(w, http.StatusBadRequest, apperrors.ErrorTypeValidation, "event title, start_time and end_time are required")
		return
	}

	result, err := h.calendar.CreateEvent(r.Context(), req.AccessToken, req.RefreshToken, req.EventDetails)
	if err != nil {
		respondAppError(w, err, h.logger)
		return
	}
	if !result.Success {
		respondJSON(w, http.StatusBadGateway, result)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func generateState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
