package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"consensus-be/internal/domain"
	"consensus-be/pkg/logger"
	"consensus-be/pkg/redis"
)

type stubCalendarService struct {
	exchangeErr error
	createResp  *domain.CreateEventResponse
}

func (s *stubCalendarService) AuthorizationURL(state string) string {
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (s *stubCalendarService) ExchangeCode(ctx context.Context, code string) (*domain.TokenBundle, error) {
	if s.exchangeErr != nil {
		return nil, s.exchangeErr
	}
	return &domain.TokenBundle{AccessToken: "access-" + code, RefreshToken: "refresh"}, nil
}

func (s *stubCalendarService) CreateEvent(ctx context.Context, accessToken, refreshToken string, details *domain.EventDetails) (*domain.CreateEventResponse, error) {
	return s.createResp, nil
}

func newCalendarHandler(t *testing.T) *CalendarHandler {
	t.Helper()
	log, err := logger.New("error")
	require.NoError(t, err)
	return NewCalendarHandler(&stubCalendarService{
		createResp: &domain.CreateEventResponse{Success: true, EventID: "evt-1"},
	}, NewMemoryStateStore(), log)
}

func TestStartAuthRequiresUserID(t *testing.T) {
	h := newCalendarHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/start", nil)
	rec := httptest.NewRecorder()
	h.StartAuth(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandshake(t *testing.T) {
	h := newCalendarHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/start?user_id=u1", nil)
	rec := httptest.NewRecorder()
	h.StartAuth(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var start domain.AuthStartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &start))
	require.NotEmpty(t, start.State)
	assert.Contains(t, start.AuthURL, start.State)

	req = httptest.NewRequest(http.MethodGet, "/auth/callback?code=c1&state="+start.State, nil)
	rec = httptest.NewRecorder()
	h.AuthCallback(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var cb domain.AuthCallbackResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cb))
	assert.True(t, cb.Success)
	assert.Equal(t, "u1", cb.UserID)
	require.NotNil(t, cb.Tokens)
	assert.Equal(t, "access-c1", cb.Tokens.AccessToken)

	// The state is consumed; replaying the callback fails
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/auth/callback?code=c1&state="+start.State, nil)
	h.AuthCallback(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthCallbackUnknownState(t *testing.T) {
	h := newCalendarHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=c1&state=forged", nil)
	rec := httptest.NewRecorder()
	h.AuthCallback(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateEventValidation(t *testing.T) {
	h := newCalendarHandler(t)

	body := `{"access_token": "", "event_details": null}`
	req := httptest.NewRequest(http.MethodPost, "/create-event", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.CreateEvent(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body = `{"access_token": "tok", "event_details": {"title": "Dinner", "start_time": "2025-05-01T19:00:00", "end_time": "2025-05-01T21:00:00"}}`
	req = httptest.NewRequest(http.MethodPost, "/create-event", strings.NewReader(body))
	rec = httptest.NewRecorder()
	h.CreateEvent(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.CreateEventResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "evt-1", resp.EventID)
}

func TestRedisStateStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := redis.NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	states := NewRedisStateStore(client)
	ctx := context.Background()

	require.NoError(t, states.Put(ctx, "st-1", "u1"))

	userID, ok, err := states.Take(ctx, "st-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "u1", userID)

	// Consumed on first take
	_, ok, err = states.Take(ctx, "st-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStateStoreExpiry(t *testing.T) {
	states := NewMemoryStateStore()
	ctx := context.Background()

	require.NoError(t, states.Put(ctx, "st-1", "u1"))
	states.states["st-1"] = memoryState{userID: "u1", expires: time.Now().Add(-time.Minute)}

	_, ok, err := states.Take(ctx, "st-1")
	require.NoError(t, err)
	assert.False(t, ok)
}
