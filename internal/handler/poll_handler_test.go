package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consensus-be/internal/config"
	"consensus-be/internal/domain"
	"consensus-be/internal/store"
	"consensus-be/pkg/logger"
)

func newPollRouter(t *testing.T, opts store.Options) (*chi.Mux, *store.Store) {
	t.Helper()
	log, err := logger.New("error")
	require.NoError(t, err)
	if opts.Logger == nil {
		opts.Logger = log.Logger
	}

	s := store.New(store.NewMemoryPersistence(), opts)
	require.NoError(t, s.Load(context.Background()))

	cfg := &config.Config{
		DefaultLatitude:  37.7749,
		DefaultLongitude: -122.4194,
	}

	r := chi.NewRouter()
	NewPollHandler(s, cfg, log).RegisterRoutes(r)
	return r, s
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodePoll(t *testing.T, rec *httptest.ResponseRecorder) domain.Poll {
	t.Helper()
	var poll domain.Poll
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &poll))
	return poll
}

func TestPollLifecycle(t *testing.T) {
	r, _ := newPollRouter(t, store.Options{})

	rec := doJSON(t, r, http.MethodPost, "/polls", domain.CreatePollRequest{
		Title:        "Taco Night",
		Type:         domain.PollTypeRestaurant,
		Participants: []string{"Ana", "Ben", "Cara"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	poll := decodePoll(t, rec)
	require.NotEmpty(t, poll.ID)

	rec = doJSON(t, r, http.MethodPost, "/polls/"+poll.ID+"/candidates", domain.Business{ID: "x", Name: "Taqueria X"})
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, r, http.MethodPost, "/polls/"+poll.ID+"/candidates", domain.Business{ID: "y", Name: "Taqueria Y"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/polls/"+poll.ID+"/votes", domain.VoteRequest{CandidateID: "x", ParticipantName: "Ana"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodePoll(t, rec)
	assert.Equal(t, 1, updated.Votes["x"])

	// Ana revoting changes nothing
	rec = doJSON(t, r, http.MethodPost, "/polls/"+poll.ID+"/votes", domain.VoteRequest{CandidateID: "y", ParticipantName: "Ana"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated = decodePoll(t, rec)
	assert.Equal(t, 1, updated.Votes["x"])
	assert.Equal(t, 0, updated.Votes["y"])

	rec = doJSON(t, r, http.MethodPost, "/polls/"+poll.ID+"/votes", domain.VoteRequest{CandidateID: "y", ParticipantName: "Ben"})
	require.Equal(t, http.StatusOK, rec.Code)

	// A non-owner cannot end the poll
	rec = doJSON(t, r, http.MethodPost, "/polls/"+poll.ID+"/end", domain.EndPollRequest{ParticipantName: "Ana"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/polls/"+poll.ID+"/end", domain.EndPollRequest{ParticipantName: "You"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/polls/"+poll.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.PollStatusCompleted, decodePoll(t, rec).Status)
}

func TestCreatePollValidation(t *testing.T) {
	r, _ := newPollRouter(t, store.Options{})

	rec := doJSON(t, r, http.MethodPost, "/polls", domain.CreatePollRequest{Title: ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/polls", domain.CreatePollRequest{Title: "X", Type: "party"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPollNotFound(t *testing.T) {
	r, _ := newPollRouter(t, store.Options{})

	rec := doJSON(t, r, http.MethodGet, "/polls/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCastVoteTolerantMissingPoll(t *testing.T) {
	r, _ := newPollRouter(t, store.Options{})

	// Tolerant mode swallows the write; there is no poll to echo back
	rec := doJSON(t, r, http.MethodPost, "/polls/ghost/votes", domain.VoteRequest{CandidateID: "x", ParticipantName: "Ana"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCastVoteStrictMissingPoll(t *testing.T) {
	r, _ := newPollRouter(t, store.Options{Strict: true})

	rec := doJSON(t, r, http.MethodPost, "/polls/ghost/votes", domain.VoteRequest{CandidateID: "x", ParticipantName: "Ana"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetResultsWithETag(t *testing.T) {
	r, _ := newPollRouter(t, store.Options{})

	rec := doJSON(t, r, http.MethodPost, "/polls", domain.CreatePollRequest{
		Title:        "Taco Night",
		Type:         domain.PollTypeRestaurant,
		Participants: []string{"Ana", "Ben"},
	})
	poll := decodePoll(t, rec)

	doJSON(t, r, http.MethodPost, "/polls/"+poll.ID+"/candidates", domain.Business{ID: "x", Name: "Taqueria X"})
	doJSON(t, r, http.MethodPost, "/polls/"+poll.ID+"/candidates", domain.Business{ID: "y", Name: "Taqueria Y"})
	doJSON(t, r, http.MethodPost, "/polls/"+poll.ID+"/votes", domain.VoteRequest{CandidateID: "y", ParticipantName: "Ana"})

	rec = doJSON(t, r, http.MethodGet, "/polls/"+poll.ID+"/results", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	var results domain.PollResults
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	assert.Equal(t, 1, results.TotalVotes)
	require.NotNil(t, results.Winner)
	assert.Equal(t, "y", results.Winner.ID)
	assert.Equal(t, "y", results.Candidates[0].ID)

	// Unchanged results revalidate to 304
	req := httptest.NewRequest(http.MethodGet, "/polls/"+poll.ID+"/results", nil)
	req.Header.Set("If-None-Match", etag)
	rec2 := httptest.NewRecorder()
	r.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusNotModified, rec2.Code)

	// A new vote invalidates the tag
	doJSON(t, r, http.MethodPost, "/polls/"+poll.ID+"/votes", domain.VoteRequest{CandidateID: "x", ParticipantName: "Ben"})
	req = httptest.NewRequest(http.MethodGet, "/polls/"+poll.ID+"/results", nil)
	req.Header.Set("If-None-Match", etag)
	rec3 := httptest.NewRecorder()
	r.ServeHTTP(rec3, req)
	assert.Equal(t, http.StatusOK, rec3.Code)
	assert.NotEqual(t, etag, rec3.Header().Get("ETag"))
}

func TestParticipantLocationEndpoints(t *testing.T) {
	r, _ := newPollRouter(t, store.Options{})

	rec := doJSON(t, r, http.MethodPost, "/polls", domain.CreatePollRequest{
		Title:        "Taco Night",
		Participants: []string{"Ana"},
	})
	poll := decodePoll(t, rec)

	// Never reported: the configured default comes back flagged
	rec = doJSON(t, r, http.MethodGet, "/polls/"+poll.ID+"/participants/Ana/location", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Location domain.Coordinates `json:"location"`
		Default  bool               `json:"default"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Default)
	assert.Equal(t, 37.7749, resp.Location.Latitude)

	rec = doJSON(t, r, http.MethodPut, "/polls/"+poll.ID+"/participants/Ana/location",
		domain.Coordinates{Latitude: 40.7, Longitude: -74.0})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/polls/"+poll.ID+"/participants/Ana/location", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Default)
	assert.Equal(t, 40.7, resp.Location.Latitude)

	rec = doJSON(t, r, http.MethodGet, "/polls/"+poll.ID+"/participants/Nobody/location", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetDirections(t *testing.T) {
	r, _ := newPollRouter(t, store.Options{})

	rec := doJSON(t, r, http.MethodPost, "/polls", domain.CreatePollRequest{
		Title:        "Taco Night",
		Participants: []string{"Ana"},
	})
	poll := decodePoll(t, rec)

	doJSON(t, r, http.MethodPost, "/polls/"+poll.ID+"/candidates", domain.Business{
		ID:          "x",
		Name:        "Taqueria X",
		Coordinates: &domain.Coordinates{Latitude: 37.8, Longitude: -122.41},
	})

	rec = doJSON(t, r, http.MethodGet, "/polls/"+poll.ID+"/candidates/x/directions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["url"], "www.google.com/maps/dir/")
	assert.Contains(t, resp["url"], "destination=37.800000")
	// Origin falls back to the configured default coordinate
	assert.Contains(t, resp["url"], "origin=37.774900")

	rec = doJSON(t, r, http.MethodGet, "/polls/"+poll.ID+"/candidates/unknown/directions", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
