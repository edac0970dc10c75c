package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"consensus-be/internal/domain"
	"consensus-be/pkg/redis"
)

func newRedisPersistence(t *testing.T) (*RedisPersistence, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := redis.NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return NewRedisPersistence(client), mr
}

func TestRedisPersistenceEmptyKey(t *testing.T) {
	persist, _ := newRedisPersistence(t)

	polls, err := persist.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, polls)
}

func TestRedisPersistenceRoundTrip(t *testing.T) {
	persist, mr := newRedisPersistence(t)
	ctx := context.Background()

	lat := 37.0
	in := []domain.Poll{
		{
			ID:     "p1",
			Title:  "Taco Night",
			Type:   domain.PollTypeRestaurant,
			Status: domain.PollStatusActive,
			Owner:  "You",
			Participants: []domain.Participant{
				{Name: "Ana", Voted: true, Location: &domain.Coordinates{Latitude: lat, Longitude: -122.0}},
				{Name: "Ben"},
			},
			Candidates: []domain.Business{
				{ID: "x", Name: "Taqueria X", Rating: 4.5, Votes: 1, Tags: []string{"Mexican"}},
			},
			Votes: map[string]int{"x": 1},
		},
	}

	require.NoError(t, persist.Save(ctx, in))

	// The whole collection lives under one fixed, env-prefixed key
	assert.True(t, mr.Exists("test:polls:document"))

	out, err := persist.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, in[0].ID, out[0].ID)
	assert.Equal(t, in[0].Votes, out[0].Votes)
	require.NotNil(t, out[0].Participants[0].Location)
	assert.Equal(t, lat, out[0].Participants[0].Location.Latitude)
	assert.True(t, out[0].Participants[0].Voted)
	assert.Equal(t, []string{"Mexican"}, out[0].Candidates[0].Tags)
}

func TestRedisPersistenceMalformedDocument(t *testing.T) {
	persist, mr := newRedisPersistence(t)
	mr.Set("test:polls:document", "{broken")

	_, err := persist.Load(context.Background())
	assert.Error(t, err)
}

func TestStoreOverRedis(t *testing.T) {
	persist, _ := newRedisPersistence(t)
	ctx := context.Background()

	s := New(persist, Options{})
	poll, err := s.Create(ctx, &domain.CreatePollRequest{
		Title:        "Taco Night",
		Type:         domain.PollTypeRestaurant,
		Participants: []string{"Ana"},
	})
	require.NoError(t, err)
	require.NoError(t, s.AddCandidate(ctx, poll.ID, domain.Business{ID: "x", Name: "Taqueria X"}))
	require.NoError(t, s.CastVote(ctx, poll.ID, "x", "Ana"))

	reloaded := New(persist, Options{})
	got, err := reloaded.Get(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Votes["x"])
	assert.True(t, got.FindParticipant("Ana").Voted)
}
