package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consensus-be/internal/domain"
)

func candidates(names ...string) []domain.Business {
	out := make([]domain.Business, len(names))
	for i, n := range names {
		out[i] = domain.Business{ID: n, Name: n}
	}
	return out
}

func TestWinner(t *testing.T) {
	cands := candidates("X", "Y", "Z")

	w := Winner(cands, map[string]int{"X": 3, "Y": 5, "Z": 1})
	require.NotNil(t, w)
	assert.Equal(t, "Y", w.ID)
}

func TestWinnerNoVotes(t *testing.T) {
	assert.Nil(t, Winner(candidates("X", "Y"), map[string]int{}))
	assert.Nil(t, Winner(candidates("X", "Y"), nil))
	assert.Nil(t, Winner(nil, map[string]int{"X": 3}))
}

func TestWinnerTieBreaksOnInsertionOrder(t *testing.T) {
	w := Winner(candidates("X", "Y", "Z"), map[string]int{"X": 2, "Y": 2, "Z": 2})
	require.NotNil(t, w)
	assert.Equal(t, "X", w.ID)
}

func TestComputeResults(t *testing.T) {
	poll := &domain.Poll{
		ID:         "p1",
		Title:      "Taco Night",
		Status:     domain.PollStatusActive,
		Candidates: candidates("X", "Y", "Z"),
		Votes:      map[string]int{"X": 3, "Y": 5, "Z": 1},
	}

	results := ComputeResults(poll)

	assert.Equal(t, "p1", results.PollID)
	assert.Equal(t, 9, results.TotalVotes)
	require.Len(t, results.Candidates, 3)

	assert.Equal(t, "Y", results.Candidates[0].ID)
	assert.Equal(t, 1, results.Candidates[0].Rank)
	assert.True(t, results.Candidates[0].IsWinner)
	assert.InDelta(t, 55.55, results.Candidates[0].Percentage, 0.01)

	assert.Equal(t, "X", results.Candidates[1].ID)
	assert.Equal(t, 2, results.Candidates[1].Rank)
	assert.False(t, results.Candidates[1].IsWinner)

	assert.Equal(t, "Z", results.Candidates[2].ID)
	assert.Equal(t, 3, results.Candidates[2].Rank)

	require.NotNil(t, results.Winner)
	assert.Equal(t, "Y", results.Winner.ID)
}

func TestComputeResultsNoVotes(t *testing.T) {
	poll := &domain.Poll{
		ID:         "p1",
		Title:      "Taco Night",
		Status:     domain.PollStatusActive,
		Candidates: candidates("X", "Y"),
		Votes:      map[string]int{},
	}

	results := ComputeResults(poll)

	assert.Equal(t, 0, results.TotalVotes)
	assert.Nil(t, results.Winner)
	for _, c := range results.Candidates {
		assert.False(t, c.IsWinner)
		assert.Zero(t, c.Percentage)
	}
	// Ranks are still assigned in insertion order
	assert.Equal(t, 1, results.Candidates[0].Rank)
	assert.Equal(t, 2, results.Candidates[1].Rank)
}

func TestComputeResultsTieKeepsInsertionOrder(t *testing.T) {
	poll := &domain.Poll{
		ID:         "p1",
		Candidates: candidates("X", "Y"),
		Votes:      map[string]int{"X": 2, "Y": 2},
	}

	results := ComputeResults(poll)

	assert.Equal(t, "X", results.Candidates[0].ID)
	assert.True(t, results.Candidates[0].IsWinner)
	assert.Equal(t, "Y", results.Candidates[1].ID)
	assert.False(t, results.Candidates[1].IsWinner)
}
