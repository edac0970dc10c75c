package store

import (
	"sort"
	"time"

	"consensus-be/internal/domain"
)

// Winner returns the candidate with the highest tally, or nil when no
// votes have been cast. Ties break in favor of the candidate that
// appears first in insertion order.
func Winner(candidates []domain.Business, votes map[string]int) *domain.Business {
	var winner *domain.Business
	best := 0
	for i := range candidates {
		if n := votes[candidates[i].ID]; n > best {
			best = n
			winner = &candidates[i]
		}
	}
	return winner
}

// ComputeResults derives the results view for a poll: candidates sorted
// by tally descending (stable, so insertion order decides ties), with
// rank, percentage and winner flags. Recomputed on every read, never
// stored.
func ComputeResults(p *domain.Poll) *domain.PollResults {
	total := 0
	for i := range p.Candidates {
		total += p.Votes[p.Candidates[i].ID]
	}

	ranked := make([]domain.CandidateResult, len(p.Candidates))
	for i, c := range p.Candidates {
		ranked[i] = domain.CandidateResult{Business: c}
		ranked[i].Business.Votes = p.Votes[c.ID]
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Votes > ranked[j].Votes
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
		if total > 0 {
			ranked[i].Percentage = float64(ranked[i].Votes) / float64(total) * 100
		}
	}

	results := &domain.PollResults{
		PollID:     p.ID,
		Title:      p.Title,
		Status:     p.Status,
		Candidates: ranked,
		TotalVotes: total,
		LastUpdate: time.Now().UTC(),
	}

	if total > 0 && len(ranked) > 0 {
		ranked[0].IsWinner = true
		winner := ranked[0]
		results.Winner = &winner
	}

	return results
}
