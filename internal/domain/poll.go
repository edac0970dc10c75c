package domain

import "time"

// PollType classifies what kind of decision a poll is about. It is
// informational only, there is no type-specific behavior.
type PollType string

const (
	PollTypeRestaurant PollType = "restaurant"
	PollTypeTrip       PollType = "trip"
	PollTypeActivity   PollType = "activity"
	PollTypeService    PollType = "service"
)

// Valid reports whether t is one of the closed set of poll types.
func (t PollType) Valid() bool {
	switch t {
	case PollTypeRestaurant, PollTypeTrip, PollTypeActivity, PollTypeService:
		return true
	}
	return false
}

// PollStatus is the lifecycle state of a poll. The only transition is
// active -> completed.
type PollStatus string

const (
	PollStatusActive    PollStatus = "active"
	PollStatusCompleted PollStatus = "completed"
)

// Coordinates is a geographic point
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Participant is a named actor eligible to cast exactly one counted vote
// in a poll. The name doubles as the vote-actor key, there is no account
// system.
type Participant struct {
	Name     string       `json:"name"`
	Voted    bool         `json:"voted"`
	Location *Coordinates `json:"location,omitempty"`
}

// Poll is a single group decision session. Participants and candidates
// keep insertion order. Votes maps candidate id to its tally and is the
// authoritative count; the per-candidate Votes field is a denormalized
// copy kept in sync for display.
type Poll struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Type         PollType       `json:"type"`
	Status       PollStatus     `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	Owner        string         `json:"owner"`
	Participants []Participant  `json:"participants"`
	Candidates   []Business     `json:"candidates"`
	Votes        map[string]int `json:"votes"`
}

// FindParticipant returns a pointer into the poll's participant list, or
// nil when no participant has that name.
func (p *Poll) FindParticipant(name string) *Participant {
	for i := range p.Participants {
		if p.Participants[i].Name == name {
			return &p.Participants[i]
		}
	}
	return nil
}

// FindCandidate returns a pointer into the poll's candidate list, or nil
// when no candidate has that id.
func (p *Poll) FindCandidate(id string) *Business {
	for i := range p.Candidates {
		if p.Candidates[i].ID == id {
			return &p.Candidates[i]
		}
	}
	return nil
}

// CreatePollRequest is the payload for creating a poll
type CreatePollRequest struct {
	Title        string     `json:"title"`
	Type         PollType   `json:"type"`
	Status       PollStatus `json:"status,omitempty"`
	Owner        string     `json:"owner,omitempty"`
	Participants []string   `json:"participants"`
}

// VoteRequest is the payload for casting a vote
type VoteRequest struct {
	CandidateID     string `json:"candidate_id"`
	ParticipantName string `json:"participant_name"`
}

// EndPollRequest is the payload for completing a poll
type EndPollRequest struct {
	ParticipantName string `json:"participant_name"`
}

// CandidateResult is a candidate annotated with its standing in the
// computed results.
type CandidateResult struct {
	Business
	Rank       int     `json:"rank"`
	Percentage float64 `json:"percentage"`
	IsWinner   bool    `json:"is_winner"`
}

// PollResults is the read-time derivation over a poll's candidates and
// tallies. It is recomputed on every request, never stored.
type PollResults struct {
	PollID     string            `json:"poll_id"`
	Title      string            `json:"title"`
	Status     PollStatus        `json:"status"`
	Candidates []CandidateResult `json:"candidates"`
	TotalVotes int               `json:"total_votes"`
	Winner     *CandidateResult  `json:"winner,omitempty"`
	LastUpdate time.Time         `json:"last_update"`
}
