package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"consensus-be/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sentinel errors returned by store operations. In tolerant mode the
// mutating operations swallow the not-found family and report success;
// strict mode surfaces them so callers can distinguish "already happened"
// from "target was missing".
var (
	ErrPollNotFound        = errors.New("poll not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrCandidateNotFound   = errors.New("candidate not found")
	ErrNotOwner            = errors.New("only the poll owner may end the poll")
)

// Options configures a Store.
type Options struct {
	// Strict makes operations on missing polls/participants/candidates
	// return an error instead of silently doing nothing.
	Strict bool

	// DefaultOwner is assigned to legacy polls that were persisted
	// without an owner.
	DefaultOwner string

	Logger *zap.Logger
}

// Store is the single source of truth for all polls. Every operation
// loads the whole collection, mutates it in place and writes the whole
// collection back through the persistence backend; a mutex serializes
// the read-modify-write cycles.
type Store struct {
	mu      sync.Mutex
	persist Persistence
	opts    Options

	loaded bool
	polls  []domain.Poll
}

// New creates a Store over the given persistence backend. The collection
// is loaded lazily on first use; call Load to warm it eagerly and surface
// corrupt persisted data at startup.
func New(persist Persistence, opts Options) *Store {
	if opts.DefaultOwner == "" {
		opts.DefaultOwner = "You"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Store{persist: persist, opts: opts}
}

// Load reads the poll collection from the backend. A malformed document
// is an error; the store refuses to initialize over data it cannot parse.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLoaded(ctx)
}

func (s *Store) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	polls, err := s.persist.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load poll collection: %w", err)
	}
	s.polls = polls
	s.loaded = true
	s.opts.Logger.Info("poll collection loaded", zap.Int("polls", len(polls)))
	return nil
}

func (s *Store) save(ctx context.Context) error {
	if err := s.persist.Save(ctx, s.polls); err != nil {
		return fmt.Errorf("failed to persist poll collection: %w", err)
	}
	return nil
}

// missing resolves a not-found condition according to the configured mode.
func (s *Store) missing(err error, fields ...zap.Field) error {
	if s.opts.Strict {
		return err
	}
	s.opts.Logger.Debug("ignoring operation on missing target",
		append(fields, zap.String("reason", err.Error()))...)
	return nil
}

func (s *Store) findPoll(id string) *domain.Poll {
	for i := range s.polls {
		if s.polls[i].ID == id {
			return &s.polls[i]
		}
	}
	return nil
}

// List returns the full ordered poll collection. Callers filter by
// status themselves.
func (s *Store) List(ctx context.Context) ([]domain.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.Poll, len(s.polls))
	for i := range s.polls {
		out[i] = *clonePoll(&s.polls[i])
	}
	return out, nil
}

// Get returns the poll with the given id, or ErrPollNotFound. Legacy
// polls persisted without an owner get the default owner assigned and
// written back, so this read can have a side effect.
func (s *Store) Get(ctx context.Context, id string) (*domain.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	p := s.findPoll(id)
	if p == nil {
		return nil, ErrPollNotFound
	}
	if p.Owner == "" {
		p.Owner = s.opts.DefaultOwner
		if err := s.save(ctx); err != nil {
			return nil, err
		}
		s.opts.Logger.Info("backfilled poll owner",
			zap.String("poll_id", p.ID),
			zap.String("owner", p.Owner))
	}
	return clonePoll(p), nil
}

// Create synthesizes a new poll and appends it to the collection.
// Duplicate participant names collapse to one entry, preserving first
// occurrence order.
func (s *Store) Create(ctx context.Context, req *domain.CreatePollRequest) (*domain.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = domain.PollStatusActive
	}
	owner := req.Owner
	if owner == "" {
		owner = s.opts.DefaultOwner
	}

	participants := make([]domain.Participant, 0, len(req.Participants))
	seen := make(map[string]bool, len(req.Participants))
	for _, name := range req.Participants {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		participants = append(participants, domain.Participant{Name: name})
	}

	poll := domain.Poll{
		ID:           uuid.NewString(),
		Title:        req.Title,
		Type:         req.Type,
		Status:       status,
		CreatedAt:    time.Now().UTC(),
		Owner:        owner,
		Participants: participants,
		Candidates:   []domain.Business{},
		Votes:        map[string]int{},
	}

	s.polls = append(s.polls, poll)
	if err := s.save(ctx); err != nil {
		return nil, err
	}

	s.opts.Logger.Info("poll created",
		zap.String("poll_id", poll.ID),
		zap.String("title", poll.Title),
		zap.String("type", string(poll.Type)),
		zap.Int("participants", len(participants)))

	return clonePoll(&poll), nil
}

// AddCandidate appends a business to the poll's candidate list with its
// tally reset to zero. Adding the same candidate id twice is a no-op, as
// is adding to a missing poll in tolerant mode.
func (s *Store) AddCandidate(ctx context.Context, pollID string, business domain.Business) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	p := s.findPoll(pollID)
	if p == nil {
		return s.missing(ErrPollNotFound, zap.String("poll_id", pollID))
	}
	if p.FindCandidate(business.ID) != nil {
		return nil
	}

	business.Votes = 0
	p.Candidates = append(p.Candidates, business)
	if err := s.save(ctx); err != nil {
		return err
	}

	s.opts.Logger.Debug("candidate added",
		zap.String("poll_id", pollID),
		zap.String("candidate_id", business.ID),
		zap.String("name", business.Name))
	return nil
}

// CastVote records a like by the named participant. Only the first like
// per participant advances the tally; once the voted flag is set every
// further vote is ignored regardless of candidate. The Votes mapping is
// authoritative and the candidate's denormalized field is synced from it.
func (s *Store) CastVote(ctx context.Context, pollID, candidateID, participantName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	p := s.findPoll(pollID)
	if p == nil {
		return s.missing(ErrPollNotFound, zap.String("poll_id", pollID))
	}
	participant := p.FindParticipant(participantName)
	if participant == nil {
		return s.missing(ErrParticipantNotFound,
			zap.String("poll_id", pollID),
			zap.String("participant", participantName))
	}
	candidate := p.FindCandidate(candidateID)
	if candidate == nil && s.opts.Strict {
		return ErrCandidateNotFound
	}
	if participant.Voted {
		s.opts.Logger.Debug("duplicate vote ignored",
			zap.String("poll_id", pollID),
			zap.String("participant", participantName))
		return nil
	}

	participant.Voted = true
	if p.Votes == nil {
		p.Votes = map[string]int{}
	}
	p.Votes[candidateID]++
	if candidate != nil {
		candidate.Votes = p.Votes[candidateID]
	}

	if err := s.save(ctx); err != nil {
		return err
	}

	s.opts.Logger.Info("vote recorded",
		zap.String("poll_id", pollID),
		zap.String("candidate_id", candidateID),
		zap.String("participant", participantName),
		zap.Int("tally", p.Votes[candidateID]))
	return nil
}

// End completes the poll. Only the owner may end it.
func (s *Store) End(ctx context.Context, pollID, requestedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	p := s.findPoll(pollID)
	if p == nil {
		return s.missing(ErrPollNotFound, zap.String("poll_id", pollID))
	}
	if p.Owner != requestedBy {
		return ErrNotOwner
	}
	if p.Status == domain.PollStatusCompleted {
		return nil
	}

	p.Status = domain.PollStatusCompleted
	if err := s.save(ctx); err != nil {
		return err
	}

	s.opts.Logger.Info("poll completed", zap.String("poll_id", pollID))
	return nil
}

// SetParticipantLocation records the participant's last known coordinate.
func (s *Store) SetParticipantLocation(ctx context.Context, pollID, participantName string, loc domain.Coordinates) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	p := s.findPoll(pollID)
	if p == nil {
		return s.missing(ErrPollNotFound, zap.String("poll_id", pollID))
	}
	participant := p.FindParticipant(participantName)
	if participant == nil {
		return s.missing(ErrParticipantNotFound,
			zap.String("poll_id", pollID),
			zap.String("participant", participantName))
	}

	participant.Location = &domain.Coordinates{Latitude: loc.Latitude, Longitude: loc.Longitude}
	return s.save(ctx)
}

// GetParticipantLocation returns the stored coordinate, or nil when the
// participant has never reported one.
func (s *Store) GetParticipantLocation(ctx context.Context, pollID, participantName string) (*domain.Coordinates, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	p := s.findPoll(pollID)
	if p == nil {
		return nil, ErrPollNotFound
	}
	participant := p.FindParticipant(participantName)
	if participant == nil {
		return nil, ErrParticipantNotFound
	}
	if participant.Location == nil {
		return nil, nil
	}
	loc := *participant.Location
	return &loc, nil
}

// clonePoll returns a deep copy so callers cannot mutate store state
// behind the mutex.
func clonePoll(p *domain.Poll) *domain.Poll {
	out := *p
	out.Participants = make([]domain.Participant, len(p.Participants))
	for i, part := range p.Participants {
		out.Participants[i] = part
		if part.Location != nil {
			loc := *part.Location
			out.Participants[i].Location = &loc
		}
	}
	out.Candidates = make([]domain.Business, len(p.Candidates))
	for i, c := range p.Candidates {
		out.Candidates[i] = c
		if c.Coordinates != nil {
			coords := *c.Coordinates
			out.Candidates[i].Coordinates = &coords
		}
		if c.Tags != nil {
			out.Candidates[i].Tags = append([]string(nil), c.Tags...)
		}
	}
	out.Votes = make(map[string]int, len(p.Votes))
	for k, v := range p.Votes {
		out.Votes[k] = v
	}
	return &out
}
