package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mariana/studydeck/internal/logger"
	"github.com/mariana/studydeck/internal/models"
	"github.com/mariana/studydeck/internal/srs"
)

// State is the orchestrator's position in the reveal/rate cycle.
type State string

const (
	// StateAwaitingReveal: question shown, answer hidden.
	StateAwaitingReveal State = "awaiting_reveal"
	// StateAwaitingRating: answer revealed, waiting for a quality rating.
	StateAwaitingRating State = "awaiting_rating"
	// StateComplete: no cards left to present.
	StateComplete State = "complete"
)

var (
	ErrSessionComplete = errors.New("session is complete")
	ErrAlreadyRevealed = errors.New("answer already revealed")
	ErrNotRevealed     = errors.New("answer not revealed yet")
	ErrAtFirstCard     = errors.New("already at the first card")
)

// ReviewStore persists the outcome of a rated card. Implementations must be
// atomic from the session's point of view: on error, nothing observable
// changed and the same rating may be retried.
type ReviewStore interface {
	PersistReview(ctx context.Context, card models.Card, rating srs.Rating, timeSeconds float64) error
}

// Stats are the per-rating counters of one session.
type Stats struct {
	Again    int `json:"again"`
	Hard     int `json:"hard"`
	Good     int `json:"good"`
	Easy     int `json:"easy"`
	Skipped  int `json:"skipped"`
	Reviewed int `json:"reviewed"`
}

func (s *Stats) bump(rating srs.Rating) {
	switch rating {
	case srs.Again:
		s.Again++
	case srs.Hard:
		s.Hard++
	case srs.Good:
		s.Good++
	case srs.Easy:
		s.Easy++
	}
	s.Reviewed++
}

// Session drives one sequence of card presentations. All operations are
// serialized on an internal mutex, so a rating whose persistence call is
// still outstanding blocks any further transitions for the same session.
type Session struct {
	ID     string
	DeckID int64
	Mode   srs.Mode

	mu         sync.Mutex
	cards      []models.Card
	idx        int
	state      State
	stats      Stats
	params     srs.Params
	store      ReviewStore
	now        func() time.Time
	shownAt    time.Time
	lastActive time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithParams overrides the scheduling constants.
func WithParams(p srs.Params) Option {
	return func(s *Session) { s.params = p }
}

// New creates a session over the given card list. An empty list yields a
// session that is already complete; starting one is a valid no-op.
func New(id string, deckID int64, mode srs.Mode, cards []models.Card, store ReviewStore, opts ...Option) *Session {
	s := &Session{
		ID:     id,
		DeckID: deckID,
		Mode:   mode,
		cards:  cards,
		state:  StateAwaitingReveal,
		params: srs.DefaultParams(),
		store:  store,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(cards) == 0 {
		s.state = StateComplete
	}
	s.shownAt = s.now()
	s.lastActive = s.now()
	return s
}

// State returns the current machine state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the card being presented and its position. ok is false
// once the session is complete.
func (s *Session) Current() (card models.Card, index int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateComplete {
		return models.Card{}, s.idx, false
	}
	return s.cards[s.idx], s.idx, true
}

// Len returns the number of cards in the session.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cards)
}

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// LastActive reports the time of the most recent operation, for idle expiry.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Reveal shows the current card's answer.
func (s *Session) Reveal() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = s.now()

	switch s.state {
	case StateComplete:
		return ErrSessionComplete
	case StateAwaitingRating:
		return ErrAlreadyRevealed
	}
	s.state = StateAwaitingRating
	return nil
}

// Rate applies the quality rating to the current card, persists the result,
// and advances to the next card. If persistence fails the session does not
// advance: state, index, and counters are untouched and the same rating can
// be retried.
func (s *Session) Rate(ctx context.Context, rating srs.Rating) (models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = s.now()

	switch s.state {
	case StateComplete:
		return models.Card{}, ErrSessionComplete
	case StateAwaitingReveal:
		return models.Card{}, ErrNotRevealed
	}

	now := s.now()
	updated, err := s.params.Review(s.cards[s.idx], rating, now)
	if err != nil {
		return models.Card{}, err
	}

	timeSpent := now.Sub(s.shownAt).Seconds()
	if err := s.store.PersistReview(ctx, updated, rating, timeSpent); err != nil {
		logger.FromContext(ctx).Warn("review not persisted, holding session position: card_id=%d: %v", updated.ID, err)
		return models.Card{}, fmt.Errorf("persist review for card %d: %w", updated.ID, err)
	}

	s.cards[s.idx] = updated
	s.stats.bump(rating)
	s.advance()
	return updated, nil
}

// Skip advances past the current card without touching its state. Only
// permitted while the answer is still hidden.
func (s *Session) Skip() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = s.now()

	switch s.state {
	case StateComplete:
		return ErrSessionComplete
	case StateAwaitingRating:
		return ErrAlreadyRevealed
	}
	s.stats.Skipped++
	s.advance()
	return nil
}

// Previous steps back one card without evaluation. Only permitted while the
// answer is still hidden and the session is not at its first card.
func (s *Session) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = s.now()

	switch s.state {
	case StateComplete:
		return ErrSessionComplete
	case StateAwaitingRating:
		return ErrAlreadyRevealed
	}
	if s.idx == 0 {
		return ErrAtFirstCard
	}
	s.idx--
	s.shownAt = s.now()
	return nil
}

func (s *Session) advance() {
	s.idx++
	if s.idx >= len(s.cards) {
		s.state = StateComplete
		return
	}
	s.state = StateAwaitingReveal
	s.shownAt = s.now()
}
