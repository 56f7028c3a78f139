package services

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/mariana/studydeck/internal/errors"
	"github.com/mariana/studydeck/internal/logger"
	"github.com/mariana/studydeck/internal/models"
	"github.com/mariana/studydeck/internal/repository"
	"github.com/mariana/studydeck/internal/session"
	"github.com/mariana/studydeck/internal/srs"
	"github.com/mariana/studydeck/internal/worker"
)

// StartOptions select and order the cards a session is built from.
type StartOptions struct {
	Mode    srs.Mode
	Search  string
	Shuffle bool
	Limit   int
}

// StudyService runs interactive study sessions over a deck.
type StudyService interface {
	StartSession(ctx context.Context, deckID int64, opts StartOptions) (*session.Session, error)
	GetSession(ctx context.Context, id string) (*session.Session, error)
	Reveal(ctx context.Context, id string) (*session.Session, error)
	Rate(ctx context.Context, id string, rating srs.Rating) (*session.Session, error)
	Skip(ctx context.Context, id string) (*session.Session, error)
	Previous(ctx context.Context, id string) (*session.Session, error)
	EndSession(ctx context.Context, id string) (session.Stats, error)
}

type studyService struct {
	decks    repository.DeckRepository
	cards    repository.CardRepository
	reviews  repository.ReviewRepository
	registry *session.Registry
	jobQueue worker.JobQueue
	stats    repository.StatsRepository
	limit    int
}

// NewStudyService creates a new StudyService. cardLimit caps the number of
// cards a single session may hold.
func NewStudyService(
	decks repository.DeckRepository,
	cards repository.CardRepository,
	reviews repository.ReviewRepository,
	stats repository.StatsRepository,
	registry *session.Registry,
	jobQueue worker.JobQueue,
	cardLimit int,
) StudyService {
	if cardLimit <= 0 {
		cardLimit = 100
	}
	return &studyService{
		decks:    decks,
		cards:    cards,
		reviews:  reviews,
		stats:    stats,
		registry: registry,
		jobQueue: jobQueue,
		limit:    cardLimit,
	}
}

// StartSession builds the study list for the deck and registers a fresh
// session over it. An empty selection still yields a session; it starts in
// the complete state.
func (s *studyService) StartSession(ctx context.Context, deckID int64, opts StartOptions) (*session.Session, error) {
	log := logger.FromContext(ctx)

	mode := opts.Mode
	if mode == "" {
		mode = srs.ModeDue
	}
	if !mode.Valid() {
		return nil, errors.NewValidationError("mode", fmt.Sprintf("unknown study mode %q", opts.Mode))
	}

	deck, err := s.decks.Get(ctx, deckID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", deckID)
	}

	limit := opts.Limit
	if limit <= 0 || limit > s.limit {
		limit = s.limit
	}

	// rand.Rand is not safe for concurrent use, so each start gets its own.
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var picked []models.Card
	if mode == srs.ModeDue && opts.Search == "" {
		// Plain due sessions fetch the capped, ordered due set straight
		// from storage instead of classifying the whole deck.
		picked, err = s.cards.DueCards(ctx, deckID, limit, time.Now())
		if err != nil {
			log.Error("failed to load due cards for session: %v", err)
			return nil, errors.NewInternalError(err)
		}
		if opts.Shuffle {
			picked = srs.Shuffle(picked, rng)
		}
	} else {
		all, err := s.cards.List(ctx, models.CardFilter{DeckID: deckID})
		if err != nil {
			log.Error("failed to load cards for session: %v", err)
			return nil, errors.NewInternalError(err)
		}
		picked = srs.Select(all, mode, opts.Search, opts.Shuffle, time.Now(), rng)
		if len(picked) > limit {
			picked = picked[:limit]
		}
	}

	sess := session.New(uuid.NewString(), deckID, mode, picked, &reviewStore{
		cards:   s.cards,
		reviews: s.reviews,
	})
	s.registry.Add(sess)

	log.Info("session started: id=%s, deck_id=%d, mode=%s, cards=%d",
		sess.ID, deckID, mode, len(picked))
	return sess, nil
}

func (s *studyService) GetSession(ctx context.Context, id string) (*session.Session, error) {
	sess, ok := s.registry.Get(id)
	if !ok {
		return nil, errors.NewNotFoundError("session", id)
	}
	return sess, nil
}

func (s *studyService) Reveal(ctx context.Context, id string) (*session.Session, error) {
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sess.Reveal(); err != nil {
		return nil, mapSessionErr(err)
	}
	return sess, nil
}

// Rate applies a quality rating to the session's current card. When the
// rating completes the session, a stats refresh for the deck is queued.
func (s *studyService) Rate(ctx context.Context, id string, rating srs.Rating) (*session.Session, error) {
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rating.Valid() {
		return nil, errors.NewValidationError("rating", "must be between 1 (again) and 4 (easy)")
	}

	if _, err := sess.Rate(ctx, rating); err != nil {
		return nil, mapSessionErr(err)
	}

	if sess.State() == session.StateComplete {
		s.onComplete(ctx, sess)
	}
	return sess, nil
}

func (s *studyService) Skip(ctx context.Context, id string) (*session.Session, error) {
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sess.Skip(); err != nil {
		return nil, mapSessionErr(err)
	}
	if sess.State() == session.StateComplete {
		s.onComplete(ctx, sess)
	}
	return sess, nil
}

func (s *studyService) Previous(ctx context.Context, id string) (*session.Session, error) {
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sess.Previous(); err != nil {
		return nil, mapSessionErr(err)
	}
	return sess, nil
}

// EndSession discards the session and returns its final counters. Ratings
// already persisted stay persisted.
func (s *studyService) EndSession(ctx context.Context, id string) (session.Stats, error) {
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return session.Stats{}, err
	}
	stats := sess.Stats()
	s.registry.Remove(id)
	if stats.Reviewed > 0 {
		s.enqueueRefresh(ctx, sess.DeckID)
	}
	logger.FromContext(ctx).Info("session ended: id=%s, reviewed=%d, skipped=%d",
		id, stats.Reviewed, stats.Skipped)
	return stats, nil
}

func (s *studyService) onComplete(ctx context.Context, sess *session.Session) {
	logger.FromContext(ctx).Info("session complete: id=%s, deck_id=%d, reviewed=%d",
		sess.ID, sess.DeckID, sess.Stats().Reviewed)
	s.enqueueRefresh(ctx, sess.DeckID)
}

func (s *studyService) enqueueRefresh(ctx context.Context, deckID int64) {
	job := &worker.RefreshStatsJob{StatsRepo: s.stats, DeckID: deckID}
	if !s.jobQueue.TrySubmit(job) {
		logger.FromContext(ctx).Warn("stats refresh skipped, job queue full: deck_id=%d", deckID)
	}
}

func mapSessionErr(err error) error {
	switch err {
	case session.ErrSessionComplete, session.ErrAlreadyRevealed,
		session.ErrNotRevealed, session.ErrAtFirstCard:
		return errors.NewConflictError(err.Error())
	case srs.ErrInvalidRating:
		return errors.NewValidationError("rating", err.Error())
	}
	return errors.NewInternalError(err)
}

// reviewStore writes a rated card back to storage. The scheduling update is
// the transaction that matters; a failed history insert is logged and
// swallowed so the session can move on.
type reviewStore struct {
	cards   repository.CardRepository
	reviews repository.ReviewRepository
}

func (rs *reviewStore) PersistReview(ctx context.Context, card models.Card, rating srs.Rating, timeSeconds float64) error {
	log := logger.FromContext(ctx)

	if err := rs.cards.UpdateScheduling(ctx, card); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("card %d no longer exists", card.ID)
		}
		return err
	}
	if err := rs.reviews.Insert(ctx, card.ID, int(rating), timeSeconds); err != nil {
		log.Warn("failed to record review history for card %d: %v", card.ID, err)
	}
	return nil
}
