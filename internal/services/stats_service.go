package services

import (
	"context"

	"github.com/mariana/studydeck/internal/errors"
	"github.com/mariana/studydeck/internal/logger"
	"github.com/mariana/studydeck/internal/models"
	"github.com/mariana/studydeck/internal/repository"
)

// DeckStatsReport is the full live picture for one deck.
type DeckStatsReport struct {
	Deck    models.Deck        `json:"deck"`
	Stats   models.DeckStat    `json:"stats"`
	Ratings []models.RatingStat `json:"ratings"`
}

// StatsService aggregates review history into progress reports.
type StatsService interface {
	DeckReport(ctx context.Context, deckID int64) (*DeckStatsReport, error)
	Overview(ctx context.Context) ([]models.CachedDeckStat, error)
	CardHistory(ctx context.Context, cardID int64, limit int) ([]models.ReviewEvent, error)
}

type statsService struct {
	decks   repository.DeckRepository
	cards   repository.CardRepository
	reviews repository.ReviewRepository
	stats   repository.StatsRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(
	decks repository.DeckRepository,
	cards repository.CardRepository,
	reviews repository.ReviewRepository,
	stats repository.StatsRepository,
) StatsService {
	return &statsService{decks: decks, cards: cards, reviews: reviews, stats: stats}
}

// DeckReport computes live aggregates and the per-rating breakdown for one
// deck. This bypasses the cache; the overview endpoint serves cached rows.
func (s *statsService) DeckReport(ctx context.Context, deckID int64) (*DeckStatsReport, error) {
	log := logger.FromContext(ctx)

	deck, err := s.decks.Get(ctx, deckID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", deckID)
	}

	stat, err := s.stats.DeckStats(ctx, deckID)
	if err != nil {
		log.Error("failed to compute deck stats: %v", err)
		return nil, errors.NewInternalError(err)
	}
	ratings, err := s.stats.RatingBreakdown(ctx, deckID)
	if err != nil {
		log.Error("failed to compute rating breakdown: %v", err)
		return nil, errors.NewInternalError(err)
	}

	return &DeckStatsReport{Deck: *deck, Stats: *stat, Ratings: ratings}, nil
}

// Overview returns the cached per-deck rows rebuilt by background refresh
// jobs. Decks with no cached row yet are simply absent.
func (s *statsService) Overview(ctx context.Context) ([]models.CachedDeckStat, error) {
	cached, err := s.stats.CachedDeckStats(ctx)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	return cached, nil
}

func (s *statsService) CardHistory(ctx context.Context, cardID int64, limit int) ([]models.ReviewEvent, error) {
	card, err := s.cards.Get(ctx, cardID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if card == nil {
		return nil, errors.NewNotFoundError("card", cardID)
	}
	events, err := s.reviews.RecentForCard(ctx, cardID, limit)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	return events, nil
}
