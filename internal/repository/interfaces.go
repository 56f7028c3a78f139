package repository

import (
	"context"
	"time"

	"github.com/mariana/studydeck/internal/models"
)

// DeckRepository handles deck data access
type DeckRepository interface {
	Insert(ctx context.Context, deck models.Deck) (int64, error)
	Get(ctx context.Context, id int64) (*models.Deck, error)
	List(ctx context.Context) ([]models.Deck, error)
	Delete(ctx context.Context, id int64) error
}

// CardRepository handles card data access
type CardRepository interface {
	Insert(ctx context.Context, card models.Card) (int64, error)
	InsertBatch(ctx context.Context, cards []models.Card) (int, error)
	Get(ctx context.Context, id int64) (*models.Card, error)
	List(ctx context.Context, filter models.CardFilter) ([]models.Card, error)
	DueCards(ctx context.Context, deckID int64, limit int, now time.Time) ([]models.Card, error)
	UpdateScheduling(ctx context.Context, card models.Card) error
	Delete(ctx context.Context, id int64) error
}

// ReviewRepository handles review history data access
type ReviewRepository interface {
	Insert(ctx context.Context, cardID int64, rating int, timeSeconds float64) error
	RecentForCard(ctx context.Context, cardID int64, limit int) ([]models.ReviewEvent, error)
}

// StatsRepository handles statistics data access
type StatsRepository interface {
	DeckStats(ctx context.Context, deckID int64) (*models.DeckStat, error)
	RatingBreakdown(ctx context.Context, deckID int64) ([]models.RatingStat, error)
	RefreshDeckStats(ctx context.Context, deckID int64) error
	CachedDeckStats(ctx context.Context) ([]models.CachedDeckStat, error)
}
