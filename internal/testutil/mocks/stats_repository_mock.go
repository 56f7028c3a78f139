package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mariana/studydeck/internal/models"
)

// MockStatsRepository is a mock implementation of repository.StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) DeckStats(ctx context.Context, deckID int64) (*models.DeckStat, error) {
	args := m.Called(ctx, deckID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeckStat), args.Error(1)
}

func (m *MockStatsRepository) RatingBreakdown(ctx context.Context, deckID int64) ([]models.RatingStat, error) {
	args := m.Called(ctx, deckID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RatingStat), args.Error(1)
}

func (m *MockStatsRepository) RefreshDeckStats(ctx context.Context, deckID int64) error {
	args := m.Called(ctx, deckID)
	return args.Error(0)
}

func (m *MockStatsRepository) CachedDeckStats(ctx context.Context) ([]models.CachedDeckStat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CachedDeckStat), args.Error(1)
}
