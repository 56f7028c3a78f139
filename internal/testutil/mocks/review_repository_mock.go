package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mariana/studydeck/internal/models"
)

// MockReviewRepository is a mock implementation of repository.ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Insert(ctx context.Context, cardID int64, rating int, timeSeconds float64) error {
	args := m.Called(ctx, cardID, rating, timeSeconds)
	return args.Error(0)
}

func (m *MockReviewRepository) RecentForCard(ctx context.Context, cardID int64, limit int) ([]models.ReviewEvent, error) {
	args := m.Called(ctx, cardID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewEvent), args.Error(1)
}
