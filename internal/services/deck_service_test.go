package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mariana/studydeck/internal/errors"
	"github.com/mariana/studydeck/internal/models"
	"github.com/mariana/studydeck/internal/services"
	"github.com/mariana/studydeck/internal/testutil/mocks"
)

func TestCreateDeck(t *testing.T) {
	decks := new(mocks.MockDeckRepository)
	cards := new(mocks.MockCardRepository)
	svc := services.NewDeckService(decks, cards)

	decks.On("Insert", mock.Anything, mock.MatchedBy(func(d models.Deck) bool {
		return d.Name == "Biology" && d.Subject == "science"
	})).Return(int64(1), nil)
	decks.On("Get", mock.Anything, int64(1)).Return(&models.Deck{ID: 1, Name: "Biology"}, nil)

	deck, err := svc.CreateDeck(context.Background(), "  Biology  ", " science ")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deck.ID)
	decks.AssertExpectations(t)
}

func TestCreateDeck_EmptyName(t *testing.T) {
	svc := services.NewDeckService(new(mocks.MockDeckRepository), new(mocks.MockCardRepository))

	_, err := svc.CreateDeck(context.Background(), "   ", "")
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
}

func TestGetDeck_NotFound(t *testing.T) {
	decks := new(mocks.MockDeckRepository)
	svc := services.NewDeckService(decks, new(mocks.MockCardRepository))

	decks.On("Get", mock.Anything, int64(5)).Return(nil, nil)

	_, err := svc.GetDeck(context.Background(), 5)
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
}

func TestAddCard(t *testing.T) {
	decks := new(mocks.MockDeckRepository)
	cards := new(mocks.MockCardRepository)
	svc := services.NewDeckService(decks, cards)

	decks.On("Get", mock.Anything, int64(1)).Return(&models.Deck{ID: 1}, nil)
	cards.On("Insert", mock.Anything, mock.MatchedBy(func(c models.Card) bool {
		return c.DeckID == 1 && c.Front == "q" && c.Back == "a" && c.EaseFactor == 2.5
	})).Return(int64(10), nil)
	cards.On("Get", mock.Anything, int64(10)).Return(&models.Card{ID: 10, Front: "q"}, nil)

	card, err := svc.AddCard(context.Background(), 1, " q ", " a ")
	require.NoError(t, err)
	assert.Equal(t, int64(10), card.ID)
}

func TestAddCard_EmptyFields(t *testing.T) {
	svc := services.NewDeckService(new(mocks.MockDeckRepository), new(mocks.MockCardRepository))

	_, err := svc.AddCard(context.Background(), 1, "", "a")
	require.Error(t, err)

	_, err = svc.AddCard(context.Background(), 1, "q", "   ")
	require.Error(t, err)
}

func TestBrowseCards_PartitionsByStatus(t *testing.T) {
	decks := new(mocks.MockDeckRepository)
	cards := new(mocks.MockCardRepository)
	svc := services.NewDeckService(decks, cards)

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(48 * time.Hour)
	deckCards := []models.Card{
		{ID: 1, Front: "q1", Back: "a1", Repetitions: 0, EaseFactor: 2.5},
		{ID: 2, Front: "q2", Back: "a2", Repetitions: 2, EaseFactor: 2.5, NextReviewAt: &past},
		{ID: 3, Front: "q3", Back: "a3", Repetitions: 4, EaseFactor: 2.8, NextReviewAt: &future},
		{ID: 4, Front: "q4", Back: "a4", Repetitions: 2, EaseFactor: 1.6, NextReviewAt: &future},
	}

	decks.On("Get", mock.Anything, int64(1)).Return(&models.Deck{ID: 1}, nil)
	cards.On("List", mock.Anything, mock.Anything).Return(deckCards, nil)

	parts, err := svc.BrowseCards(context.Background(), 1, "")
	require.NoError(t, err)

	assert.Equal(t, 4, parts.Total())
	assert.Len(t, parts.New, 1)
	assert.Len(t, parts.Due, 1)
	assert.Len(t, parts.Mastered, 1)
	assert.Len(t, parts.Difficult, 1)
}

func TestDeleteDeck_NotFound(t *testing.T) {
	decks := new(mocks.MockDeckRepository)
	svc := services.NewDeckService(decks, new(mocks.MockCardRepository))

	decks.On("Get", mock.Anything, int64(3)).Return(nil, nil)

	err := svc.DeleteDeck(context.Background(), 3)
	require.Error(t, err)
	decks.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
