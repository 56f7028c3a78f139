package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mariana/studydeck/internal/errors"
	"github.com/mariana/studydeck/internal/models"
	"github.com/mariana/studydeck/internal/services"
	"github.com/mariana/studydeck/internal/testutil/mocks"
)

func TestImportCSV_InsertsRows(t *testing.T) {
	decks := new(mocks.MockDeckRepository)
	cards := new(mocks.MockCardRepository)
	svc := services.NewImportService(decks, cards)

	decks.On("Get", mock.Anything, int64(1)).Return(&models.Deck{ID: 1, Name: "Biology"}, nil)
	cards.On("InsertBatch", mock.Anything, mock.MatchedBy(func(batch []models.Card) bool {
		return len(batch) == 2 &&
			batch[0].Front == "What is osmosis?" &&
			batch[1].Back == "Cell division"
	})).Return(2, nil)

	csv := "front,back\nWhat is osmosis?,Diffusion of water\nDefine mitosis,Cell division\n"
	inserted, err := svc.ImportCSV(context.Background(), 1, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)
	cards.AssertExpectations(t)
}

func TestImportCSV_NoHeaderStillWorks(t *testing.T) {
	decks := new(mocks.MockDeckRepository)
	cards := new(mocks.MockCardRepository)
	svc := services.NewImportService(decks, cards)

	decks.On("Get", mock.Anything, int64(1)).Return(&models.Deck{ID: 1}, nil)
	cards.On("InsertBatch", mock.Anything, mock.Anything).Return(1, nil)

	inserted, err := svc.ImportCSV(context.Background(), 1, strings.NewReader("q1,a1\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
}

func TestImportCSV_DeckNotFound(t *testing.T) {
	decks := new(mocks.MockDeckRepository)
	cards := new(mocks.MockCardRepository)
	svc := services.NewImportService(decks, cards)

	decks.On("Get", mock.Anything, int64(9)).Return(nil, nil)

	_, err := svc.ImportCSV(context.Background(), 9, strings.NewReader("q,a\n"))
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
}

func TestImportCSV_RejectsBlankFields(t *testing.T) {
	decks := new(mocks.MockDeckRepository)
	cards := new(mocks.MockCardRepository)
	svc := services.NewImportService(decks, cards)

	decks.On("Get", mock.Anything, int64(1)).Return(&models.Deck{ID: 1}, nil)

	_, err := svc.ImportCSV(context.Background(), 1, strings.NewReader("q1,a1\n ,a2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	cards.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
}

func TestImportCSV_RejectsMissingColumns(t *testing.T) {
	decks := new(mocks.MockDeckRepository)
	cards := new(mocks.MockCardRepository)
	svc := services.NewImportService(decks, cards)

	decks.On("Get", mock.Anything, int64(1)).Return(&models.Deck{ID: 1}, nil)

	_, err := svc.ImportCSV(context.Background(), 1, strings.NewReader("only-one-column\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "front,back")
}

func TestImportCSV_EmptyInput(t *testing.T) {
	decks := new(mocks.MockDeckRepository)
	cards := new(mocks.MockCardRepository)
	svc := services.NewImportService(decks, cards)

	decks.On("Get", mock.Anything, int64(1)).Return(&models.Deck{ID: 1}, nil)

	_, err := svc.ImportCSV(context.Background(), 1, strings.NewReader("front,back\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no cards")
}
