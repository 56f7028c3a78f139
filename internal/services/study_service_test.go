package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mariana/studydeck/internal/errors"
	"github.com/mariana/studydeck/internal/models"
	"github.com/mariana/studydeck/internal/services"
	"github.com/mariana/studydeck/internal/session"
	"github.com/mariana/studydeck/internal/srs"
	"github.com/mariana/studydeck/internal/testutil/mocks"
)

type studyFixture struct {
	decks    *mocks.MockDeckRepository
	cards    *mocks.MockCardRepository
	reviews  *mocks.MockReviewRepository
	stats    *mocks.MockStatsRepository
	queue    *mocks.MockJobQueue
	registry *session.Registry
	svc      services.StudyService
}

func newStudyFixture(t *testing.T) *studyFixture {
	t.Helper()
	f := &studyFixture{
		decks:    new(mocks.MockDeckRepository),
		cards:    new(mocks.MockCardRepository),
		reviews:  new(mocks.MockReviewRepository),
		stats:    new(mocks.MockStatsRepository),
		queue:    new(mocks.MockJobQueue),
		registry: session.NewRegistry(time.Minute),
	}
	f.svc = services.NewStudyService(f.decks, f.cards, f.reviews, f.stats, f.registry, f.queue, 100)
	return f
}

func deckCards(n int) []models.Card {
	cards := make([]models.Card, n)
	for i := range cards {
		cards[i] = models.Card{ID: int64(i + 1), DeckID: 1, Front: "q", Back: "a", EaseFactor: 2.5}
	}
	return cards
}

func TestStartSession_RegistersSession(t *testing.T) {
	f := newStudyFixture(t)
	f.decks.On("Get", mock.Anything, int64(1)).Return(&models.Deck{ID: 1, Name: "Biology"}, nil)
	f.cards.On("List", mock.Anything, mock.Anything).Return(deckCards(3), nil)

	sess, err := f.svc.StartSession(context.Background(), 1, services.StartOptions{Mode: srs.ModeAll})
	require.NoError(t, err)
	require.NotNil(t, sess)

	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, 3, sess.Len())
	assert.Equal(t, 1, f.registry.Len())
	assert.Equal(t, session.StateAwaitingReveal, sess.State())
}

func TestStartSession_EmptySelectionIsComplete(t *testing.T) {
	f := newStudyFixture(t)
	f.decks.On("Get", mock.Anything, int64(1)).Return(&models.Deck{ID: 1}, nil)
	f.cards.On("DueCards", mock.Anything, int64(1), 100, mock.Anything).Return([]models.Card{}, nil)

	sess, err := f.svc.StartSession(context.Background(), 1, services.StartOptions{Mode: srs.ModeDue})
	require.NoError(t, err)
	assert.Equal(t, session.StateComplete, sess.State())
	f.cards.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestStartSession_DueModeUsesStoredDueSet(t *testing.T) {
	f := newStudyFixture(t)
	f.decks.On("Get", mock.Anything, int64(1)).Return(&models.Deck{ID: 1}, nil)
	f.cards.On("DueCards", mock.Anything, int64(1), 5, mock.Anything).Return(deckCards(2), nil)

	sess, err := f.svc.StartSession(context.Background(), 1, services.StartOptions{Mode: srs.ModeDue, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, sess.Len())
}

func TestStartSession_ConcurrentShuffledStarts(t *testing.T) {
	f := newStudyFixture(t)
	f.decks.On("Get", mock.Anything, int64(1)).Return(&models.Deck{ID: 1}, nil)
	f.cards.On("List", mock.Anything, mock.Anything).Return(deckCards(20), nil)

	const goroutines = 8
	const perGoroutine = 10

	var wg sync.WaitGroup
	errs := make(chan error, goroutines*perGoroutine)
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				_, err := f.svc.StartSession(context.Background(), 1, services.StartOptions{Mode: srs.ModeAll, Shuffle: true})
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, goroutines*perGoroutine, f.registry.Len())
}

func TestStartSession_InvalidMode(t *testing.T) {
	f := newStudyFixture(t)

	_, err := f.svc.StartSession(context.Background(), 1, services.StartOptions{Mode: "cramming"})
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
}

func TestStartSession_DeckNotFound(t *testing.T) {
	f := newStudyFixture(t)
	f.decks.On("Get", mock.Anything, int64(7)).Return(nil, nil)

	_, err := f.svc.StartSession(context.Background(), 7, services.StartOptions{Mode: srs.ModeAll})
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
}

func TestStartSession_AppliesCardLimit(t *testing.T) {
	f := newStudyFixture(t)
	f.decks.On("Get", mock.Anything, int64(1)).Return(&models.Deck{ID: 1}, nil)
	f.cards.On("List", mock.Anything, mock.Anything).Return(deckCards(50), nil)

	sess, err := f.svc.StartSession(context.Background(), 1, services.StartOptions{Mode: srs.ModeAll, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, sess.Len())
}

func TestRate_PersistsAndAdvances(t *testing.T) {
	f := newStudyFixture(t)
	f.decks.On("Get", mock.Anything, int64(1)).Return(&models.Deck{ID: 1}, nil)
	f.cards.On("List", mock.Anything, mock.Anything).Return(deckCards(2), nil)
	f.cards.On("UpdateScheduling", mock.Anything, mock.Anything).Return(nil)
	f.reviews.On("Insert", mock.Anything, int64(1), 3, mock.Anything).Return(nil)

	sess, err := f.svc.StartSession(context.Background(), 1, services.StartOptions{Mode: srs.ModeAll})
	require.NoError(t, err)

	_, err = f.svc.Reveal(context.Background(), sess.ID)
	require.NoError(t, err)
	_, err = f.svc.Rate(context.Background(), sess.ID, srs.Good)
	require.NoError(t, err)

	f.cards.AssertCalled(t, "UpdateScheduling", mock.Anything, mock.Anything)
	assert.Equal(t, 1, sess.Stats().Good)
}

func TestRate_CompletionQueuesStatsRefresh(t *testing.T) {
	f := newStudyFixture(t)
	f.decks.On("Get", mock.Anything, int64(1)).Return(&models.Deck{ID: 1}, nil)
	f.cards.On("List", mock.Anything, mock.Anything).Return(deckCards(1), nil)
	f.cards.On("UpdateScheduling", mock.Anything, mock.Anything).Return(nil)
	f.reviews.On("Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.queue.On("TrySubmit", mock.Anything).Return(true)

	sess, err := f.svc.StartSession(context.Background(), 1, services.StartOptions{Mode: srs.ModeAll})
	require.NoError(t, err)

	_, err = f.svc.Reveal(context.Background(), sess.ID)
	require.NoError(t, err)
	_, err = f.svc.Rate(context.Background(), sess.ID, srs.Good)
	require.NoError(t, err)

	assert.Equal(t, session.StateComplete, sess.State())
	f.queue.AssertCalled(t, "TrySubmit", mock.Anything)
}

func TestRate_StorageFailureKeepsSessionRetryable(t *testing.T) {
	f := newStudyFixture(t)
	f.decks.On("Get", mock.Anything, int64(1)).Return(&models.Deck{ID: 1}, nil)
	f.cards.On("List", mock.Anything, mock.Anything).Return(deckCards(1), nil)
	f.cards.On("UpdateScheduling", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()
	f.cards.On("UpdateScheduling", mock.Anything, mock.Anything).Return(nil)
	f.reviews.On("Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.queue.On("TrySubmit", mock.Anything).Return(true)

	sess, err := f.svc.StartSession(context.Background(), 1, services.StartOptions{Mode: srs.ModeAll})
	require.NoError(t, err)

	_, err = f.svc.Reveal(context.Background(), sess.ID)
	require.NoError(t, err)

	_, err = f.svc.Rate(context.Background(), sess.ID, srs.Good)
	require.Error(t, err, "first attempt fails on storage")
	assert.Equal(t, session.StateAwaitingRating, sess.State())

	_, err = f.svc.Rate(context.Background(), sess.ID, srs.Good)
	require.NoError(t, err, "retry succeeds")
	assert.Equal(t, session.StateComplete, sess.State())
}

func TestRate_HistoryFailureDoesNotBlockSession(t *testing.T) {
	f := newStudyFixture(t)
	f.decks.On("Get", mock.Anything, int64(1)).Return(&models.Deck{ID: 1}, nil)
	f.cards.On("List", mock.Anything, mock.Anything).Return(deckCards(1), nil)
	f.cards.On("UpdateScheduling", mock.Anything, mock.Anything).Return(nil)
	f.reviews.On("Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("history table locked"))
	f.queue.On("TrySubmit", mock.Anything).Return(true)

	sess, err := f.svc.StartSession(context.Background(), 1, services.StartOptions{Mode: srs.ModeAll})
	require.NoError(t, err)

	_, err = f.svc.Reveal(context.Background(), sess.ID)
	require.NoError(t, err)
	_, err = f.svc.Rate(context.Background(), sess.ID, srs.Good)
	require.NoError(t, err, "scheduling write succeeded, session moves on")
	assert.Equal(t, session.StateComplete, sess.State())
}

func TestRate_InvalidRating(t *testing.T) {
	f := newStudyFixture(t)
	f.decks.On("Get", mock.Anything, int64(1)).Return(&models.Deck{ID: 1}, nil)
	f.cards.On("List", mock.Anything, mock.Anything).Return(deckCards(1), nil)

	sess, err := f.svc.StartSession(context.Background(), 1, services.StartOptions{Mode: srs.ModeAll})
	require.NoError(t, err)

	_, err = f.svc.Rate(context.Background(), sess.ID, srs.Rating(7))
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
}

func TestGetSession_Unknown(t *testing.T) {
	f := newStudyFixture(t)

	_, err := f.svc.GetSession(context.Background(), "nope")
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
}

func TestEndSession_RemovesAndReportsStats(t *testing.T) {
	f := newStudyFixture(t)
	f.decks.On("Get", mock.Anything, int64(1)).Return(&models.Deck{ID: 1}, nil)
	f.cards.On("List", mock.Anything, mock.Anything).Return(deckCards(3), nil)

	sess, err := f.svc.StartSession(context.Background(), 1, services.StartOptions{Mode: srs.ModeAll})
	require.NoError(t, err)

	require.NoError(t, sess.Skip())

	stats, err := f.svc.EndSession(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 0, f.registry.Len())

	_, err = f.svc.GetSession(context.Background(), sess.ID)
	assert.Error(t, err, "session is gone after ending")
}
