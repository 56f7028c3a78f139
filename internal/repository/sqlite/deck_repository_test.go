package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mariana/studydeck/internal/models"
	"github.com/mariana/studydeck/internal/repository/sqlite"
	"github.com/mariana/studydeck/internal/testutil"
)

func TestDeckRepository_InsertAndGet(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := sqlite.NewDeckRepository(database.DB)
	ctx := context.Background()

	id, err := repo.Insert(ctx, models.Deck{Name: "Biology", Subject: "science"})
	require.NoError(t, err)
	require.Positive(t, id)

	deck, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, deck)
	assert.Equal(t, "Biology", deck.Name)
	assert.Equal(t, "science", deck.Subject)
	assert.False(t, deck.CreatedAt.IsZero())
}

func TestDeckRepository_GetMissingReturnsNil(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := sqlite.NewDeckRepository(database.DB)

	deck, err := repo.Get(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, deck)
}

func TestDeckRepository_List(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := sqlite.NewDeckRepository(database.DB)
	ctx := context.Background()

	_, err := repo.Insert(ctx, models.Deck{Name: "Biology"})
	require.NoError(t, err)
	_, err = repo.Insert(ctx, models.Deck{Name: "History"})
	require.NoError(t, err)

	decks, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, decks, 2)
}

func TestDeckRepository_DeleteCascadesToCards(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := sqlite.NewDeckRepository(database.DB)
	ctx := context.Background()

	deckID := testutil.CreateTestDeck(t, database, "Biology")
	testutil.CreateTestCard(t, database, deckID, "q1", "a1")
	testutil.CreateTestCard(t, database, deckID, "q2", "a2")

	require.NoError(t, repo.Delete(ctx, deckID))

	deck, err := repo.Get(ctx, deckID)
	require.NoError(t, err)
	assert.Nil(t, deck)

	var count int
	err = database.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards WHERE deck_id = ?`, deckID).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "deleting a deck should remove its cards")
}
