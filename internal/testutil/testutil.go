package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mariana/studydeck/internal/db"
)

// NewTestDB creates an in-memory SQLite database with all migrations
// applied. It is closed automatically when the test finishes.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

// CreateTestDeck inserts a deck directly and returns its ID.
func CreateTestDeck(t *testing.T, database *db.DB, name string) int64 {
	t.Helper()

	res, err := database.ExecContext(context.Background(),
		`INSERT INTO decks (name, subject) VALUES (?, ?)`, name, "testing")
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// CreateTestCard inserts a card with default scheduling state and returns
// its ID.
func CreateTestCard(t *testing.T, database *db.DB, deckID int64, front, back string) int64 {
	t.Helper()

	res, err := database.ExecContext(context.Background(),
		`INSERT INTO cards (deck_id, front, back) VALUES (?, ?, ?)`, deckID, front, back)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}
