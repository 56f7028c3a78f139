package srs

import (
	"math/rand"
	"time"

	"github.com/mariana/studydeck/internal/models"
)

// Mode chooses which cards a study session draws from.
type Mode string

const (
	ModeDue       Mode = "due"
	ModeAll       Mode = "all"
	ModeNew       Mode = "new"
	ModeDifficult Mode = "difficult"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeDue, ModeAll, ModeNew, ModeDifficult:
		return true
	}
	return false
}

// Select composes the study list for a session: filter by search text,
// restrict to the mode's bucket, then optionally shuffle. The shuffle happens
// once here, so the resulting order is stable for the session's lifetime.
func Select(cards []models.Card, mode Mode, search string, shuffle bool, now time.Time, rng *rand.Rand) []models.Card {
	filtered := Filter(cards, search)

	var picked []models.Card
	switch mode {
	case ModeDue:
		parts := Partition(filtered, now)
		picked = parts.Due
	case ModeNew:
		parts := Partition(filtered, now)
		picked = parts.New
	case ModeDifficult:
		parts := Partition(filtered, now)
		picked = parts.Difficult
	default:
		picked = filtered
	}

	if shuffle && rng != nil {
		picked = Shuffle(picked, rng)
	}
	return picked
}
