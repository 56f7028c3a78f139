package srs

import (
	"math/rand"
	"strings"
	"time"

	"github.com/mariana/studydeck/internal/models"
)

// Status is a card's derived study state. It is never stored; it is a pure
// function of the scheduling fields and the current time.
type Status string

const (
	StatusNew       Status = "new"
	StatusDifficult Status = "difficult"
	StatusDue       Status = "due"
	StatusMastered  Status = "mastered"
	StatusLearning  Status = "learning"
)

// Classification thresholds.
const (
	difficultEaseBelow = 2.0
	masteredMinEase    = 2.5
	masteredMinReps    = 3
)

// Classify derives a card's status. A card can satisfy several predicates at
// once, so the checks run in a fixed precedence order: new, difficult, due,
// mastered, learning.
func Classify(card models.Card, now time.Time) Status {
	switch {
	case card.Repetitions == 0:
		return StatusNew
	case card.EaseFactor < difficultEaseBelow:
		return StatusDifficult
	case card.NextReviewAt != nil && !card.NextReviewAt.After(now):
		return StatusDue
	case card.Repetitions >= masteredMinReps && card.EaseFactor >= masteredMinEase:
		return StatusMastered
	default:
		return StatusLearning
	}
}

// Partitions holds the five disjoint status buckets of a card set.
type Partitions struct {
	New       []models.Card `json:"new"`
	Due       []models.Card `json:"due"`
	Learning  []models.Card `json:"learning"`
	Difficult []models.Card `json:"difficult"`
	Mastered  []models.Card `json:"mastered"`
}

// Total returns the number of cards across all buckets.
func (p Partitions) Total() int {
	return len(p.New) + len(p.Due) + len(p.Learning) + len(p.Difficult) + len(p.Mastered)
}

// Partition classifies every card; each card lands in exactly one bucket.
// The input slice is not modified.
func Partition(cards []models.Card, now time.Time) Partitions {
	var out Partitions
	for _, c := range cards {
		switch Classify(c, now) {
		case StatusNew:
			out.New = append(out.New, c)
		case StatusDifficult:
			out.Difficult = append(out.Difficult, c)
		case StatusDue:
			out.Due = append(out.Due, c)
		case StatusMastered:
			out.Mastered = append(out.Mastered, c)
		default:
			out.Learning = append(out.Learning, c)
		}
	}
	return out
}

// Filter returns the cards whose front or back contains the search text,
// case-insensitively. An empty search returns a copy of the input.
func Filter(cards []models.Card, search string) []models.Card {
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]models.Card, 0, len(cards))
	for _, c := range cards {
		if search == "" ||
			strings.Contains(strings.ToLower(c.Front), search) ||
			strings.Contains(strings.ToLower(c.Back), search) {
			out = append(out, c)
		}
	}
	return out
}

// Shuffle returns a shuffled copy of the cards using the given source.
func Shuffle(cards []models.Card, rng *rand.Rand) []models.Card {
	out := make([]models.Card, len(cards))
	copy(out, cards)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
