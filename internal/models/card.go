package models

import "time"

// Card is a question/answer pair with its scheduling state.
// Repetitions counts consecutive successful reviews since the last lapse.
// NextReviewAt is nil until the card has been reviewed once.
type Card struct {
	ID           int64      `json:"id"`
	DeckID       int64      `json:"deck_id"`
	Front        string     `json:"front"`
	Back         string     `json:"back"`
	Repetitions  int        `json:"repetitions"`
	EaseFactor   float64    `json:"ease_factor"`
	IntervalDays int        `json:"interval_days"`
	NextReviewAt *time.Time `json:"next_review_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// CardFilter narrows card listings.
type CardFilter struct {
	DeckID   int64
	Search   string
	OrderBy  string
	OrderDir string
	Limit    int
	Offset   int
}
