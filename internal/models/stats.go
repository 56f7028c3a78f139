package models

import "time"

// DeckStat aggregates scheduling and review history for one deck.
type DeckStat struct {
	TotalCards      int     `json:"total_cards"`
	TotalReviews    int     `json:"total_reviews"`
	CardsNew        int     `json:"cards_new"`
	CardsDue        int     `json:"cards_due"`
	CardsMastered   int     `json:"cards_mastered"`
	CardsStruggling int     `json:"cards_struggling"`
	OverallAccuracy float64 `json:"overall_accuracy"`
	AvgEaseFactor   float64 `json:"avg_ease_factor"`
	AvgIntervalDays float64 `json:"avg_interval_days"`
}

// RatingStat breaks review history down by rating value.
type RatingStat struct {
	Rating         int     `json:"rating"`
	TotalReviews   int     `json:"total_reviews"`
	AvgTimeSeconds float64 `json:"avg_time_seconds"`
}

// CachedDeckStat is one row of the deck stats cache, rebuilt by a
// background job after imports and finished study sessions.
type CachedDeckStat struct {
	DeckID          int64     `json:"deck_id"`
	DeckName        string    `json:"deck_name"`
	TotalCards      int       `json:"total_cards"`
	TotalReviews    int       `json:"total_reviews"`
	CardsDue        int       `json:"cards_due"`
	CardsMastered   int       `json:"cards_mastered"`
	CardsStruggling int       `json:"cards_struggling"`
	OverallAccuracy float64   `json:"overall_accuracy"`
	AvgEaseFactor   float64   `json:"avg_ease_factor"`
	RefreshedAt     time.Time `json:"refreshed_at"`
}
