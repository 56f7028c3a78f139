package models

import "time"

// ReviewEvent records a single answered review.
type ReviewEvent struct {
	ID          int64     `json:"id"`
	CardID      int64     `json:"card_id"`
	Rating      int       `json:"rating"`
	TimeSeconds float64   `json:"time_seconds"`
	ReviewedAt  time.Time `json:"reviewed_at"`
}
