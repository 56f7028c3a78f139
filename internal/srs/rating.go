package srs

import "errors"

// ErrInvalidRating is returned when a rating is outside 1..4.
var ErrInvalidRating = errors.New("rating must be between 1 (again) and 4 (easy)")

// Rating is the user's self-assessed recall difficulty for one review.
type Rating int

const (
	Again Rating = 1
	Hard  Rating = 2
	Good  Rating = 3
	Easy  Rating = 4
)

func (r Rating) Valid() bool {
	return r >= Again && r <= Easy
}

func (r Rating) String() string {
	switch r {
	case Again:
		return "again"
	case Hard:
		return "hard"
	case Good:
		return "good"
	case Easy:
		return "easy"
	default:
		return "unknown"
	}
}

// ParseRating converts a raw numeric rating into a Rating.
func ParseRating(v int) (Rating, error) {
	r := Rating(v)
	if !r.Valid() {
		return 0, ErrInvalidRating
	}
	return r, nil
}
