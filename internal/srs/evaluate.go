package srs

import (
	"math"
	"time"

	"github.com/mariana/studydeck/internal/models"
)

// Review applies a quality rating to a card's scheduling state and returns
// the updated card. It is pure: the input card is not mutated and the caller
// is responsible for persisting the result.
//
// Again resets the repetition streak and requeues the card within the
// session. Hard keeps the streak and schedules a short retry. Good and Easy
// extend the streak and grow the interval by the ease factor (Easy with an
// extra multiplier and an ease bonus).
func (p Params) Review(card models.Card, rating Rating, now time.Time) (models.Card, error) {
	if !rating.Valid() {
		return models.Card{}, ErrInvalidRating
	}

	ease := card.EaseFactor
	if ease == 0 {
		ease = DefaultEase
	}

	switch rating {
	case Again:
		ease = p.clampEase(ease - p.AgainPenalty)
		card.Repetitions = 0
		card.IntervalDays = 0
		card.NextReviewAt = timePtr(now.Add(p.AgainDelay))

	case Hard:
		// Repetitions and interval hold steady; only the retry moves closer.
		ease = p.clampEase(ease - p.HardPenalty)
		card.NextReviewAt = timePtr(now.Add(p.HardDelay))

	case Good:
		card.Repetitions++
		if card.IntervalDays == 0 {
			card.IntervalDays = p.FirstGoodIntervalDays
		} else {
			card.IntervalDays = scaleInterval(card.IntervalDays, ease)
		}
		card.NextReviewAt = timePtr(now.AddDate(0, 0, card.IntervalDays))

	case Easy:
		ease = p.clampEase(ease + p.EasyBonus)
		card.Repetitions++
		if card.IntervalDays == 0 {
			card.IntervalDays = p.FirstEasyIntervalDays
		} else {
			card.IntervalDays = scaleInterval(card.IntervalDays, ease*p.EasyMultiplier)
		}
		card.NextReviewAt = timePtr(now.AddDate(0, 0, card.IntervalDays))
	}

	card.EaseFactor = ease
	return card, nil
}

func (p Params) clampEase(ease float64) float64 {
	if ease < p.MinEase {
		return p.MinEase
	}
	if ease > p.MaxEase {
		return p.MaxEase
	}
	return ease
}

func scaleInterval(days int, factor float64) int {
	next := int(math.Round(float64(days) * factor))
	if next <= days {
		next = days + 1
	}
	return next
}

func timePtr(t time.Time) *time.Time {
	return &t
}
