package srs

import "time"

// DefaultEase is the ease factor assigned to a card that has never been reviewed.
const DefaultEase = 2.5

// Params holds the tunable constants of the scheduling algorithm.
type Params struct {
	// MinEase is the floor below which the ease factor never drops.
	MinEase float64
	// MaxEase caps ease growth from repeated easy reviews.
	MaxEase float64

	// AgainPenalty and HardPenalty are subtracted from the ease factor;
	// EasyBonus is added to it.
	AgainPenalty float64
	HardPenalty  float64
	EasyBonus    float64

	// AgainDelay requeues a failed card within the same session.
	// HardDelay pushes a hard card out a few minutes.
	AgainDelay time.Duration
	HardDelay  time.Duration

	// First successful intervals, in days.
	FirstGoodIntervalDays int
	FirstEasyIntervalDays int

	// EasyMultiplier is the extra interval growth for easy reviews,
	// applied on top of the ease factor.
	EasyMultiplier float64
}

// DefaultParams returns the standard constant set.
func DefaultParams() Params {
	return Params{
		MinEase:               1.3,
		MaxEase:               3.0,
		AgainPenalty:          0.20,
		HardPenalty:           0.15,
		EasyBonus:             0.15,
		AgainDelay:            30 * time.Second,
		HardDelay:             10 * time.Minute,
		FirstGoodIntervalDays: 1,
		FirstEasyIntervalDays: 4,
		EasyMultiplier:        1.3,
	}
}
