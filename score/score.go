// Package score turns band power of two channels into the asymmetry
// score.
//
// Raw score is the mean over epochs of log10(B+ε) - log10(A+ε), where A
// is the first designated channel and B is the second one. Stronger A
// gives negative raw score and mapped score below 50.
package score

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Epsilon guards logarithm of zero power.
const Epsilon = 1e-10

var (
	// ErrInvalidChannel is returned when designated channel is out of
	// range for the batch.
	ErrInvalidChannel = errors.New("invalid channel index")
	// ErrEmptyBatch is returned when there are no epochs to score.
	ErrEmptyBatch = errors.New("empty batch")
)

// Scorer computes raw score for a pair of channels.
type Scorer struct {
	a, b int
}

// NewScorer returns scorer for channels a and b. Indices must be
// distinct and not negative.
func NewScorer(a, b int) (Scorer, error) {
	if a < 0 || b < 0 || a == b {
		return Scorer{}, fmt.Errorf("%w: channels %d and %d", ErrInvalidChannel, a, b)
	}
	return Scorer{a: a, b: b}, nil
}

// Channels returns designated channels.
func (s Scorer) Channels() (int, int) {
	return s.a, s.b
}

// Raw computes raw score of epochs × channels power matrix.
func (s Scorer) Raw(power [][]float64) (float64, error) {
	if len(power) == 0 {
		return 0, ErrEmptyBatch
	}
	diffs := make([]float64, len(power))
	for i, p := range power {
		if s.a >= len(p) || s.b >= len(p) {
			return 0, fmt.Errorf("%w: channels %d and %d, batch has %d channels", ErrInvalidChannel, s.a, s.b, len(p))
		}
		diffs[i] = math.Log10(p[s.b]+Epsilon) - math.Log10(p[s.a]+Epsilon)
	}
	return stat.Mean(diffs, nil), nil
}

// Map converts raw score into [0, 100] with piecewise-linear curve. The
// central segment [-0.02, 0.02] covers scores from 25 to 75, outer
// segments are four times less steep and saturate.
func Map(raw float64) float64 {
	switch {
	case raw < -0.02:
		return clamp(25+(raw+0.02)*(25/0.08), 0, 25)
	case raw <= 0.02:
		return 25 + (raw+0.02)*(50/0.04)
	default:
		return clamp(75+(raw-0.02)*(25/0.08), 75, 100)
	}
}

func clamp(v, low, high float64) float64 {
	return math.Max(low, math.Min(high, v))
}

// Mood is a coarse classification of the score.
type Mood int

const (
	// Negative is a score below 50.
	Negative Mood = iota
	// Neutral is a score from 50 to 80 inclusive.
	Neutral
	// Positive is a score above 80.
	Positive
)

// MoodOf classifies mapped score.
func MoodOf(score float64) Mood {
	switch {
	case score > 80:
		return Positive
	case score >= 50:
		return Neutral
	default:
		return Negative
	}
}

func (m Mood) String() string {
	switch m {
	case Positive:
		return "positive"
	case Neutral:
		return "neutral"
	default:
		return "negative"
	}
}
