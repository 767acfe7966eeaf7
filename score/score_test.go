package score_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudk/asymmetry/score"
)

func TestMap(t *testing.T) {
	tests := []struct {
		raw      float64
		expected float64
	}{
		{raw: -0.02, expected: 25},
		{raw: 0, expected: 50},
		{raw: 0.02, expected: 75},
		{raw: -1000, expected: 0},
		{raw: 1000, expected: 100},
		{raw: -0.1, expected: 0},
		{raw: -0.06, expected: 12.5},
		{raw: 0.06, expected: 87.5},
		{raw: 0.1, expected: 100},
		{raw: 0.01, expected: 62.5},
	}

	for _, test := range tests {
		assert.InDelta(t, test.expected, score.Map(test.raw), 1e-9, "raw %v", test.raw)
	}
}

func TestMapMonotonic(t *testing.T) {
	prev := score.Map(-1)
	for raw := -1.0; raw <= 1; raw += 0.001 {
		s := score.Map(raw)
		assert.True(t, s >= prev, "raw %v", raw)
		assert.True(t, s >= 0 && s <= 100)
		prev = s
	}
}

func TestRaw(t *testing.T) {
	s, err := score.NewScorer(0, 1)
	require.NoError(t, err)

	// stronger first channel
	raw, err := s.Raw([][]float64{{10, 1}, {100, 10}})
	require.NoError(t, err)
	assert.InDelta(t, -1, raw, 1e-9)
	assert.True(t, score.Map(raw) < 50)

	// degenerate signal
	raw, err = s.Raw([][]float64{{0, 0}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, raw)
	assert.False(t, math.IsNaN(raw))
	assert.InDelta(t, 50, score.Map(raw), 1e-9)

	reversed, err := score.NewScorer(1, 0)
	require.NoError(t, err)
	raw, err = reversed.Raw([][]float64{{10, 1}})
	require.NoError(t, err)
	assert.InDelta(t, 1, raw, 1e-9)
}

func TestInvalidChannel(t *testing.T) {
	s, err := score.NewScorer(0, 3)
	require.NoError(t, err)
	_, err = s.Raw([][]float64{{1, 2}})
	assert.True(t, errors.Is(err, score.ErrInvalidChannel))

	_, err = s.Raw(nil)
	assert.True(t, errors.Is(err, score.ErrEmptyBatch))

	for _, pair := range [][2]int{{-1, 0}, {2, 2}} {
		_, err = score.NewScorer(pair[0], pair[1])
		assert.True(t, errors.Is(err, score.ErrInvalidChannel))
	}
}

func TestMoodOf(t *testing.T) {
	assert.Equal(t, score.Positive, score.MoodOf(80.5))
	assert.Equal(t, score.Neutral, score.MoodOf(80))
	assert.Equal(t, score.Neutral, score.MoodOf(50))
	assert.Equal(t, score.Negative, score.MoodOf(49.99))
	assert.Equal(t, "neutral", score.Neutral.String())
}
