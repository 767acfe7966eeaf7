package signal_test

import (
	"math"
	"testing"

	"github.com/dudk/asymmetry/signal"
	"github.com/stretchr/testify/assert"
)

func TestInterIntsAsFloat64(t *testing.T) {
	tests := []struct {
		ints        []int
		numChannels int
		bitDepth    signal.BitDepth
		expected    [][]float64
	}{
		{
			ints:        []int{1, 2, 1, 2, 1, 2, 1, 2, 1, 2, 1, 2, 1, 2, 1, 2},
			numChannels: 2,
			expected: [][]float64{
				[]float64{1, 1, 1, 1, 1, 1, 1, 1},
				[]float64{2, 2, 2, 2, 2, 2, 2, 2},
			},
		},
		{
			ints:        []int{1, 2, 1, 2, 1, 2, 1, 2, 1, 2, 1, 2, 1, 2, 1},
			numChannels: 2,
			expected: [][]float64{
				[]float64{1, 1, 1, 1, 1, 1, 1, 1},
				[]float64{2, 2, 2, 2, 2, 2, 2, 0},
			},
		},
		{
			ints:        []int{math.MaxInt16, math.MaxInt16 * 2},
			numChannels: 2,
			expected: [][]float64{
				[]float64{1},
				[]float64{2},
			},
			bitDepth: signal.BitDepth16,
		},
		{
			ints:     nil,
			expected: nil,
		},
		{
			ints:     []int{1, 2, 3},
			expected: nil,
		},
		{
			ints:        []int{1, 2, 3, 4},
			numChannels: 5,
			expected: [][]float64{
				[]float64{1},
				[]float64{2},
				[]float64{3},
				[]float64{4},
				[]float64{0},
			},
		},
	}

	for _, test := range tests {
		ints := signal.InterInt{
			Data:        test.ints,
			NumChannels: test.numChannels,
			BitDepth:    test.bitDepth,
		}
		result := ints.AsFloat64()
		assert.Equal(t, len(test.expected), len(result))
		for i := range test.expected {
			for j, val := range test.expected[i] {
				assert.Equal(t, val, result[i][j])
			}
		}
	}
}

func TestFloat64AsInterInt(t *testing.T) {
	tests := []struct {
		floats   [][]float64
		bitDepth signal.BitDepth
		expected []int
	}{
		{
			floats: [][]float64{
				[]float64{1, 1, 1, 1, 1, 1, 1, 1},
				[]float64{2, 2, 2, 2, 2, 2, 2, 2},
			},
			expected: []int{1, 2, 1, 2, 1, 2, 1, 2, 1, 2, 1, 2, 1, 2, 1, 2},
		},
		{
			floats: [][]float64{
				[]float64{1, 1, 1, 1, 1, 1, 1, 1},
				[]float64{2, 2, 2, 2, 2, 2},
			},
			expected: []int{1, 2, 1, 2, 1, 2, 1, 2, 1, 2, 1, 2, 1, 0, 1, 0},
		},
		{
			floats: [][]float64{
				[]float64{1},
				[]float64{2},
			},
			bitDepth: signal.BitDepth16,
			expected: []int{1 * (math.MaxInt16 - 1), 2 * (math.MaxInt16 - 1)},
		},
		{
			floats:   nil,
			expected: nil,
		},
		{
			floats:   [][]float64{},
			expected: nil,
		},
		{
			floats: [][]float64{
				[]float64{},
				[]float64{},
			},
			expected: []int{},
		},
		{
			floats: [][]float64{
				[]float64{1},
				[]float64{2},
				[]float64{3},
				[]float64{4},
				[]float64{5},
			},
			expected: []int{1, 2, 3, 4, 5},
		},
	}

	for _, test := range tests {
		floats := signal.Float64(test.floats)
		ints := floats.AsInterInt(test.bitDepth)
		assert.Equal(t, len(test.expected), len(ints))
		for i := range test.expected {
			assert.Equal(t, test.expected[i], ints[i])
		}
	}
}

func TestTail(t *testing.T) {
	tests := []struct {
		floats   signal.Float64
		n        int
		expected signal.Float64
	}{
		{
			floats:   signal.Float64{{1, 2, 3, 4}, {5, 6, 7, 8}},
			n:        2,
			expected: signal.Float64{{3, 4}, {7, 8}},
		},
		{
			floats:   signal.Float64{{1, 2}, {3, 4}},
			n:        10,
			expected: signal.Float64{{1, 2}, {3, 4}},
		},
		{
			floats:   signal.Float64{{1, 2}, {3, 4}},
			n:        0,
			expected: signal.Float64{{}, {}},
		},
	}

	for _, test := range tests {
		result := test.floats.Tail(test.n)
		assert.Equal(t, test.expected, result)
	}

	// tail is a copy
	floats := signal.Float64{{1, 2, 3}}
	tail := floats.Tail(2)
	tail[0][0] = 10
	assert.Equal(t, 2.0, floats[0][1])
}

func TestReshape(t *testing.T) {
	tests := []struct {
		description string
		floats      signal.Float64
		numChannels int
		expected    signal.Float64
		ok          bool
	}{
		{
			description: "single sample",
			floats:      signal.Float64{{1, 2, 3}},
			numChannels: 3,
			expected:    signal.Float64{{1}, {2}, {3}},
			ok:          true,
		},
		{
			description: "row-major",
			floats:      signal.Float64{{1, 2, 3, 4}},
			numChannels: 2,
			expected:    signal.Float64{{1, 2}, {3, 4}},
			ok:          true,
		},
		{
			description: "not divisible",
			floats:      signal.Float64{{1, 2, 3}},
			numChannels: 2,
		},
		{
			description: "multi-channel",
			floats:      signal.Float64{{1, 2, 3}, {1, 2, 3}},
			numChannels: 3,
		},
		{
			description: "empty",
			floats:      signal.Float64{{}},
			numChannels: 3,
		},
	}

	for _, test := range tests {
		result, ok := test.floats.Reshape(test.numChannels)
		assert.Equal(t, test.ok, ok, test.description)
		assert.Equal(t, test.expected, result, test.description)
	}
}

func TestAppendSlice(t *testing.T) {
	var floats signal.Float64
	floats = floats.Append(signal.Float64{{1, 2}, {3, 4}})
	floats = floats.Append(signal.Float64{{5}, {6}})
	assert.Equal(t, 2, floats.NumChannels())
	assert.Equal(t, 3, floats.Size())
	assert.False(t, floats.Ragged())

	assert.Equal(t, signal.Float64{{2, 5}, {4, 6}}, floats.Slice(1, 5))
	assert.Nil(t, floats.Slice(3, 1))
	assert.Nil(t, floats.Slice(-1, 1))

	assert.True(t, signal.Float64{{1, 2}, {3}}.Ragged())
}

func TestSamplesOf(t *testing.T) {
	assert.Equal(t, 256, signal.SamplesOf(256, 1))
	assert.Equal(t, 128, signal.SamplesOf(256, 0.5))
	assert.Equal(t, 125, signal.SamplesOf(250, 0.5))
	assert.Equal(t, int64(0), int64(signal.DurationOf(250, 0)))
}
