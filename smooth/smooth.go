// Package smooth provides moving averages over recent epochs and scores.
package smooth

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/dudk/asymmetry/signal"
)

// History keeps the last n epochs, oldest are evicted first.
type History struct {
	size   int
	epochs []signal.Float64
}

// NewHistory returns history of n epochs.
func NewHistory(n int) *History {
	if n < 1 {
		n = 1
	}
	return &History{size: n}
}

// Add copies epochs into history in provided order.
func (h *History) Add(epochs ...signal.Float64) {
	for _, e := range epochs {
		h.epochs = append(h.epochs, e.Copy())
	}
	if over := len(h.epochs) - h.size; over > 0 {
		h.epochs = append(h.epochs[:0], h.epochs[over:]...)
	}
}

// Len returns number of retained epochs.
func (h *History) Len() int {
	return len(h.epochs)
}

// Mean returns sample-wise mean of retained epochs. It reports false
// until history is full.
func (h *History) Mean() (signal.Float64, bool) {
	if len(h.epochs) < h.size {
		return nil, false
	}
	first := h.epochs[0]
	mean := signal.EmptyFloat64(first.NumChannels(), first.Size())
	for _, e := range h.epochs {
		if e.NumChannels() != first.NumChannels() || e.Size() != first.Size() {
			return nil, false
		}
		for c := range e {
			floats.Add(mean[c], e[c])
		}
	}
	n := float64(len(h.epochs))
	for c := range mean {
		for i := range mean[c] {
			mean[c][i] /= n
		}
	}
	return mean, true
}

// Average is a moving average of the last n values.
type Average struct {
	values []float64
	next   int
	count  int
}

// NewAverage returns moving average over n values.
func NewAverage(n int) *Average {
	if n < 1 {
		n = 1
	}
	return &Average{values: make([]float64, n)}
}

// Add puts the value into window and returns the current mean.
func (a *Average) Add(v float64) float64 {
	a.values[a.next] = v
	a.next = (a.next + 1) % len(a.values)
	if a.count < len(a.values) {
		a.count++
	}
	return a.Mean()
}

// Mean returns mean of values in window, zero if there are none.
func (a *Average) Mean() float64 {
	if a.count == 0 {
		return 0
	}
	return stat.Mean(a.values[:a.count], nil)
}

// Count returns number of values in window.
func (a *Average) Count() int {
	return a.count
}
