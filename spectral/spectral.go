// Package spectral estimates band power of epochs with Welch's method.
//
// Every epoch channel is a single Welch segment: constant detrend,
// periodic Hann window and one-sided density scaling. Band power is the
// mean of density values whose frequency bins fall into the band.
package spectral

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/dudk/asymmetry/signal"
)

// ErrConfig is returned when estimator cannot be built for provided
// parameters.
var ErrConfig = errors.New("invalid spectral config")

// Estimator computes band power. Frequency bins are computed once and
// reused for every batch. It's safe for concurrent use.
type Estimator struct {
	sampleRate int
	samples    int
	window     []float64
	scale      float64
	first      int // first bin in band
	last       int // last bin in band, inclusive
	workers    int
	ffts       sync.Pool
}

// New creates estimator for epochs of epochSamples length. Band is
// [low, high] inclusive. If workers is greater than one, epochs are
// estimated in parallel. Output order doesn't depend on workers.
func New(sampleRate, epochSamples int, low, high float64, workers int) (*Estimator, error) {
	if sampleRate <= 0 || epochSamples < 2 {
		return nil, fmt.Errorf("%w: sample rate %d and epoch samples %d must be positive", ErrConfig, sampleRate, epochSamples)
	}
	first, last := -1, -1
	for k := 0; k <= epochSamples/2; k++ {
		f := Frequency(k, sampleRate, epochSamples)
		if f < low || f > high {
			continue
		}
		if first < 0 {
			first = k
		}
		last = k
	}
	if first < 0 {
		return nil, fmt.Errorf("%w: no frequency bins in band [%v, %v] for resolution %v", ErrConfig, low, high, float64(sampleRate)/float64(epochSamples))
	}

	w := hann(epochSamples)
	if workers < 1 {
		workers = 1
	}
	e := Estimator{
		sampleRate: sampleRate,
		samples:    epochSamples,
		window:     w,
		scale:      1 / (float64(sampleRate) * floats.Dot(w, w)),
		first:      first,
		last:       last,
		workers:    workers,
	}
	e.ffts.New = func() interface{} {
		return fourier.NewFFT(epochSamples)
	}
	return &e, nil
}

// Frequency returns frequency of k-th bin.
func Frequency(k, sampleRate, samples int) float64 {
	return float64(k) * float64(sampleRate) / float64(samples)
}

// Bins returns first and last frequency bins of the band.
func (e *Estimator) Bins() (int, int) {
	return e.first, e.last
}

// BandPower returns power for every epoch and channel, the result has
// epochs × channels shape. Epochs of wrong length are not expected.
func (e *Estimator) BandPower(epochs []signal.Float64) [][]float64 {
	result := make([][]float64, len(epochs))
	if e.workers == 1 || len(epochs) < 2 {
		for i := range epochs {
			result[i] = e.epochPower(epochs[i])
		}
		return result
	}

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i := range epochs {
		i := i
		g.Go(func() error {
			result[i] = e.epochPower(epochs[i])
			return nil
		})
	}
	_ = g.Wait()
	return result
}

func (e *Estimator) epochPower(ep signal.Float64) []float64 {
	fft := e.ffts.Get().(*fourier.FFT)
	defer e.ffts.Put(fft)

	seq := make([]float64, e.samples)
	coeff := make([]complex128, e.samples/2+1)
	power := make([]float64, ep.NumChannels())
	for c := range ep {
		power[c] = e.channelPower(fft, ep[c], seq, coeff)
	}
	return power
}

// channelPower returns mean one-sided density within the band.
func (e *Estimator) channelPower(fft *fourier.FFT, x, seq []float64, coeff []complex128) float64 {
	mean := stat.Mean(x, nil)
	for i := range seq {
		seq[i] = (x[i] - mean) * e.window[i]
	}
	coeff = fft.Coefficients(coeff, seq)

	psd := make([]float64, 0, e.last-e.first+1)
	for k := e.first; k <= e.last; k++ {
		c := coeff[k]
		p := (real(c)*real(c) + imag(c)*imag(c)) * e.scale
		// dc and nyquist bins have no negative frequency counterpart
		if k != 0 && !(e.samples%2 == 0 && k == e.samples/2) {
			p *= 2
		}
		psd = append(psd, p)
	}
	return stat.Mean(psd, nil)
}

// hann returns periodic Hann window of length n.
func hann(n int) []float64 {
	w := make([]float64, n+1)
	for i := range w {
		w[i] = 1
	}
	return window.Hann(w)[:n]
}
