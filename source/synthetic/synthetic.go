// Package synthetic generates multi-channel test signals. Every channel
// is a sine of the same frequency with its own amplitude and optional
// gaussian noise.
package synthetic

import (
	"fmt"
	"io"
	"math"
	"math/rand"

	"github.com/dudk/asymmetry/signal"
)

// Pump generates Samples samples per channel.
type Pump struct {
	SampleRate int
	Frequency  float64
	Amplitudes []float64
	// Noise is the standard deviation of added noise.
	Noise   float64
	Samples int
	// Seed makes noise reproducible.
	Seed int64
}

// Sine returns value of n-th sample of the sine.
func Sine(amplitude, frequency float64, sampleRate, n int) float64 {
	return amplitude * math.Sin(2*math.Pi*frequency*float64(n)/float64(sampleRate))
}

// Pump implements source.Pump.
func (p *Pump) Pump(pipeID string, bufferSize int) (func() (signal.Float64, error), int, int, error) {
	if p.SampleRate <= 0 {
		return nil, 0, 0, fmt.Errorf("sample rate must be positive, got %d", p.SampleRate)
	}
	if len(p.Amplitudes) == 0 {
		return nil, 0, 0, fmt.Errorf("no channels")
	}
	if bufferSize <= 0 {
		return nil, 0, 0, fmt.Errorf("buffer size must be positive, got %d", bufferSize)
	}
	rnd := rand.New(rand.NewSource(p.Seed))
	pos := 0
	return func() (signal.Float64, error) {
		if pos >= p.Samples {
			return nil, io.EOF
		}
		bs := bufferSize
		if left := p.Samples - pos; left < bs {
			bs = left
		}
		b := signal.EmptyFloat64(len(p.Amplitudes), bs)
		for i := range b {
			for j := range b[i] {
				b[i][j] = Sine(p.Amplitudes[i], p.Frequency, p.SampleRate, pos+j)
				if p.Noise > 0 {
					b[i][j] += rnd.NormFloat64() * p.Noise
				}
			}
		}
		pos += bs
		if bs < bufferSize {
			return b, io.ErrUnexpectedEOF
		}
		return b, nil
	}, p.SampleRate, len(p.Amplitudes), nil
}

// Generate returns the whole signal as a single buffer.
func (p *Pump) Generate() (signal.Float64, error) {
	if p.Samples <= 0 {
		return nil, fmt.Errorf("samples must be positive, got %d", p.Samples)
	}
	fn, _, _, err := p.Pump("", p.Samples)
	if err != nil {
		return nil, err
	}
	b, err := fn()
	if err != nil {
		return nil, err
	}
	return b, nil
}
