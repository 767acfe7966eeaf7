package pipe

import (
	"errors"
	"fmt"

	"github.com/dudk/asymmetry/filter"
	"github.com/dudk/asymmetry/signal"
)

// ErrConfig is returned when pipe cannot be constructed.
var ErrConfig = errors.New("invalid pipe config")

// Config is fixed for the pipe lifetime.
type Config struct {
	Filter filter.Spec
	// EpochDuration and EpochInterval are in seconds.
	EpochDuration   float64
	EpochInterval   float64
	MovingAvgEpochs int
	// Channels are indices of channels A and B.
	Channels [2]int
	// Workers limits parallel spectral estimation. Zero or one means
	// sequential estimation.
	Workers int
}

// DefaultConfig returns alpha band config with one second epochs every
// half a second.
func DefaultConfig(sampleRate int) Config {
	return Config{
		Filter: filter.Spec{
			Kind:       filter.Bandpass,
			LowCut:     8,
			HighCut:    12,
			Order:      filter.DefaultOrder,
			SampleRate: sampleRate,
		},
		EpochDuration:   1,
		EpochInterval:   0.5,
		MovingAvgEpochs: 4,
		Channels:        [2]int{0, 1},
	}
}

// EpochSamples returns epoch length in samples.
func (c Config) EpochSamples() int {
	return signal.SamplesOf(c.Filter.SampleRate, c.EpochDuration)
}

// Stride returns distance between epochs in samples.
func (c Config) Stride() int {
	return signal.SamplesOf(c.Filter.SampleRate, c.EpochInterval)
}

// CapSamples returns maximum number of samples retained by the pipe.
func (c Config) CapSamples() int {
	return 10 * c.EpochSamples()
}

// Validate checks config values. Returned error matches ErrConfig and,
// for filter problems, filter.ErrConfig.
func (c Config) Validate() error {
	if err := c.Filter.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if c.EpochSamples() < 2 {
		return fmt.Errorf("%w: epoch of %vs is shorter than two samples", ErrConfig, c.EpochDuration)
	}
	if c.Stride() < 1 {
		return fmt.Errorf("%w: epoch interval of %vs is shorter than one sample", ErrConfig, c.EpochInterval)
	}
	if c.MovingAvgEpochs < 1 {
		return fmt.Errorf("%w: moving average must cover at least one epoch, got %d", ErrConfig, c.MovingAvgEpochs)
	}
	if c.Channels[0] < 0 || c.Channels[1] < 0 || c.Channels[0] == c.Channels[1] {
		return fmt.Errorf("%w: asymmetry channels must be distinct and not negative, got %v", ErrConfig, c.Channels)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrConfig, c.Workers)
	}
	return nil
}
