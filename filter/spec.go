package filter

import (
	"errors"
	"fmt"
	"strings"
)

// Kind of the filter response.
type Kind int

const (
	// Bandpass passes frequencies between LowCut and HighCut.
	Bandpass Kind = iota
	// Lowpass passes frequencies below HighCut.
	Lowpass
	// Highpass passes frequencies above LowCut.
	Highpass
)

// DefaultOrder is used when Spec.Order is not set.
const DefaultOrder = 4

// ErrConfig is returned when filter cannot be designed for provided spec.
var ErrConfig = errors.New("invalid filter config")

// Spec defines filter parameters. It's immutable once filter is created.
type Spec struct {
	Kind       Kind
	LowCut     float64
	HighCut    float64
	Order      int
	SampleRate int
}

// ParseKind converts filter kind name into Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bandpass", "band":
		return Bandpass, nil
	case "lowpass", "low":
		return Lowpass, nil
	case "highpass", "high":
		return Highpass, nil
	}
	return 0, fmt.Errorf("%w: unknown filter kind %q", ErrConfig, s)
}

func (k Kind) String() string {
	switch k {
	case Bandpass:
		return "bandpass"
	case Lowpass:
		return "lowpass"
	case Highpass:
		return "highpass"
	}
	return "unknown"
}

// Nyquist returns half of the sample rate.
func (s Spec) Nyquist() float64 {
	return float64(s.SampleRate) / 2
}

// Validate checks that cutoffs are ordered and below Nyquist frequency.
func (s Spec) Validate() error {
	switch s.Kind {
	case Bandpass, Lowpass, Highpass:
	default:
		return fmt.Errorf("%w: unknown filter kind %d", ErrConfig, s.Kind)
	}
	if s.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrConfig, s.SampleRate)
	}
	if s.Order < 0 {
		return fmt.Errorf("%w: order must be positive, got %d", ErrConfig, s.Order)
	}
	if s.LowCut < 0 {
		return fmt.Errorf("%w: low cut must not be negative, got %v", ErrConfig, s.LowCut)
	}
	if s.LowCut >= s.HighCut {
		return fmt.Errorf("%w: low cut %v must be less than high cut %v", ErrConfig, s.LowCut, s.HighCut)
	}
	if s.HighCut >= s.Nyquist() {
		return fmt.Errorf("%w: high cut %v must be less than nyquist %v", ErrConfig, s.HighCut, s.Nyquist())
	}
	if s.LowCut == 0 && s.Kind != Lowpass {
		return fmt.Errorf("%w: %v filter requires positive low cut", ErrConfig, s.Kind)
	}
	return nil
}

func (s Spec) order() int {
	if s.Order == 0 {
		return DefaultOrder
	}
	return s.Order
}

// Band is a named frequency range.
type Band struct {
	Name string
	Low  float64
	High float64
}

// Bands contains common EEG frequency bands.
var Bands = []Band{
	{Name: "Delta", Low: 0.5, High: 4},
	{Name: "Theta", Low: 4, High: 8},
	{Name: "Alpha", Low: 8, High: 12},
	{Name: "Beta", Low: 13, High: 30},
	{Name: "Gamma", Low: 30, High: 100},
}

// BandByName looks up a band ignoring case.
func BandByName(name string) (Band, bool) {
	for _, b := range Bands {
		if strings.EqualFold(b.Name, name) {
			return b, true
		}
	}
	return Band{}, false
}
