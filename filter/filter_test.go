package filter_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudk/asymmetry/filter"
	"github.com/dudk/asymmetry/signal"
)

const sampleRate = 256

func sine(freq, amplitude float64, samples int) []float64 {
	result := make([]float64, samples)
	for i := range result {
		result[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
	}
	return result
}

func constant(v float64, samples int) []float64 {
	result := make([]float64, samples)
	for i := range result {
		result[i] = v
	}
	return result
}

func TestValidate(t *testing.T) {
	tests := []struct {
		description string
		spec        filter.Spec
		valid       bool
	}{
		{
			description: "alpha bandpass",
			spec:        filter.Spec{Kind: filter.Bandpass, LowCut: 8, HighCut: 12, SampleRate: sampleRate},
			valid:       true,
		},
		{
			description: "lowpass with zero low cut",
			spec:        filter.Spec{Kind: filter.Lowpass, LowCut: 0, HighCut: 40, SampleRate: sampleRate},
			valid:       true,
		},
		{
			description: "bandpass with zero low cut",
			spec:        filter.Spec{Kind: filter.Bandpass, LowCut: 0, HighCut: 40, SampleRate: sampleRate},
		},
		{
			description: "low cut above high cut",
			spec:        filter.Spec{Kind: filter.Bandpass, LowCut: 12, HighCut: 8, SampleRate: sampleRate},
		},
		{
			description: "equal cuts",
			spec:        filter.Spec{Kind: filter.Highpass, LowCut: 8, HighCut: 8, SampleRate: sampleRate},
		},
		{
			description: "high cut at nyquist",
			spec:        filter.Spec{Kind: filter.Bandpass, LowCut: 8, HighCut: 128, SampleRate: sampleRate},
		},
		{
			description: "unknown kind",
			spec:        filter.Spec{Kind: filter.Kind(10), LowCut: 8, HighCut: 12, SampleRate: sampleRate},
		},
		{
			description: "no sample rate",
			spec:        filter.Spec{Kind: filter.Bandpass, LowCut: 8, HighCut: 12},
		},
	}

	for _, test := range tests {
		f, err := filter.New(test.spec)
		if test.valid {
			assert.NoError(t, err, test.description)
			assert.NotNil(t, f, test.description)
		} else {
			assert.True(t, errors.Is(err, filter.ErrConfig), test.description)
			assert.Nil(t, f, test.description)
		}
	}
}

func TestParseKind(t *testing.T) {
	for name, expected := range map[string]filter.Kind{
		"bandpass": filter.Bandpass,
		"Lowpass":  filter.Lowpass,
		" high ":   filter.Highpass,
	} {
		k, err := filter.ParseKind(name)
		assert.NoError(t, err)
		assert.Equal(t, expected, k)
	}
	_, err := filter.ParseKind("notch")
	assert.True(t, errors.Is(err, filter.ErrConfig))
	assert.Equal(t, "bandpass", filter.Bandpass.String())
}

func TestMinSamples(t *testing.T) {
	bandpass, err := filter.New(filter.Spec{Kind: filter.Bandpass, LowCut: 8, HighCut: 12, SampleRate: sampleRate})
	require.NoError(t, err)
	assert.Equal(t, 27, bandpass.MinSamples())
	assert.Equal(t, filter.DefaultOrder, bandpass.Spec().Order)

	lowpass, err := filter.New(filter.Spec{Kind: filter.Lowpass, HighCut: 40, SampleRate: sampleRate})
	require.NoError(t, err)
	assert.Equal(t, 27, lowpass.MinSamples())

	highpass, err := filter.New(filter.Spec{Kind: filter.Highpass, LowCut: 1, HighCut: 40, SampleRate: sampleRate})
	require.NoError(t, err)
	assert.Equal(t, 27, highpass.MinSamples())

	odd, err := filter.New(filter.Spec{Kind: filter.Lowpass, HighCut: 40, Order: 3, SampleRate: sampleRate})
	require.NoError(t, err)
	assert.Equal(t, 21, odd.MinSamples())

	// lowpass input shorter than the minimum is left as is
	in := signal.Float64{sine(30, 1, 20)}
	assert.Equal(t, in.Copy(), lowpass.Apply(in))
}

func TestShortInputIsIdentity(t *testing.T) {
	f, err := filter.New(filter.Spec{Kind: filter.Bandpass, LowCut: 8, HighCut: 12, SampleRate: sampleRate})
	require.NoError(t, err)

	for _, size := range []int{1, 10, f.MinSamples() - 1} {
		in := signal.Float64{sine(10, 1, size), sine(3, 2, size)}
		expected := in.Copy()
		assert.Equal(t, expected, f.Apply(in))
	}
}

func TestBandpass(t *testing.T) {
	f, err := filter.New(filter.Spec{Kind: filter.Bandpass, LowCut: 8, HighCut: 12, SampleRate: sampleRate})
	require.NoError(t, err)

	samples := 4 * sampleRate
	in := signal.Float64{sine(10, 1, samples), sine(40, 1, samples)}
	out := f.Apply(in)
	require.Equal(t, 2, out.NumChannels())
	require.Equal(t, samples, out.Size())

	// zero phase: pass band follows the input, stop band is suppressed
	for i := samples / 4; i < 3*samples/4; i++ {
		assert.InDelta(t, in[0][i], out[0][i], 0.05)
		assert.InDelta(t, 0, out[1][i], 0.05)
	}

	// input is not modified
	assert.Equal(t, sine(10, 1, samples), []float64(in[0]))
}

func TestLowHighpassConstant(t *testing.T) {
	lowpass, err := filter.New(filter.Spec{Kind: filter.Lowpass, HighCut: 5, SampleRate: sampleRate})
	require.NoError(t, err)
	highpass, err := filter.New(filter.Spec{Kind: filter.Highpass, LowCut: 5, HighCut: 100, SampleRate: sampleRate})
	require.NoError(t, err)

	in := signal.Float64{constant(3, 100)}
	low := lowpass.Apply(in)
	high := highpass.Apply(in)
	for i := range in[0] {
		assert.InDelta(t, 3, low[0][i], 1e-6)
		assert.InDelta(t, 0, high[0][i], 1e-6)
	}
}

func TestDeterministic(t *testing.T) {
	f, err := filter.New(filter.Spec{Kind: filter.Bandpass, LowCut: 4, HighCut: 8, SampleRate: sampleRate})
	require.NoError(t, err)
	in := signal.Float64{sine(6, 1, 300), sine(20, 1, 300)}
	assert.Equal(t, f.Apply(in), f.Apply(in))

	// exactly minimal input is filtered
	short := signal.Float64{sine(6, 1, f.MinSamples())}
	assert.NotEqual(t, short, f.Apply(short))
}

func TestBands(t *testing.T) {
	b, ok := filter.BandByName("alpha")
	assert.True(t, ok)
	assert.Equal(t, filter.Band{Name: "Alpha", Low: 8, High: 12}, b)

	_, ok = filter.BandByName("kappa")
	assert.False(t, ok)
}
