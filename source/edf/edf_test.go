package edf_test

import (
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudk/asymmetry/mock"
	"github.com/dudk/asymmetry/signal"
	"github.com/dudk/asymmetry/source/edf"
)

const sampleRate = 256

var labels = []edf.Label{
	{Name: "EEG F3-LE", Dimension: "uV", Min: -1, Max: 1},
	{Name: "EEG F4-LE", Dimension: "uV", Min: -1, Max: 1},
}

func fixture(t *testing.T) (string, signal.Float64) {
	t.Helper()
	pump := mock.Pump{SampleRate: sampleRate, Frequency: 10, Amplitudes: []float64{0.8, 0.3}, Limit: 3*sampleRate + 44}
	var data signal.Float64
	for _, chunk := range pump.Chunks(sampleRate) {
		data = data.Append(chunk)
	}
	path := filepath.Join(t.TempDir(), "test.edf")
	require.NoError(t, edf.Write(path, sampleRate, labels, data))
	return path, data
}

func TestPump(t *testing.T) {
	path, expected := fixture(t)
	p := edf.NewPump(path, sampleRate, 1, 0)
	fn, rate, channels, err := p.Pump("", 100)
	require.NoError(t, err)
	assert.Equal(t, sampleRate, rate)
	assert.Equal(t, 2, channels)

	var (
		data   signal.Float64
		chunks int
	)
	for {
		b, err := fn()
		if b != nil {
			data = data.Append(b)
			chunks++
		}
		if err != nil {
			assert.True(t, err == io.EOF || err == io.ErrUnexpectedEOF)
			break
		}
	}
	assert.Equal(t, 8, chunks)
	// trailing incomplete record is not written
	require.Equal(t, 3*sampleRate, data.Size())
	for i := 0; i < data.Size(); i++ {
		assert.InDelta(t, expected[1][i], data[0][i], 1e-3)
		assert.InDelta(t, expected[0][i], data[1][i], 1e-3)
	}
	assert.NoError(t, p.Flush(""))
}

func TestErrors(t *testing.T) {
	path, data := fixture(t)

	_, _, _, err := edf.NewPump(path, sampleRate).Pump("", 100)
	assert.True(t, errors.Is(err, edf.ErrNoSignals))

	_, _, _, err = edf.NewPump(path, sampleRate, 5).Pump("", 100)
	assert.Error(t, err)

	_, _, _, err = edf.NewPump(path, 0, 0).Pump("", 100)
	assert.Error(t, err)

	_, _, _, err = edf.NewPump(filepath.Join(t.TempDir(), "missing.edf"), sampleRate, 0).Pump("", 100)
	assert.Error(t, err)

	assert.Error(t, edf.Write(filepath.Join(t.TempDir(), "bad.edf"), sampleRate, labels[:1], data))
}
