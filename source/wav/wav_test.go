package wav_test

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudk/asymmetry/mock"
	"github.com/dudk/asymmetry/signal"
	"github.com/dudk/asymmetry/source/wav"
)

const (
	sampleRate = 256
	bufferSize = 128
)

func fixture(t *testing.T) (string, signal.Float64) {
	t.Helper()
	pump := mock.Pump{SampleRate: sampleRate, Frequency: 10, Amplitudes: []float64{0.8, 0.2}, Limit: 300}
	var data signal.Float64
	for _, chunk := range pump.Chunks(bufferSize) {
		data = data.Append(chunk)
	}
	path := filepath.Join(t.TempDir(), "test.wav")
	require.NoError(t, wav.Write(path, sampleRate, signal.BitDepth16, data))
	return path, data
}

func read(t *testing.T, fn func() (signal.Float64, error)) (signal.Float64, int) {
	t.Helper()
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
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return data, chunks
		}
		require.NoError(t, err)
	}
}

func TestPump(t *testing.T) {
	path, expected := fixture(t)
	p := wav.NewPump(path)
	fn, rate, channels, err := p.Pump("", bufferSize)
	require.NoError(t, err)
	assert.Equal(t, sampleRate, rate)
	assert.Equal(t, 2, channels)

	data, chunks := read(t, fn)
	assert.Equal(t, 3, chunks)
	require.Equal(t, expected.Size(), data.Size())
	for c := range expected {
		for i := range expected[c] {
			assert.InDelta(t, expected[c][i], data[c][i], 1e-3)
		}
	}
	assert.NoError(t, p.Flush(""))
}

func TestPumpChannels(t *testing.T) {
	path, expected := fixture(t)
	p := wav.NewPump(path, 1)
	fn, _, channels, err := p.Pump("", bufferSize)
	require.NoError(t, err)
	assert.Equal(t, 1, channels)

	data, _ := read(t, fn)
	require.Equal(t, 1, data.NumChannels())
	assert.InDelta(t, expected[1][10], data[0][10], 1e-3)
	assert.NoError(t, p.Flush(""))

	_, _, _, err = wav.NewPump(path, 2).Pump("", bufferSize)
	assert.Error(t, err)
}

func TestErrors(t *testing.T) {
	_, _, _, err := wav.NewPump(filepath.Join(t.TempDir(), "missing.wav")).Pump("", bufferSize)
	assert.Error(t, err)
	assert.Equal(t, wav.ErrUnsupportedBitDepth, wav.Write("", sampleRate, signal.BitDepth8, nil))
}
