// Package wav provides a pump of multichannel wav recordings.
package wav

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/dudk/asymmetry/signal"
)

// ErrUnsupportedBitDepth is returned when unsupported bit depth is used.
var ErrUnsupportedBitDepth = errors.New("only 16 and 32 bit depth is supported")

// Pump reads from wav file.
// This component cannot be reused for consequent runs.
type Pump struct {
	path     string
	channels []int
	file     *os.File
	decoder  *wav.Decoder
}

// NewPump creates a new wav pump. If channels are provided, only those
// channels are pumped in provided order.
func NewPump(path string, channels ...int) *Pump {
	return &Pump{path: path, channels: channels}
}

// Flush closes the file.
func (p *Pump) Flush(string) error {
	if p.file == nil {
		return nil
	}
	err := p.file.Close()
	p.file = nil
	return err
}

// Pump starts the pump process once executed, wav attributes are accessible.
func (p *Pump) Pump(pipeID string, bufferSize int) (func() (signal.Float64, error), int, int, error) {
	file, err := os.Open(p.path)
	if err != nil {
		return nil, 0, 0, err
	}

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		err = file.Close()
		if err != nil {
			return nil, 0, 0, fmt.Errorf("wav is not valid, failed to close the file %v", p.path)
		}
		return nil, 0, 0, errors.New("wav is not valid")
	}

	bitDepth := signal.BitDepth(decoder.BitDepth)
	if bitDepth != signal.BitDepth16 && bitDepth != signal.BitDepth32 {
		_ = file.Close()
		return nil, 0, 0, ErrUnsupportedBitDepth
	}

	numChannels := decoder.Format().NumChannels
	for _, c := range p.channels {
		if c < 0 || c >= numChannels {
			_ = file.Close()
			return nil, 0, 0, fmt.Errorf("channel %d is out of range, wav has %d channels", c, numChannels)
		}
	}

	p.file = file
	p.decoder = decoder
	sampleRate := int(decoder.SampleRate)

	ib := &audio.IntBuffer{
		Format:         decoder.Format(),
		Data:           make([]int, bufferSize*numChannels),
		SourceBitDepth: int(decoder.BitDepth),
	}

	pumped := numChannels
	if len(p.channels) > 0 {
		pumped = len(p.channels)
	}
	return func() (signal.Float64, error) {
		readSamples, err := p.decoder.PCMBuffer(ib)
		if err != nil {
			return nil, err
		}

		if readSamples == 0 {
			return nil, io.EOF
		}
		// prune buffer to actual size
		b := signal.InterInt{Data: ib.Data[:readSamples], NumChannels: numChannels, BitDepth: bitDepth}.AsFloat64()
		if len(p.channels) > 0 {
			selected := make(signal.Float64, len(p.channels))
			for i, c := range p.channels {
				selected[i] = b[c]
			}
			b = selected
		}
		if b.Size() != bufferSize {
			return b, io.ErrUnexpectedEOF
		}
		return b, nil
	}, sampleRate, pumped, nil
}

// Write saves signal into a new wav file.
func Write(path string, sampleRate int, bitDepth signal.BitDepth, data signal.Float64) error {
	if bitDepth != signal.BitDepth16 && bitDepth != signal.BitDepth32 {
		return ErrUnsupportedBitDepth
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	e := wav.NewEncoder(f, sampleRate, int(bitDepth), data.NumChannels(), 1)
	ib := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: data.NumChannels(),
			SampleRate:  sampleRate,
		},
		Data:           data.AsInterInt(bitDepth),
		SourceBitDepth: int(bitDepth),
	}
	if err := e.Write(ib); err != nil {
		_ = f.Close()
		return err
	}
	if err := e.Close(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
