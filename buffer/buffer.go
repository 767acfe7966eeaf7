// Package buffer implements the rolling window of raw multi-channel
// samples that feeds the processing cycle.
package buffer

import (
	"errors"
	"fmt"

	"github.com/dudk/asymmetry/signal"
)

// ErrShapeMismatch is returned when chunk doesn't fit established
// channel count and cannot be reshaped.
var ErrShapeMismatch = errors.New("shape mismatch")

// ShapeError describes rejected chunk.
type ShapeError struct {
	Channels int // established channel count
	Got      int // channels in rejected chunk
	Samples  int // samples in rejected chunk
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%v: expected %d channels, got %d channels with %d samples", ErrShapeMismatch, e.Channels, e.Got, e.Samples)
}

// Is makes ShapeError match ErrShapeMismatch.
func (e *ShapeError) Is(target error) bool {
	return target == ErrShapeMismatch
}

// Buffer accumulates chunks until they're coalesced. It's not safe for
// concurrent use and is meant to be owned by a single pipe.
type Buffer struct {
	channels   int
	capSamples int
	size       int
	chunks     []signal.Float64
}

// New returns a buffer capped at capSamples. If channels is zero, the
// channel count is established by the first appended chunk.
func New(channels, capSamples int) *Buffer {
	return &Buffer{
		channels:   channels,
		capSamples: capSamples,
	}
}

// NumChannels returns established channel count.
func (b *Buffer) NumChannels() int {
	return b.channels
}

// Size returns number of samples retained per channel.
func (b *Buffer) Size() int {
	return b.size
}

// Append validates the chunk and retains it. Single-channel chunks are
// reshaped into the established channel count when their length allows
// that. Any other mismatch results in *ShapeError and the buffer stays
// untouched. Chunk is retained without copy.
func (b *Buffer) Append(chunk signal.Float64) error {
	if chunk.NumChannels() == 0 || chunk.Size() == 0 || chunk.Ragged() {
		return &ShapeError{Channels: b.channels, Got: chunk.NumChannels(), Samples: chunk.Size()}
	}
	if b.channels == 0 {
		b.channels = chunk.NumChannels()
	}
	if chunk.NumChannels() != b.channels {
		reshaped, ok := chunk.Reshape(b.channels)
		if !ok {
			return &ShapeError{Channels: b.channels, Got: chunk.NumChannels(), Samples: chunk.Size()}
		}
		chunk = reshaped
	}
	b.chunks = append(b.chunks, chunk)
	b.size += chunk.Size()
	if b.capSamples > 0 && b.size > b.capSamples {
		b.Coalesce()
	}
	return nil
}

// Coalesce concatenates retained chunks along the sample axis and
// returns the result. Only trailing capSamples are kept. Returned
// buffer is owned by Buffer and must not be modified.
func (b *Buffer) Coalesce() signal.Float64 {
	switch len(b.chunks) {
	case 0:
		return signal.EmptyFloat64(b.channels, 0)
	case 1:
	default:
		var data signal.Float64
		for _, chunk := range b.chunks {
			data = data.Append(chunk)
		}
		b.chunks = append(b.chunks[:0], data)
	}
	if b.capSamples > 0 && b.size > b.capSamples {
		b.chunks[0] = b.chunks[0].Tail(b.capSamples)
		b.size = b.capSamples
	}
	return b.chunks[0]
}

// TrimTo keeps only the last n samples.
func (b *Buffer) TrimTo(n int) {
	if n >= b.size {
		return
	}
	data := b.Coalesce().Tail(n)
	b.chunks = append(b.chunks[:0], data)
	b.size = data.Size()
}

// Reset drops all samples and established channel count.
func (b *Buffer) Reset(channels int) {
	b.channels = channels
	b.size = 0
	b.chunks = nil
}
