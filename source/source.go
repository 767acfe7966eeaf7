// Package source drives pumps into the pipe inbound channel.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dudk/asymmetry/signal"
)

// Pump is a source of samples. Pump method returns a function which
// returns a new chunk with signal data on every call.
// Implentetions should use next error conventions:
// 		- nil if a full chunk was read;
// 		- io.EOF if no data was read;
// 		- io.ErrUnexpectedEOF if not a full chunk was read.
// The latest case means that pump executed as expected, but not enough data was available.
// This incomplete chunk still will be sent further and pump will be finished gracefully.
type Pump interface {
	Pump(pipeID string, bufferSize int) (func() (signal.Float64, error), int, int, error)
}

// Flusher is implemented by pumps which hold resources, like open
// files, until the source is done.
type Flusher interface {
	Flush(pipeID string) error
}

// Source is a started pump.
type Source struct {
	pipeID      string
	pump        Pump
	fn          func() (signal.Float64, error)
	sampleRate  int
	numChannels int
	realtime    bool
}

// Option provides a way to set functional parameters to source.
type Option func(*Source)

// Realtime makes source wait for chunk duration after every chunk. It's
// used to play back files as if they were acquired live.
func Realtime() Option {
	return func(s *Source) {
		s.realtime = true
	}
}

// New starts the pump with provided chunk size.
func New(pipeID string, pump Pump, bufferSize int, options ...Option) (*Source, error) {
	fn, sampleRate, numChannels, err := pump.Pump(pipeID, bufferSize)
	if err != nil {
		return nil, fmt.Errorf("pump init: %w", err)
	}
	s := Source{
		pipeID:      pipeID,
		pump:        pump,
		fn:          fn,
		sampleRate:  sampleRate,
		numChannels: numChannels,
	}
	for _, option := range options {
		option(&s)
	}
	return &s, nil
}

// SampleRate returns pump sample rate.
func (s *Source) SampleRate() int {
	return s.sampleRate
}

// NumChannels returns pump channel count.
func (s *Source) NumChannels() int {
	return s.numChannels
}

// Run sends chunks into out until pump is exhausted or ctx is done. Out
// is not closed, so multiple sources can share it. Exhausted pump
// results in nil error. Pump is flushed when Run returns.
func (s *Source) Run(ctx context.Context, out chan<- signal.Float64) (err error) {
	if f, ok := s.pump.(Flusher); ok {
		defer func() {
			if ferr := f.Flush(s.pipeID); ferr != nil && err == nil {
				err = fmt.Errorf("pump flush: %w", ferr)
			}
		}()
	}
	return s.send(ctx, out)
}

// send reads pump until it is exhausted.
func (s *Source) send(ctx context.Context, out chan<- signal.Float64) error {
	var timer *time.Timer
	if s.realtime {
		timer = time.NewTimer(0)
		defer timer.Stop()
		<-timer.C
	}
	for {
		chunk, err := s.fn()
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if chunk.Size() > 0 {
			select {
			case out <- chunk:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err != nil {
			return nil
		}
		if s.realtime {
			timer.Reset(signal.DurationOf(s.sampleRate, int64(chunk.Size())))
			select {
			case <-timer.C:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
