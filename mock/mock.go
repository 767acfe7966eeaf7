// Package mock provides mocks for pipe components and allows to execute integration tests.
package mock

import (
	"context"
	"io"
	"sync"

	"github.com/dudk/asymmetry/pipe"
	"github.com/dudk/asymmetry/signal"
	"github.com/dudk/asymmetry/source/synthetic"
	"github.com/dudk/asymmetry/store"
)

// Pump mocks a source.Pump interface. It generates a sine of Frequency
// per channel, channel count is the number of Amplitudes.
type Pump struct {
	counter
	SampleRate  int
	Frequency   float64
	Amplitudes  []float64
	Limit       int
	ErrorOnMake error
	ErrorOnCall error
	Hooks
}

// Flush implements source.Flusher.
func (m *Pump) Flush(string) error {
	m.Flushed++
	return m.ErrorOnFlush
}

// Pump returns new chunk for pipe.
func (m *Pump) Pump(pipeID string, bufferSize int) (func() (signal.Float64, error), int, int, error) {
	if m.ErrorOnMake != nil {
		return nil, 0, 0, m.ErrorOnMake
	}
	return func() (signal.Float64, error) {
		if m.ErrorOnCall != nil {
			return nil, m.ErrorOnCall
		}
		if m.samples >= m.Limit {
			return nil, io.EOF
		}

		// check if we need a shorter chunk.
		bs := bufferSize
		if left := m.Limit - m.samples; left < bs {
			bs = left
		}
		b := signal.EmptyFloat64(len(m.Amplitudes), bs)
		for i := range b {
			for j := range b[i] {
				b[i][j] = Sine(m.Amplitudes[i], m.Frequency, m.SampleRate, m.samples+j)
			}
		}
		m.advance(bs)
		if bs < bufferSize {
			return b, io.ErrUnexpectedEOF
		}
		return b, nil
	}, m.SampleRate, len(m.Amplitudes), nil
}

// Sine returns value of n-th sample of the sine.
func Sine(amplitude, frequency float64, sampleRate, n int) float64 {
	return synthetic.Sine(amplitude, frequency, sampleRate, n)
}

// Chunks generates the whole signal of the pump split into chunks of
// bufferSize. Pump counters are not affected.
func (m *Pump) Chunks(bufferSize int) []signal.Float64 {
	p := Pump{
		SampleRate: m.SampleRate,
		Frequency:  m.Frequency,
		Amplitudes: m.Amplitudes,
		Limit:      m.Limit,
	}
	fn, _, _, _ := p.Pump("", bufferSize)
	var chunks []signal.Float64
	for {
		b, err := fn()
		if b != nil {
			chunks = append(chunks, b)
		}
		if err != nil {
			return chunks
		}
	}
}

// Sink mocks up a pipe.Sink interface. It records all messages.
type Sink struct {
	m           sync.Mutex
	messages    []pipe.Message
	ErrorOnMake error
	ErrorOnCall error
	Hooks
}

// Sink implementation for pipe.
func (m *Sink) Sink(pipeID string) (func(pipe.Message) error, error) {
	if m.ErrorOnMake != nil {
		return nil, m.ErrorOnMake
	}
	return func(msg pipe.Message) error {
		m.m.Lock()
		defer m.m.Unlock()
		m.messages = append(m.messages, msg)
		return m.ErrorOnCall
	}, nil
}

// Flush implements pipe.Flusher.
func (m *Sink) Flush(string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.Flushed++
	return m.ErrorOnFlush
}

// Messages returns copy of recorded messages.
func (m *Sink) Messages() []pipe.Message {
	m.m.Lock()
	defer m.m.Unlock()
	return append([]pipe.Message(nil), m.messages...)
}

// Hooks allows to mock components hooks.
type Hooks struct {
	Flushed      int
	ErrorOnFlush error
}

// Store mocks a pipe.Store interface.
type Store struct {
	m           sync.Mutex
	records     []store.Record
	ErrorOnSave error
}

// Save records the score.
func (s *Store) Save(ctx context.Context, r store.Record) error {
	s.m.Lock()
	defer s.m.Unlock()
	if s.ErrorOnSave != nil {
		return s.ErrorOnSave
	}
	s.records = append(s.records, r)
	return nil
}

// Records returns copy of saved records.
func (s *Store) Records() []store.Record {
	s.m.Lock()
	defer s.m.Unlock()
	return append([]store.Record(nil), s.records...)
}

// counter counts messages and samples.
type counter struct {
	messages int
	samples  int
}

// advance counter's metrics.
func (c *counter) advance(size int) {
	c.messages++
	c.samples = c.samples + size
}

// Count returns messages and samples metrics.
func (c *counter) Count() (int, int) {
	return c.messages, c.samples
}
