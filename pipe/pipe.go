// Package pipe drives the asymmetry score processing loop.
//
// Pipe receives raw chunks from inbound channel, accumulates them in a
// rolling buffer and, once the buffer holds at least one epoch, runs the
// processing cycle: zero-phase filter, epoch extraction, band power
// estimation and scoring. Every successful cycle emits a Message to all
// sinks in the order chunks arrived and saves the score into the store.
package pipe

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/dudk/asymmetry/buffer"
	"github.com/dudk/asymmetry/epoch"
	"github.com/dudk/asymmetry/filter"
	"github.com/dudk/asymmetry/log"
	"github.com/dudk/asymmetry/metric"
	"github.com/dudk/asymmetry/score"
	"github.com/dudk/asymmetry/signal"
	"github.com/dudk/asymmetry/smooth"
	"github.com/dudk/asymmetry/spectral"
	"github.com/dudk/asymmetry/store"
)

// Sink is a consumer of emitted messages.
type Sink interface {
	Sink(pipeID string) (func(Message) error, error)
}

// Flusher is implemented by sinks which need to be notified when pipe
// is stopped.
type Flusher interface {
	Flush(pipeID string) error
}

// Store persists the latest score.
type Store interface {
	Save(context.Context, store.Record) error
}

// Message is emitted after every successful processing cycle.
type Message struct {
	Seq      uint64 // monotonic, starts from one
	PipeID   string
	Time     time.Time
	Raw      float64
	Score    float64
	Smoothed float64
	Epochs   int
	Mood     score.Mood
}

// Pipe owns the rolling buffer and epoch history. All processing happens
// in a single goroutine, methods are not safe for concurrent use.
type Pipe struct {
	uid    string
	name   string
	config Config

	buffer   *buffer.Buffer
	filter   *filter.Filter
	epoch    epoch.Extractor
	spectral *spectral.Estimator
	scorer   score.Scorer
	history  *smooth.History
	average  *smooth.Average

	state State
	seq   uint64

	sinks   []Sink
	store   Store
	errc    chan error
	metered bool
	chunks  metric.MeasureFunc
	cycles  metric.MeasureFunc

	log log.Logger
}

// Option provides a way to set functional parameters to pipe.
type Option func(p *Pipe) error

// errorsBuffer is the capacity of the errors channel.
const errorsBuffer = 64

// minChannels is required from the chunk that establishes channel count.
const minChannels = 2

// New validates config, designs filter and applies provided options.
// Any config error matches ErrConfig.
func New(config Config, options ...Option) (*Pipe, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	f, err := filter.New(config.Filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	config.Filter = f.Spec()
	est, err := spectral.New(
		config.Filter.SampleRate,
		config.EpochSamples(),
		config.Filter.LowCut,
		config.Filter.HighCut,
		config.Workers,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	scorer, err := score.NewScorer(config.Channels[0], config.Channels[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	p := &Pipe{
		uid:      newUID(),
		config:   config,
		buffer:   buffer.New(0, config.CapSamples()),
		filter:   f,
		epoch:    epoch.New(config.EpochSamples(), config.Stride()),
		spectral: est,
		scorer:   scorer,
		history:  smooth.NewHistory(config.MovingAvgEpochs),
		average:  smooth.NewAverage(config.MovingAvgEpochs),
		errc:     make(chan error, errorsBuffer),
		log:      log.Silent(),
	}
	for _, option := range options {
		if err := option(p); err != nil {
			return nil, err
		}
	}
	p.chunks, p.cycles = p.meters()
	p.log = p.log.WithField("pipe", p.String())
	return p, nil
}

// WithLogger sets logger to Pipe. If this option is not provided, silent logger is used.
func WithLogger(logger log.Logger) Option {
	return func(p *Pipe) error {
		p.log = logger
		return nil
	}
}

// WithName sets name to Pipe.
func WithName(n string) Option {
	return func(p *Pipe) error {
		p.name = n
		return nil
	}
}

// WithMetric enables expvar counters of received chunks and processing
// cycles.
func WithMetric() Option {
	return func(p *Pipe) error {
		p.metered = true
		return nil
	}
}

// WithSinks adds sinks to Pipe. Messages are delivered to sinks in the
// order they're provided.
func WithSinks(sinks ...Sink) Option {
	return func(p *Pipe) error {
		p.sinks = append(p.sinks, sinks...)
		return nil
	}
}

// WithStore sets the store of the latest score.
func WithStore(s Store) Option {
	return func(p *Pipe) error {
		p.store = s
		return nil
	}
}

// newUID returns new unique id value.
func newUID() string {
	return xid.New().String()
}

// ID returns pipe id.
func (p *Pipe) ID() string {
	return p.uid
}

// Config returns pipe config with defaults applied.
func (p *Pipe) Config() Config {
	return p.config
}

// State returns current state of the pipe.
func (p *Pipe) State() State {
	return p.state
}

// Buffered returns number of samples retained in the rolling buffer.
func (p *Pipe) Buffered() int {
	return p.buffer.Size()
}

// Errors returns channel of recoverable errors. Errors are dropped if
// nobody reads the channel and it's full. Channel is never closed.
func (p *Pipe) Errors() <-chan error {
	return p.errc
}

// Convert pipe to string. If name is included if has value.
func (p *Pipe) String() string {
	if p.name == "" {
		return p.uid
	}
	return fmt.Sprintf("%v %v", p.name, p.uid)
}

// Run receives chunks until ctx is done or in is closed. Every chunk
// triggers at most one processing cycle. A cycle in progress is always
// completed before cancellation is checked. When loop is over, sinks are
// flushed and their errors are returned. Sink init errors are returned
// before any chunk is received.
func (p *Pipe) Run(ctx context.Context, in <-chan signal.Float64) error {
	sinks := make([]func(Message) error, 0, len(p.sinks))
	for _, s := range p.sinks {
		fn, err := s.Sink(p.uid)
		if err != nil {
			return fmt.Errorf("sink init: %w", err)
		}
		sinks = append(sinks, fn)
	}
	p.log.Info("started")
	defer p.log.Info("stopped")

	for {
		select {
		case <-ctx.Done():
			return p.stop()
		default:
		}

		select {
		case <-ctx.Done():
			return p.stop()
		case chunk, ok := <-in:
			if !ok {
				return p.stop()
			}
			if m, ok := p.Process(chunk); ok {
				p.emit(ctx, sinks, m)
			}
		}
	}
}

// Process appends chunk to the buffer and runs processing cycle if the
// buffer holds at least one epoch. Message is returned only if cycle has
// produced a score. Process doesn't deliver message to sinks or store.
func (p *Pipe) Process(chunk signal.Float64) (Message, bool) {
	if p.state == Stopped {
		return Message{}, false
	}
	p.chunks(int64(chunk.Size()))
	if err := p.accept(chunk); err != nil {
		p.log.WithField("channels", chunk.NumChannels()).
			WithField("samples", chunk.Size()).
			Warnf("chunk skipped: %v", err)
		p.report(err)
		return Message{}, false
	}

	p.state = p.next(p.buffer.Size())
	if p.state != Processing {
		p.log.WithField("samples", p.buffer.Size()).Debugf("%v", p.state)
		return Message{}, false
	}
	m, ok := p.cycle()
	p.state = Accumulating
	return m, ok
}

// accept buffers the chunk. Until channel count is established, chunks
// with less than two channels are rejected so a stray flat chunk cannot
// fix the count.
func (p *Pipe) accept(chunk signal.Float64) error {
	if p.buffer.NumChannels() == 0 && chunk.NumChannels() < minChannels {
		return &buffer.ShapeError{Got: chunk.NumChannels(), Samples: chunk.Size()}
	}
	return p.buffer.Append(chunk)
}

// cycle runs processing over the whole buffer and trims it to the last
// epoch.
func (p *Pipe) cycle() (Message, bool) {
	defer p.buffer.TrimTo(p.epoch.Samples())
	data := p.buffer.Coalesce()
	p.cycles(int64(data.Size()))

	filtered := p.filter.Apply(data)
	epochs := p.epoch.Extract(filtered)
	if len(epochs) == 0 {
		return Message{}, false
	}

	p.history.Add(epochs...)
	if mean, ok := p.history.Mean(); ok {
		p.log.WithField("epochs", p.history.Len()).Debugf("moving average epoch has %d samples", mean.Size())
	}

	power := p.spectral.BandPower(epochs)
	raw, err := p.scorer.Raw(power)
	if err != nil {
		p.log.WithField("channels", data.NumChannels()).Warnf("asymmetry skipped: %v", err)
		p.report(err)
		return Message{}, false
	}

	mapped := score.Map(raw)
	p.seq++
	m := Message{
		Seq:      p.seq,
		PipeID:   p.uid,
		Time:     time.Now(),
		Raw:      raw,
		Score:    mapped,
		Smoothed: p.average.Add(mapped),
		Epochs:   len(epochs),
		Mood:     score.MoodOf(mapped),
	}
	p.log.WithField("seq", m.Seq).
		WithField("epochs", m.Epochs).
		Debugf("raw %.4f score %.2f", m.Raw, m.Score)
	return m, true
}

// emit delivers message to store and sinks. Failures are logged and
// reported, the loop carries on.
func (p *Pipe) emit(ctx context.Context, sinks []func(Message) error, m Message) {
	if p.store != nil {
		// cycle is already done, its score is saved even if ctx is canceled
		err := p.store.Save(context.WithoutCancel(ctx), store.Record{
			PipeID:   m.PipeID,
			Seq:      m.Seq,
			Time:     m.Time,
			Raw:      m.Raw,
			Score:    m.Score,
			Smoothed: m.Smoothed,
		})
		if err != nil {
			p.log.Warnf("store failed: %v", err)
			p.report(err)
		}
	}
	for i, fn := range sinks {
		if err := fn(m); err != nil {
			p.log.WithField("sink", i).Warnf("sink failed: %v", err)
			p.report(err)
		}
	}
}

// stop flushes all sinks once.
func (p *Pipe) stop() error {
	if p.state == Stopped {
		return nil
	}
	p.state = Stopped
	var errs execErrors
	for _, s := range p.sinks {
		if f, ok := s.(Flusher); ok {
			if err := f.Flush(p.uid); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errs.ret()
}

// report sends error without blocking.
func (p *Pipe) report(err error) {
	select {
	case p.errc <- err:
	default:
	}
}

// meters returns measure functions for chunks and cycles. If metric
// is not enabled, no-op functions are returned.
func (p *Pipe) meters() (metric.MeasureFunc, metric.MeasureFunc) {
	if !p.metered {
		noop := func(int64) {}
		return noop, noop
	}
	sampleRate := p.config.Filter.SampleRate
	return metric.Meter("pipe.chunks", sampleRate)(), metric.Meter("pipe.cycles", sampleRate)()
}
