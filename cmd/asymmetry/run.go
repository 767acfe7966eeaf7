package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dudk/asymmetry/config"
	"github.com/dudk/asymmetry/metric"
	"github.com/dudk/asymmetry/pipe"
	sig "github.com/dudk/asymmetry/signal"
	"github.com/dudk/asymmetry/sink/console"
	"github.com/dudk/asymmetry/sink/parquet"
	"github.com/dudk/asymmetry/source"
	"github.com/dudk/asymmetry/source/edf"
	"github.com/dudk/asymmetry/source/synthetic"
	"github.com/dudk/asymmetry/source/wav"
	"github.com/dudk/asymmetry/store"
)

// inboundBuffer is the capacity of the channel between source and pipe.
const inboundBuffer = 16

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compute asymmetry score of a signal source.",
		Long: `Run reads chunks from synthetic, EDF or WAV source, computes the score
after every chunk once a full epoch is buffered and delivers it to the
console, an optional Parquet file and the score store.

Processing stops at the end of the source or on interrupt.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.run(ctx, cmd.OutOrStdout(), c)
		},
	}
	flags := cmd.Flags()
	flags.String("source", string(config.Synthetic), "Signal source: synthetic, edf or wav")
	flags.String("input", "", "Input file of edf or wav source")
	flags.String("signals", "", "Comma-separated signal indices to read from the input file")
	flags.Int("chunk-size", config.DefaultChunkSize, "Samples per chunk")
	flags.Bool("realtime", false, "Pace file playback at the sample rate")
	flags.Float64("frequency", config.DefaultFrequency, "Frequency of synthetic signal in Hz")
	flags.String("amplitudes", config.DefaultAmplitudes, "Comma-separated amplitudes of synthetic channels")
	flags.Float64("noise", 0, "Standard deviation of synthetic noise")
	flags.Float64("duration", config.DefaultDuration, "Duration of synthetic signal in seconds")
	flags.Bool("quiet", false, "Don't print scores")
	flags.String("parquet", "", "Write scores to Parquet file")
	flags.Bool("metric", false, "Print pipe metrics")
	if err := a.v.BindPFlags(flags); err != nil {
		a.log.Fatalf("Error binding run flags: %v", err)
	}
	return cmd
}

// newPump returns pump for configured source.
func newPump(c config.Config) source.Pump {
	s := c.Source
	switch s.Kind {
	case config.EDF:
		return edf.NewPump(s.Path, c.Pipe.Filter.SampleRate, s.Signals...)
	case config.WAV:
		return wav.NewPump(s.Path, s.Signals...)
	default:
		return &synthetic.Pump{
			SampleRate: c.Pipe.Filter.SampleRate,
			Frequency:  s.Frequency,
			Amplitudes: s.Amplitudes,
			Noise:      s.Noise,
			Samples:    sig.SamplesOf(c.Pipe.Filter.SampleRate, s.Duration),
			Seed:       time.Now().UnixNano(),
		}
	}
}

func (a *app) run(ctx context.Context, w io.Writer, c config.Config) (err error) {
	var sourceOptions []source.Option
	if c.Source.Realtime {
		sourceOptions = append(sourceOptions, source.Realtime())
	}
	src, err := source.New("", newPump(c), c.Source.ChunkSize, sourceOptions...)
	if err != nil {
		return err
	}
	// file sample rate is authoritative
	if sr := src.SampleRate(); sr != c.Pipe.Filter.SampleRate {
		a.log.Infof("using source sample rate %d Hz instead of %d Hz", sr, c.Pipe.Filter.SampleRate)
		c.Pipe.Filter.SampleRate = sr
	}

	st, err := store.Open(ctx, c.Store, c.StoreDSN)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, st.Close())
	}()

	sum := &summary{}
	sinks := []pipe.Sink{sum}
	if c.Console {
		sinks = append(sinks, console.New(w))
	}
	if c.Parquet != "" {
		sinks = append(sinks, parquet.New(c.Parquet))
	}
	pipeOptions := []pipe.Option{
		pipe.WithLogger(a.log),
		pipe.WithSinks(sinks...),
		pipe.WithStore(st),
	}
	if c.Metric {
		pipeOptions = append(pipeOptions, pipe.WithMetric())
	}
	p, err := pipe.New(c.Pipe, pipeOptions...)
	if err != nil {
		return err
	}

	start := time.Now()
	in := make(chan sig.Float64, inboundBuffer)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(in)
		return src.Run(gctx, in)
	})
	g.Go(func() error {
		return p.Run(gctx, in)
	})
	err = g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		err = nil
	}
	if err != nil {
		return err
	}

	sum.skipped = drain(p.Errors())
	sum.elapsed = time.Since(start)
	if err := sum.render(w, p, c); err != nil {
		return err
	}
	if c.Metric {
		return renderMetrics(w)
	}
	return nil
}

// drain counts reported errors without blocking.
func drain(errc <-chan error) int {
	n := 0
	for {
		select {
		case <-errc:
			n++
		default:
			return n
		}
	}
}

func renderMetrics(w io.Writer) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()
	headers := []string{
		"Component",
		metric.MessageCounter,
		metric.SampleCounter,
		metric.DurationCounter,
		metric.LatencyCounter,
	}
	table.Header(headers)
	var data [][]string
	all := metric.GetAll()
	for _, component := range metric.Components() {
		counters := all[component]
		row := []string{component}
		for _, h := range headers[1:] {
			row = append(row, counters[h])
		}
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	return table.Render()
}
