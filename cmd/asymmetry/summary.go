package main

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/dudk/asymmetry/config"
	"github.com/dudk/asymmetry/pipe"
	"github.com/dudk/asymmetry/sink/console"
)

// summary is a sink which keeps totals of the run.
type summary struct {
	m        sync.Mutex
	messages int
	last     pipe.Message
	min, max float64
	skipped  int
	elapsed  time.Duration
}

// Sink implements pipe.Sink.
func (s *summary) Sink(pipeID string) (func(pipe.Message) error, error) {
	return func(m pipe.Message) error {
		s.m.Lock()
		defer s.m.Unlock()
		if s.messages == 0 || m.Score < s.min {
			s.min = m.Score
		}
		if s.messages == 0 || m.Score > s.max {
			s.max = m.Score
		}
		s.messages++
		s.last = m
		return nil
	}, nil
}

func (s *summary) render(w io.Writer, p *pipe.Pipe, c config.Config) error {
	s.m.Lock()
	defer s.m.Unlock()

	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()
	table.Header([]string{"Pipe", "Scores", "Last", "Smoothed", "Min", "Max", "Mood", "Skipped", "Elapsed"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	row := []string{p.String(), strconv.Itoa(s.messages), "-", "-", "-", "-", "-", strconv.Itoa(s.skipped), s.elapsed.Round(time.Millisecond).String()}
	if s.messages > 0 {
		row[2] = fmt.Sprintf("%.2f", s.last.Score)
		row[3] = fmt.Sprintf("%.2f", s.last.Smoothed)
		row[4] = fmt.Sprintf("%.2f", s.min)
		row[5] = fmt.Sprintf("%.2f", s.max)
		row[6] = console.Label(s.last.Mood)
	}
	if err := table.Bulk([][]string{row}); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	f := c.Pipe.Filter
	_, err := fmt.Fprintf(w, "%v %.1f-%.1f Hz at %d Hz, channels %d and %d, store: %s\n",
		f.Kind, f.LowCut, f.HighCut, f.SampleRate, c.Pipe.Channels[0], c.Pipe.Channels[1], c.Store)
	return err
}
