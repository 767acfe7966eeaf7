// Package console prints every score as a colored line.
package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/dudk/asymmetry/pipe"
	"github.com/dudk/asymmetry/score"
)

var (
	positiveColor = color.New(color.FgGreen, color.Bold)
	neutralColor  = color.New(color.FgYellow)
	negativeColor = color.New(color.FgRed)
)

// Sink writes a line per message.
type Sink struct {
	m     sync.Mutex
	w     io.Writer
	lines int
}

// New returns sink which writes into w. If w is nil, color.Output is used.
func New(w io.Writer) *Sink {
	if w == nil {
		w = color.Output
	}
	return &Sink{w: w}
}

// Sink implements pipe.Sink.
func (s *Sink) Sink(pipeID string) (func(pipe.Message) error, error) {
	return func(m pipe.Message) error {
		s.m.Lock()
		defer s.m.Unlock()
		_, err := fmt.Fprintf(s.w, "%s #%d raw %+.4f score %6.2f smoothed %6.2f %s\n",
			m.Time.Format("15:04:05.000"),
			m.Seq,
			m.Raw,
			m.Score,
			m.Smoothed,
			Label(m.Mood),
		)
		if err != nil {
			return fmt.Errorf("console: %w", err)
		}
		s.lines++
		return nil
	}, nil
}

// Lines returns number of printed lines.
func (s *Sink) Lines() int {
	s.m.Lock()
	defer s.m.Unlock()
	return s.lines
}

// Label returns mood name colored for terminal output.
func Label(mood score.Mood) string {
	switch mood {
	case score.Positive:
		return positiveColor.Sprint(mood)
	case score.Neutral:
		return neutralColor.Sprint(mood)
	default:
		return negativeColor.Sprint(mood)
	}
}
