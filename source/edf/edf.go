// Package edf provides a pump of EDF biosignal recordings.
package edf

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/OpenPSG/edf"

	"github.com/dudk/asymmetry/signal"
)

// ErrNoSignals is returned when pump has no signals to read.
var ErrNoSignals = errors.New("no signals selected")

// Pump reads selected signals of EDF file. All selected signals are
// expected to have the same sample rate, which is provided by caller.
// This component cannot be reused for consequent runs.
type Pump struct {
	path       string
	sampleRate int
	signals    []int
	file       *os.File
}

// NewPump creates a new edf pump for signals with provided indices.
func NewPump(path string, sampleRate int, signals ...int) *Pump {
	return &Pump{
		path:       path,
		sampleRate: sampleRate,
		signals:    signals,
	}
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

// Pump opens the file and returns function which reads bufferSize
// samples of every selected signal.
func (p *Pump) Pump(pipeID string, bufferSize int) (func() (signal.Float64, error), int, int, error) {
	if len(p.signals) == 0 {
		return nil, 0, 0, ErrNoSignals
	}
	if p.sampleRate <= 0 {
		return nil, 0, 0, fmt.Errorf("edf sample rate must be positive, got %d", p.sampleRate)
	}
	file, err := os.Open(p.path)
	if err != nil {
		return nil, 0, 0, err
	}
	reader, err := edf.Open(file)
	if err != nil {
		_ = file.Close()
		return nil, 0, 0, fmt.Errorf("edf is not valid: %w", err)
	}
	readers := make([]*edf.SignalReader, 0, len(p.signals))
	for _, index := range p.signals {
		sr, err := reader.Signal(index)
		if err != nil {
			_ = file.Close()
			return nil, 0, 0, fmt.Errorf("signal %d: %w", index, err)
		}
		readers = append(readers, sr)
	}
	p.file = file

	return func() (signal.Float64, error) {
		b := signal.EmptyFloat64(len(readers), bufferSize)
		size := bufferSize
		for i, sr := range readers {
			n, err := sr.Read(b[i])
			if err != nil && !errors.Is(err, io.EOF) {
				return nil, err
			}
			if n < size {
				size = n
			}
		}
		if size == 0 {
			return nil, io.EOF
		}
		if size < bufferSize {
			for i := range b {
				b[i] = b[i][:size]
			}
			return b, io.ErrUnexpectedEOF
		}
		return b, nil
	}, p.sampleRate, len(readers), nil
}

// Label describes a signal written by Write.
type Label struct {
	Name      string
	Dimension string
	Min, Max  float64
}

// Write saves signal into a new EDF file with one second records.
// Every channel is stored as a separate signal.
func Write(path string, sampleRate int, labels []Label, data signal.Float64) error {
	if len(labels) != data.NumChannels() {
		return fmt.Errorf("expected %d labels, got %d", data.NumChannels(), len(labels))
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	hdr := edf.Header{
		Version:            edf.Version0,
		PatientID:          "X",
		RecordingID:        "asymmetry",
		StartTime:          time.Now(),
		DataRecordDuration: time.Second,
		SignalCount:        len(labels),
	}
	for _, l := range labels {
		hdr.Signals = append(hdr.Signals, edf.SignalHeader{
			Label:             l.Name,
			PhysicalDimension: l.Dimension,
			PhysicalMin:       l.Min,
			PhysicalMax:       l.Max,
			DigitalMin:        -32768,
			DigitalMax:        32767,
			SamplesPerRecord:  sampleRate,
		})
	}
	w, err := edf.Create(f, hdr)
	if err != nil {
		_ = f.Close()
		return err
	}
	// incomplete trailing record is dropped
	for start := 0; start+sampleRate <= data.Size(); start += sampleRate {
		if err := w.WriteRecord(data.Slice(start, sampleRate)); err != nil {
			_ = f.Close()
			return err
		}
	}
	if err := w.Close(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
