// Package parquet exports score history to Parquet files.
package parquet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/dudk/asymmetry/pipe"
)

// Row is a single score in the exported file.
type Row struct {
	PipeID   string    `parquet:"pipe_id,snappy"`
	Seq      int64     `parquet:"seq,snappy"`
	Time     time.Time `parquet:"time,snappy"`
	Raw      float64   `parquet:"raw,snappy"`
	Score    float64   `parquet:"score,snappy"`
	Smoothed float64   `parquet:"smoothed,snappy"`
	Epochs   int32     `parquet:"epochs,snappy"`
	Mood     string    `parquet:"mood,snappy"`
}

// Sink buffers messages and writes them to the file on flush.
type Sink struct {
	m    sync.Mutex
	path string
	rows []Row
}

// New returns sink which writes into provided path. Existing file is
// overwritten on flush.
func New(path string) *Sink {
	return &Sink{path: path}
}

// Path returns output file path.
func (s *Sink) Path() string {
	return s.path
}

// Sink implements pipe.Sink.
func (s *Sink) Sink(pipeID string) (func(pipe.Message) error, error) {
	return func(m pipe.Message) error {
		s.m.Lock()
		defer s.m.Unlock()
		s.rows = append(s.rows, RowOf(m))
		return nil
	}, nil
}

// Flush writes buffered rows. Rows are kept if write failed.
func (s *Sink) Flush(pipeID string) error {
	s.m.Lock()
	defer s.m.Unlock()
	if err := Write(s.path, s.rows); err != nil {
		return err
	}
	s.rows = nil
	return nil
}

// RowOf converts message into row.
func RowOf(m pipe.Message) Row {
	return Row{
		PipeID:   m.PipeID,
		Seq:      int64(m.Seq),
		Time:     m.Time,
		Raw:      m.Raw,
		Score:    m.Score,
		Smoothed: m.Smoothed,
		Epochs:   int32(m.Epochs),
		Mood:     m.Mood.String(),
	}
}

// Write writes rows to a Parquet file.
func Write(path string, rows []Row) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("parquet: create output file: %w", err)
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()

	writer := parquet.NewGenericWriter[Row](file)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("parquet: write rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("parquet: close writer: %w", err)
	}
	return nil
}

// Read reads all rows of the Parquet file.
func Read(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("parquet: open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[Row](file)
	defer func() { _ = reader.Close() }()

	rows := make([]Row, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parquet: read %s: %w", path, err)
	}
	return rows[:n], nil
}
