package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// File keeps the score in a text file with two decimals. File is
// replaced atomically, so readers never see partial value.
type File struct {
	m    sync.Mutex
	path string
}

// NewFile returns file store. Directory must exist.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("file store requires path")
	}
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("file store directory is not available: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("file store path %q is not a directory", dir)
	}
	return &File{path: path}, nil
}

// Path returns file path.
func (f *File) Path() string {
	return f.path
}

// Save overwrites the file with record score.
func (f *File) Save(ctx context.Context, r Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.m.Lock()
	defer f.m.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(f.path), "."+filepath.Base(f.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.WriteString(strconv.FormatFloat(r.Score, 'f', 2, 64)); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write score: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmp.Name(), f.path)
}

// Latest reads score from the file. Only Score field is filled.
func (f *File) Latest(ctx context.Context) (Record, bool, error) {
	f.m.Lock()
	defer f.m.Unlock()
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return Record{}, false, fmt.Errorf("parse score %q: %w", data, err)
	}
	return Record{Score: v}, true, nil
}

// Close does nothing.
func (f *File) Close() error {
	return nil
}
