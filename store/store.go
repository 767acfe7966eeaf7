// Package store persists the latest asymmetry score for external
// readers.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Record is a persisted score.
type Record struct {
	PipeID   string
	Seq      uint64
	Time     time.Time
	Raw      float64
	Score    float64
	Smoothed float64
}

// Store keeps the latest record. Save overwrites previous value.
type Store interface {
	Save(context.Context, Record) error
	// Latest returns false if nothing was saved yet.
	Latest(context.Context) (Record, bool, error)
	Close() error
}

// Backend is a kind of store.
type Backend string

// Supported backends.
const (
	FileBackend     Backend = "file"
	SQLiteBackend   Backend = "sqlite"
	PostgresBackend Backend = "postgres"
	MySQLBackend    Backend = "mysql"
	NoneBackend     Backend = "none"
)

// ErrBackend is returned for unknown backend.
var ErrBackend = errors.New("unsupported store backend")

// ParseBackend converts backend name.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case FileBackend, SQLiteBackend, PostgresBackend, MySQLBackend, NoneBackend:
		return b, nil
	case "postgresql":
		return PostgresBackend, nil
	case "":
		return NoneBackend, nil
	}
	return "", fmt.Errorf("%w: %q, must be file, sqlite, postgres, mysql or none", ErrBackend, s)
}

// Open returns store for provided backend. For file backend dsn is a
// path, for sql backends it's a connection string.
func Open(ctx context.Context, backend Backend, dsn string) (Store, error) {
	switch backend {
	case FileBackend:
		return NewFile(dsn)
	case SQLiteBackend, PostgresBackend, MySQLBackend:
		return NewSQL(ctx, backend, dsn)
	case NoneBackend:
		return None{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrBackend, backend)
}

// None is a store which keeps nothing.
type None struct{}

// Save does nothing.
func (None) Save(context.Context, Record) error { return nil }

// Latest always reports no record.
func (None) Latest(context.Context) (Record, bool, error) { return Record{}, false, nil }

// Close does nothing.
func (None) Close() error { return nil }
