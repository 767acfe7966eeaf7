package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudk/asymmetry/store"
)

func TestParseBackend(t *testing.T) {
	tests := []struct {
		value    string
		expected store.Backend
		err      bool
	}{
		{value: "file", expected: store.FileBackend},
		{value: " SQLite ", expected: store.SQLiteBackend},
		{value: "postgresql", expected: store.PostgresBackend},
		{value: "mysql", expected: store.MySQLBackend},
		{value: "", expected: store.NoneBackend},
		{value: "redis", err: true},
	}
	for _, test := range tests {
		b, err := store.ParseBackend(test.value)
		if test.err {
			assert.True(t, errors.Is(err, store.ErrBackend), test.value)
			continue
		}
		assert.NoError(t, err, test.value)
		assert.Equal(t, test.expected, b, test.value)
	}
}

func TestFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "score.txt")
	s, err := store.Open(ctx, store.FileBackend, path)
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Latest(ctx)
	assert.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(ctx, store.Record{Score: 42.345}))
	require.NoError(t, s.Save(ctx, store.Record{Score: 61.5}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "61.50", string(data))

	r, ok, err := s.Latest(ctx)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 61.5, r.Score)

	// no temp files are left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, 1, len(entries))
}

func TestFileErrors(t *testing.T) {
	_, err := store.NewFile("")
	assert.Error(t, err)
	_, err = store.NewFile(filepath.Join(t.TempDir(), "missing", "score.txt"))
	assert.Error(t, err)

	s, err := store.NewFile(filepath.Join(t.TempDir(), "score.txt"))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, s.Save(ctx, store.Record{Score: 1}))
}

func TestSQLite(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "asymmetry.db")
	s, err := store.NewSQL(ctx, store.SQLiteBackend, dsn)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	_, ok, err := s.Latest(ctx)
	assert.NoError(t, err)
	assert.False(t, ok)

	now := time.Now()
	records := []store.Record{
		{PipeID: "p", Seq: 1, Time: now, Raw: -0.01, Score: 37.5, Smoothed: 37.5},
		{PipeID: "p", Seq: 2, Time: now.Add(time.Second), Raw: 0.01, Score: 62.5, Smoothed: 50},
	}
	for _, r := range records {
		require.NoError(t, s.Save(ctx, r))
	}

	latest, ok, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(2), latest.Seq)
	assert.Equal(t, 62.5, latest.Score)
	assert.Equal(t, 50.0, latest.Smoothed)
	assert.True(t, records[1].Time.Equal(latest.Time))

	history, err := s.History(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 2, len(history))
	assert.Equal(t, uint64(1), history[0].Seq)
	assert.Equal(t, uint64(2), history[1].Seq)

	// reopen keeps the value
	require.NoError(t, s.Close())
	s, err = store.NewSQL(ctx, store.SQLiteBackend, dsn)
	require.NoError(t, err)
	latest, ok, err = s.Latest(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 62.5, latest.Score)
}

func TestNone(t *testing.T) {
	ctx := context.Background()
	s, err := store.Open(ctx, store.NoneBackend, "")
	require.NoError(t, err)
	assert.NoError(t, s.Save(ctx, store.Record{Score: 1}))
	_, ok, err := s.Latest(ctx)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, s.Close())
}
