package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

const (
	latestTable  = "latest_score"
	historyTable = "score_history"
	// latestID is the key of the only row in latest table.
	latestID = 1
)

// SQL keeps the latest score in a one-row table and appends every score
// to the history table.
type SQL struct {
	db      *sql.DB
	backend Backend
}

// NewSQL connects to the database and creates tables if needed.
func NewSQL(ctx context.Context, backend Backend, dsn string) (*SQL, error) {
	var driverName string
	switch backend {
	case SQLiteBackend:
		driverName = "sqlite"
		if dsn == "" {
			dsn = "asymmetry.db"
		}
	case MySQLBackend:
		// user:password@tcp(host:port)/dbname
		driverName = "mysql"
	case PostgresBackend:
		// host=localhost port=5432 user=postgres dbname=asymmetry
		driverName = "pgx"
	default:
		return nil, fmt.Errorf("%w: %q is not a sql backend", ErrBackend, backend)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", backend, err)
	}
	if backend == SQLiteBackend {
		// single connection avoids "database is locked" errors
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s store: %w", backend, err)
	}
	for _, query := range createQueries(backend) {
		if _, err := db.ExecContext(ctx, query); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create %s store tables: %w", backend, err)
		}
	}
	return &SQL{db: db, backend: backend}, nil
}

func createQueries(backend Backend) []string {
	var double, text, bigint string
	switch backend {
	case MySQLBackend:
		double, text, bigint = "DOUBLE", "VARCHAR(64)", "BIGINT"
	case PostgresBackend:
		double, text, bigint = "DOUBLE PRECISION", "TEXT", "BIGINT"
	default:
		double, text, bigint = "REAL", "TEXT", "INTEGER"
	}
	columns := fmt.Sprintf(`pipe_id %[2]s NOT NULL,
				seq %[3]s NOT NULL,
				ts %[3]s NOT NULL,
				raw %[1]s NOT NULL,
				score %[1]s NOT NULL,
				smoothed %[1]s NOT NULL`, double, text, bigint)
	return []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id INTEGER PRIMARY KEY,
				%s
			)`, latestTable, columns),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				%s
			)`, historyTable, columns),
	}
}

// placeholders returns n parameter placeholders for the backend.
func (s *SQL) placeholders(n int) []interface{} {
	p := make([]interface{}, n)
	for i := range p {
		if s.backend == PostgresBackend {
			p[i] = fmt.Sprintf("$%d", i+1)
		} else {
			p[i] = "?"
		}
	}
	return p
}

func (s *SQL) upsertQuery() string {
	columns := "id, pipe_id, seq, ts, raw, score, smoothed"
	values := fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s", s.placeholders(7)...)
	switch s.backend {
	case MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) AS new
			ON DUPLICATE KEY UPDATE pipe_id = new.pipe_id, seq = new.seq, ts = new.ts, raw = new.raw, score = new.score, smoothed = new.smoothed`, latestTable, columns, values)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)
			ON CONFLICT (id) DO UPDATE SET pipe_id = excluded.pipe_id, seq = excluded.seq, ts = excluded.ts, raw = excluded.raw, score = excluded.score, smoothed = excluded.smoothed`, latestTable, columns, values)
	}
}

func (s *SQL) historyQuery() string {
	values := fmt.Sprintf("%s, %s, %s, %s, %s, %s", s.placeholders(6)...)
	return fmt.Sprintf(`INSERT INTO %s (pipe_id, seq, ts, raw, score, smoothed) VALUES (%s)`, historyTable, values)
}

// Save overwrites the latest score and appends it to the history in one
// transaction.
func (s *SQL) Save(ctx context.Context, r Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	ts := r.Time.UnixNano()
	if _, err := tx.ExecContext(ctx, s.upsertQuery(), latestID, r.PipeID, int64(r.Seq), ts, r.Raw, r.Score, r.Smoothed); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("save latest score: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.historyQuery(), r.PipeID, int64(r.Seq), ts, r.Raw, r.Score, r.Smoothed); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("save score history: %w", err)
	}
	return tx.Commit()
}

// Latest returns the latest saved record.
func (s *SQL) Latest(ctx context.Context) (Record, bool, error) {
	query := fmt.Sprintf(`SELECT pipe_id, seq, ts, raw, score, smoothed FROM %s WHERE id = %s`, latestTable, s.placeholders(1)[0])
	var (
		r   Record
		seq int64
		ts  int64
	)
	err := s.db.QueryRowContext(ctx, query, latestID).Scan(&r.PipeID, &seq, &ts, &r.Raw, &r.Score, &r.Smoothed)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	r.Seq = uint64(seq)
	r.Time = time.Unix(0, ts)
	return r, true, nil
}

// History returns the last n records in order they were saved.
func (s *SQL) History(ctx context.Context, n int) ([]Record, error) {
	query := fmt.Sprintf(`SELECT pipe_id, seq, ts, raw, score, smoothed FROM %s ORDER BY ts DESC, seq DESC LIMIT %d`, historyTable, n)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var (
			r       Record
			seq, ts int64
		)
		if err := rows.Scan(&r.PipeID, &seq, &ts, &r.Raw, &r.Score, &r.Smoothed); err != nil {
			return nil, err
		}
		r.Seq = uint64(seq)
		r.Time = time.Unix(0, ts)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// Close closes database connection.
func (s *SQL) Close() error {
	return s.db.Close()
}
