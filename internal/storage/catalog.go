// Package storage persists run history and exports trajectories.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at TEXT NOT NULL,
    seed INTEGER NOT NULL,
    method TEXT NOT NULL,
    alpha0 REAL NOT NULL,
    beta0 REAL NOT NULL,
    k1 REAL NOT NULL,
    k2 REAL NOT NULL,
    t_end REAL NOT NULL,
    fps REAL NOT NULL,
    frames INTEGER NOT NULL DEFAULT 0,
    movie TEXT,
    status TEXT NOT NULL,   -- 'success' or 'failed'
    stage TEXT,             -- failing stage, if any
    error TEXT,
    energy_drift REAL,
    elapsed_ms INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`

// timeLayout has a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one catalogued pipeline run.
type Run struct {
	ID        int64
	CreatedAt time.Time
	Seed      int64
	Method    string
	Alpha0    float64
	Beta0     float64
	K1        float64
	K2        float64
	TEnd      float64
	FPS       float64
	Frames    int
	Movie     string
	Status    string
	Stage     string
	Error     string
	Drift     float64
	Elapsed   time.Duration
}

// Catalog is a SQLite-backed run history.
type Catalog struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the catalog database at path. The
// special path ":memory:" gives a private in-memory catalog.
func Open(path string) (*Catalog, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create catalog directory: %w", err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Catalog{db: db, path: path}, nil
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

// Record inserts r and returns its id. A zero CreatedAt is set to now.
func (c *Catalog) Record(ctx context.Context, r Run) (int64, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	res, err := c.db.ExecContext(ctx, `
		INSERT INTO runs (created_at, seed, method, alpha0, beta0, k1, k2, t_end, fps,
			frames, movie, status, stage, error, energy_drift, elapsed_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.CreatedAt.UTC().Format(timeLayout), r.Seed, r.Method,
		r.Alpha0, r.Beta0, r.K1, r.K2, r.TEnd, r.FPS,
		r.Frames, nullString(r.Movie), r.Status, nullString(r.Stage), nullString(r.Error),
		r.Drift, r.Elapsed.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record run: %w", err)
	}
	return res.LastInsertId()
}

// List returns up to limit runs, newest first. limit <= 0 means all.
func (c *Catalog) List(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT id, created_at, seed, method, alpha0, beta0, k1, k2, t_end, fps,
		frames, movie, status, stage, error, energy_drift, elapsed_ms
		FROM runs ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                   Run
			created             string
			movie, stage, errTx sql.NullString
			drift               sql.NullFloat64
			elapsed             int64
		)
		if err := rows.Scan(&r.ID, &created, &r.Seed, &r.Method, &r.Alpha0, &r.Beta0, &r.K1, &r.K2,
			&r.TEnd, &r.FPS, &r.Frames, &movie, &r.Status, &stage, &errTx, &drift, &elapsed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if r.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("run %d: bad timestamp %q: %w", r.ID, created, err)
		}
		r.Movie, r.Stage, r.Error = movie.String, stage.String, errTx.String
		r.Drift = drift.Float64
		r.Elapsed = time.Duration(elapsed) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
