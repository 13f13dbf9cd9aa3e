// Package runindex keeps a queryable sqlite index of completed growth
// runs and their per-particle statistics. It is a read-model for
// analysis tooling; the engine never touches it and a missing index
// never affects generation.
package runindex

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"dendrite.sim/internal/sim/aggregate"
)

type DB struct {
	db *sql.DB
}

// Run is one indexed generation run.
type Run struct {
	ID        string
	CreatedAt string

	Dimensions    int
	Lattice       string
	Attractor     string
	AttractorSize int
	Stickiness    float64
	Seed          int64
	Particles     int

	Radius        float64
	SpawnDiameter int
	MeanSteps     float64
	MeanBoundary  float64
}

func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("runindex: empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			dimensions INTEGER NOT NULL,
			lattice TEXT NOT NULL,
			attractor TEXT NOT NULL,
			attractor_size INTEGER NOT NULL,
			stickiness REAL NOT NULL,
			seed INTEGER NOT NULL,
			particles INTEGER NOT NULL,
			radius REAL NOT NULL,
			spawn_diameter INTEGER NOT NULL,
			mean_steps REAL NOT NULL,
			mean_boundary REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS particles (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			idx INTEGER NOT NULL,
			steps_to_stick INTEGER NOT NULL,
			boundary_collisions INTEGER NOT NULL,
			PRIMARY KEY (run_id, idx)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores a finished run and its particle statistics in one
// transaction. Means are derived from stats here so callers only pass
// raw engine output.
func (d *DB) InsertRun(ctx context.Context, r Run, stats aggregate.ParticleStats) error {
	if r.CreatedAt == "" {
		r.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	n := len(stats.StepsToStick)
	if n != len(stats.BoundaryCollisions) {
		return fmt.Errorf("runindex: stats length mismatch %d/%d", n, len(stats.BoundaryCollisions))
	}
	var sumSteps, sumBound int
	for i := 0; i < n; i++ {
		sumSteps += stats.StepsToStick[i]
		sumBound += stats.BoundaryCollisions[i]
	}
	if n > 0 {
		r.MeanSteps = float64(sumSteps) / float64(n)
		r.MeanBoundary = float64(sumBound) / float64(n)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs
		(id, created_at, dimensions, lattice, attractor, attractor_size,
		 stickiness, seed, particles, radius, spawn_diameter, mean_steps, mean_boundary)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CreatedAt, r.Dimensions, r.Lattice, r.Attractor, r.AttractorSize,
		r.Stickiness, r.Seed, r.Particles, r.Radius, r.SpawnDiameter, r.MeanSteps, r.MeanBoundary)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO particles
		(run_id, idx, steps_to_stick, boundary_collisions) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, r.ID, i, stats.StepsToStick[i], stats.BoundaryCollisions[i]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Runs lists indexed runs, newest first.
func (d *DB) Runs(ctx context.Context) ([]Run, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT
		id, created_at, dimensions, lattice, attractor, attractor_size,
		stickiness, seed, particles, radius, spawn_diameter, mean_steps, mean_boundary
		FROM runs ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var r Run
		err := rows.Scan(&r.ID, &r.CreatedAt, &r.Dimensions, &r.Lattice, &r.Attractor,
			&r.AttractorSize, &r.Stickiness, &r.Seed, &r.Particles, &r.Radius,
			&r.SpawnDiameter, &r.MeanSteps, &r.MeanBoundary)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ParticleStats loads the per-particle counters of one run in
// attachment order.
func (d *DB) ParticleStats(ctx context.Context, runID string) (aggregate.ParticleStats, error) {
	var st aggregate.ParticleStats
	rows, err := d.db.QueryContext(ctx,
		`SELECT steps_to_stick, boundary_collisions FROM particles
		 WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return st, err
	}
	defer rows.Close()
	for rows.Next() {
		var steps, bound int
		if err := rows.Scan(&steps, &bound); err != nil {
			return st, err
		}
		st.StepsToStick = append(st.StepsToStick, steps)
		st.BoundaryCollisions = append(st.BoundaryCollisions, bound)
	}
	return st, rows.Err()
}

func (d *DB) Close() error { return d.db.Close() }
