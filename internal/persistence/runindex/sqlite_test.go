package runindex

import (
	"context"
	"path/filepath"
	"testing"

	"dendrite.sim/internal/sim/aggregate"
)

func TestInsertAndQueryRun(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "index", "runs.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	agg, err := aggregate.New2D(aggregate.Config{
		Stickiness: 1.0,
		Lattice:    aggregate.Square,
		Attractor:  aggregate.Point,
		Seed:       11,
	})
	if err != nil {
		t.Fatalf("new2d: %v", err)
	}
	agg.Generate(50)
	stats := agg.Stats()

	run := Run{
		ID:            "run-11",
		Dimensions:    2,
		Lattice:       aggregate.Square.String(),
		Attractor:     aggregate.Point.String(),
		AttractorSize: 1,
		Stickiness:    agg.Stickiness(),
		Seed:          11,
		Particles:     50,
		Radius:        agg.Radius(),
		SpawnDiameter: agg.SpawnDiameter(),
	}
	ctx := context.Background()
	if err := db.InsertRun(ctx, run, stats); err != nil {
		t.Fatalf("insert: %v", err)
	}

	runs, err := db.Runs(ctx)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	got := runs[0]
	if got.ID != "run-11" || got.Particles != 50 || got.Lattice != "square" {
		t.Fatalf("unexpected run row: %+v", got)
	}
	if got.MeanSteps < 1 {
		t.Fatalf("mean steps %v, want >= 1", got.MeanSteps)
	}
	if got.CreatedAt == "" {
		t.Fatal("created_at not set")
	}

	st, err := db.ParticleStats(ctx, "run-11")
	if err != nil {
		t.Fatalf("particle stats: %v", err)
	}
	if len(st.StepsToStick) != 50 || len(st.BoundaryCollisions) != 50 {
		t.Fatalf("stats lengths %d/%d, want 50/50", len(st.StepsToStick), len(st.BoundaryCollisions))
	}
	for i, v := range st.StepsToStick {
		if v != stats.StepsToStick[i] {
			t.Fatalf("steps[%d] = %d, want %d", i, v, stats.StepsToStick[i])
		}
	}
}

func TestInsertRunLengthMismatch(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	bad := aggregate.ParticleStats{
		StepsToStick:       []int{1, 2},
		BoundaryCollisions: []int{0},
	}
	if err := db.InsertRun(context.Background(), Run{ID: "x"}, bad); err == nil {
		t.Fatal("expected error for mismatched stats lengths")
	}
}
