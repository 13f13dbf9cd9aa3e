package aggregate

import (
	"errors"
	"testing"
)

func TestNew3D_Validation(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want error
	}{
		{"stickiness out of range", Config{Stickiness: 2, Attractor: Point}, ErrInvalidParameter},
		{"line in 3d", Config{Stickiness: 1, Attractor: Line, AttractorSize: 4}, ErrInvalidTopology},
		{"circle in 3d", Config{Stickiness: 1, Attractor: Circle, AttractorSize: 4}, ErrInvalidTopology},
		{"plane size zero", Config{Stickiness: 1, Attractor: Plane}, ErrInvalidTopology},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New3D(tc.cfg); !errors.Is(err, tc.want) {
				t.Fatalf("New3D(%+v) err = %v, want %v", tc.cfg, err, tc.want)
			}
		})
	}
}

func TestGenerate3D_SizeDistinctAndStats(t *testing.T) {
	const n = 200
	a, err := New3D(Config{Stickiness: 1, Lattice: Square, Attractor: Point, Seed: 11})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	a.Generate(n)

	if a.Size() != n+a.SeedSize() {
		t.Fatalf("size = %d, want %d", a.Size(), n+a.SeedSize())
	}
	seen := make(map[Vec3i]struct{}, a.Size())
	for _, p := range a.Points() {
		if _, dup := seen[p]; dup {
			t.Fatalf("duplicate coordinate %v", p)
		}
		seen[p] = struct{}{}
	}
	st := a.Stats()
	for i := 0; i < n; i++ {
		if st.StepsToStick[i] < 1 {
			t.Fatalf("particle %d: steps-to-stick %d < 1", i, st.StepsToStick[i])
		}
	}
}

func TestGenerate3D_FirstParticleAdjacentToOrigin(t *testing.T) {
	for seed := int64(0); seed < 5; seed++ {
		a, err := New3D(Config{Stickiness: 1, Lattice: Square, Attractor: Point, Seed: seed})
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		a.Generate(1)
		p := a.Points()[1]
		if absInt(p.X)+absInt(p.Y)+absInt(p.Z) != 1 {
			t.Fatalf("seed %d: first particle %v is not a unit neighbor of the origin", seed, p)
		}
	}
}

func TestGenerate3D_Deterministic(t *testing.T) {
	run := func() *Aggregate3D {
		a, err := New3D(Config{Stickiness: 0.8, Lattice: Triangle, Attractor: Point, Seed: 21})
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		a.Generate(80)
		return a
	}
	pa, pb := run().Points(), run().Points()
	if len(pa) != len(pb) {
		t.Fatalf("sizes differ: %d vs %d", len(pa), len(pb))
	}
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("point %d differs: %v vs %v", i, pa[i], pb[i])
		}
	}
}

func TestStream3D_PlaneSpawnExtentMonotonic(t *testing.T) {
	a, err := New3D(Config{Stickiness: 1, Lattice: Square, Attractor: Plane, AttractorSize: 8, Seed: 13})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if a.SeedSize() != 64 {
		t.Fatalf("plane seed size = %d, want 64", a.SeedSize())
	}
	st := a.Stream(100)
	prev := a.SpawnDiameter()
	for {
		snap, ok := st.Next()
		if !ok {
			break
		}
		if snap.SpawnDiameter < prev {
			t.Fatalf("spawn extent shrank: %d -> %d", prev, snap.SpawnDiameter)
		}
		prev = snap.SpawnDiameter
	}
	if a.Count() != 100 {
		t.Fatalf("count = %d, want 100", a.Count())
	}
}
