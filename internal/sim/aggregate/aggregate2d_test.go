package aggregate

import (
	"errors"
	"testing"
	"time"
)

// scriptSource replays a fixed draw sequence, then keeps returning the
// last value.
type scriptSource struct {
	draws []float64
	i     int
}

func (s *scriptSource) Float64() float64 {
	if s.i >= len(s.draws) {
		return s.draws[len(s.draws)-1]
	}
	v := s.draws[s.i]
	s.i++
	return v
}

func TestNew2D_Validation(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want error
	}{
		{"stickiness negative", Config{Stickiness: -0.1, Attractor: Point}, ErrInvalidParameter},
		{"stickiness above one", Config{Stickiness: 1.1, Attractor: Point}, ErrInvalidParameter},
		{"sphere in 2d", Config{Stickiness: 1, Attractor: Sphere, AttractorSize: 4}, ErrInvalidTopology},
		{"plane in 2d", Config{Stickiness: 1, Attractor: Plane, AttractorSize: 4}, ErrInvalidTopology},
		{"line size zero", Config{Stickiness: 1, Attractor: Line}, ErrInvalidTopology},
		{"circle size zero", Config{Stickiness: 1, Attractor: Circle}, ErrInvalidTopology},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New2D(tc.cfg); !errors.Is(err, tc.want) {
				t.Fatalf("New2D(%+v) err = %v, want %v", tc.cfg, err, tc.want)
			}
		})
	}
}

func TestNew2D_SeedOnly(t *testing.T) {
	a, err := New2D(Config{Stickiness: 1, Attractor: Point, Seed: 1})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	a.Generate(0)
	if a.Size() != 1 || a.SeedSize() != 1 || a.Count() != 0 {
		t.Fatalf("seed-only aggregate: size=%d seed=%d count=%d", a.Size(), a.SeedSize(), a.Count())
	}
	if got := a.Points()[0]; got != (Vec2i{}) {
		t.Fatalf("point seed = %v, want origin", got)
	}
	if a.SpawnDiameter() != DefaultBoundaryOffset {
		t.Fatalf("initial spawn diameter = %d, want %d", a.SpawnDiameter(), DefaultBoundaryOffset)
	}
}

func TestGenerate2D_SizeDistinctAndStats(t *testing.T) {
	const n = 400
	a, err := New2D(Config{Stickiness: 1, Lattice: Square, Attractor: Point, Seed: 42})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	a.Generate(n)

	if a.Size() != n+a.SeedSize() {
		t.Fatalf("size = %d, want %d", a.Size(), n+a.SeedSize())
	}
	seen := make(map[Vec2i]struct{}, a.Size())
	for _, p := range a.Points() {
		if _, dup := seen[p]; dup {
			t.Fatalf("duplicate coordinate %v", p)
		}
		seen[p] = struct{}{}
	}
	st := a.Stats()
	if len(st.StepsToStick) != n || len(st.BoundaryCollisions) != n {
		t.Fatalf("stats lengths = %d/%d, want %d", len(st.StepsToStick), len(st.BoundaryCollisions), n)
	}
	for i := 0; i < n; i++ {
		if st.StepsToStick[i] < 1 {
			t.Fatalf("particle %d: steps-to-stick %d < 1", i, st.StepsToStick[i])
		}
		if st.BoundaryCollisions[i] < 0 {
			t.Fatalf("particle %d: boundary collisions %d < 0", i, st.BoundaryCollisions[i])
		}
	}
}

func TestGenerate2D_FirstParticleAdjacentToOrigin(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		a, err := New2D(Config{Stickiness: 1, Lattice: Square, Attractor: Point, Seed: seed})
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		a.Generate(1)
		p := a.Points()[1]
		if absInt(p.X)+absInt(p.Y) != 1 {
			t.Fatalf("seed %d: first particle %v is not a unit neighbor of the origin", seed, p)
		}
	}
}

func TestStream2D_SpawnDiameterMonotonic(t *testing.T) {
	a, err := New2D(Config{Stickiness: 0.6, Lattice: Square, Attractor: Point, Seed: 7})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	st := a.Stream(300)
	prev := a.SpawnDiameter()
	for {
		snap, ok := st.Next()
		if !ok {
			break
		}
		if snap.SpawnDiameter < prev {
			t.Fatalf("spawn diameter shrank: %d -> %d at count %d", prev, snap.SpawnDiameter, snap.Count)
		}
		prev = snap.SpawnDiameter
	}
}

func TestGenerate2D_Deterministic(t *testing.T) {
	run := func() (*Aggregate2D, error) {
		a, err := New2D(Config{Stickiness: 0.7, Lattice: Triangle, Attractor: Point, Seed: 99})
		if err != nil {
			return nil, err
		}
		a.Generate(150)
		return a, nil
	}
	a, err := run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	b, err := run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	pa, pb := a.Points(), b.Points()
	if len(pa) != len(pb) {
		t.Fatalf("sizes differ: %d vs %d", len(pa), len(pb))
	}
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("point %d differs: %v vs %v", i, pa[i], pb[i])
		}
	}
	sa, sb := a.Stats(), b.Stats()
	for i := range sa.StepsToStick {
		if sa.StepsToStick[i] != sb.StepsToStick[i] ||
			sa.BoundaryCollisions[i] != sb.BoundaryCollisions[i] {
			t.Fatalf("stats %d differ: (%d,%d) vs (%d,%d)", i,
				sa.StepsToStick[i], sa.BoundaryCollisions[i],
				sb.StepsToStick[i], sb.BoundaryCollisions[i])
		}
	}
}

// A fully scripted run: the walker spawns on the negative-x edge at
// (-3, 0), drifts +x one cell per move, and sticks adjacent to the
// origin after three moves.
func TestGenerate2D_ScriptedWalk(t *testing.T) {
	src := &scriptSource{draws: []float64{
		0.8, 0.5, // spawn: -x edge, free coordinate 0 -> (-3, 0)
		0.0, 0.0, // move +x to (-2, 0), stickiness roll passes
		0.0, 0.0, // move +x to (-1, 0)
		0.0, 0.0, // move +x onto the origin -> attach previous (-1, 0)
	}}
	a, err := New2D(Config{Stickiness: 1, Lattice: Square, Attractor: Point, Rand: src})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	a.Generate(1)

	if got := a.Points()[1]; got != (Vec2i{X: -1, Y: 0}) {
		t.Fatalf("attached coordinate = %v, want (-1,0)", got)
	}
	st := a.Stats()
	if st.StepsToStick[0] != 3 || st.BoundaryCollisions[0] != 0 {
		t.Fatalf("stats = (%d,%d), want (3,0)", st.StepsToStick[0], st.BoundaryCollisions[0])
	}
	if a.SpawnDiameter() != 2+DefaultBoundaryOffset {
		t.Fatalf("spawn diameter = %d, want %d", a.SpawnDiameter(), 2+DefaultBoundaryOffset)
	}
}

func TestGenerate2D_StickinessZeroHangs(t *testing.T) {
	a, err := New2D(Config{Stickiness: 0, Lattice: Square, Attractor: Point, Seed: 3})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	done := make(chan struct{})
	go func() {
		// Expected never to finish; leaked deliberately.
		a.Generate(1)
		close(done)
	}()
	select {
	case <-done:
		t.Fatal("generation terminated with stickiness 0")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPoints2D_CopyNotAlias(t *testing.T) {
	a, err := New2D(Config{Stickiness: 1, Lattice: Square, Attractor: Point, Seed: 5})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	a.Generate(20)
	first := a.Points()
	first[0] = Vec2i{X: 123, Y: 456}
	second := a.Points()
	if second[0] != (Vec2i{}) {
		t.Fatalf("mutating a returned copy leaked into the store: %v", second[0])
	}
	for i := range second {
		if i > 0 && second[i] != first[i] {
			t.Fatalf("repeated reads disagree at %d: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestSetStickiness2D(t *testing.T) {
	a, err := New2D(Config{Stickiness: 0.5, Attractor: Point})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := a.SetStickiness(1.5); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("SetStickiness(1.5) err = %v, want ErrInvalidParameter", err)
	}
	if a.Stickiness() != 0.5 {
		t.Fatalf("stickiness changed by rejected setter: %v", a.Stickiness())
	}
	if err := a.SetStickiness(0.9); err != nil {
		t.Fatalf("SetStickiness(0.9): %v", err)
	}
	if a.Stickiness() != 0.9 {
		t.Fatalf("stickiness = %v, want 0.9", a.Stickiness())
	}
}

func TestMoveTables(t *testing.T) {
	if got := len(moves2D[Square]); got != 4 {
		t.Fatalf("square 2D moves = %d, want 4", got)
	}
	if got := len(moves2D[Triangle]); got != 6 {
		t.Fatalf("triangle 2D moves = %d, want 6", got)
	}
	if got := len(moves3D[Square]); got != 6 {
		t.Fatalf("square 3D moves = %d, want 6", got)
	}
	if got := len(moves3D[Triangle]); got != 8 {
		t.Fatalf("triangle 3D moves = %d, want 8", got)
	}
	for kind, moves := range moves2D {
		seen := make(map[Vec2i]struct{})
		for _, m := range moves {
			if m == (Vec2i{}) {
				t.Fatalf("%s 2D: zero move", kind)
			}
			if _, dup := seen[m]; dup {
				t.Fatalf("%s 2D: duplicate move %v", kind, m)
			}
			seen[m] = struct{}{}
		}
	}
	for kind, moves := range moves3D {
		seen := make(map[Vec3i]struct{})
		for _, m := range moves {
			if m == (Vec3i{}) {
				t.Fatalf("%s 3D: zero move", kind)
			}
			if _, dup := seen[m]; dup {
				t.Fatalf("%s 3D: duplicate move %v", kind, m)
			}
			seen[m] = struct{}{}
		}
	}
}
