// Package aggregate grows Diffusion Limited Aggregates on 2D and 3D
// integer lattices. Walkers are released from an adaptively sized spawn
// boundary, perform a lattice random walk and attach to the growing
// structure when they collide with it and pass a stickiness roll.
//
// Generation is single-threaded and synchronous: one particle is walked
// to completion before the next spawns, because each attachment may grow
// the spawn boundary that governs subsequent spawns.
package aggregate

import "math"

// Aggregate2D is a two-dimensional Diffusion Limited Aggregate.
// All state is owned by the growth loop; external readers get copies or
// length-capped views, never a mutable alias.
type Aggregate2D struct {
	stickiness float64
	lattice    LatticeKind
	attractor  AttractorKind
	attSize    int
	bOffset    int
	rng        Source
	moves      []Vec2i

	// points is append-only: seed first, then particles in attachment
	// order. Earlier entries are never rewritten, so a length-capped
	// slice of it is an immutable view even across later appends.
	points  []Vec2i
	index   map[Vec2i]struct{}
	seedLen int

	stats ParticleStats

	maxX, maxY int
	maxRSqd    int
	spawnDiam  int
}

// New2D builds a 2D aggregate containing only its attractor seed.
// Legal attractors are Point, Line and Circle; anything else fails with
// ErrInvalidTopology. A stickiness outside [0, 1] fails with
// ErrInvalidParameter.
func New2D(cfg Config) (*Aggregate2D, error) {
	rng, err := cfg.normalize(map[AttractorKind]bool{Point: true, Line: true, Circle: true})
	if err != nil {
		return nil, err
	}
	a := &Aggregate2D{
		stickiness: cfg.Stickiness,
		lattice:    cfg.Lattice,
		attractor:  cfg.Attractor,
		attSize:    cfg.AttractorSize,
		bOffset:    cfg.BoundaryOffset,
		rng:        rng,
		moves:      moves2D[cfg.Lattice],
		index:      make(map[Vec2i]struct{}),
	}
	for _, p := range seedPoints2D(cfg.Attractor, cfg.AttractorSize) {
		if _, dup := a.index[p]; dup {
			continue
		}
		a.points = append(a.points, p)
		a.index[p] = struct{}{}
		if ax := absInt(p.X); ax > a.maxX {
			a.maxX = ax
		}
		if ay := absInt(p.Y); ay > a.maxY {
			a.maxY = ay
		}
		if rsqd := p.X*p.X + p.Y*p.Y; rsqd > a.maxRSqd {
			a.maxRSqd = rsqd
		}
	}
	a.seedLen = len(a.points)
	switch cfg.Attractor {
	case Line:
		a.spawnDiam = a.bOffset
	default:
		a.spawnDiam = 2*int(math.Sqrt(float64(a.maxRSqd))) + a.bOffset
	}
	return a, nil
}

// Generate attaches n further particles. With a stickiness of 0 a walker
// can never attach and the call will not return; that pathology is
// documented rather than guarded.
func (a *Aggregate2D) Generate(n int) {
	for i := 0; i < n; i++ {
		a.growOne()
	}
}

type walker2 struct {
	pos    Vec2i
	steps  int
	bcolls int
}

func (a *Aggregate2D) growOne() {
	w := walker2{pos: a.spawn()}
	for !a.step(&w) {
	}
}

// step advances the walker by one lattice move and reports whether it
// attached. Boundary reflections keep the walker at its previous
// position and count against the boundary counter, not the step counter.
func (a *Aggregate2D) step(w *walker2) bool {
	prev := w.pos
	w.pos = w.pos.add(a.moves[pick(a.rng, len(a.moves))])
	if a.outOfBounds(w.pos) {
		w.pos = prev
		w.bcolls++
		return false
	}
	w.steps++
	if a.rng.Float64() > a.stickiness {
		return false
	}
	if _, hit := a.index[w.pos]; !hit {
		return false
	}
	if _, taken := a.index[prev]; taken {
		// The walker is standing on the aggregate after an earlier failed
		// stickiness roll; committing prev would duplicate a member.
		return false
	}
	a.attach(prev, w.steps, w.bcolls)
	return true
}

// attach commits the cell the walker occupied one move before contact,
// so the particle ends up adjacent to the structure rather than on top
// of it.
func (a *Aggregate2D) attach(p Vec2i, steps, bcolls int) {
	a.points = append(a.points, p)
	a.index[p] = struct{}{}
	if ax := absInt(p.X); ax > a.maxX {
		a.maxX = ax
	}
	newMaxY := false
	if ay := absInt(p.Y); ay > a.maxY {
		a.maxY = ay
		newMaxY = true
	}
	switch a.attractor {
	case Line:
		if newMaxY {
			a.spawnDiam = a.maxY + a.bOffset
		}
	default:
		if rsqd := p.X*p.X + p.Y*p.Y; rsqd > a.maxRSqd {
			a.maxRSqd = rsqd
			a.spawnDiam = 2*int(math.Sqrt(float64(rsqd))) + a.bOffset
		}
	}
	a.stats.StepsToStick = append(a.stats.StepsToStick, steps)
	a.stats.BoundaryCollisions = append(a.stats.BoundaryCollisions, bcolls)
}

// spawn releases a new walker on the spawn boundary: the edge of the
// square of side spawnDiam for point/circle attractors, or either side
// of the line at the current spawn extent.
func (a *Aggregate2D) spawn() Vec2i {
	u := a.rng.Float64()
	if a.attractor == Line {
		x := 2 * int(float64(a.attSize)*(a.rng.Float64()-0.5))
		if u < 0.5 {
			return Vec2i{X: x, Y: a.spawnDiam}
		}
		return Vec2i{X: x, Y: -a.spawnDiam}
	}
	half := int(float64(a.spawnDiam) * 0.5)
	free := int(float64(a.spawnDiam) * (a.rng.Float64() - 0.5))
	switch {
	case u < 0.25:
		return Vec2i{X: free, Y: half}
	case u < 0.5:
		return Vec2i{X: free, Y: -half}
	case u < 0.75:
		return Vec2i{X: half, Y: free}
	default:
		return Vec2i{X: -half, Y: free}
	}
}

func (a *Aggregate2D) outOfBounds(p Vec2i) bool {
	if a.attractor == Line {
		return absInt(p.X) > 2*a.attSize ||
			absInt(p.Y) > a.spawnDiam+boundaryEpsilon
	}
	lim := a.spawnDiam/2 + boundaryEpsilon
	return absInt(p.X) > lim || absInt(p.Y) > lim
}

// Size is the number of stored coordinates, seed included.
func (a *Aggregate2D) Size() int { return len(a.points) }

// SeedSize is the number of attractor seed coordinates.
func (a *Aggregate2D) SeedSize() int { return a.seedLen }

// Count is the number of particles attached since construction.
func (a *Aggregate2D) Count() int { return len(a.points) - a.seedLen }

// Points returns a copy of the coordinate sequence in attachment order,
// seed first.
func (a *Aggregate2D) Points() []Vec2i {
	out := make([]Vec2i, len(a.points))
	copy(out, a.points)
	return out
}

// Stats returns copies of the per-particle counters, indexed by
// attachment order.
func (a *Aggregate2D) Stats() ParticleStats {
	return ParticleStats{
		StepsToStick:       append([]int(nil), a.stats.StepsToStick...),
		BoundaryCollisions: append([]int(nil), a.stats.BoundaryCollisions...),
	}
}

// MaxExtent is the maximum absolute coordinate reached per axis.
func (a *Aggregate2D) MaxExtent() Vec2i { return Vec2i{X: a.maxX, Y: a.maxY} }

// Radius is the current bounding radius of the aggregate.
func (a *Aggregate2D) Radius() float64 { return math.Sqrt(float64(a.maxRSqd)) }

func (a *Aggregate2D) SpawnDiameter() int { return a.spawnDiam }

func (a *Aggregate2D) Stickiness() float64 { return a.stickiness }

func (a *Aggregate2D) Lattice() LatticeKind { return a.lattice }

func (a *Aggregate2D) Attractor() AttractorKind { return a.attractor }

// SetStickiness replaces the stickiness for subsequent growth.
func (a *Aggregate2D) SetStickiness(v float64) error {
	if v < 0.0 || v > 1.0 {
		return ErrInvalidParameter
	}
	a.stickiness = v
	return nil
}
