package aggregate

import "math"

// Aggregate3D is a three-dimensional Diffusion Limited Aggregate.
// Semantics mirror Aggregate2D with a cube spawn boundary for
// point/sphere attractors and a plane spawn extent along z.
type Aggregate3D struct {
	stickiness float64
	lattice    LatticeKind
	attractor  AttractorKind
	attSize    int
	bOffset    int
	rng        Source
	moves      []Vec3i

	// Append-only, like Aggregate2D.points.
	points  []Vec3i
	index   map[Vec3i]struct{}
	seedLen int

	stats ParticleStats

	maxX, maxY, maxZ int
	maxRSqd          int
	spawnDiam        int
}

// New3D builds a 3D aggregate containing only its attractor seed.
// Legal attractors are Point, Plane and Sphere.
func New3D(cfg Config) (*Aggregate3D, error) {
	rng, err := cfg.normalize(map[AttractorKind]bool{Point: true, Plane: true, Sphere: true})
	if err != nil {
		return nil, err
	}
	a := &Aggregate3D{
		stickiness: cfg.Stickiness,
		lattice:    cfg.Lattice,
		attractor:  cfg.Attractor,
		attSize:    cfg.AttractorSize,
		bOffset:    cfg.BoundaryOffset,
		rng:        rng,
		moves:      moves3D[cfg.Lattice],
		index:      make(map[Vec3i]struct{}),
	}
	for _, p := range seedPoints3D(cfg.Attractor, cfg.AttractorSize) {
		if _, dup := a.index[p]; dup {
			continue
		}
		a.points = append(a.points, p)
		a.index[p] = struct{}{}
		a.growExtents(p)
		if rsqd := p.X*p.X + p.Y*p.Y + p.Z*p.Z; rsqd > a.maxRSqd {
			a.maxRSqd = rsqd
		}
	}
	a.seedLen = len(a.points)
	switch cfg.Attractor {
	case Plane:
		a.spawnDiam = a.bOffset
	default:
		a.spawnDiam = 2*int(math.Sqrt(float64(a.maxRSqd))) + a.bOffset
	}
	return a, nil
}

// Generate attaches n further particles.
func (a *Aggregate3D) Generate(n int) {
	for i := 0; i < n; i++ {
		a.growOne()
	}
}

type walker3 struct {
	pos    Vec3i
	steps  int
	bcolls int
}

func (a *Aggregate3D) growOne() {
	w := walker3{pos: a.spawn()}
	for !a.step(&w) {
	}
}

func (a *Aggregate3D) step(w *walker3) bool {
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
		return false
	}
	a.attach(prev, w.steps, w.bcolls)
	return true
}

func (a *Aggregate3D) growExtents(p Vec3i) (newMaxZ bool) {
	if ax := absInt(p.X); ax > a.maxX {
		a.maxX = ax
	}
	if ay := absInt(p.Y); ay > a.maxY {
		a.maxY = ay
	}
	if az := absInt(p.Z); az > a.maxZ {
		a.maxZ = az
		newMaxZ = true
	}
	return newMaxZ
}

func (a *Aggregate3D) attach(p Vec3i, steps, bcolls int) {
	a.points = append(a.points, p)
	a.index[p] = struct{}{}
	newMaxZ := a.growExtents(p)
	switch a.attractor {
	case Plane:
		if newMaxZ {
			a.spawnDiam = a.maxZ + a.bOffset
		}
	default:
		if rsqd := p.X*p.X + p.Y*p.Y + p.Z*p.Z; rsqd > a.maxRSqd {
			a.maxRSqd = rsqd
			a.spawnDiam = 2*int(math.Sqrt(float64(rsqd))) + a.bOffset
		}
	}
	a.stats.StepsToStick = append(a.stats.StepsToStick, steps)
	a.stats.BoundaryCollisions = append(a.stats.BoundaryCollisions, bcolls)
}

// spawn releases a new walker on a face of the cube of side spawnDiam
// for point/sphere attractors, or either side of the plane at the
// current spawn extent.
func (a *Aggregate3D) spawn() Vec3i {
	u := a.rng.Float64()
	if a.attractor == Plane {
		x := 2 * int(float64(a.attSize)*(a.rng.Float64()-0.5))
		y := 2 * int(float64(a.attSize)*(a.rng.Float64()-0.5))
		if u < 0.5 {
			return Vec3i{X: x, Y: y, Z: a.spawnDiam}
		}
		return Vec3i{X: x, Y: y, Z: -a.spawnDiam}
	}
	half := int(float64(a.spawnDiam) * 0.5)
	f1 := int(float64(a.spawnDiam) * (a.rng.Float64() - 0.5))
	f2 := int(float64(a.spawnDiam) * (a.rng.Float64() - 0.5))
	switch {
	case u < 1.0/6.0:
		return Vec3i{X: f1, Y: f2, Z: half}
	case u < 2.0/6.0:
		return Vec3i{X: f1, Y: f2, Z: -half}
	case u < 3.0/6.0:
		return Vec3i{X: half, Y: f1, Z: f2}
	case u < 4.0/6.0:
		return Vec3i{X: -half, Y: f1, Z: f2}
	case u < 5.0/6.0:
		return Vec3i{X: f1, Y: half, Z: f2}
	default:
		return Vec3i{X: f1, Y: -half, Z: f2}
	}
}

func (a *Aggregate3D) outOfBounds(p Vec3i) bool {
	if a.attractor == Plane {
		return absInt(p.X) > 2*a.attSize ||
			absInt(p.Y) > 2*a.attSize ||
			absInt(p.Z) > a.spawnDiam+boundaryEpsilon
	}
	lim := a.spawnDiam/2 + boundaryEpsilon
	return absInt(p.X) > lim || absInt(p.Y) > lim || absInt(p.Z) > lim
}

// Size is the number of stored coordinates, seed included.
func (a *Aggregate3D) Size() int { return len(a.points) }

// SeedSize is the number of attractor seed coordinates.
func (a *Aggregate3D) SeedSize() int { return a.seedLen }

// Count is the number of particles attached since construction.
func (a *Aggregate3D) Count() int { return len(a.points) - a.seedLen }

// Points returns a copy of the coordinate sequence in attachment order,
// seed first.
func (a *Aggregate3D) Points() []Vec3i {
	out := make([]Vec3i, len(a.points))
	copy(out, a.points)
	return out
}

// Stats returns copies of the per-particle counters.
func (a *Aggregate3D) Stats() ParticleStats {
	return ParticleStats{
		StepsToStick:       append([]int(nil), a.stats.StepsToStick...),
		BoundaryCollisions: append([]int(nil), a.stats.BoundaryCollisions...),
	}
}

// MaxExtent is the maximum absolute coordinate reached per axis.
func (a *Aggregate3D) MaxExtent() Vec3i { return Vec3i{X: a.maxX, Y: a.maxY, Z: a.maxZ} }

// Radius is the current bounding radius of the aggregate.
func (a *Aggregate3D) Radius() float64 { return math.Sqrt(float64(a.maxRSqd)) }

func (a *Aggregate3D) SpawnDiameter() int { return a.spawnDiam }

func (a *Aggregate3D) Stickiness() float64 { return a.stickiness }

func (a *Aggregate3D) Lattice() LatticeKind { return a.lattice }

func (a *Aggregate3D) Attractor() AttractorKind { return a.attractor }

// SetStickiness replaces the stickiness for subsequent growth.
func (a *Aggregate3D) SetStickiness(v float64) error {
	if v < 0.0 || v > 1.0 {
		return ErrInvalidParameter
	}
	a.stickiness = v
	return nil
}
