package aggregate

// Snapshot2D is one increment of a streamed 2D growth run, emitted after
// a successful attachment.
type Snapshot2D struct {
	// Points is a length-capped view of the append-only store: seed
	// first, then particles in attachment order, ending with the particle
	// this snapshot reports. Callers must treat it as read-only.
	Points []Vec2i

	// Count is the number of attached particles so far, seed excluded.
	Count int

	// StepsToStick and BoundaryCollisions are the counters recorded for
	// the particle attached by this increment.
	StepsToStick       int
	BoundaryCollisions int

	SpawnDiameter int
}

// Snapshot3D is the 3D counterpart of Snapshot2D.
type Snapshot3D struct {
	Points []Vec3i
	Count  int

	StepsToStick       int
	BoundaryCollisions int

	SpawnDiameter int
}

// Stream2D is a pull-based iterator over a growth run: each Next call
// walks one particle to attachment and yields a snapshot. The sequence
// is finite (length n) and not restartable; abandoning it mid-run leaves
// the aggregate in a valid partial state.
type Stream2D struct {
	agg       *Aggregate2D
	remaining int
}

// Stream starts a streamed run of n particles. The aggregate must not be
// grown through any other call until the stream is exhausted or
// abandoned.
func (a *Aggregate2D) Stream(n int) *Stream2D {
	return &Stream2D{agg: a, remaining: n}
}

// Next grows one particle. The second return is false once n particles
// have been attached.
func (s *Stream2D) Next() (Snapshot2D, bool) {
	if s.remaining <= 0 {
		return Snapshot2D{}, false
	}
	s.remaining--
	a := s.agg
	a.growOne()
	last := len(a.stats.StepsToStick) - 1
	return Snapshot2D{
		Points:             a.points[:len(a.points):len(a.points)],
		Count:              a.Count(),
		StepsToStick:       a.stats.StepsToStick[last],
		BoundaryCollisions: a.stats.BoundaryCollisions[last],
		SpawnDiameter:      a.spawnDiam,
	}, true
}

// Remaining reports how many snapshots the stream has left to yield.
func (s *Stream2D) Remaining() int { return s.remaining }

// Stream3D is the 3D counterpart of Stream2D.
type Stream3D struct {
	agg       *Aggregate3D
	remaining int
}

// Stream starts a streamed run of n particles.
func (a *Aggregate3D) Stream(n int) *Stream3D {
	return &Stream3D{agg: a, remaining: n}
}

// Next grows one particle.
func (s *Stream3D) Next() (Snapshot3D, bool) {
	if s.remaining <= 0 {
		return Snapshot3D{}, false
	}
	s.remaining--
	a := s.agg
	a.growOne()
	last := len(a.stats.StepsToStick) - 1
	return Snapshot3D{
		Points:             a.points[:len(a.points):len(a.points)],
		Count:              a.Count(),
		StepsToStick:       a.stats.StepsToStick[last],
		BoundaryCollisions: a.stats.BoundaryCollisions[last],
		SpawnDiameter:      a.spawnDiam,
	}, true
}

// Remaining reports how many snapshots the stream has left to yield.
func (s *Stream3D) Remaining() int { return s.remaining }
