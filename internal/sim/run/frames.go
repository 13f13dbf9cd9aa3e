package run

import "dendrite.sim/internal/sim/aggregate"

// Frame is a dimension-neutral view of one attachment, in the order the
// engine produced it.
type Frame struct {
	Seq                int // 1-based attachment index within this run
	Count              int
	Point              []int
	StepsToStick       int
	BoundaryCollisions int
	SpawnDiameter      int
}

// Summary describes a finished (or abandoned) run.
type Summary struct {
	Count     int
	MaxExtent []int
	Radius    float64
}

// Source yields the frames of one growth run. Summary must only be
// called once Next has returned false or the caller has stopped pulling.
type Source interface {
	Next() (Frame, bool)
	Summary() Summary
}

type source2D struct {
	agg *aggregate.Aggregate2D
	st  *aggregate.Stream2D
	seq int
}

// Frames2D streams n particles of growth on a 2D aggregate.
func Frames2D(agg *aggregate.Aggregate2D, n int) Source {
	return &source2D{agg: agg, st: agg.Stream(n)}
}

func (s *source2D) Next() (Frame, bool) {
	snap, ok := s.st.Next()
	if !ok {
		return Frame{}, false
	}
	s.seq++
	p := snap.Points[len(snap.Points)-1].ToArray()
	return Frame{
		Seq:                s.seq,
		Count:              snap.Count,
		Point:              p[:],
		StepsToStick:       snap.StepsToStick,
		BoundaryCollisions: snap.BoundaryCollisions,
		SpawnDiameter:      snap.SpawnDiameter,
	}, true
}

func (s *source2D) Summary() Summary {
	ext := s.agg.MaxExtent().ToArray()
	return Summary{
		Count:     s.agg.Count(),
		MaxExtent: ext[:],
		Radius:    s.agg.Radius(),
	}
}

type source3D struct {
	agg *aggregate.Aggregate3D
	st  *aggregate.Stream3D
	seq int
}

// Frames3D streams n particles of growth on a 3D aggregate.
func Frames3D(agg *aggregate.Aggregate3D, n int) Source {
	return &source3D{agg: agg, st: agg.Stream(n)}
}

func (s *source3D) Next() (Frame, bool) {
	snap, ok := s.st.Next()
	if !ok {
		return Frame{}, false
	}
	s.seq++
	p := snap.Points[len(snap.Points)-1].ToArray()
	return Frame{
		Seq:                s.seq,
		Count:              snap.Count,
		Point:              p[:],
		StepsToStick:       snap.StepsToStick,
		BoundaryCollisions: snap.BoundaryCollisions,
		SpawnDiameter:      snap.SpawnDiameter,
	}, true
}

func (s *source3D) Summary() Summary {
	ext := s.agg.MaxExtent().ToArray()
	return Summary{
		Count:     s.agg.Count(),
		MaxExtent: ext[:],
		Radius:    s.agg.Radius(),
	}
}
