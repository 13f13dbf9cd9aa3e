package aggregate

import "fmt"

// DefaultBoundaryOffset is the gap kept between the aggregate's current
// extent and the spawn boundary.
const DefaultBoundaryOffset = 6

// boundaryEpsilon is the small elastic margin past the spawn boundary a
// walker may reach before it is reflected.
const boundaryEpsilon = 2

type Config struct {
	// Stickiness is the probability in [0, 1] that a geometrically
	// colliding walker actually attaches.
	Stickiness float64

	Lattice   LatticeKind
	Attractor AttractorKind

	// AttractorSize is the line/plane side length or the circle/sphere
	// radius. Ignored for Point.
	AttractorSize int

	// BoundaryOffset falls back to DefaultBoundaryOffset when <= 0.
	BoundaryOffset int

	// Seed seeds the default random source.
	Seed int64

	// Rand overrides the default source when non-nil. Injected by tests
	// that need a scripted draw sequence.
	Rand Source
}

func (c *Config) normalize(legal map[AttractorKind]bool) (Source, error) {
	if c.Stickiness < 0.0 || c.Stickiness > 1.0 {
		return nil, fmt.Errorf("%w: stickiness %v outside [0, 1]", ErrInvalidParameter, c.Stickiness)
	}
	if _, ok := moves2D[c.Lattice]; !ok {
		return nil, fmt.Errorf("%w: unknown lattice kind %d", ErrInvalidParameter, int(c.Lattice))
	}
	if !legal[c.Attractor] {
		return nil, fmt.Errorf("%w: %s attractor does not fit this dimension", ErrInvalidTopology, c.Attractor)
	}
	if c.Attractor == Point {
		c.AttractorSize = 1
	} else if c.AttractorSize < 1 {
		return nil, fmt.Errorf("%w: invalid attractor size %d", ErrInvalidTopology, c.AttractorSize)
	}
	if c.BoundaryOffset <= 0 {
		c.BoundaryOffset = DefaultBoundaryOffset
	}
	if c.Rand != nil {
		return c.Rand, nil
	}
	return newSource(c.Seed), nil
}
