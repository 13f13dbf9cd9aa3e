package aggregate

import "fmt"

// Vec2i is an integer lattice coordinate in two dimensions.
type Vec2i struct {
	X int
	Y int
}

// Vec3i is an integer lattice coordinate in three dimensions.
type Vec3i struct {
	X int
	Y int
	Z int
}

func (v Vec2i) ToArray() [2]int { return [2]int{v.X, v.Y} }

func (v Vec3i) ToArray() [3]int { return [3]int{v.X, v.Y, v.Z} }

func (v Vec2i) add(d Vec2i) Vec2i { return Vec2i{v.X + d.X, v.Y + d.Y} }

func (v Vec3i) add(d Vec3i) Vec3i { return Vec3i{v.X + d.X, v.Y + d.Y, v.Z + d.Z} }

// LatticeKind selects the set of unit moves available to a walker.
type LatticeKind int

const (
	Square LatticeKind = iota
	Triangle
)

func (l LatticeKind) String() string {
	switch l {
	case Square:
		return "square"
	case Triangle:
		return "triangle"
	}
	return fmt.Sprintf("lattice(%d)", int(l))
}

// ParseLattice maps a config-file value to a LatticeKind.
func ParseLattice(s string) (LatticeKind, error) {
	switch s {
	case "square":
		return Square, nil
	case "triangle":
		return Triangle, nil
	}
	return 0, fmt.Errorf("unknown lattice kind %q", s)
}

// AttractorKind selects the fixed seed geometry growth starts from.
// Point is legal in both dimensions; Line and Circle are 2D-only,
// Plane and Sphere 3D-only.
type AttractorKind int

const (
	Point AttractorKind = iota
	Line
	Circle
	Plane
	Sphere
)

func (a AttractorKind) String() string {
	switch a {
	case Point:
		return "point"
	case Line:
		return "line"
	case Circle:
		return "circle"
	case Plane:
		return "plane"
	case Sphere:
		return "sphere"
	}
	return fmt.Sprintf("attractor(%d)", int(a))
}

// ParseAttractor maps a config-file value to an AttractorKind.
func ParseAttractor(s string) (AttractorKind, error) {
	switch s {
	case "point":
		return Point, nil
	case "line":
		return Line, nil
	case "circle":
		return Circle, nil
	case "plane":
		return Plane, nil
	case "sphere":
		return Sphere, nil
	}
	return 0, fmt.Errorf("unknown attractor kind %q", s)
}

// ParticleStats holds the two counters recorded for every attached
// particle, indexed by attachment order: the number of lattice moves the
// walker took since its spawn, and the number of times it was reflected
// off the spawn boundary before sticking.
type ParticleStats struct {
	StepsToStick       []int
	BoundaryCollisions []int
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
