package aggregate

import "math"

// seedPoints2D materializes the attractor geometry for a 2D aggregate.
// Circle sampling walks the angle at increments of 1/size, so the point
// count comes out near 2*pi*size before deduplication.
func seedPoints2D(kind AttractorKind, size int) []Vec2i {
	switch kind {
	case Line:
		pts := make([]Vec2i, 0, size)
		for i := 0; i < size; i++ {
			pts = append(pts, Vec2i{X: i - size/2, Y: 0})
		}
		return pts
	case Circle:
		r := float64(size)
		step := 1.0 / r
		pts := make([]Vec2i, 0, int(2.0*math.Pi*r)+1)
		for theta := 0.0; theta < 2.0*math.Pi+step; theta += step {
			pts = append(pts, Vec2i{
				X: int(r * math.Cos(theta)),
				Y: int(r * math.Sin(theta)),
			})
		}
		return pts
	default: // Point
		return []Vec2i{{X: 0, Y: 0}}
	}
}

// seedPoints3D materializes the attractor geometry for a 3D aggregate.
func seedPoints3D(kind AttractorKind, size int) []Vec3i {
	switch kind {
	case Plane:
		pts := make([]Vec3i, 0, size*size)
		for i := 0; i < size; i++ {
			for j := 0; j < size; j++ {
				pts = append(pts, Vec3i{X: i - size/2, Y: j - size/2, Z: 0})
			}
		}
		return pts
	case Sphere:
		r := float64(size)
		step := 1.0 / r
		pts := make([]Vec3i, 0, int((2.0*math.Pi*r+1)*(math.Pi*r+1)))
		for phi := 0.0; phi < 2.0*math.Pi+step; phi += step { // azimuthal
			for theta := 0.0; theta < math.Pi+step; theta += step { // polar
				pts = append(pts, Vec3i{
					X: int(r * math.Sin(theta) * math.Cos(phi)),
					Y: int(r * math.Sin(theta) * math.Sin(phi)),
					Z: int(r * math.Cos(theta)),
				})
			}
		}
		return pts
	default: // Point
		return []Vec3i{{X: 0, Y: 0, Z: 0}}
	}
}
