package aggregate

// Move sets are data: one uniform draw indexes into the table for the
// configured lattice kind. Adding a lattice means adding a table entry,
// not control flow.

var moves2D = map[LatticeKind][]Vec2i{
	Square: {
		{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	},
	Triangle: {
		{1, 0}, {-1, 0}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1},
	},
}

var moves3D = map[LatticeKind][]Vec3i{
	Square: {
		{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1},
	},
	// Four in-plane diagonal moves, two in-plane axial moves and the two
	// out-of-plane axial moves.
	Triangle: {
		{1, 1, 0}, {1, -1, 0}, {-1, -1, 0}, {-1, 1, 0},
		{1, 0, 0}, {-1, 0, 0}, {0, 0, 1}, {0, 0, -1},
	},
}
