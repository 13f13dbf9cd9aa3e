package protocol

// SubscribeMsg opens an observer session. FrameEvery is a stride: a
// value of k asks for every k-th attachment (the final frame is always
// delivered).
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	FrameEvery      int    `json:"frame_every,omitempty"`
}

// FrameMsg reports one attachment. Point carries 2 or 3 components
// depending on the run's dimensionality; the aggregate is append-only,
// so a viewer reconstructs it by appending points in seq order.
type FrameMsg struct {
	Type string `json:"type"`

	Seq   int   `json:"seq"`   // 1-based attachment index
	Count int   `json:"count"` // attached particles so far
	Point []int `json:"point"`

	StepsToStick       int `json:"steps_to_stick"`
	BoundaryCollisions int `json:"boundary_collisions"`
	SpawnDiameter      int `json:"spawn_diameter"`
}

// DoneMsg closes the stream after the final frame.
type DoneMsg struct {
	Type string `json:"type"`

	Count     int     `json:"count"`
	MaxExtent []int   `json:"max_extent"`
	Radius    float64 `json:"radius"`
}

// BootstrapResponse is served over plain HTTP before a websocket
// subscription: everything a viewer needs to scale its canvas.
type BootstrapResponse struct {
	ProtocolVersion string `json:"protocol_version"`
	RunID           string `json:"run_id"`

	Dimensions    int     `json:"dimensions"`
	Lattice       string  `json:"lattice"`
	Attractor     string  `json:"attractor"`
	AttractorSize int     `json:"attractor_size"`
	Stickiness    float64 `json:"stickiness"`
	Particles     int     `json:"particles"`
	Seed          int64   `json:"seed"`

	SeedSize int `json:"seed_size"`
	Count    int `json:"count"`
}
