package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"dendrite.sim/internal/sim/aggregate"
)

// Tuning is the on-disk run preset. Kind fields hold the config-file
// spellings; EngineConfig translates them for the engine.
type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	Dimensions    int     `yaml:"dimensions"`
	Lattice       string  `yaml:"lattice"`
	Attractor     string  `yaml:"attractor"`
	AttractorSize int     `yaml:"attractor_size"`
	Stickiness    float64 `yaml:"stickiness"`
	Particles     int     `yaml:"particles"`
	Seed          int64   `yaml:"seed"`

	BoundaryOffset int `yaml:"boundary_offset"`

	// FrameEvery is the default observer frame stride.
	FrameEvery int `yaml:"frame_every"`
	// FrameIntervalMs paces streamed frames for viewers; 0 streams as
	// fast as the walk runs.
	FrameIntervalMs int `yaml:"frame_interval_ms"`
}

func Defaults() Tuning {
	return Tuning{
		Dimensions:      2,
		Lattice:         "square",
		Attractor:       "point",
		AttractorSize:   1,
		Stickiness:      1.0,
		Particles:       500,
		Seed:            1337,
		BoundaryOffset:  aggregate.DefaultBoundaryOffset,
		FrameEvery:      1,
		FrameIntervalMs: 0,
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// EngineConfig translates the preset into an engine Config. Validation
// beyond kind spelling and dimension count is the engine constructors'
// job.
func (t Tuning) EngineConfig() (aggregate.Config, error) {
	var cfg aggregate.Config
	if t.Dimensions != 2 && t.Dimensions != 3 {
		return cfg, fmt.Errorf("tuning: dimensions must be 2 or 3, got %d", t.Dimensions)
	}
	lt, err := aggregate.ParseLattice(t.Lattice)
	if err != nil {
		return cfg, fmt.Errorf("tuning: %w", err)
	}
	at, err := aggregate.ParseAttractor(t.Attractor)
	if err != nil {
		return cfg, fmt.Errorf("tuning: %w", err)
	}
	cfg = aggregate.Config{
		Stickiness:     t.Stickiness,
		Lattice:        lt,
		Attractor:      at,
		AttractorSize:  t.AttractorSize,
		BoundaryOffset: t.BoundaryOffset,
		Seed:           t.Seed,
	}
	return cfg, nil
}
