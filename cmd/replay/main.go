// Command replay reads a run record, verifies its internal ordering,
// and optionally re-generates the run from the recorded seed to confirm
// the record matches what the engine produces.
package main

import (
	"flag"
	"fmt"
	"os"

	"dendrite.sim/internal/persistence/record"
	"dendrite.sim/internal/sim/aggregate"
	"dendrite.sim/internal/sim/run"
)

func main() {
	var (
		recPath = flag.String("record", "", "path to .jsonl.zst run record")
		verify  = flag.Bool("verify", false, "re-generate from the recorded seed and compare attachments")
	)
	flag.Parse()

	if *recPath == "" {
		fmt.Fprintln(os.Stderr, "missing -record")
		os.Exit(2)
	}

	h, entries, err := record.Read(*recPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read record:", err)
		os.Exit(1)
	}

	fmt.Printf("record v%d run=%s %dD %s/%s size=%d stickiness=%.3f seed=%d particles=%d entries=%d\n",
		h.Version, h.RunID, h.Dimensions, h.Lattice, h.Attractor, h.AttractorSize,
		h.Stickiness, h.Seed, h.Particles, len(entries))

	for i, e := range entries {
		if e.Seq != i+1 {
			fmt.Fprintf(os.Stderr, "entry %d: seq=%d, want %d\n", i, e.Seq, i+1)
			os.Exit(1)
		}
		if e.StepsToStick < 1 || e.BoundaryCollisions < 0 {
			fmt.Fprintf(os.Stderr, "entry %d: bad stats steps=%d boundary=%d\n", i, e.StepsToStick, e.BoundaryCollisions)
			os.Exit(1)
		}
		if i > 0 && e.SpawnDiameter < entries[i-1].SpawnDiameter {
			fmt.Fprintf(os.Stderr, "entry %d: spawn diameter shrank %d -> %d\n", i, entries[i-1].SpawnDiameter, e.SpawnDiameter)
			os.Exit(1)
		}
	}
	fmt.Println("ordering ok")

	if !*verify {
		return
	}
	if err := verifyAgainstEngine(h, entries); err != nil {
		fmt.Fprintln(os.Stderr, "verify:", err)
		os.Exit(1)
	}
	fmt.Println("verify ok")
}

// verifyAgainstEngine replays growth with the recorded parameters and
// checks every attachment against the record. Only works for records
// produced with the default random source.
func verifyAgainstEngine(h record.Header, entries []record.Entry) error {
	lt, err := aggregate.ParseLattice(h.Lattice)
	if err != nil {
		return err
	}
	at, err := aggregate.ParseAttractor(h.Attractor)
	if err != nil {
		return err
	}
	cfg := aggregate.Config{
		Stickiness:    h.Stickiness,
		Lattice:       lt,
		Attractor:     at,
		AttractorSize: h.AttractorSize,
		Seed:          h.Seed,
	}

	var src run.Source
	switch h.Dimensions {
	case 2:
		agg, err := aggregate.New2D(cfg)
		if err != nil {
			return err
		}
		src = run.Frames2D(agg, len(entries))
	case 3:
		agg, err := aggregate.New3D(cfg)
		if err != nil {
			return err
		}
		src = run.Frames3D(agg, len(entries))
	default:
		return fmt.Errorf("bad dimensions %d", h.Dimensions)
	}

	for i := range entries {
		f, ok := src.Next()
		if !ok {
			return fmt.Errorf("engine stopped at entry %d of %d", i, len(entries))
		}
		e := entries[i]
		if len(f.Point) != len(e.Point) {
			return fmt.Errorf("entry %d: point arity %d vs %d", i, len(e.Point), len(f.Point))
		}
		for d := range f.Point {
			if f.Point[d] != e.Point[d] {
				return fmt.Errorf("entry %d: point %v, engine produced %v", i, e.Point, f.Point)
			}
		}
		if f.StepsToStick != e.StepsToStick || f.BoundaryCollisions != e.BoundaryCollisions {
			return fmt.Errorf("entry %d: stats (%d,%d), engine produced (%d,%d)",
				i, e.StepsToStick, e.BoundaryCollisions, f.StepsToStick, f.BoundaryCollisions)
		}
	}
	return nil
}
