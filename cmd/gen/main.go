// Command gen grows an aggregate to completion without a server,
// printing progress and a closing summary. Useful for batch runs and
// for producing record files to replay later.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dendrite.sim/internal/persistence/record"
	"dendrite.sim/internal/persistence/runindex"
	"dendrite.sim/internal/sim/aggregate"
	"dendrite.sim/internal/sim/run"
	"dendrite.sim/internal/sim/tuning"
)

func main() {
	var (
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (optional)")
		runID      = flag.String("run", "", "run id (default: run_<timestamp>)")

		dimensions = flag.Int("dimensions", 0, "dimension override (0 = use tuning)")
		lattice    = flag.String("lattice", "", "lattice override: square|triangle")
		attractor  = flag.String("attractor", "", "attractor override: point|line|circle|plane|sphere")
		attSize    = flag.Int("attractor_size", 0, "attractor size override")
		particles  = flag.Int("particles", 0, "particle count override")
		seed       = flag.Int64("seed", 0, "random seed override")
		stickiness = flag.Float64("stickiness", -1, "stickiness override")

		recordPath = flag.String("record", "", "write the run record to this path (optional)")
		indexPath  = flag.String("index", "", "index the finished run in this sqlite db (optional)")
		quiet      = flag.Bool("quiet", false, "suppress progress output")
	)
	flag.Parse()

	tune := tuning.Defaults()
	if tp := strings.TrimSpace(*tuningPath); tp != "" {
		var err error
		tune, err = tuning.Load(tp)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load tuning:", err)
			os.Exit(1)
		}
	}
	if *dimensions > 0 {
		tune.Dimensions = *dimensions
	}
	if *lattice != "" {
		tune.Lattice = *lattice
	}
	if *attractor != "" {
		tune.Attractor = *attractor
	}
	if *attSize > 0 {
		tune.AttractorSize = *attSize
	}
	if *particles > 0 {
		tune.Particles = *particles
	}
	if *seed != 0 {
		tune.Seed = *seed
	}
	if *stickiness >= 0 {
		tune.Stickiness = *stickiness
	}

	cfg, err := tune.EngineConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "tuning:", err)
		os.Exit(1)
	}

	id := strings.TrimSpace(*runID)
	if id == "" {
		id = fmt.Sprintf("run_%d", time.Now().Unix())
	}

	var (
		src   run.Source
		stats func() aggregate.ParticleStats
	)
	switch tune.Dimensions {
	case 2:
		agg, err := aggregate.New2D(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, "aggregate:", err)
			os.Exit(1)
		}
		src = run.Frames2D(agg, tune.Particles)
		stats = agg.Stats
	case 3:
		agg, err := aggregate.New3D(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, "aggregate:", err)
			os.Exit(1)
		}
		src = run.Frames3D(agg, tune.Particles)
		stats = agg.Stats
	}

	var rec *record.Writer
	if *recordPath != "" {
		rec, err = record.NewWriter(*recordPath, record.Header{
			Version:       1,
			RunID:         id,
			Dimensions:    tune.Dimensions,
			Lattice:       tune.Lattice,
			Attractor:     tune.Attractor,
			AttractorSize: tune.AttractorSize,
			Stickiness:    tune.Stickiness,
			Seed:          tune.Seed,
			Particles:     tune.Particles,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "record:", err)
			os.Exit(1)
		}
	}

	start := time.Now()
	lastPct := -1
	spawnDiam := 0
	for {
		f, ok := src.Next()
		if !ok {
			break
		}
		spawnDiam = f.SpawnDiameter
		if rec != nil {
			e := record.Entry{
				Seq:                f.Seq,
				Point:              f.Point,
				StepsToStick:       f.StepsToStick,
				BoundaryCollisions: f.BoundaryCollisions,
				SpawnDiameter:      f.SpawnDiameter,
			}
			if err := rec.Append(e); err != nil {
				fmt.Fprintln(os.Stderr, "record append:", err)
				os.Exit(1)
			}
		}
		if !*quiet && tune.Particles > 0 {
			pct := f.Seq * 100 / tune.Particles
			if pct != lastPct {
				fmt.Printf("\rProgress: %d%%", pct)
				lastPct = pct
			}
		}
	}
	if !*quiet {
		fmt.Println()
	}
	if rec != nil {
		if err := rec.Close(); err != nil {
			fmt.Fprintln(os.Stderr, "record close:", err)
			os.Exit(1)
		}
	}

	sum := src.Summary()
	st := stats()
	elapsed := time.Since(start)

	var sumSteps, sumBound int
	for i := range st.StepsToStick {
		sumSteps += st.StepsToStick[i]
		sumBound += st.BoundaryCollisions[i]
	}
	meanSteps, meanBound := 0.0, 0.0
	if n := len(st.StepsToStick); n > 0 {
		meanSteps = float64(sumSteps) / float64(n)
		meanBound = float64(sumBound) / float64(n)
	}

	fmt.Printf("run=%s %dD %s/%s particles=%d seed=%d stickiness=%.3f\n",
		id, tune.Dimensions, tune.Lattice, tune.Attractor, sum.Count, tune.Seed, tune.Stickiness)
	fmt.Printf("radius=%.2f extent=%v mean_steps=%.1f mean_boundary=%.2f elapsed=%s\n",
		sum.Radius, sum.MaxExtent, meanSteps, meanBound, elapsed.Round(time.Millisecond))

	if *indexPath != "" {
		db, err := runindex.Open(filepath.Clean(*indexPath))
		if err != nil {
			fmt.Fprintln(os.Stderr, "index:", err)
			os.Exit(1)
		}
		defer db.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = db.InsertRun(ctx, runindex.Run{
			ID:            id,
			Dimensions:    tune.Dimensions,
			Lattice:       tune.Lattice,
			Attractor:     tune.Attractor,
			AttractorSize: tune.AttractorSize,
			Stickiness:    tune.Stickiness,
			Seed:          tune.Seed,
			Particles:     sum.Count,
			Radius:        sum.Radius,
			SpawnDiameter: spawnDiam,
		}, st)
		if err != nil {
			fmt.Fprintln(os.Stderr, "index insert:", err)
			os.Exit(1)
		}
	}
}
