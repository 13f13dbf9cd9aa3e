package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"dendrite.sim/internal/persistence/record"
	"dendrite.sim/internal/persistence/runindex"
	"dendrite.sim/internal/protocol"
	"dendrite.sim/internal/sim/aggregate"
	"dendrite.sim/internal/sim/run"
	"dendrite.sim/internal/sim/tuning"
	"dendrite.sim/internal/transport/observer"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		runID      = flag.String("run", "", "run id (default: run_<timestamp>)")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")

		particles  = flag.Int("particles", 0, "particle count override (0 = use tuning)")
		seed       = flag.Int64("seed", 0, "random seed override (0 = use tuning)")
		stickiness = flag.Float64("stickiness", -1, "stickiness override (-1 = use tuning)")

		disableRecord = flag.Bool("disable_record", false, "skip writing the run record")
		disableDB     = flag.Bool("disable_db", false, "skip indexing the finished run")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
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
		logger.Fatalf("tuning: %v", err)
	}

	id := strings.TrimSpace(*runID)
	if id == "" {
		id = fmt.Sprintf("run_%d", time.Now().Unix())
	}

	boot := protocol.BootstrapResponse{
		ProtocolVersion: protocol.Version,
		RunID:           id,
		Dimensions:      tune.Dimensions,
		Lattice:         cfg.Lattice.String(),
		Attractor:       cfg.Attractor.String(),
		AttractorSize:   cfg.AttractorSize,
		Stickiness:      cfg.Stickiness,
		Particles:       tune.Particles,
		Seed:            tune.Seed,
	}

	// Generation state lives on the runner goroutine only; the record
	// and index writes below consume the frame history after Done.
	var (
		src   run.Source
		agg2  *aggregate.Aggregate2D
		agg3  *aggregate.Aggregate3D
		stats func() aggregate.ParticleStats
	)
	switch tune.Dimensions {
	case 2:
		agg2, err = aggregate.New2D(cfg)
		if err != nil {
			logger.Fatalf("aggregate: %v", err)
		}
		boot.SeedSize = agg2.SeedSize()
		src = run.Frames2D(agg2, tune.Particles)
		stats = agg2.Stats
	case 3:
		agg3, err = aggregate.New3D(cfg)
		if err != nil {
			logger.Fatalf("aggregate: %v", err)
		}
		boot.SeedSize = agg3.SeedSize()
		src = run.Frames3D(agg3, tune.Particles)
		stats = agg3.Stats
	}

	runner := run.New(src, tune.Particles, run.Options{
		Interval: time.Duration(tune.FrameIntervalMs) * time.Millisecond,
		Logger:   logger,
	})

	ctx, cancel := signalContext()
	defer cancel()

	go func() {
		if err := runner.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("run stopped: %v", err)
		}
	}()

	// Persist the finished run, then keep serving: late observers still
	// get the backlog and the DONE summary.
	go func() {
		<-runner.Done()
		sum := runner.RunSummary()
		logger.Printf("run %s done: count=%d radius=%.2f", id, sum.Count, sum.Radius)
		if !*disableRecord {
			if err := writeRecord(*dataDir, id, tune, runner.Backlog()); err != nil {
				logger.Printf("record: %v", err)
			}
		}
		if !*disableDB {
			spawnDiam := 0
			if hist := runner.Backlog(); len(hist) > 0 {
				spawnDiam = hist[len(hist)-1].SpawnDiameter
			}
			if err := indexRun(*dataDir, id, tune, sum, spawnDiam, stats()); err != nil {
				logger.Printf("index: %v", err)
			}
		}
	}()

	obsSrv := observer.NewServer(runner, boot, logger)
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/bootstrap", obsSrv.BootstrapHandler())
	mux.HandleFunc("/v1/observe", obsSrv.WSHandler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("run %s listening on %s (%dD %s/%s, %d particles)",
		id, *addr, tune.Dimensions, cfg.Lattice, cfg.Attractor, tune.Particles)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func writeRecord(dataDir, id string, tune tuning.Tuning, frames []run.Frame) error {
	path := filepath.Join(dataDir, "runs", id+".jsonl.zst")
	w, err := record.NewWriter(path, record.Header{
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
		return err
	}
	for _, f := range frames {
		e := record.Entry{
			Seq:                f.Seq,
			Point:              f.Point,
			StepsToStick:       f.StepsToStick,
			BoundaryCollisions: f.BoundaryCollisions,
			SpawnDiameter:      f.SpawnDiameter,
		}
		if err := w.Append(e); err != nil {
			_ = w.Close()
			return err
		}
	}
	return w.Close()
}

func indexRun(dataDir, id string, tune tuning.Tuning, sum run.Summary, spawnDiam int, stats aggregate.ParticleStats) error {
	db, err := runindex.Open(filepath.Join(dataDir, "index", "runs.db"))
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return db.InsertRun(ctx, runindex.Run{
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
	}, stats)
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
