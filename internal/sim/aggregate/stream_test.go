package aggregate

import "testing"

func TestStream2D_FiniteAndIncremental(t *testing.T) {
	const n = 50
	a, err := New2D(Config{Stickiness: 1, Lattice: Square, Attractor: Point, Seed: 17})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	st := a.Stream(n)
	var pulled int
	for {
		snap, ok := st.Next()
		if !ok {
			break
		}
		pulled++
		if snap.Count != pulled {
			t.Fatalf("snapshot count = %d, want %d", snap.Count, pulled)
		}
		if len(snap.Points) != a.SeedSize()+pulled {
			t.Fatalf("snapshot view length = %d, want %d", len(snap.Points), a.SeedSize()+pulled)
		}
		if snap.StepsToStick < 1 {
			t.Fatalf("snapshot steps-to-stick = %d", snap.StepsToStick)
		}
	}
	if pulled != n {
		t.Fatalf("stream yielded %d snapshots, want %d", pulled, n)
	}
	// Exhausted streams never restart.
	if _, ok := st.Next(); ok {
		t.Fatal("exhausted stream yielded another snapshot")
	}
	if a.Count() != n {
		t.Fatalf("aggregate count = %d, want %d", a.Count(), n)
	}
}

func TestStream2D_AbandonLeavesValidState(t *testing.T) {
	a, err := New2D(Config{Stickiness: 1, Lattice: Square, Attractor: Point, Seed: 19})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	st := a.Stream(100)
	for i := 0; i < 30; i++ {
		if _, ok := st.Next(); !ok {
			t.Fatalf("stream ended early at %d", i)
		}
	}
	// Consumer stops pulling: partial state must be readable.
	if a.Count() != 30 {
		t.Fatalf("count after abandon = %d, want 30", a.Count())
	}
	if st.Remaining() != 70 {
		t.Fatalf("remaining = %d, want 70", st.Remaining())
	}
	if got := len(a.Points()); got != 31 {
		t.Fatalf("points after abandon = %d, want 31", got)
	}
}

// Earlier snapshot views must stay bit-identical to the corresponding
// prefix of the store as growth continues.
func TestStream2D_SnapshotViewsImmutable(t *testing.T) {
	a, err := New2D(Config{Stickiness: 1, Lattice: Square, Attractor: Point, Seed: 23})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	st := a.Stream(120)
	var views []Snapshot2D
	for {
		snap, ok := st.Next()
		if !ok {
			break
		}
		views = append(views, snap)
	}
	final := a.Points()
	for _, v := range views {
		for i, p := range v.Points {
			if final[i] != p {
				t.Fatalf("snapshot at count %d disagrees with store at %d: %v vs %v",
					v.Count, i, p, final[i])
			}
		}
	}
}
