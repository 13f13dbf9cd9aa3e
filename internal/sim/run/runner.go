// Package run drives one growth run in its own goroutine and fans the
// resulting frames out to observer sessions. The engine itself stays
// single-threaded: all growth happens on the runner goroutine, observers
// only ever see immutable Frame values.
package run

import (
	"context"
	"log"
	"sync/atomic"
	"time"
)

// JoinRequest subscribes an observer session. The runner replies on Resp
// with a copy of every frame produced so far; live frames follow on Out.
// Out is closed when the run finishes.
type JoinRequest struct {
	SessionID string
	Out       chan Frame
	Resp      chan []Frame
}

type Options struct {
	// Interval paces frame production for viewers; 0 runs flat out.
	Interval time.Duration
	Logger   *log.Logger
}

type Runner struct {
	src      Source
	total    int
	interval time.Duration
	log      *log.Logger

	join  chan JoinRequest
	leave chan string
	subs  map[string]chan Frame

	history []Frame
	summary Summary

	count atomic.Int64
	done  chan struct{}
}

func New(src Source, total int, opts Options) *Runner {
	return &Runner{
		src:      src,
		total:    total,
		interval: opts.Interval,
		log:      opts.Logger,
		join:     make(chan JoinRequest, 8),
		leave:    make(chan string, 8),
		subs:     make(map[string]chan Frame),
		done:     make(chan struct{}),
	}
}

func (r *Runner) Join() chan<- JoinRequest { return r.join }
func (r *Runner) Leave() chan<- string     { return r.leave }

// Done is closed once the run has finished or been cancelled and the
// summary and backlog are safe to read.
func (r *Runner) Done() <-chan struct{} { return r.done }

// Count is the number of particles attached so far.
func (r *Runner) Count() int { return int(r.count.Load()) }

// Total is the requested particle count of this run.
func (r *Runner) Total() int { return r.total }

// Backlog returns the frames produced so far. Only safe after Done.
func (r *Runner) Backlog() []Frame { return r.history }

// RunSummary is the final summary. Only safe after Done.
func (r *Runner) RunSummary() Summary { return r.summary }

// Run produces frames until the run completes or ctx is cancelled.
// Cancellation leaves the aggregate in a valid partial state.
func (r *Runner) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if r.interval > 0 {
		t := time.NewTicker(r.interval)
		defer t.Stop()
		tick = t.C
	}

	for produced := 0; produced < r.total; {
		// Admit observers between frames.
	drain:
		for {
			select {
			case req := <-r.join:
				r.handleJoin(req)
			case id := <-r.leave:
				r.handleLeave(id)
			case <-ctx.Done():
				r.finish()
				return ctx.Err()
			default:
				break drain
			}
		}
		if tick != nil {
			select {
			case <-tick:
			case req := <-r.join:
				r.handleJoin(req)
				continue
			case id := <-r.leave:
				r.handleLeave(id)
				continue
			case <-ctx.Done():
				r.finish()
				return ctx.Err()
			}
		}

		f, ok := r.src.Next()
		if !ok {
			break
		}
		produced++
		r.count.Store(int64(f.Count))
		r.history = append(r.history, f)
		r.broadcast(f)
	}
	r.finish()
	return nil
}

func (r *Runner) handleJoin(req JoinRequest) {
	backlog := make([]Frame, len(r.history))
	copy(backlog, r.history)
	req.Resp <- backlog
	r.subs[req.SessionID] = req.Out
	if r.log != nil {
		r.log.Printf("observer %s joined at count %d", req.SessionID, len(r.history))
	}
}

func (r *Runner) handleLeave(id string) {
	if out, ok := r.subs[id]; ok {
		delete(r.subs, id)
		close(out)
	}
}

func (r *Runner) broadcast(f Frame) {
	for _, out := range r.subs {
		select {
		case out <- f:
		default:
			// Slow observer: drop the frame rather than stall growth.
			// Seq gaps let the viewer notice.
		}
	}
}

func (r *Runner) finish() {
	r.summary = r.src.Summary()
	for id, out := range r.subs {
		delete(r.subs, id)
		close(out)
	}
	close(r.done)
}
