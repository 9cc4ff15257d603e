package poll

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"jobboard-engine/internal/events"
	"jobboard-engine/internal/runlock"
	"jobboard-engine/internal/scheduler"
)

// ErrAlreadyRunning is returned by Trigger while another run is in flight.
var ErrAlreadyRunning = errors.New("ingestion run already in progress")

type Status struct {
	Running     bool      `json:"running"`
	LastRunAt   time.Time `json:"lastRunAt,omitzero"`
	LastOkAt    time.Time `json:"lastOkAt,omitzero"`
	LastError   string    `json:"lastError,omitempty"`
	LastSummary *Summary  `json:"lastSummary,omitempty"`
}

// Poller serializes runs: at most one per process, and with a Locker at
// most one across processes.
type Poller struct {
	runner *Runner
	lock   runlock.Locker
	hub    *events.Hub

	mu     sync.Mutex
	status atomic.Value // Status
}

func NewPoller(r *Runner, lock runlock.Locker, hub *events.Hub) *Poller {
	if lock == nil {
		lock = runlock.Noop{}
	}
	p := &Poller{runner: r, lock: lock, hub: hub}
	p.status.Store(Status{})
	return p
}

func (p *Poller) Status() Status {
	return p.status.Load().(Status)
}

// Trigger runs once unless a run is already in flight here
// (ErrAlreadyRunning) or in another process (runlock.ErrLocked).
func (p *Poller) Trigger(ctx context.Context) (Summary, error) {
	if !p.mu.TryLock() {
		return Summary{}, ErrAlreadyRunning
	}
	defer p.mu.Unlock()
	return p.run(ctx)
}

// TriggerAsync claims the run slot synchronously and runs in the
// background, so callers learn about contention immediately.
func (p *Poller) TriggerAsync(ctx context.Context) error {
	if !p.mu.TryLock() {
		return ErrAlreadyRunning
	}
	go func() {
		defer p.mu.Unlock()
		if _, err := p.run(ctx); err != nil {
			log.Printf("[poll] manual run: %v", err)
		}
	}()
	return nil
}

// Wait blocks until the in-flight run, if any, has finished. Callers stop
// scheduling new runs first (cancel Start's ctx) and then Wait before
// closing the store.
func (p *Poller) Wait() {
	p.mu.Lock()
	defer p.mu.Unlock()
}

// run must be called with p.mu held.
func (p *Poller) run(ctx context.Context) (Summary, error) {
	if err := runlock.Acquire(ctx, p.lock); err != nil {
		p.update(func(st *Status) {
			st.LastRunAt = time.Now().UTC()
			st.LastError = err.Error()
		})
		return Summary{}, err
	}
	defer func() {
		if err := p.lock.Unlock(context.WithoutCancel(ctx)); err != nil {
			log.Printf("[poll] run lock release: %v", err)
		}
	}()

	p.update(func(st *Status) {
		st.Running = true
		st.LastRunAt = time.Now().UTC()
	})
	p.hub.Emit(events.TypeRunStarted, nil)

	sum := p.runner.RunOnce(ctx)

	p.update(func(st *Status) {
		st.Running = false
		st.LastSummary = &sum
		if err := ctx.Err(); err != nil {
			st.LastError = err.Error()
			return
		}
		st.LastError = ""
		st.LastOkAt = sum.FinishedAt
	})
	p.hub.Emit(events.TypeRunCompleted, sum.Totals)
	return sum, ctx.Err()
}

// Start schedules Trigger every interval, first run immediately, until ctx
// is done. Contention is logged and the tick skipped.
func (p *Poller) Start(ctx context.Context, interval time.Duration) {
	scheduler.Every(ctx, interval, "poll", func(ctx context.Context) error {
		_, err := p.Trigger(ctx)
		switch {
		case errors.Is(err, ErrAlreadyRunning), errors.Is(err, runlock.ErrLocked):
			log.Printf("[poll] tick skipped: %v", err)
			return nil
		default:
			return err
		}
	})
}

func (p *Poller) update(fn func(*Status)) {
	st := p.Status()
	fn(&st)
	p.status.Store(st)
}
