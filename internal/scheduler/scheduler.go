// Package scheduler runs a task on a fixed interval.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"time"
)

type Task func(ctx context.Context) error

// Every runs task immediately and then on each tick until ctx is done.
// Runs never overlap: the task executes in the loop goroutine and ticks that
// fire while it is busy are dropped by the ticker. Errors and panics are
// logged and do not stop the loop.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	runSafe(ctx, name, task)

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			runSafe(ctx, name, task)
		}
	}
}

func runSafe(ctx context.Context, name string, task Task) {
	if ctx.Err() != nil {
		return
	}
	if err := run(ctx, task); err != nil {
		log.Printf("[%s] error: %v", name, err)
	}
}

func run(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return task(ctx)
}
