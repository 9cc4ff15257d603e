// Package runlock guards ingestion runs against overlap across processes.
// The in-process guard lives in poll.Poller; a Locker extends it to other
// engine instances sharing a data dir (file lock) or a Redis server.
package runlock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLocked means another holder owns the lock.
var ErrLocked = errors.New("run lock held elsewhere")

type Locker interface {
	// TryLock acquires without waiting. ok is false when the lock is held.
	TryLock(ctx context.Context) (ok bool, err error)
	Unlock(ctx context.Context) error
}

// Acquire is TryLock with contention reported as ErrLocked.
func Acquire(ctx context.Context, l Locker) error {
	ok, err := l.TryLock(ctx)
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	return nil
}

type Options struct {
	Kind      string // none | file | redis
	Path      string
	RedisAddr string
	Key       string
	TTL       time.Duration
}

// New builds the configured locker. Kind "" and "none" return Noop.
func New(opts Options) (Locker, error) {
	switch strings.ToLower(opts.Kind) {
	case "", "none":
		return Noop{}, nil
	case "file":
		if opts.Path == "" {
			return nil, errors.New("file lock path is required")
		}
		return NewFileLock(opts.Path), nil
	case "redis":
		if opts.RedisAddr == "" {
			return nil, errors.New("redis lock addr is required")
		}
		rdb := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})
		return NewRedisLock(rdb, opts.Key, opts.TTL), nil
	default:
		return nil, fmt.Errorf("unknown lock kind %q", opts.Kind)
	}
}

// Noop always succeeds.
type Noop struct{}

func (Noop) TryLock(context.Context) (bool, error) { return true, nil }
func (Noop) Unlock(context.Context) error          { return nil }
