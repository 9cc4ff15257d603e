package runlock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// FileLock is an advisory lock on a file in the data dir.
type FileLock struct {
	fl *flock.Flock
}

func NewFileLock(path string) *FileLock {
	return &FileLock{fl: flock.New(path)}
}

func (l *FileLock) TryLock(context.Context) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.fl.Path()), 0o755); err != nil {
		return false, fmt.Errorf("create lock dir: %w", err)
	}
	ok, err := l.fl.TryLock()
	if err != nil {
		return false, fmt.Errorf("flock %s: %w", l.fl.Path(), err)
	}
	return ok, nil
}

func (l *FileLock) Unlock(context.Context) error {
	return l.fl.Unlock()
}
