package librarysync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// lockRetryDelay is how often a held lock file is polled.
const lockRetryDelay = 200 * time.Millisecond

// Locker serializes passes per library. Inside the process a keyed mutex is
// used; when a directory is configured a lock file per library is held as
// well so separate processes exclude each other.
type Locker struct {
	dir string

	mu    sync.Mutex
	slots map[uint]chan struct{}
}

// NewLocker creates a locker. An empty dir disables lock files.
func NewLocker(dir string) *Locker {
	return &Locker{dir: dir, slots: make(map[uint]chan struct{})}
}

// Lock blocks until the library is free or ctx is done. The returned
// function releases the lock.
func (l *Locker) Lock(ctx context.Context, libraryID uint) (func(), error) {
	slot := l.slot(libraryID)
	select {
	case slot <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for library %d: %w", libraryID, ctx.Err())
	}
	release := func() { <-slot }

	if l.dir == "" {
		return release, nil
	}

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		release()
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	fl := flock.New(l.LockPath(libraryID))
	ok, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		release()
		return nil, fmt.Errorf("acquire lock for library %d: %w", libraryID, err)
	}
	if !ok {
		release()
		return nil, fmt.Errorf("library %d is locked by another process", libraryID)
	}

	return func() {
		_ = fl.Unlock()
		release()
	}, nil
}

// LockPath returns the lock file of a library.
func (l *Locker) LockPath(libraryID uint) string {
	return filepath.Join(l.dir, fmt.Sprintf("library-%d.lock", libraryID))
}

func (l *Locker) slot(libraryID uint) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot, ok := l.slots[libraryID]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[libraryID] = slot
	}
	return slot
}
