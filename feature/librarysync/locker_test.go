package librarysync

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker_SerializesSameLibrary(t *testing.T) {
	locker := NewLocker(t.TempDir())
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, 1)
	require.NoError(t, err)

	_, err = os.Stat(locker.LockPath(1))
	assert.NoError(t, err, "lock file should exist")

	acquired := make(chan struct{})
	go func() {
		unlockSecond, err := locker.Lock(ctx, 1)
		if err == nil {
			close(acquired)
			unlockSecond()
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while the first is held")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("second lock not acquired after release")
	}
}

func TestLocker_DifferentLibrariesIndependent(t *testing.T) {
	locker := NewLocker(t.TempDir())
	ctx := context.Background()

	unlockA, err := locker.Lock(ctx, 1)
	require.NoError(t, err)
	defer unlockA()

	unlockB, err := locker.Lock(ctx, 2)
	require.NoError(t, err)
	unlockB()
}

func TestLocker_ContextCancelled(t *testing.T) {
	locker := NewLocker("")

	unlock, err := locker.Lock(context.Background(), 1)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = locker.Lock(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
