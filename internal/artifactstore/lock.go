package artifactstore

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// itemLock serializes access to one item's artifacts and state file across
// goroutines in this process (sync.Mutex) and across processes on the same
// host (flock, the same advisory-lock dependency the daemon uses for its
// single-instance guard).
type itemLock struct {
	mu    sync.Mutex
	flock *flock.Flock
}

type lockManager struct {
	mu    sync.Mutex
	locks map[string]*itemLock
	dir   string
}

func newLockManager(lockDir string) *lockManager {
	return &lockManager{locks: map[string]*itemLock{}, dir: lockDir}
}

func (lm *lockManager) forItem(itemID string) *itemLock {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	l, ok := lm.locks[itemID]
	if !ok {
		l = &itemLock{flock: flock.New(filepath.Join(lm.dir, itemID+".lock"))}
		lm.locks[itemID] = l
	}
	return l
}

const lockPollInterval = 20 * time.Millisecond

// Lock acquires the per-item lock. The wait for the in-process half does
// not observe ctx; the wait for the cross-process file lock ends when ctx
// is done. The returned func releases both the in-process and
// cross-process halves of the lock and must be called exactly once.
func (lm *lockManager) Lock(ctx context.Context, itemID string) (func(), error) {
	l := lm.forItem(itemID)
	l.mu.Lock()

	ok, err := l.flock.TryLockContext(ctx, lockPollInterval)
	if err != nil {
		l.mu.Unlock()
		return nil, fmt.Errorf("acquire item lock %s: %w", itemID, err)
	}
	if !ok {
		l.mu.Unlock()
		return nil, fmt.Errorf("acquire item lock %s: %w", itemID, ctx.Err())
	}

	return func() {
		_ = l.flock.Unlock()
		l.mu.Unlock()
	}, nil
}
