package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

var (
	// ErrLockTimeout is returned when acquiring a lock times out.
	ErrLockTimeout = errors.New("timeout acquiring lock")
	// ErrPathRequired is returned when the path to lock is empty.
	ErrPathRequired = errors.New("path is required")
	// ErrNilLock is returned when a nil lock handle is released.
	ErrNilLock = errors.New("nil lock handle")
)

// pollInterval is how often a contended lock is retried.
const pollInterval = 10 * time.Millisecond

// lockSuffix is appended to the guarded path to name the lock file.
const lockSuffix = ".lock"

// FileLock is a handle to a held OS-level lock.
type FileLock struct {
	Path  string
	flock *flock.Flock
}

// Locker acquires exclusive cross-process locks on paths.
type Locker interface {
	Lock(ctx context.Context, path string) (*FileLock, error)
	Unlock(lock *FileLock) error
}

// LockManager hands out flock-based locks on "<path>.lock" files.
type LockManager struct {
	timeout time.Duration
}

// NewLockManager returns a LockManager that gives up after timeout.
func NewLockManager(timeout time.Duration) *LockManager {
	if timeout <= 0 {
		timeout = time.Second
	}
	return &LockManager{timeout: timeout}
}

// Lock blocks until the lock for path is held, ctx is done or the manager timeout elapses.
func (lm *LockManager) Lock(ctx context.Context, path string) (*FileLock, error) {
	if path == "" {
		return nil, ErrPathRequired
	}

	ctx, cancel := context.WithTimeout(ctx, lm.timeout)
	defer cancel()

	fileLock := flock.New(path + lockSuffix)
	locked, err := fileLock.TryLockContext(ctx, pollInterval)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrLockTimeout
		}
		return nil, fmt.Errorf("error acquiring file lock for %s: %w", path, err)
	}
	if !locked {
		return nil, ErrLockTimeout
	}
	return &FileLock{Path: path, flock: fileLock}, nil
}

// Unlock releases a lock obtained from Lock.
func (lm *LockManager) Unlock(lock *FileLock) error {
	if lock == nil {
		return ErrNilLock
	}
	if lock.flock == nil {
		return nil
	}
	return lock.flock.Unlock()
}

// WithLock runs fn while holding the lock for path. An unlock failure is
// returned when fn itself succeeded.
func WithLock(ctx context.Context, locker Locker, path string, fn func() error) (err error) {
	held, err := locker.Lock(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if unlockErr := locker.Unlock(held); unlockErr != nil && err == nil {
			err = fmt.Errorf("error releasing file lock for %s: %w", path, unlockErr)
		}
	}()
	return fn()
}

var _ Locker = (*LockManager)(nil)
