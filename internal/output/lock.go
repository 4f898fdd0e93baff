package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another polysplit run holds the output lock.
var ErrLocked = errors.New("output is in use by another polysplit run")

// LockSuffix is appended to the requested output path to name its lock.
const LockSuffix = ".polysplit.lock"

// Lock is an exclusive advisory lock on an output path.
type Lock struct {
	path string
	fl   *flock.Flock
}

// LockPath returns the lock file for requested.
func LockPath(requested string) string {
	return filepath.Clean(requested) + LockSuffix
}

// AcquireLock takes the lock for requested without blocking. The parent
// directory is created if needed.
func AcquireLock(requested string) (*Lock, error) {
	path := LockPath(requested)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("lock dir: %w", err)
	}
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return &Lock{path: path, fl: fl}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.path }

// Release unlocks. The lock file stays on disk: unlinking it would let a
// waiter that already opened the old inode lock a file no new run can see.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.path, err)
	}
	return nil
}
