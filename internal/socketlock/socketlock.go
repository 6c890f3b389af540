// Package socketlock guards a socket path against two daemon instances
// racing to bind (and silently steal) it: before touching the socket file,
// the daemon takes an exclusive advisory lock on a sibling ".lock" file.
package socketlock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Guard holds an acquired advisory lock for a socket path's lifetime.
type Guard struct {
	lock *flock.Flock
}

// Acquire takes an exclusive, non-blocking lock on socketPath + ".lock",
// creating parent directories as needed. It returns an error if another
// live process already holds the lock — that process owns the socket path.
func Acquire(socketPath string) (*Guard, error) {
	lockPath := socketPath + ".lock"
	if parent := filepath.Dir(lockPath); parent != "." {
		if err := os.MkdirAll(parent, 0o700); err != nil {
			return nil, fmt.Errorf("create lock parent %s: %w", parent, err)
		}
	}

	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", lockPath, err)
	}
	if !ok {
		return nil, fmt.Errorf("another daemon already holds %s", lockPath)
	}

	return &Guard{lock: lock}, nil
}

// Release drops the lock. The lock file itself is left on disk; flock's
// semantics only require dropping the held lock, and removing the file
// would race a concurrent Acquire.
func (g *Guard) Release() error {
	return g.lock.Unlock()
}
