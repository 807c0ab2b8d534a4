// Package lock serializes mutating commands against the SSOT tree.
// A single lock file at the gov root carries an advisory flock(2)
// exclusive lock; its content is irrelevant and it can stay in version
// control ignore lists. Read-only commands never acquire it.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"
)

// FileName is the lock file kept at the gov root.
const FileName = ".docgov.lock"

// PollInterval is the backoff between acquisition attempts while the
// lock is held elsewhere.
const PollInterval = 100 * time.Millisecond

// ErrRootMissing is returned when the gov root does not exist yet.
var ErrRootMissing = errors.New("gov root does not exist")

// TimeoutError reports that the lock could not be acquired within the
// configured deadline. It is an actionable user error, not a bug.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf(
		"another write command is in progress; wait for it to finish or retry later (timed out after %s waiting for exclusive access)",
		e.Timeout,
	)
}

// Guard holds the exclusive tree lock. Release it with a deferred
// Release call at the acquisition site so every exit path, including
// error returns, releases it. Release is idempotent.
type Guard struct {
	file *os.File
	once sync.Once
}

// Release drops the lock and closes the lock file. Safe to call more
// than once; only the first call has effect.
func (g *Guard) Release() {
	if g == nil || g.file == nil {
		return
	}
	g.once.Do(func() {
		_ = syscall.Flock(int(g.file.Fd()), syscall.LOCK_UN)
		_ = g.file.Close()
	})
}

// Acquire obtains the exclusive lock for govRoot, polling until timeout.
// On contention past the deadline it fails with a TimeoutError. A
// process killed while holding the lock releases it implicitly when the
// OS closes its descriptors; a stale lock file on disk is harmless.
func Acquire(govRoot string, timeout time.Duration) (*Guard, error) {
	if _, err := os.Stat(govRoot); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s (run 'docgov init' first)", ErrRootMissing, govRoot)
		}
		return nil, fmt.Errorf("stat gov root: %w", err)
	}

	path := filepath.Join(govRoot, FileName)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", path, err)
	}

	deadline := time.Now().Add(timeout)
	for {
		err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			return &Guard{file: file}, nil
		}
		if !errors.Is(err, syscall.EWOULDBLOCK) {
			_ = file.Close()
			return nil, fmt.Errorf("acquire lock %s: %w", path, err)
		}
		if time.Now().After(deadline) {
			_ = file.Close()
			return nil, &TimeoutError{Timeout: timeout}
		}
		time.Sleep(PollInterval)
	}
}
