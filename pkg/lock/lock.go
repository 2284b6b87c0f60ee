// Package lock provides a lock file guarding against overlapping export runs.
package lock

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrLocked is returned when another run holds the lock.
var ErrLocked = errors.New("another export run holds the lock")

// FileLock is an exclusive lock file containing the holder's PID. A lock left
// behind by a crashed run must be removed by the operator.
type FileLock struct {
	path string
	held bool
}

// New creates a lock for path. Nothing touches the filesystem until Acquire.
func New(path string) *FileLock {
	return &FileLock{path: path}
}

// Acquire creates the lock file, failing with ErrLocked if it exists.
func (l *FileLock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w (%s, pid %s)", ErrLocked, l.path, l.holder())
		}
		return fmt.Errorf("create lock file: %w", err)
	}

	_, werr := f.WriteString(strconv.Itoa(os.Getpid()) + "\n")
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(l.path)
		return fmt.Errorf("write lock file: %w", werr)
	}

	l.held = true
	return nil
}

// Release removes the lock file if this lock created it.
func (l *FileLock) Release() error {
	if !l.held {
		return nil
	}
	l.held = false
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove lock file: %w", err)
	}
	return nil
}

func (l *FileLock) holder() string {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return "unknown"
	}
	if pid := strings.TrimSpace(string(data)); pid != "" {
		return pid
	}
	return "unknown"
}
