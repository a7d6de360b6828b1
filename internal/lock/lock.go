// Package lock provides the single-instance marker that guards an output
// area against concurrent audit runs.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrAlreadyRunning means another run owns the lock marker. There is no
// retry or backoff; callers abort immediately.
var ErrAlreadyRunning = errors.New("another audit run is already in progress")

// Lock is a held lock marker.
type Lock struct {
	path string
}

// DefaultPath is the well-known marker location for one host.
func DefaultPath() string {
	return filepath.Join(os.TempDir(), "logsift.lock")
}

// Acquire claims the marker file at path, recording the owning pid in it.
// An existing marker fails the call with ErrAlreadyRunning.
func Acquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			if pid := ownerPID(path); pid > 0 {
				return nil, fmt.Errorf("%w (pid %d, marker %s)", ErrAlreadyRunning, pid, path)
			}
			return nil, fmt.Errorf("%w (marker %s)", ErrAlreadyRunning, path)
		}
		return nil, fmt.Errorf("create lock marker: %w", err)
	}

	_, werr := fmt.Fprintf(f, "%d\n", os.Getpid())
	cerr := f.Close()
	if werr != nil || cerr != nil {
		os.Remove(path)
		if werr == nil {
			werr = cerr
		}
		return nil, fmt.Errorf("write lock marker: %w", werr)
	}
	return &Lock{path: path}, nil
}

// Release removes the marker. Safe to call more than once.
func (l *Lock) Release() {
	if l.path == "" {
		return
	}
	os.Remove(l.path)
	l.path = ""
}

// ownerPID reads the pid recorded in an existing marker, 0 if unknown.
func ownerPID(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return pid
}
