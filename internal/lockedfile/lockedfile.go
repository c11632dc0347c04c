// Package lockedfile provides an inter-process mutex backed by an advisory
// lock on a file.
package lockedfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// Mutex is an exclusive lock on the file at Path.
type Mutex struct {
	Path string
}

// MutexAt returns a Mutex locking path. The file is created on first use.
func MutexAt(path string) *Mutex {
	return &Mutex{Path: path}
}

// Lock blocks until the lock is held and returns the function releasing it.
func (m *Mutex) Lock() (unlock func(), err error) {
	return m.lock(true)
}

// TryLock is like Lock but fails with ErrLocked instead of waiting.
func (m *Mutex) TryLock() (unlock func(), err error) {
	return m.lock(false)
}

func (m *Mutex) lock(wait bool) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(m.Path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(m.Path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	if err := lockFile(f, wait); err != nil {
		f.Close()
		return nil, fmt.Errorf("lock %s: %w", m.Path, err)
	}
	return func() {
		unlockFile(f)
		f.Close()
	}, nil
}
