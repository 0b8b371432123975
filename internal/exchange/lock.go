//go:build unix

// ABOUTME: Cross-process cycle lock on the exchange directory using flock
// ABOUTME: Rejects a second selection cycle while one is waiting on the same files

package exchange

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// ErrBusy is returned when another cycle holds the exchange lock.
var ErrBusy = errors.New("another buffer selection is already in progress")

// Lock is an exclusive hold on the exchange directory.
type Lock struct {
	f *os.File
}

// Lock acquires the exchange lock without blocking, creating the scratch
// directory if needed.
func (c *Channel) Lock() (*Lock, error) {
	if err := os.MkdirAll(c.dir, 0700); err != nil {
		return nil, fmt.Errorf("creating exchange directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(c.dir, lockFile), os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrBusy
		}
		return nil, fmt.Errorf("locking exchange directory: %w", err)
	}
	return &Lock{f: f}, nil
}

// Unlock releases the lock.
func (l *Lock) Unlock() error {
	if l == nil || l.f == nil {
		return nil
	}
	err := unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	l.f = nil
	return err
}
