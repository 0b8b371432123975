//go:build !unix

// ABOUTME: Cycle lock fallback for platforms without flock
// ABOUTME: Holds the lock as an exclusively created file in the exchange directory

package exchange

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrBusy is returned when another cycle holds the exchange lock.
var ErrBusy = errors.New("another buffer selection is already in progress")

// Lock is an exclusive hold on the exchange directory, held as an O_EXCL file.
type Lock struct {
	path string
}

// Lock acquires the exchange lock without blocking, creating the scratch
// directory if needed.
func (c *Channel) Lock() (*Lock, error) {
	if err := os.MkdirAll(c.dir, 0700); err != nil {
		return nil, fmt.Errorf("creating exchange directory: %w", err)
	}
	path := filepath.Join(c.dir, lockFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, ErrBusy
		}
		return nil, fmt.Errorf("creating lock file: %w", err)
	}
	f.Close()
	return &Lock{path: path}, nil
}

// Unlock releases the lock.
func (l *Lock) Unlock() error {
	if l == nil || l.path == "" {
		return nil
	}
	err := os.Remove(l.path)
	l.path = ""
	return err
}
