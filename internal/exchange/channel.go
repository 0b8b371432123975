// ABOUTME: ExchangeChannel owning the input/output files in the scratch directory
// ABOUTME: All writes go through temp-file + rename so pollers never see partial content

package exchange

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/2389/bufpick/internal/buffers"
)

// File names inside the scratch directory.
const (
	InputFile  = "buffers-in"
	OutputFile = "buffers-out"
	lockFile   = "lock"
)

// Stamp is the observable state of the output file used to detect a result.
type Stamp struct {
	ModTime time.Time
	Size    int64
}

// Channel is the pair of exchange files rooted at one scratch directory.
type Channel struct {
	dir    string
	logger *slog.Logger
}

// DefaultDir returns the scratch directory used when none is configured:
// $XDG_RUNTIME_DIR/bufpick, or a per-user directory under os.TempDir().
func DefaultDir() string {
	if runtime := os.Getenv("XDG_RUNTIME_DIR"); runtime != "" {
		return filepath.Join(runtime, "bufpick")
	}
	return filepath.Join(os.TempDir(), "bufpick-"+strconv.Itoa(os.Getuid()))
}

// New creates a Channel rooted at dir. An empty dir selects DefaultDir().
func New(dir string, logger *slog.Logger) *Channel {
	if dir == "" {
		dir = DefaultDir()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Channel{
		dir:    dir,
		logger: logger.With("component", "exchange"),
	}
}

// Dir returns the scratch directory.
func (c *Channel) Dir() string { return c.dir }

// InputPath returns the path of the buffer-list file.
func (c *Channel) InputPath() string { return filepath.Join(c.dir, InputFile) }

// OutputPath returns the path of the result file.
func (c *Channel) OutputPath() string { return filepath.Join(c.dir, OutputFile) }

// Prepare creates the scratch directory and truncates the output file so the
// next cycle starts from a clean baseline. It is called once at registration.
func (c *Channel) Prepare() error {
	if err := os.MkdirAll(c.dir, 0700); err != nil {
		return fmt.Errorf("creating exchange directory: %w", err)
	}
	if err := os.WriteFile(c.OutputPath(), nil, 0600); err != nil {
		return fmt.Errorf("resetting output file: %w", err)
	}
	c.logger.Debug("exchange prepared", "dir", c.dir)
	return nil
}

// WriteInput replaces the input file with the serialised buffer list.
func (c *Channel) WriteInput(list buffers.List) error {
	if err := writeAtomic(c.InputPath(), EncodeInput(list)); err != nil {
		return fmt.Errorf("writing buffer list: %w", err)
	}
	c.logger.Debug("buffer list written", "path", c.InputPath(), "count", len(list))
	return nil
}

// ReadInput parses the input file.
func (c *Channel) ReadInput() (buffers.List, error) {
	data, err := os.ReadFile(c.InputPath())
	if err != nil {
		return nil, fmt.Errorf("reading buffer list: %w", err)
	}
	return DecodeInput(data)
}

// WriteResult replaces the output file with r. This is the single write that
// completes a cycle from the waiter's point of view.
func (c *Channel) WriteResult(r Result) error {
	if err := writeAtomic(c.OutputPath(), r.Encode()); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}
	return nil
}

// ReadResult decodes the output file.
func (c *Channel) ReadResult() (Result, error) {
	data, err := os.ReadFile(c.OutputPath())
	if err != nil {
		return Result{}, fmt.Errorf("reading result: %w", err)
	}
	return DecodeResult(data), nil
}

// ReadOutputFirstLine returns the first line of the output file.
func (c *Channel) ReadOutputFirstLine() (string, error) {
	data, err := os.ReadFile(c.OutputPath())
	if err != nil {
		return "", fmt.Errorf("reading result: %w", err)
	}
	return FirstLine(data), nil
}

// Stat returns the output file's stamp. A missing file yields a zero Stamp.
func (c *Channel) Stat() (Stamp, error) {
	info, err := os.Stat(c.OutputPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Stamp{}, nil
		}
		return Stamp{}, fmt.Errorf("stat result file: %w", err)
	}
	return Stamp{ModTime: info.ModTime(), Size: info.Size()}, nil
}

// writeAtomic writes data to a temp file next to path and renames it over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
