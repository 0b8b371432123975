// ABOUTME: BufferLister that snapshots the host's buffer directory and current buffer
// ABOUTME: Current-buffer failures degrade to an empty selection instead of aborting

package buffers

import (
	"context"
	"fmt"
	"log/slog"
)

// Source is the read-only part of the host that the lister queries.
type Source interface {
	ListBuffers(ctx context.Context) (List, error)
	CurrentBuffer(ctx context.Context) (string, error)
}

// Lister takes buffer snapshots from a Source.
type Lister struct {
	source  Source
	current string
	logger  *slog.Logger
}

// ListerOption configures a Lister.
type ListerOption func(*Lister)

// WithCurrent overrides the host's current-buffer accessor with a fixed name,
// typically passed in by the command that triggered the cycle.
func WithCurrent(name string) ListerOption {
	return func(l *Lister) {
		l.current = name
	}
}

// NewLister creates a Lister reading from source.
func NewLister(source Source, logger *slog.Logger, opts ...ListerOption) *Lister {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Lister{
		source: source,
		logger: logger.With("component", "buffers"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// List returns the buffers present at call time and the current buffer name.
// Failing to determine the current buffer is not an error: Current is left
// empty and the picker starts at index 0.
func (l *Lister) List(ctx context.Context) (Snapshot, error) {
	list, err := l.source.ListBuffers(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("listing buffers: %w", err)
	}

	snap := Snapshot{Buffers: list}
	if l.current != "" {
		snap.Current = l.current
	} else {
		current, err := l.source.CurrentBuffer(ctx)
		if err != nil {
			l.logger.Warn("current buffer unavailable, starting at first entry", "error", err)
		} else {
			snap.Current = current
		}
	}

	if snap.Current != "" && !list.Contains(snap.Current) {
		l.logger.Warn("current buffer not in listing", "current", snap.Current, "buffers", len(list))
	}

	l.logger.Debug("buffers listed", "count", len(list), "current", snap.Current)
	return snap, nil
}
