// ABOUTME: BufferSwitcher applying a picker result to the host
// ABOUTME: Cancellations leave the buffer alone; vanished buffers become notices

package selection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/2389/bufpick/internal/buffers"
	"github.com/2389/bufpick/internal/exchange"
	"github.com/2389/bufpick/internal/host"
)

// SwitchHost is the part of the host the switcher needs.
type SwitchHost interface {
	ListBuffers(ctx context.Context) (buffers.List, error)
	SwitchBuffer(ctx context.Context, name string) error
}

// Applied describes what the switcher did with a result.
type Applied struct {
	Name      string
	Cancelled bool
	Switched  bool
}

// Switcher issues the host's switch-buffer command.
type Switcher struct {
	host   SwitchHost
	logger *slog.Logger
}

// NewSwitcher creates a Switcher.
func NewSwitcher(h SwitchHost, logger *slog.Logger) *Switcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Switcher{
		host:   h,
		logger: logger.With("component", "switcher"),
	}
}

// Apply makes the buffer named by result active.
//
// A result marked cancelled leaves the current buffer unchanged without any
// host command. A result without status that equals the buffer current at
// request time is the legacy cancellation echo; switching to it is a no-op, so
// it is applied like any other name and reported as cancelled.
//
// If the buffer has disappeared since the listing, Apply returns ErrBufferGone
// and issues nothing.
func (s *Switcher) Apply(ctx context.Context, result exchange.Result, snap buffers.Snapshot) (Applied, error) {
	name := exchange.ResolveName(result.Name, snap.Buffers)
	applied := Applied{Name: name}

	if result.Status == exchange.StatusCancelled || name == "" {
		applied.Cancelled = true
		s.logger.Info("selection cancelled, buffer unchanged", "current", snap.Current)
		return applied, nil
	}
	if result.Status == exchange.StatusUnknown && name == snap.Current {
		applied.Cancelled = true
	}

	live, err := s.host.ListBuffers(ctx)
	if err != nil {
		s.logger.Warn("cannot re-list buffers before switching", "error", err)
	} else if !live.Contains(name) {
		return applied, fmt.Errorf("%w: %s", ErrBufferGone, name)
	}

	if err := s.host.SwitchBuffer(ctx, name); err != nil {
		if errors.Is(err, host.ErrUnknownBuffer) {
			return applied, fmt.Errorf("%w: %s", ErrBufferGone, name)
		}
		return applied, fmt.Errorf("%w %s: %w", ErrSwitch, name, err)
	}

	applied.Switched = true
	s.logger.Info("buffer switched", "buffer", name)
	return applied, nil
}
