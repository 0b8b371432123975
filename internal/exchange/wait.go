// ABOUTME: ResultWaiter that blocks until the picker has written a result
// ABOUTME: Polls (mtime, size) against a baseline, woken early by fsnotify

package exchange

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is the fixed re-check interval of the wait loop.
const DefaultPollInterval = 200 * time.Millisecond

var (
	// ErrWaitTimeout is returned when no result appears before the deadline.
	ErrWaitTimeout = errors.New("timed out waiting for picker result")
	// ErrPickerGone is returned when the liveness probe reports the picker
	// pane has disappeared without leaving a result.
	ErrPickerGone = errors.New("picker exited without writing a result")
)

// LivenessProbe reports whether the picker is still running.
type LivenessProbe func(ctx context.Context) (bool, error)

// Waiter waits for a fresh result in a Channel's output file.
type Waiter struct {
	channel    *Channel
	interval   time.Duration
	timeout    time.Duration
	probe      LivenessProbe
	probeEvery int
	notify     bool
	logger     *slog.Logger
}

// WaiterOption configures a Waiter.
type WaiterOption func(*Waiter)

// WithInterval sets the poll interval.
func WithInterval(d time.Duration) WaiterOption {
	return func(w *Waiter) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithTimeout bounds the wait. Zero means wait until the context ends.
func WithTimeout(d time.Duration) WaiterOption {
	return func(w *Waiter) {
		w.timeout = d
	}
}

// WithLivenessProbe consults probe every n ticks.
func WithLivenessProbe(probe LivenessProbe, every int) WaiterOption {
	return func(w *Waiter) {
		w.probe = probe
		if every < 1 {
			every = 1
		}
		w.probeEvery = every
	}
}

// WithoutNotify disables the fsnotify wake-up, leaving plain polling.
func WithoutNotify() WaiterOption {
	return func(w *Waiter) {
		w.notify = false
	}
}

// NewWaiter creates a Waiter for ch.
func NewWaiter(ch *Channel, logger *slog.Logger, opts ...WaiterOption) *Waiter {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Waiter{
		channel:    ch,
		interval:   DefaultPollInterval,
		probeEvery: 5,
		notify:     true,
		logger:     logger.With("component", "waiter"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Ready reports whether current is a completed result relative to baseline:
// the modification time must have moved and the file must be non-empty.
func Ready(baseline, current Stamp) bool {
	return !current.ModTime.Equal(baseline.ModTime) && current.Size > 0
}

// Baseline captures the stamp to compare against. It must be taken before the
// picker is launched so a fast picker cannot be missed.
func (w *Waiter) Baseline() (Stamp, error) {
	return w.channel.Stat()
}

// Await blocks until Ready(baseline, stamp) holds, the timeout elapses, the
// liveness probe reports the picker gone, or ctx is done.
func (w *Waiter) Await(ctx context.Context, baseline Stamp) (Stamp, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var deadline <-chan time.Time
	if w.timeout > 0 {
		timer := time.NewTimer(w.timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	var wake <-chan struct{}
	if w.notify {
		wake = w.watch(ctx)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	ticks := 0
	for {
		stamp, err := w.channel.Stat()
		if err != nil {
			return Stamp{}, err
		}
		if Ready(baseline, stamp) {
			w.logger.Debug("result observed", "size", stamp.Size, "mtime", stamp.ModTime)
			return stamp, nil
		}

		select {
		case <-ctx.Done():
			return Stamp{}, ctx.Err()
		case <-deadline:
			return Stamp{}, ErrWaitTimeout
		case <-wake:
		case <-ticker.C:
			ticks++
			if w.probe == nil || ticks%w.probeEvery != 0 {
				continue
			}
			alive, err := w.probe(ctx)
			if err != nil {
				w.logger.Debug("liveness probe failed", "error", err)
				continue
			}
			if alive {
				continue
			}
			// The picker may have written its result just before exiting.
			stamp, err := w.channel.Stat()
			if err == nil && Ready(baseline, stamp) {
				return stamp, nil
			}
			return Stamp{}, ErrPickerGone
		}
	}
}

// watch forwards fsnotify events for the output file as wake-ups. It returns
// nil when no watcher can be created; polling then carries the wait alone.
func (w *Waiter) watch(ctx context.Context) <-chan struct{} {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Debug("fsnotify unavailable, polling only", "error", err)
		return nil
	}
	if err := watcher.Add(w.channel.Dir()); err != nil {
		watcher.Close()
		w.logger.Debug("cannot watch exchange directory, polling only", "error", err)
		return nil
	}

	wake := make(chan struct{}, 1)
	target := w.channel.OutputPath()

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != target {
					continue
				}
				select {
				case wake <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				w.logger.Debug("fsnotify error", "error", err)
			}
		}
	}()

	return wake
}
