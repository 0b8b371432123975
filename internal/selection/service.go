// ABOUTME: Selection Service orchestrating list → request → wait → apply
// ABOUTME: Guards against overlapping cycles and offers blocking and background entry points

package selection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/2389/bufpick/internal/buffers"
	"github.com/2389/bufpick/internal/exchange"
	"github.com/2389/bufpick/internal/host"
	"github.com/2389/bufpick/internal/picker"
)

// DefaultWaitTimeout bounds how long a cycle waits for the user.
const DefaultWaitTimeout = 2 * time.Minute

// State is the position of the service in the selection cycle.
type State int

const (
	StateIdle State = iota
	StateListed
	StateRequested
	StateWaiting
	StateApplied
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListed:
		return "listed"
	case StateRequested:
		return "requested"
	case StateWaiting:
		return "waiting"
	case StateApplied:
		return "applied"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Lister snapshots the host's buffers.
type Lister interface {
	List(ctx context.Context) (buffers.Snapshot, error)
}

// Requester launches the picker.
type Requester interface {
	Request(ctx context.Context, req picker.Request) (picker.Launch, error)
}

// PaneController inspects and closes the picker pane.
type PaneController interface {
	PaneExists(ctx context.Context, paneID string) (bool, error)
	KillPane(ctx context.Context, paneID string) error
}

// Outcome summarises a completed cycle.
type Outcome struct {
	Cycle     string
	PaneID    string
	Selected  string
	Cancelled bool
	Switched  bool
	// Notice is a user-facing message for non-fatal problems.
	Notice string
}

// Service runs selection cycles. At most one cycle runs at a time.
type Service struct {
	lister    Lister
	requester Requester
	channel   *exchange.Channel
	switcher  *Switcher
	panes     PaneController
	notifier  host.Notifier
	interval  time.Duration
	timeout   time.Duration
	onState   func(State)
	logger    *slog.Logger

	mu      sync.Mutex
	running bool
	state   State
}

// Option configures a Service.
type Option func(*Service)

// WithPanes enables pane liveness checks and closing the pane on timeout.
func WithPanes(p PaneController) Option {
	return func(s *Service) {
		s.panes = p
	}
}

// WithNotifier sends failures and notices to the user through the host.
func WithNotifier(n host.Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithPollInterval sets the result poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithWaitTimeout sets how long to wait for a result. Zero disables the limit.
func WithWaitTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

// WithStateHook calls fn on every state transition.
func WithStateHook(fn func(State)) Option {
	return func(s *Service) {
		s.onState = fn
	}
}

// New creates a Service.
func New(lister Lister, requester Requester, channel *exchange.Channel, switcher *Switcher, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		lister:    lister,
		requester: requester,
		channel:   channel,
		switcher:  switcher,
		interval:  exchange.DefaultPollInterval,
		timeout:   DefaultWaitTimeout,
		logger:    logger.With("component", "selection"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Prepare initialises the exchange directory. Call it once, when the command
// is registered.
func (s *Service) Prepare() error {
	return s.channel.Prepare()
}

// State returns the current cycle state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run executes one cycle and blocks until it is complete.
func (s *Service) Run(ctx context.Context) (Outcome, error) {
	if !s.begin() {
		return Outcome{}, ErrBusy
	}
	defer s.finish()
	return s.run(ctx)
}

// Start executes one cycle in the background and calls done with its result.
// It returns ErrBusy immediately if a cycle is already running.
func (s *Service) Start(ctx context.Context, done func(Outcome, error)) error {
	if !s.begin() {
		return ErrBusy
	}
	go func() {
		outcome, err := s.run(ctx)
		s.finish()
		if done != nil {
			done(outcome, err)
		}
	}()
	return nil
}

func (s *Service) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *Service) finish() {
	s.setState(StateIdle)
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

func (s *Service) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	if s.onState != nil {
		s.onState(state)
	}
}

func (s *Service) run(ctx context.Context) (Outcome, error) {
	outcome := Outcome{Cycle: uuid.NewString()}
	logger := s.logger.With("cycle", outcome.Cycle)

	lock, err := s.channel.Lock()
	if err != nil {
		if errors.Is(err, exchange.ErrBusy) {
			return outcome, ErrBusy
		}
		return outcome, s.fail(ctx, fmt.Errorf("%w: %w", ErrExchangeWrite, err))
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("releasing exchange lock", "error", err)
		}
	}()

	snap, err := s.lister.List(ctx)
	if err != nil {
		return outcome, s.fail(ctx, fmt.Errorf("%w: %w", ErrListing, err))
	}
	s.setState(StateListed)

	waiter := exchange.NewWaiter(s.channel, logger)
	baseline, err := waiter.Baseline()
	if err != nil {
		return outcome, s.fail(ctx, fmt.Errorf("%w: %w", ErrExchangeRead, err))
	}

	launch, err := s.requester.Request(ctx, picker.Request{Snapshot: snap, CycleID: outcome.Cycle})
	if err != nil {
		if errors.Is(err, picker.ErrInputWrite) {
			return outcome, s.fail(ctx, err)
		}
		return outcome, s.fail(ctx, fmt.Errorf("%w: %w", ErrPickerFailed, err))
	}
	outcome.PaneID = launch.PaneID
	s.setState(StateRequested)

	s.setState(StateWaiting)
	result, err := s.await(ctx, logger, baseline, outcome.Cycle, launch.PaneID)
	if err != nil {
		return outcome, s.fail(ctx, err)
	}

	if result.Status == exchange.StatusFailed {
		return outcome, s.fail(ctx, fmt.Errorf("%w: %s", ErrPickerFailed, result.Message))
	}

	s.setState(StateApplied)
	applied, err := s.switcher.Apply(ctx, result, snap)
	outcome.Selected = applied.Name
	outcome.Cancelled = applied.Cancelled
	outcome.Switched = applied.Switched
	if err != nil {
		if errors.Is(err, ErrBufferGone) {
			outcome.Notice = err.Error()
			s.notify(ctx, outcome.Notice)
			return outcome, nil
		}
		return outcome, s.fail(ctx, err)
	}

	logger.Info("selection cycle complete",
		"selected", outcome.Selected,
		"cancelled", outcome.Cancelled,
		"switched", outcome.Switched,
	)
	return outcome, nil
}

// await waits for a result belonging to this cycle. Results stamped with a
// different cycle id were left by an earlier picker and are skipped.
func (s *Service) await(ctx context.Context, logger *slog.Logger, baseline exchange.Stamp, cycle, paneID string) (exchange.Result, error) {
	var deadline time.Time
	if s.timeout > 0 {
		deadline = time.Now().Add(s.timeout)
	}

	for {
		opts := []exchange.WaiterOption{exchange.WithInterval(s.interval)}
		if !deadline.IsZero() {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				s.closePane(logger, paneID)
				return exchange.Result{}, fmt.Errorf("%w: %w", ErrApplyTimeout, exchange.ErrWaitTimeout)
			}
			opts = append(opts, exchange.WithTimeout(remaining))
		}
		if s.panes != nil && paneID != "" {
			opts = append(opts, exchange.WithLivenessProbe(func(ctx context.Context) (bool, error) {
				return s.panes.PaneExists(ctx, paneID)
			}, 5))
		}

		stamp, err := exchange.NewWaiter(s.channel, logger, opts...).Await(ctx, baseline)
		switch {
		case errors.Is(err, exchange.ErrWaitTimeout):
			s.closePane(logger, paneID)
			return exchange.Result{}, fmt.Errorf("%w: %w", ErrApplyTimeout, err)
		case errors.Is(err, exchange.ErrPickerGone):
			return exchange.Result{}, fmt.Errorf("%w: %w", ErrPickerFailed, err)
		case err != nil:
			s.closePane(logger, paneID)
			return exchange.Result{}, err
		}

		result, err := s.channel.ReadResult()
		if err != nil {
			return exchange.Result{}, fmt.Errorf("%w: %w", ErrExchangeRead, err)
		}
		if result.CycleID != "" && result.CycleID != cycle {
			logger.Warn("ignoring result from another cycle", "result_cycle", result.CycleID)
			baseline = stamp
			continue
		}
		return result, nil
	}
}

// closePane removes the picker pane after the cycle gave up on it.
func (s *Service) closePane(logger *slog.Logger, paneID string) {
	if s.panes == nil || paneID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.panes.KillPane(ctx, paneID); err != nil {
		logger.Debug("closing picker pane", "pane", paneID, "error", err)
	}
}

// fail reports err to the user and returns it.
func (s *Service) fail(ctx context.Context, err error) error {
	s.logger.Error("selection cycle failed", "error", err)
	s.notify(ctx, err.Error())
	return err
}

func (s *Service) notify(ctx context.Context, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(context.WithoutCancel(ctx), message); err != nil {
		s.logger.Warn("notifying user", "error", err, "message", message)
	}
}
