// ABOUTME: Host-facing command that triggers a selection cycle
// ABOUTME: Registers under a fixed name and returns to the host without blocking

package selection

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/2389/bufpick/internal/host"
)

// Status is the code returned to the host from a command callback.
type Status int

const (
	StatusOK    Status = 0
	StatusError Status = -1
)

const (
	// CommandName is the name the command is registered under.
	CommandName = "percolbuffer"
	// CommandDescription is shown in the host's command help.
	CommandDescription = "Switch buffer with percol."
)

// Registrar is a host that accepts command hooks.
type Registrar interface {
	HookCommand(name, description string, callback func(ctx context.Context) Status) error
}

// Command binds a Service to a host command.
type Command struct {
	service  *Service
	notifier host.Notifier
	logger   *slog.Logger

	wg sync.WaitGroup
}

// NewCommand creates a Command. notifier may be nil.
func NewCommand(service *Service, notifier host.Notifier, logger *slog.Logger) *Command {
	if logger == nil {
		logger = slog.Default()
	}
	return &Command{
		service:  service,
		notifier: notifier,
		logger:   logger.With("component", "command"),
	}
}

// Register prepares the exchange directory and hooks the command into r.
func (c *Command) Register(r Registrar) error {
	if err := c.service.Prepare(); err != nil {
		return err
	}
	return r.HookCommand(CommandName, CommandDescription, c.Invoke)
}

// Invoke starts a cycle in the background and returns immediately. The cycle
// reports its own failures through the service's notifier.
func (c *Command) Invoke(ctx context.Context) Status {
	c.wg.Add(1)
	err := c.service.Start(context.WithoutCancel(ctx), func(outcome Outcome, err error) {
		defer c.wg.Done()
		if err != nil {
			c.logger.Debug("cycle ended with error", "cycle", outcome.Cycle, "error", err)
		}
	})
	if err == nil {
		return StatusOK
	}

	c.wg.Done()
	if errors.Is(err, ErrBusy) {
		c.logger.Info("selection already in progress")
		if c.notifier != nil {
			if nerr := c.notifier.Notify(ctx, err.Error()); nerr != nil {
				c.logger.Warn("notifying user", "error", nerr)
			}
		}
	}
	return StatusError
}

// Wait blocks until every cycle started by Invoke has finished.
func (c *Command) Wait() {
	c.wg.Wait()
}
