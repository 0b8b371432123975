// ABOUTME: tmux client wrapping split-window, list-panes and kill-pane
// ABOUTME: Runner is injectable so tests can record argv without a tmux server

package tmux

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Runner executes a command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	return string(out), nil
}

// Direction selects how the new pane is split from the current one.
type Direction string

const (
	// Vertical stacks the new pane below the current one.
	Vertical Direction = "vertical"
	// Horizontal places the new pane beside the current one.
	Horizontal Direction = "horizontal"
)

// SplitOptions configures SplitWindow.
type SplitOptions struct {
	Direction Direction
	Size      string // passed to -l, e.g. "40%" or "15"
	Target    string // target pane, empty for the current one
	WorkDir   string
}

// Client wraps tmux invocations.
type Client struct {
	// tmuxPath allows overriding the default "tmux" binary path.
	tmuxPath string
	runner   Runner
}

// ClientOption is a functional option for configuring a Client.
type ClientOption func(*Client)

// WithTmuxPath sets a custom path to the tmux binary.
func WithTmuxPath(path string) ClientOption {
	return func(c *Client) {
		if path != "" {
			c.tmuxPath = path
		}
	}
}

// WithRunner replaces the command runner.
func WithRunner(r Runner) ClientOption {
	return func(c *Client) {
		c.runner = r
	}
}

// NewClient creates a new tmux client with the given options.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		tmuxPath: "tmux",
		runner:   execRunner{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	return c.runner.Run(ctx, c.tmuxPath, args...)
}

// IsAvailable checks if tmux is installed and runnable.
func (c *Client) IsAvailable(ctx context.Context) bool {
	_, err := c.run(ctx, "-V")
	return err == nil
}

// InSession reports whether the calling process runs inside a tmux client.
func (c *Client) InSession() bool {
	return os.Getenv("TMUX") != ""
}

// SplitWindow opens a new pane running command and returns its pane id
// (e.g. "%12"). It returns as soon as tmux has created the pane.
func (c *Client) SplitWindow(ctx context.Context, opts SplitOptions, command ...string) (string, error) {
	if len(command) == 0 {
		return "", fmt.Errorf("split-window: empty command")
	}

	args := []string{"split-window", "-P", "-F", "#{pane_id}"}
	switch opts.Direction {
	case Horizontal:
		args = append(args, "-h")
	case Vertical, "":
		args = append(args, "-v")
	default:
		return "", fmt.Errorf("split-window: unknown direction %q", opts.Direction)
	}
	if opts.Size != "" {
		args = append(args, "-l", opts.Size)
	}
	if opts.Target != "" {
		args = append(args, "-t", opts.Target)
	}
	if opts.WorkDir != "" {
		args = append(args, "-c", opts.WorkDir)
	}
	args = append(args, command...)

	out, err := c.run(ctx, args...)
	if err != nil {
		return "", fmt.Errorf("split-window: %w", err)
	}
	paneID := strings.TrimSpace(out)
	if paneID == "" {
		return "", fmt.Errorf("split-window: tmux did not report a pane id")
	}
	return paneID, nil
}

// PaneExists reports whether a pane with the given id is still open.
func (c *Client) PaneExists(ctx context.Context, paneID string) (bool, error) {
	out, err := c.run(ctx, "list-panes", "-a", "-F", "#{pane_id}")
	if err != nil {
		return false, fmt.Errorf("list-panes: %w", err)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == paneID {
			return true, nil
		}
	}
	return false, nil
}

// KillPane closes the pane.
func (c *Client) KillPane(ctx context.Context, paneID string) error {
	if _, err := c.run(ctx, "kill-pane", "-t", paneID); err != nil {
		return fmt.Errorf("kill-pane %s: %w", paneID, err)
	}
	return nil
}
