// ABOUTME: Pane-side half of a selection: runs the matcher and writes the result
// ABOUTME: Always writes exactly one result, marking selection, cancellation or failure

package picker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/2389/bufpick/internal/buffers"
	"github.com/2389/bufpick/internal/exchange"
)

// CommandFunc runs argv with the given standard streams.
type CommandFunc func(ctx context.Context, argv []string, stdin io.Reader, stdout, stderr io.Writer) error

// execCommand runs argv with os/exec.
func execCommand(ctx context.Context, argv []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// PaneOptions configures RunPane.
type PaneOptions struct {
	Channel *exchange.Channel
	Matcher Matcher
	Current string
	Index   int
	CycleID string

	// Stderr receives the matcher's diagnostics; defaults to os.Stderr.
	Stderr io.Writer
	// Run replaces process execution, for tests.
	Run CommandFunc
	Logger *slog.Logger
}

// RunPane pipes the buffer list into the matcher and records the outcome in
// the output file. The returned error reports a failure to write that result;
// matcher failures are part of the result itself.
func RunPane(ctx context.Context, opts PaneOptions) (exchange.Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "pane", "cycle", opts.CycleID)

	result := runMatcher(ctx, opts)
	logger.Debug("matcher finished", "status", result.Status, "name", result.Name, "message", result.Message)

	if err := opts.Channel.WriteResult(result); err != nil {
		return result, err
	}
	return result, nil
}

func runMatcher(ctx context.Context, opts PaneOptions) exchange.Result {
	fail := func(err error) exchange.Result {
		return exchange.Result{
			Name:    opts.Current,
			Status:  exchange.StatusFailed,
			CycleID: opts.CycleID,
			Message: err.Error(),
		}
	}

	list, err := opts.Channel.ReadInput()
	if err != nil {
		return fail(err)
	}

	argv, err := opts.Matcher.Argv(opts.Index)
	if err != nil {
		return fail(err)
	}

	in, err := os.Open(opts.Channel.InputPath())
	if err != nil {
		return fail(fmt.Errorf("opening buffer list: %w", err))
	}
	defer in.Close()

	run := opts.Run
	if run == nil {
		run = execCommand
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var out bytes.Buffer
	runErr := run(ctx, argv, in, &out, stderr)
	return classify(runErr, out.String(), list, opts)
}

// classify turns the matcher's exit and output into a result.
func classify(runErr error, output string, list buffers.List, opts PaneOptions) exchange.Result {
	cancelled := exchange.Result{
		Name:    opts.Current,
		Status:  exchange.StatusCancelled,
		CycleID: opts.CycleID,
	}

	if runErr != nil {
		var coded interface{ ExitCode() int }
		if errors.As(runErr, &coded) && opts.Matcher.IsCancel(coded.ExitCode()) {
			return cancelled
		}
		return exchange.Result{
			Name:    opts.Current,
			Status:  exchange.StatusFailed,
			CycleID: opts.CycleID,
			Message: fmt.Sprintf("matcher %s: %v", opts.Matcher.Name, runErr),
		}
	}

	line := exchange.FirstLine([]byte(strings.TrimLeft(output, "\r\n")))
	name := exchange.ResolveName(line, list)
	if name == "" {
		return cancelled
	}
	return exchange.Result{
		Name:    name,
		Status:  exchange.StatusSelected,
		CycleID: opts.CycleID,
	}
}
