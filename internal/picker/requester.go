// ABOUTME: SelectionRequester writing the buffer list and opening the picker pane
// ABOUTME: Returns as soon as tmux has created the pane; waiting is the caller's job

package picker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"al.essio.dev/pkg/shellescape"

	"github.com/2389/bufpick/internal/buffers"
	"github.com/2389/bufpick/internal/exchange"
	"github.com/2389/bufpick/internal/tmux"
)

var (
	// ErrInputWrite wraps failures to write the buffer list.
	ErrInputWrite = errors.New("cannot write picker input")
	// ErrLaunch wraps failures to open the picker pane.
	ErrLaunch = errors.New("cannot launch picker")
)

// LaunchMode selects how the pane command is built.
type LaunchMode string

const (
	// LaunchExec runs "bufpick pick" in the pane with a plain argument vector.
	LaunchExec LaunchMode = "exec"
	// LaunchShell runs a single shell pipeline in the pane.
	LaunchShell LaunchMode = "shell"
)

// Splitter opens a terminal pane running a command.
type Splitter interface {
	SplitWindow(ctx context.Context, opts tmux.SplitOptions, command ...string) (string, error)
}

// Request is one selection request.
type Request struct {
	Snapshot buffers.Snapshot
	CycleID  string
}

// Launch describes the started picker.
type Launch struct {
	PaneID       string
	InitialIndex int
	Command      []string
}

// Requester starts pickers.
type Requester struct {
	channel    *exchange.Channel
	splitter   Splitter
	matcher    Matcher
	mode       LaunchMode
	split      tmux.SplitOptions
	executable string
	logger     *slog.Logger
}

// RequesterOption configures a Requester.
type RequesterOption func(*Requester)

// WithMatcher sets the matcher.
func WithMatcher(m Matcher) RequesterOption {
	return func(r *Requester) {
		r.matcher = m
	}
}

// WithLaunchMode sets the launch mode.
func WithLaunchMode(mode LaunchMode) RequesterOption {
	return func(r *Requester) {
		if mode != "" {
			r.mode = mode
		}
	}
}

// WithSplit sets the tmux split geometry.
func WithSplit(opts tmux.SplitOptions) RequesterOption {
	return func(r *Requester) {
		r.split = opts
	}
}

// WithExecutable sets the bufpick binary run in the pane (exec mode).
func WithExecutable(path string) RequesterOption {
	return func(r *Requester) {
		r.executable = path
	}
}

// NewRequester creates a Requester.
func NewRequester(ch *exchange.Channel, splitter Splitter, logger *slog.Logger, opts ...RequesterOption) *Requester {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Requester{
		channel:    ch,
		splitter:   splitter,
		matcher:    Matcher{Name: MatcherFzf},
		mode:       LaunchExec,
		executable: "bufpick",
		logger:     logger.With("component", "picker"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Request writes the buffer list and opens the picker pane. The input file is
// complete before the pane is created. An empty list still launches the picker.
func (r *Requester) Request(ctx context.Context, req Request) (Launch, error) {
	index := req.Snapshot.InitialIndex()

	if err := r.channel.WriteInput(req.Snapshot.Buffers); err != nil {
		return Launch{}, fmt.Errorf("%w: %w", ErrInputWrite, err)
	}

	command, err := r.Command(req, index)
	if err != nil {
		return Launch{}, fmt.Errorf("%w: %w", ErrLaunch, err)
	}

	paneID, err := r.splitter.SplitWindow(ctx, r.split, command...)
	if err != nil {
		return Launch{}, fmt.Errorf("%w: %w", ErrLaunch, err)
	}

	r.logger.Info("picker launched",
		"cycle", req.CycleID,
		"pane", paneID,
		"mode", r.mode,
		"matcher", r.matcher.Name,
		"initial_index", index,
		"buffers", len(req.Snapshot.Buffers),
	)
	return Launch{PaneID: paneID, InitialIndex: index, Command: command}, nil
}

// Command builds the pane command for the configured launch mode.
func (r *Requester) Command(req Request, index int) ([]string, error) {
	switch r.mode {
	case LaunchExec:
		return r.execCommand(req, index), nil
	case LaunchShell:
		line, err := r.shellCommand(req, index)
		if err != nil {
			return nil, err
		}
		// A single word makes tmux run it through the shell.
		return []string{line}, nil
	default:
		return nil, fmt.Errorf("unknown launch mode %q", r.mode)
	}
}

func (r *Requester) execCommand(req Request, index int) []string {
	argv := []string{
		r.executable, "pick",
		"--dir", r.channel.Dir(),
		"--current", req.Snapshot.Current,
		"--index", strconv.Itoa(index),
		"--cycle", req.CycleID,
		"--matcher", r.matcher.Name,
	}
	if r.matcher.MatchMethod != "" {
		argv = append(argv, "--match-method", r.matcher.MatchMethod)
	}
	if r.matcher.Path != "" {
		argv = append(argv, "--matcher-path", r.matcher.Path)
	}
	for _, word := range r.matcher.Command {
		argv = append(argv, "--matcher-arg", word)
	}
	return argv
}

// shellCommand renders "cat IN | (MATCHER; echo CURRENT) > OUT". The echo runs
// unconditionally, so the current buffer follows a selection and stands alone
// after a cancellation.
func (r *Requester) shellCommand(req Request, index int) (string, error) {
	argv, err := r.matcher.Argv(index)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("cat %s | (%s; echo %s) > %s",
		shellescape.Quote(r.channel.InputPath()),
		shellescape.QuoteCommand(argv),
		shellescape.Quote(req.Snapshot.Current),
		shellescape.Quote(r.channel.OutputPath()),
	), nil
}
