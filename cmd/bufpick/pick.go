// ABOUTME: The pick subcommand, run by tmux inside the picker pane
// ABOUTME: Feeds the buffer list to the matcher and writes exactly one result

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/2389/bufpick/internal/exchange"
	"github.com/2389/bufpick/internal/picker"
)

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, " ") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func runPick(args []string) error {
	fs := flag.NewFlagSet("pick", flag.ContinueOnError)
	dir := fs.String("dir", exchange.DefaultDir(), "exchange directory")
	current := fs.String("current", "", "buffer current when the picker was requested")
	index := fs.Int("index", 0, "initial cursor index")
	cycle := fs.String("cycle", "", "selection cycle id")
	matcherName := fs.String("matcher", picker.MatcherFzf, "matcher: fzf, percol, peco or custom")
	method := fs.String("match-method", "", "matcher match method")
	path := fs.String("matcher-path", "", "matcher binary")
	var words stringList
	fs.Var(&words, "matcher-arg", "custom matcher argv word (repeatable)")
	logLevel := fs.String("log-level", "warn", "debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := setupLogger(*logLevel)
	ch := exchange.New(*dir, logger)

	// Without a terminal the matcher cannot draw; record the failure so the
	// waiting side returns instead of running into its timeout.
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		err := fmt.Errorf("pick needs a terminal; it is started by bufpick switch")
		if werr := ch.WriteResult(exchange.Result{
			Name:    *current,
			Status:  exchange.StatusFailed,
			CycleID: *cycle,
			Message: err.Error(),
		}); werr != nil {
			logger.Error("writing failure result", "error", werr)
		}
		return err
	}

	// Interrupts belong to the matcher, which reports them as a cancel exit.
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, syscall.SIGINT)
	defer signal.Stop(interrupts)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	result, err := picker.RunPane(ctx, picker.PaneOptions{
		Channel: ch,
		Matcher: picker.Matcher{
			Name:        *matcherName,
			MatchMethod: *method,
			Command:     words,
			Path:        *path,
		},
		Current: *current,
		Index:   *index,
		CycleID: *cycle,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("writing result: %w", err)
	}
	if result.Status == exchange.StatusFailed {
		fmt.Fprintf(os.Stderr, "bufpick: %s\n", result.Message)
	}
	return nil
}
