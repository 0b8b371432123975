// ABOUTME: The switch subcommand: one full selection cycle against WeeChat
// ABOUTME: Lists buffers, opens the picker pane, waits for the choice and switches

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/bufpick/internal/buffers"
	"github.com/2389/bufpick/internal/config"
	"github.com/2389/bufpick/internal/exchange"
	"github.com/2389/bufpick/internal/host/weechat"
	"github.com/2389/bufpick/internal/picker"
	"github.com/2389/bufpick/internal/selection"
	"github.com/2389/bufpick/internal/tmux"
)

func runSwitch(args []string) error {
	fs := flag.NewFlagSet("switch", flag.ContinueOnError)
	configPath := fs.String("config", config.Path(), "config file")
	current := fs.String("current", "", "name of the buffer currently displayed in WeeChat")
	timeout := fs.Duration("timeout", -1, "override exchange.wait_timeout (0 waits forever)")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config from %s: %w", *configPath, err)
	}
	if *timeout >= 0 {
		cfg.Exchange.WaitTimeout = *timeout
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}
	logger := setupLogger(cfg.Logging.Level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tc := tmux.NewClient(tmux.WithTmuxPath(cfg.Tmux.Path))
	if !tc.InSession() {
		return fmt.Errorf("not inside a tmux session")
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locating bufpick executable: %w", err)
	}

	relay := newRelay(cfg, logger)
	svc := newService(cfg, relay, tc, exe, *current, logger)

	outcome, err := svc.Run(ctx)
	if err != nil {
		return err
	}

	switch {
	case outcome.Notice != "":
		color.New(color.FgYellow).Fprintf(os.Stderr, "bufpick: %s\n", outcome.Notice)
	case outcome.Cancelled:
		fmt.Println("cancelled")
	default:
		fmt.Println(outcome.Selected)
	}
	return nil
}

// newRelay builds the WeeChat relay client from cfg.
func newRelay(cfg *config.Config, logger *slog.Logger) *weechat.Client {
	opts := []weechat.Option{
		weechat.WithPassword(cfg.WeeChat.Password),
		weechat.WithLogger(logger),
	}
	if cfg.WeeChat.InsecureTLS {
		opts = append(opts, weechat.WithInsecureTLS())
	}
	return weechat.New(cfg.WeeChat.URL, opts...)
}

// newService wires the selection cycle for the relay and tmux.
func newService(cfg *config.Config, relay *weechat.Client, tc *tmux.Client, exe, current string, logger *slog.Logger) *selection.Service {
	dir := cfg.Exchange.Dir
	if dir == "" {
		dir = exchange.DefaultDir()
	}
	ch := exchange.New(dir, logger)

	split := tmux.SplitOptions{
		Direction: tmux.Direction(cfg.Picker.Split),
		Size:      cfg.Picker.Size,
	}
	requester := picker.NewRequester(ch, tc, logger,
		picker.WithMatcher(matcherFromConfig(cfg.Picker)),
		picker.WithLaunchMode(picker.LaunchMode(cfg.Picker.LaunchMode)),
		picker.WithSplit(split),
		picker.WithExecutable(exe),
	)

	return selection.New(
		buffers.NewLister(relay, logger, buffers.WithCurrent(current)),
		requester,
		ch,
		selection.NewSwitcher(relay, logger),
		logger,
		selection.WithPanes(tc),
		selection.WithNotifier(relay),
		selection.WithPollInterval(cfg.Exchange.PollInterval),
		selection.WithWaitTimeout(cfg.Exchange.WaitTimeout),
		selection.WithStateHook(func(s selection.State) {
			logger.Debug("selection state", "state", s)
		}),
	)
}

func matcherFromConfig(pc config.PickerConfig) picker.Matcher {
	return picker.Matcher{
		Name:        pc.Matcher,
		MatchMethod: pc.MatchMethod,
		Command:     pc.Command,
		Path:        pc.Path,
	}
}
