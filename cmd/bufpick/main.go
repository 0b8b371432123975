// ABOUTME: Entry point for bufpick, a tmux buffer picker for WeeChat
// ABOUTME: Dispatches the switch, pick, buffers, init and help subcommands

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/2389/bufpick/internal/selection"
)

const banner = `
  _            __       _      _
 | |__  _   _ / _|_ __ (_) ___| | __
 | '_ \| | | | |_| '_ \| |/ __| |/ /
 | |_) | |_| |  _| |_) | | (__|   <
 |_.__/ \__,_|_| | .__/|_|\___|_|\_\
                 |_|
`

const usage = `Usage: bufpick [command] [flags]

Commands:
  switch    pick a WeeChat buffer in a tmux split and switch to it (default)
  pick      run the matcher inside the picker pane (started by switch)
  buffers   print the relay's buffer list (--format text|json|yaml)
  init      write a config file interactively and reset the exchange directory
  help      show this help

Run "bufpick <command> -h" for the flags of a command.
`

func main() {
	if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		color.NoColor = true
	}

	command := "switch"
	args := os.Args[1:]
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		command, args = args[0], args[1:]
	}

	var err error
	switch command {
	case "switch":
		err = runSwitch(args)
	case "pick":
		err = runPick(args)
	case "buffers":
		err = runBuffers(args)
	case "init":
		err = runInit(args)
	case "help":
		printUsage()
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", command)
	}

	if err != nil {
		// Busy is a notice, not a failure.
		if errors.Is(err, selection.ErrBusy) {
			color.New(color.FgYellow).Fprintf(os.Stderr, "bufpick: %v\n", err)
			os.Exit(1)
		}
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	color.New(color.FgCyan).Fprint(os.Stderr, banner)
	fmt.Fprintln(os.Stderr)
	fmt.Fprint(os.Stderr, usage)
}

// setupLogger builds the stderr logger; stdout carries command output.
func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
