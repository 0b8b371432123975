// ABOUTME: The init subcommand: interactive setup of the config file
// ABOUTME: Also resets the exchange directory, like registering the command in a client

package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/2389/bufpick/internal/config"
	"github.com/2389/bufpick/internal/exchange"
)

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	configPath := fs.String("config", config.Path(), "config file to write")
	if err := fs.Parse(args); err != nil {
		return err
	}

	color.New(color.FgCyan).Print(banner)
	fmt.Println("    Interactive Setup")
	fmt.Println("    -----------------")
	fmt.Println()

	return initConfig(bufio.NewReader(os.Stdin), os.Stdout, *configPath)
}

// initConfig asks for the settings, writes them to path and prepares the
// exchange directory they name.
func initConfig(reader *bufio.Reader, out io.Writer, path string) error {
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	if _, err := os.Stat(path); err == nil {
		yellow.Fprintf(out, "    Config already exists at %s\n", path)
		if !yes(prompt(reader, out, "Overwrite?", "no")) {
			fmt.Fprintln(out, "    Aborted.")
			return nil
		}
		fmt.Fprintln(out)
	}

	cfg := config.Default()

	fmt.Fprintln(out, "--- WeeChat relay (/relay add api 9000) ---")
	cfg.WeeChat.URL = prompt(reader, out, "Relay URL", cfg.WeeChat.URL)
	cfg.WeeChat.Password = prompt(reader, out, "Relay password (or ${ENV_VAR})", "")
	cfg.WeeChat.InsecureTLS = yes(prompt(reader, out, "Skip TLS verification?", "no"))

	fmt.Fprintln(out, "\n--- Picker ---")
	cfg.Picker.Matcher = prompt(reader, out, "Matcher (fzf/percol/peco/custom)", cfg.Picker.Matcher)
	if cfg.Picker.Matcher == "custom" {
		cfg.Picker.Command = strings.Fields(prompt(reader, out, "Matcher command ({index}, {index1}, {method})", ""))
	}
	cfg.Picker.MatchMethod = prompt(reader, out, "Match method (empty for the matcher's default)", "")
	cfg.Picker.Split = prompt(reader, out, "Split (vertical/horizontal)", cfg.Picker.Split)
	cfg.Picker.Size = prompt(reader, out, "Pane size", cfg.Picker.Size)

	fmt.Fprintln(out, "\n--- Timing ---")
	timeout := prompt(reader, out, "Wait timeout (0s waits forever)", cfg.Exchange.WaitTimeout.String())
	d, err := time.ParseDuration(timeout)
	if err != nil {
		return fmt.Errorf("wait timeout %q: %w", timeout, err)
	}
	cfg.Exchange.WaitTimeout = d

	rendered := cfg.Render()
	if _, err := config.Parse(rendered); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(rendered), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	dir := cfg.Exchange.Dir
	if dir == "" {
		dir = exchange.DefaultDir()
	}
	if err := exchange.New(dir, setupLogger(cfg.Logging.Level)).Prepare(); err != nil {
		return fmt.Errorf("preparing exchange directory: %w", err)
	}

	fmt.Fprintln(out)
	green.Fprintf(out, "    ✓ Config written to %s\n", path)
	green.Fprintf(out, "    ✓ Exchange directory %s\n", dir)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "    Next steps:")
	fmt.Fprintln(out, "    1. In WeeChat: /alias add percolbuffer /exec -bg bufpick switch --current ${buffer.full_name}")
	fmt.Fprintln(out, "    2. Bind a key: /key bind meta-b /percolbuffer")
	fmt.Fprintln(out)

	return nil
}

// prompt asks question and returns the trimmed answer, or defaultVal on an
// empty answer or EOF.
func prompt(reader *bufio.Reader, out io.Writer, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(out, "%s [%s]: ", question, defaultVal)
	} else {
		fmt.Fprintf(out, "%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		fmt.Fprintln(out)
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}

func yes(answer string) bool {
	a := strings.ToLower(answer)
	return a == "y" || a == "yes"
}
