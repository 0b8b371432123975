// ABOUTME: The buffers subcommand printing the relay's buffer directory
// ABOUTME: Text mirrors the picker's lines; json and yaml are for scripts

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/2389/bufpick/internal/buffers"
	"github.com/2389/bufpick/internal/config"
	"github.com/2389/bufpick/internal/exchange"
)

func runBuffers(args []string) error {
	fs := flag.NewFlagSet("buffers", flag.ContinueOnError)
	configPath := fs.String("config", config.Path(), "config file")
	current := fs.String("current", "", "buffer to mark as current")
	format := fs.String("format", "text", "output format: text, json or yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config from %s: %w", *configPath, err)
	}
	logger := setupLogger(cfg.Logging.Level)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	lister := buffers.NewLister(newRelay(cfg, logger), logger, buffers.WithCurrent(*current))
	snap, err := lister.List(ctx)
	if err != nil {
		return err
	}

	return writeSnapshot(os.Stdout, snap, *format)
}

// writeSnapshot renders snap in the requested format.
func writeSnapshot(w io.Writer, snap buffers.Snapshot, format string) error {
	switch format {
	case "text":
		for _, e := range snap.Buffers {
			marker := " "
			if e.Name == snap.Current {
				marker = "*"
			}
			if _, err := fmt.Fprintf(w, "%s %s\n", marker, exchange.FormatLine(e)); err != nil {
				return err
			}
		}
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}
