// ABOUTME: Configuration loading and parsing for bufpick
// ABOUTME: Supports TOML files with environment variable expansion, defaults and duration parsing

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults applied when a value is absent from the file.
const (
	DefaultURL          = "http://localhost:9000"
	DefaultPollInterval = 200 * time.Millisecond
	DefaultWaitTimeout  = 2 * time.Minute
	DefaultMatcher      = "fzf"
	DefaultLaunchMode   = "exec"
	DefaultSplit        = "vertical"
	DefaultSize         = "40%"
	DefaultTmuxPath     = "tmux"
	DefaultLogLevel     = "warn"
)

// Config represents the complete bufpick configuration
type Config struct {
	WeeChat  WeeChatConfig  `toml:"weechat"`
	Exchange ExchangeConfig `toml:"exchange"`
	Picker   PickerConfig   `toml:"picker"`
	Tmux     TmuxConfig     `toml:"tmux"`
	Logging  LoggingConfig  `toml:"logging"`
}

// WeeChatConfig locates the WeeChat relay ("api" protocol)
type WeeChatConfig struct {
	URL         string `toml:"url"`
	Password    string `toml:"password"`
	InsecureTLS bool   `toml:"insecure_tls"`
}

// ExchangeConfig holds the file exchange directory and wait timing
type ExchangeConfig struct {
	// Dir defaults to $XDG_RUNTIME_DIR/bufpick when empty
	Dir string `toml:"dir"`

	PollInterval time.Duration `toml:"-"`
	WaitTimeout  time.Duration `toml:"-"`

	// Raw string values for TOML decoding
	PollIntervalRaw string `toml:"poll_interval"`
	WaitTimeoutRaw  string `toml:"wait_timeout"`
}

// PickerConfig selects the matcher and how its pane is opened
type PickerConfig struct {
	Matcher     string   `toml:"matcher"`
	MatchMethod string   `toml:"match_method"`
	Path        string   `toml:"path"`
	Command     []string `toml:"command"`
	LaunchMode  string   `toml:"launch_mode"`
	Split       string   `toml:"split"`
	Size        string   `toml:"size"`
}

// TmuxConfig holds the tmux binary location
type TmuxConfig struct {
	Path string `toml:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// Default returns a configuration with every default filled in.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads a configuration file from the given path and returns a parsed Config.
// A missing file yields the defaults. Environment variables in the format
// ${VAR_NAME} are expanded before decoding.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(string(data))
}

// Parse decodes TOML configuration text.
func Parse(data string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(expandEnvVars(data), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Path returns the config file location.
// Priority: BUFPICK_CONFIG env var > XDG_CONFIG_HOME/bufpick/config.toml > ~/.config/bufpick/config.toml
func Path() string {
	if envPath := os.Getenv("BUFPICK_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "bufpick.toml"
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "bufpick", "config.toml")
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

func applyDefaults(cfg *Config) {
	if cfg.WeeChat.URL == "" {
		cfg.WeeChat.URL = DefaultURL
	}
	if cfg.Exchange.PollInterval == 0 {
		cfg.Exchange.PollInterval = DefaultPollInterval
	}
	if cfg.Exchange.WaitTimeoutRaw == "" {
		cfg.Exchange.WaitTimeout = DefaultWaitTimeout
	}
	if cfg.Picker.Matcher == "" {
		cfg.Picker.Matcher = DefaultMatcher
	}
	if cfg.Picker.LaunchMode == "" {
		cfg.Picker.LaunchMode = DefaultLaunchMode
	}
	if cfg.Picker.Split == "" {
		cfg.Picker.Split = DefaultSplit
	}
	if cfg.Picker.Size == "" {
		cfg.Picker.Size = DefaultSize
	}
	if cfg.Tmux.Path == "" {
		cfg.Tmux.Path = DefaultTmuxPath
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
}

// Validate checks that all configuration fields are valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	u, err := url.Parse(c.WeeChat.URL)
	if err != nil {
		return fmt.Errorf("weechat.url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("weechat.url must use http or https scheme")
	}

	if c.Exchange.PollInterval < 0 {
		return fmt.Errorf("exchange.poll_interval must be positive")
	}
	// A zero wait_timeout waits indefinitely.
	if c.Exchange.WaitTimeout < 0 {
		return fmt.Errorf("exchange.wait_timeout must not be negative")
	}

	switch c.Picker.Matcher {
	case "fzf", "percol", "peco":
	case "custom":
		if len(c.Picker.Command) == 0 {
			return fmt.Errorf("picker.command is required when picker.matcher is custom")
		}
	default:
		return fmt.Errorf("picker.matcher must be one of fzf, percol, peco, custom (got %q)", c.Picker.Matcher)
	}

	switch c.Picker.LaunchMode {
	case "exec", "shell":
	default:
		return fmt.Errorf("picker.launch_mode must be exec or shell (got %q)", c.Picker.LaunchMode)
	}

	switch c.Picker.Split {
	case "vertical", "horizontal":
	default:
		return fmt.Errorf("picker.split must be vertical or horizontal (got %q)", c.Picker.Split)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Exchange.PollIntervalRaw != "" {
		cfg.Exchange.PollInterval, err = time.ParseDuration(cfg.Exchange.PollIntervalRaw)
		if err != nil {
			return fmt.Errorf("parsing poll_interval %q: %w", cfg.Exchange.PollIntervalRaw, err)
		}
	}

	if cfg.Exchange.WaitTimeoutRaw != "" {
		cfg.Exchange.WaitTimeout, err = time.ParseDuration(cfg.Exchange.WaitTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing wait_timeout %q: %w", cfg.Exchange.WaitTimeoutRaw, err)
		}
	}

	return nil
}
