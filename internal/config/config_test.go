// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers TOML loading, defaults, env var expansion, duration parsing and rendering

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	configContent := `
[weechat]
url = "https://irc.example.org:9000"
password = "hunter2"
insecure_tls = true

[exchange]
dir = "/tmp/bufpick-test"
poll_interval = "50ms"
wait_timeout = "30s"

[picker]
matcher = "percol"
match_method = "migemo"
launch_mode = "shell"
split = "horizontal"
size = "15"

[tmux]
path = "/usr/local/bin/tmux"

[logging]
level = "debug"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.WeeChat.URL != "https://irc.example.org:9000" {
		t.Errorf("WeeChat.URL = %q, want %q", cfg.WeeChat.URL, "https://irc.example.org:9000")
	}
	if cfg.WeeChat.Password != "hunter2" {
		t.Errorf("WeeChat.Password = %q, want %q", cfg.WeeChat.Password, "hunter2")
	}
	if !cfg.WeeChat.InsecureTLS {
		t.Error("WeeChat.InsecureTLS = false, want true")
	}
	if cfg.Exchange.Dir != "/tmp/bufpick-test" {
		t.Errorf("Exchange.Dir = %q, want %q", cfg.Exchange.Dir, "/tmp/bufpick-test")
	}
	if cfg.Exchange.PollInterval != 50*time.Millisecond {
		t.Errorf("Exchange.PollInterval = %v, want %v", cfg.Exchange.PollInterval, 50*time.Millisecond)
	}
	if cfg.Exchange.WaitTimeout != 30*time.Second {
		t.Errorf("Exchange.WaitTimeout = %v, want %v", cfg.Exchange.WaitTimeout, 30*time.Second)
	}
	if cfg.Picker.Matcher != "percol" || cfg.Picker.MatchMethod != "migemo" {
		t.Errorf("Picker = %q/%q, want percol/migemo", cfg.Picker.Matcher, cfg.Picker.MatchMethod)
	}
	if cfg.Picker.LaunchMode != "shell" {
		t.Errorf("Picker.LaunchMode = %q, want %q", cfg.Picker.LaunchMode, "shell")
	}
	if cfg.Picker.Split != "horizontal" || cfg.Picker.Size != "15" {
		t.Errorf("Picker split = %q/%q, want horizontal/15", cfg.Picker.Split, cfg.Picker.Size)
	}
	if cfg.Tmux.Path != "/usr/local/bin/tmux" {
		t.Errorf("Tmux.Path = %q, want %q", cfg.Tmux.Path, "/usr/local/bin/tmux")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.WeeChat.URL != DefaultURL {
		t.Errorf("WeeChat.URL = %q, want %q", cfg.WeeChat.URL, DefaultURL)
	}
	if cfg.Exchange.PollInterval != DefaultPollInterval {
		t.Errorf("Exchange.PollInterval = %v, want %v", cfg.Exchange.PollInterval, DefaultPollInterval)
	}
	if cfg.Exchange.WaitTimeout != DefaultWaitTimeout {
		t.Errorf("Exchange.WaitTimeout = %v, want %v", cfg.Exchange.WaitTimeout, DefaultWaitTimeout)
	}
	if cfg.Picker.Matcher != "fzf" || cfg.Picker.LaunchMode != "exec" {
		t.Errorf("Picker = %q/%q, want fzf/exec", cfg.Picker.Matcher, cfg.Picker.LaunchMode)
	}
}

func TestLoad_ReadError(t *testing.T) {
	// A directory cannot be read as a file.
	_, err := Load(t.TempDir())
	if err == nil {
		t.Fatal("Load() expected error for directory path")
	}
	if !strings.Contains(err.Error(), "reading config file") {
		t.Errorf("error = %v, want reading config file", err)
	}
}

func TestParse_EnvVarExpansion(t *testing.T) {
	t.Setenv("BUFPICK_TEST_RELAY_PASSWORD", "s3cret")

	cfg, err := Parse(`
[weechat]
password = "${BUFPICK_TEST_RELAY_PASSWORD}"
`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.WeeChat.Password != "s3cret" {
		t.Errorf("WeeChat.Password = %q, want %q", cfg.WeeChat.Password, "s3cret")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("BUFPICK_TEST_A", "alpha")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"set variable", "x=${BUFPICK_TEST_A}", "x=alpha"},
		{"unset variable", "x=${BUFPICK_TEST_UNSET}", "x="},
		{"no variables", "plain", "plain"},
		{"bare dollar untouched", "$BUFPICK_TEST_A", "$BUFPICK_TEST_A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandEnvVars(tt.input); got != tt.want {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse_ZeroWaitTimeoutMeansForever(t *testing.T) {
	cfg, err := Parse(`
[exchange]
wait_timeout = "0s"
`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Exchange.WaitTimeout != 0 {
		t.Errorf("Exchange.WaitTimeout = %v, want 0", cfg.Exchange.WaitTimeout)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad toml", "[weechat\n", "parsing config file"},
		{"bad duration", "[exchange]\npoll_interval = \"soon\"", "poll_interval"},
		{"negative timeout", "[exchange]\nwait_timeout = \"-1s\"", "wait_timeout"},
		{"bad url scheme", "[weechat]\nurl = \"ftp://relay\"", "http or https"},
		{"unknown matcher", "[picker]\nmatcher = \"dmenu\"", "picker.matcher"},
		{"custom without command", "[picker]\nmatcher = \"custom\"", "picker.command"},
		{"bad launch mode", "[picker]\nlaunch_mode = \"popup\"", "picker.launch_mode"},
		{"bad split", "[picker]\nsplit = \"diagonal\"", "picker.split"},
		{"bad log level", "[logging]\nlevel = \"loud\"", "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.content)
			if err == nil {
				t.Fatal("Parse() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestPath(t *testing.T) {
	t.Run("explicit env var", func(t *testing.T) {
		t.Setenv("BUFPICK_CONFIG", "/etc/bufpick.toml")
		if got := Path(); got != "/etc/bufpick.toml" {
			t.Errorf("Path() = %q, want %q", got, "/etc/bufpick.toml")
		}
	})

	t.Run("xdg config home", func(t *testing.T) {
		t.Setenv("BUFPICK_CONFIG", "")
		t.Setenv("XDG_CONFIG_HOME", "/home/u/.xdg")
		want := filepath.Join("/home/u/.xdg", "bufpick", "config.toml")
		if got := Path(); got != want {
			t.Errorf("Path() = %q, want %q", got, want)
		}
	})

	t.Run("home fallback", func(t *testing.T) {
		t.Setenv("BUFPICK_CONFIG", "")
		t.Setenv("XDG_CONFIG_HOME", "")
		t.Setenv("HOME", "/home/u")
		want := filepath.Join("/home/u", ".config", "bufpick", "config.toml")
		if got := Path(); got != want {
			t.Errorf("Path() = %q, want %q", got, want)
		}
	})
}

func TestRender_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.WeeChat.URL = "https://relay.example.org"
	cfg.WeeChat.Password = `pa"ss`
	cfg.Exchange.WaitTimeout = 45 * time.Second
	cfg.Picker.Matcher = "custom"
	cfg.Picker.Command = []string{"sk", "--tac", "--query={method}"}
	cfg.Logging.Level = "info"

	got, err := Parse(cfg.Render())
	if err != nil {
		t.Fatalf("Parse(Render()) error = %v", err)
	}

	if got.WeeChat.URL != cfg.WeeChat.URL {
		t.Errorf("WeeChat.URL = %q, want %q", got.WeeChat.URL, cfg.WeeChat.URL)
	}
	if got.WeeChat.Password != cfg.WeeChat.Password {
		t.Errorf("WeeChat.Password = %q, want %q", got.WeeChat.Password, cfg.WeeChat.Password)
	}
	if got.Exchange.WaitTimeout != 45*time.Second {
		t.Errorf("Exchange.WaitTimeout = %v, want 45s", got.Exchange.WaitTimeout)
	}
	if strings.Join(got.Picker.Command, " ") != "sk --tac --query={method}" {
		t.Errorf("Picker.Command = %v", got.Picker.Command)
	}
	if got.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", got.Logging.Level)
	}
}
