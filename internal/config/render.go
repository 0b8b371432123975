// ABOUTME: Renders a Config back to a commented TOML file
// ABOUTME: Used by `bufpick init` to write the user's configuration

package config

import (
	"fmt"
	"strings"
)

// Render returns c as a commented TOML document that Load accepts.
func (c *Config) Render() string {
	var b strings.Builder

	b.WriteString("# bufpick configuration\n")
	b.WriteString("# Generated by bufpick init\n\n")

	fmt.Fprintf(&b, `[weechat]
# WeeChat relay with the "api" protocol enabled (/relay add api 9000)
url = %q
# Relay password; ${VAR} references are expanded on load
password = %q
insecure_tls = %t

[exchange]
# Directory holding the buffer list, the picker result and the cycle lock
# (empty = $XDG_RUNTIME_DIR/bufpick)
dir = %q
poll_interval = %q
# How long to wait for a selection (0 = forever)
wait_timeout = %q

[picker]
# fzf, percol, peco or custom
matcher = %q
match_method = %q
`,
		c.WeeChat.URL, c.WeeChat.Password, c.WeeChat.InsecureTLS,
		c.Exchange.Dir, c.Exchange.PollInterval.String(), c.Exchange.WaitTimeout.String(),
		c.Picker.Matcher, c.Picker.MatchMethod,
	)

	if c.Picker.Path != "" {
		fmt.Fprintf(&b, "path = %q\n", c.Picker.Path)
	}
	if len(c.Picker.Command) > 0 {
		quoted := make([]string, len(c.Picker.Command))
		for i, word := range c.Picker.Command {
			quoted[i] = fmt.Sprintf("%q", word)
		}
		fmt.Fprintf(&b, "# {index}, {index1} and {method} are substituted\ncommand = [%s]\n", strings.Join(quoted, ", "))
	}

	fmt.Fprintf(&b, `# exec runs "bufpick pick" in the pane; shell uses a quoted one-liner
launch_mode = %q
split = %q
size = %q

[tmux]
path = %q

[logging]
level = %q
`,
		c.Picker.LaunchMode, c.Picker.Split, c.Picker.Size,
		c.Tmux.Path,
		c.Logging.Level,
	)

	return b.String()
}
