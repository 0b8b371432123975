// Package config handles configuration loading for bufpick.
//
// # Configuration File
//
// Location (first match wins):
//
//  1. Path from BUFPICK_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/bufpick/config.toml
//  3. ~/.config/bufpick/config.toml
//
// A missing file is not an error; every setting has a default.
//
// # Environment Variable Expansion
//
// Values can reference environment variables with ${VAR_NAME}:
//
//	[weechat]
//	password = "${WEECHAT_RELAY_PASSWORD}"
//
// # Sections
//
//	[weechat]
//	url = "http://localhost:9000"   # relay with the "api" protocol
//	password = ""
//	insecure_tls = false
//
//	[exchange]
//	dir = ""                        # default $XDG_RUNTIME_DIR/bufpick
//	poll_interval = "200ms"
//	wait_timeout = "2m"             # "0s" waits forever
//
//	[picker]
//	matcher = "fzf"                 # fzf, percol, peco, custom
//	match_method = ""               # e.g. exact, regex, migemo
//	command = []                    # argv for custom, with {index}, {index1}, {method}
//	launch_mode = "exec"            # exec or shell
//	split = "vertical"              # vertical or horizontal
//	size = "40%"
//
//	[tmux]
//	path = "tmux"
//
//	[logging]
//	level = "warn"                  # debug, info, warn, error
//
// Durations use time.ParseDuration syntax.
package config
