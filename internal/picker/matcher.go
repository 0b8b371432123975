// ABOUTME: Matcher presets (fzf, percol, peco, custom) and their argument vectors
// ABOUTME: Encodes the initial cursor index, match method and cancellation exit codes

package picker

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Matcher names.
const (
	MatcherFzf    = "fzf"
	MatcherPercol = "percol"
	MatcherPeco   = "peco"
	MatcherCustom = "custom"
)

// Matcher describes the interactive filter run inside the pane.
type Matcher struct {
	Name        string
	MatchMethod string
	// Command is the argv template for MatcherCustom. The placeholders
	// {index}, {index1} and {method} are substituted in every word.
	Command []string
	// Path overrides the binary for the presets.
	Path string
}

// Argv returns the matcher command line for a zero-based initial index.
func (m Matcher) Argv(index int) ([]string, error) {
	if index < 0 {
		index = 0
	}
	bin := func(def string) string {
		if m.Path != "" {
			return m.Path
		}
		return def
	}

	switch m.Name {
	case MatcherFzf, "":
		argv := []string{bin("fzf"), "--no-multi", "--no-sort", "--prompt", "buffer> ",
			"--bind", fmt.Sprintf("load:pos(%d)", index+1)}
		if m.MatchMethod == "exact" {
			argv = append(argv, "--exact")
		}
		return argv, nil
	case MatcherPercol:
		argv := []string{bin("percol")}
		if m.MatchMethod != "" && m.MatchMethod != "fuzzy" {
			argv = append(argv, "--match-method="+m.MatchMethod)
		}
		return append(argv, "--initial-index="+strconv.Itoa(index)), nil
	case MatcherPeco:
		argv := []string{bin("peco"), "--initial-index", strconv.Itoa(index)}
		if filter := pecoFilter(m.MatchMethod); filter != "" {
			argv = append(argv, "--initial-filter", filter)
		}
		return argv, nil
	case MatcherCustom:
		if len(m.Command) == 0 {
			return nil, fmt.Errorf("custom matcher has no command")
		}
		r := strings.NewReplacer(
			"{index}", strconv.Itoa(index),
			"{index1}", strconv.Itoa(index+1),
			"{method}", m.MatchMethod,
		)
		argv := make([]string, len(m.Command))
		for i, word := range m.Command {
			argv[i] = r.Replace(word)
		}
		return argv, nil
	default:
		return nil, fmt.Errorf("unknown matcher %q", m.Name)
	}
}

// IsCancel reports whether an exit code means the user dismissed the matcher.
func (m Matcher) IsCancel(code int) bool {
	switch m.Name {
	case MatcherPercol, MatcherPeco:
		return code == 1
	default:
		// fzf: 1 = no match, 130 = interrupted with ESC or CTRL-C.
		return slices.Contains([]int{1, 130}, code)
	}
}

func pecoFilter(method string) string {
	switch method {
	case "fuzzy":
		return "Fuzzy"
	case "regex", "regexp":
		return "Regexp"
	case "exact", "string":
		return "CaseSensitive"
	case "smart":
		return "SmartCase"
	default:
		return ""
	}
}
