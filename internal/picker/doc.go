// Package picker launches the external fuzzy matcher in a tmux split and runs
// the pane-side half of a selection.
//
// Requester is the invoking side: it writes the buffer list into the exchange
// channel, then asks tmux for a new pane and returns without waiting. In the
// default exec launch mode the pane runs "bufpick pick" with a plain argument
// vector; RunPane is that command's body. It feeds the list to the matcher,
// maps the chosen line back to a buffer name and writes exactly one result.
//
// The shell launch mode reproduces the classic one-liner
//
//	cat IN | (MATCHER; echo CURRENT) > OUT
//
// for setups that cannot re-execute bufpick inside the pane. Every value
// interpolated into that string is shell-quoted.
package picker
