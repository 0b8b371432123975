// Package tmux is a small client for the tmux operations bufpick needs: opening
// a split pane that runs the picker, and checking on or closing that pane.
//
// Commands are always passed to tmux as an argument vector. When more than one
// command word is given to SplitWindow, tmux executes it directly without a
// shell.
package tmux
