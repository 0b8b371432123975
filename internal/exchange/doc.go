// Package exchange implements the file-based channel between bufpick and the
// picker running in a separate terminal pane.
//
// # Files
//
// Two files live in one scratch directory:
//
//   - buffers-in: the buffer list, one "%02d %s" line per buffer
//   - buffers-out: the result; its first line is the chosen buffer name
//
// Both are replaced atomically (temp file + rename) when bufpick writes them,
// so a reader never observes a half-written document.
//
// # Waiting
//
// A Waiter captures the output file's (mtime, size) stamp before the picker is
// launched and returns only once the mtime has moved and the file is non-empty.
// A truncated-but-not-yet-rewritten file is never treated as a result.
// fsnotify wakes the loop early; the fixed-interval poll is authoritative.
//
// # Result trailer
//
// bufpick's pane helper appends a status line after the name:
//
//	#bufpick selected 2b7c6f1e-...
//	#bufpick cancelled 2b7c6f1e-...
//	#bufpick failed 2b7c6f1e-... matcher exited with status 2
//
// Results written by other tools carry no trailer and decode with
// StatusUnknown.
package exchange
