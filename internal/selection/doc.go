// Package selection runs one buffer-selection cycle end to end.
//
// # Cycle
//
// A cycle moves through Idle → Listed → Requested → Waiting → Applied → Idle:
//
//  1. the exchange lock is taken; a concurrent cycle fails with ErrBusy
//  2. buffers are listed (an unknown current buffer degrades to index 0)
//  3. the output file's stamp is captured, then the picker pane is opened
//  4. the waiter blocks until a fresh, non-empty result exists, the timeout
//     fires, or the pane disappears
//  5. the Switcher applies the result to the host
//
// Run executes a cycle on the caller's goroutine. Start runs it in the
// background and reports through a callback, so a host event loop is never
// blocked while the user is picking.
//
// # Failures
//
// Exchange I/O, picker and timeout failures are returned and, when the host
// can display messages, shown to the user; the current buffer is left
// unchanged. A chosen buffer that has disappeared by the time the result is
// applied is reported as a notice, not an error.
//
// # Registration
//
// Command adapts a Service to a host's command hook: Register prepares the
// exchange directory and hooks the command, and Invoke starts a cycle and
// returns StatusOK without waiting for it.
package selection
