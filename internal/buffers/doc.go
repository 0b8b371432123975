// Package buffers models the snapshot of open chat buffers taken at the start
// of a selection cycle.
//
// A Snapshot holds the host's buffers in enumeration order together with the
// name of the buffer that was active when the snapshot was taken. Entries are
// values and are never mutated after the listing returns.
package buffers
