// ABOUTME: Error values for the selection cycle, one per failure class
// ABOUTME: Callers branch with errors.Is; messages are suitable for end users

package selection

import (
	"errors"

	"github.com/2389/bufpick/internal/exchange"
	"github.com/2389/bufpick/internal/picker"
)

var (
	// ErrBusy rejects a cycle while another one is in progress.
	ErrBusy = exchange.ErrBusy
	// ErrListing is returned when the host's buffer directory cannot be read.
	ErrListing = errors.New("cannot list buffers")
	// ErrExchangeWrite is returned when the buffer list cannot be handed to the picker.
	ErrExchangeWrite = picker.ErrInputWrite
	// ErrExchangeRead is returned when the picker's result cannot be read.
	ErrExchangeRead = errors.New("cannot read picker result")
	// ErrPickerFailed is returned when the picker could not be started or
	// finished without a usable result.
	ErrPickerFailed = errors.New("picker failed")
	// ErrApplyTimeout is returned when no result arrives in time.
	ErrApplyTimeout = errors.New("no buffer selected before timeout")
	// ErrBufferGone means the chosen buffer no longer exists. It is reported
	// as a notice; the cycle still completes.
	ErrBufferGone = errors.New("selected buffer no longer exists")
	// ErrSwitch wraps host failures while switching buffers.
	ErrSwitch = errors.New("cannot switch buffer")
)
