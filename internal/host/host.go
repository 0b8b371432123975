// ABOUTME: Host collaborator interfaces for buffer listing, switching and notices
// ABOUTME: Implemented by the WeeChat relay client and by MockHost in tests

package host

import (
	"context"
	"errors"

	"github.com/2389/bufpick/internal/buffers"
)

var (
	// ErrNoCurrentBuffer is returned by hosts that cannot report the active buffer.
	ErrNoCurrentBuffer = errors.New("host cannot report the current buffer")
	// ErrUnknownBuffer is returned when switching to a buffer the host does not have.
	ErrUnknownBuffer = errors.New("no such buffer")
)

// Host is the chat client bufpick drives.
type Host interface {
	ListBuffers(ctx context.Context) (buffers.List, error)
	CurrentBuffer(ctx context.Context) (string, error)
	SwitchBuffer(ctx context.Context, name string) error
}

// Notifier is implemented by hosts that can show a message to the user.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}
