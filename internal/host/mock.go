// ABOUTME: In-memory Host implementation for testing
// ABOUTME: Records switch commands and notices so tests can assert on them

package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/2389/bufpick/internal/buffers"
)

// MockHost is an in-memory Host and Notifier.
type MockHost struct {
	mu       sync.Mutex
	buffers  buffers.List
	current  string
	switches []string
	notices  []string

	// Injected failures.
	ListErr    error
	CurrentErr error
	SwitchErr  error
}

// NewMockHost creates a MockHost with the given buffers and current buffer.
func NewMockHost(list buffers.List, current string) *MockHost {
	return &MockHost{
		buffers: append(buffers.List(nil), list...),
		current: current,
	}
}

// ListBuffers returns a copy of the buffer list.
func (m *MockHost) ListBuffers(ctx context.Context) (buffers.List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return append(buffers.List{}, m.buffers...), nil
}

// CurrentBuffer returns the active buffer name.
func (m *MockHost) CurrentBuffer(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CurrentErr != nil {
		return "", m.CurrentErr
	}
	if m.current == "" {
		return "", ErrNoCurrentBuffer
	}
	return m.current, nil
}

// SwitchBuffer records the switch and makes name the active buffer.
func (m *MockHost) SwitchBuffer(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SwitchErr != nil {
		return m.SwitchErr
	}
	if !m.buffers.Contains(name) {
		return fmt.Errorf("switching to %q: %w", name, ErrUnknownBuffer)
	}
	m.switches = append(m.switches, name)
	m.current = name
	return nil
}

// Notify records a notice.
func (m *MockHost) Notify(ctx context.Context, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices = append(m.notices, message)
	return nil
}

// Close removes a buffer, as if the user closed it.
func (m *MockHost) Close(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.buffers.Index(name); i >= 0 {
		m.buffers = append(m.buffers[:i:i], m.buffers[i+1:]...)
	}
}

// Switches returns the buffer names switched to, in order.
func (m *MockHost) Switches() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.switches...)
}

// Notices returns the recorded notices.
func (m *MockHost) Notices() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.notices...)
}

// Current returns the active buffer without going through the Host interface.
func (m *MockHost) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}
