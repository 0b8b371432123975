// ABOUTME: Tests for the Lister snapshotting host buffers
// ABOUTME: Validates current-buffer override and degrade-to-empty behavior

package buffers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	list       List
	listErr    error
	current    string
	currentErr error
	calls      int
}

func (s *stubSource) ListBuffers(ctx context.Context) (List, error) {
	return s.list, s.listErr
}

func (s *stubSource) CurrentBuffer(ctx context.Context) (string, error) {
	s.calls++
	return s.current, s.currentErr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLister_List(t *testing.T) {
	src := &stubSource{list: sampleList(), current: "#dev"}
	l := NewLister(src, discardLogger())

	snap, err := l.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleList(), snap.Buffers)
	assert.Equal(t, "#dev", snap.Current)
	assert.Equal(t, 1, snap.InitialIndex())
}

func TestLister_CurrentErrorDegrades(t *testing.T) {
	src := &stubSource{list: sampleList(), currentErr: errors.New("no accessor")}
	l := NewLister(src, discardLogger())

	snap, err := l.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Current)
	assert.Equal(t, 0, snap.InitialIndex())
}

func TestLister_CurrentOverride(t *testing.T) {
	src := &stubSource{list: sampleList(), current: "#general"}
	l := NewLister(src, discardLogger(), WithCurrent("#random"))

	snap, err := l.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "#random", snap.Current)
	assert.Equal(t, 0, src.calls, "host accessor should not be queried when overridden")
}

func TestLister_EmptyHost(t *testing.T) {
	src := &stubSource{current: "#dev"}
	l := NewLister(src, discardLogger())

	snap, err := l.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Buffers)
	assert.Equal(t, 0, snap.InitialIndex())
}

func TestLister_ListError(t *testing.T) {
	src := &stubSource{listErr: errors.New("relay down")}
	l := NewLister(src, discardLogger())

	_, err := l.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relay down")
}
