// ABOUTME: End-to-end tests for the selection cycle with a simulated picker pane
// ABOUTME: Exercises selection, cancellation, timeouts, vanished panes and the busy guard

package selection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/bufpick/internal/buffers"
	"github.com/2389/bufpick/internal/exchange"
	"github.com/2389/bufpick/internal/host"
	"github.com/2389/bufpick/internal/picker"
	"github.com/2389/bufpick/internal/tmux"
)

// paneBehavior scripts what the simulated user does in the picker.
type paneBehavior struct {
	output string
	err    error
	// hang keeps the pane open without ever answering.
	hang bool
	// vanish closes the pane without writing a result.
	vanish bool
	// stale writes a result for another cycle first.
	stale bool
	// beforeRun runs once the pane is up, before the matcher.
	beforeRun func()
}

// paneSim is a Splitter and PaneController that runs the pane side in-process.
type paneSim struct {
	channel  *exchange.Channel
	behavior paneBehavior

	mu       sync.Mutex
	seq      int
	alive    map[string]bool
	killed   []string
	commands [][]string
	wg       sync.WaitGroup
}

func newPaneSim(ch *exchange.Channel, b paneBehavior) *paneSim {
	return &paneSim{channel: ch, behavior: b, alive: make(map[string]bool)}
}

func (p *paneSim) SplitWindow(ctx context.Context, opts tmux.SplitOptions, command ...string) (string, error) {
	p.mu.Lock()
	p.seq++
	id := "%" + strconv.Itoa(p.seq)
	p.alive[id] = true
	p.commands = append(p.commands, command)
	p.mu.Unlock()

	index, _ := strconv.Atoi(flagValue(command, "--index"))
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.run(id, flagValue(command, "--current"), index, flagValue(command, "--cycle"))
	}()
	return id, nil
}

func (p *paneSim) run(id, current string, index int, cycle string) {
	b := p.behavior
	if b.beforeRun != nil {
		b.beforeRun()
	}
	switch {
	case b.hang:
		return
	case b.vanish:
		p.close(id)
		return
	case b.stale:
		_ = p.channel.WriteResult(exchange.Result{Name: "weechat", Status: exchange.StatusSelected, CycleID: "previous-cycle"})
		time.Sleep(30 * time.Millisecond)
	}

	_, _ = picker.RunPane(context.Background(), picker.PaneOptions{
		Channel: p.channel,
		Matcher: picker.Matcher{Name: picker.MatcherFzf},
		Current: current,
		Index:   index,
		CycleID: cycle,
		Stderr:  io.Discard,
		Run: func(ctx context.Context, argv []string, stdin io.Reader, stdout, stderr io.Writer) error {
			_, _ = io.Copy(io.Discard, stdin)
			_, _ = io.WriteString(stdout, b.output)
			return b.err
		},
		Logger: discardLogger(),
	})
	p.close(id)
}

func (p *paneSim) close(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alive[id] = false
}

func (p *paneSim) PaneExists(ctx context.Context, paneID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.alive[paneID], nil
}

func (p *paneSim) KillPane(ctx context.Context, paneID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alive[paneID] = false
	p.killed = append(p.killed, paneID)
	return nil
}

func (p *paneSim) Killed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.killed...)
}

func (p *paneSim) Commands() [][]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]string(nil), p.commands...)
}

func flagValue(argv []string, name string) string {
	for i := 0; i+1 < len(argv); i++ {
		if argv[i] == name {
			return argv[i+1]
		}
	}
	return ""
}

type fixture struct {
	host    *host.MockHost
	channel *exchange.Channel
	panes   *paneSim
	service *Service
}

func newFixture(t *testing.T, list buffers.List, current string, b paneBehavior, opts ...Option) *fixture {
	t.Helper()

	ch := exchange.New(t.TempDir(), discardLogger())
	require.NoError(t, ch.Prepare())

	h := host.NewMockHost(list, current)
	panes := newPaneSim(ch, b)
	t.Cleanup(panes.wg.Wait)

	base := []Option{
		WithPanes(panes),
		WithNotifier(h),
		WithPollInterval(5 * time.Millisecond),
		WithWaitTimeout(5 * time.Second),
	}
	svc := New(
		buffers.NewLister(h, discardLogger()),
		picker.NewRequester(ch, panes, discardLogger()),
		ch,
		NewSwitcher(h, discardLogger()),
		discardLogger(),
		append(base, opts...)...,
	)
	return &fixture{host: h, channel: ch, panes: panes, service: svc}
}

func TestRun_SwitchesToSelectedBuffer(t *testing.T) {
	f := newFixture(t, testBuffers, "#dev", paneBehavior{output: "03 #random\n"})

	outcome, err := f.service.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "#random", outcome.Selected)
	assert.True(t, outcome.Switched)
	assert.False(t, outcome.Cancelled)
	assert.Equal(t, "%1", outcome.PaneID)
	assert.Equal(t, []string{"#random"}, f.host.Switches())
	assert.Empty(t, f.host.Notices())

	commands := f.panes.Commands()
	require.Len(t, commands, 1)
	assert.Equal(t, "1", flagValue(commands[0], "--index"))
	assert.Equal(t, outcome.Cycle, flagValue(commands[0], "--cycle"))

	list, err := f.channel.ReadInput()
	require.NoError(t, err)
	assert.Equal(t, testBuffers, list)
	assert.Equal(t, StateIdle, f.service.State())
}

func TestRun_CancelLeavesBufferUnchanged(t *testing.T) {
	f := newFixture(t, testBuffers, "#dev", paneBehavior{err: exitCode(130)})

	outcome, err := f.service.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, outcome.Cancelled)
	assert.False(t, outcome.Switched)
	assert.Equal(t, "#dev", outcome.Selected)
	assert.Empty(t, f.host.Switches())
	assert.Equal(t, "#dev", f.host.Current())
}

func TestRun_EmptyBufferList(t *testing.T) {
	f := newFixture(t, nil, "", paneBehavior{err: exitCode(1)})

	outcome, err := f.service.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, outcome.Cancelled)
	assert.Empty(t, f.host.Switches())

	list, err := f.channel.ReadInput()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRun_ListingFailure(t *testing.T) {
	f := newFixture(t, testBuffers, "#dev", paneBehavior{output: "03 #random\n"})
	f.host.ListErr = errors.New("relay down")

	_, err := f.service.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrListing))
	assert.Empty(t, f.panes.Commands(), "no picker should be launched")
	require.Len(t, f.host.Notices(), 1)
	assert.Contains(t, f.host.Notices()[0], "relay down")
}

func TestRun_TimeoutClosesPane(t *testing.T) {
	f := newFixture(t, testBuffers, "#dev", paneBehavior{hang: true}, WithWaitTimeout(100*time.Millisecond))

	outcome, err := f.service.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrApplyTimeout))
	assert.Equal(t, []string{outcome.PaneID}, f.panes.Killed())
	assert.Empty(t, f.host.Switches())
	assert.Len(t, f.host.Notices(), 1)
}

func TestRun_PaneVanishedWithoutResult(t *testing.T) {
	f := newFixture(t, testBuffers, "#dev", paneBehavior{vanish: true})

	_, err := f.service.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPickerFailed))
	assert.True(t, errors.Is(err, exchange.ErrPickerGone))
	assert.Empty(t, f.host.Switches())
}

func TestRun_MatcherFailure(t *testing.T) {
	f := newFixture(t, testBuffers, "#dev", paneBehavior{err: errors.New("exec: \"fzf\": executable file not found in $PATH")})

	_, err := f.service.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPickerFailed))
	assert.Contains(t, err.Error(), "executable file not found")
	assert.Empty(t, f.host.Switches())
}

func TestRun_BufferClosedWhilePicking(t *testing.T) {
	var f *fixture
	f = newFixture(t, testBuffers, "#dev", paneBehavior{
		output:    "03 #random\n",
		beforeRun: func() { f.host.Close("#random") },
	})

	outcome, err := f.service.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, outcome.Notice, "#random")
	assert.False(t, outcome.Switched)
	assert.Empty(t, f.host.Switches())
	require.Len(t, f.host.Notices(), 1)
	assert.Contains(t, f.host.Notices()[0], "no longer exists")
}

func TestRun_IgnoresResultFromAnotherCycle(t *testing.T) {
	f := newFixture(t, testBuffers, "#dev", paneBehavior{output: "03 #random\n", stale: true})

	outcome, err := f.service.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "#random", outcome.Selected)
	assert.Equal(t, []string{"#random"}, f.host.Switches())
}

func TestRun_StateSequence(t *testing.T) {
	var mu sync.Mutex
	var states []State
	hook := WithStateHook(func(s State) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, s)
	})
	f := newFixture(t, testBuffers, "#dev", paneBehavior{output: "01 weechat\n"}, hook)

	_, err := f.service.Run(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{StateListed, StateRequested, StateWaiting, StateApplied, StateIdle}, states)
}

func TestRun_BusyWhileCycleInProgress(t *testing.T) {
	f := newFixture(t, testBuffers, "#dev", paneBehavior{hang: true})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	require.NoError(t, f.service.Start(ctx, func(_ Outcome, err error) { done <- err }))

	_, err := f.service.Run(context.Background())
	assert.True(t, errors.Is(err, ErrBusy))
	assert.True(t, errors.Is(f.service.Start(context.Background(), nil), ErrBusy))

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("cycle did not stop after cancel")
	}
	assert.Len(t, f.panes.Killed(), 1)
	assert.Equal(t, StateIdle, f.service.State())
}

func TestRun_BusyAcrossProcesses(t *testing.T) {
	f := newFixture(t, testBuffers, "#dev", paneBehavior{output: "03 #random\n"})

	lock, err := f.channel.Lock()
	require.NoError(t, err)
	defer lock.Unlock()

	_, err = f.service.Run(context.Background())
	assert.True(t, errors.Is(err, ErrBusy))
	assert.Empty(t, f.panes.Commands())
}

func TestStart_ReportsOutcome(t *testing.T) {
	f := newFixture(t, testBuffers, "#dev", paneBehavior{output: "03 #random\n"})

	type result struct {
		outcome Outcome
		err     error
	}
	done := make(chan result, 1)
	require.NoError(t, f.service.Start(context.Background(), func(o Outcome, err error) {
		done <- result{o, err}
	}))

	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.Equal(t, "#random", r.outcome.Selected)
	case <-time.After(5 * time.Second):
		t.Fatal("cycle did not finish")
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "waiting", StateWaiting.String())
	assert.Equal(t, "state(42)", State(42).String())
}

type exitCode int

func (e exitCode) Error() string { return fmt.Sprintf("exit status %d", int(e)) }
func (e exitCode) ExitCode() int { return int(e) }
