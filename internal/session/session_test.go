package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/voxide/voxide/internal/action"
	"github.com/voxide/voxide/internal/fsm"
	"github.com/voxide/voxide/internal/history"
	"github.com/voxide/voxide/internal/interpret"
	"github.com/voxide/voxide/internal/ipc"
	"github.com/voxide/voxide/internal/lexicon"
	"github.com/voxide/voxide/internal/stt"
)

type fakeTranscriber struct {
	mu                sync.Mutex
	release           chan struct{}
	transcribeRelease chan struct{}
	text              string
	captureErr        error
	transcribeErr     error
	honorCancel       bool
}

func (f *fakeTranscriber) Capture(ctx context.Context) (Capture, error) {
	if f.release != nil {
		if f.honorCancel {
			select {
			case <-ctx.Done():
				return Capture{}, ctx.Err()
			case <-f.release:
			}
		} else {
			<-f.release
		}
	}
	if f.captureErr != nil {
		return Capture{}, f.captureErr
	}
	return Capture{Device: "fake mic"}, nil
}

func (f *fakeTranscriber) Transcribe(context.Context, Capture) (string, error) {
	// Deliberately ignores cancellation: a slow speech service returns its
	// transcript whether or not the session still wants it.
	if f.transcribeRelease != nil {
		<-f.transcribeRelease
	}
	if f.transcribeErr != nil {
		return "", f.transcribeErr
	}
	return f.text, nil
}

type fakeDispatcher struct {
	mu       sync.Mutex
	applied  []action.Action
	applyErr error
	ctx      interpret.IndentContext
}

func (f *fakeDispatcher) Apply(_ context.Context, act action.Action) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, act)
	return f.applyErr
}

func (f *fakeDispatcher) IndentContext() interpret.IndentContext {
	return f.ctx
}

func (f *fakeDispatcher) actions() []action.Action {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]action.Action{}, f.applied...)
}

type fakeIndicator struct {
	mu           sync.Mutex
	states       []fsm.State
	heard        []string
	unrecognized []string
	failures     []string
}

func (f *fakeIndicator) StateChanged(_ context.Context, s fsm.State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, s)
}

func (f *fakeIndicator) Heard(_ context.Context, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.heard = append(f.heard, text)
}

func (f *fakeIndicator) Unrecognized(_ context.Context, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unrecognized = append(f.unrecognized, text)
}

func (f *fakeIndicator) Failure(_ context.Context, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, message)
}

type recordingJournal struct {
	mu      sync.Mutex
	entries []history.Entry
}

func (j *recordingJournal) Record(_ context.Context, e history.Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
	return nil
}

func testEngine(t *testing.T) *interpret.Engine {
	t.Helper()
	lex, _, err := lexicon.Load("")
	require.NoError(t, err)
	return interpret.NewEngine(lex)
}

func newTestController(t *testing.T, tr Transcriber, disp *fakeDispatcher, ind *fakeIndicator, journal Journal) *Controller {
	t.Helper()
	return NewController(slog.New(slog.NewJSONHandler(io.Discard, nil)), testEngine(t), tr, disp, ind, journal)
}

func TestActivateAppliesResolvedAction(t *testing.T) {
	tr := &fakeTranscriber{text: "save the document"}
	disp := &fakeDispatcher{}
	ind := &fakeIndicator{}
	journal := &recordingJournal{}
	c := newTestController(t, tr, disp, ind, journal)

	require.NoError(t, c.Activate(context.Background()))
	c.Wait()

	require.Equal(t, fsm.StateReady, c.State())
	require.Equal(t, []action.Action{action.FileOp{Op: action.Save}}, disp.actions())
	require.Equal(t, []string{"save the document"}, ind.heard)
	require.Len(t, journal.entries, 1)
	require.True(t, journal.entries[0].Applied)
	require.Equal(t, "file", journal.entries[0].Kind)
}

func TestActivateWhileBusyIsIgnored(t *testing.T) {
	tr := &fakeTranscriber{release: make(chan struct{}), text: "save the document"}
	disp := &fakeDispatcher{}
	c := newTestController(t, tr, disp, &fakeIndicator{}, nil)

	require.NoError(t, c.Activate(context.Background()))
	require.NoError(t, c.Activate(context.Background()))
	require.Equal(t, fsm.StateListening, c.State())

	close(tr.release)
	c.Wait()
	require.Equal(t, fsm.StateReady, c.State())

	// Only the first activation ran a capture.
	require.Len(t, disp.actions(), 1)
}

func TestCancelDiscardsLateCapture(t *testing.T) {
	tr := &fakeTranscriber{release: make(chan struct{}), text: "type hello"}
	disp := &fakeDispatcher{}
	c := newTestController(t, tr, disp, &fakeIndicator{}, nil)

	require.NoError(t, c.Activate(context.Background()))
	require.NoError(t, c.Cancel(context.Background()))
	require.Equal(t, fsm.StateReady, c.State())

	// The capture finishes after the cancel; its result must be discarded.
	close(tr.release)
	c.Wait()

	require.Empty(t, disp.actions())
	require.Equal(t, fsm.StateReady, c.State())
}

func TestCancelDuringTranscriptionDiscardsTranscript(t *testing.T) {
	tr := &fakeTranscriber{transcribeRelease: make(chan struct{}), text: "save the document"}
	disp := &fakeDispatcher{}
	ind := &fakeIndicator{}
	c := newTestController(t, tr, disp, ind, nil)

	require.NoError(t, c.Activate(context.Background()))
	waitForState(t, c, fsm.StateProcessing)

	require.NoError(t, c.Cancel(context.Background()))
	require.Equal(t, fsm.StateReady, c.State())

	// The transcript arrives after the cancel; nothing may reach the buffer.
	close(tr.transcribeRelease)
	c.Wait()

	require.Empty(t, disp.actions())
	require.Empty(t, ind.heard)
	require.Equal(t, fsm.StateReady, c.State())
}

func waitForState(t *testing.T, c *Controller, want fsm.State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("controller never reached state %s", want)
}

func TestCancelStopsActiveCapture(t *testing.T) {
	tr := &fakeTranscriber{release: make(chan struct{}), honorCancel: true}
	disp := &fakeDispatcher{}
	c := newTestController(t, tr, disp, &fakeIndicator{}, nil)

	require.NoError(t, c.Activate(context.Background()))
	require.NoError(t, c.Cancel(context.Background()))
	c.Wait()

	require.Empty(t, disp.actions())
	require.Equal(t, fsm.StateReady, c.State())
}

func TestCancelFromReadyFails(t *testing.T) {
	c := newTestController(t, &fakeTranscriber{}, &fakeDispatcher{}, &fakeIndicator{}, nil)
	require.Error(t, c.Cancel(context.Background()))
}

func TestTranscribeFailureReturnsToReady(t *testing.T) {
	tr := &fakeTranscriber{transcribeErr: stt.ErrUnreachable}
	disp := &fakeDispatcher{}
	ind := &fakeIndicator{}
	c := newTestController(t, tr, disp, ind, nil)

	require.NoError(t, c.Activate(context.Background()))
	c.Wait()

	require.Equal(t, fsm.StateReady, c.State())
	require.Empty(t, disp.actions())
	require.Equal(t, []string{"Internet offline"}, ind.failures)
}

func TestUnrecognizedUtteranceTouchesNothing(t *testing.T) {
	tr := &fakeTranscriber{text: "do a backflip"}
	disp := &fakeDispatcher{}
	ind := &fakeIndicator{}
	journal := &recordingJournal{}
	c := newTestController(t, tr, disp, ind, journal)

	require.NoError(t, c.Activate(context.Background()))
	c.Wait()

	require.Equal(t, []string{"do a backflip"}, ind.unrecognized)
	require.Len(t, journal.entries, 1)
	require.False(t, journal.entries[0].Applied)
	require.Equal(t, "unrecognized", journal.entries[0].Kind)

	// The unrecognized action is dispatched for logging but must not carry
	// a buffer mutation.
	require.Len(t, disp.actions(), 1)
	require.IsType(t, action.Unrecognized{}, disp.actions()[0])
}

func TestMicOffFromEveryState(t *testing.T) {
	tr := &fakeTranscriber{release: make(chan struct{})}
	c := newTestController(t, tr, &fakeDispatcher{}, &fakeIndicator{}, nil)

	require.NoError(t, c.Activate(context.Background()))
	require.NoError(t, c.MicOff(context.Background()))
	require.Equal(t, fsm.StateOffline, c.State())

	// Activation while offline is ignored, not an error.
	require.NoError(t, c.Activate(context.Background()))
	require.Equal(t, fsm.StateOffline, c.State())

	close(tr.release)
	c.Wait()
	require.Equal(t, fsm.StateOffline, c.State())

	require.NoError(t, c.MicOn(context.Background()))
	require.Equal(t, fsm.StateReady, c.State())
}

func TestSayDrivesInterpretation(t *testing.T) {
	disp := &fakeDispatcher{}
	c := newTestController(t, &fakeTranscriber{}, disp, &fakeIndicator{}, nil)

	require.NoError(t, c.Say(context.Background(), "shift the cursor up by two places"))
	require.Equal(t, fsm.StateReady, c.State())

	require.Equal(t, []action.Action{
		action.MoveCursor{Direction: action.Up, Count: 2},
	}, disp.actions())
}

func TestSayRejectedWhileOffline(t *testing.T) {
	c := newTestController(t, &fakeTranscriber{}, &fakeDispatcher{}, &fakeIndicator{}, nil)
	require.NoError(t, c.MicOff(context.Background()))
	require.Error(t, c.Say(context.Background(), "save the document"))
}

func TestDispatchFailureSurfacesNotice(t *testing.T) {
	tr := &fakeTranscriber{text: "run the program"}
	disp := &fakeDispatcher{applyErr: errors.New("save the document before running it")}
	ind := &fakeIndicator{}
	journal := &recordingJournal{}
	c := newTestController(t, tr, disp, ind, journal)

	require.NoError(t, c.Activate(context.Background()))
	c.Wait()

	require.Equal(t, fsm.StateReady, c.State())
	require.Equal(t, []string{"save the document before running it"}, ind.failures)
	require.Len(t, journal.entries, 1)
	require.False(t, journal.entries[0].Applied)
	require.Equal(t, "save the document before running it", journal.entries[0].Error)
}

func TestHandleServesIPCCommands(t *testing.T) {
	tr := &fakeTranscriber{text: "create a new tab"}
	disp := &fakeDispatcher{}
	c := newTestController(t, tr, disp, &fakeIndicator{}, nil)
	ctx := context.Background()

	resp := c.Handle(ctx, ipc.Request{Command: "status"})
	require.True(t, resp.OK)
	require.Equal(t, "ready", resp.State)

	resp = c.Handle(ctx, ipc.Request{Command: "say", Text: "create a new tab"})
	require.True(t, resp.OK)
	require.Equal(t, []action.Action{action.FileOp{Op: action.NewTab}}, disp.actions())

	resp = c.Handle(ctx, ipc.Request{Command: "mic-off"})
	require.True(t, resp.OK)
	require.Equal(t, "offline", resp.State)

	resp = c.Handle(ctx, ipc.Request{Command: "activate"})
	require.True(t, resp.OK)
	require.Equal(t, "offline", resp.State)
	require.Equal(t, "activation ignored", resp.Message)

	resp = c.Handle(ctx, ipc.Request{Command: "mic-on"})
	require.True(t, resp.OK)

	resp = c.Handle(ctx, ipc.Request{Command: "juggle"})
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "unknown command")
}
