// Package session coordinates the voice command lifecycle: activation,
// capture, transcription, interpretation, and dispatch.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/voxide/voxide/internal/action"
	"github.com/voxide/voxide/internal/fsm"
	"github.com/voxide/voxide/internal/history"
	"github.com/voxide/voxide/internal/interpret"
	"github.com/voxide/voxide/internal/ipc"
	"github.com/voxide/voxide/internal/stt"
)

// Indicator is the session-facing subset of indicator behavior.
type Indicator interface {
	StateChanged(context.Context, fsm.State)
	Heard(context.Context, string)
	Unrecognized(context.Context, string)
	Failure(context.Context, string)
}

type noopIndicator struct{}

func (noopIndicator) StateChanged(context.Context, fsm.State) {}
func (noopIndicator) Heard(context.Context, string)           {}
func (noopIndicator) Unrecognized(context.Context, string)    {}
func (noopIndicator) Failure(context.Context, string)         {}

// Controller orchestrates session state transitions and side effects. One
// utterance is in flight at a time; a cancel or mic-off invalidates any
// in-flight work through the activation sequence number, so a transcript
// that arrives after cancellation is discarded instead of applied.
type Controller struct {
	logger      *slog.Logger
	engine      *interpret.Engine
	transcriber Transcriber
	dispatcher  Dispatcher
	indicator   Indicator
	journal     Journal

	mu            sync.RWMutex
	state         fsm.State
	seq           uint64
	cancelCapture context.CancelFunc

	lifecycles sync.WaitGroup
}

// NewController constructs a session controller with safe default fallbacks.
func NewController(
	logger *slog.Logger,
	engine *interpret.Engine,
	transcriber Transcriber,
	dispatcher Dispatcher,
	indicator Indicator,
	journal Journal,
) *Controller {
	if transcriber == nil {
		transcriber = PlaceholderTranscriber{}
	}
	if dispatcher == nil {
		dispatcher = noopDispatcher{}
	}
	if indicator == nil {
		indicator = noopIndicator{}
	}
	if journal == nil {
		journal = JournalFunc(func(context.Context, history.Entry) error { return nil })
	}

	return &Controller{
		logger:      logger,
		engine:      engine,
		transcriber: transcriber,
		dispatcher:  dispatcher,
		indicator:   indicator,
		journal:     journal,
		state:       fsm.StateReady,
	}
}

// State returns the current FSM state snapshot.
func (c *Controller) State() fsm.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Wait blocks until any in-flight utterance lifecycle finishes.
func (c *Controller) Wait() {
	c.lifecycles.Wait()
}

// Activate starts listening for one utterance. An activation while already
// listening, processing, or offline is ignored: it logs and returns nil
// without touching the session.
func (c *Controller) Activate(ctx context.Context) error {
	c.mu.Lock()
	next, err := fsm.Transition(c.state, fsm.EventActivate)
	if err != nil {
		state := c.state
		c.mu.Unlock()
		c.logger.Info("activation ignored", "state", string(state))
		return nil
	}
	c.state = next
	seq := c.seq
	captureCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancelCapture = cancel
	c.mu.Unlock()

	c.indicator.StateChanged(ctx, fsm.StateListening)
	c.logger.Info("listening", "seq", seq)

	c.lifecycles.Add(1)
	go func() {
		defer c.lifecycles.Done()
		c.lifecycle(captureCtx, seq)
	}()
	return nil
}

// lifecycle runs one capture-transcribe-apply pass for activation seq.
func (c *Controller) lifecycle(ctx context.Context, seq uint64) {
	capture, err := c.transcriber.Capture(ctx)
	if err != nil {
		if c.stale(seq) {
			return
		}
		c.fail(ctx, seq, fsm.StateListening, err)
		return
	}

	if !c.advance(seq, fsm.EventCaptureComplete) {
		return
	}
	c.indicator.StateChanged(ctx, fsm.StateProcessing)

	text, err := c.transcriber.Transcribe(ctx, capture)
	if err != nil {
		if c.stale(seq) {
			return
		}
		c.fail(ctx, seq, fsm.StateProcessing, err)
		return
	}

	c.process(ctx, seq, text)
}

// process interprets a transcript and applies the resulting action. The
// stale gate runs before anything touches the buffer: a transcript whose
// activation was cancelled mid-transcription is discarded, not applied.
func (c *Controller) process(ctx context.Context, seq uint64, text string) {
	if c.stale(seq) {
		c.logger.Info("discarded superseded transcript", "seq", seq)
		return
	}

	c.indicator.Heard(ctx, text)

	act := c.engine.Interpret(text, c.dispatcher.IndentContext())
	applyErr := c.dispatcher.Apply(ctx, act)

	_, unrecognized := act.(action.Unrecognized)
	entry := history.Entry{
		Transcript: text,
		Kind:       act.Kind(),
		Action:     act.String(),
		Applied:    applyErr == nil && !unrecognized,
	}
	if applyErr != nil {
		entry.Error = applyErr.Error()
	}
	if err := c.journal.Record(ctx, entry); err != nil {
		c.logger.Warn("failed to journal utterance", "error", err)
	}

	switch {
	case unrecognized:
		c.indicator.Unrecognized(ctx, text)
		c.logger.Info("unrecognized utterance", "transcript", text)
	case applyErr != nil:
		c.indicator.Failure(ctx, applyErr.Error())
		c.logger.Warn("action failed", "action", act.String(), "error", applyErr)
	default:
		c.logger.Info("applied action", "action", act.String(), "transcript", text)
	}

	if c.advance(seq, fsm.EventTranscribed) {
		c.indicator.StateChanged(ctx, fsm.StateReady)
	}
}

// fail reports a lifecycle failure and returns the session to ready.
func (c *Controller) fail(ctx context.Context, seq uint64, phase fsm.State, err error) {
	message := failureMessage(err)
	c.logger.Warn("utterance failed", "phase", string(phase), "error", err)
	if c.advance(seq, fsm.EventFail) {
		c.indicator.Failure(ctx, message)
		c.indicator.StateChanged(ctx, fsm.StateReady)
	}
}

// Say injects a transcript as if it had just been transcribed. It drives
// the same interpretation path as live audio.
func (c *Controller) Say(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("nothing to say")
	}

	c.mu.Lock()
	if c.state != fsm.StateReady {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("cannot interpret text from state %s", state)
	}
	c.state = fsm.StateProcessing
	seq := c.seq
	c.mu.Unlock()

	c.indicator.StateChanged(ctx, fsm.StateProcessing)
	c.process(ctx, seq, text)
	return nil
}

// Cancel discards the in-flight utterance, if any.
func (c *Controller) Cancel(ctx context.Context) error {
	c.mu.Lock()
	next, err := fsm.Transition(c.state, fsm.EventCancel)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = next
	c.seq++
	cancel := c.cancelCapture
	c.cancelCapture = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.logger.Info("cancelled utterance")
	c.indicator.StateChanged(ctx, fsm.StateReady)
	return nil
}

// MicOff forces the session offline from any state, discarding in-flight work.
func (c *Controller) MicOff(ctx context.Context) error {
	c.mu.Lock()
	next, err := fsm.Transition(c.state, fsm.EventMicOff)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = next
	c.seq++
	cancel := c.cancelCapture
	c.cancelCapture = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.logger.Info("microphone off")
	c.indicator.StateChanged(ctx, fsm.StateOffline)
	return nil
}

// MicOn returns the session to ready from offline.
func (c *Controller) MicOn(ctx context.Context) error {
	c.mu.Lock()
	next, err := fsm.Transition(c.state, fsm.EventMicOn)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = next
	c.mu.Unlock()

	c.logger.Info("microphone on")
	c.indicator.StateChanged(ctx, fsm.StateReady)
	return nil
}

// advance applies one FSM event for activation seq. It reports false when
// the activation was superseded or the transition is invalid.
func (c *Controller) advance(seq uint64, event fsm.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.seq != seq {
		return false
	}
	next, err := fsm.Transition(c.state, event)
	if err != nil {
		c.logger.Warn("dropped session event", "event", string(event), "state", string(c.state))
		return false
	}
	c.state = next
	return true
}

func (c *Controller) stale(seq uint64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.seq != seq
}

// failureMessage maps pipeline errors onto user-facing notices.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, stt.ErrUnreachable):
		return "Internet offline"
	case errors.Is(err, stt.ErrQuotaExceeded):
		return "Speech service quota exhausted"
	case errors.Is(err, stt.ErrEmptyTranscript):
		return "No speech detected"
	case errors.Is(err, ErrPipelineUnavailable):
		return "Audio pipeline unavailable"
	default:
		return "Speech recognition failed"
	}
}

// Handle serves IPC commands for the active session.
func (c *Controller) Handle(ctx context.Context, req ipc.Request) ipc.Response {
	respond := func(err error, message string) ipc.Response {
		state := string(c.State())
		if err != nil {
			return ipc.Response{OK: false, State: state, Error: err.Error()}
		}
		return ipc.Response{OK: true, State: state, Message: message}
	}

	switch req.Command {
	case "status":
		return ipc.Response{OK: true, State: string(c.State()), Message: "status"}
	case "activate":
		wasReady := c.State() == fsm.StateReady
		if err := c.Activate(ctx); err != nil {
			return respond(err, "")
		}
		if wasReady {
			return respond(nil, "listening")
		}
		return respond(nil, "activation ignored")
	case "cancel":
		return respond(c.Cancel(ctx), "cancelled")
	case "mic-on":
		return respond(c.MicOn(ctx), "microphone on")
	case "mic-off":
		return respond(c.MicOff(ctx), "microphone off")
	case "say":
		return respond(c.Say(ctx, req.Text), "interpreted")
	default:
		return ipc.Response{OK: false, State: string(c.State()), Error: fmt.Sprintf("unknown command: %s", req.Command)}
	}
}
