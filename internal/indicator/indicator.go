// Package indicator surfaces session state and notices to the desktop so
// the user always knows whether the microphone is live.
package indicator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/voxide/voxide/internal/fsm"
)

// Controller is the session-facing indicator contract.
type Controller interface {
	StateChanged(context.Context, fsm.State)
	Heard(context.Context, string)
	Unrecognized(context.Context, string)
	Failure(context.Context, string)
}

// Options configures the desktop indicator.
type Options struct {
	Enable bool
	// NoticeTimeoutMS bounds how long transient notices stay visible.
	NoticeTimeoutMS int
	// Sound plays audible cues at listen start, capture end, and failure.
	Sound bool
	// ListenSoundFile and CapturedSoundFile override the synthesized cues
	// with audio files played through pw-play.
	ListenSoundFile   string
	CapturedSoundFile string
}

// Desktop shows session state as freedesktop notifications via busctl.
// State notifications replace each other so only one indicator is visible.
type Desktop struct {
	opts     Options
	logger   *slog.Logger
	messages messages

	mu      sync.Mutex
	stateID uint32
}

func NewDesktop(opts Options, logger *slog.Logger) *Desktop {
	return &Desktop{
		opts:     opts,
		logger:   logger,
		messages: defaultMessages(),
	}
}

func (d *Desktop) StateChanged(ctx context.Context, state fsm.State) {
	if !d.opts.Enable {
		return
	}

	summary := d.messages.forState(state)
	timeout := 0 // persistent until replaced
	if state == fsm.StateReady {
		timeout = d.noticeTimeout()
	}

	d.mu.Lock()
	replaceID := d.stateID
	d.mu.Unlock()

	d.run(ctx, func(ctx context.Context) error {
		id, err := desktopNotify(ctx, "voxide", replaceID, summary, timeout)
		if err != nil {
			return err
		}
		d.mu.Lock()
		d.stateID = id
		d.mu.Unlock()
		return nil
	})

	if kind := cueForState(state); kind != 0 && d.opts.Sound {
		d.run(ctx, func(ctx context.Context) error {
			return emitCue(ctx, kind, d.opts)
		})
	}
}

func (d *Desktop) Heard(ctx context.Context, transcript string) {
	if !d.opts.Enable {
		return
	}
	d.transient(ctx, d.messages.heard+transcript)
}

func (d *Desktop) Unrecognized(ctx context.Context, original string) {
	if !d.opts.Enable {
		return
	}
	d.transient(ctx, d.messages.unrecognized+original)
}

func (d *Desktop) Failure(ctx context.Context, message string) {
	if !d.opts.Enable {
		return
	}
	if message == "" {
		message = d.messages.failure
	}
	d.transient(ctx, message)

	if d.opts.Sound {
		d.run(ctx, func(ctx context.Context) error {
			return emitCue(ctx, cueFailure, d.opts)
		})
	}
}

func (d *Desktop) transient(ctx context.Context, summary string) {
	d.run(ctx, func(ctx context.Context) error {
		_, err := desktopNotify(ctx, "voxide", 0, summary, d.noticeTimeout())
		return err
	})
}

func (d *Desktop) noticeTimeout() int {
	if d.opts.NoticeTimeoutMS > 0 {
		return d.opts.NoticeTimeoutMS
	}
	return 2000
}

// run fires the notification without blocking session flow.
func (d *Desktop) run(ctx context.Context, fn func(context.Context) error) {
	go func() {
		callCtx, cancel := context.WithTimeout(withoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := fn(callCtx); err != nil {
			d.logger.Warn("indicator notification failed", "error", err)
		}
	}()
}

// withoutCancel keeps notifications alive through session teardown.
func withoutCancel(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return context.WithoutCancel(ctx)
}

// LogSink is the headless indicator: state and notices go to the log only.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (l *LogSink) StateChanged(_ context.Context, state fsm.State) {
	l.logger.Info("session state", "state", string(state))
}

func (l *LogSink) Heard(_ context.Context, transcript string) {
	l.logger.Info("heard utterance", "transcript", transcript)
}

func (l *LogSink) Unrecognized(_ context.Context, original string) {
	l.logger.Info("unrecognized utterance", "transcript", original)
}

func (l *LogSink) Failure(_ context.Context, message string) {
	l.logger.Warn("session failure", "message", message)
}
