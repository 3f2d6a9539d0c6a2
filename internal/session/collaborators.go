package session

import (
	"context"
	"errors"

	"github.com/voxide/voxide/internal/action"
	"github.com/voxide/voxide/internal/audio"
	"github.com/voxide/voxide/internal/history"
	"github.com/voxide/voxide/internal/interpret"
)

var (
	// ErrPipelineUnavailable indicates capture/transcription wiring is missing.
	ErrPipelineUnavailable = errors.New("audio capture pipeline not wired")
)

// Capture is the transcriber output handed from the listening phase to the
// processing phase.
type Capture struct {
	Recording audio.Recording
	Device    string
}

// Transcriber abstracts the capture and speech-to-text operations the
// session orchestrates.
type Transcriber interface {
	// Capture records one endpointed utterance. It returns when the
	// speaker pauses, the capture limit is hit, or ctx is cancelled.
	Capture(ctx context.Context) (Capture, error)
	// Transcribe turns the capture into raw transcript text.
	Transcribe(ctx context.Context, cap Capture) (string, error)
}

// PlaceholderTranscriber is the fallback when no pipeline is wired.
type PlaceholderTranscriber struct{}

func (PlaceholderTranscriber) Capture(context.Context) (Capture, error) {
	return Capture{}, ErrPipelineUnavailable
}

func (PlaceholderTranscriber) Transcribe(context.Context, Capture) (string, error) {
	return "", ErrPipelineUnavailable
}

// Dispatcher consumes resolved actions and reports the cursor context the
// dictation translator needs.
type Dispatcher interface {
	Apply(ctx context.Context, act action.Action) error
	IndentContext() interpret.IndentContext
}

type noopDispatcher struct{}

func (noopDispatcher) Apply(context.Context, action.Action) error { return nil }
func (noopDispatcher) IndentContext() interpret.IndentContext     { return interpret.IndentContext{} }

// Journal records interpreted utterances.
type Journal interface {
	Record(ctx context.Context, entry history.Entry) error
}

// JournalFunc adapts a function to the Journal interface.
type JournalFunc func(context.Context, history.Entry) error

func (f JournalFunc) Record(ctx context.Context, entry history.Entry) error {
	return f(ctx, entry)
}
