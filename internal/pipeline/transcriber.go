// Package pipeline wires audio capture and speech-to-text into the
// transcriber contract the session controller consumes.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/voxide/voxide/internal/audio"
	"github.com/voxide/voxide/internal/session"
	"github.com/voxide/voxide/internal/stt"
)

// Options configures one pipeline transcriber.
type Options struct {
	// Input and Fallback are device preferences, resolved per capture so
	// unplugged microphones are noticed immediately.
	Input    string
	Fallback string
	Endpoint audio.EndpointConfig
	// Dumper, when set, writes every capture to disk for debugging.
	Dumper *stt.Dumper
}

// Transcriber owns the capture-then-transcribe pipeline for one session.
type Transcriber struct {
	opts    Options
	backend stt.Backend
	logger  *slog.Logger

	mu        sync.Mutex
	selection audio.Selection
	haveWarn  map[string]bool
}

func NewTranscriber(opts Options, backend stt.Backend, logger *slog.Logger) *Transcriber {
	return &Transcriber{
		opts:     opts,
		backend:  backend,
		logger:   logger,
		haveWarn: make(map[string]bool),
	}
}

// Capture records one endpointed utterance from the configured device.
func (t *Transcriber) Capture(ctx context.Context) (session.Capture, error) {
	selection, err := audio.SelectDevice(ctx, t.opts.Input, t.opts.Fallback)
	if err != nil {
		return session.Capture{}, fmt.Errorf("select capture device: %w", err)
	}
	t.noteSelection(selection)

	recording, err := audio.Record(ctx, selection.Device, t.opts.Endpoint)
	if err != nil {
		return session.Capture{}, err
	}

	if t.opts.Dumper != nil {
		if path, dumpErr := t.opts.Dumper.Dump(recording); dumpErr != nil {
			t.logger.Warn("failed to dump capture", "error", dumpErr)
		} else if path != "" {
			t.logger.Debug("capture dumped", "path", path)
		}
	}

	t.logger.Info("capture complete",
		"device", describeDevice(selection.Device),
		"duration", recording.Duration(),
		"bytes", len(recording.PCM),
	)

	return session.Capture{
		Recording: recording,
		Device:    describeDevice(selection.Device),
	}, nil
}

// Transcribe sends the capture to the speech backend.
func (t *Transcriber) Transcribe(ctx context.Context, cap session.Capture) (string, error) {
	text, err := t.backend.Transcribe(ctx, cap.Recording)
	if err != nil {
		return "", fmt.Errorf("%s transcription: %w", t.backend.Name(), err)
	}

	t.logger.Info("transcription complete", "backend", t.backend.Name(), "chars", len(text))
	return text, nil
}

// noteSelection warns once per distinct fallback message.
func (t *Transcriber) noteSelection(selection audio.Selection) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.selection = selection
	if selection.Warning != "" && !t.haveWarn[selection.Warning] {
		t.haveWarn[selection.Warning] = true
		t.logger.Warn(selection.Warning)
	}
}

func describeDevice(device audio.Device) string {
	description := strings.TrimSpace(device.Description)
	id := strings.TrimSpace(device.ID)
	if description == "" {
		return id
	}
	if id == "" {
		return description
	}
	return fmt.Sprintf("%s (%s)", description, id)
}
