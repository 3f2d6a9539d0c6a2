package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voxide/voxide/internal/audio"
	"github.com/voxide/voxide/internal/session"
	"github.com/voxide/voxide/internal/stt"
)

type stubBackend struct {
	text string
	err  error
	got  audio.Recording
}

func (s *stubBackend) Name() string { return "stub" }

func (s *stubBackend) Transcribe(_ context.Context, rec audio.Recording) (string, error) {
	s.got = rec
	return s.text, s.err
}

func TestTranscribeDelegatesToBackend(t *testing.T) {
	backend := &stubBackend{text: "open a file"}
	tr := NewTranscriber(Options{}, backend, slog.New(slog.NewJSONHandler(io.Discard, nil)))

	rec := audio.Recording{PCM: []byte{1, 2, 3, 4}, SampleRate: audio.SampleRate, Channels: 1}
	text, err := tr.Transcribe(context.Background(), session.Capture{Recording: rec})
	require.NoError(t, err)
	require.Equal(t, "open a file", text)
	require.Equal(t, rec, backend.got)
}

func TestTranscribePreservesErrorTaxonomy(t *testing.T) {
	backend := &stubBackend{err: stt.ErrUnreachable}
	tr := NewTranscriber(Options{}, backend, slog.New(slog.NewJSONHandler(io.Discard, nil)))

	_, err := tr.Transcribe(context.Background(), session.Capture{})
	require.ErrorIs(t, err, stt.ErrUnreachable)
}

func TestCaptureFailsWithoutAudioServer(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")
	tr := NewTranscriber(Options{}, &stubBackend{}, slog.New(slog.NewJSONHandler(io.Discard, nil)))

	_, err := tr.Capture(context.Background())
	require.Error(t, err)
	require.False(t, errors.Is(err, stt.ErrUnreachable))
}

func TestDescribeDevice(t *testing.T) {
	require.Equal(t, "Elgato Wave 3 (mic-1)", describeDevice(audio.Device{ID: "mic-1", Description: "Elgato Wave 3"}))
	require.Equal(t, "mic-1", describeDevice(audio.Device{ID: "mic-1"}))
	require.Equal(t, "Elgato Wave 3", describeDevice(audio.Device{Description: "Elgato Wave 3"}))
}
