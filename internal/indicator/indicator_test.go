package indicator

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voxide/voxide/internal/fsm"
)

func TestMessagesForState(t *testing.T) {
	m := defaultMessages()
	require.Equal(t, "Microphone Ready", m.forState(fsm.StateReady))
	require.Equal(t, "Listening…", m.forState(fsm.StateListening))
	require.Equal(t, "Processing…", m.forState(fsm.StateProcessing))
	require.Equal(t, "Microphone Offline", m.forState(fsm.StateOffline))
}

func TestDisabledDesktopDoesNothing(t *testing.T) {
	d := NewDesktop(Options{Enable: false}, slog.New(slog.NewJSONHandler(io.Discard, nil)))

	// None of these should attempt a busctl call or panic.
	d.StateChanged(context.Background(), fsm.StateListening)
	d.Heard(context.Background(), "save the document")
	d.Unrecognized(context.Background(), "do a backflip")
	d.Failure(context.Background(), "")
}

func TestLogSinkWritesStructuredRecords(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(slog.New(slog.NewJSONHandler(&buf, nil)))

	sink.StateChanged(context.Background(), fsm.StateProcessing)
	sink.Heard(context.Background(), "type hello")
	sink.Unrecognized(context.Background(), "do a backflip")
	sink.Failure(context.Background(), "Internet offline")

	out := buf.String()
	require.Contains(t, out, `"state":"processing"`)
	require.Contains(t, out, `"transcript":"type hello"`)
	require.Contains(t, out, `"transcript":"do a backflip"`)
	require.Contains(t, out, `"message":"Internet offline"`)
}

func TestNoticeTimeoutDefault(t *testing.T) {
	d := NewDesktop(Options{Enable: true}, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	require.Equal(t, 2000, d.noticeTimeout())

	d = NewDesktop(Options{Enable: true, NoticeTimeoutMS: 750}, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	require.Equal(t, 750, d.noticeTimeout())
}
