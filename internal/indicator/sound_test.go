package indicator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/voxide/voxide/internal/fsm"
)

func TestCueSamplesPresent(t *testing.T) {
	require.NotEmpty(t, cueSamples(cueListen))
	require.NotEmpty(t, cueSamples(cueCaptured))
	require.NotEmpty(t, cueSamples(cueFailure))
	require.Empty(t, cueSamples(0))
}

func TestCueForState(t *testing.T) {
	require.Equal(t, cueListen, cueForState(fsm.StateListening))
	require.Equal(t, cueCaptured, cueForState(fsm.StateProcessing))
	require.Equal(t, cueKind(0), cueForState(fsm.StateReady))
	require.Equal(t, cueKind(0), cueForState(fsm.StateOffline))
}

func TestCueFileOverrides(t *testing.T) {
	opts := Options{ListenSoundFile: "/tmp/listen.wav", CapturedSoundFile: "/tmp/captured.wav"}
	require.Equal(t, "/tmp/listen.wav", cueFile(cueListen, opts))
	require.Equal(t, "/tmp/captured.wav", cueFile(cueCaptured, opts))
	// The failure cue is synthesized only.
	require.Empty(t, cueFile(cueFailure, opts))
}

func TestSynthesizeToneDuration(t *testing.T) {
	got := synthesizeTone(toneSpec{frequencyHz: 440, duration: 100 * time.Millisecond, volume: 0.2})
	want := samplesForDuration(100 * time.Millisecond)
	require.Len(t, got, want)
}

func TestSynthesizeToneInvalidSpecReturnsEmpty(t *testing.T) {
	require.Empty(t, synthesizeTone(toneSpec{frequencyHz: 0, duration: 100 * time.Millisecond, volume: 0.2}))
	require.Empty(t, synthesizeTone(toneSpec{frequencyHz: 440, duration: 0, volume: 0.2}))
	require.Empty(t, synthesizeTone(toneSpec{frequencyHz: 440, duration: 100 * time.Millisecond, volume: 0}))
}

func TestSamplesForDuration(t *testing.T) {
	require.Equal(t, 0, samplesForDuration(0))
	require.Greater(t, samplesForDuration(25*time.Millisecond), 0)
}

func TestExpandUserPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	require.Empty(t, expandUserPath("  "))
	require.Equal(t, "/srv/cue.wav", expandUserPath("/srv/cue.wav"))
	require.Equal(t, home, expandUserPath("~"))
	require.Equal(t, filepath.Join(home, "cues", "mic.wav"), expandUserPath("~/cues/mic.wav"))
}

func TestEmitCueRespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := emitCue(ctx, cueListen, Options{})
	require.ErrorIs(t, err, context.Canceled)
}
