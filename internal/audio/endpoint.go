package audio

import (
	"context"
	"encoding/binary"
	"math"
	"time"
)

// Recording is one captured utterance as raw PCM.
type Recording struct {
	PCM        []byte
	SampleRate int
	Channels   int
}

// Duration reports the captured audio length.
func (r Recording) Duration() time.Duration {
	if r.SampleRate == 0 || r.Channels == 0 {
		return 0
	}
	samples := len(r.PCM) / 2 / r.Channels
	return time.Duration(samples) * time.Second / time.Duration(r.SampleRate)
}

// Empty reports whether the recording holds no audio.
func (r Recording) Empty() bool {
	return len(r.PCM) == 0
}

// EndpointConfig tunes where a capture is cut off.
type EndpointConfig struct {
	// SilenceThreshold is the normalized RMS level below which a chunk
	// counts as silence.
	SilenceThreshold float64
	// SilenceAfter is how long sustained silence must follow speech
	// before the capture ends.
	SilenceAfter time.Duration
	// MaxDuration caps the capture even if speech never pauses.
	MaxDuration time.Duration
}

// DefaultEndpointConfig matches short spoken commands: cut after 700ms of
// trailing silence, never run past eight seconds.
func DefaultEndpointConfig() EndpointConfig {
	return EndpointConfig{
		SilenceThreshold: 0.015,
		SilenceAfter:     700 * time.Millisecond,
		MaxDuration:      8 * time.Second,
	}
}

// Endpointer decides when a chunked capture has reached the end of an
// utterance. Feed returns true once the capture should stop: either speech
// was heard and trailing silence lasted SilenceAfter, or MaxDuration passed.
type Endpointer struct {
	cfg EndpointConfig

	heard   bool
	silence time.Duration
	total   time.Duration
}

func NewEndpointer(cfg EndpointConfig) *Endpointer {
	return &Endpointer{cfg: cfg}
}

// HeardSpeech reports whether any chunk crossed the silence threshold.
func (e *Endpointer) HeardSpeech() bool {
	return e.heard
}

// Feed accounts one PCM chunk and reports whether capture should stop.
func (e *Endpointer) Feed(chunk []byte) bool {
	d := pcmDuration(len(chunk))
	e.total += d

	if chunkRMS(chunk) >= e.cfg.SilenceThreshold {
		e.heard = true
		e.silence = 0
	} else if e.heard {
		e.silence += d
	}

	if e.heard && e.cfg.SilenceAfter > 0 && e.silence >= e.cfg.SilenceAfter {
		return true
	}
	return e.cfg.MaxDuration > 0 && e.total >= e.cfg.MaxDuration
}

func pcmDuration(n int) time.Duration {
	samples := n / 2
	return time.Duration(samples) * time.Second / SampleRate
}

// chunkRMS computes the normalized root mean square of s16le samples.
func chunkRMS(chunk []byte) float64 {
	n := len(chunk) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(chunk[i*2:]))
		v := float64(s) / math.MaxInt16
		sum += v * v
	}
	return math.Sqrt(sum / float64(n))
}

// Record captures one endpointed utterance from the selected device. The
// context cancels the capture; a cancelled record returns the context error
// rather than a partial recording.
func Record(ctx context.Context, device Device, cfg EndpointConfig) (Recording, error) {
	capture, err := StartCapture(ctx, device)
	if err != nil {
		return Recording{}, err
	}
	defer capture.Close()

	endpointer := NewEndpointer(cfg)
	for {
		select {
		case <-ctx.Done():
			return Recording{}, ctx.Err()
		case chunk, ok := <-capture.Chunks():
			if !ok || endpointer.Feed(chunk) {
				if err := capture.Stop(); err != nil {
					return Recording{}, err
				}
				if ctx.Err() != nil {
					return Recording{}, ctx.Err()
				}
				return Recording{
					PCM:        capture.RawPCM(),
					SampleRate: SampleRate,
					Channels:   1,
				}, nil
			}
		}
	}
}
