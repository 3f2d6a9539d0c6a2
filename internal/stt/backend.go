// Package stt sends captured audio to a speech-to-text service and maps
// transport failures onto a small error taxonomy the session can act on.
package stt

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/voxide/voxide/internal/audio"
)

var (
	// ErrUnreachable marks network failures: the service could not be
	// reached at all. The session reports these as the engine being
	// offline rather than a bad utterance.
	ErrUnreachable = errors.New("speech service unreachable")
	// ErrQuotaExceeded marks plan or rate limit rejections.
	ErrQuotaExceeded = errors.New("speech service quota exceeded")
	// ErrEmptyTranscript marks a successful round trip that produced no
	// words, usually a capture with no speech in it.
	ErrEmptyTranscript = errors.New("no speech recognized")
)

// Backend turns one recording into a transcript.
type Backend interface {
	Name() string
	Transcribe(ctx context.Context, rec audio.Recording) (string, error)
}

func unreachable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}

// statusError maps an HTTP status onto the error taxonomy.
func statusError(backend string, status int, body string) error {
	switch {
	case status == http.StatusTooManyRequests || status == http.StatusPaymentRequired:
		return fmt.Errorf("%w: %s returned %d", ErrQuotaExceeded, backend, status)
	case status >= 500:
		return fmt.Errorf("%w: %s returned %d", ErrUnreachable, backend, status)
	default:
		return fmt.Errorf("%s returned %d: %s", backend, status, body)
	}
}
