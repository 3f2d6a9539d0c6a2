package stt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/voxide/voxide/internal/audio"
)

// sendChunkBytes is 100ms of 16kHz mono s16 audio per websocket frame.
const sendChunkBytes = 3200

// StreamConfig configures the websocket transcription backend.
type StreamConfig struct {
	// BaseURL is the service root, http(s) or ws(s) scheme.
	BaseURL string
	// APIKey authenticates the connection when set.
	APIKey string
	// Model and Language are passed through to the service.
	Model    string
	Language string
}

// Stream transcribes recordings over a websocket listen endpoint. The whole
// recording is sent, the stream is closed, and final results are collected.
type Stream struct {
	cfg    StreamConfig
	dialer *websocket.Dialer
	logger *slog.Logger
}

func NewStream(cfg StreamConfig, logger *slog.Logger) *Stream {
	return &Stream{cfg: cfg, dialer: websocket.DefaultDialer, logger: logger}
}

func (s *Stream) Name() string { return "stream" }

func (s *Stream) Transcribe(ctx context.Context, rec audio.Recording) (string, error) {
	if rec.Empty() {
		return "", ErrEmptyTranscript
	}

	listenURL, err := s.listenURL(rec)
	if err != nil {
		return "", err
	}

	headers := http.Header{}
	if s.cfg.APIKey != "" {
		headers.Set("Authorization", "Token "+s.cfg.APIKey)
	}

	conn, resp, err := s.dialer.DialContext(ctx, listenURL, headers)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusPaymentRequired) {
			return "", statusError(s.Name(), resp.StatusCode, "")
		}
		return "", unreachable(err)
	}
	defer conn.Close()

	writeErr := make(chan error, 1)
	go func() {
		writeErr <- s.sendRecording(conn, rec.PCM)
	}()

	text, readErr := s.collectFinals(ctx, conn)
	if err := <-writeErr; err != nil {
		return "", err
	}
	if readErr != nil {
		return "", readErr
	}
	if text == "" {
		return "", ErrEmptyTranscript
	}

	s.logger.Debug("stream transcription complete", "chars", len(text))
	return text, nil
}

func (s *Stream) sendRecording(conn *websocket.Conn, pcm []byte) error {
	for len(pcm) > 0 {
		n := sendChunkBytes
		if n > len(pcm) {
			n = len(pcm)
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, pcm[:n]); err != nil {
			return unreachable(fmt.Errorf("send audio: %w", err))
		}
		pcm = pcm[n:]
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`)); err != nil {
		return unreachable(fmt.Errorf("close stream: %w", err))
	}
	return nil
}

// collectFinals reads result events until the server closes the stream and
// joins the final transcript fragments in order.
func (s *Stream) collectFinals(ctx context.Context, conn *websocket.Conn) (string, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	}

	var finals []string
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				return strings.Join(finals, " "), nil
			}
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", unreachable(fmt.Errorf("read result: %w", err))
		}

		var event streamEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			continue
		}

		if strings.EqualFold(event.Type, "Error") {
			message := strings.TrimSpace(event.Message)
			if message == "" {
				message = "speech service returned an unknown error"
			}
			return "", errors.New(message)
		}
		if !event.IsFinal && !event.SpeechFinal {
			continue
		}
		if text := event.transcript(); text != "" {
			finals = append(finals, text)
		}
	}
}

func (s *Stream) listenURL(rec audio.Recording) (string, error) {
	base := strings.TrimSpace(s.cfg.BaseURL)
	if base == "" {
		return "", errors.New("stream backend has no base URL configured")
	}
	if strings.HasPrefix(base, "https://") {
		base = "wss://" + strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	base = strings.TrimRight(base, "/")

	listenURL, err := url.Parse(base + "/listen")
	if err != nil {
		return "", fmt.Errorf("invalid stream base URL: %w", err)
	}

	query := listenURL.Query()
	query.Set("encoding", "linear16")
	query.Set("sample_rate", strconv.Itoa(rec.SampleRate))
	query.Set("channels", strconv.Itoa(rec.Channels))
	query.Set("interim_results", "false")
	query.Set("punctuate", "false")
	if s.cfg.Model != "" {
		query.Set("model", s.cfg.Model)
	}
	if s.cfg.Language != "" {
		query.Set("language", s.cfg.Language)
	}
	listenURL.RawQuery = query.Encode()
	return listenURL.String(), nil
}

type streamEvent struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	IsFinal     bool   `json:"is_final"`
	SpeechFinal bool   `json:"speech_final"`

	Channel struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`
}

func (e streamEvent) transcript() string {
	if len(e.Channel.Alternatives) == 0 {
		return ""
	}
	return strings.TrimSpace(e.Channel.Alternatives[0].Transcript)
}
