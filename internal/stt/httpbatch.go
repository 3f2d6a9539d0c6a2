package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/voxide/voxide/internal/audio"
)

// BatchConfig configures the HTTP upload transcription backend.
type BatchConfig struct {
	// URL is the full transcription endpoint.
	URL string
	// APIKey authenticates the request when set.
	APIKey string
	// Model is passed as a form field when set.
	Model string
	// Timeout bounds the whole upload round trip.
	Timeout time.Duration
}

// Batch transcribes recordings by uploading them as WAV files to an HTTP
// transcription endpoint that answers {"text": "..."}.
type Batch struct {
	cfg    BatchConfig
	client *http.Client
	logger *slog.Logger
}

func NewBatch(cfg BatchConfig, logger *slog.Logger) *Batch {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Batch{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (b *Batch) Name() string { return "batch" }

func (b *Batch) Transcribe(ctx context.Context, rec audio.Recording) (string, error) {
	if rec.Empty() {
		return "", ErrEmptyTranscript
	}
	if b.cfg.URL == "" {
		return "", errors.New("batch backend has no URL configured")
	}

	wavPath := filepath.Join(os.TempDir(), fmt.Sprintf("voxide-upload-%d.wav", time.Now().UnixNano()))
	if err := EncodeWAVFile(wavPath, rec); err != nil {
		return "", err
	}
	defer os.Remove(wavPath)

	body, contentType, err := b.multipartBody(wavPath)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.URL, body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if b.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.cfg.APIKey)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", unreachable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", statusError(b.Name(), resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode transcription response: %w", err)
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		return "", ErrEmptyTranscript
	}

	b.logger.Debug("batch transcription complete", "chars", len(text), "audio", rec.Duration())
	return text, nil
}

func (b *Batch) multipartBody(wavPath string) (*bytes.Buffer, string, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return nil, "", fmt.Errorf("open wav file: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if b.cfg.Model != "" {
		if err := mw.WriteField("model", b.cfg.Model); err != nil {
			return nil, "", err
		}
	}

	fw, err := mw.CreateFormFile("file", filepath.Base(wavPath))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}

	return &body, mw.FormDataContentType(), nil
}
