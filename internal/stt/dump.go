package stt

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/voxide/voxide/internal/audio"
)

// Dumper writes captured recordings to disk as WAV files for debugging
// transcription problems. A nil Dumper discards everything.
type Dumper struct {
	dir    string
	logger *slog.Logger
}

func NewDumper(dir string, logger *slog.Logger) (*Dumper, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create dump directory: %w", err)
	}
	return &Dumper{dir: dir, logger: logger}, nil
}

// Dump writes the recording and returns its path.
func (d *Dumper) Dump(rec audio.Recording) (string, error) {
	if d == nil {
		return "", nil
	}

	name := time.Now().Format("capture-20060102-150405.000.wav")
	path := filepath.Join(d.dir, name)
	if err := EncodeWAVFile(path, rec); err != nil {
		return "", err
	}

	d.logger.Debug("dumped capture", "path", path, "duration", rec.Duration())
	return path, nil
}
