package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load reads the TOML config at path on top of defaults. A missing file is
// not an error; it yields the defaults plus a warning.
func Load(path string) (Config, []Warning, error) {
	cfg := Default()
	var warnings []Warning

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			warnings = append(warnings, Warning(fmt.Sprintf("config file %s not found; using defaults", path)))
			return cfg, warnings, nil
		}
		return Config{}, nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	for _, key := range meta.Undecoded() {
		warnings = append(warnings, Warning(fmt.Sprintf("unknown config key %q ignored", key.String())))
	}

	if err := Validate(cfg); err != nil {
		return Config{}, warnings, err
	}
	return cfg, warnings, nil
}

// Validate rejects configurations the runtime cannot act on.
func Validate(cfg Config) error {
	switch cfg.STT.Backend {
	case "stream":
		if strings.TrimSpace(cfg.STT.StreamURL) == "" {
			return errors.New("stt.backend is \"stream\" but stt.stream_url is empty")
		}
	case "batch":
		if strings.TrimSpace(cfg.STT.BatchURL) == "" {
			return errors.New("stt.backend is \"batch\" but stt.batch_url is empty")
		}
	default:
		return fmt.Errorf("unknown stt.backend %q (want \"stream\" or \"batch\")", cfg.STT.Backend)
	}

	if cfg.STT.TimeoutMS < 0 {
		return errors.New("stt.timeout_ms must not be negative")
	}
	if cfg.Audio.SilenceThreshold < 0 || cfg.Audio.SilenceThreshold >= 1 {
		return fmt.Errorf("audio.silence_threshold %v out of range [0, 1)", cfg.Audio.SilenceThreshold)
	}
	if cfg.Audio.SilenceAfterMS < 0 || cfg.Audio.MaxUtteranceMS < 0 {
		return errors.New("audio endpoint durations must not be negative")
	}

	switch cfg.Indicator.Backend {
	case "", "desktop", "log":
	default:
		return fmt.Errorf("unknown indicator.backend %q (want \"desktop\" or \"log\")", cfg.Indicator.Backend)
	}

	if len(cfg.Editor.RunCommand.Argv) == 0 {
		return errors.New("editor.run_command must name a program interpreter")
	}
	return nil
}
