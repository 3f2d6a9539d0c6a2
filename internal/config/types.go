// Package config resolves, parses, validates, and defaults voxide
// configuration from a TOML file.
package config

// Config is the fully materialized runtime configuration.
type Config struct {
	STT       STTConfig       `toml:"stt"`
	Audio     AudioConfig     `toml:"audio"`
	Editor    EditorConfig    `toml:"editor"`
	Indicator IndicatorConfig `toml:"indicator"`
	Lexicon   LexiconConfig   `toml:"lexicon"`
	History   HistoryConfig   `toml:"history"`
	Debug     DebugConfig     `toml:"debug"`
}

// STTConfig selects and configures the transcription backend.
type STTConfig struct {
	// Backend is "stream" (websocket) or "batch" (HTTP upload).
	Backend string `toml:"backend"`
	// StreamURL is the service root for the websocket backend.
	StreamURL string `toml:"stream_url"`
	// BatchURL is the full endpoint for the HTTP upload backend.
	BatchURL string `toml:"batch_url"`
	// HealthGRPC is an optional gRPC health endpoint probed by doctor.
	HealthGRPC string `toml:"health_grpc"`
	APIKey     string `toml:"api_key"`
	Model      string `toml:"model"`
	Language   string `toml:"language"`
	TimeoutMS  int    `toml:"timeout_ms"`
}

// AudioConfig controls input device selection and utterance endpointing.
type AudioConfig struct {
	Input            string  `toml:"input"`
	Fallback         string  `toml:"fallback"`
	SilenceThreshold float64 `toml:"silence_threshold"`
	SilenceAfterMS   int     `toml:"silence_after_ms"`
	MaxUtteranceMS   int     `toml:"max_utterance_ms"`
}

// EditorConfig controls the workspace collaborators.
type EditorConfig struct {
	// RunCommand executes the current document; the file path is appended.
	RunCommand CommandConfig `toml:"run_command"`
	// Picker chooses file paths for open and save; it must print the
	// chosen path on stdout.
	Picker CommandConfig `toml:"picker"`
	// WatchFiles marks open tabs whose files change on disk.
	WatchFiles bool `toml:"watch_files"`
}

// IndicatorConfig controls state presentation.
type IndicatorConfig struct {
	Enable bool `toml:"enable"`
	// Backend is "desktop" (notifications) or "log".
	Backend         string `toml:"backend"`
	NoticeTimeoutMS int    `toml:"notice_timeout_ms"`
	// Sound plays audible cues at listen start and capture end.
	Sound bool `toml:"sound"`
	// ListenSound and CapturedSound override the synthesized cues with
	// audio files.
	ListenSound   string `toml:"listen_sound"`
	CapturedSound string `toml:"captured_sound"`
}

// LexiconConfig points at an optional user phrase-table override.
type LexiconConfig struct {
	Override string `toml:"override"`
}

// HistoryConfig controls the utterance journal.
type HistoryConfig struct {
	Enable bool `toml:"enable"`
	// Path overrides the default state-directory database location.
	Path string `toml:"path"`
}

// DebugConfig controls debug artifacts.
type DebugConfig struct {
	// AudioDump writes every capture as a WAV file under DumpDir.
	AudioDump bool   `toml:"audio_dump"`
	DumpDir   string `toml:"dump_dir"`
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// UnmarshalText parses a shell-style command string during TOML decoding.
func (c *CommandConfig) UnmarshalText(text []byte) error {
	argv, err := parseArgv(string(text))
	if err != nil {
		return err
	}
	c.Raw = string(text)
	c.Argv = argv
	return nil
}

// Warning is a non-fatal configuration problem surfaced to the user.
type Warning string
