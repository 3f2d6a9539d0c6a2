package config

// Default returns the configuration used when no file overrides it.
func Default() Config {
	return Config{
		STT: STTConfig{
			Backend:   "batch",
			BatchURL:  "http://127.0.0.1:9000/v1/audio/transcriptions",
			Model:     "base",
			Language:  "en",
			TimeoutMS: 15000,
		},
		Audio: AudioConfig{
			Input:            "default",
			Fallback:         "default",
			SilenceThreshold: 0.015,
			SilenceAfterMS:   700,
			MaxUtteranceMS:   8000,
		},
		Editor: EditorConfig{
			RunCommand: CommandConfig{Raw: "python3", Argv: mustParseArgv("python3")},
			Picker:     CommandConfig{Raw: "zenity --file-selection", Argv: mustParseArgv("zenity --file-selection")},
			WatchFiles: true,
		},
		Indicator: IndicatorConfig{
			Enable:          true,
			Backend:         "desktop",
			NoticeTimeoutMS: 2000,
			Sound:           true,
		},
		History: HistoryConfig{
			Enable: true,
		},
	}
}
