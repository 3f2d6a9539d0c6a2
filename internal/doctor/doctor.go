// Package doctor runs readiness diagnostics for config, lexicon, audio, the
// speech service, and the program interpreter.
package doctor

import (
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"github.com/voxide/voxide/internal/audio"
	"github.com/voxide/voxide/internal/config"
	"github.com/voxide/voxide/internal/lexicon"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment, config, and service checks for a loaded config.
func Run(ctx context.Context, cfg config.Config, cfgPath string, warnings []config.Warning) Report {
	checks := []Check{
		checkConfig(cfgPath, warnings),
		checkLexicon(cfg),
		checkCommand(cfg.Editor.RunCommand.Argv, "editor.run_command"),
		checkCommand(cfg.Editor.Picker.Argv, "editor.picker"),
		checkAudioSelection(ctx, cfg),
	}
	checks = append(checks, checkSpeechReady(ctx, cfg)...)
	return Report{Checks: checks}
}

func checkConfig(path string, warnings []config.Warning) Check {
	if len(warnings) == 0 {
		return Check{Name: "config", Pass: true, Message: fmt.Sprintf("loaded %q", path)}
	}
	notes := make([]string, 0, len(warnings))
	for _, w := range warnings {
		notes = append(notes, string(w))
	}
	return Check{
		Name:    "config",
		Pass:    true,
		Message: fmt.Sprintf("loaded %q with warnings: %s", path, strings.Join(notes, "; ")),
	}
}

func checkLexicon(cfg config.Config) Check {
	lex, warnings, err := lexicon.Load(cfg.Lexicon.Override)
	if err != nil {
		return Check{Name: "lexicon", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("version %d, %d directives", lex.Version(), len(lex.Directives()))
	if len(warnings) > 0 {
		message += fmt.Sprintf(" (%d warnings)", len(warnings))
	}
	return Check{Name: "lexicon", Pass: true, Message: message}
}

// checkCommand validates that argv names a runnable binary.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", argv[0])}
	}
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("found at %s", path)}
}

// checkAudioSelection runs live device selection to surface fallback issues.
func checkAudioSelection(ctx context.Context, cfg config.Config) Check {
	selection, err := audio.SelectDevice(ctx, cfg.Audio.Input, cfg.Audio.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.device", Pass: true, Message: message}
}

// checkSpeechReady probes the configured transcription endpoint, plus the
// optional gRPC health endpoint when one is configured.
func checkSpeechReady(ctx context.Context, cfg config.Config) []Check {
	var checks []Check

	switch cfg.STT.Backend {
	case "stream":
		checks = append(checks, checkHTTPReachable("stt.stream", cfg.STT.StreamURL))
	case "batch":
		checks = append(checks, checkHTTPReachable("stt.batch", cfg.STT.BatchURL))
	default:
		checks = append(checks, Check{Name: "stt", Pass: false, Message: fmt.Sprintf("unknown backend %q", cfg.STT.Backend)})
	}

	if strings.TrimSpace(cfg.STT.HealthGRPC) != "" {
		checks = append(checks, checkGRPCHealth(ctx, cfg.STT.HealthGRPC))
	}

	return checks
}

// checkHTTPReachable confirms something answers at the service URL. Any
// HTTP status below 500 counts: an auth or method rejection still proves
// the endpoint is up.
func checkHTTPReachable(name, rawURL string) Check {
	base := strings.TrimSpace(rawURL)
	if base == "" {
		return Check{Name: name, Pass: false, Message: "no URL configured"}
	}
	if strings.HasPrefix(base, "wss://") {
		base = "https://" + strings.TrimPrefix(base, "wss://")
	} else if strings.HasPrefix(base, "ws://") {
		base = "http://" + strings.TrimPrefix(base, "ws://")
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	client := http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(base)
	if err != nil {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("HTTP %d from %s", resp.StatusCode, base)}
	}
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("HTTP %d from %s", resp.StatusCode, base)}
}
