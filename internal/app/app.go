// Package app wires configuration, logging, the interpretation engine, and
// the session daemon into the voxide command surface.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/voxide/voxide/internal/audio"
	"github.com/voxide/voxide/internal/cli"
	"github.com/voxide/voxide/internal/config"
	"github.com/voxide/voxide/internal/doctor"
	"github.com/voxide/voxide/internal/editor"
	"github.com/voxide/voxide/internal/history"
	"github.com/voxide/voxide/internal/indicator"
	"github.com/voxide/voxide/internal/interpret"
	"github.com/voxide/voxide/internal/ipc"
	"github.com/voxide/voxide/internal/lexicon"
	"github.com/voxide/voxide/internal/logging"
	"github.com/voxide/voxide/internal/pipeline"
	"github.com/voxide/voxide/internal/session"
	"github.com/voxide/voxide/internal/stt"
	"github.com/voxide/voxide/internal/version"
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("voxide"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("voxide"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New(parsed.Verbose)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgPath, err := config.ResolvePath(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	cfg, warnings, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range warnings {
		fmt.Fprintf(r.Stderr, "warning: %s\n", w)
		logger.Warn("config warning", "message", string(w))
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgPath,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(ctx, cfg, cfgPath, warnings)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	case cli.CommandInterpret:
		return r.commandInterpret(cfg, strings.Join(parsed.Args, " "))
	case cli.CommandHistory:
		return r.commandHistory(ctx, cfg, parsed.Args, logger)
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandActivate:
		return r.forwardOrFail(ctx, ipc.Request{Command: "activate"})
	case cli.CommandCancel:
		return r.forwardOrFail(ctx, ipc.Request{Command: "cancel"})
	case cli.CommandMic:
		return r.forwardOrFail(ctx, ipc.Request{Command: "mic-" + parsed.Args[0]})
	case cli.CommandSay:
		return r.forwardOrFail(ctx, ipc.Request{Command: "say", Text: strings.Join(parsed.Args, " ")})
	case cli.CommandRun:
		return r.commandRun(ctx, cfg, parsed.Args, logger)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	for _, device := range devices {
		defaultMark := " "
		if device.Default {
			defaultMark = "*"
		}
		availability := "yes"
		if !device.Available {
			availability = "no"
		}
		muted := "no"
		if device.Muted {
			muted = "yes"
		}
		fmt.Fprintf(
			r.Stdout,
			"%s id=%s | description=%q | state=%s | available=%s | muted=%s\n",
			defaultMark,
			device.ID,
			device.Description,
			device.State,
			availability,
			muted,
		)
	}

	return 0
}

// commandInterpret resolves TEXT through the engine without a session,
// microphone, or speech service. The cursor context is taken as empty.
func (r Runner) commandInterpret(cfg config.Config, text string) int {
	lex, warnings, err := lexicon.Load(cfg.Lexicon.Override)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	for _, w := range warnings {
		fmt.Fprintf(r.Stderr, "warning: %s\n", w.Message)
	}

	engine := interpret.NewEngine(lex)
	act := engine.Interpret(text, interpret.IndentContext{})
	fmt.Fprintln(r.Stdout, act.String())
	if act.Kind() == "unrecognized" {
		return 1
	}
	return 0
}

func (r Runner) commandHistory(ctx context.Context, cfg config.Config, args []string, logger *slog.Logger) int {
	path, err := historyPath(cfg)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	store, err := history.Open(path, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() { _ = store.Close() }()

	if len(args) == 2 && args[0] == "export" {
		return r.exportHistory(ctx, store, args[1])
	}

	entries, err := store.Recent(ctx, 20)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(entries) == 0 {
		fmt.Fprintln(r.Stdout, "no utterances recorded")
		return 0
	}

	for _, e := range entries {
		mark := " "
		if e.Applied {
			mark = "*"
		}
		line := fmt.Sprintf("%s %s  %-12s %q", mark, e.At.Local().Format("2006-01-02 15:04:05"), e.Kind, e.Transcript)
		if e.Error != "" {
			line += "  error=" + e.Error
		}
		fmt.Fprintln(r.Stdout, line)
	}
	return 0
}

func (r Runner) exportHistory(ctx context.Context, store *history.Store, dest string) int {
	f, err := os.Create(dest)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	if err := store.Export(ctx, f); err != nil {
		_ = f.Close()
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	fmt.Fprintf(r.Stdout, "exported journal to %s\n", dest)
	return 0
}

func historyPath(cfg config.Config) (string, error) {
	if cfg.History.Path != "" {
		return cfg.History.Path, nil
	}
	stateDir, err := config.StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(stateDir, "history.db"), nil
}

func (r Runner) commandStatus(ctx context.Context) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "offline")
		return 0
	}

	resp, handled, err := tryForward(ctx, socketPath, ipc.Request{Command: "status"})
	if handled {
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		if resp.State == "" {
			resp.State = "offline"
		}
		fmt.Fprintln(r.Stdout, resp.State)
		return 0
	}

	fmt.Fprintln(r.Stdout, "offline")
	return 0
}

func (r Runner) forwardOrFail(ctx context.Context, req ipc.Request) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, handled, err := tryForward(ctx, socketPath, req)
	if !handled {
		fmt.Fprintf(r.Stderr, "error: no active voxide session\n")
		return 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

// commandRun owns the session daemon: it acquires the runtime socket, builds
// the full capture-interpret-apply pipeline, and serves IPC until the context
// is cancelled.
func (r Runner) commandRun(ctx context.Context, cfg config.Config, args []string, logger *slog.Logger) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	lex, lexWarnings, err := lexicon.Load(cfg.Lexicon.Override)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	for _, w := range lexWarnings {
		fmt.Fprintf(r.Stderr, "warning: %s\n", w.Message)
		logger.Warn("lexicon warning", "message", w.Message)
	}

	workspace, err := editor.NewWorkspace(logger, editor.Options{
		RunArgv:    cfg.Editor.RunCommand.Argv,
		PickerArgv: cfg.Editor.Picker.Argv,
		Watch:      cfg.Editor.WatchFiles,
	})
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() { _ = workspace.Close() }()

	if len(args) == 1 {
		if err := workspace.OpenPath(args[0]); err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
	}

	transcriber, err := buildTranscriber(cfg, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	journal, closeJournal, err := buildJournal(cfg, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer closeJournal()

	controller := session.NewController(
		logger,
		interpret.NewEngine(lex),
		transcriber,
		editor.NewDispatcher(workspace, logger),
		buildIndicator(cfg.Indicator, logger),
		journal,
	)

	fmt.Fprintf(r.Stdout, "voxide session ready on %s\n", socketPath)
	logger.Info("session daemon ready", "socket", socketPath, "lexicon_version", lex.Version())

	serveErr := ipc.Serve(ctx, listener, controller, logger)
	controller.Wait()
	if serveErr != nil {
		fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", serveErr)
		return 1
	}

	logger.Info("session daemon stopped")
	return 0
}

func buildTranscriber(cfg config.Config, logger *slog.Logger) (*pipeline.Transcriber, error) {
	var backend stt.Backend
	switch cfg.STT.Backend {
	case "stream":
		backend = stt.NewStream(stt.StreamConfig{
			BaseURL:  cfg.STT.StreamURL,
			APIKey:   cfg.STT.APIKey,
			Model:    cfg.STT.Model,
			Language: cfg.STT.Language,
		}, logger)
	case "batch":
		backend = stt.NewBatch(stt.BatchConfig{
			URL:     cfg.STT.BatchURL,
			APIKey:  cfg.STT.APIKey,
			Model:   cfg.STT.Model,
			Timeout: time.Duration(cfg.STT.TimeoutMS) * time.Millisecond,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported stt backend %q", cfg.STT.Backend)
	}

	endpoint := audio.DefaultEndpointConfig()
	if cfg.Audio.SilenceThreshold > 0 {
		endpoint.SilenceThreshold = cfg.Audio.SilenceThreshold
	}
	if cfg.Audio.SilenceAfterMS > 0 {
		endpoint.SilenceAfter = time.Duration(cfg.Audio.SilenceAfterMS) * time.Millisecond
	}
	if cfg.Audio.MaxUtteranceMS > 0 {
		endpoint.MaxDuration = time.Duration(cfg.Audio.MaxUtteranceMS) * time.Millisecond
	}

	dumper, err := buildDumper(cfg, logger)
	if err != nil {
		return nil, err
	}

	return pipeline.NewTranscriber(pipeline.Options{
		Input:    cfg.Audio.Input,
		Fallback: cfg.Audio.Fallback,
		Endpoint: endpoint,
		Dumper:   dumper,
	}, backend, logger), nil
}

func buildDumper(cfg config.Config, logger *slog.Logger) (*stt.Dumper, error) {
	if !cfg.Debug.AudioDump {
		return nil, nil
	}
	dir := cfg.Debug.DumpDir
	if dir == "" {
		stateDir, err := config.StateDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(stateDir, "debug")
	}
	return stt.NewDumper(dir, logger)
}

func buildJournal(cfg config.Config, logger *slog.Logger) (session.Journal, func(), error) {
	if !cfg.History.Enable {
		return nil, func() {}, nil
	}

	path, err := historyPath(cfg)
	if err != nil {
		return nil, nil, err
	}
	store, err := history.Open(path, logger)
	if err != nil {
		return nil, nil, err
	}
	return session.JournalFunc(store.Append), func() { _ = store.Close() }, nil
}

func buildIndicator(cfg config.IndicatorConfig, logger *slog.Logger) session.Indicator {
	if !cfg.Enable {
		return nil
	}
	if cfg.Backend == "log" {
		return indicator.NewLogSink(logger)
	}
	return indicator.NewDesktop(indicator.Options{
		Enable:            true,
		NoticeTimeoutMS:   cfg.NoticeTimeoutMS,
		Sound:             cfg.Sound,
		ListenSoundFile:   cfg.ListenSound,
		CapturedSoundFile: cfg.CapturedSound,
	}, logger)
}

func tryForward(ctx context.Context, socketPath string, req ipc.Request) (ipc.Response, bool, error) {
	resp, err := ipc.Send(ctx, socketPath, req, 220*time.Millisecond)
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}

	if isSocketMissing(err) {
		return ipc.Response{}, false, nil
	}
	if isConnectionRefused(err) {
		return ipc.Response{}, false, nil
	}

	return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", req.Command, err)
}

func isSocketMissing(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist) ||
		strings.Contains(err.Error(), "no such file or directory")
}

func isConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}
