package editor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

var (
	// ErrUnsavedChanges is returned when closing a tab would lose edits.
	ErrUnsavedChanges = errors.New("tab has unsaved changes")
	// ErrMustSave is returned when execution is requested for a buffer
	// that is not saved to disk.
	ErrMustSave = errors.New("save the document before running it")
	// ErrNoPicker is returned when a file dialog is needed but no picker
	// command is configured.
	ErrNoPicker = errors.New("no file picker command configured")
	// ErrNoSelection is returned when the picker exits without a path.
	ErrNoSelection = errors.New("no file selected")
	// ErrNoRunCommand is returned when execution is requested but no run
	// command is configured.
	ErrNoRunCommand = errors.New("no run command configured")
)

// Tab is one open document.
type Tab struct {
	Path   string
	Buffer *Buffer

	saved    string
	external bool
}

// Title names the tab for status output.
func (t *Tab) Title() string {
	if t.Path == "" {
		return "untitled"
	}
	return filepath.Base(t.Path)
}

// Dirty reports whether the buffer differs from the last saved contents.
func (t *Tab) Dirty() bool {
	return t.Buffer.Text() != t.saved
}

// ExternallyChanged reports whether the file changed on disk since it was
// last loaded or saved.
func (t *Tab) ExternallyChanged() bool {
	return t.external
}

// Options configures a Workspace.
type Options struct {
	// RunArgv is the command used to execute the current document; the
	// document path is appended as the final argument.
	RunArgv []string
	// PickerArgv is the command used to choose a path for open and save.
	// It must print the chosen path on stdout.
	PickerArgv []string
	// Watch enables marking tabs whose files change on disk.
	Watch bool
}

// Workspace manages the open tabs and their file lifecycle.
type Workspace struct {
	logger *slog.Logger
	opts   Options

	mu      sync.Mutex
	tabs    []*Tab
	current int

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWorkspace creates a workspace with one empty untitled tab.
func NewWorkspace(logger *slog.Logger, opts Options) (*Workspace, error) {
	ws := &Workspace{
		logger: logger,
		opts:   opts,
		tabs:   []*Tab{{Buffer: NewBuffer()}},
	}

	if opts.Watch {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("failed to start file watcher: %w", err)
		}
		ws.watcher = watcher
		ws.done = make(chan struct{})
		go ws.watch()
	}

	return ws, nil
}

// Close stops the on-disk watcher.
func (w *Workspace) Close() error {
	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	<-w.done
	return err
}

// CurrentTab returns the selected tab.
func (w *Workspace) CurrentTab() *Tab {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tabs[w.current]
}

// Buffer returns the selected tab's buffer.
func (w *Workspace) Buffer() *Buffer {
	return w.CurrentTab().Buffer
}

// Tabs returns the open tab titles in order, with the selected index.
func (w *Workspace) Tabs() (titles []string, current int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, t := range w.tabs {
		titles = append(titles, t.Title())
	}
	return titles, w.current
}

// NewTab opens an empty untitled tab and selects it.
func (w *Workspace) NewTab() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tabs = append(w.tabs, &Tab{Buffer: NewBuffer()})
	w.current = len(w.tabs) - 1
	w.logger.Info("opened new tab", "tabs", len(w.tabs))
}

// CloseCurrent closes the selected tab. A dirty tab is refused so dictated
// work is never dropped silently. Closing the last tab leaves a fresh
// untitled one so the workspace always has a target.
func (w *Workspace) CloseCurrent() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	tab := w.tabs[w.current]
	if tab.Dirty() {
		return ErrUnsavedChanges
	}
	if tab.Path != "" && w.watcher != nil {
		_ = w.watcher.Remove(tab.Path)
	}

	w.tabs = append(w.tabs[:w.current], w.tabs[w.current+1:]...)
	if len(w.tabs) == 0 {
		w.tabs = []*Tab{{Buffer: NewBuffer()}}
	}
	if w.current > len(w.tabs)-1 {
		w.current = len(w.tabs) - 1
	}
	w.logger.Info("closed tab", "title", tab.Title())
	return nil
}

// OpenPath loads a file into a new tab and selects it.
func (w *Workspace) OpenPath(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}

	buf := NewBuffer()
	buf.SetText(string(data))
	buf.MoveCursorToStart()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.tabs = append(w.tabs, &Tab{Path: path, Buffer: buf, saved: string(data)})
	w.current = len(w.tabs) - 1
	if w.watcher != nil {
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch file", "path", path, "error", err)
		}
	}
	w.logger.Info("opened file", "path", path)
	return nil
}

// Open asks the configured picker for a path and loads it.
func (w *Workspace) Open(ctx context.Context) error {
	path, err := w.pick(ctx)
	if err != nil {
		return err
	}
	return w.OpenPath(path)
}

// Save writes the selected tab to disk, asking the picker for a path when
// the tab is untitled.
func (w *Workspace) Save(ctx context.Context) error {
	tab := w.CurrentTab()

	if tab.Path == "" {
		path, err := w.pick(ctx)
		if err != nil {
			return err
		}
		tab.Path = path
		if w.watcher != nil {
			if err := w.watcher.Add(path); err != nil {
				w.logger.Warn("failed to watch file", "path", path, "error", err)
			}
		}
	}

	text := tab.Buffer.Text()
	if err := os.WriteFile(tab.Path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to save %s: %w", tab.Path, err)
	}

	w.mu.Lock()
	tab.saved = text
	tab.external = false
	w.mu.Unlock()

	w.logger.Info("saved file", "path", tab.Path)
	return nil
}

// Execute runs the configured run command against the selected tab's file.
// Unsaved work is refused so the command always sees the buffer contents.
func (w *Workspace) Execute(ctx context.Context) error {
	if len(w.opts.RunArgv) == 0 {
		return ErrNoRunCommand
	}

	tab := w.CurrentTab()
	if tab.Path == "" || tab.Dirty() {
		return ErrMustSave
	}

	argv := append(append([]string{}, w.opts.RunArgv...), tab.Path)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	w.logger.Info("executing program", "path", tab.Path, "command", argv[0])
	err := cmd.Run()
	output := strings.TrimRight(out.String(), "\n")
	if err != nil {
		w.logger.Warn("program failed", "path", tab.Path, "output", output, "error", err)
		return fmt.Errorf("program failed: %w", err)
	}
	w.logger.Info("program finished", "path", tab.Path, "output", output)
	return nil
}

func (w *Workspace) pick(ctx context.Context) (string, error) {
	if len(w.opts.PickerArgv) == 0 {
		return "", ErrNoPicker
	}

	cmd := exec.CommandContext(ctx, w.opts.PickerArgv[0], w.opts.PickerArgv[1:]...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("file picker failed: %w", err)
	}

	path := strings.TrimSpace(out.String())
	if path == "" {
		return "", ErrNoSelection
	}
	return path, nil
}
