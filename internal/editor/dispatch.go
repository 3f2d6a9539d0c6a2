package editor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/voxide/voxide/internal/action"
	"github.com/voxide/voxide/internal/interpret"
)

// Dispatcher routes resolved actions to the workspace. The session applies
// one action at a time, so no dispatch runs concurrently with another.
type Dispatcher struct {
	workspace *Workspace
	logger    *slog.Logger
}

func NewDispatcher(workspace *Workspace, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{workspace: workspace, logger: logger}
}

// IndentContext reports the current insert position for the translator.
func (d *Dispatcher) IndentContext() interpret.IndentContext {
	return d.workspace.Buffer().IndentContext()
}

// Apply performs one action against the workspace.
func (d *Dispatcher) Apply(ctx context.Context, act action.Action) error {
	switch a := act.(type) {
	case action.InsertText:
		d.workspace.Buffer().ApplyInsert(a.Content)
		return nil
	case action.MoveCursor:
		d.workspace.Buffer().MoveCursor(a.Direction, a.Count)
		return nil
	case action.FileOp:
		return d.applyFileOp(ctx, a)
	case action.Execute:
		return d.workspace.Execute(ctx)
	case action.Unrecognized:
		// Nothing reaches the buffer; the session surfaces the notice.
		d.logger.Info("unrecognized command", "text", a.Original)
		return nil
	default:
		return fmt.Errorf("unknown action kind %q", act.Kind())
	}
}

func (d *Dispatcher) applyFileOp(ctx context.Context, op action.FileOp) error {
	switch op.Op {
	case action.Open:
		return d.workspace.Open(ctx)
	case action.Save:
		return d.workspace.Save(ctx)
	case action.NewTab:
		d.workspace.NewTab()
		return nil
	case action.CloseTab:
		return d.workspace.CloseCurrent()
	default:
		return fmt.Errorf("unknown file operation %q", op.Op)
	}
}
