package interpret

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voxide/voxide/internal/action"
)

func interpretRaw(t *testing.T, raw string) action.Action {
	t.Helper()
	return NewEngine(loadLexicon(t)).Interpret(raw, IndentContext{})
}

func TestResolveCursorMovement(t *testing.T) {
	cases := []struct {
		raw  string
		want action.MoveCursor
	}{
		{"shift the cursor up by seven places", action.MoveCursor{Direction: action.Up, Count: 7}},
		{"shift seven places up", action.MoveCursor{Direction: action.Up, Count: 7}},
		{"move the cursor left", action.MoveCursor{Direction: action.Left, Count: 1}},
		{"move the cursor right by 12 places", action.MoveCursor{Direction: action.Right, Count: 12}},
		{"place the cursor down two lines", action.MoveCursor{Direction: action.Down, Count: 2}},
		{"send the cursor to the start of the file", action.MoveCursor{Direction: action.FileStart, Count: 1}},
		{"send the cursor to the end of the line", action.MoveCursor{Direction: action.LineEnd, Count: 1}},
	}
	for _, tc := range cases {
		got := interpretRaw(t, tc.raw)
		require.Equal(t, tc.want, got, "raw=%q", tc.raw)
	}
}

func TestResolveCursorWithoutDirection(t *testing.T) {
	got := interpretRaw(t, "shift the cursor sideways")
	require.Equal(t, action.Unrecognized{Original: "shift the cursor sideways"}, got)
}

func TestResolveFileOps(t *testing.T) {
	require.Equal(t, action.FileOp{Op: action.Save}, interpretRaw(t, "save the document"))
	require.Equal(t, action.FileOp{Op: action.NewTab}, interpretRaw(t, "create a new tab"))
	require.Equal(t, action.FileOp{Op: action.CloseTab}, interpretRaw(t, "close the current tab"))
	require.Equal(t, action.FileOp{Op: action.Open}, interpretRaw(t, "open a file"))
}

func TestResolveExecute(t *testing.T) {
	require.Equal(t, action.Execute{}, interpretRaw(t, "execute the program"))
	require.Equal(t, action.Execute{}, interpretRaw(t, "run the program"))
}

func TestResolveUnknownUtterance(t *testing.T) {
	got := interpretRaw(t, "do a backflip")
	require.Equal(t, action.Unrecognized{Original: "do a backflip"}, got)
}

func TestResolveEmptyUtterance(t *testing.T) {
	got := interpretRaw(t, "")
	require.Equal(t, action.Unrecognized{Original: ""}, got)
}

// A cursor shift spoken as "shift the cursor up" is never misread by the
// shorter bare verbs; the ordered directive table breaks the tie.
func TestResolveOrderedTableTieBreak(t *testing.T) {
	got := interpretRaw(t, "shift the cursor up")
	require.Equal(t, action.MoveCursor{Direction: action.Up, Count: 1}, got)
}

func TestInterpretDictationNeverFails(t *testing.T) {
	inputs := []string{
		"type",
		"type colon colon colon",
		"type open bracket open bracket",
		"type seven",
		"type um uh please",
	}
	for _, raw := range inputs {
		got := interpretRaw(t, raw)
		insert, ok := got.(action.InsertText)
		require.True(t, ok, "raw=%q got=%T", raw, got)
		_ = insert
	}
}
