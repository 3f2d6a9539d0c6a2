// Package action defines the editor actions emitted by the interpretation
// pipeline and consumed by the editor dispatcher.
package action

import (
	"fmt"
	"strconv"
)

type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
	LineStart
	LineEnd
	FileStart
	FileEnd
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	case LineStart:
		return "line-start"
	case LineEnd:
		return "line-end"
	case FileStart:
		return "file-start"
	case FileEnd:
		return "file-end"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

type FileOpKind int

const (
	Open FileOpKind = iota
	Save
	NewTab
	CloseTab
)

func (k FileOpKind) String() string {
	switch k {
	case Open:
		return "open"
	case Save:
		return "save"
	case NewTab:
		return "new-tab"
	case CloseTab:
		return "close-tab"
	default:
		return fmt.Sprintf("fileop(%d)", int(k))
	}
}

// Action is the tagged union of everything the pipeline can resolve an
// utterance into. Values are immutable and consumed immediately.
type Action interface {
	Kind() string
	String() string
}

// InsertText places literal characters at the cursor, indentation included.
type InsertText struct {
	Content string
}

func (InsertText) Kind() string { return "insert" }

func (a InsertText) String() string {
	return "insert " + strconv.Quote(a.Content)
}

// MoveCursor is a relative or absolute cursor movement. The direction
// fixes the step size: vertical moves step lines, horizontal moves step
// characters.
type MoveCursor struct {
	Direction Direction
	Count     int
}

func (MoveCursor) Kind() string { return "move" }

func (a MoveCursor) String() string {
	switch a.Direction {
	case Up, Down:
		return fmt.Sprintf("move %s %d %s", a.Direction, a.Count, plural("line", a.Count))
	case Left, Right:
		return fmt.Sprintf("move %s %d %s", a.Direction, a.Count, plural("character", a.Count))
	default:
		return "move " + a.Direction.String()
	}
}

func plural(word string, count int) string {
	if count == 1 {
		return word
	}
	return word + "s"
}

// FileOp is a tab or file lifecycle operation.
type FileOp struct {
	Op FileOpKind
}

func (FileOp) Kind() string { return "file" }

func (a FileOp) String() string {
	return "file " + a.Op.String()
}

// Execute runs the program in the current tab.
type Execute struct{}

func (Execute) Kind() string { return "execute" }

func (Execute) String() string { return "execute" }

// Unrecognized is terminal and informational: the utterance mapped to no
// command and the buffer must stay untouched.
type Unrecognized struct {
	Original string
}

func (Unrecognized) Kind() string { return "unrecognized" }

func (a Unrecognized) String() string {
	return "unrecognized " + strconv.Quote(a.Original)
}
