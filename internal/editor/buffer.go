// Package editor holds the buffer/workspace collaborators that consume
// editor actions: an in-memory line buffer with cursor and indent tracking,
// a tab workspace with file lifecycle and program execution, and the
// dispatcher that routes actions to them.
package editor

import (
	"strings"

	"github.com/voxide/voxide/internal/action"
	"github.com/voxide/voxide/internal/interpret"
)

// Buffer is a line-oriented text buffer with a single cursor. It is only
// touched by one in-flight action at a time, so it carries no locking.
type Buffer struct {
	lines [][]rune
	row   int
	col   int
}

func NewBuffer() *Buffer {
	return &Buffer{lines: [][]rune{{}}}
}

// SetText replaces the whole buffer and moves the cursor to the end.
func (b *Buffer) SetText(text string) {
	parts := strings.Split(text, "\n")
	b.lines = make([][]rune, len(parts))
	for i, part := range parts {
		b.lines[i] = []rune(part)
	}
	b.row = len(b.lines) - 1
	b.col = len(b.lines[b.row])
}

// Text renders the buffer contents.
func (b *Buffer) Text() string {
	parts := make([]string, len(b.lines))
	for i, line := range b.lines {
		parts[i] = string(line)
	}
	return strings.Join(parts, "\n")
}

// Cursor reports the zero-based cursor position.
func (b *Buffer) Cursor() (row, col int) {
	return b.row, b.col
}

// MoveCursorToStart puts the cursor at the top of the buffer. Freshly
// loaded files start there rather than at the end.
func (b *Buffer) MoveCursorToStart() {
	b.row, b.col = 0, 0
}

// ApplyInsert places text at the cursor, splitting lines on newlines, and
// leaves the cursor at the end of the inserted text.
func (b *Buffer) ApplyInsert(text string) {
	if text == "" {
		return
	}

	segments := strings.Split(text, "\n")
	line := b.lines[b.row]
	head := append([]rune{}, line[:b.col]...)
	tail := append([]rune{}, line[b.col:]...)

	if len(segments) == 1 {
		b.lines[b.row] = append(append(head, []rune(segments[0])...), tail...)
		b.col += len([]rune(segments[0]))
		return
	}

	inserted := make([][]rune, len(segments))
	inserted[0] = append(head, []rune(segments[0])...)
	for i := 1; i < len(segments); i++ {
		inserted[i] = []rune(segments[i])
	}
	lastLen := len(inserted[len(inserted)-1])
	inserted[len(inserted)-1] = append(inserted[len(inserted)-1], tail...)

	rebuilt := make([][]rune, 0, len(b.lines)+len(inserted)-1)
	rebuilt = append(rebuilt, b.lines[:b.row]...)
	rebuilt = append(rebuilt, inserted...)
	rebuilt = append(rebuilt, b.lines[b.row+1:]...)
	b.lines = rebuilt

	b.row += len(segments) - 1
	b.col = lastLen
}

// MoveCursor applies one movement action with clamping at buffer edges.
// The direction fixes the granularity: vertical moves are whole lines,
// horizontal moves are characters that wrap across line boundaries the way
// a flat text widget index does. Line moves keep the column clamped to the
// new line length.
func (b *Buffer) MoveCursor(dir action.Direction, count int) {
	if count < 0 {
		count = 0
	}

	switch dir {
	case action.Up:
		b.row -= count
	case action.Down:
		b.row += count
	case action.Left:
		b.moveChars(-count)
		return
	case action.Right:
		b.moveChars(count)
		return
	case action.LineStart:
		b.col = 0
		return
	case action.LineEnd:
		b.col = len(b.lines[b.row])
		return
	case action.FileStart:
		b.row, b.col = 0, 0
		return
	case action.FileEnd:
		b.row = len(b.lines) - 1
		b.col = len(b.lines[b.row])
		return
	}

	if b.row < 0 {
		b.row = 0
	}
	if b.row > len(b.lines)-1 {
		b.row = len(b.lines) - 1
	}
	if b.col > len(b.lines[b.row]) {
		b.col = len(b.lines[b.row])
	}
}

func (b *Buffer) moveChars(delta int) {
	for delta > 0 {
		if b.col < len(b.lines[b.row]) {
			b.col++
		} else if b.row < len(b.lines)-1 {
			b.row++
			b.col = 0
		} else {
			break
		}
		delta--
	}
	for delta < 0 {
		if b.col > 0 {
			b.col--
		} else if b.row > 0 {
			b.row--
			b.col = len(b.lines[b.row])
		} else {
			break
		}
		delta++
	}
}

// IndentContext reports the insert position for the dictation translator:
// the text before the cursor on the current line, and the indent level a
// fresh line should carry here: the level of the governing line, one
// deeper when that line opens a block with a colon.
func (b *Buffer) IndentContext() interpret.IndentContext {
	before := string(b.lines[b.row][:b.col])

	base := before
	if strings.TrimSpace(base) == "" {
		base = ""
		for r := b.row - 1; r >= 0; r-- {
			if strings.TrimSpace(string(b.lines[r])) != "" {
				base = string(b.lines[r])
				break
			}
		}
	}

	level := 0
	if trimmed := strings.TrimSpace(base); trimmed != "" {
		level = leadingLevel(base)
		if strings.HasSuffix(trimmed, ":") {
			level++
		}
	}

	return interpret.IndentContext{Level: level, Line: before}
}

func leadingLevel(line string) int {
	spaces := 0
	for _, r := range line {
		if r != ' ' {
			break
		}
		spaces++
	}
	return spaces / interpret.IndentWidth
}
