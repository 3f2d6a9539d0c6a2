package interpret

import (
	"strings"

	"github.com/voxide/voxide/internal/action"
)

// Translate renders a dictation token sequence into literal text. Words are
// joined by single spaces; symbol literals attach tightly on both sides, so
// "range open bracket one comma one hundred close bracket colon" becomes
// "range(1,100):". No Python validation happens here; repeated colons or
// unbalanced brackets are transcribed verbatim.
//
// Indentation: an insert starting on an empty line is prefixed with the
// context's indent level, and every "new line" symbol re-indents the next
// line, one level deeper when the line just finished ends with a colon and
// carried unchanged when it is blank. The prefix is held back until the
// line gains content, so lines left blank carry no trailing whitespace.
func Translate(tokens []Token, ctx IndentContext) action.InsertText {
	var b strings.Builder

	line := ctx.Line
	level := ctx.Level
	pending := ""
	if line == "" {
		pending = indentPrefix(level)
	}

	emit := func(s string) {
		if pending != "" {
			b.WriteString(pending)
			line = pending
			pending = ""
		}
		b.WriteString(s)
		line += s
	}

	sep := false
	for _, tok := range tokens {
		switch tok.Kind {
		case KindSymbol:
			if tok.Literal == "\n" {
				level = nextLineLevel(line, level)
				b.WriteString("\n")
				pending = indentPrefix(level)
				line = ""
				sep = false
				continue
			}
			emit(tok.Literal)
			sep = false
		default:
			// Words, numbers, and any folded phrase spoken mid-dictation
			// spell out their surface text.
			if sep {
				emit(" ")
			}
			emit(tok.Text)
			sep = true
		}
	}

	return action.InsertText{Content: b.String()}
}

// nextLineLevel decides the indent level of the line after a newline. A
// blank line carries the current level; a line ending in a colon opens a
// block one level deeper; anything else keeps its own leading indent.
func nextLineLevel(line string, current int) int {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return current
	}
	level := leadingIndentLevel(line)
	if strings.HasSuffix(trimmed, ":") {
		level++
	}
	return level
}

func leadingIndentLevel(line string) int {
	spaces := 0
	for _, r := range line {
		if r != ' ' {
			break
		}
		spaces++
	}
	return spaces / IndentWidth
}
