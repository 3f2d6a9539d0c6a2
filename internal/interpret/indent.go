package interpret

// IndentWidth is the number of spaces per indent level.
const IndentWidth = 4

// IndentContext captures where in the buffer the next insert lands. Level
// is the indent the next fresh line should carry, already including the
// one-level bump after a line ending in a colon. Line is the text before
// the cursor on the current line; the translator only needs it to decide
// whether the insert starts a line and whether a colon is pending when it
// emits a newline of its own.
type IndentContext struct {
	Level int
	Line  string
}

func indentPrefix(level int) string {
	if level <= 0 {
		return ""
	}
	prefix := make([]byte, level*IndentWidth)
	for i := range prefix {
		prefix[i] = ' '
	}
	return string(prefix)
}
