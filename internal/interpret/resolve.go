package interpret

import (
	"github.com/voxide/voxide/internal/action"
	"github.com/voxide/voxide/internal/lexicon"
)

// Resolve renders a directive intent into a structured editor action.
// Failed argument extraction never errors: it degrades to Unrecognized
// carrying the original transcript.
func Resolve(intent Intent, original string) action.Action {
	switch intent.Family {
	case lexicon.FamilyCursor:
		return resolveCursor(intent.Tokens, original)
	case lexicon.FamilySave:
		return action.FileOp{Op: action.Save}
	case lexicon.FamilyNewTab:
		return action.FileOp{Op: action.NewTab}
	case lexicon.FamilyCloseTab:
		return action.FileOp{Op: action.CloseTab}
	case lexicon.FamilyOpenFile:
		return action.FileOp{Op: action.Open}
	case lexicon.FamilyExecute:
		return action.Execute{}
	default:
		return action.Unrecognized{Original: original}
	}
}

// resolveCursor extracts direction and count from the remaining tokens.
// The count may appear anywhere ("shift the cursor up by seven places" and
// "shift the cursor seven places up" both parse) and the first number found
// wins. A missing direction is unrecognized; a missing count defaults to
// one.
func resolveCursor(tokens []Token, original string) action.Action {
	direction, ok := findDirection(tokens)
	if !ok {
		return action.Unrecognized{Original: original}
	}

	count := 1
	for _, tok := range tokens {
		if tok.Kind == KindNumber {
			count = tok.Value
			break
		}
	}

	return action.MoveCursor{Direction: direction, Count: count}
}

func findDirection(tokens []Token) (action.Direction, bool) {
	for _, tok := range tokens {
		switch tok.Kind {
		case KindTarget:
			switch tok.Target {
			case lexicon.TargetLineStart:
				return action.LineStart, true
			case lexicon.TargetLineEnd:
				return action.LineEnd, true
			case lexicon.TargetFileStart:
				return action.FileStart, true
			case lexicon.TargetFileEnd:
				return action.FileEnd, true
			}
		case KindWord:
			switch tok.Text {
			case "up":
				return action.Up, true
			case "down":
				return action.Down, true
			case "left":
				return action.Left, true
			case "right":
				return action.Right, true
			}
		}
	}
	return 0, false
}
