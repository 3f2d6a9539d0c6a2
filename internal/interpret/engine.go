package interpret

import (
	"github.com/voxide/voxide/internal/action"
	"github.com/voxide/voxide/internal/lexicon"
)

// Engine binds the interpretation pipeline to one loaded lexicon.
type Engine struct {
	lex *lexicon.Lexicon
}

// NewEngine wraps a loaded lexicon for repeated interpretation.
func NewEngine(lex *lexicon.Lexicon) *Engine {
	return &Engine{lex: lex}
}

// Interpret runs normalize, classify, and translate/resolve over one raw
// transcript. It never fails: unusable input yields an Unrecognized action.
func (e *Engine) Interpret(raw string, ctx IndentContext) action.Action {
	u := Normalize(raw, e.lex)
	intent := Classify(u)
	if intent.Kind == IntentDictation {
		return Translate(intent.Tokens, ctx)
	}
	return Resolve(intent, raw)
}
