// Package interpret turns raw transcripts into editor actions: it
// normalizes the transcript into canonical tokens, classifies the utterance
// as dictation or directive, and renders the matching action. Nothing in
// this package returns an error; unparseable input degrades to an
// Unrecognized action.
package interpret

import "github.com/voxide/voxide/internal/lexicon"

type TokenKind int

const (
	// KindWord is an ordinary word with no table entry.
	KindWord TokenKind = iota
	// KindSymbol is a folded symbol phrase carrying its literal.
	KindSymbol
	// KindNumber is a folded number-word run or digit string.
	KindNumber
	// KindDirective is a folded directive verb phrase.
	KindDirective
	// KindTarget is a folded absolute cursor destination phrase.
	KindTarget
)

// Token is one canonical element of a normalized utterance. Text always
// holds the surface words so dictation can spell a folded phrase back out.
type Token struct {
	Kind    TokenKind
	Text    string
	Literal string         // KindSymbol
	Value   int            // KindNumber
	Family  lexicon.Family // KindDirective
	Target  lexicon.Target // KindTarget
}

// Utterance is the ordered token sequence produced by Normalize.
type Utterance struct {
	Tokens []Token
}

// Empty reports whether normalization yielded no tokens.
func (u Utterance) Empty() bool { return len(u.Tokens) == 0 }
