package interpret

import "github.com/voxide/voxide/internal/lexicon"

type IntentKind int

const (
	IntentDictation IntentKind = iota
	IntentDirective
)

// Intent is the classifier verdict: dictation payload tokens, or a
// directive family with its argument tokens.
type Intent struct {
	Kind   IntentKind
	Family lexicon.Family
	Tokens []Token
}

// dictationTriggers are checked before the directive table, so a transcript
// opening with "type" or "write" always dictates: "type move the cursor up"
// inserts those literal words.
var dictationTriggers = map[string]struct{}{
	"type":  {},
	"write": {},
}

// Classify decides whether a normalized utterance is dictation or a
// directive. An utterance matching neither vocabulary classifies as a
// directive of the unknown family, which the resolver reports as
// unrecognized rather than failing.
func Classify(u Utterance) Intent {
	if u.Empty() {
		return Intent{Kind: IntentDirective, Family: lexicon.FamilyUnknown}
	}

	head := u.Tokens[0]
	if head.Kind == KindWord {
		if _, ok := dictationTriggers[head.Text]; ok {
			return Intent{Kind: IntentDictation, Tokens: u.Tokens[1:]}
		}
	}

	if head.Kind == KindDirective {
		return Intent{Kind: IntentDirective, Family: head.Family, Tokens: u.Tokens[1:]}
	}

	return Intent{Kind: IntentDirective, Family: lexicon.FamilyUnknown, Tokens: u.Tokens}
}
