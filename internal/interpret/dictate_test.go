package interpret

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voxide/voxide/internal/action"
)

func translateRaw(t *testing.T, raw string, ctx IndentContext) action.InsertText {
	t.Helper()
	lex := loadLexicon(t)
	intent := Classify(Normalize(raw, lex))
	require.Equal(t, IntentDictation, intent.Kind)
	return Translate(intent.Tokens, ctx)
}

func TestTranslateForLoopScenario(t *testing.T) {
	insert := translateRaw(t,
		"type for i in range open bracket one comma one hundred close bracket colon",
		IndentContext{})
	require.Equal(t, "for i in range(1,100):", insert.Content)
}

func TestTranslateClosingPunctuationAttachesTightly(t *testing.T) {
	insert := translateRaw(t, "type close bracket colon", IndentContext{})
	require.Equal(t, "):", insert.Content)
}

func TestTranslateWordsJoinedBySpaces(t *testing.T) {
	insert := translateRaw(t, "type hello world again", IndentContext{})
	require.Equal(t, "hello world again", insert.Content)
}

func TestTranslateEmptyDictation(t *testing.T) {
	insert := translateRaw(t, "type", IndentContext{})
	require.Equal(t, "", insert.Content)
}

func TestTranslateIndentAfterColonLine(t *testing.T) {
	// Prior line ends with a colon, so the context reports one level
	// pending for the next fresh line.
	ctx := IndentContext{Level: 1, Line: ""}
	insert := translateRaw(t, "type return x", ctx)
	require.Equal(t, "    return x", insert.Content)
}

func TestTranslateNewLineReindents(t *testing.T) {
	ctx := IndentContext{Level: 0, Line: "for i in range(1,100):"}
	insert := translateRaw(t, "type new line print open bracket i close bracket", ctx)
	require.Equal(t, "\n    print(i)", insert.Content)
}

func TestTranslateNewLineCarriesIndentWithoutColon(t *testing.T) {
	ctx := IndentContext{Level: 1, Line: "    x = 1"}
	insert := translateRaw(t, "type new line y equals two", ctx)
	require.Equal(t, "\n    y=2", insert.Content)
}

func TestTranslateBlankLineCarriesLevel(t *testing.T) {
	ctx := IndentContext{Level: 2, Line: ""}
	insert := translateRaw(t, "type new line pass", ctx)
	// The first line stays blank and carries its level to the next one;
	// the held-back prefix never lands on the empty line itself.
	require.Equal(t, "\n        pass", insert.Content)
}

func TestTranslateBlankLinesCarryNoTrailingWhitespace(t *testing.T) {
	ctx := IndentContext{Level: 1, Line: ""}
	insert := translateRaw(t, "type new line new line pass", ctx)
	require.Equal(t, "\n\n    pass", insert.Content)
}

func TestTranslateTrailingNewLineLeavesBlankLineBare(t *testing.T) {
	ctx := IndentContext{Level: 0, Line: "def f():"}
	insert := translateRaw(t, "type new line pass new line", ctx)
	require.Equal(t, "\n    pass\n", insert.Content)
}

func TestTranslateConsecutiveSymbolsVerbatim(t *testing.T) {
	insert := translateRaw(t, "type colon colon open bracket open bracket", IndentContext{})
	require.Equal(t, "::((", insert.Content)
}

func TestTranslateNumbersRenderAsDigits(t *testing.T) {
	insert := translateRaw(t, "type x equals twenty five", IndentContext{})
	require.Equal(t, "x=25", insert.Content)
}

func TestTranslateDirectivePhraseSpellsOut(t *testing.T) {
	insert := translateRaw(t, "type move the cursor up", IndentContext{})
	require.Equal(t, "move the cursor up", insert.Content)
}
