package interpret

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/voxide/voxide/internal/lexicon"
)

// Normalize lowercases and tokenizes a raw transcript, strips disfluency
// fillers, and folds known phrases into canonical tokens. It is total and
// deterministic: any input, including empty, yields a valid utterance.
//
// Folding is greedy longest-match-first because the vocabulary contains
// overlapping prefixes ("open square bracket" over "open bracket",
// "shift the cursor" over "shift").
func Normalize(raw string, lex *lexicon.Lexicon) Utterance {
	words := splitWords(raw, lex)
	folds := lex.Folds()

	var tokens []Token
	for i := 0; i < len(words); {
		if fold, n := matchFold(words[i:], folds); n > 0 {
			tokens = append(tokens, foldToken(fold))
			i += n
			continue
		}
		if value, n := matchNumber(words[i:], lex); n > 0 {
			tokens = append(tokens, Token{
				Kind:  KindNumber,
				Text:  strconv.Itoa(value),
				Value: value,
			})
			i += n
			continue
		}
		tokens = append(tokens, Token{Kind: KindWord, Text: words[i]})
		i++
	}

	return Utterance{Tokens: tokens}
}

// splitWords lowercases, splits on whitespace, trims sentence punctuation
// the transcription service may append, and drops filler words.
func splitWords(raw string, lex *lexicon.Lexicon) []string {
	fields := strings.Fields(strings.ToLower(raw))
	words := make([]string, 0, len(fields))
	for _, field := range fields {
		word := strings.TrimFunc(field, func(r rune) bool {
			switch r {
			case '.', ',', '!', '?':
				return true
			default:
				return false
			}
		})
		if word == "" || lex.IsFiller(word) {
			continue
		}
		words = append(words, word)
	}
	return words
}

// matchFold returns the longest fold whose words prefix the remaining input.
// The fold table is pre-sorted longest-first with table order preserved.
func matchFold(words []string, folds []lexicon.Fold) (lexicon.Fold, int) {
	for _, fold := range folds {
		if len(fold.Words) > len(words) {
			continue
		}
		matched := true
		for i, w := range fold.Words {
			if words[i] != w {
				matched = false
				break
			}
		}
		if matched {
			return fold, len(fold.Words)
		}
	}
	return lexicon.Fold{}, 0
}

func foldToken(fold lexicon.Fold) Token {
	switch fold.Kind {
	case lexicon.FoldSymbol:
		return Token{Kind: KindSymbol, Text: fold.Phrase, Literal: fold.Literal}
	case lexicon.FoldDirective:
		return Token{Kind: KindDirective, Text: fold.Phrase, Family: fold.Family}
	default:
		return Token{Kind: KindTarget, Text: fold.Phrase, Target: fold.Target}
	}
}

// matchNumber folds a run of number words (or one digit string) into a
// single value: "seven" = 7, "twenty five" = 25, "one hundred" = 100.
func matchNumber(words []string, lex *lexicon.Lexicon) (int, int) {
	if len(words) == 0 {
		return 0, 0
	}

	if isDigits(words[0]) {
		value, err := strconv.Atoi(words[0])
		if err == nil {
			return value, 1
		}
	}

	total := 0
	current := 0
	consumed := 0
	var prev lexicon.NumberRole = -1
	for _, word := range words {
		n, ok := lex.NumberWord(word)
		if !ok {
			break
		}
		switch n.Role {
		case lexicon.NumberMagnitude:
			if current == 0 {
				current = 1
			}
			current *= n.Value
			total += current
			current = 0
		case lexicon.NumberTen:
			// "five twenty" is two numbers, not one.
			if prev == lexicon.NumberUnit || prev == lexicon.NumberTen {
				return total + current, consumed
			}
			current += n.Value
		default:
			// Units chain only off a ten ("twenty five"); "one two" is
			// two separate numbers.
			if prev == lexicon.NumberUnit || (prev == lexicon.NumberTen && n.Value >= 10) {
				return total + current, consumed
			}
			current += n.Value
		}
		prev = n.Role
		consumed++
	}
	if consumed == 0 {
		return 0, 0
	}
	return total + current, consumed
}

func isDigits(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
