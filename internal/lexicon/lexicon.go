// Package lexicon loads the static spoken-phrase tables: symbol phrases,
// number words, directive verb phrases, cursor targets, and the filler
// stoplist. Tables are versioned TOML, embedded at build time, optionally
// overlaid with a user file, and immutable once loaded.
package lexicon

import (
	"fmt"
	"sort"
	"strings"
)

// Family identifies one directive command family from the phrase table.
type Family string

const (
	FamilyUnknown  Family = ""
	FamilyCursor   Family = "cursor"
	FamilySave     Family = "save"
	FamilyNewTab   Family = "new-tab"
	FamilyCloseTab Family = "close-tab"
	FamilyOpenFile Family = "open-file"
	FamilyExecute  Family = "execute"
)

// Target identifies an absolute cursor destination phrase.
type Target string

const (
	TargetLineStart Target = "line-start"
	TargetLineEnd   Target = "line-end"
	TargetFileStart Target = "file-start"
	TargetFileEnd   Target = "file-end"
)

// NumberRole classifies how a number word combines with its neighbors.
type NumberRole int

const (
	NumberUnit NumberRole = iota
	NumberTen
	NumberMagnitude
)

// NumberWord is one spoken number word with its value and combining role.
type NumberWord struct {
	Value int
	Role  NumberRole
}

// Directive is one ordered entry of the directive verb-phrase table.
// Table order is the classifier tie-break contract: first match wins.
type Directive struct {
	Phrase string
	Words  []string
	Family Family
}

// FoldKind tags which table a folded phrase came from.
type FoldKind int

const (
	FoldSymbol FoldKind = iota
	FoldDirective
	FoldTarget
)

// Fold is one foldable phrase prepared for longest-match-first scanning.
type Fold struct {
	Words   []string
	Phrase  string
	Kind    FoldKind
	Literal string // FoldSymbol
	Family  Family // FoldDirective
	Target  Target // FoldTarget
}

// Warning is a non-fatal load message surfaced to the user.
type Warning struct {
	Message string
}

// Lexicon is the immutable phrase-table set shared across one session.
type Lexicon struct {
	version    int
	symbols    map[string]string
	numbers    map[string]NumberWord
	directives []Directive
	targets    map[string]Target
	fillers    map[string]struct{}
	folds      []Fold
}

// Version reports the data-file version of the loaded tables.
func (l *Lexicon) Version() int { return l.version }

// Symbol resolves a canonical spoken phrase to its literal.
func (l *Lexicon) Symbol(phrase string) (string, bool) {
	lit, ok := l.symbols[phrase]
	return lit, ok
}

// NumberWord resolves one spoken number word.
func (l *Lexicon) NumberWord(word string) (NumberWord, bool) {
	n, ok := l.numbers[word]
	return n, ok
}

// IsFiller reports whether a word is on the disfluency stoplist.
func (l *Lexicon) IsFiller(word string) bool {
	_, ok := l.fillers[word]
	return ok
}

// Directives returns the ordered directive phrase table.
func (l *Lexicon) Directives() []Directive {
	out := make([]Directive, len(l.directives))
	copy(out, l.directives)
	return out
}

// Folds returns all foldable phrases sorted longest-first. Equal lengths
// keep table order so the directive ordering contract survives folding.
func (l *Lexicon) Folds() []Fold {
	out := make([]Fold, len(l.folds))
	copy(out, l.folds)
	return out
}

func (l *Lexicon) buildFolds() {
	folds := make([]Fold, 0, len(l.symbols)+len(l.directives)+len(l.targets))

	symbolPhrases := make([]string, 0, len(l.symbols))
	for phrase := range l.symbols {
		symbolPhrases = append(symbolPhrases, phrase)
	}
	sort.Strings(symbolPhrases)
	for _, phrase := range symbolPhrases {
		folds = append(folds, Fold{
			Words:   strings.Fields(phrase),
			Phrase:  phrase,
			Kind:    FoldSymbol,
			Literal: l.symbols[phrase],
		})
	}

	for _, d := range l.directives {
		folds = append(folds, Fold{
			Words:  d.Words,
			Phrase: d.Phrase,
			Kind:   FoldDirective,
			Family: d.Family,
		})
	}

	targetPhrases := make([]string, 0, len(l.targets))
	for phrase := range l.targets {
		targetPhrases = append(targetPhrases, phrase)
	}
	sort.Strings(targetPhrases)
	for _, phrase := range targetPhrases {
		folds = append(folds, Fold{
			Words:  strings.Fields(phrase),
			Phrase: phrase,
			Kind:   FoldTarget,
			Target: l.targets[phrase],
		})
	}

	sort.SliceStable(folds, func(i, j int) bool {
		return len(folds[i].Words) > len(folds[j].Words)
	})
	l.folds = folds
}

// validate enforces table integrity: known families and targets, non-empty
// literals, and no phrase claimed by two tables.
func (l *Lexicon) validate() error {
	seen := map[string]string{}
	claim := func(phrase, table string) error {
		phrase = strings.TrimSpace(phrase)
		if phrase == "" {
			return fmt.Errorf("%s table contains an empty phrase", table)
		}
		if prev, ok := seen[phrase]; ok {
			return fmt.Errorf("phrase %q claimed by both %s and %s tables", phrase, prev, table)
		}
		seen[phrase] = table
		return nil
	}

	for phrase, literal := range l.symbols {
		if err := claim(phrase, "symbols"); err != nil {
			return err
		}
		if literal == "" {
			return fmt.Errorf("symbol phrase %q maps to an empty literal", phrase)
		}
	}

	for _, d := range l.directives {
		if err := claim(d.Phrase, "directives"); err != nil {
			return err
		}
		switch d.Family {
		case FamilyCursor, FamilySave, FamilyNewTab, FamilyCloseTab, FamilyOpenFile, FamilyExecute:
		default:
			return fmt.Errorf("directive %q has unknown family %q", d.Phrase, d.Family)
		}
	}

	for phrase, target := range l.targets {
		if err := claim(phrase, "targets"); err != nil {
			return err
		}
		switch target {
		case TargetLineStart, TargetLineEnd, TargetFileStart, TargetFileEnd:
		default:
			return fmt.Errorf("target phrase %q has unknown target %q", phrase, target)
		}
	}

	for word, n := range l.numbers {
		if n.Value < 0 {
			return fmt.Errorf("number word %q has negative value %d", word, n.Value)
		}
	}

	return nil
}
