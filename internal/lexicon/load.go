package lexicon

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed tables.toml
var embeddedTables string

// fileTables mirrors the TOML layout of the phrase-table data files.
type fileTables struct {
	Version    int               `toml:"version"`
	Fillers    []string          `toml:"fillers"`
	Symbols    map[string]string `toml:"symbols"`
	Directives []fileDirective   `toml:"directives"`
	Targets    map[string]string `toml:"targets"`
	Numbers    fileNumbers       `toml:"numbers"`
}

type fileDirective struct {
	Phrase string `toml:"phrase"`
	Family string `toml:"family"`
}

type fileNumbers struct {
	Units      map[string]int `toml:"units"`
	Tens       map[string]int `toml:"tens"`
	Magnitudes map[string]int `toml:"magnitudes"`
}

// Load builds the session lexicon from the embedded tables, overlaying an
// optional user file. Overlay symbols, targets, and fillers extend the
// builtin tables; an overlay directives table replaces the builtin ordering
// wholesale because order is the classifier contract.
func Load(overridePath string) (*Lexicon, []Warning, error) {
	var base fileTables
	if _, err := toml.Decode(embeddedTables, &base); err != nil {
		return nil, nil, fmt.Errorf("decode embedded lexicon tables: %w", err)
	}

	var warnings []Warning
	if strings.TrimSpace(overridePath) != "" {
		overlay, w, err := loadOverlay(overridePath)
		warnings = append(warnings, w...)
		if err != nil {
			return nil, warnings, err
		}
		if overlay != nil {
			merge(&base, *overlay)
		}
	}

	lex, err := build(base)
	if err != nil {
		return nil, warnings, err
	}
	return lex, warnings, nil
}

func loadOverlay(path string) (*fileTables, []Warning, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, []Warning{{Message: fmt.Sprintf("lexicon overlay %q not found; using builtin tables", path)}}, nil
		}
		return nil, nil, fmt.Errorf("read lexicon overlay %q: %w", path, err)
	}

	var overlay fileTables
	meta, err := toml.Decode(string(content), &overlay)
	if err != nil {
		return nil, nil, fmt.Errorf("parse lexicon overlay %q: %w", path, err)
	}

	var warnings []Warning
	for _, key := range meta.Undecoded() {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("lexicon overlay: unknown key %q ignored", key)})
	}
	return &overlay, warnings, nil
}

func merge(base *fileTables, overlay fileTables) {
	if overlay.Version != 0 {
		base.Version = overlay.Version
	}
	for phrase, literal := range overlay.Symbols {
		base.Symbols[phrase] = literal
	}
	for phrase, target := range overlay.Targets {
		base.Targets[phrase] = target
	}
	base.Fillers = append(base.Fillers, overlay.Fillers...)
	if len(overlay.Directives) > 0 {
		base.Directives = overlay.Directives
	}
	for word, v := range overlay.Numbers.Units {
		base.Numbers.Units[word] = v
	}
	for word, v := range overlay.Numbers.Tens {
		base.Numbers.Tens[word] = v
	}
	for word, v := range overlay.Numbers.Magnitudes {
		base.Numbers.Magnitudes[word] = v
	}
}

func build(tables fileTables) (*Lexicon, error) {
	lex := &Lexicon{
		version: tables.Version,
		symbols: map[string]string{},
		numbers: map[string]NumberWord{},
		targets: map[string]Target{},
		fillers: map[string]struct{}{},
	}

	for phrase, literal := range tables.Symbols {
		lex.symbols[normalizePhrase(phrase)] = literal
	}
	for phrase, target := range tables.Targets {
		lex.targets[normalizePhrase(phrase)] = Target(target)
	}
	for _, filler := range tables.Fillers {
		lex.fillers[normalizePhrase(filler)] = struct{}{}
	}

	for _, d := range tables.Directives {
		phrase := normalizePhrase(d.Phrase)
		lex.directives = append(lex.directives, Directive{
			Phrase: phrase,
			Words:  strings.Fields(phrase),
			Family: Family(d.Family),
		})
	}

	for word, value := range tables.Numbers.Units {
		lex.numbers[normalizePhrase(word)] = NumberWord{Value: value, Role: NumberUnit}
	}
	for word, value := range tables.Numbers.Tens {
		lex.numbers[normalizePhrase(word)] = NumberWord{Value: value, Role: NumberTen}
	}
	for word, value := range tables.Numbers.Magnitudes {
		lex.numbers[normalizePhrase(word)] = NumberWord{Value: value, Role: NumberMagnitude}
	}

	if err := lex.validate(); err != nil {
		return nil, err
	}
	lex.buildFolds()
	return lex, nil
}

func normalizePhrase(phrase string) string {
	return strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
}
