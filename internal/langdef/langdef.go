// Package langdef has functions for loading language definitions using the
// ESOX language definition file format, a TOML-based format that describes a
// language's token classes, lexer patterns, and grammar rules so a complete
// frontend can be built from a file instead of code.
package langdef

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/esox"
	"github.com/dekarrin/esox/grammar"
	"github.com/dekarrin/esox/lex"
)

var (
	// ErrNoTerminals is the error returned when a definition file is read
	// successfully but defines no terminals at all.
	ErrNoTerminals = errors.New("does not define any terminals")

	// ErrNoRules is the error returned when a definition file is read
	// successfully but defines no grammar rules at all.
	ErrNoRules = errors.New("does not define any rules")
)

// identIDRegexp matches terminal IDs that look like declared names rather
// than punctuation literals.
var identIDRegexp = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Language is a complete loaded language definition, ready to be analyzed
// with.
type Language struct {
	// Name is the human name of the language, for display only.
	Name string

	// Grammar is the language's phrase structure.
	Grammar grammar.Grammar

	// Frontend is the assembled lexer and parser for the language.
	Frontend esox.Frontend
}

// fileInfo is the essential information all ESOX format files must contain.
type fileInfo struct {
	Format string `toml:"format"`
	Type   string `toml:"type"`
}

type languageSection struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Start   string `toml:"start"`

	// State is the lexer state lexing begins in. Needed only by languages
	// whose lexers shift between named states, since a shift cannot target
	// the unnamed default state.
	State string `toml:"state"`
}

type terminalSection struct {
	ID      string `toml:"id"`
	Human   string `toml:"human"`
	Pattern string `toml:"pattern"`
	Skip    bool   `toml:"skip"`

	// State is the lexer state the pattern applies in; empty means the
	// default state.
	State string `toml:"state"`

	// Shift is a lexer state to move to after the pattern matches.
	Shift string `toml:"shift"`

	// Priority orders patterns within a state; lower numbers are tried for
	// the longest-match tie-break first. Entries with equal priority keep
	// file order.
	Priority int `toml:"priority"`
}

type ruleSection struct {
	Name string   `toml:"name"`
	Alt  []string `toml:"alt"`
}

type topLevelLanguage struct {
	Format    string            `toml:"format"`
	Type      string            `toml:"type"`
	Language  languageSection   `toml:"language"`
	Terminals []terminalSection `toml:"terminal"`
	Rules     []ruleSection     `toml:"rule"`
}

// LoadFile loads a language definition from the ESOX file at the given path.
func LoadFile(path string) (Language, error) {
	fileData, err := os.ReadFile(path)
	if err != nil {
		return Language{}, fmt.Errorf("%q: reading from disk: %w", path, err)
	}

	lang, err := Parse(fileData)
	if err != nil {
		return Language{}, fmt.Errorf("%q: %w", path, err)
	}
	return lang, nil
}

// Parse loads a language definition from the bytes of an ESOX file.
func Parse(fileData []byte) (Language, error) {
	var info fileInfo
	if tomlErr := toml.Unmarshal(fileData, &info); tomlErr != nil {
		return Language{}, fmt.Errorf("scanning file header: %w", tomlErr)
	}
	if strings.ToUpper(info.Format) != "ESOX" {
		return Language{}, fmt.Errorf("file does not have a 'format = \"ESOX\"' entry")
	}
	if strings.ToUpper(info.Type) != "LANGUAGE" {
		return Language{}, fmt.Errorf("unsupported file type: %q", info.Type)
	}

	var def topLevelLanguage
	if tomlErr := toml.Unmarshal(fileData, &def); tomlErr != nil {
		return Language{}, tomlErr
	}

	return assemble(def)
}

func assemble(def topLevelLanguage) (Language, error) {
	if len(def.Terminals) < 1 {
		return Language{}, ErrNoTerminals
	}
	if len(def.Rules) < 1 {
		return Language{}, ErrNoRules
	}

	g, err := assembleGrammar(def)
	if err != nil {
		return Language{}, err
	}

	lx, err := assembleLexer(def, g)
	if err != nil {
		return Language{}, err
	}

	fe, err := esox.New(lx, g)
	if err != nil {
		return Language{}, err
	}
	fe.Language = def.Language.Name
	fe.Version = def.Language.Version

	return Language{
		Name:     def.Language.Name,
		Grammar:  g,
		Frontend: fe,
	}, nil
}

// assembleGrammar builds each rule's alternatives from its notation strings
// and checks that every named terminal the rules use was declared.
func assembleGrammar(def topLevelLanguage) (grammar.Grammar, error) {
	var notation strings.Builder
	for _, r := range def.Rules {
		if r.Name == "" {
			return grammar.Grammar{}, fmt.Errorf("rule with no name")
		}
		if len(r.Alt) < 1 {
			return grammar.Grammar{}, fmt.Errorf("rule %q: no alternatives", r.Name)
		}
		notation.WriteString(r.Name)
		notation.WriteString(" -> ")
		notation.WriteString(strings.Join(r.Alt, " | "))
		notation.WriteString(" ;\n")
	}

	g, err := grammar.Parse(notation.String())
	if err != nil {
		return grammar.Grammar{}, err
	}

	declared := map[string]bool{}
	seenInState := map[string]bool{}
	for _, t := range def.Terminals {
		if t.ID == "" {
			return grammar.Grammar{}, fmt.Errorf("terminal with no id")
		}
		if t.Pattern == "" {
			return grammar.Grammar{}, fmt.Errorf("terminal %q: no pattern", t.ID)
		}
		stateKey := t.ID + "\x00" + t.State
		if seenInState[stateKey] {
			return grammar.Grammar{}, fmt.Errorf("terminal %q: defined twice in one state", t.ID)
		}
		seenInState[stateKey] = true
		declared[t.ID] = true

		if t.Skip {
			continue
		}

		human := t.Human
		if human == "" {
			human = t.ID
		}
		g.AddTerm(lex.NewTokenClass(t.ID, human))
	}

	for _, id := range g.Terminals() {
		if _, ok := declared[id]; ok {
			continue
		}
		if identIDRegexp.MatchString(id) && !isLiteralTerm(g, id) {
			return grammar.Grammar{}, fmt.Errorf("rules use terminal %q but no terminal defines it", id)
		}
	}

	if def.Language.Start != "" {
		if !g.HasRule(def.Language.Start) {
			return grammar.Grammar{}, fmt.Errorf("language: start: no rule named %q exists", def.Language.Start)
		}
		g.SetStart(def.Language.Start)
	}

	return g, nil
}

// assembleLexer registers every declared terminal's class and pattern, plus
// exact-match patterns for the punctuation literals the rules quote inline.
func assembleLexer(def topLevelLanguage, g grammar.Grammar) (lex.Lexer, error) {
	lx := lex.NewLexer(true)
	if def.Language.State != "" {
		lx.SetStartingState(def.Language.State)
	}

	// pattern registration order is the longest-match tie-break order, so
	// apply priorities here. Equal priorities keep file order.
	terms := make([]terminalSection, len(def.Terminals))
	copy(terms, def.Terminals)
	sort.SliceStable(terms, func(i, j int) bool {
		return terms[i].Priority < terms[j].Priority
	})

	declared := map[string]bool{}
	for _, t := range terms {
		declared[t.ID] = true

		var act lex.Action
		switch {
		case t.Skip && t.Shift != "":
			act = lex.SwapState(t.Shift)
		case t.Skip:
			act = lex.Discard()
		case t.Shift != "":
			act = lex.LexAndSwapState(t.ID, t.Shift)
		default:
			act = lex.LexAs(t.ID)
		}

		if !t.Skip {
			lx.RegisterClass(g.Term(t.ID), t.State)
		}
		if err := lx.AddPattern(t.Pattern, act, t.State); err != nil {
			return nil, fmt.Errorf("terminal %q: %w", t.ID, err)
		}
	}

	// quoted literals in rule notation become their own exact-match
	// patterns, in the starting state only.
	for _, id := range g.Terminals() {
		if declared[id] {
			continue
		}
		lx.RegisterClass(g.Term(id), def.Language.State)
		if err := lx.AddPattern(regexp.QuoteMeta(id), lex.LexAs(id), def.Language.State); err != nil {
			return nil, fmt.Errorf("literal %q: %w", id, err)
		}
	}

	return lx, nil
}

// isLiteralTerm reports whether the grammar knows id as a quoted literal
// rather than a declared name. Literal classes carry their quoted form as
// the human name.
func isLiteralTerm(g grammar.Grammar, id string) bool {
	human := g.Term(id).Human()
	return len(human) >= 2 && strings.HasPrefix(human, "'") && strings.HasSuffix(human, "'")
}
