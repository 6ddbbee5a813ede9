// Package lex provides lexical analysis of source text. A lexer is built up
// by registering token classes and patterns with actions, and then turned
// loose on input text with Lex, producing a stream of tokens that a parser
// can pull from on demand.
//
// Patterns are regular expressions. When more than one pattern matches at the
// current position, the one that matches the longest prefix of remaining input
// wins; ties go to the pattern that was added first. A pattern whose action is
// Discard still advances the position but produces no token, which is how
// whitespace and comments are dropped before the parser ever sees them.
package lex

import (
	"fmt"
	"io"
	"regexp"
)

// Lexer is a configured lexical analyzer ready to produce token streams from
// input text. Create one with NewLexer.
type Lexer interface {
	// Lex returns a stream of tokens lexed from the given input.
	Lex(input io.Reader) (TokenStream, error)

	// RegisterClass makes the given token class available for use in patterns
	// added for the given state. Use forState = "" for the default state.
	RegisterClass(cl TokenClass, forState string)

	// AddPattern adds a pattern and the action to take when it is matched. It
	// returns a non-nil error if the pattern does not compile, can match the
	// empty string, or refers to an unregistered class.
	AddPattern(pat string, action Action, forState string) error

	// SetStartingState sets the state the lexer starts lexing in.
	SetStartingState(s string)

	// StartingState returns the state the lexer starts lexing in.
	StartingState() string

	// RegisterTokenListener sets a function to be called with each token as
	// it is produced.
	RegisterTokenListener(fn func(t Token))
}

type patAct struct {
	src string
	pat *regexp.Regexp
	act Action
}

type lexerTemplate struct {
	lazy bool

	patterns   map[string][]patAct
	startState string

	// classes by ID by state
	classes map[string]map[string]TokenClass

	listener func(Token)
}

// NewLexer creates a new, empty Lexer. If lazy is true, token streams it
// produces read from their input only as tokens are requested; otherwise the
// entire input is tokenized up front when Lex is called.
func NewLexer(lazy bool) Lexer {
	return &lexerTemplate{
		lazy:       lazy,
		patterns:   map[string][]patAct{},
		startState: "",
		classes:    map[string]map[string]TokenClass{},
	}
}

func (lx *lexerTemplate) Lex(input io.Reader) (TokenStream, error) {
	if lx.lazy {
		return lx.lazyLex(input)
	}
	return lx.immediateLex(input)
}

func (lx *lexerTemplate) SetStartingState(s string) {
	lx.startState = s
}

func (lx *lexerTemplate) StartingState() string {
	return lx.startState
}

func (lx *lexerTemplate) RegisterTokenListener(fn func(t Token)) {
	lx.listener = fn
}

func (lx *lexerTemplate) RegisterClass(cl TokenClass, forState string) {
	stateClasses, ok := lx.classes[forState]
	if !ok {
		stateClasses = map[string]TokenClass{}
	}

	stateClasses[cl.ID()] = cl
	lx.classes[forState] = stateClasses
}

func (lx *lexerTemplate) AddPattern(pat string, action Action, forState string) error {
	statePatterns, ok := lx.patterns[forState]
	if !ok {
		statePatterns = make([]patAct, 0)
	}
	stateClasses, ok := lx.classes[forState]
	if !ok {
		stateClasses = map[string]TokenClass{}
	}

	compiled, err := regexp.Compile(pat)
	if err != nil {
		return fmt.Errorf("cannot compile regex: %w", err)
	}

	// a pattern that can match the empty string would make the lexer stop
	// advancing; refuse it up front
	if compiled.MatchString("") {
		return fmt.Errorf("pattern %q can match the empty string", pat)
	}

	if action.Type == ActionScan || action.Type == ActionScanAndState {
		// check class exists
		id := action.ClassID
		_, ok := stateClasses[id]
		if !ok {
			return fmt.Errorf("%q is not a defined token class on this lexer; add it with RegisterClass first", id)
		}
	}
	if action.Type == ActionState || action.Type == ActionScanAndState {
		if action.State == "" {
			return fmt.Errorf("action includes state shift but does not define state to shift to (cannot shift to empty state)")
		}
	}

	record := patAct{
		src: pat,
		pat: compiled,
		act: action,
	}
	statePatterns = append(statePatterns, record)

	lx.patterns[forState] = statePatterns
	return nil
}

var eolRegex = regexp.MustCompile(`([^\n]*)(?:\n|$)`)

// scans through the reader to find the remainder of the current line and
// returns it without moving the reader forward.
func readLineWithoutAdvancing(r *Reader) string {
	r.Mark("line")
	matches, err := r.SearchAndAdvance(eolRegex)
	if err != nil {
		r.Restore("line")
		return ""
	}
	if len(matches) < 2 {
		panic("rest of line did not have subexpression")
	}
	line := matches[1]

	r.Restore("line")

	return line
}
