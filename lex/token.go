package lex

import (
	"fmt"
	"strings"
)

// TokenClass identifies a category of token that a lexer can produce. The ID
// must uniquely identify the class within all terminals of a grammar.
type TokenClass interface {
	// ID returns the ID of the token class.
	ID() string

	// Human returns a human-readable name for the token class, for use in
	// contexts such as error reporting.
	Human() string

	// Equal returns whether the TokenClass equals another. If two IDs are the
	// same, Equal must return true.
	Equal(o any) bool
}

// Token is a lexeme read from text combined with the token class it belongs
// to, as well as additional supplementary information gathered during lexing
// to inform error reporting. Tokens are immutable once produced.
type Token interface {
	// Class returns the TokenClass of the Token.
	Class() TokenClass

	// Lexeme returns the text that was lexed as the TokenClass of the Token,
	// as it appears in the source text.
	Lexeme() string

	// LinePos returns the 1-indexed character-of-line that the token starts
	// on in the source text.
	LinePos() int

	// Line returns the 1-indexed line number of the line that the token
	// starts on in the source text.
	Line() int

	// FullLine returns the full text of the line in source that the token
	// starts on, including both anything that came before the token as well
	// as after it on the line.
	FullLine() string

	// String is the string representation.
	String() string
}

type simpleTokenClass string

func (class simpleTokenClass) ID() string {
	return strings.ToLower(string(class))
}

func (class simpleTokenClass) Human() string {
	return string(class)
}

func (class simpleTokenClass) Equal(o any) bool {
	other, ok := o.(TokenClass)
	if !ok {
		otherPtr, ok := o.(*TokenClass)
		if !ok {
			return false
		}
		if otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	return other.ID() == class.ID()
}

const (
	// TokenUndefined is the class of tokens that have not been assigned a
	// class.
	TokenUndefined = simpleTokenClass("undefined_token")

	// TokenEndOfText is the class of the sentinel token produced once the end
	// of input is reached. All calls to Next() at that point will continue to
	// produce tokens of this class.
	TokenEndOfText = simpleTokenClass("$")

	// TokenError is the class of tokens produced when no pattern matches at
	// the current position. The lexeme of an error token is a message
	// explaining the problem, not source text.
	TokenError = simpleTokenClass("error_token")
)

// MakeDefaultClass takes a string and returns a class that both uses the
// lower-case version of the string as its ID and the un-modified string as
// its Human-readable string.
func MakeDefaultClass(s string) TokenClass {
	return simpleTokenClass(s)
}

// implementation of TokenClass for lex package use.
type lexerClass struct {
	id   string
	name string
}

func (lc lexerClass) ID() string {
	return lc.id
}

func (lc lexerClass) Human() string {
	return lc.name
}

func (lc lexerClass) Equal(o any) bool {
	other, ok := o.(TokenClass)
	if !ok {
		otherPtr, ok := o.(*TokenClass)
		if !ok {
			return false
		}
		if otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	return other.ID() == lc.ID()
}

// NewTokenClass creates a new TokenClass with the given ID and human-readable
// name.
func NewTokenClass(id string, human string) TokenClass {
	return lexerClass{id: id, name: human}
}

// implementation of Token for lex package use.
type lexerToken struct {
	class   TokenClass
	lexed   string
	linePos int
	lineNum int
	line    string
}

func (lt lexerToken) Class() TokenClass {
	return lt.class
}

func (lt lexerToken) Lexeme() string {
	return lt.lexed
}

func (lt lexerToken) LinePos() int {
	return lt.linePos
}

func (lt lexerToken) Line() int {
	return lt.lineNum
}

func (lt lexerToken) FullLine() string {
	return lt.line
}

func (lt lexerToken) String() string {
	return fmt.Sprintf("(%s %q)", lt.class.ID(), lt.lexed)
}

// NewToken creates a token directly. It is mostly useful for building token
// sequences in tests without running a lexer.
func NewToken(class TokenClass, lexeme string, line int, linePos int, fullLine string) Token {
	return lexerToken{
		class:   class,
		lexed:   lexeme,
		lineNum: line,
		linePos: linePos,
		line:    fullLine,
	}
}
