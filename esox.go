// Package esox turns streams of characters into parse trees. It wires a
// lexer and a parser together behind one Frontend so that callers who just
// want a tree from some text do not have to manage the pipeline themselves;
// the lex, grammar, parse, and walk packages remain available for callers
// who do.
package esox

import (
	"io"
	"strings"

	"github.com/dekarrin/esox/grammar"
	"github.com/dekarrin/esox/lex"
	"github.com/dekarrin/esox/parse"
)

// Frontend is a combined lexer and parser for one language. Build one with
// New and then call Analyze any number of times; a Frontend is cheap to keep
// around and each analysis is independent.
type Frontend struct {
	// Lexer produces the token stream. It must have its token classes and
	// patterns registered before any analysis.
	Lexer lex.Lexer

	// Parser recognizes the token stream against the grammar the Frontend
	// was built with.
	Parser parse.Parser

	// Language is the name of the language the Frontend analyzes, for
	// display only. Analysis does not use it.
	Language string

	// Version is the version of the language definition the Frontend was
	// built from, for display only.
	Version string
}

// New creates a Frontend from a configured lexer and a grammar. The grammar
// is validated and prepared for prediction here; an invalid or ambiguously
// configured grammar is reported now rather than at first analysis.
func New(lx lex.Lexer, g grammar.Grammar) (Frontend, error) {
	p, err := parse.NewDescentParser(g)
	if err != nil {
		return Frontend{}, err
	}

	return Frontend{
		Lexer:  lx,
		Parser: p,
	}, nil
}

// Analyze lexes the entire contents of r and parses the resulting tokens
// against the grammar's start rule. A tree is returned even when errors were
// found; the error list carries every lexical and syntax problem in source
// order, and a non-empty list means the tree contains repair artifacts.
//
// A nil tree is returned only when analysis could not begin at all, such as
// an unreadable input.
func (fe Frontend) Analyze(r io.Reader) (*parse.Tree, []error) {
	return fe.AnalyzeRule(fe.Parser.Grammar().Start(), r)
}

// AnalyzeString is Analyze on the contents of s.
func (fe Frontend) AnalyzeString(s string) (*parse.Tree, []error) {
	return fe.Analyze(strings.NewReader(s))
}

// AnalyzeRule is Analyze but recognizes the named rule instead of the
// grammar's start rule.
func (fe Frontend) AnalyzeRule(rule string, r io.Reader) (*parse.Tree, []error) {
	stream, err := fe.Lexer.Lex(r)
	if err != nil {
		return nil, []error{err}
	}

	return fe.Parser.ParseRule(rule, stream)
}
