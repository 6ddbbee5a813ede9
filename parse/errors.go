package parse

import (
	"fmt"

	"github.com/dekarrin/esox/internal/util"
	"github.com/dekarrin/esox/lex"
)

// SyntaxError is produced when the tokens at the parser's current position
// cannot continue the rule being recognized. It identifies the rule, the
// source position, and the set of token classes that would have been
// accepted.
type SyntaxError struct {
	sourceLine string
	source     string

	// rule that was being recognized when the error occurred.
	rule string

	// line that error occured on, 1-indexed.
	line int

	// position in line of error, 1-indexed.
	pos int

	// human names of the token classes that would have been accepted.
	expected []string

	message string
}

func (se SyntaxError) Error() string {
	if se.line == 0 {
		return fmt.Sprintf("syntax error: %s", se.message)
	}

	return fmt.Sprintf("syntax error: around line %d, char %d: %s", se.line, se.pos, se.message)
}

// Rule returns the name of the grammar rule that was being recognized when
// the error occurred.
func (se SyntaxError) Rule() string {
	return se.rule
}

// Source returns the exact text of the specific source code that caused the
// issue. If no particular source was the cause (such as for unexpected
// end-of-text errors), this will return an empty string.
func (se SyntaxError) Source() string {
	return se.source
}

// Line returns the line the error occured on. Lines are 1-indexed. This will
// return 0 if the line is not set.
func (se SyntaxError) Line() int {
	return se.line
}

// Position returns the character position that the error occured on.
// Character positions are 1-indexed. This will return 0 if the character
// position is not set.
func (se SyntaxError) Position() int {
	return se.pos
}

// Expected returns the human names of the token classes that would have been
// accepted at the error position, in the order their alternatives are
// declared in the rule.
func (se SyntaxError) Expected() []string {
	exp := make([]string, len(se.expected))
	copy(exp, se.expected)
	return exp
}

// FullMessage shows the complete message of the error string along with the
// offending line and a cursor to the problem position in a formatted way.
func (se SyntaxError) FullMessage() string {
	errMsg := se.Error()

	if se.line != 0 {
		errMsg = se.SourceLineWithCursor() + "\n" + errMsg
	}

	return errMsg
}

// SourceLineWithCursor returns the offending source code on one line and
// directly under it a cursor showing where the error occured.
//
// Returns a blank string if no source line was provided for the error (such
// as for unexpected end-of-text errors).
func (se SyntaxError) SourceLineWithCursor() string {
	if se.sourceLine == "" {
		return ""
	}

	cursorLine := ""
	// pos will be 1-indexed.
	for i := 0; i < se.pos-1; i++ {
		cursorLine += " "
	}

	return se.sourceLine + "\n" + cursorLine + "^"
}

// syntaxErrorFromToken builds a SyntaxError positioned at the given token.
func syntaxErrorFromToken(msg string, rule string, expected []string, tok lex.Token) SyntaxError {
	return SyntaxError{
		message:    msg,
		rule:       rule,
		expected:   expected,
		sourceLine: tok.FullLine(),
		source:     tok.Lexeme(),
		pos:        tok.LinePos(),
		line:       tok.Line(),
	}
}

// expectedMsg phrases an expected set for an error message.
func expectedMsg(expected []string) string {
	if len(expected) == 0 {
		return "nothing can go here"
	}
	return "expected " + util.MakeTextList(expected)
}

// EndOfInputError is produced when the parser or a TokenSource user needs a
// token past the end-of-text sentinel. It is always fatal to the operation
// that hit it.
type EndOfInputError struct {
	// line and pos are of the last position in source, 1-indexed.
	line int
	pos  int

	// human names of token classes that were still wanted, if any.
	expected []string
}

func (e EndOfInputError) Error() string {
	msg := "unexpected end of input"
	if len(e.expected) > 0 {
		msg += "; " + expectedMsg(e.expected)
	}
	if e.line > 0 {
		msg = fmt.Sprintf("%s (at line %d, char %d)", msg, e.line, e.pos)
	}
	return msg
}

// Line returns the last line of the source text, 1-indexed, or 0 if unset.
func (e EndOfInputError) Line() int {
	return e.line
}

// Position returns the character position just past the final token,
// 1-indexed, or 0 if unset.
func (e EndOfInputError) Position() int {
	return e.pos
}

// Expected returns the human names of the token classes that were still
// wanted when input ran out.
func (e EndOfInputError) Expected() []string {
	exp := make([]string, len(e.expected))
	copy(exp, e.expected)
	return exp
}
