package lex

import "fmt"

// Error is a lexical error. One is produced for every error token emitted by
// a lexer in panic-mode recovery, carrying the position and surrounding line
// of the text that could not be matched.
type Error struct {
	sourceLine string
	source     string
	line       int
	pos        int
	message    string
}

// NewError builds a lexical Error from an error token produced by a Lexer.
// The token's lexeme is used as the message.
func NewError(tok Token) Error {
	return Error{
		sourceLine: tok.FullLine(),
		source:     tok.Lexeme(),
		line:       tok.Line(),
		pos:        tok.LinePos(),
		message:    tok.Lexeme(),
	}
}

func (e Error) Error() string {
	if e.line == 0 {
		return fmt.Sprintf("lexical error: %s", e.message)
	}
	return fmt.Sprintf("lexical error: around line %d, char %d: %s", e.line, e.pos, e.message)
}

// Line returns the line the error occured on, 1-indexed, or 0 if unset.
func (e Error) Line() int {
	return e.line
}

// Position returns the character position of the error in its line,
// 1-indexed, or 0 if unset.
func (e Error) Position() int {
	return e.pos
}

// Source returns the text that could not be matched.
func (e Error) Source() string {
	return e.source
}

// FullMessage shows the complete message of the error string along with the
// offending line and a cursor to the problem position in a formatted way.
func (e Error) FullMessage() string {
	errMsg := e.Error()

	if e.line != 0 && e.sourceLine != "" {
		cursorLine := ""
		for i := 0; i < e.pos-1; i++ {
			cursorLine += " "
		}
		errMsg = e.sourceLine + "\n" + cursorLine + "^\n" + errMsg
	}

	return errMsg
}
