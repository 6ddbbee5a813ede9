package parse

import (
	"github.com/dekarrin/esox/lex"
)

// TokenSource pulls tokens from a lex.TokenStream on demand and buffers them
// so that a bounded number of upcoming tokens can be examined without
// consuming them. Error tokens produced by lexer recovery are recorded as
// lexical errors and never enter the lookahead buffer; callers only ever see
// real tokens followed by the end-of-text sentinel.
type TokenSource struct {
	s   lex.TokenStream
	buf []lex.Token

	// set once the end-of-text sentinel has been buffered; nothing further
	// is pulled from the stream after that.
	sawEnd bool

	// set once the sentinel itself has been consumed.
	pastEnd bool

	consumed int

	lexErrs []lex.Error
}

// NewTokenSource creates a TokenSource reading from the given stream.
func NewTokenSource(s lex.TokenStream) *TokenSource {
	return &TokenSource{s: s}
}

// fill pulls from the stream until at least n tokens are buffered or the
// end-of-text sentinel has been seen. Error tokens are diverted to the
// lexical error list.
func (ts *TokenSource) fill(n int) {
	for len(ts.buf) < n && !ts.sawEnd {
		if !ts.s.HasNext() {
			ts.sawEnd = true
			return
		}
		tok := ts.s.Next()
		if tok.Class().ID() == lex.TokenError.ID() {
			ts.lexErrs = append(ts.lexErrs, lex.NewError(tok))
			continue
		}
		ts.buf = append(ts.buf, tok)
		if tok.Class().ID() == lex.TokenEndOfText.ID() {
			ts.sawEnd = true
		}
	}
}

// LA returns the k-th upcoming token without consuming anything. k is
// 1-indexed; LA(1) is the token Consume would return next. Repeated calls
// with the same k return the same token. The end-of-text sentinel is a valid
// answer; asking for any position past it returns an EndOfInputError.
func (ts *TokenSource) LA(k int) (lex.Token, error) {
	if k < 1 {
		return nil, EndOfInputError{}
	}
	if ts.pastEnd {
		return nil, ts.endError(nil)
	}
	ts.fill(k)
	if k > len(ts.buf) {
		return nil, ts.endError(nil)
	}
	return ts.buf[k-1], nil
}

// Consume returns the next token and advances past it. The end-of-text
// sentinel is returned exactly once; consuming again after that returns an
// EndOfInputError.
func (ts *TokenSource) Consume() (lex.Token, error) {
	if ts.pastEnd {
		return nil, ts.endError(nil)
	}
	ts.fill(1)
	if len(ts.buf) == 0 {
		// stream ended without a sentinel; treat as already past end.
		ts.pastEnd = true
		return nil, ts.endError(nil)
	}
	tok := ts.buf[0]
	ts.buf = ts.buf[1:]
	ts.consumed++
	if tok.Class().ID() == lex.TokenEndOfText.ID() {
		ts.pastEnd = true
	}
	return tok, nil
}

// Consumed returns the number of tokens consumed so far.
func (ts *TokenSource) Consumed() int {
	return ts.consumed
}

// endError builds an EndOfInputError positioned at the sentinel, carrying
// the given expected set.
func (ts *TokenSource) endError(expected []string) EndOfInputError {
	e := EndOfInputError{expected: expected}
	if len(ts.buf) > 0 {
		last := ts.buf[len(ts.buf)-1]
		e.line = last.Line()
		e.pos = last.LinePos()
	}
	return e
}

// LexicalErrors returns the lexical errors recorded so far, in source order.
func (ts *TokenSource) LexicalErrors() []lex.Error {
	errs := make([]lex.Error, len(ts.lexErrs))
	copy(errs, ts.lexErrs)
	return errs
}
