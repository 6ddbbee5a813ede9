package lex

import "io"

// tokenListStream is a TokenStream over an already-produced sequence of
// tokens.
type tokenListStream struct {
	tokens []Token
	cur    int
}

func (ts *tokenListStream) Next() Token {
	if ts.cur >= len(ts.tokens) {
		// stay on the end-of-text sentinel forever
		return ts.tokens[len(ts.tokens)-1]
	}

	n := ts.tokens[ts.cur]
	ts.cur++
	return n
}

func (ts *tokenListStream) Peek() Token {
	if ts.cur >= len(ts.tokens) {
		return ts.tokens[len(ts.tokens)-1]
	}
	return ts.tokens[ts.cur]
}

func (ts *tokenListStream) HasNext() bool {
	return len(ts.tokens)-ts.cur > 0
}

// NewListStream returns a TokenStream over the given pre-made tokens. If the
// final token is not of class TokenEndOfText, a sentinel is appended. Useful
// for driving a parser without a lexer.
func NewListStream(tokens []Token) TokenStream {
	toks := make([]Token, len(tokens))
	copy(toks, tokens)

	if len(toks) == 0 || toks[len(toks)-1].Class().ID() != TokenEndOfText.ID() {
		var line, pos int
		if len(toks) > 0 {
			line = toks[len(toks)-1].Line()
			pos = toks[len(toks)-1].LinePos()
		}
		toks = append(toks, NewToken(TokenEndOfText, "", line, pos, ""))
	}

	return &tokenListStream{tokens: toks}
}

// immediateLex tokenizes the entire input up front and returns a stream over
// the result. Lexical problems still surface as error tokens in the stream,
// in the position they occurred, rather than failing the whole lex.
func (lx *lexerTemplate) immediateLex(input io.Reader) (TokenStream, error) {
	lazy, err := lx.lazyLex(input)
	if err != nil {
		return nil, err
	}

	var tokens []Token
	for {
		tok := lazy.Next()
		tokens = append(tokens, tok)
		if tok.Class().ID() == TokenEndOfText.ID() {
			break
		}
	}

	return &tokenListStream{tokens: tokens}, nil
}
