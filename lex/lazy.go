package lex

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

// compiledPat is a single pattern of one lexer state, anchored to match only
// at the current read position.
type compiledPat struct {
	re  *regexp.Regexp
	act Action
}

// lazyStream is a TokenStream that pulls from its Reader only as tokens are
// requested. It is the active counterpart of a lexerTemplate, produced by
// Lex.
type lazyStream struct {
	// buffered reader that can run regex and retrieve the matched text
	r *Reader

	// current lexer state (mode)
	state string

	// position of the read head, for placement in tokens. The text consumed
	// so far on the current line is kept so FullLine can be built without
	// re-reading.
	curLine     int
	curPos      int
	curLineText string

	// set once end of input is reached; all subsequent calls to Next return
	// a TokenEndOfText token and HasNext returns false.
	done bool

	// panic mode is entered when no pattern matches; the lexer discards one
	// character at a time until a pattern matches again
	panicMode bool

	// classes mapping, by ID by state
	classes map[string]map[string]TokenClass

	// patterns per state, in definition order
	patterns map[string][]compiledPat

	listener func(Token)
}

func (lx *lexerTemplate) lazyLex(input io.Reader) (TokenStream, error) {
	active := &lazyStream{
		r:        NewReader(input),
		patterns: make(map[string][]compiledPat),
		classes:  make(map[string]map[string]TokenClass),
		state:    lx.StartingState(),
		listener: lx.listener,
		curLine:  1,
		curPos:   1,
	}

	// every pattern is tried at the current position each time a token is
	// pulled, so each gets anchored to match only there
	for k := range lx.patterns {
		statePats := lx.patterns[k]
		compiledPats := make([]compiledPat, len(statePats))

		for i := range statePats {
			anchored, err := regexp.Compile("^(?:" + statePats[i].src + ")")
			if err != nil {
				// should never happen, the unanchored form compiled at
				// AddPattern time
				return nil, fmt.Errorf("anchoring token regex: %w", err)
			}
			compiledPats[i] = compiledPat{re: anchored, act: statePats[i].act}
		}

		active.patterns[k] = compiledPats
	}

	for k := range lx.classes {
		stateClasses := lx.classes[k]
		classesCopy := make(map[string]TokenClass, len(stateClasses))

		for j := range stateClasses {
			classesCopy[j] = stateClasses[j]
		}

		active.classes[k] = classesCopy
	}

	return active, nil
}

// Next returns the next token in the stream and advances the stream by one
// token. If at the end of the stream, this will return a token whose Class()
// is TokenEndOfText. If a lexing error occurs, it returns a token whose
// Class() is TokenError and whose lexeme is a message explaining the error;
// the stream then enters panic mode and recovers by discarding characters
// until a pattern matches again.
func (lx *lazyStream) Next() Token {
	if lx.done {
		return lx.makeEOTToken()
	}

	for {
		patIdx, lexeme, err := lx.findMatch()
		if err != nil {
			return lx.tokenForIOError(err)
		}

		if patIdx < 0 {
			if lx.panicMode {
				// still no match; drop one rune and try again
				ch, _, err := lx.r.ReadRune()
				if err != nil {
					return lx.tokenForIOError(err)
				}
				lx.trackChar(ch)
				continue
			}

			// no pattern matches here. report it and enter panic mode
			lx.panicMode = true
			badChar, _ := utf8.DecodeRuneInString(lx.restOfLine())
			tok := lx.makeErrorTokenf("unknown input %q", string(badChar))
			return lx.emit(tok)
		}

		lx.panicMode = false

		// the token reports the position its lexeme started at, so capture
		// the position before walking over the matched text
		startLine := lx.curLine
		startPos := lx.curPos
		startLineText := lx.curLineText

		lx.r.Seek(int64(len(lexeme)), io.SeekCurrent)
		for _, ch := range lexeme {
			lx.trackChar(ch)
		}

		action := lx.patterns[lx.state][patIdx].act

		switch action.Type {
		case ActionNone:
			// skip pattern matched; drop the lexeme and keep lexing
		case ActionScan:
			class := lx.classes[lx.state][action.ClassID]
			tok := lx.makeTokenAt(class, lexeme, startLine, startPos, startLineText)
			return lx.emit(tok)
		case ActionState:
			lx.state = action.State
		case ActionScanAndState:
			// token creation happens first in case the state shift alters
			// what goes in the token
			class := lx.classes[lx.state][action.ClassID]
			tok := lx.makeTokenAt(class, lexeme, startLine, startPos, startLineText)

			lx.state = action.State

			return lx.emit(tok)
		}
	}
}

// findMatch trials every pattern of the current state at the current read
// position and selects the winner without advancing the reader. Conflicts are
// resolved gnu-lex style: the longest lexeme wins, and among equal lengths
// the pattern defined first wins.
//
// Returns the index of the winning pattern and its matched text, or -1 if no
// pattern matches. The error is non-nil only for end of input (io.EOF) or a
// true I/O failure.
func (lx *lazyStream) findMatch() (int, string, error) {
	statePats := lx.patterns[lx.state]

	patIdx := -1
	lexeme := ""
	longest := -1

	for i := range statePats {
		m, err := lx.r.TryMatch(statePats[i].re)
		if err != nil && err != io.EOF {
			return -1, "", err
		}
		if m == nil {
			continue
		}
		if utf8.RuneCountInString(m[0]) > longest {
			longest = utf8.RuneCountInString(m[0])
			patIdx = i
			lexeme = m[0]
		}
	}

	if patIdx < 0 {
		// nothing matched; distinguish end of input from bad input
		exhausted, err := lx.r.Exhausted()
		if err != nil {
			return -1, "", err
		}
		if exhausted {
			return -1, "", io.EOF
		}
	}

	return patIdx, lexeme, nil
}

// Peek returns the next token in the stream without advancing the stream.
func (lx *lazyStream) Peek() Token {
	// preserve every part of the lexer that a call to Next might change so
	// it can all be put back after
	lx.r.Mark("peek")
	oldState := lx.state
	oldLineText := lx.curLineText
	oldLine := lx.curLine
	oldPos := lx.curPos
	oldDone := lx.done
	oldPanic := lx.panicMode
	oldListener := lx.listener
	lx.listener = nil

	tok := lx.Next()

	lx.r.Restore("peek")
	lx.state = oldState
	lx.curLineText = oldLineText
	lx.curLine = oldLine
	lx.curPos = oldPos
	lx.done = oldDone
	lx.panicMode = oldPanic
	lx.listener = oldListener

	return tok
}

// HasNext returns whether the stream has any additional tokens.
func (lx *lazyStream) HasNext() bool {
	return !lx.done
}

// advances line/position tracking over one character of consumed input.
func (lx *lazyStream) trackChar(ch rune) {
	if ch == '\n' {
		lx.curLine++
		lx.curPos = 1
		lx.curLineText = ""
		return
	}
	lx.curPos++
	lx.curLineText += string(ch)
}

// restOfLine gives the text from the read head to the end of the current
// line, without advancing.
func (lx *lazyStream) restOfLine() string {
	return readLineWithoutAdvancing(lx.r)
}

func (lx *lazyStream) emit(tok Token) Token {
	if lx.listener != nil {
		lx.listener(tok)
	}
	return tok
}

func (lx *lazyStream) makeTokenAt(class TokenClass, lexeme string, line int, pos int, lineText string) Token {
	// full line is everything consumed on the start line before the lexeme,
	// the part of the lexeme on that line, and whatever remains past the
	// read head
	lexemeFirstLine := lexeme
	if nl := strings.IndexRune(lexeme, '\n'); nl >= 0 {
		lexemeFirstLine = lexeme[:nl]
	}
	full := lineText + lexemeFirstLine
	if lexemeFirstLine == lexeme {
		full += lx.restOfLine()
	}

	return lexerToken{
		class:   class,
		line:    full,
		linePos: pos,
		lineNum: line,
		lexed:   lexeme,
	}
}

func (lx *lazyStream) makeEOTToken() Token {
	return lexerToken{
		class:   TokenEndOfText,
		line:    lx.curLineText,
		linePos: lx.curPos,
		lineNum: lx.curLine,
	}
}

func (lx *lazyStream) makeErrorTokenf(formatMsg string, args ...any) Token {
	msg := fmt.Sprintf(formatMsg, args...)
	return lexerToken{
		class:   TokenError,
		line:    lx.curLineText + lx.restOfLine(),
		linePos: lx.curPos,
		lineNum: lx.curLine,
		lexed:   msg,
	}
}

// tokenForIOError takes the given error returned from an I/O operation, sets
// state on lx based on whether the error is io.EOF, then returns a token
// appropriate for the error: TokenEndOfText for io.EOF, TokenError for all
// others.
func (lx *lazyStream) tokenForIOError(err error) Token {
	lx.done = true

	if err == io.EOF {
		lx.panicMode = false
		return lx.emit(lx.makeEOTToken())
	}
	return lx.emit(lx.makeErrorTokenf("I/O error: %s", err.Error()))
}
