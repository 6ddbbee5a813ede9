package lex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	testClassInt   = NewTokenClass("int", "INT")
	testClassRange = NewTokenClass("range", "RANGE")
	testClassFloat = NewTokenClass("float", "FLOAT")
	testClassIf    = NewTokenClass("if", "'if'")
	testClassIdent = NewTokenClass("ident", "IDENTIFIER")
)

// numbersLexer recognizes ints, float literals, and the .. range operator,
// skipping spaces. Pattern definition order matters to the tie-break cases.
func numbersLexer(t *testing.T) Lexer {
	lx := NewLexer(true)
	lx.RegisterClass(testClassInt, "")
	lx.RegisterClass(testClassRange, "")
	lx.RegisterClass(testClassFloat, "")

	var err error
	if err = lx.AddPattern(`[0-9]+`, LexAs(testClassInt.ID()), ""); err != nil {
		t.Fatalf("add int pattern: %v", err)
	}
	if err = lx.AddPattern(`\.\.`, LexAs(testClassRange.ID()), ""); err != nil {
		t.Fatalf("add range pattern: %v", err)
	}
	if err = lx.AddPattern(`[0-9]+\.[0-9]+`, LexAs(testClassFloat.ID()), ""); err != nil {
		t.Fatalf("add float pattern: %v", err)
	}
	if err = lx.AddPattern(`[ \t]+`, Discard(), ""); err != nil {
		t.Fatalf("add skip pattern: %v", err)
	}

	return lx
}

func collectTokens(t *testing.T, lx Lexer, input string) []Token {
	stream, err := lx.Lex(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Lex() returned error: %v", err)
	}

	var toks []Token
	for i := 0; i < 1000; i++ {
		tok := stream.Next()
		toks = append(toks, tok)
		if tok.Class().ID() == TokenEndOfText.ID() {
			return toks
		}
	}
	t.Fatalf("stream did not terminate")
	return nil
}

func Test_Lex_longestMatchWins(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect [][2]string
	}{
		{
			name:  "range operator beats two int-dot splits",
			input: "12..34",
			expect: [][2]string{
				{"int", "12"},
				{"range", ".."},
				{"int", "34"},
				{"$", ""},
			},
		},
		{
			name:  "float wins over int prefix even though int is defined first",
			input: "12.5",
			expect: [][2]string{
				{"float", "12.5"},
				{"$", ""},
			},
		},
		{
			name:  "int range int with spaces",
			input: "1 .. 2",
			expect: [][2]string{
				{"int", "1"},
				{"range", ".."},
				{"int", "2"},
				{"$", ""},
			},
		},
		{
			name:  "blank input is only the sentinel",
			input: "",
			expect: [][2]string{
				{"$", ""},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			toks := collectTokens(t, numbersLexer(t), tc.input)

			actual := make([][2]string, len(toks))
			for i := range toks {
				actual[i] = [2]string{toks[i].Class().ID(), toks[i].Lexeme()}
			}

			assert.Equal(tc.expect, actual)
		})
	}
}

func Test_Lex_equalLengthTieGoesToFirstDefined(t *testing.T) {
	assert := assert.New(t)

	lx := NewLexer(true)
	lx.RegisterClass(testClassIf, "")
	lx.RegisterClass(testClassIdent, "")
	if err := lx.AddPattern(`if`, LexAs(testClassIf.ID()), ""); err != nil {
		t.Fatalf("add if pattern: %v", err)
	}
	if err := lx.AddPattern(`[a-z]+`, LexAs(testClassIdent.ID()), ""); err != nil {
		t.Fatalf("add ident pattern: %v", err)
	}
	if err := lx.AddPattern(`[ ]+`, Discard(), ""); err != nil {
		t.Fatalf("add skip pattern: %v", err)
	}

	toks := collectTokens(t, lx, "if iffy")

	// "if" is a dead tie between both patterns, so definition order decides;
	// "iffy" is strictly longer as an identifier, so length decides.
	assert.Equal("if", toks[0].Class().ID())
	assert.Equal("ident", toks[1].Class().ID())
	assert.Equal("iffy", toks[1].Lexeme())
}

func Test_Lex_errorTokenAndPanicModeRecovery(t *testing.T) {
	assert := assert.New(t)

	toks := collectTokens(t, numbersLexer(t), "1 @@ 2")

	// one error token for the whole run of garbage; recovery drops
	// characters until a pattern matches again
	if !assert.Len(toks, 4) {
		return
	}
	assert.Equal("int", toks[0].Class().ID())
	assert.Equal(TokenError.ID(), toks[1].Class().ID())
	assert.Contains(toks[1].Lexeme(), `unknown input`)
	assert.Contains(toks[1].Lexeme(), `@`)
	assert.Equal("int", toks[2].Class().ID())
	assert.Equal("2", toks[2].Lexeme())
	assert.Equal(TokenEndOfText.ID(), toks[3].Class().ID())
}

func Test_Lex_tokenPositions(t *testing.T) {
	assert := assert.New(t)

	toks := collectTokens(t, numbersLexer(t), "1 22\n333")

	if !assert.Len(toks, 4) {
		return
	}

	assert.Equal(1, toks[0].Line())
	assert.Equal(1, toks[0].LinePos())
	assert.Equal("1 22", toks[0].FullLine())

	assert.Equal(1, toks[1].Line())
	assert.Equal(3, toks[1].LinePos())
	assert.Equal("1 22", toks[1].FullLine())

	assert.Equal(2, toks[2].Line())
	assert.Equal(1, toks[2].LinePos())
	assert.Equal("333", toks[2].FullLine())
}

func Test_Lex_statefulLexing(t *testing.T) {
	assert := assert.New(t)

	tcText := NewTokenClass("text", "TEXT")
	tcOpen := NewTokenClass("tag_open", "'<'")
	tcName := NewTokenClass("tag_name", "TAG NAME")
	tcClose := NewTokenClass("tag_close", "'>'")

	lx := NewLexer(true)
	lx.SetStartingState("content")
	lx.RegisterClass(tcText, "content")
	lx.RegisterClass(tcOpen, "content")
	lx.RegisterClass(tcName, "tag")
	lx.RegisterClass(tcClose, "tag")

	var err error
	if err = lx.AddPattern(`[a-z]+`, LexAs(tcText.ID()), "content"); err != nil {
		t.Fatalf("add text pattern: %v", err)
	}
	if err = lx.AddPattern(`<`, LexAndSwapState(tcOpen.ID(), "tag"), "content"); err != nil {
		t.Fatalf("add open pattern: %v", err)
	}
	if err = lx.AddPattern(`[a-z]+`, LexAs(tcName.ID()), "tag"); err != nil {
		t.Fatalf("add name pattern: %v", err)
	}
	if err = lx.AddPattern(`>`, LexAndSwapState(tcClose.ID(), "content"), "tag"); err != nil {
		t.Fatalf("add close pattern: %v", err)
	}

	toks := collectTokens(t, lx, "<em>word")

	if !assert.Len(toks, 5) {
		return
	}
	assert.Equal("tag_open", toks[0].Class().ID())
	assert.Equal("tag_name", toks[1].Class().ID())
	assert.Equal("em", toks[1].Lexeme())
	assert.Equal("tag_close", toks[2].Class().ID())
	assert.Equal("text", toks[3].Class().ID())
	assert.Equal("word", toks[3].Lexeme())
}

func Test_Lex_peekDoesNotAdvance(t *testing.T) {
	assert := assert.New(t)

	stream, err := numbersLexer(t).Lex(strings.NewReader("7 8"))
	if err != nil {
		t.Fatalf("Lex() returned error: %v", err)
	}

	p1 := stream.Peek()
	p2 := stream.Peek()
	assert.Equal("7", p1.Lexeme())
	assert.Equal(p1.Lexeme(), p2.Lexeme())
	assert.Equal(p1.Class().ID(), p2.Class().ID())

	n := stream.Next()
	assert.Equal("7", n.Lexeme())
	assert.Equal("8", stream.Peek().Lexeme())
}

func Test_AddPattern_configErrors(t *testing.T) {
	testCases := []struct {
		name     string
		pattern  string
		register bool
		action   Action
	}{
		{
			name:     "pattern that does not compile",
			pattern:  `[`,
			register: true,
			action:   LexAs("int"),
		},
		{
			name:     "pattern that can match the empty string",
			pattern:  `[0-9]*`,
			register: true,
			action:   LexAs("int"),
		},
		{
			name:     "action class never registered",
			pattern:  `[0-9]+`,
			register: false,
			action:   LexAs("int"),
		},
		{
			name:     "swap to empty state",
			pattern:  `[0-9]+`,
			register: true,
			action:   SwapState(""),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			lx := NewLexer(true)
			if tc.register {
				lx.RegisterClass(testClassInt, "")
			}

			err := lx.AddPattern(tc.pattern, tc.action, "")
			assert.Error(err)
		})
	}
}

func Test_NewListStream_appendsSentinel(t *testing.T) {
	assert := assert.New(t)

	stream := NewListStream([]Token{
		NewToken(testClassInt, "1", 1, 1, "1"),
	})

	assert.True(stream.HasNext())
	assert.Equal("1", stream.Next().Lexeme())
	assert.True(stream.HasNext())
	assert.Equal(TokenEndOfText.ID(), stream.Next().Class().ID())
	assert.False(stream.HasNext())

	// the sentinel repeats forever after the end
	assert.Equal(TokenEndOfText.ID(), stream.Next().Class().ID())
}

func Test_Lex_tokenListener(t *testing.T) {
	assert := assert.New(t)

	lx := numbersLexer(t)

	var heard []string
	lx.RegisterTokenListener(func(tok Token) {
		heard = append(heard, tok.Class().ID()+" "+tok.Lexeme())
	})

	stream, err := lx.Lex(strings.NewReader("1 .. 2"))
	if !assert.NoError(err) {
		return
	}

	// nothing fires until tokens are actually pulled
	assert.Empty(heard)

	// peeking must not fire the listener; only real production does
	stream.Peek()
	assert.Empty(heard)

	for stream.HasNext() {
		stream.Next()
	}

	assert.Equal([]string{"int 1", "range ..", "int 2", "$ "}, heard)
}

func Test_Lex_tokenListenerHearsErrorTokens(t *testing.T) {
	assert := assert.New(t)

	lx := numbersLexer(t)

	var heardIDs []string
	lx.RegisterTokenListener(func(tok Token) {
		heardIDs = append(heardIDs, tok.Class().ID())
	})

	stream, err := lx.Lex(strings.NewReader("1 @@ 2"))
	if !assert.NoError(err) {
		return
	}
	for stream.HasNext() {
		stream.Next()
	}

	assert.Equal([]string{
		testClassInt.ID(),
		TokenError.ID(),
		testClassInt.ID(),
		TokenEndOfText.ID(),
	}, heardIDs)
}
