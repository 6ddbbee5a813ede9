package parse

import (
	"strings"
	"testing"

	"github.com/dekarrin/esox/grammar"
	"github.com/dekarrin/esox/lex"
	"github.com/stretchr/testify/assert"
)

const arrayInitNotation = `
	init  -> '{' value ( ',' value )* '}' ;
	value -> init | INT ;
`

// arrayInitLexer builds a lexer matching the terminals of the array
// initializer grammar.
func arrayInitLexer(t *testing.T, g grammar.Grammar) lex.Lexer {
	t.Helper()

	lx := lex.NewLexer(true)
	for _, id := range g.Terminals() {
		lx.RegisterClass(g.Term(id), "")
	}

	pats := map[string]string{
		"int": `[0-9]+`,
		"{":   `\{`,
		",":   `,`,
		"}":   `\}`,
	}
	for id, pat := range pats {
		if err := lx.AddPattern(pat, lex.LexAs(id), ""); err != nil {
			t.Fatalf("add pattern for %q: %v", id, err)
		}
	}
	if err := lx.AddPattern(`[ \t\r\n]+`, lex.Discard(), ""); err != nil {
		t.Fatalf("add skip pattern: %v", err)
	}

	return lx
}

func arrayInitParse(t *testing.T, input string) (*Tree, []error) {
	t.Helper()

	g := grammar.MustParse(arrayInitNotation)
	p, err := NewDescentParser(g)
	if err != nil {
		t.Fatalf("NewDescentParser: %v", err)
	}

	stream, err := arrayInitLexer(t, g).Lex(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}

	return p.Parse(stream)
}

// tokensFor builds a token stream over the given terminal IDs of g, with the
// ID doubling as the lexeme.
func tokensFor(g grammar.Grammar, ids ...string) lex.TokenStream {
	toks := make([]lex.Token, len(ids))
	pos := 1
	for i, id := range ids {
		toks[i] = lex.NewToken(g.Term(id), id, 1, pos, "")
		pos += len(id) + 1
	}
	return lex.NewListStream(toks)
}

func Test_Parser_arrayInit(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "single element",
			input:  "{1}",
			expect: "(init { (value 1) })",
		},
		{
			name:   "flat list",
			input:  "{1, 2, 3}",
			expect: "(init { (value 1) , (value 2) , (value 3) })",
		},
		{
			name:   "nested initializer",
			input:  "{1, {2, 3}, 4}",
			expect: "(init { (value 1) , (value (init { (value 2) , (value 3) })) , (value 4) })",
		},
		{
			name:   "deeply nested single",
			input:  "{{{5}}}",
			expect: "(init { (value (init { (value (init { (value 5) })) })) })",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			tree, errs := arrayInitParse(t, tc.input)

			assert.Empty(errs)
			if assert.NotNil(tree) {
				assert.Equal(tc.expect, tree.SExpr())
			}
		})
	}
}

func Test_Parser_treeIsStableAcrossRuns(t *testing.T) {
	assert := assert.New(t)

	tree1, errs1 := arrayInitParse(t, "{1, {2, 3}, 4}")
	tree2, errs2 := arrayInitParse(t, "{1, {2, 3}, 4}")

	assert.Empty(errs1)
	assert.Empty(errs2)
	assert.True(tree1.Equal(tree2))
	assert.Equal(tree1.String(), tree2.String())
}

func Test_Parser_missingElementRecovery(t *testing.T) {
	assert := assert.New(t)

	tree, errs := arrayInitParse(t, "{1, , 3}")

	// exactly one error, positioned at the second comma
	if assert.Len(errs, 1) {
		se, ok := errs[0].(SyntaxError)
		if assert.True(ok, "expected a SyntaxError, got %T", errs[0]) {
			assert.Equal("value", se.Rule())
			assert.Equal(1, se.Line())
			assert.Equal(5, se.Position())
			assert.Equal([]string{"INT", "'{'"}, se.Expected())
		}
	}

	// the tree still has three value children, with the middle one
	// error-marked
	if assert.NotNil(tree) {
		assert.Equal("(init { (value 1) , (value <error>) , (value 3) })", tree.SExpr())
	}
}

func Test_Parser_deletionRecovery(t *testing.T) {
	assert := assert.New(t)

	tree, errs := arrayInitParse(t, "{1 1}")

	if assert.Len(errs, 1) {
		se, ok := errs[0].(SyntaxError)
		if assert.True(ok) {
			assert.Contains(se.Error(), "unexpected INT")
		}
	}
	if assert.NotNil(tree) {
		assert.Equal("(init { (value 1) })", tree.SExpr())
	}
}

func Test_Parser_insertionRecovery(t *testing.T) {
	assert := assert.New(t)

	g := grammar.MustParse(`s -> 'a' 'b' 'c' ;`)
	p, err := NewDescentParser(g)
	if err != nil {
		t.Fatalf("NewDescentParser: %v", err)
	}

	tree, errs := p.Parse(tokensFor(g, "a", "c"))

	if assert.Len(errs, 1) {
		se, ok := errs[0].(SyntaxError)
		if assert.True(ok) {
			assert.Contains(se.Error(), "missing 'b'")
			assert.Equal([]string{"'b'"}, se.Expected())
		}
	}
	if assert.NotNil(tree) {
		assert.Equal("(s a <missing b> c)", tree.SExpr())
	}
}

func Test_Parser_endOfInput(t *testing.T) {
	assert := assert.New(t)

	tree, errs := arrayInitParse(t, "{1,")

	// one end-of-input error covering the truncation, not one per missing
	// piece
	if assert.Len(errs, 1) {
		eoi, ok := errs[0].(EndOfInputError)
		if assert.True(ok, "expected an EndOfInputError, got %T", errs[0]) {
			assert.Equal([]string{"INT", "'{'"}, eoi.Expected())
		}
	}

	if assert.NotNil(tree) {
		assert.Equal("(init { (value 1) , (value <error>) <missing }>)", tree.SExpr())
	}
}

func Test_Parser_trailingInput(t *testing.T) {
	assert := assert.New(t)

	tree, errs := arrayInitParse(t, "{1} {2}")

	if assert.Len(errs, 1) {
		se, ok := errs[0].(SyntaxError)
		if assert.True(ok) {
			assert.Contains(se.Error(), "after a complete init")
		}
	}
	if assert.NotNil(tree) {
		assert.Equal("(init { (value 1) })", tree.SExpr())
	}
}

func Test_Parser_collectsLexicalErrors(t *testing.T) {
	assert := assert.New(t)

	tree, errs := arrayInitParse(t, "{@1}")

	if assert.Len(errs, 1) {
		_, ok := errs[0].(lex.Error)
		assert.True(ok, "expected a lex.Error, got %T", errs[0])
		assert.Contains(errs[0].Error(), "unknown input")
	}
	if assert.NotNil(tree) {
		assert.Equal("(init { (value 1) })", tree.SExpr())
	}
}

func Test_Parser_adaptiveLookahead(t *testing.T) {
	testCases := []struct {
		name   string
		input  []string
		expect string
	}{
		{
			name:   "second token selects first alternative",
			input:  []string{"a", "b"},
			expect: "(s a b)",
		},
		{
			name:   "second token selects second alternative",
			input:  []string{"a", "c"},
			expect: "(s a c)",
		},
	}

	g := grammar.MustParse(`s -> 'a' 'b' | 'a' 'c' ;`)
	p, err := NewDescentParser(g)
	if err != nil {
		t.Fatalf("NewDescentParser: %v", err)
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			tree, errs := p.Parse(tokensFor(g, tc.input...))

			assert.Empty(errs)
			if assert.NotNil(tree) {
				assert.Equal(tc.expect, tree.SExpr())
			}
		})
	}
}

func Test_Parser_firstDeclaredWinsWhenIndistinguishable(t *testing.T) {
	assert := assert.New(t)

	// both alternatives match exactly "a b"; the declared-first one must win
	// every time
	g := grammar.MustParse(`
		s -> 'a' x | 'a' 'b' ;
		x -> 'b' ;
	`)
	p, err := NewDescentParser(g)
	if err != nil {
		t.Fatalf("NewDescentParser: %v", err)
	}

	for i := 0; i < 5; i++ {
		tree, errs := p.Parse(tokensFor(g, "a", "b"))

		assert.Empty(errs)
		if assert.NotNil(tree) {
			assert.Equal("(s a (x b))", tree.SExpr())
		}
	}
}

func Test_Parser_epsilonProducesEmptyNode(t *testing.T) {
	assert := assert.New(t)

	g := grammar.MustParse(`
		a -> 'x' b ;
		b -> 'y' | ε ;
	`)
	p, err := NewDescentParser(g)
	if err != nil {
		t.Fatalf("NewDescentParser: %v", err)
	}

	tree, errs := p.Parse(tokensFor(g, "x"))

	assert.Empty(errs)
	if assert.NotNil(tree) {
		assert.Equal("(a x (b))", tree.SExpr())
	}
}

func Test_Parser_quantifiers(t *testing.T) {
	testCases := []struct {
		name     string
		notation string
		input    []string
		expect   string
	}{
		{
			name:     "optional present",
			notation: `s -> 'a'? 'b' ;`,
			input:    []string{"a", "b"},
			expect:   "(s a b)",
		},
		{
			name:     "optional absent",
			notation: `s -> 'a'? 'b' ;`,
			input:    []string{"b"},
			expect:   "(s b)",
		},
		{
			name:     "zero or more matches none",
			notation: `s -> 'a'* 'b' ;`,
			input:    []string{"b"},
			expect:   "(s b)",
		},
		{
			name:     "zero or more matches several",
			notation: `s -> 'a'* 'b' ;`,
			input:    []string{"a", "a", "a", "b"},
			expect:   "(s a a a b)",
		},
		{
			name:     "one or more",
			notation: `s -> 'a'+ ;`,
			input:    []string{"a", "a"},
			expect:   "(s a a)",
		},
		{
			name:     "group children append flat",
			notation: `s -> ( 'a' 'b' )+ ;`,
			input:    []string{"a", "b", "a", "b"},
			expect:   "(s a b a b)",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			g := grammar.MustParse(tc.notation)
			p, err := NewDescentParser(g)
			if err != nil {
				t.Fatalf("NewDescentParser: %v", err)
			}

			tree, errs := p.Parse(tokensFor(g, tc.input...))

			assert.Empty(errs)
			if assert.NotNil(tree) {
				assert.Equal(tc.expect, tree.SExpr())
			}
		})
	}
}

func Test_Parser_ParseRule(t *testing.T) {
	assert := assert.New(t)

	g := grammar.MustParse(arrayInitNotation)
	p, err := NewDescentParser(g)
	if err != nil {
		t.Fatalf("NewDescentParser: %v", err)
	}

	stream, err := arrayInitLexer(t, g).Lex(strings.NewReader("7"))
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}

	tree, errs := p.ParseRule("value", stream)

	assert.Empty(errs)
	if assert.NotNil(tree) {
		assert.Equal("(value 7)", tree.SExpr())
	}

	// a name that is not a rule fails outright
	tree, errs = p.ParseRule("nope", lex.NewListStream(nil))
	assert.Nil(tree)
	assert.Len(errs, 1)
}

func Test_NewDescentParser_configErrors(t *testing.T) {
	testCases := []struct {
		name        string
		notation    string
		expectAmbig bool
	}{
		{
			name:        "identical alternatives",
			notation:    `s -> 'a' 'b' | 'a' 'b' ;`,
			expectAmbig: true,
		},
		{
			name:        "identical epsilon alternatives",
			notation:    `s -> 'q' | ε | ε ;`,
			expectAmbig: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			g := grammar.MustParse(tc.notation)
			_, err := NewDescentParser(g)

			if !assert.Error(err) {
				return
			}
			if tc.expectAmbig {
				assert.IsType(AmbiguousGrammarConfigurationError{}, err)
			}
		})
	}
}
