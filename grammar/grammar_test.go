package grammar

import (
	"testing"

	"github.com/dekarrin/esox/lex"
	"github.com/stretchr/testify/assert"
)

const arrayInitNotation = `
	init  -> '{' value ( ',' value )* '}' ;
	value -> init | INT ;
`

func Test_Parse_notation(t *testing.T) {
	testCases := []struct {
		name      string
		notation  string
		expectErr bool
	}{
		{
			name:     "array initializer grammar",
			notation: arrayInitNotation,
		},
		{
			name:     "epsilon alternative",
			notation: `a -> 'x' a | ε ;`,
		},
		{
			name:     "quantifiers on terminals and groups",
			notation: `a -> 'x'? 'y'* ( 'z' 'w' )+ ;`,
		},
		{
			name:      "missing semicolon",
			notation:  `a -> 'x'`,
			expectErr: true,
		},
		{
			name:      "missing arrow",
			notation:  `a 'x' ;`,
			expectErr: true,
		},
		{
			name:      "unclosed group",
			notation:  `a -> ( 'x' ;`,
			expectErr: true,
		},
		{
			name:      "empty group",
			notation:  `a -> ( ) 'x' ;`,
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			_, err := Parse(tc.notation)
			if tc.expectErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}
		})
	}
}

func Test_Parse_arrayInitShape(t *testing.T) {
	assert := assert.New(t)

	g := MustParse(arrayInitNotation)

	assert.Equal("init", g.Start())
	assert.Equal([]string{"init", "value"}, g.NonTerminals())
	assert.ElementsMatch([]string{"{", ",", "}", "int"}, g.Terminals())

	// quoted literals carry their quoted form as the human name; named
	// terminals keep the name as written
	assert.Equal("'{'", g.Term("{").Human())
	assert.Equal("INT", g.Term("int").Human())

	init := g.Rule("init")
	if !assert.Len(init.Productions, 1) {
		return
	}
	alt := init.Productions[0]
	if !assert.Len(alt, 4) {
		return
	}
	assert.True(alt[0].IsTerminal())
	assert.True(alt[1].IsRuleRef())
	assert.True(alt[2].IsGroup())
	assert.Equal(QuantZeroOrMore, alt[2].Quant)
	assert.True(alt[3].IsTerminal())

	value := g.Rule("value")
	assert.Len(value.Productions, 2)
}

func Test_Validate(t *testing.T) {
	testCases := []struct {
		name      string
		build     func() Grammar
		expectErr bool
	}{
		{
			name: "valid grammar",
			build: func() Grammar {
				return MustParse(`a -> 'x' ;`)
			},
		},
		{
			name: "no rules",
			build: func() Grammar {
				return Grammar{}
			},
			expectErr: true,
		},
		{
			name: "start names a rule that does not exist",
			build: func() Grammar {
				g := MustParse(`a -> 'x' ;`)
				g.SetStart("nope")
				return g
			},
			expectErr: true,
		},
		{
			name: "dangling rule reference",
			build: func() Grammar {
				var g Grammar
				g.AddRule("a", Production{Ref("ghost")})
				return g
			},
			expectErr: true,
		},
		{
			name: "element with nothing set",
			build: func() Grammar {
				var g Grammar
				g.AddRule("a", Production{Element{}})
				return g
			},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			err := tc.build().Validate()
			if tc.expectErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}
		})
	}
}

func Test_Analyze_arrayInit(t *testing.T) {
	assert := assert.New(t)

	g := MustParse(arrayInitNotation)
	an := g.Analyze()

	assert.False(an.Nullable("init"))
	assert.False(an.Nullable("value"))

	assert.Equal(map[string]bool{"{": true}, an.First("init"))
	assert.Equal(map[string]bool{"{": true, "int": true}, an.First("value"))

	assert.Equal(map[string]bool{EndOfText: true, ",": true, "}": true}, an.Follow("init"))
	assert.Equal(map[string]bool{",": true, "}": true}, an.Follow("value"))
}

func Test_Analyze_nullableRule(t *testing.T) {
	assert := assert.New(t)

	g := MustParse(`
		a -> b 'x' ;
		b -> 'y' | ε ;
	`)
	an := g.Analyze()

	assert.True(an.Nullable("b"))
	assert.False(an.Nullable("a"))
	assert.Equal(map[string]bool{"y": true, "x": true}, an.First("a"))
	assert.Equal(map[string]bool{"x": true}, an.Follow("b"))
}

func Test_Analyze_quantifiedFollowIncludesRepeat(t *testing.T) {
	assert := assert.New(t)

	g := MustParse(`
		list -> item* ';' ;
		item -> 'x' ;
	`)
	an := g.Analyze()

	// a repeating item may be followed by another item as well as by the
	// closer
	assert.Equal(map[string]bool{"x": true, ";": true}, an.Follow("item"))
}

func Test_Grammar_binaryRoundTrip(t *testing.T) {
	testCases := []struct {
		name     string
		notation string
	}{
		{
			name:     "array initializer grammar",
			notation: arrayInitNotation,
		},
		{
			name:     "epsilon and quantifiers",
			notation: `a -> 'x'? a | ε ;`,
		},
		{
			name: "groups in groups",
			notation: `
				s -> ( 'a' ( 'b' 'c' )+ )* 'd' ;
			`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			g := MustParse(tc.notation)

			data, err := g.MarshalBinary()
			if !assert.NoError(err) {
				return
			}

			var g2 Grammar
			if !assert.NoError(g2.UnmarshalBinary(data)) {
				return
			}

			assert.Equal(g.Start(), g2.Start())
			assert.Equal(g.NonTerminals(), g2.NonTerminals())
			assert.Equal(g.Terminals(), g2.Terminals())
			assert.Equal(g.String(), g2.String())
			for _, id := range g.Terminals() {
				assert.Equal(g.Term(id).Human(), g2.Term(id).Human())
			}
			for _, nt := range g.NonTerminals() {
				assert.True(g.Rule(nt).Equal(g2.Rule(nt)))
			}
		})
	}
}

func Test_Element_Equal(t *testing.T) {
	assert := assert.New(t)

	assert.True(Term("x").Equal(Term("x")))
	assert.False(Term("x").Equal(Term("y")))
	assert.False(Term("x").Equal(Ref("x")))
	assert.False(Term("x").Equal(Term("x").Times(QuantOptional)))
	assert.True(Group(Term("x"), Ref("a")).Equal(Group(Term("x"), Ref("a"))))
	assert.False(Group(Term("x")).Equal(Group(Term("y"))))
}

func Test_Grammar_TermFor(t *testing.T) {
	assert := assert.New(t)

	g := MustParse(arrayInitNotation)

	// the grammar's own class maps straight back to its ID
	assert.Equal("int", g.TermFor(g.Term("int")))

	// so does a separately-built class with the same ID, since classes are
	// equal by ID
	assert.Equal("{", g.TermFor(lex.NewTokenClass("{", "LEFT BRACE")))

	// classes no terminal of the grammar satisfies map to nothing
	assert.Equal("", g.TermFor(lex.NewTokenClass("semi", "';'")))
	assert.Equal("", g.TermFor(lex.TokenEndOfText))
}
