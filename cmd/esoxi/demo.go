package main

import (
	"github.com/dekarrin/esox"
	"github.com/dekarrin/esox/grammar"
	"github.com/dekarrin/esox/internal/langdef"
	"github.com/dekarrin/esox/lex"
)

// The built-in demonstration language recognizes nested integer array
// initializers such as {1, {2, 3}, 4}.
const (
	builtinLanguageName    = "arrayinit"
	builtinLanguageVersion = "1.0"
	builtinRuleInit        = "init"
	builtinRuleValue       = "value"
	builtinTermInt         = "int"
)

var (
	tcInt        = lex.NewTokenClass(builtinTermInt, "INT")
	tcOpenBrace  = lex.NewTokenClass("{", "'{'")
	tcComma      = lex.NewTokenClass(",", "','")
	tcCloseBrace = lex.NewTokenClass("}", "'}'")
)

// builtinLanguage assembles the demonstration language in code, the same way
// a caller of the library would.
func builtinLanguage() (langdef.Language, error) {
	var g grammar.Grammar
	g.AddTerm(tcInt)
	g.AddTerm(tcOpenBrace)
	g.AddTerm(tcComma)
	g.AddTerm(tcCloseBrace)

	g.AddRule(builtinRuleInit, grammar.Production{
		grammar.Term("{"),
		grammar.Ref(builtinRuleValue),
		grammar.Group(
			grammar.Term(","),
			grammar.Ref(builtinRuleValue),
		).Times(grammar.QuantZeroOrMore),
		grammar.Term("}"),
	})
	g.AddRule(builtinRuleValue, grammar.Production{grammar.Ref(builtinRuleInit)})
	g.AddRule(builtinRuleValue, grammar.Production{grammar.Term(builtinTermInt)})

	lx := lex.NewLexer(true)
	lx.RegisterClass(tcInt, "")
	lx.RegisterClass(tcOpenBrace, "")
	lx.RegisterClass(tcComma, "")
	lx.RegisterClass(tcCloseBrace, "")

	if err := lx.AddPattern(`[0-9]+`, lex.LexAs(tcInt.ID()), ""); err != nil {
		return langdef.Language{}, err
	}
	if err := lx.AddPattern(`\{`, lex.LexAs(tcOpenBrace.ID()), ""); err != nil {
		return langdef.Language{}, err
	}
	if err := lx.AddPattern(`,`, lex.LexAs(tcComma.ID()), ""); err != nil {
		return langdef.Language{}, err
	}
	if err := lx.AddPattern(`\}`, lex.LexAs(tcCloseBrace.ID()), ""); err != nil {
		return langdef.Language{}, err
	}
	if err := lx.AddPattern(`[ \t\r\n]+`, lex.Discard(), ""); err != nil {
		return langdef.Language{}, err
	}

	fe, err := esox.New(lx, g)
	if err != nil {
		return langdef.Language{}, err
	}
	fe.Language = builtinLanguageName
	fe.Version = builtinLanguageVersion

	return langdef.Language{
		Name:     builtinLanguageName,
		Grammar:  g,
		Frontend: fe,
	}, nil
}
