// Package parse provides predictive recursive-descent parsing of token
// streams into parse trees. A Parser is built once from a grammar and may
// then be used for any number of parses.
//
// Recognition commits to one alternative of a rule before descending into
// it. Most commits need only the next token; when several alternatives of a
// rule could begin with it, the parser simulates the contenders against
// further lookahead until one wins, and if no amount of lookahead within its
// limits can separate them, the alternative declared first wins. There is no
// backtracking; once committed, recognition either succeeds or repairs.
//
// Repairs never abandon a parse. A mismatched terminal is fixed by deleting
// one token or synthesizing the missing one, and a rule occurrence that
// cannot begin at all becomes an error-marked placeholder node after
// skipping ahead to a token that may follow the rule. Every repair is also
// reported as an error, so a parse that returns a non-empty error list
// produced a best-effort tree, not a trustworthy one.
package parse

import (
	"fmt"
	"sort"

	"github.com/dekarrin/esox/grammar"
	"github.com/dekarrin/esox/lex"
)

// resyncMaxSkip is the most tokens dropped while hunting for a
// resynchronization point after a failed rule prediction.
const resyncMaxSkip = 3

// Parser turns token streams into parse trees for one grammar.
type Parser interface {
	// Parse recognizes the grammar's start rule against the entire stream.
	// It always returns a tree, even when errors were found; the tree then
	// contains repair artifacts and the error list says what was wrong. The
	// tree is nil only if the stream held no recognizable prefix at all.
	Parse(stream lex.TokenStream) (*Tree, []error)

	// ParseRule is Parse but starting from the named rule instead of the
	// grammar's start rule.
	ParseRule(rule string, stream lex.TokenStream) (*Tree, []error)

	// Grammar returns a copy of the grammar the parser was built from.
	Grammar() grammar.Grammar
}

// AmbiguousGrammarConfigurationError is returned when a parser is built from
// a grammar containing a rule with two identical alternatives. No input
// could ever select the later duplicate, so the grammar is treated as
// misconfigured rather than silently ignoring it.
type AmbiguousGrammarConfigurationError struct {
	// Rule is the non-terminal with the duplicate alternatives.
	Rule string

	// First and Second are the 0-indexed positions of the duplicates within
	// the rule's alternative list.
	First  int
	Second int
}

func (e AmbiguousGrammarConfigurationError) Error() string {
	return fmt.Sprintf("grammar is ambiguous: alternatives %d and %d of rule %s are identical", e.First, e.Second, e.Rule)
}

type descentParser struct {
	g  grammar.Grammar
	an grammar.Analysis
	pd predictor
}

// NewDescentParser builds a predictive recursive-descent parser for g. The
// grammar is validated and its prediction sets are computed once, up front;
// a grammar that fails validation or contains a rule with two identical
// alternatives is rejected here rather than at parse time.
func NewDescentParser(g grammar.Grammar) (Parser, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	for _, nt := range g.NonTerminals() {
		r := g.Rule(nt)
		for i := range r.Productions {
			for j := i + 1; j < len(r.Productions); j++ {
				if r.Productions[i].Equal(r.Productions[j]) {
					return nil, AmbiguousGrammarConfigurationError{Rule: nt, First: i, Second: j}
				}
			}
		}
	}

	gCopy := g.Copy()
	an := gCopy.Analyze()

	return &descentParser{
		g:  gCopy,
		an: an,
		pd: predictor{g: gCopy, an: an},
	}, nil
}

func (dp *descentParser) Grammar() grammar.Grammar {
	return dp.g.Copy()
}

func (dp *descentParser) Parse(stream lex.TokenStream) (*Tree, []error) {
	return dp.ParseRule(dp.g.Start(), stream)
}

func (dp *descentParser) ParseRule(rule string, stream lex.TokenStream) (*Tree, []error) {
	if !dp.g.HasRule(rule) {
		return nil, []error{fmt.Errorf("not a rule of the grammar: %q", rule)}
	}

	run := &parseRun{
		dp: dp,
		ts: NewTokenSource(stream),
	}

	root := run.parseRule(rule)
	run.checkTrailing(rule)

	return root, run.collectErrors()
}

// parseRun is the mutable state of one parse. Parsers themselves hold only
// immutable grammar data, so a Parser may run any number of parses, but each
// run's state is its own.
type parseRun struct {
	dp     *descentParser
	ts     *TokenSource
	errors []error

	// set once an end-of-input error has been recorded; further tokens the
	// run wants past the end are repaired silently instead of re-reported.
	sawEndErr bool
}

// parseRule recognizes one occurrence of the named rule and returns its
// node. The node is error-marked if no alternative of the rule could begin
// at the current position.
func (run *parseRun) parseRule(name string) *Tree {
	node := &Tree{Value: name}
	r := run.dp.g.Rule(name)

	alt := run.dp.pd.predict(r, run.ts)
	if alt < 0 {
		run.predictionFailure(node, r)
		return node
	}

	run.matchSeq(node, name, r.Productions[alt])
	return node
}

// predictionFailure reports that no alternative of r could begin here, marks
// the node, and drops a bounded number of tokens to find a point where the
// caller can continue.
func (run *parseRun) predictionFailure(node *Tree, r grammar.Rule) {
	expected := run.dp.pd.predictExpected(r)

	tok, err := run.ts.LA(1)
	if err != nil || tok.Class().ID() == lex.TokenEndOfText.ID() {
		run.reportEndOfInput(expected)
	} else {
		msg := fmt.Sprintf("cannot start %s here; %s", r.NonTerminal, expectedMsg(expected))
		run.errors = append(run.errors, syntaxErrorFromToken(msg, r.NonTerminal, expected, tok))
	}

	node.Error = true

	follow := run.dp.an.Follow(r.NonTerminal)
	for skipped := 0; skipped < resyncMaxSkip; skipped++ {
		tok, err := run.ts.LA(1)
		if err != nil || tok.Class().ID() == lex.TokenEndOfText.ID() {
			return
		}
		if follow[tok.Class().ID()] {
			return
		}
		run.ts.Consume()
	}
}

func (run *parseRun) matchSeq(node *Tree, ruleName string, seq []grammar.Element) {
	for _, e := range seq {
		run.matchElem(node, ruleName, e)
	}
}

func (run *parseRun) matchElem(node *Tree, ruleName string, e grammar.Element) {
	switch e.Quant {
	case grammar.QuantOptional:
		if run.elemStartsHere(e) {
			run.matchOnce(node, ruleName, e)
		}
	case grammar.QuantZeroOrMore:
		run.matchLoop(node, ruleName, e)
	case grammar.QuantOneOrMore:
		run.matchOnce(node, ruleName, e)
		run.matchLoop(node, ruleName, e)
	default:
		run.matchOnce(node, ruleName, e)
	}
}

// matchLoop matches e as many more times as the upcoming input allows. An
// iteration that consumes nothing ends the loop; a repaired iteration is
// allowed to match nothing, and looping on it again would never terminate.
func (run *parseRun) matchLoop(node *Tree, ruleName string, e grammar.Element) {
	for run.elemStartsHere(e) {
		before := run.ts.Consumed()
		run.matchOnce(node, ruleName, e)
		if run.ts.Consumed() == before {
			return
		}
	}
}

// elemStartsHere reports whether a single occurrence of e could begin with
// the current token.
func (run *parseRun) elemStartsHere(e grammar.Element) bool {
	first := run.dp.an.ElemFirst(e.Times(grammar.QuantOne))
	return first[laID(run.ts, 1)]
}

// matchOnce matches exactly one occurrence of e, ignoring its quantifier.
func (run *parseRun) matchOnce(node *Tree, ruleName string, e grammar.Element) {
	switch {
	case e.IsTerminal():
		run.matchTerminal(node, ruleName, e.Terminal)
	case e.IsRuleRef():
		node.AddChild(run.parseRule(e.RuleRef))
	case e.IsGroup():
		run.matchSeq(node, ruleName, e.Group)
	}
}

// matchTerminal consumes the wanted terminal, repairing by single-token
// deletion or insertion when the current token is not it. Tokens are matched
// by the grammar terminal their class satisfies, so a lexer may use its own
// class instances as long as they Equal the grammar's.
func (run *parseRun) matchTerminal(node *Tree, ruleName string, termID string) {
	want := run.dp.g.Term(termID)

	tok, err := run.ts.LA(1)
	if err == nil && run.dp.g.TermFor(tok.Class()) == termID {
		run.ts.Consume()
		node.AddChild(&Tree{Terminal: true, Value: termID, Source: tok})
		return
	}

	expected := []string{want.Human()}

	if err != nil || tok.Class().ID() == lex.TokenEndOfText.ID() {
		run.reportEndOfInput(expected)
		run.insertMissing(node, termID)
		return
	}

	// single-token deletion: if dropping just the current token lines the
	// input back up, do that.
	if t2, err2 := run.ts.LA(2); err2 == nil && run.dp.g.TermFor(t2.Class()) == termID {
		msg := fmt.Sprintf("unexpected %s; %s", tok.Class().Human(), expectedMsg(expected))
		run.errors = append(run.errors, syntaxErrorFromToken(msg, ruleName, expected, tok))
		run.ts.Consume()
		run.ts.Consume()
		node.AddChild(&Tree{Terminal: true, Value: termID, Source: t2})
		return
	}

	// single-token insertion: act as if the wanted token had been present
	// and leave the current token for whatever comes next.
	msg := fmt.Sprintf("missing %s before %s", want.Human(), tok.Class().Human())
	run.errors = append(run.errors, syntaxErrorFromToken(msg, ruleName, expected, tok))
	run.insertMissing(node, termID)
}

func (run *parseRun) insertMissing(node *Tree, termID string) {
	node.AddChild(&Tree{Terminal: true, Value: termID, Error: true})
}

func (run *parseRun) reportEndOfInput(expected []string) {
	if run.sawEndErr {
		return
	}
	run.sawEndErr = true
	run.errors = append(run.errors, run.ts.endError(expected))
}

// checkTrailing reports input left over after the root rule completed.
func (run *parseRun) checkTrailing(rule string) {
	tok, err := run.ts.LA(1)
	if err != nil || tok.Class().ID() == lex.TokenEndOfText.ID() {
		return
	}

	expected := []string{lex.TokenEndOfText.Human()}
	msg := fmt.Sprintf("unexpected %s after a complete %s", tok.Class().Human(), rule)
	run.errors = append(run.errors, syntaxErrorFromToken(msg, rule, expected, tok))
}

// collectErrors merges the run's syntax errors with the lexical errors its
// token source recorded, ordered by source position.
func (run *parseRun) collectErrors() []error {
	all := make([]error, 0, len(run.errors))
	for _, le := range run.ts.LexicalErrors() {
		all = append(all, le)
	}
	all = append(all, run.errors...)

	sort.SliceStable(all, func(i, j int) bool {
		li, pi := errPos(all[i])
		lj, pj := errPos(all[j])
		if li != lj {
			return li < lj
		}
		return pi < pj
	})

	return all
}

// errPos extracts a sortable source position from the error types a parse
// can produce. Errors with no position sort last.
func errPos(err error) (line, pos int) {
	switch e := err.(type) {
	case lex.Error:
		line, pos = e.Line(), e.Position()
	case SyntaxError:
		line, pos = e.Line(), e.Position()
	case EndOfInputError:
		line, pos = e.Line(), e.Position()
	}
	if line == 0 {
		line = int(^uint(0) >> 1)
	}
	return line, pos
}
