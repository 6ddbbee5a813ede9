package parse

import (
	"github.com/dekarrin/esox/grammar"
	"github.com/dekarrin/esox/internal/util"
	"github.com/dekarrin/esox/lex"
)

// Prediction limits. Simulation stops extending lookahead or expanding
// configurations once these are hit and falls back to the first-declared
// viable alternative, so prediction always terminates even for grammars
// whose alternatives are not distinguishable by any finite lookahead.
const (
	maxPredictTokens  = 8
	maxPredictConfigs = 512
)

// simConfig is one possible continuation of an alternative during lookahead
// simulation. seq is the sequence of elements still to be matched; accepting
// marks a continuation that has run off the end of the alternative and so is
// compatible with any further input.
type simConfig struct {
	seq       []grammar.Element
	accepting bool
}

// altState tracks the surviving continuations of one alternative.
type altState struct {
	alt     int
	configs []simConfig
}

func (as altState) viable() bool {
	return len(as.configs) > 0
}

// predictor chooses among a rule's alternatives by examining upcoming
// tokens. Most choices resolve on the first token using the precomputed
// first sets; when several alternatives share a first token, the predictor
// simulates each of them in parallel against further lookahead until all but
// one die off or a limit is reached.
type predictor struct {
	g  grammar.Grammar
	an grammar.Analysis
}

// predict returns the index of the production of r to commit to, given the
// upcoming tokens in ts. If no alternative can begin with the current token
// (counting epsilon alternatives as viable when the token may follow the
// rule), it returns -1.
func (pd predictor) predict(r grammar.Rule, ts *TokenSource) int {
	la := laID(ts, 1)

	candidates := []int{}
	for i := range r.Productions {
		if pd.altViableOn(r, i, la) {
			candidates = append(candidates, i)
		}
	}

	if len(candidates) == 0 {
		return -1
	}
	if len(candidates) == 1 {
		return candidates[0]
	}
	return pd.simulate(r, candidates, ts)
}

// altViableOn reports whether production i of r can start with the given
// token class, treating an alternative that can match empty as viable when
// the token may follow the rule.
func (pd predictor) altViableOn(r grammar.Rule, i int, la string) bool {
	first := pd.an.SeqFirst(r.Productions[i])
	if first[la] {
		return true
	}
	if pd.an.SeqNullable(r.Productions[i]) {
		return pd.an.Follow(r.NonTerminal)[la]
	}
	return false
}

// predictExpected returns the human names of every token class that could
// have started some alternative of r, sorted by class ID so the same error
// always lists the same set in the same order. Used to phrase the error when
// predict returns -1.
func (pd predictor) predictExpected(r grammar.Rule) []string {
	all := map[string]bool{}
	for i := range r.Productions {
		for id := range pd.an.SeqFirst(r.Productions[i]) {
			all[id] = true
		}
	}

	var names []string
	for _, id := range util.OrderedKeys(all) {
		names = append(names, pd.humanFor(id))
	}
	return names
}

func (pd predictor) humanFor(id string) string {
	if id == grammar.EndOfText {
		return lex.TokenEndOfText.Human()
	}
	return pd.g.Term(id).Human()
}

// simulate runs the candidate alternatives in parallel against successive
// lookahead tokens until exactly one survives, input runs out, or a limit is
// hit. Ties always resolve to the earliest-declared surviving candidate, so
// the same grammar and input always commit to the same alternative.
func (pd predictor) simulate(r grammar.Rule, candidates []int, ts *TokenSource) int {
	states := make([]altState, len(candidates))
	for i, alt := range candidates {
		states[i] = altState{
			alt:     alt,
			configs: []simConfig{{seq: r.Productions[alt]}},
		}
	}

	for k := 1; k <= maxPredictTokens; k++ {
		la := laID(ts, k)

		survivors := 0
		for i := range states {
			if !states[i].viable() {
				continue
			}
			states[i].configs = pd.stepConfigs(states[i].configs, la)
			if states[i].viable() {
				survivors++
			}
		}

		if survivors == 1 {
			for i := range states {
				if states[i].viable() {
					return states[i].alt
				}
			}
		}
		if survivors == 0 {
			// every candidate died on this token. All of them were viable at
			// the previous depth, so commit to the first-declared one and
			// let recognition surface whatever error remains.
			return candidates[0]
		}
		if la == grammar.EndOfText {
			break
		}
	}

	// still ambiguous at the depth limit; first-declared wins.
	for i := range states {
		if states[i].viable() {
			return states[i].alt
		}
	}
	return candidates[0]
}

// stepConfigs advances every configuration by one token, returning the ones
// that remain compatible. Accepting configurations are compatible with any
// token and persist unchanged.
func (pd predictor) stepConfigs(configs []simConfig, la string) []simConfig {
	var next []simConfig
	for _, c := range configs {
		if c.accepting {
			next = append(next, c)
			continue
		}
		for _, exp := range pd.expand(c.seq, 0) {
			if exp.accepting {
				next = append(next, exp)
				continue
			}
			head := exp.seq[0]
			if head.Terminal == la {
				next = append(next, simConfig{seq: exp.seq[1:]})
			}
		}
		if len(next) > maxPredictConfigs {
			next = next[:maxPredictConfigs]
		}
	}
	return dedupeAccepting(next)
}

// expand rewrites a configuration until its head is an unquantified terminal
// or the sequence is exhausted, branching at each choice point. depth bounds
// rule-reference expansion so left-recursive rules cannot loop forever.
func (pd predictor) expand(seq []grammar.Element, depth int) []simConfig {
	if len(seq) == 0 {
		return []simConfig{{accepting: true}}
	}
	if depth > maxPredictTokens*4 {
		// too deep to resolve locally; treat as compatible with anything.
		return []simConfig{{accepting: true}}
	}

	head := seq[0]
	rest := seq[1:]

	switch head.Quant {
	case grammar.QuantOptional:
		with := append([]grammar.Element{head.Times(grammar.QuantOne)}, rest...)
		return pd.combine(pd.expand(with, depth+1), pd.expand(rest, depth+1))
	case grammar.QuantZeroOrMore:
		once := append([]grammar.Element{head.Times(grammar.QuantOne), head}, rest...)
		return pd.combine(pd.expand(once, depth+1), pd.expand(rest, depth+1))
	case grammar.QuantOneOrMore:
		once := append([]grammar.Element{head.Times(grammar.QuantOne), head.Times(grammar.QuantZeroOrMore)}, rest...)
		return pd.expand(once, depth+1)
	}

	if head.IsTerminal() {
		out := make([]grammar.Element, len(seq))
		copy(out, seq)
		return []simConfig{{seq: out}}
	}

	if head.IsGroup() {
		inlined := append(append([]grammar.Element{}, head.Group...), rest...)
		return pd.expand(inlined, depth+1)
	}

	// rule reference; branch per production.
	var out []simConfig
	for _, prod := range pd.g.Rule(head.RuleRef).Productions {
		sub := append(append([]grammar.Element{}, prod...), rest...)
		out = append(out, pd.expand(sub, depth+1)...)
		if len(out) > maxPredictConfigs {
			out = out[:maxPredictConfigs]
			break
		}
	}
	return out
}

func (pd predictor) combine(a, b []simConfig) []simConfig {
	return dedupeAccepting(append(a, b...))
}

// dedupeAccepting collapses multiple accepting configurations into one; they
// are indistinguishable from each other.
func dedupeAccepting(configs []simConfig) []simConfig {
	out := configs[:0]
	seenAccepting := false
	for _, c := range configs {
		if c.accepting {
			if seenAccepting {
				continue
			}
			seenAccepting = true
		}
		out = append(out, c)
	}
	return out
}

// laID returns the token class ID of the k-th upcoming token, mapping the
// end-of-text sentinel and anything past it to the end-of-text marker.
func laID(ts *TokenSource, k int) string {
	tok, err := ts.LA(k)
	if err != nil {
		return grammar.EndOfText
	}
	if tok.Class().ID() == lex.TokenEndOfText.ID() {
		return grammar.EndOfText
	}
	return tok.Class().ID()
}
