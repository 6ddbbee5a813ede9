package grammar

// This file computes the prediction sets of a grammar. FIRST sets drive
// alternative selection in the parser; FOLLOW sets drive error
// resynchronization. Both are computed by fixpoint iteration so that mutual
// and self recursion between rules settle out.

// EndOfText is the marker used in FIRST/FOLLOW sets for the end-of-input
// sentinel.
const EndOfText = "$"

// Analysis holds the prediction sets of a Grammar. Obtain one with Analyze.
// All sets use terminal class IDs (and EndOfText) as keys.
type Analysis struct {
	g Grammar

	// nullable[rule] is whether the rule can derive no tokens at all.
	nullable map[string]bool

	// first[rule] is every terminal that can begin a phrase of the rule.
	first map[string]map[string]bool

	// follow[rule] is every terminal that can come directly after a phrase
	// of the rule.
	follow map[string]map[string]bool
}

// Analyze computes the nullability, FIRST, and FOLLOW sets of every rule of
// the grammar. The grammar must already be valid.
func (g Grammar) Analyze() Analysis {
	an := Analysis{
		g:        g.Copy(),
		nullable: map[string]bool{},
		first:    map[string]map[string]bool{},
		follow:   map[string]map[string]bool{},
	}

	for _, name := range g.NonTerminals() {
		an.first[name] = map[string]bool{}
		an.follow[name] = map[string]bool{}
	}

	an.computeNullable()
	an.computeFirst()
	an.computeFollow()

	return an
}

// Nullable returns whether the rule with the given name can derive no tokens.
func (an Analysis) Nullable(rule string) bool {
	return an.nullable[rule]
}

// First returns every terminal ID that can begin a phrase of the given rule.
func (an Analysis) First(rule string) map[string]bool {
	return copySet(an.first[rule])
}

// Follow returns every terminal ID that can come directly after a phrase of
// the given rule.
func (an Analysis) Follow(rule string) map[string]bool {
	return copySet(an.follow[rule])
}

// ElemNullable returns whether the given element can match no tokens.
func (an Analysis) ElemNullable(e Element) bool {
	if e.Quant == QuantOptional || e.Quant == QuantZeroOrMore {
		return true
	}
	if e.IsTerminal() {
		return false
	}
	if e.IsRuleRef() {
		return an.nullable[e.RuleRef]
	}
	return an.SeqNullable(e.Group)
}

// SeqNullable returns whether the given element sequence can match no tokens.
// The empty sequence is nullable.
func (an Analysis) SeqNullable(seq []Element) bool {
	for i := range seq {
		if !an.ElemNullable(seq[i]) {
			return false
		}
	}
	return true
}

// ElemFirst returns every terminal ID that can begin a match of the given
// element.
func (an Analysis) ElemFirst(e Element) map[string]bool {
	if e.IsTerminal() {
		return map[string]bool{e.Terminal: true}
	}
	if e.IsRuleRef() {
		return copySet(an.first[e.RuleRef])
	}
	return an.SeqFirst(e.Group)
}

// SeqFirst returns every terminal ID that can begin a match of the given
// element sequence.
func (an Analysis) SeqFirst(seq []Element) map[string]bool {
	set := map[string]bool{}
	for i := range seq {
		for t := range an.ElemFirst(seq[i]) {
			set[t] = true
		}
		if !an.ElemNullable(seq[i]) {
			break
		}
	}
	return set
}

func (an *Analysis) computeNullable() {
	updated := true
	for updated {
		updated = false
		for _, name := range an.g.NonTerminals() {
			if an.nullable[name] {
				continue
			}
			r := an.g.Rule(name)
			for _, p := range r.Productions {
				if an.SeqNullable(p) {
					an.nullable[name] = true
					updated = true
					break
				}
			}
		}
	}
}

func (an *Analysis) computeFirst() {
	updated := true
	for updated {
		updated = false
		for _, name := range an.g.NonTerminals() {
			r := an.g.Rule(name)
			for _, p := range r.Productions {
				for t := range an.SeqFirst(p) {
					if !an.first[name][t] {
						an.first[name][t] = true
						updated = true
					}
				}
			}
		}
	}
}

func (an *Analysis) computeFollow() {
	an.follow[an.g.Start()][EndOfText] = true

	updated := true
	for updated {
		updated = false
		for _, name := range an.g.NonTerminals() {
			r := an.g.Rule(name)
			for _, p := range r.Productions {
				if an.addSeqFollows(p, an.follow[name]) {
					updated = true
				}
			}
		}
	}
}

// addSeqFollows records FOLLOW contributions for every rule referenced in
// seq, where seqFollow is the follow set of whatever contains the sequence.
// Reports whether any set grew.
func (an *Analysis) addSeqFollows(seq []Element, seqFollow map[string]bool) bool {
	grew := false

	for i := range seq {
		e := seq[i]

		// what can come after this element: the first set of the trailer,
		// plus the container's follow set if the trailer can be skipped,
		// plus the element's own first set if it can repeat
		after := an.SeqFirst(seq[i+1:])
		if an.SeqNullable(seq[i+1:]) {
			for t := range seqFollow {
				after[t] = true
			}
		}
		if e.Quant == QuantZeroOrMore || e.Quant == QuantOneOrMore {
			for t := range an.ElemFirst(e) {
				after[t] = true
			}
		}

		if e.IsRuleRef() {
			for t := range after {
				if !an.follow[e.RuleRef][t] {
					an.follow[e.RuleRef][t] = true
					grew = true
				}
			}
		} else if e.IsGroup() {
			if an.addSeqFollows(e.Group, after) {
				grew = true
			}
		}
	}

	return grew
}

func copySet(s map[string]bool) map[string]bool {
	s2 := make(map[string]bool, len(s))
	for k := range s {
		s2[k] = true
	}
	return s2
}
