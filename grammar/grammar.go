// Package grammar provides the in-memory description of a language that the
// esox parser executes: named rules made of ordered alternatives, where each
// alternative is a sequence of terminal references, rule references, and
// quantified inline groups. A Grammar is immutable once handed to a parser
// and may be shared freely between parser instances.
package grammar

import (
	"fmt"
	"strings"

	"github.com/dekarrin/esox/internal/util"
	"github.com/dekarrin/esox/lex"
)

// Quant is how many times an element may be matched in sequence.
type Quant int

const (
	// QuantOne matches the element exactly once.
	QuantOne Quant = iota

	// QuantOptional matches the element zero or one time (the "?" suffix).
	QuantOptional

	// QuantZeroOrMore matches the element any number of times, including
	// none (the "*" suffix).
	QuantZeroOrMore

	// QuantOneOrMore matches the element one or more times (the "+" suffix).
	QuantOneOrMore
)

func (q Quant) String() string {
	switch q {
	case QuantOne:
		return ""
	case QuantOptional:
		return "?"
	case QuantZeroOrMore:
		return "*"
	case QuantOneOrMore:
		return "+"
	default:
		return fmt.Sprintf("Quant<%d>", int(q))
	}
}

// Element is one entry in an alternative's sequence: a terminal reference, a
// rule reference, or an inline group of further elements, optionally
// quantified. Exactly one of Terminal, RuleRef, and Group is set.
type Element struct {
	// Terminal is the ID of a terminal's token class, if this element
	// references a terminal.
	Terminal string

	// RuleRef is the name of a rule, if this element references one.
	RuleRef string

	// Group is an inline sequence of elements, if this element is a group.
	// Matches of a group's elements are appended flat to the node of the
	// rule being parsed; a group never produces a node of its own.
	Group []Element

	// Quant is how many times the element may match. The zero value is
	// QuantOne.
	Quant Quant
}

// Term returns an Element referencing the terminal with the given token class
// ID.
func Term(classID string) Element {
	return Element{Terminal: classID}
}

// Ref returns an Element referencing the rule with the given name.
func Ref(rule string) Element {
	return Element{RuleRef: rule}
}

// Group returns an Element wrapping the given elements as an inline sequence.
func Group(elems ...Element) Element {
	return Element{Group: elems}
}

// Times returns a copy of the element with the given quantifier applied.
func (e Element) Times(q Quant) Element {
	e.Quant = q
	return e
}

// IsTerminal returns whether the element references a terminal.
func (e Element) IsTerminal() bool {
	return e.Terminal != ""
}

// IsRuleRef returns whether the element references a rule.
func (e Element) IsRuleRef() bool {
	return e.RuleRef != ""
}

// IsGroup returns whether the element is an inline group.
func (e Element) IsGroup() bool {
	return len(e.Group) > 0
}

// Copy returns a deep-copied duplicate of this element.
func (e Element) Copy() Element {
	e2 := Element{
		Terminal: e.Terminal,
		RuleRef:  e.RuleRef,
		Quant:    e.Quant,
	}
	if e.Group != nil {
		e2.Group = make([]Element, len(e.Group))
		for i := range e.Group {
			e2.Group[i] = e.Group[i].Copy()
		}
	}
	return e2
}

// Equal returns whether the element is equal to another value. It will not be
// equal if the other value cannot be cast to Element or *Element.
func (e Element) Equal(o any) bool {
	other, ok := o.(Element)
	if !ok {
		otherPtr, ok := o.(*Element)
		if !ok {
			return false
		} else if otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	if e.Terminal != other.Terminal {
		return false
	} else if e.RuleRef != other.RuleRef {
		return false
	} else if e.Quant != other.Quant {
		return false
	} else if len(e.Group) != len(other.Group) {
		return false
	}

	for i := range e.Group {
		if !e.Group[i].Equal(other.Group[i]) {
			return false
		}
	}

	return true
}

func (e Element) String() string {
	var body string
	if e.IsGroup() {
		parts := make([]string, len(e.Group))
		for i := range e.Group {
			parts[i] = e.Group[i].String()
		}
		body = "( " + strings.Join(parts, " ") + " )"
	} else if e.IsRuleRef() {
		body = e.RuleRef
	} else {
		body = e.Terminal
	}

	return body + e.Quant.String()
}

// Production is one alternative of a rule: an ordered sequence of elements.
// An empty Production is an epsilon alternative and matches no tokens.
type Production []Element

// Epsilon is the empty production.
var Epsilon = Production{}

// Copy returns a deep-copied duplicate of this production.
func (p Production) Copy() Production {
	p2 := make(Production, len(p))
	for i := range p {
		p2[i] = p[i].Copy()
	}
	return p2
}

// Equal returns whether Production is equal to another value. It will not be
// equal if the other value cannot be cast to Production or *Production.
func (p Production) Equal(o any) bool {
	other, ok := o.(Production)
	if !ok {
		otherPtr, ok := o.(*Production)
		if !ok {
			return false
		} else if otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if !p[i].Equal(other[i]) {
			return false
		}
	}

	return true
}

func (p Production) String() string {
	if len(p) == 0 {
		return "ε"
	}

	parts := make([]string, len(p))
	for i := range p {
		parts[i] = p[i].String()
	}
	return strings.Join(parts, " ")
}

// Rule is a named phrase-structure definition: a non-terminal and its ordered
// list of alternatives. Alternative order is semantically significant; when
// prediction cannot tell two alternatives apart, the one listed first wins.
type Rule struct {
	NonTerminal string
	Productions []Production
}

// Copy returns a deep-copy duplicate of this rule.
func (r Rule) Copy() Rule {
	r2 := Rule{
		NonTerminal: r.NonTerminal,
		Productions: make([]Production, len(r.Productions)),
	}
	for i := range r.Productions {
		r2.Productions[i] = r.Productions[i].Copy()
	}
	return r2
}

// Equal returns whether Rule is equal to another value. It will not be equal
// if the other value cannot be cast to Rule or *Rule.
func (r Rule) Equal(o any) bool {
	other, ok := o.(Rule)
	if !ok {
		otherPtr, ok := o.(*Rule)
		if !ok {
			return false
		} else if otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	if r.NonTerminal != other.NonTerminal {
		return false
	}
	return util.EqualSlices(r.Productions, other.Productions)
}

func (r Rule) String() string {
	alts := make([]string, len(r.Productions))
	for i := range r.Productions {
		alts[i] = r.Productions[i].String()
	}
	return fmt.Sprintf("%s -> %s ;", r.NonTerminal, strings.Join(alts, " | "))
}

// Grammar is a complete description of a language's phrase structure: its
// terminals (with their token classes) and its rules. Rules keep the order
// they were added in; the first-added rule is the start symbol unless
// SetStart overrides it.
type Grammar struct {
	rulesByName map[string]int
	rules       []Rule
	terminals   map[string]lex.TokenClass
	start       string
}

// AddTerm adds the given terminal to the grammar, referenced in elements by
// the class's ID.
func (g *Grammar) AddTerm(class lex.TokenClass) {
	if g.terminals == nil {
		g.terminals = map[string]lex.TokenClass{}
	}
	g.terminals[class.ID()] = class
}

// AddRule adds the given production as the next alternative of the rule with
// the given name, creating the rule if it does not exist yet. The first rule
// ever added becomes the start symbol.
func (g *Grammar) AddRule(nonterminal string, p Production) {
	if g.rulesByName == nil {
		g.rulesByName = map[string]int{}
	}

	idx, ok := g.rulesByName[nonterminal]
	if !ok {
		g.rules = append(g.rules, Rule{NonTerminal: nonterminal})
		idx = len(g.rules) - 1
		g.rulesByName[nonterminal] = idx
		if g.start == "" {
			g.start = nonterminal
		}
	}

	g.rules[idx].Productions = append(g.rules[idx].Productions, p)
}

// SetStart sets the start symbol of the grammar.
func (g *Grammar) SetStart(rule string) {
	g.start = rule
}

// Start returns the start symbol of the grammar.
func (g Grammar) Start() string {
	return g.start
}

// Rule returns the rule with the given name. The returned rule will have a
// blank NonTerminal if no rule of that name exists.
func (g Grammar) Rule(nonterminal string) Rule {
	idx, ok := g.rulesByName[nonterminal]
	if !ok {
		return Rule{}
	}
	return g.rules[idx]
}

// HasRule returns whether a rule with the given name exists in the grammar.
func (g Grammar) HasRule(nonterminal string) bool {
	_, ok := g.rulesByName[nonterminal]
	return ok
}

// Term returns the token class of the terminal with the given ID, or
// lex.TokenUndefined if it is not registered.
func (g Grammar) Term(id string) lex.TokenClass {
	class, ok := g.terminals[id]
	if !ok {
		return lex.TokenUndefined
	}
	return class
}

// IsTerm returns whether the given ID names a registered terminal.
func (g Grammar) IsTerm(id string) bool {
	_, ok := g.terminals[id]
	return ok
}

// TermFor returns the ID of the terminal whose class matches the given one,
// or the empty string if no terminal of the grammar uses it.
func (g Grammar) TermFor(class lex.TokenClass) string {
	for id := range g.terminals {
		if g.terminals[id].Equal(class) {
			return id
		}
	}
	return ""
}

// NonTerminals returns the names of all rules, in the order they were first
// added.
func (g Grammar) NonTerminals() []string {
	names := make([]string, len(g.rules))
	for i := range g.rules {
		names[i] = g.rules[i].NonTerminal
	}
	return names
}

// Terminals returns the IDs of all registered terminals in a stable order.
func (g Grammar) Terminals() []string {
	return util.OrderedKeys(g.terminals)
}

// Copy returns a deep-copied duplicate of the grammar.
func (g Grammar) Copy() Grammar {
	g2 := Grammar{
		rulesByName: make(map[string]int, len(g.rulesByName)),
		rules:       make([]Rule, len(g.rules)),
		terminals:   make(map[string]lex.TokenClass, len(g.terminals)),
		start:       g.start,
	}

	for k := range g.rulesByName {
		g2.rulesByName[k] = g.rulesByName[k]
	}
	for i := range g.rules {
		g2.rules[i] = g.rules[i].Copy()
	}
	for k := range g.terminals {
		g2.terminals[k] = g.terminals[k]
	}

	return g2
}

func (g Grammar) String() string {
	var sb strings.Builder
	for i := range g.rules {
		sb.WriteString(g.rules[i].String())
		if i+1 < len(g.rules) {
			sb.WriteRune('\n')
		}
	}
	return sb.String()
}

// Validate checks the grammar for configuration problems that would make
// parsing with it undefined: no rules at all, a rule with no alternatives, a
// reference to a rule or terminal that does not exist, an empty inline
// group, or a start symbol naming a non-existent rule. Parser construction
// calls this and refuses bad grammars before any parsing begins.
func (g Grammar) Validate() error {
	if len(g.rules) == 0 {
		return fmt.Errorf("grammar has no rules")
	}
	if !g.HasRule(g.start) {
		return fmt.Errorf("start symbol %q is not a rule of the grammar", g.start)
	}

	for i := range g.rules {
		r := g.rules[i]
		if len(r.Productions) == 0 {
			return fmt.Errorf("rule %q has no alternatives", r.NonTerminal)
		}
		for j := range r.Productions {
			if err := g.validateSeq(r.Productions[j], r.NonTerminal); err != nil {
				return err
			}
		}
	}

	return nil
}

func (g Grammar) validateSeq(seq []Element, inRule string) error {
	for i := range seq {
		e := seq[i]

		set := 0
		if e.Terminal != "" {
			set++
		}
		if e.RuleRef != "" {
			set++
		}
		if len(e.Group) > 0 {
			set++
		}
		if set != 1 {
			return fmt.Errorf("rule %q: element %s must be exactly one of terminal, rule ref, or group", inRule, e.String())
		}

		if e.IsTerminal() && !g.IsTerm(e.Terminal) {
			return fmt.Errorf("rule %q references terminal %q, which is not registered", inRule, e.Terminal)
		}
		if e.IsRuleRef() && !g.HasRule(e.RuleRef) {
			return fmt.Errorf("rule %q references rule %q, which does not exist", inRule, e.RuleRef)
		}
		if e.IsGroup() {
			if err := g.validateSeq(e.Group, inRule); err != nil {
				return err
			}
		}
	}
	return nil
}
