package grammar

import (
	"fmt"

	"github.com/dekarrin/esox/lex"
	"github.com/dekarrin/rezi"
)

// This file implements binary round-tripping of grammar descriptions with
// rezi, so a resolved grammar can be cached or shipped between processes
// without re-running whatever produced it.

// MarshalBinary converts e into a slice of bytes that can be decoded with
// UnmarshalBinary.
func (e Element) MarshalBinary() ([]byte, error) {
	var enc []byte

	enc = append(enc, rezi.EncString(e.Terminal)...)
	enc = append(enc, rezi.EncString(e.RuleRef)...)
	enc = append(enc, rezi.EncInt(int(e.Quant))...)
	enc = append(enc, rezi.EncInt(len(e.Group))...)
	for i := range e.Group {
		enc = append(enc, rezi.EncBinary(e.Group[i])...)
	}

	return enc, nil
}

// UnmarshalBinary decodes a slice of bytes created by MarshalBinary into e.
// All of e's fields will be replaced by the fields decoded from data.
func (e *Element) UnmarshalBinary(data []byte) error {
	var n int
	var err error

	e.Terminal, n, err = rezi.DecString(data)
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	data = data[n:]

	e.RuleRef, n, err = rezi.DecString(data)
	if err != nil {
		return fmt.Errorf("ruleRef: %w", err)
	}
	data = data[n:]

	var qInt int
	qInt, n, err = rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("quant: %w", err)
	}
	e.Quant = Quant(qInt)
	data = data[n:]

	var groupLen int
	groupLen, n, err = rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("group count: %w", err)
	}
	data = data[n:]

	e.Group = nil
	for i := 0; i < groupLen; i++ {
		var sub Element
		n, err = rezi.DecBinary(data, &sub)
		if err != nil {
			return fmt.Errorf("group[%d]: %w", i, err)
		}
		data = data[n:]
		e.Group = append(e.Group, sub)
	}

	return nil
}

// MarshalBinary converts p into a slice of bytes that can be decoded with
// UnmarshalBinary.
func (p Production) MarshalBinary() ([]byte, error) {
	var enc []byte

	enc = append(enc, rezi.EncInt(len(p))...)
	for i := range p {
		enc = append(enc, rezi.EncBinary(p[i])...)
	}

	return enc, nil
}

// UnmarshalBinary decodes a slice of bytes created by MarshalBinary into p.
func (p *Production) UnmarshalBinary(data []byte) error {
	var n int

	count, n, err := rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("element count: %w", err)
	}
	data = data[n:]

	*p = nil
	for i := 0; i < count; i++ {
		var e Element
		n, err = rezi.DecBinary(data, &e)
		if err != nil {
			return fmt.Errorf("element[%d]: %w", i, err)
		}
		data = data[n:]
		*p = append(*p, e)
	}

	return nil
}

// MarshalBinary converts r into a slice of bytes that can be decoded with
// UnmarshalBinary.
func (r Rule) MarshalBinary() ([]byte, error) {
	var enc []byte

	enc = append(enc, rezi.EncString(r.NonTerminal)...)
	enc = append(enc, rezi.EncInt(len(r.Productions))...)
	for i := range r.Productions {
		enc = append(enc, rezi.EncBinary(r.Productions[i])...)
	}

	return enc, nil
}

// UnmarshalBinary decodes a slice of bytes created by MarshalBinary into r.
func (r *Rule) UnmarshalBinary(data []byte) error {
	var n int
	var err error

	r.NonTerminal, n, err = rezi.DecString(data)
	if err != nil {
		return fmt.Errorf("nonTerminal: %w", err)
	}
	data = data[n:]

	var prodCount int
	prodCount, n, err = rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("production count: %w", err)
	}
	data = data[n:]

	r.Productions = nil
	for i := 0; i < prodCount; i++ {
		var p Production
		n, err = rezi.DecBinary(data, &p)
		if err != nil {
			return fmt.Errorf("production[%d]: %w", i, err)
		}
		data = data[n:]
		r.Productions = append(r.Productions, p)
	}

	return nil
}

// MarshalBinary converts g into a slice of bytes that can be decoded with
// UnmarshalBinary. Terminal classes are preserved as their ID and
// human-readable name.
func (g Grammar) MarshalBinary() ([]byte, error) {
	var enc []byte

	enc = append(enc, rezi.EncString(g.start)...)

	termIDs := g.Terminals()
	enc = append(enc, rezi.EncInt(len(termIDs))...)
	for _, id := range termIDs {
		enc = append(enc, rezi.EncString(id)...)
		enc = append(enc, rezi.EncString(g.terminals[id].Human())...)
	}

	enc = append(enc, rezi.EncInt(len(g.rules))...)
	for i := range g.rules {
		enc = append(enc, rezi.EncBinary(g.rules[i])...)
	}

	return enc, nil
}

// UnmarshalBinary decodes a slice of bytes created by MarshalBinary into g.
// All of g's fields will be replaced by the fields decoded from data.
func (g *Grammar) UnmarshalBinary(data []byte) error {
	var n int
	var err error

	*g = Grammar{}

	start, n, err := rezi.DecString(data)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	data = data[n:]

	var termCount int
	termCount, n, err = rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("terminal count: %w", err)
	}
	data = data[n:]

	for i := 0; i < termCount; i++ {
		var id, human string
		id, n, err = rezi.DecString(data)
		if err != nil {
			return fmt.Errorf("terminal[%d] id: %w", i, err)
		}
		data = data[n:]
		human, n, err = rezi.DecString(data)
		if err != nil {
			return fmt.Errorf("terminal[%d] human: %w", i, err)
		}
		data = data[n:]
		g.AddTerm(lex.NewTokenClass(id, human))
	}

	var ruleCount int
	ruleCount, n, err = rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("rule count: %w", err)
	}
	data = data[n:]

	for i := 0; i < ruleCount; i++ {
		var r Rule
		n, err = rezi.DecBinary(data, &r)
		if err != nil {
			return fmt.Errorf("rule[%d]: %w", i, err)
		}
		data = data[n:]
		for j := range r.Productions {
			g.AddRule(r.NonTerminal, r.Productions[j])
		}
	}

	g.start = start

	return nil
}
