package grammar

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dekarrin/esox/lex"
)

// This file holds a small text notation for building grammars, mostly so
// tests and example programs do not need to assemble Element structures by
// hand. It is not a grammar file format; callers integrating esox supply
// their grammar as the in-memory form directly.
//
// The notation is one rule per statement, terminated by ";":
//
//	init  -> '{' value ( ',' value )* '}' ;
//	value -> init | int ;
//
// Quoted symbols and any name that never appears on the left of a "->" are
// terminals; terminals made from names get the lower-cased name as their
// token class ID. "ε" (or an empty alternative) is the epsilon production.
// Elements may be grouped with parentheses and quantified with "?", "*", or
// "+".

var gramTokenPat = regexp.MustCompile(`'(?:[^'\\]|\\.)*'|[A-Za-z_][A-Za-z0-9_]*|->|[()|;?*+]|ε|\S`)

type gramSym struct {
	text   string
	quoted bool
}

// rawElement mirrors Element before rule/terminal resolution has happened.
type rawElement struct {
	sym   gramSym
	group []rawElement
	quant Quant
}

// Parse builds a Grammar from the fixture notation described above.
func Parse(notation string) (Grammar, error) {
	syms := scanNotation(notation)

	type rawRule struct {
		head string
		alts [][]rawElement
	}
	var rawRules []rawRule

	pos := 0
	for pos < len(syms) {
		if pos+1 >= len(syms) || syms[pos].quoted || syms[pos+1].text != "->" || syms[pos+1].quoted {
			return Grammar{}, fmt.Errorf("expected RULENAME -> at symbol %d (%q)", pos, syms[pos].text)
		}
		head := syms[pos].text
		pos += 2

		var alts [][]rawElement
		var cur []rawElement
		done := false
		for !done {
			if pos >= len(syms) {
				return Grammar{}, fmt.Errorf("rule %q is not terminated with a ';'", head)
			}

			elem, n, err := parseRawElement(syms, pos, head)
			if err != nil {
				return Grammar{}, err
			}
			if n > 0 {
				cur = append(cur, elem)
				pos += n
				continue
			}

			switch syms[pos].text {
			case "|":
				alts = append(alts, cur)
				cur = nil
				pos++
			case ";":
				alts = append(alts, cur)
				pos++
				done = true
			default:
				return Grammar{}, fmt.Errorf("rule %q: unexpected %q", head, syms[pos].text)
			}
		}

		rawRules = append(rawRules, rawRule{head: head, alts: alts})
	}

	heads := map[string]bool{}
	for i := range rawRules {
		heads[rawRules[i].head] = true
	}

	var g Grammar
	var resolve func(raw []rawElement) []Element
	resolve = func(raw []rawElement) []Element {
		elems := make([]Element, len(raw))
		for i := range raw {
			r := raw[i]
			var e Element
			if r.group != nil {
				e = Element{Group: resolve(r.group)}
			} else if !r.sym.quoted && heads[r.sym.text] {
				e = Ref(r.sym.text)
			} else if r.sym.quoted {
				lit := unquoteSym(r.sym.text)
				g.AddTerm(lex.NewTokenClass(lit, "'"+lit+"'"))
				e = Term(lit)
			} else {
				id := strings.ToLower(r.sym.text)
				g.AddTerm(lex.NewTokenClass(id, r.sym.text))
				e = Term(id)
			}
			e.Quant = r.quant
			elems[i] = e
		}
		return elems
	}

	for i := range rawRules {
		for _, alt := range rawRules[i].alts {
			g.AddRule(rawRules[i].head, resolve(alt))
		}
	}

	if err := g.Validate(); err != nil {
		return Grammar{}, err
	}

	return g, nil
}

// MustParse is like Parse but panics on a bad notation string. For use with
// fixture grammars known to be good.
func MustParse(notation string) Grammar {
	g, err := Parse(notation)
	if err != nil {
		panic(err.Error())
	}
	return g
}

func scanNotation(notation string) []gramSym {
	rawSyms := gramTokenPat.FindAllString(notation, -1)

	var syms []gramSym
	for _, s := range rawSyms {
		if s == "ε" {
			// epsilon stands for "no elements"; representing it as nothing
			// at all makes the alternative come out empty
			continue
		}
		syms = append(syms, gramSym{
			text:   s,
			quoted: strings.HasPrefix(s, "'"),
		})
	}
	return syms
}

// parseRawElement parses one element (primary plus optional quantifier)
// starting at syms[pos]. Returns the number of symbols consumed, which is 0
// if syms[pos] cannot start an element.
func parseRawElement(syms []gramSym, pos int, inRule string) (rawElement, int, error) {
	s := syms[pos]

	if !s.quoted && (s.text == "|" || s.text == ";" || s.text == ")" || s.text == "->" || s.text == "?" || s.text == "*" || s.text == "+") {
		return rawElement{}, 0, nil
	}

	var elem rawElement
	consumed := 0

	if !s.quoted && s.text == "(" {
		var group []rawElement
		i := pos + 1
		for {
			if i >= len(syms) {
				return rawElement{}, 0, fmt.Errorf("rule %q: unclosed group", inRule)
			}
			if !syms[i].quoted && syms[i].text == ")" {
				i++
				break
			}
			sub, n, err := parseRawElement(syms, i, inRule)
			if err != nil {
				return rawElement{}, 0, err
			}
			if n == 0 {
				return rawElement{}, 0, fmt.Errorf("rule %q: unexpected %q in group", inRule, syms[i].text)
			}
			group = append(group, sub)
			i += n
		}
		if len(group) == 0 {
			return rawElement{}, 0, fmt.Errorf("rule %q: empty group", inRule)
		}
		elem = rawElement{group: group}
		consumed = i - pos
	} else {
		elem = rawElement{sym: s}
		consumed = 1
	}

	// optional quantifier suffix
	if pos+consumed < len(syms) && !syms[pos+consumed].quoted {
		switch syms[pos+consumed].text {
		case "?":
			elem.quant = QuantOptional
			consumed++
		case "*":
			elem.quant = QuantZeroOrMore
			consumed++
		case "+":
			elem.quant = QuantOneOrMore
			consumed++
		}
	}

	return elem, consumed, nil
}

func unquoteSym(s string) string {
	body := s[1 : len(s)-1]
	body = strings.ReplaceAll(body, `\'`, `'`)
	body = strings.ReplaceAll(body, `\\`, `\`)
	return body
}
