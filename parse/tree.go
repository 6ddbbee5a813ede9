package parse

import (
	"fmt"
	"strings"

	"github.com/dekarrin/esox/lex"
)

func makeTreeLevelPrefix(msg string) string {
	for len([]rune(msg)) < treeLevelPrefixNamePadAmount {
		msg = string(treeLevelPrefixNamePadChar) + msg
	}
	return fmt.Sprintf(treeLevelPrefix, msg)
}

func makeTreeLevelPrefixLast(msg string) string {
	for len([]rune(msg)) < treeLevelPrefixNamePadAmount {
		msg = string(treeLevelPrefixNamePadChar) + msg
	}
	return fmt.Sprintf(treeLevelPrefixLast, msg)
}

const (
	treeLevelEmpty               = "        "
	treeLevelOngoing             = "  |     "
	treeLevelPrefix              = "  |%s: "
	treeLevelPrefixLast          = `  \%s: `
	treeLevelPrefixNamePadChar   = '-'
	treeLevelPrefixNamePadAmount = 3
)

// Tree is a node of a parse tree. Interior nodes carry the name of the rule
// that produced them in Value; leaf nodes carry a token class id in Value and
// the matched token in Source.
//
// A node with Error set is a repair artifact: an interior error node stands
// in for a rule occurrence whose tokens could not be recognized, and a leaf
// error node with a nil Source is a token the parser synthesized to continue
// past a missing terminal.
//
// Trees are read-only once a parse returns them. Mutating a returned tree,
// including through Children, is undefined.
type Tree struct {
	Terminal bool
	Value    string
	Source   lex.Token
	Error    bool
	Children []*Tree

	parent *Tree
}

// AddChild appends child to pt's children and sets its parent link.
func (pt *Tree) AddChild(child *Tree) {
	child.parent = pt
	pt.Children = append(pt.Children, child)
}

// Parent returns the node whose Children list contains pt, or nil for the
// root.
func (pt *Tree) Parent() *Tree {
	return pt.parent
}

// RuleName returns the name of the rule this node was produced by. Returns
// an empty string for leaf nodes.
func (pt Tree) RuleName() string {
	if pt.Terminal {
		return ""
	}
	return pt.Value
}

// Token returns the token this leaf covers, or nil for interior nodes and
// synthesized leaves.
func (pt Tree) Token() lex.Token {
	if !pt.Terminal {
		return nil
	}
	return pt.Source
}

// FirstToken returns the first real token covered by this subtree, or nil if
// the subtree covers no input (an epsilon match or pure repair artifacts).
func (pt Tree) FirstToken() lex.Token {
	if pt.Terminal {
		return pt.Source
	}
	for i := range pt.Children {
		if t := pt.Children[i].FirstToken(); t != nil {
			return t
		}
	}
	return nil
}

// LastToken returns the last real token covered by this subtree, or nil if
// the subtree covers no input.
func (pt Tree) LastToken() lex.Token {
	if pt.Terminal {
		return pt.Source
	}
	for i := len(pt.Children) - 1; i >= 0; i-- {
		if t := pt.Children[i].LastToken(); t != nil {
			return t
		}
	}
	return nil
}

// TextSpan returns the concatenated lexemes of every real token covered by
// this subtree, in source order. Synthesized leaves contribute nothing.
func (pt Tree) TextSpan() string {
	var sb strings.Builder
	pt.writeSpan(&sb)
	return sb.String()
}

func (pt Tree) writeSpan(sb *strings.Builder) {
	if pt.Terminal {
		if pt.Source != nil {
			sb.WriteString(pt.Source.Lexeme())
		}
		return
	}
	for i := range pt.Children {
		pt.Children[i].writeSpan(sb)
	}
}

// Size returns the total number of nodes in the subtree rooted at pt,
// including pt itself.
func (pt Tree) Size() int {
	n := 1
	for i := range pt.Children {
		n += pt.Children[i].Size()
	}
	return n
}

// SExpr returns the canonical single-line form of the subtree. Interior
// nodes render as "(name child child ...)", leaves as their lexeme, interior
// error nodes as "(name <error>)", and synthesized leaves as "<missing X>"
// where X is the token class that was inserted. Two trees that render the
// same SExpr cover the same recognized structure.
func (pt Tree) SExpr() string {
	var sb strings.Builder
	pt.writeSExpr(&sb)
	return sb.String()
}

func (pt Tree) writeSExpr(sb *strings.Builder) {
	if pt.Terminal {
		if pt.Source == nil {
			sb.WriteString("<missing " + pt.Value + ">")
		} else {
			sb.WriteString(pt.Source.Lexeme())
		}
		return
	}

	sb.WriteRune('(')
	sb.WriteString(pt.Value)
	if pt.Error && len(pt.Children) == 0 {
		sb.WriteString(" <error>")
	}
	for i := range pt.Children {
		sb.WriteRune(' ')
		pt.Children[i].writeSExpr(sb)
	}
	sb.WriteRune(')')
}

// String returns a prettified representation of the entire parse tree
// suitable for use in line-by-line comparisons of tree structure. Two parse
// trees are considered semantically identical if they produce identical
// String() output.
func (pt Tree) String() string {
	return pt.leveledStr("", "")
}

func (pt Tree) leveledStr(firstPrefix, contPrefix string) string {
	var sb strings.Builder

	sb.WriteString(firstPrefix)
	if pt.Terminal {
		lexeme := ""
		if pt.Source != nil {
			lexeme = pt.Source.Lexeme()
		}
		if pt.Error {
			sb.WriteString(fmt.Sprintf("(MISSING %q)", pt.Value))
		} else {
			sb.WriteString(fmt.Sprintf("(TERM %q)", lexeme))
		}
	} else if pt.Error && len(pt.Children) == 0 {
		sb.WriteString(fmt.Sprintf("( %s <ERR> )", pt.Value))
	} else {
		sb.WriteString(fmt.Sprintf("( %s )", pt.Value))
	}

	for i := range pt.Children {
		sb.WriteRune('\n')
		var leveledFirstPrefix string
		var leveledContPrefix string
		if i+1 < len(pt.Children) {
			leveledFirstPrefix = contPrefix + makeTreeLevelPrefix("")
			leveledContPrefix = contPrefix + treeLevelOngoing
		} else {
			leveledFirstPrefix = contPrefix + makeTreeLevelPrefixLast("")
			leveledContPrefix = contPrefix + treeLevelEmpty
		}
		itemOut := pt.Children[i].leveledStr(leveledFirstPrefix, leveledContPrefix)
		sb.WriteString(itemOut)
	}

	return sb.String()
}

// Copy returns a deep copy of the subtree rooted at pt. The copy's root has
// no parent; parent links inside the copy are rebuilt.
func (pt Tree) Copy() *Tree {
	newPt := &Tree{
		Terminal: pt.Terminal,
		Value:    pt.Value,
		Source:   pt.Source,
		Error:    pt.Error,
	}
	for i := range pt.Children {
		newPt.AddChild(pt.Children[i].Copy())
	}
	return newPt
}

// Equal returns whether the parse tree is equal to the given object. If the
// given object is not a Tree, returns false, else returns whether the two
// parse trees have the exact same structure, error marks, and leaf lexemes.
// Parent links are not compared.
func (pt Tree) Equal(o any) bool {
	other, ok := o.(Tree)
	if !ok {
		// also okay if its the pointer value, as long as its non-nil
		otherPtr, ok := o.(*Tree)
		if !ok {
			return false
		} else if otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	if pt.Terminal != other.Terminal {
		return false
	} else if pt.Value != other.Value {
		return false
	} else if pt.Error != other.Error {
		return false
	} else if pt.Terminal {
		ptLexeme := ""
		otherLexeme := ""
		if pt.Source != nil {
			ptLexeme = pt.Source.Lexeme()
		}
		if other.Source != nil {
			otherLexeme = other.Source.Lexeme()
		}
		if ptLexeme != otherLexeme {
			return false
		}
	}

	// check every sub tree
	if len(pt.Children) != len(other.Children) {
		return false
	}
	for i := range pt.Children {
		if !pt.Children[i].Equal(other.Children[i]) {
			return false
		}
	}
	return true
}
