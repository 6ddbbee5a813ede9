// Package walk provides traversal of parse trees in two styles. Listener
// walks visit every node in depth-first, left-to-right order and fire hooks
// on the way; the hooks cannot change where the walk goes. Visitor walks
// hand control to the hooks themselves, which decide whether and when to
// descend, so a visitor can skip or reorder subtrees.
package walk

import (
	"github.com/dekarrin/esox/parse"
)

// Hook is called with the node a walk has arrived at.
type Hook func(node *parse.Tree)

// HookMap maps rule names to hooks. A rule with no entry simply fires
// nothing; the walk still descends through it.
type HookMap map[string]Hook

// Listener is a set of hooks fired during a full traversal. Any field may be
// left unset.
type Listener struct {
	// Enter hooks are keyed by rule name and fire when the walk arrives at
	// an interior node, before any of its children.
	Enter HookMap

	// Exit hooks are keyed by rule name and fire after all of an interior
	// node's children have been walked.
	Exit HookMap

	// Terminal fires for every leaf node, including synthesized ones.
	Terminal Hook
}

// VisitFunc is called with the walker and the node being visited. The
// function decides whether to descend; call w.VisitChildren(node) to do so.
type VisitFunc func(w *Walker, node *parse.Tree)

// VisitMap maps rule names to visit functions.
type VisitMap map[string]VisitFunc

// Visitor is a set of visit functions for a visitor-style walk. Any field
// may be left unset.
type Visitor struct {
	// ByRule maps rule names to the function that handles interior nodes of
	// that rule. An interior node whose rule has no entry is handled by
	// Default.
	ByRule VisitMap

	// Default handles interior nodes with no ByRule entry. When nil, the
	// walker descends into the node's children itself, so unhandled rules
	// are transparent rather than walls.
	Default VisitFunc

	// Terminal handles leaf nodes. When nil, leaves are counted but nothing
	// fires for them.
	Terminal VisitFunc
}

// Walker drives traversals of one parse tree. A Walker may be reused for any
// number of traversals, but only one at a time; starting a traversal while
// another is in progress on the same Walker panics.
type Walker struct {
	root    *parse.Tree
	walking bool
	visited int
	cur     *Visitor
}

// New creates a Walker over the tree rooted at root.
func New(root *parse.Tree) *Walker {
	return &Walker{root: root}
}

// Walk performs a complete depth-first, left-to-right traversal of the tree,
// firing l's hooks as it goes. Every interior node fires its Enter hook
// before any of its children and its Exit hook after all of them; every leaf
// fires Terminal. Hooks observe the traversal but cannot alter it.
func (w *Walker) Walk(l Listener) {
	w.begin()
	defer w.end()

	w.listen(w.root, l)
}

func (w *Walker) listen(node *parse.Tree, l Listener) {
	w.visited++

	if node.Terminal {
		if l.Terminal != nil {
			l.Terminal(node)
		}
		return
	}

	if h := l.Enter[node.Value]; h != nil {
		h(node)
	}
	for i := range node.Children {
		w.listen(node.Children[i], l)
	}
	if h := l.Exit[node.Value]; h != nil {
		h(node)
	}
}

// Visit starts a visitor-style traversal at the root. Only nodes the visit
// functions descend into are reached; a function that never calls
// VisitChildren truncates the walk below its node.
func (w *Walker) Visit(v Visitor) {
	w.begin()
	defer w.end()

	w.cur = &v
	defer func() {
		w.cur = nil
	}()

	w.visitNode(w.root)
}

// VisitChildren visits each child of node in order with the current
// visitor. It may only be called from within a visit function; calling it
// outside a traversal panics.
func (w *Walker) VisitChildren(node *parse.Tree) {
	if w.cur == nil {
		panic("VisitChildren called outside of a visit")
	}
	for i := range node.Children {
		w.visitNode(node.Children[i])
	}
}

func (w *Walker) visitNode(node *parse.Tree) {
	w.visited++

	if node.Terminal {
		if w.cur.Terminal != nil {
			w.cur.Terminal(w, node)
		}
		return
	}

	fn := w.cur.ByRule[node.Value]
	if fn == nil {
		fn = w.cur.Default
	}
	if fn == nil {
		// no handler anywhere for this rule; stay transparent and descend.
		w.VisitChildren(node)
		return
	}
	fn(w, node)
}

// Visited returns the number of nodes arrived at during the most recent
// traversal. For a listener walk this is always the tree's full size; for a
// visitor walk it is however many nodes the visit functions reached, which
// makes it a cheap check for accidentally truncated visits.
func (w *Walker) Visited() int {
	return w.visited
}

func (w *Walker) begin() {
	if w.walking {
		panic("walk already in progress on this Walker")
	}
	w.walking = true
	w.visited = 0
}

func (w *Walker) end() {
	w.walking = false
}
