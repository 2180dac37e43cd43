package presentation

import (
	"sort"
	"strconv"
	"strings"

	"github.com/agentic-research/xbrlgraph/internal/graph"
	"github.com/agentic-research/xbrlgraph/internal/xbrl"
)

// RootID is the id and name of the synthetic document root.
const RootID = "ROOT"

// Node is one row of the presentation hierarchy. Nodes are identified by
// id; several ids may share a name.
type Node struct {
	tree *Tree

	id        string
	name      string
	labelID   string
	labelRole string
	role      string
	order     float64
	priority  float64

	parent   *Node
	children []*Node
	facts    []*xbrl.FactValue
}

func (t *Tree) newNode(id, name string) *Node {
	return &Node{tree: t, id: id, name: name, labelRole: xbrl.DefaultRole}
}

func (n *Node) ID() string         { return n.id }
func (n *Node) Name() string       { return n.name }
func (n *Node) Role() string       { return n.role }
func (n *Node) LabelRole() string  { return n.labelRole }
func (n *Node) Order() float64     { return n.order }
func (n *Node) Priority() float64  { return n.priority }
func (n *Node) IsRoot() bool       { return n == n.tree.root }
func (n *Node) IsLeaf() bool       { return len(n.children) == 0 }
func (n *Node) HasFacts() bool     { return len(n.facts) > 0 }
func (n *Node) String() string     { return n.name + ":" + n.role + " " + strconv.Itoa(n.Level()) + "/" + strconv.Itoa(n.Sequence()) }
func (n *Node) ParentName() string { return n.Parent().nameOrEmpty() }

func (n *Node) nameOrEmpty() string {
	if n == nil {
		return ""
	}
	return n.name
}

// Parent returns the owning node, nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the direct children in presentation order.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Facts returns the value facts attached to this row.
func (n *Node) Facts() []*xbrl.FactValue {
	out := make([]*xbrl.FactValue, len(n.facts))
	copy(out, n.facts)
	return out
}

// FactsIn returns the facts reported under one of ctxs.
func (n *Node) FactsIn(ctxs []*xbrl.Context) []*xbrl.FactValue {
	var out []*xbrl.FactValue
	for _, f := range n.facts {
		if xbrl.ContainsContext(ctxs, f.Context()) {
			out = append(out, f)
		}
	}
	return out
}

// Label resolves the row label. The label id is tried first; if it only
// echoes back the id, its last path form is tried.
func (n *Node) Label() string {
	labels := n.tree.doc.Labels()
	id := n.labelID
	if id == "" {
		id = n.name
	}
	label := labels.LabelFor(id, n.labelRole).Text
	if label == id {
		label = labels.LabelFor(graph.LastPath(id), n.labelRole).Text
	}
	return label
}

// Sequence is the zero-based position among the parent's children.
func (n *Node) Sequence() int {
	if n.parent == nil {
		return 0
	}
	for i, c := range n.parent.children {
		if c == n {
			return i
		}
	}
	return 0
}

// Level is the distance from the root.
func (n *Node) Level() int {
	level := 0
	for p := n.parent; p != nil; p = p.parent {
		level++
	}
	return level
}

// ViewName is the name of the ancestor directly below the root.
func (n *Node) ViewName() string {
	if n.Level1() == nil {
		return ""
	}
	return n.Level1().name
}

// Level1 returns the ancestor directly below the root (n itself at level 1),
// or nil for the root.
func (n *Node) Level1() *Node {
	cur := n
	for cur.parent != nil && cur.parent.parent != nil {
		cur = cur.parent
	}
	if cur.parent == nil {
		return nil
	}
	return cur
}

// ChildrenEx returns n and all of its descendants in pre-order. This is the
// row sequence of a rendered table.
func (n *Node) ChildrenEx() []*Node {
	var out []*Node
	n.walk(func(c *Node) { out = append(out, c) })
	return out
}

// ChildrenExIn returns the rows of ChildrenEx whose subtree has facts in ctxs.
func (n *Node) ChildrenExIn(ctxs []*xbrl.Context) []*Node {
	var out []*Node
	for _, p := range n.ChildrenEx() {
		if p.HasValues(ctxs) {
			out = append(out, p)
		}
	}
	return out
}

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.walk(fn)
	}
}

// HasValues reports whether n or any descendant has a fact in ctxs.
func (n *Node) HasValues(ctxs []*xbrl.Context) bool {
	found := false
	n.walk(func(c *Node) {
		if found {
			return
		}
		for _, f := range c.facts {
			if xbrl.ContainsContext(ctxs, f.Context()) {
				found = true
				return
			}
		}
	})
	return found
}

// Contexts returns the distinct contexts of all facts below n, ordered by id.
func (n *Node) Contexts() []*xbrl.Context {
	return n.collectContexts(func(*xbrl.Context) bool { return true })
}

// ContextsOnAxis returns the contexts with segments (onAxis) or without.
func (n *Node) ContextsOnAxis(onAxis bool) []*xbrl.Context {
	return n.collectContexts(func(c *xbrl.Context) bool { return c.WithSegments() == onAxis })
}

// ContextsFor returns the contexts with a segment on dimension.
func (n *Node) ContextsFor(dimension string) []*xbrl.Context {
	return n.collectContexts(func(c *xbrl.Context) bool { return c.HasDimension(dimension) })
}

func (n *Node) collectContexts(keep func(*xbrl.Context) bool) []*xbrl.Context {
	seen := make(map[string]*xbrl.Context)
	n.walk(func(p *Node) {
		for _, f := range p.facts {
			c := f.Context()
			if c == nil || !keep(c) {
				continue
			}
			if _, ok := seen[c.ID]; !ok {
				seen[c.ID] = c
			}
		}
	})
	out := make([]*xbrl.Context, 0, len(seen))
	for _, c := range seen {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return xbrl.CompareContexts(out[i], out[j]) < 0 })
	return out
}

// Dimensions returns the distinct segment dimensions used below n, sorted.
func (n *Node) Dimensions() []string {
	seen := make(map[string]bool)
	n.walk(func(p *Node) {
		for _, f := range p.facts {
			c := f.Context()
			if c == nil {
				continue
			}
			for _, s := range c.Segments {
				seen[s.Dimension] = true
			}
		}
	})
	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// ParameterNames returns the distinct parameters of the facts in ctxs, sorted.
func (n *Node) ParameterNames(ctxs []*xbrl.Context) []string {
	seen := make(map[string]bool)
	for _, f := range n.FactsIn(ctxs) {
		seen[f.Parameter()] = true
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Value is the value reported for ctx. It is empty unless exactly one fact
// matches.
func (n *Node) Value(ctx *xbrl.Context) string {
	facts := n.FactsIn([]*xbrl.Context{ctx})
	if len(facts) != 1 {
		return ""
	}
	return facts[0].Value()
}

// UOM is the unit shared by all facts in ctxs, "" when there is none or
// more than one.
func (n *Node) UOM(ctxs []*xbrl.Context) string {
	var uom string
	for _, f := range n.FactsIn(ctxs) {
		u := f.Unit()
		if u == "" {
			continue
		}
		if uom != "" && u != uom {
			return ""
		}
		uom = u
	}
	return uom
}

// indent renders the row label with one dash per level below the view.
func (n *Node) indent() string {
	level := n.Level() - 1
	if level < 0 {
		level = 0
	}
	return strings.Repeat("-", level) + n.Label()
}

func (n *Node) isAncestorOf(o *Node) bool {
	for p := o; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

func (n *Node) clear() {
	for _, c := range n.children {
		c.clear()
	}
	n.children = nil
	n.facts = nil
}
