// Package presentation rebuilds the display hierarchy of a filing from the
// flat arc lists of its presentation linkbases.
package presentation

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/agentic-research/xbrlgraph/api"
	"github.com/agentic-research/xbrlgraph/internal/graph"
	"github.com/agentic-research/xbrlgraph/internal/xbrl"
)

// Conflict records an arc whose target already had a parent. The first
// parent is kept.
type Conflict struct {
	Child    string // id of the node that was attached twice
	Kept     string // id of the parent it stays under
	Rejected string // id of the parent that was refused
	Role     string
}

// Tree is the presentation hierarchy of one document, rooted at a synthetic
// ROOT node.
type Tree struct {
	doc    *xbrl.Document
	logger *zap.Logger
	root   *Node

	suppressEmpty bool
	conflicts     []Conflict
}

// Option configures a Tree.
type Option func(*Tree)

// WithSuppressEmptyRows drops table rows without values in any shown context.
func WithSuppressEmptyRows(on bool) Option {
	return func(t *Tree) { t.suppressEmpty = on }
}

// Build reconstructs the tree from every presentation link of doc. It must
// run before concurrent readers use the tree. The tree is released by
// doc.Close.
func Build(doc *xbrl.Document, opts ...Option) *Tree {
	t := &Tree{doc: doc, logger: doc.Logger()}
	for _, opt := range opts {
		opt(t)
	}
	t.root = t.newNode(RootID, RootID)

	links := doc.Graph().Find(graph.OfKind(graph.KindPresentationLink))
	for _, link := range links {
		t.processLink(link)
	}
	t.sort(t.root)
	created := t.ExplodeLeaves()

	t.logger.Debug("presentation tree built",
		zap.Int("links", len(links)),
		zap.Int("rows", len(t.root.ChildrenEx())-1),
		zap.Int("exploded", created),
		zap.Int("conflicts", len(t.conflicts)))

	doc.OnClose(t.Close)
	return t
}

// processLink wires the arcs of one presentation link. Nodes are keyed by
// locator label within the link only.
func (t *Tree) processLink(link *graph.Node) {
	role := graph.LastPath(link.Attr("role"))
	names := make(map[string]string)    // locator label → concept name
	labelIDs := make(map[string]string) // locator label → label id
	for _, loc := range link.Children(graph.KindLoc) {
		href := loc.Attr("href")
		names[loc.Attr("label")] = graph.LastPath(href)
		labelIDs[loc.Attr("label")] = graph.LastPathDelim(href, "#")
	}

	local := make(map[string]*Node)
	get := func(id string) *Node {
		if n, ok := local[id]; ok {
			return n
		}
		n := t.newNode(id, names[id])
		n.labelID = labelIDs[id]
		n.role = role
		n.facts = t.factsFor(n.name)
		local[id] = n
		return n
	}

	var sources []*Node
	for _, arc := range link.Children(graph.KindPresentationArc) {
		from := get(arc.Attr("from"))
		from.role = role
		if preferred := graph.LastPath(arc.Attr("preferredLabel")); preferred != "" {
			from.labelRole = preferred
		}
		sources = append(sources, from)

		to := get(arc.Attr("to"))
		to.role = role
		if t.addChild(from, to) {
			to.order = parseFloat(arc.Attr("order"))
			to.priority = parseFloat(arc.Attr("priority"))
		}
	}

	for _, n := range sources {
		r := n
		for r.parent != nil {
			r = r.parent
		}
		if r != t.root {
			t.addChild(t.root, r)
		}
	}
}

// addChild attaches child below parent. A child that already has another
// parent, or that is an ancestor of parent, is left in place and the
// rejected edge is recorded.
func (t *Tree) addChild(parent, child *Node) bool {
	switch {
	case child.parent == parent:
		return true
	case child.parent != nil:
		t.conflict(child, child.parent.id, parent)
		return false
	case child.isAncestorOf(parent):
		t.conflict(child, "", parent)
		return false
	}
	child.parent = parent
	parent.children = append(parent.children, child)
	return true
}

func (t *Tree) conflict(child *Node, kept string, rejected *Node) {
	c := Conflict{Child: child.id, Kept: kept, Rejected: rejected.id, Role: child.role}
	t.conflicts = append(t.conflicts, c)
	t.logger.Warn("presentation arc rejected",
		zap.String("child", c.Child),
		zap.String("kept", c.Kept),
		zap.String("rejected", c.Rejected),
		zap.String("role", c.Role))
}

// factsFor returns the value facts carrying name, ordered by context id and
// then document order.
func (t *Tree) factsFor(name string) []*xbrl.FactValue {
	facts := t.doc.ValuesMatching(name)
	sort.SliceStable(facts, func(i, j int) bool {
		a, b := facts[i], facts[j]
		if a.ContextRef() != b.ContextRef() {
			return a.ContextRef() < b.ContextRef()
		}
		return a.Node().Ordinal() < b.Node().Ordinal()
	})
	return facts
}

func (t *Tree) sort(n *Node) {
	sort.SliceStable(n.children, func(i, j int) bool {
		return n.children[i].order < n.children[j].order
	})
	for _, c := range n.children {
		t.sort(c)
	}
}

// ExplodeLeaves turns every leaf whose facts span several parameters into a
// branch with one synthetic child per parameter. It returns the number of
// nodes created; a second run creates none.
func (t *Tree) ExplodeLeaves() int {
	created := 0
	for _, p := range t.root.ChildrenEx() {
		if !p.IsLeaf() || p.IsRoot() {
			continue
		}
		params := p.ParameterNames(p.Contexts())
		if len(params) < 2 {
			continue
		}
		p.facts = nil
		for _, param := range params {
			c := t.newNode(param, param)
			c.labelID = param
			c.role = p.role
			c.facts = t.factsFor(param)
			t.addChild(p, c)
			created++
		}
	}
	return created
}

// Root returns the synthetic ROOT node.
func (t *Tree) Root() *Node { return t.root }

// Children returns the views directly below ROOT.
func (t *Tree) Children() []*Node { return t.root.Children() }

// ChildrenEx returns every node in pre-order, ROOT first.
func (t *Tree) ChildrenEx() []*Node { return t.root.ChildrenEx() }

// Conflicts returns the arcs rejected to keep the single-parent invariant.
func (t *Tree) Conflicts() []Conflict {
	out := make([]Conflict, len(t.conflicts))
	copy(out, t.conflicts)
	return out
}

// SuppressEmptyRows reports whether tables drop rows without values.
func (t *Tree) SuppressEmptyRows() bool { return t.suppressEmpty }

// SetSuppressEmptyRows changes the table row filter.
func (t *Tree) SetSuppressEmptyRows(on bool) { t.suppressEmpty = on }

// Presentation returns the first node in pre-order named viewName, or nil.
func (t *Tree) Presentation(viewName string) *Node {
	for _, n := range t.root.ChildrenEx() {
		if n.name == viewName {
			return n
		}
	}
	return nil
}

// ForParameter returns the nodes with a fact reported for parameter.
func (t *Tree) ForParameter(parameter string) []*Node {
	var out []*Node
	for _, n := range t.root.ChildrenEx() {
		for _, f := range n.facts {
			if f.Parameter() == parameter {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// Views returns the names of the views directly below ROOT.
func (t *Tree) Views() []string {
	out := make([]string, 0, len(t.root.children))
	for _, n := range t.root.children {
		out = append(out, n.name)
	}
	return out
}

// JSON encodes the tree from ROOT.
func (t *Tree) JSON() ([]byte, error) {
	return json.Marshal(t.root.record())
}

func (n *Node) record() api.PresentationNode {
	rec := api.PresentationNode{
		ID:       n.id,
		Name:     n.name,
		Role:     n.role,
		Order:    n.order,
		Priority: n.priority,
	}
	if !n.IsRoot() {
		rec.Label = n.Label()
	}
	for _, c := range n.children {
		rec.Children = append(rec.Children, c.record())
	}
	return rec
}

// Close releases the tree's nodes and cached facts.
func (t *Tree) Close() {
	t.root.clear()
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(graph.LastPath(s)), 64)
	if err != nil {
		return 0
	}
	return f
}
