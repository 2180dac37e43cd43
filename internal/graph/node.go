package graph

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Node is the universal primitive of a filing: a tagged element with an
// ordered attribute map and exclusively owned children.
type Node struct {
	kind  Kind
	Level int   // Nesting depth inside the source fragment
	Line  int64 // Source line (0 if unknown)

	attrs    *orderedmap.OrderedMap[string, string]
	children []*Node
	parent   *Node // non-owning
	graph    *Graph
	ord      uint32
}

// Empty is returned by lookups that find nothing. Every accessor is safe to
// call on it, so lookups can be chained without nil checks.
var Empty = &Node{kind: KindEmpty}

// NewNode creates a detached node. Attach it with Graph.Append.
func NewNode(kind Kind, level int, line int64) *Node {
	return &Node{
		kind:  kind,
		Level: level,
		Line:  line,
		attrs: orderedmap.New[string, string](),
	}
}

// Kind returns the node's tag.
func (n *Node) Kind() Kind { return n.kind }

// IsEmpty reports whether n is the Empty sentinel (or nil).
func (n *Node) IsEmpty() bool { return n == nil || n.kind == KindEmpty }

// Ordinal is the node's position in document order within its graph.
func (n *Node) Ordinal() uint32 { return n.ord }

// Set stores an attribute. On an attached node the graph indexes are updated;
// once the graph is frozen the node is read-only and ErrFrozen is returned.
func (n *Node) Set(key, value string) error {
	if n.IsEmpty() {
		return ErrEmptyNode
	}
	if n.graph == nil {
		n.attrs.Set(key, value)
		return nil
	}
	return n.graph.setAttr(n, key, value)
}

// Attr returns the attribute value, or "" when absent.
func (n *Node) Attr(key string) string {
	if n.IsEmpty() {
		return ""
	}
	v, _ := n.attrs.Get(key)
	return v
}

// HasAttr reports whether key is present (even with an empty value).
func (n *Node) HasAttr(key string) bool {
	if n.IsEmpty() {
		return false
	}
	_, ok := n.attrs.Get(key)
	return ok
}

// ID is shorthand for Attr("id").
func (n *Node) ID() string { return n.Attr("id") }

// Keys returns the attribute keys in insertion order.
func (n *Node) Keys() []string {
	if n.IsEmpty() {
		return nil
	}
	keys := make([]string, 0, n.attrs.Len())
	for pair := n.attrs.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Attributes returns a copy of the attribute map.
func (n *Node) Attributes() map[string]string {
	if n.IsEmpty() {
		return map[string]string{}
	}
	out := make(map[string]string, n.attrs.Len())
	for pair := n.attrs.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = pair.Value
	}
	return out
}

// Parent returns the owning node, or Empty for roots.
func (n *Node) Parent() *Node {
	if n.IsEmpty() || n.parent == nil {
		return Empty
	}
	return n.parent
}

// Children returns the direct children, optionally restricted to kinds.
func (n *Node) Children(kinds ...Kind) []*Node {
	if n.IsEmpty() {
		return nil
	}
	if len(kinds) == 0 {
		out := make([]*Node, len(n.children))
		copy(out, n.children)
		return out
	}
	var out []*Node
	for _, c := range n.children {
		if matchKind(c.kind, kinds) {
			out = append(out, c)
		}
	}
	return out
}

// Facts returns n and all of its descendants in pre-order, optionally
// restricted to kinds.
func (n *Node) Facts(kinds ...Kind) []*Node {
	if n.IsEmpty() {
		return nil
	}
	var out []*Node
	n.walk(func(c *Node) {
		if len(kinds) == 0 || matchKind(c.kind, kinds) {
			out = append(out, c)
		}
	})
	return out
}

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.walk(fn)
	}
}

func (n *Node) String() string {
	if n.IsEmpty() {
		return "<empty>"
	}
	if id := n.ID(); id != "" {
		return n.kind.String() + "#" + id
	}
	return n.kind.String()
}

// First returns the first node of nodes, or Empty.
func First(nodes []*Node) *Node {
	if len(nodes) == 0 {
		return Empty
	}
	return nodes[0]
}

func matchKind(k Kind, kinds []Kind) bool {
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}
