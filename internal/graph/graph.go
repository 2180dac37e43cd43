package graph

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring"
)

var (
	ErrFrozen        = errors.New("graph is frozen")
	ErrAttached      = errors.New("node already attached")
	ErrForeignParent = errors.New("parent belongs to another graph")
	ErrEmptyNode     = errors.New("empty node is read-only")
)

// Query selects nodes. Kinds are OR-ed (none = any kind); Values are AND-ed,
// each matching any attribute value of the node.
type Query struct {
	Kinds  []Kind
	Values []string
}

// OfKind is a convenience constructor for a kind-only query.
func OfKind(kinds ...Kind) Query { return Query{Kinds: kinds} }

// Graph is the document-wide fact forest plus its lookup indexes.
//
// Construction (Append, Set) is single-writer and ends with Freeze. After that
// the graph is read-only and safe for concurrent lookups.
type Graph struct {
	mu     sync.RWMutex
	nodes  []*Node
	roots  []*Node
	frozen bool

	// Roaring bitmap indexes over node ordinals.
	kinds  map[Kind]*roaring.Bitmap
	values map[string]*roaring.Bitmap // attribute value → nodes carrying it
	ids    map[string]*roaring.Bitmap // "id" attribute → nodes

	lookups atomic.Int64
}

func New() *Graph {
	return &Graph{
		kinds:  make(map[Kind]*roaring.Bitmap),
		values: make(map[string]*roaring.Bitmap),
		ids:    make(map[string]*roaring.Bitmap),
	}
}

// Append attaches n under parent (nil = new root) and indexes it.
func (g *Graph) Append(parent, n *Node) error {
	if n.IsEmpty() {
		return ErrEmptyNode
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.frozen {
		return ErrFrozen
	}
	if n.graph != nil {
		return ErrAttached
	}
	if parent != nil && parent.graph != g {
		return ErrForeignParent
	}

	n.graph = g
	n.ord = uint32(len(g.nodes))
	g.nodes = append(g.nodes, n)
	if parent == nil {
		g.roots = append(g.roots, n)
	} else {
		n.parent = parent
		parent.children = append(parent.children, n)
	}

	addBit(g.kinds, n.kind, n.ord)
	for pair := n.attrs.Oldest(); pair != nil; pair = pair.Next() {
		g.indexAttr(n, pair.Key, pair.Value)
	}
	return nil
}

func (g *Graph) setAttr(n *Node, key, value string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.frozen {
		return ErrFrozen
	}
	if old, ok := n.attrs.Get(key); ok {
		if old == value {
			return nil
		}
		g.unindexAttr(n, key, old)
	}
	n.attrs.Set(key, value)
	g.indexAttr(n, key, value)
	return nil
}

// indexAttr must be called with g.mu held.
func (g *Graph) indexAttr(n *Node, key, value string) {
	for _, v := range indexKeys(key, value) {
		addBit(g.values, v, n.ord)
	}
	if key == "id" && value != "" {
		addBit(g.ids, value, n.ord)
	}
}

// unindexAttr must be called with g.mu held. A value shared by two
// attributes of the same node is re-added by the caller's indexAttr if needed.
func (g *Graph) unindexAttr(n *Node, key, value string) {
	for _, v := range indexKeys(key, value) {
		if still := g.otherAttrCarries(n, key, v); still {
			continue
		}
		if bm, ok := g.values[v]; ok {
			bm.Remove(n.ord)
		}
	}
	if key == "id" {
		if bm, ok := g.ids[value]; ok {
			bm.Remove(n.ord)
		}
	}
}

func (g *Graph) otherAttrCarries(n *Node, skip, v string) bool {
	for pair := n.attrs.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key == skip {
			continue
		}
		for _, k := range indexKeys(pair.Key, pair.Value) {
			if k == v {
				return true
			}
		}
	}
	return false
}

// maxIndexedValue keeps text blocks out of the value index.
const maxIndexedValue = 512

// indexKeys lists the lookup keys an attribute contributes. Locator hrefs are
// additionally reachable by fragment and by last path, since that is how the
// linkbases name concepts.
func indexKeys(key, value string) []string {
	if value == "" || len(value) > maxIndexedValue {
		return nil
	}
	keys := []string{value}
	if key == "href" {
		if frag := LastPathDelim(value, "#"); frag != value {
			keys = append(keys, frag)
		}
		if last := LastPath(value); last != value && last != keys[len(keys)-1] {
			keys = append(keys, last)
		}
	}
	return keys
}

func addBit[K comparable](m map[K]*roaring.Bitmap, key K, ord uint32) {
	bm, ok := m[key]
	if !ok {
		bm = roaring.New()
		m[key] = bm
	}
	bm.Add(ord)
}

// Freeze ends construction. Further Append/Set calls fail with ErrFrozen.
func (g *Graph) Freeze() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.frozen {
		return
	}
	g.frozen = true
	for _, bm := range g.values {
		bm.RunOptimize()
	}
}

// Frozen reports whether Freeze has been called.
func (g *Graph) Frozen() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.frozen
}

// Find returns the nodes matching q in document order. Nothing found yields
// an empty slice, never an error.
func (g *Graph) Find(q Query) []*Node {
	g.lookups.Add(1)
	g.mu.RLock()
	defer g.mu.RUnlock()

	var sets []*roaring.Bitmap
	if len(q.Kinds) > 0 {
		var ks []*roaring.Bitmap
		for _, k := range q.Kinds {
			if bm, ok := g.kinds[k]; ok {
				ks = append(ks, bm)
			}
		}
		if len(ks) == 0 {
			return nil
		}
		sets = append(sets, roaring.FastOr(ks...))
	}
	for _, v := range q.Values {
		bm, ok := g.values[v]
		if !ok {
			return nil
		}
		sets = append(sets, bm)
	}

	if len(sets) == 0 {
		out := make([]*Node, len(g.nodes))
		copy(out, g.nodes)
		return out
	}
	return g.collect(roaring.FastAnd(sets...))
}

// collect must be called with g.mu held.
func (g *Graph) collect(bm *roaring.Bitmap) []*Node {
	if bm.IsEmpty() {
		return nil
	}
	out := make([]*Node, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, g.nodes[it.Next()])
	}
	return out
}

// FindByID returns the first node whose id attribute equals id, or Empty.
func (g *Graph) FindByID(id string) *Node {
	g.lookups.Add(1)
	g.mu.RLock()
	defer g.mu.RUnlock()

	bm, ok := g.ids[id]
	if !ok || bm.IsEmpty() {
		return Empty
	}
	return g.nodes[bm.Minimum()]
}

// FindByIDKind returns the first node of kind whose id attribute equals id.
func (g *Graph) FindByIDKind(id string, kind Kind) *Node {
	g.lookups.Add(1)
	g.mu.RLock()
	defer g.mu.RUnlock()

	bm, ok := g.ids[id]
	kb, kok := g.kinds[kind]
	if !ok || !kok {
		return Empty
	}
	both := roaring.And(bm, kb)
	if both.IsEmpty() {
		return Empty
	}
	return g.nodes[both.Minimum()]
}

// Roots returns the top-level nodes in load order.
func (g *Graph) Roots() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Node, len(g.roots))
	copy(out, g.roots)
	return out
}

// Len is the number of nodes.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Count returns the number of nodes of kind.
func (g *Graph) Count(kind Kind) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if bm, ok := g.kinds[kind]; ok {
		return int(bm.GetCardinality())
	}
	return 0
}

// Lookups is the number of Find/FindByID calls served so far.
func (g *Graph) Lookups() int64 {
	return g.lookups.Load()
}

// Stats summarizes the graph by kind name, skipping absent kinds.
func (g *Graph) Stats() map[string]int {
	out := make(map[string]int)
	for _, k := range Kinds() {
		if c := g.Count(k); c > 0 {
			out[k.String()] = c
		}
	}
	return out
}

// Describe renders "kind=count" pairs in declaration order, for logs.
func (g *Graph) Describe() string {
	var parts []string
	for _, k := range Kinds() {
		if c := g.Count(k); c > 0 {
			parts = append(parts, k.String()+"="+strconv.Itoa(c))
		}
	}
	return strings.Join(parts, " ")
}

