package ingest

import (
	"fmt"
	"strings"

	"github.com/agentic-research/xbrlgraph/internal/graph"
)

// element is a decoded node that is not yet attached to a graph. Decoders
// build element trees concurrently; attach moves them into the graph on a
// single goroutine.
type element struct {
	kind     graph.Kind
	level    int
	line     int64
	attrs    []attr
	children []*element
}

type attr struct{ key, value string }

func newElement(kind graph.Kind, level int, line int64) *element {
	return &element{kind: kind, level: level, line: line}
}

func (e *element) set(key, value string) {
	for i := range e.attrs {
		if e.attrs[i].key == key {
			e.attrs[i].value = value
			return
		}
	}
	e.attrs = append(e.attrs, attr{key, value})
}

func (e *element) get(key string) string {
	for _, a := range e.attrs {
		if a.key == key {
			return a.value
		}
	}
	return ""
}

func (e *element) has(key string) bool {
	for _, a := range e.attrs {
		if a.key == key {
			return true
		}
	}
	return false
}

func (e *element) add(c *element) { e.children = append(e.children, c) }

func (e *element) count() int {
	n := 1
	for _, c := range e.children {
		n += c.count()
	}
	return n
}

// attach appends e and its subtree to g below parent (nil for a root).
func attach(g *graph.Graph, parent *graph.Node, e *element) error {
	n := graph.NewNode(e.kind, e.level, e.line)
	for _, a := range e.attrs {
		if err := n.Set(a.key, a.value); err != nil {
			return err
		}
	}
	if err := g.Append(parent, n); err != nil {
		return fmt.Errorf("append %s: %w", e.kind, err)
	}
	for _, c := range e.children {
		if err := attach(g, n, c); err != nil {
			return err
		}
	}
	return nil
}

// structuralKinds maps element local names to the kinds the resolvers
// navigate. Anything else is a fact (when it carries a contextRef) or other.
var structuralKinds = func() map[string]graph.Kind {
	m := make(map[string]graph.Kind)
	for _, k := range graph.Kinds() {
		switch k {
		case graph.KindDocument, graph.KindValue, graph.KindContinuation, graph.KindFragment, graph.KindOther:
			continue
		}
		m[k.String()] = k
	}
	return m
}()

// lowerKinds is structuralKinds keyed by lower-cased name, for HTML input
// where the parser folds tag names.
var lowerKinds = func() map[string]graph.Kind {
	m := make(map[string]graph.Kind, len(structuralKinds))
	for name, k := range structuralKinds {
		m[strings.ToLower(name)] = k
	}
	return m
}()

// splitQName splits "us-gaap:Revenues" into prefix and local name.
func splitQName(qname string) (prefix, local string) {
	if i := strings.IndexByte(qname, ':'); i >= 0 {
		return qname[:i], qname[i+1:]
	}
	return "", qname
}
