// Package xbrl resolves a loaded fact graph into contexts, labels, units and
// displayable fact values.
package xbrl

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/agentic-research/xbrlgraph/internal/graph"
)

// Filing describes where a document came from.
type Filing struct {
	Form     string // e.g. "10-K", "10-Q"
	FileName string
}

// Document is the resolved view over one filing's fact graph.
//
// The graph is frozen by New; all resolvers below are lazy and safe for
// concurrent first use.
type Document struct {
	graph  *graph.Graph
	logger *zap.Logger
	labels *Labels

	values []*FactValue
	byNode map[*graph.Node]*FactValue

	ctxMu    sync.Mutex
	contexts map[string]*Context

	company  Company
	extended bool
	filing   Filing

	postDone atomic.Bool

	closeMu sync.Mutex
	closers []func()
}

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the logger used for degraded lookups.
func WithLogger(l *zap.Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithCompany attaches company metadata and turns on the extended company
// attributes of value snapshots.
func WithCompany(c Company) Option {
	return func(d *Document) {
		if c == nil {
			d.company, d.extended = NoCompany{}, false
			return
		}
		d.company, d.extended = c, true
	}
}

// WithFiling sets form and file name metadata.
func WithFiling(f Filing) Option {
	return func(d *Document) { d.filing = f }
}

// WithDefaultLabelRole overrides the role used when no role is requested.
func WithDefaultLabelRole(role string) Option {
	return func(d *Document) {
		if role != "" {
			d.labels.defaultRole = role
		}
	}
}

// New freezes g and wraps it. Every value-kind node becomes a FactValue.
func New(g *graph.Graph, opts ...Option) *Document {
	g.Freeze()
	d := &Document{
		graph:    g,
		logger:   zap.NewNop(),
		labels:   NewLabels(g),
		contexts: make(map[string]*Context),
		company:  NoCompany{},
	}
	for _, opt := range opts {
		opt(d)
	}

	nodes := g.Find(graph.OfKind(graph.KindValue))
	d.values = make([]*FactValue, 0, len(nodes))
	d.byNode = make(map[*graph.Node]*FactValue, len(nodes))
	for _, n := range nodes {
		fv := &FactValue{doc: d, node: n}
		d.values = append(d.values, fv)
		d.byNode[n] = fv
	}
	return d
}

// Graph returns the underlying fact graph.
func (d *Document) Graph() *graph.Graph { return d.graph }

// Logger returns the document logger (never nil).
func (d *Document) Logger() *zap.Logger { return d.logger }

// Labels returns the label resolver.
func (d *Document) Labels() *Labels { return d.labels }

// Company returns the filer metadata (NoCompany when unknown).
func (d *Document) Company() Company { return d.company }

// ExtendedCompanyInformation reports whether company fields are added to
// value snapshots.
func (d *Document) ExtendedCompanyInformation() bool { return d.extended }

// Filing returns form and file metadata.
func (d *Document) Filing() Filing { return d.filing }

// Values returns every fact value in document order.
func (d *Document) Values() []*FactValue {
	out := make([]*FactValue, len(d.values))
	copy(out, d.values)
	return out
}

// Value returns the FactValue wrapping n, or nil when n is not a value node.
func (d *Document) Value(n *graph.Node) *FactValue {
	return d.byNode[n]
}

// ValuesFor returns the values reported for parameter.
func (d *Document) ValuesFor(parameter string) []*FactValue {
	var out []*FactValue
	for _, n := range d.graph.Find(graph.Query{Kinds: []graph.Kind{graph.KindValue}, Values: []string{parameter}}) {
		if n.Attr("parameterName") == parameter {
			out = append(out, d.byNode[n])
		}
	}
	return out
}

// ValuesMatching returns the values carrying name as any raw attribute value.
func (d *Document) ValuesMatching(name string) []*FactValue {
	if name == "" {
		return nil
	}
	nodes := d.graph.Find(graph.Query{Kinds: []graph.Kind{graph.KindValue}, Values: []string{name}})
	out := make([]*FactValue, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, d.byNode[n])
	}
	return out
}

// Context resolves a contextRef. Unresolvable references yield nil.
func (d *Document) Context(ref string) *Context {
	if ref == "" {
		return nil
	}
	d.ctxMu.Lock()
	defer d.ctxMu.Unlock()
	if c, ok := d.contexts[ref]; ok {
		return c
	}
	c := resolveContext(d, ref)
	if c == nil {
		d.logger.Debug("unresolved context", zap.String("contextRef", ref))
	}
	d.contexts[ref] = c
	return c
}

// UnitLabel resolves a unitRef to its display form.
func (d *Document) UnitLabel(ref string) string {
	return d.labels.UnitLabel(ref)
}

// MarkPostProcessingDone flips the one-shot flag that enables derived
// attributes. It reports whether this call flipped it.
func (d *Document) MarkPostProcessingDone() bool {
	return d.postDone.CompareAndSwap(false, true)
}

// PostProcessingDone reports whether derived attributes are available.
func (d *Document) PostProcessingDone() bool {
	return d.postDone.Load()
}

// Force materializes every lazy field sequentially. Call it before handing
// the values to concurrent readers.
func (d *Document) Force() {
	for _, v := range d.values {
		v.Value()
		v.Context()
		v.Label()
		v.Unit()
		v.Attributes()
	}
}

// OnClose registers a release hook run by Close.
func (d *Document) OnClose(fn func()) {
	d.closeMu.Lock()
	defer d.closeMu.Unlock()
	d.closers = append(d.closers, fn)
}

// Close releases presentation trees and cached contexts. The fact graph
// itself stays intact.
func (d *Document) Close() {
	d.closeMu.Lock()
	closers := d.closers
	d.closers = nil
	d.closeMu.Unlock()
	for _, fn := range closers {
		fn()
	}

	d.ctxMu.Lock()
	d.contexts = make(map[string]*Context)
	d.ctxMu.Unlock()
}
