package xbrl

import (
	"math/big"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/agentic-research/xbrlgraph/api"
	"github.com/agentic-research/xbrlgraph/internal/graph"
)

// FactValue is a reported fact. The raw attributes of the wrapped node are
// never modified: the resolved value and the derived attributes are kept
// alongside and merged in by Attributes.
type FactValue struct {
	doc  *Document
	node *graph.Node

	valueOnce sync.Once
	value     string

	ctxOnce sync.Once
	ctx     *Context

	labelOnce sync.Once
	label     *Label

	derivedOnce sync.Once
	derived     map[string]string
}

// Node returns the wrapped value node.
func (v *FactValue) Node() *graph.Node { return v.node }

// Parameter is the reported concept name.
func (v *FactValue) Parameter() string { return v.node.Attr(api.AttrParameterName) }

// ContextRef is the raw context reference.
func (v *FactValue) ContextRef() string { return v.node.Attr(api.AttrContextRef) }

// URI is the namespace of the reported concept.
func (v *FactValue) URI() string { return v.node.Attr(api.AttrURI) }

// URIPrefix is the namespace prefix of the reported concept.
func (v *FactValue) URIPrefix() string { return v.node.Attr(api.AttrPrefix) }

// Value returns the displayable value, computed on first use.
//
// A fact split by continuedAt references is reassembled by following the
// chain; a fact with fragment children is the space-joined text of those
// fragments; otherwise the value attribute stands as filed.
func (v *FactValue) Value() string {
	v.valueOnce.Do(func() {
		v.value = v.resolve()
	})
	return v.value
}

func (v *FactValue) resolve() string {
	n := v.node
	parts := []string{n.Attr(api.AttrValue)}

	if n.HasAttr(api.AttrContinuedAt) {
		parts = append(parts, descendantValues(n)...)
		parts = append(parts, v.continuation(n.Attr(api.AttrContinuedAt))...)
		return joinParts(parts)
	}
	if n.HasAttr(api.AttrParameterName) {
		parts = append(parts, descendantValues(n)...)
		return joinParts(parts)
	}
	return n.Attr(api.AttrValue)
}

// continuation follows a continuedAt chain starting at id and returns the
// leaf texts in chain order. A missing target or a repeated id ends the walk.
func (v *FactValue) continuation(id string) []string {
	var parts []string
	seen := make(map[string]bool)
	for id != "" && !seen[id] {
		seen[id] = true
		cont := v.doc.graph.FindByIDKind(id, graph.KindContinuation)
		if cont.IsEmpty() {
			v.doc.logger.Debug("continuation target not found",
				zap.String("id", id), zap.String("parameter", v.Parameter()))
			break
		}
		parts = append(parts, leafValues(cont)...)
		id = cont.Attr(api.AttrContinuedAt)
	}
	return parts
}

// descendantValues collects the value attributes below n in pre-order.
func descendantValues(n *graph.Node) []string {
	var out []string
	for _, c := range n.Facts() {
		if c == n || c.Kind() == graph.KindContinuation {
			continue
		}
		out = append(out, c.Attr(api.AttrValue))
	}
	return out
}

// leafValues collects the values of the leaves of n, skipping nested
// continuation nodes. A childless n is its own leaf.
func leafValues(n *graph.Node) []string {
	children := n.Children()
	if len(children) == 0 {
		return []string{n.Attr(api.AttrValue)}
	}
	var out []string
	for _, c := range children {
		if c.Kind() == graph.KindContinuation {
			continue
		}
		out = append(out, leafValues(c)...)
	}
	return out
}

func joinParts(parts []string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// Context resolves the fact's context; nil when it cannot be resolved.
func (v *FactValue) Context() *Context {
	v.ctxOnce.Do(func() {
		v.ctx = v.doc.Context(v.ContextRef())
	})
	return v.ctx
}

// Label resolves the parameter label under the document's default role.
func (v *FactValue) Label() *Label {
	v.labelOnce.Do(func() {
		v.label = v.doc.labels.Label(v.Parameter())
	})
	return v.label
}

// LabelFor resolves the parameter label preferring role.
func (v *FactValue) LabelFor(role string) *Label {
	return v.doc.labels.LabelFor(v.Parameter(), role)
}

// Unit is the unit label, "" for non-numeric facts.
func (v *FactValue) Unit() string {
	return v.doc.labels.UnitLabel(v.node.Attr(api.AttrUnitRef))
}

// Date is the period end (or instant) of the fact.
func (v *FactValue) Date() string {
	if d := v.node.Attr(api.AttrDate); d != "" {
		return d
	}
	return v.Context().Date()
}

// StartDate is the period start, "" for instants.
func (v *FactValue) StartDate() string { return v.Context().StartDate() }

// Year is the year of Date.
func (v *FactValue) Year() string {
	if d := v.Date(); len(d) >= 4 {
		return d[:4]
	}
	return ""
}

// Months is the length of the reporting period, 0 for instants and facts
// without context.
func (v *FactValue) Months() int {
	if c := v.Context(); c != nil {
		return c.Months
	}
	return 0
}

// ContextWithSegments reports whether the fact is dimensionally qualified.
func (v *FactValue) ContextWithSegments() bool { return v.Context().WithSegments() }

// IsNumeric reports whether the fact has a unit and a parsable value.
func (v *FactValue) IsNumeric() bool {
	if v.node.Attr(api.AttrUnitRef) == "" {
		return false
	}
	_, err := ParseNumber(v.Value())
	return err == nil
}

// Number parses the value as a number.
func (v *FactValue) Number() (float64, error) {
	return ParseNumber(v.Value())
}

// Attr returns one attribute of the merged view.
func (v *FactValue) Attr(key string) string {
	if key == api.AttrValue {
		return v.Value()
	}
	if v.doc.PostProcessingDone() {
		if s, ok := v.derivedAttrs()[key]; ok {
			return s
		}
	}
	return v.node.Attr(key)
}

// Attributes returns the raw attributes with the resolved value, overlaid
// with the derived attributes once post-processing is done. The returned map
// is a fresh copy.
func (v *FactValue) Attributes() map[string]string {
	out := v.node.Attributes()
	out[api.AttrValue] = v.Value()
	if v.doc.PostProcessingDone() {
		for k, s := range v.derivedAttrs() {
			out[k] = s
		}
	}
	return out
}

// Record is the snapshot handed to reporting collaborators.
func (v *FactValue) Record() api.ValueRecord {
	return api.ValueRecord{
		Parameter:  v.Parameter(),
		Context:    v.ContextRef(),
		Attributes: v.Attributes(),
	}
}

func (v *FactValue) derivedAttrs() map[string]string {
	v.derivedOnce.Do(func() {
		v.derived = v.derive()
	})
	return v.derived
}

func (v *FactValue) derive() map[string]string {
	ctx := v.Context()
	m := map[string]string{
		api.AttrValue:            v.Value(),
		api.AttrLabel:            v.Label().Text,
		api.AttrDateLabel:        ctx.DateDescription(),
		api.AttrDate:             v.Date(),
		api.AttrSegment:          ctx.SegmentDescription(),
		api.AttrSegmentDimension: ctx.DimensionDescription(),
		api.AttrNumberOfMonths:   strconv.Itoa(v.Months()),
		api.AttrForm:             v.doc.filing.Form,
		api.AttrFile:             v.doc.filing.FileName,
	}
	if unit := v.Unit(); unit != "" {
		m[api.AttrUnitRef] = unit
	}
	if ctx != nil {
		m[api.AttrIdentifier] = ctx.Identifier
	} else {
		m[api.AttrIdentifier] = ""
	}
	if v.doc.extended {
		c := v.doc.company
		m[api.AttrCompanyName] = c.CompanyName()
		m[api.AttrTradingSymbol] = c.TradingSymbol()
		m[api.AttrIncorporation] = c.IncorporationState()
		m[api.AttrLocation] = c.LocationState()
		m[api.AttrSICCode] = c.SICCode()
		m[api.AttrSICDescription] = c.SICDescription()
	}
	return m
}

// Decimal returns the resolved value as an exact rational.
func (v *FactValue) Decimal() (*big.Rat, error) {
	return ParseDecimal(v.Value())
}
