package xbrl

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/agentic-research/xbrlgraph/internal/graph"
)

// DefaultRole is the label role used when no role is requested.
const DefaultRole = "label"

// Label is a display text together with the role it was filed under.
type Label struct {
	Text string
	Role string
}

// EmptyLabel means "not found". Compare by identity: a filed label may also
// have empty text.
var EmptyLabel = &Label{}

// IsEmpty reports whether l is the EmptyLabel sentinel (or nil).
func (l *Label) IsEmpty() bool { return l == nil || l == EmptyLabel }

func (l *Label) String() string {
	if l == nil {
		return ""
	}
	return l.Text
}

// Taxonomy convention tags removed from display text.
var conventionTags = []string{
	"[Member]", "[Abstract]", "[Table]", "[Axis]", "[Domain]", "[Text Block]", "[Line Items]",
}

// Labels resolves parameter names to display labels through the label
// linkbases of a graph, and unit references to unit labels.
type Labels struct {
	g           *graph.Graph
	defaultRole string

	mu     sync.RWMutex
	labels map[labelKey]*Label

	unitMu sync.RWMutex
	units  map[string]string
}

type labelKey struct{ param, role string }

// NewLabels creates a resolver over g.
func NewLabels(g *graph.Graph) *Labels {
	return &Labels{
		g:           g,
		defaultRole: DefaultRole,
		labels:      make(map[labelKey]*Label),
		units:       make(map[string]string),
	}
}

// DefaultRole returns the role used by Label.
func (l *Labels) DefaultRole() string { return l.defaultRole }

// Label resolves param under the default role.
func (l *Labels) Label(param string) *Label {
	return l.LabelFor(param, "")
}

// LabelFor resolves param, preferring role. The role may be given as a full
// role URI or as its last path segment. When no candidate carries the role
// the shortest candidate text wins; when there is no candidate at all the
// parameter name itself is returned under the default role. An empty
// parameter yields EmptyLabel.
func (l *Labels) LabelFor(param, role string) *Label {
	if strings.TrimSpace(param) == "" {
		return EmptyLabel
	}
	if role == "" {
		role = l.defaultRole
	}
	key := labelKey{param, graph.LastPath(role)}

	l.mu.RLock()
	lbl, ok := l.labels[key]
	l.mu.RUnlock()
	if ok {
		return lbl
	}

	lbl = choose(l.Candidates(param), key.role)
	if lbl == nil {
		lbl = &Label{Text: param, Role: DefaultRole}
	}
	lbl = &Label{Text: stripConventionTags(lbl.Text), Role: lbl.Role}

	l.mu.Lock()
	if cached, ok := l.labels[key]; ok {
		lbl = cached
	} else {
		l.labels[key] = lbl
	}
	l.mu.Unlock()
	return lbl
}

// Candidates returns the filed labels of param in document order, with
// duplicate (text, role) pairs removed. Labels reached through a locator and
// label arc take precedence; label nodes whose id is the parameter name are
// only consulted when the linked path finds nothing.
func (l *Labels) Candidates(param string) []*Label {
	if param == "" {
		return nil
	}
	out := dedupe(l.linked(param))
	if len(out) == 0 {
		out = dedupe(l.direct(param))
	}
	return out
}

func (l *Labels) linked(param string) []*graph.Node {
	var out []*graph.Node
	locs := l.g.Find(graph.Query{Kinds: []graph.Kind{graph.KindLoc}, Values: []string{param}})
	for _, loc := range locs {
		link := loc.Parent()
		if link.Kind() != graph.KindLabelLink || graph.LastPath(loc.Attr("href")) != param {
			continue
		}
		from := loc.Attr("label")
		if from == "" {
			continue
		}
		for _, arc := range link.Children(graph.KindLabelArc) {
			if arc.Attr("from") != from {
				continue
			}
			out = append(out, l.labelNodes(link, arc.Attr("to"))...)
		}
	}
	return out
}

// labelNodes finds the label resources called to, looking in link first and
// then across the whole graph.
func (l *Labels) labelNodes(link *graph.Node, to string) []*graph.Node {
	if to == "" {
		return nil
	}
	var out []*graph.Node
	for _, n := range link.Children(graph.KindLabel) {
		if n.Attr("label") == to || n.ID() == to {
			out = append(out, n)
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, n := range l.g.Find(graph.Query{Kinds: []graph.Kind{graph.KindLabel}, Values: []string{to}}) {
		if n.Attr("label") == to || n.ID() == to {
			out = append(out, n)
		}
	}
	return out
}

func (l *Labels) direct(param string) []*graph.Node {
	var out []*graph.Node
	for _, n := range l.g.Find(graph.Query{Kinds: []graph.Kind{graph.KindLabel}, Values: []string{param}}) {
		if n.ID() == param {
			out = append(out, n)
		}
	}
	return out
}

func dedupe(nodes []*graph.Node) []*Label {
	seen := make(map[Label]bool, len(nodes))
	out := make([]*Label, 0, len(nodes))
	for _, n := range nodes {
		lbl := Label{Text: n.Attr("value"), Role: graph.LastPath(n.Attr("role"))}
		if lbl.Role == "" {
			lbl.Role = DefaultRole
		}
		if seen[lbl] {
			continue
		}
		seen[lbl] = true
		out = append(out, &lbl)
	}
	return out
}

// choose picks the candidate filed under role, else the shortest text.
// Ties go to the first candidate.
func choose(cands []*Label, role string) *Label {
	if len(cands) == 0 {
		return nil
	}
	for _, c := range cands {
		if c.Role == role {
			return c
		}
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if utf8.RuneCountInString(c.Text) < utf8.RuneCountInString(best.Text) {
			best = c
		}
	}
	return best
}

// stripConventionTags repeats until no tag is left, since removing one tag
// can join the text around it into another ("[Mem[Axis]ber]").
func stripConventionTags(s string) string {
	for {
		prev := s
		for _, tag := range conventionTags {
			s = strings.ReplaceAll(s, tag, "")
		}
		if s == prev {
			return strings.TrimSpace(s)
		}
	}
}

// UnitLabel resolves a unitRef to its display form: the upper-cased measure
// ("USD"), a "NUM / DEN" ratio ("USD / SHARES"), or the upper-cased last path
// of the reference when no unit node carries it. Results are cached.
func (l *Labels) UnitLabel(ref string) string {
	if ref == "" {
		return ""
	}
	l.unitMu.RLock()
	s, ok := l.units[ref]
	l.unitMu.RUnlock()
	if ok {
		return s
	}

	s = l.resolveUnit(ref)

	l.unitMu.Lock()
	l.units[ref] = s
	l.unitMu.Unlock()
	return s
}

func (l *Labels) resolveUnit(ref string) string {
	unit := l.g.FindByIDKind(ref, graph.KindUnit)
	if unit.IsEmpty() {
		return measureLabel(ref)
	}
	if m := graph.First(unit.Children(graph.KindMeasure)); !m.IsEmpty() {
		return measureLabel(m.Attr("value"))
	}
	num := graph.First(unit.Facts(graph.KindUnitNumerator))
	den := graph.First(unit.Facts(graph.KindUnitDenominator))
	if !num.IsEmpty() && !den.IsEmpty() {
		return measureLabel(graph.First(num.Facts(graph.KindMeasure)).Attr("value")) +
			" / " + measureLabel(graph.First(den.Facts(graph.KindMeasure)).Attr("value"))
	}
	return measureLabel(ref)
}

func measureLabel(ref string) string {
	return strings.ToUpper(graph.LastPath(strings.TrimSpace(ref)))
}
