package xbrl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/xbrlgraph/internal/graph"
)

const (
	roleLabel = "http://www.xbrl.org/2003/role/label"
	roleTerse = "http://www.xbrl.org/2003/role/terseLabel"
)

type fixture struct {
	t    *testing.T
	g    *graph.Graph
	root *graph.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	g := graph.New()
	root := graph.NewNode(graph.KindDocument, 0, 0)
	require.NoError(t, g.Append(nil, root))
	return &fixture{t: t, g: g, root: root}
}

// add appends a node of kind below parent (the document root when nil).
func (f *fixture) add(parent *graph.Node, kind graph.Kind, kv ...string) *graph.Node {
	f.t.Helper()
	if parent == nil {
		parent = f.root
	}
	n := graph.NewNode(kind, parent.Level+1, 0)
	for i := 0; i+1 < len(kv); i += 2 {
		require.NoError(f.t, n.Set(kv[i], kv[i+1]))
	}
	require.NoError(f.t, f.g.Append(parent, n))
	return n
}

// labelLink adds a label linkbase entry for param with one label per
// role/text pair.
func (f *fixture) labelLink(param string, roleText ...string) {
	f.t.Helper()
	link := f.add(nil, graph.KindLabelLink)
	f.add(link, graph.KindLoc, "href", "taxonomy.xsd#us-gaap_"+param, "label", "loc_"+param)
	f.add(link, graph.KindLabelArc, "from", "loc_"+param, "to", "lab_"+param)
	for i := 0; i+1 < len(roleText); i += 2 {
		f.add(link, graph.KindLabel, "label", "lab_"+param, "role", roleText[i], "value", roleText[i+1])
	}
}

func TestLabels_PreferredRole(t *testing.T) {
	f := newFixture(t)
	f.labelLink("Revenues", roleLabel, "Revenues from contracts", roleTerse, "Revenue")
	labels := NewLabels(f.g)

	got := labels.LabelFor("Revenues", roleTerse)
	assert.Equal(t, &Label{Text: "Revenue", Role: "terseLabel"}, got)

	got = labels.Label("Revenues")
	assert.Equal(t, "Revenues from contracts", got.Text)
	assert.Equal(t, "label", got.Role)
}

func TestLabels_UnknownRoleFallsBackToShortest(t *testing.T) {
	f := newFixture(t)
	f.labelLink("Revenues", roleLabel, "Revenues from contracts", roleTerse, "Revenue")
	labels := NewLabels(f.g)

	got := labels.LabelFor("Revenues", "nonexistent-role")
	assert.Equal(t, "Revenue", got.Text)
	assert.Equal(t, "terseLabel", got.Role)
}

func TestLabels_ShortestTieGoesToFirst(t *testing.T) {
	f := newFixture(t)
	f.labelLink("Assets", roleLabel, "Assets, one", roleTerse, "Assets, two")
	labels := NewLabels(f.g)

	assert.Equal(t, "Assets, one", labels.LabelFor("Assets", "periodEndLabel").Text)
}

func TestLabels_StripsConventionTags(t *testing.T) {
	f := newFixture(t)
	f.labelLink("SegmentsAxis", roleLabel, "Segments [Axis]")
	f.labelLink("Statement", roleLabel, "Statement [Table] [Line Items]")
	f.labelLink("Policies", roleLabel, "Policies [Text Block]")
	f.labelLink("Nested", roleLabel, "Seg [Mem[Axis]ber]")
	labels := NewLabels(f.g)

	tags := []string{"[Member]", "[Abstract]", "[Table]", "[Axis]", "[Domain]", "[Text Block]", "[Line Items]"}
	for _, p := range []string{"SegmentsAxis", "Statement", "Policies", "Nested"} {
		got := labels.Label(p).Text
		for _, tag := range tags {
			assert.False(t, strings.Contains(got, tag), "%s: %q", p, got)
		}
	}
	assert.Equal(t, "Segments", labels.Label("SegmentsAxis").Text)
	assert.Equal(t, "Statement", labels.Label("Statement").Text)
	assert.Equal(t, "Seg", labels.Label("Nested").Text)
}

func TestLabels_EmptyParameter(t *testing.T) {
	labels := NewLabels(newFixture(t).g)

	assert.Same(t, EmptyLabel, labels.Label(""))
	assert.Same(t, EmptyLabel, labels.LabelFor("  ", roleTerse))
	assert.True(t, labels.Label("").IsEmpty())
}

func TestLabels_SynthesizedWhenNotFiled(t *testing.T) {
	labels := NewLabels(newFixture(t).g)

	got := labels.LabelFor("CustomConcept", roleTerse)
	assert.Equal(t, &Label{Text: "CustomConcept", Role: DefaultRole}, got)
	assert.False(t, got.IsEmpty())
}

func TestLabels_DirectPathFallback(t *testing.T) {
	f := newFixture(t)
	f.add(nil, graph.KindLabel, "id", "EntityRegistrantName", "role", roleLabel, "value", "Entity Registrant Name")
	labels := NewLabels(f.g)

	assert.Equal(t, "Entity Registrant Name", labels.Label("EntityRegistrantName").Text)
}

func TestLabels_LinkedPathWinsOverDirect(t *testing.T) {
	f := newFixture(t)
	f.labelLink("Revenues", roleLabel, "Linked")
	f.add(nil, graph.KindLabel, "id", "Revenues", "role", roleLabel, "value", "Direct")
	labels := NewLabels(f.g)

	cands := labels.Candidates("Revenues")
	require.Len(t, cands, 1)
	assert.Equal(t, "Linked", cands[0].Text)
}

func TestLabels_CandidatesDeduplicated(t *testing.T) {
	f := newFixture(t)
	f.labelLink("Revenues", roleLabel, "Revenues")
	f.labelLink("Revenues", roleLabel, "Revenues", roleTerse, "Rev")
	labels := NewLabels(f.g)

	assert.Equal(t, []*Label{
		{Text: "Revenues", Role: "label"},
		{Text: "Rev", Role: "terseLabel"},
	}, labels.Candidates("Revenues"))
}

func TestLabels_UnitLabelShapes(t *testing.T) {
	f := newFixture(t)
	usd := f.add(nil, graph.KindUnit, "id", "usd")
	f.add(usd, graph.KindMeasure, "value", "iso4217:USD")
	eps := f.add(nil, graph.KindUnit, "id", "usdPerShare")
	div := f.add(eps, graph.KindOther)
	num := f.add(div, graph.KindUnitNumerator)
	f.add(num, graph.KindMeasure, "value", "iso4217:USD")
	den := f.add(div, graph.KindUnitDenominator)
	f.add(den, graph.KindMeasure, "value", "xbrli:shares")
	labels := NewLabels(f.g)

	assert.Equal(t, "USD", labels.UnitLabel("usd"))
	assert.Equal(t, "USD / SHARES", labels.UnitLabel("usdPerShare"))
	assert.Equal(t, "EUR", labels.UnitLabel("U_EUR"))
	assert.Equal(t, "", labels.UnitLabel(""))
}

func TestLabels_UnitLabelCached(t *testing.T) {
	f := newFixture(t)
	usd := f.add(nil, graph.KindUnit, "id", "usd")
	f.add(usd, graph.KindMeasure, "value", "iso4217:USD")
	labels := NewLabels(f.g)

	first := labels.UnitLabel("usd")
	lookups := f.g.Lookups()
	second := labels.UnitLabel("usd")

	assert.Equal(t, first, second)
	assert.Equal(t, lookups, f.g.Lookups(), "second resolution must not query the graph")
}
