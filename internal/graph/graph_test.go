package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(t *testing.T, g *Graph, parent *Node, kind Kind, kv ...string) *Node {
	t.Helper()
	n := NewNode(kind, 0, 0)
	for i := 0; i+1 < len(kv); i += 2 {
		require.NoError(t, n.Set(kv[i], kv[i+1]))
	}
	require.NoError(t, g.Append(parent, n))
	return n
}

func TestGraph_AppendAndFindByID(t *testing.T) {
	g := New()
	root := node(t, g, nil, KindDocument)
	ctx := node(t, g, root, KindContext, "id", "FY2017")

	assert.Same(t, ctx, g.FindByID("FY2017"))
	assert.Same(t, root, ctx.Parent())
	assert.Equal(t, []*Node{root}, g.Roots())
	assert.Equal(t, 2, g.Len())
}

func TestGraph_FindByIDMissingReturnsEmpty(t *testing.T) {
	g := New()

	n := g.FindByID("nope")
	require.Same(t, Empty, n)
	assert.True(t, n.IsEmpty())

	// Chaining on the sentinel never panics.
	assert.Equal(t, "", n.Attr("value"))
	assert.Nil(t, n.Children())
	assert.True(t, n.Parent().IsEmpty())
	assert.True(t, First(n.Children(KindMeasure)).IsEmpty())
	assert.ErrorIs(t, n.Set("x", "y"), ErrEmptyNode)
}

func TestGraph_FindByIDKind(t *testing.T) {
	g := New()
	root := node(t, g, nil, KindDocument)
	node(t, g, root, KindLabel, "id", "shared")
	unit := node(t, g, root, KindUnit, "id", "shared")

	assert.Same(t, unit, g.FindByIDKind("shared", KindUnit))
	assert.True(t, g.FindByIDKind("shared", KindContext).IsEmpty())
}

func TestGraph_FindKindsAreOredValuesAreAnded(t *testing.T) {
	g := New()
	root := node(t, g, nil, KindDocument)
	a := node(t, g, root, KindValue, "parameterName", "Revenues", "contextRef", "Q1")
	b := node(t, g, root, KindValue, "parameterName", "Revenues", "contextRef", "Q2")
	c := node(t, g, root, KindLabel, "label", "Revenues")

	assert.Equal(t, []*Node{a, b}, g.Find(Query{Kinds: []Kind{KindValue}, Values: []string{"Revenues"}}))
	assert.Equal(t, []*Node{b}, g.Find(Query{Values: []string{"Revenues", "Q2"}}))
	assert.Equal(t, []*Node{a, b, c}, g.Find(Query{Kinds: []Kind{KindValue, KindLabel}, Values: []string{"Revenues"}}))
	assert.Empty(t, g.Find(Query{Values: []string{"Revenues", "missing"}}))
	assert.Empty(t, g.Find(OfKind(KindUnit)))
	assert.Len(t, g.Find(Query{}), 4)
}

func TestGraph_HrefIndexedByFragmentAndLastPath(t *testing.T) {
	g := New()
	root := node(t, g, nil, KindLabelLink)
	loc := node(t, g, root, KindLoc, "href", "us-gaap-2017.xsd#us-gaap_Revenues", "label", "loc_1")

	assert.Equal(t, []*Node{loc}, g.Find(Query{Kinds: []Kind{KindLoc}, Values: []string{"Revenues"}}))
	assert.Equal(t, []*Node{loc}, g.Find(Query{Kinds: []Kind{KindLoc}, Values: []string{"us-gaap_Revenues"}}))
}

func TestGraph_SetAfterAppendReindexes(t *testing.T) {
	g := New()
	root := node(t, g, nil, KindDocument)
	v := node(t, g, root, KindValue, "value", "old")

	require.NoError(t, v.Set("value", "new"))
	assert.Empty(t, g.Find(Query{Values: []string{"old"}}))
	assert.Equal(t, []*Node{v}, g.Find(Query{Values: []string{"new"}}))

	require.NoError(t, v.Set("id", "v1"))
	assert.Same(t, v, g.FindByID("v1"))
	require.NoError(t, v.Set("id", "v2"))
	assert.True(t, g.FindByID("v1").IsEmpty())
}

func TestGraph_FreezeRejectsMutation(t *testing.T) {
	g := New()
	root := node(t, g, nil, KindDocument)
	g.Freeze()

	assert.True(t, g.Frozen())
	assert.ErrorIs(t, g.Append(root, NewNode(KindValue, 1, 0)), ErrFrozen)
	assert.ErrorIs(t, root.Set("id", "x"), ErrFrozen)
}

func TestGraph_ExclusiveOwnership(t *testing.T) {
	g := New()
	a := node(t, g, nil, KindDocument)
	b := node(t, g, nil, KindDocument)
	c := node(t, g, a, KindValue)

	assert.ErrorIs(t, g.Append(b, c), ErrAttached)

	other := New()
	assert.ErrorIs(t, other.Append(a, NewNode(KindValue, 0, 0)), ErrForeignParent)
}

func TestNode_FactsPreOrderAndChildrenFilter(t *testing.T) {
	g := New()
	unit := node(t, g, nil, KindUnit, "id", "usdPerShare")
	num := node(t, g, unit, KindUnitNumerator)
	m1 := node(t, g, num, KindMeasure, "value", "iso4217:USD")
	den := node(t, g, unit, KindUnitDenominator)
	m2 := node(t, g, den, KindMeasure, "value", "xbrli:shares")

	assert.Equal(t, []*Node{unit, num, m1, den, m2}, unit.Facts())
	assert.Equal(t, []*Node{m1, m2}, unit.Facts(KindMeasure))
	assert.Equal(t, []*Node{den}, unit.Children(KindUnitDenominator))
	assert.Empty(t, unit.Children(KindMeasure))
}

func TestNode_AttributesKeepInsertionOrder(t *testing.T) {
	n := NewNode(KindValue, 0, 0)
	for _, k := range []string{"contextRef", "unitRef", "decimals", "id"} {
		require.NoError(t, n.Set(k, k+"-v"))
	}
	assert.Equal(t, []string{"contextRef", "unitRef", "decimals", "id"}, n.Keys())
	assert.Equal(t, "unitRef-v", n.Attributes()["unitRef"])
	assert.False(t, n.HasAttr("UnitRef"))
}

func TestGraph_StatsAndLookups(t *testing.T) {
	g := New()
	root := node(t, g, nil, KindDocument)
	node(t, g, root, KindValue)
	node(t, g, root, KindValue)

	before := g.Lookups()
	g.Find(OfKind(KindValue))
	g.FindByID("x")
	assert.Equal(t, before+2, g.Lookups())
	assert.Equal(t, map[string]int{"document": 1, "value": 2}, g.Stats())
	assert.Equal(t, "document=1 value=2", g.Describe())
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("presentationArc")
	require.True(t, ok)
	assert.Equal(t, KindPresentationArc, k)
	assert.Equal(t, "presentationArc", k.String())

	_, ok = ParseKind("PresentationArc")
	assert.False(t, ok)
}

func TestLastPath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"us-gaap-2017.xsd#us-gaap_Revenues", "Revenues"},
		{"iso4217:USD", "USD"},
		{"http://xbrl.sec.gov/role/label", "label"},
		{"schema.xsd#Assets", "Assets"},
		{"Revenues", "Revenues"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LastPath(tt.in), tt.in)
	}
	assert.Equal(t, "us-gaap_Revenues", LastPathDelim("a.xsd#us-gaap_Revenues", "#"))
	assert.Equal(t, "Revenues", LocalName("us-gaap:Revenues"))
}
