package quarterly

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/agentic-research/xbrlgraph/api"
	"github.com/agentic-research/xbrlgraph/internal/graph"
	"github.com/agentic-research/xbrlgraph/internal/xbrl"
)

type builder struct {
	t    *testing.T
	g    *graph.Graph
	root *graph.Node
}

func newBuilder(t *testing.T) *builder {
	t.Helper()
	g := graph.New()
	root := graph.NewNode(graph.KindDocument, 0, 0)
	require.NoError(t, g.Append(nil, root))
	b := &builder{t: t, g: g, root: root}
	unit := b.add(root, graph.KindUnit, "id", "usd")
	b.add(unit, graph.KindMeasure, "value", "iso4217:USD")
	return b
}

func (b *builder) add(parent *graph.Node, kind graph.Kind, kv ...string) *graph.Node {
	b.t.Helper()
	n := graph.NewNode(kind, parent.Level+1, 0)
	for i := 0; i+1 < len(kv); i += 2 {
		require.NoError(b.t, n.Set(kv[i], kv[i+1]))
	}
	require.NoError(b.t, b.g.Append(parent, n))
	return n
}

func (b *builder) context(id, start, end string) {
	ctx := b.add(b.root, graph.KindContext, "id", id)
	period := b.add(ctx, graph.KindPeriod)
	b.add(period, graph.KindStartDate, "value", start)
	b.add(period, graph.KindEndDate, "value", end)
}

func (b *builder) value(param, ctx, v string) {
	b.add(b.root, graph.KindValue, "parameterName", param, "contextRef", ctx, "unitRef", "usd", "value", v)
}

func observed(t *testing.T, b *builder) (*xbrl.Document, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return xbrl.New(b.g, xbrl.WithLogger(zap.New(core))), logs
}

func TestInfer_SecondQuarterFromHalfYear(t *testing.T) {
	b := newBuilder(t)
	b.context("Q1", "2017-01-01", "2017-03-31")
	b.context("H1", "2017-01-01", "2017-06-30")
	b.value("Revenues", "Q1", "400")
	b.value("Revenues", "H1", "900")
	doc, _ := observed(t, b)

	got := Infer(doc)

	assert.Equal(t, []api.Estimate{{
		Parameter:  "Revenues",
		Label:      "Revenues",
		Start:      "2017-04-01",
		End:        "2017-06-30",
		Months:     3,
		Value:      "500",
		Cumulative: "H1",
		Previous:   "Q1",
	}}, got)
}

func TestInfer_FourthQuarterFromNineMonths(t *testing.T) {
	b := newBuilder(t)
	b.context("M9", "2017-01-01", "2017-09-30")
	b.context("FY", "2017-01-01", "2017-12-31")
	b.value("NetIncomeLoss", "M9", "1,500")
	b.value("NetIncomeLoss", "FY", "1,750")
	doc, _ := observed(t, b)

	got := Infer(doc)
	require.Len(t, got, 1)
	assert.Equal(t, "250", got[0].Value)
	assert.Equal(t, "2017-10-01", got[0].Start)
}

func TestInfer_DecimalFactsAreExact(t *testing.T) {
	b := newBuilder(t)
	b.context("Q1", "2017-01-01", "2017-03-31")
	b.context("H1", "2017-01-01", "2017-06-30")
	b.context("M9", "2017-01-01", "2017-09-30")
	b.value("EarningsPerShareBasic", "Q1", "0.1")
	b.value("EarningsPerShareBasic", "H1", "0.3")
	b.value("EarningsPerShareBasic", "M9", "1.23")
	doc, _ := observed(t, b)

	got := Infer(doc)
	require.Len(t, got, 2)
	byEnd := map[string]string{}
	for _, e := range got {
		byEnd[e.End] = e.Value
	}
	assert.Equal(t, "0.2", byEnd["2017-06-30"])
	assert.Equal(t, "0.93", byEnd["2017-09-30"])
}

func TestInfer_ReportedQuarterIsNotRecomputed(t *testing.T) {
	b := newBuilder(t)
	b.context("Q1", "2017-01-01", "2017-03-31")
	b.context("Q2", "2017-04-01", "2017-06-30")
	b.context("H1", "2017-01-01", "2017-06-30")
	b.value("Revenues", "Q1", "400")
	b.value("Revenues", "Q2", "500")
	b.value("Revenues", "H1", "900")
	doc, _ := observed(t, b)

	assert.Empty(t, Infer(doc))
}

func TestInfer_AmbiguousSubtrahendIsSkipped(t *testing.T) {
	b := newBuilder(t)
	b.context("Q1a", "2017-01-01", "2017-03-31")
	b.context("Q1b", "2017-01-01", "2017-03-31")
	b.context("H1", "2017-01-01", "2017-06-30")
	b.context("H1other", "2017-01-01", "2017-06-30")
	b.value("Revenues", "Q1a", "400")
	b.value("Revenues", "Q1b", "300")
	b.value("Revenues", "H1", "900")
	b.value("Cost", "H1other", "100")
	doc, logs := observed(t, b)

	assert.Empty(t, Infer(doc))

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 2)
	assert.Equal(t, "quarterly value could not be determined", warnings[0].Message)
	assert.Equal(t, int64(2), warnings[0].ContextMap()["candidates"])
	assert.Equal(t, int64(0), warnings[1].ContextMap()["candidates"])
}

func TestInfer_TextAndInstantFactsIgnored(t *testing.T) {
	b := newBuilder(t)
	b.context("H1", "2017-01-01", "2017-06-30")
	inst := b.add(b.root, graph.KindContext, "id", "I")
	b.add(b.add(inst, graph.KindPeriod), graph.KindInstant, "value", "2017-06-30")
	b.add(b.root, graph.KindValue, "parameterName", "Policy", "contextRef", "H1", "value", "text")
	b.value("Assets", "I", "100")
	doc, logs := observed(t, b)

	assert.Empty(t, Infer(doc))
	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}
