package presentation

import (
	"strings"

	"github.com/agentic-research/xbrlgraph/internal/graph"
	"github.com/agentic-research/xbrlgraph/internal/xbrl"
)

// Table is a view rendered for a set of contexts: one column per context,
// one row per node of the view in pre-order.
type Table struct {
	Title     string
	Subtitle  string
	Dimension string
	Contexts  []*xbrl.Context
	Columns   []string
	Rows      []Row
}

// Row is one line of a Table.
type Row struct {
	Label  string // label indented with one dash per level below the view
	Level  int
	UOM    string
	Values []string // one per table context
}

// Table renders n for ctxs. Dimension names the segment axis the contexts
// were selected by ("" for the plain table) and only affects the subtitle.
func (n *Node) Table(ctxs []*xbrl.Context, dimension string) Table {
	tbl := Table{
		Title:     n.Label(),
		Dimension: dimension,
		Contexts:  ctxs,
	}
	if dimension != "" {
		tbl.Subtitle = n.tree.doc.Labels().Label(graph.LocalName(dimension)).Text
	}
	for _, c := range ctxs {
		tbl.Columns = append(tbl.Columns, columnTitle(c))
	}
	for _, p := range n.ChildrenEx() {
		if n.tree.suppressEmpty && !p.HasValues(ctxs) {
			continue
		}
		row := Row{Label: p.indent(), Level: p.Level(), UOM: p.UOM(ctxs)}
		for _, c := range ctxs {
			row.Values = append(row.Values, p.Value(c))
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl
}

// Tables renders the plain table (contexts without segments) followed by
// one table per segment dimension. Tables without contexts are omitted.
func (n *Node) Tables() []Table {
	var out []Table
	if ctxs := n.ContextsOnAxis(false); len(ctxs) > 0 {
		out = append(out, n.Table(ctxs, ""))
	}
	for _, dim := range n.Dimensions() {
		if ctxs := n.ContextsFor(dim); len(ctxs) > 0 {
			out = append(out, n.Table(ctxs, dim))
		}
	}
	return out
}

func columnTitle(c *xbrl.Context) string {
	return strings.TrimSpace(c.SegmentDescription() + " " + c.DateDescription())
}

// Empty reports whether no row carries a value.
func (t Table) Empty() bool {
	for _, r := range t.Rows {
		for _, v := range r.Values {
			if v != "" {
				return false
			}
		}
	}
	return true
}
