package xbrl

import (
	"math"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"go.uber.org/zap"

	"github.com/agentic-research/xbrlgraph/internal/graph"
)

const (
	dateLayout   = "2006-01-02"
	daysPerMonth = 365.25 / 12
)

// Segment is one dimension/member pair narrowing a context.
type Segment struct {
	Dimension            string // axis qname, e.g. "us-gaap:StatementBusinessSegmentsAxis"
	Member               string // member qname or typed value
	Description          string // resolved member label
	DimensionDescription string // resolved axis label
}

// Context is the reporting period and dimensional scope of a fact.
// Two contexts are equal iff their IDs match.
type Context struct {
	ID         string
	Start      time.Time // zero for instants
	End        time.Time // period end, or the instant
	Instant    bool
	Months     int
	Segments   []Segment
	Identifier string // entity identifier (e.g. CIK)
	Scheme     string
}

// resolveContext builds the Context for ref, or nil when no context node
// carries that id.
func resolveContext(d *Document, ref string) *Context {
	n := d.graph.FindByIDKind(ref, graph.KindContext)
	if n.IsEmpty() {
		return nil
	}

	c := &Context{ID: ref}

	ident := graph.First(n.Facts(graph.KindIdentifier))
	c.Identifier = strings.TrimSpace(ident.Attr("value"))
	c.Scheme = ident.Attr("scheme")

	if inst := graph.First(n.Facts(graph.KindInstant)); !inst.IsEmpty() {
		c.Instant = true
		c.End = parseDate(d, inst.Attr("value"))
	} else {
		c.Start = parseDate(d, graph.First(n.Facts(graph.KindStartDate)).Attr("value"))
		c.End = parseDate(d, graph.First(n.Facts(graph.KindEndDate)).Attr("value"))
		c.Months = monthsBetween(c.Start, c.End)
	}

	for _, m := range n.Facts(graph.KindExplicitMember, graph.KindTypedMember) {
		dim := m.Attr("dimension")
		member := strings.TrimSpace(m.Attr("value"))
		seg := Segment{
			Dimension:            dim,
			Member:               member,
			DimensionDescription: d.labels.Label(graph.LocalName(dim)).Text,
		}
		if m.Kind() == graph.KindExplicitMember {
			seg.Description = d.labels.Label(graph.LocalName(member)).Text
		} else {
			seg.Description = member
		}
		c.Segments = append(c.Segments, seg)
	}
	return c
}

func parseDate(d *Document, s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		d.logger.Debug("unparsable period date", zap.String("date", s), zap.Error(err))
		return time.Time{}
	}
	return t
}

// monthsBetween rounds the span between start and end to whole months.
func monthsBetween(start, end time.Time) int {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return 0
	}
	days := end.Sub(start).Hours() / 24
	return int(math.Round(days / daysPerMonth))
}

// Date is the period end (or instant) as YYYY-MM-DD.
func (c *Context) Date() string {
	if c == nil || c.End.IsZero() {
		return ""
	}
	return c.End.Format(dateLayout)
}

// StartDate is the period start as YYYY-MM-DD ("" for instants).
func (c *Context) StartDate() string {
	if c == nil || c.Start.IsZero() {
		return ""
	}
	return c.Start.Format(dateLayout)
}

// Year is the year of the period end.
func (c *Context) Year() string {
	date := c.Date()
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

// DateDescription renders the period for column headers.
func (c *Context) DateDescription() string {
	if c == nil {
		return ""
	}
	if c.Instant || c.Start.IsZero() {
		return c.Date()
	}
	return c.StartDate() + " - " + c.Date()
}

// WithSegments reports whether at least one segment narrows the context.
func (c *Context) WithSegments() bool {
	return c != nil && len(c.Segments) > 0
}

// SegmentDescription joins the member descriptions with "/".
func (c *Context) SegmentDescription() string {
	if c == nil {
		return ""
	}
	parts := make([]string, 0, len(c.Segments))
	for _, s := range c.Segments {
		parts = append(parts, s.Description)
	}
	return strings.Join(parts, "/")
}

// DimensionDescription joins the axis descriptions with "/".
func (c *Context) DimensionDescription() string {
	if c == nil {
		return ""
	}
	parts := make([]string, 0, len(c.Segments))
	for _, s := range c.Segments {
		parts = append(parts, s.DimensionDescription)
	}
	return strings.Join(parts, "/")
}

// HasDimension reports whether any segment uses dimension.
func (c *Context) HasDimension(dimension string) bool {
	if c == nil {
		return false
	}
	for _, s := range c.Segments {
		if s.Dimension == dimension {
			return true
		}
	}
	return false
}

// Equal compares by ID; nil equals only nil.
func (c *Context) Equal(o *Context) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.ID == o.ID
}

// CompareContexts orders by ID with nil first.
func CompareContexts(a, b *Context) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return strings.Compare(a.ID, b.ID)
}

// ContainsContext reports whether ctxs holds a context equal to c. A nil c
// is never contained: facts without context do not belong to any column.
func ContainsContext(ctxs []*Context, c *Context) bool {
	if c == nil {
		return false
	}
	for _, x := range ctxs {
		if c.Equal(x) {
			return true
		}
	}
	return false
}
