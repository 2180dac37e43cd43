package ingest

import (
	"bytes"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/agentic-research/xbrlgraph/api"
	"github.com/agentic-research/xbrlgraph/internal/graph"
)

// The HTML parser lower-cases attribute names; these are restored.
var camelAttrs = map[string]string{
	"contextref":     api.AttrContextRef,
	"unitref":        "unitRef",
	"continuedat":    api.AttrContinuedAt,
	"preferredlabel": "preferredLabel",
	"roleuri":        "roleURI",
	"arcroleuri":     "arcroleURI",
}

type inlineDecoder struct {
	file     File
	root     *element
	prefixes map[string]string // prefix → namespace URI
	line     int64
}

// decodeInline reads an inline XBRL document. Facts are attached flat below
// the document element: nonFraction values are normalized to plain numbers,
// nonNumeric and continuation text is split into fragment children. Contexts
// and units from the hidden header keep their structure.
func decodeInline(f File) (*element, error) {
	doc, err := html.Parse(bytes.NewReader(f.Data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.Name, err)
	}
	d := &inlineDecoder{file: f, root: documentElement(f), prefixes: make(map[string]string)}
	d.walk(doc, d.root, 1)
	return d.root, nil
}

func (d *inlineDecoder) walk(n *html.Node, parent *element, level int) {
	if n.Type != html.ElementNode {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			d.walk(c, parent, level)
		}
		return
	}
	d.line++

	for _, a := range n.Attr {
		if strings.HasPrefix(a.Key, "xmlns:") {
			d.prefixes[strings.TrimPrefix(a.Key, "xmlns:")] = a.Val
		}
	}

	prefix, local := splitQName(n.Data)
	next := parent
	switch {
	case prefix == "ix" && local == "exclude":
		return
	case prefix == "ix" && local == "nonfraction":
		d.root.add(d.nonFraction(n))
	case prefix == "ix" && local == "nonnumeric":
		d.root.add(d.textFact(n, graph.KindValue))
	case prefix == "ix" && local == "continuation":
		d.root.add(d.textFact(n, graph.KindContinuation))
	case prefix == "ix":
		// header, hidden, references, resources: containers only
	case prefix != "":
		if k, ok := lowerKinds[local]; ok {
			e := d.element(n, k, level)
			if text := strings.TrimSpace(ownText(n)); text != "" {
				e.set(api.AttrValue, text)
			}
			parent.add(e)
			next = e
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.walk(c, next, level+1)
	}
	if next != parent && next.kind == graph.KindTypedMember && !next.has(api.AttrValue) && len(next.children) > 0 {
		next.set(api.AttrValue, next.children[0].get(api.AttrValue))
	}
}

func (d *inlineDecoder) element(n *html.Node, kind graph.Kind, level int) *element {
	e := newElement(kind, level, d.line)
	for _, a := range n.Attr {
		if strings.HasPrefix(a.Key, "xmlns") {
			continue
		}
		key := a.Key
		if _, local := splitQName(key); local != key {
			key = local
		}
		if camel, ok := camelAttrs[key]; ok {
			key = camel
		}
		e.set(key, a.Val)
	}
	return e
}

func (d *inlineDecoder) fact(n *html.Node, kind graph.Kind) *element {
	e := d.element(n, kind, 1)
	if kind != graph.KindValue {
		return e
	}
	prefix, local := splitQName(e.get("name"))
	e.set(api.AttrParameterName, local)
	e.set(api.AttrPrefix, prefix)
	e.set(api.AttrURI, d.prefixes[prefix])
	return e
}

func (d *inlineDecoder) nonFraction(n *html.Node) *element {
	e := d.fact(n, graph.KindValue)
	if e.get("nil") == "true" {
		e.set(api.AttrValue, "")
		return e
	}
	e.set(api.AttrValue, normalizeNumber(allText(n), e.get("format"), e.get("scale"), e.get("sign")))
	return e
}

// textFact builds a nonNumeric fact or a continuation with one fragment
// child per text run.
func (d *inlineDecoder) textFact(n *html.Node, kind graph.Kind) *element {
	e := d.fact(n, kind)
	for _, s := range textRuns(n) {
		frag := newElement(graph.KindFragment, 2, e.line)
		frag.set(api.AttrValue, s)
		e.add(frag)
	}
	return e
}

// textRuns returns the trimmed non-empty text nodes below n in document
// order, skipping excluded content.
func textRuns(n *html.Node) []string {
	var out []string
	var visit func(*html.Node)
	visit = func(c *html.Node) {
		switch c.Type {
		case html.TextNode:
			if s := strings.TrimSpace(c.Data); s != "" {
				out = append(out, strings.Join(strings.Fields(s), " "))
			}
			return
		case html.ElementNode:
			if c.Data == "ix:exclude" || c.Data == "script" || c.Data == "style" {
				return
			}
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			visit(cc)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		visit(c)
	}
	return out
}

func allText(n *html.Node) string {
	return strings.Join(textRuns(n), "")
}

// ownText is the text directly inside n, ignoring child elements.
func ownText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

// normalizeNumber turns a displayed inline number into its reported value:
// the display format is undone, the scale applied and the sign attribute
// honoured. Dashes and fixed-zero formats stand for zero.
func normalizeNumber(text, format, scale, sign string) string {
	_, fmtName := splitQName(format)
	fmtName = strings.ReplaceAll(strings.ToLower(fmtName), "-", "")
	s := strings.TrimSpace(text)

	switch {
	case fmtName == "fixedzero" || fmtName == "zerodash" || s == "-" || s == "\u2014" || s == "\u2013":
		s = "0"
	case strings.Contains(fmtName, "commadecimal"):
		s = strings.NewReplacer(".", "", " ", "", "\u00a0", "").Replace(s)
		s = strings.ReplaceAll(s, ",", ".")
	default:
		s = strings.NewReplacer(",", "", " ", "", "\u00a0", "").Replace(s)
	}

	if n, err := strconv.Atoi(strings.TrimSpace(scale)); err == nil && n != 0 {
		s = applyScale(s, n)
	}
	if sign == "-" && s != "0" {
		s = "-" + s
	}
	return s
}

// applyScale multiplies the decimal string s by 10^scale without rounding.
// Unparsable input is returned unchanged.
func applyScale(s string, scale int) string {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return s
	}
	factor := new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(abs(scale))), nil))
	if scale > 0 {
		r.Mul(r, factor)
	} else {
		r.Quo(r, factor)
	}

	decimals := 0
	if i := strings.IndexByte(s, '.'); i >= 0 {
		decimals = len(s) - i - 1
	}
	decimals -= scale
	if decimals < 0 {
		decimals = 0
	}
	out := r.FloatString(decimals)
	if strings.Contains(out, ".") {
		out = strings.TrimRight(strings.TrimRight(out, "0"), ".")
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
