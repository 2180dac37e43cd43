package ingest

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/agentic-research/xbrlgraph/api"
	"github.com/agentic-research/xbrlgraph/internal/graph"
)

// decode parses one source file into an element tree rooted at a document
// element that records the file name and format.
func decode(f File) (*element, error) {
	switch f.Format {
	case FormatXML:
		return decodeXML(f)
	case FormatInline:
		return decodeInline(f)
	default:
		return nil, fmt.Errorf("%s: %w", f.Name, ErrUnsupported)
	}
}

func documentElement(f File) *element {
	root := newElement(graph.KindDocument, 0, 0)
	root.set("file", f.Name)
	root.set("format", f.Format.String())
	return root
}

// decodeXML reads instance documents, linkbases and schemas. Elements with a
// contextRef become facts named by their local name; XBRL structure elements
// keep their own kind; everything else is kept as other so that nested
// linkbases (e.g. inside schema annotations) are still reached.
func decodeXML(f File) (*element, error) {
	dec := xml.NewDecoder(bytes.NewReader(f.Data))
	dec.CharsetReader = charset.NewReaderLabel

	root := documentElement(f)
	stack := []*element{root}
	var texts []*strings.Builder
	prefixes := make(map[string]string) // namespace URI → prefix

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.Name, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			line, _ := dec.InputPos()
			e := xmlElement(t, len(stack), int64(line), prefixes)
			stack[len(stack)-1].add(e)
			stack = append(stack, e)
			texts = append(texts, &strings.Builder{})

		case xml.CharData:
			if len(texts) > 0 {
				texts[len(texts)-1].Write(t)
			}

		case xml.EndElement:
			if len(stack) == 1 {
				return nil, fmt.Errorf("parse %s: unbalanced end element %s", f.Name, t.Name.Local)
			}
			e := stack[len(stack)-1]
			text := strings.TrimSpace(texts[len(texts)-1].String())
			stack, texts = stack[:len(stack)-1], texts[:len(texts)-1]
			finishElement(e, text)
		}
	}
	return root, nil
}

func xmlElement(t xml.StartElement, level int, line int64, prefixes map[string]string) *element {
	for _, a := range t.Attr {
		if a.Name.Space == "xmlns" {
			prefixes[a.Value] = a.Name.Local
		}
	}

	kind, isFact := graph.KindOther, false
	for _, a := range t.Attr {
		if a.Name.Local == api.AttrContextRef {
			isFact = true
		}
	}
	if isFact {
		kind = graph.KindValue
	} else if k, ok := structuralKinds[t.Name.Local]; ok {
		kind = k
	}

	e := newElement(kind, level, line)
	switch kind {
	case graph.KindValue:
		e.set(api.AttrParameterName, t.Name.Local)
		e.set(api.AttrPrefix, prefixes[t.Name.Space])
		e.set(api.AttrURI, t.Name.Space)
	case graph.KindOther:
		e.set("element", t.Name.Local)
	}
	for _, a := range t.Attr {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		e.set(a.Name.Local, a.Value)
	}
	return e
}

// finishElement stores the element text as its value. A typed member takes
// the value of its typed domain child.
func finishElement(e *element, text string) {
	if e.has(api.AttrValue) {
		return
	}
	if text == "" && e.kind == graph.KindTypedMember && len(e.children) > 0 {
		text = e.children[0].get(api.AttrValue)
	}
	if text != "" {
		e.set(api.AttrValue, text)
	}
}
