package presentation

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Markdown writes tables as GitHub-flavored Markdown.
func Markdown(w io.Writer, tables []Table) error {
	var buf bytes.Buffer
	for i, t := range tables {
		if i == 0 || t.Title != tables[i-1].Title {
			fmt.Fprintf(&buf, "## %s\n\n", escapeCell(t.Title))
		}
		if t.Subtitle != "" {
			fmt.Fprintf(&buf, "### %s\n\n", escapeCell(t.Subtitle))
		}

		buf.WriteString("| | |")
		for _, c := range t.Columns {
			buf.WriteString(" " + escapeCell(c) + " |")
		}
		buf.WriteString("\n|---|---|")
		buf.WriteString(strings.Repeat("---:|", len(t.Columns)))
		buf.WriteString("\n")

		for _, r := range t.Rows {
			buf.WriteString("| " + escapeCell(r.Label) + " | " + escapeCell(r.UOM) + " |")
			for _, v := range r.Values {
				buf.WriteString(" " + escapeCell(v) + " |")
			}
			buf.WriteString("\n")
		}
		buf.WriteString("\n")
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// HTML writes tables as HTML, converting the Markdown rendering with goldmark.
func HTML(w io.Writer, tables []Table) error {
	var src bytes.Buffer
	if err := Markdown(&src, tables); err != nil {
		return err
	}
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	if err := md.Convert(src.Bytes(), w); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

var cellReplacer = strings.NewReplacer("|", `\|`, "\n", " ", "\r", "")

func escapeCell(s string) string {
	return cellReplacer.Replace(s)
}
