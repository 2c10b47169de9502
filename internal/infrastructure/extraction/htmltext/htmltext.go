// Package htmltext extracts line-structured text from HTML patent pages.
package htmltext

import (
	"bytes"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/turtacn/patent2rag/pkg/errors"
)

// skipped elements contribute no text.
var skipped = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Noscript: true, atom.Template: true,
	atom.Nav: true, atom.Footer: true, atom.Head: true, atom.Svg: true,
}

// block elements start and end on their own line.
var block = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Li: true, atom.Ul: true, atom.Ol: true, atom.Tr: true, atom.Table: true,
	atom.Blockquote: true, atom.Pre: true, atom.Header: true, atom.Dt: true, atom.Dd: true,
	atom.Br: true, atom.Hr: true,
}

// Document is the text content of an HTML page.
type Document struct {
	Title string
	Text  string
}

// Extract parses data and returns its title and body text. Block elements are
// separated by newlines and paragraphs by blank lines, so section headers in
// the page land on their own lines.
func Extract(data []byte) (Document, error) {
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return Document{}, errors.Wrap(err, errors.ErrCodeAcquisitionFailed, "parse html")
	}

	var doc Document
	if t := find(root, atom.Title); t != nil {
		doc.Title = strings.TrimSpace(textContent(t))
	}
	start := find(root, atom.Body)
	if start == nil {
		start = root
	}

	var b strings.Builder
	walk(start, &b)
	doc.Text = tidy(b.String())
	return doc, nil
}

func walk(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			b.WriteByte(' ')
			return
		}
		if unicode.IsSpace(rune(n.Data[0])) {
			b.WriteByte(' ')
		}
		b.WriteString(strings.Join(strings.Fields(n.Data), " "))
		if unicode.IsSpace(rune(n.Data[len(n.Data)-1])) {
			b.WriteByte(' ')
		}
		return
	case html.ElementNode:
		if skipped[n.DataAtom] {
			return
		}
	}

	isBlock := n.Type == html.ElementNode && block[n.DataAtom]
	if isBlock {
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, b)
	}
	if isBlock {
		b.WriteByte('\n')
		if n.DataAtom == atom.P {
			b.WriteString(paragraphMark + "\n")
		}
	}
}

// paragraphMark is written on its own line after a paragraph and becomes a
// single blank line in tidy output.
const paragraphMark = "\x00"

// tidy drops empty lines, collapses inner whitespace and turns paragraph
// marks into single blank lines between content lines.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	pending := false
	for _, l := range lines {
		l = strings.Join(strings.Fields(l), " ")
		switch l {
		case "":
			continue
		case paragraphMark:
			pending = true
			continue
		}
		if pending && len(out) > 0 {
			out = append(out, "")
		}
		pending = false
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}

func find(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if f := find(c, a); f != nil {
			return f
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return b.String()
}

//Personal.AI order the ending
