package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/gongwen/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. ATX and setext
// headings keep their level (clamped to 4); GFM tables become table blocks.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	root := md.Parser().Parse(text.NewReader(src))

	doc := &doctree.Document{Title: baseName(filename), Content: []doctree.Block{}}
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			t := strings.TrimSpace(extractText(node, src))
			if t != "" {
				doc.Content = append(doc.Content, doctree.NewHeading(node.Level, t, doctree.Attrs{}))
			}
		case *ast.Paragraph:
			// CJK text wraps without spaces: soft breaks join directly.
			t := strings.ReplaceAll(extractText(node, src), "\n", "")
			if t = strings.TrimSpace(t); t != "" {
				doc.Content = append(doc.Content, textBlock(t))
			}
		case *east.Table:
			doc.Content = append(doc.Content, markdownTable(node, src))
		case *ast.List:
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				if t := strings.TrimSpace(extractText(item, src)); t != "" {
					doc.Content = append(doc.Content, textBlock(strings.ReplaceAll(t, "\n", "")))
				}
			}
		default:
			for _, line := range strings.Split(extractText(n, src), "\n") {
				if line = strings.TrimSpace(line); line != "" {
					doc.Content = append(doc.Content, paragraph(line))
				}
			}
		}
	}
	return doc, nil
}

func markdownTable(t *east.Table, src []byte) doctree.Block {
	var cells [][]string
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		var texts []string
		for c := row.FirstChild(); c != nil; c = c.NextSibling() {
			texts = append(texts, extractText(c, src))
		}
		cells = append(cells, texts)
	}
	return doctree.NewTable(cells)
}

// extractText gets the text content of a goldmark AST node. Leaf blocks such
// as code blocks carry their text as lines; everything else is collected
// from the inline children.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && !n.HasChildren() {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			if c.Type() == ast.TypeBlock && buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
