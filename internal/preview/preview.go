// Package preview projects a laid-out document to HTML for the editor's
// read-only preview pane.
package preview

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgallion1/gongwen/internal/attachment"
	"github.com/dgallion1/gongwen/internal/doctree"
	"github.com/dgallion1/gongwen/internal/style"
	"github.com/dgallion1/gongwen/internal/textnorm"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Output is what the preview endpoint returns.
type Output struct {
	HTML         string            `json:"html"`
	CSSVariables map[string]string `json:"cssVariables"`
}

// Build renders the preview and its CSS variables.
func Build(tree []doctree.Block, fields doctree.StructuredFields) (Output, error) {
	rules := fields.TopicTemplateRules
	out, err := RenderHTML(tree, fields, rules)
	if err != nil {
		return Output{}, err
	}
	return Output{HTML: out, CSSVariables: CSSVariables(rules)}, nil
}

// RenderHTML renders title, addressee, body, sign-off and the attachment
// list. Every element carries its resolved style inline.
func RenderHTML(tree []doctree.Block, fields doctree.StructuredFields, rules *doctree.TemplateRules) (string, error) {
	root := element(atom.Div, "gw-doc", "")

	if title := strings.TrimSpace(fields.Title); title != "" {
		root.AppendChild(textElement(atom.H1, "gw-title", title, style.ForRole(style.RoleTitle, rules)))
	}
	if mainTo := strings.TrimSpace(fields.MainTo); mainTo != "" {
		root.AppendChild(textElement(atom.P, "gw-main-to", mainTo, style.ForRole(style.RoleMainTo, rules)))
	}

	styles := style.ResolveAll(tree, rules)
	for i, b := range tree {
		root.AppendChild(blockNode(b, styles[i], rules))
	}

	signOff := strings.TrimSpace(fields.SignOff)
	date := textnorm.FormatDate(fields.Date)
	if signOff != "" || date != "" {
		s := style.ForRole(style.RoleSignOff, rules)
		if signOff != "" {
			root.AppendChild(textElement(atom.P, "gw-sign-off", signOff, s))
		}
		if date != "" {
			root.AppendChild(textElement(atom.P, "gw-date", date, s))
		}
	}

	if len(fields.Attachments) > 0 {
		s := style.ForRole(style.RoleAttachment, rules)
		list := element(atom.Div, "gw-attachments", "")
		list.AppendChild(textElement(atom.P, "gw-attachment-label", attachment.Label, s))
		for _, item := range fields.Attachments {
			list.AppendChild(textElement(atom.P, "gw-attachment", attachment.FormatItem(item.Index, attachment.CleanName(item.Name)), s))
		}
		root.AppendChild(list)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return "", fmt.Errorf("render preview: %w", err)
	}
	return buf.String(), nil
}

func blockNode(b doctree.Block, ns style.NodeStyle, rules *doctree.TemplateRules) *html.Node {
	switch {
	case ns.Role == style.RoleDivider:
		return element(atom.Hr, "gw-divider", "border: 0; border-top: "+pt(style.DividerHeightPt)+" solid #"+style.RedHex)
	case b.Type == doctree.KindTable:
		return tableNode(b, rules)
	case ns.Role == style.RoleSuffixLabel:
		p := element(atom.P, "gw-suffix", inlineStyle(ns.Style))
		for i, seg := range ns.Segments {
			class := "gw-suffix-text"
			if i == 0 {
				class = "gw-suffix-label"
			}
			p.AppendChild(textElement(atom.Span, class, seg.Text, seg.Style))
		}
		return p
	case b.Type == doctree.KindHeading:
		n := runsElement("gw-h"+strconv.Itoa(ns.Level), b, ns.Style)
		n.Attr = append(n.Attr, html.Attribute{Key: "data-level", Val: strconv.Itoa(ns.Level)})
		return n
	default:
		class := "gw-body"
		if ns.Role == style.RoleFixed {
			class = "gw-fixed"
		}
		return runsElement(class, b, ns.Style)
	}
}

// runsElement renders a paragraph with one span per non-empty run, each
// carrying the run's resolved character style.
func runsElement(class string, b doctree.Block, s style.TextStyle) *html.Node {
	p := element(atom.P, class, inlineStyle(s))
	for _, run := range b.Runs {
		if run.Text == "" {
			continue
		}
		span := element(atom.Span, "gw-run", runStyle(style.ForRun(s, run)))
		span.AppendChild(&html.Node{Type: html.TextNode, Data: run.Text})
		p.AppendChild(span)
	}
	return p
}

func tableNode(b doctree.Block, rules *doctree.TemplateRules) *html.Node {
	table := element(atom.Table, "gw-table", "border-collapse: collapse")
	tbody := element(atom.Tbody, "", "")
	table.AppendChild(tbody)
	for _, row := range b.Rows {
		tr := element(atom.Tr, "", "")
		for _, cell := range row.Cells {
			td := element(atom.Td, "", "border: 1px solid #000")
			for _, inner := range cell.Content {
				if !inner.IsTextual() {
					continue
				}
				td.AppendChild(runsElement("gw-cell", inner, style.ResolveCell(inner, rules).Style))
			}
			tr.AppendChild(td)
		}
		tbody.AppendChild(tr)
	}
	return table
}

func element(a atom.Atom, class, css string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	if class != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: class})
	}
	if css != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "style", Val: css})
	}
	return n
}

func textElement(a atom.Atom, class, text string, s style.TextStyle) *html.Node {
	n := element(a, class, inlineStyle(s))
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}
