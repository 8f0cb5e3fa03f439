// Package export writes a laid-out document as a GB/T 9704 DOCX file. All
// paragraph and run formatting is read from the style resolver.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/gongwen/internal/attachment"
	"github.com/dgallion1/gongwen/internal/doctree"
	"github.com/dgallion1/gongwen/internal/style"
	"github.com/dgallion1/gongwen/internal/textnorm"
	"github.com/fumiama/go-docx"
)

// CoverPlaceholder is the body line of an attachment cover page.
const CoverPlaceholder = "（附件正文请在此处编辑）"

// Header and footer distances in twips (Word defaults).
const (
	headerTwips = 851
	footerTwips = 992
)

// Options control the parts of the export that are not in the document.
type Options struct {
	// UnitName is printed as the red header when the document asks for one.
	UnitName string
}

// Write renders the document and writes the DOCX archive to w.
func Write(w io.Writer, tree []doctree.Block, fields doctree.StructuredFields, opts Options) error {
	f := Build(tree, fields, opts)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

// Build assembles the DOCX document in memory.
func Build(tree []doctree.Block, fields doctree.StructuredFields, opts Options) *docx.Docx {
	rules := fields.TopicTemplateRules
	f := docx.New().WithDefaultTheme()

	if fields.ExportWithRedhead && strings.TrimSpace(opts.UnitName) != "" {
		addRedhead(f, fields, opts.UnitName, rules)
	}

	if title := strings.TrimSpace(fields.Title); title != "" {
		addLine(f, title, style.ForRole(style.RoleTitle, rules))
	}
	if mainTo := strings.TrimSpace(fields.MainTo); mainTo != "" {
		addLine(f, mainTo, style.ForRole(style.RoleMainTo, rules))
	}

	styles := style.ResolveAll(tree, rules)
	for i, b := range tree {
		addBlock(f, b, styles[i], rules)
	}

	addSignOff(f, fields, rules)
	addAttachments(f, fields.Attachments, rules)

	f.Document.Body.Items = append(f.Document.Body.Items, sectionProperties(rules))
	return f
}

func addRedhead(f *docx.Docx, fields doctree.StructuredFields, unitName string, rules *doctree.TemplateRules) {
	body := style.ForRole(style.RoleMainTo, rules)
	if copyNo := strings.TrimSpace(fields.CopyNo); copyNo != "" {
		addLine(f, copyNo, body)
	}
	addLine(f, strings.TrimSpace(unitName), style.ForRole(style.RoleRedhead, rules))

	docNo := textnorm.NormalizeDocNoBracket(strings.TrimSpace(fields.DocNo))
	signatory := strings.TrimSpace(fields.Signatory)
	switch {
	case docNo != "" && signatory != "":
		p := f.AddParagraph()
		applyParagraph(p, body)
		addRun(p, docNo, body)
		p.AddTab()
		addRun(p, signatory, body)
	case docNo != "":
		centered := body
		centered.TextAlign = doctree.AlignCenter
		addLine(f, docNo, centered)
	case signatory != "":
		right := body
		right.TextAlign = doctree.AlignRight
		addLine(f, signatory, right)
	}
	addDivider(f.AddParagraph())
}

func addBlock(f *docx.Docx, b doctree.Block, ns style.NodeStyle, rules *doctree.TemplateRules) {
	switch {
	case ns.Role == style.RoleDivider:
		addDivider(f.AddParagraph())
	case b.Type == doctree.KindTable:
		addTable(f, b, rules)
	case ns.Role == style.RoleSuffixLabel:
		p := f.AddParagraph()
		applyParagraph(p, ns.Style)
		for _, seg := range ns.Segments {
			addRun(p, seg.Text, seg.Style)
		}
	default:
		p := f.AddParagraph()
		applyParagraph(p, ns.Style)
		addRuns(p, b, ns.Style)
	}
}

func addRuns(p *docx.Paragraph, b doctree.Block, s style.TextStyle) {
	for _, run := range b.Runs {
		if run.Text == "" {
			continue
		}
		addRun(p, run.Text, style.ForRun(s, run))
	}
}

func addDivider(p *docx.Paragraph) {
	s := style.Divider()
	applyParagraph(p, s)
	p.Properties.Shade = &docx.Shade{Val: "clear", Color: "auto", Fill: s.ColorHex}
}

func addTable(f *docx.Docx, b doctree.Block, rules *doctree.TemplateRules) {
	cols := 0
	for _, row := range b.Rows {
		cols = max(cols, len(row.Cells))
	}
	if len(b.Rows) == 0 || cols == 0 {
		return
	}

	t := f.AddTable(len(b.Rows), cols, 0, nil)
	for i, row := range b.Rows {
		for j := 0; j < cols; j++ {
			cell := t.TableRows[i].TableCells[j]
			written := 0
			if j < len(row.Cells) {
				for _, inner := range row.Cells[j].Content {
					if !inner.IsTextual() {
						continue
					}
					s := style.ResolveCell(inner, rules).Style
					p := cell.AddParagraph()
					applyParagraph(p, s)
					addRuns(p, inner, s)
					written++
				}
			}
			if written == 0 {
				applyParagraph(cell.AddParagraph(), style.TableCell(rules))
			}
		}
	}
}

// addSignOff writes two blank lines, the issuing unit and the date, both
// right aligned.
func addSignOff(f *docx.Docx, fields doctree.StructuredFields, rules *doctree.TemplateRules) {
	signOff := strings.TrimSpace(fields.SignOff)
	date := textnorm.FormatDate(fields.Date)
	if signOff == "" && date == "" {
		return
	}
	s := style.ForRole(style.RoleSignOff, rules)
	blank := s
	blank.TextAlign = doctree.AlignLeft
	for i := 0; i < 2; i++ {
		applyParagraph(f.AddParagraph(), blank)
	}
	if signOff != "" {
		addLine(f, signOff, s)
	}
	if date != "" {
		addLine(f, date, s)
	}
}

// addAttachments writes the 附件 list and one cover page per attachment.
func addAttachments(f *docx.Docx, items []doctree.AttachmentItem, rules *doctree.TemplateRules) {
	if len(items) == 0 {
		return
	}
	s := style.ForRole(style.RoleAttachment, rules)
	applyParagraph(f.AddParagraph(), s)
	addLine(f, attachment.Label, s)
	for _, item := range items {
		addLine(f, attachment.FormatItem(item.Index, attachment.CleanName(item.Name)), s)
	}

	for _, item := range items {
		f.AddParagraph().AddPageBreaks()
		addLine(f, "附件"+strconv.Itoa(item.Index), style.ForRole(style.RoleCoverLabel, rules))
		addLine(f, attachment.CleanName(item.Name), style.ForRole(style.RoleCoverTitle, rules))
		addLine(f, CoverPlaceholder, style.Body(rules))
	}
}

func addLine(f *docx.Docx, text string, s style.TextStyle) *docx.Paragraph {
	p := f.AddParagraph()
	applyParagraph(p, s)
	addRun(p, text, s)
	return p
}

func sectionProperties(rules *doctree.TemplateRules) *docx.SectPr {
	m := style.Margins(rules)
	return &docx.SectPr{
		PgSz: &docx.PgSz{
			W: int(style.CmToTwips(style.PageWidthCm)),
			H: int(style.CmToTwips(style.PageHeightCm)),
		},
		PgMar: &docx.PgMar{
			Top:    int(style.CmToTwips(m.TopCm)),
			Bottom: int(style.CmToTwips(m.BottomCm)),
			Left:   int(style.CmToTwips(m.LeftCm)),
			Right:  int(style.CmToTwips(m.RightCm)),
			Header: headerTwips,
			Footer: footerTwips,
		},
	}
}
