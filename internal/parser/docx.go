package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgallion1/gongwen/internal/doctree"
	"github.com/dgallion1/gongwen/internal/heading"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Page headers, and with them any red
// header, are not read.
type DOCXParser struct {
	warnings []string
}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	// go-docx needs a ReaderAt+size, so write to temp file.
	tmp, err := os.CreateTemp("", "gongwen-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	f, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	doc := &doctree.Document{Title: baseName(filename), Content: []doctree.Block{}}
	tables := 0
	for _, item := range f.Document.Body.Items {
		switch v := item.(type) {
		case *docx.Paragraph:
			text := docxParagraphText(v)
			if text == "" {
				continue
			}
			if level := docxHeadingLevel(text, v); level > 0 {
				doc.Content = append(doc.Content, doctree.NewHeading(level, text, doctree.Attrs{}))
				continue
			}
			switch docxJustification(v) {
			case "center":
				doc.Content = append(doc.Content, doctree.NewParagraph(text, doctree.Attrs{TextAlign: doctree.AlignCenter}))
			case "end", "right":
				doc.Content = append(doc.Content, doctree.NewParagraph(text, doctree.Attrs{TextAlign: doctree.AlignRight}))
			default:
				doc.Content = append(doc.Content, paragraph(text))
			}
		case *docx.Table:
			tables++
			b, warn := docxTable(v, tables)
			if warn != "" {
				p.warnings = append(p.warnings, warn)
			}
			if len(b.Rows) > 0 {
				doc.Content = append(doc.Content, b)
			}
		}
	}
	return doc, nil
}

// Warnings returns the table notices of the last Parse.
func (p *DOCXParser) Warnings() []string { return p.warnings }

// docxHeadingLevel decides the level of a paragraph: numbering first, then a
// Word heading style, then the conventional heading faces (黑体 for level 1,
// 楷体 for level 2, short 仿宋 lines for level 3). Zero means body text.
func docxHeadingLevel(text string, para *docx.Paragraph) int {
	if level := heading.Classify(text); level != heading.None {
		return level
	}
	if level := docxStyleLevel(para); level > 0 {
		return level
	}
	font := docxFontName(para)
	switch {
	case strings.Contains(font, "黑体"):
		return 1
	case strings.Contains(font, "楷体"):
		return 2
	case strings.Contains(font, "仿宋") && looksLikeTitle(text):
		return 3
	}
	return 0
}

func docxStyleLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := para.Properties.Style.Val
	for level := 1; level <= 6; level++ {
		n := string(rune('0' + level))
		if strings.EqualFold(style, "Heading"+n) || strings.EqualFold(style, "heading "+n) {
			return doctree.ClampLevel(level)
		}
	}
	return 0
}

func docxFontName(para *docx.Paragraph) string {
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok || run.RunProperties == nil || run.RunProperties.Fonts == nil {
			continue
		}
		fonts := run.RunProperties.Fonts
		if fonts.EastAsia != "" {
			return fonts.EastAsia
		}
		if fonts.ASCII != "" {
			return fonts.ASCII
		}
	}
	return ""
}

func docxJustification(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Justification == nil {
		return ""
	}
	return para.Properties.Justification.Val
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

// docxTable converts a Word table. Ragged rows are kept and reported.
func docxTable(t *docx.Table, n int) (doctree.Block, string) {
	var cells [][]string
	ragged := false
	for _, row := range t.TableRows {
		var texts []string
		for _, cell := range row.TableCells {
			var parts []string
			for _, para := range cell.Paragraphs {
				if s := docxParagraphText(para); s != "" {
					parts = append(parts, s)
				}
			}
			texts = append(texts, strings.Join(parts, "\n"))
		}
		if len(cells) > 0 && len(texts) != len(cells[0]) {
			ragged = true
		}
		cells = append(cells, texts)
	}
	var warn string
	if ragged {
		warn = fmt.Sprintf("表格 %d 各行列数不一致，可能含合并单元格", n)
	}
	return doctree.NewTable(cells), warn
}
