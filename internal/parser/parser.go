package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/gongwen/internal/check"
	"github.com/dgallion1/gongwen/internal/doctree"
	"github.com/dgallion1/gongwen/internal/extract"
	"github.com/dgallion1/gongwen/internal/heading"
	"github.com/dgallion1/gongwen/internal/textnorm"
)

// ErrUnsupportedFormat is returned for file extensions no parser handles.
var ErrUnsupportedFormat = errors.New("unsupported file extension")

// Parser converts raw document bytes into a flat document tree.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// Options tune individual parsers.
type Options struct {
	FallbackPdftotext bool
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.FallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// ImportReport summarizes what an import recognized and what needs a look.
type ImportReport struct {
	UnrecognizedTitleCount int      `json:"unrecognizedTitleCount"`
	NumberingWarnings      []string `json:"numberingWarnings"`
	TableWarnings          []string `json:"tableWarnings"`
	Notes                  []string `json:"notes"`
}

// Imported is a parsed file with its sniffed fields and report.
type Imported struct {
	Document *doctree.Document        `json:"document"`
	Fields   doctree.StructuredFields `json:"structuredFields"`
	Report   ImportReport             `json:"report"`
}

// tableWarner is implemented by parsers that can skip malformed tables.
type tableWarner interface {
	Warnings() []string
}

// Import notes shown to the user.
const (
	NoteRedheadDropped = "导入时已忽略原文件页眉/红头（按系统红头模板重建）。"
	NoteBodyIndent     = "已执行轻量套版：正文默认首行缩进2字。"
)

// Import parses a file and builds its import report. The document number is
// sniffed from the first blocks.
func Import(r io.Reader, filename string, opts Options) (*Imported, error) {
	p, err := ForFile(filename, opts)
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(r, filename)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	fields := doctree.NewStructuredFields()
	if docNo, ok := extract.SniffDocNo(doc.Content); ok {
		fields.DocNo = docNo
	}

	report := ImportReport{
		NumberingWarnings: check.NumberingWarnings(doc.Content),
		TableWarnings:     []string{},
		Notes:             []string{NoteRedheadDropped, NoteBodyIndent},
	}
	if report.NumberingWarnings == nil {
		report.NumberingWarnings = []string{}
	}
	if tw, ok := p.(tableWarner); ok {
		report.TableWarnings = append(report.TableWarnings, tw.Warnings()...)
	}
	for _, b := range doc.Content {
		if b.Type == doctree.KindParagraph && looksLikeTitle(b.Text()) {
			report.UnrecognizedTitleCount++
		}
	}
	return &Imported{Document: doc, Fields: fields, Report: report}, nil
}

// looksLikeTitle reports short lines that do not end a sentence.
func looksLikeTitle(text string) bool {
	text = strings.TrimSpace(text)
	n := textnorm.Len(text)
	return n >= 4 && n <= 24 && !strings.HasSuffix(text, "。")
}

// textBlock turns one line of plain text into a heading when its numbering
// classifies, and into an indented paragraph otherwise.
func textBlock(text string) doctree.Block {
	text = strings.TrimSpace(text)
	if level := heading.Classify(text); level != heading.None {
		return doctree.NewHeading(level, text, doctree.Attrs{})
	}
	return paragraph(text)
}

// paragraph builds an imported body paragraph with the default indent.
func paragraph(text string) doctree.Block {
	return doctree.NewParagraph(text, doctree.Attrs{FirstLineIndentChars: doctree.Float(2)})
}

func baseName(filename string) string {
	return strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
}
