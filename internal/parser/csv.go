package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/gongwen/internal/doctree"
)

// CSVParser handles CSV files. The whole file becomes one table block, the
// header row included.
type CSVParser struct {
	warnings []string
}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := &doctree.Document{Title: baseName(filename), Content: []doctree.Block{}}
	if len(records) == 0 {
		return doc, nil
	}

	width := len(records[0])
	for i, row := range records[1:] {
		if len(row) != width {
			p.warnings = append(p.warnings, fmt.Sprintf("表格 1 第%d行列数为%d，表头为%d列", i+2, len(row), width))
		}
		for j := range row {
			row[j] = strings.TrimSpace(row[j])
		}
	}
	doc.Content = append(doc.Content, doctree.NewTable(records))
	return doc, nil
}

// Warnings returns the ragged-row notices of the last Parse.
func (p *CSVParser) Warnings() []string { return p.warnings }
