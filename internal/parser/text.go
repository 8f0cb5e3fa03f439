package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/gongwen/internal/doctree"
)

// TextParser handles plain text files. Each non-blank line is one block.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	doc := &doctree.Document{Title: baseName(filename), Content: []doctree.Block{}}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		doc.Content = append(doc.Content, textBlock(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}
