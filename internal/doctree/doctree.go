package doctree

import (
	"encoding/json"
	"strings"
)

// Kind discriminates the block variants an editor document may contain.
type Kind string

const (
	KindParagraph Kind = "paragraph"
	KindHeading   Kind = "heading"
	KindTable     Kind = "table"
)

// Text alignment values accepted in Attrs.TextAlign.
const (
	AlignLeft    = "left"
	AlignCenter  = "center"
	AlignRight   = "right"
	AlignJustify = "justify"
)

// MaxHeadingLevel is the deepest numbered heading level.
const MaxHeadingLevel = 4

// Document is the root of an editor document or an imported file.
type Document struct {
	Title   string  `json:"title,omitempty"`
	Content []Block `json:"content"`
}

// Block is one top-level node of a document tree.
type Block struct {
	Type  Kind  `json:"type"`
	Level int   `json:"level,omitempty"` // 1..4, headings only
	Attrs Attrs `json:"attrs"`
	Runs  []Run `json:"runs,omitempty"`
	Rows  []Row `json:"rows,omitempty"` // tables only
}

// Attrs holds block-level formatting. Nil pointers mean "not set".
type Attrs struct {
	TextAlign            string   `json:"textAlign,omitempty"`
	FontFamily           string   `json:"fontFamily,omitempty"`
	FontSizePt           *float64 `json:"fontSizePt,omitempty"`
	Bold                 *bool    `json:"bold,omitempty"`
	ColorHex             string   `json:"colorHex,omitempty"`
	LineSpacingPt        *float64 `json:"lineSpacingPt,omitempty"`
	FirstLineIndentPt    *float64 `json:"firstLineIndentPt,omitempty"`
	FirstLineIndentChars *float64 `json:"firstLineIndentChars,omitempty"`
	DividerRed           bool     `json:"dividerRed,omitempty"`
}

// Run is an inline text span with optional character formatting.
type Run struct {
	Text       string  `json:"text"`
	Bold       bool    `json:"bold,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`
	FontSizePt float64 `json:"fontSizePt,omitempty"`
	ColorHex   string  `json:"colorHex,omitempty"`
}

// Row is a table row.
type Row struct {
	Cells []Cell `json:"cells"`
}

// Cell is a table cell holding nested blocks.
type Cell struct {
	Content []Block `json:"content"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// NewParagraph builds a paragraph with normalized attrs.
func NewParagraph(text string, attrs Attrs) Block {
	b := Block{Type: KindParagraph, Attrs: attrs.Normalize()}
	b.SetText(text)
	return b
}

// NewHeading builds a heading, clamping level into 1..4.
func NewHeading(level int, text string, attrs Attrs) Block {
	b := Block{Type: KindHeading, Level: ClampLevel(level), Attrs: attrs.Normalize()}
	b.SetText(text)
	return b
}

// NewTable builds a table from plain cell texts.
func NewTable(cells [][]string) Block {
	rows := make([]Row, 0, len(cells))
	for _, r := range cells {
		row := Row{Cells: make([]Cell, 0, len(r))}
		for _, text := range r {
			row.Cells = append(row.Cells, Cell{Content: []Block{NewParagraph(text, Attrs{})}})
		}
		rows = append(rows, row)
	}
	return Block{Type: KindTable, Rows: rows}
}

// NewDivider builds the zero-height red rule used under a red header.
func NewDivider() Block {
	return Block{Type: KindParagraph, Attrs: Attrs{DividerRed: true}}
}

// ClampLevel forces a heading level into 1..4.
func ClampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > MaxHeadingLevel {
		return MaxHeadingLevel
	}
	return level
}

// Normalize enforces the attrs invariants: a single authoritative first-line
// indent, and zero indent for centered or right-aligned text.
func (a Attrs) Normalize() Attrs {
	out := a.Clone()
	switch out.TextAlign {
	case AlignLeft, AlignCenter, AlignRight, AlignJustify, "":
	default:
		out.TextAlign = ""
	}
	if out.FirstLineIndentPt != nil && out.FirstLineIndentChars != nil {
		out.FirstLineIndentChars = nil
	}
	if out.TextAlign == AlignCenter || out.TextAlign == AlignRight {
		out.FirstLineIndentPt = nil
		out.FirstLineIndentChars = Float(0)
	}
	return out
}

// HasIndent reports whether either first-line indent field is set.
func (a Attrs) HasIndent() bool {
	return a.FirstLineIndentPt != nil || a.FirstLineIndentChars != nil
}

// Clone deep-copies the attrs.
func (a Attrs) Clone() Attrs {
	out := a
	out.FontSizePt = cloneFloat(a.FontSizePt)
	out.Bold = cloneBool(a.Bold)
	out.LineSpacingPt = cloneFloat(a.LineSpacingPt)
	out.FirstLineIndentPt = cloneFloat(a.FirstLineIndentPt)
	out.FirstLineIndentChars = cloneFloat(a.FirstLineIndentChars)
	return out
}

// Text returns the concatenated run text.
func (b Block) Text() string {
	if len(b.Runs) == 1 {
		return b.Runs[0].Text
	}
	var sb strings.Builder
	for _, r := range b.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// SetText replaces the block text. Runs are untouched when the text is
// unchanged. Otherwise the edit is mapped back onto the runs: the unchanged
// prefix and suffix keep their runs and the changed middle joins the run
// where the change starts.
func (b *Block) SetText(text string) {
	old := b.Text()
	if old == text && (text != "" || len(b.Runs) == 0) {
		return
	}
	if text == "" {
		b.Runs = nil
		return
	}
	if len(b.Runs) == 0 {
		b.Runs = []Run{{Text: text}}
		return
	}
	b.Runs = spliceRuns(b.Runs, []rune(old), []rune(text))
}

func spliceRuns(runs []Run, old, next []rune) []Run {
	p := 0
	for p < len(old) && p < len(next) && old[p] == next[p] {
		p++
	}
	s := 0
	for s < len(old)-p && s < len(next)-p && old[len(old)-1-s] == next[len(next)-1-s] {
		s++
	}
	middle := string(next[p : len(next)-s])
	oldEnd := len(old) - s

	k, pos := len(runs)-1, 0
	for i, r := range runs {
		pos += len([]rune(r.Text))
		if pos >= p {
			k = i
			break
		}
	}

	out := make([]Run, 0, len(runs))
	start := 0
	for i, r := range runs {
		rr := []rune(r.Text)
		clamp := func(x int) int { return max(0, min(x, len(rr))) }
		var sb strings.Builder
		sb.WriteString(string(rr[:clamp(p-start)]))
		if i == k {
			sb.WriteString(middle)
		}
		sb.WriteString(string(rr[clamp(oldEnd-start):]))
		start += len(rr)
		if sb.Len() == 0 {
			continue
		}
		r.Text = sb.String()
		out = append(out, r)
	}
	return out
}

// IsTextual reports whether the block is a paragraph or heading.
func (b Block) IsTextual() bool {
	return b.Type == KindParagraph || b.Type == KindHeading
}

// IsBlank reports whether the block is an empty paragraph separator.
func (b Block) IsBlank() bool {
	return b.Type == KindParagraph && !b.Attrs.DividerRed && strings.TrimSpace(b.Text()) == ""
}

// Clone deep-copies the block, including nested table content.
func (b Block) Clone() Block {
	out := b
	out.Attrs = b.Attrs.Clone()
	if b.Runs != nil {
		out.Runs = append([]Run(nil), b.Runs...)
	}
	if b.Rows != nil {
		out.Rows = make([]Row, len(b.Rows))
		for i, row := range b.Rows {
			cells := make([]Cell, len(row.Cells))
			for j, c := range row.Cells {
				cells[j] = Cell{Content: CloneBlocks(c.Content)}
			}
			out.Rows[i] = Row{Cells: cells}
		}
	}
	return out
}

// CloneBlocks deep-copies a block slice. A nil input yields an empty slice.
func CloneBlocks(blocks []Block) []Block {
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		out[i] = b.Clone()
	}
	return out
}

// UnmarshalJSON accepts editor-shaped blocks: a heading's level may also
// arrive inside attrs, and inline content may be given as "content".
func (b *Block) UnmarshalJSON(data []byte) error {
	type plain Block
	var raw struct {
		plain
		Content []Run `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var attrLevel struct {
		Attrs struct {
			Level int `json:"level"`
		} `json:"attrs"`
	}
	_ = json.Unmarshal(data, &attrLevel)

	*b = Block(raw.plain)
	if b.IsTextual() && len(b.Runs) == 0 && len(raw.Content) > 0 {
		b.Runs = raw.Content
	}
	if b.Type == KindHeading && b.Level == 0 {
		b.Level = attrLevel.Attrs.Level
	}
	if b.Type == "" {
		b.Type = KindParagraph
	}
	b.Attrs = b.Attrs.Normalize()
	return nil
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneBool(p *bool) *bool {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
