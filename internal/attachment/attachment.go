// Package attachment recognizes and re-serializes the 附件 block of an
// official document: an opener line followed by numbered item lines.
package attachment

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/gongwen/internal/doctree"
	"github.com/dgallion1/gongwen/internal/textnorm"
)

// Label is the canonical opener text.
const Label = "附件："

var (
	openerRe = regexp.MustCompile(`^附件\s*[:：]\s*(.*)$`)
	itemRe   = regexp.MustCompile(`^(\d+)[.．、]\s*(.+)$`)
	extRe    = regexp.MustCompile(`(?i)\.(docx?|pdf|xlsx?|wps|txt|pptx?|ofd|zip|rar|png|jpe?g)$`)
)

const trailingPunct = " \t，,。.；;、：:！!？?"

// ParseOpener reports whether text opens an attachment block and returns
// whatever follows the colon.
func ParseOpener(text string) (rest string, ok bool) {
	m := openerRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// ParseItem parses an itemized line such as "2. 实施方案.docx".
func ParseItem(text string) (index int, name string, ok bool) {
	m := itemRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0, "", false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}
	return n, strings.TrimSpace(m[2]), true
}

// CleanName strips a file extension and trailing punctuation from an
// attachment name.
func CleanName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimRight(name, trailingPunct)
	name = extRe.ReplaceAllString(name, "")
	return strings.TrimRight(name, trailingPunct)
}

// FormatItem renders one canonical item line.
func FormatItem(index int, name string) string {
	return strconv.Itoa(index) + ". " + name
}

// Span is one attachment block: the opener at Start and item lines up to End
// (exclusive).
type Span struct {
	Start int
	End   int
	// Named is the attachment named on the opener line itself, if any.
	Named string
	Items []doctree.AttachmentItem

	namedWasItem bool
}

// List returns the attachments of the span in order, renumbered from 1.
func (s Span) List() []doctree.AttachmentItem {
	var names []string
	if s.Named != "" {
		names = append(names, s.Named)
	}
	for _, it := range s.Items {
		names = append(names, it.Name)
	}
	out := make([]doctree.AttachmentItem, 0, len(names))
	for _, n := range names {
		out = append(out, doctree.AttachmentItem{Index: len(out) + 1, Name: n})
	}
	return out
}

// Itemized reports whether the block must render as a bare opener followed
// by numbered lines.
func (s Span) Itemized() bool {
	return len(s.Items) > 0 || s.namedWasItem
}

// CollectSpan reads the attachment block opening at start. Items are the
// consecutive following lines matching the item grammar; names that clean to
// nothing are dropped but their lines still belong to the span.
func CollectSpan(blocks []doctree.Block, start int) (Span, bool) {
	if start < 0 || start >= len(blocks) || !blocks[start].IsTextual() {
		return Span{}, false
	}
	rest, ok := ParseOpener(textnorm.Normalize(blocks[start].Text()))
	if !ok {
		return Span{}, false
	}

	span := Span{Start: start, End: start + 1}
	if rest != "" {
		if _, name, isItem := ParseItem(rest); isItem {
			span.Named = CleanName(name)
			span.namedWasItem = true
		} else {
			span.Named = CleanName(rest)
		}
	}
	for i := start + 1; i < len(blocks); i++ {
		b := blocks[i]
		if !b.IsTextual() {
			break
		}
		idx, name, ok := ParseItem(textnorm.Normalize(b.Text()))
		if !ok {
			break
		}
		span.End = i + 1
		if name = CleanName(name); name != "" {
			span.Items = append(span.Items, doctree.AttachmentItem{Index: idx, Name: name})
		}
	}
	return span, true
}

// Spans finds every attachment block in order.
func Spans(blocks []doctree.Block) []Span {
	var out []Span
	for i := 0; i < len(blocks); i++ {
		if s, ok := CollectSpan(blocks, i); ok {
			out = append(out, s)
			i = s.End - 1
		}
	}
	return out
}

// NormalizeBlocks rewrites every attachment block into canonical form: the
// opener reads 附件：<name> for a single named attachment, or a bare 附件：
// followed by "n. name" lines numbered densely from 1.
func NormalizeBlocks(blocks []doctree.Block) []doctree.Block {
	spans := Spans(blocks)
	if len(spans) == 0 {
		return doctree.CloneBlocks(blocks)
	}
	out := make([]doctree.Block, 0, len(blocks)+1)
	prev := 0
	for _, s := range spans {
		out = append(out, doctree.CloneBlocks(blocks[prev:s.Start])...)
		out = append(out, renderSpan(blocks, s)...)
		prev = s.End
	}
	return append(out, doctree.CloneBlocks(blocks[prev:])...)
}

func renderSpan(blocks []doctree.Block, s Span) []doctree.Block {
	opener := asParagraph(blocks[s.Start])
	if !s.Itemized() {
		opener.SetText(Label + s.Named)
		return []doctree.Block{opener}
	}
	opener.SetText(Label)
	out := []doctree.Block{opener}

	// Reuse the item lines' own formatting where one exists.
	var lines []doctree.Block
	for i := s.Start + 1; i < s.End; i++ {
		if _, name, _ := ParseItem(textnorm.Normalize(blocks[i].Text())); CleanName(name) != "" {
			lines = append(lines, asParagraph(blocks[i]))
		}
	}
	if s.Named != "" {
		first := doctree.Block{Type: doctree.KindParagraph, Attrs: opener.Attrs.Clone()}
		lines = append([]doctree.Block{first}, lines...)
	}
	for i, it := range s.List() {
		lines[i].SetText(FormatItem(it.Index, it.Name))
		out = append(out, lines[i])
	}
	return out
}

func asParagraph(b doctree.Block) doctree.Block {
	out := b.Clone()
	out.Type = doctree.KindParagraph
	out.Level = 0
	return out
}

// EnsureBlankLine inserts an empty paragraph before every paragraph starting
// with 附件： that is not already preceded by one.
func EnsureBlankLine(blocks []doctree.Block) []doctree.Block {
	out := make([]doctree.Block, 0, len(blocks)+1)
	for _, b := range blocks {
		if b.Type == doctree.KindParagraph && strings.HasPrefix(strings.TrimSpace(b.Text()), Label) {
			if len(out) == 0 || !out[len(out)-1].IsBlank() {
				out = append(out, doctree.NewParagraph("", doctree.Attrs{}))
			}
		}
		out = append(out, b.Clone())
	}
	return out
}
