// Package extract lifts the title, addressee and attachment list out of the
// top of a document body into its structured fields.
package extract

import (
	"github.com/dgallion1/gongwen/internal/attachment"
	"github.com/dgallion1/gongwen/internal/doctree"
	"github.com/dgallion1/gongwen/internal/heading"
	"github.com/dgallion1/gongwen/internal/textnorm"
)

// Options are the positional heuristics. Zero values fall back to defaults.
type Options struct {
	TitleMinChars     int      `yaml:"title_min_chars" json:"titleMinChars"`
	TitleMaxChars     int      `yaml:"title_max_chars" json:"titleMaxChars"`
	AddresseeMaxChars int      `yaml:"addressee_max_chars" json:"addresseeMaxChars"`
	TitleKeywords     []string `yaml:"title_keywords" json:"titleKeywords"`
}

// DefaultOptions returns the stock heuristics.
func DefaultOptions() Options {
	return Options{
		TitleMinChars:     8,
		TitleMaxChars:     60,
		AddresseeMaxChars: 80,
		TitleKeywords:     []string{"关于", "通知", "请示", "函", "纪要"},
	}
}

// WithDefaults fills unset fields from DefaultOptions.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.TitleMinChars <= 0 {
		o.TitleMinChars = d.TitleMinChars
	}
	if o.TitleMaxChars <= 0 {
		o.TitleMaxChars = d.TitleMaxChars
	}
	if o.AddresseeMaxChars <= 0 {
		o.AddresseeMaxChars = d.AddresseeMaxChars
	}
	if len(o.TitleKeywords) == 0 {
		o.TitleKeywords = d.TitleKeywords
	}
	return o
}

// Fields fills empty title, addressee and attachment fields from the body.
// Each step looks only at the first non-empty paragraph or heading left by
// the previous step; attachments are taken from the first 附件 block with at
// least one item. Lifted nodes are removed. Non-empty fields are never
// overwritten, and neither input is modified.
func Fields(blocks []doctree.Block, fields doctree.StructuredFields, opts Options, policy heading.Policy) ([]doctree.Block, doctree.StructuredFields) {
	opts = opts.WithDefaults()
	out := doctree.CloneBlocks(blocks)
	fields = fields.Clone()

	// Lifting the addressee can expose a title behind it; repeat until
	// neither step makes progress so a second pass finds nothing new.
	for lifted := true; lifted; {
		lifted = false
		if fields.Title == "" {
			if i, text, ok := firstCandidate(out, policy); ok && opts.ValidTitle(text) {
				fields.Title = text
				out = remove(out, i, i+1)
				lifted = true
			}
		}
		if fields.MainTo == "" {
			if i, text, ok := firstCandidate(out, policy); ok && opts.ValidAddressee(text) {
				fields.MainTo = text
				out = remove(out, i, i+1)
				lifted = true
			}
		}
	}

	if len(fields.Attachments) == 0 {
		for i := range out {
			span, ok := attachment.CollectSpan(out, i)
			if !ok {
				continue
			}
			if list := span.List(); len(list) > 0 {
				fields.Attachments = list
				out = remove(out, span.Start, span.End)
			}
			break
		}
	}

	return out, fields
}

// firstCandidate returns the first non-blank textual block. A table in front
// of it ends the search. Heading nodes and lines that classify as headings
// are reported with ok=false.
func firstCandidate(blocks []doctree.Block, policy heading.Policy) (int, string, bool) {
	for i, b := range blocks {
		if b.Type == doctree.KindTable {
			return 0, "", false
		}
		if b.IsBlank() || b.Attrs.DividerRed {
			continue
		}
		text := textnorm.Normalize(b.Text())
		if b.Type == doctree.KindHeading || policy.Classify(text) != heading.None {
			return 0, "", false
		}
		return i, text, true
	}
	return 0, "", false
}

func remove(blocks []doctree.Block, from, to int) []doctree.Block {
	return append(blocks[:from:from], blocks[to:]...)
}
