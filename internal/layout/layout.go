// Package layout is the auto-layout entry point: it sequences field
// extraction, heading classification, punctuation, renumbering and
// attachment normalization over the editable middle of a document, and
// restores the template's fixed leading and trailing nodes around it.
package layout

import (
	"strings"

	"github.com/dgallion1/gongwen/internal/attachment"
	"github.com/dgallion1/gongwen/internal/doctree"
	"github.com/dgallion1/gongwen/internal/extract"
	"github.com/dgallion1/gongwen/internal/heading"
	"github.com/dgallion1/gongwen/internal/style"
	"github.com/dgallion1/gongwen/internal/textnorm"
)

// Stage names a step of the layout pass.
type Stage int

const (
	StageExtracted Stage = iota + 1
	StageClassified
	StagePunctuated
	StageRenumbered
	StageAttachmentNormalized
	StageRuleResolved
)

func (s Stage) String() string {
	switch s {
	case StageExtracted:
		return "extracted"
	case StageClassified:
		return "classified"
	case StagePunctuated:
		return "punctuated"
	case StageRenumbered:
		return "renumbered"
	case StageAttachmentNormalized:
		return "attachment_normalized"
	case StageRuleResolved:
		return "rule_resolved"
	default:
		return "unknown"
	}
}

// DefaultPlaceholder is the body line of a document created from a template.
const DefaultPlaceholder = "（请在此输入正文）"

// Result is the normalized tree and its updated fields.
type Result struct {
	Tree   []doctree.Block          `json:"tree"`
	Fields doctree.StructuredFields `json:"structuredFields"`
}

// Engine runs layout passes. The zero value uses the default policies.
// An Engine holds no per-call state and may be shared between goroutines.
type Engine struct {
	Heading heading.Policy
	Extract extract.Options

	// OnStage, if set, observes the editable region after each stage. The
	// slice is a copy.
	OnStage func(Stage, []doctree.Block)
}

// New returns an engine with the given policies.
func New(policy heading.Policy, opts extract.Options) *Engine {
	return &Engine{Heading: policy.WithDefaults(), Extract: opts.WithDefaults()}
}

var defaultEngine = &Engine{}

// Apply runs a layout pass without template rules.
func Apply(tree []doctree.Block, fields doctree.StructuredFields) Result {
	return defaultEngine.Apply(tree, fields)
}

// ApplyWithRules runs a layout pass using fields.TopicTemplateRules, if set.
func ApplyWithRules(tree []doctree.Block, fields doctree.StructuredFields) Result {
	return defaultEngine.ApplyWithRules(tree, fields)
}

// Apply runs a layout pass without template rules.
func (e *Engine) Apply(tree []doctree.Block, fields doctree.StructuredFields) Result {
	return e.run(tree, fields, nil)
}

// ApplyWithRules runs a layout pass using fields.TopicTemplateRules, if set.
func (e *Engine) ApplyWithRules(tree []doctree.Block, fields doctree.StructuredFields) Result {
	return e.run(tree, fields, fields.TopicTemplateRules)
}

// ResolveStyles computes the per-node styles of a laid-out tree.
func (e *Engine) ResolveStyles(tree []doctree.Block, rules *doctree.TemplateRules) []style.NodeStyle {
	styles := style.ResolveAll(tree, rules)
	e.emit(StageRuleResolved, tree)
	return styles
}

func (e *Engine) run(tree []doctree.Block, fields doctree.StructuredFields, rules *doctree.TemplateRules) Result {
	n := len(tree)
	leading, trailing := style.FixedCounts(n, rules)

	middle := doctree.CloneBlocks(tree[leading : n-trailing])
	for i := range middle {
		if middle[i].IsTextual() && !middle[i].Attrs.DividerRed {
			middle[i].SetText(textnorm.Normalize(middle[i].Text()))
		}
	}

	middle, fields = extract.Fields(middle, fields, e.Extract, e.Heading)
	e.emit(StageExtracted, middle)

	skip := attachmentLines(middle)
	e.classify(middle, skip)
	e.emit(StageClassified, middle)

	punctuate(middle, skip)
	e.emit(StagePunctuated, middle)

	middle = heading.Renumber(middle)
	e.emit(StageRenumbered, middle)

	middle = attachment.EnsureBlankLine(attachment.NormalizeBlocks(middle))
	e.emit(StageAttachmentNormalized, middle)

	out := make([]doctree.Block, 0, leading+len(middle)+trailing)
	if rules != nil {
		out = append(out, doctree.CloneBlocks(rules.ContentTemplate.LeadingNodes[:leading])...)
	}
	out = append(out, middle...)
	if rules != nil {
		fixed := TrailingSnapshot(rules)
		out = append(out, fixed[len(fixed)-trailing:]...)
	}
	return Result{Tree: out, Fields: fields}
}

func (e *Engine) emit(s Stage, blocks []doctree.Block) {
	if e.OnStage != nil {
		e.OnStage(s, doctree.CloneBlocks(blocks))
	}
}

// attachmentLines marks the blocks belonging to attachment blocks so the
// heading passes leave their numbered items alone.
func attachmentLines(blocks []doctree.Block) []bool {
	skip := make([]bool, len(blocks))
	for _, s := range attachment.Spans(blocks) {
		for i := s.Start; i < s.End; i++ {
			skip[i] = true
		}
	}
	return skip
}

// classify fixes each node's type and level. Heading nodes with a valid
// level keep it, paragraphs that read as headings are promoted and
// attachment lines always become paragraphs. Body paragraphs without an
// indent get the 2-character first-line indent.
func (e *Engine) classify(blocks []doctree.Block, skip []bool) {
	for i := range blocks {
		b := &blocks[i]
		if skip[i] && b.Type == doctree.KindHeading {
			b.Type, b.Level = doctree.KindParagraph, 0
		}
		if skip[i] || !b.IsTextual() || b.Attrs.DividerRed {
			continue
		}
		text := b.Text()
		if b.Type == doctree.KindHeading {
			if b.Level >= 1 && b.Level <= doctree.MaxHeadingLevel {
				continue
			}
			b.Type, b.Level = doctree.KindParagraph, 0
		}
		if level := e.Heading.Classify(text); level != heading.None {
			b.Type, b.Level = doctree.KindHeading, level
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		if !b.Attrs.HasIndent() && b.Attrs.TextAlign != doctree.AlignCenter && b.Attrs.TextAlign != doctree.AlignRight {
			b.Attrs.FirstLineIndentChars = doctree.Float(style.BodyIndentChars)
		}
	}
}

func punctuate(blocks []doctree.Block, skip []bool) {
	for i := range blocks {
		b := &blocks[i]
		if skip[i] || !b.IsTextual() || b.Attrs.DividerRed || b.IsBlank() {
			continue
		}
		text := b.Text()
		if b.Type == doctree.KindParagraph {
			b.SetText(textnorm.ApplyPunctuation(0, text))
			continue
		}
		_, prefix, rest, _ := heading.Match(text)
		if rest == "" && (b.Level == 3 || b.Level == 4) {
			continue
		}
		b.SetText(prefix + textnorm.ApplyPunctuation(b.Level, rest))
	}
}

// TrailingSnapshot copies the template's trailing nodes. From the first
// suffix label line on, every non-empty node is forced to the body style.
func TrailingSnapshot(rules *doctree.TemplateRules) []doctree.Block {
	if rules == nil {
		return nil
	}
	nodes := rules.ContentTemplate.TrailingNodes
	out := make([]doctree.Block, 0, len(nodes))
	inSuffix := false
	for _, n := range nodes {
		text := n.Text()
		if n.IsTextual() && style.IsSuffixLabel(text) {
			inSuffix = true
		}
		if inSuffix && text != "" {
			out = append(out, style.ForceBodyStyle(n, rules.Body))
			continue
		}
		out = append(out, n.Clone())
	}
	return out
}

// BuildFromTemplate returns the body of a new document: the template's
// leading nodes, one placeholder paragraph and the trailing nodes. A
// template without fixed nodes yields an empty body.
func BuildFromTemplate(rules *doctree.TemplateRules) []doctree.Block {
	if rules == nil {
		return []doctree.Block{}
	}
	ct := rules.ContentTemplate
	if len(ct.LeadingNodes) == 0 && len(ct.TrailingNodes) == 0 {
		return []doctree.Block{}
	}
	placeholder := strings.TrimSpace(ct.BodyPlaceholder)
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}

	out := doctree.CloneBlocks(ct.LeadingNodes)
	out = append(out, doctree.NewParagraph(placeholder, doctree.Attrs{FirstLineIndentChars: doctree.Float(style.BodyIndentChars)}))
	return append(out, TrailingSnapshot(rules)...)
}
