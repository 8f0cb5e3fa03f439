package style

import (
	"regexp"
	"strings"

	"github.com/dgallion1/gongwen/internal/doctree"
)

// suffixLabelRe matches roster and distribution labels such as 主持人：,
// 参会人员： or 抄送：, tolerating spaces between the characters.
var suffixLabelRe = regexp.MustCompile(
	`^\s*(?:主\s*持(?:\s*人|\s*者)?` +
		`|参\s*(?:加|会)(?:\s*人员|\s*人|\s*名单)?` +
		`|列\s*席(?:\s*人员|\s*人)?` +
		`|出\s*席(?:\s*人员|\s*人)?` +
		`|记\s*录(?:\s*人|\s*员)?` +
		`|发\s*(?:送|至|文)` +
		`|主\s*送|抄\s*送|分\s*送)\s*[：:]`,
)

// IsSuffixLabel reports whether text starts with a suffix label.
func IsSuffixLabel(text string) bool {
	return suffixLabelRe.MatchString(text)
}

// SplitSuffixLabel splits a suffix label line into its label, colon
// included, and the trimmed remainder.
func SplitSuffixLabel(text string) (label, rest string, ok bool) {
	loc := suffixLabelRe.FindStringIndex(text)
	if loc == nil {
		return "", "", false
	}
	return strings.TrimSpace(text[:loc[1]]), strings.TrimSpace(text[loc[1]:]), true
}

// ForceBodyStyle rewrites node attrs to the body style: body font, size and
// line spacing, the body indent (2 characters when neither rule nor node
// sets one), left aligned and not bold. Tables pass through unchanged.
func ForceBodyStyle(b doctree.Block, body doctree.StyleRule) doctree.Block {
	out := b.Clone()
	if !out.IsTextual() {
		return out
	}
	a := out.Attrs
	if f := strings.TrimSpace(body.FontFamily); f != "" {
		a.FontFamily = f
	}
	if body.FontSizePt != nil {
		a.FontSizePt = doctree.Float(*body.FontSizePt)
	}
	if body.LineSpacingPt != nil {
		a.LineSpacingPt = doctree.Float(*body.LineSpacingPt)
	}
	switch {
	case body.FirstLineIndentPt != nil:
		a.FirstLineIndentPt = doctree.Float(*body.FirstLineIndentPt)
		a.FirstLineIndentChars = nil
	case body.FirstLineIndentChars != nil:
		a.FirstLineIndentChars = doctree.Float(*body.FirstLineIndentChars)
		a.FirstLineIndentPt = nil
	case !a.HasIndent():
		a.FirstLineIndentChars = doctree.Float(BodyIndentChars)
	}
	a.TextAlign = doctree.AlignLeft
	a.Bold = doctree.Bool(false)
	out.Attrs = a.Normalize()
	return out
}

// FixedCounts clamps the template's leading and trailing node counts to a
// tree of n nodes. Leading nodes take precedence.
func FixedCounts(n int, rules *doctree.TemplateRules) (leading, trailing int) {
	if rules == nil || n <= 0 {
		return 0, 0
	}
	leading = min(len(rules.ContentTemplate.LeadingNodes), n)
	trailing = min(len(rules.ContentTemplate.TrailingNodes), n-leading)
	return leading, trailing
}

// RegionOf returns the region of the node at index i in a tree of n nodes.
func RegionOf(i, n int, rules *doctree.TemplateRules) Region {
	leading, trailing := FixedCounts(n, rules)
	switch {
	case i < leading:
		return RegionLeading
	case i >= n-trailing:
		return RegionTrailing
	default:
		return RegionBody
	}
}

// ResolveAll resolves every node of a tree with its region.
func ResolveAll(blocks []doctree.Block, rules *doctree.TemplateRules) []NodeStyle {
	out := make([]NodeStyle, len(blocks))
	for i, b := range blocks {
		out[i] = Resolve(b, rules, RegionOf(i, len(blocks), rules))
	}
	return out
}
