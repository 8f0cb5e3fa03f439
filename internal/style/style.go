// Package style resolves the concrete formatting of every node from node
// attrs, template rule buckets and the GB/T 9704 fallbacks. The preview and
// export projectors both read their numbers from here.
package style

import (
	"strings"

	"github.com/dgallion1/gongwen/internal/doctree"
)

// Role is the structural role a resolved style was computed for.
type Role string

const (
	RoleBody        Role = "body"
	RoleHeading     Role = "heading"
	RoleSuffixLabel Role = "suffixLabel"
	RoleDivider     Role = "divider"
	RoleFixed       Role = "fixed"
	RoleTitle       Role = "title"
	RoleMainTo      Role = "mainTo"
	RoleSignOff     Role = "signOff"
	RoleAttachment  Role = "attachment"
	RoleCoverLabel  Role = "coverLabel"
	RoleCoverTitle  Role = "coverTitle"
	RoleRedhead     Role = "redhead"
)

// Region says where a node sits relative to the template's fixed nodes.
type Region string

const (
	RegionBody     Region = "body"
	RegionLeading  Region = "leading"
	RegionTrailing Region = "trailing"
)

// Indent units.
const (
	UnitChars = "chars"
	UnitPt    = "pt"
)

// Indent is a first-line indent in characters or points.
type Indent struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Pt returns the indent in points for a given font size.
func (i Indent) Pt(fontSizePt float64) float64 {
	if i.Unit == UnitPt {
		return i.Value
	}
	return i.Value * fontSizePt
}

// TextStyle is a fully resolved style: every field has a concrete value.
type TextStyle struct {
	FontFamily    string  `json:"fontFamily"`
	FontSizePt    float64 `json:"fontSizePt"`
	Bold          bool    `json:"bold"`
	ColorHex      string  `json:"colorHex,omitempty"`
	LineSpacingPt float64 `json:"lineSpacingPt"`
	Indent        Indent  `json:"firstLineIndent"`
	TextAlign     string  `json:"textAlign"`
	SpaceBeforePt float64 `json:"spaceBeforePt"`
}

// Segment is a styled slice of a node's text.
type Segment struct {
	Text  string    `json:"text"`
	Style TextStyle `json:"style"`
}

// NodeStyle is the resolved formatting of one node. Segments is set only for
// suffix label lines, whose label and remainder are styled separately.
type NodeStyle struct {
	Role     Role      `json:"role"`
	Level    int       `json:"level,omitempty"`
	Style    TextStyle `json:"style"`
	Segments []Segment `json:"segments,omitempty"`
}

// Fallback values used when neither node nor rules set a field.
const (
	BodyFontSizePt    = 16.0
	BodyLineSpacingPt = 28.0
	BodyIndentChars   = 2.0
	TitleFontSizePt   = 22.0
)

// BodyFallback is the body style with no rules applied.
func BodyFallback() TextStyle {
	return TextStyle{
		FontFamily:    FamilyFangSong,
		FontSizePt:    BodyFontSizePt,
		LineSpacingPt: BodyLineSpacingPt,
		Indent:        Indent{Value: BodyIndentChars, Unit: UnitChars},
		TextAlign:     doctree.AlignJustify,
	}
}

// HeadingFallback is the heading style for a level with no rules applied.
func HeadingFallback(level int) TextStyle {
	return TextStyle{
		FontFamily:    FamilyHei,
		FontSizePt:    BodyFontSizePt,
		Bold:          doctree.ClampLevel(level) == 1,
		LineSpacingPt: BodyLineSpacingPt,
		Indent:        Indent{Value: BodyIndentChars, Unit: UnitChars},
		TextAlign:     doctree.AlignLeft,
	}
}

// Body resolves the body bucket over the fallback.
func Body(rules *doctree.TemplateRules) TextStyle {
	s := BodyFallback()
	if rules != nil {
		s = applyRule(s, rules.Body)
	}
	return s
}

// Heading resolves a heading bucket over the fallback.
func Heading(level int, rules *doctree.TemplateRules) TextStyle {
	s := HeadingFallback(level)
	if rules != nil {
		s = applyRule(s, rules.Headings.Level(level))
	}
	return s
}

// SuffixLabelStyle resolves the style of a suffix label: the suffixLabel
// bucket over a plain Hei face at the body size.
func SuffixLabelStyle(rules *doctree.TemplateRules) TextStyle {
	body := Body(rules)
	s := body
	s.FontFamily = FamilyHei
	s.Bold = false
	s.TextAlign = doctree.AlignLeft
	if rules != nil {
		s = applyRule(s, rules.SuffixLabel)
	}
	return s
}

// Divider is the zero-height red rule.
func Divider() TextStyle {
	return TextStyle{
		FontSizePt:    DividerHeightPt,
		LineSpacingPt: DividerHeightPt,
		ColorHex:      RedHex,
		TextAlign:     doctree.AlignLeft,
		Indent:        Indent{Unit: UnitChars},
	}
}

// Resolve computes the style of node b in the given region. Precedence is
// node attrs, then the matching rule bucket, then the fallback. Nodes in a
// fixed region skip the rule buckets: their attrs are the template snapshot.
// Suffix label lines are split into a label and a body-styled remainder,
// except in the leading region where the snapshot is kept as is.
func Resolve(b doctree.Block, rules *doctree.TemplateRules, region Region) NodeStyle {
	if b.Attrs.DividerRed {
		return NodeStyle{Role: RoleDivider, Style: Divider()}
	}

	if b.IsTextual() && region != RegionLeading {
		if label, rest, ok := SplitSuffixLabel(b.Text()); ok {
			return resolveSuffix(b, rules, label, rest)
		}
	}

	fixed := region == RegionLeading || region == RegionTrailing
	bucketRules := rules
	if fixed {
		bucketRules = nil
	}

	var ns NodeStyle
	if b.Type == doctree.KindHeading {
		ns = NodeStyle{Role: RoleHeading, Level: doctree.ClampLevel(b.Level), Style: Heading(b.Level, bucketRules)}
	} else {
		ns = NodeStyle{Role: RoleBody, Style: Body(bucketRules)}
	}
	if fixed {
		ns.Role = RoleFixed
	}
	ns.Style = applyAttrs(ns.Style, b.Attrs)
	return ns
}

func resolveSuffix(b doctree.Block, rules *doctree.TemplateRules, label, rest string) NodeStyle {
	body := Body(rules)
	body.Bold = false
	body.TextAlign = doctree.AlignLeft

	para := body
	if b.Attrs.FirstLineIndentPt != nil {
		para.Indent = Indent{Value: *b.Attrs.FirstLineIndentPt, Unit: UnitPt}
	} else if b.Attrs.FirstLineIndentChars != nil {
		para.Indent = Indent{Value: *b.Attrs.FirstLineIndentChars, Unit: UnitChars}
	}

	segs := []Segment{{Text: label, Style: SuffixLabelStyle(rules)}}
	if rest != "" {
		segs = append(segs, Segment{Text: rest, Style: body})
	}
	return NodeStyle{Role: RoleSuffixLabel, Style: para, Segments: segs}
}

// ForRun overlays a run's own character formatting on its paragraph style.
// Suffix label segments ignore runs.
func ForRun(s TextStyle, run doctree.Run) TextStyle {
	if run.FontFamily != "" {
		s.FontFamily = run.FontFamily
	}
	if run.FontSizePt > 0 {
		s.FontSizePt = run.FontSizePt
	}
	if run.Bold {
		s.Bold = true
	}
	if run.ColorHex != "" {
		s.ColorHex = strings.TrimPrefix(run.ColorHex, "#")
	}
	return s
}

// TableCell is the base style of text inside a table cell: the body bucket
// with no indent, left aligned.
func TableCell(rules *doctree.TemplateRules) TextStyle {
	s := Body(rules)
	s.Indent = Indent{Unit: UnitChars}
	s.TextAlign = doctree.AlignLeft
	return s
}

// ResolveCell resolves a block nested in a table cell. Cell content is never
// a heading or a suffix label line.
func ResolveCell(b doctree.Block, rules *doctree.TemplateRules) NodeStyle {
	return NodeStyle{Role: RoleBody, Style: applyAttrs(TableCell(rules), b.Attrs)}
}

// ForRole returns the style of the document parts that are not body nodes.
func ForRole(role Role, rules *doctree.TemplateRules) TextStyle {
	body := Body(rules)
	switch role {
	case RoleTitle:
		return TextStyle{
			FontFamily:    FamilyXiaoBiaoSong,
			FontSizePt:    TitleFontSizePt,
			LineSpacingPt: body.LineSpacingPt,
			Indent:        Indent{Unit: UnitChars},
			TextAlign:     doctree.AlignCenter,
		}
	case RoleMainTo:
		s := body
		s.Bold = false
		s.Indent = Indent{Unit: UnitChars}
		s.TextAlign = doctree.AlignLeft
		return s
	case RoleSignOff:
		s := body
		s.Bold = false
		s.Indent = Indent{Unit: UnitChars}
		s.TextAlign = doctree.AlignRight
		return s
	case RoleAttachment:
		s := body
		s.Bold = false
		s.TextAlign = doctree.AlignLeft
		return s
	case RoleCoverLabel:
		s := Heading(1, nil)
		s.Bold = false
		s.FontSizePt = body.FontSizePt
		s.Indent = Indent{Unit: UnitChars}
		return s
	case RoleCoverTitle:
		return ForRole(RoleTitle, rules)
	case RoleRedhead:
		return TextStyle{
			FontFamily:    RedheadFamily,
			FontSizePt:    RedheadFontSize,
			ColorHex:      RedHex,
			LineSpacingPt: body.LineSpacingPt,
			Indent:        Indent{Unit: UnitChars},
			TextAlign:     doctree.AlignCenter,
		}
	case RoleDivider:
		return Divider()
	case RoleSuffixLabel:
		return SuffixLabelStyle(rules)
	default:
		return body
	}
}

func applyRule(s TextStyle, r doctree.StyleRule) TextStyle {
	if f := strings.TrimSpace(r.FontFamily); f != "" {
		s.FontFamily = f
	}
	if r.FontSizePt != nil && *r.FontSizePt > 0 {
		s.FontSizePt = *r.FontSizePt
	}
	if r.LineSpacingPt != nil && *r.LineSpacingPt > 0 {
		s.LineSpacingPt = *r.LineSpacingPt
	}
	if r.FirstLineIndentPt != nil {
		s.Indent = Indent{Value: *r.FirstLineIndentPt, Unit: UnitPt}
	} else if r.FirstLineIndentChars != nil {
		s.Indent = Indent{Value: *r.FirstLineIndentChars, Unit: UnitChars}
	}
	if r.Bold != nil {
		s.Bold = *r.Bold
	}
	if r.SpaceBeforePt != nil {
		s.SpaceBeforePt = *r.SpaceBeforePt
	}
	return s
}

func applyAttrs(s TextStyle, a doctree.Attrs) TextStyle {
	a = a.Normalize()
	if a.FontFamily != "" {
		s.FontFamily = a.FontFamily
	}
	if a.FontSizePt != nil && *a.FontSizePt > 0 {
		s.FontSizePt = *a.FontSizePt
	}
	if a.Bold != nil {
		s.Bold = *a.Bold
	}
	if a.ColorHex != "" {
		s.ColorHex = strings.TrimPrefix(a.ColorHex, "#")
	}
	if a.LineSpacingPt != nil && *a.LineSpacingPt > 0 {
		s.LineSpacingPt = *a.LineSpacingPt
	}
	if a.FirstLineIndentPt != nil {
		s.Indent = Indent{Value: *a.FirstLineIndentPt, Unit: UnitPt}
	} else if a.FirstLineIndentChars != nil {
		s.Indent = Indent{Value: *a.FirstLineIndentChars, Unit: UnitChars}
	}
	if a.TextAlign != "" {
		s.TextAlign = a.TextAlign
	}
	if s.TextAlign == doctree.AlignCenter || s.TextAlign == doctree.AlignRight {
		s.Indent = Indent{Unit: UnitChars}
	}
	return s
}
