package preview

import (
	"slices"
	"strconv"
	"strings"

	"github.com/dgallion1/gongwen/internal/doctree"
	"github.com/dgallion1/gongwen/internal/style"
)

// VarPrefix starts every custom property emitted by CSSVariables.
const VarPrefix = "--gw-"

// CSSVariables returns one custom property set per style bucket: body,
// h1..h4 and suffix-label. Values come from the same resolver the DOCX
// export reads, so editor and export agree.
func CSSVariables(rules *doctree.TemplateRules) map[string]string {
	vars := map[string]string{}
	put := func(bucket string, s style.TextStyle) {
		for _, d := range declarations(s) {
			vars[VarPrefix+bucket+"-"+d.prop] = d.value
		}
	}
	put("body", style.Body(rules))
	for level := 1; level <= doctree.MaxHeadingLevel; level++ {
		put("h"+strconv.Itoa(level), style.Heading(level, rules))
	}
	put("suffix-label", style.SuffixLabelStyle(rules))
	return vars
}

// Stylesheet renders CSSVariables as a :root rule with sorted properties.
func Stylesheet(rules *doctree.TemplateRules) string {
	vars := CSSVariables(rules)
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var sb strings.Builder
	sb.WriteString(":root {\n")
	for _, k := range keys {
		sb.WriteString("  " + k + ": " + vars[k] + ";\n")
	}
	sb.WriteString("}\n")
	return sb.String()
}

type declaration struct {
	prop  string
	value string
}

func declarations(s style.TextStyle) []declaration {
	weight := "400"
	if s.Bold {
		weight = "700"
	}
	out := []declaration{
		{"font-family", fontFamily(s.FontFamily)},
		{"font-size", pt(s.FontSizePt)},
		{"font-weight", weight},
		{"line-height", pt(s.LineSpacingPt)},
		{"text-indent", indent(s.Indent)},
		{"text-align", s.TextAlign},
		{"margin-top", pt(s.SpaceBeforePt)},
	}
	if s.ColorHex != "" {
		out = append(out, declaration{"color", "#" + s.ColorHex})
	}
	return out
}

// runDeclarations is the character-level subset of declarations, the part a
// DOCX run carries.
func runDeclarations(s style.TextStyle) []declaration {
	weight := "400"
	if s.Bold {
		weight = "700"
	}
	out := []declaration{
		{"font-family", fontFamily(s.FontFamily)},
		{"font-size", pt(s.FontSizePt)},
		{"font-weight", weight},
	}
	if s.ColorHex != "" {
		out = append(out, declaration{"color", "#" + s.ColorHex})
	}
	return out
}

// inlineStyle renders a resolved style as a style attribute value.
func inlineStyle(s style.TextStyle) string {
	return joinDeclarations(declarations(s))
}

// runStyle renders the character formatting of one run.
func runStyle(s style.TextStyle) string {
	return joinDeclarations(runDeclarations(s))
}

func joinDeclarations(decls []declaration) string {
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.prop + ": " + d.value
	}
	return strings.Join(parts, "; ")
}

var genericFamilies = map[string]bool{"serif": true, "sans-serif": true, "monospace": true}

func fontFamily(family string) string {
	stack := style.FontStack(family)
	parts := make([]string, len(stack))
	for i, f := range stack {
		if genericFamilies[f] {
			parts[i] = f
			continue
		}
		parts[i] = `"` + f + `"`
	}
	return strings.Join(parts, ", ")
}

func pt(v float64) string {
	return formatNumber(v) + "pt"
}

func indent(i style.Indent) string {
	if i.Unit == style.UnitPt {
		return pt(i.Value)
	}
	return formatNumber(i.Value) + "em"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParsePt reads a value written by CSSVariables in points. ok is false for
// any other unit.
func ParsePt(value string) (float64, bool) {
	num, found := strings.CutSuffix(value, "pt")
	if !found {
		return 0, false
	}
	v, err := strconv.ParseFloat(num, 64)
	return v, err == nil
}
