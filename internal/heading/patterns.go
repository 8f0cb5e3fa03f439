package heading

import (
	"regexp"
	"strings"
)

const chineseDigits = "一二三四五六七八九十百千零〇两"

// Pattern is one numbering convention. Regex matches only the prefix.
type Pattern struct {
	Level       int
	Name        string
	Regex       *regexp.Regexp
	Description string
	Examples    []string
}

// Patterns lists the numbering conventions in priority order.
var Patterns = []*Pattern{
	{
		Level:       1,
		Name:        "一级标题",
		Regex:       regexp.MustCompile(`^[` + chineseDigits + `]+、`),
		Description: "中文数字加顿号",
		Examples:    []string{"一、", "十二、"},
	},
	{
		Level:       2,
		Name:        "二级标题",
		Regex:       regexp.MustCompile(`^[（(]\s*[` + chineseDigits + `]+\s*[）)]`),
		Description: "括号内中文数字",
		Examples:    []string{"（一）", "(三)"},
	},
	{
		Level:       3,
		Name:        "三级标题",
		Regex:       regexp.MustCompile(`^\d+[.．、]`),
		Description: "阿拉伯数字加点号或顿号",
		Examples:    []string{"1.", "2．", "3、"},
	},
	{
		Level:       4,
		Name:        "四级标题",
		Regex:       regexp.MustCompile(`^[（(]\s*\d+\s*[）)]`),
		Description: "括号内阿拉伯数字",
		Examples:    []string{"（1）", "(2)"},
	},
}

// Match finds the numbering prefix of text in priority order. ok is false
// when no convention matches.
func Match(text string) (p *Pattern, prefix, rest string, ok bool) {
	for _, p := range Patterns {
		loc := p.Regex.FindStringIndex(text)
		if loc == nil {
			continue
		}
		return p, text[:loc[1]], strings.TrimSpace(text[loc[1]:]), true
	}
	return nil, "", text, false
}

// StripPrefix removes whatever numbering prefix text carries, regardless of
// whether the line would classify as a heading.
func StripPrefix(text string) string {
	text = strings.TrimSpace(text)
	_, _, rest, ok := Match(text)
	if !ok {
		return text
	}
	return rest
}

// CanonicalPrefix renders the numbering prefix for the n-th heading at level.
func CanonicalPrefix(level, n int) string {
	switch level {
	case 1:
		return ChineseNumeral(n) + "、"
	case 2:
		return "（" + ChineseNumeral(n) + "）"
	case 3:
		return itoa(n) + "."
	default:
		return "（" + itoa(n) + "）"
	}
}
