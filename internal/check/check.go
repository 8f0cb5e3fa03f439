// Package check reports structural and typographic problems in a document
// body without changing it.
package check

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dgallion1/gongwen/internal/doctree"
	"github.com/dgallion1/gongwen/internal/heading"
	"github.com/dgallion1/gongwen/internal/textnorm"
)

// Issue codes.
const (
	CodeNodeType   = "A_NODE_TYPE"
	CodeIndent     = "A_INDENT"
	CodeLevelRange = "B_LEVEL_RANGE"
	CodeNumbering  = "B_NUMBERING"
	CodePuncH1     = "B_PUNC_H1"
	CodePuncH3     = "B_PUNC_H3"
	CodePuncH4     = "B_PUNC_H4"
)

// Severity levels.
const (
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Issue is one finding. Type is "A" for layout and "B" for heading rules.
type Issue struct {
	Code    string `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Path    string `json:"path"`
	Level   string `json:"level"`
}

// Check inspects the top-level blocks of a body.
func Check(blocks []doctree.Block) []Issue {
	issues := []Issue{}
	var counters [doctree.MaxHeadingLevel + 1]int

	for i, b := range blocks {
		path := "body.content[" + strconv.Itoa(i) + "]"
		switch b.Type {
		case doctree.KindParagraph:
			if c := b.Attrs.FirstLineIndentChars; c != nil && *c != 2 && !b.IsBlank() &&
				b.Attrs.TextAlign != doctree.AlignCenter && b.Attrs.TextAlign != doctree.AlignRight {
				issues = append(issues, Issue{CodeIndent, "A", "正文首行应缩进2字。", path, SeverityWarning})
			}
		case doctree.KindTable:
		case doctree.KindHeading:
			if b.Level < 1 || b.Level > doctree.MaxHeadingLevel {
				issues = append(issues, Issue{CodeLevelRange, "B", "标题层级必须在 H1-H4 范围内。", path, SeverityError})
				continue
			}
			text := strings.TrimSpace(b.Text())
			if text == "" {
				continue
			}
			counters[b.Level]++
			for deeper := b.Level + 1; deeper <= doctree.MaxHeadingLevel; deeper++ {
				counters[deeper] = 0
			}
			issues = append(issues, headingIssues(b.Level, text, counters[b.Level], path)...)
		default:
			issues = append(issues, Issue{CodeNodeType, "A", fmt.Sprintf("不支持的节点类型: %s", b.Type), path, SeverityWarning})
		}
	}
	return issues
}

func headingIssues(level int, text string, count int, path string) []Issue {
	var issues []Issue
	pat, prefix, rest, ok := heading.Match(text)
	expected := heading.CanonicalPrefix(level, count)
	if ok && pat.Level == level && prefix != expected {
		issues = append(issues, Issue{CodeNumbering, "B", fmt.Sprintf("编号疑似异常，当前 %s，期望 %s", prefix, expected), path, SeverityWarning})
	}

	tail := text
	if ok && pat.Level == level {
		tail = rest
	}
	if tail == "" {
		return issues
	}
	ends := strings.ContainsRune(textnorm.TerminalPunct, textnorm.LastRune(tail))
	switch {
	case level == 1 && ends:
		issues = append(issues, Issue{CodePuncH1, "B", "H1 句末不应有标点。", path, SeverityError})
	case level == 3 && !ends:
		issues = append(issues, Issue{CodePuncH3, "B", "H3 句末必须有标点。", path, SeverityError})
	case level == 4 && !ends:
		issues = append(issues, Issue{CodePuncH4, "B", "H4 句末必须有标点。", path, SeverityError})
	}
	return issues
}

// NumberingWarnings compares the numbers headings actually carry with the
// sequence they should have, for import reports.
func NumberingWarnings(blocks []doctree.Block) []string {
	var warnings []string
	var expected [doctree.MaxHeadingLevel + 1]int
	n := 0
	for _, b := range blocks {
		if b.Type != doctree.KindHeading || b.Level < 1 || b.Level > doctree.MaxHeadingLevel {
			continue
		}
		n++
		expected[b.Level]++
		for deeper := b.Level + 1; deeper <= doctree.MaxHeadingLevel; deeper++ {
			expected[deeper] = 0
		}
		actual, ok := prefixNumber(b.Level, strings.TrimSpace(b.Text()))
		if ok && actual != expected[b.Level] {
			warnings = append(warnings, fmt.Sprintf("第%d个标题编号疑似跳号/混用：层级 H%d 当前 %d，期望 %d", n, b.Level, actual, expected[b.Level]))
		}
	}
	return warnings
}

func prefixNumber(level int, text string) (int, bool) {
	pat, prefix, _, ok := heading.Match(text)
	if !ok || pat.Level != level {
		return 0, false
	}
	digits := strings.Trim(prefix, "（()）、.． ")
	return heading.ParseChineseNumeral(digits)
}
