// Package heading infers heading levels from Chinese official-document
// numbering and rewrites that numbering so it is contiguous and nested.
package heading

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/gongwen/internal/doctree"
	"github.com/dgallion1/gongwen/internal/textnorm"
)

// None is returned by Classify for lines that are not headings.
const None = 0

// Policy holds the sentence-likeness thresholds. Levels 2 and 4 use the
// short limits; levels 1 and 3 the long ones.
type Policy struct {
	ShortMaxChars     int    `yaml:"short_max_chars" json:"shortMaxChars"`
	LongMaxChars      int    `yaml:"long_max_chars" json:"longMaxChars"`
	ShortRejectPunct  string `yaml:"short_reject_punct" json:"shortRejectPunct"`
	LongTerminalPunct string `yaml:"long_terminal_punct" json:"longTerminalPunct"`
}

// DefaultPolicy returns the stock thresholds.
func DefaultPolicy() Policy {
	return Policy{
		ShortMaxChars:     20,
		LongMaxChars:      24,
		ShortRejectPunct:  "。！？；，,",
		LongTerminalPunct: "。！？；.",
	}
}

// WithDefaults fills zero-valued fields from DefaultPolicy.
func (p Policy) WithDefaults() Policy {
	d := DefaultPolicy()
	if p.ShortMaxChars <= 0 {
		p.ShortMaxChars = d.ShortMaxChars
	}
	if p.LongMaxChars <= 0 {
		p.LongMaxChars = d.LongMaxChars
	}
	if p.ShortRejectPunct == "" {
		p.ShortRejectPunct = d.ShortRejectPunct
	}
	if p.LongTerminalPunct == "" {
		p.LongTerminalPunct = d.LongTerminalPunct
	}
	return p
}

// Classify returns the heading level of text under the default policy.
func Classify(text string) int {
	return DefaultPolicy().Classify(text)
}

// Classify returns 1..4 when text carries a numbering prefix and reads like a
// heading, or None. An ambiguous line is treated as body text.
func (p Policy) Classify(text string) int {
	p = p.WithDefaults()
	text = textnorm.Normalize(text)
	pat, _, rest, ok := Match(text)
	if !ok {
		return None
	}
	// "2.0版本" is a decimal, not a level-3 prefix.
	if pat.Level == 3 && startsWithDigit(rest) {
		return None
	}
	if rest == "" {
		return pat.Level
	}

	n := textnorm.Len(rest)
	switch pat.Level {
	case 2, 4:
		if strings.ContainsAny(rest, p.ShortRejectPunct) || n > p.ShortMaxChars {
			return None
		}
	default:
		if sentenceLike(rest, p.LongTerminalPunct) && n > p.LongMaxChars {
			return None
		}
	}
	return pat.Level
}

// sentenceLike reports whether rest carries terminal punctuation. ASCII marks
// count only at the end of the line so decimals like 2.5 do not match.
func sentenceLike(rest, punct string) bool {
	for _, r := range punct {
		if r < utf8.RuneSelf {
			if strings.HasSuffix(rest, string(r)) {
				return true
			}
			continue
		}
		if strings.ContainsRune(rest, r) {
			return true
		}
	}
	return false
}

func startsWithDigit(s string) bool {
	for _, r := range s {
		return unicode.IsDigit(r)
	}
	return false
}

// Renumber rewrites the prefix of every non-empty heading so numbering runs
// 一、/（一）/1./（1） contiguously, resetting deeper counters whenever a
// shallower heading appears. The input is not modified.
func Renumber(blocks []doctree.Block) []doctree.Block {
	out := doctree.CloneBlocks(blocks)
	var counters [doctree.MaxHeadingLevel + 1]int
	for i := range out {
		b := &out[i]
		if b.Type != doctree.KindHeading {
			continue
		}
		text := strings.TrimSpace(b.Text())
		if text == "" {
			continue
		}
		level := doctree.ClampLevel(b.Level)
		counters[level]++
		for deeper := level + 1; deeper <= doctree.MaxHeadingLevel; deeper++ {
			counters[deeper] = 0
		}
		b.SetText(CanonicalPrefix(level, counters[level]) + StripPrefix(text))
	}
	return out
}
