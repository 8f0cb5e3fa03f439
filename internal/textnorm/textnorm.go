// Package textnorm canonicalizes line text for official documents: whitespace,
// ASCII punctuation, per-level trailing punctuation and document numbers.
package textnorm

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// TerminalPunct is the full-width set that counts as a sentence ending.
const TerminalPunct = "。！？；："

// asciiTerminal maps ASCII sentence endings to their full-width forms.
var asciiTerminal = map[rune]rune{
	'.': '。',
	'!': '！',
	'?': '？',
	';': '；',
	':': '：',
}

var inlineReplacer = strings.NewReplacer(
	"\u00a0", " ",
	",", "，",
	":", "：",
	";", "；",
	"?", "？",
	"!", "！",
)

var spaceRun = regexp.MustCompile(`[ \t]+`)

// Normalize composes the text to NFC, maps NBSP to a space and the ASCII
// marks , : ; ? ! to full width, collapses space/tab runs and trims.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	s := norm.NFC.String(text)
	s = inlineReplacer.Replace(s)
	s = spaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Len returns the length of s in characters.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// LastRune returns the final rune of s, or 0 for an empty string.
func LastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	if r == utf8.RuneError {
		return 0
	}
	return r
}

// EndsWithTerminal reports whether s ends with a terminal mark, ASCII or full width.
func EndsWithTerminal(s string) bool {
	r := LastRune(s)
	if r == 0 {
		return false
	}
	if _, ok := asciiTerminal[r]; ok {
		return true
	}
	return strings.ContainsRune(TerminalPunct, r)
}

// ApplyPunctuation enforces the trailing punctuation rule for a heading level
// (1..4) or a body paragraph (level 0).
func ApplyPunctuation(level int, text string) string {
	if text == "" {
		return text
	}
	switch level {
	case 1:
		for EndsWithTerminal(text) {
			_, size := utf8.DecodeLastRuneInString(text)
			text = strings.TrimRight(text[:len(text)-size], " ")
		}
		return text
	case 3, 4:
		text = widenLast(text)
		if !EndsWithTerminal(text) {
			text += "。"
		}
		return text
	default:
		return widenLast(text)
	}
}

func widenLast(text string) string {
	r, size := utf8.DecodeLastRuneInString(text)
	if wide, ok := asciiTerminal[r]; ok {
		return text[:len(text)-size] + string(wide)
	}
	return text
}

var docNoYear = regexp.MustCompile(`[(（\[［【]\s*([0-9]{2,4})\s*[)）\]］】]`)

// NormalizeDocNoBracket rewrites a bracketed 2-4 digit year in a document
// number into the 〔2026〕 form.
func NormalizeDocNoBracket(text string) string {
	return docNoYear.ReplaceAllString(text, "〔$1〕")
}

var isoDate = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)

// FormatDate renders an ISO date (2026-03-05) as 2026年3月5日. Any other
// input is returned trimmed but otherwise unchanged.
func FormatDate(value string) string {
	value = strings.TrimSpace(value)
	m := isoDate.FindStringSubmatch(value)
	if m == nil {
		return value
	}
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])
	return strconv.Itoa(y) + "年" + strconv.Itoa(mo) + "月" + strconv.Itoa(d) + "日"
}
