package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/gongwen/internal/attachment"
	"github.com/dgallion1/gongwen/internal/doctree"
	"github.com/dgallion1/gongwen/internal/textnorm"
)

// sentenceEnd marks a line as prose. Titles never end in one.
const sentenceEnd = "。！？；.!?;"

// ValidTitle reports whether a normalized line can be the document title.
func (o Options) ValidTitle(text string) bool {
	n := textnorm.Len(text)
	if n < o.TitleMinChars || n > o.TitleMaxChars {
		return false
	}
	if r, _ := utf8.DecodeLastRuneInString(text); strings.ContainsRune(sentenceEnd, r) {
		return false
	}
	if _, ok := attachment.ParseOpener(text); ok {
		return false
	}
	if strings.HasSuffix(text, "：") {
		return false
	}
	for _, kw := range o.TitleKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// ValidAddressee reports whether a normalized line is a 主送 line such as
// "各区县人民政府：".
func (o Options) ValidAddressee(text string) bool {
	if text == "" || textnorm.Len(text) > o.AddresseeMaxChars {
		return false
	}
	if _, ok := attachment.ParseOpener(text); ok {
		return false
	}
	return strings.HasSuffix(text, "：")
}

var docNoPattern = regexp.MustCompile(`[\p{Han}A-Za-z]{1,12}\s*[〔\[(（［【]\s*(19|20)\d{2}\s*[〕\])）］】]\s*\d{1,4}\s*号`)

// SniffDocNoLimit is how many leading blocks SniffDocNo inspects.
const SniffDocNoLimit = 8

// SniffDocNo looks for a document number such as 国办发〔2024〕3号 in the first
// few blocks and returns it with its year bracket normalized.
func SniffDocNo(blocks []doctree.Block) (string, bool) {
	for i, b := range blocks {
		if i >= SniffDocNoLimit {
			break
		}
		if !b.IsTextual() {
			continue
		}
		text := strings.TrimSpace(b.Text())
		if m := docNoPattern.FindString(text); m != "" {
			return textnorm.NormalizeDocNoBracket(m), true
		}
	}
	return "", false
}
