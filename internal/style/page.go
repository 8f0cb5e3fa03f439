package style

import (
	"math"

	"github.com/dgallion1/gongwen/internal/doctree"
)

// A4 page and the GB/T 9704 margins, in centimetres.
const (
	PageWidthCm    = 21.0
	PageHeightCm   = 29.7
	MarginTopCm    = 3.7
	MarginBottomCm = 3.5
	MarginLeftCm   = 2.7
	MarginRightCm  = 2.5
)

// Red header and divider.
const (
	RedHex          = "D40000"
	DividerHeightPt = 1.5
	RedheadFontSize = 22.0
	RedheadFamily   = FamilyXiaoBiaoSong
)

const (
	twipsPerPoint   = 20
	twipsPerCm      = 1440 / 2.54
	halfPointsPerPt = 2
)

// Font families used by official documents.
const (
	FamilyFangSong     = "仿宋_GB2312"
	FamilyHei          = "黑体"
	FamilyKai          = "楷体_GB2312"
	FamilyXiaoBiaoSong = "方正小标宋简"
)

// fontStacks maps a family to a CSS fallback stack.
var fontStacks = map[string][]string{
	FamilyFangSong:     {FamilyFangSong, "FangSong_GB2312", "FangSong", "STFangsong", "serif"},
	"仿宋":               {"仿宋", "FangSong", "STFangsong", "serif"},
	FamilyHei:          {FamilyHei, "SimHei", "Heiti SC", "STHeiti", "sans-serif"},
	FamilyKai:          {FamilyKai, "KaiTi_GB2312", "KaiTi", "STKaiti", "serif"},
	"楷体":               {"楷体", "KaiTi", "STKaiti", "serif"},
	FamilyXiaoBiaoSong: {FamilyXiaoBiaoSong, "FZXiaoBiaoSong-B05S", "STSong", "SimSun", "serif"},
}

// FontStack returns the CSS fallback list for a family. Unknown families
// fall back to a generic serif.
func FontStack(family string) []string {
	if s, ok := fontStacks[family]; ok {
		return s
	}
	if family == "" {
		return fontStacks[FamilyFangSong]
	}
	return []string{family, "serif"}
}

// Margins resolves page margins: template values override the defaults.
func Margins(rules *doctree.TemplateRules) doctree.PageMargins {
	m := doctree.PageMargins{
		TopCm:    MarginTopCm,
		BottomCm: MarginBottomCm,
		LeftCm:   MarginLeftCm,
		RightCm:  MarginRightCm,
	}
	if rules == nil || rules.Page == nil {
		return m
	}
	if rules.Page.TopCm > 0 {
		m.TopCm = rules.Page.TopCm
	}
	if rules.Page.BottomCm > 0 {
		m.BottomCm = rules.Page.BottomCm
	}
	if rules.Page.LeftCm > 0 {
		m.LeftCm = rules.Page.LeftCm
	}
	if rules.Page.RightCm > 0 {
		m.RightCm = rules.Page.RightCm
	}
	return m
}

// Twips converts points to twentieths of a point.
func Twips(pt float64) int64 {
	return int64(math.Round(pt * twipsPerPoint))
}

// CmToTwips converts centimetres to twips.
func CmToTwips(cm float64) int64 {
	return int64(math.Round(cm * twipsPerCm))
}

// HalfPoints converts a font size in points to Word half-points.
func HalfPoints(pt float64) int64 {
	return int64(math.Round(pt * halfPointsPerPt))
}
