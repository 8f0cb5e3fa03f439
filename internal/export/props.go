package export

import (
	"math"
	"strconv"

	"github.com/dgallion1/gongwen/internal/doctree"
	"github.com/dgallion1/gongwen/internal/style"
	"github.com/fumiama/go-docx"
)

// ParagraphProps is the numeric paragraph projection of a resolved style.
type ParagraphProps struct {
	Justification  string
	LineTwips      int64
	FirstLineTwips int64
	FirstLineChars int64 // hundredths of a character, 0 when the indent is in points
	BeforeTwips    int64
}

// RunProps is the numeric run projection of a resolved style.
type RunProps struct {
	Font       string
	HalfPoints int64
	Bold       bool
	ColorHex   string
}

// ParagraphPropsOf converts a resolved style to Word paragraph units.
func ParagraphPropsOf(s style.TextStyle) ParagraphProps {
	p := ParagraphProps{
		Justification:  Justification(s.TextAlign),
		LineTwips:      style.Twips(s.LineSpacingPt),
		FirstLineTwips: style.Twips(s.Indent.Pt(s.FontSizePt)),
		BeforeTwips:    style.Twips(s.SpaceBeforePt),
	}
	if s.Indent.Unit == style.UnitChars {
		p.FirstLineChars = int64(math.Round(s.Indent.Value * 100))
	}
	return p
}

// RunPropsOf converts a resolved style to Word run units.
func RunPropsOf(s style.TextStyle) RunProps {
	return RunProps{
		Font:       s.FontFamily,
		HalfPoints: style.HalfPoints(s.FontSizePt),
		Bold:       s.Bold,
		ColorHex:   s.ColorHex,
	}
}

// Justification maps an editor alignment to a w:jc value.
func Justification(align string) string {
	switch align {
	case doctree.AlignCenter:
		return "center"
	case doctree.AlignRight:
		return "end"
	case doctree.AlignJustify:
		return "both"
	default:
		return "start"
	}
}

func applyParagraph(p *docx.Paragraph, s style.TextStyle) {
	pp := ParagraphPropsOf(s)
	p.Justification(pp.Justification)
	p.Properties.Spacing = &docx.Spacing{
		Line:     int(pp.LineTwips),
		LineRule: "exact",
		Before:   int(pp.BeforeTwips),
	}
	if pp.FirstLineTwips > 0 {
		p.Properties.Ind = &docx.Ind{FirstLine: int(pp.FirstLineTwips), FirstLineChars: int(pp.FirstLineChars)}
	}
}

func addRun(p *docx.Paragraph, text string, s style.TextStyle) *docx.Run {
	rp := RunPropsOf(s)
	r := p.AddText(text)
	r.Font(rp.Font, rp.Font, rp.Font, "eastAsia")
	size := strconv.FormatInt(rp.HalfPoints, 10)
	r.Size(size)
	r.SizeCs(size)
	if rp.Bold {
		r.Bold()
	}
	if rp.ColorHex != "" {
		r.Color(rp.ColorHex)
	}
	return r
}
