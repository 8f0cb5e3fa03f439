package doctree

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAttrsNormalize_CenterForcesZeroIndent(t *testing.T) {
	a := Attrs{TextAlign: AlignCenter, FirstLineIndentPt: Float(32)}.Normalize()
	if a.FirstLineIndentPt != nil {
		t.Errorf("expected pt indent cleared, got %v", *a.FirstLineIndentPt)
	}
	if a.FirstLineIndentChars == nil || *a.FirstLineIndentChars != 0 {
		t.Errorf("expected chars indent 0, got %v", a.FirstLineIndentChars)
	}
}

func TestAttrsNormalize_PtWinsOverChars(t *testing.T) {
	a := Attrs{FirstLineIndentPt: Float(32), FirstLineIndentChars: Float(2)}.Normalize()
	if a.FirstLineIndentChars != nil {
		t.Errorf("expected chars indent dropped, got %v", *a.FirstLineIndentChars)
	}
	if a.FirstLineIndentPt == nil || *a.FirstLineIndentPt != 32 {
		t.Errorf("expected pt indent 32, got %v", a.FirstLineIndentPt)
	}
}

func TestAttrsNormalize_DropsUnknownAlign(t *testing.T) {
	a := Attrs{TextAlign: "distributed"}.Normalize()
	if a.TextAlign != "" {
		t.Errorf("expected empty align, got %q", a.TextAlign)
	}
}

func TestNewHeading_ClampsLevel(t *testing.T) {
	if h := NewHeading(9, "x", Attrs{}); h.Level != 4 {
		t.Errorf("expected level 4, got %d", h.Level)
	}
	if h := NewHeading(0, "x", Attrs{}); h.Level != 1 {
		t.Errorf("expected level 1, got %d", h.Level)
	}
}

func TestSetText_MapsEditsOntoRuns(t *testing.T) {
	b := Block{Type: KindParagraph, Runs: []Run{
		{Text: "一、", Bold: true, FontFamily: "黑体"},
		{Text: "总体要求"},
	}}
	b.SetText("一、总体要求")
	if len(b.Runs) != 2 {
		t.Fatalf("expected unchanged text to keep runs, got %d runs", len(b.Runs))
	}

	b.SetText("二、总体要求")
	want := []Run{{Text: "二、", Bold: true, FontFamily: "黑体"}, {Text: "总体要求"}}
	if diff := cmp.Diff(want, b.Runs); diff != "" {
		t.Errorf("prefix rewrite mismatch (-want +got):\n%s", diff)
	}

	b.SetText("")
	if b.Runs != nil {
		t.Errorf("expected nil runs for empty text, got %+v", b.Runs)
	}
}

func TestSetText_KeepsInlineFormatting(t *testing.T) {
	b := Block{Type: KindParagraph, Runs: []Run{
		{Text: "请各单位于"},
		{Text: "3月5日前", Bold: true},
		{Text: "报送材料，"},
	}}
	b.SetText("请各单位于3月5日前报送材料。")
	want := []Run{{Text: "请各单位于"}, {Text: "3月5日前", Bold: true}, {Text: "报送材料。"}}
	if diff := cmp.Diff(want, b.Runs); diff != "" {
		t.Errorf("punctuation edit mismatch (-want +got):\n%s", diff)
	}

	// Runs emptied by a deletion drop out.
	b.SetText("请各单位报送材料。")
	want = []Run{{Text: "请各单位"}, {Text: "报送材料。"}}
	if diff := cmp.Diff(want, b.Runs); diff != "" {
		t.Errorf("deletion mismatch (-want +got):\n%s", diff)
	}
}

func TestClone_IsDeep(t *testing.T) {
	orig := NewTable([][]string{{"a", "b"}})
	orig.Attrs.FontSizePt = Float(16)
	cp := orig.Clone()

	*cp.Attrs.FontSizePt = 12
	cp.Rows[0].Cells[0].Content[0].SetText("changed")

	if *orig.Attrs.FontSizePt != 16 {
		t.Errorf("expected original size 16, got %v", *orig.Attrs.FontSizePt)
	}
	if got := orig.Rows[0].Cells[0].Content[0].Text(); got != "a" {
		t.Errorf("expected original cell text %q, got %q", "a", got)
	}
}

func TestIsBlank(t *testing.T) {
	if !NewParagraph("  ", Attrs{}).IsBlank() {
		t.Error("expected whitespace paragraph to be blank")
	}
	if NewDivider().IsBlank() {
		t.Error("expected divider not to count as blank")
	}
	if NewHeading(1, "", Attrs{}).IsBlank() {
		t.Error("expected heading not to count as blank")
	}
}

func TestUnmarshalJSON_EditorShape(t *testing.T) {
	data := []byte(`{
		"type": "heading",
		"attrs": {"level": 2, "textAlign": "center", "firstLineIndentPt": 32},
		"content": [{"text": "（一）"}, {"text": "工作目标"}]
	}`)
	var b Block
	if err := json.Unmarshal(data, &b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Type != KindHeading || b.Level != 2 {
		t.Errorf("expected heading level 2, got %s level %d", b.Type, b.Level)
	}
	if b.Text() != "（一）工作目标" {
		t.Errorf("expected text %q, got %q", "（一）工作目标", b.Text())
	}
	if b.Attrs.FirstLineIndentPt != nil {
		t.Error("expected centered heading to lose its pt indent")
	}
}

func TestUnmarshalJSON_DefaultsToParagraph(t *testing.T) {
	var b Block
	if err := json.Unmarshal([]byte(`{"runs":[{"text":"正文"}]}`), &b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Type != KindParagraph {
		t.Errorf("expected paragraph, got %q", b.Type)
	}
}

func TestHeadingRulesLevel(t *testing.T) {
	h := HeadingRules{
		Level1: StyleRule{FontFamily: "黑体"},
		Level4: StyleRule{FontFamily: "仿宋_GB2312"},
	}
	if got := h.Level(1).FontFamily; got != "黑体" {
		t.Errorf("expected 黑体, got %q", got)
	}
	if got := h.Level(7).FontFamily; got != "仿宋_GB2312" {
		t.Errorf("expected clamped level 4 rule, got %q", got)
	}
}

func TestStructuredFieldsClone(t *testing.T) {
	f := NewStructuredFields()
	f.Attachments = append(f.Attachments, AttachmentItem{Index: 1, Name: "方案"})
	cp := f.Clone()
	cp.Attachments[0].Name = "changed"
	if f.Attachments[0].Name != "方案" {
		t.Errorf("expected original attachment untouched, got %q", f.Attachments[0].Name)
	}
	if !f.ExportWithRedhead {
		t.Error("expected new fields to export with red header")
	}
}
