package extract

import (
	"testing"

	"github.com/dgallion1/gongwen/internal/doctree"
	"github.com/dgallion1/gongwen/internal/heading"
)

func paras(texts ...string) []doctree.Block {
	out := make([]doctree.Block, len(texts))
	for i, t := range texts {
		out[i] = doctree.NewParagraph(t, doctree.Attrs{})
	}
	return out
}

func TestFields_LiftsTitleAddresseeAttachments(t *testing.T) {
	in := paras(
		"关于开展2026年安全生产检查的通知",
		"各部门、各单位:",
		"为进一步落实安全生产责任，现将有关事项通知如下。",
		"附件：",
		"2. 检查表.docx",
		"1. 人员名单",
	)
	out, f := Fields(in, doctree.NewStructuredFields(), Options{}, heading.Policy{})

	if f.Title != "关于开展2026年安全生产检查的通知" {
		t.Errorf("expected title lifted, got %q", f.Title)
	}
	if f.MainTo != "各部门、各单位：" {
		t.Errorf("expected addressee lifted, got %q", f.MainTo)
	}
	if len(f.Attachments) != 2 {
		t.Fatalf("expected 2 attachments, got %d", len(f.Attachments))
	}
	if f.Attachments[0] != (doctree.AttachmentItem{Index: 1, Name: "检查表"}) {
		t.Errorf("unexpected first attachment %+v", f.Attachments[0])
	}
	if f.Attachments[1] != (doctree.AttachmentItem{Index: 2, Name: "人员名单"}) {
		t.Errorf("unexpected second attachment %+v", f.Attachments[1])
	}
	if len(out) != 1 || out[0].Text() != "为进一步落实安全生产责任，现将有关事项通知如下。" {
		t.Errorf("expected only the body paragraph left, got %d blocks", len(out))
	}
	if len(in) != 6 {
		t.Errorf("expected input untouched, got %d blocks", len(in))
	}
}

func TestFields_AddresseeFirstKeepsBodySentence(t *testing.T) {
	in := paras("各单位：", "现将有关事项通知如下。", "一、总体要求")
	out, f := Fields(in, doctree.NewStructuredFields(), Options{}, heading.Policy{})

	if f.Title != "" {
		t.Errorf("expected no title, got %q", f.Title)
	}
	if f.MainTo != "各单位：" {
		t.Errorf("expected addressee lifted, got %q", f.MainTo)
	}
	if len(out) != 2 || out[0].Text() != "现将有关事项通知如下。" {
		t.Fatalf("expected body sentence kept, got %d blocks", len(out))
	}
}

func TestValidTitle_RejectsSentences(t *testing.T) {
	o := DefaultOptions()
	for _, text := range []string{"现将有关事项通知如下。", "关于开展检查工作的通知；", "关于开展检查工作的通知."} {
		if o.ValidTitle(text) {
			t.Errorf("expected %q rejected as title", text)
		}
	}
	if !o.ValidTitle("关于开展安全检查的通知") {
		t.Error("expected plain title accepted")
	}
}

func TestFields_NeverOverwrites(t *testing.T) {
	f := doctree.NewStructuredFields()
	f.Title = "已有标题"
	out, got := Fields(paras("关于开展安全检查的通知", "正文"), f, Options{}, heading.Policy{})
	if got.Title != "已有标题" {
		t.Errorf("expected title kept, got %q", got.Title)
	}
	// Title step skipped, addressee candidate is the would-be title and fails.
	if len(out) != 2 {
		t.Errorf("expected nothing removed, got %d blocks", len(out))
	}
}

func TestFields_HeadingIsNotATitle(t *testing.T) {
	out, f := Fields(paras("一、关于开展安全检查的通知", "各单位："), doctree.NewStructuredFields(), Options{}, heading.Policy{})
	if f.Title != "" {
		t.Errorf("expected no title, got %q", f.Title)
	}
	if f.MainTo != "" {
		t.Errorf("expected addressee search to stop at the heading, got %q", f.MainTo)
	}
	if len(out) != 2 {
		t.Errorf("expected 2 blocks, got %d", len(out))
	}
}

func TestFields_SkipsBlankLeadingLines(t *testing.T) {
	_, f := Fields(paras("", "  ", "关于召开年度工作会议的通知"), doctree.NewStructuredFields(), Options{}, heading.Policy{})
	if f.Title != "关于召开年度工作会议的通知" {
		t.Errorf("expected title after blanks, got %q", f.Title)
	}
}

func TestFields_TitleRules(t *testing.T) {
	o := DefaultOptions()
	cases := map[string]bool{
		"关于开展安全检查的通知":   true,
		"通知":            false,
		"关于开展安全检查的通知如下：": false,
		"附件：关于开展安全检查的通知": false,
		"今年全市经济运行总体平稳向好": false,
	}
	for text, want := range cases {
		if got := o.ValidTitle(text); got != want {
			t.Errorf("ValidTitle(%q): expected %v, got %v", text, want, got)
		}
	}
}

func TestFields_BareOpenerNotLifted(t *testing.T) {
	out, f := Fields(paras("正文内容。", "附件："), doctree.NewStructuredFields(), Options{}, heading.Policy{})
	if len(f.Attachments) != 0 {
		t.Errorf("expected no attachments, got %+v", f.Attachments)
	}
	if len(out) != 2 {
		t.Errorf("expected opener kept in body, got %d blocks", len(out))
	}
}

func TestSniffDocNo(t *testing.T) {
	blocks := paras("××市人民政府办公室", "市政办发(2026)12号", "关于开展安全检查的通知")
	got, ok := SniffDocNo(blocks)
	if !ok || got != "市政办发〔2026〕12号" {
		t.Errorf("expected 市政办发〔2026〕12号, got %q ok=%v", got, ok)
	}

	late := append(paras("1", "2", "3", "4", "5", "6", "7", "8"), paras("国发〔2026〕1号")...)
	if _, ok := SniffDocNo(late); ok {
		t.Error("expected doc number past the first 8 blocks to be ignored")
	}
}
