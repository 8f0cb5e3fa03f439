package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/gongwen/internal/doctree"
)

func TestTextParser_OneBlockPerLine(t *testing.T) {
	input := "关于开展检查的通知\n各部门：\n\n一、检查范围\n全体在职人员。\n(二)时间安排"
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", doc.Title)
	}
	if len(doc.Content) != 5 {
		t.Fatalf("expected 5 blocks, got %d", len(doc.Content))
	}
	if doc.Content[2].Type != doctree.KindHeading || doc.Content[2].Level != 1 {
		t.Errorf("expected level-1 heading, got %s/%d", doc.Content[2].Type, doc.Content[2].Level)
	}
	if doc.Content[4].Type != doctree.KindHeading || doc.Content[4].Level != 2 {
		t.Errorf("expected level-2 heading, got %s/%d", doc.Content[4].Type, doc.Content[4].Level)
	}
	body := doc.Content[3]
	if body.Type != doctree.KindParagraph || body.Attrs.FirstLineIndentChars == nil || *body.Attrs.FirstLineIndentChars != 2 {
		t.Errorf("expected indented paragraph, got %+v", body)
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "empty" {
		t.Errorf("expected title %q, got %q", "empty", doc.Title)
	}
	if len(doc.Content) != 0 {
		t.Errorf("expected 0 blocks for empty input, got %d", len(doc.Content))
	}
}

func TestTextParser_WhitespaceOnlyLines(t *testing.T) {
	// Lines with only whitespace should be treated as blank.
	input := "第一段。\n   \n\n\n第二段。"
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "ws.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Content) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(doc.Content))
	}
}

func TestForFile_Unsupported(t *testing.T) {
	if _, err := ForFile("scan.tiff", Options{}); err == nil || !strings.Contains(err.Error(), ".tiff") {
		t.Errorf("expected unsupported extension error, got %v", err)
	}
	if !IsSupportedExtension("A.DOCX") {
		t.Error("expected .DOCX to be supported")
	}
}

func TestImport_Report(t *testing.T) {
	input := "XX办发〔2026〕3号\n关于开展检查的通知\n一、总体要求\n三、工作安排\n全体人员要认真落实。"
	res, err := Import(strings.NewReader(input), "notice.txt", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Fields.DocNo != "XX办发〔2026〕3号" {
		t.Errorf("expected sniffed doc number, got %q", res.Fields.DocNo)
	}
	if len(res.Report.NumberingWarnings) != 1 {
		t.Errorf("expected 1 numbering warning, got %q", res.Report.NumberingWarnings)
	}
	// The doc number line and the title both look like unrecognized titles.
	if res.Report.UnrecognizedTitleCount != 2 {
		t.Errorf("expected 2 unrecognized titles, got %d", res.Report.UnrecognizedTitleCount)
	}
	if len(res.Report.Notes) != 2 {
		t.Errorf("expected 2 notes, got %d", len(res.Report.Notes))
	}
	if !res.Fields.ExportWithRedhead {
		t.Error("expected imported documents to default to a red header")
	}
}

func TestImport_UnsupportedIsSentinel(t *testing.T) {
	_, err := Import(strings.NewReader(""), "x.rtf", Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), ErrUnsupportedFormat.Error()) {
		t.Errorf("expected sentinel in %v", err)
	}
}

func TestCSVParser_Table(t *testing.T) {
	input := "单位,责任人\n办公室,张三\n财务部,李四,备注\n"
	p := &CSVParser{}
	doc, err := p.Parse(strings.NewReader(input), "duty.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Content) != 1 || doc.Content[0].Type != doctree.KindTable {
		t.Fatalf("expected one table block, got %+v", doc.Content)
	}
	rows := doc.Content[0].Rows
	if len(rows) != 3 || rows[1].Cells[1].Content[0].Text() != "张三" {
		t.Errorf("unexpected rows %+v", rows)
	}
	if len(p.Warnings()) != 1 {
		t.Errorf("expected 1 ragged-row warning, got %q", p.Warnings())
	}
}

func TestHTMLParser(t *testing.T) {
	input := `<html><head><title>关于开展检查的通知</title><style>p{}</style></head><body>
<h2>一、总体要求</h2>
<p>全体人员要认真落实。</p>
<table><tr><th>单位</th><th>责任人</th></tr><tr><td>办公室</td><td>张三</td></tr></table>
<h5>细则</h5>
</body></html>`
	p := &HTMLParser{}
	doc, err := p.Parse(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "关于开展检查的通知" {
		t.Errorf("expected <title> as title, got %q", doc.Title)
	}
	if len(doc.Content) != 4 {
		t.Fatalf("expected 4 blocks, got %d", len(doc.Content))
	}
	if doc.Content[0].Level != 2 || doc.Content[3].Level != 4 {
		t.Errorf("expected levels 2 and 4, got %d and %d", doc.Content[0].Level, doc.Content[3].Level)
	}
	if doc.Content[2].Type != doctree.KindTable || len(doc.Content[2].Rows) != 2 {
		t.Errorf("expected a 2-row table, got %+v", doc.Content[2])
	}
}

func TestPDFDocument_Lines(t *testing.T) {
	doc := pdfDocument("scan", "关于开展检查的通知\n\n一、总体要求\f1.加强领导\n全体人员要认真落实。")
	if len(doc.Content) != 4 {
		t.Fatalf("expected 4 blocks, got %d", len(doc.Content))
	}
	if doc.Content[2].Level != 3 {
		t.Errorf("expected level 3 for the line after the page break, got %d", doc.Content[2].Level)
	}
}
