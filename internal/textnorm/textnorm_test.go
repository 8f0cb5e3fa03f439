package textnorm

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"  各单位:  ", "各单位："},
		{"一是,二是;三是?", "一是，二是；三是？"},
		{"a  b\t\tc", "a b c"},
		{"落实到位!", "落实到位！"},
		{"版本2.0", "版本2.0"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q): expected %q, got %q", c.in, c.want, got)
		}
		if again := Normalize(Normalize(c.in)); again != Normalize(c.in) {
			t.Errorf("Normalize(%q) not idempotent: %q", c.in, again)
		}
	}
}

func TestApplyPunctuation(t *testing.T) {
	cases := []struct {
		level    int
		in, want string
	}{
		{0, "请认真执行.", "请认真执行。"},
		{0, "请认真执行", "请认真执行"},
		{0, "如下:", "如下："},
		{1, "总体要求.", "总体要求"},
		{1, "总体要求。；", "总体要求"},
		{1, "总体要求", "总体要求"},
		{2, "工作目标!", "工作目标！"},
		{2, "工作目标", "工作目标"},
		{3, "加强组织领导", "加强组织领导。"},
		{3, "加强组织领导;", "加强组织领导；"},
		{4, "明确责任分工。", "明确责任分工。"},
		{4, "", ""},
	}
	for _, c := range cases {
		if got := ApplyPunctuation(c.level, c.in); got != c.want {
			t.Errorf("ApplyPunctuation(%d, %q): expected %q, got %q", c.level, c.in, c.want, got)
		}
	}
}

func TestNormalizeDocNoBracket(t *testing.T) {
	want := "国办发〔2024〕"
	for _, in := range []string{"国办发(2024)", "国办发（2024）", "国办发〔2024〕", "国办发[2024]"} {
		if got := NormalizeDocNoBracket(in); got != want {
			t.Errorf("NormalizeDocNoBracket(%q): expected %q, got %q", in, want, got)
		}
	}
	if got := NormalizeDocNoBracket("国办发（2024）3号"); got != "国办发〔2024〕3号" {
		t.Errorf("expected serial kept, got %q", got)
	}
	if got := NormalizeDocNoBracket("附件（1）"); got != "附件（1）" {
		t.Errorf("expected single digit untouched, got %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate("2026-03-05"); got != "2026年3月5日" {
		t.Errorf("expected %q, got %q", "2026年3月5日", got)
	}
	if got := FormatDate(" 2026年3月5日 "); got != "2026年3月5日" {
		t.Errorf("expected passthrough, got %q", got)
	}
	if got := FormatDate(""); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestEndsWithTerminal(t *testing.T) {
	if !EndsWithTerminal("好。") || !EndsWithTerminal("好:") {
		t.Error("expected terminal punctuation detected")
	}
	if EndsWithTerminal("好，") || EndsWithTerminal("") {
		t.Error("expected comma and empty to be non-terminal")
	}
}

func TestNormalize_NBSP(t *testing.T) {
	if got := Normalize("各\u00a0\u00a0单位"); got != "各 单位" {
		t.Errorf("expected NBSP collapsed, got %q", got)
	}
}
