package output

import (
	"strings"
	"testing"
)

func TestVisualLen(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"plain", 5},
		{"", 0},
		{"\x1b[1mbold\x1b[0m", 4},
		{"\x1b[38;2;100;181;246mstyled\x1b[0m", 6},
		{"███░░", 5},
		{"─", 1},
	}
	for _, tc := range tests {
		if got := visualLen(tc.input); got != tc.want {
			t.Errorf("visualLen(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestPad(t *testing.T) {
	if got := pad("ab", 5); got != "ab   " {
		t.Errorf("pad = %q", got)
	}
	if got := pad("abcdef", 3); got != "abcdef" {
		t.Errorf("pad must not truncate, got %q", got)
	}
	// Styled content pads by visual width, not byte length.
	styled := "\x1b[1mab\x1b[0m"
	if got := visualLen(pad(styled, 5)); got != 5 {
		t.Errorf("padded styled width = %d, want 5", got)
	}
}

func TestTableRender(t *testing.T) {
	SetNoColor(true)

	tbl := NewTable("Date", "Sessions")
	tbl.AddRow("2025-05-10", "4")
	tbl.AddRow("2025-05-11", "12")

	out := tbl.Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, separator, and 2 rows; got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "Date") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[2], "2025-05-10") || !strings.Contains(lines[3], "12") {
		t.Errorf("rows = %q, %q", lines[2], lines[3])
	}

	// Columns widen to the longest cell: "2025-05-10" is 10 wide, so the
	// header row pads "Date" to match.
	if !strings.HasPrefix(lines[2], "2025-05-10  ") {
		t.Errorf("column separator misplaced: %q", lines[2])
	}
}

func TestTableShortRowPadsMissingCells(t *testing.T) {
	SetNoColor(true)

	tbl := NewTable("A", "B", "C")
	tbl.AddRow("only")

	out := tbl.Render()
	if !strings.Contains(out, "only") {
		t.Errorf("render = %q", out)
	}
}

func TestRateBarFill(t *testing.T) {
	SetNoColor(true)

	bar := RateBar(50, 10)
	if !strings.Contains(bar, strings.Repeat("█", 5)+strings.Repeat("░", 5)) {
		t.Errorf("bar at 50%% of width 10 = %q", bar)
	}
	if !strings.Contains(bar, "50%") {
		t.Errorf("bar label missing: %q", bar)
	}

	full := RateBar(150, 10)
	if strings.Count(full, "█") != 10 {
		t.Errorf("overflow bar = %q", full)
	}
	empty := RateBar(-5, 10)
	if strings.Count(empty, "░") != 10 {
		t.Errorf("underflow bar = %q", empty)
	}
}

func TestTrendArrow(t *testing.T) {
	SetNoColor(true)

	if got := TrendArrow(0, true); got != "─" {
		t.Errorf("zero delta = %q", got)
	}
	if got := TrendArrow(2.5, true); !strings.Contains(got, "▲ +2.5") {
		t.Errorf("positive delta = %q", got)
	}
	if got := TrendArrow(-1.5, false); !strings.Contains(got, "▼ -1.5") {
		t.Errorf("negative delta = %q", got)
	}
}

func TestSetNoColorIsObservable(t *testing.T) {
	SetNoColor(true)
	if !IsNoColor() {
		t.Error("IsNoColor should report true after SetNoColor(true)")
	}
}

func TestSection(t *testing.T) {
	SetNoColor(true)

	s := Section("Daily Trends")
	if !strings.Contains(s, "Daily Trends") {
		t.Errorf("section = %q", s)
	}
	if !strings.Contains(s, "─") {
		t.Errorf("section missing rule: %q", s)
	}
}
