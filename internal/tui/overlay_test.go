package tui

import (
	"strings"
	"testing"
)

func TestCompositeCentersBox(t *testing.T) {
	base := strings.TrimSuffix(strings.Repeat("..........\n", 10), "\n")
	box := "XX\nXX"

	out := composite(base, box, 10, 10)
	rows := strings.Split(out, "\n")

	if len(rows) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(rows))
	}
	hit := -1
	for i, row := range rows {
		if strings.Contains(row, "XX") {
			hit = i
			break
		}
	}
	if hit < 0 {
		t.Fatal("box not found in composited output")
	}
	// vertical centering leaves the bottom two rows free for status and help
	if hit < 2 || hit > 5 {
		t.Errorf("box starts at row %d, expected near vertical center", hit)
	}
	if !strings.HasPrefix(rows[hit], "....") {
		t.Errorf("box not horizontally centered: %q", rows[hit])
	}
	// rows outside the box are untouched
	if rows[0] != ".........." {
		t.Errorf("top row modified: %q", rows[0])
	}
	if rows[9] != ".........." {
		t.Errorf("bottom row modified: %q", rows[9])
	}
}

func TestCompositeBottomRowsReserved(t *testing.T) {
	base := strings.TrimSuffix(strings.Repeat("base......\n", 8), "\n")
	box := strings.TrimSuffix(strings.Repeat("BOX\n", 8), "\n")

	out := composite(base, box, 10, 8)
	rows := strings.Split(out, "\n")

	for _, r := range rows[len(rows)-2:] {
		if strings.Contains(r, "BOX") {
			t.Errorf("box bled into reserved bottom rows: %q", r)
		}
	}
}

func TestOverlayAtPreservesSurroundingText(t *testing.T) {
	got := overlayAt("abcdefghij", "XY", 4, 0, 10, 1)
	want := "abcdXYghij"
	if got != want {
		t.Errorf("overlayAt = %q, want %q", got, want)
	}
}

func TestOverlayAtOnShortBase(t *testing.T) {
	got := overlayAt("ab", "XY", 4, 0, 10, 1)
	if !strings.Contains(got, "XY") {
		t.Errorf("overlay missing from %q", got)
	}
	if !strings.HasPrefix(got, "ab  XY") {
		t.Errorf("short base not padded before overlay: %q", got)
	}
}

func TestTruncateKeepsShortLines(t *testing.T) {
	if got := truncate("hello", 10); got != "hello" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("hello world", 5); got != "hell…" {
		t.Errorf("truncate = %q", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 5); got != "ab   " {
		t.Errorf("padRight = %q", got)
	}
	if got := padRight("abcdef", 3); got != "abcdef" {
		t.Errorf("padRight should not trim: %q", got)
	}
}

func TestSplitLines(t *testing.T) {
	got := splitLines("a\nb\nc")
	if len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("splitLines = %v", got)
	}
}
