package grapheme

import "testing"

func TestSplit_MultiRuneGraphemes(t *testing.T) {
	text := "a" + "é" + "\U0001F44D\U0001F3FD" + "b"
	got := Split(text)
	if len(got) != 4 {
		t.Fatalf("split len=%d, want %d", len(got), 4)
	}
	if got[1] != "é" {
		t.Fatalf("split[1]=%q, want %q", got[1], "é")
	}
}

func TestWidth_WideRunes(t *testing.T) {
	if got, want := Width("ab"), 2; got != want {
		t.Fatalf("width=%d, want %d", got, want)
	}
	if got, want := Width("日本"), 4; got != want {
		t.Fatalf("width=%d, want %d", got, want)
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		text  string
		width int
		want  string
	}{
		{"Coffee mug", 20, "Coffee mug"},
		{"Coffee mug", 7, "Coffee…"},
		{"日本語", 4, "日…"},
		{"abc", 0, ""},
	}
	for _, tc := range cases {
		if got := Truncate(tc.text, tc.width); got != tc.want {
			t.Fatalf("Truncate(%q, %d)=%q, want %q", tc.text, tc.width, got, tc.want)
		}
	}
}

func TestIsSpace(t *testing.T) {
	if !IsSpace("\t") {
		t.Fatalf("tab should be space")
	}
	if IsSpace("a") {
		t.Fatalf("letter should not be space")
	}
}
