// Package grapheme measures and cuts text by user-perceived characters and
// terminal cells.
package grapheme

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Split returns grapheme clusters for text in visual order.
func Split(text string) []string {
	if text == "" {
		return nil
	}
	g := uniseg.NewGraphemes(text)
	out := make([]string, 0, len([]rune(text)))
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// Width returns the terminal cell width of a cluster or string.
func Width(text string) int {
	w := runewidth.StringWidth(text)
	if w <= 0 {
		w = max(uniseg.StringWidth(text), 0)
	}
	return w
}

// Truncate cuts text to at most width cells, ending with "…" when anything
// was dropped.
func Truncate(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if Width(text) <= width {
		return text
	}
	var sb strings.Builder
	used := 0
	for _, c := range Split(text) {
		w := Width(c)
		if used+w > width-1 {
			break
		}
		sb.WriteString(c)
		used += w
	}
	sb.WriteString("…")
	return sb.String()
}

// IsSpace reports whether all runes in cluster are Unicode whitespace.
func IsSpace(cluster string) bool {
	if cluster == "" {
		return false
	}
	for _, r := range cluster {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
