package document

import (
	"maps"
	"slices"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// ParseStyle parses an inline CSS declaration list into property/value
// pairs, keeping the last value of repeated properties in first-seen order.
// Malformed input yields the declarations parsed before the error.
func ParseStyle(style string) []*css.Declaration {
	if strings.TrimSpace(style) == "" {
		return nil
	}
	style = strings.TrimSpace(style)
	if !strings.HasSuffix(style, ";") {
		style += ";"
	}
	decls, _ := parser.NewParser(style).ParseDeclarations()
	out := make([]*css.Declaration, 0, len(decls))
	seen := make(map[string]int, len(decls))
	for _, d := range decls {
		d.Property = strings.ToLower(strings.TrimSpace(d.Property))
		d.Value = strings.TrimSpace(d.Value)
		if i, ok := seen[d.Property]; ok {
			out[i] = d
			continue
		}
		seen[d.Property] = len(out)
		out = append(out, d)
	}
	return out
}

// FormatStyle renders declarations as "prop: value;" separated by spaces.
func FormatStyle(decls []*css.Declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		if d.Value == "" {
			continue
		}
		parts = append(parts, d.String())
	}
	return strings.Join(parts, " ")
}

func styleLookup(style, prop string) string {
	for _, d := range ParseStyle(style) {
		if d.Property == prop {
			return d.Value
		}
	}
	return ""
}

// PatchStyle sets the given properties on style. An empty value removes the
// property.
func PatchStyle(style string, patch map[string]string) string {
	decls := ParseStyle(style)
	for _, prop := range slices.Sorted(maps.Keys(patch)) {
		v := patch[prop]
		found := false
		for _, d := range decls {
			if d.Property == prop {
				d.Value = v
				found = true
			}
		}
		if !found && v != "" {
			decls = append(decls, &css.Declaration{Property: prop, Value: v})
		}
	}
	return FormatStyle(decls)
}

// StyleValue returns the value of prop across the selection. A collapsed
// caret reports its own style; a range reports the shared value of its text
// nodes, "" when they differ, and def when none is set.
func (s *State) StyleValue(sel *RangeSelection, prop, def string) string {
	if sel == nil {
		return def
	}
	if sel.IsCollapsed() {
		style := sel.Style
		if style == "" {
			if t, ok := s.nodes[sel.Anchor.Key].(*TextNode); ok {
				style = t.style
			}
		}
		if v := styleLookup(style, prop); v != "" {
			return v
		}
		return def
	}
	value, first := "", true
	for _, n := range s.SelectedNodes(sel) {
		t, ok := n.(*TextNode)
		if !ok {
			continue
		}
		v := styleLookup(t.style, prop)
		if first {
			value, first = v, false
			continue
		}
		if v != value {
			return ""
		}
	}
	if value == "" {
		return def
	}
	return value
}
