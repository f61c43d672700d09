package editor

import (
	"github.com/bitbriks/bitbrik/document"
)

// hit is the node under a viewport cell.
type hit struct {
	key document.NodeKey
	// offset is a rune offset when key is a text node, -1 otherwise.
	offset int
}

// point returns the caret position of a text hit.
func (h hit) point() (document.Point, bool) {
	if h.key == "" || h.offset < 0 {
		return document.Point{}, false
	}
	return document.TextPoint(h.key, h.offset), true
}

// hitTest maps viewport-local mouse coordinates to the node rendered there.
//
// Coordinates are in terminal cells and are relative to the editor's
// viewport: (0,0) is the top-left of the visible content region. Clicks on
// markers and padding resolve to the nearest text on the row; rows without
// text resolve to their decorator or block. Clicks below the last row hit
// nothing.
func (m Model) hitTest(x, y int) hit {
	if m.v == nil {
		return hit{offset: -1}
	}
	rows := m.v.layout.rows
	r := m.viewport.YOffset + y
	if r < 0 || r >= len(rows) {
		return hit{offset: -1}
	}
	cells := rows[r].cells
	if x < 0 {
		x = 0
	}

	pos := 0
	var before, after *cell
	for i := range cells {
		c := &cells[i]
		end := pos + c.width
		if c.offset >= 0 {
			if x >= pos && x < end {
				return hit{key: c.key, offset: c.offset}
			}
			if end <= x {
				before = c
			} else if after == nil {
				after = c
			}
		} else if x >= pos && x < end && c.raw {
			return hit{key: c.key, offset: -1}
		}
		pos = end
	}
	if before != nil {
		return hit{key: before.key, offset: before.offset + before.runes}
	}
	if after != nil {
		return hit{key: after.key, offset: after.offset}
	}
	for _, c := range cells {
		if c.raw {
			return hit{key: c.key, offset: -1}
		}
	}
	return hit{key: rows[r].block, offset: -1}
}
