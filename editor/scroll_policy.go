package editor

// ScrollPolicy controls how viewport scrolling is allowed to move relative to
// the caret.
type ScrollPolicy int

const (
	// ScrollAllowManual allows manual viewport scrolling (for example via mouse
	// wheel) even when the caret does not move.
	ScrollAllowManual ScrollPolicy = iota
	// ScrollFollowCursorOnly keeps vertical viewport movement caret-driven.
	// Manual viewport scrolling is ignored.
	ScrollFollowCursorOnly
)
