package editor

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bitbriks/bitbrik/document"
)

func caret(t *testing.T, e *document.Editor) document.Point {
	t.Helper()
	sel, ok := document.AsRange(e.State().Selection())
	if !ok || !sel.IsCollapsed() {
		t.Fatalf("selection=%#v, want a caret", e.State().Selection())
	}
	return sel.Focus
}

func click(m Model, x, y int) Model {
	m, _ = m.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m, _ = m.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	return m
}

func TestHitTest_TextCellsAndRowEnds(t *testing.T) {
	e := newDoc(t)
	keys := seed(t, e, "hello world", "x")
	m := New(Config{Editor: e}).Blur().SetSize(40, 5)

	if got, want := m.hitTest(2, 0), (hit{key: keys[0], offset: 2}); got != want {
		t.Fatalf("hit (2,0): got %+v, want %+v", got, want)
	}
	if got, want := m.hitTest(30, 0), (hit{key: keys[0], offset: 11}); got != want {
		t.Fatalf("hit past end: got %+v, want %+v", got, want)
	}
	if got, want := m.hitTest(0, 1), (hit{key: keys[1], offset: 0}); got != want {
		t.Fatalf("hit (0,1): got %+v, want %+v", got, want)
	}
	if got := m.hitTest(0, 4); got.key != "" {
		t.Fatalf("hit below content: got %+v, want no target", got)
	}
}

func TestHitTest_PrefixMapsToRowStart(t *testing.T) {
	e := newDoc(t)
	importHTML(t, e, `<ul><li>one</li></ul>`)
	m := New(Config{Editor: e}).Blur().SetSize(20, 2)

	h := m.hitTest(0, 0)
	n, ok := e.State().Node(h.key)
	if !ok || !document.IsText(n) || h.offset != 0 {
		t.Fatalf("hit on marker=%+v, want start of the item text", h)
	}
}

func TestMouse_ClickPlacesCaret(t *testing.T) {
	e := newDoc(t)
	keys := seed(t, e, "hello world", "x")
	m := New(Config{Editor: e}).SetSize(40, 5)

	m = click(m, 3, 0)
	if got, want := caret(t, e), document.TextPoint(keys[0], 3); got != want {
		t.Fatalf("caret=%+v, want %+v", got, want)
	}

	m = click(m, 0, 1)
	if got, want := caret(t, e), document.TextPoint(keys[1], 0); got != want {
		t.Fatalf("caret=%+v, want %+v", got, want)
	}

	click(m, 0, 4)
	if got, want := caret(t, e), document.TextPoint(keys[1], 1); got != want {
		t.Fatalf("caret after click below content=%+v, want %+v", got, want)
	}
}

func TestMouse_DragSelects(t *testing.T) {
	e := newDoc(t)
	keys := seed(t, e, "hello world")
	m := New(Config{Editor: e}).SetSize(40, 3)

	m, _ = m.Update(tea.MouseMsg{X: 3, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m, _ = m.Update(tea.MouseMsg{X: 8, Y: 0, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m.Update(tea.MouseMsg{X: 8, Y: 0, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	sel, ok := document.AsRange(e.State().Selection())
	if !ok {
		t.Fatalf("no range selection")
	}
	if sel.Anchor != document.TextPoint(keys[0], 3) || sel.Focus != document.TextPoint(keys[0], 8) {
		t.Fatalf("selection=%+v..%+v, want 3..8", sel.Anchor, sel.Focus)
	}
	if got := e.State().SelectionText(sel); got != "lo wo" {
		t.Fatalf("selected text=%q, want %q", got, "lo wo")
	}
}

func TestMouse_ClickOutsideBoundsIgnored(t *testing.T) {
	e := newDoc(t)
	keys := seed(t, e, "hello")
	m := New(Config{Editor: e}).SetSize(10, 2)

	click(m, 50, 0)
	if got, want := caret(t, e), document.TextPoint(keys[0], 5); got != want {
		t.Fatalf("caret=%+v, want %+v", got, want)
	}
}

func TestMouse_ScrollPolicyFollowCursorOnlyIgnoresWheel(t *testing.T) {
	e := newDoc(t)
	texts := make([]string, 20)
	for i := range texts {
		texts[i] = "line"
	}
	seed(t, e, texts...)
	m := New(Config{Editor: e, ScrollPolicy: ScrollFollowCursorOnly}).SetSize(10, 5)
	before := m.YOffset()

	m, _ = m.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	if got := m.YOffset(); got != before {
		t.Fatalf("yoffset=%d, want %d", got, before)
	}
}
