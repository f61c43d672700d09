package editor

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bitbriks/bitbrik/document"
)

func (m Model) updateMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.cfg.ScrollPolicy == ScrollAllowManual || !isManualScrollMouse(msg) {
		m.viewport, cmd = m.viewport.Update(msg)
	}

	e := m.cfg.Editor
	if !m.focused || e == nil {
		return m, cmd
	}

	// Only handle selection/caret changes for left button interactions.
	switch msg.Action { //nolint:exhaustive
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, cmd
		}
		if !m.mouseInBounds(msg.X, msg.Y) {
			return m, cmd
		}

		h := m.hitTest(msg.X, msg.Y)
		var prev *document.RangeSelection
		if msg.Shift {
			prev, _ = document.AsRange(e.State().Selection())
		}
		document.DispatchCommand(e, document.ClickCommand, document.ClickEvent{
			Target: h.key,
			Offset: h.offset,
			Shift:  msg.Shift,
			Ctrl:   msg.Ctrl,
			Alt:    msg.Alt,
		})
		m.mouseAnchor, m.hasAnchor = h.point()
		if focus, ok := h.point(); ok && prev != nil {
			// Shift+click extends the previous selection.
			m.mouseAnchor = prev.Anchor
			m.setRange(prev.Anchor, focus)
		}
		m.mouseDragging = m.hasAnchor

	case tea.MouseActionMotion:
		if !m.mouseDragging {
			return m, cmd
		}

		x, y := m.clampMouseToBounds(msg.X, msg.Y)
		focus, ok := m.hitTest(x, y).point()
		if !ok {
			return m, cmd
		}
		m.setRange(m.mouseAnchor, focus)

	case tea.MouseActionRelease:
		m.mouseDragging = false
	}

	return m, cmd
}

func (m Model) setRange(anchor, focus document.Point) {
	_ = m.cfg.Editor.Update(func(tx *document.Tx) error {
		tx.SetSelection(document.NewRangeSelection(anchor, focus))
		return nil
	})
}

func isManualScrollMouse(msg tea.MouseMsg) bool {
	return msg.Action == tea.MouseActionPress &&
		(msg.Button == tea.MouseButtonWheelUp ||
			msg.Button == tea.MouseButtonWheelDown ||
			msg.Button == tea.MouseButtonWheelLeft ||
			msg.Button == tea.MouseButtonWheelRight)
}

func (m Model) mouseInBounds(x, y int) bool {
	if m.viewport.Width <= 0 || m.viewport.Height <= 0 {
		return false
	}
	return x >= 0 && x < m.viewport.Width && y >= 0 && y < m.viewport.Height
}

func (m Model) clampMouseToBounds(x, y int) (int, int) {
	if m.viewport.Width > 0 {
		x = min(max(x, 0), m.viewport.Width-1)
	}
	if m.viewport.Height > 0 {
		y = min(max(y, 0), m.viewport.Height-1)
	}
	return x, y
}
