package editor

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bitbriks/bitbrik/document"
)

func (m Model) updateKey(msg tea.KeyMsg) Model {
	e := m.cfg.Editor
	if !m.focused || e == nil {
		return m
	}

	// Paste events should always insert literal text and never trigger shortcuts.
	if msg.Type == tea.KeyRunes && msg.Paste && len(msg.Runes) > 0 {
		document.DispatchCommand(e, document.PasteCommand, document.Clipboard{Text: normalizeNewlines(string(msg.Runes))})
		return m
	}

	km := m.cfg.KeyMap
	arrow := func(dir document.Direction, shift bool) {
		document.DispatchCommand(e, document.KeyArrowCommand, document.ArrowEvent{Dir: dir, Shift: shift})
	}
	press := func(cmd document.Command[document.KeyEvent], name string, shift bool) {
		document.DispatchCommand(e, cmd, document.KeyEvent{Key: name, Shift: shift})
	}

	switch {
	case key.Matches(msg, km.Left):
		arrow(document.DirLeft, false)
	case key.Matches(msg, km.Right):
		arrow(document.DirRight, false)
	case key.Matches(msg, km.Up):
		arrow(document.DirUp, false)
	case key.Matches(msg, km.Down):
		arrow(document.DirDown, false)

	case key.Matches(msg, km.ShiftLeft):
		arrow(document.DirLeft, true)
	case key.Matches(msg, km.ShiftRight):
		arrow(document.DirRight, true)
	case key.Matches(msg, km.ShiftUp):
		arrow(document.DirUp, true)
	case key.Matches(msg, km.ShiftDown):
		arrow(document.DirDown, true)

	case key.Matches(msg, km.Backspace):
		press(document.KeyBackspaceCommand, "Backspace", false)
	case key.Matches(msg, km.Delete):
		press(document.KeyDeleteCommand, "Delete", false)
	case key.Matches(msg, km.Enter):
		press(document.KeyEnterCommand, "Enter", false)
	case key.Matches(msg, km.ShiftEnter):
		press(document.KeyEnterCommand, "Enter", true)
	case key.Matches(msg, km.Tab):
		press(document.KeyTabCommand, "Tab", false)
	case key.Matches(msg, km.ShiftTab):
		press(document.KeyTabCommand, "Tab", true)
	case key.Matches(msg, km.Escape):
		press(document.KeyEscapeCommand, "Escape", false)

	case key.Matches(msg, km.Bold):
		document.DispatchCommand(e, document.FormatTextCommand, "bold")
	case key.Matches(msg, km.Italic):
		document.DispatchCommand(e, document.FormatTextCommand, "italic")
	case key.Matches(msg, km.Underline):
		document.DispatchCommand(e, document.FormatTextCommand, "underline")
	case key.Matches(msg, km.Strikethrough):
		document.DispatchCommand(e, document.FormatTextCommand, "strikethrough")
	case key.Matches(msg, km.Link):
		document.DispatchCommand(e, document.KeyModifierCommand, document.KeyEvent{Key: "k", Code: "KeyK", Ctrl: true})

	case key.Matches(msg, km.Undo):
		document.DispatchCommand(e, document.UndoCommand, struct{}{})
	case key.Matches(msg, km.Redo):
		document.DispatchCommand(e, document.RedoCommand, struct{}{})

	case key.Matches(msg, km.Copy):
		m.copySelection(false)
	case key.Matches(msg, km.Cut):
		m.copySelection(true)
	case key.Matches(msg, km.Paste):
		m.pasteClipboard()

	default:
		if ev, ok := modifierEvent(msg); ok {
			document.DispatchCommand(e, document.KeyModifierCommand, ev)
			return m
		}
		if msg.Type == tea.KeySpace {
			document.DispatchCommand(e, document.InsertTextCommand, " ")
			return m
		}
		if msg.Type == tea.KeyRunes && len(msg.Runes) > 0 && !msg.Alt {
			document.DispatchCommand(e, document.InsertTextCommand, string(msg.Runes))
		}
	}

	return m
}

// modifierEvent converts an unbound ctrl+letter chord into a key event
// carrying the logical and physical key names.
func modifierEvent(msg tea.KeyMsg) (document.KeyEvent, bool) {
	s := msg.String()
	rest, ok := strings.CutPrefix(s, "ctrl+")
	if !ok {
		return document.KeyEvent{}, false
	}
	shift := false
	if r, ok := strings.CutPrefix(rest, "shift+"); ok {
		rest, shift = r, true
	}
	rs := []rune(rest)
	if len(rs) != 1 || !unicode.IsLetter(rs[0]) || rs[0] > unicode.MaxASCII {
		return document.KeyEvent{}, false
	}
	letter := unicode.ToLower(rs[0])
	return document.KeyEvent{
		Key:   string(letter),
		Code:  "Key" + string(unicode.ToUpper(letter)),
		Ctrl:  true,
		Shift: shift,
	}, true
}

func (m Model) copySelection(cut bool) {
	e := m.cfg.Editor
	data := &document.ClipboardData{}
	cmd := document.CopyCommand
	if cut {
		cmd = document.CutCommand
	}
	document.DispatchCommand(e, cmd, data)
	if m.cfg.Clipboard == nil || (data.Text == "" && data.HTML == "") {
		return
	}
	log := e.Logger()
	if hc, ok := m.cfg.Clipboard.(HTMLClipboard); ok && data.HTML != "" {
		if err := hc.WriteHTML(data.HTML); err != nil {
			log.Warn().Err(err).Msg("clipboard: write html")
		}
	}
	if err := m.cfg.Clipboard.WriteText(data.Text); err != nil {
		log.Warn().Err(err).Msg("clipboard: write text")
	}
}

func (m Model) pasteClipboard() {
	if m.cfg.Clipboard == nil {
		return
	}
	e := m.cfg.Editor
	log := e.Logger()
	var c document.Clipboard
	if hc, ok := m.cfg.Clipboard.(HTMLClipboard); ok {
		s, err := hc.ReadHTML()
		if err != nil {
			log.Warn().Err(err).Msg("clipboard: read html")
		}
		c.HTML = s
	}
	s, err := m.cfg.Clipboard.ReadText()
	if err != nil {
		log.Warn().Err(err).Msg("clipboard: read text")
	}
	c.Text = normalizeNewlines(s)
	if c.HTML == "" && c.Text == "" {
		return
	}
	document.DispatchCommand(e, document.PasteCommand, c)
}

// normalizeNewlines converts newlines from external sources.
func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
