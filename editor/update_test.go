package editor

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bitbriks/bitbrik/document"
)

type memClipboard struct {
	text string
	html string
}

func (c *memClipboard) ReadText() (string, error) { return c.text, nil }
func (c *memClipboard) WriteText(s string) error  { c.text = s; return nil }
func (c *memClipboard) ReadHTML() (string, error) { return c.html, nil }
func (c *memClipboard) WriteHTML(s string) error  { c.html = s; return nil }

var keyTypes = map[string]tea.KeyType{
	"left":        tea.KeyLeft,
	"right":       tea.KeyRight,
	"shift+left":  tea.KeyShiftLeft,
	"backspace":   tea.KeyBackspace,
	"delete":      tea.KeyDelete,
	"enter":       tea.KeyEnter,
	"tab":         tea.KeyTab,
	"ctrl+c":      tea.KeyCtrlC,
	"ctrl+x":      tea.KeyCtrlX,
	"ctrl+v":      tea.KeyCtrlV,
	"ctrl+z":      tea.KeyCtrlZ,
	"ctrl+y":      tea.KeyCtrlY,
	"ctrl+b":      tea.KeyCtrlB,
	"ctrl+k":      tea.KeyCtrlK,
	"ctrl+e":      tea.KeyCtrlE,
	"space":       tea.KeySpace,
}

func keyMsg(name string) tea.KeyMsg {
	if t, ok := keyTypes[name]; ok {
		if t == tea.KeySpace {
			return tea.KeyMsg{Type: t, Runes: []rune{' '}}
		}
		return tea.KeyMsg{Type: t}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name)}
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		m, _ = m.Update(keyMsg(k))
	}
	return m
}

func content(e *document.Editor) string {
	return e.State().TextContent(document.RootKey)
}

func TestUpdate_TypingEnterBackspaceUndo(t *testing.T) {
	e := newDoc(t)
	seed(t, e, "ab")
	m := New(Config{Editor: e}).SetSize(20, 5)

	m = press(m, "X", "space", "y")
	if got := content(e); got != "abX y" {
		t.Fatalf("text after typing: got %q, want %q", got, "abX y")
	}

	m = press(m, "backspace", "backspace")
	if got := content(e); got != "abX" {
		t.Fatalf("text after backspace: got %q, want %q", got, "abX")
	}

	m = press(m, "enter", "z")
	if got := content(e); got != "abX\n\nz" {
		t.Fatalf("text after enter: got %q, want %q", got, "abX\n\nz")
	}

	m = press(m, "ctrl+z", "ctrl+z")
	if got := content(e); got != "abX" {
		t.Fatalf("text after undo: got %q, want %q", got, "abX")
	}
	press(m, "ctrl+y")
	if got := content(e); got != "abX\n\n" {
		t.Fatalf("text after redo: got %q, want %q", got, "abX\n\n")
	}
}

func TestUpdate_BlurredIgnoresKeys(t *testing.T) {
	e := newDoc(t)
	seed(t, e, "ab")
	m := New(Config{Editor: e}).Blur()
	press(m, "X")
	if got := content(e); got != "ab" {
		t.Fatalf("text=%q, want %q", got, "ab")
	}
}

func TestUpdate_ReadOnlyIgnoresEdits(t *testing.T) {
	e := newDoc(t)
	seed(t, e, "ab")
	e.SetEditable(false)
	m := New(Config{Editor: e})
	press(m, "X", "backspace", "enter")
	if got := content(e); got != "ab" {
		t.Fatalf("text=%q, want %q", got, "ab")
	}
}

func TestUpdate_BoldFormatsSelection(t *testing.T) {
	e := newDoc(t)
	seed(t, e, "ab")
	m := New(Config{Editor: e})
	press(m, "shift+left", "shift+left", "ctrl+b")

	texts := e.State().Nodes("text")
	if len(texts) == 0 {
		t.Fatalf("no text nodes")
	}
	for _, n := range texts {
		if !n.(*document.TextNode).HasFormat("bold") {
			t.Fatalf("text %q not bold", n.(*document.TextNode).Text())
		}
	}
}

func TestUpdate_ControlChordsBecomeModifierCommands(t *testing.T) {
	e := newDoc(t)
	var got []document.KeyEvent
	document.RegisterCommand(e, document.KeyModifierCommand, func(_ *document.Tx, ev document.KeyEvent) bool {
		got = append(got, ev)
		return true
	}, document.PriorityNormal)
	m := New(Config{Editor: e})
	press(m, "ctrl+k", "ctrl+e")

	if len(got) != 2 {
		t.Fatalf("modifier events=%d, want 2", len(got))
	}
	if got[0].Code != "KeyK" || got[0].Key != "k" || !got[0].Ctrl {
		t.Fatalf("ctrl+k event=%+v", got[0])
	}
	if got[1].Code != "KeyE" {
		t.Fatalf("ctrl+e code=%q, want KeyE", got[1].Code)
	}
}

func TestModifierEvent(t *testing.T) {
	cases := []struct {
		msg  tea.KeyMsg
		code string
		ok   bool
	}{
		{tea.KeyMsg{Type: tea.KeyCtrlK}, "KeyK", true},
		{tea.KeyMsg{Type: tea.KeyCtrlA}, "KeyA", true},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")}, "", false},
		{tea.KeyMsg{Type: tea.KeyCtrlUp}, "", false},
	}
	for _, tc := range cases {
		ev, ok := modifierEvent(tc.msg)
		if ok != tc.ok || ev.Code != tc.code {
			t.Fatalf("modifierEvent(%q)=(%q,%v), want (%q,%v)", tc.msg.String(), ev.Code, ok, tc.code, tc.ok)
		}
	}
}

func TestUpdate_BracketedPasteInsertsLiteralText(t *testing.T) {
	e := newDoc(t)
	seed(t, e, "ab")
	m := New(Config{Editor: e})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hi\r\nyo"), Paste: true})
	if got := content(e); got != "abhi\n\nyo" {
		t.Fatalf("text=%q, want %q", got, "abhi\n\nyo")
	}
}

func TestUpdate_CopyCutPaste(t *testing.T) {
	e := newDoc(t)
	seed(t, e, "ab")
	clip := &memClipboard{}
	m := New(Config{Editor: e, Clipboard: clip})

	m = press(m, "shift+left", "shift+left", "ctrl+c")
	if clip.text != "ab" {
		t.Fatalf("clipboard text=%q, want %q", clip.text, "ab")
	}
	if !strings.Contains(clip.html, "ab") {
		t.Fatalf("clipboard html=%q, want it to contain ab", clip.html)
	}
	if got := content(e); got != "ab" {
		t.Fatalf("copy changed the document: %q", got)
	}

	m = press(m, "ctrl+x")
	if got := content(e); got != "" {
		t.Fatalf("text after cut=%q, want empty", got)
	}

	press(m, "ctrl+v")
	if got := content(e); got != "ab" {
		t.Fatalf("text after paste=%q, want %q", got, "ab")
	}
}
