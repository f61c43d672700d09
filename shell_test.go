package bitbrik

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/bitbriks/bitbrik/document"
	"github.com/bitbriks/bitbrik/editor"
)

func update(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	var tm tea.Model = m
	for _, msg := range msgs {
		tm, _ = tm.Update(msg)
	}
	return tm.(Model)
}

func TestShell_ViewStacksToolbarOverDocument(t *testing.T) {
	e := newEditor(t, Config{})
	m := update(t, e.Model(), tea.WindowSizeMsg{Width: 100, Height: 20})

	lines := strings.Split(ansi.Strip(m.View()), "\n")
	if len(lines) != 20 {
		t.Fatalf("height: got %d, want 20", len(lines))
	}
	if !strings.Contains(lines[0], "insert ▾") {
		t.Fatalf("first line is not the toolbar: %q", lines[0])
	}
	if !strings.Contains(strings.Join(lines[1:], "\n"), "next get a chance") {
		t.Fatalf("document missing from view:\n%s", strings.Join(lines, "\n"))
	}
}

func TestShell_ToggleFocus(t *testing.T) {
	e := newEditor(t, Config{Settings: Settings{EmptyEditor: true}})
	m := update(t, e.Model(), tea.WindowSizeMsg{Width: 100, Height: 10})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hi")})
	if got := e.Document().State().TextContent(document.RootKey); got != "hi" {
		t.Fatalf("typed text: got %q, want %q", got, "hi")
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	if !m.ToolbarFocused() {
		t.Fatalf("ctrl+t did not focus the toolbar")
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if got := e.Document().State().TextContent(document.RootKey); got != "hi" {
		t.Fatalf("toolbar keys reached the document: %q", got)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	if m.ToolbarFocused() {
		t.Fatalf("esc did not return to the document")
	}
}

func TestShell_ToolbarInsertsRule(t *testing.T) {
	e := newEditor(t, Config{Settings: Settings{EmptyEditor: true}})
	m := update(t, e.Model(), tea.WindowSizeMsg{Width: 100, Height: 10}, tea.KeyMsg{Type: tea.KeyCtrlT})

	right := tea.KeyMsg{Type: tea.KeyRight}
	m = update(t, m, right, right, right, right, right, tea.KeyMsg{Type: tea.KeyEnter})
	if got := len(e.Document().State().Nodes("horizontalrule")); got != 1 {
		t.Fatalf("rules: got %d, want 1", got)
	}
	if view := ansi.Strip(m.View()); !strings.Contains(view, strings.Repeat("─", 50)) {
		t.Fatalf("rule not rendered:\n%s", view)
	}
}

func TestShell_OnChangeReportsTyping(t *testing.T) {
	var texts []string
	e := newEditor(t, Config{
		Settings: Settings{EmptyEditor: true},
		OnChange: func(ev editor.ChangeEvent) { texts = append(texts, ev.Text) },
	})
	m := update(t, e.Model(), tea.WindowSizeMsg{Width: 100, Height: 10})

	update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	if len(texts) == 0 || texts[len(texts)-1] != "a" {
		t.Fatalf("change texts: got %q, want last %q", texts, "a")
	}
}

func TestShell_PopupDrawsOverDocument(t *testing.T) {
	e := newEditor(t, Config{Settings: Settings{EmptyEditor: true}})
	m := update(t, e.Model(), tea.WindowSizeMsg{Width: 100, Height: 10}, tea.KeyMsg{Type: tea.KeyCtrlT})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	lines := strings.Split(ansi.Strip(m.View()), "\n")
	if len(lines) != 10 {
		t.Fatalf("height with popup: got %d, want 10", len(lines))
	}
	if !strings.Contains(lines[0], "insert ▾") {
		t.Fatalf("first line is not the toolbar: %q", lines[0])
	}
	if !strings.Contains(strings.Join(lines[1:], "\n"), "Text color") {
		t.Fatalf("palette not drawn over the document:\n%s", strings.Join(lines, "\n"))
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	if view := ansi.Strip(m.View()); strings.Contains(view, "Text color") {
		t.Fatalf("palette still drawn after esc:\n%s", view)
	}
}
