package bitbrik

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	overlay "github.com/rmhubbert/bubbletea-overlay"

	"github.com/bitbriks/bitbrik/editor"
	"github.com/bitbriks/bitbrik/toolbar"
)

// ShellKeyMap holds the bindings that move focus between the toolbar and
// the document.
type ShellKeyMap struct {
	Toggle key.Binding
	Leave  key.Binding
}

func DefaultShellKeyMap() ShellKeyMap {
	return ShellKeyMap{
		Toggle: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "toolbar")),
		Leave:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back to text")),
	}
}

// Model is the Bubble Tea model of an Editor: the toolbar above the
// document view. Keys go to whichever of the two has focus.
type Model struct {
	keys    ShellKeyMap
	toolbar toolbar.Model
	view    editor.Model
	width   int
	height  int
}

var _ tea.Model = Model{}

// Model returns the editor's Bubble Tea model with the document focused.
func (e *Editor) Model() Model {
	return Model{
		keys:    DefaultShellKeyMap(),
		toolbar: e.tb.Blur(),
		view:    e.view.Focus(),
	}
}

func (m Model) Init() tea.Cmd { return m.view.Init() }

// ToolbarFocused reports whether keys go to the toolbar.
func (m Model) ToolbarFocused() bool { return m.toolbar.Focused() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m.resize(), nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Toggle):
			return m.focusToolbar(!m.toolbar.Focused()), nil
		case m.toolbar.Focused() && !m.toolbar.PopupOpen() && key.Matches(msg, m.keys.Leave):
			return m.focusToolbar(false), nil
		}
		if m.toolbar.Focused() {
			var cmd tea.Cmd
			m.toolbar, cmd = m.toolbar.Update(msg)
			return m.resize(), cmd
		}
	case tea.MouseMsg:
		msg.Y -= lipgloss.Height(m.toolbar.View())
		if msg.Y < 0 {
			return m, nil
		}
		if m.toolbar.Focused() && msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m = m.focusToolbar(false)
		}
		var cmd tea.Cmd
		m.view, cmd = m.view.Update(msg)
		return m, cmd
	}
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if _, ok := msg.(tea.KeyMsg); !ok {
		m.toolbar, cmd = m.toolbar.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.view, cmd = m.view.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) focusToolbar(on bool) Model {
	if on {
		m.toolbar, m.view = m.toolbar.Focus(), m.view.Blur()
	} else {
		m.toolbar, m.view = m.toolbar.Blur(), m.view.Focus()
	}
	return m.resize()
}

// resize gives the document whatever height the toolbar leaves.
func (m Model) resize() Model {
	if m.width == 0 && m.height == 0 {
		return m
	}
	m.toolbar = m.toolbar.SetWidth(m.width)
	h := m.height - lipgloss.Height(m.toolbar.View())
	m.view = m.view.SetSize(m.width, h)
	return m
}

// View draws any open toolbar popup over the top of the document so the
// document keeps its place.
func (m Model) View() string {
	doc := m.view.View()
	if popup, x, ok := m.toolbar.Popup(); ok {
		doc = overlay.Composite(popup, doc, overlay.Left, overlay.Top, x, 0)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.toolbar.View(), doc)
}
