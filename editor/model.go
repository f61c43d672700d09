package editor

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bitbriks/bitbrik/document"
)

// Model is a Bubble Tea component that renders and interacts with a
// document.Editor.
//
// Copies of a Model share their mounted components and render cache; the
// document itself lives in the editor.
type Model struct {
	cfg Config
	v   *view

	focused bool

	viewport viewport.Model

	mouseDragging bool
	mouseAnchor   document.Point
	hasAnchor     bool
}

// New returns a focused model. A zero KeyMap is replaced by DefaultKeyMap.
func New(cfg Config) Model {
	if len(cfg.KeyMap.Left.Keys()) == 0 {
		cfg.KeyMap = DefaultKeyMap()
	}
	m := Model{
		cfg:      cfg,
		v:        newView(cfg),
		focused:  true,
		viewport: viewport.New(0, 0),
	}
	m.sync(true)
	return m
}

// Editor returns the rendered editor.
func (m Model) Editor() *document.Editor { return m.cfg.Editor }

// Init waits for commits made outside of Update so the view can refresh.
func (m Model) Init() tea.Cmd { return m.waitForChange() }

func (m Model) waitForChange() tea.Cmd {
	if m.v == nil {
		return nil
	}
	ch := m.v.changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changeMsg{}
	}
}

func (m Model) SetSize(width, height int) Model {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	m.viewport.Width = width
	m.viewport.Height = height

	m.sync(true)
	return m
}

func (m Model) Focus() Model {
	if !m.focused {
		m.focused = true
		m.sync(true)
	}
	return m
}

func (m Model) Blur() Model {
	if m.focused {
		m.focused = false
		m.sync(false)
	}
	return m
}

func (m Model) Focused() bool { return m.focused }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.SetSize(msg.Width, msg.Height), nil
	case changeMsg:
		m.sync(false)
		return m, m.waitForChange()
	case tea.KeyMsg:
		m = m.updateKey(msg)
		m.sync(false)
		return m, nil
	case tea.MouseMsg:
		var cmd tea.Cmd
		m, cmd = m.updateMouse(msg)
		m.sync(false)
		return m, cmd
	default:
		m.sync(false)
		return m, nil
	}
}

// View renders the visible rows. A commit made since the last Update is
// rendered here as well.
func (m Model) View() string {
	m.sync(false)
	return m.viewport.View()
}

// Close unmounts every decorator component and stops watching the editor.
func (m Model) Close() {
	if m.v != nil {
		m.v.close()
	}
}
