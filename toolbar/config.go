package toolbar

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/bitbriks/bitbrik/document"
	"github.com/bitbriks/bitbrik/nodes"
)

// Config configures a toolbar.
type Config struct {
	Editor *document.Editor

	// KeyMap defaults to DefaultKeyMap. A zero Style renders unstyled.
	KeyMap KeyMap
	Style  Style

	// Palette lists the colors offered by the color pickers.
	// DefaultPalette is used when empty.
	Palette []string

	// GIF is inserted by the "GIF" insert menu entry.
	GIF nodes.InsertImagePayload

	// TableRows and TableColumns prefill the table dialog.
	TableRows, TableColumns int

	Logger zerolog.Logger
}

// DefaultGIF is the sample animation offered by the insert menu.
var DefaultGIF = nodes.InsertImagePayload{
	Src:     "cat-typing.gif",
	AltText: "Cat typing on a laptop",
}

// DefaultPalette is the basic color set of the color pickers.
var DefaultPalette = []string{
	"#000000", "#ffffff", "#d0021b", "#f5a623", "#f8e71c", "#8b572a",
	"#7ed321", "#417505", "#bd10e0", "#9013fe", "#4a90e2", "#50e3c2",
	"#b8e986", "#4a4a4a", "#9b9b9b",
}

func (c Config) withDefaults() Config {
	if len(c.Palette) == 0 {
		c.Palette = DefaultPalette
	}
	if c.GIF == (nodes.InsertImagePayload{}) {
		c.GIF = DefaultGIF
	}
	if c.TableRows < 1 {
		c.TableRows = 5
	}
	if c.TableColumns < 1 {
		c.TableColumns = 5
	}
	if len(c.KeyMap.Activate.Keys()) == 0 {
		c.KeyMap = DefaultKeyMap()
	}
	return c
}

// KeyMap defines the toolbar key bindings. They are only consulted while the
// toolbar has focus.
type KeyMap struct {
	Next, Prev key.Binding
	Up, Down   key.Binding
	Activate   key.Binding
	Cancel     key.Binding

	// Dialog bindings.
	Submit    key.Binding
	NextField key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next")),
		Prev:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "previous")),
		Up:        key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		Down:      key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
		Activate:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "apply")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		NextField: key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
	}
}

// Style controls the toolbar's rendering.
type Style struct {
	Bar      lipgloss.Style
	Item     lipgloss.Style
	Active   lipgloss.Style
	Disabled lipgloss.Style
	On       lipgloss.Style
	Divider  lipgloss.Style
	Popup    lipgloss.Style
	Label    lipgloss.Style
	Error    lipgloss.Style
}

func DefaultStyle() Style {
	return Style{
		Bar:      lipgloss.NewStyle(),
		Item:     lipgloss.NewStyle().Padding(0, 1),
		Active:   lipgloss.NewStyle().Padding(0, 1).Reverse(true),
		Disabled: lipgloss.NewStyle().Padding(0, 1).Faint(true),
		On:       lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("33")),
		Divider:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Popup:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1),
		Label:    lipgloss.NewStyle().Faint(true),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	}
}
