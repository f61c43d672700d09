package toolbar

import (
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/bitbriks/bitbrik/document"
	"github.com/bitbriks/bitbrik/nodes"
)

type item int

const (
	itemUndo item = iota
	itemRedo
	itemFontColor
	itemBgColor
	itemLink
	itemTable
	itemImage
	itemRule
	itemInsert
	itemCount
)

var itemLabels = [itemCount]string{
	itemUndo:      "↶",
	itemRedo:      "↷",
	itemFontColor: "color",
	itemBgColor:   "bg",
	itemLink:      "link",
	itemTable:     "table",
	itemImage:     "image",
	itemRule:      "rule",
	itemInsert:    "insert ▾",
}

type popup int

const (
	popupNone popup = iota
	popupFontColor
	popupBgColor
	popupInsert
	popupDialog
)

var insertMenu = []string{"Image", "GIF", "Table"}

// Model is the toolbar component. Copies share the tracked State and the
// editor subscriptions.
type Model struct {
	cfg     Config
	t       *tracker
	closing *sync.Once
	unreg   func()

	focused bool
	width   int
	cursor  item
	popup   popup
	choice  int
	dialog  *dialog
	err     error
}

// New subscribes a toolbar to cfg.Editor. Close removes the subscriptions.
func New(cfg Config) (Model, error) {
	if cfg.Editor == nil {
		return Model{}, errors.New("toolbar: Config.Editor is nil")
	}
	cfg = cfg.withDefaults()
	t := newTracker(cfg.Editor)
	return Model{
		cfg:     cfg,
		t:       t,
		closing: &sync.Once{},
		unreg:   t.register(cfg.Editor),
		cursor:  itemFontColor,
	}, nil
}

// State returns the current toolbar state.
func (m Model) State() State { return m.t.get() }

// Close removes the editor subscriptions. It is safe to call more than once.
func (m Model) Close() {
	if m.closing != nil {
		m.closing.Do(m.unreg)
	}
}

func (m Model) Focus() Model {
	m.focused = true
	return m
}

// Blur drops focus and closes any open popup.
func (m Model) Blur() Model {
	m.focused = false
	return m.closePopup()
}

func (m Model) Focused() bool { return m.focused }

// PopupOpen reports whether a picker, menu or dialog is showing.
func (m Model) PopupOpen() bool { return m.popup != popupNone }

// SetWidth caps the rendered width of the bar. Zero means no limit.
func (m Model) SetWidth(width int) Model {
	m.width = max(width, 0)
	return m
}

// Update handles key input while focused. Other messages reach an open
// dialog so its inputs keep blinking.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	if m.popup == popupDialog {
		return m.updateDialog(msg)
	}
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch m.popup {
	case popupFontColor, popupBgColor:
		return m.updatePalette(km)
	case popupInsert:
		return m.updateMenu(km)
	}
	switch {
	case key.Matches(km, m.cfg.KeyMap.Next):
		m.cursor = (m.cursor + 1) % itemCount
	case key.Matches(km, m.cfg.KeyMap.Prev):
		m.cursor = (m.cursor + itemCount - 1) % itemCount
	case key.Matches(km, m.cfg.KeyMap.Activate):
		return m.activate(m.cursor)
	}
	return m, nil
}

func enabled(it item, st State) bool {
	switch it {
	case itemUndo:
		return st.Editable && st.CanUndo
	case itemRedo:
		return st.Editable && st.CanRedo
	}
	return st.Editable
}

func (m Model) activate(it item) (Model, tea.Cmd) {
	st := m.t.get()
	if !enabled(it, st) {
		return m, nil
	}
	e := m.cfg.Editor
	m.err = nil
	switch it {
	case itemUndo:
		document.DispatchCommand(e, document.UndoCommand, struct{}{})
	case itemRedo:
		document.DispatchCommand(e, document.RedoCommand, struct{}{})
	case itemFontColor:
		m.popup, m.choice = popupFontColor, paletteIndex(m.cfg.Palette, st.FontColor)
	case itemBgColor:
		m.popup, m.choice = popupBgColor, paletteIndex(m.cfg.Palette, st.BgColor)
	case itemLink:
		url := ""
		if !st.IsLink {
			url = nodes.SanitizeURL("https://")
		}
		document.DispatchCommand(e, nodes.ToggleLinkCommand, url)
	case itemTable:
		return m.openDialog(newTableDialog(m.cfg.TableRows, m.cfg.TableColumns))
	case itemImage:
		return m.openDialog(newImageDialog())
	case itemRule:
		m = m.report(InsertHorizontalRule(e))
	case itemInsert:
		m.popup, m.choice = popupInsert, 0
	}
	return m, nil
}

// paletteIndex finds color in palette, expanding short hex forms. Unknown
// colors select the first entry.
func paletteIndex(palette []string, color string) int {
	color = strings.ToLower(color)
	if len(color) == 4 && color[0] == '#' {
		color = string([]byte{'#', color[1], color[1], color[2], color[2], color[3], color[3]})
	}
	for i, c := range palette {
		if strings.ToLower(c) == color {
			return i
		}
	}
	return 0
}

func (m Model) updatePalette(km tea.KeyMsg) (Model, tea.Cmd) {
	n := len(m.cfg.Palette)
	switch {
	case key.Matches(km, m.cfg.KeyMap.Next), key.Matches(km, m.cfg.KeyMap.Down):
		m.choice = (m.choice + 1) % n
	case key.Matches(km, m.cfg.KeyMap.Prev), key.Matches(km, m.cfg.KeyMap.Up):
		m.choice = (m.choice + n - 1) % n
	case key.Matches(km, m.cfg.KeyMap.Cancel):
		m = m.closePopup()
	case key.Matches(km, m.cfg.KeyMap.Activate):
		color := m.cfg.Palette[m.choice]
		var err error
		if m.popup == popupFontColor {
			err = SetFontColor(m.cfg.Editor, color)
		} else {
			err = SetBgColor(m.cfg.Editor, color)
		}
		m = m.closePopup().report(err)
	}
	return m, nil
}

func (m Model) updateMenu(km tea.KeyMsg) (Model, tea.Cmd) {
	n := len(insertMenu)
	switch {
	case key.Matches(km, m.cfg.KeyMap.Down), key.Matches(km, m.cfg.KeyMap.Next):
		m.choice = (m.choice + 1) % n
	case key.Matches(km, m.cfg.KeyMap.Up), key.Matches(km, m.cfg.KeyMap.Prev):
		m.choice = (m.choice + n - 1) % n
	case key.Matches(km, m.cfg.KeyMap.Cancel):
		m = m.closePopup()
	case key.Matches(km, m.cfg.KeyMap.Activate):
		switch insertMenu[m.choice] {
		case "Image":
			return m.openDialog(newImageDialog())
		case "GIF":
			m = m.closePopup().report(InsertImage(m.cfg.Editor, m.cfg.GIF))
		case "Table":
			return m.openDialog(newTableDialog(m.cfg.TableRows, m.cfg.TableColumns))
		}
	}
	return m, nil
}

func (m Model) openDialog(d *dialog) (Model, tea.Cmd) {
	m.popup, m.dialog = popupDialog, d
	return m, d.start()
}

func (m Model) updateDialog(msg tea.Msg) (Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, m.cfg.KeyMap.Cancel):
			return m.closePopup(), nil
		case key.Matches(km, m.cfg.KeyMap.NextField):
			return m, m.dialog.cycle()
		case key.Matches(km, m.cfg.KeyMap.Submit):
			return m.submit(), nil
		}
	}
	return m, m.dialog.update(msg)
}

// submit validates the dialog and runs its insertion. Invalid input keeps
// the dialog open with a message.
func (m Model) submit() Model {
	d := m.dialog
	e := m.cfg.Editor
	var err error
	switch d.kind {
	case dialogTable:
		rows, rerr := strconv.Atoi(d.value(0))
		cols, cerr := strconv.Atoi(d.value(1))
		if rerr != nil || cerr != nil || rows < 1 || rows > 500 || cols < 1 || cols > 50 {
			d.err = "rows must be 1-500 and columns 1-50"
			return m
		}
		err = InsertTable(e, rows, cols)
	case dialogImage:
		if d.value(0) == "" {
			d.err = "an image URL is required"
			return m
		}
		err = InsertImage(e, nodes.InsertImagePayload{Src: d.value(0), AltText: d.value(1)})
	}
	if err != nil {
		d.err = err.Error()
		return m
	}
	return m.closePopup()
}

func (m Model) closePopup() Model {
	m.popup, m.choice, m.dialog = popupNone, 0, nil
	return m
}

func (m Model) report(err error) Model {
	m.err = err
	if err != nil {
		m.cfg.Logger.Error().Err(err).Msg("toolbar action failed")
	}
	return m
}

// View renders the bar and the last action error. Open popups are drawn
// separately by the host, see Popup.
func (m Model) View() string {
	bar, _ := m.viewBar()
	if m.err != nil {
		return lipgloss.JoinVertical(lipgloss.Left, bar, m.cfg.Style.Error.Render(m.err.Error()))
	}
	return bar
}

// Popup returns the open palette, menu or dialog and the column it should
// be drawn at, clamped to the bar width. ok is false when nothing is open.
func (m Model) Popup() (view string, x int, ok bool) {
	switch m.popup {
	case popupFontColor:
		view = m.viewPalette("Text color")
	case popupBgColor:
		view = m.viewPalette("Background color")
	case popupInsert:
		view = m.viewMenu()
	case popupDialog:
		view = m.dialog.view(m.cfg.Style)
	default:
		return "", 0, false
	}
	_, cols := m.viewBar()
	x = cols[m.cursor]
	if m.width > 0 {
		x = min(x, max(m.width-lipgloss.Width(view), 0))
	}
	return view, x, true
}

// viewBar renders the item row and the starting column of every item.
func (m Model) viewBar() (string, [itemCount]int) {
	st := m.t.get()
	s := m.cfg.Style
	var cols [itemCount]int
	parts := make([]string, 0, itemCount+3)
	x := s.Bar.GetMarginLeft() + s.Bar.GetBorderLeftSize() + s.Bar.GetPaddingLeft()
	for it := item(0); it < itemCount; it++ {
		cols[it] = x
		part := m.viewItem(it, st)
		parts = append(parts, part)
		x += lipgloss.Width(part)
		if it == itemRedo || it == itemLink || it == itemRule {
			div := s.Divider.Render("│")
			parts = append(parts, div)
			x += lipgloss.Width(div)
		}
	}
	bar := s.Bar
	if m.width > 0 {
		bar = bar.MaxWidth(m.width)
	}
	return bar.Render(lipgloss.JoinHorizontal(lipgloss.Top, parts...)), cols
}

func (m Model) viewItem(it item, st State) string {
	s := m.cfg.Style
	label := itemLabels[it]
	switch it {
	case itemFontColor:
		label = swatch(st.FontColor) + " " + label
	case itemBgColor:
		label = swatch(st.BgColor) + " " + label
	}
	switch {
	case m.focused && m.cursor == it:
		return s.Active.Render(label)
	case !enabled(it, st):
		return s.Disabled.Render(label)
	case it == itemLink && st.IsLink:
		return s.On.Render(label)
	}
	return s.Item.Render(label)
}

func swatch(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("■")
}

func (m Model) viewPalette(title string) string {
	s := m.cfg.Style
	cells := make([]string, len(m.cfg.Palette))
	for i, c := range m.cfg.Palette {
		if i == m.choice {
			cells[i] = "[" + swatch(c) + "]"
		} else {
			cells[i] = " " + swatch(c) + " "
		}
	}
	body := title + "\n" + strings.Join(cells, "") + "\n" + s.Label.Render(m.cfg.Palette[m.choice])
	return s.Popup.Render(body)
}

func (m Model) viewMenu() string {
	lines := make([]string, len(insertMenu))
	for i, name := range insertMenu {
		prefix := "  "
		if i == m.choice {
			prefix = "› "
		}
		lines[i] = prefix + name
	}
	return m.cfg.Style.Popup.Render(strings.Join(lines, "\n"))
}
