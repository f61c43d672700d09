package toolbar

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type dialogKind int

const (
	dialogImage dialogKind = iota + 1
	dialogTable
)

type field struct {
	label string
	input textinput.Model
}

// dialog is a small form of text fields.
type dialog struct {
	kind   dialogKind
	title  string
	fields []field
	focus  int
	err    string
}

func newField(label, placeholder, value string) field {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.SetValue(value)
	in.CursorEnd()
	return field{label: label, input: in}
}

func newImageDialog() *dialog {
	return &dialog{
		kind:  dialogImage,
		title: "Insert image",
		fields: []field{
			newField("URL", "https://example.com/picture.jpg", ""),
			newField("Alt text", "Random unsplash image", ""),
		},
	}
}

func newTableDialog(rows, columns int) *dialog {
	d := &dialog{
		kind:  dialogTable,
		title: "Insert table",
		fields: []field{
			newField("Rows", "# of rows (1-500)", strconv.Itoa(rows)),
			newField("Columns", "# of columns (1-50)", strconv.Itoa(columns)),
		},
	}
	for i := range d.fields {
		d.fields[i].input.CharLimit = 3
	}
	return d
}

func (d *dialog) value(i int) string { return strings.TrimSpace(d.fields[i].input.Value()) }

// start focuses the first field.
func (d *dialog) start() tea.Cmd {
	d.focus = 0
	return d.fields[0].input.Focus()
}

// cycle moves the focus to the next field, wrapping around.
func (d *dialog) cycle() tea.Cmd {
	d.fields[d.focus].input.Blur()
	d.focus = (d.focus + 1) % len(d.fields)
	return d.fields[d.focus].input.Focus()
}

func (d *dialog) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	d.fields[d.focus].input, cmd = d.fields[d.focus].input.Update(msg)
	if _, ok := msg.(tea.KeyMsg); ok {
		d.err = ""
	}
	return cmd
}

func (d *dialog) view(s Style) string {
	width := 0
	for _, f := range d.fields {
		width = max(width, lipgloss.Width(f.label))
	}
	lines := []string{d.title}
	for _, f := range d.fields {
		label := s.Label.Render(f.label + ":" + strings.Repeat(" ", width-lipgloss.Width(f.label)+1))
		lines = append(lines, label+f.input.View())
	}
	if d.err != "" {
		lines = append(lines, s.Error.Render(d.err))
	}
	lines = append(lines, s.Label.Render("enter confirm · tab next · esc cancel"))
	return s.Popup.Render(strings.Join(lines, "\n"))
}
