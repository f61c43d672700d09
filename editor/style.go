package editor

import "github.com/charmbracelet/lipgloss"

// Style controls the editor's rendering.
type Style struct {
	Text        lipgloss.Style
	Heading     lipgloss.Style
	Quote       lipgloss.Style
	QuoteBar    lipgloss.Style
	Link        lipgloss.Style
	Code        lipgloss.Style
	Highlight   lipgloss.Style
	ListMarker  lipgloss.Style
	TableBorder lipgloss.Style
	Placeholder lipgloss.Style

	Selection lipgloss.Style
	Cursor    lipgloss.Style

	// NodeSelected marks single-line decorators in a node selection.
	NodeSelected lipgloss.Style
	// Fallback renders components that failed.
	Fallback lipgloss.Style
}

func DefaultStyle() Style {
	faint := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	return Style{
		Text:         lipgloss.NewStyle(),
		Heading:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Quote:        lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245")),
		QuoteBar:     faint,
		Link:         lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("33")),
		Code:         lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Background(lipgloss.Color("236")),
		Highlight:    lipgloss.NewStyle().Background(lipgloss.Color("58")),
		ListMarker:   faint,
		TableBorder:  faint,
		Placeholder:  faint,
		Selection:    lipgloss.NewStyle().Background(lipgloss.Color("237")),
		Cursor:       lipgloss.NewStyle().Reverse(true),
		NodeSelected: lipgloss.NewStyle().Reverse(true),
		Fallback:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
}
