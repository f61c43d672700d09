package products

import (
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"

	"github.com/bitbriks/bitbrik/document"
	"github.com/bitbriks/bitbrik/internal/grapheme"
)

// Component renders one products node as a row of cards and owns its
// node-level selection: a click on the node toggles it, Delete or Backspace
// removes it while it is selected.
type Component struct {
	key     document.NodeKey
	focused atomic.Bool
}

// NewComponent returns an unmounted component for the node with key.
func NewComponent(key document.NodeKey) *Component {
	return &Component{key: key}
}

// Key returns the key of the rendered node.
func (c *Component) Key() document.NodeKey { return c.key }

// Focused reports whether the node is part of the current node selection.
func (c *Component) Focused() bool { return c.focused.Load() }

// Mount registers the component's listeners and handlers. The returned
// function removes all of them.
func (c *Component) Mount(e *document.Editor) func() {
	c.sync(e.State())
	return document.MergeRegister(
		e.RegisterUpdateListener(func(ev document.UpdateEvent) {
			c.sync(ev.State)
		}),
		document.RegisterCommand(e, document.ClickCommand, c.onClick, document.PriorityLow),
		document.RegisterCommand(e, document.KeyDeleteCommand, c.onDelete, document.PriorityLow),
		document.RegisterCommand(e, document.KeyBackspaceCommand, c.onDelete, document.PriorityLow),
	)
}

func (c *Component) sync(s *document.State) {
	_, isNodeSel := s.Selection().(*document.NodeSelection)
	c.focused.Store(isNodeSel && document.IsNodeSelected(s.Selection(), c.key))
}

func (c *Component) onClick(tx *document.Tx, ev document.ClickEvent) bool {
	if ev.Target != c.key {
		return false
	}
	selected := document.IsNodeSelected(tx.Selection(), c.key)
	if !ev.Shift {
		tx.ClearNodeSelection()
	}
	tx.SetNodeSelected(c.key, !selected)
	return true
}

// onDelete removes the node when it is selected under a node selection. The
// key stays unhandled while other nodes remain selected so they get their
// turn; the last one leaves a caret where it was.
func (c *Component) onDelete(tx *document.Tx, _ document.KeyEvent) bool {
	ns, ok := tx.NodeSelection()
	if !ok || !ns.Has(c.key) {
		return false
	}
	n, ok := tx.Node(c.key)
	if !ok || !IsNode(n) {
		return false
	}
	at := document.ElementPoint(n.Parent(), tx.IndexOf(c.key))
	if err := tx.Remove(n); err != nil {
		tx.Fail(err)
		return false
	}
	tx.SetNodeSelected(c.key, false)
	if ns, _ := tx.NodeSelection(); ns.Len() == 0 {
		tx.SetSelection(document.NewCaret(at))
		return true
	}
	return false
}

const cardWidth = 24

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(cardWidth)
	focusedBorder = lipgloss.Color("12")
	nameStyle     = lipgloss.NewStyle().Bold(true)
	urlStyle      = lipgloss.NewStyle().Faint(true).Underline(true)
)

// View renders the cards of node in rows that fit width.
func (c *Component) View(node document.Node, width int) string {
	n, ok := node.(*Node)
	if !ok {
		return ""
	}
	style := cardStyle
	if c.Focused() {
		style = style.BorderForeground(focusedBorder)
	}
	inner := cardWidth - 2
	var cards []string
	for _, p := range n.products {
		lines := []string{nameStyle.Render(grapheme.Truncate(p.Name, inner))}
		if p.Image != "" {
			lines = append(lines, grapheme.Truncate("▣ "+p.Image, inner))
		}
		if p.URL != "" {
			lines = append(lines, urlStyle.Render(grapheme.Truncate(p.URL, inner)))
		}
		cards = append(cards, style.Render(strings.Join(lines, "\n")))
	}
	if len(cards) == 0 {
		return style.Render("(no products)")
	}
	perRow := max(width/lipgloss.Width(cards[0]), 1)
	var rows []string
	for i := 0; i < len(cards); i += perRow {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:min(i+perRow, len(cards))]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
