package editor

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bitbriks/bitbrik/document"
	"github.com/bitbriks/bitbrik/nodes"
	"github.com/bitbriks/bitbrik/products"
)

func newDoc(t *testing.T, extra ...document.Class) *document.Editor {
	t.Helper()
	classes := append(append(nodes.All(), products.Class), extra...)
	e, err := document.New(document.Config{Nodes: classes})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	plugins := append(nodes.Plugins(), products.Plugin(), document.HistoryPlugin(document.NewHistoryState(0)))
	if _, err := document.RegisterPlugins(e, plugins...); err != nil {
		t.Fatalf("RegisterPlugins: %v", err)
	}
	return e
}

// seed fills the editor with one paragraph per text and puts the caret at
// the end of the last one.
func seed(t *testing.T, e *document.Editor, texts ...string) []document.NodeKey {
	t.Helper()
	var keys []document.NodeKey
	err := e.Update(func(tx *document.Tx) error {
		for _, s := range texts {
			p := document.Create(tx, document.NewParagraph())
			tn := document.Create(tx, document.NewText(s))
			if err := tx.Append(tx.Root(), p); err != nil {
				return err
			}
			if err := tx.Append(p, tn); err != nil {
				return err
			}
			keys = append(keys, tn.Key())
			tx.SelectEnd(tn)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return keys
}

func importHTML(t *testing.T, e *document.Editor, markup string) {
	t.Helper()
	if err := e.Update(func(tx *document.Tx) error { return tx.ImportHTML(markup) }); err != nil {
		t.Fatalf("import: %v", err)
	}
}

func viewLines(m Model) []string {
	lines := strings.Split(m.View(), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(ansi.Strip(lines[i]), " ")
	}
	return lines
}

func TestModel_SetSizeAffectsViewHeight(t *testing.T) {
	e := newDoc(t)
	seed(t, e, "a", "b", "c")
	m := New(Config{Editor: e})
	m = m.Blur()

	m = m.SetSize(20, 2)
	if got := lipgloss.Height(m.View()); got != 2 {
		t.Fatalf("height after SetSize(20,2): got %d, want %d", got, 2)
	}

	m = m.SetSize(20, 4)
	if got := lipgloss.Height(m.View()); got != 4 {
		t.Fatalf("height after SetSize(20,4): got %d, want %d", got, 4)
	}
}

func TestModel_FocusBlur(t *testing.T) {
	m := New(Config{Editor: newDoc(t)})
	if !m.Focused() {
		t.Fatalf("new model not focused")
	}
	if m = m.Blur(); m.Focused() {
		t.Fatalf("focused after Blur")
	}
	if m = m.Focus(); !m.Focused() {
		t.Fatalf("not focused after Focus")
	}
}

func TestModel_ViewTracksCommitsOutsideUpdate(t *testing.T) {
	e := newDoc(t)
	seed(t, e, "one")
	m := New(Config{Editor: e}).Blur().SetSize(20, 2)

	seed(t, e, "two")
	got := viewLines(m)
	if got[0] != "one" || got[1] != "two" {
		t.Fatalf("view=%q, want [one two]", got)
	}
}

func TestModel_ScrollToNodeCentersRows(t *testing.T) {
	e := newDoc(t)
	texts := make([]string, 40)
	for i := range texts {
		texts[i] = "line"
	}
	keys := seed(t, e, texts...)
	m := New(Config{Editor: e}).SetSize(20, 5).Blur()
	if got := m.YOffset(); got != 35 {
		t.Fatalf("yoffset following caret=%d, want 35", got)
	}

	m = m.ScrollToNode(keys[20])
	if got := m.YOffset(); got != 18 {
		t.Fatalf("yoffset=%d, want 18", got)
	}

	m = m.ScrollToNode("missing")
	if got := m.YOffset(); got != 18 {
		t.Fatalf("yoffset after unknown key=%d, want 18", got)
	}
}

func TestModel_QueueScrollToNodeAppliesOnNextUpdate(t *testing.T) {
	e := newDoc(t)
	texts := make([]string, 40)
	for i := range texts {
		texts[i] = "line"
	}
	keys := seed(t, e, texts...)
	m := New(Config{Editor: e}).SetSize(20, 5).Blur()

	m.QueueScrollToNode(keys[10])
	m, cmd := m.Update(changeMsg{})
	if got := m.YOffset(); got != 8 {
		t.Fatalf("yoffset=%d, want 8", got)
	}
	if cmd == nil {
		t.Fatalf("change watcher not re-armed")
	}
}

func TestModel_CloseUnmountsComponents(t *testing.T) {
	e := newDoc(t)
	seed(t, e, "x")
	before := e.ListenerCount()
	document.DispatchCommand(e, products.InsertCommand, products.Products{{ID: "1", Name: "Lamp"}})

	m := New(Config{Editor: e}).SetSize(60, 10)
	if got := e.ListenerCount(); got <= before {
		t.Fatalf("listeners=%d, want more than %d after mount", got, before)
	}
	m.Close()
	if got := e.ListenerCount(); got != before {
		t.Fatalf("listeners after Close=%d, want %d", got, before)
	}
}
