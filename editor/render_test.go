package editor

import (
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/bitbriks/bitbrik/document"
	"github.com/bitbriks/bitbrik/nodes"
	"github.com/bitbriks/bitbrik/products"
)

func TestRender_Blocks(t *testing.T) {
	e := newDoc(t)
	importHTML(t, e, `<h1>Title</h1><blockquote>said</blockquote>`+
		`<ul><li>one</li><li>two</li></ul><ol start="3"><li>x</li><li>y</li></ol><p>plain</p>`)
	m := New(Config{Editor: e}).Blur().SetSize(30, 7)

	got := viewLines(m)
	want := []string{
		"# Title",
		"│ said",
		"• one",
		"• two",
		"3. x",
		"4. y",
		"plain",
	}
	if fmt.Sprintf("%q", got) != fmt.Sprintf("%q", want) {
		t.Fatalf("unexpected view:\n got: %q\nwant: %q", got, want)
	}
}

func TestRender_WordWrapAndAlignment(t *testing.T) {
	e := newDoc(t)
	importHTML(t, e, `<p>alpha beta gamma</p><p style="text-align: right">end</p>`)
	m := New(Config{Editor: e}).Blur().SetSize(12, 3)

	got := viewLines(m)
	want := []string{"alpha beta", "gamma", "         end"}
	if fmt.Sprintf("%q", got) != fmt.Sprintf("%q", want) {
		t.Fatalf("unexpected view:\n got: %q\nwant: %q", got, want)
	}
}

func TestRender_CursorStyleOnClusterUnderCaret(t *testing.T) {
	e := newDoc(t)
	seed(t, e, "ab")
	m := New(Config{
		Editor: e,
		Style:  Style{Cursor: lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)},
	}).SetSize(10, 1)

	m, _ = m.Update(keyMsg("left"))
	if got := viewLines(m)[0]; got != "a b" {
		t.Fatalf("caret inside text: got %q, want %q", got, "a b")
	}

	m, _ = m.Update(keyMsg("right"))
	if got := viewLines(m)[0]; got != "ab" {
		t.Fatalf("caret at end: got %q, want %q", got, "ab")
	}
	if got := m.v.layout.caretRow; got != 0 {
		t.Fatalf("caret row=%d, want 0", got)
	}

	m = m.Blur()
	if got := m.v.layout.caretRow; got != -1 {
		t.Fatalf("caret row when blurred=%d, want -1", got)
	}
}

func TestRender_Table(t *testing.T) {
	e := newDoc(t)
	err := e.Update(func(tx *document.Tx) error {
		table := document.Create(tx, nodes.NewTable())
		if err := tx.Append(tx.Root(), table); err != nil {
			return err
		}
		for _, line := range [][]string{{"a", "bb"}, {"c", "d"}} {
			row := document.Create(tx, nodes.NewTableRow())
			if err := tx.Append(table, row); err != nil {
				return err
			}
			for _, text := range line {
				cell := document.Create(tx, nodes.NewTableCell(false))
				p := document.Create(tx, document.NewParagraph())
				if err := tx.Append(row, cell); err != nil {
					return err
				}
				if err := tx.Append(cell, p); err != nil {
					return err
				}
				if err := tx.Append(p, document.Create(tx, document.NewText(text))); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	m := New(Config{Editor: e}).Blur().SetSize(40, 5)

	got := viewLines(m)
	want := []string{
		"┌─────┬─────┐",
		"│ a   │ bb  │",
		"├─────┼─────┤",
		"│ c   │ d   │",
		"└─────┴─────┘",
	}
	if fmt.Sprintf("%q", got) != fmt.Sprintf("%q", want) {
		t.Fatalf("unexpected view:\n got: %q\nwant: %q", got, want)
	}
}

func TestRender_PlaceholderOnEmptyDocument(t *testing.T) {
	e := newDoc(t)
	document.DispatchCommand(e, document.ClearEditorCommand, struct{}{})
	m := New(Config{Editor: e, Placeholder: "Enter some rich text..."}).Blur().SetSize(30, 1)

	if got := viewLines(m)[0]; got != "Enter some rich text..." {
		t.Fatalf("placeholder: got %q", got)
	}

	seed(t, e, "x")
	if got := viewLines(m)[0]; strings.Contains(got, "Enter some") {
		t.Fatalf("placeholder shown on non-empty document: %q", got)
	}
}

func TestRender_Decorators(t *testing.T) {
	e := newDoc(t)
	importHTML(t, e, `<p>before</p><hr><p>after</p>`)
	seed(t, e, "")
	document.DispatchCommand(e, products.InsertCommand, products.Products{{ID: "1", Name: "Desk Lamp"}})
	m := New(Config{Editor: e}).Blur().SetSize(40, 12)

	view := strings.Join(viewLines(m), "\n")
	if !strings.Contains(view, strings.Repeat("─", 40)) {
		t.Fatalf("horizontal rule missing:\n%s", view)
	}
	if !strings.Contains(view, "Desk Lamp") {
		t.Fatalf("products card missing:\n%s", view)
	}
}
