package products

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"golang.org/x/net/html"

	"github.com/bitbriks/bitbrik/document"
	"github.com/bitbriks/bitbrik/nodes"
)

var shoe = Products{{ID: "1", Name: "Shoe", Image: "/a.png", URL: "/p/1"}}

var pair = Products{
	{ID: "1", Name: "Shoe", Image: "/a.png", URL: "/p/1"},
	{ID: "2", Name: "Hat", Image: "/b.png", URL: "/p/2"},
}

func newEditor(t *testing.T) *document.Editor {
	t.Helper()
	e, err := document.New(document.Config{Nodes: []document.Class{Class}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := document.RegisterPlugins(e, nodes.RichTextPlugin(), Plugin()); err != nil {
		t.Fatalf("RegisterPlugins: %v", err)
	}
	return e
}

func embeds(s *document.State) []*Node {
	var out []*Node
	for _, n := range s.Nodes(Type) {
		out = append(out, n.(*Node))
	}
	return out
}

func TestJSON_RoundTrip(t *testing.T) {
	for _, ps := range []Products{{}, shoe, pair} {
		data, err := json.Marshal(NewNode(ps).ExportJSON())
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		got, err := ImportJSON(data)
		if err != nil {
			t.Fatalf("import %s: %v", data, err)
		}
		if !slices.Equal(got.(*Node).Products(), ps) {
			t.Fatalf("products=%v, want %v", got.(*Node).Products(), ps)
		}
	}
}

func TestJSON_Shape(t *testing.T) {
	data, err := json.Marshal(NewNode(shoe).ExportJSON())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"type":"products","version":1,"products":[{"id":"1","name":"Shoe","image":"/a.png","url":"/p/1"}]}`
	if string(data) != want {
		t.Fatalf("json=%s, want %s", data, want)
	}
}

func TestImportJSON_RejectsMalformed(t *testing.T) {
	cases := []string{
		`{"type":"products","version":2,"products":[]}`,
		`{"type":"image","version":1,"products":[]}`,
		`{"type":"products","version":1,"products":[{"name":"no id"}]}`,
		`{"type":"products","version":1,"products":[{"id":"1"}]}`,
		`{"type":"products","version":1,"products":{}}`,
	}
	for _, c := range cases {
		if _, err := ImportJSON([]byte(c)); !errors.Is(err, ErrInvalidPayload) {
			t.Fatalf("ImportJSON(%s) err=%v, want ErrInvalidPayload", c, err)
		}
	}
}

func TestDOM_RoundTrip(t *testing.T) {
	dom, err := NewNode(pair).ExportDOM()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, dom); err != nil {
		t.Fatalf("render: %v", err)
	}
	e := newEditor(t)
	err = e.Update(func(tx *document.Tx) error {
		got, err := document.GenerateNodesFromDOM(tx, buf.String())
		if err != nil {
			return err
		}
		if len(got) != 1 || !IsNode(got[0]) {
			t.Fatalf("nodes=%v, want one products node", got)
		}
		if ps := got[0].(*Node).Products(); !slices.Equal(ps, pair) {
			t.Fatalf("products=%v, want %v", ps, pair)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
}

func TestImportDOM_MatcherNeedsAttribute(t *testing.T) {
	if conv := importDOM(document.NewElement("span")); conv != nil {
		t.Fatalf("plain span claimed")
	}
	conv := importDOM(document.NewElement("span", html.Attribute{Key: domAttr, Val: "[]"}))
	if conv == nil || conv.Priority != 2 {
		t.Fatalf("conversion=%v, want priority 2", conv)
	}
}

func TestImportDOM_BadJSONSkipsOnlyThatElement(t *testing.T) {
	e := newEditor(t)
	markup := `<p>before</p><span data-lexical-products="{bad"></span><p>after</p>`
	if err := e.Update(func(tx *document.Tx) error { return tx.ImportHTML(markup) }); err != nil {
		t.Fatalf("import: %v", err)
	}
	s := e.State()
	if got := len(embeds(s)); got != 0 {
		t.Fatalf("embeds=%d, want 0", got)
	}
	if got, want := s.TextContent(document.RootKey), "before\n\nafter"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
}

func TestClone_KeepsKeyAndCopiesPayload(t *testing.T) {
	e := newEditor(t)
	var orig *Node
	if err := e.Update(func(tx *document.Tx) error {
		orig = document.Create(tx, NewNode(shoe))
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	c := orig.Clone().(*Node)
	if c.Key() != orig.Key() {
		t.Fatalf("key=%s, want %s", c.Key(), orig.Key())
	}
	c.products[0].Name = "Boot"
	if orig.products[0].Name != "Shoe" {
		t.Fatalf("clone shares payload with original")
	}
	ps := orig.Products()
	ps[0].Name = "Sock"
	if orig.products[0].Name != "Shoe" {
		t.Fatalf("Products() exposes the payload")
	}
}

func TestInsertCommand_EmptyDocumentWrapsInParagraph(t *testing.T) {
	e := newEditor(t)
	if !document.DispatchCommand(e, InsertCommand, shoe) {
		t.Fatalf("insert not handled")
	}
	s := e.State()
	got := embeds(s)
	if len(got) != 1 {
		t.Fatalf("embeds=%d, want 1", len(got))
	}
	parent := s.ParentNode(got[0])
	if !document.IsParagraph(parent) || parent.Parent() != document.RootKey {
		t.Fatalf("parent=%v, want a root-level paragraph", parent)
	}
	if n := len(s.Children(document.RootKey)); n != 1 {
		t.Fatalf("root children=%d, want 1", n)
	}
}

func TestInsertCommand_InvalidPayloadFails(t *testing.T) {
	var reported error
	e, err := document.New(document.Config{Nodes: []document.Class{Class}, OnError: func(err error) { reported = err }})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := document.RegisterPlugins(e, Plugin()); err != nil {
		t.Fatalf("RegisterPlugins: %v", err)
	}
	document.DispatchCommand(e, InsertCommand, Products{{ID: "1"}})
	if !errors.Is(reported, ErrInvalidPayload) {
		t.Fatalf("reported=%v, want ErrInvalidPayload", reported)
	}
	if len(embeds(e.State())) != 0 {
		t.Fatalf("invalid insert committed")
	}
}

func TestPlugin_RequiresRegisteredNode(t *testing.T) {
	e, err := document.New(document.Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := Plugin().Register(e); !errors.Is(err, ErrNodeNotRegistered) {
		t.Fatalf("err=%v, want ErrNodeNotRegistered", err)
	}
}

func mount(t *testing.T, e *document.Editor) []*Component {
	t.Helper()
	var comps []*Component
	for _, n := range embeds(e.State()) {
		c := n.Decorate(e).(*Component)
		t.Cleanup(c.Mount(e))
		comps = append(comps, c)
	}
	return comps
}

func TestComponent_ClickToggleAndDelete(t *testing.T) {
	e := newEditor(t)
	document.DispatchCommand(e, InsertCommand, shoe)
	document.DispatchCommand(e, InsertCommand, pair)
	comps := mount(t, e)
	if len(comps) != 2 {
		t.Fatalf("components=%d, want 2", len(comps))
	}
	first, second := comps[0], comps[1]

	document.DispatchCommand(e, document.ClickCommand, document.ClickEvent{Target: first.Key()})
	if !first.Focused() || second.Focused() {
		t.Fatalf("focused=%v,%v, want true,false", first.Focused(), second.Focused())
	}

	document.DispatchCommand(e, document.ClickCommand, document.ClickEvent{Target: second.Key(), Shift: true})
	if !first.Focused() || !second.Focused() {
		t.Fatalf("shift-click should extend the selection")
	}

	document.DispatchCommand(e, document.ClickCommand, document.ClickEvent{Target: second.Key()})
	if first.Focused() || second.Focused() {
		t.Fatalf("plain click on a selected node should clear and deselect it")
	}

	document.DispatchCommand(e, document.ClickCommand, document.ClickEvent{Target: first.Key()})
	document.DispatchCommand(e, document.KeyDeleteCommand, document.KeyEvent{Key: "Delete"})
	got := embeds(e.State())
	if len(got) != 1 || got[0].Key() != second.Key() {
		t.Fatalf("embeds=%v, want only the second", got)
	}
	if _, ok := document.AsRange(e.State().Selection()); !ok {
		t.Fatalf("selection=%v, want a caret", e.State().Selection())
	}
}

func TestComponent_DeleteLeavesSiblingsUntouched(t *testing.T) {
	e := newEditor(t)
	var first, second document.NodeKey
	err := e.Update(func(tx *document.Tx) error {
		p1 := document.Create(tx, document.NewParagraph())
		t1 := document.Create(tx, document.NewText("before after"))
		p2 := document.Create(tx, document.NewParagraph())
		t2 := document.Create(tx, document.NewText("next paragraph"))
		for _, step := range []struct{ parent, child document.Node }{
			{tx.Root(), p1}, {p1, t1}, {tx.Root(), p2}, {p2, t2},
		} {
			if err := tx.Append(step.parent, step.child); err != nil {
				return err
			}
		}
		caret := document.TextPoint(t1.Key(), len("before "))
		tx.SetSelection(document.NewRangeSelection(caret, caret))
		if !document.DispatchCommandTx(tx, InsertCommand, shoe) {
			return errors.New("insert not handled")
		}
		first, second = p1.Key(), p2.Key()
		return nil
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	comps := mount(t, e)
	if len(comps) != 1 {
		t.Fatalf("components=%d, want 1", len(comps))
	}
	if got := e.State().Children(first); len(got) != 3 {
		t.Fatalf("first paragraph children=%d, want 3", len(got))
	}

	document.DispatchCommand(e, document.ClickCommand, document.ClickEvent{Target: comps[0].Key()})
	document.DispatchCommand(e, document.KeyBackspaceCommand, document.KeyEvent{Key: "Backspace"})

	s := e.State()
	if got := len(embeds(s)); got != 0 {
		t.Fatalf("embeds=%d, want 0", got)
	}
	if got := s.TextContent(first); got != "before after" {
		t.Fatalf("same paragraph text=%q, want %q", got, "before after")
	}
	if got := s.TextContent(second); got != "next paragraph" {
		t.Fatalf("adjacent paragraph text=%q, want %q", got, "next paragraph")
	}
	if got := len(s.Children(document.RootKey)); got != 2 {
		t.Fatalf("root children=%d, want 2", got)
	}
}

func TestComponent_DeleteWhenNotSelectedKeepsNode(t *testing.T) {
	e := newEditor(t)
	document.DispatchCommand(e, InsertCommand, shoe)
	mount(t, e)
	document.DispatchCommand(e, document.KeyBackspaceCommand, document.KeyEvent{Key: "Backspace"})
	if got := len(embeds(e.State())); got != 1 {
		t.Fatalf("embeds=%d, want 1", got)
	}
}

func TestComponent_MountIsSymmetric(t *testing.T) {
	e := newEditor(t)
	before := e.ListenerCount()
	c := NewComponent("1")
	unmount := c.Mount(e)
	if e.ListenerCount() != before+4 {
		t.Fatalf("listeners=%d, want %d", e.ListenerCount(), before+4)
	}
	unmount()
	if e.ListenerCount() != before {
		t.Fatalf("listeners=%d after unmount, want %d", e.ListenerCount(), before)
	}
}

func TestComponent_View(t *testing.T) {
	c := NewComponent("1")
	out := c.View(NewNode(pair), 80)
	for _, want := range []string{"Shoe", "Hat", "/p/2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
	if c.View(document.NewParagraph(), 80) != "" {
		t.Fatalf("foreign node should render nothing")
	}
}
