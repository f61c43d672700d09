package document

import (
	"reflect"
	"testing"
)

func TestExportHTML_FormatsAndTheme(t *testing.T) {
	e := newTestEditor(t)
	_, tk := seedParagraph(t, e, "hi", 0)
	mustUpdate(t, e, func(tx *Tx) error {
		tn, _ := tx.Node(tk)
		Writable(tx, tn.(*TextNode)).SetFormat(FormatBold | FormatItalic)
		return nil
	})

	got, err := ExportHTML(e.State(), Theme{"paragraph": "editor-paragraph"})
	if err != nil {
		t.Fatalf("ExportHTML: %v", err)
	}
	if want := `<p class="editor-paragraph"><strong><em>hi</em></strong></p>`; got != want {
		t.Fatalf("html=%q, want %q", got, want)
	}
}

func TestGenerateNodesFromDOM_ConvertsAndUnwraps(t *testing.T) {
	e := newTestEditor(t)
	mustUpdate(t, e, func(tx *Tx) error {
		nodes, err := GenerateNodesFromDOM(tx, "<div><p>Hello <b>world</b></p></div>\n<script>alert(1)</script>")
		if err != nil {
			return err
		}
		return tx.AppendBlocks(nodes)
	})
	s := e.State()
	if got, want := childTypes(s, RootKey), []string{"paragraph"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("root children=%v, want %v", got, want)
	}
	p := s.Children(RootKey)[0]
	texts := s.Children(p.Key())
	if len(texts) != 2 {
		t.Fatalf("texts=%v, want 2", textsOf(s, p.Key()))
	}
	if got := texts[0].(*TextNode); got.Text() != "Hello " || got.Format() != 0 {
		t.Fatalf("first=%q/%d", got.Text(), got.Format())
	}
	if got := texts[1].(*TextNode); got.Text() != "world" || !got.HasFormat("bold") {
		t.Fatalf("second=%q/%d", got.Text(), got.Format())
	}
}

func TestGenerateNodesFromDOM_PriorityAndFailingElement(t *testing.T) {
	e := newTestEditor(t)
	markup := `<p>a</p><span data-deco="bad"></span><p>b <span data-deco="ok">x</span></p><span style="color: red">plain</span>`
	mustUpdate(t, e, func(tx *Tx) error {
		nodes, err := GenerateNodesFromDOM(tx, markup)
		if err != nil {
			return err
		}
		return tx.AppendBlocks(nodes)
	})
	s := e.State()
	if got, want := childTypes(s, RootKey), []string{"paragraph", "paragraph", "paragraph"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("root children=%v, want %v", got, want)
	}
	second := s.Children(RootKey)[1]
	if got, want := textsOf(s, second.Key()), []string{"b ", "<testdeco>"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("second=%v, want %v", got, want)
	}
	third := s.Children(RootKey)[2]
	styled := s.Children(third.Key())[0].(*TextNode)
	if got, want := styled.Style(), "color: red"; got != want {
		t.Fatalf("style=%q, want %q", got, want)
	}
}

func TestImportHTML_PastesInlineAtCaret(t *testing.T) {
	e := newTestEditor(t)
	pk, _ := seedParagraph(t, e, "ad", 1)
	mustUpdate(t, e, func(tx *Tx) error { return tx.ImportHTML("<i>bc</i>") })
	if got, want := e.State().TextContent(pk), "abcd"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
}
