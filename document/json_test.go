package document

import (
	"errors"
	"strings"
	"testing"
)

func TestMarshalState_ParseStateRoundTrip(t *testing.T) {
	e := newTestEditor(t)
	pk, tk := seedParagraph(t, e, "hello", 0)
	mustUpdate(t, e, func(tx *Tx) error {
		tn, _ := tx.Node(tk)
		Writable(tx, tn.(*TextNode)).SetFormat(FormatBold).SetStyle("color: #f00;")
		p, _ := tx.Node(pk)
		Writable(tx, p.(*ParagraphNode)).SetFormat("center")
		tx.SelectEnd(p)
		return tx.InsertNodes(Create(tx, &testDecorator{label: "deco"}))
	})

	data, err := MarshalState(e.State())
	if err != nil {
		t.Fatalf("MarshalState: %v", err)
	}
	if !strings.Contains(string(data), `"children":[`) {
		t.Fatalf("expected nested children, got %s", data)
	}

	parsed, err := e.ParseState(data)
	if err != nil {
		t.Fatalf("ParseState: %v", err)
	}
	blocks := parsed.Children(RootKey)
	if len(blocks) != 1 {
		t.Fatalf("blocks=%d, want 1", len(blocks))
	}
	p := blocks[0].(*ParagraphNode)
	if got, want := p.Format(), "center"; got != want {
		t.Fatalf("align=%q, want %q", got, want)
	}
	children := parsed.Children(p.Key())
	if len(children) != 2 {
		t.Fatalf("children=%d, want 2", len(children))
	}
	text := children[0].(*TextNode)
	if text.Text() != "hello" || !text.HasFormat("bold") || text.Style() != "color: #f00;" {
		t.Fatalf("text=%q format=%d style=%q", text.Text(), text.Format(), text.Style())
	}
	if got, want := children[1].(*testDecorator).label, "deco"; got != want {
		t.Fatalf("label=%q, want %q", got, want)
	}

	// Loading the parsed state replaces the document.
	mustUpdate(t, e, func(tx *Tx) error {
		tx.Clear()
		tx.SetState(parsed)
		return nil
	})
	if got, want := e.State().TextContent(RootKey), "hello"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
}

func TestParseState_UnknownType(t *testing.T) {
	e := newTestEditor(t)
	_, err := e.ParseState([]byte(`{"root":{"type":"root","version":1,"children":[{"type":"mystery","version":1}]}}`))
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("err=%v, want ErrUnknownType", err)
	}
	if !strings.Contains(err.Error(), "mystery") {
		t.Fatalf("err=%v, want it to name the type", err)
	}
}

func TestParseState_MalformedNodeNamesType(t *testing.T) {
	e := newTestEditor(t)
	_, err := e.ParseState([]byte(`{"root":{"type":"root","version":1,"children":[{"type":"testdeco","version":1,"label":7}]}}`))
	if err == nil || !strings.Contains(err.Error(), "testdeco") {
		t.Fatalf("err=%v, want an error naming testdeco", err)
	}
}
