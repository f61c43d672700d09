package document

import (
	"errors"
	"testing"
)

func TestEditor_Update_CommitsTree(t *testing.T) {
	e := newTestEditor(t)
	before := e.State()

	seedParagraph(t, e, "hello", 0)

	if got, want := e.State().TextContent(RootKey), "hello"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
	if got := before.TextContent(RootKey); got != "" {
		t.Fatalf("previous snapshot changed: %q", got)
	}
	if got, want := before.Len(), 1; got != want {
		t.Fatalf("previous len=%d, want %d", got, want)
	}
}

func TestEditor_Update_ErrorCommitsNothing(t *testing.T) {
	var reported error
	e, err := New(Config{OnError: func(err error) { reported = err }})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	before := e.State()
	boom := errors.New("boom")

	err = e.Update(func(tx *Tx) error {
		_ = tx.Append(tx.Root(), Create(tx, NewParagraph()))
		return boom
	})
	if err != boom {
		t.Fatalf("err=%v, want %v", err, boom)
	}
	if reported != boom {
		t.Fatalf("reported=%v, want %v", reported, boom)
	}
	if e.State() != before {
		t.Fatalf("expected state unchanged")
	}
}

func TestEditor_Update_PanicIsReported(t *testing.T) {
	e := newTestEditor(t)
	err := e.Update(func(tx *Tx) error { panic("nope") })
	if err == nil {
		t.Fatalf("expected error from panicking update")
	}
	if got := e.State().Root().ChildCount(); got != 0 {
		t.Fatalf("children=%d, want 0", got)
	}
}

func TestEditor_Update_FailAborts(t *testing.T) {
	e := newTestEditor(t)
	want := errors.New("fail")
	err := e.Update(func(tx *Tx) error {
		_ = tx.Append(tx.Root(), Create(tx, NewParagraph()))
		tx.Fail(want)
		return nil
	})
	if err != want {
		t.Fatalf("err=%v, want %v", err, want)
	}
	if got := e.State().Root().ChildCount(); got != 0 {
		t.Fatalf("children=%d, want 0", got)
	}
}

func TestEditor_UpdateListener_OncePerCommit(t *testing.T) {
	e := newTestEditor(t)
	var events []UpdateEvent
	unregister := e.RegisterUpdateListener(func(ev UpdateEvent) { events = append(events, ev) })

	seedParagraph(t, e, "a", 0)
	if got, want := len(events), 1; got != want {
		t.Fatalf("events=%d, want %d", got, want)
	}
	if !events[0].ContentChanged() {
		t.Fatalf("expected content change")
	}
	if events[0].PrevState.Len() != 1 {
		t.Fatalf("prev state len=%d, want 1", events[0].PrevState.Len())
	}

	// No-op updates publish nothing.
	mustUpdate(t, e, func(tx *Tx) error { return nil })
	if got, want := len(events), 1; got != want {
		t.Fatalf("events=%d, want %d", got, want)
	}

	unregister()
	seedParagraph(t, e, "b", 0)
	if got, want := len(events), 1; got != want {
		t.Fatalf("events after unregister=%d, want %d", got, want)
	}
}

func TestEditor_EditableListener(t *testing.T) {
	e := newTestEditor(t)
	var got []bool
	unregister := e.RegisterEditableListener(func(v bool) { got = append(got, v) })
	e.SetEditable(false)
	e.SetEditable(false)
	e.SetEditable(true)
	unregister()
	e.SetEditable(false)

	if len(got) != 2 || got[0] || !got[1] {
		t.Fatalf("editable events=%v, want [false true]", got)
	}
	if e.IsEditable() {
		t.Fatalf("expected editable=false")
	}
}

func TestTx_RemoveCollectsDescendants(t *testing.T) {
	e := newTestEditor(t)
	pk, tk := seedParagraph(t, e, "x", 0)

	mustUpdate(t, e, func(tx *Tx) error {
		p, _ := tx.Node(pk)
		return tx.Remove(p)
	})
	s := e.State()
	if _, ok := s.Node(pk); ok {
		t.Fatalf("paragraph still present")
	}
	if _, ok := s.Node(tk); ok {
		t.Fatalf("text still present")
	}
	if sel := s.Selection(); sel != nil {
		t.Fatalf("selection=%v, want nil on empty document", sel)
	}
}

func TestTx_DetachedNodesAreDropped(t *testing.T) {
	e := newTestEditor(t)
	mustUpdate(t, e, func(tx *Tx) error {
		Create(tx, NewText("orphan"))
		return nil
	})
	if got, want := e.State().Len(), 1; got != want {
		t.Fatalf("len=%d, want %d", got, want)
	}
}

func TestTx_AppendRejectsCycles(t *testing.T) {
	e := newTestEditor(t)
	pk, _ := seedParagraph(t, e, "x", 0)
	err := e.Update(func(tx *Tx) error {
		p, _ := tx.Node(pk)
		return tx.Append(p, tx.Root())
	})
	if !errors.Is(err, ErrInvalidTree) {
		t.Fatalf("err=%v, want ErrInvalidTree", err)
	}
}

func TestTx_WrapNodeInElement(t *testing.T) {
	e := newTestEditor(t)
	var dk NodeKey
	mustUpdate(t, e, func(tx *Tx) error {
		d := Create(tx, &testDecorator{label: "x"})
		if err := tx.Append(tx.Root(), d); err != nil {
			return err
		}
		dk = d.Key()
		_, err := tx.WrapNodeInElement(d, func() ElementNode { return NewParagraph() })
		return err
	})
	s := e.State()
	if got, want := childTypes(s, RootKey), []string{"paragraph"}; len(got) != 1 || got[0] != want[0] {
		t.Fatalf("root children=%v, want %v", got, want)
	}
	d, _ := s.Node(dk)
	if p := s.ParentNode(d); p == nil || !IsParagraph(p) {
		t.Fatalf("decorator parent=%v, want paragraph", p)
	}
}

func TestRegistry_Errors(t *testing.T) {
	if _, err := NewRegistry(Class{Type: "x"}); !errors.Is(err, ErrInvalidClass) {
		t.Fatalf("err=%v, want ErrInvalidClass", err)
	}
	if _, err := NewRegistry(testDecoratorClass, testDecoratorClass); !errors.Is(err, ErrDuplicateType) {
		t.Fatalf("err=%v, want ErrDuplicateType", err)
	}
	r, err := NewRegistry(ParagraphClass, testDecoratorClass)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if !r.Has("root", "paragraph", "text", "testdeco") {
		t.Fatalf("expected built-in and custom types, got %v", r.Types())
	}
	if r.Has("products") {
		t.Fatalf("unexpected products type")
	}
}
