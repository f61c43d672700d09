package document

import (
	"reflect"
	"testing"
)

func TestDispatchCommand_PriorityThenRegistrationOrder(t *testing.T) {
	e := newTestEditor(t)
	cmd := NewCommand[int]("TEST_COMMAND")
	var order []string
	record := func(name string, handled bool) Handler[int] {
		return func(tx *Tx, v int) bool {
			order = append(order, name)
			return handled
		}
	}
	RegisterCommand(e, cmd, record("editor", true), PriorityEditor)
	RegisterCommand(e, cmd, record("low-1", false), PriorityLow)
	RegisterCommand(e, cmd, record("critical", false), PriorityCritical)
	RegisterCommand(e, cmd, record("low-2", true), PriorityLow)
	RegisterCommand(e, cmd, record("low-3", true), PriorityLow)

	if !DispatchCommand(e, cmd, 1) {
		t.Fatalf("expected handled")
	}
	if got, want := order, []string{"critical", "low-1", "low-2"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("order=%v, want %v", got, want)
	}
}

func TestDispatchCommand_Unhandled(t *testing.T) {
	e := newTestEditor(t)
	cmd := NewCommand[string]("NOBODY")
	if DispatchCommand(e, cmd, "x") {
		t.Fatalf("expected unhandled without handlers")
	}
	RegisterCommand(e, cmd, func(*Tx, string) bool { return false }, PriorityNormal)
	if DispatchCommand(e, cmd, "x") {
		t.Fatalf("expected unhandled when every handler declines")
	}
}

func TestRegisterCommand_UnregisterIsSymmetric(t *testing.T) {
	e := newTestEditor(t)
	base := e.ListenerCount()
	cmd := NewCommand[struct{}]("X")
	calls := 0
	unregister := MergeRegister(
		RegisterCommand(e, cmd, func(*Tx, struct{}) bool { calls++; return true }, PriorityLow),
		e.RegisterUpdateListener(func(UpdateEvent) {}),
	)
	if got, want := e.ListenerCount(), base+2; got != want {
		t.Fatalf("listeners=%d, want %d", got, want)
	}
	unregister()
	if got := e.ListenerCount(); got != base {
		t.Fatalf("listeners=%d, want %d", got, base)
	}
	DispatchCommand(e, cmd, struct{}{})
	if calls != 0 {
		t.Fatalf("calls=%d, want 0", calls)
	}
}

func TestDispatchCommand_HandlerWritesCommit(t *testing.T) {
	e := newTestEditor(t)
	cmd := NewCommand[string]("ADD_TEXT")
	RegisterCommand(e, cmd, func(tx *Tx, s string) bool {
		return tx.InsertText(s) == nil
	}, PriorityEditor)

	if !DispatchCommand(e, cmd, "hi") {
		t.Fatalf("expected handled")
	}
	if got, want := e.State().TextContent(RootKey), "hi"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
}

func TestUpdate_SelectionChangeDispatched(t *testing.T) {
	e := newTestEditor(t)
	calls := 0
	RegisterCommand(e, SelectionChangeCommand, func(*Tx, struct{}) bool {
		calls++
		return false
	}, PriorityCritical)

	_, tk := seedParagraph(t, e, "abc", 0)
	if calls != 1 {
		t.Fatalf("calls=%d, want 1", calls)
	}
	mustUpdate(t, e, func(tx *Tx) error {
		tx.SetSelection(NewCaret(TextPoint(tk, 2)))
		return nil
	})
	if calls != 2 {
		t.Fatalf("calls=%d, want 2", calls)
	}
	mustUpdate(t, e, func(tx *Tx) error {
		tx.SetSelection(NewCaret(TextPoint(tk, 2)))
		return nil
	})
	if calls != 2 {
		t.Fatalf("calls=%d, want 2 for an unchanged selection", calls)
	}
}
