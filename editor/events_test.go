package editor

import (
	"testing"
)

func TestOnChange_FiresOnNewStatesAndSkipsNoOps(t *testing.T) {
	e := newDoc(t)
	seed(t, e, "ab")
	var events []ChangeEvent
	m := New(Config{
		Editor: e,
		OnChange: func(ev ChangeEvent) {
			events = append(events, ev)
		},
	})
	if len(events) != 0 {
		t.Fatalf("events after New: got %d, want 0", len(events))
	}

	m = press(m, "left")
	if len(events) != 1 {
		t.Fatalf("events after move: got %d, want %d", len(events), 1)
	}
	if got := events[0].Text; got != "ab" {
		t.Fatalf("event text after move: got %q, want %q", got, "ab")
	}
	if events[0].PrevState == nil || events[0].State != e.State() {
		t.Fatalf("event states not set")
	}

	m = press(m, "right", "right") // second move is a no-op at the end
	if len(events) != 2 {
		t.Fatalf("events after no-op: got %d, want %d", len(events), 2)
	}

	press(m, "X")
	if len(events) != 3 {
		t.Fatalf("events after insert: got %d, want %d", len(events), 3)
	}
	if got := events[2].Text; got != "abX" {
		t.Fatalf("event text after insert: got %q, want %q", got, "abX")
	}
}
