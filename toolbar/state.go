package toolbar

import (
	"sync"

	"github.com/bitbriks/bitbrik/document"
	"github.com/bitbriks/bitbrik/nodes"
)

const (
	DefaultFontColor = "#000"
	DefaultBgColor   = "#fff"
)

// State is what the toolbar reflects of the editor.
type State struct {
	FontColor string
	BgColor   string
	IsLink    bool
	CanUndo   bool
	CanRedo   bool
	Editable  bool
}

// tracker holds the State. Editor callbacks may run on any goroutine that
// updates the editor, so access is locked.
type tracker struct {
	mu    sync.Mutex
	state State
}

func newTracker(e *document.Editor) *tracker {
	t := &tracker{state: State{
		FontColor: DefaultFontColor,
		BgColor:   DefaultBgColor,
		Editable:  e.IsEditable(),
	}}
	t.selectionChanged(e.State())
	return t
}

func (t *tracker) get() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *tracker) set(fn func(*State)) {
	t.mu.Lock()
	fn(&t.state)
	t.mu.Unlock()
}

// selectionChanged reads the formatting of a range selection. Other
// selections leave the colors and link state as they were.
func (t *tracker) selectionChanged(s *document.State) {
	sel, ok := document.AsRange(s.Selection())
	if !ok {
		return
	}
	font := s.StyleValue(sel, "color", DefaultFontColor)
	bg := s.StyleValue(sel, "background-color", DefaultBgColor)
	link := nodes.IsLinkSelected(s)
	t.set(func(st *State) {
		st.FontColor, st.BgColor, st.IsLink = font, bg, link
	})
}

// register subscribes t to e and installs the link shortcut. The returned
// func removes everything.
func (t *tracker) register(e *document.Editor) func() {
	return document.MergeRegister(
		document.RegisterCommand(e, document.SelectionChangeCommand, func(tx *document.Tx, _ struct{}) bool {
			t.selectionChanged(tx.State)
			return false
		}, document.PriorityCritical),
		e.RegisterUpdateListener(func(ev document.UpdateEvent) {
			t.selectionChanged(ev.State)
		}),
		e.RegisterEditableListener(func(editable bool) {
			t.set(func(st *State) { st.Editable = editable })
		}),
		document.RegisterCommand(e, document.CanUndoCommand, func(_ *document.Tx, v bool) bool {
			t.set(func(st *State) { st.CanUndo = v })
			return false
		}, document.PriorityCritical),
		document.RegisterCommand(e, document.CanRedoCommand, func(_ *document.Tx, v bool) bool {
			t.set(func(st *State) { st.CanRedo = v })
			return false
		}, document.PriorityCritical),
		document.RegisterCommand(e, document.KeyModifierCommand, func(tx *document.Tx, ev document.KeyEvent) bool {
			if ev.Code != "KeyK" || !(ev.Ctrl || ev.Meta) {
				return false
			}
			return document.DispatchCommandTx(tx, nodes.ToggleLinkCommand, nodes.SanitizeURL("https://"))
		}, document.PriorityNormal),
	)
}
