package document

import "sync"

// DefaultHistoryLimit bounds the undo stack when no limit is given.
const DefaultHistoryLimit = 100

// HistoryState holds undo and redo snapshots. It can be shared by several
// editors that should undo together.
type HistoryState struct {
	mu    sync.Mutex
	undo  []*State
	redo  []*State
	limit int
}

// NewHistoryState returns an empty history keeping at most limit undo
// steps. A limit <= 0 uses DefaultHistoryLimit.
func NewHistoryState(limit int) *HistoryState {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &HistoryState{limit: limit}
}

// CanUndo reports whether an undo step is available.
func (h *HistoryState) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 0
}

// CanRedo reports whether a redo step is available.
func (h *HistoryState) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

// Clear drops all history.
func (h *HistoryState) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo, h.redo = nil, nil
}

func (h *HistoryState) push(s *State) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo = append(h.undo, s)
	if over := len(h.undo) - h.limit; over > 0 {
		h.undo = append([]*State(nil), h.undo[over:]...)
	}
	h.redo = nil
}

// step pops from one stack and pushes cur onto the other.
func (h *HistoryState) step(redo bool, cur *State) (*State, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	from, to := &h.undo, &h.redo
	if redo {
		from, to = &h.redo, &h.undo
	}
	if len(*from) == 0 {
		return nil, false
	}
	s := (*from)[len(*from)-1]
	*from = (*from)[:len(*from)-1]
	*to = append(*to, cur)
	return s, true
}

// HistoryPlugin records content changes into h and handles the undo, redo
// and clear-history commands. Updates tagged TagHistoric or TagHistoryMerge
// are not recorded.
func HistoryPlugin(h *HistoryState) Plugin {
	return PluginFunc(func(e *Editor) (func(), error) {
		notify := func(tx *Tx) {
			DispatchCommandTx(tx, CanUndoCommand, h.CanUndo())
			DispatchCommandTx(tx, CanRedoCommand, h.CanRedo())
		}
		travel := func(redo bool) Handler[struct{}] {
			return func(tx *Tx, _ struct{}) bool {
				s, ok := h.step(redo, tx.Previous())
				if !ok {
					return false
				}
				tx.restore(s)
				tx.AddTag(TagHistoric)
				notify(tx)
				return true
			}
		}
		return MergeRegister(
			e.RegisterUpdateListener(func(ev UpdateEvent) {
				if !ev.ContentChanged() || ev.HasTag(TagHistoric) || ev.HasTag(TagHistoryMerge) {
					return
				}
				h.push(ev.PrevState)
				DispatchCommand(e, CanUndoCommand, true)
				DispatchCommand(e, CanRedoCommand, false)
			}),
			RegisterCommand(e, UndoCommand, travel(false), PriorityEditor),
			RegisterCommand(e, RedoCommand, travel(true), PriorityEditor),
			RegisterCommand(e, ClearHistoryCommand, func(tx *Tx, _ struct{}) bool {
				h.Clear()
				notify(tx)
				return true
			}, PriorityEditor),
		), nil
	})
}
