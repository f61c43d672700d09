package document

// Priority orders command handlers. Higher tiers run first; within a tier
// handlers run in registration order.
type Priority int

const (
	PriorityEditor Priority = iota
	PriorityLow
	PriorityNormal
	PriorityHigh
	PriorityCritical

	priorityCount = int(PriorityCritical) + 1
)

type commandID struct {
	name string
}

// Command is a typed command identity. Two commands are the same only when
// they are the same value returned by NewCommand.
type Command[T any] struct {
	id *commandID
}

// NewCommand returns a new command identity. name is used for diagnostics
// only.
func NewCommand[T any](name string) Command[T] {
	return Command[T]{id: &commandID{name: name}}
}

func (c Command[T]) String() string { return c.id.name }

// Handler handles a command inside a transaction. Returning true stops
// propagation to lower-priority handlers.
type Handler[T any] func(tx *Tx, payload T) bool

type handlerEntry struct {
	fn func(tx *Tx, payload any) bool
}

// RegisterCommand adds a handler for cmd at priority p and returns the
// function removing it.
func RegisterCommand[T any](e *Editor, cmd Command[T], h Handler[T], p Priority) func() {
	if p < PriorityEditor {
		p = PriorityEditor
	}
	if p > PriorityCritical {
		p = PriorityCritical
	}
	entry := &handlerEntry{fn: func(tx *Tx, payload any) bool {
		v, _ := payload.(T)
		return h(tx, v)
	}}
	e.lmu.Lock()
	tiers, ok := e.handlers[cmd.id]
	if !ok {
		tiers = new([priorityCount][]*handlerEntry)
		e.handlers[cmd.id] = tiers
	}
	tiers[p] = append(tiers[p], entry)
	e.lmu.Unlock()

	return func() {
		e.lmu.Lock()
		defer e.lmu.Unlock()
		tiers, ok := e.handlers[cmd.id]
		if !ok {
			return
		}
		hs := tiers[p]
		for i, x := range hs {
			if x == entry {
				tiers[p] = append(hs[:i:i], hs[i+1:]...)
				return
			}
		}
	}
}

func (e *Editor) handlersFor(id *commandID) []*handlerEntry {
	e.lmu.Lock()
	defer e.lmu.Unlock()
	tiers, ok := e.handlers[id]
	if !ok {
		return nil
	}
	var out []*handlerEntry
	for p := priorityCount - 1; p >= 0; p-- {
		out = append(out, tiers[p]...)
	}
	return out
}

// DispatchCommand runs cmd in its own transaction and reports whether a
// handler claimed it. Handlers that modify the document are committed
// together.
func DispatchCommand[T any](e *Editor, cmd Command[T], payload T) bool {
	if len(e.handlersFor(cmd.id)) == 0 {
		return false
	}
	var handled bool
	_ = e.Update(func(tx *Tx) error {
		handled = DispatchCommandTx(tx, cmd, payload)
		return nil
	})
	return handled
}

// DispatchCommandTx runs cmd inside an open transaction. Use it from command
// handlers and update functions.
func DispatchCommandTx[T any](tx *Tx, cmd Command[T], payload T) bool {
	for _, h := range tx.editor.handlersFor(cmd.id) {
		if h.fn(tx, payload) {
			return true
		}
	}
	return false
}

// Built-in commands dispatched by the presentation layer and the core
// plugins.
var (
	SelectionChangeCommand = NewCommand[struct{}]("SELECTION_CHANGE_COMMAND")
	ClickCommand           = NewCommand[ClickEvent]("CLICK_COMMAND")
	KeyDeleteCommand       = NewCommand[KeyEvent]("KEY_DELETE_COMMAND")
	KeyBackspaceCommand    = NewCommand[KeyEvent]("KEY_BACKSPACE_COMMAND")
	KeyEnterCommand        = NewCommand[KeyEvent]("KEY_ENTER_COMMAND")
	KeyEscapeCommand       = NewCommand[KeyEvent]("KEY_ESCAPE_COMMAND")
	KeyTabCommand          = NewCommand[KeyEvent]("KEY_TAB_COMMAND")
	KeyArrowCommand        = NewCommand[ArrowEvent]("KEY_ARROW_COMMAND")
	KeyModifierCommand     = NewCommand[KeyEvent]("KEY_MODIFIER_COMMAND")

	InsertTextCommand      = NewCommand[string]("CONTROLLED_TEXT_INSERTION_COMMAND")
	InsertParagraphCommand = NewCommand[struct{}]("INSERT_PARAGRAPH_COMMAND")
	InsertLineBreakCommand = NewCommand[struct{}]("INSERT_LINE_BREAK_COMMAND")
	DeleteCharacterCommand = NewCommand[bool]("DELETE_CHARACTER_COMMAND")
	FormatTextCommand      = NewCommand[string]("FORMAT_TEXT_COMMAND")
	FormatElementCommand   = NewCommand[string]("FORMAT_ELEMENT_COMMAND")
	IndentContentCommand   = NewCommand[struct{}]("INDENT_CONTENT_COMMAND")
	OutdentContentCommand  = NewCommand[struct{}]("OUTDENT_CONTENT_COMMAND")
	PasteCommand           = NewCommand[Clipboard]("PASTE_COMMAND")
	CopyCommand            = NewCommand[*ClipboardData]("COPY_COMMAND")
	CutCommand             = NewCommand[*ClipboardData]("CUT_COMMAND")
	ClearEditorCommand     = NewCommand[struct{}]("CLEAR_EDITOR_COMMAND")

	UndoCommand         = NewCommand[struct{}]("UNDO_COMMAND")
	RedoCommand         = NewCommand[struct{}]("REDO_COMMAND")
	CanUndoCommand      = NewCommand[bool]("CAN_UNDO_COMMAND")
	CanRedoCommand      = NewCommand[bool]("CAN_REDO_COMMAND")
	ClearHistoryCommand = NewCommand[struct{}]("CLEAR_HISTORY_COMMAND")
)

// ClickEvent is a pointer press resolved to the node under it.
type ClickEvent struct {
	// Target is the node rendered under the pointer, or "" for empty space.
	Target NodeKey
	// Offset is the rune offset inside a text Target. Negative means the end.
	Offset int
	Shift  bool
	Ctrl   bool
	Alt    bool
}

// KeyEvent describes a key press.
type KeyEvent struct {
	// Key is the logical key, for example "k" or "Enter".
	Key string
	// Code is the physical key, for example "KeyK".
	Code  string
	Ctrl  bool
	Meta  bool
	Alt   bool
	Shift bool
}

// Direction of a caret move.
type Direction uint8

const (
	DirLeft Direction = iota
	DirRight
	DirUp
	DirDown
)

// ArrowEvent moves the caret; Shift extends the selection.
type ArrowEvent struct {
	Dir   Direction
	Shift bool
}

// Clipboard is the content offered to a paste.
type Clipboard struct {
	HTML string
	Text string
}

// ClipboardData is filled by copy and cut handlers.
type ClipboardData struct {
	HTML string
	Text string
}
