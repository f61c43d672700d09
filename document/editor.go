package document

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/microcosm-cc/bluemonday"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Update tags understood by the built-in plugins.
const (
	// TagHistoric marks updates produced by undo/redo.
	TagHistoric = "historic"
	// TagHistoryMerge marks updates folded into the previous history entry.
	TagHistoryMerge = "history-merge"
	// TagPaste marks updates inserting clipboard content.
	TagPaste = "paste"
)

// Theme maps node type tags (or HTML tag names) to CSS class names used by
// the HTML exporter.
type Theme map[string]string

// Config configures an Editor.
type Config struct {
	Namespace string

	// Node classes in addition to root, paragraph and text.
	Nodes []Class

	Theme Theme

	// OnError receives errors from failed updates. Updates also return them.
	OnError func(error)

	// Logger receives import diagnostics. Zero value logs nowhere.
	Logger zerolog.Logger

	// ReadOnly starts the editor non-editable.
	ReadOnly bool

	// Sanitizer, when set, filters HTML before GenerateNodesFromDOM parses it.
	Sanitizer *bluemonday.Policy
}

// UpdateEvent is published once per committed transaction that changed the
// document or the selection.
type UpdateEvent struct {
	State            *State
	PrevState        *State
	Dirty            map[NodeKey]struct{}
	Tags             map[string]bool
	SelectionChanged bool
}

// HasTag reports whether the update carried tag.
func (ev UpdateEvent) HasTag(tag string) bool { return ev.Tags[tag] }

// ContentChanged reports whether any node was written.
func (ev UpdateEvent) ContentChanged() bool { return len(ev.Dirty) > 0 }

type listener[T any] struct {
	fn func(T)
}

// Editor owns the document state. All writes go through Update; readers get
// immutable snapshots. Transactions are serialized: at most one runs at a
// time, and update listeners run after the writer releases the editor.
//
// Command handlers run inside a transaction and must use the *Tx they are
// given (and DispatchCommandTx) rather than calling Update.
type Editor struct {
	cfg      Config
	registry *Registry
	logger   zerolog.Logger

	mu     sync.Mutex
	state  atomic.Pointer[State]
	keySeq atomic.Uint64

	lmu               sync.Mutex
	handlers          map[*commandID]*[priorityCount][]*handlerEntry
	updateListeners   []*listener[UpdateEvent]
	editableListeners []*listener[bool]
	editable          bool
}

// New builds an editor with an empty document.
func New(cfg Config) (*Editor, error) {
	reg, err := NewRegistry(cfg.Nodes...)
	if err != nil {
		return nil, err
	}
	e := &Editor{
		cfg:      cfg,
		registry: reg,
		logger:   cfg.Logger,
		handlers: make(map[*commandID]*[priorityCount][]*handlerEntry),
		editable: !cfg.ReadOnly,
	}
	e.state.Store(newEmptyState())
	return e, nil
}

func (e *Editor) nextKey() NodeKey {
	return NodeKey(strconv.FormatUint(e.keySeq.Add(1), 10))
}

// Namespace returns the configured namespace.
func (e *Editor) Namespace() string { return e.cfg.Namespace }

// Registry returns the node registry.
func (e *Editor) Registry() *Registry { return e.registry }

// Theme returns the configured theme.
func (e *Editor) Theme() Theme { return e.cfg.Theme }

// Logger returns the editor logger.
func (e *Editor) Logger() zerolog.Logger { return e.logger }

// HasNodes reports whether every given type tag is registered.
func (e *Editor) HasNodes(types ...string) bool { return e.registry.Has(types...) }

// State returns the committed snapshot.
func (e *Editor) State() *State { return e.state.Load() }

// Read runs fn against the committed snapshot.
func (e *Editor) Read(fn func(*State) error) error {
	return fn(e.state.Load())
}

// Update runs fn as one transaction. When fn returns an error, panics, or
// calls Tx.Fail, nothing is committed, OnError is notified and the error is
// returned.
func (e *Editor) Update(fn func(*Tx) error, tags ...string) error {
	e.mu.Lock()
	tx := newTx(e, e.state.Load())
	for _, t := range tags {
		tx.AddTag(t)
	}
	err := runTx(tx, fn)
	if err != nil {
		tx.done = true
		e.mu.Unlock()
		e.reportError(err)
		return err
	}
	ev, changed := e.commit(tx)
	e.mu.Unlock()

	if changed {
		e.publish(ev)
		if ev.SelectionChanged {
			DispatchCommand(e, SelectionChangeCommand, struct{}{})
		}
	}
	return nil
}

func runTx(tx *Tx, fn func(*Tx) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(error); ok {
				err = errors.Wrap(re, "update panicked")
				return
			}
			err = errors.Errorf("update panicked: %v", r)
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.err
}

func (e *Editor) commit(tx *Tx) (UpdateEvent, bool) {
	tx.collect()
	tx.done = true
	prev := tx.prev
	selChanged := !selectionEqual(prev.selection, tx.selection)
	if len(tx.dirty) == 0 && !selChanged {
		return UpdateEvent{}, false
	}
	next := tx.State
	e.state.Store(next)
	return UpdateEvent{
		State:            next,
		PrevState:        prev,
		Dirty:            tx.dirty,
		Tags:             tx.tags,
		SelectionChanged: selChanged,
	}, true
}

func (e *Editor) reportError(err error) {
	e.logger.Error().Err(err).Str("namespace", e.cfg.Namespace).Msg("update failed")
	if e.cfg.OnError != nil {
		e.cfg.OnError(err)
	}
}

func (e *Editor) publish(ev UpdateEvent) {
	e.lmu.Lock()
	ls := append([]*listener[UpdateEvent](nil), e.updateListeners...)
	e.lmu.Unlock()
	for _, l := range ls {
		l.fn(ev)
	}
}

// RegisterUpdateListener calls fn after every committed change. The
// returned function unregisters it.
func (e *Editor) RegisterUpdateListener(fn func(UpdateEvent)) func() {
	l := &listener[UpdateEvent]{fn: fn}
	e.lmu.Lock()
	e.updateListeners = append(e.updateListeners, l)
	e.lmu.Unlock()
	return func() {
		e.lmu.Lock()
		defer e.lmu.Unlock()
		e.updateListeners = removeListener(e.updateListeners, l)
	}
}

// RegisterEditableListener calls fn whenever editability changes.
func (e *Editor) RegisterEditableListener(fn func(bool)) func() {
	l := &listener[bool]{fn: fn}
	e.lmu.Lock()
	e.editableListeners = append(e.editableListeners, l)
	e.lmu.Unlock()
	return func() {
		e.lmu.Lock()
		defer e.lmu.Unlock()
		e.editableListeners = removeListener(e.editableListeners, l)
	}
}

func removeListener[T any](ls []*listener[T], l *listener[T]) []*listener[T] {
	for i, x := range ls {
		if x == l {
			return append(ls[:i:i], ls[i+1:]...)
		}
	}
	return ls
}

// IsEditable reports whether user input may modify the document.
func (e *Editor) IsEditable() bool {
	e.lmu.Lock()
	defer e.lmu.Unlock()
	return e.editable
}

// SetEditable toggles editability and notifies listeners on change.
func (e *Editor) SetEditable(editable bool) {
	e.lmu.Lock()
	if e.editable == editable {
		e.lmu.Unlock()
		return
	}
	e.editable = editable
	ls := append([]*listener[bool](nil), e.editableListeners...)
	e.lmu.Unlock()
	for _, l := range ls {
		l.fn(editable)
	}
}

// ListenerCount returns the number of registered listeners and command
// handlers.
func (e *Editor) ListenerCount() int {
	e.lmu.Lock()
	defer e.lmu.Unlock()
	n := len(e.updateListeners) + len(e.editableListeners)
	for _, tiers := range e.handlers {
		for _, hs := range tiers {
			n += len(hs)
		}
	}
	return n
}

// MergeRegister combines unregister functions into one that calls them in
// reverse order.
func MergeRegister(fns ...func()) func() {
	return func() {
		for i := len(fns) - 1; i >= 0; i-- {
			if fns[i] != nil {
				fns[i]()
			}
		}
	}
}

// Plugin extends an editor with commands and listeners.
type Plugin interface {
	Register(e *Editor) (unregister func(), err error)
}

// PluginFunc adapts a function to Plugin.
type PluginFunc func(e *Editor) (func(), error)

func (f PluginFunc) Register(e *Editor) (func(), error) { return f(e) }

// RegisterPlugins registers plugins in order. On failure the plugins already
// registered are unregistered and the error names the failing plugin.
func RegisterPlugins(e *Editor, plugins ...Plugin) (func(), error) {
	var fns []func()
	for i, p := range plugins {
		unreg, err := p.Register(e)
		if err != nil {
			MergeRegister(fns...)()
			return nil, errors.Wrap(err, fmt.Sprintf("plugin %d (%T)", i, p))
		}
		fns = append(fns, unreg)
	}
	return MergeRegister(fns...), nil
}
