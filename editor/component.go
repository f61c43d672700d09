package editor

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/bitbriks/bitbrik/document"
)

// Component is the decoration a DecoratorNode returns from Decorate.
//
// Mount is called once when the node first renders and returns the function
// that undoes it. View renders the current node into at most width cells
// per line; it may return several lines.
type Component interface {
	Mount(e *document.Editor) func()
	View(node document.Node, width int) string
}

// ErrorBoundary isolates a component: a panic in Mount or View is reported
// and the component renders Fallback instead.
type ErrorBoundary struct {
	Component Component
	Fallback  func(err error) string
	OnError   func(err error)
}

func (b ErrorBoundary) fail(r any) error {
	err, ok := r.(error)
	if ok {
		err = errors.Wrap(err, "component panicked")
	} else {
		err = errors.Errorf("component panicked: %v", r)
	}
	if b.OnError != nil {
		b.OnError(err)
	}
	return err
}

func (b ErrorBoundary) Mount(e *document.Editor) (unmount func()) {
	defer func() {
		if r := recover(); r != nil {
			b.fail(r)
			unmount = func() {}
		}
	}()
	unmount = b.Component.Mount(e)
	if unmount == nil {
		unmount = func() {}
	}
	return unmount
}

func (b ErrorBoundary) View(node document.Node, width int) (out string) {
	defer func() {
		if r := recover(); r != nil {
			err := b.fail(r)
			out = ""
			if b.Fallback != nil {
				out = b.Fallback(err)
			}
		}
	}()
	return b.Component.View(node, width)
}

type mounted struct {
	node    document.Node
	comp    Component
	unmount func()
}

// componentSet tracks the components mounted for decorator nodes.
type componentSet struct {
	logger   zerolog.Logger
	fallback func(document.Node, error) string
	byKey    map[document.NodeKey]*mounted
}

func newComponentSet(logger zerolog.Logger, fallback func(document.Node, error) string) *componentSet {
	return &componentSet{logger: logger, fallback: fallback, byKey: make(map[document.NodeKey]*mounted)}
}

// reconcile mounts components for new decorators, re-creates those whose
// node reports UpdateDOM, and unmounts those whose node left the document.
func (cs *componentSet) reconcile(e *document.Editor, s *document.State) {
	seen := make(map[document.NodeKey]bool)
	s.Walk(document.RootKey, func(n document.Node, _ int) bool {
		d, ok := n.(document.DecoratorNode)
		if !ok {
			return true
		}
		seen[n.Key()] = true
		if m, ok := cs.byKey[n.Key()]; ok {
			if !n.UpdateDOM(m.node) {
				m.node = n
				return true
			}
			m.unmount()
			delete(cs.byKey, n.Key())
		}
		cs.mount(e, d)
		return true
	})
	for _, k := range sortedKeys(cs.byKey) {
		if !seen[k] {
			cs.byKey[k].unmount()
			delete(cs.byKey, k)
		}
	}
}

func (cs *componentSet) mount(e *document.Editor, d document.DecoratorNode) {
	m := &mounted{node: d, unmount: func() {}}
	c, ok := d.Decorate(e).(Component)
	if !ok {
		cs.byKey[d.Key()] = m
		return
	}
	node := d
	m.comp = ErrorBoundary{
		Component: c,
		Fallback:  func(err error) string { return cs.fallback(node, err) },
		OnError: func(err error) {
			cs.logger.Error().Err(err).Str("type", node.Type()).Str("key", string(node.Key())).Msg("component failed")
		},
	}
	m.unmount = m.comp.Mount(e)
	cs.byKey[d.Key()] = m
}

// view renders the decorator with its mounted component, or a type label
// when it has none.
func (cs *componentSet) view(n document.Node, width int) string {
	m, ok := cs.byKey[n.Key()]
	if !ok || m.comp == nil {
		return fmt.Sprintf("[%s]", n.Type())
	}
	return m.comp.View(n, width)
}

// closeAll unmounts every component.
func (cs *componentSet) closeAll() {
	for _, k := range sortedKeys(cs.byKey) {
		cs.byKey[k].unmount()
	}
	cs.byKey = make(map[document.NodeKey]*mounted)
}
