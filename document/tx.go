package document

import (
	"github.com/pkg/errors"
)

// Tx is one transactional update. It exposes the pending state through the
// embedded *State; every mutation goes through Tx methods, which clone a
// node on its first write so the committed snapshot stays untouched.
//
// A Tx is only valid inside the function it was passed to.
type Tx struct {
	*State

	editor  *Editor
	prev    *State
	cloned  map[NodeKey]bool
	dirty   map[NodeKey]struct{}
	created []NodeKey
	tags    map[string]bool
	err     error
	done    bool
}

func newTx(e *Editor, prev *State) *Tx {
	return &Tx{
		State:  prev.copy(),
		editor: e,
		prev:   prev,
		cloned: make(map[NodeKey]bool),
		dirty:  make(map[NodeKey]struct{}),
		tags:   make(map[string]bool),
	}
}

// Editor returns the editor running the transaction.
func (tx *Tx) Editor() *Editor { return tx.editor }

// Registry returns the editor's node registry.
func (tx *Tx) Registry() *Registry { return tx.editor.registry }

// Previous returns the committed state the transaction started from.
func (tx *Tx) Previous() *State { return tx.prev }

// AddTag labels the resulting update. Listeners see the tags.
func (tx *Tx) AddTag(tag string) { tx.tags[tag] = true }

// HasTag reports whether tag was added.
func (tx *Tx) HasTag(tag string) bool { return tx.tags[tag] }

// Fail aborts the transaction: nothing is committed and Update returns err.
func (tx *Tx) Fail(err error) {
	if tx.err == nil && err != nil {
		tx.err = err
	}
}

// Created returns the keys of nodes created in this transaction in creation
// order.
func (tx *Tx) Created() []NodeKey { return append([]NodeKey(nil), tx.created...) }

// Dirty returns the keys written, created or removed so far.
func (tx *Tx) Dirty() []NodeKey {
	out := make([]NodeKey, 0, len(tx.dirty))
	for k := range tx.dirty {
		out = append(out, k)
	}
	return out
}

func (tx *Tx) checkOpen() {
	if tx.done {
		panic("document: transaction used after commit")
	}
}

func (tx *Tx) markDirty(key NodeKey) { tx.dirty[key] = struct{}{} }

// Writable returns a writable version of n, cloning it on its first write in
// this transaction. Detached nodes without a key are adopted by the
// transaction. Callers must keep using the returned value.
func Writable[T Node](tx *Tx, n T) T {
	return tx.writable(n).(T)
}

func (tx *Tx) writable(n Node) Node {
	tx.checkOpen()
	key := n.Key()
	if key == "" {
		tx.adopt(n)
		return n
	}
	if tx.cloned[key] {
		if cur, ok := tx.nodes[key]; ok {
			return cur
		}
	}
	cur, ok := tx.nodes[key]
	if !ok {
		cur = n
	}
	c := cur.Clone()
	tx.nodes[key] = c
	tx.cloned[key] = true
	tx.markDirty(key)
	return c
}

// adopt assigns a key to a new node and records it as detached.
func (tx *Tx) adopt(n Node) {
	b := n.base()
	b.key = tx.editor.nextKey()
	b.parent = ""
	tx.nodes[b.key] = n
	tx.cloned[b.key] = true
	tx.markDirty(b.key)
	tx.created = append(tx.created, b.key)
}

// Create adopts a new detached node and returns it.
func Create[T Node](tx *Tx, n T) T {
	tx.checkOpen()
	if n.Key() == "" {
		tx.adopt(n)
	}
	return n
}

func (tx *Tx) writableElement(n Node) (ElementNode, error) {
	w := tx.writable(n)
	el, ok := w.(ElementNode)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidTree, "%s %s has no children", w.Type(), w.Key())
	}
	return el, nil
}

// detach removes n from its parent's child list. The node stays in the
// pending state until commit collects it.
func (tx *Tx) detach(n Node) Node {
	w := tx.writable(n)
	parentKey := w.Parent()
	if parentKey == "" {
		return w
	}
	if p, ok := tx.nodes[parentKey]; ok {
		if pe, err := tx.writableElement(p); err == nil {
			b := pe.element()
			for i, k := range b.children {
				if k == w.Key() {
					b.children = append(b.children[:i], b.children[i+1:]...)
					break
				}
			}
		}
	}
	w.base().parent = ""
	return w
}

func (tx *Tx) insertAt(parent Node, index int, n Node) (Node, error) {
	if n.Key() == RootKey {
		return nil, errors.Wrap(ErrInvalidTree, "root cannot be moved")
	}
	if tx.isAncestor(n.Key(), parent.Key()) {
		return nil, errors.Wrapf(ErrInvalidTree, "%s cannot contain its ancestor %s", parent.Key(), n.Key())
	}
	child := tx.detach(n)
	pe, err := tx.writableElement(parent)
	if err != nil {
		return nil, err
	}
	b := pe.element()
	if index < 0 || index > len(b.children) {
		index = len(b.children)
	}
	b.children = append(b.children, "")
	copy(b.children[index+1:], b.children[index:])
	b.children[index] = child.Key()
	child.base().parent = pe.Key()
	return child, nil
}

func (tx *Tx) isAncestor(ancestor, key NodeKey) bool {
	for key != "" {
		if key == ancestor {
			return true
		}
		n, ok := tx.nodes[key]
		if !ok {
			return false
		}
		key = n.Parent()
	}
	return false
}

// Append moves children to the end of parent, in order.
func (tx *Tx) Append(parent Node, children ...Node) error {
	for _, c := range children {
		p, ok := tx.nodes[parent.Key()]
		if !ok || parent.Key() == "" {
			p = tx.writable(parent)
		}
		if _, err := tx.insertAt(p, -1, c); err != nil {
			return err
		}
	}
	return nil
}

// InsertAt moves n to position index of parent.
func (tx *Tx) InsertAt(parent Node, index int, n Node) error {
	_, err := tx.insertAt(tx.writable(parent), index, n)
	return err
}

// InsertAfter moves n right after target.
func (tx *Tx) InsertAfter(target, n Node) error {
	return tx.insertBeside(target, n, 1)
}

// InsertBefore moves n right before target.
func (tx *Tx) InsertBefore(target, n Node) error {
	return tx.insertBeside(target, n, 0)
}

func (tx *Tx) insertBeside(target, n Node, delta int) error {
	cur, ok := tx.nodes[target.Key()]
	if !ok {
		return errors.Wrapf(ErrNodeNotFound, "%s", target.Key())
	}
	if cur.Parent() == "" {
		return errors.Wrapf(ErrInvalidTree, "%s has no parent", cur.Key())
	}
	parent := tx.nodes[cur.Parent()]
	if n.Key() != "" && n.Parent() == parent.Key() {
		tx.detach(n)
	}
	i := tx.IndexOf(cur.Key())
	_, err := tx.insertAt(parent, i+delta, n)
	return err
}

// Remove detaches n and drops it and its descendants from the document.
func (tx *Tx) Remove(n Node) error {
	tx.checkOpen()
	if n.Key() == RootKey {
		return errors.Wrap(ErrInvalidTree, "root cannot be removed")
	}
	if _, ok := tx.nodes[n.Key()]; !ok {
		return errors.Wrapf(ErrNodeNotFound, "%s", n.Key())
	}
	tx.detach(n)
	tx.drop(n.Key())
	return nil
}

func (tx *Tx) drop(key NodeKey) {
	n, ok := tx.nodes[key]
	if !ok {
		return
	}
	if el, ok := n.(ElementNode); ok {
		for _, k := range el.element().children {
			tx.drop(k)
		}
	}
	delete(tx.nodes, key)
	delete(tx.cloned, key)
	tx.markDirty(key)
}

// Replace puts repl at old's position and removes old. With
// includeChildren, old's children move into repl first.
func (tx *Tx) Replace(old, repl Node, includeChildren bool) (Node, error) {
	if err := tx.InsertBefore(old, repl); err != nil {
		return nil, err
	}
	cur, ok := tx.nodes[old.Key()]
	if !ok {
		return nil, errors.Wrapf(ErrNodeNotFound, "%s", old.Key())
	}
	if includeChildren {
		if el, ok := cur.(ElementNode); ok {
			for _, c := range tx.Children(el.Key()) {
				if err := tx.Append(repl, c); err != nil {
					return nil, err
				}
			}
		}
	}
	if err := tx.Remove(cur); err != nil {
		return nil, err
	}
	return tx.nodes[repl.Key()], nil
}

// WrapNodeInElement replaces n with the element returned by create and moves
// n inside it.
func (tx *Tx) WrapNodeInElement(n Node, create func() ElementNode) (ElementNode, error) {
	el := Create(tx, create())
	if err := tx.InsertBefore(n, el); err != nil {
		return nil, err
	}
	if err := tx.Append(el, n); err != nil {
		return nil, err
	}
	w, _ := tx.nodes[el.Key()].(ElementNode)
	return w, nil
}

// Clear removes every child of the root and the selection.
func (tx *Tx) Clear() {
	for _, c := range tx.Children(RootKey) {
		_ = tx.Remove(c)
	}
	tx.selection = nil
}

// SetSelection replaces the selection. A collapsed caret with no explicit
// format or style adopts those of the text node it sits in.
func (tx *Tx) SetSelection(sel Selection) {
	tx.checkOpen()
	if r, ok := AsRange(sel); ok && r.IsCollapsed() && r.Anchor.Type == PointText && r.Format == 0 && r.Style == "" {
		if t, ok := tx.nodes[r.Anchor.Key].(*TextNode); ok {
			r.Format = t.format
			r.Style = t.style
		}
	}
	tx.selection = cloneSelection(sel)
}

// RangeSelection returns the live range selection of the transaction.
func (tx *Tx) RangeSelection() (*RangeSelection, bool) {
	return AsRange(tx.selection)
}

// NodeSelection returns the live node selection of the transaction.
func (tx *Tx) NodeSelection() (*NodeSelection, bool) {
	return AsNodeSelection(tx.selection)
}

// SetNodeSelected adds or removes key from the node selection, switching to
// a node selection first when needed.
func (tx *Tx) SetNodeSelected(key NodeKey, selected bool) {
	ns, ok := AsNodeSelection(tx.selection)
	if !ok {
		ns = NewNodeSelection()
		tx.selection = ns
	}
	if selected {
		ns.Add(key)
	} else {
		ns.Delete(key)
	}
}

// ClearNodeSelection empties the node selection. Other selections are left
// alone.
func (tx *Tx) ClearNodeSelection() {
	if ns, ok := AsNodeSelection(tx.selection); ok {
		ns.Clear()
	}
}

// restore swaps the pending state for snapshot s.
func (tx *Tx) restore(s *State) {
	for k := range tx.nodes {
		tx.markDirty(k)
	}
	next := s.copy()
	for k := range next.nodes {
		tx.markDirty(k)
	}
	tx.nodes = next.nodes
	tx.selection = next.selection
	tx.cloned = make(map[NodeKey]bool)
}

// collect drops detached nodes created or touched in this transaction and
// repairs selections pointing at removed nodes.
func (tx *Tx) collect() {
	for k := range tx.dirty {
		if k == RootKey {
			continue
		}
		if _, ok := tx.nodes[k]; ok && !tx.IsAttached(k) {
			tx.drop(k)
		}
	}
	switch sel := tx.selection.(type) {
	case *RangeSelection:
		if !tx.validPoint(sel.Anchor) || !tx.validPoint(sel.Focus) {
			tx.selection = nil
			if tx.Root().ChildCount() > 0 {
				tx.SelectEnd(tx.Root())
			}
		}
	case *NodeSelection:
		for _, k := range sel.Keys() {
			if _, ok := tx.nodes[k]; !ok {
				sel.Delete(k)
			}
		}
	}
}

func (tx *Tx) validPoint(p Point) bool {
	n, ok := tx.nodes[p.Key]
	if !ok || !tx.IsAttached(p.Key) {
		return false
	}
	switch v := n.(type) {
	case *TextNode:
		return p.Type == PointText && p.Offset >= 0 && p.Offset <= v.Len()
	case ElementNode:
		return p.Type == PointElement && p.Offset >= 0 && p.Offset <= v.element().ChildCount()
	}
	return false
}
