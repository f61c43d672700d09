package document

import (
	"github.com/pkg/errors"
)

// BlockSplitter is implemented by blocks that choose the element created
// when the caret splits them, such as list items continuing the list.
type BlockSplitter interface {
	NewBlockAfter() ElementNode
}

func (tx *Tx) live(n Node) Node {
	if n == nil {
		return nil
	}
	if cur, ok := tx.nodes[n.Key()]; ok {
		return cur
	}
	return n
}

// SelectStart places a collapsed caret at the start of n.
func (tx *Tx) SelectStart(n Node) {
	tx.SetSelection(NewCaret(tx.edgePoint(n, false)))
}

// SelectEnd places a collapsed caret at the end of n. An empty element gets
// an element point at offset 0.
func (tx *Tx) SelectEnd(n Node) {
	tx.SetSelection(NewCaret(tx.edgePoint(n, true)))
}

func (tx *Tx) edgePoint(n Node, end bool) Point {
	n = tx.live(n)
	switch v := n.(type) {
	case *TextNode:
		if end {
			return TextPoint(v.Key(), v.Len())
		}
		return TextPoint(v.Key(), 0)
	case ElementNode:
		children := v.element().children
		if len(children) == 0 {
			return ElementPoint(v.Key(), 0)
		}
		i := 0
		if end {
			i = len(children) - 1
		}
		c, ok := tx.nodes[children[i]]
		if !ok || (!IsText(c) && !IsElement(c)) {
			if end {
				return ElementPoint(v.Key(), len(children))
			}
			return ElementPoint(v.Key(), 0)
		}
		return tx.edgePoint(c, end)
	}
	i := tx.IndexOf(n.Key())
	if end {
		i++
	}
	return ElementPoint(n.Parent(), i)
}

// SelectNext places a caret right after n: at the start of a following text
// node, at the end of n when it is text, at the start of the next block for
// blocks, or as an element point after n otherwise.
func (tx *Tx) SelectNext(n Node) {
	n = tx.live(n)
	next := tx.NextSibling(n.Key())
	if t, ok := next.(*TextNode); ok {
		tx.SetSelection(NewCaret(TextPoint(t.Key(), 0)))
		return
	}
	if t, ok := n.(*TextNode); ok {
		tx.SetSelection(NewCaret(TextPoint(t.Key(), t.Len())))
		return
	}
	if !IsInline(n) && next != nil && IsElement(next) {
		tx.SelectStart(next)
		return
	}
	tx.SetSelection(NewCaret(ElementPoint(n.Parent(), tx.IndexOf(n.Key())+1)))
}

// SplitText splits t at rune offset and returns both halves. Offsets at the
// edges split nothing and return nil for the missing half. Selection points
// past the split move to the right half.
func (tx *Tx) SplitText(t *TextNode, offset int) (left, right *TextNode, err error) {
	cur, ok := tx.live(t).(*TextNode)
	if !ok {
		return nil, nil, errors.Wrapf(ErrNodeNotFound, "text %s", t.Key())
	}
	if offset <= 0 {
		return nil, cur, nil
	}
	if offset >= cur.Len() {
		return cur, nil, nil
	}
	runes := []rune(cur.text)
	w := Writable(tx, cur)
	w.text = string(runes[:offset])
	r := Create(tx, NewText(string(runes[offset:])).SetFormat(w.format).SetStyle(w.style))
	if err := tx.InsertAfter(w, r); err != nil {
		return nil, nil, err
	}
	if sel, ok := AsRange(tx.selection); ok {
		for _, p := range []*Point{&sel.Anchor, &sel.Focus} {
			if p.Key == w.Key() && p.Type == PointText && p.Offset > offset {
				*p = TextPoint(r.Key(), p.Offset-offset)
			}
		}
	}
	return w, r, nil
}

// blockOfPoint returns the block holding p.
func (tx *Tx) blockOfPoint(p Point) (ElementNode, bool) {
	if el, ok := tx.element(p.Key); ok && !el.IsInline() {
		return el, true
	}
	return tx.BlockOf(p.Key)
}

func (tx *Tx) newBlockLike(b ElementNode) ElementNode {
	if s, ok := b.(BlockSplitter); ok {
		if nb := s.NewBlockAfter(); nb != nil {
			return nb
		}
	}
	return NewParagraph()
}

// splitBlockAt moves everything after p out of block b into a new block
// inserted after b and returns it.
func (tx *Tx) splitBlockAt(b ElementNode, p Point) (ElementNode, error) {
	b = tx.live(b).(ElementNode)
	idx := b.element().ChildCount()
	switch {
	case p.Key == b.Key() && p.Type == PointElement:
		idx = p.Offset
	default:
		child, ok := tx.childOf(b.Key(), p.Key)
		if !ok {
			break
		}
		idx = tx.IndexOf(child.Key()) + 1
		if t, ok := child.(*TextNode); ok && p.Key == t.Key() && p.Type == PointText {
			left, right, err := tx.SplitText(t, p.Offset)
			if err != nil {
				return nil, err
			}
			switch {
			case left == nil:
				idx = tx.IndexOf(right.Key())
			default:
				idx = tx.IndexOf(left.Key()) + 1
			}
		}
	}
	nb := Create(tx, tx.newBlockLike(b))
	if err := tx.InsertAfter(b, nb); err != nil {
		return nil, err
	}
	rest := tx.Children(b.Key())
	if idx < len(rest) {
		if err := tx.Append(nb, rest[idx:]...); err != nil {
			return nil, err
		}
	}
	return tx.live(nb).(ElementNode), nil
}

// childOf returns the direct child of parent that contains key.
func (tx *Tx) childOf(parent, key NodeKey) (Node, bool) {
	for key != "" {
		n, ok := tx.nodes[key]
		if !ok {
			return nil, false
		}
		if n.Parent() == parent {
			return n, true
		}
		key = n.Parent()
	}
	return nil, false
}

func (tx *Tx) isEmptyBlock(b ElementNode) bool {
	empty := true
	tx.Walk(b.Key(), func(n Node, _ int) bool {
		switch v := n.(type) {
		case *TextNode:
			if v.text != "" {
				empty = false
			}
		case DecoratorNode:
			empty = false
		}
		return empty
	})
	return empty
}

// InsertNodes inserts nodes at the selection and moves the caret after the
// last one. A range is deleted first. With a node selection the nodes go
// after the last selected node. Without a selection the caret is placed at
// the end of the document first, which on an empty document is the root
// itself, so the nodes become root children.
//
// Inline nodes split the text under the caret. Block nodes split the
// caret's block, or replace it when it is empty.
func (tx *Tx) InsertNodes(nodes ...Node) error {
	tx.checkOpen()
	if ns, ok := tx.NodeSelection(); ok && ns.Len() > 0 {
		keys := ns.Keys()
		if target, ok := tx.nodes[keys[len(keys)-1]]; ok && tx.IsAttached(target.Key()) {
			for _, n := range nodes {
				if err := tx.InsertAfter(target, n); err != nil {
					return err
				}
				target = tx.live(n)
			}
			tx.SelectNext(target)
			return nil
		}
	}
	if _, ok := tx.RangeSelection(); !ok {
		tx.SelectEnd(tx.Root())
	}
	if sel, _ := tx.RangeSelection(); !sel.IsCollapsed() {
		if err := tx.RemoveText(); err != nil {
			return err
		}
	}
	for _, n := range nodes {
		if err := tx.insertOne(n); err != nil {
			return err
		}
	}
	return nil
}

func (tx *Tx) insertOne(n Node) error {
	sel, ok := tx.RangeSelection()
	if !ok {
		tx.SelectEnd(tx.Root())
		sel, _ = tx.RangeSelection()
	}
	p := sel.Focus
	target, ok := tx.nodes[p.Key]
	if !ok {
		return errors.Wrapf(ErrNodeNotFound, "selection %s", p.Key)
	}

	if IsInline(n) {
		switch v := target.(type) {
		case *TextNode:
			left, right, err := tx.SplitText(v, p.Offset)
			if err != nil {
				return err
			}
			if left != nil {
				err = tx.InsertAfter(left, n)
			} else {
				err = tx.InsertBefore(right, n)
			}
			if err != nil {
				return err
			}
		default:
			if err := tx.InsertAt(target, p.Offset, n); err != nil {
				return err
			}
		}
		tx.SelectNext(n)
		return nil
	}

	if p.Key == RootKey {
		if err := tx.InsertAt(target, p.Offset, n); err != nil {
			return err
		}
		tx.SelectNext(n)
		return nil
	}
	block, ok := tx.blockOfPoint(p)
	if !ok {
		return errors.Wrapf(ErrInvalidTree, "no block around %s", p.Key)
	}
	top, _ := tx.TopLevelElement(block.Key())
	if top == nil {
		top = block
	}
	var err error
	switch {
	case tx.isEmptyBlock(block) && block.Key() == top.Key():
		_, err = tx.Replace(block, n, false)
	case tx.ComparePoints(p, tx.edgePoint(top, false)) <= 0:
		err = tx.InsertBefore(top, n)
	case tx.ComparePoints(p, tx.edgePoint(top, true)) >= 0:
		err = tx.InsertAfter(top, n)
	case block.Key() == top.Key():
		if _, err = tx.splitBlockAt(block, p); err == nil {
			err = tx.InsertAfter(block, n)
		}
	default:
		err = tx.InsertAfter(top, n)
	}
	if err != nil {
		return err
	}
	tx.SelectNext(n)
	return nil
}

// WrapInlineRuns groups consecutive inline nodes into paragraphs so the
// result can be inserted at the root.
func (tx *Tx) WrapInlineRuns(nodes []Node) ([]Node, error) {
	var (
		out []Node
		run *ParagraphNode
	)
	for _, n := range nodes {
		if !IsInline(n) {
			run = nil
			out = append(out, n)
			continue
		}
		if run == nil {
			run = Create(tx, NewParagraph())
			out = append(out, run)
		}
		if err := tx.Append(run, n); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// AppendBlocks wraps inline runs and appends the result to the root.
func (tx *Tx) AppendBlocks(nodes []Node) error {
	blocks, err := tx.WrapInlineRuns(nodes)
	if err != nil {
		return err
	}
	return tx.Append(tx.Root(), blocks...)
}
