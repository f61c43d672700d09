package document

import (
	"strings"
)

// InsertText types text at the selection, replacing a range. Text typed at a
// caret whose format or style differs from the text node under it becomes a
// new text node. Newlines start new paragraphs.
func (tx *Tx) InsertText(text string) error {
	tx.checkOpen()
	if ns, ok := tx.NodeSelection(); ok && ns.Len() > 0 {
		keys := ns.Keys()
		if n, ok := tx.nodes[keys[len(keys)-1]]; ok {
			if top, ok := tx.TopLevelElement(n.Key()); ok {
				p := Create(tx, NewParagraph())
				if err := tx.InsertAfter(top, p); err != nil {
					return err
				}
				tx.SelectStart(p)
			}
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
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			if err := tx.InsertParagraph(); err != nil {
				return err
			}
		}
		if line == "" {
			continue
		}
		if err := tx.insertPlain(line); err != nil {
			return err
		}
	}
	return nil
}

func (tx *Tx) insertPlain(s string) error {
	sel, _ := tx.RangeSelection()
	p := sel.Focus
	if t, ok := tx.nodes[p.Key].(*TextNode); ok && p.Type == PointText {
		if t.format == sel.Format && t.style == sel.Style {
			runes := []rune(t.text)
			w := Writable(tx, t)
			w.text = string(runes[:p.Offset]) + s + string(runes[p.Offset:])
			off := p.Offset + len([]rune(s))
			tx.SetSelection(&RangeSelection{Anchor: TextPoint(w.Key(), off), Focus: TextPoint(w.Key(), off), Format: sel.Format, Style: sel.Style})
			return nil
		}
	}
	n := Create(tx, NewText(s).SetFormat(sel.Format).SetStyle(sel.Style))
	if p.Key == RootKey {
		para := Create(tx, NewParagraph())
		if err := tx.InsertAt(tx.Root(), p.Offset, para); err != nil {
			return err
		}
		if err := tx.Append(para, n); err != nil {
			return err
		}
	} else if err := tx.insertOne(n); err != nil {
		return err
	}
	tx.SetSelection(&RangeSelection{Anchor: TextPoint(n.Key(), n.Len()), Focus: TextPoint(n.Key(), n.Len()), Format: sel.Format, Style: sel.Style})
	return nil
}

// InsertParagraph splits the caret's block and moves the caret to the start
// of the new block. A caret at the root, or a node selection, gets a fresh
// paragraph.
func (tx *Tx) InsertParagraph() error {
	tx.checkOpen()
	if ns, ok := tx.NodeSelection(); ok && ns.Len() > 0 {
		keys := ns.Keys()
		if n, ok := tx.nodes[keys[len(keys)-1]]; ok {
			if top, ok := tx.TopLevelElement(n.Key()); ok {
				p := Create(tx, NewParagraph())
				if err := tx.InsertAfter(top, p); err != nil {
					return err
				}
				tx.SelectStart(p)
				return nil
			}
		}
	}
	sel, ok := tx.RangeSelection()
	if !ok {
		tx.SelectEnd(tx.Root())
		sel, _ = tx.RangeSelection()
	}
	if !sel.IsCollapsed() {
		if err := tx.RemoveText(); err != nil {
			return err
		}
		sel, _ = tx.RangeSelection()
	}
	p := sel.Focus
	if p.Key == RootKey {
		para := Create(tx, NewParagraph())
		if err := tx.InsertAt(tx.Root(), p.Offset, para); err != nil {
			return err
		}
		tx.SelectStart(para)
		return nil
	}
	block, ok := tx.blockOfPoint(p)
	if !ok {
		return nil
	}
	nb, err := tx.splitBlockAt(block, p)
	if err != nil {
		return err
	}
	tx.SelectStart(nb)
	return nil
}

type span struct {
	node *TextNode
	a, b int
}

// RemoveText deletes the content of a range selection and collapses it at
// its start. Blocks joined by the range are merged.
func (tx *Tx) RemoveText() error {
	tx.checkOpen()
	sel, ok := tx.RangeSelection()
	if !ok || sel.IsCollapsed() {
		return nil
	}
	start, end := tx.Bounds(sel)
	startBlock, _ := tx.blockOfPoint(start)
	endBlock, _ := tx.blockOfPoint(end)

	var (
		cuts    []span
		victims []Node
	)
	for _, l := range tx.Leaves(RootKey) {
		if t, ok := l.(*TextNode); ok {
			a, b := 0, t.Len()
			if start.Key == t.Key() && start.Type == PointText {
				a = start.Offset
			}
			if end.Key == t.Key() && end.Type == PointText {
				b = end.Offset
			}
			if tx.ComparePoints(TextPoint(t.Key(), b), start) <= 0 || tx.ComparePoints(TextPoint(t.Key(), a), end) >= 0 {
				continue
			}
			cuts = append(cuts, span{t, a, b})
			continue
		}
		i := tx.IndexOf(l.Key())
		before, after := ElementPoint(l.Parent(), i), ElementPoint(l.Parent(), i+1)
		if tx.ComparePoints(before, start) >= 0 && tx.ComparePoints(after, end) <= 0 {
			victims = append(victims, l)
		}
	}

	caret := start
	for _, c := range cuts {
		runes := []rune(c.node.text)
		w := Writable(tx, c.node)
		w.text = string(runes[:c.a]) + string(runes[c.b:])
		if w.text == "" && w.Key() != start.Key {
			victims = append(victims, w)
		}
	}
	for _, v := range victims {
		if _, ok := tx.nodes[v.Key()]; ok {
			if err := tx.Remove(v); err != nil {
				return err
			}
		}
	}

	if startBlock != nil && endBlock != nil && startBlock.Key() != endBlock.Key() &&
		startBlock.Key() != RootKey && endBlock.Key() != RootKey {
		startTop, _ := tx.TopLevelElement(startBlock.Key())
		endTop, _ := tx.TopLevelElement(endBlock.Key())
		if startTop != nil && endTop != nil && startTop.Key() != endTop.Key() {
			for n := tx.NextSibling(startTop.Key()); n != nil && n.Key() != endTop.Key(); n = tx.NextSibling(startTop.Key()) {
				if err := tx.Remove(n); err != nil {
					return err
				}
			}
		}
		if _, ok := tx.nodes[endBlock.Key()]; ok {
			if err := tx.Append(startBlock, tx.Children(endBlock.Key())...); err != nil {
				return err
			}
			if err := tx.Remove(endBlock); err != nil {
				return err
			}
			tx.pruneEmptyAncestors(endBlock.Parent())
		}
	}

	if !tx.validPoint(caret) {
		if startBlock != nil {
			if _, ok := tx.nodes[startBlock.Key()]; ok {
				caret = tx.edgePoint(startBlock, true)
			}
		}
	}
	tx.SetSelection(NewCaret(caret))
	return nil
}

// pruneEmptyAncestors removes empty non-root elements from key upward.
func (tx *Tx) pruneEmptyAncestors(key NodeKey) {
	for key != "" && key != RootKey {
		el, ok := tx.element(key)
		if !ok || el.element().ChildCount() > 0 {
			return
		}
		parent := el.Parent()
		_ = tx.Remove(el)
		key = parent
	}
}

// DeleteCharacter deletes one character before (backward) or after the
// caret, merging blocks at block edges. A decorator next to the caret is
// selected instead of deleted. Node selections and ranges delete their
// content.
func (tx *Tx) DeleteCharacter(backward bool) error {
	tx.checkOpen()
	if ns, ok := tx.NodeSelection(); ok {
		var caret *Point
		for _, k := range ns.Keys() {
			n, ok := tx.nodes[k]
			if !ok {
				continue
			}
			if caret == nil {
				p := tx.edgePoint(n, false)
				caret = &p
			}
			if err := tx.Remove(n); err != nil {
				return err
			}
		}
		if caret != nil {
			tx.SetSelection(NewCaret(*caret))
		}
		return nil
	}
	sel, ok := tx.RangeSelection()
	if !ok {
		return nil
	}
	if !sel.IsCollapsed() {
		return tx.RemoveText()
	}
	p := sel.Focus
	if t, ok := tx.nodes[p.Key].(*TextNode); ok && p.Type == PointText {
		runes := []rune(t.text)
		switch {
		case backward && p.Offset > 0:
			w := Writable(tx, t)
			w.text = string(runes[:p.Offset-1]) + string(runes[p.Offset:])
			tx.afterCharDelete(w, p.Offset-1)
			return nil
		case !backward && p.Offset < len(runes):
			w := Writable(tx, t)
			w.text = string(runes[:p.Offset]) + string(runes[p.Offset+1:])
			tx.afterCharDelete(w, p.Offset)
			return nil
		}
	}

	block, ok := tx.blockOfPoint(p)
	if !ok {
		return nil
	}
	leaves := tx.Leaves(block.Key())
	if adj := tx.adjacentLeaf(leaves, p, backward); adj != nil {
		switch v := adj.(type) {
		case *TextNode:
			if backward {
				tx.SetSelection(NewCaret(TextPoint(v.Key(), v.Len())))
			} else {
				tx.SetSelection(NewCaret(TextPoint(v.Key(), 0)))
			}
			return tx.DeleteCharacter(backward)
		default:
			tx.SetSelection(NewNodeSelection(v.Key()))
			return nil
		}
	}
	return tx.mergeBlock(block, backward)
}

func (tx *Tx) afterCharDelete(t *TextNode, offset int) {
	if t.text == "" {
		block, _ := tx.BlockOf(t.Key())
		prev := tx.PrevSibling(t.Key())
		_ = tx.Remove(t)
		switch {
		case prev != nil:
			tx.SelectEnd(prev)
		case block != nil:
			tx.SelectStart(block)
		}
		return
	}
	tx.SetSelection(NewCaret(TextPoint(t.Key(), offset)))
}

// adjacentLeaf returns the leaf of the block right before (backward) or
// after p, or nil at the block edge.
func (tx *Tx) adjacentLeaf(leaves []Node, p Point, backward bool) Node {
	if backward {
		for i := len(leaves) - 1; i >= 0; i-- {
			l := leaves[i]
			if l.Key() == p.Key {
				continue
			}
			if tx.ComparePoints(tx.edgePoint(l, true), p) <= 0 {
				return l
			}
		}
		return nil
	}
	for _, l := range leaves {
		if l.Key() == p.Key {
			continue
		}
		if tx.ComparePoints(tx.edgePoint(l, false), p) >= 0 {
			return l
		}
	}
	return nil
}

// mergeBlock joins block with its previous (backward) or next neighbour,
// climbing out of containers at their edges. A decorator neighbour is selected instead.
func (tx *Tx) mergeBlock(block ElementNode, backward bool) error {
	var other Node
	for cur := Node(block); cur != nil && cur.Key() != RootKey; {
		if backward {
			other = tx.PrevSibling(cur.Key())
		} else {
			other = tx.NextSibling(cur.Key())
		}
		if other != nil || cur.Parent() == RootKey {
			break
		}
		cur = tx.ParentNode(cur)
	}
	if other == nil {
		return nil
	}
	if !IsElement(other) {
		tx.SetSelection(NewNodeSelection(other.Key()))
		return nil
	}
	first, second := other, Node(block)
	if !backward {
		first, second = block, other
	}
	firstBlock := tx.lastBlock(first.(ElementNode))
	secondBlock := tx.firstBlock(second.(ElementNode))
	if tx.isEmptyBlock(firstBlock) && backward {
		if err := tx.Remove(firstBlock); err != nil {
			return err
		}
		tx.pruneEmptyAncestors(firstBlock.Parent())
		tx.SelectStart(secondBlock)
		return nil
	}
	caret := tx.edgePoint(firstBlock, true)
	if err := tx.Append(firstBlock, tx.Children(secondBlock.Key())...); err != nil {
		return err
	}
	parent := secondBlock.Parent()
	if err := tx.Remove(secondBlock); err != nil {
		return err
	}
	tx.pruneEmptyAncestors(parent)
	tx.SetSelection(NewCaret(caret))
	if !tx.validPoint(caret) {
		tx.SelectEnd(firstBlock)
	}
	return nil
}

// lastBlock descends into the last child while it is a block element.
func (tx *Tx) lastBlock(el ElementNode) ElementNode {
	for {
		children := tx.Children(el.Key())
		if len(children) == 0 {
			return el
		}
		c, ok := children[len(children)-1].(ElementNode)
		if !ok || c.IsInline() {
			return el
		}
		el = c
	}
}

func (tx *Tx) firstBlock(el ElementNode) ElementNode {
	for {
		children := tx.Children(el.Key())
		if len(children) == 0 {
			return el
		}
		c, ok := children[0].(ElementNode)
		if !ok || c.IsInline() {
			return el
		}
		el = c
	}
}

// SelectedText returns the text nodes covered by a range selection, split at
// the range edges, and narrows the selection to exactly those nodes.
func (tx *Tx) SelectedText() []*TextNode {
	sel, ok := tx.RangeSelection()
	if !ok || sel.IsCollapsed() {
		return nil
	}
	start, end := tx.Bounds(sel)
	var ranges []span
	for _, l := range tx.SelectedNodes(sel) {
		t, ok := l.(*TextNode)
		if !ok {
			continue
		}
		a, b := 0, t.Len()
		if start.Key == t.Key() && start.Type == PointText {
			a = start.Offset
		}
		if end.Key == t.Key() && end.Type == PointText {
			b = end.Offset
		}
		if a >= b {
			continue
		}
		ranges = append(ranges, span{t, a, b})
	}
	var out []*TextNode
	for _, r := range ranges {
		cur := r.node
		if r.b < cur.Len() {
			left, _, err := tx.SplitText(cur, r.b)
			if err != nil || left == nil {
				continue
			}
			cur = left
		}
		if r.a > 0 {
			_, right, err := tx.SplitText(cur, r.a)
			if err != nil || right == nil {
				continue
			}
			cur = right
		}
		out = append(out, Writable(tx, cur))
	}
	if len(out) > 0 {
		first, last := out[0], out[len(out)-1]
		backward := tx.ComparePoints(sel.Anchor, sel.Focus) > 0
		from, to := TextPoint(first.Key(), 0), TextPoint(last.Key(), last.Len())
		if backward {
			from, to = to, from
		}
		tx.selection = &RangeSelection{Anchor: from, Focus: to, Format: sel.Format, Style: sel.Style}
	}
	return out
}

// FormatText toggles the named format. On a range, the first covered text
// node decides whether the format is added to or removed from all of them;
// on a caret, it toggles the format of the next typed text.
func (tx *Tx) FormatText(name string) {
	tx.checkOpen()
	f, ok := ParseTextFormat(name)
	if !ok {
		return
	}
	sel, ok := tx.RangeSelection()
	if !ok {
		return
	}
	if sel.IsCollapsed() {
		sel.Format ^= f
		return
	}
	texts := tx.SelectedText()
	if len(texts) == 0 {
		return
	}
	set := !texts[0].format.Has(f)
	for _, t := range texts {
		if set {
			t.format |= f
		} else {
			t.format &^= f
		}
	}
	if sel, ok := tx.RangeSelection(); ok {
		sel.Format = texts[0].format
	}
}

// PatchStyleText sets CSS properties on the selected text. An empty value
// removes the property. On a caret the patch applies to the next typed text.
func (tx *Tx) PatchStyleText(patch map[string]string) {
	tx.checkOpen()
	sel, ok := tx.RangeSelection()
	if !ok {
		return
	}
	if sel.IsCollapsed() {
		base := sel.Style
		if base == "" {
			if t, ok := tx.nodes[sel.Focus.Key].(*TextNode); ok {
				base = t.style
			}
		}
		sel.Style = PatchStyle(base, patch)
		return
	}
	for _, t := range tx.SelectedText() {
		t.style = PatchStyle(t.style, patch)
	}
}

// FormatElement sets the alignment of the blocks touched by the selection.
func (tx *Tx) FormatElement(align string) {
	tx.checkOpen()
	for _, b := range tx.selectedBlocks() {
		Writable(tx, b).element().format = align
	}
}

// Indent changes the indentation of the selected blocks by delta.
func (tx *Tx) Indent(delta int) {
	tx.checkOpen()
	for _, b := range tx.selectedBlocks() {
		w := Writable(tx, b)
		w.element().SetIndent(w.element().indent + delta)
	}
}

func (tx *Tx) selectedBlocks() []ElementNode {
	var out []ElementNode
	seen := map[NodeKey]bool{}
	add := func(key NodeKey) {
		b, ok := tx.blockOfPoint(Point{Key: key, Type: PointText})
		if ok && b.Key() != RootKey && !seen[b.Key()] {
			seen[b.Key()] = true
			out = append(out, b)
		}
	}
	switch sel := tx.selection.(type) {
	case *RangeSelection:
		if sel.IsCollapsed() {
			if b, ok := tx.blockOfPoint(sel.Focus); ok && b.Key() != RootKey {
				out = append(out, b)
			}
			return out
		}
		for _, n := range tx.SelectedNodes(sel) {
			add(n.Key())
		}
	case *NodeSelection:
		for _, k := range sel.Keys() {
			add(k)
		}
	}
	return out
}
