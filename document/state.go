package document

import (
	"strings"
)

// State is an immutable snapshot of the document and its selection.
// Snapshots returned by an Editor are never modified; transactions work on a
// private copy.
type State struct {
	nodes     map[NodeKey]Node
	selection Selection
}

func newEmptyState() *State {
	root := &RootNode{}
	root.key = RootKey
	return &State{nodes: map[NodeKey]Node{RootKey: root}}
}

func (s *State) copy() *State {
	nodes := make(map[NodeKey]Node, len(s.nodes))
	for k, n := range s.nodes {
		nodes[k] = n
	}
	return &State{nodes: nodes, selection: cloneSelection(s.selection)}
}

// Root returns the root node.
func (s *State) Root() *RootNode {
	return s.nodes[RootKey].(*RootNode)
}

// Node returns the node for key.
func (s *State) Node(key NodeKey) (Node, bool) {
	n, ok := s.nodes[key]
	return n, ok
}

// Len returns the number of nodes, the root included.
func (s *State) Len() int { return len(s.nodes) }

// Selection returns a copy of the selection, or nil.
func (s *State) Selection() Selection { return cloneSelection(s.selection) }

// Children returns the children of the element key in order.
func (s *State) Children(key NodeKey) []Node {
	el, ok := s.element(key)
	if !ok {
		return nil
	}
	out := make([]Node, 0, len(el.element().children))
	for _, k := range el.element().children {
		if n, ok := s.nodes[k]; ok {
			out = append(out, n)
		}
	}
	return out
}

func (s *State) element(key NodeKey) (ElementNode, bool) {
	n, ok := s.nodes[key]
	if !ok {
		return nil, false
	}
	el, ok := n.(ElementNode)
	return el, ok
}

// ParentNode returns the parent of n, or nil for the root and detached nodes.
func (s *State) ParentNode(n Node) ElementNode {
	if n == nil || n.Parent() == "" {
		return nil
	}
	el, _ := s.element(n.Parent())
	return el
}

// IndexOf returns the position of key within its parent, or -1.
func (s *State) IndexOf(key NodeKey) int {
	n, ok := s.nodes[key]
	if !ok {
		return -1
	}
	parent := s.ParentNode(n)
	if parent == nil {
		return -1
	}
	for i, k := range parent.element().children {
		if k == key {
			return i
		}
	}
	return -1
}

// PrevSibling returns the sibling before key.
func (s *State) PrevSibling(key NodeKey) Node {
	return s.sibling(key, -1)
}

// NextSibling returns the sibling after key.
func (s *State) NextSibling(key NodeKey) Node {
	return s.sibling(key, 1)
}

func (s *State) sibling(key NodeKey, delta int) Node {
	n, ok := s.nodes[key]
	if !ok {
		return nil
	}
	parent := s.ParentNode(n)
	i := s.IndexOf(key)
	if parent == nil || i < 0 {
		return nil
	}
	j := i + delta
	children := parent.element().children
	if j < 0 || j >= len(children) {
		return nil
	}
	return s.nodes[children[j]]
}

// IsAttached reports whether key is reachable from the root.
func (s *State) IsAttached(key NodeKey) bool {
	for key != "" {
		if key == RootKey {
			return true
		}
		n, ok := s.nodes[key]
		if !ok {
			return false
		}
		key = n.Parent()
	}
	return false
}

// TopLevelElement returns the ancestor of key that is a direct child of the
// root, or key itself when it already is one.
func (s *State) TopLevelElement(key NodeKey) (Node, bool) {
	n, ok := s.nodes[key]
	if !ok || key == RootKey {
		return nil, false
	}
	for n.Parent() != RootKey {
		p, ok := s.nodes[n.Parent()]
		if !ok {
			return nil, false
		}
		n = p
	}
	return n, true
}

// FindMatchingParent walks from key upward (key included) and returns the
// first node for which match is true.
func (s *State) FindMatchingParent(key NodeKey, match func(Node) bool) (Node, bool) {
	for key != "" {
		n, ok := s.nodes[key]
		if !ok {
			return nil, false
		}
		if match(n) {
			return n, true
		}
		key = n.Parent()
	}
	return nil, false
}

// BlockOf returns the nearest non-inline ancestor of key (key excluded).
func (s *State) BlockOf(key NodeKey) (ElementNode, bool) {
	n, ok := s.nodes[key]
	if !ok {
		return nil, false
	}
	for n.Parent() != "" {
		p, ok := s.element(n.Parent())
		if !ok {
			return nil, false
		}
		if !p.IsInline() {
			return p, true
		}
		n = p
	}
	return nil, false
}

// Walk visits key and its descendants in document order. Returning false
// from fn skips the node's children.
func (s *State) Walk(key NodeKey, fn func(n Node, depth int) bool) {
	s.walk(key, 0, fn)
}

func (s *State) walk(key NodeKey, depth int, fn func(Node, int) bool) {
	n, ok := s.nodes[key]
	if !ok {
		return
	}
	if !fn(n, depth) {
		return
	}
	if el, ok := n.(ElementNode); ok {
		for _, k := range el.element().children {
			s.walk(k, depth+1, fn)
		}
	}
}

// Leaves returns the text and decorator nodes under key in document order.
func (s *State) Leaves(key NodeKey) []Node {
	var out []Node
	s.Walk(key, func(n Node, _ int) bool {
		if !IsElement(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// TextContent returns the plain text under key. Blocks are separated by
// blank lines, as the host framework does.
func (s *State) TextContent(key NodeKey) string {
	n, ok := s.nodes[key]
	if !ok {
		return ""
	}
	switch v := n.(type) {
	case *TextNode:
		return v.text
	case ElementNode:
		var sb strings.Builder
		children := v.element().children
		for i, k := range children {
			c := s.nodes[k]
			sb.WriteString(s.TextContent(k))
			if i < len(children)-1 && c != nil && !IsInline(c) {
				sb.WriteString("\n\n")
			}
		}
		return sb.String()
	}
	return ""
}

// Nodes returns every attached node of type typ in document order.
func (s *State) Nodes(typ string) []Node {
	var out []Node
	s.Walk(RootKey, func(n Node, _ int) bool {
		if n.Type() == typ {
			out = append(out, n)
		}
		return true
	})
	return out
}

// path returns the child indices leading from the root to key.
func (s *State) path(key NodeKey) []int {
	var rev []int
	for key != RootKey {
		i := s.IndexOf(key)
		if i < 0 {
			return nil
		}
		rev = append(rev, i)
		key = s.nodes[key].Parent()
	}
	out := make([]int, len(rev))
	for i := range rev {
		out[i] = rev[len(rev)-1-i]
	}
	return out
}

func (s *State) pointPath(p Point) []int {
	base := s.path(p.Key)
	if p.Key != RootKey && base == nil {
		return nil
	}
	if p.Type == PointElement {
		return append(base, p.Offset, -1)
	}
	return append(base, p.Offset)
}

// ComparePoints orders a and b in the document: -1, 0 or 1.
func (s *State) ComparePoints(a, b Point) int {
	pa, pb := s.pointPath(a), s.pointPath(b)
	for i := 0; i < len(pa) && i < len(pb); i++ {
		if pa[i] < pb[i] {
			return -1
		}
		if pa[i] > pb[i] {
			return 1
		}
	}
	switch {
	case len(pa) < len(pb):
		return -1
	case len(pa) > len(pb):
		return 1
	}
	return 0
}

// Bounds returns the selection endpoints in document order.
func (s *State) Bounds(sel *RangeSelection) (start, end Point) {
	if s.ComparePoints(sel.Anchor, sel.Focus) <= 0 {
		return sel.Anchor, sel.Focus
	}
	return sel.Focus, sel.Anchor
}

// SelectedNodes returns the leaves touched by sel in document order. A
// collapsed caret inside a text node yields that node.
func (s *State) SelectedNodes(sel *RangeSelection) []Node {
	start, end := s.Bounds(sel)
	var out []Node
	for _, l := range s.Leaves(RootKey) {
		l0 := TextPoint(l.Key(), 0)
		l1 := TextPoint(l.Key(), leafLen(l))
		if s.ComparePoints(l1, start) < 0 || s.ComparePoints(l0, end) > 0 {
			continue
		}
		out = append(out, l)
	}
	return out
}

func leafLen(n Node) int {
	if t, ok := n.(*TextNode); ok {
		return t.Len()
	}
	return 0
}

// SelectionText returns the plain text covered by sel. Blocks are separated
// by a newline.
func (s *State) SelectionText(sel *RangeSelection) string {
	if sel == nil || sel.IsCollapsed() {
		return ""
	}
	start, end := s.Bounds(sel)
	var (
		sb        strings.Builder
		lastBlock NodeKey
	)
	for _, n := range s.SelectedNodes(sel) {
		t, ok := n.(*TextNode)
		if !ok {
			continue
		}
		runes := []rune(t.text)
		a, b := 0, len(runes)
		if start.Key == t.Key() && start.Type == PointText {
			a = start.Offset
		}
		if end.Key == t.Key() && end.Type == PointText {
			b = end.Offset
		}
		if a >= b {
			continue
		}
		if block, ok := s.BlockOf(t.Key()); ok {
			if lastBlock != "" && block.Key() != lastBlock {
				sb.WriteByte('\n')
			}
			lastBlock = block.Key()
		}
		sb.WriteString(string(runes[a:b]))
	}
	return sb.String()
}
