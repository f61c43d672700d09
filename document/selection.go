package document

// PointType tells whether a point addresses a text offset or a child index.
type PointType uint8

const (
	PointText PointType = iota
	PointElement
)

// Point is one end of a range selection. For PointText, Offset counts runes
// in the text node; for PointElement, Offset is a child index.
type Point struct {
	Key    NodeKey
	Offset int
	Type   PointType
}

// TextPoint addresses offset within text node key.
func TextPoint(key NodeKey, offset int) Point {
	return Point{Key: key, Offset: offset, Type: PointText}
}

// ElementPoint addresses the gap before child index offset of element key.
func ElementPoint(key NodeKey, offset int) Point {
	return Point{Key: key, Offset: offset, Type: PointElement}
}

// Selection is either a *RangeSelection or a *NodeSelection. A nil
// Selection means nothing is selected.
type Selection interface {
	Clone() Selection
	isSelection()
}

// RangeSelection is a caret (collapsed) or a text range between Anchor and
// Focus. Format and Style apply to text typed at a collapsed caret.
type RangeSelection struct {
	Anchor Point
	Focus  Point
	Format TextFormat
	Style  string
}

// NewRangeSelection returns a range selection between anchor and focus.
func NewRangeSelection(anchor, focus Point) *RangeSelection {
	return &RangeSelection{Anchor: anchor, Focus: focus}
}

// NewCaret returns a collapsed range selection at p.
func NewCaret(p Point) *RangeSelection { return &RangeSelection{Anchor: p, Focus: p} }

func (s *RangeSelection) isSelection() {}

func (s *RangeSelection) Clone() Selection {
	c := *s
	return &c
}

// IsCollapsed reports whether anchor and focus coincide.
func (s *RangeSelection) IsCollapsed() bool { return s.Anchor == s.Focus }

// NodeSelection selects whole nodes by key, independent of text offsets.
type NodeSelection struct {
	keys []NodeKey
}

// NewNodeSelection returns a node selection holding keys.
func NewNodeSelection(keys ...NodeKey) *NodeSelection {
	s := &NodeSelection{}
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

func (s *NodeSelection) isSelection() {}

func (s *NodeSelection) Clone() Selection {
	return &NodeSelection{keys: append([]NodeKey(nil), s.keys...)}
}

// Has reports whether key is selected.
func (s *NodeSelection) Has(key NodeKey) bool {
	for _, k := range s.keys {
		if k == key {
			return true
		}
	}
	return false
}

// Add selects key. Adding a selected key is a no-op.
func (s *NodeSelection) Add(key NodeKey) {
	if !s.Has(key) {
		s.keys = append(s.keys, key)
	}
}

// Delete deselects key.
func (s *NodeSelection) Delete(key NodeKey) {
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			return
		}
	}
}

// Clear deselects everything.
func (s *NodeSelection) Clear() { s.keys = nil }

// Keys returns the selected keys in selection order.
func (s *NodeSelection) Keys() []NodeKey { return append([]NodeKey(nil), s.keys...) }

func (s *NodeSelection) Len() int { return len(s.keys) }

// AsRange returns sel as a range selection.
func AsRange(sel Selection) (*RangeSelection, bool) {
	r, ok := sel.(*RangeSelection)
	return r, ok && r != nil
}

// AsNodeSelection returns sel as a node selection.
func AsNodeSelection(sel Selection) (*NodeSelection, bool) {
	n, ok := sel.(*NodeSelection)
	return n, ok && n != nil
}

// IsNodeSelected reports whether sel is a node selection containing key.
func IsNodeSelected(sel Selection, key NodeKey) bool {
	ns, ok := AsNodeSelection(sel)
	return ok && ns.Has(key)
}

func cloneSelection(sel Selection) Selection {
	if sel == nil {
		return nil
	}
	switch s := sel.(type) {
	case *RangeSelection:
		if s == nil {
			return nil
		}
	case *NodeSelection:
		if s == nil {
			return nil
		}
	}
	return sel.Clone()
}

func selectionEqual(a, b Selection) bool {
	ra, aRange := AsRange(a)
	rb, bRange := AsRange(b)
	if aRange || bRange {
		return aRange && bRange && *ra == *rb
	}
	na, aNode := AsNodeSelection(a)
	nb, bNode := AsNodeSelection(b)
	if aNode || bNode {
		if !aNode || !bNode || na.Len() != nb.Len() {
			return false
		}
		for _, k := range na.keys {
			if !nb.Has(k) {
				return false
			}
		}
		return true
	}
	return true
}
