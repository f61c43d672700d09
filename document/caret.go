package document

// stop is one position the caret can rest on.
type stop struct {
	point Point
	node  NodeKey // set for decorators, which are selected whole
	block NodeKey
}

func (s stop) selection() Selection {
	if s.node != "" {
		return NewNodeSelection(s.node)
	}
	return NewCaret(s.point)
}

// stops lists caret positions in document order: every text offset (shared
// edges of adjacent text nodes counted once), every decorator, and every
// empty block.
func (s *State) stops() []stop {
	var out []stop
	var walk func(key NodeKey, block NodeKey)
	walk = func(key NodeKey, block NodeKey) {
		n, ok := s.nodes[key]
		if !ok {
			return
		}
		switch v := n.(type) {
		case *TextNode:
			first := 0
			if len(out) > 0 {
				last := out[len(out)-1]
				if last.block == block && last.node == "" && last.point.Type == PointText {
					first = 1
				}
			}
			for i := first; i <= v.Len(); i++ {
				out = append(out, stop{point: TextPoint(v.Key(), i), block: block})
			}
		case ElementNode:
			if !v.IsInline() && key != RootKey {
				block = key
			}
			children := v.element().children
			if len(children) == 0 && !v.IsInline() && key != RootKey {
				out = append(out, stop{point: ElementPoint(key, 0), block: key})
				return
			}
			for _, c := range children {
				walk(c, block)
			}
		default:
			b := block
			if !IsInline(n) {
				b = key
			}
			out = append(out, stop{point: ElementPoint(n.Parent(), s.IndexOf(key)), node: key, block: b})
		}
	}
	walk(RootKey, "")
	return out
}

// stopIndex returns the stop matching p, or the last stop before it.
func (s *State) stopIndex(stops []stop, p Point) int {
	best := -1
	for i, st := range stops {
		if st.node == "" && st.point == p {
			return i
		}
		if s.ComparePoints(st.point, p) <= 0 {
			best = i
		}
	}
	if best < 0 && len(stops) > 0 {
		return 0
	}
	return best
}

func (s *State) currentStop(stops []stop) int {
	switch sel := s.selection.(type) {
	case *RangeSelection:
		return s.stopIndex(stops, sel.Focus)
	case *NodeSelection:
		keys := sel.Keys()
		if len(keys) == 0 {
			return -1
		}
		last := keys[len(keys)-1]
		for i, st := range stops {
			if st.node == last {
				return i
			}
		}
	}
	return -1
}

// MoveCaret moves the caret one stop in dir. Left and right step through
// characters and select decorators whole; up and down jump to the same
// offset in the neighbouring block. With extend, the focus moves and the
// anchor stays, which only applies to text positions.
func (tx *Tx) MoveCaret(dir Direction, extend bool) {
	tx.checkOpen()
	stops := tx.stops()
	if len(stops) == 0 {
		return
	}
	cur := tx.currentStop(stops)
	if cur < 0 {
		tx.SetSelection(stops[0].selection())
		return
	}
	next := cur
	switch dir {
	case DirLeft:
		next = max(cur-1, 0)
	case DirRight:
		next = min(cur+1, len(stops)-1)
	case DirUp, DirDown:
		next = tx.verticalStop(stops, cur, dir == DirUp)
	}
	target := stops[next]
	if extend && target.node == "" {
		if sel, ok := tx.RangeSelection(); ok {
			tx.selection = &RangeSelection{Anchor: sel.Anchor, Focus: target.point, Format: sel.Format, Style: sel.Style}
			return
		}
	}
	tx.SetSelection(target.selection())
}

func (tx *Tx) verticalStop(stops []stop, cur int, up bool) int {
	block := stops[cur].block
	start := cur
	for start > 0 && stops[start-1].block == block {
		start--
	}
	col := cur - start
	if up {
		if start == 0 {
			return 0
		}
		prevBlock := stops[start-1].block
		first := start - 1
		for first > 0 && stops[first-1].block == prevBlock {
			first--
		}
		return min(first+col, start-1)
	}
	end := cur
	for end < len(stops)-1 && stops[end+1].block == block {
		end++
	}
	if end == len(stops)-1 {
		return end
	}
	nextBlock := stops[end+1].block
	last := end + 1
	for last < len(stops)-1 && stops[last+1].block == nextBlock {
		last++
	}
	return min(end+1+col, last)
}
