package editor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bitbriks/bitbrik/document"
	"github.com/bitbriks/bitbrik/internal/grapheme"
	"github.com/bitbriks/bitbrik/nodes"
)

// cell is one rendered unit: a grapheme cluster of a text node, a marker,
// padding, or a whole line of decorator output.
type cell struct {
	text  string
	width int
	style lipgloss.Style
	// raw cells are written as is; their text is already styled.
	raw bool

	key document.NodeKey
	// offset is the rune offset of a text cluster, -1 for other cells.
	offset int
	runes  int

	space bool
	caret bool
}

type row struct {
	// block is the element or decorator the row belongs to.
	block document.NodeKey
	cells []cell
}

func (r row) width() int {
	w := 0
	for _, c := range r.cells {
		w += c.width
	}
	return w
}

func (r row) String() string {
	var sb strings.Builder
	for _, c := range r.cells {
		if c.raw {
			sb.WriteString(c.text)
			continue
		}
		sb.WriteString(c.style.Render(c.text))
	}
	return sb.String()
}

// layout is the rendered document.
type layout struct {
	rows     []row
	lines    []string
	caretRow int
	nodeRows map[document.NodeKey][2]int
}

func (l *layout) rowsOf(s *document.State, key document.NodeKey) (int, int, bool) {
	if r, ok := l.nodeRows[key]; ok {
		return r[0], r[1], true
	}
	first, last, found := 0, 0, false
	for _, leaf := range s.Leaves(key) {
		r, ok := l.nodeRows[leaf.Key()]
		if !ok {
			continue
		}
		if !found || r[0] < first {
			first = r[0]
		}
		if !found || r[1] > last {
			last = r[1]
		}
		found = true
	}
	return first, last, found
}

func padCell(key document.NodeKey, n int) cell {
	return cell{text: strings.Repeat(" ", n), width: n, key: key, offset: -1, space: true}
}

func markerCell(key document.NodeKey, text string, st lipgloss.Style) cell {
	return cell{text: text, width: grapheme.Width(text), style: st, key: key, offset: -1}
}

func prefixRows(rows []row, first, rest []cell) []row {
	for i := range rows {
		p := rest
		if i == 0 {
			p = first
		}
		rows[i].cells = append(append([]cell(nil), p...), rows[i].cells...)
	}
	return rows
}

// builder renders one state.
type builder struct {
	s       *document.State
	style   Style
	comps   *componentSet
	focused bool

	caret    document.Point
	hasCaret bool
	selStart document.Point
	selEnd   document.Point
	hasRange bool
	nodeSel  *document.NodeSelection
}

func newBuilder(s *document.State, style Style, comps *componentSet, focused bool) *builder {
	b := &builder{s: s, style: style, comps: comps, focused: focused}
	switch sel := s.Selection().(type) {
	case *document.RangeSelection:
		if sel.IsCollapsed() {
			b.caret, b.hasCaret = sel.Focus, focused
		} else {
			b.selStart, b.selEnd = s.Bounds(sel)
			b.hasRange = true
		}
	case *document.NodeSelection:
		b.nodeSel = sel
	}
	return b
}

func (b *builder) build(width int, placeholder string) layout {
	var rows []row
	for _, n := range b.s.Children(document.RootKey) {
		rows = append(rows, b.block(n, width)...)
	}
	if placeholder != "" && b.isEmpty() && len(rows) > 0 {
		rows[0].cells = append(rows[0].cells, markerCell(rows[0].block, placeholder, b.style.Placeholder))
	}
	l := layout{rows: rows, caretRow: -1, nodeRows: make(map[document.NodeKey][2]int)}
	mark := func(k document.NodeKey, i int) {
		if k == "" {
			return
		}
		r, ok := l.nodeRows[k]
		if !ok {
			r = [2]int{i, i}
		}
		r[1] = i
		l.nodeRows[k] = r
	}
	for i, r := range rows {
		mark(r.block, i)
		for _, c := range r.cells {
			mark(c.key, i)
			if c.caret && l.caretRow < 0 {
				l.caretRow = i
			}
		}
		l.lines = append(l.lines, r.String())
	}
	return l
}

func (b *builder) isEmpty() bool {
	children := b.s.Children(document.RootKey)
	if len(children) != 1 || !document.IsParagraph(children[0]) {
		return false
	}
	return len(b.s.Children(children[0].Key())) == 0
}

// block renders a block-level node into rows of at most width cells.
func (b *builder) block(n document.Node, width int) []row {
	indent := 0
	if in, ok := n.(interface{ Indent() int }); ok {
		indent = min(in.Indent()*2, max(width-1, 0))
	}
	width -= indent

	var rows []row
	switch n := n.(type) {
	case document.DecoratorNode:
		rows = b.decoratorRows(n, width)
	case *nodes.HeadingNode:
		marker := strings.Repeat("#", n.Level()) + " "
		rows = b.flow(n, b.s.Children(n.Key()), width-len(marker), b.style.Heading)
		pad := padCell(n.Key(), len(marker))
		rows = prefixRows(rows, []cell{markerCell(n.Key(), marker, b.style.ListMarker)}, []cell{pad})
	case *nodes.QuoteNode:
		rows = b.flow(n, b.s.Children(n.Key()), width-2, b.style.Quote)
		bar := markerCell(n.Key(), "│ ", b.style.QuoteBar)
		rows = prefixRows(rows, []cell{bar}, []cell{bar})
	case *nodes.ListNode:
		rows = b.list(n, width)
	case *nodes.TableNode:
		rows = b.table(n, width)
	case document.ElementNode:
		rows = b.container(n, width, b.style.Text)
	default:
		rows = []row{{block: n.Key(), cells: []cell{markerCell(n.Key(), fmt.Sprintf("[%s]", n.Type()), b.style.Fallback)}}}
	}

	if f, ok := n.(interface{ Format() string }); ok {
		align(rows, f.Format(), width)
	}
	if indent > 0 {
		pad := padCell(n.Key(), indent)
		rows = prefixRows(rows, []cell{pad}, []cell{pad})
	}
	return rows
}

func align(rows []row, format string, width int) {
	if width <= 0 || (format != "center" && format != "right" && format != "end") {
		return
	}
	for i := range rows {
		free := width - rows[i].width()
		if format == "center" {
			free /= 2
		}
		if free > 0 {
			rows[i].cells = append([]cell{padCell(rows[i].block, free)}, rows[i].cells...)
		}
	}
}

// container renders an element whose children may mix inline runs and
// nested blocks.
func (b *builder) container(el document.ElementNode, width int, base lipgloss.Style) []row {
	children := b.s.Children(el.Key())
	var rows []row
	start := 0
	flush := func(end int) {
		if end > start || len(rows) == 0 && end == len(children) {
			rows = append(rows, b.flowRange(el, children, start, end, width, base)...)
		}
	}
	for i, c := range children {
		if document.IsInline(c) {
			continue
		}
		flush(i)
		rows = append(rows, b.block(c, width)...)
		start = i + 1
	}
	flush(len(children))
	return rows
}

func (b *builder) flow(el document.ElementNode, children []document.Node, width int, base lipgloss.Style) []row {
	return b.flowRange(el, children, 0, len(children), width, base)
}

// inlineRun collects the cells of one wrapped paragraph-like run.
type inlineRun struct {
	b       *builder
	block   document.NodeKey
	width   int
	cells   []cell
	rows    []row
	pending bool
}

func (r *inlineRun) add(c cell) {
	if r.pending {
		r.pending = false
		if c.raw {
			r.cells = append(r.cells, r.caretCell())
		} else {
			c.style = r.b.style.Cursor.Inherit(c.style)
			c.caret = true
		}
	}
	r.cells = append(r.cells, c)
}

func (r *inlineRun) caretCell() cell {
	return cell{text: " ", width: 1, style: r.b.style.Cursor, key: r.block, offset: -1, caret: true}
}

func (r *inlineRun) flush() {
	if len(r.cells) == 0 {
		return
	}
	for _, line := range wrapCells(r.cells, r.width) {
		r.rows = append(r.rows, row{block: r.block, cells: line})
	}
	r.cells = nil
}

func (r *inlineRun) finish() []row {
	if r.pending {
		r.pending = false
		r.cells = append(r.cells, r.caretCell())
	}
	r.flush()
	if len(r.rows) == 0 {
		r.rows = append(r.rows, row{block: r.block})
	}
	return r.rows
}

func (b *builder) flowRange(el document.ElementNode, children []document.Node, lo, hi, width int, base lipgloss.Style) []row {
	run := &inlineRun{b: b, block: el.Key(), width: width}
	for i := lo; i < hi; i++ {
		b.checkElementCaret(run, el.Key(), i)
		b.inline(run, children[i], base)
	}
	b.checkElementCaret(run, el.Key(), hi)
	return run.finish()
}

func (b *builder) checkElementCaret(run *inlineRun, key document.NodeKey, idx int) {
	if b.hasCaret && b.caret == document.ElementPoint(key, idx) {
		run.pending = true
	}
}

func (b *builder) inline(run *inlineRun, n document.Node, base lipgloss.Style) {
	switch n := n.(type) {
	case *document.TextNode:
		b.text(run, n, base)
	case document.DecoratorNode:
		lines := b.decoratorRows(n, run.width)
		if len(lines) == 1 {
			for _, c := range lines[0].cells {
				run.add(c)
			}
			return
		}
		run.flush()
		run.rows = append(run.rows, lines...)
	case document.ElementNode:
		st := base
		if _, ok := n.(*nodes.LinkNode); ok {
			st = b.style.Link.Inherit(base)
		}
		children := b.s.Children(n.Key())
		for i, c := range children {
			b.checkElementCaret(run, n.Key(), i)
			b.inline(run, c, st)
		}
		b.checkElementCaret(run, n.Key(), len(children))
	}
}

func (b *builder) text(run *inlineRun, t *document.TextNode, base lipgloss.Style) {
	st := b.textStyle(t, base)
	lo, hi := b.selectedRunes(t)
	offset := 0
	for _, cluster := range grapheme.Split(t.Text()) {
		n := len([]rune(cluster))
		c := cell{
			text:   cluster,
			width:  grapheme.Width(cluster),
			style:  st,
			key:    t.Key(),
			offset: offset,
			runes:  n,
			space:  grapheme.IsSpace(cluster),
		}
		if offset >= lo && offset < hi {
			c.style = b.style.Selection.Inherit(st)
		}
		if b.hasCaret && b.caret == document.TextPoint(t.Key(), offset) {
			run.pending = true
		}
		run.add(c)
		offset += n
	}
	if b.hasCaret && b.caret == document.TextPoint(t.Key(), offset) {
		run.pending = true
	}
}

func (b *builder) textStyle(t *document.TextNode, base lipgloss.Style) lipgloss.Style {
	st := base
	f := t.Format()
	if f.Has(document.FormatBold) {
		st = st.Bold(true)
	}
	if f.Has(document.FormatItalic) {
		st = st.Italic(true)
	}
	if f.Has(document.FormatUnderline) {
		st = st.Underline(true)
	}
	if f.Has(document.FormatStrikethrough) {
		st = st.Strikethrough(true)
	}
	if f.Has(document.FormatCode) {
		st = b.style.Code.Inherit(st)
	}
	if f.Has(document.FormatHighlight) {
		st = b.style.Highlight.Inherit(st)
	}
	for _, d := range document.ParseStyle(t.Style()) {
		if !strings.HasPrefix(d.Value, "#") {
			continue
		}
		switch d.Property {
		case "color":
			st = st.Foreground(lipgloss.Color(d.Value))
		case "background-color":
			st = st.Background(lipgloss.Color(d.Value))
		}
	}
	return st
}

// selectedRunes returns the half-open rune range of t inside the range
// selection.
func (b *builder) selectedRunes(t *document.TextNode) (int, int) {
	if !b.hasRange {
		return 0, 0
	}
	n := t.Len()
	if b.s.ComparePoints(document.TextPoint(t.Key(), 0), b.selEnd) >= 0 ||
		b.s.ComparePoints(document.TextPoint(t.Key(), n), b.selStart) <= 0 {
		return 0, 0
	}
	lo, hi := 0, n
	if b.selStart.Key == t.Key() && b.selStart.Type == document.PointText {
		lo = b.selStart.Offset
	}
	if b.selEnd.Key == t.Key() && b.selEnd.Type == document.PointText {
		hi = b.selEnd.Offset
	}
	return lo, hi
}

func (b *builder) decoratorRows(n document.DecoratorNode, width int) []row {
	if width <= 0 {
		width = 80
	}
	out := b.comps.view(n, width)
	lines := strings.Split(out, "\n")
	selected := b.nodeSel != nil && b.nodeSel.Has(n.Key())
	rows := make([]row, 0, len(lines))
	for _, line := range lines {
		if selected && len(lines) == 1 {
			line = b.style.NodeSelected.Render(line)
		}
		c := cell{text: line, width: lipgloss.Width(line), raw: true, key: n.Key(), offset: -1}
		rows = append(rows, row{block: n.Key(), cells: []cell{c}})
	}
	return rows
}

func (b *builder) list(l *nodes.ListNode, width int) []row {
	var rows []row
	number := l.Start()
	for _, item := range b.s.Children(l.Key()) {
		li, ok := item.(*nodes.ListItemNode)
		if !ok {
			rows = append(rows, b.block(item, width)...)
			continue
		}
		// An item holding only a nested list renders without a marker.
		if kids := b.s.Children(li.Key()); len(kids) == 1 {
			if _, nested := kids[0].(*nodes.ListNode); nested {
				rows = append(rows, prefixRows(b.block(kids[0], width-2), []cell{padCell(li.Key(), 2)}, []cell{padCell(li.Key(), 2)})...)
				continue
			}
		}
		var marker string
		switch l.ListType() {
		case nodes.ListNumber:
			marker = fmt.Sprintf("%d. ", number)
			number++
		case nodes.ListCheck:
			marker = "[ ] "
			if li.Checked() {
				marker = "[x] "
			}
		default:
			marker = "• "
		}
		mw := grapheme.Width(marker)
		itemRows := b.container(li, width-mw, b.style.Text)
		rows = append(rows, prefixRows(itemRows,
			[]cell{markerCell(li.Key(), marker, b.style.ListMarker)},
			[]cell{padCell(li.Key(), mw)})...)
	}
	return rows
}

func (b *builder) table(t *nodes.TableNode, width int) []row {
	var grid [][]document.ElementNode
	cols := 0
	for _, r := range b.s.Children(t.Key()) {
		var line []document.ElementNode
		for _, c := range b.s.Children(r.Key()) {
			if el, ok := c.(document.ElementNode); ok {
				line = append(line, el)
			}
		}
		grid = append(grid, line)
		cols = max(cols, len(line))
	}
	if cols == 0 {
		return []row{{block: t.Key()}}
	}

	natural := make([]int, cols)
	for _, line := range grid {
		for j, c := range line {
			for _, part := range strings.Split(b.s.TextContent(c.Key()), "\n") {
				natural[j] = max(natural[j], grapheme.Width(part))
			}
		}
	}
	colW := tableWidths(natural, width-3*cols-1)

	border := func(l, m, r string) row {
		var sb strings.Builder
		sb.WriteString(l)
		for j, w := range colW {
			if j > 0 {
				sb.WriteString(m)
			}
			sb.WriteString(strings.Repeat("─", w+2))
		}
		sb.WriteString(r)
		return row{block: t.Key(), cells: []cell{markerCell(t.Key(), sb.String(), b.style.TableBorder)}}
	}

	rows := []row{border("┌", "┬", "┐")}
	for i, line := range grid {
		if i > 0 {
			rows = append(rows, border("├", "┼", "┤"))
		}
		rendered := make([][]row, cols)
		height := 1
		for j := range cols {
			if j >= len(line) {
				continue
			}
			base := b.style.Text
			if tc, ok := line[j].(*nodes.TableCellNode); ok && tc.Header() {
				base = base.Bold(true)
			}
			rendered[j] = b.container(line[j], colW[j], base)
			height = max(height, len(rendered[j]))
		}
		for y := range height {
			out := row{block: t.Key()}
			for j := range cols {
				owner := t.Key()
				if j < len(line) {
					owner = line[j].Key()
				}
				out.cells = append(out.cells, markerCell(owner, "│ ", b.style.TableBorder))
				used := 0
				if y < len(rendered[j]) {
					r := rendered[j][y]
					out.cells = append(out.cells, r.cells...)
					used = r.width()
				}
				if colW[j]-used > 0 {
					out.cells = append(out.cells, padCell(owner, colW[j]-used))
				}
				out.cells = append(out.cells, padCell(owner, 1))
			}
			out.cells = append(out.cells, markerCell(t.Key(), "│", b.style.TableBorder))
			rows = append(rows, out)
		}
	}
	return append(rows, border("└", "┴", "┘"))
}

// tableWidths shrinks natural column widths proportionally to fit avail.
// avail <= 0 keeps the natural widths.
func tableWidths(natural []int, avail int) []int {
	out := make([]int, len(natural))
	total := 0
	for i, w := range natural {
		out[i] = max(w, 3)
		total += out[i]
	}
	if avail <= 0 || total <= avail {
		return out
	}
	for i := range out {
		out[i] = max(out[i]*avail/total, 3)
	}
	return out
}
