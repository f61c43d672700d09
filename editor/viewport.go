package editor

import (
	"strings"
	"sync"

	"github.com/bitbriks/bitbrik/document"
)

// view is the render state shared by every copy of a Model.
type view struct {
	cfg   Config
	comps *componentSet

	state   *document.State
	width   int
	focused bool
	layout  layout

	// observed is the last state reported through OnChange.
	observed *document.State

	mu            sync.Mutex
	pendingScroll document.NodeKey
	changes       chan struct{}
	unlisten      func()
}

func newView(cfg Config) *view {
	v := &view{
		cfg:     cfg,
		changes: make(chan struct{}, 1),
	}
	v.comps = newComponentSet(cfg.Logger, func(n document.Node, err error) string {
		return cfg.Style.Fallback.Render("⚠ " + n.Type() + ": " + err.Error())
	})
	if cfg.Editor != nil {
		v.unlisten = cfg.Editor.RegisterUpdateListener(func(document.UpdateEvent) {
			select {
			case v.changes <- struct{}{}:
			default:
			}
		})
	}
	return v
}

// ensure re-renders when the committed state, the width or the focus
// changed since the last render. It reports whether it rendered.
func (v *view) ensure(width int, focused bool) bool {
	if v.cfg.Editor == nil {
		return false
	}
	s := v.cfg.Editor.State()
	if s == v.state && width == v.width && focused == v.focused && v.layout.nodeRows != nil {
		return false
	}
	v.comps.reconcile(v.cfg.Editor, s)
	v.state, v.width, v.focused = s, width, focused
	v.layout = newBuilder(s, v.cfg.Style, v.comps, focused).build(width, v.cfg.Placeholder)
	if v.observed != s {
		prev := v.observed
		v.observed = s
		if prev != nil && v.cfg.OnChange != nil {
			v.cfg.OnChange(buildChangeEvent(prev, s))
		}
	}
	return true
}

func (v *view) close() {
	if v.unlisten != nil {
		v.unlisten()
		v.unlisten = nil
	}
	v.comps.closeAll()
}

func (m Model) contentWidth() int {
	return m.viewport.Width - m.viewport.Style.GetHorizontalFrameSize()
}

func (m Model) contentHeight() int {
	return m.viewport.Height - m.viewport.Style.GetVerticalFrameSize()
}

// sync renders the latest committed state into the viewport. follow keeps
// the caret visible when it moved.
func (m *Model) sync(follow bool) {
	if m.v == nil {
		return
	}
	prevCaret := m.v.layout.caretRow
	if m.v.ensure(m.contentWidth(), m.focused) {
		m.viewport.SetContent(strings.Join(m.v.layout.lines, "\n"))
	}
	if key := m.v.takeScroll(); key != "" {
		m.scrollToNode(key)
		return
	}
	if follow || m.v.layout.caretRow != prevCaret {
		m.followCaret()
	}
}

func (v *view) takeScroll() document.NodeKey {
	v.mu.Lock()
	defer v.mu.Unlock()
	key := v.pendingScroll
	v.pendingScroll = ""
	return key
}

func (m *Model) followCaret() {
	row := m.v.layout.caretRow
	h := m.contentHeight()
	if row < 0 || h <= 0 {
		return
	}
	y := m.viewport.YOffset
	if row < y {
		m.viewport.SetYOffset(row)
		return
	}
	if row >= y+h {
		m.viewport.SetYOffset(row - h + 1)
	}
}

func (m *Model) scrollToNode(key document.NodeKey) bool {
	first, last, ok := m.v.layout.rowsOf(m.v.state, key)
	if !ok {
		return false
	}
	h := m.contentHeight()
	if h <= 0 {
		return false
	}
	mid := (first + last) / 2
	m.viewport.SetYOffset(max(mid-h/2, 0))
	return true
}

// ScrollToNode scrolls so that the rows of key are centered in the
// viewport. Unknown keys leave the viewport unchanged.
func (m Model) ScrollToNode(key document.NodeKey) Model {
	m.sync(false)
	m.scrollToNode(key)
	return m
}

// QueueScrollToNode asks the model to center key after its next update.
// It is safe to call on any copy of the model, for example from code that
// inserts a node outside the Bubble Tea loop.
func (m Model) QueueScrollToNode(key document.NodeKey) {
	if m.v == nil {
		return
	}
	m.v.mu.Lock()
	m.v.pendingScroll = key
	m.v.mu.Unlock()
	select {
	case m.v.changes <- struct{}{}:
	default:
	}
}

// YOffset returns the index of the first visible row.
func (m Model) YOffset() int { return m.viewport.YOffset }

// Rows returns the number of rendered rows.
func (m Model) Rows() int {
	if m.v == nil {
		return 0
	}
	return len(m.v.layout.rows)
}
