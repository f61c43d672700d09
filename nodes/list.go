package nodes

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/net/html"

	"github.com/bitbriks/bitbrik/document"
)

// ListType is the marker style of a list.
type ListType string

const (
	ListBullet ListType = "bullet"
	ListNumber ListType = "number"
	ListCheck  ListType = "check"
)

// ListNode holds list items.
type ListNode struct {
	document.ElementBase
	listType ListType
	start    int
}

// NewList returns an empty list of the given type.
func NewList(t ListType) *ListNode {
	switch t {
	case ListBullet, ListNumber, ListCheck:
	default:
		t = ListBullet
	}
	return &ListNode{listType: t, start: 1}
}

func (n *ListNode) Type() string       { return "list" }
func (n *ListNode) IsInline() bool     { return false }
func (n *ListNode) ListType() ListType { return n.listType }
func (n *ListNode) Start() int         { return n.start }

func (n *ListNode) Tag() string {
	if n.listType == ListNumber {
		return "ol"
	}
	return "ul"
}

func (n *ListNode) Clone() document.Node {
	return &ListNode{ElementBase: n.CloneElement(), listType: n.listType, start: n.start}
}

type serializedList struct {
	document.SerializedElement
	ListType ListType `json:"listType"`
	Start    int      `json:"start"`
	Tag      string   `json:"tag"`
}

func (n *ListNode) ExportJSON() any {
	return serializedList{
		SerializedElement: n.SerializeElement("list"),
		ListType:          n.listType,
		Start:             n.start,
		Tag:               n.Tag(),
	}
}

func (n *ListNode) ExportDOM() (*html.Node, error) {
	el := document.NewElement(n.Tag())
	if n.listType == ListNumber && n.start != 1 {
		el.Attr = append(el.Attr, html.Attribute{Key: "start", Val: strconv.Itoa(n.start)})
	}
	if n.listType == ListCheck {
		el.Attr = append(el.Attr, html.Attribute{Key: "data-lexical-list-type", Val: "check"})
	}
	return el, nil
}

func (n *ListNode) UpdateDOM(prev document.Node) bool {
	p, ok := prev.(*ListNode)
	return !ok || p.Tag() != n.Tag()
}

// ListItemNode is one entry of a list.
type ListItemNode struct {
	document.ElementBase
	value   int
	checked bool
}

func NewListItem() *ListItemNode { return &ListItemNode{value: 1} }

func (n *ListItemNode) Type() string      { return "listitem" }
func (n *ListItemNode) IsInline() bool    { return false }
func (n *ListItemNode) Value() int        { return n.value }
func (n *ListItemNode) Checked() bool     { return n.checked }
func (n *ListItemNode) SetChecked(v bool) { n.checked = v }

func (n *ListItemNode) Clone() document.Node {
	return &ListItemNode{ElementBase: n.CloneElement(), value: n.value, checked: n.checked}
}

type serializedListItem struct {
	document.SerializedElement
	Value   int   `json:"value"`
	Checked *bool `json:"checked,omitempty"`
}

func (n *ListItemNode) ExportJSON() any {
	s := serializedListItem{SerializedElement: n.SerializeElement("listitem"), Value: n.value}
	if n.checked {
		s.Checked = &n.checked
	}
	return s
}

func (n *ListItemNode) ExportDOM() (*html.Node, error) {
	el := document.NewElement("li", html.Attribute{Key: "value", Val: strconv.Itoa(n.value)})
	if n.checked {
		el.Attr = append(el.Attr, html.Attribute{Key: "aria-checked", Val: "true"})
	}
	return el, nil
}

func (n *ListItemNode) UpdateDOM(document.Node) bool { return false }

// NewBlockAfter continues the list when Enter splits an item.
func (n *ListItemNode) NewBlockAfter() document.ElementNode { return NewListItem() }

// ListClass and ListItemClass register list nodes.
var (
	ListClass = document.Class{
		Type: "list",
		ImportJSON: func(data []byte) (document.Node, error) {
			var s serializedList
			if err := json.Unmarshal(data, &s); err != nil {
				return nil, errors.Wrap(err, "list")
			}
			n := NewList(s.ListType)
			if s.Start > 0 {
				n.start = s.Start
			}
			n.ApplySerialized(s.SerializedElement)
			return n, nil
		},
		ImportDOM: document.DOMConversionMap{
			"ul": func(*html.Node) *document.DOMConversion {
				return &document.DOMConversion{Conversion: func(el *html.Node) (document.DOMConversionOutput, error) {
					t := ListBullet
					if v, _ := document.Attr(el, "data-lexical-list-type"); v == "check" {
						t = ListCheck
					}
					return document.DOMConversionOutput{Node: NewList(t)}, nil
				}}
			},
			"ol": func(*html.Node) *document.DOMConversion {
				return &document.DOMConversion{Conversion: func(el *html.Node) (document.DOMConversionOutput, error) {
					n := NewList(ListNumber)
					if v, ok := document.Attr(el, "start"); ok {
						if start, err := strconv.Atoi(v); err == nil && start > 0 {
							n.start = start
						}
					}
					return document.DOMConversionOutput{Node: n}, nil
				}}
			},
		},
	}

	ListItemClass = document.Class{
		Type: "listitem",
		ImportJSON: func(data []byte) (document.Node, error) {
			var s serializedListItem
			if err := json.Unmarshal(data, &s); err != nil {
				return nil, errors.Wrap(err, "listitem")
			}
			n := NewListItem()
			if s.Value > 0 {
				n.value = s.Value
			}
			if s.Checked != nil {
				n.checked = *s.Checked
			}
			n.ApplySerialized(s.SerializedElement)
			return n, nil
		},
		ImportDOM: document.DOMConversionMap{
			"li": func(*html.Node) *document.DOMConversion {
				return &document.DOMConversion{Conversion: func(el *html.Node) (document.DOMConversionOutput, error) {
					n := NewListItem()
					if v, _ := document.Attr(el, "aria-checked"); v == "true" {
						n.checked = true
					}
					return document.DOMConversionOutput{Node: n}, nil
				}}
			},
		},
	}
)

// List commands.
var (
	InsertUnorderedListCommand = document.NewCommand[struct{}]("INSERT_UNORDERED_LIST_COMMAND")
	InsertOrderedListCommand   = document.NewCommand[struct{}]("INSERT_ORDERED_LIST_COMMAND")
	InsertCheckListCommand     = document.NewCommand[struct{}]("INSERT_CHECK_LIST_COMMAND")
	RemoveListCommand          = document.NewCommand[struct{}]("REMOVE_LIST_COMMAND")
)

// InsertList turns the selected top-level blocks into items of a new list.
func InsertList(tx *document.Tx, t ListType) error {
	blocks := selectedTopBlocks(tx)
	if len(blocks) == 0 {
		list := document.Create(tx, NewList(t))
		item := document.Create(tx, NewListItem())
		if err := tx.Append(list, item); err != nil {
			return err
		}
		if err := tx.InsertNodes(list); err != nil {
			return err
		}
		tx.SelectStart(item)
		return nil
	}
	list := document.Create(tx, NewList(t))
	if err := tx.InsertBefore(blocks[0], list); err != nil {
		return err
	}
	sel, _ := tx.RangeSelection()
	for _, b := range blocks {
		item := document.Create(tx, NewListItem())
		if err := tx.Append(list, item); err != nil {
			return err
		}
		if err := tx.Append(item, tx.Children(b.Key())...); err != nil {
			return err
		}
		if err := tx.Remove(b); err != nil {
			return err
		}
		if sel != nil && sel.Focus.Key == b.Key() {
			tx.SelectStart(item)
		}
	}
	renumber(tx, list.Key())
	return nil
}

// RemoveList turns the items of the lists under the selection back into
// paragraphs.
func RemoveList(tx *document.Tx) error {
	for _, b := range selectedTopBlocks(tx) {
		list, ok := b.(*ListNode)
		if !ok {
			continue
		}
		for _, item := range tx.Children(list.Key()) {
			p := document.Create(tx, document.NewParagraph())
			if err := tx.InsertBefore(list, p); err != nil {
				return err
			}
			if err := tx.Append(p, tx.Children(item.Key())...); err != nil {
				return err
			}
		}
		if err := tx.Remove(list); err != nil {
			return err
		}
	}
	return nil
}

func renumber(tx *document.Tx, listKey document.NodeKey) {
	n, ok := tx.Node(listKey)
	if !ok {
		return
	}
	start := n.(*ListNode).start
	for i, c := range tx.Children(listKey) {
		if item, ok := c.(*ListItemNode); ok && item.value != start+i {
			document.Writable(tx, item).value = start + i
		}
	}
}

// selectedTopBlocks returns the distinct top-level blocks under the
// selection in document order.
func selectedTopBlocks(tx *document.Tx) []document.Node {
	var keys []document.NodeKey
	switch sel := tx.Selection().(type) {
	case *document.RangeSelection:
		start, end := tx.Bounds(sel)
		keys = append(keys, start.Key)
		for _, n := range tx.SelectedNodes(sel) {
			keys = append(keys, n.Key())
		}
		keys = append(keys, end.Key)
	case *document.NodeSelection:
		keys = sel.Keys()
	}
	var out []document.Node
	seen := map[document.NodeKey]bool{}
	for _, k := range keys {
		top, ok := tx.TopLevelElement(k)
		if !ok || seen[top.Key()] || !document.IsElement(top) {
			continue
		}
		seen[top.Key()] = true
		out = append(out, top)
	}
	return out
}

// ListPlugin handles the list commands and keeps item numbers in sync.
// Enter on an empty item leaves the list.
func ListPlugin() document.Plugin {
	return document.PluginFunc(func(e *document.Editor) (func(), error) {
		if !e.HasNodes("list", "listitem") {
			return nil, errors.Wrap(ErrNodesNotRegistered, "list, listitem")
		}
		insert := func(t ListType) document.Handler[struct{}] {
			return func(tx *document.Tx, _ struct{}) bool {
				if err := InsertList(tx, t); err != nil {
					tx.Fail(err)
				}
				return true
			}
		}
		return document.MergeRegister(
			document.RegisterCommand(e, InsertUnorderedListCommand, insert(ListBullet), document.PriorityLow),
			document.RegisterCommand(e, InsertOrderedListCommand, insert(ListNumber), document.PriorityLow),
			document.RegisterCommand(e, InsertCheckListCommand, insert(ListCheck), document.PriorityLow),
			document.RegisterCommand(e, RemoveListCommand, func(tx *document.Tx, _ struct{}) bool {
				if err := RemoveList(tx); err != nil {
					tx.Fail(err)
				}
				return true
			}, document.PriorityLow),
			document.RegisterCommand(e, document.InsertParagraphCommand, exitEmptyItem, document.PriorityLow),
			e.RegisterUpdateListener(func(ev document.UpdateEvent) {
				var stale []document.NodeKey
				for _, l := range ev.State.Nodes("list") {
					for i, c := range ev.State.Children(l.Key()) {
						if item, ok := c.(*ListItemNode); ok && item.value != l.(*ListNode).start+i {
							stale = append(stale, l.Key())
							break
						}
					}
				}
				if len(stale) == 0 {
					return
				}
				_ = e.Update(func(tx *document.Tx) error {
					for _, k := range stale {
						renumber(tx, k)
					}
					return nil
				}, document.TagHistoryMerge)
			}),
		), nil
	})
}

// exitEmptyItem replaces an empty last list item with a paragraph after the
// list.
func exitEmptyItem(tx *document.Tx, _ struct{}) bool {
	sel, ok := tx.RangeSelection()
	if !ok || !sel.IsCollapsed() {
		return false
	}
	item, ok := tx.FindMatchingParent(sel.Focus.Key, func(n document.Node) bool {
		_, ok := n.(*ListItemNode)
		return ok
	})
	if !ok || tx.TextContent(item.Key()) != "" || tx.NextSibling(item.Key()) != nil {
		return false
	}
	list := tx.ParentNode(item)
	if list == nil {
		return false
	}
	p := document.Create(tx, document.NewParagraph())
	if err := tx.InsertAfter(list, p); err != nil {
		tx.Fail(err)
		return true
	}
	if err := tx.Remove(item); err != nil {
		tx.Fail(err)
		return true
	}
	if len(tx.Children(list.Key())) == 0 {
		_ = tx.Remove(list)
	}
	tx.SelectStart(p)
	return true
}
