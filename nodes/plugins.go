package nodes

import (
	"github.com/bitbriks/bitbrik/document"
)

// All returns every node class of the package in registration order.
func All() []document.Class {
	return []document.Class{
		HeadingClass,
		QuoteClass,
		ListClass,
		ListItemClass,
		LinkClass,
		TableClass,
		TableRowClass,
		TableCellClass,
		HorizontalRuleClass,
		ImageClass,
	}
}

// Plugins returns the plugins for every class in All plus the rich-text
// bindings.
func Plugins() []document.Plugin {
	return []document.Plugin{
		RichTextPlugin(),
		ClearEditorPlugin(),
		ListPlugin(),
		LinkPlugin(),
		TablePlugin(),
		HorizontalRulePlugin(),
		ImagesPlugin(),
	}
}

// ClearEditorPlugin handles ClearEditorCommand: the document is replaced
// with one empty paragraph holding the caret.
func ClearEditorPlugin() document.Plugin {
	return document.PluginFunc(func(e *document.Editor) (func(), error) {
		return document.RegisterCommand(e, document.ClearEditorCommand, func(tx *document.Tx, _ struct{}) bool {
			tx.Clear()
			p := document.Create(tx, document.NewParagraph())
			if err := tx.Append(tx.Root(), p); err != nil {
				tx.Fail(err)
				return true
			}
			tx.SelectStart(p)
			return true
		}, document.PriorityEditor), nil
	})
}

// MaxLengthPlugin keeps the document at most limit characters long. Overflow
// is cut from the end of the text before the caret block, or from the end
// of the document, in a follow-up update merged into the history entry of
// the edit that caused it.
func MaxLengthPlugin(limit int) document.Plugin {
	return document.PluginFunc(func(e *document.Editor) (func(), error) {
		if limit <= 0 {
			return func() {}, nil
		}
		return e.RegisterUpdateListener(func(ev document.UpdateEvent) {
			if !ev.ContentChanged() || ev.HasTag(document.TagHistoric) {
				return
			}
			if textLength(ev.State) <= limit {
				return
			}
			_ = e.Update(func(tx *document.Tx) error {
				trimText(tx, textLength(tx.State)-limit)
				return nil
			}, document.TagHistoryMerge)
		}), nil
	})
}

func textLength(s *document.State) int {
	n := 0
	for _, l := range s.Leaves(document.RootKey) {
		if t, ok := l.(*document.TextNode); ok {
			n += t.Len()
		}
	}
	return n
}

// trimText removes the last excess characters, starting at the caret when
// it sits in text and continuing backwards through the document.
func trimText(tx *document.Tx, excess int) {
	leaves := tx.Leaves(document.RootKey)
	end := len(leaves)
	caret := -1
	if sel, ok := tx.RangeSelection(); ok && sel.IsCollapsed() && sel.Focus.Type == document.PointText {
		for i, l := range leaves {
			if l.Key() == sel.Focus.Key {
				end, caret = i+1, sel.Focus.Offset
			}
		}
	}
	for i := end - 1; i >= 0 && excess > 0; i-- {
		t, ok := leaves[i].(*document.TextNode)
		if !ok {
			continue
		}
		runes := []rune(t.Text())
		cut := len(runes)
		if i == end-1 && caret >= 0 {
			cut = min(caret, cut)
		}
		from := max(cut-excess, 0)
		excess -= cut - from
		w := document.Writable(tx, t)
		w.SetText(string(runes[:from]) + string(runes[cut:]))
		if i == end-1 && caret >= 0 {
			tx.SetSelection(document.NewCaret(document.TextPoint(w.Key(), from)))
		}
	}
}
