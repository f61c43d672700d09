package nodes

import (
	"github.com/pkg/errors"

	"github.com/bitbriks/bitbrik/document"
)

// ErrNodesNotRegistered is returned by a plugin whose node types are missing
// from the editor's registry.
var ErrNodesNotRegistered = errors.New("nodes: node types not registered")

// RichTextPlugin binds the core editing commands to the document model:
// typing, Enter, Backspace and Delete, text and block formatting, caret
// movement, clicks and the clipboard. Its handlers run at editor priority so
// every other plugin can intercept first. Input commands are ignored while
// the editor is read-only.
func RichTextPlugin() document.Plugin {
	return document.PluginFunc(func(e *document.Editor) (func(), error) {
		fail := func(tx *document.Tx, err error) bool {
			if err != nil {
				tx.Fail(err)
			}
			return true
		}
		editable := func() bool { return e.IsEditable() }
		return document.MergeRegister(
			document.RegisterCommand(e, document.InsertTextCommand, func(tx *document.Tx, text string) bool {
				if !editable() {
					return false
				}
				return fail(tx, tx.InsertText(text))
			}, document.PriorityEditor),
			document.RegisterCommand(e, document.InsertParagraphCommand, func(tx *document.Tx, _ struct{}) bool {
				if !editable() {
					return false
				}
				return fail(tx, tx.InsertParagraph())
			}, document.PriorityEditor),
			document.RegisterCommand(e, document.InsertLineBreakCommand, func(tx *document.Tx, _ struct{}) bool {
				return document.DispatchCommandTx(tx, document.InsertParagraphCommand, struct{}{})
			}, document.PriorityEditor),
			document.RegisterCommand(e, document.KeyEnterCommand, func(tx *document.Tx, ev document.KeyEvent) bool {
				if ev.Shift {
					return document.DispatchCommandTx(tx, document.InsertLineBreakCommand, struct{}{})
				}
				return document.DispatchCommandTx(tx, document.InsertParagraphCommand, struct{}{})
			}, document.PriorityEditor),
			document.RegisterCommand(e, document.KeyBackspaceCommand, func(tx *document.Tx, _ document.KeyEvent) bool {
				return document.DispatchCommandTx(tx, document.DeleteCharacterCommand, true)
			}, document.PriorityEditor),
			document.RegisterCommand(e, document.KeyDeleteCommand, func(tx *document.Tx, _ document.KeyEvent) bool {
				return document.DispatchCommandTx(tx, document.DeleteCharacterCommand, false)
			}, document.PriorityEditor),
			document.RegisterCommand(e, document.DeleteCharacterCommand, func(tx *document.Tx, backward bool) bool {
				if !editable() {
					return false
				}
				return fail(tx, tx.DeleteCharacter(backward))
			}, document.PriorityEditor),
			document.RegisterCommand(e, document.FormatTextCommand, func(tx *document.Tx, name string) bool {
				if !editable() {
					return false
				}
				tx.FormatText(name)
				return true
			}, document.PriorityEditor),
			document.RegisterCommand(e, document.FormatElementCommand, func(tx *document.Tx, align string) bool {
				if !editable() {
					return false
				}
				tx.FormatElement(align)
				return true
			}, document.PriorityEditor),
			document.RegisterCommand(e, document.IndentContentCommand, func(tx *document.Tx, _ struct{}) bool {
				if !editable() {
					return false
				}
				tx.Indent(1)
				return true
			}, document.PriorityEditor),
			document.RegisterCommand(e, document.OutdentContentCommand, func(tx *document.Tx, _ struct{}) bool {
				if !editable() {
					return false
				}
				tx.Indent(-1)
				return true
			}, document.PriorityEditor),
			document.RegisterCommand(e, document.KeyTabCommand, func(tx *document.Tx, ev document.KeyEvent) bool {
				if ev.Shift {
					return document.DispatchCommandTx(tx, document.OutdentContentCommand, struct{}{})
				}
				return document.DispatchCommandTx(tx, document.IndentContentCommand, struct{}{})
			}, document.PriorityEditor),
			document.RegisterCommand(e, document.KeyArrowCommand, func(tx *document.Tx, ev document.ArrowEvent) bool {
				tx.MoveCaret(ev.Dir, ev.Shift)
				return true
			}, document.PriorityEditor),
			document.RegisterCommand(e, document.KeyEscapeCommand, func(tx *document.Tx, _ document.KeyEvent) bool {
				if _, ok := tx.NodeSelection(); !ok {
					return false
				}
				tx.ClearNodeSelection()
				return true
			}, document.PriorityEditor),
			document.RegisterCommand(e, document.ClickCommand, click, document.PriorityEditor),
			document.RegisterCommand(e, document.PasteCommand, func(tx *document.Tx, c document.Clipboard) bool {
				if !editable() {
					return false
				}
				tx.AddTag(document.TagPaste)
				if c.HTML != "" {
					return fail(tx, tx.ImportHTML(c.HTML))
				}
				return fail(tx, tx.InsertText(c.Text))
			}, document.PriorityEditor),
			document.RegisterCommand(e, document.CopyCommand, func(tx *document.Tx, data *document.ClipboardData) bool {
				return fail(tx, copySelection(tx, data))
			}, document.PriorityEditor),
			document.RegisterCommand(e, document.CutCommand, func(tx *document.Tx, data *document.ClipboardData) bool {
				if err := copySelection(tx, data); err != nil {
					return fail(tx, err)
				}
				if !editable() {
					return true
				}
				if sel, ok := tx.RangeSelection(); ok && sel.IsCollapsed() {
					return true
				}
				return fail(tx, tx.DeleteCharacter(true))
			}, document.PriorityEditor),
		), nil
	})
}

// click places the caret at the clicked offset of a text, at the end of a
// clicked block, or selects a clicked decorator that no component claimed.
func click(tx *document.Tx, ev document.ClickEvent) bool {
	if ev.Target == "" {
		tx.SelectEnd(tx.Root())
		return true
	}
	n, ok := tx.Node(ev.Target)
	if !ok {
		return false
	}
	if document.IsDecorator(n) {
		if !ev.Shift {
			tx.ClearNodeSelection()
		}
		tx.SetNodeSelected(n.Key(), true)
		return true
	}
	if t, ok := n.(*document.TextNode); ok && ev.Offset >= 0 {
		p := document.TextPoint(t.Key(), min(ev.Offset, t.Len()))
		tx.SetSelection(document.NewRangeSelection(p, p))
		return true
	}
	tx.SelectEnd(n)
	return true
}

// copySelection fills data with the HTML and plain text of the selection.
// The HTML covers whole leaves; the document is not modified.
func copySelection(tx *document.Tx, data *document.ClipboardData) error {
	if data == nil {
		return nil
	}
	var keys []document.NodeKey
	switch sel := tx.Selection().(type) {
	case *document.NodeSelection:
		keys = sel.Keys()
		var text string
		for _, k := range keys {
			text += tx.TextContent(k)
		}
		data.Text = text
	case *document.RangeSelection:
		if sel.IsCollapsed() {
			return nil
		}
		data.Text = tx.SelectionText(sel)
		for _, n := range tx.SelectedNodes(sel) {
			keys = append(keys, n.Key())
		}
	default:
		return nil
	}
	markup, err := document.ExportNodesHTML(tx.State, tx.Editor().Theme(), keys...)
	if err != nil {
		return err
	}
	data.HTML = markup
	return nil
}
