package toolbar

import (
	"github.com/pkg/errors"

	"github.com/bitbriks/bitbrik/document"
	"github.com/bitbriks/bitbrik/nodes"
)

// ErrNotHandled is returned when no plugin accepted an insertion command.
var ErrNotHandled = errors.New("toolbar: command not handled")

// SetFontColor sets the text color of the selection.
func SetFontColor(e *document.Editor, color string) error {
	return applyStyleText(e, "color", color)
}

// SetBgColor sets the background color of the selection.
func SetBgColor(e *document.Editor, color string) error {
	return applyStyleText(e, "background-color", color)
}

func applyStyleText(e *document.Editor, prop, value string) error {
	return e.Update(func(tx *document.Tx) error {
		if _, ok := tx.RangeSelection(); ok {
			tx.PatchStyleText(map[string]string{prop: value})
		}
		return nil
	})
}

// InsertTable inserts a rows x columns table with a header row.
func InsertTable(e *document.Editor, rows, columns int) error {
	if rows < 1 || columns < 1 {
		return errors.Errorf("toolbar: table size %dx%d", rows, columns)
	}
	return dispatch(e, nodes.InsertTableCommand, nodes.InsertTablePayload{Rows: rows, Columns: columns, Headers: true})
}

// InsertImage inserts an image at the selection.
func InsertImage(e *document.Editor, p nodes.InsertImagePayload) error {
	if p.Src == "" {
		return errors.New("toolbar: image source is empty")
	}
	return dispatch(e, nodes.InsertImageCommand, p)
}

// InsertGIF inserts the sample animation.
func InsertGIF(e *document.Editor) error { return InsertImage(e, DefaultGIF) }

// InsertHorizontalRule inserts a divider at the selection.
func InsertHorizontalRule(e *document.Editor) error {
	return dispatch(e, nodes.InsertHorizontalRuleCommand, struct{}{})
}

// dispatch runs cmd in its own update so a handler that fails the
// transaction reports its error instead of a silent no-op.
func dispatch[T any](e *document.Editor, cmd document.Command[T], payload T) error {
	err := e.Update(func(tx *document.Tx) error {
		if !document.DispatchCommandTx(tx, cmd, payload) {
			return ErrNotHandled
		}
		return nil
	})
	return errors.Wrap(err, cmd.String())
}
