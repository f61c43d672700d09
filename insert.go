package bitbrik

import (
	"github.com/pkg/errors"

	"github.com/bitbriks/bitbrik/document"
	"github.com/bitbriks/bitbrik/products"
	"github.com/bitbriks/bitbrik/toolbar"
)

// ErrNotHandled is returned when no plugin accepted an insertion.
var ErrNotHandled = errors.New("bitbrik: insertion not handled")

// InsertProducts inserts a products embed at the selection and asks the
// view to center it.
func (e *Editor) InsertProducts(ps products.Products) error {
	var key document.NodeKey
	err := e.doc.Update(func(tx *document.Tx) error {
		before := map[document.NodeKey]bool{}
		for _, n := range tx.Nodes(products.Type) {
			before[n.Key()] = true
		}
		if !document.DispatchCommandTx(tx, products.InsertCommand, ps) {
			return ErrNotHandled
		}
		for _, n := range tx.Nodes(products.Type) {
			if !before[n.Key()] {
				key = n.Key()
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "bitbrik: insert products")
	}
	if key != "" {
		e.view.QueueScrollToNode(key)
	}
	return nil
}

// InsertTable inserts a 5x5 table at the selection.
func (e *Editor) InsertTable() error {
	return toolbar.InsertTable(e.doc, 5, 5)
}
