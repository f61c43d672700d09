package products

import (
	"github.com/bitbriks/bitbrik/document"
)

// InsertCommand inserts a products embed at the selection.
var InsertCommand = document.NewCommand[Products]("INSERT_PRODUCTS_COMMAND")

// Plugin handles InsertCommand at editor priority. Registration fails with
// ErrNodeNotRegistered when the editor does not know the products type.
func Plugin() document.Plugin {
	return document.PluginFunc(func(e *document.Editor) (func(), error) {
		if !e.HasNodes(Type) {
			return nil, ErrNodeNotRegistered
		}
		return document.RegisterCommand(e, InsertCommand, func(tx *document.Tx, ps Products) bool {
			if err := Insert(tx, ps); err != nil {
				tx.Fail(err)
			}
			return true
		}, document.PriorityEditor), nil
	})
}

// Insert creates a node for ps at the selection. A node landing directly
// under the root is wrapped in a paragraph and the caret goes to its end.
func Insert(tx *document.Tx, ps Products) error {
	if err := Validate(ps); err != nil {
		return err
	}
	n := document.Create(tx, NewNode(ps))
	if err := tx.InsertNodes(n); err != nil {
		return err
	}
	cur, _ := tx.Node(n.Key())
	if parent := tx.ParentNode(cur); parent != nil && document.IsRootOrShadowRoot(parent) {
		p, err := tx.WrapNodeInElement(cur, func() document.ElementNode { return document.NewParagraph() })
		if err != nil {
			return err
		}
		tx.SelectEnd(p)
	}
	return nil
}
