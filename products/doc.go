// Package products implements the "products" embed: a decorator node
// carrying an ordered list of product cards, the component that renders it
// and handles its selection, and the plugin that inserts it.
//
// The node's payload is immutable. Changing the cards means replacing the
// node with a new one inside an update.
package products
