package document

import "golang.org/x/net/html"

// NodeKey identifies a node for the lifetime of an editor. Keys are assigned
// by the editor when a node is first attached to a transaction and survive
// cloning.
type NodeKey string

// RootKey is the key of the document root.
const RootKey NodeKey = "root"

// Node is the capability set every node type implements.
type Node interface {
	// Type returns the stable type tag the node is registered under.
	Type() string
	Key() NodeKey
	Parent() NodeKey

	// Clone returns a copy sharing the receiver's key. The copy must not
	// share mutable state with the receiver.
	Clone() Node

	// ExportJSON returns the persisted form of the node without its
	// children. The value must marshal to an object carrying "type" and
	// "version".
	ExportJSON() any

	// ExportDOM renders the node as HTML. Element children are appended to
	// the returned element by the exporter.
	ExportDOM() (*html.Node, error)

	// UpdateDOM reports whether the rendered container of prev must be
	// recreated when the receiver replaces it.
	UpdateDOM(prev Node) bool

	base() *NodeBase
}

// ElementNode is a node with ordered children.
type ElementNode interface {
	Node
	IsInline() bool
	element() *ElementBase
}

// DecoratorNode is a leaf node rendered by a custom decoration.
type DecoratorNode interface {
	Node
	IsInline() bool
	// Decorate returns the decoration the presentation layer mounts for the
	// node. It is called again whenever the node changes.
	Decorate(e *Editor) any
}

// NodeBase carries the identity and position shared by all node types.
// Custom node types embed it.
type NodeBase struct {
	key    NodeKey
	parent NodeKey
}

func (b *NodeBase) Key() NodeKey    { return b.key }
func (b *NodeBase) Parent() NodeKey { return b.parent }
func (b *NodeBase) base() *NodeBase { return b }

// ElementBase is embedded by element node types.
type ElementBase struct {
	NodeBase
	children []NodeKey
	format   string
	indent   int
}

func (b *ElementBase) element() *ElementBase { return b }

// Children returns a copy of the child keys.
func (b *ElementBase) Children() []NodeKey {
	return append([]NodeKey(nil), b.children...)
}

func (b *ElementBase) ChildCount() int { return len(b.children) }

// Format returns the block alignment ("", "left", "center", "right", "justify").
func (b *ElementBase) Format() string { return b.format }

// SetFormat sets the block alignment. Call it on a node obtained from
// Tx.Writable.
func (b *ElementBase) SetFormat(f string) { b.format = f }

func (b *ElementBase) Indent() int { return b.indent }

// SetIndent sets the indentation level. Call it on a node obtained from
// Tx.Writable.
func (b *ElementBase) SetIndent(n int) {
	if n < 0 {
		n = 0
	}
	b.indent = n
}

// CloneElement returns a copy whose child slice is not shared with b.
func (b *ElementBase) CloneElement() ElementBase {
	c := *b
	c.children = append([]NodeKey(nil), b.children...)
	return c
}

// SerializedElement is embedded in the JSON form of element nodes.
type SerializedElement struct {
	Type      string `json:"type"`
	Version   int    `json:"version"`
	Direction string `json:"direction"`
	Format    string `json:"format"`
	Indent    int    `json:"indent"`
}

// SerializeElement fills the shared element fields.
func (b *ElementBase) SerializeElement(typ string) SerializedElement {
	return SerializedElement{
		Type:      typ,
		Version:   1,
		Direction: "ltr",
		Format:    b.format,
		Indent:    b.indent,
	}
}

// ApplySerialized copies the shared element fields from s.
func (b *ElementBase) ApplySerialized(s SerializedElement) {
	b.format = s.Format
	b.SetIndent(s.Indent)
}

// IsElement reports whether n has children.
func IsElement(n Node) bool {
	_, ok := n.(ElementNode)
	return ok
}

// IsDecorator reports whether n is a decorator leaf.
func IsDecorator(n Node) bool {
	_, ok := n.(DecoratorNode)
	return ok
}

// IsInline reports whether n flows inside a block rather than forming one.
func IsInline(n Node) bool {
	switch v := n.(type) {
	case *TextNode:
		return true
	case ElementNode:
		return v.IsInline()
	case DecoratorNode:
		return v.IsInline()
	}
	return false
}

// IsRootOrShadowRoot reports whether n is the document root.
func IsRootOrShadowRoot(n Node) bool {
	if n == nil {
		return false
	}
	_, ok := n.(*RootNode)
	return ok
}
