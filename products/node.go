package products

import (
	"encoding/json"

	"github.com/pkg/errors"
	"golang.org/x/net/html"

	"github.com/bitbriks/bitbrik/document"
)

const (
	// Type is the node type tag.
	Type = "products"
	// Version is the serialized schema version.
	Version = 1

	domAttr = "data-lexical-products"
)

// Node is the products embed. It is an inline decorator; the insertion
// plugin gives it a paragraph of its own when it lands at the root.
type Node struct {
	document.NodeBase
	products Products
}

// NewNode returns a detached node holding a copy of ps.
func NewNode(ps Products) *Node {
	return &Node{products: ps.clone()}
}

func (n *Node) Type() string   { return Type }
func (n *Node) IsInline() bool { return true }

// Products returns a copy of the payload.
func (n *Node) Products() Products { return n.products.clone() }

// Clone keeps the key and copies the payload.
func (n *Node) Clone() document.Node {
	c := *n
	c.products = n.products.clone()
	return &c
}

type serializedNode struct {
	Type     string   `json:"type"`
	Version  int      `json:"version"`
	Products Products `json:"products"`
}

func (n *Node) ExportJSON() any {
	ps := n.products
	if ps == nil {
		ps = Products{}
	}
	return serializedNode{Type: Type, Version: Version, Products: ps}
}

// ImportJSON rebuilds a node from its serialized form.
func ImportJSON(data []byte) (document.Node, error) {
	var s serializedNode
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(ErrInvalidPayload, err.Error())
	}
	if s.Type != Type {
		return nil, errors.Wrapf(ErrInvalidPayload, "type %q", s.Type)
	}
	if s.Version != Version {
		return nil, errors.Wrapf(ErrInvalidPayload, "version %d", s.Version)
	}
	if err := Validate(s.Products); err != nil {
		return nil, err
	}
	return NewNode(s.Products), nil
}

func (n *Node) ExportDOM() (*html.Node, error) {
	ps := n.products
	if ps == nil {
		ps = Products{}
	}
	data, err := json.Marshal(ps)
	if err != nil {
		return nil, errors.Wrap(err, "marshal products")
	}
	return document.NewElement("span", html.Attribute{Key: domAttr, Val: string(data)}), nil
}

// UpdateDOM is always false: a changed node is rendered by the mounted
// component, never patched.
func (n *Node) UpdateDOM(document.Node) bool { return false }

// Decorate returns the component rendering the cards.
func (n *Node) Decorate(e *document.Editor) any { return NewComponent(n.Key()) }

// importDOM claims span elements carrying the products attribute.
func importDOM(el *html.Node) *document.DOMConversion {
	if _, ok := document.Attr(el, domAttr); !ok {
		return nil
	}
	return &document.DOMConversion{Conversion: convertElement, Priority: 2}
}

func convertElement(el *html.Node) (document.DOMConversionOutput, error) {
	raw, _ := document.Attr(el, domAttr)
	var ps Products
	if err := json.Unmarshal([]byte(raw), &ps); err != nil {
		return document.DOMConversionOutput{}, errors.Wrap(ErrInvalidPayload, err.Error())
	}
	if err := Validate(ps); err != nil {
		return document.DOMConversionOutput{}, err
	}
	return document.DOMConversionOutput{Node: NewNode(ps)}, nil
}

// Class registers the products node.
var Class = document.Class{
	Type:       Type,
	ImportJSON: ImportJSON,
	ImportDOM:  document.DOMConversionMap{"span": importDOM},
}

// IsNode reports whether n is a products node.
func IsNode(n document.Node) bool {
	_, ok := n.(*Node)
	return ok
}
