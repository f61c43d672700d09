package document

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

// DOMConversionOutput is the result of converting one HTML element.
type DOMConversionOutput struct {
	// Node is the converted node. It may be nil when the element only
	// forwards Format or Style to the text nodes below it.
	Node Node
	// Format is OR-ed into descendant text nodes.
	Format TextFormat
	// Style is appended to the style of descendant text nodes.
	Style string
}

// DOMConversion converts a claimed element. Among the matchers claiming the
// same element the highest Priority wins.
type DOMConversion struct {
	Conversion func(el *html.Node) (DOMConversionOutput, error)
	Priority   int
}

// DOMMatcher inspects an element and claims it by returning a conversion,
// or declines with nil.
type DOMMatcher func(el *html.Node) *DOMConversion

// DOMConversionMap maps lower-case tag names to matchers.
type DOMConversionMap map[string]DOMMatcher

// Class describes a registered node type.
type Class struct {
	Type       string
	ImportJSON func(data []byte) (Node, error)
	ImportDOM  DOMConversionMap
}

// Registry holds the node types known to an editor, keyed by type tag.
type Registry struct {
	classes map[string]Class
	order   []string
	dom     map[string][]DOMMatcher
}

// NewRegistry builds a registry from classes. The root, paragraph and text
// classes are always present.
func NewRegistry(classes ...Class) (*Registry, error) {
	r := &Registry{
		classes: make(map[string]Class),
		dom:     make(map[string][]DOMMatcher),
	}
	all := append([]Class{RootClass, ParagraphClass, TextClass}, classes...)
	for _, c := range all {
		if err := r.add(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) add(c Class) error {
	if c.Type == "" {
		return errors.Wrap(ErrInvalidClass, "empty type tag")
	}
	if c.ImportJSON == nil {
		return errors.Wrapf(ErrInvalidClass, "%s: missing ImportJSON", c.Type)
	}
	if _, dup := r.classes[c.Type]; dup {
		if isBuiltinType(c.Type) {
			return nil
		}
		return errors.Wrapf(ErrDuplicateType, "%s", c.Type)
	}
	r.classes[c.Type] = c
	r.order = append(r.order, c.Type)
	for tag, m := range c.ImportDOM {
		if m == nil {
			continue
		}
		tag = strings.ToLower(tag)
		r.dom[tag] = append(r.dom[tag], m)
	}
	return nil
}

func isBuiltinType(t string) bool {
	return t == "root" || t == "paragraph" || t == "text"
}

// Has reports whether every given type tag is registered.
func (r *Registry) Has(types ...string) bool {
	for _, t := range types {
		if _, ok := r.classes[t]; !ok {
			return false
		}
	}
	return true
}

// Class returns the class registered for type tag t.
func (r *Registry) Class(t string) (Class, bool) {
	c, ok := r.classes[t]
	return c, ok
}

// Types returns the registered type tags in registration order.
func (r *Registry) Types() []string {
	return append([]string(nil), r.order...)
}

// conversionFor returns the winning conversion for el, or nil when no
// matcher claims it. Ties keep the earliest registered matcher.
func (r *Registry) conversionFor(el *html.Node) *DOMConversion {
	var best *DOMConversion
	for _, m := range r.dom[strings.ToLower(el.Data)] {
		c := m(el)
		if c == nil || c.Conversion == nil {
			continue
		}
		if best == nil || c.Priority > best.Priority {
			best = c
		}
	}
	return best
}
