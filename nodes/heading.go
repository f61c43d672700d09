package nodes

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/html"

	"github.com/bitbriks/bitbrik/document"
)

// HeadingNode is an h1-h6 block.
type HeadingNode struct {
	document.ElementBase
	tag string
}

// NewHeading returns a heading for tag ("h1".."h6"). Other tags fall back
// to h1.
func NewHeading(tag string) *HeadingNode {
	tag = strings.ToLower(tag)
	if len(tag) != 2 || tag[0] != 'h' || tag[1] < '1' || tag[1] > '6' {
		tag = "h1"
	}
	return &HeadingNode{tag: tag}
}

func (n *HeadingNode) Type() string   { return "heading" }
func (n *HeadingNode) IsInline() bool { return false }
func (n *HeadingNode) Tag() string    { return n.tag }

// Level returns 1 for h1 through 6 for h6.
func (n *HeadingNode) Level() int { return int(n.tag[1] - '0') }

func (n *HeadingNode) Clone() document.Node {
	return &HeadingNode{ElementBase: n.CloneElement(), tag: n.tag}
}

type serializedHeading struct {
	document.SerializedElement
	Tag string `json:"tag"`
}

func (n *HeadingNode) ExportJSON() any {
	return serializedHeading{SerializedElement: n.SerializeElement("heading"), Tag: n.tag}
}

func (n *HeadingNode) ExportDOM() (*html.Node, error) {
	return alignedElement(n.tag, n.Format()), nil
}

func (n *HeadingNode) UpdateDOM(prev document.Node) bool {
	p, ok := prev.(*HeadingNode)
	return !ok || p.tag != n.tag
}

// NewBlockAfter makes Enter at the end of a heading continue with a
// paragraph.
func (n *HeadingNode) NewBlockAfter() document.ElementNode { return document.NewParagraph() }

func importHeadingJSON(data []byte) (document.Node, error) {
	var s serializedHeading
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "heading")
	}
	n := NewHeading(s.Tag)
	n.ApplySerialized(s.SerializedElement)
	return n, nil
}

func headingConversion(tag string) document.DOMMatcher {
	return func(*html.Node) *document.DOMConversion {
		return &document.DOMConversion{Conversion: func(el *html.Node) (document.DOMConversionOutput, error) {
			n := NewHeading(tag)
			n.SetFormat(alignOf(el))
			return document.DOMConversionOutput{Node: n}, nil
		}}
	}
}

// HeadingClass registers heading nodes.
var HeadingClass = document.Class{
	Type:       "heading",
	ImportJSON: importHeadingJSON,
	ImportDOM: document.DOMConversionMap{
		"h1": headingConversion("h1"),
		"h2": headingConversion("h2"),
		"h3": headingConversion("h3"),
		"h4": headingConversion("h4"),
		"h5": headingConversion("h5"),
		"h6": headingConversion("h6"),
	},
}

// QuoteNode is a block quote.
type QuoteNode struct {
	document.ElementBase
}

func NewQuote() *QuoteNode { return &QuoteNode{} }

func (n *QuoteNode) Type() string   { return "quote" }
func (n *QuoteNode) IsInline() bool { return false }

func (n *QuoteNode) Clone() document.Node {
	return &QuoteNode{ElementBase: n.CloneElement()}
}

func (n *QuoteNode) ExportJSON() any { return n.SerializeElement("quote") }

func (n *QuoteNode) ExportDOM() (*html.Node, error) {
	return alignedElement("blockquote", n.Format()), nil
}

func (n *QuoteNode) UpdateDOM(document.Node) bool { return false }

func (n *QuoteNode) NewBlockAfter() document.ElementNode { return document.NewParagraph() }

// QuoteClass registers quote nodes.
var QuoteClass = document.Class{
	Type: "quote",
	ImportJSON: func(data []byte) (document.Node, error) {
		var s document.SerializedElement
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, errors.Wrap(err, "quote")
		}
		n := NewQuote()
		n.ApplySerialized(s)
		return n, nil
	},
	ImportDOM: document.DOMConversionMap{
		"blockquote": func(*html.Node) *document.DOMConversion {
			return &document.DOMConversion{Conversion: func(el *html.Node) (document.DOMConversionOutput, error) {
				n := NewQuote()
				n.SetFormat(alignOf(el))
				return document.DOMConversionOutput{Node: n}, nil
			}}
		},
	},
}

func alignedElement(tag, align string) *html.Node {
	el := document.NewElement(tag)
	if align != "" {
		el.Attr = append(el.Attr, html.Attribute{Key: "style", Val: "text-align: " + align + ";"})
	}
	return el
}

func alignOf(el *html.Node) string {
	style, ok := document.Attr(el, "style")
	if !ok {
		return ""
	}
	for _, d := range document.ParseStyle(style) {
		if d.Property == "text-align" {
			switch d.Value {
			case "left", "center", "right", "justify":
				return d.Value
			}
		}
	}
	return ""
}
