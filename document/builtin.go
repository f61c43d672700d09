package document

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NewElement returns a detached HTML element for tag with attrs.
func NewElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

// Attr returns the value of the named attribute on n.
func Attr(n *html.Node, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// RootNode is the document root. Only block nodes may be its direct
// children once a transaction commits through the rich-text plugins.
type RootNode struct {
	ElementBase
}

func (n *RootNode) Type() string   { return "root" }
func (n *RootNode) IsInline() bool { return false }

func (n *RootNode) Clone() Node {
	c := &RootNode{ElementBase: n.CloneElement()}
	return c
}

func (n *RootNode) ExportJSON() any { return n.SerializeElement("root") }

func (n *RootNode) ExportDOM() (*html.Node, error) { return NewElement("div"), nil }

func (n *RootNode) UpdateDOM(Node) bool { return false }

// ParagraphNode is the default block container.
type ParagraphNode struct {
	ElementBase
}

// NewParagraph returns a detached, empty paragraph.
func NewParagraph() *ParagraphNode { return &ParagraphNode{} }

func (n *ParagraphNode) Type() string   { return "paragraph" }
func (n *ParagraphNode) IsInline() bool { return false }

func (n *ParagraphNode) Clone() Node {
	return &ParagraphNode{ElementBase: n.CloneElement()}
}

func (n *ParagraphNode) ExportJSON() any { return n.SerializeElement("paragraph") }

func (n *ParagraphNode) ExportDOM() (*html.Node, error) {
	el := NewElement("p")
	if n.format != "" {
		el.Attr = append(el.Attr, html.Attribute{Key: "style", Val: "text-align: " + n.format + ";"})
	}
	return el, nil
}

func (n *ParagraphNode) UpdateDOM(Node) bool { return false }

// IsParagraph reports whether n is a paragraph.
func IsParagraph(n Node) bool {
	_, ok := n.(*ParagraphNode)
	return ok
}

// TextFormat is a bitmask of inline text formats.
type TextFormat uint32

const (
	FormatBold TextFormat = 1 << iota
	FormatItalic
	FormatStrikethrough
	FormatUnderline
	FormatCode
	FormatSubscript
	FormatSuperscript
	FormatHighlight
)

var textFormatNames = map[string]TextFormat{
	"bold":          FormatBold,
	"italic":        FormatItalic,
	"strikethrough": FormatStrikethrough,
	"underline":     FormatUnderline,
	"code":          FormatCode,
	"subscript":     FormatSubscript,
	"superscript":   FormatSuperscript,
	"highlight":     FormatHighlight,
}

// ParseTextFormat maps a format name such as "bold" to its flag.
func ParseTextFormat(name string) (TextFormat, bool) {
	f, ok := textFormatNames[strings.ToLower(name)]
	return f, ok
}

func (f TextFormat) Has(flag TextFormat) bool { return f&flag != 0 }

// TextNode is an inline run of text sharing one format and style.
type TextNode struct {
	NodeBase
	text   string
	format TextFormat
	style  string
}

// NewText returns a detached text node.
func NewText(text string) *TextNode { return &TextNode{text: text} }

func (n *TextNode) Type() string { return "text" }

func (n *TextNode) Clone() Node {
	c := *n
	return &c
}

func (n *TextNode) Text() string       { return n.text }
func (n *TextNode) Format() TextFormat { return n.format }
func (n *TextNode) Style() string      { return n.style }
func (n *TextNode) Len() int           { return len([]rune(n.text)) }

// SetText replaces the text. Call it on a node obtained from Tx.Writable.
func (n *TextNode) SetText(s string) *TextNode {
	n.text = s
	return n
}

// SetFormat replaces the format mask.
func (n *TextNode) SetFormat(f TextFormat) *TextNode {
	n.format = f
	return n
}

// SetStyle replaces the inline CSS.
func (n *TextNode) SetStyle(css string) *TextNode {
	n.style = css
	return n
}

// ToggleFormat flips the named format. Unknown names are ignored.
func (n *TextNode) ToggleFormat(name string) *TextNode {
	if f, ok := ParseTextFormat(name); ok {
		n.format ^= f
	}
	return n
}

// HasFormat reports whether the named format is set.
func (n *TextNode) HasFormat(name string) bool {
	f, ok := ParseTextFormat(name)
	return ok && n.format.Has(f)
}

type serializedText struct {
	Type    string     `json:"type"`
	Version int        `json:"version"`
	Detail  int        `json:"detail"`
	Format  TextFormat `json:"format"`
	Mode    string     `json:"mode"`
	Style   string     `json:"style"`
	Text    string     `json:"text"`
}

func (n *TextNode) ExportJSON() any {
	return serializedText{
		Type:    "text",
		Version: 1,
		Format:  n.format,
		Mode:    "normal",
		Style:   n.style,
		Text:    n.text,
	}
}

var formatTags = []struct {
	flag TextFormat
	tag  string
}{
	{FormatCode, "code"},
	{FormatSubscript, "sub"},
	{FormatSuperscript, "sup"},
	{FormatHighlight, "mark"},
	{FormatStrikethrough, "s"},
	{FormatUnderline, "u"},
	{FormatItalic, "em"},
	{FormatBold, "strong"},
}

func (n *TextNode) ExportDOM() (*html.Node, error) {
	out := &html.Node{Type: html.TextNode, Data: n.text}
	if n.style != "" {
		span := NewElement("span", html.Attribute{Key: "style", Val: n.style})
		span.AppendChild(out)
		out = span
	}
	for _, ft := range formatTags {
		if !n.format.Has(ft.flag) {
			continue
		}
		el := NewElement(ft.tag)
		el.AppendChild(out)
		out = el
	}
	return out, nil
}

func (n *TextNode) UpdateDOM(prev Node) bool {
	p, ok := prev.(*TextNode)
	return !ok || p.format != n.format
}

// IsText reports whether n is a text node.
func IsText(n Node) bool {
	_, ok := n.(*TextNode)
	return ok
}

func importRootJSON(data []byte) (Node, error) {
	var s SerializedElement
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "root")
	}
	n := &RootNode{}
	n.ApplySerialized(s)
	return n, nil
}

func importParagraphJSON(data []byte) (Node, error) {
	var s SerializedElement
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "paragraph")
	}
	n := NewParagraph()
	n.ApplySerialized(s)
	return n, nil
}

func importTextJSON(data []byte) (Node, error) {
	var s serializedText
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "text")
	}
	return NewText(s.Text).SetFormat(s.Format).SetStyle(s.Style), nil
}

func convertParagraph(el *html.Node) (DOMConversionOutput, error) {
	p := NewParagraph()
	if style, ok := Attr(el, "style"); ok {
		p.SetFormat(styleLookup(style, "text-align"))
	}
	return DOMConversionOutput{Node: p}, nil
}

func formatConversion(f TextFormat) DOMMatcher {
	return func(*html.Node) *DOMConversion {
		return &DOMConversion{
			Priority: 0,
			Conversion: func(*html.Node) (DOMConversionOutput, error) {
				return DOMConversionOutput{Format: f}, nil
			},
		}
	}
}

func convertSpan(*html.Node) *DOMConversion {
	return &DOMConversion{
		Priority: 0,
		Conversion: func(el *html.Node) (DOMConversionOutput, error) {
			out := DOMConversionOutput{}
			if style, ok := Attr(el, "style"); ok {
				out.Style = style
				if v := styleLookup(style, "font-weight"); v == "bold" || v == "700" {
					out.Format |= FormatBold
				}
				if styleLookup(style, "font-style") == "italic" {
					out.Format |= FormatItalic
				}
			}
			return out, nil
		},
	}
}

// RootClass, ParagraphClass and TextClass are always registered.
var (
	RootClass = Class{Type: "root", ImportJSON: importRootJSON}

	ParagraphClass = Class{
		Type:       "paragraph",
		ImportJSON: importParagraphJSON,
		ImportDOM: DOMConversionMap{
			"p": func(*html.Node) *DOMConversion {
				return &DOMConversion{Conversion: convertParagraph}
			},
		},
	}

	TextClass = Class{
		Type:       "text",
		ImportJSON: importTextJSON,
		ImportDOM: DOMConversionMap{
			"b":      formatConversion(FormatBold),
			"strong": formatConversion(FormatBold),
			"i":      formatConversion(FormatItalic),
			"em":     formatConversion(FormatItalic),
			"u":      formatConversion(FormatUnderline),
			"s":      formatConversion(FormatStrikethrough),
			"del":    formatConversion(FormatStrikethrough),
			"code":   formatConversion(FormatCode),
			"sub":    formatConversion(FormatSubscript),
			"sup":    formatConversion(FormatSuperscript),
			"mark":   formatConversion(FormatHighlight),
			"span":   convertSpan,
		},
	}
)
