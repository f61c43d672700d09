package nodes

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"golang.org/x/net/html"

	"github.com/bitbriks/bitbrik/document"
	"github.com/bitbriks/bitbrik/internal/grapheme"
)

// HorizontalRuleNode is a block divider.
type HorizontalRuleNode struct {
	document.NodeBase
}

func NewHorizontalRule() *HorizontalRuleNode { return &HorizontalRuleNode{} }

func (n *HorizontalRuleNode) Type() string   { return "horizontalrule" }
func (n *HorizontalRuleNode) IsInline() bool { return false }

func (n *HorizontalRuleNode) Clone() document.Node {
	c := *n
	return &c
}

func (n *HorizontalRuleNode) ExportJSON() any {
	return map[string]any{"type": "horizontalrule", "version": 1}
}

func (n *HorizontalRuleNode) ExportDOM() (*html.Node, error) { return document.NewElement("hr"), nil }

func (n *HorizontalRuleNode) UpdateDOM(document.Node) bool { return false }

func (n *HorizontalRuleNode) Decorate(*document.Editor) any { return ruleComponent{} }

type ruleComponent struct{}

func (ruleComponent) Mount(*document.Editor) func() { return func() {} }

func (ruleComponent) View(_ document.Node, width int) string {
	if width < 1 {
		width = 1
	}
	return ruleStyle.Render(strings.Repeat("─", width))
}

var ruleStyle = lipgloss.NewStyle().Faint(true)

// HorizontalRuleClass registers horizontal rules.
var HorizontalRuleClass = document.Class{
	Type: "horizontalrule",
	ImportJSON: func([]byte) (document.Node, error) {
		return NewHorizontalRule(), nil
	},
	ImportDOM: document.DOMConversionMap{
		"hr": func(*html.Node) *document.DOMConversion {
			return &document.DOMConversion{Conversion: func(*html.Node) (document.DOMConversionOutput, error) {
				return document.DOMConversionOutput{Node: NewHorizontalRule()}, nil
			}}
		},
	},
}

// InsertHorizontalRuleCommand inserts a divider at the selection.
var InsertHorizontalRuleCommand = document.NewCommand[struct{}]("INSERT_HORIZONTAL_RULE_COMMAND")

// HorizontalRulePlugin handles InsertHorizontalRuleCommand.
func HorizontalRulePlugin() document.Plugin {
	return document.PluginFunc(func(e *document.Editor) (func(), error) {
		if !e.HasNodes("horizontalrule") {
			return nil, errors.Wrap(ErrNodesNotRegistered, "horizontalrule")
		}
		return document.RegisterCommand(e, InsertHorizontalRuleCommand, func(tx *document.Tx, _ struct{}) bool {
			hr := document.Create(tx, NewHorizontalRule())
			if err := tx.InsertNodes(hr); err != nil {
				tx.Fail(err)
				return true
			}
			if next := tx.NextSibling(hr.Key()); next != nil {
				tx.SelectStart(next)
				return true
			}
			p := document.Create(tx, document.NewParagraph())
			if err := tx.InsertAfter(hr, p); err != nil {
				tx.Fail(err)
				return true
			}
			tx.SelectStart(p)
			return true
		}, document.PriorityEditor), nil
	})
}

// ImageNode is an inline picture.
type ImageNode struct {
	document.NodeBase
	src    string
	alt    string
	width  int
	height int
}

// NewImage returns an image with no fixed size.
func NewImage(src, alt string) *ImageNode { return &ImageNode{src: src, alt: alt} }

func (n *ImageNode) Type() string    { return "image" }
func (n *ImageNode) IsInline() bool  { return true }
func (n *ImageNode) Src() string     { return n.src }
func (n *ImageNode) AltText() string { return n.alt }

// Size returns the width and height; 0 means "inherit".
func (n *ImageNode) Size() (int, int) { return n.width, n.height }

func (n *ImageNode) SetSize(width, height int) {
	n.width, n.height = max(width, 0), max(height, 0)
}

func (n *ImageNode) Clone() document.Node {
	c := *n
	return &c
}

type serializedImage struct {
	Type    string `json:"type"`
	Version int    `json:"version"`
	Src     string `json:"src"`
	AltText string `json:"altText"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

func (n *ImageNode) ExportJSON() any {
	return serializedImage{Type: "image", Version: 1, Src: n.src, AltText: n.alt, Width: n.width, Height: n.height}
}

func (n *ImageNode) ExportDOM() (*html.Node, error) {
	el := document.NewElement("img",
		html.Attribute{Key: "src", Val: n.src},
		html.Attribute{Key: "alt", Val: n.alt},
	)
	if n.width > 0 {
		el.Attr = append(el.Attr, html.Attribute{Key: "width", Val: strconv.Itoa(n.width)})
	}
	if n.height > 0 {
		el.Attr = append(el.Attr, html.Attribute{Key: "height", Val: strconv.Itoa(n.height)})
	}
	return el, nil
}

func (n *ImageNode) UpdateDOM(document.Node) bool { return false }

func (n *ImageNode) Decorate(*document.Editor) any { return imageComponent{} }

type imageComponent struct{}

func (imageComponent) Mount(*document.Editor) func() { return func() {} }

func (imageComponent) View(node document.Node, width int) string {
	img, ok := node.(*ImageNode)
	if !ok {
		return ""
	}
	label := img.alt
	if label == "" {
		label = img.src
	}
	return imageStyle.Render(grapheme.Truncate(fmt.Sprintf("[image: %s]", label), width))
}

var imageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

// ImageClass registers images.
var ImageClass = document.Class{
	Type: "image",
	ImportJSON: func(data []byte) (document.Node, error) {
		var s serializedImage
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, errors.Wrap(err, "image")
		}
		n := NewImage(s.Src, s.AltText)
		n.SetSize(s.Width, s.Height)
		return n, nil
	},
	ImportDOM: document.DOMConversionMap{
		"img": func(el *html.Node) *document.DOMConversion {
			if src, _ := document.Attr(el, "src"); src == "" {
				return nil
			}
			return &document.DOMConversion{Conversion: func(el *html.Node) (document.DOMConversionOutput, error) {
				src, _ := document.Attr(el, "src")
				alt, _ := document.Attr(el, "alt")
				n := NewImage(src, alt)
				w, _ := document.Attr(el, "width")
				h, _ := document.Attr(el, "height")
				wi, _ := strconv.Atoi(w)
				hi, _ := strconv.Atoi(h)
				n.SetSize(wi, hi)
				return document.DOMConversionOutput{Node: n}, nil
			}}
		},
	},
}

// InsertImagePayload describes an image to insert.
type InsertImagePayload struct {
	Src     string
	AltText string
}

// InsertImageCommand inserts an image at the selection.
var InsertImageCommand = document.NewCommand[InsertImagePayload]("INSERT_IMAGE_COMMAND")

// ImagesPlugin handles InsertImageCommand. An image landing directly under
// the root is wrapped in a paragraph.
func ImagesPlugin() document.Plugin {
	return document.PluginFunc(func(e *document.Editor) (func(), error) {
		if !e.HasNodes("image") {
			return nil, errors.Wrap(ErrNodesNotRegistered, "image")
		}
		return document.RegisterCommand(e, InsertImageCommand, func(tx *document.Tx, p InsertImagePayload) bool {
			img := document.Create(tx, NewImage(p.Src, p.AltText))
			if err := tx.InsertNodes(img); err != nil {
				tx.Fail(err)
				return true
			}
			if img.Parent() == document.RootKey {
				if _, err := tx.WrapNodeInElement(img, func() document.ElementNode { return document.NewParagraph() }); err != nil {
					tx.Fail(err)
					return true
				}
				tx.SelectEnd(img)
			}
			return true
		}, document.PriorityEditor), nil
	})
}
