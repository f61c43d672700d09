package nodes

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/html"

	"github.com/bitbriks/bitbrik/document"
)

var allowedSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"mailto": true,
	"sms":    true,
	"tel":    true,
}

// SanitizeURL returns raw unchanged when its scheme is allowed and
// "about:blank" otherwise. Relative and unparsable URLs are kept.
func SanitizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" {
		return raw
	}
	if !allowedSchemes[strings.ToLower(u.Scheme)] {
		return "about:blank"
	}
	return raw
}

// LinkAttributes are the optional anchor attributes of a link.
type LinkAttributes struct {
	Target string `json:"target,omitempty"`
	Rel    string `json:"rel,omitempty"`
	Title  string `json:"title,omitempty"`
}

// LinkNode is an inline element wrapping the linked text.
type LinkNode struct {
	document.ElementBase
	url   string
	attrs LinkAttributes
}

// NewLink returns a link to the sanitized url.
func NewLink(rawURL string, attrs LinkAttributes) *LinkNode {
	return &LinkNode{url: SanitizeURL(rawURL), attrs: attrs}
}

func (n *LinkNode) Type() string               { return "link" }
func (n *LinkNode) IsInline() bool             { return true }
func (n *LinkNode) URL() string                { return n.url }
func (n *LinkNode) Attributes() LinkAttributes { return n.attrs }

func (n *LinkNode) SetURL(rawURL string) { n.url = SanitizeURL(rawURL) }

func (n *LinkNode) Clone() document.Node {
	return &LinkNode{ElementBase: n.CloneElement(), url: n.url, attrs: n.attrs}
}

type serializedLink struct {
	document.SerializedElement
	URL string `json:"url"`
	LinkAttributes
}

func (n *LinkNode) ExportJSON() any {
	return serializedLink{SerializedElement: n.SerializeElement("link"), URL: n.url, LinkAttributes: n.attrs}
}

func (n *LinkNode) ExportDOM() (*html.Node, error) {
	el := document.NewElement("a", html.Attribute{Key: "href", Val: n.url})
	for _, a := range []html.Attribute{
		{Key: "target", Val: n.attrs.Target},
		{Key: "rel", Val: n.attrs.Rel},
		{Key: "title", Val: n.attrs.Title},
	} {
		if a.Val != "" {
			el.Attr = append(el.Attr, a)
		}
	}
	return el, nil
}

func (n *LinkNode) UpdateDOM(document.Node) bool { return false }

// LinkClass registers link nodes.
var LinkClass = document.Class{
	Type: "link",
	ImportJSON: func(data []byte) (document.Node, error) {
		var s serializedLink
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, errors.Wrap(err, "link")
		}
		n := NewLink(s.URL, s.LinkAttributes)
		n.ApplySerialized(s.SerializedElement)
		return n, nil
	},
	ImportDOM: document.DOMConversionMap{
		"a": func(el *html.Node) *document.DOMConversion {
			if _, ok := document.Attr(el, "href"); !ok {
				return nil
			}
			return &document.DOMConversion{Conversion: func(el *html.Node) (document.DOMConversionOutput, error) {
				href, _ := document.Attr(el, "href")
				var attrs LinkAttributes
				attrs.Target, _ = document.Attr(el, "target")
				attrs.Rel, _ = document.Attr(el, "rel")
				attrs.Title, _ = document.Attr(el, "title")
				return document.DOMConversionOutput{Node: NewLink(href, attrs)}, nil
			}}
		},
	},
}

// ToggleLinkCommand links the selected text to the payload URL, or unlinks
// it when the payload is empty.
var ToggleLinkCommand = document.NewCommand[string]("TOGGLE_LINK_COMMAND")

// LinkAt returns the link enclosing key, if any.
func LinkAt(s *document.State, key document.NodeKey) (*LinkNode, bool) {
	n, ok := s.FindMatchingParent(key, func(n document.Node) bool {
		_, ok := n.(*LinkNode)
		return ok
	})
	if !ok {
		return nil, false
	}
	return n.(*LinkNode), true
}

// IsLinkSelected reports whether the focus of the selection is inside a
// link.
func IsLinkSelected(s *document.State) bool {
	sel, ok := document.AsRange(s.Selection())
	if !ok {
		return false
	}
	_, ok = LinkAt(s, sel.Focus.Key)
	return ok
}

// ToggleLink wraps the selected text in a link to rawURL. A selection inside
// an existing link updates its URL instead. An empty rawURL unwraps every
// link touching the selection.
func ToggleLink(tx *document.Tx, rawURL string) error {
	sel, ok := tx.RangeSelection()
	if !ok {
		return nil
	}
	if rawURL == "" {
		return unlink(tx, sel)
	}
	if l, ok := LinkAt(tx.State, sel.Focus.Key); ok {
		if a, ok := LinkAt(tx.State, sel.Anchor.Key); ok && a.Key() == l.Key() {
			document.Writable(tx, l).SetURL(rawURL)
			return nil
		}
	}
	if sel.IsCollapsed() {
		return nil
	}
	var cur *LinkNode
	for _, t := range tx.SelectedText() {
		if old, ok := LinkAt(tx.State, t.Key()); ok {
			document.Writable(tx, old).SetURL(rawURL)
			cur = nil
			continue
		}
		if prev := tx.PrevSibling(t.Key()); cur == nil || prev == nil || prev.Key() != cur.Key() {
			cur = document.Create(tx, NewLink(rawURL, LinkAttributes{}))
			if err := tx.InsertBefore(t, cur); err != nil {
				return err
			}
		}
		if err := tx.Append(cur, t); err != nil {
			return err
		}
	}
	return nil
}

// unlink moves the children of every link touching sel out of it.
func unlink(tx *document.Tx, sel *document.RangeSelection) error {
	keys := []document.NodeKey{sel.Anchor.Key, sel.Focus.Key}
	for _, n := range tx.SelectedNodes(sel) {
		keys = append(keys, n.Key())
	}
	seen := map[document.NodeKey]bool{}
	for _, k := range keys {
		l, ok := LinkAt(tx.State, k)
		if !ok || seen[l.Key()] {
			continue
		}
		seen[l.Key()] = true
		for _, c := range tx.Children(l.Key()) {
			if err := tx.InsertBefore(l, c); err != nil {
				return err
			}
		}
		if err := tx.Remove(l); err != nil {
			return err
		}
	}
	return nil
}

// LinkPlugin handles ToggleLinkCommand.
func LinkPlugin() document.Plugin {
	return document.PluginFunc(func(e *document.Editor) (func(), error) {
		if !e.HasNodes("link") {
			return nil, errors.Wrap(ErrNodesNotRegistered, "link")
		}
		return document.RegisterCommand(e, ToggleLinkCommand, func(tx *document.Tx, rawURL string) bool {
			if err := ToggleLink(tx, rawURL); err != nil {
				tx.Fail(err)
			}
			return true
		}, document.PriorityLow), nil
	})
}
