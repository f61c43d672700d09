package document

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ExportHTML renders the children of the root as HTML. Theme classes are
// added to elements by node type.
func ExportHTML(s *State, theme Theme) (string, error) {
	var buf bytes.Buffer
	for _, n := range s.Children(RootKey) {
		dom, err := exportDOM(s, n, theme)
		if err != nil {
			return "", err
		}
		if dom == nil {
			continue
		}
		if err := html.Render(&buf, dom); err != nil {
			return "", errors.Wrap(err, "render html")
		}
	}
	return buf.String(), nil
}

// ExportNodesHTML renders the given nodes and their descendants.
func ExportNodesHTML(s *State, theme Theme, keys ...NodeKey) (string, error) {
	var buf bytes.Buffer
	for _, k := range keys {
		n, ok := s.Node(k)
		if !ok {
			return "", errors.Wrapf(ErrNodeNotFound, "%s", k)
		}
		dom, err := exportDOM(s, n, theme)
		if err != nil {
			return "", err
		}
		if dom == nil {
			continue
		}
		if err := html.Render(&buf, dom); err != nil {
			return "", errors.Wrap(err, "render html")
		}
	}
	return buf.String(), nil
}

func exportDOM(s *State, n Node, theme Theme) (*html.Node, error) {
	dom, err := n.ExportDOM()
	if err != nil {
		return nil, errors.Wrapf(err, "export %s %s", n.Type(), n.Key())
	}
	if dom == nil {
		return nil, nil
	}
	if cls := theme[n.Type()]; cls != "" && dom.Type == html.ElementNode {
		addClass(dom, cls)
	}
	if el, ok := n.(ElementNode); ok {
		for _, c := range s.Children(el.Key()) {
			cd, err := exportDOM(s, c, theme)
			if err != nil {
				return nil, err
			}
			if cd != nil {
				dom.AppendChild(cd)
			}
		}
	}
	return dom, nil
}

func addClass(n *html.Node, cls string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == "class" {
			n.Attr[i].Val = strings.TrimSpace(a.Val + " " + cls)
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: cls})
}

var spaceRun = regexp.MustCompile(`[ \t\r\n\f]+`)

// skipped elements never produce nodes.
var skipped = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
	atom.Head:   true,
	atom.Title:  true,
	atom.Meta:   true,
	atom.Link:   true,
}

// GenerateNodesFromDOM parses markup into detached nodes owned by tx. Each
// element is converted by the highest-priority matcher claiming it;
// unclaimed elements are unwrapped. An element whose conversion fails is
// skipped with its subtree and logged; the rest of the markup still imports.
func GenerateNodesFromDOM(tx *Tx, markup string) ([]Node, error) {
	tx.checkOpen()
	if p := tx.editor.cfg.Sanitizer; p != nil {
		markup = p.Sanitize(markup)
	}
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	frags, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, errors.Wrap(err, "parse html")
	}
	var out []Node
	for _, f := range frags {
		out = append(out, tx.importDOM(f, 0, "")...)
	}
	return out, nil
}

func (tx *Tx) importDOM(n *html.Node, format TextFormat, style string) []Node {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" && strings.ContainsAny(n.Data, "\n\r") {
			return nil
		}
		text := spaceRun.ReplaceAllString(n.Data, " ")
		if text == "" {
			return nil
		}
		return []Node{Create(tx, NewText(text).SetFormat(format).SetStyle(style))}
	case html.ElementNode:
		if skipped[n.DataAtom] {
			return nil
		}
	case html.DocumentNode:
	default:
		return nil
	}

	var conv *DOMConversion
	if n.Type == html.ElementNode {
		conv = tx.Registry().conversionFor(n)
	}
	if conv == nil {
		return tx.importChildren(n, format, style)
	}
	res, err := conv.Conversion(n)
	if err != nil {
		tx.editor.logger.Warn().Err(err).Str("tag", n.Data).Msg("skipping element that failed to convert")
		return nil
	}
	format |= res.Format
	if res.Style != "" {
		style = strings.TrimSpace(strings.TrimSpace(style) + " " + res.Style)
	}
	if res.Node == nil {
		return tx.importChildren(n, format, style)
	}
	node := Create(tx, res.Node)
	if IsElement(node) {
		kids := tx.importChildren(n, format, style)
		if !IsInline(node) {
			kids = trimEdgeSpace(kids)
		}
		if err := tx.Append(node, kids...); err != nil {
			tx.editor.logger.Warn().Err(err).Str("tag", n.Data).Msg("dropping children that do not fit")
		}
	}
	return []Node{node}
}

func (tx *Tx) importChildren(n *html.Node, format TextFormat, style string) []Node {
	var out []Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, tx.importDOM(c, format, style)...)
	}
	return out
}

// trimEdgeSpace drops the collapsed space at the start and end of a block.
func trimEdgeSpace(nodes []Node) []Node {
	trim := func(i int, fn func(string) string) {
		t, ok := nodes[i].(*TextNode)
		if !ok {
			return
		}
		t.text = fn(t.text)
	}
	if len(nodes) == 0 {
		return nodes
	}
	trim(0, func(s string) string { return strings.TrimLeft(s, " ") })
	trim(len(nodes)-1, func(s string) string { return strings.TrimRight(s, " ") })
	out := nodes[:0]
	for _, n := range nodes {
		if t, ok := n.(*TextNode); ok && t.text == "" {
			continue
		}
		out = append(out, n)
	}
	return out
}

// ImportHTML parses markup and inserts the result at the selection, wrapping
// loose inline content in paragraphs when it lands at the root.
func (tx *Tx) ImportHTML(markup string) error {
	nodes, err := GenerateNodesFromDOM(tx, markup)
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		return nil
	}
	allInline := true
	for _, n := range nodes {
		if !IsInline(n) {
			allInline = false
			break
		}
	}
	if !allInline {
		if nodes, err = tx.WrapInlineRuns(nodes); err != nil {
			return err
		}
	}
	return tx.InsertNodes(nodes...)
}
