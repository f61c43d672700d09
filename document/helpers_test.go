package document

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

type testDecorator struct {
	NodeBase
	label string
}

func (n *testDecorator) Type() string   { return "testdeco" }
func (n *testDecorator) IsInline() bool { return true }

func (n *testDecorator) Clone() Node {
	c := *n
	return &c
}

func (n *testDecorator) ExportJSON() any {
	return map[string]any{"type": "testdeco", "version": 1, "label": n.label}
}

func (n *testDecorator) ExportDOM() (*html.Node, error) {
	return NewElement("span", html.Attribute{Key: "data-deco", Val: n.label}), nil
}

func (n *testDecorator) UpdateDOM(Node) bool { return false }

func (n *testDecorator) Decorate(*Editor) any { return n.label }

var testDecoratorClass = Class{
	Type: "testdeco",
	ImportJSON: func(data []byte) (Node, error) {
		var s struct {
			Label string `json:"label"`
		}
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return &testDecorator{label: s.Label}, nil
	},
	ImportDOM: DOMConversionMap{
		"span": func(el *html.Node) *DOMConversion {
			label, ok := Attr(el, "data-deco")
			if !ok {
				return nil
			}
			return &DOMConversion{
				Priority: 2,
				Conversion: func(*html.Node) (DOMConversionOutput, error) {
					if label == "bad" {
						return DOMConversionOutput{}, errors.New("bad label")
					}
					return DOMConversionOutput{Node: &testDecorator{label: label}}, nil
				},
			}
		},
	},
}

func newTestEditor(t *testing.T) *Editor {
	t.Helper()
	e, err := New(Config{Nodes: []Class{testDecoratorClass}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

// seedParagraph fills an empty editor with one paragraph holding text and
// places the caret at offset. It returns the paragraph and text keys.
func seedParagraph(t *testing.T, e *Editor, text string, offset int) (NodeKey, NodeKey) {
	t.Helper()
	var pk, tk NodeKey
	err := e.Update(func(tx *Tx) error {
		p := Create(tx, NewParagraph())
		tn := Create(tx, NewText(text))
		if err := tx.Append(tx.Root(), p); err != nil {
			return err
		}
		if err := tx.Append(p, tn); err != nil {
			return err
		}
		tx.SetSelection(NewCaret(TextPoint(tn.Key(), offset)))
		pk, tk = p.Key(), tn.Key()
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return pk, tk
}

func mustUpdate(t *testing.T, e *Editor, fn func(tx *Tx) error) {
	t.Helper()
	if err := e.Update(fn); err != nil {
		t.Fatalf("update: %v", err)
	}
}

func childTypes(s *State, key NodeKey) []string {
	var out []string
	for _, c := range s.Children(key) {
		out = append(out, c.Type())
	}
	return out
}
