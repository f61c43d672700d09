package document

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// MarshalState encodes s as {"root": {...}} with element children nested
// under "children".
func MarshalState(s *State) ([]byte, error) {
	root, err := marshalNode(s, s.Root())
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]json.RawMessage{"root": root})
}

func marshalNode(s *State, n Node) (json.RawMessage, error) {
	data, err := json.Marshal(n.ExportJSON())
	if err != nil {
		return nil, errors.Wrapf(err, "export %s %s", n.Type(), n.Key())
	}
	el, ok := n.(ElementNode)
	if !ok {
		return data, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, errors.Wrapf(err, "export %s %s", n.Type(), n.Key())
	}
	children := make([]json.RawMessage, 0, el.element().ChildCount())
	for _, c := range s.Children(el.Key()) {
		raw, err := marshalNode(s, c)
		if err != nil {
			return nil, err
		}
		children = append(children, raw)
	}
	kids, err := json.Marshal(children)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	fields["children"] = kids
	return json.Marshal(fields)
}

type serializedHeader struct {
	Type     string            `json:"type"`
	Children []json.RawMessage `json:"children"`
}

// ParseState decodes data produced by MarshalState into a detached state
// built from the editor's registry. Unknown types fail with ErrUnknownType;
// malformed nodes fail with an error naming their type.
func (e *Editor) ParseState(data []byte) (*State, error) {
	var doc struct {
		Root json.RawMessage `json:"root"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parse state")
	}
	if len(doc.Root) == 0 {
		return nil, errors.New("parse state: missing root")
	}
	tx := newTx(e, newEmptyState())
	defer func() { tx.done = true }()

	var hdr serializedHeader
	if err := json.Unmarshal(doc.Root, &hdr); err != nil {
		return nil, errors.Wrap(err, "parse state: root")
	}
	if hdr.Type != "root" {
		return nil, errors.Errorf("parse state: root has type %q", hdr.Type)
	}
	if parsed, err := importRootJSON(doc.Root); err == nil {
		root := Writable(tx, tx.Root())
		root.format = parsed.(*RootNode).format
		root.indent = parsed.(*RootNode).indent
	}
	for _, raw := range hdr.Children {
		if err := tx.importJSON(tx.Root(), raw); err != nil {
			return nil, err
		}
	}
	tx.collect()
	tx.selection = nil
	return tx.State, nil
}

func (tx *Tx) importJSON(parent Node, raw json.RawMessage) error {
	var hdr serializedHeader
	if err := json.Unmarshal(raw, &hdr); err != nil {
		return errors.Wrap(err, "parse state: node")
	}
	c, ok := tx.Registry().Class(hdr.Type)
	if !ok {
		return errors.Wrapf(ErrUnknownType, "%q", hdr.Type)
	}
	n, err := c.ImportJSON(raw)
	if err != nil {
		return errors.Wrapf(err, "parse state: %s", hdr.Type)
	}
	n = Create(tx, n)
	if err := tx.Append(parent, n); err != nil {
		return err
	}
	if !IsElement(n) {
		return nil
	}
	for _, child := range hdr.Children {
		if err := tx.importJSON(n, child); err != nil {
			return err
		}
	}
	return nil
}

// SetState replaces the document and selection with s.
func (tx *Tx) SetState(s *State) {
	tx.checkOpen()
	tx.restore(s)
}
