package nodes

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/net/html"

	"github.com/bitbriks/bitbrik/document"
)

// TableNode is a grid of rows.
type TableNode struct {
	document.ElementBase
}

func NewTable() *TableNode { return &TableNode{} }

func (n *TableNode) Type() string   { return "table" }
func (n *TableNode) IsInline() bool { return false }

func (n *TableNode) Clone() document.Node {
	return &TableNode{ElementBase: n.CloneElement()}
}

func (n *TableNode) ExportJSON() any { return n.SerializeElement("table") }

func (n *TableNode) ExportDOM() (*html.Node, error) { return document.NewElement("table"), nil }

func (n *TableNode) UpdateDOM(document.Node) bool { return false }

// TableRowNode is one row of cells.
type TableRowNode struct {
	document.ElementBase
}

func NewTableRow() *TableRowNode { return &TableRowNode{} }

func (n *TableRowNode) Type() string   { return "tablerow" }
func (n *TableRowNode) IsInline() bool { return false }

func (n *TableRowNode) Clone() document.Node {
	return &TableRowNode{ElementBase: n.CloneElement()}
}

func (n *TableRowNode) ExportJSON() any { return n.SerializeElement("tablerow") }

func (n *TableRowNode) ExportDOM() (*html.Node, error) { return document.NewElement("tr"), nil }

func (n *TableRowNode) UpdateDOM(document.Node) bool { return false }

// TableCellNode holds block content. Header cells render as th.
type TableCellNode struct {
	document.ElementBase
	header  bool
	colSpan int
}

func NewTableCell(header bool) *TableCellNode {
	return &TableCellNode{header: header, colSpan: 1}
}

func (n *TableCellNode) Type() string   { return "tablecell" }
func (n *TableCellNode) IsInline() bool { return false }
func (n *TableCellNode) Header() bool   { return n.header }
func (n *TableCellNode) ColSpan() int   { return n.colSpan }

func (n *TableCellNode) Clone() document.Node {
	return &TableCellNode{ElementBase: n.CloneElement(), header: n.header, colSpan: n.colSpan}
}

type serializedTableCell struct {
	document.SerializedElement
	HeaderState int `json:"headerState"`
	ColSpan     int `json:"colSpan"`
}

func (n *TableCellNode) ExportJSON() any {
	s := serializedTableCell{SerializedElement: n.SerializeElement("tablecell"), ColSpan: n.colSpan}
	if n.header {
		s.HeaderState = 1
	}
	return s
}

func (n *TableCellNode) ExportDOM() (*html.Node, error) {
	tag := "td"
	if n.header {
		tag = "th"
	}
	el := document.NewElement(tag)
	if n.colSpan > 1 {
		el.Attr = append(el.Attr, html.Attribute{Key: "colspan", Val: strconv.Itoa(n.colSpan)})
	}
	return el, nil
}

func (n *TableCellNode) UpdateDOM(prev document.Node) bool {
	p, ok := prev.(*TableCellNode)
	return !ok || p.header != n.header
}

func importCell(header bool) document.DOMMatcher {
	return func(*html.Node) *document.DOMConversion {
		return &document.DOMConversion{Conversion: func(el *html.Node) (document.DOMConversionOutput, error) {
			n := NewTableCell(header)
			if v, ok := document.Attr(el, "colspan"); ok {
				if span, err := strconv.Atoi(v); err == nil && span > 1 {
					n.colSpan = span
				}
			}
			return document.DOMConversionOutput{Node: n}, nil
		}}
	}
}

func importElementJSON(typ string, create func() document.ElementNode) func([]byte) (document.Node, error) {
	return func(data []byte) (document.Node, error) {
		var s document.SerializedElement
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, errors.Wrap(err, typ)
		}
		n := create()
		if a, ok := n.(interface {
			ApplySerialized(document.SerializedElement)
		}); ok {
			a.ApplySerialized(s)
		}
		return n, nil
	}
}

// Table classes.
var (
	TableClass = document.Class{
		Type:       "table",
		ImportJSON: importElementJSON("table", func() document.ElementNode { return NewTable() }),
		ImportDOM: document.DOMConversionMap{
			"table": func(*html.Node) *document.DOMConversion {
				return &document.DOMConversion{Conversion: func(*html.Node) (document.DOMConversionOutput, error) {
					return document.DOMConversionOutput{Node: NewTable()}, nil
				}}
			},
		},
	}

	TableRowClass = document.Class{
		Type:       "tablerow",
		ImportJSON: importElementJSON("tablerow", func() document.ElementNode { return NewTableRow() }),
		ImportDOM: document.DOMConversionMap{
			"tr": func(*html.Node) *document.DOMConversion {
				return &document.DOMConversion{Conversion: func(*html.Node) (document.DOMConversionOutput, error) {
					return document.DOMConversionOutput{Node: NewTableRow()}, nil
				}}
			},
		},
	}

	TableCellClass = document.Class{
		Type: "tablecell",
		ImportJSON: func(data []byte) (document.Node, error) {
			var s serializedTableCell
			if err := json.Unmarshal(data, &s); err != nil {
				return nil, errors.Wrap(err, "tablecell")
			}
			n := NewTableCell(s.HeaderState != 0)
			if s.ColSpan > 1 {
				n.colSpan = s.ColSpan
			}
			n.ApplySerialized(s.SerializedElement)
			return n, nil
		},
		ImportDOM: document.DOMConversionMap{
			"td": importCell(false),
			"th": importCell(true),
		},
	}
)

// InsertTablePayload sizes a new table. The first row is a header row when
// Headers is set.
type InsertTablePayload struct {
	Rows    int
	Columns int
	Headers bool
}

// InsertTableCommand inserts a table at the selection.
var InsertTableCommand = document.NewCommand[InsertTablePayload]("INSERT_TABLE_COMMAND")

// InsertTable inserts a rows x columns table with an empty paragraph in every
// cell and moves the caret into the first cell.
func InsertTable(tx *document.Tx, p InsertTablePayload) error {
	if p.Rows < 1 || p.Columns < 1 {
		return errors.Errorf("table size %dx%d", p.Rows, p.Columns)
	}
	table := document.Create(tx, NewTable())
	var first document.Node
	for r := 0; r < p.Rows; r++ {
		row := document.Create(tx, NewTableRow())
		if err := tx.Append(table, row); err != nil {
			return err
		}
		for c := 0; c < p.Columns; c++ {
			cell := document.Create(tx, NewTableCell(p.Headers && r == 0))
			para := document.Create(tx, document.NewParagraph())
			if err := tx.Append(cell, para); err != nil {
				return err
			}
			if err := tx.Append(row, cell); err != nil {
				return err
			}
			if first == nil {
				first = para
			}
		}
	}
	if err := tx.InsertNodes(table); err != nil {
		return err
	}
	tx.SelectStart(first)
	return nil
}

// TablePlugin handles InsertTableCommand.
func TablePlugin() document.Plugin {
	return document.PluginFunc(func(e *document.Editor) (func(), error) {
		if !e.HasNodes("table", "tablerow", "tablecell") {
			return nil, errors.Wrap(ErrNodesNotRegistered, "table, tablerow, tablecell")
		}
		return document.RegisterCommand(e, InsertTableCommand, func(tx *document.Tx, p InsertTablePayload) bool {
			if err := InsertTable(tx, p); err != nil {
				tx.Fail(err)
			}
			return true
		}, document.PriorityEditor), nil
	})
}
