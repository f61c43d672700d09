package bitbrik

import (
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/pkg/errors"

	"github.com/bitbriks/bitbrik/document"
)

// ExportHTML renders the document as HTML within one read.
func (e *Editor) ExportHTML() *Future[string] {
	return resolved(exportHTML(e.doc, e.cfg.Theme))
}

// ExportMarkdown renders the document as CommonMark with tables.
func (e *Editor) ExportMarkdown() *Future[string] {
	markup, err := exportHTML(e.doc, e.cfg.Theme)
	if err != nil {
		return resolved("", err)
	}
	return resolved(HTMLToMarkdown(markup))
}

// ExportJSON serializes the editor state.
func (e *Editor) ExportJSON() *Future[[]byte] {
	var data []byte
	err := e.doc.Read(func(s *document.State) error {
		var err error
		data, err = document.MarshalState(s)
		return err
	})
	return resolved(data, errors.Wrap(err, "bitbrik: export json"))
}

func exportHTML(doc *document.Editor, theme document.Theme) (string, error) {
	var markup string
	err := doc.Read(func(s *document.State) error {
		var err error
		markup, err = document.ExportHTML(s, theme)
		return err
	})
	return markup, errors.Wrap(err, "bitbrik: export html")
}

// HTMLToMarkdown converts exported HTML to Markdown.
func HTMLToMarkdown(markup string) (string, error) {
	md, err := markdown.ConvertString(markup)
	if err != nil {
		return "", errors.Wrap(err, "bitbrik: convert markdown")
	}
	return md, nil
}

var markdown = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)
