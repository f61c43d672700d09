package bitbrik

import (
	"github.com/microcosm-cc/bluemonday"

	"github.com/bitbriks/bitbrik/document"
)

// DefaultTheme returns the CSS classes of the playground stylesheet.
func DefaultTheme() document.Theme {
	return document.Theme{
		"paragraph":      "PlaygroundEditorTheme__paragraph",
		"quote":          "PlaygroundEditorTheme__quote",
		"heading":        "PlaygroundEditorTheme__heading",
		"list":           "PlaygroundEditorTheme__list",
		"listitem":       "PlaygroundEditorTheme__listItem",
		"link":           "PlaygroundEditorTheme__link",
		"table":          "PlaygroundEditorTheme__table",
		"tablecell":      "PlaygroundEditorTheme__tableCell",
		"horizontalrule": "PlaygroundEditorTheme__hr",
		"image":          "PlaygroundEditorTheme__image",
	}
}

// SanitizePolicy returns the HTML policy used when Config.Sanitize is set:
// user-generated content plus the inline styles the editor understands and
// the products embed attribute.
func SanitizePolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("data-lexical-products").OnElements("span")
	p.AllowStyles("color", "background-color", "text-align").Globally()
	return p
}
