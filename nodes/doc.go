// Package nodes provides the rich-text node types of the playground editor
// (headings, quotes, lists, links, tables, horizontal rules and images) and
// the plugins that handle their commands.
//
// All returns every class in registration order; pass it to
// document.Config.Nodes together with any custom classes.
package nodes
