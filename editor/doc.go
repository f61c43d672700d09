// Package editor provides a Bubble Tea component that renders a
// document.Editor and turns terminal input into editor commands.
//
// The package is responsible for layout (wrapping, block prefixes, tables),
// caret and selection rendering, hit-testing mouse clicks to nodes,
// mounting decorator components and keeping the viewport on the caret.
package editor
