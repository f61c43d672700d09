// Package toolbar is a Bubble Tea component that reflects the formatting of
// the current selection and dispatches formatting and insertion commands to
// a document.Editor.
//
// The toolbar never edits the document itself. Colors are patched inside a
// scoped editor update; everything else goes through the command bus.
package toolbar
