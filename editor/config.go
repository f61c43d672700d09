package editor

import (
	"github.com/rs/zerolog"

	"github.com/bitbriks/bitbrik/document"
)

// Config configures the editor Model.
type Config struct {
	// Editor is the document the model renders. Required.
	Editor *document.Editor

	// Rendering options.
	Style       Style
	Placeholder string

	KeyMap KeyMap

	// Clipboard backs copy, cut and paste. Nil disables them.
	Clipboard Clipboard

	ScrollPolicy ScrollPolicy

	// OnChange is called when the model observes a new committed state.
	OnChange func(ChangeEvent)

	// Logger receives component failures. Zero value logs nowhere.
	Logger zerolog.Logger
}
