// Package bitbrik is a terminal rich-text editor with product embeds.
//
// New assembles the document model, the node types and their plugins, the
// editor view and the toolbar into one Editor. The Editor exposes an
// imperative API for hosts: exporting the document, inserting product
// embeds and tables, and the Bubble Tea model to run.
package bitbrik

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/bitbriks/bitbrik/document"
	"github.com/bitbriks/bitbrik/editor"
	"github.com/bitbriks/bitbrik/nodes"
	"github.com/bitbriks/bitbrik/products"
	"github.com/bitbriks/bitbrik/toolbar"
)

// Placeholder is shown while the document is empty.
const Placeholder = "Enter some rich text..."

// Settings are the editor feature switches.
type Settings struct {
	// MaxLength caps the document's character count. Zero disables the cap.
	MaxLength int
	// HistoryLimit bounds the undo stack. Zero means unbounded.
	HistoryLimit int
	// EmptyEditor starts without the welcome content.
	EmptyEditor bool
}

// Config configures an Editor.
type Config struct {
	// Namespace names the editor in logs. Defaults to "Playground".
	Namespace string

	// InitialJSON is a serialized state to load instead of the welcome
	// content.
	InitialJSON []byte
	// InitialHTML is imported at the end of the document after the initial
	// content is in place.
	InitialHTML string

	Settings Settings

	// Theme maps node types to CSS classes for HTML export. DefaultTheme is
	// used when nil.
	Theme document.Theme

	// Sanitize filters imported and pasted HTML through SanitizePolicy.
	Sanitize bool

	// Clipboard backs copy, cut and paste in the editor view.
	Clipboard editor.Clipboard

	// OnChange is called when the editor view observes a new state.
	OnChange func(editor.ChangeEvent)

	Logger zerolog.Logger
}

// Editor is an assembled bitbrik editor.
type Editor struct {
	cfg     Config
	doc     *document.Editor
	history *document.HistoryState
	unreg   func()
	closing sync.Once

	view editor.Model
	tb   toolbar.Model
}

// Nodes returns every node class a bitbrik editor registers.
func Nodes() []document.Class {
	return append(nodes.All(), products.Class)
}

// Plugins returns the plugins a bitbrik editor registers for settings.
func Plugins(settings Settings, history *document.HistoryState) []document.Plugin {
	ps := append(nodes.Plugins(), products.Plugin(), document.HistoryPlugin(history))
	if settings.MaxLength > 0 {
		ps = append(ps, nodes.MaxLengthPlugin(settings.MaxLength))
	}
	return ps
}

// New builds an editor. Registration and initial content errors are
// returned; nothing is left registered when New fails.
func New(cfg Config) (*Editor, error) {
	if cfg.Namespace == "" {
		cfg.Namespace = "Playground"
	}
	if cfg.Theme == nil {
		cfg.Theme = DefaultTheme()
	}
	logger := cfg.Logger.With().Str("namespace", cfg.Namespace).Logger()

	dcfg := document.Config{
		Namespace: cfg.Namespace,
		Nodes:     Nodes(),
		Theme:     cfg.Theme,
		Logger:    logger,
		OnError: func(err error) {
			logger.Error().Err(err).Msg("editor error")
		},
	}
	if cfg.Sanitize {
		dcfg.Sanitizer = SanitizePolicy()
	}
	doc, err := document.New(dcfg)
	if err != nil {
		return nil, errors.Wrap(err, "bitbrik: build editor")
	}
	history := document.NewHistoryState(cfg.Settings.HistoryLimit)
	unreg, err := document.RegisterPlugins(doc, Plugins(cfg.Settings, history)...)
	if err != nil {
		return nil, errors.Wrap(err, "bitbrik: register plugins")
	}
	e := &Editor{cfg: cfg, doc: doc, history: history, unreg: unreg}
	if err := e.load(); err != nil {
		unreg()
		return nil, err
	}

	e.view = editor.New(editor.Config{
		Editor:      doc,
		Style:       editor.DefaultStyle(),
		Placeholder: Placeholder,
		Clipboard:   cfg.Clipboard,
		OnChange:    cfg.OnChange,
		Logger:      logger,
	})
	e.tb, err = toolbar.New(toolbar.Config{
		Editor: doc,
		Style:  toolbar.DefaultStyle(),
		Logger: logger,
	})
	if err != nil {
		e.view.Close()
		unreg()
		return nil, errors.Wrap(err, "bitbrik: toolbar")
	}
	logger.Debug().Int("nodes", doc.State().Len()).Msg("editor ready")
	return e, nil
}

// load puts the initial content in place. None of it is undoable.
func (e *Editor) load() error {
	switch {
	case len(e.cfg.InitialJSON) > 0:
		s, err := e.doc.ParseState(e.cfg.InitialJSON)
		if err != nil {
			return errors.Wrap(err, "bitbrik: initial state")
		}
		err = e.doc.Update(func(tx *document.Tx) error {
			tx.SetState(s)
			return nil
		}, document.TagHistoryMerge)
		if err != nil {
			return errors.Wrap(err, "bitbrik: initial state")
		}
	case !e.cfg.Settings.EmptyEditor:
		if err := e.doc.Update(prepopulate, document.TagHistoryMerge); err != nil {
			return errors.Wrap(err, "bitbrik: welcome content")
		}
	}
	err := e.doc.Update(func(tx *document.Tx) error {
		if len(tx.Children(document.RootKey)) == 0 {
			p := document.Create(tx, document.NewParagraph())
			if err := tx.Append(tx.Root(), p); err != nil {
				return err
			}
		}
		tx.SelectEnd(tx.Root())
		if e.cfg.InitialHTML == "" {
			return nil
		}
		return tx.ImportHTML(e.cfg.InitialHTML)
	}, document.TagHistoryMerge)
	return errors.Wrap(err, "bitbrik: initial html")
}

// Document returns the underlying document editor.
func (e *Editor) Document() *document.Editor { return e.doc }

// History returns the undo history.
func (e *Editor) History() *document.HistoryState { return e.history }

// Toolbar returns the current toolbar state.
func (e *Editor) Toolbar() toolbar.State { return e.tb.State() }

// Close unregisters every plugin and unmounts the view. The editor must not
// be used afterwards.
func (e *Editor) Close() {
	e.closing.Do(func() {
		e.tb.Close()
		e.view.Close()
		e.unreg()
	})
}
