// Command bitbrik-demo runs the bitbrik playground editor in the terminal.
//
// Keys: ctrl+t moves between the toolbar and the document, ctrl+p inserts
// the configured products, ctrl+s saves to the store and ctrl+q quits.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bitbriks/bitbrik"
	"github.com/bitbriks/bitbrik/products"
	"github.com/bitbriks/bitbrik/store"
)

type model struct {
	shell    bitbrik.Model
	editor   *bitbrik.Editor
	store    *store.Store
	docID    string
	title    string
	products products.Products
	status   string
}

func (m model) Init() tea.Cmd { return m.shell.Init() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		msg.Height = max(msg.Height-1, 0)
		return m.forward(msg)
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+q":
			return m, tea.Quit
		case "ctrl+s":
			m.status = m.save()
			return m, nil
		case "ctrl+p":
			m.status = "products inserted"
			if err := m.editor.InsertProducts(m.products); err != nil {
				m.status = err.Error()
			}
			return m, nil
		}
	}
	return m.forward(msg)
}

func (m model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.shell.Update(msg)
	m.shell = next.(bitbrik.Model)
	return m, cmd
}

func (m *model) save() string {
	if m.store == nil {
		return "no store configured"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	state, err := m.editor.ExportJSON().Await(ctx)
	if err != nil {
		log.Error().Err(err).Msg("export failed")
		return err.Error()
	}
	doc, err := m.store.Save(ctx, store.Document{ID: m.docID, Title: m.title, State: state})
	if err != nil {
		log.Error().Err(err).Msg("save failed")
		return err.Error()
	}
	m.docID = doc.ID
	log.Info().Str("id", doc.ID).Msg("document saved")
	return "saved " + doc.ID
}

func (m model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, m.shell.View(), statusStyle.Render(m.status))
}

var statusStyle = lipgloss.NewStyle().Faint(true)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file")
		htmlPath   = flag.String("html", "", "HTML file imported at the end of the document")
		storePath  = flag.String("store", "", "SQLite store for ctrl+s (overrides config)")
		docID      = flag.String("doc", "", "stored document to open (overrides config)")
		empty      = flag.Bool("empty", false, "start without the welcome content")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fail(err)
	}
	if *storePath != "" {
		cfg.Store = *storePath
	}
	if *docID != "" {
		cfg.Document = *docID
	}
	if *empty {
		cfg.EmptyEditor = true
	}
	if *htmlPath != "" {
		data, err := os.ReadFile(*htmlPath)
		if err != nil {
			fail(err)
		}
		cfg.InitialHTML = string(data)
	}

	closeLog := configLogging(cfg)
	defer closeLog()
	lipgloss.SetColorProfile(termenv.EnvColorProfile())

	m := model{title: cfg.Namespace, products: cfg.Products, docID: cfg.Document}
	ed := bitbrik.Config{
		Namespace:   cfg.Namespace,
		InitialHTML: cfg.InitialHTML,
		Settings:    cfg.settings(),
		Sanitize:    cfg.Sanitize,
		Clipboard:   &memoryClipboard{},
		Logger:      log.Logger,
	}
	if cfg.Store != "" {
		ctx := context.Background()
		m.store, err = store.Open(ctx, cfg.Store, store.WithLogger(log.Logger))
		if err != nil {
			fail(err)
		}
		defer m.store.Close()
		if cfg.Document != "" {
			doc, err := m.store.Get(ctx, cfg.Document)
			if err != nil {
				fail(err)
			}
			ed.InitialJSON = doc.State
			m.title = doc.Title
		}
	}

	m.editor, err = bitbrik.New(ed)
	if err != nil {
		fail(err)
	}
	defer m.editor.Close()
	m.shell = m.editor.Model()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		fail(err)
	}
}

// configLogging points the global logger at the configured file. The
// terminal belongs to the editor, so logs are discarded without one.
func configLogging(cfg config) func() {
	var out io.Writer = io.Discard
	closer := func() {}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fail(err)
		}
		out, closer = f, func() { _ = f.Close() }
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: out, NoColor: true})

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("loglevel", cfg.LogLevel).Err(err).Msg("defaulting to info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	return closer
}

func fail(err error) {
	_, _ = os.Stderr.WriteString(err.Error() + "\n")
	os.Exit(1)
}
